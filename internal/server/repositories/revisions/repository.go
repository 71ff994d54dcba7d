// Package revisions stores the append-only revision history of pages.
package revisions

import (
	"context"

	"github.com/dmitrijs2005/pageclean/internal/server/models"
)

type Repository interface {
	// Create appends a revision. A second revision of the same page by the
	// same author fails with common.ErrDuplicateRevision.
	Create(ctx context.Context, rev *models.Revision) (*models.Revision, error)
	// Latest returns the newest revision of a page, or common.ErrorNotFound.
	Latest(ctx context.Context, pageID int64) (*models.Revision, error)
	ExistsForAuthor(ctx context.Context, pageID int64, authorID string) (bool, error)
	ListByPage(ctx context.Context, pageID int64) ([]*models.Revision, error)
	// AuthorNames lists the distinct names of everyone who revised a page
	// of the collection, sorted.
	AuthorNames(ctx context.Context, collectionID int64) ([]string, error)
}
