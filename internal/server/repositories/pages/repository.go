// Package pages is the lease store: page rows with their embedded lease.
//
// Every lease mutation is one conditional UPDATE whose WHERE clause is the
// compare-and-set predicate. Callers learn whether they won from the rows
// affected, never from a prior read.
package pages

import (
	"context"
	"time"

	"github.com/dmitrijs2005/pageclean/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, page *models.Page) (*models.Page, error)
	GetByID(ctx context.Context, id int64) (*models.Page, error)
	GetByNumber(ctx context.Context, collectionID int64, number int) (*models.Page, error)
	ListByCollection(ctx context.Context, collectionID int64) ([]*models.Page, error)

	// ReleaseExpired clears every lease in the collection that expired before now.
	ReleaseExpired(ctx context.Context, collectionID int64, now time.Time) (int64, error)

	// FindHeld returns the lowest-numbered unapproved page the user holds
	// (expired or not) and has not revised yet.
	FindHeld(ctx context.Context, collectionID int64, userID string) (int64, error)
	// FindUnlocked returns the lowest-numbered unapproved, unleased page the
	// user has not revised yet.
	FindUnlocked(ctx context.Context, collectionID int64, userID string) (int64, error)

	// Reassert extends the user's own lease on an unapproved page.
	Reassert(ctx context.Context, pageID int64, userID string, until time.Time) (bool, error)
	// Claim leases an unapproved page that is free, already the user's, or
	// held by someone whose lease expired before now.
	Claim(ctx context.Context, pageID int64, userID string, now, until time.Time) (bool, error)
	// Finish stores the approval outcome and clears the lease, provided the
	// user still holds it and the page is not approved yet.
	Finish(ctx context.Context, pageID int64, userID string, approved bool) error

	Progress(ctx context.Context, collectionID int64) (*models.Progress, error)
}
