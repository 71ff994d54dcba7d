// Package collections stores the named page sets users work through.
package collections

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/pageclean/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, c *models.Collection) (*models.Collection, error)
	GetByID(ctx context.Context, id int64) (*models.Collection, error)
	GetByShortName(ctx context.Context, shortName string) (*models.Collection, error)
	// Current returns the active collection with the lowest id.
	Current(ctx context.Context) (*models.Collection, error)
	SetActive(ctx context.Context, id int64, active bool) error
	// SetDetails replaces the end date and wiki link.
	SetDetails(ctx context.Context, id int64, endsOn sql.NullTime, wiki string) error
}
