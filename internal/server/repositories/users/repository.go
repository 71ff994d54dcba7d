// Package users stores contributors together with their score ledger
// counters.
package users

import (
	"context"

	"github.com/dmitrijs2005/pageclean/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	// Increment bumps one counter and the score by exactly one.
	Increment(ctx context.Context, userID string, kind models.RevisionKind) error
	// Decay multiplies every score by factor and returns the number of users
	// touched.
	Decay(ctx context.Context, factor float64) (int64, error)
}
