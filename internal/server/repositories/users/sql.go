package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/pageclean/internal/common"
	"github.com/dmitrijs2005/pageclean/internal/dbx"
	"github.com/dmitrijs2005/pageclean/internal/server/models"
)

type SQLRepository struct {
	db dbx.DBTX
}

func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (id, name, pages_cleaned, pages_approved, score)
		 VALUES ($1, $2, 0, 0, 0)
		 `

	if _, err := r.db.ExecContext(ctx, query, user.ID, user.Name); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	user.PagesCleaned, user.PagesApproved, user.Score = 0, 0, 0
	return user, nil
}

func (r *SQLRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query :=
		`SELECT id, name, pages_cleaned, pages_approved, score FROM users
		 WHERE id = $1
		 `

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&user.ID, &user.Name, &user.PagesCleaned, &user.PagesApproved, &user.Score)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *SQLRepository) Increment(ctx context.Context, userID string, kind models.RevisionKind) error {
	var query string
	switch kind {
	case models.RevisionApproved:
		query = `UPDATE users SET pages_approved = pages_approved + 1, score = score + 1 WHERE id = $1`
	case models.RevisionCleaned:
		query = `UPDATE users SET pages_cleaned = pages_cleaned + 1, score = score + 1 WHERE id = $1`
	default:
		return fmt.Errorf("%w: unknown revision kind %q", common.ErrInvalidArgument, kind)
	}

	n, err := dbx.ExecAffected(ctx, r.db, query, userID)
	if err != nil {
		return err
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *SQLRepository) Decay(ctx context.Context, factor float64) (int64, error) {
	return dbx.ExecAffected(ctx, r.db, `UPDATE users SET score = score * $1`, factor)
}
