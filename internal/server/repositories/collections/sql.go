package collections

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

const collectionColumns = `id, name, short_name, starts_on, ends_on, wiki, active`

func (r *SQLRepository) one(ctx context.Context, query string, args ...any) (*models.Collection, error) {
	c := &models.Collection{}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&c.ID, &c.Name, &c.ShortName, &c.StartsOn, &c.EndsOn, &c.Wiki, &c.Active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *SQLRepository) Create(ctx context.Context, c *models.Collection) (*models.Collection, error) {
	query :=
		`INSERT INTO collections (name, short_name, starts_on, ends_on, wiki, active)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query, c.Name, c.ShortName, c.StartsOn, c.EndsOn, c.Wiki, c.Active).Scan(&c.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *SQLRepository) GetByID(ctx context.Context, id int64) (*models.Collection, error) {
	return r.one(ctx, `SELECT `+collectionColumns+` FROM collections WHERE id = $1`, id)
}

func (r *SQLRepository) GetByShortName(ctx context.Context, shortName string) (*models.Collection, error) {
	return r.one(ctx, `SELECT `+collectionColumns+` FROM collections WHERE short_name = $1`, shortName)
}

func (r *SQLRepository) Current(ctx context.Context) (*models.Collection, error) {
	return r.one(ctx, `SELECT `+collectionColumns+` FROM collections WHERE active = TRUE ORDER BY id LIMIT 1`)
}

func (r *SQLRepository) SetActive(ctx context.Context, id int64, active bool) error {
	n, err := dbx.ExecAffected(ctx, r.db, `UPDATE collections SET active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *SQLRepository) SetDetails(ctx context.Context, id int64, endsOn sql.NullTime, wiki string) error {
	n, err := dbx.ExecAffected(ctx, r.db, `UPDATE collections SET ends_on = $2, wiki = $3 WHERE id = $1`, id, endsOn, wiki)
	if err != nil {
		return err
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
