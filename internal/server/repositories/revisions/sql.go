package revisions

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

func (r *SQLRepository) Create(ctx context.Context, rev *models.Revision) (*models.Revision, error) {
	query :=
		`INSERT INTO revisions (page_id, author_id, text, created_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query, rev.PageID, rev.AuthorID, rev.Text, rev.CreatedAt).Scan(&rev.ID)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrDuplicateRevision
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return rev, nil
}

func (r *SQLRepository) Latest(ctx context.Context, pageID int64) (*models.Revision, error) {
	query :=
		`SELECT id, page_id, author_id, text, created_at FROM revisions
		 WHERE page_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT 1
		 `

	rev := &models.Revision{}
	err := r.db.QueryRowContext(ctx, query, pageID).Scan(&rev.ID, &rev.PageID, &rev.AuthorID, &rev.Text, &rev.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return rev, nil
}

func (r *SQLRepository) ExistsForAuthor(ctx context.Context, pageID int64, authorID string) (bool, error) {
	query := `SELECT COUNT(*) FROM revisions WHERE page_id = $1 AND author_id = $2`

	var n int64
	if err := r.db.QueryRowContext(ctx, query, pageID, authorID).Scan(&n); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}

func (r *SQLRepository) ListByPage(ctx context.Context, pageID int64) ([]*models.Revision, error) {
	query :=
		`SELECT id, page_id, author_id, text, created_at FROM revisions
		 WHERE page_id = $1
		 ORDER BY created_at, id
		 `

	rows, err := r.db.QueryContext(ctx, query, pageID)
	if err != nil {
		return nil, fmt.Errorf("failed to select revisions: %w", err)
	}
	defer rows.Close()

	var result []*models.Revision
	for rows.Next() {
		var rev models.Revision
		if err := rows.Scan(&rev.ID, &rev.PageID, &rev.AuthorID, &rev.Text, &rev.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &rev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLRepository) AuthorNames(ctx context.Context, collectionID int64) ([]string, error) {
	query :=
		`SELECT DISTINCT u.name FROM revisions r
		 JOIN pages p ON p.id = r.page_id
		 JOIN users u ON u.id = r.author_id
		 WHERE p.collection_id = $1
		 ORDER BY u.name
		 `

	rows, err := r.db.QueryContext(ctx, query, collectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to select authors: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return names, nil
}
