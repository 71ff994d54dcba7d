package pages

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/pageclean/internal/common"
	"github.com/dmitrijs2005/pageclean/internal/dbx"
	"github.com/dmitrijs2005/pageclean/internal/server/models"
)

// SQLRepository implements page storage over a dbx.DBTX (*sql.DB or *sql.Tx).
// The queries are plain SQL shared by PostgreSQL and SQLite.
type SQLRepository struct {
	db dbx.DBTX
}

// NewSQLRepository constructs a repository bound to the given DBTX.
func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

const pageColumns = `id, collection_id, number, original_text, approved, locked_by, locked_until`

func scanPage(row interface{ Scan(...any) error }) (*models.Page, error) {
	p := &models.Page{}
	err := row.Scan(&p.ID, &p.CollectionID, &p.Number, &p.OriginalText, &p.Approved, &p.LockedBy, &p.LockedUntil)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *SQLRepository) Create(ctx context.Context, page *models.Page) (*models.Page, error) {
	query :=
		`INSERT INTO pages (collection_id, number, original_text, approved)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		page.CollectionID, page.Number, page.OriginalText, page.Approved).Scan(&page.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return page, nil
}

func (r *SQLRepository) GetByID(ctx context.Context, id int64) (*models.Page, error) {
	query := `SELECT ` + pageColumns + ` FROM pages WHERE id = $1`

	p, err := scanPage(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *SQLRepository) GetByNumber(ctx context.Context, collectionID int64, number int) (*models.Page, error) {
	query := `SELECT ` + pageColumns + ` FROM pages WHERE collection_id = $1 AND number = $2`

	p, err := scanPage(r.db.QueryRowContext(ctx, query, collectionID, number))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *SQLRepository) ListByCollection(ctx context.Context, collectionID int64) ([]*models.Page, error) {
	query := `SELECT ` + pageColumns + ` FROM pages WHERE collection_id = $1 ORDER BY number`

	rows, err := r.db.QueryContext(ctx, query, collectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to select pages: %w", err)
	}
	defer rows.Close()

	var result []*models.Page
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLRepository) ReleaseExpired(ctx context.Context, collectionID int64, now time.Time) (int64, error) {
	query :=
		`UPDATE pages SET locked_by = NULL, locked_until = NULL
		 WHERE collection_id = $1 AND locked_by IS NOT NULL AND locked_until < $2
		 `
	return dbx.ExecAffected(ctx, r.db, query, collectionID, now)
}

func (r *SQLRepository) findOne(ctx context.Context, query string, args ...any) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrorNotFound
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return id, nil
}

func (r *SQLRepository) FindHeld(ctx context.Context, collectionID int64, userID string) (int64, error) {
	query :=
		`SELECT p.id FROM pages p
		 WHERE p.collection_id = $1 AND p.locked_by = $2 AND p.approved = FALSE
		 AND NOT EXISTS (SELECT 1 FROM revisions r WHERE r.page_id = p.id AND r.author_id = $2)
		 ORDER BY p.number
		 LIMIT 1
		 `
	return r.findOne(ctx, query, collectionID, userID)
}

func (r *SQLRepository) FindUnlocked(ctx context.Context, collectionID int64, userID string) (int64, error) {
	query :=
		`SELECT p.id FROM pages p
		 WHERE p.collection_id = $1 AND p.locked_by IS NULL AND p.approved = FALSE
		 AND NOT EXISTS (SELECT 1 FROM revisions r WHERE r.page_id = p.id AND r.author_id = $2)
		 ORDER BY p.number
		 LIMIT 1
		 `
	return r.findOne(ctx, query, collectionID, userID)
}

// oneOrNone maps the rows affected by a single-row conditional update.
func oneOrNone(n int64) (bool, error) {
	switch n {
	case 1:
		return true, nil
	case 0:
		return false, nil
	default:
		return false, fmt.Errorf("unexpected rows affected: %d", n)
	}
}

func (r *SQLRepository) Reassert(ctx context.Context, pageID int64, userID string, until time.Time) (bool, error) {
	query :=
		`UPDATE pages SET locked_until = $3
		 WHERE id = $1 AND locked_by = $2 AND approved = FALSE
		 `
	n, err := dbx.ExecAffected(ctx, r.db, query, pageID, userID, until)
	if err != nil {
		return false, err
	}
	return oneOrNone(n)
}

func (r *SQLRepository) Claim(ctx context.Context, pageID int64, userID string, now, until time.Time) (bool, error) {
	query :=
		`UPDATE pages SET locked_by = $2, locked_until = $4
		 WHERE id = $1 AND approved = FALSE
		 AND (locked_by IS NULL OR locked_by = $2 OR locked_until < $3)
		 `
	n, err := dbx.ExecAffected(ctx, r.db, query, pageID, userID, now, until)
	if err != nil {
		return false, err
	}
	return oneOrNone(n)
}

func (r *SQLRepository) Finish(ctx context.Context, pageID int64, userID string, approved bool) error {
	query :=
		`UPDATE pages SET approved = $3, locked_by = NULL, locked_until = NULL
		 WHERE id = $1 AND locked_by = $2 AND approved = FALSE
		 `
	n, err := dbx.ExecAffected(ctx, r.db, query, pageID, userID, approved)
	if err != nil {
		return err
	}
	ok, err := oneOrNone(n)
	if err != nil {
		return err
	}
	if !ok {
		return common.ErrLeaseExpired
	}
	return nil
}

func (r *SQLRepository) Progress(ctx context.Context, collectionID int64) (*models.Progress, error) {
	query :=
		`SELECT COUNT(*),
		        COALESCE(SUM(CASE WHEN p.approved THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN EXISTS (SELECT 1 FROM revisions r WHERE r.page_id = p.id) THEN 1 ELSE 0 END), 0)
		 FROM pages p
		 WHERE p.collection_id = $1
		 `

	pr := &models.Progress{}
	err := r.db.QueryRowContext(ctx, query, collectionID).Scan(&pr.Total, &pr.Approved, &pr.Cleaned)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return pr, nil
}
