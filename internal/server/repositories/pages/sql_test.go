package pages

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/pageclean/internal/common"
	"github.com/dmitrijs2005/pageclean/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*SQLRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewSQLRepository(db), mock, db
}

var (
	now   = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	until = now.Add(5 * time.Minute)
)

func pageRow() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "collection_id", "number", "original_text", "approved", "locked_by", "locked_until"})
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+pages\s*\(collection_id,\s*number,\s*original_text,\s*approved\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4\)\s*RETURNING\s+id\s*$`
	mock.ExpectQuery(q).
		WithArgs(int64(1), 7, "text", false).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

	got, err := repo.Create(context.Background(), &models.Page{CollectionID: 1, Number: 7, OriginalText: "text"})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != 42 {
		t.Fatalf("unexpected id: %d", got.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestGetByID_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM pages WHERE id = \$1`).
		WithArgs(int64(5)).
		WillReturnRows(pageRow().AddRow(int64(5), int64(1), 3, "orig", false, "u-1", until))

	p, err := repo.GetByID(context.Background(), 5)
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if p.Number != 3 || p.LockedBy.String != "u-1" || !p.LockedUntil.Time.Equal(until) {
		t.Fatalf("unexpected page: %+v", p)
	}
	if !p.IsLeaseActive(now) {
		t.Fatalf("lease should be active")
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM pages WHERE id = \$1`).
		WithArgs(int64(5)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 5)
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestGetByNumber_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM pages WHERE collection_id = \$1 AND number = \$2`).
		WithArgs(int64(1), 2).
		WillReturnError(errors.New("db down"))

	_, err := repo.GetByNumber(context.Background(), 1, 2)
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestListByCollection_Ordered(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM pages WHERE collection_id = \$1 ORDER BY number`).
		WithArgs(int64(1)).
		WillReturnRows(pageRow().
			AddRow(int64(1), int64(1), 1, "a", true, nil, nil).
			AddRow(int64(2), int64(1), 2, "b", false, nil, nil))

	got, err := repo.ListByCollection(context.Background(), 1)
	if err != nil {
		t.Fatalf("ListByCollection error: %v", err)
	}
	if len(got) != 2 || got[0].Number != 1 || got[1].Number != 2 {
		t.Fatalf("unexpected pages: %+v", got)
	}
	if got[0].LockedBy.Valid {
		t.Fatalf("lock must be NULL")
	}
}

func TestReleaseExpired(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `UPDATE pages SET locked_by = NULL, locked_until = NULL WHERE collection_id = \$1 AND locked_by IS NOT NULL AND locked_until < \$2`
	mock.ExpectExec(q).
		WithArgs(int64(1), now).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.ReleaseExpired(context.Background(), 1, now)
	if err != nil {
		t.Fatalf("ReleaseExpired error: %v", err)
	}
	if n != 3 {
		t.Fatalf("want 3 released, got %d", n)
	}
}

func TestFindHeld(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `p\.locked_by = \$2 AND p\.approved = FALSE AND NOT EXISTS \(SELECT 1 FROM revisions r WHERE r\.page_id = p\.id AND r\.author_id = \$2\) ORDER BY p\.number LIMIT 1`
	mock.ExpectQuery(q).
		WithArgs(int64(1), "u-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(9)))

	id, err := repo.FindHeld(context.Background(), 1, "u-1")
	if err != nil || id != 9 {
		t.Fatalf("FindHeld: got (%d, %v)", id, err)
	}
}

func TestFindUnlocked_None(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `p\.locked_by IS NULL AND p\.approved = FALSE AND NOT EXISTS`
	mock.ExpectQuery(q).
		WithArgs(int64(1), "u-1").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindUnlocked(context.Background(), 1, "u-1")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestReassert(t *testing.T) {
	q := `UPDATE pages SET locked_until = \$3 WHERE id = \$1 AND locked_by = \$2 AND approved = FALSE`

	tests := []struct {
		name     string
		affected int64
		want     bool
		wantErr  bool
	}{
		{name: "still ours", affected: 1, want: true},
		{name: "taken over", affected: 0, want: false},
		{name: "corrupt", affected: 2, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, db := newRepoWithMock(t)
			defer db.Close()

			mock.ExpectExec(q).
				WithArgs(int64(4), "u-1", until).
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			got, err := repo.Reassert(context.Background(), 4, "u-1", until)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil || got != tt.want {
				t.Fatalf("Reassert: got (%v, %v), want %v", got, err, tt.want)
			}
		})
	}
}

func TestClaim_PredicateAndOutcome(t *testing.T) {
	q := `UPDATE pages SET locked_by = \$2, locked_until = \$4 WHERE id = \$1 AND approved = FALSE AND \(locked_by IS NULL OR locked_by = \$2 OR locked_until < \$3\)`

	for _, affected := range []int64{0, 1} {
		repo, mock, db := newRepoWithMock(t)

		mock.ExpectExec(q).
			WithArgs(int64(4), "u-1", now, until).
			WillReturnResult(sqlmock.NewResult(0, affected))

		got, err := repo.Claim(context.Background(), 4, "u-1", now, until)
		if err != nil {
			t.Fatalf("Claim error: %v", err)
		}
		if got != (affected == 1) {
			t.Fatalf("affected=%d: got %v", affected, got)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("sql expectations: %v", err)
		}
		db.Close()
	}
}

func TestClaim_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE pages SET locked_by`).WillReturnError(errors.New("db down"))

	_, err := repo.Claim(context.Background(), 4, "u-1", now, until)
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestFinish(t *testing.T) {
	q := `UPDATE pages SET approved = \$3, locked_by = NULL, locked_until = NULL WHERE id = \$1 AND locked_by = \$2 AND approved = FALSE`

	t.Run("lease held", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		mock.ExpectExec(q).WithArgs(int64(4), "u-1", true).WillReturnResult(sqlmock.NewResult(0, 1))
		if err := repo.Finish(context.Background(), 4, "u-1", true); err != nil {
			t.Fatalf("Finish error: %v", err)
		}
	})

	t.Run("lease lost", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		mock.ExpectExec(q).WithArgs(int64(4), "u-1", false).WillReturnResult(sqlmock.NewResult(0, 0))
		err := repo.Finish(context.Background(), 4, "u-1", false)
		if !errors.Is(err, common.ErrLeaseExpired) {
			t.Fatalf("want ErrLeaseExpired, got %v", err)
		}
	})
}

func TestProgress(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\)`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"total", "approved", "cleaned"}).AddRow(int64(10), int64(3), int64(5)))

	p, err := repo.Progress(context.Background(), 1)
	if err != nil {
		t.Fatalf("Progress error: %v", err)
	}
	if p.Total != 10 || p.Approved != 3 || p.Cleaned != 5 {
		t.Fatalf("unexpected progress: %+v", p)
	}
}
