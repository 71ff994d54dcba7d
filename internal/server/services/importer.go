package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/dmitrijs2005/pageclean/internal/common"
	"github.com/dmitrijs2005/pageclean/internal/dbx"
	"github.com/dmitrijs2005/pageclean/internal/logging"
	"github.com/dmitrijs2005/pageclean/internal/server/models"
	"github.com/dmitrijs2005/pageclean/internal/server/repositories/repomanager"
	"golang.org/x/text/encoding/charmap"
)

// PageFileName is the name of the OCR text file for page number n.
func PageFileName(n int) string {
	return fmt.Sprintf("page-%03d.txt", n)
}

// ImportService loads OCR text dumps into a collection.
type ImportService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewImportService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *ImportService {
	return &ImportService{db: db, repomanager: m, logger: logger}
}

// Import creates one page per file page-NNN.txt in fsys, starting at page
// start and stopping at the first missing file or at end (exclusive, 0 for
// no bound). Files are ISO-8859-1 encoded. All pages are created in a single
// transaction; it returns how many were created.
func (s *ImportService) Import(ctx context.Context, collectionID int64, fsys fs.FS, start, end int) (int, error) {
	if start < 1 {
		start = 1
	}
	if end != 0 && end < start {
		return 0, fmt.Errorf("%w: end page %d before start page %d", common.ErrInvalidArgument, end, start)
	}

	if _, err := s.repomanager.Collections(s.db).GetByID(ctx, collectionID); err != nil {
		return 0, fmt.Errorf("collection %d: %w", collectionID, err)
	}

	decoder := charmap.ISO8859_1.NewDecoder()
	imported := 0

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Pages(tx)

		for n := start; end == 0 || n < end; n++ {
			raw, err := fs.ReadFile(fsys, PageFileName(n))
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					return nil
				}
				return err
			}

			text, err := decoder.Bytes(raw)
			if err != nil {
				return fmt.Errorf("decode %s: %w", PageFileName(n), err)
			}

			if _, err := repo.Create(ctx, &models.Page{
				CollectionID: collectionID,
				Number:       n,
				OriginalText: string(text),
			}); err != nil {
				return fmt.Errorf("page %d: %w", n, err)
			}

			s.logger.Debug(ctx, "page imported", "collection", collectionID, "page", n)
			imported++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info(ctx, "import finished", "collection", collectionID, "pages", imported)
	return imported, nil
}
