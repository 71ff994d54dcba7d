package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/pageclean/internal/common"
	"github.com/dmitrijs2005/pageclean/internal/dbx"
	"github.com/dmitrijs2005/pageclean/internal/logging"
	"github.com/dmitrijs2005/pageclean/internal/server/models"
	"github.com/dmitrijs2005/pageclean/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/pageclean/internal/server/repositories/revisions"
	"github.com/juju/clock"
)

// CommitResult describes what a committed revision did.
type CommitResult struct {
	Revision *models.Revision
	Kind     models.RevisionKind
	Approved bool
}

type RevisionService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	clock       clock.Clock
	logger      logging.Logger
}

func NewRevisionService(db *sql.DB, m repomanager.RepositoryManager, clk clock.Clock, logger logging.Logger) *RevisionService {
	return &RevisionService{
		db:          db,
		repomanager: m,
		clock:       clk,
		logger:      logger,
	}
}

func effectiveText(ctx context.Context, repo revisions.Repository, page *models.Page) (string, error) {
	rev, err := repo.Latest(ctx, page.ID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return page.OriginalText, nil
		}
		return "", err
	}
	return rev.Text, nil
}

// Commit records userID's text for the page, releases their lease and
// credits them. Unchanged text approves the page.
//
// Everything happens in one transaction. If the user no longer holds the
// lease the call fails with common.ErrLeaseExpired and nothing is written.
// A second revision of the same page by the same user fails with
// common.ErrDuplicateRevision.
func (s *RevisionService) Commit(ctx context.Context, pageID int64, userID string, text string) (*CommitResult, error) {
	var result *CommitResult

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		pageRepo := s.repomanager.Pages(tx)
		revisionRepo := s.repomanager.Revisions(tx)
		userRepo := s.repomanager.Users(tx)

		page, err := pageRepo.GetByID(ctx, pageID)
		if err != nil {
			return fmt.Errorf("page %d: %w", pageID, err)
		}

		previous, err := effectiveText(ctx, revisionRepo, page)
		if err != nil {
			return err
		}

		exists, err := revisionRepo.ExistsForAuthor(ctx, pageID, userID)
		if err != nil {
			return err
		}
		if exists {
			return common.ErrDuplicateRevision
		}

		rev, err := revisionRepo.Create(ctx, &models.Revision{
			PageID:    pageID,
			AuthorID:  userID,
			Text:      text,
			CreatedAt: s.clock.Now().UTC(),
		})
		if err != nil {
			return err
		}

		kind := models.RevisionCleaned
		if text == previous {
			kind = models.RevisionApproved
		}
		approved := kind == models.RevisionApproved

		if err := pageRepo.Finish(ctx, pageID, userID, approved); err != nil {
			return err
		}
		if err := userRepo.Increment(ctx, userID, kind); err != nil {
			return fmt.Errorf("credit user %s: %w", userID, err)
		}

		result = &CommitResult{Revision: rev, Kind: kind, Approved: approved}
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrLeaseExpired) {
			s.logger.Info(ctx, "commit after lease loss", "page", pageID, "user", userID)
		}
		return nil, err
	}

	s.logger.Debug(ctx, "revision committed", "page", pageID, "user", userID, "kind", string(result.Kind))
	return result, nil
}

// EffectiveText is the text of the page's newest revision, or its original
// text when nobody has revised it yet.
func (s *RevisionService) EffectiveText(ctx context.Context, page *models.Page) (string, error) {
	return effectiveText(ctx, s.repomanager.Revisions(s.db), page)
}

// Revisions lists the page's revisions oldest first.
func (s *RevisionService) Revisions(ctx context.Context, pageID int64) ([]*models.Revision, error) {
	return s.repomanager.Revisions(s.db).ListByPage(ctx, pageID)
}
