package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/pageclean/internal/common"
	"github.com/dmitrijs2005/pageclean/internal/logging"
	"github.com/dmitrijs2005/pageclean/internal/server/models"
	"github.com/dmitrijs2005/pageclean/internal/server/repositories/repomanager"
	"github.com/juju/clock"
)

// LeaseService hands pages out to users under time-bounded leases.
//
// It keeps no lease state in memory. Every decision is a conditional UPDATE
// whose WHERE clause re-checks the lease, so concurrent callers (in this
// process or another) never both win the same page.
type LeaseService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	clock         clock.Clock
	leaseDuration time.Duration
	logger        logging.Logger
}

func NewLeaseService(db *sql.DB, m repomanager.RepositoryManager, clk clock.Clock, leaseDuration time.Duration, logger logging.Logger) *LeaseService {
	return &LeaseService{
		db:            db,
		repomanager:   m,
		clock:         clk,
		leaseDuration: leaseDuration,
		logger:        logger,
	}
}

func (s *LeaseService) now() time.Time {
	return s.clock.Now().UTC()
}

// NextPage returns the page userID should work on next in the collection,
// leased to them until now+leaseDuration. A nil page with a nil error means
// there is nothing to hand out right now: the collection is complete, fully
// assigned, or another request won the race for the candidate.
//
// A page the user already holds is resumed first, even when its lease has
// lapsed, as long as nobody reclaimed it in the meantime. Otherwise expired
// leases are released and the lowest-numbered free page is claimed.
func (s *LeaseService) NextPage(ctx context.Context, collectionID int64, userID string) (*models.Page, error) {
	// a non-positive lease is expired as soon as it is granted
	if s.leaseDuration <= 0 {
		return nil, fmt.Errorf("%w: lease duration %v must be positive", common.ErrInvalidArgument, s.leaseDuration)
	}

	if _, err := s.repomanager.Collections(s.db).GetByID(ctx, collectionID); err != nil {
		return nil, fmt.Errorf("collection %d: %w", collectionID, err)
	}

	repo := s.repomanager.Pages(s.db)
	now := s.now()
	until := now.Add(s.leaseDuration)

	pageID, err := repo.FindHeld(ctx, collectionID, userID)
	switch {
	case err == nil:
		ok, err := repo.Reassert(ctx, pageID, userID, until)
		if err != nil {
			return nil, fmt.Errorf("reassert lease: %w", err)
		}
		if ok {
			return repo.GetByID(ctx, pageID)
		}
	case !errors.Is(err, common.ErrorNotFound):
		return nil, fmt.Errorf("find held page: %w", err)
	}

	released, err := repo.ReleaseExpired(ctx, collectionID, now)
	if err != nil {
		return nil, fmt.Errorf("release expired leases: %w", err)
	}
	if released > 0 {
		s.logger.Info(ctx, "released expired leases", "collection", collectionID, "count", released)
	}

	pageID, err = repo.FindUnlocked(ctx, collectionID, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find unlocked page: %w", err)
	}

	ok, err := repo.Claim(ctx, pageID, userID, now, until)
	if err != nil {
		return nil, fmt.Errorf("claim page: %w", err)
	}
	if !ok {
		s.logger.Debug(ctx, "lost lease race", "page", pageID, "user", userID)
		return nil, nil
	}

	return repo.GetByID(ctx, pageID)
}

// ReclaimExpiredLeases clears every lapsed lease in the collection and
// returns how many were cleared. It is safe to call at any time.
func (s *LeaseService) ReclaimExpiredLeases(ctx context.Context, collectionID int64) (int64, error) {
	n, err := s.repomanager.Pages(s.db).ReleaseExpired(ctx, collectionID, s.now())
	if err != nil {
		return 0, err
	}
	s.logger.Info(ctx, "reclaimed expired leases", "collection", collectionID, "count", n)
	return n, nil
}

// IsLeaseActive reports whether page is held by someone at now.
func IsLeaseActive(page *models.Page, now time.Time) bool {
	return page.IsLeaseActive(now)
}
