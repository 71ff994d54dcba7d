package services

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/pageclean/internal/common"
	"github.com/dmitrijs2005/pageclean/internal/server/models"
	"github.com/dmitrijs2005/pageclean/internal/server/repositories/repomanager"
)

// CollectionService resolves which collection callers work on. It stays
// outside the leasing logic, which always takes an explicit collection.
type CollectionService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewCollectionService(db *sql.DB, m repomanager.RepositoryManager) *CollectionService {
	return &CollectionService{db: db, repomanager: m}
}

func (s *CollectionService) Create(ctx context.Context, name, shortName string, startsOn time.Time) (*models.Collection, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(shortName) == "" {
		return nil, fmt.Errorf("%w: collection needs a name and a short name", common.ErrInvalidArgument)
	}

	c := &models.Collection{
		Name:      name,
		ShortName: shortName,
		StartsOn:  startsOn.UTC(),
		Active:    true,
	}
	return s.repomanager.Collections(s.db).Create(ctx, c)
}

func (s *CollectionService) ByShortName(ctx context.Context, shortName string) (*models.Collection, error) {
	return s.repomanager.Collections(s.db).GetByShortName(ctx, shortName)
}

// Current returns the active collection with the lowest id.
func (s *CollectionService) Current(ctx context.Context) (*models.Collection, error) {
	return s.repomanager.Collections(s.db).Current(ctx)
}

func (s *CollectionService) SetActive(ctx context.Context, id int64, active bool) error {
	return s.repomanager.Collections(s.db).SetActive(ctx, id, active)
}

// SetDetails records when the collection's mission ended and where to read
// about it. A zero endsOn clears the end date and an empty wiki clears the
// link.
func (s *CollectionService) SetDetails(ctx context.Context, id int64, endsOn time.Time, wiki string) error {
	repo := s.repomanager.Collections(s.db)

	c, err := repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("collection %d: %w", id, err)
	}

	var end sql.NullTime
	if !endsOn.IsZero() {
		endsOn = endsOn.UTC()
		if endsOn.Before(c.StartsOn) {
			return fmt.Errorf("%w: end %s is before start %s", common.ErrInvalidArgument,
				endsOn.Format(time.DateOnly), c.StartsOn.Format(time.DateOnly))
		}
		end = sql.NullTime{Time: endsOn, Valid: true}
	}

	wiki = strings.TrimSpace(wiki)
	if wiki != "" {
		u, err := url.Parse(wiki)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: bad wiki url %q", common.ErrInvalidArgument, wiki)
		}
	}

	return repo.SetDetails(ctx, id, end, wiki)
}

func (s *CollectionService) Progress(ctx context.Context, id int64) (*models.Progress, error) {
	return s.repomanager.Pages(s.db).Progress(ctx, id)
}
