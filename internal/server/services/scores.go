package services

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dmitrijs2005/pageclean/internal/common"
	"github.com/dmitrijs2005/pageclean/internal/logging"
	"github.com/dmitrijs2005/pageclean/internal/server/models"
	"github.com/dmitrijs2005/pageclean/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// DecayFactor returns the multiplier that, applied once every frequency,
// halves a score over halfLife: 0.5^(frequency/halfLife).
// Both durations must be positive.
func DecayFactor(frequency, halfLife time.Duration) (float64, error) {
	if frequency <= 0 || halfLife <= 0 {
		return 0, fmt.Errorf("%w: decay frequency %v and half-life %v must be positive",
			common.ErrInvalidArgument, frequency, halfLife)
	}
	return math.Pow(0.5, float64(frequency)/float64(halfLife)), nil
}

// ScoreService owns the per-user contribution counters and score.
type ScoreService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewScoreService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *ScoreService {
	return &ScoreService{db: db, repomanager: m, logger: logger}
}

// RegisterUser creates a user with zeroed counters.
func (s *ScoreService) RegisterUser(ctx context.Context, name string) (*models.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: empty user name", common.ErrInvalidArgument)
	}

	user, err := s.repomanager.Users(s.db).Create(ctx, &models.User{ID: uuid.NewString(), Name: name})
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return user, nil
}

func (s *ScoreService) User(ctx context.Context, id string) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByID(ctx, id)
}

// Increment adds one to the counter for kind and one to the score.
func (s *ScoreService) Increment(ctx context.Context, userID string, kind models.RevisionKind) error {
	return s.repomanager.Users(s.db).Increment(ctx, userID, kind)
}

// DecayScores multiplies every score by factor, leaving the counters alone.
// A zero factor would wipe every score, so factor must lie in (0, 1].
func (s *ScoreService) DecayScores(ctx context.Context, factor float64) (int64, error) {
	if math.IsNaN(factor) || factor <= 0 || factor > 1 {
		return 0, fmt.Errorf("%w: decay factor %v outside (0, 1]", common.ErrInvalidArgument, factor)
	}

	n, err := s.repomanager.Users(s.db).Decay(ctx, factor)
	if err != nil {
		return 0, err
	}
	s.logger.Info(ctx, "scores decayed", "factor", factor, "users", n)
	return n, nil
}
