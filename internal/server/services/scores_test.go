package services

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/dmitrijs2005/pageclean/internal/common"
	"github.com/dmitrijs2005/pageclean/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecayFactor(t *testing.T) {
	halfLife := 14 * 24 * time.Hour
	freq := 5 * time.Minute

	half, err := DecayFactor(halfLife, halfLife)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, half, 1e-12)

	f, err := DecayFactor(freq, halfLife)
	require.NoError(t, err)
	assert.Less(t, f, 1.0)
	runs := float64(halfLife / freq)
	assert.InDelta(t, 0.5, math.Pow(f, runs), 1e-9)
}

func TestDecayFactor_RejectsNonPositiveDurations(t *testing.T) {
	tests := []struct {
		name      string
		frequency time.Duration
		halfLife  time.Duration
	}{
		{"zero half-life", 5 * time.Minute, 0},
		{"negative half-life", 5 * time.Minute, -time.Hour},
		{"zero frequency", 0, 14 * 24 * time.Hour},
		{"negative frequency", -time.Minute, 14 * 24 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := DecayFactor(tt.frequency, tt.halfLife)
			assert.ErrorIs(t, err, common.ErrInvalidArgument)
			assert.Zero(t, f)
		})
	}
}

func TestRegisterUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	u, err := env.scores.RegisterUser(ctx, "  alice ")
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "alice", u.Name)

	got := env.stats(t, u.ID)
	assert.Equal(t, &models.User{ID: u.ID, Name: "alice"}, got)

	_, err = env.scores.RegisterUser(ctx, " ")
	assert.ErrorIs(t, err, common.ErrInvalidArgument)
}

func TestIncrement(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.user(t, "alice")

	require.NoError(t, env.scores.Increment(ctx, a, models.RevisionCleaned))
	require.NoError(t, env.scores.Increment(ctx, a, models.RevisionCleaned))
	require.NoError(t, env.scores.Increment(ctx, a, models.RevisionApproved))

	u := env.stats(t, a)
	assert.EqualValues(t, 2, u.PagesCleaned)
	assert.EqualValues(t, 1, u.PagesApproved)
	assert.Equal(t, 3.0, u.Score)

	assert.ErrorIs(t, env.scores.Increment(ctx, "nobody", models.RevisionCleaned), common.ErrorNotFound)
}

func TestDecayScores(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.user(t, "alice")
	b := env.user(t, "bob")

	for i := 0; i < 4; i++ {
		require.NoError(t, env.scores.Increment(ctx, a, models.RevisionCleaned))
	}
	require.NoError(t, env.scores.Increment(ctx, b, models.RevisionApproved))

	n, err := env.scores.DecayScores(ctx, 0.5)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	ua := env.stats(t, a)
	assert.Equal(t, 2.0, ua.Score)
	assert.EqualValues(t, 4, ua.PagesCleaned)

	ub := env.stats(t, b)
	assert.Equal(t, 0.5, ub.Score)
	assert.EqualValues(t, 1, ub.PagesApproved)
}

func TestDecayScores_RejectsBadFactor(t *testing.T) {
	env := newTestEnv(t)

	a := env.user(t, "alice")
	require.NoError(t, env.scores.Increment(context.Background(), a, models.RevisionCleaned))

	for _, f := range []float64{0, -0.1, 1.5, math.NaN(), math.Inf(1)} {
		_, err := env.scores.DecayScores(context.Background(), f)
		assert.ErrorIs(t, err, common.ErrInvalidArgument, "factor %v", f)
	}

	assert.Equal(t, 1.0, env.stats(t, a).Score)
}
