package services

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/dmitrijs2005/pageclean/internal/logging"
	"github.com/dmitrijs2005/pageclean/internal/server/models"
	"github.com/dmitrijs2005/pageclean/internal/server/repositories/repomanager"
	"github.com/google/uuid"
	"github.com/juju/clock/testclock"
	"github.com/stretchr/testify/require"
)

const testLease = 5 * time.Minute

var launch = time.Date(1962, 5, 24, 0, 0, 0, 0, time.UTC)

// testEnv is a migrated in-memory SQLite database with every service wired
// to the same fake clock.
type testEnv struct {
	db          *sql.DB
	rm          repomanager.RepositoryManager
	clock       *testclock.Clock
	leases      *LeaseService
	revisions   *RevisionService
	scores      *ScoreService
	collections *CollectionService
	collection  *models.Collection
}

func newTestEnv(t *testing.T, texts ...string) *testEnv {
	t.Helper()
	ctx := context.Background()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_time_format=sqlite", uuid.NewString())
	db, err := repomanager.Open(ctx, repomanager.DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rm, err := repomanager.NewSQLRepositoryManager(repomanager.DriverSQLite)
	require.NoError(t, err)
	require.NoError(t, rm.RunMigrations(ctx, db))

	clk := testclock.NewClock(time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC))
	logger := logging.NewNopLogger()

	env := &testEnv{
		db:          db,
		rm:          rm,
		clock:       clk,
		leases:      NewLeaseService(db, rm, clk, testLease, logger),
		revisions:   NewRevisionService(db, rm, clk, logger),
		scores:      NewScoreService(db, rm, logger),
		collections: NewCollectionService(db, rm),
	}

	env.collection, err = env.collections.Create(ctx, "Mercury-Atlas 7", "MA7", launch)
	require.NoError(t, err)

	for i, text := range texts {
		_, err := rm.Pages(db).Create(ctx, &models.Page{
			CollectionID: env.collection.ID,
			Number:       i + 1,
			OriginalText: text,
		})
		require.NoError(t, err)
	}

	return env
}

func (e *testEnv) user(t *testing.T, name string) string {
	t.Helper()
	u, err := e.scores.RegisterUser(context.Background(), name)
	require.NoError(t, err)
	return u.ID
}

func (e *testEnv) page(t *testing.T, number int) *models.Page {
	t.Helper()
	p, err := e.rm.Pages(e.db).GetByNumber(context.Background(), e.collection.ID, number)
	require.NoError(t, err)
	return p
}

func (e *testEnv) next(t *testing.T, userID string) *models.Page {
	t.Helper()
	p, err := e.leases.NextPage(context.Background(), e.collection.ID, userID)
	require.NoError(t, err)
	return p
}

func (e *testEnv) stats(t *testing.T, userID string) *models.User {
	t.Helper()
	u, err := e.scores.User(context.Background(), userID)
	require.NoError(t, err)
	return u
}
