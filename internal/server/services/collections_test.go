package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/pageclean/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollections_CurrentAndSetActive(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cur, err := env.collections.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, "MA7", cur.ShortName)

	ma6, err := env.collections.Create(ctx, "Mercury-Atlas 6", "MA6", time.Date(1962, 2, 20, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	require.NoError(t, env.collections.SetActive(ctx, env.collection.ID, false))

	cur, err = env.collections.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, ma6.ID, cur.ID)

	require.NoError(t, env.collections.SetActive(ctx, ma6.ID, false))
	_, err = env.collections.Current(ctx)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestCollections_ByShortName(t *testing.T) {
	env := newTestEnv(t)

	c, err := env.collections.ByShortName(context.Background(), "MA7")
	require.NoError(t, err)
	assert.Equal(t, "Mercury-Atlas 7", c.Name)
	assert.True(t, c.StartsOn.Equal(launch))

	_, err = env.collections.ByShortName(context.Background(), "AS11")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestCollections_CreateValidates(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.collections.Create(context.Background(), "", "X", launch)
	assert.ErrorIs(t, err, common.ErrInvalidArgument)
}

func TestCollections_Progress(t *testing.T) {
	env := newTestEnv(t, "one", "two", "three")
	ctx := context.Background()
	a := env.user(t, "alice")

	p := env.next(t, a)
	_, err := env.revisions.Commit(ctx, p.ID, a, "one")
	require.NoError(t, err)
	p = env.next(t, a)
	_, err = env.revisions.Commit(ctx, p.ID, a, "two, cleaned")
	require.NoError(t, err)

	pr, err := env.collections.Progress(ctx, env.collection.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, pr.Total)
	assert.EqualValues(t, 1, pr.Approved)
	assert.EqualValues(t, 2, pr.Cleaned)
}

func TestCollections_SetDetails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	splashdown := time.Date(1962, 5, 24, 17, 41, 0, 0, time.UTC)
	wiki := "https://en.wikipedia.org/wiki/Mercury-Atlas_7"

	require.NoError(t, env.collections.SetDetails(ctx, env.collection.ID, splashdown, wiki))

	c, err := env.collections.ByShortName(ctx, "MA7")
	require.NoError(t, err)
	require.True(t, c.EndsOn.Valid)
	assert.True(t, c.EndsOn.Time.Equal(splashdown))
	assert.Equal(t, wiki, c.Wiki)

	require.NoError(t, env.collections.SetDetails(ctx, env.collection.ID, time.Time{}, ""))
	c, err = env.collections.ByShortName(ctx, "MA7")
	require.NoError(t, err)
	assert.False(t, c.EndsOn.Valid)
	assert.Empty(t, c.Wiki)
}

func TestCollections_SetDetailsValidates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	err := env.collections.SetDetails(ctx, env.collection.ID, launch.AddDate(0, 0, -1), "")
	assert.ErrorIs(t, err, common.ErrInvalidArgument)

	for _, wiki := range []string{"not a url", "ftp://example.com/ma7", "https://"} {
		err := env.collections.SetDetails(ctx, env.collection.ID, time.Time{}, wiki)
		assert.ErrorIs(t, err, common.ErrInvalidArgument, wiki)
	}

	err = env.collections.SetDetails(ctx, env.collection.ID+100, time.Time{}, "")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}
