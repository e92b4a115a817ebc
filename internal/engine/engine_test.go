package engine

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ptyxes/recipebook/config"
	"github.com/ptyxes/recipebook/internal/logging"
	"github.com/ptyxes/recipebook/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngineLifecycle(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()
	cfg.Database.Path = filepath.Join(t.TempDir(), "book.db")

	eng, err := New(ctx, cfg, logging.Discard())
	require.NoError(t, err)

	empty, err := eng.IsEmpty(ctx)
	require.NoError(t, err)
	assert.True(t, empty)

	alice, err := eng.Users.Register(ctx, "alice", "pw", "alice@example.com")
	require.NoError(t, err)
	_, err = eng.Posts.Create(ctx, types.MealPost{
		Title:      "Pancakes",
		AuthorID:   alice.ID,
		Servings:   4,
		Difficulty: types.DifficultyEasy,
	})
	require.NoError(t, err)
	require.NoError(t, eng.Close())

	// Data persists across engines on the same file.
	eng, err = New(ctx, cfg, logging.Discard())
	require.NoError(t, err)
	defer eng.Close()

	count, err := eng.Posts.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = eng.Users.Authenticate(ctx, "alice", "pw")
	require.NoError(t, err)

	require.NoError(t, eng.Reset(ctx))
	empty, err = eng.IsEmpty(ctx)
	require.NoError(t, err)
	assert.True(t, empty)

	count, err = eng.Posts.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestEngineRejectsBadDriver(t *testing.T) {
	cfg := config.Default()
	cfg.Database.Driver = "oracle"

	_, err := New(context.Background(), cfg, nil)
	assert.Error(t, err)
}
