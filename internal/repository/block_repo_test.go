package repository_test

import (
	"context"
	"testing"

	"github.com/bogdang40/DouaInimi/internal/db"
	"github.com/bogdang40/DouaInimi/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBlockIdempotent(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewBlockRepository(dbase)

	block, created, err := repo.Create(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, created)

	again, created, err := repo.Create(ctx, 1, 2)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, block.ID, again.ID)

	var count int64
	dbase.Model(&db.Block{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestIsBlockedEitherDirection(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewBlockRepository(setupTestDB(t))

	_, _, err := repo.Create(ctx, 1, 2)
	require.NoError(t, err)

	blocked, err := repo.IsBlockedEither(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, blocked)

	// order of arguments must not matter
	blocked, err = repo.IsBlockedEither(ctx, 2, 1)
	require.NoError(t, err)
	assert.True(t, blocked)

	blocked, err = repo.IsBlockedEither(ctx, 1, 3)
	require.NoError(t, err)
	assert.False(t, blocked)
}

func TestDeleteBlock(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewBlockRepository(setupTestDB(t))

	_, _, err := repo.Create(ctx, 1, 2)
	require.NoError(t, err)

	existed, err := repo.Delete(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, existed)

	existed, err = repo.Delete(ctx, 1, 2)
	require.NoError(t, err)
	assert.False(t, existed)
}

func TestBlockedAndBlockerIDs(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewBlockRepository(setupTestDB(t))

	_, _, err := repo.Create(ctx, 1, 2)
	require.NoError(t, err)
	_, _, err = repo.Create(ctx, 1, 3)
	require.NoError(t, err)
	_, _, err = repo.Create(ctx, 4, 1)
	require.NoError(t, err)

	blocked, err := repo.BlockedIDs(ctx, 1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint64{2, 3}, blocked)

	blockers, err := repo.BlockerIDs(ctx, 1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint64{4}, blockers)
}
