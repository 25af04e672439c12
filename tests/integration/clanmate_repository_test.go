//go:build integration

package integration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"herald/internal/clanmate"
)

func TestClanMateRepository_FindOrCreate(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, true, false)

	ctx := context.Background()
	repo := clanmate.NewRepository(infra.MongoDB)

	created, err := repo.FindOrCreate(ctx, 300001, "KANlEL OUTIS")
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, "KANlEL OUTIS", created.PlayerName)
	assert.False(t, created.ID.IsZero())

	again, err := repo.FindOrCreate(ctx, 300001, "KANlEL OUTIS")
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)

	count, err := repo.Count(ctx, 300001)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// Same player name under a different guild is a separate record.
	other, err := repo.FindOrCreate(ctx, 300002, "KANlEL OUTIS")
	require.NoError(t, err)
	assert.NotEqual(t, created.ID, other.ID)
}

func TestClanMateRepository_Rename(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, true, false)

	ctx := context.Background()
	repo := clanmate.NewRepository(infra.MongoDB)

	created, err := repo.FindOrCreate(ctx, 300003, "Old Name")
	require.NoError(t, err)

	require.NoError(t, repo.Rename(ctx, 300003, "Old Name", "New Name"))

	byNew, err := repo.FindByCurrentName(ctx, 300003, "New Name")
	require.NoError(t, err)
	require.NotNil(t, byNew)
	assert.Equal(t, created.ID, byNew.ID)
	assert.Equal(t, []string{"Old Name"}, byNew.PreviousNames)

	byOld, err := repo.FindByPreviousName(ctx, 300003, "Old Name")
	require.NoError(t, err)
	require.NotNil(t, byOld)
	assert.Equal(t, created.ID, byOld.ID)

	assert.Error(t, repo.Rename(ctx, 300003, "Nobody", "Anyone"))
}

func TestClanMateRepository_Remove(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, true, false)

	ctx := context.Background()
	repo := clanmate.NewRepository(infra.MongoDB)

	_, err := repo.FindOrCreate(ctx, 300004, "Leaver")
	require.NoError(t, err)
	require.NoError(t, repo.Rename(ctx, 300004, "Leaver", "Renamed Leaver"))

	// Removal by a previous name still finds the record.
	require.NoError(t, repo.Remove(ctx, 300004, "Leaver"))

	found, err := repo.FindByCurrentName(ctx, 300004, "Renamed Leaver")
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestClanMateRepository_UpdateRank(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, true, false)

	ctx := context.Background()
	repo := clanmate.NewRepository(infra.MongoDB)

	_, err := repo.FindOrCreate(ctx, 300005, "Recruit")
	require.NoError(t, err)
	require.NoError(t, repo.UpdateRank(ctx, 300005, "Recruit", "Captain"))

	found, err := repo.FindByCurrentName(ctx, 300005, "Recruit")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Captain", found.Rank)
}

func TestClanMateRepository_CollectionLogLeaderboard(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, true, false)

	ctx := context.Background()
	repo := clanmate.NewRepository(infra.MongoDB)

	first, err := repo.FindOrCreate(ctx, 300006, "Completionist")
	require.NoError(t, err)
	second, err := repo.FindOrCreate(ctx, 300006, "Casual")
	require.NoError(t, err)

	require.NoError(t, repo.UpdateCollectionLogTotal(ctx, 300006, first.ID, 1200))
	require.NoError(t, repo.UpdateCollectionLogTotal(ctx, 300006, second.ID, 340))

	// Upsert replaces the stored total rather than stacking a second row.
	require.NoError(t, repo.UpdateCollectionLogTotal(ctx, 300006, second.ID, 360))

	entries, err := repo.CollectionLogLeaderboard(ctx, 300006)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Completionist", entries[0].PlayerName)
	assert.Equal(t, int64(1200), entries[0].Total)
	assert.Equal(t, "Casual", entries[1].PlayerName)
	assert.Equal(t, int64(360), entries[1].Total)
}
