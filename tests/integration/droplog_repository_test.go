//go:build integration

package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"herald/internal/broadcast"
	"herald/internal/droplog"
)

func testDrop(player, item string, quantity, value int64) broadcast.DropItem {
	return broadcast.DropItem{
		Player:   player,
		ItemName: item,
		Quantity: quantity,
		Value:    &value,
		Source:   "Zulrah",
	}
}

func TestDropLogRepository_DropsBetween(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, true, false)

	ctx := context.Background()
	repo := droplog.NewRepository(infra.MongoDB)

	start := time.Now().UTC().Add(-time.Second)

	require.NoError(t, repo.RecordDrop(ctx, 200001, broadcast.KindItemDrop, testDrop("RuneMysteries", "Tanzanite fang", 1, 2500000)))
	require.NoError(t, repo.RecordDrop(ctx, 200001, broadcast.KindItemDrop, testDrop("RuneMysteries", "Magic fang", 1, 1800000)))
	require.NoError(t, repo.RecordDrop(ctx, 200002, broadcast.KindItemDrop, testDrop("OtherGuy", "Serpentine visage", 1, 7000000)))

	logs, err := repo.DropsBetween(ctx, 200001, start, time.Now().UTC().Add(time.Second))
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "Tanzanite fang", logs[0].Drop.ItemName)
	assert.Equal(t, broadcast.KindItemDrop, logs[0].Kind)
	require.NotNil(t, logs[0].Drop.Value)
	assert.Equal(t, int64(2500000), *logs[0].Drop.Value)

	// A window that ends before the inserts must be empty.
	empty, err := repo.DropsBetween(ctx, 200001, start.Add(-time.Hour), start)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestDropLogRepository_LatestBroadcasts(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, true, false)

	ctx := context.Background()
	repo := droplog.NewRepository(infra.MongoDB)

	for _, title := range []string{"Item Drop", "Quest Completed", "Pet Drop"} {
		require.NoError(t, repo.RecordBroadcast(ctx, 200003, broadcast.Notification{
			Kind:    broadcast.KindItemDrop,
			Player:  "RuneMysteries",
			Title:   title,
			Message: "something happened",
		}))
		time.Sleep(timestampDelay)
	}

	latest, err := repo.LatestBroadcasts(ctx, 200003, 2)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, "Pet Drop", latest[0].Notification.Title)
	assert.Equal(t, "Quest Completed", latest[1].Notification.Title)

	other, err := repo.LatestBroadcasts(ctx, 999999, 10)
	require.NoError(t, err)
	assert.Empty(t, other)
}
