package broadcast

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"herald/internal/logger"
)

func newTestHandler() *Handler {
	return NewHandler(logger.NopLogger())
}

func msg(line string) ClanMessage {
	return ClanMessage{
		Sender:   "Clan Bot",
		Message:  line,
		ClanName: "Iron Forge",
	}
}

func TestHandleUnknownIsNoOp(t *testing.T) {
	result := newTestHandler().Handle(context.Background(), msg("gg wp"), Policy{}, Enrichment{})

	assert.Equal(t, KindUnknown, result.Kind)
	assert.Nil(t, result.Notification)
	assert.Nil(t, result.DropLog)
	assert.Empty(t, result.Jobs)
	assert.Empty(t, result.Suppressed)
}

func TestHandleItemDrop(t *testing.T) {
	line := "KANlEL OUTIS received a drop: 587 x Cannonball (111,530 coins) from Elf."

	t.Run("open policy notifies and logs", func(t *testing.T) {
		result := newTestHandler().Handle(context.Background(), msg(line), Policy{}, Enrichment{})

		assert.Equal(t, KindItemDrop, result.Kind)
		require.NotNil(t, result.Notification)
		assert.Equal(t, "KANlEL OUTIS received a drop: 587 x Cannonball (111,530 coins).", result.Notification.Message)
		assert.Equal(t, "KANlEL OUTIS", result.Notification.Player)
		require.NotNil(t, result.DropLog)
		assert.Equal(t, "Cannonball", result.DropLog.Drop.ItemName)
	})

	t.Run("value below threshold suppresses but still logs", func(t *testing.T) {
		threshold := int64(500000)
		result := newTestHandler().Handle(context.Background(), msg(line), Policy{DropValueThreshold: &threshold}, Enrichment{})

		assert.Nil(t, result.Notification)
		assert.Equal(t, GateThreshold, result.Suppressed)
		require.NotNil(t, result.DropLog)
	})

	t.Run("value at threshold passes", func(t *testing.T) {
		threshold := int64(111530)
		result := newTestHandler().Handle(context.Background(), msg(line), Policy{DropValueThreshold: &threshold}, Enrichment{})

		assert.NotNil(t, result.Notification)
		assert.Empty(t, result.Suppressed)
	})

	t.Run("absent value passes any threshold", func(t *testing.T) {
		threshold := int64(1000000)
		result := newTestHandler().Handle(context.Background(),
			msg("Med iocre received a drop: Clue scroll (beginner)."),
			Policy{DropValueThreshold: &threshold}, Enrichment{})

		assert.NotNil(t, result.Notification)
		assert.Empty(t, result.Suppressed)
	})

	t.Run("disallowed kind suppresses first", func(t *testing.T) {
		result := newTestHandler().Handle(context.Background(), msg(line),
			Policy{DisallowedKinds: []Kind{KindItemDrop}}, Enrichment{})

		assert.Nil(t, result.Notification)
		assert.Equal(t, GateDisallowed, result.Suppressed)
		assert.NotNil(t, result.DropLog)
	})

	t.Run("keyword filter matches rendered message", func(t *testing.T) {
		result := newTestHandler().Handle(context.Background(), msg(line), Policy{
			KeywordFilters: map[string][]string{
				KindItemDrop.Slug(): {"Cannonball"},
			},
		}, Enrichment{})

		assert.Nil(t, result.Notification)
		assert.Equal(t, GateKeyword, result.Suppressed)
	})

	t.Run("keyword filter is case sensitive", func(t *testing.T) {
		result := newTestHandler().Handle(context.Background(), msg(line), Policy{
			KeywordFilters: map[string][]string{
				KindItemDrop.Slug(): {"cannonball"},
			},
		}, Enrichment{})

		assert.NotNil(t, result.Notification)
	})

	t.Run("leagues world skips the drop log", func(t *testing.T) {
		leagueMsg := msg(line)
		leagueMsg.LeaguesWorld = true
		result := newTestHandler().Handle(context.Background(), leagueMsg, Policy{}, Enrichment{})

		assert.Nil(t, result.DropLog)
		require.NotNil(t, result.Notification)
		assert.Contains(t, result.Notification.Title, "(Leagues)")
	})

	t.Run("classified but unextractable line reports failure", func(t *testing.T) {
		result := newTestHandler().Handle(context.Background(),
			msg("received a drop:"), Policy{}, Enrichment{})

		assert.True(t, result.ExtractionFailed)
		assert.Nil(t, result.Notification)
	})
}

func TestHandleRaidDrop(t *testing.T) {
	line := "RuneScape Player received special loot from a raid: Twisted buckler."

	t.Run("price backfill from enrichment", func(t *testing.T) {
		enrich := Enrichment{
			ItemIDs: map[string]int64{"Twisted buckler": 21000},
			PriceByID: func(_ context.Context, id int64) (int64, bool) {
				require.Equal(t, int64(21000), id)
				return 9042106, true
			},
		}

		result := newTestHandler().Handle(context.Background(), msg(line), Policy{}, enrich)

		require.NotNil(t, result.Notification)
		assert.Equal(t, "RuneScape Player received special loot from a raid: Twisted buckler (9,042,106 coins).", result.Notification.Message)
		require.NotNil(t, result.Notification.Quantity)
		assert.Equal(t, int64(9042106), *result.Notification.Quantity)
	})

	t.Run("enrichment failure still notifies without value", func(t *testing.T) {
		enrich := Enrichment{
			ItemIDs: map[string]int64{"Twisted buckler": 21000},
			PriceByID: func(_ context.Context, _ int64) (int64, bool) {
				return 0, false
			},
		}

		result := newTestHandler().Handle(context.Background(), msg(line), Policy{}, enrich)

		require.NotNil(t, result.Notification)
		assert.Equal(t, "RuneScape Player received special loot from a raid: Twisted buckler.", result.Notification.Message)
		assert.Nil(t, result.Notification.Quantity)
	})

	t.Run("unpriced raid drop passes the threshold", func(t *testing.T) {
		threshold := int64(50000000)
		result := newTestHandler().Handle(context.Background(), msg(line),
			Policy{DropValueThreshold: &threshold}, Enrichment{})

		assert.NotNil(t, result.Notification)
		assert.Empty(t, result.Suppressed)
	})

	t.Run("backfilled price below threshold suppresses", func(t *testing.T) {
		threshold := int64(50000000)
		enrich := Enrichment{
			ItemIDs: map[string]int64{"Twisted buckler": 21000},
			PriceByID: func(_ context.Context, _ int64) (int64, bool) {
				return 9042106, true
			},
		}

		result := newTestHandler().Handle(context.Background(), msg(line),
			Policy{DropValueThreshold: &threshold}, enrich)

		assert.Nil(t, result.Notification)
		assert.Equal(t, GateThreshold, result.Suppressed)
		require.NotNil(t, result.DropLog)
		require.NotNil(t, result.DropLog.Drop.Value)
	})
}

func TestHandleQuest(t *testing.T) {
	line := "Zillamanjaro has completed a quest: Sins of the Father"

	t.Run("no minimum notifies without lookup", func(t *testing.T) {
		result := newTestHandler().Handle(context.Background(), msg(line), Policy{}, Enrichment{})
		assert.NotNil(t, result.Notification)
	})

	t.Run("difficulty at minimum passes", func(t *testing.T) {
		min := QuestMaster
		enrich := Enrichment{QuestDifficulties: map[string]QuestDifficulty{
			"Sins of the Father": QuestMaster,
		}}

		result := newTestHandler().Handle(context.Background(), msg(line), Policy{MinQuestDifficulty: &min}, enrich)
		assert.NotNil(t, result.Notification)
	})

	t.Run("difficulty below minimum suppresses", func(t *testing.T) {
		min := QuestGrandmaster
		enrich := Enrichment{QuestDifficulties: map[string]QuestDifficulty{
			"Sins of the Father": QuestMaster,
		}}

		result := newTestHandler().Handle(context.Background(), msg(line), Policy{MinQuestDifficulty: &min}, enrich)
		assert.Nil(t, result.Notification)
		assert.Equal(t, GateTier, result.Suppressed)
	})

	t.Run("unresolvable difficulty fails closed when minimum set", func(t *testing.T) {
		min := QuestNovice
		result := newTestHandler().Handle(context.Background(), msg(line), Policy{MinQuestDifficulty: &min}, Enrichment{})

		assert.Nil(t, result.Notification)
		assert.Equal(t, GateFailClosed, result.Suppressed)
	})
}

func TestHandleDiary(t *testing.T) {
	line := "Sad Bug has completed the Medium Ardougne diary."

	minTier := DiaryHard
	result := newTestHandler().Handle(context.Background(), msg(line), Policy{MinDiaryTier: &minTier}, Enrichment{})
	assert.Nil(t, result.Notification)
	assert.Equal(t, GateTier, result.Suppressed)

	minTier = DiaryMedium
	result = newTestHandler().Handle(context.Background(), msg(line), Policy{MinDiaryTier: &minTier}, Enrichment{})
	assert.NotNil(t, result.Notification)
}

func TestHandlePk(t *testing.T) {
	line := "KANlEL OUTIS has been defeated by Veljenpojat in The Wilderness and lost (953,005 coins) worth of loot."

	t.Run("clan mate identified as loser", func(t *testing.T) {
		result := newTestHandler().Handle(context.Background(), msg(line), Policy{}, Enrichment{})

		require.NotNil(t, result.Notification)
		assert.Equal(t, "KANlEL OUTIS", result.Notification.Player)
		require.NotNil(t, result.Notification.Quantity)
		assert.Equal(t, int64(953005), *result.Notification.Quantity)
	})

	t.Run("pk threshold uses its own gate", func(t *testing.T) {
		threshold := int64(1000000)
		result := newTestHandler().Handle(context.Background(), msg(line), Policy{PkValueThreshold: &threshold}, Enrichment{})

		assert.Nil(t, result.Notification)
		assert.Equal(t, GateThreshold, result.Suppressed)
	})

	t.Run("fight without loot value ignores the threshold", func(t *testing.T) {
		threshold := int64(1000000)
		result := newTestHandler().Handle(context.Background(),
			msg("KANlEL OUTIS has been defeated by Emperor KB in The Wilderness."),
			Policy{PkValueThreshold: &threshold}, Enrichment{})

		assert.NotNil(t, result.Notification)
	})
}

func TestHandleMembershipJobs(t *testing.T) {
	t.Run("departure enqueues roster removal", func(t *testing.T) {
		result := newTestHandler().Handle(context.Background(),
			msg("Some Player has left the clan."), Policy{}, Enrichment{})

		require.Len(t, result.Jobs, 1)
		assert.Equal(t, JobRemoveClanMate, result.Jobs[0].Type)
		assert.Equal(t, "Some Player", result.Jobs[0].Player)
		assert.NotNil(t, result.Notification)
	})

	t.Run("suppressed expulsion still enqueues removal", func(t *testing.T) {
		result := newTestHandler().Handle(context.Background(),
			msg("Some Player has been expelled from the clan by Deputy Bob."),
			Policy{DisallowedKinds: []Kind{KindExpelledFromClan}}, Enrichment{})

		assert.Nil(t, result.Notification)
		assert.Equal(t, GateDisallowed, result.Suppressed)
		require.Len(t, result.Jobs, 1)
		assert.Equal(t, JobRemoveClanMate, result.Jobs[0].Type)
	})

	t.Run("invite enqueues roster upsert", func(t *testing.T) {
		result := newTestHandler().Handle(context.Background(),
			msg("Op Rausta has been invited into the clan by IRuneNaked."), Policy{}, Enrichment{})

		require.Len(t, result.Jobs, 1)
		assert.Equal(t, JobUpsertClanMate, result.Jobs[0].Type)
		assert.Equal(t, "Op Rausta", result.Jobs[0].Player)
	})
}

func TestHandlePersonalBest(t *testing.T) {
	result := newTestHandler().Handle(context.Background(),
		msg("Speedy has achieved a new Chambers of Xeric personal best: 14:56"), Policy{}, Enrichment{})

	require.NotNil(t, result.Notification)
	require.Len(t, result.Jobs, 1)
	assert.Equal(t, JobRecordPersonalBest, result.Jobs[0].Type)
	assert.Equal(t, "Chambers of Xeric", result.Jobs[0].Activity)
	assert.InDelta(t, 896, result.Jobs[0].TimeSeconds, 0.001)
}

func TestHandleCollectionLog(t *testing.T) {
	line := "KANlEL OUTIS received a new collection log item: Elder maul (1,112/1,477)"

	t.Run("total update job and notification", func(t *testing.T) {
		result := newTestHandler().Handle(context.Background(), msg(line), Policy{}, Enrichment{})

		require.NotNil(t, result.Notification)
		require.Len(t, result.Jobs, 1)
		assert.Equal(t, JobUpdateCollectionLogTotal, result.Jobs[0].Type)
		assert.Equal(t, int64(1112), result.Jobs[0].Total)
	})

	t.Run("completion above the percentage cap suppresses", func(t *testing.T) {
		maxPct := 50.0
		result := newTestHandler().Handle(context.Background(), msg(line), Policy{ClogMaxPercentage: &maxPct}, Enrichment{})

		assert.Nil(t, result.Notification)
		assert.Equal(t, GatePercentage, result.Suppressed)
		require.Len(t, result.Jobs, 1)
	})
}

func TestHandleCoffer(t *testing.T) {
	result := newTestHandler().Handle(context.Background(),
		msg("Generous One has deposited 1,000,000 coins into the coffer."), Policy{}, Enrichment{})

	assert.Equal(t, KindCofferDonation, result.Kind)
	require.NotNil(t, result.Notification)
	require.NotNil(t, result.Notification.Quantity)
	assert.Equal(t, int64(1000000), *result.Notification.Quantity)

	result = newTestHandler().Handle(context.Background(),
		msg("Broke One has withdrawn 500,000 coins from the coffer."), Policy{}, Enrichment{})
	assert.Equal(t, KindCofferWithdrawal, result.Kind)
	assert.NotNil(t, result.Notification)
}

func TestHandleLootKey(t *testing.T) {
	line := "Wildy King has opened a loot key worth 1,148,040 coins!"

	threshold := int64(2000000)
	result := newTestHandler().Handle(context.Background(), msg(line), Policy{DropValueThreshold: &threshold}, Enrichment{})
	assert.Nil(t, result.Notification)
	assert.Equal(t, GateThreshold, result.Suppressed)

	threshold = int64(1000000)
	result = newTestHandler().Handle(context.Background(), msg(line), Policy{DropValueThreshold: &threshold}, Enrichment{})
	require.NotNil(t, result.Notification)
	require.NotNil(t, result.Notification.Quantity)
	assert.Equal(t, int64(1148040), *result.Notification.Quantity)
}
