package broadcast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractItemDrop(t *testing.T) {
	t.Run("full line with quantity value and source", func(t *testing.T) {
		drop := ExtractItemDrop("KANlEL OUTIS received a drop: 587 x Cannonball (111,530 coins) from Elf.")
		require.NotNil(t, drop)
		assert.Equal(t, "KANlEL OUTIS", drop.Player)
		assert.Equal(t, "Cannonball", drop.ItemName)
		assert.Equal(t, int64(587), drop.Quantity)
		require.NotNil(t, drop.Value)
		assert.Equal(t, int64(111530), *drop.Value)
		assert.Equal(t, "Elf", drop.Source)
	})

	t.Run("single item without quantity token", func(t *testing.T) {
		drop := ExtractItemDrop("Med iocre received a drop: Awakener's orb (553,726 coins) from Duke Sucellus.")
		require.NotNil(t, drop)
		assert.Equal(t, "Awakener's orb", drop.ItemName)
		assert.Equal(t, int64(1), drop.Quantity)
		require.NotNil(t, drop.Value)
		assert.Equal(t, int64(553726), *drop.Value)
	})

	t.Run("no value token", func(t *testing.T) {
		drop := ExtractItemDrop("Med iocre received a drop: Clue scroll (beginner).")
		require.NotNil(t, drop)
		assert.Equal(t, "Clue scroll (beginner)", drop.ItemName)
		assert.Nil(t, drop.Value)
		assert.Empty(t, drop.Source)
	})

	t.Run("literal zero value is not absence", func(t *testing.T) {
		drop := ExtractItemDrop("Player received a drop: Burnt fish (0 coins).")
		require.NotNil(t, drop)
		require.NotNil(t, drop.Value)
		assert.Equal(t, int64(0), *drop.Value)
	})

	t.Run("icon url escapes the item name", func(t *testing.T) {
		drop := ExtractItemDrop("Player received a drop: Tumeken's shadow (uncharged) (1,456,814,000 coins).")
		require.NotNil(t, drop)
		require.NotNil(t, drop.IconURL)
		assert.Equal(t,
			"https://oldschool.runescape.wiki/images/Tumeken%27s_shadow_%28uncharged%29_detail.png",
			*drop.IconURL)
	})

	t.Run("non drop line", func(t *testing.T) {
		assert.Nil(t, ExtractItemDrop("gg wp"))
	})
}

func TestExtractRaidDrop(t *testing.T) {
	drop := ExtractRaidDrop("RuneScape Player received special loot from a raid: Twisted buckler.")
	require.NotNil(t, drop)
	assert.Equal(t, "RuneScape Player", drop.Player)
	assert.Equal(t, "Twisted buckler", drop.ItemName)
	assert.Equal(t, int64(1), drop.Quantity)
	assert.Nil(t, drop.Value)
}

func TestExtractPetDrop(t *testing.T) {
	t.Run("followed phrasing", func(t *testing.T) {
		pet := ExtractPetDrop("Runner boi has a funny feeling like he's being followed: Butch at 194 kills.")
		require.NotNil(t, pet)
		assert.Equal(t, "Runner boi", pet.Player)
		assert.Equal(t, "Butch", pet.PetName)
		assert.Equal(t, "194 kills", pet.Milestone)
	})

	t.Run("backpack phrasing", func(t *testing.T) {
		pet := ExtractPetDrop("Sad Bug feels something weird sneaking into her backpack: Abyssal protector at 543 rift searches.")
		require.NotNil(t, pet)
		assert.Equal(t, "Sad Bug", pet.Player)
		assert.Equal(t, "Abyssal protector", pet.PetName)
		assert.Equal(t, "543 rift searches", pet.Milestone)
	})
}

func TestExtractQuestCompletion(t *testing.T) {
	quest := ExtractQuestCompletion("Zillamanjaro has completed a quest: Sins of the Father")
	require.NotNil(t, quest)
	assert.Equal(t, "Zillamanjaro", quest.Player)
	assert.Equal(t, "Sins of the Father", quest.QuestName)
}

func TestExtractDiaryCompletion(t *testing.T) {
	diary := ExtractDiaryCompletion("Sad Bug has completed the Elite Ardougne diary.")
	require.NotNil(t, diary)
	assert.Equal(t, "Sad Bug", diary.Player)
	assert.Equal(t, "Ardougne", diary.DiaryName)
	assert.Equal(t, DiaryElite, diary.Tier)
}

func TestExtractPkEvent(t *testing.T) {
	t.Run("clan mate lost with loot", func(t *testing.T) {
		pk := ExtractPkEvent("KANlEL OUTIS has been defeated by Veljenpojat in The Wilderness and lost (953,005 coins) worth of loot.")
		require.NotNil(t, pk)
		assert.Equal(t, "Veljenpojat", pk.Winner)
		assert.Equal(t, "KANlEL OUTIS", pk.Loser)
		assert.Equal(t, "KANlEL OUTIS", pk.ClanMate)
		assert.False(t, pk.ClanMateWon)
		require.NotNil(t, pk.GpExchanged)
		assert.Equal(t, int64(953005), *pk.GpExchanged)
	})

	t.Run("clan mate lost without loot", func(t *testing.T) {
		pk := ExtractPkEvent("KANlEL OUTIS has been defeated by Emperor KB in The Wilderness.")
		require.NotNil(t, pk)
		assert.Equal(t, "KANlEL OUTIS", pk.ClanMate)
		assert.Nil(t, pk.GpExchanged)
	})

	t.Run("clan mate won", func(t *testing.T) {
		pk := ExtractPkEvent("Victor has defeated Hanlonmike and received (235,082 coins) worth of loot!")
		require.NotNil(t, pk)
		assert.Equal(t, "Victor", pk.Winner)
		assert.Equal(t, "Hanlonmike", pk.Loser)
		assert.Equal(t, "Victor", pk.ClanMate)
		assert.True(t, pk.ClanMateWon)
		require.NotNil(t, pk.GpExchanged)
		assert.Equal(t, int64(235082), *pk.GpExchanged)
	})
}

func TestExtractMembershipChanges(t *testing.T) {
	invite := ExtractInvite("Op Rausta has been invited into the clan by IRuneNaked.")
	require.NotNil(t, invite)
	assert.Equal(t, "Op Rausta", invite.NewMember)
	assert.Equal(t, "IRuneNaked", invite.Inviter)

	left := ExtractLeftClan("Some Player has left the clan.")
	require.NotNil(t, left)
	assert.Equal(t, "Some Player", left.Player)
	assert.False(t, left.Expelled)

	expelled := ExtractExpelled("Some Player has been expelled from the clan by Deputy Bob.")
	require.NotNil(t, expelled)
	assert.Equal(t, "Some Player", expelled.Player)
	assert.True(t, expelled.Expelled)

	expelledNoActor := ExtractExpelled("Some Player has been expelled from the clan.")
	require.NotNil(t, expelledNoActor)
	assert.Equal(t, "Some Player", expelledNoActor.Player)
}

func TestExtractLevelMilestone(t *testing.T) {
	t.Run("ordinary level", func(t *testing.T) {
		m := ExtractLevelMilestone("Noble Five has reached Fishing level 93.")
		require.NotNil(t, m)
		assert.Equal(t, "Noble Five", m.Player)
		assert.Equal(t, "Fishing", m.Skill)
		assert.Equal(t, int64(93), m.Level)
	})

	t.Run("highest possible level", func(t *testing.T) {
		m := ExtractLevelMilestone("Sad Bug has reached the highest possible Slayer level of 99.")
		require.NotNil(t, m)
		assert.Equal(t, "Slayer", m.Skill)
		assert.Equal(t, int64(99), m.Level)
	})

	t.Run("total level", func(t *testing.T) {
		m := ExtractLevelMilestone("Sad Bug has reached a total level of 2,000.")
		require.NotNil(t, m)
		assert.Equal(t, "Total", m.Skill)
		assert.Equal(t, int64(2000), m.Level)
	})
}

func TestExtractXPMilestone(t *testing.T) {
	m := ExtractXPMilestone("Noble Five has reached 78,000,000 XP in Fishing.")
	require.NotNil(t, m)
	assert.Equal(t, "Noble Five", m.Player)
	assert.Equal(t, "Fishing", m.Skill)
	assert.Equal(t, int64(78000000), m.XP)
}

func TestExtractCollectionLog(t *testing.T) {
	entry := ExtractCollectionLog("KANlEL OUTIS received a new collection log item: Elder maul (1,112/1,477)")
	require.NotNil(t, entry)
	assert.Equal(t, "KANlEL OUTIS", entry.Player)
	assert.Equal(t, "Elder maul", entry.ItemName)
	assert.Equal(t, int64(1112), entry.Slot)
	assert.Equal(t, int64(1477), entry.TotalSlots)
	assert.InDelta(t, 75.287, entry.Percentage(), 0.01)
}

func TestExtractCofferTransaction(t *testing.T) {
	deposit := ExtractCofferTransaction("Generous One has deposited 1,000,000 coins into the coffer.")
	require.NotNil(t, deposit)
	assert.Equal(t, "Generous One", deposit.Player)
	assert.Equal(t, int64(1000000), deposit.Gp)
	assert.True(t, deposit.Donation)

	withdrawal := ExtractCofferTransaction("Broke One has withdrawn 500,000 coins from the coffer.")
	require.NotNil(t, withdrawal)
	assert.Equal(t, int64(500000), withdrawal.Gp)
	assert.False(t, withdrawal.Donation)
}

func TestExtractPersonalBest(t *testing.T) {
	tests := []struct {
		name        string
		line        string
		activity    string
		wantSeconds float64
	}{
		{
			name:        "fractional seconds",
			line:        "Speedy has achieved a new Zulrah personal best: 54.60",
			activity:    "Zulrah",
			wantSeconds: 54.60,
		},
		{
			name:        "minutes and seconds",
			line:        "Speedy has achieved a new Chambers of Xeric personal best: 14:56",
			activity:    "Chambers of Xeric",
			wantSeconds: 896,
		},
		{
			name:        "hours minutes seconds",
			line:        "Speedy has achieved a new Inferno personal best: 1:02:45",
			activity:    "Inferno",
			wantSeconds: 3765,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pb := ExtractPersonalBest(tt.line)
			require.NotNil(t, pb)
			assert.Equal(t, "Speedy", pb.Player)
			assert.Equal(t, tt.activity, pb.Activity)
			assert.InDelta(t, tt.wantSeconds, pb.TimeSeconds, 0.001)
		})
	}
}

func TestExtractLootKey(t *testing.T) {
	key := ExtractLootKey("Wildy King has opened a loot key worth 1,148,040 coins!")
	require.NotNil(t, key)
	assert.Equal(t, "Wildy King", key.Player)
	assert.Equal(t, int64(1148040), key.Value)
}
