package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"herald/internal/broadcast"
	"herald/internal/guild"
	"herald/pkg/errors"
)

func strPtr(s string) *string       { return &s }
func i64Ptr(v int64) *int64         { return &v }
func f64Ptr(v float64) *float64     { return &v }
func slicePtr(v []string) *[]string { return &v }

func TestApplyPolicyUpdateSetsFields(t *testing.T) {
	g := guild.NewRegisteredGuild(42)

	err := applyPolicyUpdate(g, UpdatePolicyRequest{
		DropPriceThreshold:       i64Ptr(2500000),
		MinQuestDifficulty:       strPtr("master"),
		MinDiaryTier:             strPtr("Elite"),
		ClogMaxPercentage:        f64Ptr(90),
		DisallowedBroadcastTypes: slicePtr([]string{"Invite", "Left_Clan"}),
	})
	require.NoError(t, err)

	require.NotNil(t, g.DropPriceThreshold)
	assert.Equal(t, int64(2500000), *g.DropPriceThreshold)
	require.NotNil(t, g.MinQuestDifficulty)
	assert.Equal(t, broadcast.QuestMaster, *g.MinQuestDifficulty)
	require.NotNil(t, g.MinDiaryTier)
	assert.Equal(t, broadcast.DiaryElite, *g.MinDiaryTier)
	assert.Equal(t, []broadcast.Kind{broadcast.KindInvite, broadcast.KindLeftClan}, g.DisallowedBroadcastTypes)
}

func TestApplyPolicyUpdateClearsThresholdOnZero(t *testing.T) {
	g := guild.NewRegisteredGuild(42)
	g.DropPriceThreshold = i64Ptr(500000)

	require.NoError(t, applyPolicyUpdate(g, UpdatePolicyRequest{DropPriceThreshold: i64Ptr(0)}))
	assert.Nil(t, g.DropPriceThreshold)
}

func TestApplyPolicyUpdateRejectsUnknownDifficulty(t *testing.T) {
	g := guild.NewRegisteredGuild(42)

	err := applyPolicyUpdate(g, UpdatePolicyRequest{MinQuestDifficulty: strPtr("mythic")})
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestApplyPolicyUpdateRejectsUnknownKindSlug(t *testing.T) {
	g := guild.NewRegisteredGuild(42)

	err := applyPolicyUpdate(g, UpdatePolicyRequest{
		DisallowedBroadcastTypes: slicePtr([]string{"Not_A_Kind"}),
	})
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestApplyPolicyUpdateValidatesFilterKinds(t *testing.T) {
	g := guild.NewRegisteredGuild(42)

	filters := map[string][]string{"Item_Drop": {"Twisted bow"}}
	require.NoError(t, applyPolicyUpdate(g, UpdatePolicyRequest{CustomFilters: &filters}))
	assert.Equal(t, filters, g.CustomFilters)

	bad := map[string][]string{"Nope": {"x"}}
	err := applyPolicyUpdate(g, UpdatePolicyRequest{CustomFilters: &bad})
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestApplyPolicyUpdateValidatesChannelOverrides(t *testing.T) {
	g := guild.NewRegisteredGuild(42)

	overrides := map[string]uint64{"Pet_Drop": 1234567890}
	require.NoError(t, applyPolicyUpdate(g, UpdatePolicyRequest{KindChannelOverrides: &overrides}))
	assert.Equal(t, overrides, g.KindChannelOverrides)

	bad := map[string]uint64{"No_Such_Kind": 1}
	err := applyPolicyUpdate(g, UpdatePolicyRequest{KindChannelOverrides: &bad})
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestApplyPolicyUpdateWomID(t *testing.T) {
	g := guild.NewRegisteredGuild(42)

	require.NoError(t, applyPolicyUpdate(g, UpdatePolicyRequest{WomID: i64Ptr(9031)}))
	require.NotNil(t, g.WomID)
	assert.Equal(t, int64(9031), *g.WomID)

	require.NoError(t, applyPolicyUpdate(g, UpdatePolicyRequest{WomID: i64Ptr(0)}))
	assert.Nil(t, g.WomID)
}
