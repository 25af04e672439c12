package guild

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"herald/internal/broadcast"
	"herald/internal/logger"
)

type stubRepository struct {
	Repository
	guild *RegisteredGuild
	err   error
	calls int
}

func (s *stubRepository) GetByGuildID(_ context.Context, _ uint64) (*RegisteredGuild, error) {
	s.calls++
	return s.guild, s.err
}

func TestPolicyForCachesSnapshots(t *testing.T) {
	threshold := int64(100000)
	repo := &stubRepository{guild: &RegisteredGuild{
		GuildID:            42,
		DropPriceThreshold: &threshold,
	}}
	svc := NewService(repo, time.Minute, logger.NopLogger())

	g, policy, err := svc.PolicyFor(context.Background(), 42)
	require.NoError(t, err)
	require.NotNil(t, g)
	require.NotNil(t, policy.DropValueThreshold)
	assert.Equal(t, threshold, *policy.DropValueThreshold)

	_, _, err = svc.PolicyFor(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.calls)
}

func TestPolicyForInvalidate(t *testing.T) {
	repo := &stubRepository{guild: &RegisteredGuild{GuildID: 42}}
	svc := NewService(repo, time.Minute, logger.NopLogger())

	_, _, err := svc.PolicyFor(context.Background(), 42)
	require.NoError(t, err)

	svc.Invalidate(42)

	_, _, err = svc.PolicyFor(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.calls)
}

func TestPolicyForServesStaleOnError(t *testing.T) {
	repo := &stubRepository{guild: &RegisteredGuild{GuildID: 42}}
	svc := NewService(repo, time.Nanosecond, logger.NopLogger())

	_, _, err := svc.PolicyFor(context.Background(), 42)
	require.NoError(t, err)

	time.Sleep(time.Millisecond)
	repo.err = errors.New("mongo unavailable")
	repo.guild = nil

	g, _, err := svc.PolicyFor(context.Background(), 42)
	require.NoError(t, err)
	assert.NotNil(t, g)
}

func TestPolicyForUnregisteredGuild(t *testing.T) {
	repo := &stubRepository{}
	svc := NewService(repo, time.Minute, logger.NopLogger())

	g, policy, err := svc.PolicyFor(context.Background(), 7)
	require.NoError(t, err)
	assert.Nil(t, g)
	assert.Empty(t, policy.DisallowedKinds)
}

func TestGenerateVerificationCode(t *testing.T) {
	code := GenerateVerificationCode()
	require.Len(t, code, 11)
	assert.Equal(t, byte('-'), code[3])
	assert.Equal(t, byte('-'), code[7])

	for i, ch := range code {
		if i == 3 || i == 7 {
			continue
		}
		assert.GreaterOrEqual(t, ch, '0')
		assert.LessOrEqual(t, ch, '9')
	}

	assert.NotEqual(t, code, GenerateVerificationCode())
}

func TestPolicyProjection(t *testing.T) {
	tier := broadcast.DiaryHard
	g := &RegisteredGuild{
		GuildID:                 42,
		LeaguesBroadcastChannel: 9999,
		MinDiaryTier:            &tier,
		DisallowedBroadcastTypes: []broadcast.Kind{
			broadcast.KindPk,
		},
		CustomFilters: map[string][]string{
			broadcast.KindItemDrop.Slug(): {"Cannonball"},
		},
	}

	policy := g.Policy()
	assert.True(t, policy.IsDisallowed(broadcast.KindPk))
	assert.True(t, policy.LeaguesEnabled)
	require.NotNil(t, policy.MinDiaryTier)
	assert.Equal(t, broadcast.DiaryHard, *policy.MinDiaryTier)
	assert.Equal(t, []string{"Cannonball"}, policy.KeywordsFor(broadcast.KindItemDrop))
}
