package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"herald/internal/broadcast"
	"herald/internal/config"
	"herald/internal/droplog"
	"herald/internal/guild"
	"herald/internal/logger"
	"herald/pkg/errors"
	"herald/pkg/models"
)

type stubGuildRepo struct {
	guild.Repository

	guilds map[uint64]*guild.RegisteredGuild
}

func (s *stubGuildRepo) GetByGuildID(ctx context.Context, guildID uint64) (*guild.RegisteredGuild, error) {
	return s.guilds[guildID], nil
}

type stubDrops struct {
	droplog.Repository

	drops      []broadcast.DropItem
	broadcasts []broadcast.Notification
}

func (s *stubDrops) RecordDrop(ctx context.Context, guildID uint64, kind broadcast.Kind, drop broadcast.DropItem) error {
	s.drops = append(s.drops, drop)
	return nil
}

func (s *stubDrops) RecordBroadcast(ctx context.Context, guildID uint64, n broadcast.Notification) error {
	s.broadcasts = append(s.broadcasts, n)
	return nil
}

type published struct {
	topic string
	env   models.MessageEnvelope
}

type stubProducer struct {
	messages []published
}

func (s *stubProducer) Publish(ctx context.Context, topic string, msg models.MessageEnvelope) error {
	s.messages = append(s.messages, published{topic: topic, env: msg})
	return nil
}

func (s *stubProducer) Close() error { return nil }

type stubEnricher struct{}

func (stubEnricher) Snapshot(ctx context.Context) broadcast.Enrichment {
	return broadcast.Enrichment{}
}

func kafkaTopics() config.KafkaConfig {
	return config.KafkaConfig{
		NotificationTopic: "broadcast_notifications",
		JobsTopic:         "herald_jobs",
	}
}

func newTestPipeline(t *testing.T, registered *guild.RegisteredGuild) (*Pipeline, *stubDrops, *stubProducer) {
	t.Helper()

	repo := &stubGuildRepo{guilds: map[uint64]*guild.RegisteredGuild{}}
	if registered != nil {
		repo.guilds[registered.GuildID] = registered
	}
	guilds := guild.NewService(repo, time.Minute, logger.NopLogger())
	drops := &stubDrops{}
	producer := &stubProducer{}

	p := New(
		guilds,
		broadcast.NewHandler(logger.NopLogger()),
		stubEnricher{},
		drops,
		producer,
		kafkaTopics(),
		logger.NopLogger(),
	)
	return p, drops, producer
}

func envelope(t *testing.T, guildID uint64, line string, leagues bool) models.MessageEnvelope {
	t.Helper()
	env, err := models.NewEnvelope("chat-ingest", guildID, broadcast.ClanMessage{
		Sender:       "KANlEL OUTIS",
		Message:      line,
		ClanName:     "Insomniacs",
		LeaguesWorld: leagues,
	})
	require.NoError(t, err)
	return env
}

func TestPipelinePublishesNotificationAndDropLog(t *testing.T) {
	g := guild.NewRegisteredGuild(42)
	p, drops, producer := newTestPipeline(t, g)

	err := p.HandleEnvelope(context.Background(),
		envelope(t, 42, "KANlEL OUTIS received a drop: 587 x Cannonball (111,530 coins) from Elf.", false))
	require.NoError(t, err)

	require.Len(t, drops.drops, 1)
	assert.Equal(t, "Cannonball", drops.drops[0].ItemName)
	require.Len(t, drops.broadcasts, 1)

	require.Len(t, producer.messages, 1)
	assert.Equal(t, "broadcast_notifications", producer.messages[0].topic)
	assert.Equal(t, uint64(42), producer.messages[0].env.GuildID)

	var n broadcast.Notification
	require.NoError(t, producer.messages[0].env.DecodePayload(&n))
	assert.Equal(t, broadcast.KindItemDrop, n.Kind)
	assert.Equal(t, "KANlEL OUTIS", n.Player)
}

func TestPipelineSuppressedStillEnqueuesJobs(t *testing.T) {
	g := guild.NewRegisteredGuild(42)
	g.DisallowedBroadcastTypes = []broadcast.Kind{broadcast.KindExpelledFromClan}
	p, drops, producer := newTestPipeline(t, g)

	err := p.HandleEnvelope(context.Background(),
		envelope(t, 42, "Some Player has been expelled from the clan by Deputy Bob.", false))
	require.NoError(t, err)

	assert.Empty(t, drops.broadcasts)
	require.Len(t, producer.messages, 1, "the roster job still goes out")
	assert.Equal(t, "herald_jobs", producer.messages[0].topic)

	var job broadcast.JobRequest
	require.NoError(t, producer.messages[0].env.DecodePayload(&job))
	assert.Equal(t, broadcast.JobRemoveClanMate, job.Type)
	assert.Equal(t, "Some Player", job.Player)
}

func TestPipelineDropsUnregisteredGuild(t *testing.T) {
	p, drops, producer := newTestPipeline(t, nil)

	err := p.HandleEnvelope(context.Background(),
		envelope(t, 99, "KANlEL OUTIS received a drop: Twisted bow (1,456,814,000 coins).", false))
	require.NoError(t, err)

	assert.Empty(t, drops.drops)
	assert.Empty(t, producer.messages)
}

func TestPipelineIgnoresPlainChatter(t *testing.T) {
	g := guild.NewRegisteredGuild(42)
	p, drops, producer := newTestPipeline(t, g)

	err := p.HandleEnvelope(context.Background(), envelope(t, 42, "gg wp", false))
	require.NoError(t, err)

	assert.Empty(t, drops.drops)
	assert.Empty(t, producer.messages)
}

func TestPipelineLeaguesLineSkipsDropLog(t *testing.T) {
	g := guild.NewRegisteredGuild(42)
	g.LeaguesBroadcastChannel = 777
	p, drops, producer := newTestPipeline(t, g)

	err := p.HandleEnvelope(context.Background(),
		envelope(t, 42, "KANlEL OUTIS received a drop: Twisted bow (1,456,814,000 coins).", true))
	require.NoError(t, err)

	assert.Empty(t, drops.drops, "leagues lines never reach the drop log")
	require.Len(t, producer.messages, 1)

	var n broadcast.Notification
	require.NoError(t, producer.messages[0].env.DecodePayload(&n))
	assert.Contains(t, n.Title, "(Leagues)")
}

func TestPipelineRejectsMissingGuildID(t *testing.T) {
	p, _, _ := newTestPipeline(t, nil)

	err := p.HandleEnvelope(context.Background(), envelope(t, 0, "gg wp", false))
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}
