package pipeline

import (
	"context"
	"time"

	"herald/internal/broadcast"
	"herald/internal/broker"
	"herald/internal/config"
	"herald/internal/droplog"
	"herald/internal/enrichment"
	"herald/internal/guild"
	"herald/internal/logger"
	"herald/pkg/errors"
	"herald/pkg/metrics"
	"herald/pkg/models"
)

const sourceName = "broadcast-service"

// Enricher provides the lookup snapshot handed to the broadcast handler.
type Enricher interface {
	Snapshot(ctx context.Context) broadcast.Enrichment
}

// Pipeline consumes raw clan chat envelopes and drives one line through
// classification, policy evaluation, persistence, and fan-out.
type Pipeline struct {
	guilds     *guild.Service
	handler    *broadcast.Handler
	enricher   Enricher
	drops      droplog.Repository
	producer   broker.Producer
	kafka      config.KafkaConfig
	logger     logger.Logger
}

var _ Enricher = (*enrichment.Service)(nil)

func New(
	guilds *guild.Service,
	handler *broadcast.Handler,
	enricher Enricher,
	drops droplog.Repository,
	producer broker.Producer,
	kafka config.KafkaConfig,
	log logger.Logger,
) *Pipeline {
	return &Pipeline{
		guilds:   guilds,
		handler:  handler,
		enricher: enricher,
		drops:    drops,
		producer: producer,
		kafka:    kafka,
		logger:   log,
	}
}

// HandleEnvelope is the broker consumer entrypoint for the clan chat topic.
func (p *Pipeline) HandleEnvelope(ctx context.Context, msg models.MessageEnvelope) error {
	start := time.Now()

	status, err := p.process(ctx, msg)

	metrics.BroadcastMessagesTotal.WithLabelValues(status).Inc()
	metrics.ObserveProcessingDuration(time.Since(start), status)
	return err
}

func (p *Pipeline) process(ctx context.Context, msg models.MessageEnvelope) (string, error) {
	var line broadcast.ClanMessage
	if err := msg.DecodePayload(&line); err != nil {
		return "decode_error", errors.ErrValidation.WithCause(err).WithDetail("message_id", msg.ID).AsFatal()
	}
	if msg.GuildID == 0 {
		return "decode_error", errors.ErrValidation.WithDetail("reason", "missing guild id").AsFatal()
	}

	registered, policy, err := p.guilds.PolicyFor(ctx, msg.GuildID)
	if err != nil {
		return "policy_error", err
	}
	if registered == nil {
		p.logger.DebugwCtx(ctx, "Dropping line for unregistered guild",
			"guild_id", msg.GuildID)
		return "unregistered", nil
	}

	result := p.handler.Handle(ctx, line, policy, p.enricher.Snapshot(ctx))
	metrics.BroadcastClassifiedTotal.WithLabelValues(result.Kind.Slug()).Inc()

	if result.ExtractionFailed {
		metrics.BroadcastExtractionFailures.WithLabelValues(result.Kind.Slug()).Inc()
		// The line matched a kind but not its extractor. Redelivery
		// cannot fix a malformed line, so it is dropped here.
		return "extraction_failed", nil
	}

	if result.DropLog != nil {
		if err := p.drops.RecordDrop(ctx, msg.GuildID, result.DropLog.Kind, result.DropLog.Drop); err != nil {
			return "store_error", err
		}
	}

	// Roster and record jobs fire even when the notification is
	// suppressed. Suppression silences the channel, not the bookkeeping.
	for _, job := range result.Jobs {
		if err := p.enqueueJob(ctx, msg.GuildID, job); err != nil {
			return "publish_error", err
		}
	}

	if result.Suppressed != "" {
		metrics.BroadcastSuppressedTotal.WithLabelValues(result.Kind.Slug(), result.Suppressed).Inc()
		p.logger.DebugwCtx(ctx, "Notification suppressed by guild policy",
			"guild_id", msg.GuildID,
			"kind", result.Kind.Slug(),
			"gate", result.Suppressed)
		return "suppressed", nil
	}

	if result.Notification == nil {
		return "unclassified", nil
	}

	if err := p.drops.RecordBroadcast(ctx, msg.GuildID, *result.Notification); err != nil {
		return "store_error", err
	}

	env, err := models.NewEnvelope(sourceName, msg.GuildID, result.Notification)
	if err != nil {
		return "publish_error", err
	}
	env.Metadata.Kind = result.Kind.Slug()

	if err := p.producer.Publish(ctx, p.kafka.NotificationTopic, env); err != nil {
		return "publish_error", err
	}
	metrics.NotificationsPublishedTotal.WithLabelValues(result.Kind.Slug()).Inc()

	p.logger.InfowCtx(ctx, "Published broadcast notification",
		"guild_id", msg.GuildID,
		"kind", result.Kind.Slug(),
		"player", result.Notification.Player)
	return "published", nil
}

func (p *Pipeline) enqueueJob(ctx context.Context, guildID uint64, job broadcast.JobRequest) error {
	env, err := models.NewEnvelope(sourceName, guildID, job)
	if err != nil {
		return err
	}
	env.Metadata.Kind = string(job.Type)

	if err := p.producer.Publish(ctx, p.kafka.JobsTopic, env); err != nil {
		return err
	}
	metrics.JobsEnqueuedTotal.WithLabelValues(string(job.Type)).Inc()
	return nil
}
