package jobs

import (
	"context"

	"herald/internal/broadcast"
	"herald/internal/clanmate"
	"herald/internal/logger"
	"herald/internal/pb"
	"herald/pkg/errors"
	"herald/pkg/metrics"
	"herald/pkg/models"
)

// Worker applies side-effect jobs emitted by the broadcast pipeline to the
// document store. Jobs are idempotent upserts, so redelivery after a consumer
// rebalance is safe.
type Worker struct {
	clanMates clanmate.Repository
	records   pb.Repository
	logger    logger.Logger
}

func NewWorker(clanMates clanmate.Repository, records pb.Repository, log logger.Logger) *Worker {
	return &Worker{
		clanMates: clanMates,
		records:   records,
		logger:    log,
	}
}

// HandleEnvelope is the broker consumer entrypoint for the jobs topic.
func (w *Worker) HandleEnvelope(ctx context.Context, msg models.MessageEnvelope) error {
	var job broadcast.JobRequest
	if err := msg.DecodePayload(&job); err != nil {
		metrics.JobsProcessedTotal.WithLabelValues("unknown", "decode_error").Inc()
		return errors.ErrValidation.WithCause(err).WithDetail("message_id", msg.ID).AsFatal()
	}

	if err := w.Process(ctx, msg.GuildID, job); err != nil {
		metrics.JobsProcessedTotal.WithLabelValues(string(job.Type), "error").Inc()
		return err
	}

	metrics.JobsProcessedTotal.WithLabelValues(string(job.Type), "success").Inc()
	return nil
}

func (w *Worker) Process(ctx context.Context, guildID uint64, job broadcast.JobRequest) error {
	if guildID == 0 {
		return errors.ErrValidation.WithDetail("reason", "missing guild id").AsFatal()
	}
	if job.Player == "" {
		return errors.ErrValidation.WithDetail("reason", "missing player name").WithDetail("job_type", string(job.Type)).AsFatal()
	}

	switch job.Type {
	case broadcast.JobRemoveClanMate:
		return w.removeClanMate(ctx, guildID, job)
	case broadcast.JobUpsertClanMate:
		return w.upsertClanMate(ctx, guildID, job)
	case broadcast.JobRenameClanMate:
		return w.renameClanMate(ctx, guildID, job)
	case broadcast.JobRecordPersonalBest:
		return w.recordPersonalBest(ctx, guildID, job)
	case broadcast.JobUpdateCollectionLogTotal:
		return w.updateCollectionLogTotal(ctx, guildID, job)
	default:
		return errors.ErrValidation.WithDetail("job_type", string(job.Type)).AsFatal()
	}
}

func (w *Worker) removeClanMate(ctx context.Context, guildID uint64, job broadcast.JobRequest) error {
	if err := w.clanMates.Remove(ctx, guildID, job.Player); err != nil {
		if errors.IsNotFound(err) {
			w.logger.WarnwCtx(ctx, "Removal job for unknown clan mate",
				"guild_id", guildID,
				"player", job.Player)
			return nil
		}
		return err
	}
	w.logger.InfowCtx(ctx, "Removed clan mate",
		"guild_id", guildID,
		"player", job.Player)
	return nil
}

func (w *Worker) upsertClanMate(ctx context.Context, guildID uint64, job broadcast.JobRequest) error {
	if _, err := w.clanMates.FindOrCreate(ctx, guildID, job.Player); err != nil {
		return err
	}
	if job.Rank != "" {
		if err := w.clanMates.UpdateRank(ctx, guildID, job.Player, job.Rank); err != nil {
			return err
		}
	}
	w.logger.InfowCtx(ctx, "Upserted clan mate",
		"guild_id", guildID,
		"player", job.Player,
		"rank", job.Rank)
	return nil
}

func (w *Worker) renameClanMate(ctx context.Context, guildID uint64, job broadcast.JobRequest) error {
	if job.NewName == "" {
		return errors.ErrValidation.WithDetail("reason", "missing new name").AsFatal()
	}

	if err := w.clanMates.Rename(ctx, guildID, job.Player, job.NewName); err != nil {
		return err
	}
	w.logger.InfowCtx(ctx, "Renamed clan mate",
		"guild_id", guildID,
		"old_name", job.Player,
		"new_name", job.NewName)
	return nil
}

func (w *Worker) recordPersonalBest(ctx context.Context, guildID uint64, job broadcast.JobRequest) error {
	if job.Activity == "" {
		return errors.ErrValidation.WithDetail("reason", "missing activity name").AsFatal()
	}
	if job.TimeSeconds <= 0 {
		return errors.ErrValidation.WithDetail("reason", "non-positive time").WithDetail("time_seconds", job.TimeSeconds).AsFatal()
	}

	mate, err := w.clanMates.FindOrCreate(ctx, guildID, job.Player)
	if err != nil {
		return err
	}
	activity, err := w.records.FindOrCreateActivity(ctx, job.Activity)
	if err != nil {
		return err
	}
	if err := w.records.RecordTime(ctx, mate.ID, activity.ID, job.TimeSeconds); err != nil {
		return err
	}

	w.logger.InfowCtx(ctx, "Recorded personal best",
		"guild_id", guildID,
		"player", job.Player,
		"activity", job.Activity,
		"time_seconds", job.TimeSeconds)
	return nil
}

func (w *Worker) updateCollectionLogTotal(ctx context.Context, guildID uint64, job broadcast.JobRequest) error {
	if job.Total < 0 {
		return errors.ErrValidation.WithDetail("reason", "negative total").AsFatal()
	}

	mate, err := w.clanMates.FindOrCreate(ctx, guildID, job.Player)
	if err != nil {
		return err
	}
	if err := w.clanMates.UpdateCollectionLogTotal(ctx, guildID, mate.ID, job.Total); err != nil {
		return err
	}

	w.logger.InfowCtx(ctx, "Updated collection log total",
		"guild_id", guildID,
		"player", job.Player,
		"total", job.Total)
	return nil
}
