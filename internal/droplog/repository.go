package droplog

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"herald/internal/broadcast"
)

const (
	dropLogCollection   = "drop_logs"
	broadcastCollection = "broadcasts"
)

type Repository interface {
	RecordDrop(ctx context.Context, guildID uint64, kind broadcast.Kind, drop broadcast.DropItem) error
	DropsBetween(ctx context.Context, guildID uint64, start, end time.Time) ([]DropLog, error)
	RecordBroadcast(ctx context.Context, guildID uint64, n broadcast.Notification) error
	LatestBroadcasts(ctx context.Context, guildID uint64, limit int64) ([]Broadcast, error)
}

type mongoRepository struct {
	drops      *mongo.Collection
	broadcasts *mongo.Collection
}

func NewRepository(db *mongo.Database) Repository {
	return &mongoRepository{
		drops:      db.Collection(dropLogCollection),
		broadcasts: db.Collection(broadcastCollection),
	}
}

func (r *mongoRepository) RecordDrop(ctx context.Context, guildID uint64, kind broadcast.Kind, drop broadcast.DropItem) error {
	entry := DropLog{
		ID:        primitive.NewObjectID(),
		GuildID:   guildID,
		Kind:      kind,
		Drop:      drop,
		CreatedAt: time.Now().UTC(),
	}

	if _, err := r.drops.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("failed to record drop log: %w", err)
	}
	return nil
}

func (r *mongoRepository) DropsBetween(ctx context.Context, guildID uint64, start, end time.Time) ([]DropLog, error) {
	filter := bson.M{
		"guild_id": guildID,
		"created_at": bson.M{
			"$gte": start,
			"$lte": end,
		},
	}

	cursor, err := r.drops.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query drop logs: %w", err)
	}
	defer cursor.Close(ctx)

	var logs []DropLog
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, fmt.Errorf("failed to decode drop logs: %w", err)
	}
	return logs, nil
}

func (r *mongoRepository) RecordBroadcast(ctx context.Context, guildID uint64, n broadcast.Notification) error {
	entry := Broadcast{
		ID:           primitive.NewObjectID(),
		GuildID:      guildID,
		Notification: n,
		CreatedAt:    time.Now().UTC(),
	}

	if _, err := r.broadcasts.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("failed to record broadcast: %w", err)
	}
	return nil
}

func (r *mongoRepository) LatestBroadcasts(ctx context.Context, guildID uint64, limit int64) ([]Broadcast, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.broadcasts.Find(ctx, bson.M{"guild_id": guildID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query broadcasts: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []Broadcast
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode broadcasts: %w", err)
	}
	return entries, nil
}
