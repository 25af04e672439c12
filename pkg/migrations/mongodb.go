package migrations

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureCollections creates the indexes every service assumes exist.
// Collections themselves are created lazily by MongoDB on first insert.
func EnsureCollections(ctx context.Context, db *mongo.Database) error {
	plans := []struct {
		collection string
		indexes    []mongo.IndexModel
	}{
		{
			collection: "guilds",
			indexes: []mongo.IndexModel{
				{
					Keys:    bson.D{{Key: "guild_id", Value: 1}},
					Options: options.Index().SetName("idx_guilds_guild_id").SetUnique(true),
				},
				{
					Keys:    bson.D{{Key: "hashed_verification_code", Value: 1}},
					Options: options.Index().SetName("idx_guilds_hashed_verification_code").SetUnique(true),
				},
			},
		},
		{
			collection: "drop_logs",
			indexes: []mongo.IndexModel{
				{
					Keys:    bson.D{{Key: "guild_id", Value: 1}, {Key: "created_at", Value: -1}},
					Options: options.Index().SetName("idx_drop_logs_guild_created"),
				},
			},
		},
		{
			collection: "broadcasts",
			indexes: []mongo.IndexModel{
				{
					Keys:    bson.D{{Key: "guild_id", Value: 1}, {Key: "created_at", Value: -1}},
					Options: options.Index().SetName("idx_broadcasts_guild_created"),
				},
			},
		},
		{
			collection: "clan_mates",
			indexes: []mongo.IndexModel{
				{
					Keys:    bson.D{{Key: "guild_id", Value: 1}, {Key: "player_name", Value: 1}},
					Options: options.Index().SetName("idx_clan_mates_guild_player").SetUnique(true),
				},
				{
					Keys:    bson.D{{Key: "guild_id", Value: 1}, {Key: "previous_names", Value: 1}},
					Options: options.Index().SetName("idx_clan_mates_guild_previous_names"),
				},
			},
		},
		{
			collection: "clan_mate_collection_log_totals",
			indexes: []mongo.IndexModel{
				{
					Keys:    bson.D{{Key: "guild_id", Value: 1}, {Key: "player_id", Value: 1}},
					Options: options.Index().SetName("idx_clog_totals_guild_player").SetUnique(true),
				},
			},
		},
		{
			collection: "personal_best_activities",
			indexes: []mongo.IndexModel{
				{
					Keys:    bson.D{{Key: "activity_name", Value: 1}},
					Options: options.Index().SetName("idx_pb_activities_name").SetUnique(true),
				},
			},
		},
		{
			collection: "personal_best_records",
			indexes: []mongo.IndexModel{
				{
					Keys:    bson.D{{Key: "clan_mate_id", Value: 1}, {Key: "activity_id", Value: 1}},
					Options: options.Index().SetName("idx_pb_records_mate_activity").SetUnique(true),
				},
				{
					Keys:    bson.D{{Key: "activity_id", Value: 1}, {Key: "time_in_seconds", Value: 1}},
					Options: options.Index().SetName("idx_pb_records_activity_time"),
				},
			},
		},
	}

	for _, plan := range plans {
		_, err := db.Collection(plan.collection).Indexes().CreateMany(ctx, plan.indexes)
		if err != nil && !strings.Contains(err.Error(), "already exists") {
			return fmt.Errorf("failed to create %s indexes: %w", plan.collection, err)
		}
	}

	return nil
}
