package pb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	activityCollection = "personal_best_activities"
	recordCollection   = "personal_best_records"
)

type Repository interface {
	FindOrCreateActivity(ctx context.Context, activityName string) (*Activity, error)
	ListActivities(ctx context.Context) ([]Activity, error)
	RecordTime(ctx context.Context, clanMateID, activityID primitive.ObjectID, timeInSeconds float64) error
	Leaderboard(ctx context.Context, activityID primitive.ObjectID, guildID uint64) ([]LeaderboardEntry, error)
}

type mongoRepository struct {
	activities *mongo.Collection
	records    *mongo.Collection
}

func NewRepository(db *mongo.Database) Repository {
	return &mongoRepository{
		activities: db.Collection(activityCollection),
		records:    db.Collection(recordCollection),
	}
}

func (r *mongoRepository) FindOrCreateActivity(ctx context.Context, activityName string) (*Activity, error) {
	filter := bson.M{"activity_name": activityName}

	var activity Activity
	err := r.activities.FindOne(ctx, filter).Decode(&activity)
	if err == nil {
		return &activity, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, fmt.Errorf("failed to find activity: %w", err)
	}

	activity = Activity{
		ID:           primitive.NewObjectID(),
		ActivityName: activityName,
		CreatedAt:    time.Now().UTC(),
	}
	if _, err := r.activities.InsertOne(ctx, activity); err != nil {
		return nil, fmt.Errorf("failed to create activity: %w", err)
	}
	return &activity, nil
}

func (r *mongoRepository) ListActivities(ctx context.Context) ([]Activity, error) {
	cursor, err := r.activities.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	defer cursor.Close(ctx)

	var activities []Activity
	if err := cursor.All(ctx, &activities); err != nil {
		return nil, fmt.Errorf("failed to decode activities: %w", err)
	}
	return activities, nil
}

// RecordTime upserts a member's record for an activity, keeping the lower
// time. A broadcast for a slower run than the stored record leaves the
// record unchanged.
func (r *mongoRepository) RecordTime(ctx context.Context, clanMateID, activityID primitive.ObjectID, timeInSeconds float64) error {
	filter := bson.M{
		"clan_mate_id": clanMateID,
		"activity_id":  activityID,
	}

	var existing Record
	err := r.records.FindOne(ctx, filter).Decode(&existing)
	if err == mongo.ErrNoDocuments {
		record := Record{
			ID:            primitive.NewObjectID(),
			ClanMateID:    clanMateID,
			ActivityID:    activityID,
			TimeInSeconds: timeInSeconds,
			CreatedAt:     time.Now().UTC(),
			UpdatedAt:     time.Now().UTC(),
		}
		if _, err := r.records.InsertOne(ctx, record); err != nil {
			return fmt.Errorf("failed to create personal best record: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to find personal best record: %w", err)
	}

	if timeInSeconds >= existing.TimeInSeconds {
		return nil
	}

	update := bson.M{
		"$set": bson.M{
			"time_in_seconds": timeInSeconds,
			"updated_at":      time.Now().UTC(),
		},
	}
	if _, err := r.records.UpdateOne(ctx, filter, update); err != nil {
		return fmt.Errorf("failed to update personal best record: %w", err)
	}
	return nil
}

func (r *mongoRepository) Leaderboard(ctx context.Context, activityID primitive.ObjectID, guildID uint64) ([]LeaderboardEntry, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"activity_id": activityID}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "clan_mates",
			"localField":   "clan_mate_id",
			"foreignField": "_id",
			"as":           "player",
		}}},
		{{Key: "$unwind", Value: "$player"}},
		{{Key: "$match", Value: bson.M{"player.guild_id": guildID}}},
		{{Key: "$project", Value: bson.M{
			"player_name":     "$player.player_name",
			"time_in_seconds": 1,
		}}},
		{{Key: "$sort", Value: bson.M{"time_in_seconds": 1}}},
	}

	cursor, err := r.records.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate personal best records: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []LeaderboardEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode leaderboard: %w", err)
	}
	return entries, nil
}
