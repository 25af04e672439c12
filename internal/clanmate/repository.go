package clanmate

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	clanMateCollection  = "clan_mates"
	clogTotalCollection = "clan_mate_collection_log_totals"
)

type Repository interface {
	FindOrCreate(ctx context.Context, guildID uint64, playerName string) (*ClanMate, error)
	FindByCurrentName(ctx context.Context, guildID uint64, playerName string) (*ClanMate, error)
	FindByPreviousName(ctx context.Context, guildID uint64, playerName string) (*ClanMate, error)
	Rename(ctx context.Context, guildID uint64, oldName, newName string) error
	UpdateRank(ctx context.Context, guildID uint64, playerName, rank string) error
	Remove(ctx context.Context, guildID uint64, playerName string) error
	List(ctx context.Context, guildID uint64) ([]ClanMate, error)
	Count(ctx context.Context, guildID uint64) (int64, error)

	UpdateCollectionLogTotal(ctx context.Context, guildID uint64, playerID primitive.ObjectID, total int64) error
	CollectionLogLeaderboard(ctx context.Context, guildID uint64) ([]CollectionLogLeaderboardEntry, error)
}

type mongoRepository struct {
	mates  *mongo.Collection
	totals *mongo.Collection
}

func NewRepository(db *mongo.Database) Repository {
	return &mongoRepository{
		mates:  db.Collection(clanMateCollection),
		totals: db.Collection(clogTotalCollection),
	}
}

func (r *mongoRepository) FindOrCreate(ctx context.Context, guildID uint64, playerName string) (*ClanMate, error) {
	existing, err := r.FindByCurrentName(ctx, guildID, playerName)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	mate := &ClanMate{
		ID:            primitive.NewObjectID(),
		GuildID:       guildID,
		PlayerName:    playerName,
		PreviousNames: []string{},
		CreatedAt:     time.Now().UTC(),
	}
	if _, err := r.mates.InsertOne(ctx, mate); err != nil {
		return nil, fmt.Errorf("failed to create clan mate: %w", err)
	}
	return mate, nil
}

func (r *mongoRepository) FindByCurrentName(ctx context.Context, guildID uint64, playerName string) (*ClanMate, error) {
	return r.findOne(ctx, bson.M{"guild_id": guildID, "player_name": playerName})
}

func (r *mongoRepository) FindByPreviousName(ctx context.Context, guildID uint64, playerName string) (*ClanMate, error) {
	return r.findOne(ctx, bson.M{"guild_id": guildID, "previous_names": playerName})
}

func (r *mongoRepository) findOne(ctx context.Context, filter bson.M) (*ClanMate, error) {
	var mate ClanMate
	err := r.mates.FindOne(ctx, filter).Decode(&mate)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find clan mate: %w", err)
	}
	return &mate, nil
}

// Rename moves the member's current name into the previous-name history.
func (r *mongoRepository) Rename(ctx context.Context, guildID uint64, oldName, newName string) error {
	filter := bson.M{"guild_id": guildID, "player_name": oldName}
	update := bson.M{
		"$set":  bson.M{"player_name": newName},
		"$push": bson.M{"previous_names": oldName},
	}

	result, err := r.mates.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to rename clan mate: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("clan mate not found")
	}
	return nil
}

func (r *mongoRepository) UpdateRank(ctx context.Context, guildID uint64, playerName, rank string) error {
	filter := bson.M{"guild_id": guildID, "player_name": playerName}
	update := bson.M{"$set": bson.M{"rank": rank}}

	if _, err := r.mates.UpdateOne(ctx, filter, update); err != nil {
		return fmt.Errorf("failed to update clan mate rank: %w", err)
	}
	return nil
}

func (r *mongoRepository) Remove(ctx context.Context, guildID uint64, playerName string) error {
	filter := bson.M{
		"guild_id": guildID,
		"$or": []bson.M{
			{"player_name": playerName},
			{"previous_names": playerName},
		},
	}

	if _, err := r.mates.DeleteOne(ctx, filter); err != nil {
		return fmt.Errorf("failed to remove clan mate: %w", err)
	}
	return nil
}

func (r *mongoRepository) List(ctx context.Context, guildID uint64) ([]ClanMate, error) {
	opts := options.Find().SetSort(bson.D{{Key: "player_name", Value: 1}})

	cursor, err := r.mates.Find(ctx, bson.M{"guild_id": guildID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list clan mates: %w", err)
	}
	defer cursor.Close(ctx)

	var mates []ClanMate
	if err := cursor.All(ctx, &mates); err != nil {
		return nil, fmt.Errorf("failed to decode clan mates: %w", err)
	}
	return mates, nil
}

func (r *mongoRepository) Count(ctx context.Context, guildID uint64) (int64, error) {
	count, err := r.mates.CountDocuments(ctx, bson.M{"guild_id": guildID})
	if err != nil {
		return 0, fmt.Errorf("failed to count clan mates: %w", err)
	}
	return count, nil
}

func (r *mongoRepository) UpdateCollectionLogTotal(ctx context.Context, guildID uint64, playerID primitive.ObjectID, total int64) error {
	filter := bson.M{"guild_id": guildID, "player_id": playerID}
	update := bson.M{
		"$set": bson.M{"total": total},
		"$setOnInsert": bson.M{
			"created_at": time.Now().UTC(),
		},
	}
	opts := options.Update().SetUpsert(true)

	if _, err := r.totals.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to update collection log total: %w", err)
	}
	return nil
}

func (r *mongoRepository) CollectionLogLeaderboard(ctx context.Context, guildID uint64) ([]CollectionLogLeaderboardEntry, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"guild_id": guildID}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         clanMateCollection,
			"localField":   "player_id",
			"foreignField": "_id",
			"as":           "player",
		}}},
		{{Key: "$unwind", Value: "$player"}},
		{{Key: "$project", Value: bson.M{
			"player_name": "$player.player_name",
			"total":       1,
		}}},
		{{Key: "$sort", Value: bson.M{"total": -1}}},
	}

	cursor, err := r.totals.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate collection log totals: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []CollectionLogLeaderboardEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode collection log totals: %w", err)
	}
	return entries, nil
}
