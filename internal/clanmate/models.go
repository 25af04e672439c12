package clanmate

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ClanMate is one roster member. PreviousNames accumulates across renames
// so departure lines for an old name still resolve.
type ClanMate struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	GuildID       uint64             `bson:"guild_id" json:"guild_id"`
	PlayerName    string             `bson:"player_name" json:"player_name"`
	PreviousNames []string           `bson:"previous_names" json:"previous_names"`
	Rank          string             `bson:"rank,omitempty" json:"rank,omitempty"`
	WomID         *int64             `bson:"wom_id,omitempty" json:"wom_id,omitempty"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
}

// CollectionLogTotal is a member's latest known collection log slot count.
type CollectionLogTotal struct {
	GuildID   uint64             `bson:"guild_id" json:"guild_id"`
	PlayerID  primitive.ObjectID `bson:"player_id" json:"player_id"`
	Total     int64              `bson:"total" json:"total"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// CollectionLogLeaderboardEntry pairs a member name with their total for
// leaderboard views.
type CollectionLogLeaderboardEntry struct {
	PlayerName string `bson:"player_name" json:"player_name"`
	Total      int64  `bson:"total" json:"total"`
}
