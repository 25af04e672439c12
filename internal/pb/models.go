package pb

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Activity is one speedrunnable encounter, created lazily the first time a
// personal best line mentions it.
type Activity struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ActivityName string             `bson:"activity_name" json:"activity_name"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
}

// Record is one member's best known time for an activity, in seconds with
// game-tick precision.
type Record struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ClanMateID    primitive.ObjectID `bson:"clan_mate_id" json:"clan_mate_id"`
	ActivityID    primitive.ObjectID `bson:"activity_id" json:"activity_id"`
	TimeInSeconds float64            `bson:"time_in_seconds" json:"time_in_seconds"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`
}

// LeaderboardEntry pairs a member name with their best time for an activity.
type LeaderboardEntry struct {
	PlayerName    string  `bson:"player_name" json:"player_name"`
	TimeInSeconds float64 `bson:"time_in_seconds" json:"time_in_seconds"`
}
