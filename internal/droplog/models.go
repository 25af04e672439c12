package droplog

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"herald/internal/broadcast"
)

// DropLog is one durable audit record of an item or raid drop.
type DropLog struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	GuildID   uint64             `bson:"guild_id" json:"guild_id"`
	Kind      broadcast.Kind     `bson:"kind" json:"kind"`
	Drop      broadcast.DropItem `bson:"drop" json:"drop"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// Broadcast is one rendered notification kept as queryable history.
type Broadcast struct {
	ID           primitive.ObjectID     `bson:"_id,omitempty" json:"id"`
	GuildID      uint64                 `bson:"guild_id" json:"guild_id"`
	Notification broadcast.Notification `bson:"notification" json:"notification"`
	CreatedAt    time.Time              `bson:"created_at" json:"created_at"`
}
