package guild

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"math/big"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"herald/internal/broadcast"
)

// RegisteredGuild is one tenant's registration and notification policy. The
// verification code is shown to the tenant once at registration; only its
// hash is matched afterwards, but the plaintext stays stored so admins can
// re-surface it.
type RegisteredGuild struct {
	ID                       primitive.ObjectID         `bson:"_id,omitempty" json:"id"`
	GuildID                  uint64                     `bson:"guild_id" json:"guild_id"`
	ClanName                 string                     `bson:"clan_name,omitempty" json:"clan_name,omitempty"`
	BroadcastChannel         uint64                     `bson:"broadcast_channel,omitempty" json:"broadcast_channel,omitempty"`
	ClanChatChannel          uint64                     `bson:"clan_chat_channel,omitempty" json:"clan_chat_channel,omitempty"`
	LeaguesBroadcastChannel  uint64                     `bson:"leagues_broadcast_channel,omitempty" json:"leagues_broadcast_channel,omitempty"`
	KindChannelOverrides     map[string]uint64          `bson:"kind_channel_overrides,omitempty" json:"kind_channel_overrides,omitempty"`
	WomID                    *int64                     `bson:"wom_id,omitempty" json:"wom_id,omitempty"`
	VerificationCode         string                     `bson:"verification_code" json:"-"`
	HashedVerificationCode   string                     `bson:"hashed_verification_code" json:"-"`
	DropPriceThreshold       *int64                     `bson:"drop_price_threshold,omitempty" json:"drop_price_threshold,omitempty"`
	PkValueThreshold         *int64                     `bson:"pk_value_threshold,omitempty" json:"pk_value_threshold,omitempty"`
	MinQuestDifficulty       *broadcast.QuestDifficulty `bson:"min_quest_difficulty,omitempty" json:"min_quest_difficulty,omitempty"`
	MinDiaryTier             *broadcast.DiaryTier       `bson:"min_diary_tier,omitempty" json:"min_diary_tier,omitempty"`
	ClogMaxPercentage        *float64                   `bson:"clog_max_percentage,omitempty" json:"clog_max_percentage,omitempty"`
	DisallowedBroadcastTypes []broadcast.Kind           `bson:"disallowed_broadcast_types" json:"disallowed_broadcast_types"`
	CustomFilters            map[string][]string        `bson:"custom_filters,omitempty" json:"custom_filters,omitempty"`
	CreatedAt                time.Time                  `bson:"created_at" json:"created_at"`
	UpdatedAt                time.Time                  `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// NewRegisteredGuild creates a registration with a fresh verification code
// and an empty policy.
func NewRegisteredGuild(guildID uint64) *RegisteredGuild {
	code := GenerateVerificationCode()
	return &RegisteredGuild{
		ID:                       primitive.NewObjectID(),
		GuildID:                  guildID,
		VerificationCode:         code,
		HashedVerificationCode:   HashCode(code),
		DisallowedBroadcastTypes: []broadcast.Kind{},
		CreatedAt:                time.Now().UTC(),
	}
}

// Policy projects the registration into the evaluation snapshot the
// pipeline consumes.
func (g *RegisteredGuild) Policy() broadcast.Policy {
	return broadcast.Policy{
		DisallowedKinds:    g.DisallowedBroadcastTypes,
		DropValueThreshold: g.DropPriceThreshold,
		PkValueThreshold:   g.PkValueThreshold,
		MinQuestDifficulty: g.MinQuestDifficulty,
		MinDiaryTier:       g.MinDiaryTier,
		ClogMaxPercentage:  g.ClogMaxPercentage,
		KeywordFilters:     g.CustomFilters,
		LeaguesEnabled:     g.LeaguesBroadcastChannel != 0,
	}
}

// GenerateVerificationCode produces a nine digit code grouped in threes,
// e.g. "123-456-789".
func GenerateVerificationCode() string {
	digits := make([]byte, 0, 11)
	for i := 0; i < 9; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			// crypto/rand only fails when the platform source is broken.
			panic(err)
		}
		digits = append(digits, byte('0'+n.Int64()))
		if i == 2 || i == 5 {
			digits = append(digits, '-')
		}
	}
	return string(digits)
}

// HashCode is the stored form of a verification code.
func HashCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}
