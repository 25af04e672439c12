package api

import (
	"herald/internal/guild"
)

type RegisterGuildRequest struct {
	GuildID uint64 `json:"guild_id" binding:"required"`
}

// RegisterGuildResponse carries the plaintext verification code, the only
// surface that ever returns it.
type RegisterGuildResponse struct {
	Guild            *guild.RegisteredGuild `json:"guild"`
	VerificationCode string                 `json:"verification_code"`
}

type VerifyClanRequest struct {
	Code     string `json:"code" binding:"required"`
	ClanName string `json:"clan_name" binding:"required"`
}

// UpdatePolicyRequest is a partial update: nil fields are left untouched,
// non-nil fields replace the stored value. Channel ids and thresholds can be
// cleared by sending zero.
type UpdatePolicyRequest struct {
	ClanName                 *string              `json:"clan_name,omitempty"`
	BroadcastChannel         *uint64              `json:"broadcast_channel,omitempty"`
	ClanChatChannel          *uint64              `json:"clan_chat_channel,omitempty"`
	LeaguesBroadcastChannel  *uint64              `json:"leagues_broadcast_channel,omitempty"`
	KindChannelOverrides     *map[string]uint64   `json:"kind_channel_overrides,omitempty"`
	WomID                    *int64               `json:"wom_id,omitempty"`
	DropPriceThreshold       *int64               `json:"drop_price_threshold,omitempty"`
	PkValueThreshold         *int64               `json:"pk_value_threshold,omitempty"`
	MinQuestDifficulty       *string              `json:"min_quest_difficulty,omitempty"`
	MinDiaryTier             *string              `json:"min_diary_tier,omitempty"`
	ClogMaxPercentage        *float64             `json:"clog_max_percentage,omitempty"`
	DisallowedBroadcastTypes *[]string            `json:"disallowed_broadcast_types,omitempty"`
	CustomFilters            *map[string][]string `json:"custom_filters,omitempty"`
}
