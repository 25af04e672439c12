package broadcast

// ClanMessage is one raw clan chat event line plus its sender metadata.
// It is immutable once received and never stored.
type ClanMessage struct {
	Sender       string `json:"sender"`
	Message      string `json:"message"`
	ClanName     string `json:"clan_name"`
	Rank         string `json:"rank"`
	IconID       *int64 `json:"icon_id,omitempty"`
	LeaguesWorld bool   `json:"is_league_world,omitempty"`
}

// DropItem is the payload for Item Drop and Raid Drop lines. Value is nil
// when the line carried no value token at all; a literal "(0 coins)" yields
// a non-nil zero. Callers must not conflate the two.
type DropItem struct {
	Player   string  `json:"player"`
	ItemName string  `json:"item_name"`
	Quantity int64   `json:"quantity"`
	Value    *int64  `json:"value,omitempty"`
	IconURL  *string `json:"icon_url,omitempty"`
	Source   string  `json:"source,omitempty"`
}

// PetDrop covers both historical pet phrasings.
type PetDrop struct {
	Player    string  `json:"player"`
	PetName   string  `json:"pet_name"`
	Milestone string  `json:"milestone"`
	IconURL   *string `json:"icon_url,omitempty"`
}

type QuestCompletion struct {
	Player     string  `json:"player"`
	QuestName  string  `json:"quest_name"`
	RewardIcon *string `json:"reward_icon,omitempty"`
}

type DiaryCompletion struct {
	Player    string    `json:"player"`
	DiaryName string    `json:"diary_name"`
	Tier      DiaryTier `json:"tier"`
}

// PkEvent records a wilderness fight. ClanMate is always the tenant's own
// member, whichever side of the fight they were on.
type PkEvent struct {
	Winner      string `json:"winner"`
	Loser       string `json:"loser"`
	ClanMate    string `json:"clan_mate"`
	ClanMateWon bool   `json:"clan_mate_won"`
	GpExchanged *int64 `json:"gp_exchanged,omitempty"`
}

type Invite struct {
	NewMember string `json:"new_member"`
	Inviter   string `json:"inviter"`
}

type MemberDeparture struct {
	Player   string `json:"player"`
	Expelled bool   `json:"expelled"`
}

type LevelMilestone struct {
	Player    string  `json:"player"`
	Skill     string  `json:"skill"`
	Level     int64   `json:"level"`
	SkillIcon *string `json:"skill_icon,omitempty"`
}

type XPMilestone struct {
	Player    string  `json:"player"`
	Skill     string  `json:"skill"`
	XP        int64   `json:"xp"`
	SkillIcon *string `json:"skill_icon,omitempty"`
}

type CollectionLogItem struct {
	Player     string  `json:"player"`
	ItemName   string  `json:"item_name"`
	Slot       int64   `json:"slot"`
	TotalSlots int64   `json:"total_slots"`
	IconURL    *string `json:"icon_url,omitempty"`
}

// Percentage is the player's log completion at the moment of the broadcast.
func (c CollectionLogItem) Percentage() float64 {
	if c.TotalSlots == 0 {
		return 0
	}
	return float64(c.Slot) / float64(c.TotalSlots) * 100
}

type CofferTransaction struct {
	Player   string `json:"player"`
	Gp       int64  `json:"gp"`
	Donation bool   `json:"donation"`
}

type PersonalBest struct {
	Player      string  `json:"player"`
	Activity    string  `json:"activity"`
	Time        string  `json:"time"`
	TimeSeconds float64 `json:"time_seconds"`
}

type LootKey struct {
	Player string `json:"player"`
	Value  int64  `json:"value"`
}
