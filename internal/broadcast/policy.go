package broadcast

// Policy is one tenant's notification policy snapshot. Threshold and tier
// fields strictly gate notification when present; nil means no restriction.
type Policy struct {
	DisallowedKinds    []Kind              `json:"disallowed_kinds" bson:"disallowed_kinds"`
	DropValueThreshold *int64              `json:"drop_value_threshold,omitempty" bson:"drop_value_threshold,omitempty"`
	PkValueThreshold   *int64              `json:"pk_value_threshold,omitempty" bson:"pk_value_threshold,omitempty"`
	MinQuestDifficulty *QuestDifficulty    `json:"min_quest_difficulty,omitempty" bson:"min_quest_difficulty,omitempty"`
	MinDiaryTier       *DiaryTier          `json:"min_diary_tier,omitempty" bson:"min_diary_tier,omitempty"`
	ClogMaxPercentage  *float64            `json:"clog_max_percentage,omitempty" bson:"clog_max_percentage,omitempty"`
	KeywordFilters     map[string][]string `json:"keyword_filters,omitempty" bson:"keyword_filters,omitempty"`
	LeaguesEnabled     bool                `json:"leagues_enabled" bson:"leagues_enabled"`
}

func (p Policy) IsDisallowed(kind Kind) bool {
	for _, k := range p.DisallowedKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// KeywordsFor returns the configured keyword filter list for a kind, keyed
// by the kind's configuration slug.
func (p Policy) KeywordsFor(kind Kind) []string {
	if p.KeywordFilters == nil {
		return nil
	}
	return p.KeywordFilters[kind.Slug()]
}
