package broadcast

import "strings"

// DiaryTier is an achievement diary tier. Tiers are totally ordered:
// Easy < Medium < Hard < Elite.
type DiaryTier string

const (
	DiaryEasy   DiaryTier = "Easy"
	DiaryMedium DiaryTier = "Medium"
	DiaryHard   DiaryTier = "Hard"
	DiaryElite  DiaryTier = "Elite"
)

var diaryTierRanks = map[DiaryTier]int{
	DiaryEasy:   1,
	DiaryMedium: 2,
	DiaryHard:   3,
	DiaryElite:  4,
}

func DiaryTiers() []DiaryTier {
	return []DiaryTier{DiaryEasy, DiaryMedium, DiaryHard, DiaryElite}
}

func (t DiaryTier) Rank() int {
	return diaryTierRanks[t]
}

// AtLeast reports whether t meets the given minimum tier.
func (t DiaryTier) AtLeast(min DiaryTier) bool {
	return t.Rank() >= min.Rank()
}

func ParseDiaryTier(s string) (DiaryTier, bool) {
	tier := DiaryTier(titleCase(s))
	_, ok := diaryTierRanks[tier]
	return tier, ok
}

// QuestDifficulty is the wiki's quest difficulty classification, totally
// ordered: Novice < Intermediate < Experienced < Master < Grandmaster.
type QuestDifficulty string

const (
	QuestNovice       QuestDifficulty = "Novice"
	QuestIntermediate QuestDifficulty = "Intermediate"
	QuestExperienced  QuestDifficulty = "Experienced"
	QuestMaster       QuestDifficulty = "Master"
	QuestGrandmaster  QuestDifficulty = "Grandmaster"
)

var questDifficultyRanks = map[QuestDifficulty]int{
	QuestNovice:       1,
	QuestIntermediate: 2,
	QuestExperienced:  3,
	QuestMaster:       4,
	QuestGrandmaster:  5,
}

func QuestDifficulties() []QuestDifficulty {
	return []QuestDifficulty{
		QuestNovice,
		QuestIntermediate,
		QuestExperienced,
		QuestMaster,
		QuestGrandmaster,
	}
}

func (d QuestDifficulty) Rank() int {
	return questDifficultyRanks[d]
}

func (d QuestDifficulty) AtLeast(min QuestDifficulty) bool {
	return d.Rank() >= min.Rank()
}

func ParseQuestDifficulty(s string) (QuestDifficulty, bool) {
	difficulty := QuestDifficulty(titleCase(s))
	_, ok := questDifficultyRanks[difficulty]
	return difficulty, ok
}

func titleCase(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
