package broadcast

import "strings"

// classifierRules is evaluated top to bottom; the first predicate that
// matches wins. The predicates are intentionally non-exclusive, so ordering
// is load-bearing. Known sensitivities:
//
//   - "has reached" appears in level and XP milestones; the level rule
//     requires the literal "level" and must run before the XP rule.
//   - "has completed" appears in quest and diary lines; the quest rule
//     requires the colon form "completed a quest:" so it cannot swallow
//     diary completions, but diary stays below quest regardless.
//   - "has been defeated by" is a substring of some defeat lines that also
//     contain "has defeated"; the lost-fight rule runs first.
var classifierRules = []struct {
	kind  Kind
	match func(line string) bool
}{
	{KindItemDrop, func(l string) bool {
		return strings.Contains(l, "received a drop:")
	}},
	{KindRaidDrop, func(l string) bool {
		return strings.Contains(l, "received special loot from a raid:")
	}},
	{KindPetDrop, func(l string) bool {
		if strings.Contains(l, "has a funny feeling") && strings.Contains(l, "followed:") {
			return true
		}
		return strings.Contains(l, "feels something weird sneaking into") && strings.Contains(l, "backpack:")
	}},
	{KindCollectionLog, func(l string) bool {
		return strings.Contains(l, "received a new collection log item:")
	}},
	{KindQuest, func(l string) bool {
		return strings.Contains(l, "has completed a quest:")
	}},
	{KindDiary, func(l string) bool {
		return strings.Contains(l, "has completed the") && strings.Contains(l, "diary")
	}},
	{KindInvite, func(l string) bool {
		return strings.Contains(l, "has been invited into the clan by")
	}},
	{KindExpelledFromClan, func(l string) bool {
		return strings.Contains(l, "has been expelled from the clan")
	}},
	{KindLeftClan, func(l string) bool {
		return strings.Contains(l, "has left the clan")
	}},
	{KindLevelMilestone, func(l string) bool {
		return strings.Contains(l, "has reached") && strings.Contains(l, "level")
	}},
	{KindXPMilestone, func(l string) bool {
		return strings.Contains(l, "has reached") && strings.Contains(l, "XP in")
	}},
	{KindCofferDonation, func(l string) bool {
		return strings.Contains(l, "has deposited") && strings.Contains(l, "coins into the coffer")
	}},
	{KindCofferWithdrawal, func(l string) bool {
		return strings.Contains(l, "has withdrawn") && strings.Contains(l, "coins from the coffer")
	}},
	{KindPersonalBest, func(l string) bool {
		return strings.Contains(l, "personal best:")
	}},
	{KindLootKey, func(l string) bool {
		return strings.Contains(l, "has opened a loot key worth")
	}},
	{KindPk, func(l string) bool {
		return strings.Contains(l, "has been defeated by") || strings.Contains(l, "has defeated")
	}},
}

// Classify assigns a raw clan chat line to a broadcast kind. Lines that
// match no rule classify as Unknown, which callers must treat as a silent
// no-op rather than an error.
func Classify(line string) Kind {
	for _, rule := range classifierRules {
		if rule.match(line) {
			return rule.kind
		}
	}
	return KindUnknown
}
