package broadcast

import "strings"

// Kind is the classified category of a clan chat event line. The set is
// closed; Unknown is the fallthrough for lines that match no grammar.
type Kind string

const (
	KindItemDrop         Kind = "Item Drop"
	KindPetDrop          Kind = "Pet Drop"
	KindQuest            Kind = "Quest"
	KindDiary            Kind = "Diary"
	KindRaidDrop         Kind = "Raid Drop"
	KindPk               Kind = "Pk"
	KindInvite           Kind = "Invite"
	KindLeftClan         Kind = "Left Clan"
	KindExpelledFromClan Kind = "Expelled From Clan"
	KindLevelMilestone   Kind = "Level Milestone"
	KindXPMilestone      Kind = "XP Milestone"
	KindCollectionLog    Kind = "Collection Log"
	KindCofferDonation   Kind = "Coffer Donation"
	KindCofferWithdrawal Kind = "Coffer Withdrawal"
	KindPersonalBest     Kind = "Personal Best"
	KindLootKey          Kind = "Loot Key"
	KindUnknown          Kind = "Unknown"
)

// Kinds lists every classifiable kind, excluding Unknown. The order here is
// presentation order only; classification order lives in the rule table.
func Kinds() []Kind {
	return []Kind{
		KindItemDrop,
		KindPetDrop,
		KindQuest,
		KindDiary,
		KindRaidDrop,
		KindPk,
		KindInvite,
		KindLeftClan,
		KindExpelledFromClan,
		KindLevelMilestone,
		KindXPMilestone,
		KindCollectionLog,
		KindCofferDonation,
		KindCofferWithdrawal,
		KindPersonalBest,
		KindLootKey,
	}
}

func (k Kind) String() string {
	return string(k)
}

// Slug is the machine form used in tenant configuration: the display name
// with spaces replaced by underscores.
func (k Kind) Slug() string {
	return strings.ReplaceAll(string(k), " ", "_")
}

// KindFromSlug resolves a configuration slug back to its Kind. Unrecognized
// slugs resolve to Unknown.
func KindFromSlug(slug string) Kind {
	candidate := Kind(strings.ReplaceAll(slug, "_", " "))
	for _, k := range Kinds() {
		if k == candidate {
			return k
		}
	}
	return KindUnknown
}
