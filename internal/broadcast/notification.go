package broadcast

// Notification is the rendered outbound message for one clan chat line.
// Produced at most once per line and never mutated after creation.
type Notification struct {
	Kind    Kind    `json:"kind"`
	Player  string  `json:"player"`
	Title   string  `json:"title"`
	Message string  `json:"message"`
	IconURL *string `json:"icon_url,omitempty"`

	// Quantity is repurposed across kinds: coin value for drops and loot
	// keys, gp for coffer transactions, level/XP totals for milestones,
	// log slots for collection log completions.
	Quantity *int64 `json:"quantity,omitempty"`
}

var kindTitles = map[Kind]string{
	KindItemDrop:         ":tada: New High Value drop!",
	KindPetDrop:          ":tada: New Pet drop!",
	KindQuest:            ":tada: New quest completed!",
	KindDiary:            ":tada: New diary completed!",
	KindRaidDrop:         ":tada: New raid drop!",
	KindPk:               ":crossed_swords: New PK!",
	KindInvite:           ":wave: New Invite!",
	KindLeftClan:         ":door: A clan mate has left!",
	KindExpelledFromClan: ":boot: A clan mate has been expelled!",
	KindLevelMilestone:   ":tada: New Level Milestone reached!",
	KindXPMilestone:      ":tada: New XP Milestone reached!",
	KindCollectionLog:    ":scroll: New Collection Log item!",
	KindCofferDonation:   ":moneybag: New coffer donation!",
	KindCofferWithdrawal: ":moneybag: New coffer withdrawal!",
	KindPersonalBest:     ":stopwatch: New Personal Best!",
	KindLootKey:          ":old_key: New Loot Key opened!",
}

// titleFor renders the kind's emoji-prefixed title. Lines from a
// special-ruleset world get a distinguishable variant.
func titleFor(kind Kind, leaguesWorld bool) string {
	title := kindTitles[kind]
	if leaguesWorld {
		return title + " (Leagues)"
	}
	return title
}
