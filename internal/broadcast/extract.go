package broadcast

import (
	"regexp"
	"strconv"
	"strings"
)

// The extractors mirror the exact line grammars the game client emits. Each
// is a pure function from a raw line to a typed payload, returning nil when
// the line does not fit the grammar. Numeric fields strip comma grouping
// before parsing; player and item names are taken verbatim apart from
// whitespace trimming.

var (
	itemDropRe = regexp.MustCompile(`^(?P<player>.*?) received a drop: (?:(?P<quantity>[\d,]+) x )?(?P<item>.*?)(?: \((?P<value>[\d,]+) coins\))?(?: from (?P<source>.+?))?\.?$`)
	raidDropRe = regexp.MustCompile(`^(?P<player>.*?) received special loot from a raid: (?P<item>.*?)\.?$`)

	// Two historical pet phrasings; both classify and extract identically.
	petFollowedRe = regexp.MustCompile(`^(?P<player>.*?) has a funny feeling like .*? followed: (?P<pet>.*?) at (?P<milestone>[\d,]+ .*?)[.!]?$`)
	petBackpackRe = regexp.MustCompile(`^(?P<player>.*?) feels something weird sneaking into (?:his|her) backpack: (?P<pet>.*?) at (?P<milestone>[\d,]+ .*?)[.!]?$`)

	questRe = regexp.MustCompile(`^(?P<player>.*?) has completed a quest: (?P<quest>.+?)\.?$`)
	diaryRe = regexp.MustCompile(`^(?P<player>.*?) has completed the (?P<tier>Easy|Medium|Hard|Elite) (?P<diary>.+?) diary\.?$`)

	pkLostRe = regexp.MustCompile(`^(?P<loser>.*?) has been defeated by (?P<winner>.*?) in (?P<location>.+?)(?: and lost \((?P<value>[\d,]+) coins\) worth of loot)?\.?$`)
	pkWonRe  = regexp.MustCompile(`^(?P<winner>.*?) has defeated (?P<loser>.*?) and received \((?P<value>[\d,]+) coins\) worth of loot[.!]?$`)

	inviteRe   = regexp.MustCompile(`^(?P<member>.*?) has been invited into the clan by (?P<inviter>.*?)\.?$`)
	leftRe     = regexp.MustCompile(`^(?P<player>.*?) has left the clan\.?$`)
	expelledRe = regexp.MustCompile(`^(?P<player>.*?) has been expelled from the clan(?: by .+?)?\.?$`)

	levelHighestRe = regexp.MustCompile(`^(?P<player>.*?) has reached the highest possible (?P<skill>.+?) level of (?P<level>[\d,]+)[.!]?$`)
	levelTotalRe   = regexp.MustCompile(`^(?P<player>.*?) has reached a total level of (?P<level>[\d,]+)[.!]?$`)
	levelRe        = regexp.MustCompile(`^(?P<player>.*?) has reached (?P<skill>.+?) level (?P<level>[\d,]+)[.!]?$`)
	xpRe           = regexp.MustCompile(`^(?P<player>.*?) has reached (?P<xp>[\d,]+) XP in (?P<skill>.+?)[.!]?$`)

	collectionLogRe = regexp.MustCompile(`^(?P<player>.*?) received a new collection log item: (?P<item>.*?) \((?P<slot>[\d,]+)/(?P<total>[\d,]+)\)[.!]?$`)

	cofferDepositRe  = regexp.MustCompile(`^(?P<player>.*?) has deposited (?P<gp>[\d,]+) coins into the coffer\.?$`)
	cofferWithdrawRe = regexp.MustCompile(`^(?P<player>.*?) has withdrawn (?P<gp>[\d,]+) coins from the coffer\.?$`)

	personalBestRe = regexp.MustCompile(`^(?P<player>.*?) has achieved a new (?P<activity>.+?) personal best: (?P<time>\d+(?::\d+)*(?:\.\d+)?)\.?$`)

	lootKeyRe = regexp.MustCompile(`^(?P<player>.*?) has opened a loot key worth (?P<value>[\d,]+) coins[.!]?$`)
)

func namedGroups(re *regexp.Regexp, line string) map[string]string {
	match := re.FindStringSubmatch(line)
	if match == nil {
		return nil
	}
	groups := make(map[string]string, len(match))
	for i, name := range re.SubexpNames() {
		if name != "" {
			groups[name] = match[i]
		}
	}
	return groups
}

func parseGroupedInt(s string) (int64, bool) {
	v, err := strconv.ParseInt(strings.ReplaceAll(s, ",", ""), 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func ptr[T any](v T) *T {
	return &v
}

// ExtractItemDrop parses an ordinary drop line. The optional trailing
// "from <source>" clause is recognized and excluded from the item name.
func ExtractItemDrop(line string) *DropItem {
	groups := namedGroups(itemDropRe, line)
	if groups == nil {
		return nil
	}

	quantity := int64(1)
	if groups["quantity"] != "" {
		if q, ok := parseGroupedInt(groups["quantity"]); ok {
			quantity = q
		}
	}

	var value *int64
	if groups["value"] != "" {
		if v, ok := parseGroupedInt(groups["value"]); ok {
			value = &v
		}
	}

	item := strings.TrimSpace(groups["item"])
	return &DropItem{
		Player:   strings.TrimSpace(groups["player"]),
		ItemName: item,
		Quantity: quantity,
		Value:    value,
		IconURL:  ptr(ItemIconURL(item)),
		Source:   strings.TrimSpace(groups["source"]),
	}
}

// ExtractRaidDrop parses a raid loot line. Raid lines never carry a value
// token; enrichment may backfill Value afterwards.
func ExtractRaidDrop(line string) *DropItem {
	groups := namedGroups(raidDropRe, line)
	if groups == nil {
		return nil
	}

	item := strings.TrimSpace(groups["item"])
	return &DropItem{
		Player:   strings.TrimSpace(groups["player"]),
		ItemName: item,
		Quantity: 1,
		IconURL:  ptr(ItemIconURL(item)),
	}
}

func ExtractPetDrop(line string) *PetDrop {
	groups := namedGroups(petFollowedRe, line)
	if groups == nil {
		groups = namedGroups(petBackpackRe, line)
	}
	if groups == nil {
		return nil
	}

	pet := strings.TrimSpace(groups["pet"])
	return &PetDrop{
		Player:    strings.TrimSpace(groups["player"]),
		PetName:   pet,
		Milestone: strings.TrimSpace(groups["milestone"]),
		IconURL:   ptr(PetIconURL(pet)),
	}
}

func ExtractQuestCompletion(line string) *QuestCompletion {
	groups := namedGroups(questRe, line)
	if groups == nil {
		return nil
	}

	quest := strings.TrimSpace(groups["quest"])
	return &QuestCompletion{
		Player:     strings.TrimSpace(groups["player"]),
		QuestName:  quest,
		RewardIcon: ptr(QuestRewardIconURL(quest)),
	}
}

func ExtractDiaryCompletion(line string) *DiaryCompletion {
	groups := namedGroups(diaryRe, line)
	if groups == nil {
		return nil
	}

	tier, ok := ParseDiaryTier(groups["tier"])
	if !ok {
		return nil
	}

	return &DiaryCompletion{
		Player:    strings.TrimSpace(groups["player"]),
		DiaryName: strings.TrimSpace(groups["diary"]),
		Tier:      tier,
	}
}

// ExtractPkEvent handles both fight shapes. The clan mate alias is the
// tenant's own member: the loser in the "has been defeated by" shape, the
// winner in the "has defeated" shape. Monetary value is optional only in
// the lost-without-loot case.
func ExtractPkEvent(line string) *PkEvent {
	if groups := namedGroups(pkLostRe, line); groups != nil {
		loser := strings.TrimSpace(groups["loser"])
		winner := strings.TrimSpace(groups["winner"])

		var gp *int64
		if groups["value"] != "" {
			if v, ok := parseGroupedInt(groups["value"]); ok {
				gp = &v
			}
		}

		return &PkEvent{
			Winner:      winner,
			Loser:       loser,
			ClanMate:    loser,
			ClanMateWon: false,
			GpExchanged: gp,
		}
	}

	if groups := namedGroups(pkWonRe, line); groups != nil {
		winner := strings.TrimSpace(groups["winner"])
		loser := strings.TrimSpace(groups["loser"])

		var gp *int64
		if v, ok := parseGroupedInt(groups["value"]); ok {
			gp = &v
		}

		return &PkEvent{
			Winner:      winner,
			Loser:       loser,
			ClanMate:    winner,
			ClanMateWon: true,
			GpExchanged: gp,
		}
	}

	return nil
}

func ExtractInvite(line string) *Invite {
	groups := namedGroups(inviteRe, line)
	if groups == nil {
		return nil
	}

	return &Invite{
		NewMember: strings.TrimSpace(groups["member"]),
		Inviter:   strings.TrimSpace(groups["inviter"]),
	}
}

func ExtractLeftClan(line string) *MemberDeparture {
	groups := namedGroups(leftRe, line)
	if groups == nil {
		return nil
	}

	return &MemberDeparture{
		Player:   strings.TrimSpace(groups["player"]),
		Expelled: false,
	}
}

func ExtractExpelled(line string) *MemberDeparture {
	groups := namedGroups(expelledRe, line)
	if groups == nil {
		return nil
	}

	return &MemberDeparture{
		Player:   strings.TrimSpace(groups["player"]),
		Expelled: true,
	}
}

// ExtractLevelMilestone special-cases the maximum level phrasing and total
// level lines in addition to the ordinary one.
func ExtractLevelMilestone(line string) *LevelMilestone {
	for _, re := range []*regexp.Regexp{levelHighestRe, levelTotalRe, levelRe} {
		groups := namedGroups(re, line)
		if groups == nil {
			continue
		}

		level, ok := parseGroupedInt(groups["level"])
		if !ok {
			return nil
		}

		skill := strings.TrimSpace(groups["skill"])
		if re == levelTotalRe {
			skill = "Total"
		}

		return &LevelMilestone{
			Player:    strings.TrimSpace(groups["player"]),
			Skill:     skill,
			Level:     level,
			SkillIcon: ptr(SkillIconURL(skill)),
		}
	}
	return nil
}

func ExtractXPMilestone(line string) *XPMilestone {
	groups := namedGroups(xpRe, line)
	if groups == nil {
		return nil
	}

	xp, ok := parseGroupedInt(groups["xp"])
	if !ok {
		return nil
	}

	skill := strings.TrimSpace(groups["skill"])
	return &XPMilestone{
		Player:    strings.TrimSpace(groups["player"]),
		Skill:     skill,
		XP:        xp,
		SkillIcon: ptr(SkillIconURL(skill)),
	}
}

func ExtractCollectionLog(line string) *CollectionLogItem {
	groups := namedGroups(collectionLogRe, line)
	if groups == nil {
		return nil
	}

	slot, ok := parseGroupedInt(groups["slot"])
	if !ok {
		return nil
	}
	total, ok := parseGroupedInt(groups["total"])
	if !ok || total == 0 {
		return nil
	}

	item := strings.TrimSpace(groups["item"])
	return &CollectionLogItem{
		Player:     strings.TrimSpace(groups["player"]),
		ItemName:   item,
		Slot:       slot,
		TotalSlots: total,
		IconURL:    ptr(ItemIconURL(item)),
	}
}

func ExtractCofferTransaction(line string) *CofferTransaction {
	if groups := namedGroups(cofferDepositRe, line); groups != nil {
		gp, ok := parseGroupedInt(groups["gp"])
		if !ok {
			return nil
		}
		return &CofferTransaction{
			Player:   strings.TrimSpace(groups["player"]),
			Gp:       gp,
			Donation: true,
		}
	}

	if groups := namedGroups(cofferWithdrawRe, line); groups != nil {
		gp, ok := parseGroupedInt(groups["gp"])
		if !ok {
			return nil
		}
		return &CofferTransaction{
			Player:   strings.TrimSpace(groups["player"]),
			Gp:       gp,
			Donation: false,
		}
	}

	return nil
}

func ExtractPersonalBest(line string) *PersonalBest {
	groups := namedGroups(personalBestRe, line)
	if groups == nil {
		return nil
	}

	raw := groups["time"]
	seconds, ok := parseDuration(raw)
	if !ok {
		return nil
	}

	return &PersonalBest{
		Player:      strings.TrimSpace(groups["player"]),
		Activity:    strings.TrimSpace(groups["activity"]),
		Time:        raw,
		TimeSeconds: seconds,
	}
}

func ExtractLootKey(line string) *LootKey {
	groups := namedGroups(lootKeyRe, line)
	if groups == nil {
		return nil
	}

	value, ok := parseGroupedInt(groups["value"])
	if !ok {
		return nil
	}

	return &LootKey{
		Player: strings.TrimSpace(groups["player"]),
		Value:  value,
	}
}

// parseDuration converts a broadcast time token ("32.40", "1:25", "1:02:45")
// to seconds. Fractional seconds carry game-tick precision.
func parseDuration(s string) (float64, bool) {
	parts := strings.Split(s, ":")
	if len(parts) == 0 || len(parts) > 3 {
		return 0, false
	}

	total := 0.0
	for _, part := range parts {
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return 0, false
		}
		total = total*60 + v
	}
	return total, true
}
