package broadcast

import (
	"fmt"
	"net/url"
	"strings"
)

// Icon URLs are derived deterministically from the subject name against the
// wiki image host: spaces become underscores, then the name is
// percent-encoded. This is a pure string transform, never a network call.

const wikiImageBase = "https://oldschool.runescape.wiki/images"

func wikiImageName(name string) string {
	return url.QueryEscape(strings.ReplaceAll(name, " ", "_"))
}

func ItemIconURL(itemName string) string {
	return fmt.Sprintf("%s/%s_detail.png", wikiImageBase, wikiImageName(itemName))
}

func PetIconURL(petName string) string {
	return fmt.Sprintf("%s/%s_chathead.png", wikiImageBase, wikiImageName(petName))
}

func SkillIconURL(skill string) string {
	return fmt.Sprintf("%s/%s_icon.png", wikiImageBase, wikiImageName(skill))
}

func QuestRewardIconURL(questName string) string {
	return fmt.Sprintf("%s/%s_reward_scroll.png", wikiImageBase, wikiImageName(questName))
}

func ClanRankIconURL(rank string) string {
	return fmt.Sprintf("%s/Clan_icon_-_%s.png", wikiImageBase, wikiImageName(rank))
}

var (
	diaryIconURL    = wikiImageBase + "/Achievement_Diaries.png"
	pkIconURL       = wikiImageBase + "/Skull.png"
	clanIconURL     = wikiImageBase + "/Your_Clan_icon.png"
	cofferIconURL   = wikiImageBase + "/Coins_10000.png"
	lootKeyIconURL  = wikiImageBase + "/Loot_key.png"
	speedrunIconURL = wikiImageBase + "/Giant_stopwatch.png"
)
