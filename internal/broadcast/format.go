package broadcast

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatCoins renders a coin amount with thousands grouping ("1,456,814").
func FormatCoins(v int64) string {
	s := strconv.FormatInt(v, 10)

	negative := strings.HasPrefix(s, "-")
	if negative {
		s = s[1:]
	}

	var b strings.Builder
	for i, digit := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}

	if negative {
		return "-" + b.String()
	}
	return b.String()
}

// formatDropMessage renders the drop grammar: singular vs "N x Item",
// crossed with value presence.
func formatDropMessage(drop *DropItem) string {
	if drop.Quantity == 1 {
		if drop.Value == nil {
			return fmt.Sprintf("%s received a drop: %s.", drop.Player, drop.ItemName)
		}
		return fmt.Sprintf("%s received a drop: %s (%s coins).", drop.Player, drop.ItemName, FormatCoins(*drop.Value))
	}

	if drop.Value == nil {
		return fmt.Sprintf("%s received a drop: %d x %s.", drop.Player, drop.Quantity, drop.ItemName)
	}
	return fmt.Sprintf("%s received a drop: %d x %s (%s coins).", drop.Player, drop.Quantity, drop.ItemName, FormatCoins(*drop.Value))
}

func formatRaidDropMessage(drop *DropItem) string {
	if drop.Value == nil {
		return fmt.Sprintf("%s received special loot from a raid: %s.", drop.Player, drop.ItemName)
	}
	return fmt.Sprintf("%s received special loot from a raid: %s (%s coins).", drop.Player, drop.ItemName, FormatCoins(*drop.Value))
}
