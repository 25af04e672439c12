package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"herald/internal/constants"
	"herald/pkg/metrics"
)

// Cache is the Redis layer in front of the upstream clients. Values are
// stored as JSON; a decode failure counts as a miss so a format change
// never wedges the pipeline on stale bytes.
type Cache struct {
	client *redis.Client
}

func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client}
}

func (c *Cache) GetItemMapping(ctx context.Context) ([]Item, bool) {
	var items []Item
	if !c.get(ctx, constants.CacheKeyItemMapping, "mapping", &items) {
		return nil, false
	}
	return items, true
}

func (c *Cache) SetItemMapping(ctx context.Context, items []Item) error {
	return c.set(ctx, constants.CacheKeyItemMapping, items, constants.ItemMappingTTL)
}

func (c *Cache) GetQuests(ctx context.Context) ([]Quest, bool) {
	var quests []Quest
	if !c.get(ctx, constants.CacheKeyQuestList, "quests", &quests) {
		return nil, false
	}
	return quests, true
}

func (c *Cache) SetQuests(ctx context.Context, quests []Quest) error {
	return c.set(ctx, constants.CacheKeyQuestList, quests, constants.QuestListTTL)
}

func (c *Cache) GetPrice(ctx context.Context, itemID int64) (Price, bool) {
	var price Price
	if !c.get(ctx, priceKey(itemID), "price", &price) {
		return Price{}, false
	}
	return price, true
}

func (c *Cache) SetPrice(ctx context.Context, itemID int64, price Price) error {
	return c.set(ctx, priceKey(itemID), price, constants.ItemPriceTTL)
}

func priceKey(itemID int64) string {
	return constants.CacheKeyPricePrefix + strconv.FormatInt(itemID, 10)
}

func (c *Cache) get(ctx context.Context, key, lookup string, out interface{}) bool {
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		metrics.EnrichmentCacheTotal.WithLabelValues(lookup, "miss").Inc()
		return false
	}

	if err := json.Unmarshal([]byte(val), out); err != nil {
		metrics.EnrichmentCacheTotal.WithLabelValues(lookup, "miss").Inc()
		return false
	}

	metrics.EnrichmentCacheTotal.WithLabelValues(lookup, "hit").Inc()
	return true
}

func (c *Cache) set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	body, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}

	if err := c.client.Set(ctx, key, body, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache key %s: %w", key, err)
	}
	return nil
}
