package enrichment

import (
	"context"

	"herald/internal/broadcast"
	"herald/internal/logger"
)

// Service composes the upstream clients and cache into the lookup snapshot
// the pipeline hands to the broadcast handler. Every lookup is best effort;
// a cold cache plus a dead upstream degrades to empty maps, never an error
// that would stall message processing.
type Service struct {
	ge     *GEClient
	wiki   *WikiClient
	cache  *Cache
	logger logger.Logger
}

func NewService(ge *GEClient, wiki *WikiClient, cache *Cache, log logger.Logger) *Service {
	return &Service{
		ge:     ge,
		wiki:   wiki,
		cache:  cache,
		logger: log,
	}
}

// ItemIDs returns the name-to-id index, read through the cache.
func (s *Service) ItemIDs(ctx context.Context) map[string]int64 {
	items, ok := s.cache.GetItemMapping(ctx)
	if !ok {
		fetched, err := s.ge.ItemMapping(ctx)
		if err != nil {
			s.logger.WarnwCtx(ctx, "Item mapping unavailable",
				"error", err,
			)
			return nil
		}
		items = fetched

		if err := s.cache.SetItemMapping(ctx, items); err != nil {
			s.logger.WarnwCtx(ctx, "Failed to cache item mapping",
				"error", err,
			)
		}
	}

	index := make(map[string]int64, len(items))
	for _, item := range items {
		index[item.Name] = item.ID
	}
	return index
}

// QuestDifficulties returns the quest difficulty index, read through the
// cache.
func (s *Service) QuestDifficulties(ctx context.Context) map[string]broadcast.QuestDifficulty {
	quests, ok := s.cache.GetQuests(ctx)
	if !ok {
		fetched, err := s.wiki.QuestDifficulties(ctx)
		if err != nil {
			s.logger.WarnwCtx(ctx, "Quest difficulties unavailable",
				"error", err,
			)
			return nil
		}
		quests = fetched

		if err := s.cache.SetQuests(ctx, quests); err != nil {
			s.logger.WarnwCtx(ctx, "Failed to cache quest difficulties",
				"error", err,
			)
		}
	}

	index := make(map[string]broadcast.QuestDifficulty, len(quests))
	for _, quest := range quests {
		index[quest.Name] = quest.Difficulty
	}
	return index
}

// PriceByID resolves an item's current price, read through the short-TTL
// price cache. The instant-buy observation is used as the item's value.
func (s *Service) PriceByID(ctx context.Context, itemID int64) (int64, bool) {
	if price, ok := s.cache.GetPrice(ctx, itemID); ok {
		return price.High, price.High > 0
	}

	price, err := s.ge.LatestPrice(ctx, itemID)
	if err != nil {
		s.logger.WarnwCtx(ctx, "Price lookup failed",
			"item_id", itemID,
			"error", err,
		)
		return 0, false
	}

	if err := s.cache.SetPrice(ctx, itemID, price); err != nil {
		s.logger.WarnwCtx(ctx, "Failed to cache item price",
			"item_id", itemID,
			"error", err,
		)
	}

	return price.High, price.High > 0
}

// Snapshot assembles the lookup set for one processing batch.
func (s *Service) Snapshot(ctx context.Context) broadcast.Enrichment {
	return broadcast.Enrichment{
		ItemIDs:           s.ItemIDs(ctx),
		QuestDifficulties: s.QuestDifficulties(ctx),
		PriceByID:         s.PriceByID,
	}
}
