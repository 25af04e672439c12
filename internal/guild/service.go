package guild

import (
	"context"
	"sync"
	"time"

	"herald/internal/broadcast"
	"herald/internal/logger"
)

// Service caches per-tenant policy snapshots in front of the repository so
// the pipeline does not hit the document store for every line.
type Service struct {
	repo   Repository
	logger logger.Logger
	ttl    time.Duration

	mu    sync.RWMutex
	cache map[uint64]cachedPolicy
}

type cachedPolicy struct {
	guild     *RegisteredGuild
	fetchedAt time.Time
}

func NewService(repo Repository, cacheTTL time.Duration, log logger.Logger) *Service {
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}
	return &Service{
		repo:   repo,
		logger: log,
		ttl:    cacheTTL,
		cache:  make(map[uint64]cachedPolicy),
	}
}

// PolicyFor returns the policy snapshot for a guild, served from cache when
// fresh. A nil guild pointer means the guild is not registered.
func (s *Service) PolicyFor(ctx context.Context, guildID uint64) (*RegisteredGuild, broadcast.Policy, error) {
	s.mu.RLock()
	entry, ok := s.cache[guildID]
	s.mu.RUnlock()

	if ok && time.Since(entry.fetchedAt) < s.ttl {
		if entry.guild == nil {
			return nil, broadcast.Policy{}, nil
		}
		return entry.guild, entry.guild.Policy(), nil
	}

	g, err := s.repo.GetByGuildID(ctx, guildID)
	if err != nil {
		// Serve a stale snapshot over failing the line outright.
		if ok && entry.guild != nil {
			s.logger.WarnwCtx(ctx, "Serving stale guild policy after lookup failure",
				"guild_id", guildID,
				"error", err,
			)
			return entry.guild, entry.guild.Policy(), nil
		}
		return nil, broadcast.Policy{}, err
	}

	s.mu.Lock()
	s.cache[guildID] = cachedPolicy{guild: g, fetchedAt: time.Now()}
	s.mu.Unlock()

	if g == nil {
		return nil, broadcast.Policy{}, nil
	}
	return g, g.Policy(), nil
}

// Invalidate drops a guild's cached snapshot, forcing the next lookup to
// re-read the store. Called after management API writes.
func (s *Service) Invalidate(guildID uint64) {
	s.mu.Lock()
	delete(s.cache, guildID)
	s.mu.Unlock()
}
