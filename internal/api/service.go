package api

import (
	"context"
	"time"

	"herald/internal/broadcast"
	"herald/internal/clanmate"
	"herald/internal/droplog"
	"herald/internal/guild"
	"herald/internal/logger"
	"herald/internal/pb"
	"herald/pkg/errors"
)

type Service interface {
	RegisterGuild(ctx context.Context, guildID uint64) (*RegisterGuildResponse, error)
	GetGuild(ctx context.Context, guildID uint64) (*guild.RegisteredGuild, error)
	ListGuilds(ctx context.Context) ([]guild.RegisteredGuild, error)
	GuildByClanName(ctx context.Context, clanName string) (*guild.RegisteredGuild, error)
	UpdatePolicy(ctx context.Context, guildID uint64, req UpdatePolicyRequest) (*guild.RegisteredGuild, error)
	DeleteGuild(ctx context.Context, guildID uint64) error
	VerifyClan(ctx context.Context, req VerifyClanRequest) (*guild.RegisteredGuild, error)

	DropsBetween(ctx context.Context, guildID uint64, start, end time.Time) ([]droplog.DropLog, error)
	LatestBroadcasts(ctx context.Context, guildID uint64, limit int64) ([]droplog.Broadcast, error)
	ListClanMates(ctx context.Context, guildID uint64) ([]clanmate.ClanMate, error)
	CollectionLogLeaderboard(ctx context.Context, guildID uint64) ([]clanmate.CollectionLogLeaderboardEntry, error)
	PersonalBestLeaderboard(ctx context.Context, guildID uint64, activityName string) ([]pb.LeaderboardEntry, error)
}

type service struct {
	guilds    guild.Repository
	policies  *guild.Service
	drops     droplog.Repository
	clanMates clanmate.Repository
	records   pb.Repository
	logger    logger.Logger
}

func NewService(
	guilds guild.Repository,
	policies *guild.Service,
	drops droplog.Repository,
	clanMates clanmate.Repository,
	records pb.Repository,
	log logger.Logger,
) Service {
	return &service{
		guilds:    guilds,
		policies:  policies,
		drops:     drops,
		clanMates: clanMates,
		records:   records,
		logger:    log,
	}
}

func (s *service) RegisterGuild(ctx context.Context, guildID uint64) (*RegisterGuildResponse, error) {
	g, err := s.guilds.CreateIfNew(ctx, guildID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal)
	}

	s.logger.InfowCtx(ctx, "Guild registered", "guild_id", guildID)
	return &RegisterGuildResponse{
		Guild:            g,
		VerificationCode: g.VerificationCode,
	}, nil
}

func (s *service) GetGuild(ctx context.Context, guildID uint64) (*guild.RegisteredGuild, error) {
	g, err := s.guilds.GetByGuildID(ctx, guildID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal)
	}
	if g == nil {
		return nil, errors.ErrNotFound.WithDetail("guild_id", guildID)
	}
	return g, nil
}

func (s *service) ListGuilds(ctx context.Context) ([]guild.RegisteredGuild, error) {
	guilds, err := s.guilds.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal)
	}
	return guilds, nil
}

func (s *service) GuildByClanName(ctx context.Context, clanName string) (*guild.RegisteredGuild, error) {
	g, err := s.guilds.GetByClanName(ctx, clanName)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal)
	}
	if g == nil {
		return nil, errors.ErrNotFound.WithDetail("clan_name", clanName)
	}
	return g, nil
}

func (s *service) UpdatePolicy(ctx context.Context, guildID uint64, req UpdatePolicyRequest) (*guild.RegisteredGuild, error) {
	g, err := s.GetGuild(ctx, guildID)
	if err != nil {
		return nil, err
	}

	if err := applyPolicyUpdate(g, req); err != nil {
		return nil, err
	}

	if err := s.guilds.Update(ctx, g); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal)
	}
	s.policies.Invalidate(guildID)

	s.logger.InfowCtx(ctx, "Guild policy updated", "guild_id", guildID)
	return g, nil
}

func applyPolicyUpdate(g *guild.RegisteredGuild, req UpdatePolicyRequest) error {
	if req.ClanName != nil {
		g.ClanName = *req.ClanName
	}
	if req.BroadcastChannel != nil {
		g.BroadcastChannel = *req.BroadcastChannel
	}
	if req.ClanChatChannel != nil {
		g.ClanChatChannel = *req.ClanChatChannel
	}
	if req.LeaguesBroadcastChannel != nil {
		g.LeaguesBroadcastChannel = *req.LeaguesBroadcastChannel
	}
	if req.KindChannelOverrides != nil {
		for slug := range *req.KindChannelOverrides {
			if broadcast.KindFromSlug(slug) == broadcast.KindUnknown {
				return errors.ErrValidation.WithDetail("kind_channel_override", slug)
			}
		}
		g.KindChannelOverrides = *req.KindChannelOverrides
	}
	if req.WomID != nil {
		if *req.WomID <= 0 {
			g.WomID = nil
		} else {
			g.WomID = req.WomID
		}
	}
	if req.DropPriceThreshold != nil {
		if *req.DropPriceThreshold <= 0 {
			g.DropPriceThreshold = nil
		} else {
			g.DropPriceThreshold = req.DropPriceThreshold
		}
	}
	if req.PkValueThreshold != nil {
		if *req.PkValueThreshold <= 0 {
			g.PkValueThreshold = nil
		} else {
			g.PkValueThreshold = req.PkValueThreshold
		}
	}
	if req.MinQuestDifficulty != nil {
		if *req.MinQuestDifficulty == "" {
			g.MinQuestDifficulty = nil
		} else {
			difficulty, ok := broadcast.ParseQuestDifficulty(*req.MinQuestDifficulty)
			if !ok {
				return errors.ErrValidation.WithDetail("min_quest_difficulty", *req.MinQuestDifficulty)
			}
			g.MinQuestDifficulty = &difficulty
		}
	}
	if req.MinDiaryTier != nil {
		if *req.MinDiaryTier == "" {
			g.MinDiaryTier = nil
		} else {
			tier, ok := broadcast.ParseDiaryTier(*req.MinDiaryTier)
			if !ok {
				return errors.ErrValidation.WithDetail("min_diary_tier", *req.MinDiaryTier)
			}
			g.MinDiaryTier = &tier
		}
	}
	if req.ClogMaxPercentage != nil {
		if *req.ClogMaxPercentage <= 0 {
			g.ClogMaxPercentage = nil
		} else {
			g.ClogMaxPercentage = req.ClogMaxPercentage
		}
	}
	if req.DisallowedBroadcastTypes != nil {
		kinds := make([]broadcast.Kind, 0, len(*req.DisallowedBroadcastTypes))
		for _, slug := range *req.DisallowedBroadcastTypes {
			kind := broadcast.KindFromSlug(slug)
			if kind == broadcast.KindUnknown {
				return errors.ErrValidation.WithDetail("disallowed_broadcast_type", slug)
			}
			kinds = append(kinds, kind)
		}
		g.DisallowedBroadcastTypes = kinds
	}
	if req.CustomFilters != nil {
		for slug := range *req.CustomFilters {
			if broadcast.KindFromSlug(slug) == broadcast.KindUnknown {
				return errors.ErrValidation.WithDetail("custom_filter_kind", slug)
			}
		}
		g.CustomFilters = *req.CustomFilters
	}
	return nil
}

func (s *service) DeleteGuild(ctx context.Context, guildID uint64) error {
	if _, err := s.GetGuild(ctx, guildID); err != nil {
		return err
	}

	if err := s.guilds.Delete(ctx, guildID); err != nil {
		return errors.Wrap(err, errors.ErrInternal)
	}
	s.policies.Invalidate(guildID)

	s.logger.InfowCtx(ctx, "Guild deleted", "guild_id", guildID)
	return nil
}

// VerifyClan binds an in-game clan name to the registration whose code was
// typed in clan chat. A code that matches no registration is reported the
// same way as a wrong one.
func (s *service) VerifyClan(ctx context.Context, req VerifyClanRequest) (*guild.RegisteredGuild, error) {
	g, err := s.guilds.GetByCode(ctx, req.Code)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal)
	}
	if g == nil {
		return nil, errors.ErrNotFound.WithDetail("reason", "unknown verification code")
	}
	if g.ClanName != "" && g.ClanName != req.ClanName {
		return nil, errors.ErrConflict.WithDetail("reason", "registration already bound to another clan")
	}

	g.ClanName = req.ClanName
	if err := s.guilds.Update(ctx, g); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal)
	}
	s.policies.Invalidate(g.GuildID)

	s.logger.InfowCtx(ctx, "Clan verified",
		"guild_id", g.GuildID,
		"clan_name", req.ClanName)
	return g, nil
}

func (s *service) DropsBetween(ctx context.Context, guildID uint64, start, end time.Time) ([]droplog.DropLog, error) {
	logs, err := s.drops.DropsBetween(ctx, guildID, start, end)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal)
	}
	return logs, nil
}

func (s *service) LatestBroadcasts(ctx context.Context, guildID uint64, limit int64) ([]droplog.Broadcast, error) {
	broadcasts, err := s.drops.LatestBroadcasts(ctx, guildID, limit)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal)
	}
	return broadcasts, nil
}

func (s *service) ListClanMates(ctx context.Context, guildID uint64) ([]clanmate.ClanMate, error) {
	mates, err := s.clanMates.List(ctx, guildID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal)
	}
	return mates, nil
}

func (s *service) CollectionLogLeaderboard(ctx context.Context, guildID uint64) ([]clanmate.CollectionLogLeaderboardEntry, error) {
	entries, err := s.clanMates.CollectionLogLeaderboard(ctx, guildID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal)
	}
	return entries, nil
}

func (s *service) PersonalBestLeaderboard(ctx context.Context, guildID uint64, activityName string) ([]pb.LeaderboardEntry, error) {
	activities, err := s.records.ListActivities(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal)
	}

	for _, activity := range activities {
		if activity.ActivityName == activityName {
			entries, err := s.records.Leaderboard(ctx, activity.ID, guildID)
			if err != nil {
				return nil, errors.Wrap(err, errors.ErrInternal)
			}
			return entries, nil
		}
	}

	return nil, errors.ErrNotFound.WithDetail("activity", activityName)
}
