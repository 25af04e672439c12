package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"herald/internal/clanmate"
	"herald/internal/droplog"
	"herald/internal/guild"
	"herald/internal/logger"
	"herald/internal/pb"
	"herald/pkg/errors"
)

type stubService struct {
	Service

	registered   *RegisterGuildResponse
	guild        *guild.RegisteredGuild
	updateReq    *UpdatePolicyRequest
	drops        []droplog.DropLog
	broadcasts   []droplog.Broadcast
	clanMates    []clanmate.ClanMate
	clogEntries  []clanmate.CollectionLogLeaderboardEntry
	pbEntries    []pb.LeaderboardEntry
	broadcastLim int64
}

func (s *stubService) RegisterGuild(ctx context.Context, guildID uint64) (*RegisterGuildResponse, error) {
	return s.registered, nil
}

func (s *stubService) GetGuild(ctx context.Context, guildID uint64) (*guild.RegisteredGuild, error) {
	if s.guild == nil || s.guild.GuildID != guildID {
		return nil, errors.ErrNotFound.WithDetail("guild_id", guildID)
	}
	return s.guild, nil
}

func (s *stubService) UpdatePolicy(ctx context.Context, guildID uint64, req UpdatePolicyRequest) (*guild.RegisteredGuild, error) {
	if s.guild == nil || s.guild.GuildID != guildID {
		return nil, errors.ErrNotFound.WithDetail("guild_id", guildID)
	}
	s.updateReq = &req
	return s.guild, nil
}

func (s *stubService) DropsBetween(ctx context.Context, guildID uint64, start, end time.Time) ([]droplog.DropLog, error) {
	return s.drops, nil
}

func (s *stubService) LatestBroadcasts(ctx context.Context, guildID uint64, limit int64) ([]droplog.Broadcast, error) {
	s.broadcastLim = limit
	return s.broadcasts, nil
}

func (s *stubService) PersonalBestLeaderboard(ctx context.Context, guildID uint64, activityName string) ([]pb.LeaderboardEntry, error) {
	if len(s.pbEntries) == 0 {
		return nil, errors.ErrNotFound.WithDetail("activity", activityName)
	}
	return s.pbEntries, nil
}

func newTestRouter(service Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(service, logger.NopLogger()).RegisterRoutes(router)
	return router
}

func TestRegisterGuild(t *testing.T) {
	g := guild.NewRegisteredGuild(42)
	stub := &stubService{registered: &RegisterGuildResponse{Guild: g, VerificationCode: g.VerificationCode}}
	router := newTestRouter(stub)

	body, _ := json.Marshal(RegisterGuildRequest{GuildID: 42})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/guilds", bytes.NewReader(body))
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var resp RegisterGuildResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, uint64(42), resp.Guild.GuildID)
	assert.Regexp(t, `^\d{3}-\d{3}-\d{3}$`, resp.VerificationCode)
}

func TestRegisterGuildRejectsMissingID(t *testing.T) {
	router := newTestRouter(&stubService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/guilds", bytes.NewReader([]byte(`{}`)))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetGuildNotFound(t *testing.T) {
	router := newTestRouter(&stubService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/guilds/99", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetGuildRejectsBadID(t *testing.T) {
	router := newTestRouter(&stubService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/guilds/notanumber", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdatePolicy(t *testing.T) {
	stub := &stubService{guild: guild.NewRegisteredGuild(42)}
	router := newTestRouter(stub)

	body := []byte(`{"drop_price_threshold": 500000, "disallowed_broadcast_types": ["Invite"]}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/v1/guilds/42/policy", bytes.NewReader(body))
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, stub.updateReq)
	require.NotNil(t, stub.updateReq.DropPriceThreshold)
	assert.Equal(t, int64(500000), *stub.updateReq.DropPriceThreshold)
}

func TestGetDropsRequiresStart(t *testing.T) {
	router := newTestRouter(&stubService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/guilds/42/drops", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetDrops(t *testing.T) {
	stub := &stubService{drops: []droplog.DropLog{{GuildID: 42}}}
	router := newTestRouter(stub)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/guilds/42/drops?start=2026-08-01T00:00:00Z", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var logs []droplog.DropLog
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &logs))
	assert.Len(t, logs, 1)
}

func TestGetBroadcastsCapsLimit(t *testing.T) {
	stub := &stubService{}
	router := newTestRouter(stub)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/guilds/42/broadcasts?limit=99999", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1000), stub.broadcastLim)
}

func TestPersonalBestLeaderboardRequiresActivity(t *testing.T) {
	router := newTestRouter(&stubService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/guilds/42/leaderboards/personal-best", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPersonalBestLeaderboard(t *testing.T) {
	stub := &stubService{pbEntries: []pb.LeaderboardEntry{{PlayerName: "KANlEL OUTIS", TimeInSeconds: 1593.6}}}
	router := newTestRouter(stub)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/guilds/42/leaderboards/personal-best?activity=Zulrah", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var entries []pb.LeaderboardEntry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "KANlEL OUTIS", entries[0].PlayerName)
}
