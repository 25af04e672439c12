package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"herald/internal/constants"
	"herald/internal/guild"
	"herald/internal/logger"
	"herald/pkg/errors"
	"herald/pkg/metrics"
)

type Handler struct {
	Service Service
	Logger  logger.Logger
}

func NewHandler(service Service, log logger.Logger) *Handler {
	return &Handler{
		Service: service,
		Logger:  log,
	}
}

func (h *Handler) HandleError(c *gin.Context, err error) {
	h.Logger.ErrorwCtx(c.Request.Context(), "Request error", "error", err, "path", c.Request.URL.Path)

	status := errors.ToHTTPStatus(err)
	response := errors.ToErrorResponse(err)

	c.JSON(status, response)
}

// MetricsMiddleware counts requests by route template rather than raw path
// so guild ids do not explode the label space.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.APIRequestsTotal.WithLabelValues(
			c.Request.Method,
			path,
			strconv.Itoa(c.Writer.Status()),
		).Inc()
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")
	{
		guilds := v1.Group("/guilds")
		{
			guilds.POST("", h.RegisterGuild)
			guilds.GET("", h.ListGuilds)
			guilds.POST("/verify", h.VerifyClan)
			guilds.GET("/:guild_id", h.GetGuild)
			guilds.PUT("/:guild_id/policy", h.UpdatePolicy)
			guilds.DELETE("/:guild_id", h.DeleteGuild)
			guilds.GET("/:guild_id/drops", h.GetDrops)
			guilds.GET("/:guild_id/broadcasts", h.GetBroadcasts)
			guilds.GET("/:guild_id/clan-mates", h.ListClanMates)
			guilds.GET("/:guild_id/leaderboards/collection-log", h.CollectionLogLeaderboard)
			guilds.GET("/:guild_id/leaderboards/personal-best", h.PersonalBestLeaderboard)
		}
	}
}

func (h *Handler) guildID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("guild_id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(
			errors.ErrValidation.WithDetail("guild_id", c.Param("guild_id"))))
		return 0, false
	}
	return id, true
}

// RegisterGuild godoc
// @Summary      Register a guild
// @Description  Create a registration for a guild, returning its verification code
// @Tags         guilds
// @Accept       json
// @Produce      json
// @Param        guild  body      RegisterGuildRequest  true  "Guild to register"
// @Success      201    {object}  RegisterGuildResponse
// @Failure      400    {object}  errors.ErrorResponse
// @Failure      500    {object}  errors.ErrorResponse
// @Router       /guilds [post]
func (h *Handler) RegisterGuild(c *gin.Context) {
	var req RegisterGuildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithCause(err)))
		return
	}

	resp, err := h.Service.RegisterGuild(c.Request.Context(), req.GuildID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// ListGuilds godoc
// @Summary      List registered guilds
// @Tags         guilds
// @Produce      json
// @Param        clan_name  query  string  false  "Return only the registration bound to this clan name"
// @Success      200  {array}   guild.RegisteredGuild
// @Failure      404  {object}  errors.ErrorResponse
// @Failure      500  {object}  errors.ErrorResponse
// @Router       /guilds [get]
func (h *Handler) ListGuilds(c *gin.Context) {
	if clanName := c.Query("clan_name"); clanName != "" {
		g, err := h.Service.GuildByClanName(c.Request.Context(), clanName)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		c.JSON(http.StatusOK, []*guild.RegisteredGuild{g})
		return
	}

	guilds, err := h.Service.ListGuilds(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, guilds)
}

// GetGuild godoc
// @Summary      Get a guild registration
// @Tags         guilds
// @Produce      json
// @Param        guild_id  path      int  true  "Guild ID"
// @Success      200       {object}  guild.RegisteredGuild
// @Failure      404       {object}  errors.ErrorResponse
// @Router       /guilds/{guild_id} [get]
func (h *Handler) GetGuild(c *gin.Context) {
	id, ok := h.guildID(c)
	if !ok {
		return
	}

	g, err := h.Service.GetGuild(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

// UpdatePolicy godoc
// @Summary      Update a guild's broadcast policy
// @Tags         guilds
// @Accept       json
// @Produce      json
// @Param        guild_id  path      int                  true  "Guild ID"
// @Param        policy    body      UpdatePolicyRequest  true  "Policy fields to update"
// @Success      200       {object}  guild.RegisteredGuild
// @Failure      400       {object}  errors.ErrorResponse
// @Failure      404       {object}  errors.ErrorResponse
// @Router       /guilds/{guild_id}/policy [put]
func (h *Handler) UpdatePolicy(c *gin.Context) {
	id, ok := h.guildID(c)
	if !ok {
		return
	}

	var req UpdatePolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithCause(err)))
		return
	}

	g, err := h.Service.UpdatePolicy(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

// DeleteGuild godoc
// @Summary      Delete a guild registration
// @Tags         guilds
// @Param        guild_id  path  int  true  "Guild ID"
// @Success      204  "No Content"
// @Failure      404  {object}  errors.ErrorResponse
// @Router       /guilds/{guild_id} [delete]
func (h *Handler) DeleteGuild(c *gin.Context) {
	id, ok := h.guildID(c)
	if !ok {
		return
	}

	if err := h.Service.DeleteGuild(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// VerifyClan godoc
// @Summary      Bind a clan name to a registration by verification code
// @Tags         guilds
// @Accept       json
// @Produce      json
// @Param        verification  body      VerifyClanRequest  true  "Code and clan name"
// @Success      200  {object}  guild.RegisteredGuild
// @Failure      404  {object}  errors.ErrorResponse
// @Failure      409  {object}  errors.ErrorResponse
// @Router       /guilds/verify [post]
func (h *Handler) VerifyClan(c *gin.Context) {
	var req VerifyClanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithCause(err)))
		return
	}

	g, err := h.Service.VerifyClan(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

// GetDrops godoc
// @Summary      List drop log entries between two dates
// @Tags         guilds
// @Produce      json
// @Param        guild_id  path   int     true   "Guild ID"
// @Param        start     query  string  true   "RFC 3339 start"
// @Param        end       query  string  false  "RFC 3339 end, defaults to now"
// @Success      200  {array}   droplog.DropLog
// @Failure      400  {object}  errors.ErrorResponse
// @Router       /guilds/{guild_id}/drops [get]
func (h *Handler) GetDrops(c *gin.Context) {
	id, ok := h.guildID(c)
	if !ok {
		return
	}

	start, err := time.Parse(time.RFC3339, c.Query("start"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(
			errors.ErrValidation.WithDetail("start", c.Query("start"))))
		return
	}

	end := time.Now().UTC()
	if raw := c.Query("end"); raw != "" {
		end, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, errors.ToErrorResponse(
				errors.ErrValidation.WithDetail("end", raw)))
			return
		}
	}

	logs, err := h.Service.DropsBetween(c.Request.Context(), id, start, end)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

// GetBroadcasts godoc
// @Summary      List the most recent broadcasts for a guild
// @Tags         guilds
// @Produce      json
// @Param        guild_id  path   int  true   "Guild ID"
// @Param        limit     query  int  false  "Max entries, capped"
// @Success      200  {array}   droplog.Broadcast
// @Failure      400  {object}  errors.ErrorResponse
// @Router       /guilds/{guild_id}/broadcasts [get]
func (h *Handler) GetBroadcasts(c *gin.Context) {
	id, ok := h.guildID(c)
	if !ok {
		return
	}

	limit := int64(constants.DefaultLimit)
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, errors.ToErrorResponse(
				errors.ErrValidation.WithDetail("limit", raw)))
			return
		}
		limit = parsed
	}
	if limit > constants.MaxLimit {
		limit = constants.MaxLimit
	}

	broadcasts, err := h.Service.LatestBroadcasts(c.Request.Context(), id, limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, broadcasts)
}

// ListClanMates godoc
// @Summary      List the tracked roster for a guild
// @Tags         guilds
// @Produce      json
// @Param        guild_id  path  int  true  "Guild ID"
// @Success      200  {array}   clanmate.ClanMate
// @Failure      400  {object}  errors.ErrorResponse
// @Router       /guilds/{guild_id}/clan-mates [get]
func (h *Handler) ListClanMates(c *gin.Context) {
	id, ok := h.guildID(c)
	if !ok {
		return
	}

	mates, err := h.Service.ListClanMates(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, mates)
}

// CollectionLogLeaderboard godoc
// @Summary      Collection log totals ranked high to low
// @Tags         leaderboards
// @Produce      json
// @Param        guild_id  path  int  true  "Guild ID"
// @Success      200  {array}   clanmate.CollectionLogLeaderboardEntry
// @Router       /guilds/{guild_id}/leaderboards/collection-log [get]
func (h *Handler) CollectionLogLeaderboard(c *gin.Context) {
	id, ok := h.guildID(c)
	if !ok {
		return
	}

	entries, err := h.Service.CollectionLogLeaderboard(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// PersonalBestLeaderboard godoc
// @Summary      Best times for an activity ranked fastest first
// @Tags         leaderboards
// @Produce      json
// @Param        guild_id  path   int     true  "Guild ID"
// @Param        activity  query  string  true  "Exact activity name"
// @Success      200  {array}   pb.LeaderboardEntry
// @Failure      404  {object}  errors.ErrorResponse
// @Router       /guilds/{guild_id}/leaderboards/personal-best [get]
func (h *Handler) PersonalBestLeaderboard(c *gin.Context) {
	id, ok := h.guildID(c)
	if !ok {
		return
	}

	activity := c.Query("activity")
	if activity == "" {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(
			errors.ErrValidation.WithDetail("reason", "missing activity query parameter")))
		return
	}

	entries, err := h.Service.PersonalBestLeaderboard(c.Request.Context(), id, activity)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}
