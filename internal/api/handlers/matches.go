package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/lineup-editor/internal/models"
	"github.com/jstittsworth/lineup-editor/internal/pitch"
	"github.com/jstittsworth/lineup-editor/internal/services"
	"github.com/jstittsworth/lineup-editor/pkg/utils"
)

type MatchHandler struct {
	repo     *services.TimelineRepository
	cache    *services.CacheService
	catalog  pitch.Catalog
	cacheTTL time.Duration
	logger   *logrus.Logger
}

func NewMatchHandler(repo *services.TimelineRepository, cache *services.CacheService, catalog pitch.Catalog, cacheTTL time.Duration, logger *logrus.Logger) *MatchHandler {
	return &MatchHandler{
		repo:     repo,
		cache:    cache,
		catalog:  catalog,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

type CreateMatchRequest struct {
	Name        string           `json:"name" binding:"required"`
	TeamAName   string           `json:"team_a_name" binding:"required"`
	TeamBName   string           `json:"team_b_name" binding:"required"`
	KickoffAt   time.Time        `json:"kickoff_at"`
	Formations  pitch.Formations `json:"formations"`
	Lineups     pitch.Squads     `json:"lineups" binding:"required"`
	Substitutes pitch.Squads     `json:"substitutes"`
}

// CreateMatch stores a match with its match-load roster
func (h *MatchHandler) CreateMatch(c *gin.Context) {
	var req CreateMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	board, err := pitch.ValidateRoster(pitch.Board{
		Formations:  req.Formations,
		Lineups:     req.Lineups,
		Substitutes: req.Substitutes,
	}, h.catalog)
	if err != nil {
		sendDomainError(c, err)
		return
	}

	match := &models.Match{
		Name:      req.Name,
		TeamAName: req.TeamAName,
		TeamBName: req.TeamBName,
		KickoffAt: req.KickoffAt,
	}
	if err := h.repo.CreateMatch(c.Request.Context(), match, board); err != nil {
		h.logger.WithError(err).Error("Failed to create match")
		utils.SendInternalError(c, "Failed to create match")
		return
	}

	utils.SendCreated(c, match)
}

func (h *MatchHandler) ListMatches(c *gin.Context) {
	matches, err := h.repo.ListMatches(c.Request.Context())
	if err != nil {
		utils.SendInternalError(c, "Failed to fetch matches")
		return
	}
	utils.SendSuccessWithMeta(c, matches, &utils.Meta{Total: int64(len(matches))})
}

func (h *MatchHandler) GetMatch(c *gin.Context) {
	match, err := h.repo.LoadMatch(c.Request.Context(), c.Param("id"))
	if err != nil {
		sendDomainError(c, err)
		return
	}
	utils.SendSuccess(c, match)
}

// GetSnapshots returns the persisted timeline of a match, served from redis
// when possible
func (h *MatchHandler) GetSnapshots(c *gin.Context) {
	ctx := c.Request.Context()
	matchID := c.Param("id")
	cacheKey := services.SnapshotsCacheKey(matchID)

	var snapshots []pitch.Snapshot
	if h.cache != nil {
		err := h.cache.Get(ctx, cacheKey, &snapshots)
		if err == nil {
			utils.SendSuccessWithMeta(c, snapshots, &utils.Meta{Total: int64(len(snapshots))})
			return
		}
		if !errors.Is(err, services.ErrCacheMiss) {
			h.logger.WithError(err).Warn("Snapshot cache read failed")
		}
	}

	if _, err := h.repo.LoadMatch(ctx, matchID); err != nil {
		sendDomainError(c, err)
		return
	}
	snapshots, err := h.repo.LoadSnapshots(ctx, matchID)
	if err != nil {
		utils.SendInternalError(c, "Failed to load snapshots")
		return
	}

	if h.cache != nil {
		if err := h.cache.Set(ctx, cacheKey, snapshots, h.cacheTTL); err != nil {
			h.logger.WithError(err).Warn("Failed to cache snapshots")
		}
	}

	utils.SendSuccessWithMeta(c, snapshots, &utils.Meta{Total: int64(len(snapshots))})
}
