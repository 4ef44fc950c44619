package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cppla/inkwell/utils"
)

// StatsController provides counts and the database health probe.
type StatsController struct {
	repo Repository
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(repo Repository) *StatsController {
	return &StatsController{repo: repo}
}

// GetStats returns user and article totals.
func (s *StatsController) GetStats(ctx *gin.Context) {
	rc := ctx.Request.Context()
	users, err := s.repo.CountUsers(rc)
	if err != nil {
		respondStoreError(ctx, err, "failed to count users")
		return
	}
	articles, err := s.repo.CountArticles(rc)
	if err != nil {
		respondStoreError(ctx, err, "failed to count articles")
		return
	}
	utils.Success(ctx, gin.H{
		"user_count":    users,
		"article_count": articles,
	})
}

// Health pings the database.
func (s *StatsController) Health(ctx *gin.Context) {
	if err := s.repo.Ping(ctx.Request.Context()); err != nil {
		_ = ctx.Error(err)
		utils.Error(ctx, http.StatusServiceUnavailable, 50301, "database unavailable")
		return
	}
	utils.Success(ctx, gin.H{"status": "ok"})
}
