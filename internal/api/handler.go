package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/kurihiro0119/github-pulse/internal/config"
	"github.com/kurihiro0119/github-pulse/internal/domain"
	apperrors "github.com/kurihiro0119/github-pulse/internal/errors"
	"github.com/kurihiro0119/github-pulse/internal/pulse"
)

// Runner runs one pulse collection end to end
type Runner interface {
	Run(ctx context.Context, opts pulse.Options) (*domain.Report, error)
}

// Handler handles API requests
type Handler struct {
	runner Runner
	cfg    *config.Config
	logger *logrus.Logger
}

// NewHandler creates a new API handler
func NewHandler(runner Runner, cfg *config.Config, logger *logrus.Logger) *Handler {
	return &Handler{
		runner: runner,
		cfg:    cfg,
		logger: logger,
	}
}

// GetPulse returns the pulse report for a repository
// GET /api/v1/repos/:owner/:repo/pulse?days=30&strategy=api
func (h *Handler) GetPulse(c *gin.Context) {
	repo := domain.RepoRef{Owner: c.Param("owner"), Name: c.Param("repo")}

	days := h.cfg.Days
	if v := c.Query("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			respondError(c, apperrors.NewBadRequestError("days must be an integer"))
			return
		}
		days = n
	}
	strategy := pulse.Strategy(c.DefaultQuery("strategy", h.cfg.Strategy))

	rep, err := h.runner.Run(c.Request.Context(), pulse.Options{
		Repo:          repo,
		Window:        domain.ReportWindow{Days: days},
		Token:         h.cfg.GitHubToken,
		Strategy:      strategy,
		PageSize:      h.cfg.PageSize,
		RecentCap:     h.cfg.RecentCap,
		Headless:      h.cfg.BrowserHeadless,
		RenderTimeout: h.cfg.RenderTimeout,
	})
	if err != nil {
		h.logger.WithFields(logrus.Fields{
			"repo":  repo.FullName(),
			"error": err.Error(),
		}).Error("pulse collection failed")
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": rep,
	})
}

// HealthCheck returns the service health
// GET /health
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

func respondError(c *gin.Context, err error) {
	code := apperrors.CodeOf(err)

	status := http.StatusInternalServerError
	switch code {
	case apperrors.ErrCodeRateLimited:
		status = http.StatusTooManyRequests
	case apperrors.ErrCodeNotFound:
		status = http.StatusNotFound
	case apperrors.ErrCodeInvalidWindow, apperrors.ErrCodeBadRequest:
		status = http.StatusBadRequest
	case apperrors.ErrCodeRequestFailed, apperrors.ErrCodeScrapeFailed:
		status = http.StatusBadGateway
	}

	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": err.Error(),
		},
	})
}
