package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"quiz-api-service/internal/app"
	"quiz-api-service/internal/domain"
	"quiz-api-service/internal/metrics"
)

type ParticipationHandler struct {
	service *app.ParticipationService
	metrics *metrics.Metrics
	log     *zap.Logger
}

func NewParticipationHandler(service *app.ParticipationService, m *metrics.Metrics, log *zap.Logger) *ParticipationHandler {
	return &ParticipationHandler{service: service, metrics: m, log: log}
}

func (h *ParticipationHandler) Submit(c *gin.Context) {
	var req participationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.log, domain.InvalidInput("missing playerName or answers"))
		return
	}
	p, err := h.service.Submit(c.Request.Context(), *req.PlayerName, req.Answers)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	if h.metrics != nil {
		h.metrics.Scores.Observe(float64(p.Score))
	}
	c.JSON(http.StatusOK, p)
}

func (h *ParticipationHandler) DeleteAll(c *gin.Context) {
	if err := h.service.DeleteAll(c.Request.Context()); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
