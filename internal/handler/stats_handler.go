package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campus-vault/campusvault-api/internal/service"
	"github.com/campus-vault/campusvault-api/pkg/response"
)

// StatsHandler exposes aggregate catalog statistics.
type StatsHandler struct {
	stats *service.StatsService
}

// NewStatsHandler constructs StatsHandler.
func NewStatsHandler(stats *service.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// College godoc
// @Summary College statistics
// @Description Aggregate resource counts for the caller's college
// @Tags Stats
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /stats/college [get]
func (h *StatsHandler) College(c *gin.Context) {
	stats, err := h.stats.CollegeStats(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}
