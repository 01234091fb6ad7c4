package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wdmmg/internal/services"
)

// StatsHandler serves spending analytics.
type StatsHandler struct {
	statsService services.StatsServicer
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(statsService services.StatsServicer) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

// ByCategory returns all-time spending per category
// @Summary     Spending by category
// @Description Map of category to total spent. Categories without spending are omitted.
// @Tags        stats
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string]string "Totals per category"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     503 {object} ErrorResponse "Store unavailable"
// @Router      /stats/by-category [get]
func (h *StatsHandler) ByCategory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	totals, err := h.statsService.ByCategory(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, totals)
}

// Trends returns spending per time bucket
// @Summary     Spending trends
// @Description Map of bucket key to total spent. Keys are 2006-01-02 (daily), 2006-W01 (weekly, ISO), 2006-01 (monthly) or 2006 (yearly).
// @Tags        stats
// @Produce     json
// @Security    BearerAuth
// @Param       period query string false "daily, weekly, monthly or yearly (default monthly)"
// @Success     200 {object} map[string]string "Totals per bucket"
// @Failure     400 {object} ErrorResponse "Invalid period"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     503 {object} ErrorResponse "Store unavailable"
// @Router      /stats/trends [get]
func (h *StatsHandler) Trends(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	trends, err := h.statsService.Trends(c.Request.Context(), userID, c.DefaultQuery("period", "monthly"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, trends)
}
