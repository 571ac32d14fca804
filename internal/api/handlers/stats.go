package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/multipark/booking-recon-backend/internal/api/dto"
	"github.com/multipark/booking-recon-backend/internal/infrastructure/storage"
)

// StatsHandler serves the dashboard aggregates.
type StatsHandler struct {
	*Base
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(repo storage.Repository) *StatsHandler {
	return &StatsHandler{
		Base: NewBase(repo),
	}
}

// Get handles GET /api/stats.
func (h *StatsHandler) Get(c *gin.Context) {
	stats, err := h.repo.GetStats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.InternalError())
		return
	}

	c.JSON(http.StatusOK, dto.StatsResponse{
		TotalBookings:   stats.TotalBookings,
		PendingApproval: stats.PendingApproval,
		TotalAmount:     stats.TotalAmount,
		PartnerTotal:    stats.PartnerTotal,
		OperatorTotal:   stats.OperatorTotal,
		ApprovalRate:    stats.ApprovalRate,
	})
}
