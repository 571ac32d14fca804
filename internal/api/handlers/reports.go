package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/multipark/booking-recon-backend/internal/api/dto"
	"github.com/multipark/booking-recon-backend/internal/domain/finance"
	"github.com/multipark/booking-recon-backend/internal/infrastructure/storage"
)

// ReportsHandler builds financial reports over all stored bookings.
type ReportsHandler struct {
	*Base
	calculator *finance.Calculator
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(repo storage.Repository, calc *finance.Calculator) *ReportsHandler {
	return &ReportsHandler{
		Base:       NewBase(repo),
		calculator: calc,
	}
}

// Financial handles GET /api/reports/financial.
func (h *ReportsHandler) Financial(c *gin.Context) {
	rows, err := h.repo.ListReportItems()
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.InternalError())
		return
	}

	items := make([]finance.Item, len(rows))
	for i, row := range rows {
		items[i] = finance.Item{
			Amount:        row.Amount,
			Brand:         row.ParkBrand,
			PaymentMethod: row.PaymentMethod,
		}
	}

	c.JSON(http.StatusOK, h.calculator.BuildReport(items))
}
