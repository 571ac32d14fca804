package handlers

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/multipark/booking-recon-backend/internal/api/dto"
	"github.com/multipark/booking-recon-backend/internal/application/service"
	"github.com/multipark/booking-recon-backend/internal/infrastructure/storage"
)

// UploadsHandler accepts booking spreadsheets and lists past imports.
type UploadsHandler struct {
	*Base
	importer *service.ImportService
}

// NewUploadsHandler creates a new uploads handler.
func NewUploadsHandler(repo storage.Repository, importer *service.ImportService) *UploadsHandler {
	return &UploadsHandler{
		Base:     NewBase(repo),
		importer: importer,
	}
}

// Create handles POST /api/uploads - processes one .xlsx export.
func (h *UploadsHandler) Create(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.BadRequestError("missing form file 'file'"))
		return
	}

	if ext := strings.ToLower(filepath.Ext(fileHeader.Filename)); ext != ".xlsx" {
		c.JSON(http.StatusBadRequest, dto.ValidationError("only .xlsx files are supported"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.BadRequestError("could not read uploaded file"))
		return
	}
	defer file.Close()

	result, err := h.importer.ProcessUpload(c.Request.Context(), fileHeader.Filename, file)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, dto.ValidationError(err.Error()))
		return
	}

	c.JSON(http.StatusOK, dto.UploadResponse{
		Message:          "upload processed",
		BatchID:          result.BatchID,
		BookingsImported: result.BookingsImported,
		NeedsApproval:    result.NeedsApproval,
		RowsSkipped:      result.RowsSkipped,
		Summary: dto.BatchSummary{
			TotalBookings:  result.Summary.TotalBookings,
			PerfectMatches: result.Summary.PerfectMatches,
			NeedsApproval:  result.Summary.NeedsApproval,
			AutoApproved:   result.Summary.AutoApproved,
			ApprovalRate:   result.Summary.ApprovalRate,
		},
	})
}

// List handles GET /api/uploads - recent upload batches.
func (h *UploadsHandler) List(c *gin.Context) {
	limit := ParseIntQuery(c, "limit", 20)

	batches, err := h.repo.ListUploadBatches(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.InternalError())
		return
	}

	c.JSON(http.StatusOK, gin.H{"uploads": batches})
}
