package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/multipark/booking-recon-backend/internal/api/dto"
	"github.com/multipark/booking-recon-backend/internal/api/handlers"
	"github.com/multipark/booking-recon-backend/internal/application/service"
	"github.com/multipark/booking-recon-backend/internal/domain/finance"
	"github.com/multipark/booking-recon-backend/internal/domain/reconciler"
	"github.com/multipark/booking-recon-backend/internal/infrastructure/storage"
	"github.com/multipark/booking-recon-backend/internal/ingest/excel"
)

func newUploadsRouter(repo storage.Repository) *gin.Engine {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	importer := service.NewImportService(
		repo,
		excel.NewParser(logger),
		reconciler.New(reconciler.DefaultConfig(), logger),
		finance.New(finance.DefaultConfig()),
		logger,
	)

	router := gin.New()
	handler := handlers.NewUploadsHandler(repo, importer)
	router.POST("/api/uploads", handler.Create)
	router.GET("/api/uploads", handler.List)
	return router
}

func buildWorkbook(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	header := make([]interface{}, len(excel.RequiredColumns))
	for i, h := range excel.RequiredColumns {
		header[i] = h
	}
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &header))

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func exportRow(t *testing.T, overrides map[string]interface{}) []interface{} {
	t.Helper()
	row := make([]interface{}, len(excel.RequiredColumns))
	for i, col := range excel.RequiredColumns {
		if v, ok := overrides[col]; ok {
			row[i] = v
		} else {
			row[i] = ""
		}
	}
	return row
}

func multipartBody(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func TestUploadsHandler_Create(t *testing.T) {
	t.Run("processes a valid workbook", func(t *testing.T) {
		repo := storage.NewMockRepository()
		router := newUploadsRouter(repo)

		wb := buildWorkbook(t, [][]interface{}{
			exportRow(t, map[string]interface{}{
				"licensePlate":    "AA-12-BB",
				"checkoutDate":    "2025-06-22 21:56:00",
				"checkOut":        "22/06/2025, 21:56",
				"priceOnDelivery": "100.00",
				"parkBrand":       "skypark",
			}),
			exportRow(t, map[string]interface{}{
				"licensePlate":    "CC-34-DD",
				"checkoutDate":    "2025-06-22 21:56:00",
				"checkOut":        "24/06/2025, 10:00",
				"priceOnDelivery": "50.00",
				"parkBrand":       "airpark",
			}),
		})

		body, contentType := multipartBody(t, "export.xlsx", wb)
		req := httptest.NewRequest(http.MethodPost, "/api/uploads", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var response dto.UploadResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))

		assert.NotEmpty(t, response.BatchID)
		assert.Equal(t, 2, response.BookingsImported)
		assert.Equal(t, 1, response.NeedsApproval)
		assert.Equal(t, 0, response.RowsSkipped)
		assert.Equal(t, 2, response.Summary.TotalBookings)
		assert.Equal(t, 1, response.Summary.PerfectMatches)
		assert.True(t, repo.StartBatchCalled)
		assert.True(t, repo.CompleteBatchCalled)
	})

	t.Run("rejects missing file", func(t *testing.T) {
		repo := storage.NewMockRepository()
		router := newUploadsRouter(repo)

		req := httptest.NewRequest(http.MethodPost, "/api/uploads", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects non-xlsx extension", func(t *testing.T) {
		repo := storage.NewMockRepository()
		router := newUploadsRouter(repo)

		body, contentType := multipartBody(t, "export.csv", []byte("plate,price"))
		req := httptest.NewRequest(http.MethodPost, "/api/uploads", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var apiErr dto.APIError
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&apiErr))
		assert.Equal(t, dto.ErrCodeValidation, apiErr.Code)
	})

	t.Run("rejects unreadable workbook", func(t *testing.T) {
		repo := storage.NewMockRepository()
		router := newUploadsRouter(repo)

		body, contentType := multipartBody(t, "export.xlsx", []byte("not a workbook"))
		req := httptest.NewRequest(http.MethodPost, "/api/uploads", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.False(t, repo.StartBatchCalled)
	})
}

func TestUploadsHandler_List(t *testing.T) {
	repo := storage.NewMockRepository()
	require.NoError(t, repo.StartUploadBatch("batch-1", "export.xlsx"))
	require.NoError(t, repo.CompleteUploadBatch("batch-1", 10, 2, 1))

	router := newUploadsRouter(repo)

	req := httptest.NewRequest(http.MethodGet, "/api/uploads", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response struct {
		Uploads []storage.UploadBatch `json:"uploads"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))

	require.Len(t, response.Uploads, 1)
	assert.Equal(t, "batch-1", response.Uploads[0].ID)
	assert.Equal(t, 10, response.Uploads[0].BookingsProcessed)
}
