package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/multipark/booking-recon-backend/internal/domain/finance"
	"github.com/multipark/booking-recon-backend/internal/domain/reconciler"
	"github.com/multipark/booking-recon-backend/internal/infrastructure/storage"
	"github.com/multipark/booking-recon-backend/internal/ingest/excel"
)

func newTestService(repo storage.Repository) *ImportService {
	logger := slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), nil))
	return NewImportService(
		repo,
		excel.NewParser(logger),
		reconciler.New(reconciler.DefaultConfig(), logger),
		finance.New(finance.DefaultConfig()),
		logger,
	)
}

func buildWorkbook(t *testing.T, rows [][]interface{}) io.Reader {
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
	return bytes.NewReader(buf.Bytes())
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

func TestProcessUpload(t *testing.T) {
	repo := storage.NewMockRepository()
	svc := newTestService(repo)

	wb := buildWorkbook(t, [][]interface{}{
		// Matching dates: auto-approved.
		exportRow(t, map[string]interface{}{
			"licensePlate":    "AA-12-BB",
			"checkoutDate":    "2025-06-22 21:56:00",
			"checkOut":        "22/06/2025, 21:56",
			"priceOnDelivery": "100.00",
			"parkBrand":       "skypark",
			"paymentMethod":   "Cash",
		}),
		// One day off: flagged for approval.
		exportRow(t, map[string]interface{}{
			"licensePlate":    "CC-34-DD",
			"checkoutDate":    "2025-06-22 21:56:00",
			"checkOut":        "23/06/2025, 00:30",
			"priceOnDelivery": "20.00",
			"parkBrand":       "airpark",
			"paymentMethod":   "Multibanco",
		}),
	})

	result, err := svc.ProcessUpload(context.Background(), "bookings.xlsx", wb)
	require.NoError(t, err)

	assert.NotEmpty(t, result.BatchID)
	assert.Equal(t, 2, result.BookingsImported)
	assert.Equal(t, 1, result.NeedsApproval)
	assert.Equal(t, 0, result.RowsSkipped)

	assert.Equal(t, 2, result.Summary.TotalBookings)
	assert.Equal(t, 1, result.Summary.PerfectMatches)
	assert.Equal(t, 50.00, result.Summary.ApprovalRate)

	// First booking auto-approved with its split persisted.
	first, err := repo.GetBooking(1)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.True(t, first.StatusApproved)
	assert.Equal(t, 0, first.DateDifferenceDays)
	assert.Equal(t, result.BatchID, first.UploadBatchID)

	split, err := repo.GetSplitByBookingID(1)
	require.NoError(t, err)
	require.NotNil(t, split)
	assert.Equal(t, 60.00, split.PartnerAmount)
	assert.Equal(t, 40.00, split.OperatorAmount)
	assert.Equal(t, 100.00, split.TotalAmount)

	// Second booking flagged, not approved.
	second, err := repo.GetBooking(2)
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.True(t, second.NeedsApproval)
	assert.False(t, second.StatusApproved)
	assert.Equal(t, 1, second.DateDifferenceDays)

	assert.True(t, repo.StartBatchCalled)
	assert.True(t, repo.CompleteBatchCalled)
}

func TestProcessUpload_BadRowDoesNotAbortBatch(t *testing.T) {
	repo := storage.NewMockRepository()
	svc := newTestService(repo)

	wb := buildWorkbook(t, [][]interface{}{
		// Unparsable checkout text and a garbage price degrade, not fail.
		exportRow(t, map[string]interface{}{
			"licensePlate":    "EE-56-FF",
			"checkoutDate":    "2025-06-22 10:00:00",
			"checkOut":        "not a date at all",
			"priceOnDelivery": "garbage",
		}),
	})

	result, err := svc.ProcessUpload(context.Background(), "bookings.xlsx", wb)
	require.NoError(t, err)

	assert.Equal(t, 1, result.BookingsImported)
	assert.Equal(t, 0, result.NeedsApproval)

	booking, err := repo.GetBooking(1)
	require.NoError(t, err)
	require.NotNil(t, booking)
	assert.Equal(t, 0, booking.DateDifferenceDays)
	assert.False(t, booking.NeedsApproval)
	assert.Equal(t, 0.00, booking.PriceOnDelivery)

	// Zero amount still records a zero split.
	split, err := repo.GetSplitByBookingID(1)
	require.NoError(t, err)
	require.NotNil(t, split)
	assert.Equal(t, 0.00, split.PartnerAmount)
	assert.Equal(t, 0.00, split.OperatorAmount)
}

func TestProcessUpload_SaveFailureCountsAsSkipped(t *testing.T) {
	repo := storage.NewMockRepository()
	repo.SaveBookingErr = errors.New("disk full")
	svc := newTestService(repo)

	wb := buildWorkbook(t, [][]interface{}{
		exportRow(t, map[string]interface{}{"licensePlate": "AA-12-BB"}),
	})

	result, err := svc.ProcessUpload(context.Background(), "bookings.xlsx", wb)
	require.NoError(t, err)

	assert.Equal(t, 0, result.BookingsImported)
	assert.Equal(t, 1, result.RowsSkipped)
}

func TestProcessUpload_UnreadableWorkbook(t *testing.T) {
	repo := storage.NewMockRepository()
	svc := newTestService(repo)

	_, err := svc.ProcessUpload(context.Background(), "bad.xlsx", bytes.NewReader([]byte("nope")))
	require.Error(t, err)
	assert.False(t, repo.StartBatchCalled)
}

func TestProcessUpload_ContextCancelled(t *testing.T) {
	repo := storage.NewMockRepository()
	svc := newTestService(repo)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	wb := buildWorkbook(t, [][]interface{}{
		exportRow(t, map[string]interface{}{"licensePlate": "AA-12-BB"}),
	})

	_, err := svc.ProcessUpload(ctx, "bookings.xlsx", wb)
	require.ErrorIs(t, err, context.Canceled)
}
