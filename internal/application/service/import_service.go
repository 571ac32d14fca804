// Package service orchestrates spreadsheet imports: parsing the workbook,
// reconciling checkout dates, computing revenue splits, and persisting the
// results under an upload batch.
package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/multipark/booking-recon-backend/internal/domain/finance"
	"github.com/multipark/booking-recon-backend/internal/domain/reconciler"
	"github.com/multipark/booking-recon-backend/internal/infrastructure/storage"
	"github.com/multipark/booking-recon-backend/internal/ingest/excel"
)

// ImportResult summarizes one processed upload.
type ImportResult struct {
	BatchID          string                  `json:"batch_id"`
	BookingsImported int                     `json:"bookings_imported"`
	NeedsApproval    int                     `json:"needs_approval"`
	RowsSkipped      int                     `json:"rows_skipped"`
	Summary          reconciler.BatchSummary `json:"summary"`
}

// ImportService processes uploaded booking spreadsheets.
type ImportService struct {
	repo       storage.Repository
	parser     *excel.Parser
	reconciler *reconciler.Reconciler
	calculator *finance.Calculator
	logger     *slog.Logger
}

// NewImportService creates an import service.
func NewImportService(
	repo storage.Repository,
	parser *excel.Parser,
	rec *reconciler.Reconciler,
	calc *finance.Calculator,
	logger *slog.Logger,
) *ImportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImportService{
		repo:       repo,
		parser:     parser,
		reconciler: rec,
		calculator: calc,
		logger:     logger,
	}
}

// ProcessUpload imports one workbook. Structural problems (unreadable file,
// missing columns) fail the upload; a bad individual row is logged, counted
// as skipped, and never aborts the batch.
func (s *ImportService) ProcessUpload(ctx context.Context, filename string, r io.Reader) (*ImportResult, error) {
	rows, err := s.parser.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
	}

	batchID := uuid.New().String()
	if err := s.repo.StartUploadBatch(batchID, filename); err != nil {
		return nil, fmt.Errorf("failed to start upload batch: %w", err)
	}

	result := &ImportResult{BatchID: batchID}
	outcomes := make([]reconciler.Result, 0, len(rows))

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		outcome := s.reconciler.Reconcile(row.CheckoutTimestamp, row.CheckoutFormatted)

		booking := &storage.Booking{
			LicensePlate:       row.LicensePlate,
			CheckoutTimestamp:  row.CheckoutTimestamp,
			CheckoutFormatted:  row.CheckoutFormatted,
			PriceOnDelivery:    row.PriceOnDelivery,
			ParkBrand:          row.ParkBrand,
			PaymentMethod:      row.PaymentMethod,
			Name:               row.Name,
			Lastname:           row.Lastname,
			ExtraServices:      row.ExtraServices,
			ParkingType:        row.ParkingType,
			Campaign:           row.Campaign,
			Alocation:          row.Alocation,
			CampaignPay:        row.CampaignPay,
			BookingDate:        row.BookingDate,
			CheckIn:            row.CheckIn,
			BookingPrice:       row.BookingPrice,
			HasOnlinePayment:   row.HasOnlinePayment,
			Stats:              row.Stats,
			RowRef:             row.Row,
			DeliveryPrice:      row.DeliveryPrice,
			PaymentIntentID:    row.PaymentIntentID,
			DateDifferenceDays: outcome.DaysDifference,
			NeedsApproval:      outcome.NeedsApproval,
			StatusApproved:     !outcome.NeedsApproval, // auto-approve matching dates
			UploadBatchID:      batchID,
		}

		bookingID, err := s.repo.SaveBooking(booking)
		if err != nil {
			s.logger.Error("failed to save booking", "license_plate", row.LicensePlate, "error", err)
			result.RowsSkipped++
			continue
		}

		partner, operator := s.calculator.Split(row.PriceOnDelivery)
		split := &storage.FinancialSplit{
			BookingID:      bookingID,
			PartnerAmount:  partner,
			OperatorAmount: operator,
			TotalAmount:    row.PriceOnDelivery,
		}
		if err := s.repo.SaveSplit(split); err != nil {
			s.logger.Error("failed to save split", "booking_id", bookingID, "error", err)
		}

		outcomes = append(outcomes, outcome)
		result.BookingsImported++
		if outcome.NeedsApproval {
			result.NeedsApproval++
		}
	}

	result.Summary = reconciler.Summarize(outcomes)

	if err := s.repo.CompleteUploadBatch(batchID, result.BookingsImported, result.NeedsApproval, result.RowsSkipped); err != nil {
		s.logger.Error("failed to complete upload batch", "batch_id", batchID, "error", err)
	}

	s.logger.Info("upload processed",
		"batch_id", batchID,
		"filename", filename,
		"imported", result.BookingsImported,
		"needs_approval", result.NeedsApproval,
		"skipped", result.RowsSkipped,
	)

	return result, nil
}
