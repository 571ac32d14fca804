package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/multipark/booking-recon-backend/internal/api/dto"
	"github.com/multipark/booking-recon-backend/internal/domain/reconciler"
	"github.com/multipark/booking-recon-backend/internal/infrastructure/storage"
)

// Base provides shared functionality for all handlers.
type Base struct {
	repo storage.Repository
}

// NewBase creates a new base handler with the given repository.
func NewBase(repo storage.Repository) *Base {
	return &Base{repo: repo}
}

// ParseIntQuery parses an integer query parameter with a default value.
func ParseIntQuery(c *gin.Context, name string, defaultVal int) int {
	val := c.Query(name)
	if val == "" {
		return defaultVal
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return parsed
}

// ParseBoolQuery parses an optional boolean query parameter; nil when absent
// or malformed.
func ParseBoolQuery(c *gin.Context, name string) *bool {
	val := c.Query(name)
	if val == "" {
		return nil
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return nil
	}
	return &parsed
}

// toBookingResponse converts a storage booking to an API response.
func toBookingResponse(booking *storage.Booking, split *storage.FinancialSplit) dto.BookingResponse {
	response := dto.BookingResponse{
		ID:                 booking.ID,
		LicensePlate:       booking.LicensePlate,
		CheckoutFormatted:  booking.CheckoutFormatted,
		PriceOnDelivery:    booking.PriceOnDelivery,
		ParkBrand:          booking.ParkBrand,
		PaymentMethod:      booking.PaymentMethod,
		Name:               booking.Name,
		Lastname:           booking.Lastname,
		DateDifferenceDays: booking.DateDifferenceDays,
		NeedsApproval:      booking.NeedsApproval,
		StatusApproved:     booking.StatusApproved,
		Severity:           reconciler.Severity(booking.DateDifferenceDays, booking.NeedsApproval),
		Message:            reconciler.Message(booking.DateDifferenceDays, booking.NeedsApproval),
		UploadBatchID:      booking.UploadBatchID,
		CreatedAt:          booking.CreatedAt.Format(time.RFC3339),
	}

	if booking.CheckoutTimestamp != nil {
		response.CheckoutTimestamp = booking.CheckoutTimestamp.Format(time.RFC3339)
	}
	if booking.ApprovedAt != nil {
		response.ApprovedAt = booking.ApprovedAt.Format(time.RFC3339)
	}
	if split != nil {
		response.Split = &dto.SplitResponse{
			PartnerAmount:  split.PartnerAmount,
			OperatorAmount: split.OperatorAmount,
			TotalAmount:    split.TotalAmount,
		}
	}

	return response
}
