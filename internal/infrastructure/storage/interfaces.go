package storage

import "time"

// Repository defines the complete storage interface.
// This interface allows swapping implementations (SQLite, PostgreSQL, etc.)
// and makes testing with mocks straightforward.
type Repository interface {
	BookingRepository
	SplitRepository
	UploadBatchRepository
	Close() error
}

// BookingRepository handles booking persistence.
type BookingRepository interface {
	// SaveBooking inserts a booking and returns its id.
	SaveBooking(booking *Booking) (int64, error)

	// GetBooking retrieves a booking by id; nil when absent.
	GetBooking(id int64) (*Booking, error)

	// ListBookings returns bookings matching the given filters with pagination.
	ListBookings(filters BookingFilters) (*BookingListResult, error)

	// ApproveBooking marks a booking approved; false when the id is unknown.
	ApproveBooking(id int64, approvedAt time.Time) (bool, error)

	// GetStats returns the dashboard aggregates.
	GetStats() (*Stats, error)
}

// BookingFilters defines filters for listing bookings.
type BookingFilters struct {
	NeedsApproval *bool  // Filter by approval requirement (nil = all)
	ParkBrand     string // Filter by brand (empty = all)
	PaymentMethod string // Filter by payment method (empty = all)
	Limit         int    // Max results (0 = default 50)
	Offset        int    // Pagination offset
}

// BookingListResult contains paginated booking results.
type BookingListResult struct {
	Bookings   []*Booking `json:"bookings"`
	TotalCount int        `json:"total_count"`
	Limit      int        `json:"limit"`
	Offset     int        `json:"offset"`
}

// SplitRepository handles financial split persistence.
type SplitRepository interface {
	// SaveSplit inserts the split computed for a booking.
	SaveSplit(split *FinancialSplit) error

	// GetSplitByBookingID retrieves a booking's split; nil when absent.
	GetSplitByBookingID(bookingID int64) (*FinancialSplit, error)

	// ListReportItems returns the per-booking fields the financial report
	// aggregates over, in insertion order.
	ListReportItems() ([]ReportItem, error)
}

// UploadBatchRepository tracks spreadsheet imports.
type UploadBatchRepository interface {
	// StartUploadBatch records the start of an import.
	StartUploadBatch(id, filename string) error

	// CompleteUploadBatch records the outcome of an import.
	CompleteUploadBatch(id string, processed, needsApproval, skipped int) error

	// ListUploadBatches returns recent upload batches.
	ListUploadBatches(limit int) ([]UploadBatch, error)
}
