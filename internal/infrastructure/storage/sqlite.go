package storage

import (
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Storage provides SQLite database access for bookings, splits, and upload
// batches. It implements the Repository interface.
type Storage struct {
	db *sql.DB
}

// Compile-time check that Storage implements Repository
var _ Repository = (*Storage)(nil)

// NewStorage creates a new storage instance with SQLite database
func NewStorage(dbPath string) (*Storage, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign key constraints (SQLite-specific)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Storage{db: db}

	// Run all pending migrations
	if err := s.runMigrations(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

const bookingColumns = `
	id, license_plate, checkout_timestamp, checkout_formatted,
	price_on_delivery, park_brand, payment_method, name, lastname,
	extra_services, parking_type, campaign, alocation, campaign_pay,
	booking_date, check_in, booking_price, has_online_payment,
	stats, row_ref, delivery_price, payment_intent_id,
	date_difference_days, needs_approval, status_approved, approved_at,
	upload_batch_id, created_at`

// SaveBooking inserts a booking and returns its id.
func (s *Storage) SaveBooking(booking *Booking) (int64, error) {
	query := `
	INSERT INTO bookings
	(license_plate, checkout_timestamp, checkout_formatted, price_on_delivery,
	 park_brand, payment_method, name, lastname, extra_services, parking_type,
	 campaign, alocation, campaign_pay, booking_date, check_in, booking_price,
	 has_online_payment, stats, row_ref, delivery_price, payment_intent_id,
	 date_difference_days, needs_approval, status_approved, upload_batch_id)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var checkout interface{}
	if booking.CheckoutTimestamp != nil {
		checkout = *booking.CheckoutTimestamp
	}

	result, err := s.db.Exec(query,
		booking.LicensePlate,
		checkout,
		booking.CheckoutFormatted,
		booking.PriceOnDelivery,
		booking.ParkBrand,
		booking.PaymentMethod,
		booking.Name,
		booking.Lastname,
		booking.ExtraServices,
		booking.ParkingType,
		booking.Campaign,
		booking.Alocation,
		booking.CampaignPay,
		booking.BookingDate,
		booking.CheckIn,
		booking.BookingPrice,
		booking.HasOnlinePayment,
		booking.Stats,
		booking.RowRef,
		booking.DeliveryPrice,
		booking.PaymentIntentID,
		booking.DateDifferenceDays,
		booking.NeedsApproval,
		booking.StatusApproved,
		booking.UploadBatchID,
	)
	if err != nil {
		return 0, err
	}

	return result.LastInsertId()
}

// GetBooking retrieves a booking by id; nil when absent.
func (s *Storage) GetBooking(id int64) (*Booking, error) {
	query := `SELECT` + bookingColumns + ` FROM bookings WHERE id = ?`

	booking, err := scanBooking(s.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// ListBookings returns bookings matching the filters with pagination.
func (s *Storage) ListBookings(filters BookingFilters) (*BookingListResult, error) {
	var conditions []string
	var args []interface{}

	if filters.NeedsApproval != nil {
		conditions = append(conditions, "needs_approval = ?")
		args = append(args, *filters.NeedsApproval)
	}
	if filters.ParkBrand != "" {
		conditions = append(conditions, "park_brand = ?")
		args = append(args, filters.ParkBrand)
	}
	if filters.PaymentMethod != "" {
		conditions = append(conditions, "payment_method = ?")
		args = append(args, filters.PaymentMethod)
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM bookings"+where, args...).Scan(&total); err != nil {
		return nil, err
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT` + bookingColumns + ` FROM bookings` + where +
		` ORDER BY id ASC LIMIT ? OFFSET ?`
	rows, err := s.db.Query(query, append(args, limit, filters.Offset)...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	result := &BookingListResult{
		Bookings:   make([]*Booking, 0),
		TotalCount: total,
		Limit:      limit,
		Offset:     filters.Offset,
	}

	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		result.Bookings = append(result.Bookings, booking)
	}

	return result, rows.Err()
}

// ApproveBooking marks a booking approved; false when the id is unknown.
func (s *Storage) ApproveBooking(id int64, approvedAt time.Time) (bool, error) {
	result, err := s.db.Exec(
		`UPDATE bookings SET status_approved = 1, approved_at = ? WHERE id = ?`,
		approvedAt, id,
	)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// GetStats returns the dashboard aggregates.
func (s *Storage) GetStats() (*Stats, error) {
	stats := &Stats{}

	query := `
	SELECT
		COUNT(*) as total,
		COUNT(CASE WHEN needs_approval = 1 AND status_approved = 0 THEN 1 END) as pending
	FROM bookings
	`
	if err := s.db.QueryRow(query).Scan(&stats.TotalBookings, &stats.PendingApproval); err != nil {
		return nil, err
	}

	splitQuery := `
	SELECT
		COALESCE(SUM(total_amount), 0),
		COALESCE(SUM(partner_amount), 0),
		COALESCE(SUM(operator_amount), 0)
	FROM financial_splits
	`
	if err := s.db.QueryRow(splitQuery).Scan(&stats.TotalAmount, &stats.PartnerTotal, &stats.OperatorTotal); err != nil {
		return nil, err
	}

	if stats.TotalBookings > 0 {
		rate := float64(stats.TotalBookings-stats.PendingApproval) / float64(stats.TotalBookings) * 100
		stats.ApprovalRate = math.Round(rate*100) / 100
	}

	return stats, nil
}

// SaveSplit inserts the split computed for a booking.
func (s *Storage) SaveSplit(split *FinancialSplit) error {
	query := `
	INSERT INTO financial_splits (booking_id, partner_amount, operator_amount, total_amount)
	VALUES (?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		split.BookingID,
		split.PartnerAmount,
		split.OperatorAmount,
		split.TotalAmount,
	)
	return err
}

// GetSplitByBookingID retrieves a booking's split; nil when absent.
func (s *Storage) GetSplitByBookingID(bookingID int64) (*FinancialSplit, error) {
	query := `
	SELECT id, booking_id, partner_amount, operator_amount, total_amount, created_at
	FROM financial_splits WHERE booking_id = ?
	`

	split := &FinancialSplit{}
	err := s.db.QueryRow(query, bookingID).Scan(
		&split.ID,
		&split.BookingID,
		&split.PartnerAmount,
		&split.OperatorAmount,
		&split.TotalAmount,
		&split.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return split, nil
}

// ListReportItems returns the per-booking report fields in insertion order.
func (s *Storage) ListReportItems() ([]ReportItem, error) {
	query := `SELECT price_on_delivery, park_brand, payment_method FROM bookings ORDER BY id ASC`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	items := make([]ReportItem, 0)
	for rows.Next() {
		var item ReportItem
		if err := rows.Scan(&item.Amount, &item.ParkBrand, &item.PaymentMethod); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// StartUploadBatch records the start of an import.
func (s *Storage) StartUploadBatch(id, filename string) error {
	_, err := s.db.Exec(
		`INSERT INTO upload_batches (id, filename, status) VALUES (?, ?, 'running')`,
		id, filename,
	)
	return err
}

// CompleteUploadBatch records the outcome of an import.
func (s *Storage) CompleteUploadBatch(id string, processed, needsApproval, skipped int) error {
	query := `
	UPDATE upload_batches
	SET completed_at = CURRENT_TIMESTAMP,
	    bookings_processed = ?,
	    needs_approval = ?,
	    rows_skipped = ?,
	    status = 'completed'
	WHERE id = ?
	`

	_, err := s.db.Exec(query, processed, needsApproval, skipped, id)
	return err
}

// ListUploadBatches returns recent upload batches.
func (s *Storage) ListUploadBatches(limit int) ([]UploadBatch, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
	SELECT id, filename, started_at, COALESCE(completed_at, ''),
	       bookings_processed, needs_approval, rows_skipped, status
	FROM upload_batches
	ORDER BY started_at DESC
	LIMIT ?
	`

	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var batches []UploadBatch
	for rows.Next() {
		var b UploadBatch
		err := rows.Scan(
			&b.ID,
			&b.Filename,
			&b.StartedAt,
			&b.CompletedAt,
			&b.BookingsProcessed,
			&b.NeedsApproval,
			&b.RowsSkipped,
			&b.Status,
		)
		if err != nil {
			return nil, err
		}
		batches = append(batches, b)
	}

	return batches, rows.Err()
}

// scanner abstracts *sql.Row and *sql.Rows for booking scans.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row scanner) (*Booking, error) {
	booking := &Booking{}
	var checkout, approvedAt sql.NullTime

	err := row.Scan(
		&booking.ID,
		&booking.LicensePlate,
		&checkout,
		&booking.CheckoutFormatted,
		&booking.PriceOnDelivery,
		&booking.ParkBrand,
		&booking.PaymentMethod,
		&booking.Name,
		&booking.Lastname,
		&booking.ExtraServices,
		&booking.ParkingType,
		&booking.Campaign,
		&booking.Alocation,
		&booking.CampaignPay,
		&booking.BookingDate,
		&booking.CheckIn,
		&booking.BookingPrice,
		&booking.HasOnlinePayment,
		&booking.Stats,
		&booking.RowRef,
		&booking.DeliveryPrice,
		&booking.PaymentIntentID,
		&booking.DateDifferenceDays,
		&booking.NeedsApproval,
		&booking.StatusApproved,
		&approvedAt,
		&booking.UploadBatchID,
		&booking.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if checkout.Valid {
		t := checkout.Time
		booking.CheckoutTimestamp = &t
	}
	if approvedAt.Valid {
		t := approvedAt.Time
		booking.ApprovedAt = &t
	}

	return booking, nil
}
