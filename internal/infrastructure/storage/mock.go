package storage

import "time"

// MockRepository is an in-memory implementation of Repository for testing.
// It stores all data in maps and slices, making tests fast and isolated.
type MockRepository struct {
	bookings      map[int64]*Booking
	splits        map[int64]*FinancialSplit // Keyed by booking_id
	batches       map[string]*UploadBatch
	order         []int64
	nextBookingID int64
	nextSplitID   int64

	// Hooks for test assertions
	SaveBookingCalled    bool
	LastSavedBooking     *Booking
	SaveSplitCalled      bool
	LastSavedSplit       *FinancialSplit
	ApproveBookingCalled bool
	StartBatchCalled     bool
	CompleteBatchCalled  bool

	// Error injection for testing error paths
	SaveBookingErr   error
	GetBookingErr    error
	ListBookingsErr  error
	SaveSplitErr     error
	GetStatsErr      error
	ListReportErr    error
	StartBatchErr    error
	CompleteBatchErr error
}

// Compile-time check that MockRepository implements Repository
var _ Repository = (*MockRepository)(nil)

// NewMockRepository creates a new mock repository for testing
func NewMockRepository() *MockRepository {
	return &MockRepository{
		bookings:      make(map[int64]*Booking),
		splits:        make(map[int64]*FinancialSplit),
		batches:       make(map[string]*UploadBatch),
		nextBookingID: 1,
		nextSplitID:   1,
	}
}

// AddBooking seeds a booking directly, bypassing the save hooks.
func (m *MockRepository) AddBooking(booking *Booking) int64 {
	if booking.ID == 0 {
		booking.ID = m.nextBookingID
		m.nextBookingID++
	}
	m.bookings[booking.ID] = booking
	m.order = append(m.order, booking.ID)
	return booking.ID
}

// SaveBooking inserts a booking and returns its id.
func (m *MockRepository) SaveBooking(booking *Booking) (int64, error) {
	m.SaveBookingCalled = true
	m.LastSavedBooking = booking
	if m.SaveBookingErr != nil {
		return 0, m.SaveBookingErr
	}
	return m.AddBooking(booking), nil
}

// GetBooking retrieves a booking by id; nil when absent.
func (m *MockRepository) GetBooking(id int64) (*Booking, error) {
	if m.GetBookingErr != nil {
		return nil, m.GetBookingErr
	}
	return m.bookings[id], nil
}

// ListBookings returns bookings matching the filters with pagination.
func (m *MockRepository) ListBookings(filters BookingFilters) (*BookingListResult, error) {
	if m.ListBookingsErr != nil {
		return nil, m.ListBookingsErr
	}

	matched := make([]*Booking, 0)
	for _, id := range m.order {
		b := m.bookings[id]
		if filters.NeedsApproval != nil && b.NeedsApproval != *filters.NeedsApproval {
			continue
		}
		if filters.ParkBrand != "" && b.ParkBrand != filters.ParkBrand {
			continue
		}
		if filters.PaymentMethod != "" && b.PaymentMethod != filters.PaymentMethod {
			continue
		}
		matched = append(matched, b)
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = 50
	}

	total := len(matched)
	start := filters.Offset
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return &BookingListResult{
		Bookings:   matched[start:end],
		TotalCount: total,
		Limit:      limit,
		Offset:     filters.Offset,
	}, nil
}

// ApproveBooking marks a booking approved; false when the id is unknown.
func (m *MockRepository) ApproveBooking(id int64, approvedAt time.Time) (bool, error) {
	m.ApproveBookingCalled = true
	booking, ok := m.bookings[id]
	if !ok {
		return false, nil
	}
	booking.StatusApproved = true
	booking.ApprovedAt = &approvedAt
	return true, nil
}

// GetStats returns the dashboard aggregates.
func (m *MockRepository) GetStats() (*Stats, error) {
	if m.GetStatsErr != nil {
		return nil, m.GetStatsErr
	}

	stats := &Stats{TotalBookings: len(m.bookings)}
	for _, b := range m.bookings {
		if b.NeedsApproval && !b.StatusApproved {
			stats.PendingApproval++
		}
	}
	for _, s := range m.splits {
		stats.TotalAmount += s.TotalAmount
		stats.PartnerTotal += s.PartnerAmount
		stats.OperatorTotal += s.OperatorAmount
	}
	if stats.TotalBookings > 0 {
		stats.ApprovalRate = float64(stats.TotalBookings-stats.PendingApproval) / float64(stats.TotalBookings) * 100
	}
	return stats, nil
}

// SaveSplit inserts the split computed for a booking.
func (m *MockRepository) SaveSplit(split *FinancialSplit) error {
	m.SaveSplitCalled = true
	m.LastSavedSplit = split
	if m.SaveSplitErr != nil {
		return m.SaveSplitErr
	}
	split.ID = m.nextSplitID
	m.nextSplitID++
	m.splits[split.BookingID] = split
	return nil
}

// GetSplitByBookingID retrieves a booking's split; nil when absent.
func (m *MockRepository) GetSplitByBookingID(bookingID int64) (*FinancialSplit, error) {
	return m.splits[bookingID], nil
}

// ListReportItems returns the per-booking report fields in insertion order.
func (m *MockRepository) ListReportItems() ([]ReportItem, error) {
	if m.ListReportErr != nil {
		return nil, m.ListReportErr
	}

	items := make([]ReportItem, 0, len(m.order))
	for _, id := range m.order {
		b := m.bookings[id]
		items = append(items, ReportItem{
			Amount:        b.PriceOnDelivery,
			ParkBrand:     b.ParkBrand,
			PaymentMethod: b.PaymentMethod,
		})
	}
	return items, nil
}

// StartUploadBatch records the start of an import.
func (m *MockRepository) StartUploadBatch(id, filename string) error {
	m.StartBatchCalled = true
	if m.StartBatchErr != nil {
		return m.StartBatchErr
	}
	m.batches[id] = &UploadBatch{ID: id, Filename: filename, Status: "running"}
	return nil
}

// CompleteUploadBatch records the outcome of an import.
func (m *MockRepository) CompleteUploadBatch(id string, processed, needsApproval, skipped int) error {
	m.CompleteBatchCalled = true
	if m.CompleteBatchErr != nil {
		return m.CompleteBatchErr
	}
	if batch, ok := m.batches[id]; ok {
		batch.BookingsProcessed = processed
		batch.NeedsApproval = needsApproval
		batch.RowsSkipped = skipped
		batch.Status = "completed"
	}
	return nil
}

// ListUploadBatches returns recent upload batches.
func (m *MockRepository) ListUploadBatches(limit int) ([]UploadBatch, error) {
	batches := make([]UploadBatch, 0, len(m.batches))
	for _, b := range m.batches {
		batches = append(batches, *b)
	}
	if limit > 0 && len(batches) > limit {
		batches = batches[:limit]
	}
	return batches, nil
}

// Close is a no-op for the mock.
func (m *MockRepository) Close() error {
	return nil
}
