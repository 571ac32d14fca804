package dto

// BookingResponse is one booking as returned by the API.
type BookingResponse struct {
	ID                 int64   `json:"id"`
	LicensePlate       string  `json:"license_plate"`
	CheckoutTimestamp  string  `json:"checkout_timestamp,omitempty"`
	CheckoutFormatted  string  `json:"checkout_formatted,omitempty"`
	PriceOnDelivery    float64 `json:"price_on_delivery"`
	ParkBrand          string  `json:"park_brand,omitempty"`
	PaymentMethod      string  `json:"payment_method,omitempty"`
	Name               string  `json:"name,omitempty"`
	Lastname           string  `json:"lastname,omitempty"`
	DateDifferenceDays int     `json:"date_difference_days"`
	NeedsApproval      bool    `json:"needs_approval"`
	StatusApproved     bool    `json:"status_approved"`
	ApprovedAt         string  `json:"approved_at,omitempty"`
	Severity           string  `json:"severity"`
	Message            string  `json:"message"`
	UploadBatchID      string  `json:"upload_batch_id,omitempty"`
	CreatedAt          string  `json:"created_at"`

	Split *SplitResponse `json:"financial_split,omitempty"`
}

// SplitResponse is a booking's persisted revenue split.
type SplitResponse struct {
	PartnerAmount  float64 `json:"partner_amount"`
	OperatorAmount float64 `json:"operator_amount"`
	TotalAmount    float64 `json:"total_amount"`
}

// BookingListResponse is a paginated list of bookings.
type BookingListResponse struct {
	Bookings   []BookingResponse `json:"bookings"`
	TotalCount int               `json:"total_count"`
	Limit      int               `json:"limit"`
	Offset     int               `json:"offset"`
}

// UploadResponse reports the outcome of a spreadsheet upload.
type UploadResponse struct {
	Message          string       `json:"message"`
	BatchID          string       `json:"batch_id"`
	BookingsImported int          `json:"bookings_imported"`
	NeedsApproval    int          `json:"needs_approval"`
	RowsSkipped      int          `json:"rows_skipped"`
	Summary          BatchSummary `json:"summary"`
}

// BatchSummary mirrors the reconciliation summary of one upload.
type BatchSummary struct {
	TotalBookings  int     `json:"total_bookings"`
	PerfectMatches int     `json:"perfect_matches"`
	NeedsApproval  int     `json:"needs_approval"`
	AutoApproved   int     `json:"auto_approved"`
	ApprovalRate   float64 `json:"approval_rate"`
}

// StatsResponse is the dashboard stats payload.
type StatsResponse struct {
	TotalBookings   int     `json:"total_bookings"`
	PendingApproval int     `json:"pending_approval"`
	TotalAmount     float64 `json:"total_amount"`
	PartnerTotal    float64 `json:"partner_total"`
	OperatorTotal   float64 `json:"operator_total"`
	ApprovalRate    float64 `json:"approval_rate"`
}

// ApproveResponse confirms a manual approval.
type ApproveResponse struct {
	Message   string `json:"message"`
	BookingID int64  `json:"booking_id"`
}
