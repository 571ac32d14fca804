package storage

import "time"

// Booking is one reconciled booking row as persisted.
type Booking struct {
	ID                int64      `json:"id"`
	LicensePlate      string     `json:"license_plate"`
	CheckoutTimestamp *time.Time `json:"checkout_timestamp,omitempty"`
	CheckoutFormatted string     `json:"checkout_formatted,omitempty"`
	PriceOnDelivery   float64    `json:"price_on_delivery"`
	ParkBrand         string     `json:"park_brand,omitempty"`
	PaymentMethod     string     `json:"payment_method,omitempty"`
	Name              string     `json:"name,omitempty"`
	Lastname          string     `json:"lastname,omitempty"`
	ExtraServices     string     `json:"extra_services,omitempty"`
	ParkingType       string     `json:"parking_type,omitempty"`
	Campaign          string     `json:"campaign,omitempty"`
	Alocation         string     `json:"alocation,omitempty"`
	CampaignPay       bool       `json:"campaign_pay"`
	BookingDate       string     `json:"booking_date,omitempty"`
	CheckIn           string     `json:"check_in,omitempty"`
	BookingPrice      float64    `json:"booking_price"`
	HasOnlinePayment  bool       `json:"has_online_payment"`
	Stats             string     `json:"stats,omitempty"`
	RowRef            string     `json:"row,omitempty"`
	DeliveryPrice     float64    `json:"delivery_price"`
	PaymentIntentID   string     `json:"payment_intent_id,omitempty"`

	// Reconciliation outcome
	DateDifferenceDays int  `json:"date_difference_days"`
	NeedsApproval      bool `json:"needs_approval"`

	// Approval state
	StatusApproved bool       `json:"status_approved"`
	ApprovedAt     *time.Time `json:"approved_at,omitempty"`

	UploadBatchID string    `json:"upload_batch_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// FinancialSplit is the persisted 60/40 split for one booking.
type FinancialSplit struct {
	ID             int64     `json:"id"`
	BookingID      int64     `json:"booking_id"`
	PartnerAmount  float64   `json:"partner_amount"`
	OperatorAmount float64   `json:"operator_amount"`
	TotalAmount    float64   `json:"total_amount"`
	CreatedAt      time.Time `json:"created_at"`
}

// UploadBatch tracks one spreadsheet import.
type UploadBatch struct {
	ID                string `json:"id"`
	Filename          string `json:"filename"`
	StartedAt         string `json:"started_at"`
	CompletedAt       string `json:"completed_at,omitempty"`
	BookingsProcessed int    `json:"bookings_processed"`
	NeedsApproval     int    `json:"needs_approval"`
	RowsSkipped       int    `json:"rows_skipped"`
	Status            string `json:"status"`
}

// Stats are the dashboard aggregates.
type Stats struct {
	TotalBookings   int     `json:"total_bookings"`
	PendingApproval int     `json:"pending_approval"`
	TotalAmount     float64 `json:"total_amount"`
	PartnerTotal    float64 `json:"partner_total"`
	OperatorTotal   float64 `json:"operator_total"`
	ApprovalRate    float64 `json:"approval_rate"`
}

// ReportItem carries the fields the financial report needs per booking.
type ReportItem struct {
	Amount        float64 `json:"amount"`
	ParkBrand     string  `json:"park_brand"`
	PaymentMethod string  `json:"payment_method"`
}
