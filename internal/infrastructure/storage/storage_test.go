package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTempDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "bookings_test.db")
}

func boolPtr(b bool) *bool { return &b }

func TestStorage_SaveAndGetBooking(t *testing.T) {
	tmpDB := createTempDB(t)
	defer os.Remove(tmpDB)

	store, err := NewStorage(tmpDB)
	require.NoError(t, err)
	defer store.Close()

	checkout := time.Date(2025, 6, 22, 21, 56, 0, 0, time.UTC)
	booking := &Booking{
		LicensePlate:       "AA-12-BB",
		CheckoutTimestamp:  &checkout,
		CheckoutFormatted:  "22/06/2025, 21:56",
		PriceOnDelivery:    50.00,
		ParkBrand:          "skypark",
		PaymentMethod:      "Cash",
		Name:               "Ana",
		Lastname:           "Silva",
		BookingPrice:       65.00,
		HasOnlinePayment:   true,
		DateDifferenceDays: 0,
		NeedsApproval:      false,
		StatusApproved:     true,
		UploadBatchID:      "batch-1",
	}

	id, err := store.SaveBooking(booking)
	require.NoError(t, err)
	require.Greater(t, id, int64(0))

	got, err := store.GetBooking(id)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, "AA-12-BB", got.LicensePlate)
	require.NotNil(t, got.CheckoutTimestamp)
	assert.True(t, checkout.Equal(*got.CheckoutTimestamp))
	assert.Equal(t, 50.00, got.PriceOnDelivery)
	assert.Equal(t, "skypark", got.ParkBrand)
	assert.True(t, got.HasOnlinePayment)
	assert.True(t, got.StatusApproved)
	assert.Nil(t, got.ApprovedAt)
	assert.Equal(t, "batch-1", got.UploadBatchID)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestStorage_GetBooking_NotFound(t *testing.T) {
	store, err := NewStorage(createTempDB(t))
	require.NoError(t, err)
	defer store.Close()

	got, err := store.GetBooking(999)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStorage_SaveBooking_NilTimestamp(t *testing.T) {
	store, err := NewStorage(createTempDB(t))
	require.NoError(t, err)
	defer store.Close()

	id, err := store.SaveBooking(&Booking{LicensePlate: "CC-34-DD"})
	require.NoError(t, err)

	got, err := store.GetBooking(id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Nil(t, got.CheckoutTimestamp)
}

func TestStorage_ListBookings_Filters(t *testing.T) {
	store, err := NewStorage(createTempDB(t))
	require.NoError(t, err)
	defer store.Close()

	seed := []*Booking{
		{LicensePlate: "P1", ParkBrand: "skypark", PaymentMethod: "Cash", NeedsApproval: true},
		{LicensePlate: "P2", ParkBrand: "skypark", PaymentMethod: "Multibanco", NeedsApproval: false},
		{LicensePlate: "P3", ParkBrand: "airpark", PaymentMethod: "Cash", NeedsApproval: true},
	}
	for _, b := range seed {
		_, err := store.SaveBooking(b)
		require.NoError(t, err)
	}

	t.Run("no filters returns everything", func(t *testing.T) {
		result, err := store.ListBookings(BookingFilters{})
		require.NoError(t, err)
		assert.Equal(t, 3, result.TotalCount)
		assert.Len(t, result.Bookings, 3)
		assert.Equal(t, 50, result.Limit) // default limit
	})

	t.Run("filter by needs_approval", func(t *testing.T) {
		result, err := store.ListBookings(BookingFilters{NeedsApproval: boolPtr(true)})
		require.NoError(t, err)
		assert.Equal(t, 2, result.TotalCount)
	})

	t.Run("filter by brand and payment method", func(t *testing.T) {
		result, err := store.ListBookings(BookingFilters{ParkBrand: "skypark", PaymentMethod: "Cash"})
		require.NoError(t, err)
		require.Len(t, result.Bookings, 1)
		assert.Equal(t, "P1", result.Bookings[0].LicensePlate)
	})

	t.Run("pagination", func(t *testing.T) {
		result, err := store.ListBookings(BookingFilters{Limit: 2, Offset: 2})
		require.NoError(t, err)
		assert.Equal(t, 3, result.TotalCount)
		require.Len(t, result.Bookings, 1)
		assert.Equal(t, "P3", result.Bookings[0].LicensePlate)
	})
}

func TestStorage_ApproveBooking(t *testing.T) {
	store, err := NewStorage(createTempDB(t))
	require.NoError(t, err)
	defer store.Close()

	id, err := store.SaveBooking(&Booking{LicensePlate: "P1", NeedsApproval: true})
	require.NoError(t, err)

	approvedAt := time.Now().UTC().Truncate(time.Second)
	found, err := store.ApproveBooking(id, approvedAt)
	require.NoError(t, err)
	assert.True(t, found)

	got, err := store.GetBooking(id)
	require.NoError(t, err)
	assert.True(t, got.StatusApproved)
	require.NotNil(t, got.ApprovedAt)
	assert.True(t, approvedAt.Equal(*got.ApprovedAt))

	found, err = store.ApproveBooking(999, approvedAt)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStorage_SplitsAndStats(t *testing.T) {
	store, err := NewStorage(createTempDB(t))
	require.NoError(t, err)
	defer store.Close()

	id1, err := store.SaveBooking(&Booking{LicensePlate: "P1", PriceOnDelivery: 100, NeedsApproval: true})
	require.NoError(t, err)
	id2, err := store.SaveBooking(&Booking{LicensePlate: "P2", PriceOnDelivery: 20, StatusApproved: true})
	require.NoError(t, err)

	require.NoError(t, store.SaveSplit(&FinancialSplit{BookingID: id1, PartnerAmount: 60, OperatorAmount: 40, TotalAmount: 100}))
	require.NoError(t, store.SaveSplit(&FinancialSplit{BookingID: id2, PartnerAmount: 12, OperatorAmount: 8, TotalAmount: 20}))

	split, err := store.GetSplitByBookingID(id1)
	require.NoError(t, err)
	require.NotNil(t, split)
	assert.Equal(t, 60.00, split.PartnerAmount)
	assert.Equal(t, 40.00, split.OperatorAmount)

	missing, err := store.GetSplitByBookingID(999)
	require.NoError(t, err)
	assert.Nil(t, missing)

	stats, err := store.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalBookings)
	assert.Equal(t, 1, stats.PendingApproval)
	assert.Equal(t, 120.00, stats.TotalAmount)
	assert.Equal(t, 72.00, stats.PartnerTotal)
	assert.Equal(t, 48.00, stats.OperatorTotal)
	assert.Equal(t, 50.00, stats.ApprovalRate)
}

func TestStorage_GetStats_Empty(t *testing.T) {
	store, err := NewStorage(createTempDB(t))
	require.NoError(t, err)
	defer store.Close()

	stats, err := store.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalBookings)
	assert.Equal(t, 0.00, stats.ApprovalRate)
}

func TestStorage_ReportItems(t *testing.T) {
	store, err := NewStorage(createTempDB(t))
	require.NoError(t, err)
	defer store.Close()

	_, err = store.SaveBooking(&Booking{LicensePlate: "P1", PriceOnDelivery: 50, ParkBrand: "skypark", PaymentMethod: "Cash"})
	require.NoError(t, err)
	_, err = store.SaveBooking(&Booking{LicensePlate: "P2", PriceOnDelivery: 20, ParkBrand: "airpark", PaymentMethod: "Multibanco"})
	require.NoError(t, err)

	items, err := store.ListReportItems()
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, ReportItem{Amount: 50, ParkBrand: "skypark", PaymentMethod: "Cash"}, items[0])
	assert.Equal(t, ReportItem{Amount: 20, ParkBrand: "airpark", PaymentMethod: "Multibanco"}, items[1])
}

func TestStorage_UploadBatches(t *testing.T) {
	store, err := NewStorage(createTempDB(t))
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.StartUploadBatch("batch-1", "bookings.xlsx"))
	require.NoError(t, store.CompleteUploadBatch("batch-1", 10, 2, 1))

	batches, err := store.ListUploadBatches(10)
	require.NoError(t, err)
	require.Len(t, batches, 1)

	batch := batches[0]
	assert.Equal(t, "batch-1", batch.ID)
	assert.Equal(t, "bookings.xlsx", batch.Filename)
	assert.Equal(t, 10, batch.BookingsProcessed)
	assert.Equal(t, 2, batch.NeedsApproval)
	assert.Equal(t, 1, batch.RowsSkipped)
	assert.Equal(t, "completed", batch.Status)
}

func TestStorage_MigrationsAreIdempotent(t *testing.T) {
	tmpDB := createTempDB(t)

	store, err := NewStorage(tmpDB)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Reopening must not re-run applied migrations.
	store, err = NewStorage(tmpDB)
	require.NoError(t, err)
	defer store.Close()

	_, err = store.SaveBooking(&Booking{LicensePlate: "P1"})
	assert.NoError(t, err)
}
