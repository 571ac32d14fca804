// Package excel turns an uploaded booking export workbook into typed rows.
//
// The booking exports come from the primary booking system with a fixed set
// of columns. Parsing is deliberately forgiving at the cell level: a bad
// numeric or boolean cell coerces to its zero value and an unparsable
// checkout timestamp becomes nil, so one bad row never aborts an import.
// Only structural problems (unreadable workbook, missing columns) are
// reported as errors.
package excel

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// RequiredColumns are the export columns every upload must carry.
var RequiredColumns = []string{
	"licensePlate", "checkoutDate", "extraServices", "parkingType",
	"checkOut", "campaign", "paymentMethod", "lastname", "name",
	"alocation", "priceOnDelivery", "campaignPay", "bookingDate",
	"checkIn", "lastName", "bookingPrice", "hasOnlinePayment",
	"stats", "row", "deliveryPrice", "paymentIntentId", "parkBrand",
}

// timestampLayouts are tried when a checkout cell is not a Firebase
// timestamp string.
var timestampLayouts = []string{
	"02/01/2006, 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// BookingRow is one extracted booking from the workbook.
type BookingRow struct {
	LicensePlate      string
	CheckoutTimestamp *time.Time
	CheckoutFormatted string
	PriceOnDelivery   float64
	ParkBrand         string
	PaymentMethod     string
	Name              string
	Lastname          string
	ExtraServices     string
	ParkingType       string
	Campaign          string
	Alocation         string
	CampaignPay       bool
	BookingDate       string
	CheckIn           string
	BookingPrice      float64
	HasOnlinePayment  bool
	Stats             string
	Row               string
	DeliveryPrice     float64
	PaymentIntentID   string
}

// Parser reads booking export workbooks.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a parser.
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

// Parse reads the first sheet of an xlsx workbook and extracts one
// BookingRow per data row. Rows without a license plate are skipped.
func (p *Parser) Parse(r io.Reader) ([]BookingRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("workbook has no header row")
	}

	columns, err := columnIndex(rows[0])
	if err != nil {
		return nil, err
	}

	bookings := make([]BookingRow, 0, len(rows)-1)
	for i, row := range rows[1:] {
		booking, ok := p.extractRow(row, columns)
		if !ok {
			p.logger.Debug("skipping row without license plate", "row", i+2)
			continue
		}
		bookings = append(bookings, booking)
	}

	return bookings, nil
}

// columnIndex maps column names to positions and reports missing required
// columns.
func columnIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}

	var missing []string
	for _, name := range RequiredColumns {
		if _, ok := index[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}

	return index, nil
}

// extractRow converts one data row. Returns false for rows without a
// license plate.
func (p *Parser) extractRow(row []string, columns map[string]int) (BookingRow, bool) {
	cell := func(name string) string {
		i := columns[name]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	plate := cell("licensePlate")
	if plate == "" {
		return BookingRow{}, false
	}

	return BookingRow{
		LicensePlate:      plate,
		CheckoutTimestamp: p.parseTimestamp(cell("checkoutDate")),
		CheckoutFormatted: cell("checkOut"),
		PriceOnDelivery:   safeFloat(cell("priceOnDelivery")),
		ParkBrand:         strings.ToLower(cell("parkBrand")),
		PaymentMethod:     cell("paymentMethod"),
		Name:              cell("name"),
		Lastname:          cell("lastname"),
		ExtraServices:     cell("extraServices"),
		ParkingType:       cell("parkingType"),
		Campaign:          cell("campaign"),
		Alocation:         cell("alocation"),
		CampaignPay:       safeBool(cell("campaignPay")),
		BookingDate:       cell("bookingDate"),
		CheckIn:           cell("checkIn"),
		BookingPrice:      safeFloat(cell("bookingPrice")),
		HasOnlinePayment:  safeBool(cell("hasOnlinePayment")),
		Stats:             cell("stats"),
		Row:               cell("row"),
		DeliveryPrice:     safeFloat(cell("deliveryPrice")),
		PaymentIntentID:   cell("paymentIntentId"),
	}, true
}

// parseTimestamp handles the Firebase export form
// "Timestamp(seconds=1750625764, nanoseconds=637000000)" plus plain date
// strings. Unparsable values become nil.
func (p *Parser) parseTimestamp(value string) *time.Time {
	if value == "" {
		return nil
	}

	if strings.Contains(value, "Timestamp(") {
		if t, ok := parseFirebaseTimestamp(value); ok {
			return &t
		}
		p.logger.Warn("unparsable firebase timestamp", "value", value)
		return nil
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}

	p.logger.Warn("unparsable checkout timestamp", "value", value)
	return nil
}

func parseFirebaseTimestamp(value string) (time.Time, bool) {
	start := strings.Index(value, "seconds=")
	if start < 0 {
		return time.Time{}, false
	}
	start += len("seconds=")

	end := strings.IndexAny(value[start:], ",)")
	if end < 0 {
		return time.Time{}, false
	}

	seconds, err := strconv.ParseInt(strings.TrimSpace(value[start:start+end]), 10, 64)
	if err != nil {
		return time.Time{}, false
	}

	return time.Unix(seconds, 0).UTC(), true
}

// safeFloat coerces a cell to a float, defaulting to 0 for anything that
// does not parse.
func safeFloat(value string) float64 {
	if value == "" {
		return 0
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", ""), 64)
	if err != nil {
		return 0
	}
	return f
}

// safeBool coerces a cell to a bool. The exports mix English and
// Portuguese truthy markers.
func safeBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes", "sim":
		return true
	default:
		return false
	}
}

// Summary describes one parsed upload.
type Summary struct {
	TotalRecords   int      `json:"total_records"`
	TotalAmount    float64  `json:"total_amount"`
	UniqueBrands   []string `json:"unique_brands"`
	PaymentMethods []string `json:"payment_methods"`
}

// Summarize collects headline numbers for a set of parsed rows.
func Summarize(rows []BookingRow) Summary {
	summary := Summary{
		TotalRecords:   len(rows),
		UniqueBrands:   []string{},
		PaymentMethods: []string{},
	}

	seenBrands := make(map[string]bool)
	seenMethods := make(map[string]bool)

	for _, row := range rows {
		summary.TotalAmount += row.PriceOnDelivery
		if row.ParkBrand != "" && !seenBrands[row.ParkBrand] {
			seenBrands[row.ParkBrand] = true
			summary.UniqueBrands = append(summary.UniqueBrands, row.ParkBrand)
		}
		if row.PaymentMethod != "" && !seenMethods[row.PaymentMethod] {
			seenMethods[row.PaymentMethod] = true
			summary.PaymentMethods = append(summary.PaymentMethods, row.PaymentMethod)
		}
	}

	return summary
}
