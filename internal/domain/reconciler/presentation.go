package reconciler

import (
	"fmt"
	"math"
)

// Severity levels derived from a reconciliation result.
const (
	SeverityOK       = "ok"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// Severity classifies a result for display. A one-day difference that does
// not need approval would be a warning, but the current approval policy
// never produces that combination, so in practice only "ok" and "critical"
// occur.
func Severity(daysDifference int, needsApproval bool) string {
	switch {
	case daysDifference == 0:
		return SeverityOK
	case daysDifference == 1 && !needsApproval:
		return SeverityWarning
	default:
		return SeverityCritical
	}
}

// Message returns the human explanation for a result.
func Message(daysDifference int, needsApproval bool) string {
	switch {
	case daysDifference == 0:
		return "checkout dates match"
	case daysDifference == 1 && needsApproval:
		return "1 day difference - requires approval"
	case daysDifference == 1:
		return "1 day difference - within tolerance"
	default:
		return fmt.Sprintf("%d days difference - requires approval", daysDifference)
	}
}

// BatchSummary aggregates the reconciliation outcomes of one upload.
type BatchSummary struct {
	TotalBookings  int     `json:"total_bookings"`
	PerfectMatches int     `json:"perfect_matches"`
	NeedsApproval  int     `json:"needs_approval"`
	AutoApproved   int     `json:"auto_approved"`
	ApprovalRate   float64 `json:"approval_rate"`
}

// Summarize counts per-booking results into a batch summary. The approval
// rate is the auto-approved share of the batch as a percentage, rounded to
// two decimals, and 0 for an empty batch.
func Summarize(results []Result) BatchSummary {
	summary := BatchSummary{TotalBookings: len(results)}

	for _, r := range results {
		if r.DaysDifference == 0 {
			summary.PerfectMatches++
		}
		if r.NeedsApproval {
			summary.NeedsApproval++
		}
	}

	summary.AutoApproved = summary.TotalBookings - summary.NeedsApproval
	if summary.TotalBookings > 0 {
		rate := float64(summary.AutoApproved) / float64(summary.TotalBookings) * 100
		summary.ApprovalRate = math.Round(rate*100) / 100
	}

	return summary
}
