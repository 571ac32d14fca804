// Package reconciler decides whether two independently recorded checkout
// times for a booking agree closely enough to auto-approve it.
//
// Each booking carries a canonical checkout instant from the primary booking
// source and a free-text checkout date transcribed by the export. The
// reconciler parses the text against a fixed set of layouts, measures the
// calendar-day distance between the two, and flags any non-zero distance for
// manual approval.
//
// Example usage:
//
//	r := reconciler.New(reconciler.DefaultConfig(), logger)
//	result := r.Reconcile(&checkoutTime, "22/06/2025, 21:56")
//	if result.NeedsApproval {
//		// queue for manual sign-off
//	}
package reconciler

import (
	"log/slog"
	"strings"
	"time"
)

// Config holds the immutable reconciliation settings.
type Config struct {
	// Layouts are tried in order; the first successful parse wins.
	Layouts []string

	// GraceHour is the hour after midnight bounding the next-day
	// grace window (01:00 by default).
	GraceHour int
}

// DefaultConfig returns the layouts the booking exports are known to use.
func DefaultConfig() Config {
	return Config{
		Layouts: []string{
			"02/01/2006, 15:04",
			"02/01/2006 15:04",
			"02-01-2006, 15:04",
			"02-01-2006 15:04",
			"2006-01-02 15:04:05",
			"2006-01-02 15:04",
			"02/01/2006",
			"02-01-2006",
			"2006-01-02",
		},
		GraceHour: 1,
	}
}

// Result is the outcome of reconciling one booking's checkout dates.
type Result struct {
	// DaysDifference is the absolute calendar-day distance between the
	// two recorded dates. Never negative.
	DaysDifference int `json:"days_difference"`

	// NeedsApproval is true when the dates disagree and the booking
	// requires manual sign-off.
	NeedsApproval bool `json:"needs_approval"`
}

// Reconciler compares canonical checkout timestamps against transcribed
// checkout dates. It is stateless and safe for concurrent use.
type Reconciler struct {
	config Config
	logger *slog.Logger
}

// New creates a reconciler with the given config.
func New(config Config, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		config: config,
		logger: logger,
	}
}

// Reconcile compares the canonical checkout instant with the transcribed
// checkout text and reports day distance and approval requirement.
//
// Malformed input never fails a batch: a nil canonical timestamp or a
// secondary value matching no known layout degrades to a zero result with a
// diagnostic log entry.
func (r *Reconciler) Reconcile(canonical *time.Time, secondary string) Result {
	if canonical == nil {
		return Result{}
	}

	parsed, ok := r.parseSecondary(secondary)
	if !ok {
		return Result{}
	}

	days := dayDistance(*canonical, parsed)

	return Result{
		DaysDifference: days,
		NeedsApproval:  r.needsApproval(*canonical, parsed, days),
	}
}

// parseSecondary tries each configured layout in priority order.
func (r *Reconciler) parseSecondary(secondary string) (time.Time, bool) {
	trimmed := strings.TrimSpace(secondary)
	if trimmed == "" {
		return time.Time{}, false
	}

	for _, layout := range r.config.Layouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, true
		}
	}

	r.logger.Warn("unrecognized checkout date format", "value", trimmed)
	return time.Time{}, false
}

// needsApproval applies the approval policy for a non-zero day distance.
//
// The grace comparison below never changes the outcome: the final return
// requires approval for any non-zero day distance. It is kept until finance
// decides whether pre-grace next-day checkouts should auto-approve.
func (r *Reconciler) needsApproval(canonical, parsed time.Time, days int) bool {
	if days == 0 {
		return false
	}

	if days >= 1 {
		threshold := time.Date(
			canonical.Year(), canonical.Month(), canonical.Day(),
			r.config.GraceHour, 0, 0, 0, time.UTC,
		).AddDate(0, 0, 1)

		if !asInstant(parsed).Before(threshold) {
			return true
		}
	}

	return days >= 1
}

// dayDistance returns the absolute number of calendar days between the two
// dates, ignoring time of day.
func dayDistance(a, b time.Time) int {
	days := int(dateOf(a).Sub(dateOf(b)).Hours() / 24)
	if days < 0 {
		return -days
	}
	return days
}

// dateOf truncates a timestamp to its calendar date in UTC. Normalizing the
// zone keeps subtraction exact across differently sourced values.
func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// asInstant rebuilds a parsed value in UTC so it is comparable with the
// grace threshold regardless of the layout's implied zone.
func asInstant(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}
