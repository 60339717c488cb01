/*
Package progress implements the progress aggregation and reconciliation
engine for construction-project tracking.

PURPOSE:
  This package contains the algorithmic core: it converts discrete,
  irregularly-dated progress reports into cumulative curves, maps calendar
  dates to the plan's cumulative estimate via period-interval lookup,
  aggregates item-level percentages into weighted group/project totals,
  merges estimated and real series onto a shared timeline, and buckets both
  series into calendar months for planning-grid views.

KEY CONCEPTS IN THIS FILE (types.go):
  - Date: a day-precision calendar date (curve x-axis, period bounds)
  - MonthKey: a "YYYY-MM" calendar-month key, lexically ordered
  - Period: one planning period of the estimated schedule
  - EstimateRow: a (period, item) estimated delta fraction
  - Report: one field report of incremental percent progress

DESIGN PRINCIPLES:
  1. Purity: every operation is a pure function of its input snapshot;
     nothing here performs I/O or holds state across calls
  2. Precision: shopspring/decimal for all percent/quantity/money arithmetic
  3. Degradation over failure: missing weights, quantities, units or
     unparseable dates degrade the output, they never abort it

SEE ALSO:
  - interval.go:  period lookup for a calendar date
  - estimate.go:  cumulative estimate curves and as-of lookup
  - real.go:      cumulative real curves from reports
  - aggregate.go: weighted hierarchical aggregation
  - merge.go:     estimated/real series merging for charts
  - monthly.go:   per-month delta matrix for planning grids
  - window.go:    plan and to-date visible windows
*/
package progress

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type ProjectID string
type ItemID string
type PeriodID string
type ReportID string

// =============================================================================
// DATE - Day-precision calendar date
// =============================================================================

// Date is a calendar date at day granularity. The zero value means "absent";
// all inputs with unparseable or missing dates normalize to the zero Date.
type Date struct {
	Time time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate reads a date from an ISO string ("2006-01-02", longer strings
// are truncated to their date prefix). Malformed input yields (zero, false):
// the caller drops the point rather than failing the computation.
func ParseDate(s string) (Date, bool) {
	if len(s) > 10 {
		s = s[:10]
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, false
	}
	return Date{Time: t}, true
}

// Comparison
func (d Date) IsZero() bool             { return d.Time.IsZero() }
func (d Date) Before(o Date) bool       { return d.normalize().Before(o.normalize()) }
func (d Date) After(o Date) bool        { return d.normalize().After(o.normalize()) }
func (d Date) Equal(o Date) bool        { return d.normalize().Equal(o.normalize()) }
func (d Date) BeforeOrEqual(o Date) bool { return !d.After(o) }
func (d Date) AfterOrEqual(o Date) bool  { return !d.Before(o) }

func (d Date) normalize() time.Time {
	return time.Date(d.Time.Year(), d.Time.Month(), d.Time.Day(), 0, 0, 0, 0, time.UTC)
}

func (d Date) AddMonths(n int) Date { return Date{Time: d.Time.AddDate(0, n, 0)} }

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Time.Format("2006-01-02")
}

// MonthOf returns the calendar-month key containing the date.
func MonthOf(d Date) MonthKey {
	if d.IsZero() {
		return ""
	}
	return MonthKey(d.Time.Format("2006-01"))
}

// =============================================================================
// MONTH KEY - "YYYY-MM", ordered lexically
// =============================================================================

type MonthKey string

func (m MonthKey) Before(o MonthKey) bool { return m < o }
func (m MonthKey) After(o MonthKey) bool  { return m > o }

// FirstDay returns the first day of the month, or (zero, false) for a
// malformed key.
func (m MonthKey) FirstDay() (Date, bool) {
	t, err := time.Parse("2006-01", string(m))
	if err != nil {
		return Date{}, false
	}
	return Date{Time: t}, true
}

// MonthsBetween enumerates every month from 'from' through 'to' inclusive,
// in calendar order. Malformed bounds yield nil.
func MonthsBetween(from, to MonthKey) []MonthKey {
	start, ok := from.FirstDay()
	if !ok {
		return nil
	}
	end, ok := to.FirstDay()
	if !ok {
		return nil
	}

	var months []MonthKey
	for cur := start; cur.BeforeOrEqual(end); cur = cur.AddMonths(1) {
		months = append(months, MonthOf(cur))
	}
	return months
}

// =============================================================================
// PERIOD - One planning period of the estimated schedule
// =============================================================================

// Period belongs to one project and is totally ordered by Seq. At least one
// of Start/End should be present for well-formed data, but neither is
// guaranteed: a period missing one bound collapses to a point interval on
// the other, and a period missing both carries no dates at all.
type Period struct {
	ID    PeriodID
	Seq   int
	Label string
	Start Date // zero when absent
	End   Date // zero when absent
}

// Bounds returns the effective [start, end] interval used for date lookup.
// ok is false when the period has no date on either side.
func (p Period) Bounds() (start, end Date, ok bool) {
	start, end = p.Start, p.End
	if start.IsZero() {
		start = end
	}
	if end.IsZero() {
		end = start
	}
	return start, end, !start.IsZero()
}

// RepresentativeEnd is the date a cumulative estimate point is plotted at:
// the period's end date, falling back to its start date.
func (p Period) RepresentativeEnd() (Date, bool) {
	if !p.End.IsZero() {
		return p.End, true
	}
	return p.Start, !p.Start.IsZero()
}

// RepresentativeStart is the date a window opens at: the period's start
// date, falling back to its end date.
func (p Period) RepresentativeStart() (Date, bool) {
	if !p.Start.IsZero() {
		return p.Start, true
	}
	return p.End, !p.End.IsZero()
}

// =============================================================================
// ESTIMATE ROW - (period, item) estimated delta
// =============================================================================

// EstimateRow carries the fraction of an item's total scope estimated for
// one period alone (a delta, not a cumulative). Nominally in [0,1]; upstream
// data errors can push it outside those bounds and the raw value is
// preserved for computation, clamping is a presentation concern.
type EstimateRow struct {
	Period PeriodID
	Item   ItemID
	Delta  decimal.Decimal
}

// =============================================================================
// REPORT - One field report of incremental progress
// =============================================================================

// Report is an append-only fact: an incremental percent delta for one item,
// dated by the field. Edits replace the delta/date/note of one report and
// deletes remove one report; both are handled by re-running the accumulation
// over the amended snapshot.
//
// Date is the primary "as-of" date. Reports entered against a work range
// may carry only RangeStart/RangeEnd; AsOf resolves the fallback chain.
// Multiple reports for the same item may cover overlapping ranges - no
// uniqueness constraint is enforced here.
type Report struct {
	ID           ReportID
	Item         ItemID
	DeltaPercent decimal.Decimal // percent points, nominally [0,100]

	Date       Date // as-of date (may be zero)
	RangeStart Date // optional work range
	RangeEnd   Date

	CreatedAt time.Time // audit ordering only, never plan comparison
	Note      string
	Photos    []string
	Author    string
}

// AsOf resolves the date the report counts at: the report date, else the
// work-range end, else the work-range start. ok is false when no candidate
// is present; such reports are dropped from curves.
func (r Report) AsOf() (Date, bool) {
	switch {
	case !r.Date.IsZero():
		return r.Date, true
	case !r.RangeEnd.IsZero():
		return r.RangeEnd, true
	case !r.RangeStart.IsZero():
		return r.RangeStart, true
	}
	return Date{}, false
}

// =============================================================================
// DECIMAL HELPERS
// =============================================================================

var (
	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)
)

// MustDecimal parses a decimal literal, returning zero on malformed input.
func MustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
