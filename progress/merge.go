/*
merge.go - Joining the estimated and real curves on one timeline

PURPOSE:
  Charting both curves needs a single table with one row per distinct date
  and a column per curve. This is the one place that merge happens: a
  two-pointer walk over the precomputed sorted union of dates, carrying
  each curve forward with last-observation-carried-forward semantics (a
  step function, not linear interpolation).

NULL SEMANTICS:
  A column is nil before its curve's first point. The estimated column is
  also nil past the window's end - the plan's nominal end, or the last real
  report when the caller passes the to-date window - so the chart shows a
  gap instead of a flat phantom plan. Diff is real minus estimated, only
  where both sides are present.
*/
package progress

import (
	"sort"

	"github.com/shopspring/decimal"
)

// MergedPoint is one row of the aligned chart table.
type MergedPoint struct {
	Date      Date
	Estimated *decimal.Decimal // nil before the curve starts / past the window end
	Real      *decimal.Decimal // nil before the first report
	Diff      *decimal.Decimal // Real - Estimated where both are present
}

// MergeSeries aligns an estimate curve and a real curve on the sorted union
// of their dates plus the window bounds. window may be nil (no bounds are
// added and the estimated column is never cut off).
func MergeSeries(est EstimateCurve, real RealCurve, window *Window) []MergedPoint {
	dates := unionDates(est, real, window)
	if len(dates) == 0 {
		return nil
	}

	out := make([]MergedPoint, 0, len(dates))
	ei, ri := 0, 0
	var lastEst, lastReal *decimal.Decimal

	for _, d := range dates {
		for ei < len(est.Points) && est.Points[ei].Date.BeforeOrEqual(d) {
			v := est.Points[ei].CumulativePercent
			lastEst = &v
			ei++
		}
		for ri < len(real.Points) && real.Points[ri].Date.BeforeOrEqual(d) {
			v := real.Points[ri].CumulativePercent
			lastReal = &v
			ri++
		}

		estVal := lastEst
		if window != nil && d.After(window.End) {
			estVal = nil
		}

		p := MergedPoint{Date: d, Estimated: estVal, Real: lastReal}
		if estVal != nil && lastReal != nil {
			diff := lastReal.Sub(*estVal)
			p.Diff = &diff
		}
		out = append(out, p)
	}
	return out
}

func unionDates(est EstimateCurve, real RealCurve, window *Window) []Date {
	seen := make(map[string]Date)
	add := func(d Date) {
		if !d.IsZero() {
			seen[d.String()] = d
		}
	}

	for _, p := range est.Points {
		add(p.Date)
	}
	for _, p := range real.Points {
		add(p.Date)
	}
	if window != nil {
		add(window.Start)
		add(window.End)
	}

	dates := make([]Date, 0, len(seen))
	for _, d := range seen {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}
