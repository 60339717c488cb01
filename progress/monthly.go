/*
monthly.go - Per-calendar-month delta matrix for planning grids

PURPOSE:
  Re-expresses both series as (item x month) percent deltas for the
  Gantt-style planning grid: estimates bucketed by period, reports bucketed
  by their as-of date, plus hierarchical aggregation across the matrix.

MONTH ATTRIBUTION:
  A period's whole delta lands in the calendar month of its representative
  end date, even when the period spans several months - no pro-rating by
  day. This mirrors the planning data as entered, and it is what makes the
  matrix conserve totals: summing an item's deltas across all months equals
  the final cumulative value of its curve. Whether end-month attribution is
  the right business rule for multi-month periods is an open call; changing
  it means pro-rating here and nowhere else.

SEE ALSO:
  - aggregate.go: the per-bucket / cumulative-to-bucket aggregation used here
  - window.go:    the plan window that anchors the month axis
*/
package progress

import "sort"

// MonthlyMatrix is the planning-grid input: an ordered month axis and one
// delta series per source. The axis spans the union of months present in
// either source, and always covers every month inside the plan window.
type MonthlyMatrix struct {
	Months    []MonthKey
	Estimated BucketSeries
	Real      BucketSeries
}

// BuildMonthlyMatrix buckets both series for an item set.
func BuildMonthlyMatrix(items []ItemID, periods []Period, rows []EstimateRow, reports []Report) MonthlyMatrix {
	inScope := make(map[ItemID]bool, len(items))
	for _, id := range items {
		inScope[id] = true
	}

	m := MonthlyMatrix{
		Estimated: make(BucketSeries),
		Real:      make(BucketSeries),
	}
	months := make(map[MonthKey]bool)

	endMonth := make(map[PeriodID]MonthKey, len(periods))
	for _, p := range periods {
		if at, ok := p.RepresentativeEnd(); ok {
			endMonth[p.ID] = MonthOf(at)
		}
	}

	for _, r := range rows {
		if !inScope[r.Item] {
			continue
		}
		mk, ok := endMonth[r.Period]
		if !ok {
			continue // dateless period: nothing to bucket it into
		}
		m.Estimated.Add(r.Item, mk, r.Delta.Mul(hundred))
		months[mk] = true
	}

	for _, r := range reports {
		if !inScope[r.Item] {
			continue
		}
		at, ok := r.AsOf()
		if !ok {
			continue
		}
		mk := MonthOf(at)
		m.Real.Add(r.Item, mk, r.DeltaPercent)
		months[mk] = true
	}

	if w := PlanWindow(periods, rows, items); w != nil {
		for _, mk := range MonthsBetween(MonthOf(w.Start), MonthOf(w.End)) {
			months[mk] = true
		}
	}

	m.Months = make([]MonthKey, 0, len(months))
	for mk := range months {
		m.Months = append(m.Months, mk)
	}
	sort.Slice(m.Months, func(i, j int) bool { return m.Months[i].Before(m.Months[j]) })
	return m
}

// LastRealMonth returns the latest month carrying any real delta, for the
// "up to the latest field report" grid zoom.
func (m MonthlyMatrix) LastRealMonth() (MonthKey, bool) {
	var last MonthKey
	for _, row := range m.Real {
		for mk := range row {
			if mk.After(last) {
				last = mk
			}
		}
	}
	return last, last != ""
}
