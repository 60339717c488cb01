/*
window.go - Default visible windows for charts and planning grids

PURPOSE:
  Derives the default/zoomable date range a consumer should show:

  - Plan window: from the first period with a positive estimate sum for
    the item set through the last such period.
  - To-date window: from the plan start through the most recent real
    report, for the "up to the latest field report" zoom.

DEGENERATE CASE:
  When no period carries a positive estimate for the item set there is no
  window at all (nil) and the estimated series is treated as entirely
  absent by downstream consumers - absent, not zero-filled.
*/
package progress

import "github.com/shopspring/decimal"

// Window is a closed [Start, End] date range.
type Window struct {
	Start Date
	End   Date
}

// PlanWindow returns the planned window for an item set: the representative
// start of the first period whose estimate sum is positive through the
// representative end of the last such period. nil when no period qualifies.
func PlanWindow(periods []Period, rows []EstimateRow, items []ItemID) *Window {
	if len(items) == 0 {
		return nil
	}
	inScope := make(map[ItemID]bool, len(items))
	for _, id := range items {
		inScope[id] = true
	}

	sums := make(map[PeriodID]decimal.Decimal, len(periods))
	for _, r := range rows {
		if inScope[r.Item] {
			sums[r.Period] = sums[r.Period].Add(r.Delta)
		}
	}

	first, last := -1, -1
	for i, p := range periods {
		if !sums[p.ID].IsPositive() {
			continue
		}
		if first == -1 {
			first = i
		}
		last = i
	}
	if first == -1 {
		return nil
	}

	start, okStart := periods[first].RepresentativeStart()
	end, okEnd := periods[last].RepresentativeEnd()
	if !okStart || !okEnd {
		return nil
	}
	return &Window{Start: start, End: end}
}

// ToDateWindow narrows the plan window to the most recent real report for
// the item set. With no reports it falls back to the plan window; with no
// plan window it is nil.
func ToDateWindow(periods []Period, rows []EstimateRow, items []ItemID, reports []Report) *Window {
	plan := PlanWindow(periods, rows, items)
	if plan == nil {
		return nil
	}

	inScope := make(map[ItemID]bool, len(items))
	for _, id := range items {
		inScope[id] = true
	}

	var latest Date
	for _, r := range reports {
		if !inScope[r.Item] {
			continue
		}
		at, ok := r.AsOf()
		if !ok {
			continue
		}
		if latest.IsZero() || at.After(latest) {
			latest = at
		}
	}
	if latest.IsZero() {
		return plan
	}
	return &Window{Start: plan.Start, End: latest}
}
