/*
real.go - Cumulative real-progress curves from field reports

PURPOSE:
  Turns an item's progress reports (each an incremental percent delta with
  an as-of date) into a running cumulative curve over time. Every point
  keeps its originating report for tooltip/audit display.

ORDERING:
  Reports sort by as-of date ascending, ties broken by creation timestamp
  ascending, so multiple same-day entries keep their entry order. The
  creation timestamp never participates in plan comparison - only ordering.

MUTATION MODEL:
  Reports are immutable facts once fetched. Editing or deleting a report is
  the caller replacing/removing it in the snapshot and re-running the build;
  the accumulation has no incremental state to patch.

SEE ALSO:
  - estimate.go: the plan curve this one is reconciled against
  - merge.go:    joins both curves on a shared timeline
*/
package progress

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// REAL CURVE
// =============================================================================

// RealPoint is one report's contribution to the cumulative curve.
type RealPoint struct {
	Date               Date
	CumulativePercent  decimal.Decimal
	CumulativeQuantity *decimal.Decimal // nil when the quantity view is off
	DeltaPercent       decimal.Decimal
	DeltaQuantity      *decimal.Decimal
	Report             Report
}

// RealCurve is the derived cumulative real progress for one item or one
// aggregate scope, ordered by as-of date.
type RealCurve struct {
	Item   ItemID // empty for aggregate curves
	Points []RealPoint
}

// BuildRealCurve accumulates an item's reports into a cumulative curve.
// Reports without any resolvable as-of date are dropped. Values are raw:
// corrective (negative) deltas may make the cumulative decrease.
func BuildRealCurve(item ItemID, reports []Report, qv QuantityView) RealCurve {
	dated := datedReports(reports, func(r Report) bool { return r.Item == item })
	qty, hasQty := qv.QuantityOf(item)

	c := RealCurve{Item: item}
	cumPct := decimal.Zero
	for _, dr := range dated {
		cumPct = cumPct.Add(dr.report.DeltaPercent)
		p := RealPoint{
			Date:              dr.at,
			CumulativePercent: cumPct,
			DeltaPercent:      dr.report.DeltaPercent,
			Report:            dr.report,
		}
		if hasQty {
			dq := qty.Mul(dr.report.DeltaPercent).Div(hundred)
			cq := qty.Mul(cumPct).Div(hundred)
			p.DeltaQuantity = &dq
			p.CumulativeQuantity = &cq
		}
		c.Points = append(c.Points, p)
	}
	return c
}

// BuildAggregateRealCurve merges the reports of a whole item set into one
// weighted cumulative curve: each report moves the aggregate by its delta
// scaled by the item's share of the scope's total weight. Equivalent to
// aggregating each item's own cumulative value at every report date, since
// the item set is fixed for the scope. Quantities sum plainly.
func BuildAggregateRealCurve(items []ItemID, reports []Report, w Weights, qv QuantityView) RealCurve {
	if len(items) == 0 {
		return RealCurve{}
	}
	inScope := make(map[ItemID]bool, len(items))
	for _, id := range items {
		inScope[id] = true
	}

	dated := datedReports(reports, func(r Report) bool { return inScope[r.Item] })
	weightSum := w.Sum(items)

	var c RealCurve
	cumPct := decimal.Zero
	cumQty := decimal.Zero
	for _, dr := range dated {
		share := dr.report.DeltaPercent.Mul(w.Of(dr.report.Item)).Div(weightSum)
		cumPct = cumPct.Add(share)
		p := RealPoint{
			Date:              dr.at,
			CumulativePercent: cumPct,
			DeltaPercent:      share,
			Report:            dr.report,
		}
		if qty, ok := qv.QuantityOf(dr.report.Item); ok {
			dq := qty.Mul(dr.report.DeltaPercent).Div(hundred)
			cumQty = cumQty.Add(dq)
			cq := cumQty
			p.DeltaQuantity = &dq
			p.CumulativeQuantity = &cq
		}
		c.Points = append(c.Points, p)
	}
	return c
}

// LastDate returns the as-of date of the latest point.
func (c RealCurve) LastDate() (Date, bool) {
	if len(c.Points) == 0 {
		return Date{}, false
	}
	return c.Points[len(c.Points)-1].Date, true
}

// Final returns the cumulative percent after the last report (0 when empty).
func (c RealCurve) Final() decimal.Decimal {
	if len(c.Points) == 0 {
		return decimal.Zero
	}
	return c.Points[len(c.Points)-1].CumulativePercent
}

// =============================================================================
// ORDERING
// =============================================================================

type datedReport struct {
	at     Date
	report Report
}

func datedReports(reports []Report, keep func(Report) bool) []datedReport {
	var out []datedReport
	for _, r := range reports {
		if !keep(r) {
			continue
		}
		at, ok := r.AsOf()
		if !ok {
			continue // undatable report: dropped, never fatal
		}
		out = append(out, datedReport{at: at, report: r})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].at.Equal(out[j].at) {
			return out[i].at.Before(out[j].at)
		}
		return out[i].report.CreatedAt.Before(out[j].report.CreatedAt)
	})
	return out
}
