/*
estimate.go - Cumulative estimate curves

PURPOSE:
  Converts per-period estimated delta fractions into a running cumulative
  percentage curve (and a cumulative quantity curve when the scope's
  QuantityView allows it), plus point-in-time lookup for plan comparison.

KEY INSIGHT:
  The as-of lookup runs against the PERIODS, not the curve points: a date
  resolves to a period via the interval index and returns that period's
  cumulative value. A date before every period is worth 0; a date past the
  last period is worth the final cumulative value. This is what a real
  report's date is compared against.

AGGREGATES:
  A multi-item estimate curve aggregates each item's own cumulative value
  per period (weighted), never the running sum of per-period aggregates -
  the two diverge when items lack rows for some periods. Quantities
  aggregate as plain sums (they share one unit by construction).

SEE ALSO:
  - interval.go: the period lookup AsOf relies on
  - real.go:     the curve this one is reconciled against
*/
package progress

import "github.com/shopspring/decimal"

// =============================================================================
// ESTIMATE CURVE
// =============================================================================

// EstimatePoint is one plotted point of the cumulative estimate: the value
// reached by the end of a period, at that period's representative date.
type EstimatePoint struct {
	Period             PeriodID
	Date               Date
	CumulativePercent  decimal.Decimal
	CumulativeQuantity *decimal.Decimal // nil when the quantity view is off
}

// EstimateCurve is the derived cumulative estimate for one item or one
// aggregate scope. Points are ordered by period sequence; periods without
// any representative date accumulate but plot nothing.
type EstimateCurve struct {
	Item   ItemID // empty for aggregate curves
	Points []EstimatePoint

	periods []Period
	cumPct  []decimal.Decimal // aligned with periods
	cumQty  []decimal.Decimal // aligned with periods; nil when disabled
}

// BuildEstimateCurve walks the periods in sequence order, accumulating the
// item's delta fraction per period. The cumulative value is not clamped:
// negative or oversized deltas flow through raw, clamping is presentation.
func BuildEstimateCurve(item ItemID, periods []Period, rows []EstimateRow, qv QuantityView) EstimateCurve {
	deltas := make(map[PeriodID]decimal.Decimal, len(rows))
	for _, r := range rows {
		if r.Item != item {
			continue
		}
		deltas[r.Period] = deltas[r.Period].Add(r.Delta)
	}

	qty, hasQty := qv.QuantityOf(item)

	c := EstimateCurve{
		Item:    item,
		periods: periods,
		cumPct:  make([]decimal.Decimal, len(periods)),
	}
	if hasQty {
		c.cumQty = make([]decimal.Decimal, len(periods))
	}

	running := decimal.Zero
	for i, p := range periods {
		running = running.Add(deltas[p.ID])
		c.cumPct[i] = running.Mul(hundred)
		if hasQty {
			c.cumQty[i] = running.Mul(qty)
		}
		c.appendPoint(i, p)
	}
	return c
}

// BuildAggregateEstimateCurve produces one weighted curve for a set of
// items: per period, the weighted mean of each item's cumulative percent,
// and the plain sum of cumulative quantities when the view is enabled.
func BuildAggregateEstimateCurve(items []ItemID, periods []Period, rows []EstimateRow, w Weights, qv QuantityView) EstimateCurve {
	c := EstimateCurve{
		periods: periods,
		cumPct:  make([]decimal.Decimal, len(periods)),
	}
	if qv.Enabled {
		c.cumQty = make([]decimal.Decimal, len(periods))
	}
	if len(items) == 0 {
		return c
	}

	weightSum := w.Sum(items)
	for _, id := range items {
		itemCurve := BuildEstimateCurve(id, periods, rows, qv)
		weight := w.Of(id)
		for i := range periods {
			c.cumPct[i] = c.cumPct[i].Add(itemCurve.cumPct[i].Mul(weight))
			if c.cumQty != nil && itemCurve.cumQty != nil {
				c.cumQty[i] = c.cumQty[i].Add(itemCurve.cumQty[i])
			}
		}
	}
	for i, p := range periods {
		c.cumPct[i] = c.cumPct[i].Div(weightSum)
		c.appendPoint(i, p)
	}
	return c
}

func (c *EstimateCurve) appendPoint(i int, p Period) {
	at, ok := p.RepresentativeEnd()
	if !ok {
		return
	}
	point := EstimatePoint{Period: p.ID, Date: at, CumulativePercent: c.cumPct[i]}
	if c.cumQty != nil {
		q := c.cumQty[i]
		point.CumulativeQuantity = &q
	}
	c.Points = append(c.Points, point)
}

// =============================================================================
// POINT-IN-TIME LOOKUP
// =============================================================================

// AsOf returns the cumulative estimated percent at an arbitrary date,
// resolved through the interval index over the curve's periods. Dates
// preceding every period are worth 0.
func (c EstimateCurve) AsOf(date Date) decimal.Decimal {
	idx := Locate(c.periods, date)
	if idx == NotFound {
		return decimal.Zero
	}
	return c.cumPct[idx]
}

// QuantityAsOf is AsOf for the cumulative quantity. ok is false when the
// quantity view is disabled or the date precedes every period.
func (c EstimateCurve) QuantityAsOf(date Date) (decimal.Decimal, bool) {
	if c.cumQty == nil {
		return decimal.Decimal{}, false
	}
	idx := Locate(c.periods, date)
	if idx == NotFound {
		return decimal.Decimal{}, false
	}
	return c.cumQty[idx], true
}

// Final returns the cumulative percent after the last period (0 for an
// empty plan).
func (c EstimateCurve) Final() decimal.Decimal {
	if len(c.cumPct) == 0 {
		return decimal.Zero
	}
	return c.cumPct[len(c.cumPct)-1]
}

// Empty reports whether the curve plots nothing.
func (c EstimateCurve) Empty() bool { return len(c.Points) == 0 }
