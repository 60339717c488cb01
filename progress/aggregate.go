/*
aggregate.go - Weighted hierarchical aggregation

PURPOSE:
  Combines several items' per-bucket values (one period or one calendar
  month) into a single weighted percentage at subgroup, group, or project
  level. The same functions serve the estimated and the real series - the
  caller just passes a different source - so both curves aggregate with
  identical semantics.

CUMULATIVE SEMANTICS:
  Cumulative-to-bucket for an aggregate is the weighted aggregate of each
  item's OWN cumulative value, never the running sum of the aggregate's
  per-bucket values. The two differ when the bucket set changes mid-series,
  and summing the aggregate drifts.
*/
package progress

import "github.com/shopspring/decimal"

// =============================================================================
// BUCKET SERIES
// =============================================================================

// BucketSeries holds one delta value per item per calendar-month bucket.
// Missing entries are zero.
type BucketSeries map[ItemID]map[MonthKey]decimal.Decimal

// Add accumulates a delta into an item's bucket.
func (s BucketSeries) Add(item ItemID, month MonthKey, delta decimal.Decimal) {
	row := s[item]
	if row == nil {
		row = make(map[MonthKey]decimal.Decimal)
		s[item] = row
	}
	row[month] = row[month].Add(delta)
}

// ValueAt returns the item's delta for one bucket in isolation.
func (s BucketSeries) ValueAt(item ItemID, month MonthKey) decimal.Decimal {
	return s[item][month]
}

// CumulativeTo sums the item's deltas for every bucket up to and including
// the target, in the calendar order given by months.
func (s BucketSeries) CumulativeTo(months []MonthKey, item ItemID, month MonthKey) decimal.Decimal {
	sum := decimal.Zero
	for _, m := range months {
		sum = sum.Add(s[item][m])
		if m == month {
			break
		}
	}
	return sum
}

// =============================================================================
// WEIGHTED AGGREGATION
// =============================================================================

// WeightedMean is the core aggregation formula: sum(w_i * v_i) / sum(w_i)
// over the item list, 0 for an empty list. Weight resolution guarantees a
// positive denominator whenever at least one item is present, and the sum
// is order-invariant.
func WeightedMean(items []ItemID, w Weights, valueOf func(ItemID) decimal.Decimal) decimal.Decimal {
	if len(items) == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, id := range items {
		sum = sum.Add(valueOf(id).Mul(w.Of(id)))
	}
	return sum.Div(w.Sum(items))
}

// AggregateBucket aggregates one bucket in isolation across the item list.
func AggregateBucket(s BucketSeries, items []ItemID, month MonthKey, w Weights) decimal.Decimal {
	return WeightedMean(items, w, func(id ItemID) decimal.Decimal {
		return s.ValueAt(id, month)
	})
}

// AggregateCumulative aggregates each item's cumulative-to-bucket value.
func AggregateCumulative(s BucketSeries, months []MonthKey, items []ItemID, month MonthKey, w Weights) decimal.Decimal {
	return WeightedMean(items, w, func(id ItemID) decimal.Decimal {
		return s.CumulativeTo(months, id, month)
	})
}
