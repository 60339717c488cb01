/*
weights.go - Item weighting and quantity-view eligibility

PURPOSE:
  Two small value objects that every aggregation threads through:

  - Weights: the per-item weight (monetary value or unit count) used when
    combining several items into one percentage. Resolution guarantees a
    positive weight, so aggregation denominators are always positive when
    at least one item is present.

  - QuantityView: whether an aggregation scope may be expressed in absolute
    quantities (m3, m2, ...) instead of percent. Eligibility is decided ONCE
    per scope - every item must carry a quantity and all units must match -
    and the resulting object is passed to every function that can emit
    quantities, instead of re-checking units inline at each call site.

SEE ALSO:
  - aggregate.go: consumes Weights
  - estimate.go, real.go, monthly.go: consume QuantityView
*/
package progress

import "github.com/shopspring/decimal"

// =============================================================================
// WEIGHTS
// =============================================================================

// Weights maps items to their aggregation weight. Missing entries and
// non-positive values resolve to 1.
type Weights map[ItemID]decimal.Decimal

// Of returns the item's weight, guaranteed positive. When every item of a
// scope is absent from the map this degenerates to an unweighted average.
func (w Weights) Of(id ItemID) decimal.Decimal {
	v, ok := w[id]
	if !ok || !v.IsPositive() {
		return one
	}
	return v
}

// Sum returns the total weight of the item list. Zero only for an empty list.
func (w Weights) Sum(items []ItemID) decimal.Decimal {
	total := decimal.Zero
	for _, id := range items {
		total = total.Add(w.Of(id))
	}
	return total
}

// =============================================================================
// QUANTITY VIEW ELIGIBILITY
// =============================================================================

// ItemMeasure is the raw quantity/unit pair of one work item as fetched
// from the plan. HasQuantity is false when the contracted total is unknown.
type ItemMeasure struct {
	Quantity    decimal.Decimal
	Unit        string
	HasQuantity bool
}

// QuantityView says whether a scope of items may be rendered in absolute
// quantities, and with which unit. Disabled views still aggregate percent
// normally - only the quantity columns go away.
type QuantityView struct {
	Enabled    bool
	Unit       string
	quantities map[ItemID]decimal.Decimal
}

// ResolveQuantityView computes eligibility for one aggregation scope.
// Every item must carry a non-negative quantity and a unit, and the units
// must be uniform across the scope. Anything else disables the quantity
// view for this scope only.
func ResolveQuantityView(items []ItemID, measures map[ItemID]ItemMeasure) QuantityView {
	if len(items) == 0 {
		return QuantityView{}
	}

	view := QuantityView{quantities: make(map[ItemID]decimal.Decimal, len(items))}
	for _, id := range items {
		m, ok := measures[id]
		if !ok || !m.HasQuantity || m.Unit == "" || m.Quantity.IsNegative() {
			return QuantityView{}
		}
		if view.Unit == "" {
			view.Unit = m.Unit
		} else if view.Unit != m.Unit {
			return QuantityView{}
		}
		view.quantities[id] = m.Quantity
	}
	view.Enabled = true
	return view
}

// QuantityOf returns the item's total contracted quantity. ok is false when
// the view is disabled or the item is outside the resolved scope.
func (qv QuantityView) QuantityOf(id ItemID) (decimal.Decimal, bool) {
	if !qv.Enabled {
		return decimal.Decimal{}, false
	}
	q, ok := qv.quantities[id]
	return q, ok
}
