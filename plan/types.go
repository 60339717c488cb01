/*
Package plan models the contracted work breakdown of a construction project.

PURPOSE:
  The plan import delivers a FLAT, ordered row stream: group header rows,
  optional subgroup header rows, and work-item rows, where nesting is
  implied purely by position. This package turns that stream into an
  explicit Group/Subgroup/WorkItem tree (tree.go), derives the aggregation
  inputs the progress engine consumes (weights, measures, item scopes), and
  rolls the tree up into money/progress summaries for dashboards
  (summary.go).

KEY CONCEPTS IN THIS FILE (types.go):
  - PlanRow:  one row of the flat import stream, tagged by RowKind
  - WorkItem: a leaf of the tree; carries quantity, unit, unit prices
  - Subgroup: owns items only
  - Group:    owns subgroups and directly-attached items
  - Tree:     the explicit hierarchy plus scope/weight/measure accessors

WEIGHTS:
  An item's aggregation weight is its contracted money value: the sum of
  its unit-price components times the contracted quantity. Items without
  prices or quantity fall back to weight 1 inside the engine.

SEE ALSO:
  - tree.go:    the two-pass builder and its structural validation
  - summary.go: money and completion rollups over the tree
*/
package plan

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/bencen/site-progress/progress"
)

// =============================================================================
// FLAT PLAN ROWS
// =============================================================================

// RowKind tags one row of the flat plan stream.
type RowKind string

const (
	RowGroup    RowKind = "group"
	RowSubgroup RowKind = "subgroup"
	RowItem     RowKind = "item"
)

// PlanRow is one row of the ordered plan import. Group and subgroup rows
// carry only Code/Description; item rows carry the full measure and prices.
type PlanRow struct {
	Kind        RowKind
	ID          string
	Code        string
	Description string

	Quantity    decimal.Decimal
	HasQuantity bool
	Unit        string

	PriceLabor     decimal.Decimal
	PriceMaterials decimal.Decimal
	PriceEquipment decimal.Decimal
}

// =============================================================================
// TREE NODES
// =============================================================================

// WorkItem is a leaf work item. Immutable once built from the plan import.
type WorkItem struct {
	ID          progress.ItemID
	Code        string
	Description string
	Measure     progress.ItemMeasure
	UnitPrice   decimal.Decimal // labor + materials + equipment per unit
}

// Weight is the item's contracted money value (unit price x quantity).
// Zero when the quantity or prices are unknown; the engine's weight
// resolution then degrades it to 1.
func (i WorkItem) Weight() decimal.Decimal {
	if !i.Measure.HasQuantity {
		return decimal.Zero
	}
	return i.UnitPrice.Mul(i.Measure.Quantity)
}

// Subgroup owns work items only.
type Subgroup struct {
	ID          string
	Code        string
	Description string
	Items       []WorkItem
}

// Group owns zero or more subgroups plus directly-attached items. Groups
// and subgroups carry no weight of their own; their aggregate value is
// always derived from owned items.
type Group struct {
	ID          string
	Code        string
	Description string
	Items       []WorkItem // attached before any subgroup header
	Subgroups   []Subgroup
}

// AllItems returns the group's items, direct ones first, then per subgroup
// in stream order.
func (g Group) AllItems() []WorkItem {
	items := make([]WorkItem, 0, len(g.Items))
	items = append(items, g.Items...)
	for _, sg := range g.Subgroups {
		items = append(items, sg.Items...)
	}
	return items
}

// Tree is the explicit plan hierarchy for one project.
type Tree struct {
	Groups []Group
}

// AllItems returns every work item of the plan in stream order.
func (t Tree) AllItems() []WorkItem {
	return lo.FlatMap(t.Groups, func(g Group, _ int) []WorkItem {
		return g.AllItems()
	})
}

// Item finds a work item anywhere in the tree.
func (t Tree) Item(id progress.ItemID) (WorkItem, bool) {
	return lo.Find(t.AllItems(), func(i WorkItem) bool { return i.ID == id })
}

// Group finds a group by id.
func (t Tree) Group(id string) (Group, bool) {
	return lo.Find(t.Groups, func(g Group) bool { return g.ID == id })
}

// =============================================================================
// ENGINE INPUTS
// =============================================================================

// ItemIDs extracts the engine scope for a list of items.
func ItemIDs(items []WorkItem) []progress.ItemID {
	return lo.Map(items, func(i WorkItem, _ int) progress.ItemID { return i.ID })
}

// Weights derives the engine weight map from a list of items.
func Weights(items []WorkItem) progress.Weights {
	w := make(progress.Weights, len(items))
	for _, i := range items {
		w[i.ID] = i.Weight()
	}
	return w
}

// Measures derives the quantity/unit map the quantity-view resolution needs.
func Measures(items []WorkItem) map[progress.ItemID]progress.ItemMeasure {
	m := make(map[progress.ItemID]progress.ItemMeasure, len(items))
	for _, i := range items {
		m[i.ID] = i.Measure
	}
	return m
}
