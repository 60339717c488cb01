package plan_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bencen/site-progress/plan"
	"github.com/bencen/site-progress/progress"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func groupRow(id, code string) plan.PlanRow {
	return plan.PlanRow{Kind: plan.RowGroup, ID: id, Code: code, Description: "group " + code}
}

func subgroupRow(id, code string) plan.PlanRow {
	return plan.PlanRow{Kind: plan.RowSubgroup, ID: id, Code: code, Description: "subgroup " + code}
}

func itemRow(id, code, qty, unit string, prices ...string) plan.PlanRow {
	row := plan.PlanRow{
		Kind: plan.RowItem, ID: id, Code: code, Description: "item " + code,
		Unit: unit,
	}
	if qty != "" {
		row.Quantity = progress.MustDecimal(qty)
		row.HasQuantity = true
	}
	if len(prices) > 0 {
		row.PriceLabor = progress.MustDecimal(prices[0])
	}
	if len(prices) > 1 {
		row.PriceMaterials = progress.MustDecimal(prices[1])
	}
	if len(prices) > 2 {
		row.PriceEquipment = progress.MustDecimal(prices[2])
	}
	return row
}

// =============================================================================
// TREE CONSTRUCTION
// =============================================================================

func TestBuildTree_PositionalNesting(t *testing.T) {
	// GIVEN: a stream with a group, a direct item, a subgroup, and two
	//        subgroup items, then a second group
	// WHEN: building the tree
	// THEN: each item lands under the header most recently opened above it

	rows := []plan.PlanRow{
		groupRow("g1", "01"),
		itemRow("i1", "01.01", "10", "m3"),
		subgroupRow("sg1", "01.A"),
		itemRow("i2", "01.A.01", "20", "m2"),
		itemRow("i3", "01.A.02", "30", "m2"),
		groupRow("g2", "02"),
		itemRow("i4", "02.01", "5", "kg"),
	}

	tree, err := plan.BuildTree(rows)
	require.NoError(t, err)

	require.Len(t, tree.Groups, 2)
	g1 := tree.Groups[0]
	require.Len(t, g1.Items, 1)
	assert.Equal(t, progress.ItemID("i1"), g1.Items[0].ID)
	require.Len(t, g1.Subgroups, 1)
	assert.Len(t, g1.Subgroups[0].Items, 2)

	g2 := tree.Groups[1]
	assert.Empty(t, g2.Subgroups)
	require.Len(t, g2.Items, 1)
	assert.Equal(t, progress.ItemID("i4"), g2.Items[0].ID)
}

func TestBuildTree_ItemBeforeAnyGroupFailsFast(t *testing.T) {
	// GIVEN: an item row before the first group header
	// WHEN: building
	// THEN: a StructureError names the offending row; no partial tree

	rows := []plan.PlanRow{
		itemRow("i1", "00.01", "10", "m3"),
		groupRow("g1", "01"),
	}

	tree, err := plan.BuildTree(rows)

	var serr *plan.StructureError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, 0, serr.Index)
	assert.Equal(t, plan.RowItem, serr.Row.Kind)
	assert.Empty(t, tree.Groups)
}

func TestBuildTree_SubgroupBeforeAnyGroupFailsFast(t *testing.T) {
	rows := []plan.PlanRow{
		subgroupRow("sg1", "00.A"),
	}

	_, err := plan.BuildTree(rows)

	var serr *plan.StructureError
	require.ErrorAs(t, err, &serr)
	assert.Contains(t, serr.Error(), "must be preceded by a group row")
}

func TestBuildTree_UnknownRowKindFailsFast(t *testing.T) {
	rows := []plan.PlanRow{
		groupRow("g1", "01"),
		{Kind: "chapter", ID: "x"},
	}

	_, err := plan.BuildTree(rows)

	var serr *plan.StructureError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, 1, serr.Index)
}

func TestBuildTree_EmptyStream(t *testing.T) {
	tree, err := plan.BuildTree(nil)
	require.NoError(t, err)
	assert.Empty(t, tree.Groups)
}

func TestBuildTree_SecondSubgroupClosesTheFirst(t *testing.T) {
	rows := []plan.PlanRow{
		groupRow("g1", "01"),
		subgroupRow("sg1", "01.A"),
		itemRow("i1", "01.A.01", "1", "u"),
		subgroupRow("sg2", "01.B"),
		itemRow("i2", "01.B.01", "1", "u"),
	}

	tree, err := plan.BuildTree(rows)
	require.NoError(t, err)

	g := tree.Groups[0]
	require.Len(t, g.Subgroups, 2)
	assert.Equal(t, progress.ItemID("i1"), g.Subgroups[0].Items[0].ID)
	assert.Equal(t, progress.ItemID("i2"), g.Subgroups[1].Items[0].ID)
}

// =============================================================================
// ENGINE INPUT DERIVATION
// =============================================================================

func TestWorkItem_MoneyWeight(t *testing.T) {
	// GIVEN: an item at 10 units with prices 100 labor + 50 materials +
	//        25 equipment
	// WHEN: deriving the weight
	// THEN: (100+50+25) * 10 = 1750

	rows := []plan.PlanRow{
		groupRow("g1", "01"),
		itemRow("i1", "01.01", "10", "m3", "100", "50", "25"),
	}
	tree, err := plan.BuildTree(rows)
	require.NoError(t, err)

	item, ok := tree.Item("i1")
	require.True(t, ok)
	assert.True(t, item.Weight().Equal(progress.MustDecimal("1750")),
		"weight = %s", item.Weight())
}

func TestWorkItem_WeightZeroWithoutQuantity(t *testing.T) {
	rows := []plan.PlanRow{
		groupRow("g1", "01"),
		itemRow("i1", "01.01", "", "m3", "100"),
	}
	tree, err := plan.BuildTree(rows)
	require.NoError(t, err)

	item, _ := tree.Item("i1")
	assert.True(t, item.Weight().IsZero())

	// The engine then treats it as weight 1.
	w := plan.Weights(tree.AllItems())
	assert.True(t, w.Of("i1").Equal(decimal.NewFromInt(1)))
}

func TestTree_EngineInputs(t *testing.T) {
	rows := []plan.PlanRow{
		groupRow("g1", "01"),
		itemRow("i1", "01.01", "10", "m3", "5"),
		itemRow("i2", "01.02", "20", "m3", "5"),
	}
	tree, err := plan.BuildTree(rows)
	require.NoError(t, err)
	items := tree.AllItems()

	assert.Equal(t, []progress.ItemID{"i1", "i2"}, plan.ItemIDs(items))

	measures := plan.Measures(items)
	require.Contains(t, measures, progress.ItemID("i2"))
	assert.Equal(t, "m3", measures["i2"].Unit)

	qv := progress.ResolveQuantityView(plan.ItemIDs(items), measures)
	assert.True(t, qv.Enabled)
	assert.Equal(t, "m3", qv.Unit)
}
