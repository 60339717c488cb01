package progress_test

import (
	"testing"
	"time"

	"github.com/bencen/site-progress/progress"
)

// twoHalfPeriods is a plan estimating 50% of the item in each of two months.
func twoHalfPeriods() ([]progress.Period, []progress.EstimateRow) {
	periods := []progress.Period{
		period("p1", 1, d(2025, time.January, 1), d(2025, time.January, 31)),
		period("p2", 2, d(2025, time.February, 1), d(2025, time.February, 28)),
	}
	rows := []progress.EstimateRow{
		estRow("p1", "item-a", "0.5"),
		estRow("p2", "item-a", "0.5"),
	}
	return periods, rows
}

func concreteView(t *testing.T, qty string) progress.QuantityView {
	t.Helper()
	qv := progress.ResolveQuantityView(
		[]progress.ItemID{"item-a"},
		map[progress.ItemID]progress.ItemMeasure{
			"item-a": {Quantity: dec(qty), Unit: "m3", HasQuantity: true},
		},
	)
	if !qv.Enabled {
		t.Fatal("expected quantity view to be enabled")
	}
	return qv
}

func TestBuildEstimateCurve_CumulatesPercentAndQuantity(t *testing.T) {
	// GIVEN: 100 m3 of concrete planned 50% in January, 50% in February
	// WHEN: building the estimate curve
	// THEN: the curve is [50%, 100%] and [50, 100] m3

	periods, rows := twoHalfPeriods()
	qv := concreteView(t, "100")

	c := progress.BuildEstimateCurve("item-a", periods, rows, qv)

	if len(c.Points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(c.Points))
	}
	assertDecimal(t, "50", c.Points[0].CumulativePercent)
	assertDecimal(t, "100", c.Points[1].CumulativePercent)
	if c.Points[0].CumulativeQuantity == nil || c.Points[1].CumulativeQuantity == nil {
		t.Fatal("expected quantity values on every point")
	}
	assertDecimal(t, "50", *c.Points[0].CumulativeQuantity)
	assertDecimal(t, "100", *c.Points[1].CumulativeQuantity)

	if !c.Points[0].Date.Equal(d(2025, time.January, 31)) {
		t.Errorf("expected first point at period end, got %s", c.Points[0].Date)
	}
}

func TestBuildEstimateCurve_DisabledQuantityViewOmitsQuantities(t *testing.T) {
	periods, rows := twoHalfPeriods()

	c := progress.BuildEstimateCurve("item-a", periods, rows, progress.QuantityView{})

	for i, p := range c.Points {
		if p.CumulativeQuantity != nil {
			t.Errorf("point %d: expected nil quantity", i)
		}
	}
}

func TestEstimateCurve_AsOf(t *testing.T) {
	// GIVEN: the two-period half/half plan
	// WHEN: querying before, inside, between, and after the plan
	// THEN: 0 before, the containing period's cumulative inside, the final
	//       value past the last period

	periods, rows := twoHalfPeriods()
	c := progress.BuildEstimateCurve("item-a", periods, rows, progress.QuantityView{})

	assertDecimal(t, "0", c.AsOf(d(2024, time.December, 15)))
	assertDecimal(t, "50", c.AsOf(d(2025, time.January, 20)))
	assertDecimal(t, "100", c.AsOf(d(2025, time.February, 10)))
	assertDecimal(t, "100", c.AsOf(d(2025, time.August, 1)))
}

func TestEstimateCurve_DatelessPeriodAccumulatesButPlotsNothing(t *testing.T) {
	// GIVEN: a middle period with no dates at all
	// WHEN: building the curve
	// THEN: its delta folds into the next plotted point

	periods := []progress.Period{
		period("p1", 1, d(2025, time.January, 1), d(2025, time.January, 31)),
		period("p2", 2, progress.Date{}, progress.Date{}),
		period("p3", 3, d(2025, time.March, 1), d(2025, time.March, 31)),
	}
	rows := []progress.EstimateRow{
		estRow("p1", "item-a", "0.2"),
		estRow("p2", "item-a", "0.3"),
		estRow("p3", "item-a", "0.5"),
	}

	c := progress.BuildEstimateCurve("item-a", periods, rows, progress.QuantityView{})

	if len(c.Points) != 2 {
		t.Fatalf("expected 2 plotted points, got %d", len(c.Points))
	}
	assertDecimal(t, "20", c.Points[0].CumulativePercent)
	assertDecimal(t, "100", c.Points[1].CumulativePercent)
}

func TestEstimateCurve_FinalAndEmpty(t *testing.T) {
	periods, rows := twoHalfPeriods()
	c := progress.BuildEstimateCurve("item-a", periods, rows, progress.QuantityView{})
	assertDecimal(t, "100", c.Final())

	empty := progress.BuildEstimateCurve("item-a", nil, nil, progress.QuantityView{})
	assertDecimal(t, "0", empty.Final())
	if !empty.Empty() {
		t.Error("expected empty curve")
	}
}

func TestBuildAggregateEstimateCurve_WeightedMeanOfItemCumulatives(t *testing.T) {
	// GIVEN: item-a (weight 300) fully planned in p1, item-b (weight 100)
	//        fully planned in p2
	// WHEN: building the aggregate curve
	// THEN: p1 = (100*300 + 0*100)/400 = 75, p2 = 100

	periods := []progress.Period{
		period("p1", 1, d(2025, time.January, 1), d(2025, time.January, 31)),
		period("p2", 2, d(2025, time.February, 1), d(2025, time.February, 28)),
	}
	rows := []progress.EstimateRow{
		estRow("p1", "item-a", "1"),
		estRow("p2", "item-b", "1"),
	}
	w := progress.Weights{"item-a": dec("300"), "item-b": dec("100")}

	c := progress.BuildAggregateEstimateCurve(
		[]progress.ItemID{"item-a", "item-b"}, periods, rows, w, progress.QuantityView{})

	if len(c.Points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(c.Points))
	}
	assertDecimal(t, "75", c.Points[0].CumulativePercent)
	assertDecimal(t, "100", c.Points[1].CumulativePercent)
}

func TestBuildAggregateEstimateCurve_QuantitiesSumPlainly(t *testing.T) {
	// GIVEN: two items sharing the m3 unit, 60 and 40 m3, each fully
	//        planned in the single period
	// WHEN: aggregating with quantities enabled
	// THEN: the aggregate quantity is the plain sum, unweighted

	periods := []progress.Period{
		period("p1", 1, d(2025, time.January, 1), d(2025, time.January, 31)),
	}
	rows := []progress.EstimateRow{
		estRow("p1", "item-a", "1"),
		estRow("p1", "item-b", "1"),
	}
	items := []progress.ItemID{"item-a", "item-b"}
	qv := progress.ResolveQuantityView(items, map[progress.ItemID]progress.ItemMeasure{
		"item-a": {Quantity: dec("60"), Unit: "m3", HasQuantity: true},
		"item-b": {Quantity: dec("40"), Unit: "m3", HasQuantity: true},
	})

	c := progress.BuildAggregateEstimateCurve(items, periods, rows, progress.Weights{}, qv)

	if len(c.Points) != 1 || c.Points[0].CumulativeQuantity == nil {
		t.Fatal("expected one point with a quantity")
	}
	assertDecimal(t, "100", *c.Points[0].CumulativeQuantity)
}

func TestBuildAggregateEstimateCurve_EmptyItemSet(t *testing.T) {
	periods, rows := twoHalfPeriods()
	c := progress.BuildAggregateEstimateCurve(nil, periods, rows, progress.Weights{}, progress.QuantityView{})
	if !c.Empty() {
		t.Error("expected an empty aggregate curve for no items")
	}
}

func TestResolveQuantityView_MixedUnitsDisable(t *testing.T) {
	items := []progress.ItemID{"item-a", "item-b"}
	qv := progress.ResolveQuantityView(items, map[progress.ItemID]progress.ItemMeasure{
		"item-a": {Quantity: dec("60"), Unit: "m3", HasQuantity: true},
		"item-b": {Quantity: dec("40"), Unit: "m2", HasQuantity: true},
	})
	if qv.Enabled {
		t.Error("expected mixed units to disable the quantity view")
	}
}

func TestResolveQuantityView_MissingQuantityDisables(t *testing.T) {
	items := []progress.ItemID{"item-a", "item-b"}
	qv := progress.ResolveQuantityView(items, map[progress.ItemID]progress.ItemMeasure{
		"item-a": {Quantity: dec("60"), Unit: "m3", HasQuantity: true},
		"item-b": {Unit: "m3"},
	})
	if qv.Enabled {
		t.Error("expected a missing quantity to disable the quantity view")
	}
}
