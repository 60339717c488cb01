package progress_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/bencen/site-progress/progress"
)

func TestWeightedMean_TwoItems(t *testing.T) {
	// GIVEN: item-a at 50% with weight 300, item-b at 0% with weight 100
	// WHEN: aggregating
	// THEN: (50*300 + 0*100) / 400 = 37.5

	w := progress.Weights{"item-a": dec("300"), "item-b": dec("100")}
	values := map[progress.ItemID]decimal.Decimal{"item-a": dec("50")}

	got := progress.WeightedMean(
		[]progress.ItemID{"item-a", "item-b"}, w,
		func(id progress.ItemID) decimal.Decimal { return values[id] })

	assertDecimal(t, "37.5", got)
}

func TestWeightedMean_OrderInvariant(t *testing.T) {
	w := progress.Weights{"a": dec("7"), "b": dec("3"), "c": dec("11")}
	values := map[progress.ItemID]decimal.Decimal{"a": dec("10"), "b": dec("80"), "c": dec("45")}
	valueOf := func(id progress.ItemID) decimal.Decimal { return values[id] }

	forward := progress.WeightedMean([]progress.ItemID{"a", "b", "c"}, w, valueOf)
	reversed := progress.WeightedMean([]progress.ItemID{"c", "b", "a"}, w, valueOf)

	if !forward.Equal(reversed) {
		t.Errorf("expected order invariance, got %s vs %s", forward, reversed)
	}
}

func TestWeightedMean_SingleItemIsIdentity(t *testing.T) {
	got := progress.WeightedMean(
		[]progress.ItemID{"a"}, progress.Weights{"a": dec("123.45")},
		func(progress.ItemID) decimal.Decimal { return dec("42") })
	assertDecimal(t, "42", got)
}

func TestWeightedMean_EmptyItemSetIsZero(t *testing.T) {
	got := progress.WeightedMean(nil, progress.Weights{},
		func(progress.ItemID) decimal.Decimal { return dec("99") })
	assertDecimal(t, "0", got)
}

func TestWeights_MissingAndNonPositiveResolveToOne(t *testing.T) {
	// GIVEN: one absent weight, one zero, one negative
	// WHEN: resolving
	// THEN: all degrade to 1 and the sum stays positive

	w := progress.Weights{"zero": dec("0"), "neg": dec("-5")}

	assertDecimal(t, "1", w.Of("absent"))
	assertDecimal(t, "1", w.Of("zero"))
	assertDecimal(t, "1", w.Of("neg"))
	assertDecimal(t, "3", w.Sum([]progress.ItemID{"absent", "zero", "neg"}))
}

func TestBucketSeries_AddAccumulates(t *testing.T) {
	s := make(progress.BucketSeries)
	s.Add("a", "2025-01", dec("10"))
	s.Add("a", "2025-01", dec("5"))

	assertDecimal(t, "15", s.ValueAt("a", "2025-01"))
	assertDecimal(t, "0", s.ValueAt("a", "2025-02"))
}

func TestBucketSeries_CumulativeTo(t *testing.T) {
	months := []progress.MonthKey{"2025-01", "2025-02", "2025-03"}
	s := make(progress.BucketSeries)
	s.Add("a", "2025-01", dec("20"))
	s.Add("a", "2025-03", dec("30"))

	assertDecimal(t, "20", s.CumulativeTo(months, "a", "2025-02"))
	assertDecimal(t, "50", s.CumulativeTo(months, "a", "2025-03"))
}

func TestAggregateCumulative_AggregatesItemCumulatives(t *testing.T) {
	// GIVEN: item-a advanced 100% in January, item-b 100% in March, equal
	//        weights
	// WHEN: asking the cumulative aggregate at February
	// THEN: 50 - a's own cumulative (100) averaged with b's (0), not a
	//       running sum over changing per-month aggregates

	months := []progress.MonthKey{"2025-01", "2025-02", "2025-03"}
	s := make(progress.BucketSeries)
	s.Add("a", "2025-01", dec("100"))
	s.Add("b", "2025-03", dec("100"))
	items := []progress.ItemID{"a", "b"}

	assertDecimal(t, "50", progress.AggregateCumulative(s, months, items, "2025-02", progress.Weights{}))
	assertDecimal(t, "100", progress.AggregateCumulative(s, months, items, "2025-03", progress.Weights{}))
}

func TestAggregateBucket_IsolatedMonth(t *testing.T) {
	s := make(progress.BucketSeries)
	s.Add("a", "2025-02", dec("40"))
	s.Add("b", "2025-02", dec("20"))
	w := progress.Weights{"a": dec("1"), "b": dec("3")}

	// (40*1 + 20*3) / 4 = 25
	assertDecimal(t, "25", progress.AggregateBucket(s, []progress.ItemID{"a", "b"}, "2025-02", w))
}
