package plan_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bencen/site-progress/plan"
	"github.com/bencen/site-progress/progress"
)

func summaryTree(t *testing.T) plan.Tree {
	t.Helper()
	// g1: i1 worth 300, i2 worth 100; g2: i3 worth 600.
	rows := []plan.PlanRow{
		groupRow("g1", "01"),
		itemRow("i1", "01.01", "3", "m3", "100"),
		itemRow("i2", "01.02", "1", "m3", "100"),
		groupRow("g2", "02"),
		itemRow("i3", "02.01", "6", "m2", "100"),
	}
	tree, err := plan.BuildTree(rows)
	require.NoError(t, err)
	return tree
}

func pct(s string) decimal.Decimal { return progress.MustDecimal(s) }

func TestSummarize_MoneyAndProgressRollups(t *testing.T) {
	// GIVEN: i1 (300) at 50%, i2 (100) at 0%, i3 (600) at 100%
	// WHEN: summarizing
	// THEN: g1 progress = 37.5, project executed money = 150 + 0 + 600

	executed := map[progress.ItemID]decimal.Decimal{
		"i1": pct("50"),
		"i3": pct("100"),
	}

	s := plan.Summarize(summaryTree(t), executed)

	require.Len(t, s.Groups, 2)
	g1 := s.Groups[0]
	assert.True(t, g1.TotalMoney.Equal(pct("400")), "g1 total = %s", g1.TotalMoney)
	assert.True(t, g1.ExecutedMoney.Equal(pct("150")), "g1 executed = %s", g1.ExecutedMoney)
	assert.True(t, g1.ProgressPercent.Equal(pct("37.5")), "g1 progress = %s", g1.ProgressPercent)

	assert.True(t, s.TotalMoney.Equal(pct("1000")))
	assert.True(t, s.ExecutedMoney.Equal(pct("750")))
	// (50*300 + 0*100 + 100*600) / 1000 = 75
	assert.True(t, s.ProgressPercent.Equal(pct("75")), "project progress = %s", s.ProgressPercent)
	assert.Equal(t, 3, s.ItemCount)
	assert.Equal(t, 1, s.CompletedItems)
}

func TestSummarize_CompletionBands(t *testing.T) {
	// GIVEN: items at 99.9%, 95%, and 89.9%
	// WHEN: summarizing
	// THEN: the first counts completed, only the second is near completion

	executed := map[progress.ItemID]decimal.Decimal{
		"i1": pct("99.9"),
		"i2": pct("95"),
		"i3": pct("89.9"),
	}

	s := plan.Summarize(summaryTree(t), executed)

	assert.Equal(t, 1, s.CompletedItems)
	require.Len(t, s.NearCompletion, 1)
	assert.Equal(t, progress.ItemID("i2"), s.NearCompletion[0].ID)
}

func TestSummarize_ExecutedMoneyClampsOverReporting(t *testing.T) {
	// GIVEN: i1 over-reported at 120%
	// WHEN: valuing executed money
	// THEN: money clamps at the item's full worth, percent stays raw

	executed := map[progress.ItemID]decimal.Decimal{"i1": pct("120")}

	s := plan.Summarize(summaryTree(t), executed)

	g1 := s.Groups[0]
	assert.True(t, g1.ExecutedMoney.Equal(pct("300")), "executed = %s", g1.ExecutedMoney)
	// raw weighted percent: 120*300/400 = 90
	assert.True(t, g1.ProgressPercent.Equal(pct("90")))
}

func TestSummarize_NegativePercentExecutesNothing(t *testing.T) {
	executed := map[progress.ItemID]decimal.Decimal{"i1": pct("-10")}

	s := plan.Summarize(summaryTree(t), executed)

	assert.True(t, s.Groups[0].ExecutedMoney.IsZero())
}

func TestSummarize_EmptyTree(t *testing.T) {
	s := plan.Summarize(plan.Tree{}, nil)

	assert.True(t, s.TotalMoney.IsZero())
	assert.True(t, s.ProgressPercent.IsZero())
	assert.Empty(t, s.NearCompletion)
	assert.Equal(t, 0, s.ItemCount)
}
