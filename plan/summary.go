/*
summary.go - Money and completion rollups over the plan tree

PURPOSE:
  Produces the dashboard numbers: contracted and executed money per group
  and for the whole project, weighted progress percentages, completed-item
  counts, and the near-completion watchlist.

MONEY SEMANTICS:
  Executed money clamps an item's percent at 100 before multiplying - an
  over-reported item can never execute more money than it is worth. The
  percent columns stay raw; clamping there is a presentation concern.

COMPLETION BANDS:
  An item counts as completed at >= 99.9% (field totals rarely land on a
  round 100). The near-completion list covers [90%, 99.9%).
*/
package plan

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/bencen/site-progress/progress"
)

var (
	hundred       = decimal.NewFromInt(100)
	completedAt   = progress.MustDecimal("99.9")
	nearThreshold = progress.MustDecimal("90")
)

// GroupSummary is the rollup of one group.
type GroupSummary struct {
	Group           Group
	TotalMoney      decimal.Decimal
	ExecutedMoney   decimal.Decimal
	ProgressPercent decimal.Decimal
	ItemCount       int
	CompletedItems  int
}

// ProjectSummary is the whole-project rollup plus per-group detail.
type ProjectSummary struct {
	TotalMoney      decimal.Decimal
	ExecutedMoney   decimal.Decimal
	ProgressPercent decimal.Decimal
	ItemCount       int
	CompletedItems  int
	NearCompletion  []WorkItem
	Groups          []GroupSummary
}

// Summarize rolls the tree up against each item's cumulative executed
// percent (the real curve's final value; absent items count as 0).
func Summarize(t Tree, executed map[progress.ItemID]decimal.Decimal) ProjectSummary {
	s := ProjectSummary{
		Groups: make([]GroupSummary, 0, len(t.Groups)),
	}

	for _, g := range t.Groups {
		gs := summarizeGroup(g, executed)
		s.TotalMoney = s.TotalMoney.Add(gs.TotalMoney)
		s.ExecutedMoney = s.ExecutedMoney.Add(gs.ExecutedMoney)
		s.ItemCount += gs.ItemCount
		s.CompletedItems += gs.CompletedItems
		s.Groups = append(s.Groups, gs)
	}

	items := t.AllItems()
	s.ProgressPercent = progress.WeightedMean(ItemIDs(items), Weights(items),
		func(id progress.ItemID) decimal.Decimal { return executed[id] })
	s.NearCompletion = lo.Filter(items, func(i WorkItem, _ int) bool {
		pct := executed[i.ID]
		return pct.GreaterThanOrEqual(nearThreshold) && pct.LessThan(completedAt)
	})
	return s
}

func summarizeGroup(g Group, executed map[progress.ItemID]decimal.Decimal) GroupSummary {
	items := g.AllItems()
	gs := GroupSummary{Group: g, ItemCount: len(items)}

	for _, i := range items {
		pct := executed[i.ID]
		gs.TotalMoney = gs.TotalMoney.Add(i.Weight())
		gs.ExecutedMoney = gs.ExecutedMoney.Add(executedMoney(i, pct))
		if pct.GreaterThanOrEqual(completedAt) {
			gs.CompletedItems++
		}
	}

	gs.ProgressPercent = progress.WeightedMean(ItemIDs(items), Weights(items),
		func(id progress.ItemID) decimal.Decimal { return executed[id] })
	return gs
}

// executedMoney values an item's executed share, percent clamped to [0,100].
func executedMoney(i WorkItem, pct decimal.Decimal) decimal.Decimal {
	if pct.IsNegative() {
		return decimal.Zero
	}
	if pct.GreaterThan(hundred) {
		pct = hundred
	}
	return i.Weight().Mul(pct).Div(hundred)
}
