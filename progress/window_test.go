package progress_test

import (
	"testing"
	"time"

	"github.com/bencen/site-progress/progress"
)

func TestPlanWindow_SpansPositiveEstimatePeriods(t *testing.T) {
	// GIVEN: four periods where only the middle two carry estimates for
	//        the item
	// WHEN: deriving the plan window
	// THEN: it opens at the first estimated period and closes at the last

	periods := []progress.Period{
		period("p1", 1, d(2025, time.January, 1), d(2025, time.January, 31)),
		period("p2", 2, d(2025, time.February, 1), d(2025, time.February, 28)),
		period("p3", 3, d(2025, time.March, 1), d(2025, time.March, 31)),
		period("p4", 4, d(2025, time.April, 1), d(2025, time.April, 30)),
	}
	rows := []progress.EstimateRow{
		estRow("p2", "item-a", "0.4"),
		estRow("p3", "item-a", "0.6"),
	}

	w := progress.PlanWindow(periods, rows, []progress.ItemID{"item-a"})

	if w == nil {
		t.Fatal("expected a plan window")
	}
	if !w.Start.Equal(d(2025, time.February, 1)) || !w.End.Equal(d(2025, time.March, 31)) {
		t.Errorf("expected [2025-02-01, 2025-03-31], got [%s, %s]", w.Start, w.End)
	}
}

func TestPlanWindow_NoPositiveEstimateIsNil(t *testing.T) {
	// GIVEN: only zero estimates for the item set
	// WHEN: deriving the window
	// THEN: there is no window - the estimated series is absent, not
	//       zero-filled

	periods := []progress.Period{
		period("p1", 1, d(2025, time.January, 1), d(2025, time.January, 31)),
	}
	rows := []progress.EstimateRow{
		estRow("p1", "item-a", "0"),
	}

	if w := progress.PlanWindow(periods, rows, []progress.ItemID{"item-a"}); w != nil {
		t.Errorf("expected nil window, got [%s, %s]", w.Start, w.End)
	}
	if w := progress.PlanWindow(periods, nil, []progress.ItemID{"item-a"}); w != nil {
		t.Error("expected nil window with no rows at all")
	}
}

func TestPlanWindow_EmptyItemSetIsNil(t *testing.T) {
	periods, rows := twoHalfPeriods()
	if w := progress.PlanWindow(periods, rows, nil); w != nil {
		t.Error("expected nil window for an empty item set")
	}
}

func TestPlanWindow_SumsAcrossItemsPerPeriod(t *testing.T) {
	// GIVEN: item-a cancels out in p1 (-0.5 vs another row +0.5 for item-b)
	// WHEN: scoping to both items
	// THEN: p1's combined sum is zero and the window starts at p2

	periods := []progress.Period{
		period("p1", 1, d(2025, time.January, 1), d(2025, time.January, 31)),
		period("p2", 2, d(2025, time.February, 1), d(2025, time.February, 28)),
	}
	rows := []progress.EstimateRow{
		estRow("p1", "item-a", "-0.5"),
		estRow("p1", "item-b", "0.5"),
		estRow("p2", "item-a", "1"),
	}

	w := progress.PlanWindow(periods, rows, []progress.ItemID{"item-a", "item-b"})

	if w == nil {
		t.Fatal("expected a plan window")
	}
	if !w.Start.Equal(d(2025, time.February, 1)) {
		t.Errorf("expected window to open at p2, got %s", w.Start)
	}
}

func TestToDateWindow_EndsAtLatestReport(t *testing.T) {
	// GIVEN: the two-period plan and a report on Feb 10
	// WHEN: deriving the to-date window
	// THEN: it keeps the plan start and ends at the report's as-of date

	periods, rows := twoHalfPeriods()
	reports := []progress.Report{
		report("r1", "item-a", d(2025, time.February, 10), "10", createdAt(10, 9)),
	}

	w := progress.ToDateWindow(periods, rows, []progress.ItemID{"item-a"}, reports)

	if w == nil {
		t.Fatal("expected a window")
	}
	if !w.Start.Equal(d(2025, time.January, 1)) || !w.End.Equal(d(2025, time.February, 10)) {
		t.Errorf("expected [2025-01-01, 2025-02-10], got [%s, %s]", w.Start, w.End)
	}
}

func TestToDateWindow_NoReportsFallsBackToPlan(t *testing.T) {
	periods, rows := twoHalfPeriods()

	w := progress.ToDateWindow(periods, rows, []progress.ItemID{"item-a"}, nil)

	if w == nil {
		t.Fatal("expected the plan window as fallback")
	}
	if !w.End.Equal(d(2025, time.February, 28)) {
		t.Errorf("expected the plan end, got %s", w.End)
	}
}

func TestToDateWindow_NilWithoutPlan(t *testing.T) {
	reports := []progress.Report{
		report("r1", "item-a", d(2025, time.February, 10), "10", createdAt(10, 9)),
	}
	if w := progress.ToDateWindow(nil, nil, []progress.ItemID{"item-a"}, reports); w != nil {
		t.Error("expected nil window without a plan")
	}
}
