/*
Package store defines the persistence contracts for project plans, periods,
estimates, and progress reports, plus an in-memory implementation.

PURPOSE:
  The engine consumes fetched snapshots and never talks to storage itself;
  this package is the boundary it reads through. Plans, periods, and
  estimate rows are import-owned and read-only here; progress reports are
  the only mutable collection (full CRUD).

IMPLEMENTATIONS:
  - Memory (memory.go): mutex-guarded maps, for tests and dev
  - sqlite (store/sqlite):  production persistence, WAL mode

SEE ALSO:
  - store/sqlite/sqlite.go: SQLite implementation
*/
package store

import (
	"context"

	"github.com/bencen/site-progress/plan"
	"github.com/bencen/site-progress/progress"
)

// Project is one tracked construction project.
type Project struct {
	ID     progress.ProjectID
	Name   string
	Active bool
}

// Store is the full persistence contract the API layer depends on.
type Store interface {
	// Projects lists active projects.
	Projects(ctx context.Context) ([]Project, error)

	// Project fetches one project. progress.ErrProjectNotFound when absent.
	Project(ctx context.Context, id progress.ProjectID) (Project, error)

	// PlanRows returns the ordered flat plan stream for a project.
	PlanRows(ctx context.Context, id progress.ProjectID) ([]plan.PlanRow, error)

	// Periods returns the project's planning periods ordered by sequence.
	Periods(ctx context.Context, id progress.ProjectID) ([]progress.Period, error)

	// EstimateRows returns every (period, item) estimated delta.
	EstimateRows(ctx context.Context, id progress.ProjectID) ([]progress.EstimateRow, error)

	// Reports returns every progress report of the project.
	Reports(ctx context.Context, id progress.ProjectID) ([]progress.Report, error)

	// ReportsForItem narrows Reports to one work item.
	ReportsForItem(ctx context.Context, id progress.ProjectID, item progress.ItemID) ([]progress.Report, error)

	// InsertReport persists a new report. The store assigns the id and
	// creation timestamp; the stored report is returned.
	InsertReport(ctx context.Context, id progress.ProjectID, r progress.Report) (progress.Report, error)

	// UpdateReport replaces an existing report's mutable fields.
	// progress.ErrReportNotFound when absent.
	UpdateReport(ctx context.Context, id progress.ProjectID, r progress.Report) (progress.Report, error)

	// DeleteReport removes one report. progress.ErrReportNotFound when absent.
	DeleteReport(ctx context.Context, id progress.ProjectID, report progress.ReportID) error
}

// ValidateReport applies the write-time checks shared by every Store
// implementation: an item, a delta, and a coherent work range. Overlapping
// ranges across reports are allowed.
func ValidateReport(r progress.Report) error {
	var cause error
	switch {
	case r.Item == "":
		cause = progress.ErrMissingItem
	case r.DeltaPercent.IsZero() && r.Note == "":
		cause = progress.ErrMissingDelta
	case !r.RangeStart.IsZero() && !r.RangeEnd.IsZero() && r.RangeStart.After(r.RangeEnd):
		cause = progress.ErrInvalidWorkRange
	default:
		return nil
	}
	return &progress.ReportValidationError{Report: r.ID, Err: cause}
}
