package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bencen/site-progress/plan"
	"github.com/bencen/site-progress/progress"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory holds everything in mutex-guarded maps. Seed the read-only plan
// data with the Seed* methods, then exercise report CRUD normally.
type Memory struct {
	mu        sync.RWMutex
	projects  map[progress.ProjectID]Project
	planRows  map[progress.ProjectID][]plan.PlanRow
	periods   map[progress.ProjectID][]progress.Period
	estimates map[progress.ProjectID][]progress.EstimateRow
	reports   map[progress.ProjectID][]progress.Report
}

func NewMemory() *Memory {
	return &Memory{
		projects:  make(map[progress.ProjectID]Project),
		planRows:  make(map[progress.ProjectID][]plan.PlanRow),
		periods:   make(map[progress.ProjectID][]progress.Period),
		estimates: make(map[progress.ProjectID][]progress.EstimateRow),
		reports:   make(map[progress.ProjectID][]progress.Report),
	}
}

// =============================================================================
// SEEDING (plan data is import-owned; no public write API for it)
// =============================================================================

func (m *Memory) SeedProject(p Project) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projects[p.ID] = p
}

func (m *Memory) SeedPlan(id progress.ProjectID, rows []plan.PlanRow) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.planRows[id] = append([]plan.PlanRow(nil), rows...)
}

func (m *Memory) SeedPeriods(id progress.ProjectID, periods []progress.Period) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.periods[id] = append([]progress.Period(nil), periods...)
}

func (m *Memory) SeedEstimates(id progress.ProjectID, rows []progress.EstimateRow) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.estimates[id] = append([]progress.EstimateRow(nil), rows...)
}

// =============================================================================
// READS
// =============================================================================

func (m *Memory) Projects(_ context.Context) ([]Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Project
	for _, p := range m.projects {
		if p.Active {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Memory) Project(_ context.Context, id progress.ProjectID) (Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.projects[id]
	if !ok {
		return Project{}, progress.ErrProjectNotFound
	}
	return p, nil
}

func (m *Memory) PlanRows(_ context.Context, id progress.ProjectID) ([]plan.PlanRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.projects[id]; !ok {
		return nil, progress.ErrProjectNotFound
	}
	return append([]plan.PlanRow(nil), m.planRows[id]...), nil
}

func (m *Memory) Periods(_ context.Context, id progress.ProjectID) ([]progress.Period, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.projects[id]; !ok {
		return nil, progress.ErrProjectNotFound
	}
	return append([]progress.Period(nil), m.periods[id]...), nil
}

func (m *Memory) EstimateRows(_ context.Context, id progress.ProjectID) ([]progress.EstimateRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.projects[id]; !ok {
		return nil, progress.ErrProjectNotFound
	}
	return append([]progress.EstimateRow(nil), m.estimates[id]...), nil
}

func (m *Memory) Reports(_ context.Context, id progress.ProjectID) ([]progress.Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.projects[id]; !ok {
		return nil, progress.ErrProjectNotFound
	}
	return append([]progress.Report(nil), m.reports[id]...), nil
}

func (m *Memory) ReportsForItem(ctx context.Context, id progress.ProjectID, item progress.ItemID) ([]progress.Report, error) {
	all, err := m.Reports(ctx, id)
	if err != nil {
		return nil, err
	}
	var out []progress.Report
	for _, r := range all {
		if r.Item == item {
			out = append(out, r)
		}
	}
	return out, nil
}

// =============================================================================
// REPORT CRUD
// =============================================================================

func (m *Memory) InsertReport(_ context.Context, id progress.ProjectID, r progress.Report) (progress.Report, error) {
	if err := ValidateReport(r); err != nil {
		return progress.Report{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.projects[id]; !ok {
		return progress.Report{}, progress.ErrProjectNotFound
	}

	r.ID = progress.ReportID(uuid.NewString())
	r.CreatedAt = time.Now().UTC()
	m.reports[id] = append(m.reports[id], r)
	return r, nil
}

func (m *Memory) UpdateReport(_ context.Context, id progress.ProjectID, r progress.Report) (progress.Report, error) {
	if err := ValidateReport(r); err != nil {
		return progress.Report{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.projects[id]; !ok {
		return progress.Report{}, progress.ErrProjectNotFound
	}

	for i, existing := range m.reports[id] {
		if existing.ID == r.ID {
			r.CreatedAt = existing.CreatedAt // creation timestamp is immutable
			m.reports[id][i] = r
			return r, nil
		}
	}
	return progress.Report{}, progress.ErrReportNotFound
}

func (m *Memory) DeleteReport(_ context.Context, id progress.ProjectID, report progress.ReportID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.projects[id]; !ok {
		return progress.ErrProjectNotFound
	}

	for i, existing := range m.reports[id] {
		if existing.ID == report {
			m.reports[id] = append(m.reports[id][:i], m.reports[id][i+1:]...)
			return nil
		}
	}
	return progress.ErrReportNotFound
}

// Compile-time check that Memory implements Store.
var _ Store = (*Memory)(nil)
