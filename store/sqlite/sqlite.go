/*
Package sqlite provides a SQLite-backed implementation of the store contracts.

PURPOSE:
  Implements store.Store using SQLite. In production, the same patterns
  apply to PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  projects:      tracked projects
  plan_rows:     the flat ordered plan stream (position column preserves
                 the import order the tree builder depends on)
  periods:       planning periods, ordered by seq
  estimate_rows: (period, item) estimated delta fractions
  reports:       field progress reports (the only mutable table)

DATA REPRESENTATION:
  Dates are TEXT in "2006-01-02"; empty string means absent. Decimals are
  TEXT to keep exact values across the round trip; they are parsed back
  through shopspring/decimal, never floats.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/site.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - store/store.go:  interface definitions and shared validation
  - store/memory.go: in-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/bencen/site-progress/plan"
	"github.com/bencen/site-progress/progress"
	"github.com/bencen/site-progress/store"
)

// Store implements store.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TEXT NOT NULL
	);

	-- The flat ordered plan stream. position preserves import order; the
	-- tree builder depends on it.
	CREATE TABLE IF NOT EXISTS plan_rows (
		id TEXT NOT NULL,
		project_id TEXT NOT NULL REFERENCES projects(id),
		position INTEGER NOT NULL,
		kind TEXT NOT NULL,
		code TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		quantity TEXT,
		unit TEXT NOT NULL DEFAULT '',
		price_labor TEXT NOT NULL DEFAULT '0',
		price_materials TEXT NOT NULL DEFAULT '0',
		price_equipment TEXT NOT NULL DEFAULT '0',
		PRIMARY KEY (project_id, position)
	);

	CREATE INDEX IF NOT EXISTS idx_plan_rows_project
		ON plan_rows(project_id, position);

	CREATE TABLE IF NOT EXISTS periods (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL REFERENCES projects(id),
		seq INTEGER NOT NULL,
		label TEXT NOT NULL DEFAULT '',
		start_date TEXT NOT NULL DEFAULT '',
		end_date TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_periods_project
		ON periods(project_id, seq);

	CREATE TABLE IF NOT EXISTS estimate_rows (
		project_id TEXT NOT NULL REFERENCES projects(id),
		period_id TEXT NOT NULL REFERENCES periods(id),
		item_id TEXT NOT NULL,
		delta TEXT NOT NULL,
		PRIMARY KEY (period_id, item_id)
	);

	CREATE INDEX IF NOT EXISTS idx_estimate_rows_project
		ON estimate_rows(project_id);

	CREATE TABLE IF NOT EXISTS reports (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL REFERENCES projects(id),
		item_id TEXT NOT NULL,
		delta_percent TEXT NOT NULL,
		report_date TEXT NOT NULL DEFAULT '',
		range_start TEXT NOT NULL DEFAULT '',
		range_end TEXT NOT NULL DEFAULT '',
		note TEXT NOT NULL DEFAULT '',
		photos_json TEXT NOT NULL DEFAULT '[]',
		author TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	-- Hot path: every curve build fetches a project's reports.
	CREATE INDEX IF NOT EXISTS idx_reports_project
		ON reports(project_id);
	CREATE INDEX IF NOT EXISTS idx_reports_project_item
		ON reports(project_id, item_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// PROJECTS
// =============================================================================

func (s *Store) Projects(ctx context.Context) ([]store.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, active FROM projects WHERE active ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var out []store.Project
	for rows.Next() {
		var p store.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Active); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) Project(ctx context.Context, id progress.ProjectID) (store.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var p store.Project
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, active FROM projects WHERE id = ?`, id).
		Scan(&p.ID, &p.Name, &p.Active)
	if err == sql.ErrNoRows {
		return store.Project{}, progress.ErrProjectNotFound
	}
	if err != nil {
		return store.Project{}, fmt.Errorf("failed to load project: %w", err)
	}
	return p, nil
}

// CreateProject inserts a project (used by seeding and tests).
func (s *Store) CreateProject(ctx context.Context, p store.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO projects (id, name, active, created_at) VALUES (?, ?, ?, ?)`,
		p.ID, p.Name, p.Active, time.Now().UTC().Format(time.RFC3339))
	return err
}

// =============================================================================
// PLAN ROWS / PERIODS / ESTIMATES (import-owned, read-mostly)
// =============================================================================

func (s *Store) PlanRows(ctx context.Context, id progress.ProjectID) ([]plan.PlanRow, error) {
	if err := s.mustExist(ctx, id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, code, description, quantity, unit,
		       price_labor, price_materials, price_equipment
		FROM plan_rows WHERE project_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load plan rows: %w", err)
	}
	defer rows.Close()

	var out []plan.PlanRow
	for rows.Next() {
		var r plan.PlanRow
		var kind string
		var qty sql.NullString
		var labor, materials, equipment string
		if err := rows.Scan(&r.ID, &kind, &r.Code, &r.Description, &qty, &r.Unit,
			&labor, &materials, &equipment); err != nil {
			return nil, err
		}
		r.Kind = plan.RowKind(kind)
		if qty.Valid && qty.String != "" {
			r.Quantity = parseDecimal(qty.String)
			r.HasQuantity = true
		}
		r.PriceLabor = parseDecimal(labor)
		r.PriceMaterials = parseDecimal(materials)
		r.PriceEquipment = parseDecimal(equipment)
		out = append(out, r)
	}
	return out, rows.Err()
}

// ImportPlan replaces a project's plan stream atomically.
func (s *Store) ImportPlan(ctx context.Context, id progress.ProjectID, planRows []plan.PlanRow) error {
	if err := s.mustExist(ctx, id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM plan_rows WHERE project_id = ?`, id); err != nil {
		return err
	}
	for i, r := range planRows {
		var qty any
		if r.HasQuantity {
			qty = r.Quantity.String()
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO plan_rows
			(id, project_id, position, kind, code, description, quantity, unit,
			 price_labor, price_materials, price_equipment)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, id, i, string(r.Kind), r.Code, r.Description, qty, r.Unit,
			r.PriceLabor.String(), r.PriceMaterials.String(), r.PriceEquipment.String())
		if err != nil {
			return fmt.Errorf("failed to insert plan row %d: %w", i, err)
		}
	}
	return tx.Commit()
}

func (s *Store) Periods(ctx context.Context, id progress.ProjectID) ([]progress.Period, error) {
	if err := s.mustExist(ctx, id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seq, label, start_date, end_date
		FROM periods WHERE project_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load periods: %w", err)
	}
	defer rows.Close()

	var out []progress.Period
	for rows.Next() {
		var p progress.Period
		var start, end string
		if err := rows.Scan(&p.ID, &p.Seq, &p.Label, &start, &end); err != nil {
			return nil, err
		}
		p.Start, _ = progress.ParseDate(start)
		p.End, _ = progress.ParseDate(end)
		out = append(out, p)
	}
	return out, rows.Err()
}

// ImportPeriods replaces a project's periods and estimates atomically.
func (s *Store) ImportPeriods(ctx context.Context, id progress.ProjectID, periods []progress.Period, estimates []progress.EstimateRow) error {
	if err := s.mustExist(ctx, id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM estimate_rows WHERE project_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM periods WHERE project_id = ?`, id); err != nil {
		return err
	}
	for _, p := range periods {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO periods (id, project_id, seq, label, start_date, end_date)
			VALUES (?, ?, ?, ?, ?, ?)`,
			p.ID, id, p.Seq, p.Label, p.Start.String(), p.End.String())
		if err != nil {
			return fmt.Errorf("failed to insert period %s: %w", p.ID, err)
		}
	}
	for _, e := range estimates {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO estimate_rows (project_id, period_id, item_id, delta)
			VALUES (?, ?, ?, ?)`,
			id, e.Period, e.Item, e.Delta.String())
		if err != nil {
			return fmt.Errorf("failed to insert estimate row: %w", err)
		}
	}
	return tx.Commit()
}

func (s *Store) EstimateRows(ctx context.Context, id progress.ProjectID) ([]progress.EstimateRow, error) {
	if err := s.mustExist(ctx, id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT period_id, item_id, delta FROM estimate_rows WHERE project_id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load estimate rows: %w", err)
	}
	defer rows.Close()

	var out []progress.EstimateRow
	for rows.Next() {
		var e progress.EstimateRow
		var delta string
		if err := rows.Scan(&e.Period, &e.Item, &delta); err != nil {
			return nil, err
		}
		e.Delta = parseDecimal(delta)
		out = append(out, e)
	}
	return out, rows.Err()
}

// =============================================================================
// REPORTS (full CRUD)
// =============================================================================

const reportColumns = `id, item_id, delta_percent, report_date, range_start,
	range_end, note, photos_json, author, created_at`

func (s *Store) Reports(ctx context.Context, id progress.ProjectID) ([]progress.Report, error) {
	return s.queryReports(ctx, id,
		`SELECT `+reportColumns+` FROM reports WHERE project_id = ? ORDER BY created_at`, id)
}

func (s *Store) ReportsForItem(ctx context.Context, id progress.ProjectID, item progress.ItemID) ([]progress.Report, error) {
	return s.queryReports(ctx, id,
		`SELECT `+reportColumns+` FROM reports WHERE project_id = ? AND item_id = ? ORDER BY created_at`,
		id, item)
}

func (s *Store) queryReports(ctx context.Context, id progress.ProjectID, query string, args ...any) ([]progress.Report, error) {
	if err := s.mustExist(ctx, id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load reports: %w", err)
	}
	defer rows.Close()

	var out []progress.Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) InsertReport(ctx context.Context, id progress.ProjectID, r progress.Report) (progress.Report, error) {
	if err := store.ValidateReport(r); err != nil {
		return progress.Report{}, err
	}
	if err := s.mustExist(ctx, id); err != nil {
		return progress.Report{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r.ID = progress.ReportID(uuid.NewString())
	r.CreatedAt = time.Now().UTC()
	photos, _ := json.Marshal(r.Photos)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reports
		(id, project_id, item_id, delta_percent, report_date, range_start,
		 range_end, note, photos_json, author, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, id, r.Item, r.DeltaPercent.String(), r.Date.String(),
		r.RangeStart.String(), r.RangeEnd.String(), r.Note, string(photos),
		r.Author, r.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return progress.Report{}, fmt.Errorf("failed to insert report: %w", err)
	}
	return r, nil
}

func (s *Store) UpdateReport(ctx context.Context, id progress.ProjectID, r progress.Report) (progress.Report, error) {
	if err := store.ValidateReport(r); err != nil {
		return progress.Report{}, err
	}
	if err := s.mustExist(ctx, id); err != nil {
		return progress.Report{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	photos, _ := json.Marshal(r.Photos)
	res, err := s.db.ExecContext(ctx, `
		UPDATE reports SET item_id = ?, delta_percent = ?, report_date = ?,
			range_start = ?, range_end = ?, note = ?, photos_json = ?, author = ?
		WHERE id = ? AND project_id = ?`,
		r.Item, r.DeltaPercent.String(), r.Date.String(), r.RangeStart.String(),
		r.RangeEnd.String(), r.Note, string(photos), r.Author, r.ID, id)
	if err != nil {
		return progress.Report{}, fmt.Errorf("failed to update report: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return progress.Report{}, progress.ErrReportNotFound
	}

	// Creation timestamp is immutable; read it back for the caller.
	var created string
	if err := s.db.QueryRowContext(ctx,
		`SELECT created_at FROM reports WHERE id = ?`, r.ID).Scan(&created); err == nil {
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	}
	return r, nil
}

func (s *Store) DeleteReport(ctx context.Context, id progress.ProjectID, report progress.ReportID) error {
	if err := s.mustExist(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM reports WHERE id = ? AND project_id = ?`, report, id)
	if err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return progress.ErrReportNotFound
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func (s *Store) mustExist(ctx context.Context, id progress.ProjectID) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM projects WHERE id = ?`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return progress.ErrProjectNotFound
	}
	return err
}

func scanReport(rows *sql.Rows) (progress.Report, error) {
	var r progress.Report
	var delta, date, rangeStart, rangeEnd, photos, created string
	if err := rows.Scan(&r.ID, &r.Item, &delta, &date, &rangeStart, &rangeEnd,
		&r.Note, &photos, &r.Author, &created); err != nil {
		return progress.Report{}, err
	}
	r.DeltaPercent = parseDecimal(delta)
	r.Date, _ = progress.ParseDate(date)
	r.RangeStart, _ = progress.ParseDate(rangeStart)
	r.RangeEnd, _ = progress.ParseDate(rangeEnd)
	if photos != "" {
		_ = json.Unmarshal([]byte(photos), &r.Photos)
	}
	r.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	return r, nil
}

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Compile-time check that Store implements store.Store.
var _ store.Store = (*Store)(nil)
