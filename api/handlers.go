/*
handlers.go - HTTP API handlers for the site progress engine

PURPOSE:
  Exposes the progress engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to the engine and plan packages.

ENDPOINTS:
  Projects:
    GET    /api/projects                     List visible projects
    GET    /api/projects/{id}/plan           Plan tree
    GET    /api/projects/{id}/periods        Planning periods

  Engine views:
    GET    /api/projects/{id}/series         Merged estimated/real series
    GET    /api/projects/{id}/monthly        Monthly planning-grid matrix
    GET    /api/projects/{id}/window         Visible window
    GET    /api/projects/{id}/summary        Money/progress rollups
    GET    /api/projects/{id}/activity       Recent reports + daily buckets

  Reports:
    GET    /api/projects/{id}/reports        List (optionally per item)
    POST   /api/projects/{id}/reports        Create
    PUT    /api/projects/{id}/reports/{rid}  Update
    DELETE /api/projects/{id}/reports/{rid}  Delete

SCOPE SELECTION:
  The engine views accept ?item=, ?subgroup=, or ?group= to narrow the
  aggregation scope; no parameter means the whole project. ?zoom=toReal
  switches the window from the full plan to "up to the latest report".

REQUEST FLOW:
  1. Parse HTTP request
  2. Load the project snapshot (plan, periods, estimates, reports)
  3. Run the pure engine functions over the snapshot
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 500: Internal errors (logged; details not leaked)

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/bencen/site-progress/auth"
	"github.com/bencen/site-progress/plan"
	"github.com/bencen/site-progress/progress"
	"github.com/bencen/site-progress/store"
)

const timeLayout = time.RFC3339

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store      store.Store
	Visibility *auth.Visibility // nil disables project filtering
	Log        *slog.Logger
}

// NewHandler creates a new handler with the given store.
func NewHandler(s store.Store, v *auth.Visibility, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{Store: s, Visibility: v, Log: log}
}

// snapshot is one project's full data set, fetched once per request.
type snapshot struct {
	project   store.Project
	tree      plan.Tree
	periods   []progress.Period
	estimates []progress.EstimateRow
	reports   []progress.Report
}

func (h *Handler) loadSnapshot(r *http.Request) (snapshot, error) {
	ctx := r.Context()
	id := progress.ProjectID(chi.URLParam(r, "id"))

	var snap snapshot
	var err error
	if snap.project, err = h.Store.Project(ctx, id); err != nil {
		return snapshot{}, err
	}
	rows, err := h.Store.PlanRows(ctx, id)
	if err != nil {
		return snapshot{}, err
	}
	if snap.tree, err = plan.BuildTree(rows); err != nil {
		return snapshot{}, err
	}
	if snap.periods, err = h.Store.Periods(ctx, id); err != nil {
		return snapshot{}, err
	}
	if snap.estimates, err = h.Store.EstimateRows(ctx, id); err != nil {
		return snapshot{}, err
	}
	if snap.reports, err = h.Store.Reports(ctx, id); err != nil {
		return snapshot{}, err
	}
	return snap, nil
}

// scopeItems resolves the aggregation scope from query parameters.
func (s snapshot) scopeItems(r *http.Request) ([]plan.WorkItem, error) {
	q := r.URL.Query()

	if itemID := q.Get("item"); itemID != "" {
		item, ok := s.tree.Item(progress.ItemID(itemID))
		if !ok {
			return nil, progress.ErrItemNotFound
		}
		return []plan.WorkItem{item}, nil
	}
	if sgID := q.Get("subgroup"); sgID != "" {
		for _, g := range s.tree.Groups {
			for _, sg := range g.Subgroups {
				if sg.ID == sgID {
					return sg.Items, nil
				}
			}
		}
		return nil, progress.ErrItemNotFound
	}
	if gID := q.Get("group"); gID != "" {
		g, ok := s.tree.Group(gID)
		if !ok {
			return nil, progress.ErrItemNotFound
		}
		return g.AllItems(), nil
	}
	return s.tree.AllItems(), nil
}

// =============================================================================
// PROJECT HANDLERS
// =============================================================================

// ListProjects returns projects visible to the requesting user. The user is
// identified by the X-User-ID header the auth proxy injects; without the
// header (or without a visibility filter) every active project is returned.
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.Store.Projects(r.Context())
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	if userID := r.Header.Get("X-User-ID"); userID != "" && h.Visibility != nil {
		scope, err := h.Visibility.ScopeOf(r.Context(), userID)
		if err != nil {
			h.writeDomainError(w, r, err)
			return
		}
		projects = lo.Filter(projects, func(p store.Project, _ int) bool {
			return scope.Allows(string(p.ID))
		})
	}

	dtos := lo.Map(projects, func(p store.Project, _ int) ProjectDTO { return toProjectDTO(p) })
	writeJSON(w, http.StatusOK, dtos)
}

// GetPlan returns the project's plan tree.
func (h *Handler) GetPlan(w http.ResponseWriter, r *http.Request) {
	snap, err := h.loadSnapshot(r)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTreeDTO(snap.tree))
}

// GetPeriods returns the project's planning periods.
func (h *Handler) GetPeriods(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := progress.ProjectID(chi.URLParam(r, "id"))

	periods, err := h.Store.Periods(ctx, id)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	dtos := lo.Map(periods, func(p progress.Period, _ int) PeriodDTO { return toPeriodDTO(p) })
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// ENGINE VIEW HANDLERS
// =============================================================================

// GetSeries returns the merged estimated/real series for a scope.
func (h *Handler) GetSeries(w http.ResponseWriter, r *http.Request) {
	snap, err := h.loadSnapshot(r)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	items, err := snap.scopeItems(r)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	ids := plan.ItemIDs(items)
	weights := plan.Weights(items)
	qv := progress.ResolveQuantityView(ids, plan.Measures(items))

	// A scope with no positive estimate has no plan at all: the estimated
	// column stays entirely absent, not a zero line.
	planWindow := progress.PlanWindow(snap.periods, snap.estimates, ids)

	var est progress.EstimateCurve
	var real progress.RealCurve
	if len(items) == 1 {
		real = progress.BuildRealCurve(ids[0], snap.reports, qv)
		if planWindow != nil {
			est = progress.BuildEstimateCurve(ids[0], snap.periods, snap.estimates, qv)
		}
	} else {
		real = progress.BuildAggregateRealCurve(ids, snap.reports, weights, qv)
		if planWindow != nil {
			est = progress.BuildAggregateEstimateCurve(ids, snap.periods, snap.estimates, weights, qv)
		}
	}

	window := planWindow
	if r.URL.Query().Get("zoom") == "toReal" {
		window = progress.ToDateWindow(snap.periods, snap.estimates, ids, snap.reports)
	}
	merged := progress.MergeSeries(est, real, window)

	dto := SeriesDTO{
		Window: toWindowDTO(window),
		Points: make([]SeriesPointDTO, 0, len(merged)),
	}
	if qv.Enabled {
		dto.Unit = qv.Unit
	}
	for _, p := range merged {
		point := SeriesPointDTO{
			Date:      p.Date.String(),
			Estimated: decStr(p.Estimated),
			Real:      decStr(p.Real),
			Diff:      decStr(p.Diff),
		}
		if qv.Enabled && p.Estimated != nil {
			if q, ok := est.QuantityAsOf(p.Date); ok {
				point.EstimatedQuantity = decStr(&q)
			}
		}
		dto.Points = append(dto.Points, point)
	}
	writeJSON(w, http.StatusOK, dto)
}

// GetMonthly returns the monthly planning-grid matrix for a scope.
func (h *Handler) GetMonthly(w http.ResponseWriter, r *http.Request) {
	snap, err := h.loadSnapshot(r)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	items, err := snap.scopeItems(r)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	ids := plan.ItemIDs(items)
	weights := plan.Weights(items)
	matrix := progress.BuildMonthlyMatrix(ids, snap.periods, snap.estimates, snap.reports)

	months := matrix.Months
	if r.URL.Query().Get("zoom") == "toReal" {
		if last, ok := matrix.LastRealMonth(); ok {
			months = lo.Filter(months, func(m progress.MonthKey, _ int) bool { return !m.After(last) })
		}
	}

	dto := MonthlyDTO{
		Months: lo.Map(months, func(m progress.MonthKey, _ int) string { return string(m) }),
		Cells:  make(map[string]MonthCellDTO, len(months)),
	}
	for _, m := range months {
		dto.Cells[string(m)] = MonthCellDTO{
			Estimated:           progress.AggregateBucket(matrix.Estimated, ids, m, weights).String(),
			Real:                progress.AggregateBucket(matrix.Real, ids, m, weights).String(),
			CumulativeEstimated: progress.AggregateCumulative(matrix.Estimated, matrix.Months, ids, m, weights).String(),
			CumulativeReal:      progress.AggregateCumulative(matrix.Real, matrix.Months, ids, m, weights).String(),
		}
	}
	writeJSON(w, http.StatusOK, dto)
}

// GetWindow returns the visible window for a scope.
func (h *Handler) GetWindow(w http.ResponseWriter, r *http.Request) {
	snap, err := h.loadSnapshot(r)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	items, err := snap.scopeItems(r)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	window := h.windowFor(r, snap, plan.ItemIDs(items))
	writeJSON(w, http.StatusOK, toWindowDTO(window))
}

func (h *Handler) windowFor(r *http.Request, snap snapshot, ids []progress.ItemID) *progress.Window {
	if r.URL.Query().Get("zoom") == "toReal" {
		return progress.ToDateWindow(snap.periods, snap.estimates, ids, snap.reports)
	}
	return progress.PlanWindow(snap.periods, snap.estimates, ids)
}

// GetSummary returns the project's money/progress rollups.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	snap, err := h.loadSnapshot(r)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	summary := plan.Summarize(snap.tree, h.executedByItem(snap))

	dto := SummaryDTO{
		TotalMoney:      summary.TotalMoney.String(),
		ExecutedMoney:   summary.ExecutedMoney.String(),
		ProgressPercent: summary.ProgressPercent.String(),
		ItemCount:       summary.ItemCount,
		CompletedItems:  summary.CompletedItems,
		NearCompletion:  toItemDTOs(summary.NearCompletion),
		Groups:          make([]GroupSummaryDTO, 0, len(summary.Groups)),
	}
	for _, gs := range summary.Groups {
		dto.Groups = append(dto.Groups, GroupSummaryDTO{
			ID:              gs.Group.ID,
			Code:            gs.Group.Code,
			Description:     gs.Group.Description,
			TotalMoney:      gs.TotalMoney.String(),
			ExecutedMoney:   gs.ExecutedMoney.String(),
			ProgressPercent: gs.ProgressPercent.String(),
			ItemCount:       gs.ItemCount,
			CompletedItems:  gs.CompletedItems,
		})
	}
	writeJSON(w, http.StatusOK, dto)
}

// executedByItem is the per-item cumulative executed percent (real curve
// final value).
func (h *Handler) executedByItem(snap snapshot) map[progress.ItemID]decimal.Decimal {
	executed := make(map[progress.ItemID]decimal.Decimal)
	for _, item := range snap.tree.AllItems() {
		curve := progress.BuildRealCurve(item.ID, snap.reports, progress.QuantityView{})
		if final := curve.Final(); !final.IsZero() {
			executed[item.ID] = final
		}
	}
	return executed
}

// GetActivity returns the recent-report feed plus per-day activity buckets.
func (h *Handler) GetActivity(w http.ResponseWriter, r *http.Request) {
	snap, err := h.loadSnapshot(r)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	dto := ActivityDTO{
		Recent: h.recentEntries(snap, limit),
		Daily:  h.dailyBuckets(snap),
	}
	writeJSON(w, http.StatusOK, dto)
}

func (h *Handler) recentEntries(snap snapshot, limit int) []ActivityEntryDTO {
	reports := append([]progress.Report(nil), snap.reports...)
	sort.Slice(reports, func(i, j int) bool {
		return reports[i].CreatedAt.After(reports[j].CreatedAt)
	})
	if len(reports) > limit {
		reports = reports[:limit]
	}

	out := make([]ActivityEntryDTO, 0, len(reports))
	for _, rep := range reports {
		entry := ActivityEntryDTO{Report: toReportDTO(rep)}
		if item, ok := snap.tree.Item(rep.Item); ok {
			entry.ItemCode = item.Code
			entry.ItemLabel = item.Description
		}
		for _, g := range snap.tree.Groups {
			if _, ok := lo.Find(g.AllItems(), func(i plan.WorkItem) bool { return i.ID == rep.Item }); ok {
				entry.GroupCode = g.Code
				break
			}
		}
		out = append(out, entry)
	}
	return out
}

// dailyBuckets counts reports and sums executed money per resolved report
// date, newest day first.
func (h *Handler) dailyBuckets(snap snapshot) []DailyActivityDTO {
	type bucket struct {
		count int
		money decimal.Decimal
	}
	byDay := make(map[string]*bucket)

	for _, rep := range snap.reports {
		at, ok := rep.AsOf()
		if !ok {
			continue
		}
		b := byDay[at.String()]
		if b == nil {
			b = &bucket{}
			byDay[at.String()] = b
		}
		b.count++
		if item, ok := snap.tree.Item(rep.Item); ok {
			b.money = b.money.Add(item.Weight().Mul(rep.DeltaPercent).Div(decimal.NewFromInt(100)))
		}
	}

	days := lo.Keys(byDay)
	sort.Sort(sort.Reverse(sort.StringSlice(days)))

	out := make([]DailyActivityDTO, 0, len(days))
	for _, day := range days {
		out = append(out, DailyActivityDTO{
			Date:          day,
			Reports:       byDay[day].count,
			ExecutedMoney: byDay[day].money.String(),
		})
	}
	return out
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

// ListReports returns a project's reports, optionally for one item.
func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := progress.ProjectID(chi.URLParam(r, "id"))

	var reports []progress.Report
	var err error
	if itemID := r.URL.Query().Get("item"); itemID != "" {
		reports, err = h.Store.ReportsForItem(ctx, id, progress.ItemID(itemID))
	} else {
		reports, err = h.Store.Reports(ctx, id)
	}
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	dtos := lo.Map(reports, func(rep progress.Report, _ int) ReportDTO { return toReportDTO(rep) })
	writeJSON(w, http.StatusOK, dtos)
}

// CreateReport inserts a new progress report.
func (h *Handler) CreateReport(w http.ResponseWriter, r *http.Request) {
	id := progress.ProjectID(chi.URLParam(r, "id"))

	rep, ok := h.decodeReport(w, r)
	if !ok {
		return
	}

	created, err := h.Store.InsertReport(r.Context(), id, rep)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toReportDTO(created))
}

// UpdateReport replaces a report's mutable fields.
func (h *Handler) UpdateReport(w http.ResponseWriter, r *http.Request) {
	id := progress.ProjectID(chi.URLParam(r, "id"))
	reportID := progress.ReportID(chi.URLParam(r, "reportID"))

	rep, ok := h.decodeReport(w, r)
	if !ok {
		return
	}
	rep.ID = reportID

	updated, err := h.Store.UpdateReport(r.Context(), id, rep)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toReportDTO(updated))
}

// DeleteReport removes a report.
func (h *Handler) DeleteReport(w http.ResponseWriter, r *http.Request) {
	id := progress.ProjectID(chi.URLParam(r, "id"))
	reportID := progress.ReportID(chi.URLParam(r, "reportID"))

	if err := h.Store.DeleteReport(r.Context(), id, reportID); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decodeReport(w http.ResponseWriter, r *http.Request) (progress.Report, bool) {
	var req SubmitReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return progress.Report{}, false
	}

	delta, err := decimal.NewFromString(req.DeltaPercent)
	if err != nil && req.DeltaPercent != "" {
		writeError(w, http.StatusBadRequest, "Invalid delta_percent", err)
		return progress.Report{}, false
	}

	rep := progress.Report{
		Item:         progress.ItemID(req.ItemID),
		DeltaPercent: delta,
		Note:         req.Note,
		Photos:       req.Photos,
		Author:       req.Author,
	}
	rep.Date, _ = progress.ParseDate(req.Date)
	rep.RangeStart, _ = progress.ParseDate(req.RangeStart)
	rep.RangeEnd, _ = progress.ParseDate(req.RangeEnd)
	return rep, true
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

// writeDomainError maps domain errors onto HTTP statuses.
func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case progress.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Not found", err)
	case progress.IsClientError(err):
		writeError(w, http.StatusBadRequest, "Invalid input", err)
	default:
		var serr *plan.StructureError
		if errors.As(err, &serr) {
			writeError(w, http.StatusUnprocessableEntity, "Malformed plan data", err)
			return
		}
		h.Log.Error("request failed", "path", r.URL.Path, "err", err)
		writeError(w, http.StatusInternalServerError, "Internal error", nil)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
