/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

NUMBER REPRESENTATION:
  Percent, quantity, and money values travel as decimal STRINGS, never
  JSON floats - the exact values the engine computed survive the wire.
  Nullable columns (merged series, quantities) are *string with null
  meaning "absent", matching the engine's nil semantics.

VALIDATION:
  Validation is done in handlers and the store, not in DTOs. DTOs are
  pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/bencen/site-progress/plan"
	"github.com/bencen/site-progress/progress"
	"github.com/bencen/site-progress/store"
)

// =============================================================================
// PROJECTS AND PLAN TREE
// =============================================================================

type ProjectDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ItemDTO struct {
	ID          string  `json:"id"`
	Code        string  `json:"code"`
	Description string  `json:"description"`
	Quantity    *string `json:"quantity"`
	Unit        string  `json:"unit,omitempty"`
	UnitPrice   string  `json:"unit_price"`
	Weight      string  `json:"weight"`
}

type SubgroupDTO struct {
	ID          string    `json:"id"`
	Code        string    `json:"code"`
	Description string    `json:"description"`
	Items       []ItemDTO `json:"items"`
}

type GroupDTO struct {
	ID          string        `json:"id"`
	Code        string        `json:"code"`
	Description string        `json:"description"`
	Items       []ItemDTO     `json:"items"`
	Subgroups   []SubgroupDTO `json:"subgroups"`
}

type TreeDTO struct {
	Groups []GroupDTO `json:"groups"`
}

type PeriodDTO struct {
	ID    string `json:"id"`
	Seq   int    `json:"seq"`
	Label string `json:"label"`
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// =============================================================================
// SERIES, MATRIX, WINDOW
// =============================================================================

type SeriesPointDTO struct {
	Date      string  `json:"date"`
	Estimated *string `json:"estimated"`
	Real      *string `json:"real"`
	Diff      *string `json:"diff"`

	// Cumulative estimated quantity, only when the scope's quantity view
	// is on; follows the estimated column's null semantics.
	EstimatedQuantity *string `json:"estimated_quantity,omitempty"`
}

type SeriesDTO struct {
	Unit   string           `json:"unit,omitempty"` // set when the quantity view is on
	Window *WindowDTO       `json:"window"`
	Points []SeriesPointDTO `json:"points"`
}

type WindowDTO struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type MonthCellDTO struct {
	Estimated           string `json:"estimated"`
	Real                string `json:"real"`
	CumulativeEstimated string `json:"cumulative_estimated"` // aggregate cumulative to this month
	CumulativeReal      string `json:"cumulative_real"`
}

type MonthlyDTO struct {
	Months []string                `json:"months"`
	Cells  map[string]MonthCellDTO `json:"cells"` // keyed by month
}

// =============================================================================
// SUMMARY
// =============================================================================

type GroupSummaryDTO struct {
	ID              string `json:"id"`
	Code            string `json:"code"`
	Description     string `json:"description"`
	TotalMoney      string `json:"total_money"`
	ExecutedMoney   string `json:"executed_money"`
	ProgressPercent string `json:"progress_percent"`
	ItemCount       int    `json:"item_count"`
	CompletedItems  int    `json:"completed_items"`
}

type SummaryDTO struct {
	TotalMoney      string            `json:"total_money"`
	ExecutedMoney   string            `json:"executed_money"`
	ProgressPercent string            `json:"progress_percent"`
	ItemCount       int               `json:"item_count"`
	CompletedItems  int               `json:"completed_items"`
	NearCompletion  []ItemDTO         `json:"near_completion"`
	Groups          []GroupSummaryDTO `json:"groups"`
}

// =============================================================================
// REPORTS AND ACTIVITY
// =============================================================================

type ReportDTO struct {
	ID           string   `json:"id"`
	ItemID       string   `json:"item_id"`
	DeltaPercent string   `json:"delta_percent"`
	Date         string   `json:"date,omitempty"`
	RangeStart   string   `json:"range_start,omitempty"`
	RangeEnd     string   `json:"range_end,omitempty"`
	Note         string   `json:"note,omitempty"`
	Photos       []string `json:"photos,omitempty"`
	Author       string   `json:"author,omitempty"`
	CreatedAt    string   `json:"created_at"`
}

type SubmitReportRequest struct {
	ItemID       string   `json:"item_id"`
	DeltaPercent string   `json:"delta_percent"`
	Date         string   `json:"date"`
	RangeStart   string   `json:"range_start"`
	RangeEnd     string   `json:"range_end"`
	Note         string   `json:"note"`
	Photos       []string `json:"photos"`
	Author       string   `json:"author"`
}

type ActivityEntryDTO struct {
	Report    ReportDTO `json:"report"`
	ItemCode  string    `json:"item_code"`
	ItemLabel string    `json:"item_label"`
	GroupCode string    `json:"group_code"`
}

type DailyActivityDTO struct {
	Date          string `json:"date"`
	Reports       int    `json:"reports"`
	ExecutedMoney string `json:"executed_money"`
}

type ActivityDTO struct {
	Recent []ActivityEntryDTO `json:"recent"`
	Daily  []DailyActivityDTO `json:"daily"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERTERS
// =============================================================================

func toProjectDTO(p store.Project) ProjectDTO {
	return ProjectDTO{ID: string(p.ID), Name: p.Name}
}

func toItemDTO(i plan.WorkItem) ItemDTO {
	dto := ItemDTO{
		ID:          string(i.ID),
		Code:        i.Code,
		Description: i.Description,
		Unit:        i.Measure.Unit,
		UnitPrice:   i.UnitPrice.String(),
		Weight:      i.Weight().String(),
	}
	if i.Measure.HasQuantity {
		q := i.Measure.Quantity.String()
		dto.Quantity = &q
	}
	return dto
}

func toItemDTOs(items []plan.WorkItem) []ItemDTO {
	out := make([]ItemDTO, len(items))
	for i, item := range items {
		out[i] = toItemDTO(item)
	}
	return out
}

func toTreeDTO(t plan.Tree) TreeDTO {
	dto := TreeDTO{Groups: make([]GroupDTO, 0, len(t.Groups))}
	for _, g := range t.Groups {
		gd := GroupDTO{
			ID:          g.ID,
			Code:        g.Code,
			Description: g.Description,
			Items:       toItemDTOs(g.Items),
			Subgroups:   make([]SubgroupDTO, 0, len(g.Subgroups)),
		}
		for _, sg := range g.Subgroups {
			gd.Subgroups = append(gd.Subgroups, SubgroupDTO{
				ID:          sg.ID,
				Code:        sg.Code,
				Description: sg.Description,
				Items:       toItemDTOs(sg.Items),
			})
		}
		dto.Groups = append(dto.Groups, gd)
	}
	return dto
}

func toPeriodDTO(p progress.Period) PeriodDTO {
	return PeriodDTO{
		ID:    string(p.ID),
		Seq:   p.Seq,
		Label: p.Label,
		Start: p.Start.String(),
		End:   p.End.String(),
	}
}

func toWindowDTO(w *progress.Window) *WindowDTO {
	if w == nil {
		return nil
	}
	return &WindowDTO{Start: w.Start.String(), End: w.End.String()}
}

func toReportDTO(r progress.Report) ReportDTO {
	return ReportDTO{
		ID:           string(r.ID),
		ItemID:       string(r.Item),
		DeltaPercent: r.DeltaPercent.String(),
		Date:         r.Date.String(),
		RangeStart:   r.RangeStart.String(),
		RangeEnd:     r.RangeEnd.String(),
		Note:         r.Note,
		Photos:       r.Photos,
		Author:       r.Author,
		CreatedAt:    r.CreatedAt.Format(timeLayout),
	}
}

func decStr(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}
