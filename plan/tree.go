/*
tree.go - Two-pass tree builder for the flat plan stream

PURPOSE:
  Reconstructs the Group/Subgroup/WorkItem hierarchy from the positional
  row stream. Pass one validates the ordering invariant; pass two builds
  the tree. Validation runs first and in full so a malformed import fails
  fast with a precise StructureError instead of silently mis-nesting rows
  under the wrong parent.

ORDERING INVARIANT:
  Every subgroup or item row must be preceded by a group row. A subgroup
  header redirects subsequent item rows into that subgroup until the next
  group or subgroup header. Item rows before the first subgroup header
  attach directly to the group.
*/
package plan

import (
	"fmt"

	"github.com/bencen/site-progress/progress"
)

// StructureError reports a malformed plan stream: the offending row, its
// position, and what was expected before it.
type StructureError struct {
	Index  int
	Row    PlanRow
	Reason string
}

func (e *StructureError) Error() string {
	return fmt.Sprintf("malformed plan: row %d (%s %q): %s", e.Index, e.Row.Kind, e.Row.Code, e.Reason)
}

// BuildTree converts the ordered plan stream into an explicit tree.
// Returns a StructureError on the first ordering violation; a valid stream
// never fails.
func BuildTree(rows []PlanRow) (Tree, error) {
	if err := validate(rows); err != nil {
		return Tree{}, err
	}

	var t Tree
	for _, row := range rows {
		switch row.Kind {
		case RowGroup:
			t.Groups = append(t.Groups, Group{
				ID:          row.ID,
				Code:        row.Code,
				Description: row.Description,
			})

		case RowSubgroup:
			g := &t.Groups[len(t.Groups)-1]
			g.Subgroups = append(g.Subgroups, Subgroup{
				ID:          row.ID,
				Code:        row.Code,
				Description: row.Description,
			})

		case RowItem:
			item := WorkItem{
				ID:          progress.ItemID(row.ID),
				Code:        row.Code,
				Description: row.Description,
				Measure: progress.ItemMeasure{
					Quantity:    row.Quantity,
					Unit:        row.Unit,
					HasQuantity: row.HasQuantity,
				},
				UnitPrice: row.PriceLabor.Add(row.PriceMaterials).Add(row.PriceEquipment),
			}
			g := &t.Groups[len(t.Groups)-1]
			if n := len(g.Subgroups); n > 0 {
				sg := &g.Subgroups[n-1]
				sg.Items = append(sg.Items, item)
			} else {
				g.Items = append(g.Items, item)
			}
		}
	}
	return t, nil
}

// validate walks the whole stream before any construction happens.
func validate(rows []PlanRow) error {
	seenGroup := false
	for i, row := range rows {
		switch row.Kind {
		case RowGroup:
			seenGroup = true
		case RowSubgroup, RowItem:
			if !seenGroup {
				return &StructureError{
					Index:  i,
					Row:    row,
					Reason: "must be preceded by a group row",
				}
			}
		default:
			return &StructureError{
				Index:  i,
				Row:    row,
				Reason: fmt.Sprintf("unknown row kind %q", row.Kind),
			}
		}
	}
	return nil
}
