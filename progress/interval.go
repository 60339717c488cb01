package progress

// =============================================================================
// INTERVAL INDEX - Which period does a calendar date belong to?
// =============================================================================

// NotFound is returned by Locate when no period contains or precedes the date.
const NotFound = -1

// Locate maps a calendar date to a period index. Preference order:
//
//  1. the period whose [start, end] contains the date inclusively;
//  2. failing that, the period with the latest end date at or before it
//     (later sequence wins ties, matching the plan ordering);
//  3. failing that, NotFound.
//
// Periods missing one bound collapse to a point interval on the other;
// periods with no dates at all are skipped. A linear scan is deliberate:
// period counts are small and the inputs arrive pre-ordered by sequence.
func Locate(periods []Period, date Date) int {
	if date.IsZero() {
		return NotFound
	}

	contain := NotFound
	lastEnded := NotFound
	var lastEnd Date

	for i, p := range periods {
		start, end, ok := p.Bounds()
		if !ok {
			continue
		}
		if end.BeforeOrEqual(date) && (lastEnded == NotFound || end.AfterOrEqual(lastEnd)) {
			lastEnded, lastEnd = i, end
		}
		if start.BeforeOrEqual(date) && date.BeforeOrEqual(end) {
			contain = i
		}
	}

	if contain != NotFound {
		return contain
	}
	return lastEnded
}
