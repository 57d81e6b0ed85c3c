package meeting

import "sort"

// Coalesce merges overlapping and touching ranges. The result is sorted by start and
// no two ranges in it overlap or touch. Empty ranges are dropped. The input is not modified.
func Coalesce(ranges []TimeRange) []TimeRange {
	sorted := make([]TimeRange, 0, len(ranges))
	for _, r := range ranges {
		if !r.Empty() {
			sorted = append(sorted, r)
		}
	}
	if len(sorted) == 0 {
		return []TimeRange{}
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].start == sorted[j].start {
			return sorted[i].end < sorted[j].end
		}
		return sorted[i].start < sorted[j].start
	})

	cover := make([]TimeRange, 0, len(sorted))
	cur := sorted[0]
	for _, r := range sorted[1:] {
		if r.start <= cur.end {
			cur.end = max(cur.end, r.end)
			continue
		}
		cover = append(cover, cur)
		cur = r
	}
	return append(cover, cur)
}

// Invert returns the gaps of a coalesced cover inside the day window, in order.
// It never returns empty ranges.
func Invert(cover []TimeRange) []TimeRange {
	if len(cover) == 0 {
		return []TimeRange{WholeDay}
	}

	gaps := make([]TimeRange, 0, len(cover)+1)
	prev := 0
	for _, r := range cover {
		if r.start > prev {
			gaps = append(gaps, TimeRange{start: prev, end: r.start})
		}
		prev = max(prev, r.end)
	}
	if prev < MinutesPerDay {
		gaps = append(gaps, TimeRange{start: prev, end: MinutesPerDay})
	}
	return gaps
}

// FilterByDuration keeps the ranges at least d minutes long.
func FilterByDuration(ranges []TimeRange, d int) []TimeRange {
	kept := make([]TimeRange, 0, len(ranges))
	for _, r := range ranges {
		if r.Duration() >= d {
			kept = append(kept, r)
		}
	}
	return kept
}
