// Package availability implements the merge/sweep algorithm that turns
// event instances and schedule rules into free/busy data (§4.2).
package availability

import (
	"sort"

	"github.com/unburdy/scheduler-module/internal/domain"
)

// Merge sorts spans by start and coalesces any that touch or overlap,
// producing the sorted, half-open, non-overlapping form the contract
// requires (§4.2 invariants, testable property 3).
func Merge(spans []domain.TimeSpan) []domain.TimeSpan {
	if len(spans) == 0 {
		return nil
	}
	sorted := make([]domain.TimeSpan, len(spans))
	copy(sorted, spans)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	out := make([]domain.TimeSpan, 0, len(sorted))
	cur := sorted[0]
	for _, s := range sorted[1:] {
		if s.Start <= cur.End {
			if s.End > cur.End {
				cur.End = s.End
			}
			continue
		}
		out = append(out, cur)
		cur = s
	}
	out = append(out, cur)
	return out
}

// Truncate clips each span to bound, dropping spans that don't intersect it.
func Truncate(spans []domain.TimeSpan, bound domain.TimeSpan) []domain.TimeSpan {
	out := make([]domain.TimeSpan, 0, len(spans))
	for _, s := range spans {
		if !s.Overlaps(bound) {
			continue
		}
		if s.Start < bound.Start {
			s.Start = bound.Start
		}
		if s.End > bound.End {
			s.End = bound.End
		}
		if s.Start < s.End {
			out = append(out, s)
		}
	}
	return out
}

// Invert returns the complement of (already-merged, sorted) spans within
// bound: the gaps between them, including the lead and tail gaps.
func Invert(spans []domain.TimeSpan, bound domain.TimeSpan) []domain.TimeSpan {
	var out []domain.TimeSpan
	cursor := bound.Start
	for _, s := range spans {
		if s.Start > cursor {
			out = append(out, domain.TimeSpan{Start: cursor, End: s.Start})
		}
		if s.End > cursor {
			cursor = s.End
		}
	}
	if cursor < bound.End {
		out = append(out, domain.TimeSpan{Start: cursor, End: bound.End})
	}
	return out
}

// Subtract returns free minus busy, both merged+sorted, via a single
// inversion/reintersection sweep: (free) ∩ complement(busy).
func Subtract(free, busy []domain.TimeSpan, bound domain.TimeSpan) []domain.TimeSpan {
	freeM := Merge(Truncate(free, bound))
	busyM := Merge(Truncate(busy, bound))
	if len(busyM) == 0 {
		return freeM
	}
	var out []domain.TimeSpan
	for _, f := range freeM {
		gaps := Invert(busyM, f)
		out = append(out, gaps...)
	}
	return Merge(out)
}
