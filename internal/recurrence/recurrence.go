// Package recurrence expands an RRuleOptions + exdate set into a bounded,
// ordered sequence of EventInstances (§4.1). It is a pure function: no
// state, no I/O, no clock.
package recurrence

import (
	"time"

	"github.com/unburdy/scheduler-module/internal/apperr"
	"github.com/unburdy/scheduler-module/internal/domain"
)

// Expand produces the ordered, duplicate-free sequence of EventInstance
// intersecting window, for an event starting at dtstart with the given
// recurrence (nil for a non-recurring event), exdates, duration, and
// owning-calendar timezone (used when the rule carries no timezone of
// its own). maxWindow bounds the query per the
// event-instances-query-duration-limit (§4.1); window exceeding it fails.
func Expand(dtstart domain.Timestamp, opts *domain.RRuleOptions, exdates []domain.Timestamp, durationMs int64, ownerTimezone string, window domain.TimeSpan, maxWindow time.Duration) ([]domain.EventInstance, error) {
	if window.End < window.Start {
		return nil, apperr.NewBadInput("window end before window start")
	}
	if time.Duration(window.End-window.Start)*time.Millisecond > maxWindow {
		return nil, apperr.NewBadInput("query window exceeds event-instances-query-duration-limit")
	}

	exset := make(map[domain.Timestamp]struct{}, len(exdates))
	for _, t := range exdates {
		exset[t] = struct{}{}
	}

	if opts == nil {
		start := dtstart
		end := start + durationMs
		if _, excluded := exset[start]; excluded {
			return nil, nil
		}
		span := domain.TimeSpan{Start: start, End: end}
		if !span.Overlaps(window) {
			return nil, nil
		}
		return []domain.EventInstance{{StartTs: start, EndTs: end, Busy: false}}, nil
	}

	if err := opts.Validate(); err != nil {
		return nil, err
	}

	tzName := opts.EffectiveTimezone(ownerTimezone)
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, apperr.WrapBadInput(err, "unknown recurrence timezone %q", tzName)
	}

	dtStartLocal := time.UnixMilli(dtstart).In(loc)

	candidates := generateCandidates(dtStartLocal, opts, window, loc)

	instances := make([]domain.EventInstance, 0, len(candidates))
	count := 0
	for _, c := range candidates {
		if opts.Count != nil && count >= *opts.Count {
			break
		}
		startMs := c.UnixMilli()
		if opts.UntilTs != nil && startMs > *opts.UntilTs {
			break
		}
		count++
		if startMs > window.End {
			break
		}
		if startMs < window.Start-durationMs {
			continue
		}
		if _, excluded := exset[startMs]; excluded {
			continue
		}
		endMs := startMs + durationMs
		span := domain.TimeSpan{Start: startMs, End: endMs}
		if !span.Overlaps(window) {
			continue
		}
		instances = append(instances, domain.EventInstance{StartTs: startMs, EndTs: endMs, Busy: false})
	}
	return instances, nil
}

// isLeapYear implements the standard Gregorian rule, ported from the
// original source's date validation (original_source
// scheduler/crates/domain/src/date.rs).
func isLeapYear(year int) bool {
	return year%400 == 0 || (year%100 != 0 && year%4 == 0)
}

var monthLengths = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// daysInMonth returns the number of days in the given 1-indexed month,
// accounting for leap Februaries (original_source date.rs get_month_length).
func daysInMonth(year, month int) int {
	if month == 2 && isLeapYear(year) {
		return 29
	}
	return monthLengths[month-1]
}

// dayExists reports whether year-month-day is a real Gregorian date.
// Monthly/yearly expansion landing on a non-existent date is skipped,
// never clamped (§4.1).
func dayExists(year, month, day int) bool {
	if month < 1 || month > 12 {
		return false
	}
	return day >= 1 && day <= daysInMonth(year, month)
}

// resolveLocal builds the local wall-clock instant for y-m-d at dtstart's
// time-of-day, in loc. A spring-forward gap (the wall-clock time does
// not exist) is left to the time package's own normalization of Date. A
// fall-back overlap (the wall-clock time occurs twice) is disambiguated
// explicitly to the later of the two UTC instants, per §4.1.
func resolveLocal(y, m, d int, clock time.Time, loc *time.Location) time.Time {
	hh, mm, ss, ns := clock.Hour(), clock.Minute(), clock.Second(), clock.Nanosecond()
	naive := time.Date(y, time.Month(m), d, hh, mm, ss, ns, loc)

	_, offBefore := naive.Add(-3 * time.Hour).Zone()
	_, offAfter := naive.Add(3 * time.Hour).Zone()
	if offBefore <= offAfter {
		return naive
	}

	// The offset drops within a few hours of this wall-clock time: a DST
	// fall-back, so it occurs twice. Resolve to the occurrence under the
	// post-transition (smaller) offset, which is the later UTC instant.
	later := time.Date(y, time.Month(m), d, hh, mm, ss, ns, time.FixedZone("", offAfter)).UTC()
	return later.In(loc)
}
