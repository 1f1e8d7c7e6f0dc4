package recurrence

import (
	"sort"
	"time"

	"github.com/unburdy/scheduler-module/internal/domain"
)

// safetyCap bounds the number of candidate periods walked per call, a
// backstop against a pathological interval/frequency combination; the
// bounded query window (§4.1) keeps real usage far below it.
const safetyCap = 10000

// generateCandidates returns the ordered local-time occurrences of opts
// anchored at dtStartLocal that could possibly intersect window, ignoring
// exdate (the caller applies that, and count/until, in order).
//
// When opts carries a Count or UntilTs, occurrences must be generated
// from dtstart itself: Expand's count/until termination counts candidates
// in slice order, so a bounded series needs its true first occurrence at
// index 0. Skipping ahead to the period nearest window.Start — the
// optimization used for an indefinite series, where no occurrence is ever
// "spent" before the window — would instead make some mid-series
// occurrence look like the first one and admit phantom instances past
// the real count/until cutoff (§4.1, §8).
func generateCandidates(dtStartLocal time.Time, opts *domain.RRuleOptions, window domain.TimeSpan, loc *time.Location) []time.Time {
	skipAhead := opts.Count == nil && opts.UntilTs == nil
	switch opts.Frequency {
	case domain.Daily:
		return dailyCandidates(dtStartLocal, opts, window, skipAhead)
	case domain.Weekly:
		return weeklyCandidates(dtStartLocal, opts, window, skipAhead)
	case domain.Monthly:
		return monthlyCandidates(dtStartLocal, opts, window, skipAhead)
	case domain.Yearly:
		return yearlyCandidates(dtStartLocal, opts, window, skipAhead)
	default:
		return nil
	}
}

func matchesWeekday(t time.Time, occs []domain.WeekdayOccurrence) bool {
	if len(occs) == 0 {
		return true
	}
	wd := domain.Weekday(t.Weekday())
	for _, o := range occs {
		if o.Weekday == wd {
			return true
		}
	}
	return false
}

func dailyCandidates(dtStartLocal time.Time, opts *domain.RRuleOptions, window domain.TimeSpan, skipAhead bool) []time.Time {
	interval := opts.Interval
	periodsAhead := 0
	if skipAhead {
		daysSinceStart := int(window.Start/86400000 - dtStartLocal.UTC().UnixMilli()/86400000)
		periodsAhead = daysSinceStart / interval
		if periodsAhead < 0 {
			periodsAhead = 0
		}
	}
	start := dtStartLocal.AddDate(0, 0, (periodsAhead)*interval)
	// step back one period as a DST/rounding safety margin
	if periodsAhead > 0 {
		start = start.AddDate(0, 0, -interval)
	}

	var out []time.Time
	cur := start
	for i := 0; i < safetyCap; i++ {
		if cur.Before(dtStartLocal) {
			cur = cur.AddDate(0, 0, interval)
			continue
		}
		if cur.UnixMilli() > window.End {
			break
		}
		if matchesWeekday(cur, opts.ByWeekday) {
			out = append(out, cur)
		}
		cur = cur.AddDate(0, 0, interval)
	}
	return out
}

func weekStartOffset(t time.Time, weekStart domain.Weekday) int {
	d := int(t.Weekday()) - int(weekStart)
	if d < 0 {
		d += 7
	}
	return d
}

func weeklyCandidates(dtStartLocal time.Time, opts *domain.RRuleOptions, window domain.TimeSpan, skipAhead bool) []time.Time {
	interval := opts.Interval
	anchor := dtStartLocal.AddDate(0, 0, -weekStartOffset(dtStartLocal, opts.WeekStart))

	weeksAhead := 0
	if skipAhead {
		daysSinceAnchor := int(window.Start/86400000 - anchor.UTC().UnixMilli()/86400000)
		weeksAhead = daysSinceAnchor / (7 * interval)
		if weeksAhead < 0 {
			weeksAhead = 0
		}
		if weeksAhead > 0 {
			weeksAhead--
		}
	}

	periodStart := anchor.AddDate(0, 0, weeksAhead*7*interval)

	weekdays := opts.ByWeekday
	if len(weekdays) == 0 {
		weekdays = []domain.WeekdayOccurrence{{Weekday: domain.Weekday(dtStartLocal.Weekday())}}
	}

	var out []time.Time
	period := periodStart
	for i := 0; i < safetyCap; i++ {
		if period.UnixMilli() > window.End {
			break
		}
		for offset := 0; offset < 7; offset++ {
			day := period.AddDate(0, 0, offset)
			wd := domain.Weekday(day.Weekday())
			matched := false
			for _, occ := range weekdays {
				if occ.Weekday == wd {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
			if day.Before(truncateToDay(dtStartLocal)) {
				continue
			}
			if day.UnixMilli() > window.End {
				continue
			}
			out = append(out, day)
		}
		period = period.AddDate(0, 0, 7*interval)
	}
	return out
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func monthDayCandidates(year int, month time.Month, dtStartLocal time.Time, opts *domain.RRuleOptions) []int {
	if len(opts.ByWeekday) > 0 {
		return nil // handled separately by monthWeekdayCandidates
	}
	if len(opts.ByMonthDay) > 0 {
		days := make([]int, 0, len(opts.ByMonthDay))
		for _, md := range opts.ByMonthDay {
			d := md
			if d < 0 {
				d = daysInMonth(year, int(month)) + 1 + d
			}
			days = append(days, d)
		}
		return days
	}
	return []int{dtStartLocal.Day()}
}

func monthWeekdayCandidates(year int, month time.Month, occs []domain.WeekdayOccurrence) []int {
	dim := daysInMonth(year, int(month))
	var out []int
	for _, occ := range occs {
		if occ.Nth == 0 {
			for d := 1; d <= dim; d++ {
				if domain.Weekday(time.Date(year, month, d, 0, 0, 0, 0, time.UTC).Weekday()) == occ.Weekday {
					out = append(out, d)
				}
			}
			continue
		}
		if occ.Nth > 0 {
			n := 0
			for d := 1; d <= dim; d++ {
				if domain.Weekday(time.Date(year, month, d, 0, 0, 0, 0, time.UTC).Weekday()) == occ.Weekday {
					n++
					if n == occ.Nth {
						out = append(out, d)
						break
					}
				}
			}
		} else {
			n := 0
			for d := dim; d >= 1; d-- {
				if domain.Weekday(time.Date(year, month, d, 0, 0, 0, 0, time.UTC).Weekday()) == occ.Weekday {
					n++
					if n == -occ.Nth {
						out = append(out, d)
						break
					}
				}
			}
		}
	}
	return out
}

func monthlyCandidates(dtStartLocal time.Time, opts *domain.RRuleOptions, window domain.TimeSpan, skipAhead bool) []time.Time {
	interval := opts.Interval
	startIdx := dtStartLocal.Year()*12 + int(dtStartLocal.Month()) - 1

	periodsAhead := 0
	if skipAhead {
		windowStartLocal := time.UnixMilli(window.Start).In(dtStartLocal.Location())
		targetIdx := windowStartLocal.Year()*12 + int(windowStartLocal.Month()) - 1

		periodsAhead = (targetIdx - startIdx) / interval
		if periodsAhead < 0 {
			periodsAhead = 0
		}
		if periodsAhead > 0 {
			periodsAhead--
		}
	}

	idx := startIdx + periodsAhead*interval

	var out []time.Time
	for i := 0; i < safetyCap; i++ {
		year := idx / 12
		month := time.Month(idx%12 + 1)
		periodFirst := time.Date(year, month, 1, 0, 0, 0, 0, dtStartLocal.Location())
		if periodFirst.UnixMilli() > window.End {
			break
		}

		var days []int
		if len(opts.ByWeekday) > 0 {
			days = monthWeekdayCandidates(year, month, opts.ByWeekday)
		} else {
			days = monthDayCandidates(year, month, dtStartLocal, opts)
		}
		sort.Ints(days)

		for _, d := range days {
			if !dayExists(year, int(month), d) {
				continue
			}
			cand := resolveLocal(year, int(month), d, dtStartLocal, dtStartLocal.Location())
			if cand.Before(dtStartLocal) {
				continue
			}
			if cand.UnixMilli() > window.End {
				continue
			}
			out = append(out, cand)
		}
		idx += interval
	}
	return out
}

func yearlyCandidates(dtStartLocal time.Time, opts *domain.RRuleOptions, window domain.TimeSpan, skipAhead bool) []time.Time {
	interval := opts.Interval

	periodsAhead := 0
	if skipAhead {
		windowStartLocal := time.UnixMilli(window.Start).In(dtStartLocal.Location())
		periodsAhead = (windowStartLocal.Year() - dtStartLocal.Year()) / interval
		if periodsAhead < 0 {
			periodsAhead = 0
		}
		if periodsAhead > 0 {
			periodsAhead--
		}
	}
	year := dtStartLocal.Year() + periodsAhead*interval

	months := opts.ByMonth
	if len(months) == 0 {
		months = []int{int(dtStartLocal.Month())}
	}

	var out []time.Time
	for i := 0; i < safetyCap; i++ {
		yearStart := time.Date(year, time.January, 1, 0, 0, 0, 0, dtStartLocal.Location())
		if yearStart.UnixMilli() > window.End {
			break
		}

		if len(opts.ByYearDay) > 0 {
			for _, yd := range opts.ByYearDay {
				day := yd
				dim := 365
				if isLeapYear(year) {
					dim = 366
				}
				if day < 0 {
					day = dim + 1 + day
				}
				if day < 1 || day > dim {
					continue
				}
				cand := resolveLocal(year, 1, 1, dtStartLocal, dtStartLocal.Location()).AddDate(0, 0, day-1)
				if cand.Before(dtStartLocal) || cand.UnixMilli() > window.End {
					continue
				}
				out = append(out, cand)
			}
		} else {
			for _, m := range months {
				var days []int
				if len(opts.ByWeekday) > 0 {
					days = monthWeekdayCandidates(year, time.Month(m), opts.ByWeekday)
				} else {
					days = monthDayCandidates(year, time.Month(m), dtStartLocal, opts)
				}
				sort.Ints(days)
				for _, d := range days {
					if !dayExists(year, m, d) {
						continue
					}
					cand := resolveLocal(year, m, d, dtStartLocal, dtStartLocal.Location())
					if cand.Before(dtStartLocal) || cand.UnixMilli() > window.End {
						continue
					}
					out = append(out, cand)
				}
			}
		}
		year += interval
	}
	return out
}
