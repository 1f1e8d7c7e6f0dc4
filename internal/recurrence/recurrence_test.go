package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unburdy/scheduler-module/internal/domain"
)

const maxWindow = 62 * 24 * time.Hour

func berlinMs(t *testing.T, y int, m time.Month, d, hh, mm int) domain.Timestamp {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	return time.Date(y, m, d, hh, mm, 0, 0, loc).UnixMilli()
}

func TestExpand_WeeklyAcrossDST(t *testing.T) {
	dtstart := berlinMs(t, 2024, time.March, 24, 9, 0)
	opts := &domain.RRuleOptions{Frequency: domain.Weekly, Interval: 1, Timezone: "Europe/Berlin"}

	window := domain.TimeSpan{
		Start: berlinMs(t, 2024, time.March, 24, 0, 0),
		End:   berlinMs(t, 2024, time.April, 7, 23, 59),
	}

	instances, err := Expand(dtstart, opts, nil, 3600000, "Europe/Berlin", window, maxWindow)
	require.NoError(t, err)
	require.Len(t, instances, 3)

	assert.Equal(t, berlinMs(t, 2024, time.March, 24, 9, 0), instances[0].StartTs)
	assert.Equal(t, berlinMs(t, 2024, time.March, 31, 9, 0), instances[1].StartTs)
	assert.Equal(t, berlinMs(t, 2024, time.April, 7, 9, 0), instances[2].StartTs)

	// local time-of-day is preserved across the spring-forward transition
	loc, _ := time.LoadLocation("Europe/Berlin")
	for _, inst := range instances {
		local := time.UnixMilli(inst.StartTs).In(loc)
		assert.Equal(t, 9, local.Hour())
		assert.Equal(t, 0, local.Minute())
	}
}

func TestExpand_Idempotent(t *testing.T) {
	dtstart := berlinMs(t, 2024, time.March, 24, 9, 0)
	opts := &domain.RRuleOptions{Frequency: domain.Weekly, Interval: 1, Timezone: "Europe/Berlin"}
	window := domain.TimeSpan{Start: dtstart, End: dtstart + 14*24*3600*1000}

	a, err := Expand(dtstart, opts, nil, 3600000, "Europe/Berlin", window, maxWindow)
	require.NoError(t, err)
	b, err := Expand(dtstart, opts, nil, 3600000, "Europe/Berlin", window, maxWindow)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestExpand_ExdateRemoval(t *testing.T) {
	loc := time.UTC
	dtstart := time.Date(2024, 1, 1, 10, 0, 0, 0, loc).UnixMilli()
	count := 10
	opts := &domain.RRuleOptions{Frequency: domain.Daily, Interval: 1, Count: &count, Timezone: "UTC"}

	day := func(n int) domain.Timestamp {
		return time.Date(2024, 1, 1+n, 10, 0, 0, 0, loc).UnixMilli()
	}
	exdates := []domain.Timestamp{day(2), day(4)} // "day3" and "day5" (1-indexed in the narrative)

	window := domain.TimeSpan{Start: dtstart, End: day(30)}
	instances, err := Expand(dtstart, opts, exdates, 3600000, "UTC", window, maxWindow)
	require.NoError(t, err)
	require.Len(t, instances, 8)

	for _, inst := range instances {
		assert.NotEqual(t, day(2), inst.StartTs)
		assert.NotEqual(t, day(4), inst.StartTs)
	}
	// strictly increasing
	for i := 1; i < len(instances); i++ {
		assert.Less(t, instances[i-1].StartTs, instances[i].StartTs)
	}
}

func TestExpand_MonthlySkipNonExistent(t *testing.T) {
	loc := time.UTC
	dtstart := time.Date(2024, 1, 31, 8, 0, 0, 0, loc).UnixMilli()
	count := 4
	opts := &domain.RRuleOptions{Frequency: domain.Monthly, Interval: 1, Count: &count, Timezone: "UTC"}

	window := domain.TimeSpan{Start: dtstart, End: time.Date(2024, 12, 31, 0, 0, 0, 0, loc).UnixMilli()}
	instances, err := Expand(dtstart, opts, nil, 3600000, "UTC", window, maxWindow)
	require.NoError(t, err)
	require.Len(t, instances, 4)

	expectDates := []time.Time{
		time.Date(2024, 1, 31, 8, 0, 0, 0, loc),
		time.Date(2024, 3, 31, 8, 0, 0, 0, loc),
		time.Date(2024, 5, 31, 8, 0, 0, 0, loc),
		time.Date(2024, 7, 31, 8, 0, 0, 0, loc),
	}
	for i, exp := range expectDates {
		assert.Equal(t, exp.UnixMilli(), instances[i].StartTs)
	}
}

func TestExpand_NonRecurringSingleInstance(t *testing.T) {
	dtstart := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC).UnixMilli()
	window := domain.TimeSpan{Start: dtstart - 1000, End: dtstart + 7200000}
	instances, err := Expand(dtstart, nil, nil, 3600000, "UTC", window, maxWindow)
	require.NoError(t, err)
	require.Len(t, instances, 1)
	assert.Equal(t, dtstart, instances[0].StartTs)
	assert.Equal(t, dtstart+3600000, instances[0].EndTs)
}

func TestExpand_DurationLimitExceeded(t *testing.T) {
	dtstart := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
	window := domain.TimeSpan{Start: dtstart, End: dtstart + int64(200*24*time.Hour/time.Millisecond)}
	_, err := Expand(dtstart, nil, nil, 3600000, "UTC", window, maxWindow)
	require.Error(t, err)
}

// TestExpand_CountExhaustedBeforeWindow reproduces a count-bounded monthly
// series whose occurrences are all spent (Jan-Apr) before a query window
// that starts months later (Jun-Jul): the series must yield no instances,
// not a phantom occurrence counted from whatever candidate the window
// skip-ahead optimization happens to land on.
func TestExpand_CountExhaustedBeforeWindow(t *testing.T) {
	loc := time.UTC
	dtstart := time.Date(2024, 1, 15, 10, 0, 0, 0, loc).UnixMilli()
	count := 4
	opts := &domain.RRuleOptions{Frequency: domain.Monthly, Interval: 1, Count: &count, Timezone: "UTC"}

	window := domain.TimeSpan{
		Start: time.Date(2024, 6, 1, 0, 0, 0, 0, loc).UnixMilli(),
		End:   time.Date(2024, 7, 15, 0, 0, 0, 0, loc).UnixMilli(),
	}
	instances, err := Expand(dtstart, opts, nil, 3600000, "UTC", window, maxWindow)
	require.NoError(t, err)
	assert.Empty(t, instances)
}

// TestExpand_CountHonoredWithDistantWindow checks the companion case: a
// count-bounded series with an occurrence still inside a distant window
// must report it as the correct, true occurrence number rather than
// miscounting from a window-aligned candidate.
func TestExpand_CountHonoredWithDistantWindow(t *testing.T) {
	loc := time.UTC
	dtstart := time.Date(2024, 1, 15, 10, 0, 0, 0, loc).UnixMilli()
	count := 8
	opts := &domain.RRuleOptions{Frequency: domain.Monthly, Interval: 1, Count: &count, Timezone: "UTC"}

	window := domain.TimeSpan{
		Start: time.Date(2024, 6, 1, 0, 0, 0, 0, loc).UnixMilli(),
		End:   time.Date(2024, 7, 15, 0, 0, 0, 0, loc).UnixMilli(),
	}
	instances, err := Expand(dtstart, opts, nil, 3600000, "UTC", window, maxWindow)
	require.NoError(t, err)
	require.Len(t, instances, 1)
	assert.Equal(t, time.Date(2024, 6, 15, 10, 0, 0, 0, loc).UnixMilli(), instances[0].StartTs)
}

// TestExpand_UntilExhaustedBeforeWindow is the `until` analogue: the
// series ends before the query window begins, so it must yield nothing.
func TestExpand_UntilExhaustedBeforeWindow(t *testing.T) {
	loc := time.UTC
	dtstart := time.Date(2024, 1, 15, 10, 0, 0, 0, loc).UnixMilli()
	until := domain.Timestamp(time.Date(2024, 4, 1, 0, 0, 0, 0, loc).UnixMilli())
	opts := &domain.RRuleOptions{Frequency: domain.Monthly, Interval: 1, UntilTs: &until, Timezone: "UTC"}

	window := domain.TimeSpan{
		Start: time.Date(2024, 6, 1, 0, 0, 0, 0, loc).UnixMilli(),
		End:   time.Date(2024, 7, 15, 0, 0, 0, 0, loc).UnixMilli(),
	}
	instances, err := Expand(dtstart, opts, nil, 3600000, "UTC", window, maxWindow)
	require.NoError(t, err)
	assert.Empty(t, instances)
}

// TestResolveLocal_FallBackPicksLaterInstant exercises the Europe/Berlin
// autumn transition, where clocks fall back from 03:00 CEST to 02:00 CET
// and wall-clock times between 02:00 and 03:00 occur twice. The later
// (CET, UTC+1) occurrence must win over the earlier (CEST, UTC+2) one.
func TestResolveLocal_FallBackPicksLaterInstant(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	clock := time.Date(2024, 1, 1, 2, 30, 0, 0, time.UTC)
	resolved := resolveLocal(2024, 10, 27, clock, loc)

	cetOccurrence := time.Date(2024, 10, 27, 2, 30, 0, 0, time.FixedZone("CET", 3600))
	assert.Equal(t, cetOccurrence.Unix(), resolved.Unix())

	_, offset := resolved.Zone()
	assert.Equal(t, 3600, offset, "expected the post-transition CET offset, not CEST")
}
