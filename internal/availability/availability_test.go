package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unburdy/scheduler-module/internal/domain"
)

func ts(y int, m time.Month, d, hh, mm int) domain.Timestamp {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC).UnixMilli()
}

func TestMerge_CoalescesOverlapping(t *testing.T) {
	spans := []domain.TimeSpan{
		{Start: 100, End: 200},
		{Start: 150, End: 300},
		{Start: 500, End: 600},
	}
	merged := Merge(spans)
	require.Len(t, merged, 2)
	assert.Equal(t, domain.TimeSpan{Start: 100, End: 300}, merged[0])
	assert.Equal(t, domain.TimeSpan{Start: 500, End: 600}, merged[1])
}

func TestMerge_StrictOrdering(t *testing.T) {
	spans := []domain.TimeSpan{{Start: 10, End: 20}, {Start: 30, End: 40}}
	merged := Merge(spans)
	for i := 1; i < len(merged); i++ {
		assert.Less(t, merged[i-1].End, merged[i].Start)
	}
}

func TestSubtract_RemovesBusyFromFree(t *testing.T) {
	free := []domain.TimeSpan{{Start: 0, End: 1000}}
	busy := []domain.TimeSpan{{Start: 200, End: 400}}
	bound := domain.TimeSpan{Start: 0, End: 1000}
	got := Subtract(free, busy, bound)
	require.Len(t, got, 2)
	assert.Equal(t, domain.TimeSpan{Start: 0, End: 200}, got[0])
	assert.Equal(t, domain.TimeSpan{Start: 400, End: 1000}, got[1])
}

func TestBusy_MergesRecurringInstances(t *testing.T) {
	ev, err := domain.NewCalendarEvent(domain.NewID(), domain.NewID(), domain.NewID(),
		ts(2024, 6, 3, 9, 0), 3600000, true,
		&domain.RRuleOptions{Frequency: domain.Daily, Interval: 1, Timezone: "UTC"},
		nil, nil, nil)
	require.NoError(t, err)

	span := domain.TimeSpan{Start: ts(2024, 6, 3, 0, 0), End: ts(2024, 6, 5, 0, 0)}
	busy, err := Busy([]*domain.CalendarEvent{ev}, "UTC", span, 62*24*time.Hour)
	require.NoError(t, err)
	require.Len(t, busy, 2) // Jun3 and Jun4 occurrences, non-overlapping
}

func TestFreeFromSchedule_DateOverrideWinsOverWeekday(t *testing.T) {
	sched, err := domain.NewSchedule(domain.NewID(), domain.NewID(), "UTC", []domain.ScheduleRule{
		{IsWeekdayRule: true, Weekday: domain.Weekday(time.Monday), Intervals: []domain.DayInterval{{StartMinute: 9 * 60, EndMinute: 17 * 60}}},
		{IsWeekdayRule: false, Date: "2024-06-03", Intervals: []domain.DayInterval{{StartMinute: 10 * 60, EndMinute: 12 * 60}}},
	}, nil)
	require.NoError(t, err)

	// 2024-06-03 is a Monday.
	span := domain.TimeSpan{Start: ts(2024, 6, 3, 0, 0), End: ts(2024, 6, 4, 0, 0)}
	free := FreeFromSchedule(sched, span)
	require.Len(t, free, 1)
	assert.Equal(t, ts(2024, 6, 3, 10, 0), free[0].Start)
	assert.Equal(t, ts(2024, 6, 3, 12, 0), free[0].End)
}
