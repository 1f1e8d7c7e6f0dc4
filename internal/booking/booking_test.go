package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unburdy/scheduler-module/internal/availability"
	"github.com/unburdy/scheduler-module/internal/domain"
)

func ts(y int, m time.Month, d, hh, mm int) domain.Timestamp {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC).UnixMilli()
}

// TestPlan_BufferAfterExcludesOverlappingSlot covers §8's "booking slot
// with buffer" scenario: schedule free 09:00-11:00, one busy 09:30-10:00,
// duration=30m, interval=30m, buffer=15m. Free (schedule minus busy) is
// [09:00-09:30) and [10:00-11:00). The 09:00 slot is contained in free
// but its buffer tail (09:30-09:45) lands inside the busy block, so it's
// excluded; 09:30 isn't contained in any free span; 10:00 and 10:30 both
// survive since neither they nor their buffer tails touch the busy block.
func TestPlan_BufferAfterExcludesOverlappingSlot(t *testing.T) {
	bound := domain.TimeSpan{Start: ts(2024, 6, 3, 0, 0), End: ts(2024, 6, 4, 0, 0)}
	scheduled := []domain.TimeSpan{{Start: ts(2024, 6, 3, 9, 0), End: ts(2024, 6, 3, 11, 0)}}
	busy := []domain.TimeSpan{{Start: ts(2024, 6, 3, 9, 30), End: ts(2024, 6, 3, 10, 0)}}
	free := availability.Subtract(scheduled, busy, bound)

	member := MemberAvailability{
		UserID:        domain.NewID(),
		Free:          free,
		Busy:          busy,
		BufferAfterMs: 15 * 60 * 1000,
	}

	svc, err := domain.NewService(domain.NewID(), domain.MultiPersonOptions{Kind: domain.Collective}, nil)
	require.NoError(t, err)

	out, err := Plan(PlanInput{
		Service:        svc,
		Members:        []MemberAvailability{member},
		Now:            ts(2024, 1, 1, 0, 0),
		Window:         bound,
		CallerLocation: time.UTC,
		IntervalMs:     30 * 60 * 1000,
		DurationMs:     30 * 60 * 1000,
		MaxWindow:      62 * 24 * time.Hour,
	})
	require.NoError(t, err)

	var starts []domain.Timestamp
	for _, s := range out {
		starts = append(starts, s.Start)
	}
	assert.Contains(t, starts, ts(2024, 6, 3, 10, 0))
	assert.Contains(t, starts, ts(2024, 6, 3, 10, 30))
	assert.NotContains(t, starts, ts(2024, 6, 3, 9, 0))
	assert.NotContains(t, starts, ts(2024, 6, 3, 9, 30))
}

func TestPlan_ReservationCapExcludesFullSlot(t *testing.T) {
	free := []domain.TimeSpan{{Start: ts(2024, 6, 3, 9, 0), End: ts(2024, 6, 3, 10, 0)}}
	member := MemberAvailability{UserID: domain.NewID(), Free: free}
	svc, err := domain.NewService(domain.NewID(), domain.MultiPersonOptions{Kind: domain.Collective, ReservationCap: 1}, nil)
	require.NoError(t, err)

	slotStart := ts(2024, 6, 3, 9, 0)
	counter := func(s domain.Timestamp) int {
		if s == slotStart {
			return 1
		}
		return 0
	}

	out, err := Plan(PlanInput{
		Service:          svc,
		Members:          []MemberAvailability{member},
		Now:              ts(2024, 1, 1, 0, 0),
		Window:           domain.TimeSpan{Start: ts(2024, 6, 3, 9, 0), End: ts(2024, 6, 3, 10, 0)},
		CallerLocation:   time.UTC,
		IntervalMs:       30 * 60 * 1000,
		DurationMs:       30 * 60 * 1000,
		ReservationCount: counter,
		MaxWindow:        62 * 24 * time.Hour,
	})
	require.NoError(t, err)
	for _, s := range out {
		assert.NotEqual(t, slotStart, s.Start)
	}
}

func TestPlan_RoundRobinPrefersMoreFreeTime(t *testing.T) {
	// window spans only the single 09:00-09:30 candidate slot: the next
	// aligned slot would start at window.End (09:30), which the inclusive
	// upper-bound check in alignedSlots would also admit.
	window := domain.TimeSpan{Start: ts(2024, 6, 3, 9, 0), End: ts(2024, 6, 3, 9, 29)}
	memberA := MemberAvailability{UserID: "a", Free: []domain.TimeSpan{{Start: ts(2024, 6, 3, 9, 0), End: ts(2024, 6, 3, 9, 30)}}}
	memberB := MemberAvailability{UserID: "b", Free: []domain.TimeSpan{{Start: ts(2024, 6, 3, 9, 0), End: ts(2024, 6, 3, 12, 0)}}}

	svc, err := domain.NewService(domain.NewID(), domain.MultiPersonOptions{Kind: domain.RoundRobin, Strategy: domain.AvailabilityPreferred}, nil)
	require.NoError(t, err)

	out, err := Plan(PlanInput{
		Service:        svc,
		Members:        []MemberAvailability{memberA, memberB},
		Now:            ts(2024, 1, 1, 0, 0),
		Window:         window,
		CallerLocation: time.UTC,
		IntervalMs:     30 * 60 * 1000,
		DurationMs:     30 * 60 * 1000,
		MaxWindow:      62 * 24 * time.Hour,
	})
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Len(t, out[0].UserIDs, 1)
	assert.Equal(t, domain.ID("b"), out[0].UserIDs[0])
}

func TestPlan_CollectiveRequiresAllMembers(t *testing.T) {
	slot := domain.TimeSpan{Start: ts(2024, 6, 3, 9, 0), End: ts(2024, 6, 3, 9, 30)}
	memberA := MemberAvailability{UserID: "a", Free: []domain.TimeSpan{slot}}
	memberB := MemberAvailability{UserID: "b", Free: nil} // unavailable

	svc, err := domain.NewService(domain.NewID(), domain.MultiPersonOptions{Kind: domain.Collective}, nil)
	require.NoError(t, err)

	out, err := Plan(PlanInput{
		Service:        svc,
		Members:        []MemberAvailability{memberA, memberB},
		Now:            ts(2024, 1, 1, 0, 0),
		Window:         slot,
		CallerLocation: time.UTC,
		IntervalMs:     30 * 60 * 1000,
		DurationMs:     30 * 60 * 1000,
		MaxWindow:      62 * 24 * time.Hour,
	})
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestPlan_DurationLimitExceeded(t *testing.T) {
	svc, err := domain.NewService(domain.NewID(), domain.MultiPersonOptions{Kind: domain.Collective}, nil)
	require.NoError(t, err)

	_, err = Plan(PlanInput{
		Service:        svc,
		Members:        nil,
		Window:         domain.TimeSpan{Start: 0, End: int64(30 * 24 * time.Hour / time.Millisecond)},
		CallerLocation: time.UTC,
		IntervalMs:     30 * 60 * 1000,
		DurationMs:     30 * 60 * 1000,
		MaxWindow:      7 * 24 * time.Hour,
	})
	assert.Error(t, err)
}
