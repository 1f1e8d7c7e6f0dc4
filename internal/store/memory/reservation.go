package memory

import (
	"context"
	"strconv"
	"sync"

	"github.com/unburdy/scheduler-module/internal/domain"
	"github.com/unburdy/scheduler-module/internal/store"
)

// ReservationStore tracks reservation counts per (service_id, slot_start).
// CreateIntentIfBelowCap holds the mutex across the check-then-increment,
// which is what makes the cap race-free under concurrent callers (§4.3,
// §8 testable property 7).
type ReservationStore struct {
	mu     sync.Mutex
	counts map[string]int
}

func newReservationStore() *ReservationStore {
	return &ReservationStore{counts: make(map[string]int)}
}

var _ store.ReservationStore = (*ReservationStore)(nil)

func reservationKey(serviceID domain.ID, slotStart domain.Timestamp) string {
	return string(serviceID) + "|" + strconv.FormatInt(slotStart, 10)
}

func (s *ReservationStore) CreateIntentIfBelowCap(_ context.Context, serviceID domain.ID, slotStart domain.Timestamp, cap int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := reservationKey(serviceID, slotStart)
	if s.counts[key] >= cap {
		return false, nil
	}
	s.counts[key]++
	return true, nil
}

func (s *ReservationStore) Remove(_ context.Context, serviceID domain.ID, slotStart domain.Timestamp) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := reservationKey(serviceID, slotStart)
	if s.counts[key] > 0 {
		s.counts[key]--
	}
	return nil
}

func (s *ReservationStore) CountAt(_ context.Context, serviceID domain.ID, slotStart domain.Timestamp) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[reservationKey(serviceID, slotStart)], nil
}
