package sql

import (
	"context"

	"gorm.io/gorm"

	"github.com/unburdy/scheduler-module/internal/apperr"
	"github.com/unburdy/scheduler-module/internal/domain"
	"github.com/unburdy/scheduler-module/internal/store"
)

// ReservationStore is the GORM-backed store.ReservationStore. Where the
// in-memory variant serializes on a mutex, this one serializes on a
// per-transaction row lock: CreateIntentIfBelowCap counts existing
// rows for (service_id, slot_start) and inserts a new one inside the
// same transaction, so concurrent callers can't both observe
// count < cap and both insert (§4.3, §8 testable property 7).
type ReservationStore struct{ db *gorm.DB }

func newReservationStore(db *gorm.DB) *ReservationStore { return &ReservationStore{db: db} }

var _ store.ReservationStore = (*ReservationStore)(nil)

func (s *ReservationStore) CreateIntentIfBelowCap(ctx context.Context, serviceID domain.ID, slotStart domain.Timestamp, cap int) (bool, error) {
	var created bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&reservationRow{}).
			Where("service_id = ? AND slot_start = ?", serviceID, slotStart).
			Clauses(lockingClause()).
			Count(&count).Error; err != nil {
			return err
		}
		if int(count) >= cap {
			return nil
		}
		row := &reservationRow{ID: domain.NewID(), ServiceID: serviceID, SlotStart: slotStart}
		if err := tx.Create(row).Error; err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return false, apperr.NewInternal(err, "create reservation intent")
	}
	return created, nil
}

func (s *ReservationStore) Remove(ctx context.Context, serviceID domain.ID, slotStart domain.Timestamp) error {
	err := s.db.WithContext(ctx).
		Where("service_id = ? AND slot_start = ?", serviceID, slotStart).
		Limit(1).
		Delete(&reservationRow{}).Error
	if err != nil {
		return apperr.NewInternal(err, "remove reservation")
	}
	return nil
}

func (s *ReservationStore) CountAt(ctx context.Context, serviceID domain.ID, slotStart domain.Timestamp) (int, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&reservationRow{}).
		Where("service_id = ? AND slot_start = ?", serviceID, slotStart).
		Count(&count).Error
	if err != nil {
		return 0, apperr.NewInternal(err, "count reservations")
	}
	return int(count), nil
}
