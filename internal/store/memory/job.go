package memory

import (
	"context"
	"sync"

	"github.com/unburdy/scheduler-module/internal/domain"
	"github.com/unburdy/scheduler-module/internal/reminder"
)

// JobStore implements reminder.JobStore.
type JobStore struct {
	mu   sync.Mutex
	rows map[domain.ID]*domain.EventRemindersExpansionJob
}

func newJobStore() *JobStore {
	return &JobStore{rows: make(map[domain.ID]*domain.EventRemindersExpansionJob)}
}

var _ reminder.JobStore = (*JobStore)(nil)

func (s *JobStore) DueForExpansion(_ context.Context, before domain.Timestamp) ([]*domain.EventRemindersExpansionJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var due []*domain.EventRemindersExpansionJob
	for _, j := range s.rows {
		if j.Timestamp <= before {
			due = append(due, j)
		}
	}
	return due, nil
}

func (s *JobStore) Upsert(_ context.Context, job *domain.EventRemindersExpansionJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[job.ID] = job
	return nil
}

func (s *JobStore) Delete(_ context.Context, id domain.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, id)
	return nil
}
