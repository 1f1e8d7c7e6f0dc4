// Package reminder implements the ReminderPipeline (§4.4): the two-phase
// ExpansionJob/Reminder design that delivers reminder webhooks once per
// event instance with bounded lateness and no duplicates.
package reminder

import (
	"context"

	"github.com/unburdy/scheduler-module/internal/domain"
)

// JobStore is the ExpansionJob storage port.
type JobStore interface {
	DueForExpansion(ctx context.Context, before domain.Timestamp) ([]*domain.EventRemindersExpansionJob, error)
	Upsert(ctx context.Context, job *domain.EventRemindersExpansionJob) error
	Delete(ctx context.Context, id domain.ID) error
}

// ReminderStore is the Reminder storage port.
type ReminderStore interface {
	FindByEventAndRemindAt(ctx context.Context, eventID domain.ID, remindAt domain.Timestamp) (*domain.Reminder, error)
	Save(ctx context.Context, r *domain.Reminder) error
	Delete(ctx context.Context, id domain.ID) error
	// DeleteDueReturning atomically removes and returns every reminder
	// with RemindAt <= before, the "delete returning" step of the sender
	// loop that guarantees once-per-instance delivery (§4.4, §5).
	DeleteDueReturning(ctx context.Context, before domain.Timestamp) ([]*domain.Reminder, error)
}

// EventLoader loads the current state of an event for fencing checks.
type EventLoader interface {
	FindEvent(ctx context.Context, id domain.ID) (*domain.CalendarEvent, error)
}

// AccountLoader loads the account owning a reminder, for webhook delivery.
type AccountLoader interface {
	FindAccount(ctx context.Context, id domain.ID) (*domain.Account, error)
}

// Descriptor is one entry of the webhook delivery payload (§4.4).
type Descriptor struct {
	EventID    domain.ID `json:"eventId"`
	Identifier string    `json:"identifier"`
	AccountID  domain.ID `json:"accountId"`
	RemindAt   domain.Timestamp `json:"remindAt"`
}

// WebhookSender delivers a batch of reminder descriptors to one account's
// webhook endpoint. Implementations are fire-and-forget: an error means
// the batch is dropped, never retried (§4.4 non-goal).
type WebhookSender interface {
	Send(ctx context.Context, account *domain.Account, descriptors []Descriptor) error
}
