package reminder

import (
	"context"
	"time"

	"github.com/unburdy/scheduler-module/internal/clockport"
	"github.com/unburdy/scheduler-module/internal/domain"
	"github.com/unburdy/scheduler-module/internal/logging"
)

// Sender runs the periodic sender tick (§4.4 "Sender loop"): atomically
// claim due reminders, group by account, and deliver at-most-once.
type Sender struct {
	Reminders ReminderStore
	Accounts  AccountLoader
	Webhook   WebhookSender
	Clock     clockport.Clock
	Grace     time.Duration
	Logger    logging.Logger
}

// Tick claims every reminder due within Grace and delivers it. Delivery
// failures are logged and dropped: the reminder row is already gone by
// the time Send is attempted, so retry would duplicate work instead of
// recovering it (§4.4 failure semantics).
func (s *Sender) Tick(ctx context.Context) error {
	now := s.Clock.Now().UnixMilli()
	due, err := s.Reminders.DeleteDueReturning(ctx, now+int64(s.Grace/time.Millisecond))
	if err != nil {
		return err
	}
	if len(due) == 0 {
		return nil
	}

	byAccount := make(map[domain.ID][]*domain.Reminder)
	for _, r := range due {
		byAccount[r.AccountID] = append(byAccount[r.AccountID], r)
	}

	for accountID, reminders := range byAccount {
		s.deliver(ctx, accountID, reminders)
	}
	return nil
}

func (s *Sender) deliver(ctx context.Context, accountID domain.ID, reminders []*domain.Reminder) {
	account, err := s.Accounts.FindAccount(ctx, accountID)
	if err != nil {
		s.Logger.Error("reminder delivery: account lookup failed, batch dropped", "account_id", accountID, "err", err)
		return
	}
	if account.Webhook == nil {
		s.Logger.Warn("reminder delivery: no webhook configured, batch dropped", "account_id", accountID, "count", len(reminders))
		return
	}

	descriptors := make([]Descriptor, len(reminders))
	for i, r := range reminders {
		descriptors[i] = Descriptor{
			EventID:    r.EventID,
			Identifier: r.Identifier,
			AccountID:  r.AccountID,
			RemindAt:   r.RemindAt,
		}
	}

	if err := s.Webhook.Send(ctx, account, descriptors); err != nil {
		s.Logger.Error("reminder delivery: webhook post failed, batch dropped", "account_id", accountID, "count", len(descriptors), "err", err)
	}
}
