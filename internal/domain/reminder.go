package domain

// Priority orders reminder producers; a higher value wins ties on
// (event_id, remind_at) per §4.4's deduplication rule.
type Priority int64

const (
	// JobPriority is written by the periodic expander loop.
	JobPriority Priority = 0
	// MutationPriority is written inline by the API handler on event
	// insert/update and strictly outranks JobPriority (§4.4).
	MutationPriority Priority = 1
)

// Reminder is a concrete future webhook delivery (§3, §4.4).
type Reminder struct {
	ID         ID
	EventID    ID
	AccountID  ID
	Identifier string // copied from the event's ReminderConfig at expansion time
	RemindAt   Timestamp
	Priority   Priority
	Version    int64 // event's version at expansion time
}

// NewReminder constructs a Reminder for one instance.
func NewReminder(eventID, accountID ID, identifier string, remindAt Timestamp, priority Priority, version int64) *Reminder {
	return &Reminder{
		ID:         NewID(),
		EventID:    eventID,
		AccountID:  accountID,
		Identifier: identifier,
		RemindAt:   remindAt,
		Priority:   priority,
		Version:    version,
	}
}

// EventRemindersExpansionJob is a deferred task to (re-)expand reminders
// for an event (§3, §4.4).
type EventRemindersExpansionJob struct {
	ID        ID
	EventID   ID
	Timestamp Timestamp // when to re-expand
	Version   int64
}

// NewExpansionJob constructs an ExpansionJob for eventID at the given
// event version, due at timestamp.
func NewExpansionJob(eventID ID, timestamp Timestamp, version int64) *EventRemindersExpansionJob {
	return &EventRemindersExpansionJob{
		ID:        NewID(),
		EventID:   eventID,
		Timestamp: timestamp,
		Version:   version,
	}
}
