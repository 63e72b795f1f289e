package models

import "time"

// ReminderType mirrors domain.ReminderType for persistence.
type ReminderType string

// Reminder represents a row in the reminders table. A partial unique index on
// (goal_id, reminder_type, reminder_date) WHERE NOT is_sent enforces the
// one-pending-per-slot rule at the schema level.
type Reminder struct {
	ReminderID   string       `db:"reminder_id"`
	GoalID       string       `db:"goal_id"`
	ReminderType ReminderType `db:"reminder_type"`
	ReminderDate time.Time    `db:"reminder_date"`
	Message      string       `db:"message"`
	IsSent       bool         `db:"is_sent"`
	SentAt       *time.Time   `db:"sent_at"` // Nullable
	AuditFields
}
