package domain

import "time"

// ReminderType enumerates the triggers a reminder can be scheduled for.
type ReminderType string

const (
	ReminderMilestone      ReminderType = "MILESTONE"
	ReminderDeadline       ReminderType = "DEADLINE"
	ReminderContribution   ReminderType = "CONTRIBUTION"
	ReminderProgressUpdate ReminderType = "PROGRESS_UPDATE"
)

// IsValid reports whether t is one of the known reminder types.
func (t ReminderType) IsValid() bool {
	switch t {
	case ReminderMilestone, ReminderDeadline, ReminderContribution, ReminderProgressUpdate:
		return true
	}
	return false
}

// Reminder is a scheduled notification owned by a goal. Its only state
// transition is pending -> sent; at most one unsent reminder may exist for a
// given (goal, type, reminder date) triple.
type Reminder struct {
	ReminderID   string       `json:"reminderID"` // Primary Key (e.g., UUID)
	GoalID       string       `json:"goalID"`     // FK -> goals.goal_id (Not Null)
	ReminderType ReminderType `json:"reminderType"`
	ReminderDate time.Time    `json:"reminderDate"`
	Message      string       `json:"message"`
	IsSent       bool         `json:"isSent"`
	SentAt       *time.Time   `json:"sentAt,omitempty"` // Set exactly once, on send
	AuditFields
}
