package repositories

import (
	"context"
	"time"

	"github.com/dhanarakshak/goals-backend/internal/core/domain"
)

// ReminderReader defines read operations for reminder data
type ReminderReader interface {
	// FindReminderByID retrieves a specific reminder.
	FindReminderByID(ctx context.Context, reminderID string) (*domain.Reminder, error)

	// ListDueReminders retrieves unsent reminders due on or before asOf for
	// goals owned by the user. Deadline reminders belonging to goals that have
	// left ACTIVE are suppressed from the result, not deleted.
	ListDueReminders(ctx context.Context, userID string, asOf time.Time) ([]domain.Reminder, error)

	// FindUnsentByGoalAndType returns the pending reminder of the given type
	// for a goal, or ErrNotFound. At most one can exist per (goal, type, date).
	FindUnsentByGoalAndType(ctx context.Context, goalID string, reminderType domain.ReminderType) (*domain.Reminder, error)

	// FindLastSentByGoalAndType returns the most recently sent reminder of the
	// given type for a goal, or ErrNotFound when none was ever sent.
	FindLastSentByGoalAndType(ctx context.Context, goalID string, reminderType domain.ReminderType) (*domain.Reminder, error)
}

// ReminderWriter defines write operations for reminder data
type ReminderWriter interface {
	// CreateReminderIfAbsent inserts a reminder unless an unsent one already
	// exists for the same (goal, type, reminder date) triple. Returns whether
	// a row was actually created, so sweeps stay idempotent.
	CreateReminderIfAbsent(ctx context.Context, reminder domain.Reminder) (bool, error)

	// MarkReminderSent flips pending -> sent. Returns apperrors.ErrConflict
	// when the reminder was already sent and apperrors.ErrNotFound when it
	// does not exist; the sent state is never reverted.
	MarkReminderSent(ctx context.Context, reminderID string, sentAt time.Time, updatedByUserID string) error
}

// ReminderRepositoryFacade combines all reminder repository interfaces
type ReminderRepositoryFacade interface {
	ReminderReader
	ReminderWriter
}
