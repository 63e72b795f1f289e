package services

import (
	"context"

	"github.com/dhanarakshak/goals-backend/internal/core/domain"
	"github.com/dhanarakshak/goals-backend/internal/dto"
)

// ReminderSweeperSvc defines the periodic scheduling pass
type ReminderSweeperSvc interface {
	// SweepReminders computes which deadline and cadence reminders have become
	// due and creates them idempotently. Time-triggered, not request-triggered.
	SweepReminders(ctx context.Context) (*dto.SweepRemindersResponse, error)
}

// ReminderReaderSvc defines read operations for reminder data
type ReminderReaderSvc interface {
	// ListDueReminders retrieves the user's unsent reminders that are due now.
	ListDueReminders(ctx context.Context, requestingUserID string) ([]domain.Reminder, error)
}

// ReminderSenderSvc defines the send acknowledgement operation
type ReminderSenderSvc interface {
	// MarkSent flips a reminder to sent exactly once; a second call fails with
	// ErrAlreadySent and leaves the record unchanged.
	MarkSent(ctx context.Context, reminderID string, requestingUserID string) (*domain.Reminder, error)
}

// ReminderSvcFacade combines all reminder service interfaces
type ReminderSvcFacade interface {
	ReminderSweeperSvc
	ReminderReaderSvc
	ReminderSenderSvc
}
