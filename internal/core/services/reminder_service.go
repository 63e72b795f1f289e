package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dhanarakshak/goals-backend/internal/apperrors"
	"github.com/dhanarakshak/goals-backend/internal/core/domain"
	portsrepo "github.com/dhanarakshak/goals-backend/internal/core/ports/repositories"
	portssvc "github.com/dhanarakshak/goals-backend/internal/core/ports/services"
	"github.com/dhanarakshak/goals-backend/internal/dto"
	"github.com/dhanarakshak/goals-backend/internal/middleware"
)

var (
	ErrAlreadySent = errors.New("reminder was already sent")
)

// sweeperUserID stamps audit fields on rows the background sweep creates.
const sweeperUserID = "system:reminder-sweep"

// ReminderScheduleConfig carries the scheduling knobs the sweep runs on.
type ReminderScheduleConfig struct {
	DeadlineLeadDays        int // Days before target_date the deadline reminder fires
	ContributionReminderDay int // Day of month for contribution nudges
	ProgressReminderDay     int // Day of month for progress updates
}

// reminderService schedules and acknowledges reminders. Scheduling is
// time-triggered by the sweep; milestone reminders arrive through the event
// fanout instead.
type reminderService struct {
	goalRepo     portsrepo.GoalRepositoryWithTx
	reminderRepo portsrepo.ReminderRepositoryFacade
	clock        portssvc.Clock
	schedule     ReminderScheduleConfig
}

// NewReminderService creates a new ReminderService.
func NewReminderService(goalRepo portsrepo.GoalRepositoryWithTx, reminderRepo portsrepo.ReminderRepositoryFacade, clock portssvc.Clock, schedule ReminderScheduleConfig) portssvc.ReminderSvcFacade {
	return &reminderService{
		goalRepo:     goalRepo,
		reminderRepo: reminderRepo,
		clock:        clock,
		schedule:     schedule,
	}
}

// Ensure reminderService implements the portssvc.ReminderSvcFacade interface
var _ portssvc.ReminderSvcFacade = (*reminderService)(nil)

// SweepReminders computes which deadline and cadence reminders have become due
// for active goals and creates them idempotently. Re-running a sweep never
// duplicates pending reminders; the partial unique index backs that up.
func (s *reminderService) SweepReminders(ctx context.Context) (*dto.SweepRemindersResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	goals, err := s.goalRepo.ListActiveGoals(ctx)
	if err != nil {
		logger.Error("Failed to list active goals for reminder sweep", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list active goals: %w", err)
	}

	today := s.clock.Today()
	now := s.clock.Now()
	resp := &dto.SweepRemindersResponse{}

	for _, goal := range goals {
		created, err := s.sweepDeadline(ctx, &goal, today, now)
		if err != nil {
			return nil, err
		}
		if created {
			resp.DeadlineCreated++
		}

		created, err = s.sweepCadence(ctx, &goal, domain.ReminderContribution, s.schedule.ContributionReminderDay, today, now)
		if err != nil {
			return nil, err
		}
		if created {
			resp.ContributionCreated++
		}

		created, err = s.sweepCadence(ctx, &goal, domain.ReminderProgressUpdate, s.schedule.ProgressReminderDay, today, now)
		if err != nil {
			return nil, err
		}
		if created {
			resp.ProgressCreated++
		}
	}

	logger.Info("Reminder sweep completed",
		slog.Int("goals", len(goals)),
		slog.Int("deadline_created", resp.DeadlineCreated),
		slog.Int("contribution_created", resp.ContributionCreated),
		slog.Int("progress_created", resp.ProgressCreated),
	)
	return resp, nil
}

// sweepDeadline creates the deadline reminder once the lead window opens. The
// reminder date is fixed at target_date minus the lead, so repeated sweeps
// collide on the unique index instead of stacking up.
func (s *reminderService) sweepDeadline(ctx context.Context, goal *domain.Goal, today time.Time, now time.Time) (bool, error) {
	reminderDate := goal.TargetDate.AddDate(0, 0, -s.schedule.DeadlineLeadDays)
	if today.Before(reminderDate) {
		return false, nil
	}

	reminder := domain.Reminder{
		ReminderID:   uuid.NewString(),
		GoalID:       goal.GoalID,
		ReminderType: domain.ReminderDeadline,
		ReminderDate: reminderDate,
		Message: fmt.Sprintf("Goal %q is due on %s. You have saved %s of %s.",
			goal.Name, goal.TargetDate.Format("2006-01-02"), goal.CurrentAmount.String(), goal.TargetAmount.String()),
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     sweeperUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: sweeperUserID,
		},
	}

	// Skip if this slot was already sent; the index only guards pending rows.
	lastSent, err := s.reminderRepo.FindLastSentByGoalAndType(ctx, goal.GoalID, domain.ReminderDeadline)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return false, fmt.Errorf("failed to check last sent deadline reminder for goal %s: %w", goal.GoalID, err)
	}
	if lastSent != nil && !lastSent.ReminderDate.Before(reminderDate) {
		return false, nil
	}

	created, err := s.reminderRepo.CreateReminderIfAbsent(ctx, reminder)
	if err != nil {
		return false, fmt.Errorf("failed to create deadline reminder for goal %s: %w", goal.GoalID, err)
	}
	return created, nil
}

// sweepCadence creates the monthly reminder of the given type once its day of
// month has passed, at most once per calendar month.
func (s *reminderService) sweepCadence(ctx context.Context, goal *domain.Goal, reminderType domain.ReminderType, dayOfMonth int, today time.Time, now time.Time) (bool, error) {
	candidate := time.Date(today.Year(), today.Month(), dayOfMonth, 0, 0, 0, 0, time.UTC)
	if today.Before(candidate) {
		return false, nil
	}
	// No nudges before the goal has started or after its target date passed.
	if candidate.Before(clockTruncate(goal.StartDate)) || candidate.After(goal.TargetDate) {
		return false, nil
	}

	lastSent, err := s.reminderRepo.FindLastSentByGoalAndType(ctx, goal.GoalID, reminderType)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return false, fmt.Errorf("failed to check last sent %s reminder for goal %s: %w", reminderType, goal.GoalID, err)
	}
	if lastSent != nil && !lastSent.ReminderDate.Before(candidate) {
		return false, nil
	}

	var message string
	switch reminderType {
	case domain.ReminderContribution:
		message = fmt.Sprintf("Time to contribute towards %q. Current progress: %s of %s.",
			goal.Name, goal.CurrentAmount.String(), goal.TargetAmount.String())
	case domain.ReminderProgressUpdate:
		message = fmt.Sprintf("Monthly progress check for %q: %s of %s saved.",
			goal.Name, goal.CurrentAmount.String(), goal.TargetAmount.String())
	}

	reminder := domain.Reminder{
		ReminderID:   uuid.NewString(),
		GoalID:       goal.GoalID,
		ReminderType: reminderType,
		ReminderDate: candidate,
		Message:      message,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     sweeperUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: sweeperUserID,
		},
	}

	created, err := s.reminderRepo.CreateReminderIfAbsent(ctx, reminder)
	if err != nil {
		return false, fmt.Errorf("failed to create %s reminder for goal %s: %w", reminderType, goal.GoalID, err)
	}
	return created, nil
}

// ListDueReminders retrieves the user's unsent reminders that are due now.
func (s *reminderService) ListDueReminders(ctx context.Context, requestingUserID string) ([]domain.Reminder, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	reminders, err := s.reminderRepo.ListDueReminders(ctx, requestingUserID, s.clock.Now())
	if err != nil {
		logger.Error("Failed to list due reminders", slog.String("error", err.Error()), slog.String("user_id", requestingUserID))
		return nil, fmt.Errorf("failed to list due reminders for user %s: %w", requestingUserID, err)
	}
	return reminders, nil
}

// MarkSent flips a reminder to sent exactly once. A second call fails with
// ErrAlreadySent and leaves the record unchanged.
func (s *reminderService) MarkSent(ctx context.Context, reminderID string, requestingUserID string) (*domain.Reminder, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	reminder, err := s.reminderRepo.FindReminderByID(ctx, reminderID)
	if err != nil {
		return nil, err
	}

	goal, err := s.goalRepo.FindGoalByID(ctx, reminder.GoalID)
	if err != nil {
		return nil, err
	}
	if goal.UserID != requestingUserID {
		return nil, apperrors.ErrNotFound
	}

	sentAt := s.clock.Now()
	if err := s.reminderRepo.MarkReminderSent(ctx, reminderID, sentAt, requestingUserID); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, fmt.Errorf("%w: reminder %s", ErrAlreadySent, reminderID)
		}
		logger.Error("Failed to mark reminder sent", slog.String("error", err.Error()), slog.String("reminder_id", reminderID))
		return nil, fmt.Errorf("failed to mark reminder %s sent: %w", reminderID, err)
	}

	reminder.IsSent = true
	reminder.SentAt = &sentAt
	reminder.LastUpdatedAt = sentAt
	reminder.LastUpdatedBy = requestingUserID

	logger.Info("Reminder marked sent", slog.String("reminder_id", reminderID), slog.String("reminder_type", string(reminder.ReminderType)))
	return reminder, nil
}

// clockTruncate drops the time-of-day component of a stored date.
func clockTruncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
