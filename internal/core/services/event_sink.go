package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dhanarakshak/goals-backend/internal/core/domain"
	portsrepo "github.com/dhanarakshak/goals-backend/internal/core/ports/repositories"
	portssvc "github.com/dhanarakshak/goals-backend/internal/core/ports/services"
	"github.com/dhanarakshak/goals-backend/internal/middleware"
	"github.com/dhanarakshak/goals-backend/internal/utils"
)

// eventFanout is the default EventSink. It records a MILESTONE reminder for
// each achievement and forwards both event kinds to analytics. Failures are
// logged, never propagated: events fire after commit, so the transaction that
// produced them has already succeeded.
type eventFanout struct {
	reminderRepo portsrepo.ReminderRepositoryFacade
	posthog      *utils.PosthogClientWrapper
	clock        portssvc.Clock
}

// NewEventFanout creates the default EventSink.
func NewEventFanout(reminderRepo portsrepo.ReminderRepositoryFacade, posthog *utils.PosthogClientWrapper, clock portssvc.Clock) portssvc.EventSink {
	return &eventFanout{
		reminderRepo: reminderRepo,
		posthog:      posthog,
		clock:        clock,
	}
}

var _ portssvc.EventSink = (*eventFanout)(nil)

func (f *eventFanout) MilestoneAchieved(ctx context.Context, event domain.MilestoneAchievedEvent) {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := f.clock.Now()
	reminder := domain.Reminder{
		ReminderID:   uuid.NewString(),
		GoalID:       event.GoalID,
		ReminderType: domain.ReminderMilestone,
		ReminderDate: event.AchievedDate,
		Message:      fmt.Sprintf("Milestone %q reached: %s saved.", event.MilestoneName, event.TargetAmount.String()),
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     sweeperUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: sweeperUserID,
		},
	}

	if _, err := f.reminderRepo.CreateReminderIfAbsent(ctx, reminder); err != nil {
		logger.Error("Failed informing about achieved milestone",
			slog.String("error", err.Error()),
			slog.String("goal_id", event.GoalID),
			slog.String("milestone_id", event.MilestoneID),
		)
	}

	if f.posthog != nil {
		f.posthog.Enqueue(event.GoalID, "milestone_achieved", map[string]any{
			"goal_id":       event.GoalID,
			"milestone_id":  event.MilestoneID,
			"target_amount": event.TargetAmount.String(),
		})
	}
}

func (f *eventFanout) GoalCompleted(ctx context.Context, event domain.GoalCompletedEvent) {
	logger := middleware.GetLoggerFromCtx(ctx)
	logger.Info("Goal completed",
		slog.String("goal_id", event.GoalID),
		slog.String("goal_name", event.GoalName),
		slog.String("current_amount", event.CurrentAmount.String()),
	)

	if f.posthog != nil {
		f.posthog.Enqueue(event.UserID, "goal_completed", map[string]any{
			"goal_id":       event.GoalID,
			"target_amount": event.TargetAmount.String(),
		})
	}
}
