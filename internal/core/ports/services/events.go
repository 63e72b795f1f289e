package services

import (
	"context"

	"github.com/dhanarakshak/goals-backend/internal/core/domain"
)

// EventSink receives domain events emitted after the contribution transaction
// commits. Consumers include the reminder scheduler (milestone reminders) and
// the excluded notification/dashboard layers. Sinks must not block the caller
// for long and must tolerate redelivery.
type EventSink interface {
	// MilestoneAchieved is invoked once per milestone flipped by an evaluation.
	MilestoneAchieved(ctx context.Context, event domain.MilestoneAchievedEvent)

	// GoalCompleted is invoked when a goal reaches completed state.
	GoalCompleted(ctx context.Context, event domain.GoalCompletedEvent)
}
