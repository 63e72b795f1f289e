package services

import (
	"context"

	"github.com/dhanarakshak/goals-backend/internal/core/domain"
	"github.com/dhanarakshak/goals-backend/internal/dto"
)

// GoalReaderSvc defines read operations for goal data
type GoalReaderSvc interface {
	// GetGoalByID retrieves a goal owned by the requesting user.
	GetGoalByID(ctx context.Context, goalID string, requestingUserID string) (*domain.Goal, error)

	// ListGoals retrieves a paginated list of the user's goals.
	ListGoals(ctx context.Context, userID string, params dto.ListGoalsParams) (*dto.ListGoalsResponse, error)

	// GetGoalStats aggregates the user's goal portfolio for the dashboard.
	GetGoalStats(ctx context.Context, userID string) (*domain.GoalStats, error)

	// GetGoalDetails retrieves a goal with recent contributions, milestones
	// and advisory recommendations.
	GetGoalDetails(ctx context.Context, goalID string, requestingUserID string) (*dto.GoalDetailsResponse, error)
}

// GoalWriterSvc defines lifecycle operations for goal data
type GoalWriterSvc interface {
	// CreateGoal validates and persists a new goal with zero progress.
	CreateGoal(ctx context.Context, req dto.CreateGoalRequest, creatorUserID string) (*domain.Goal, error)

	// UpdateGoal updates a goal's mutable attributes.
	UpdateGoal(ctx context.Context, goalID string, req dto.UpdateGoalRequest, requestingUserID string) (*domain.Goal, error)

	// UpdateStatus applies a lifecycle transition per the goal state machine.
	UpdateStatus(ctx context.Context, goalID string, newStatus domain.GoalStatus, requestingUserID string) (*domain.Goal, error)

	// DeleteGoal removes a goal together with its milestones, contributions
	// and reminders.
	DeleteGoal(ctx context.Context, goalID string, requestingUserID string) error
}

// GoalReconcilerSvc defines the ledger reconciliation operation
type GoalReconcilerSvc interface {
	// RecomputeProgress recomputes the cached progress from the ledger sum,
	// repairs drift (ledger is authoritative) and re-evaluates completion and
	// milestones. Idempotent when the ledger has not changed.
	RecomputeProgress(ctx context.Context, goalID string, requestingUserID string) (*dto.RecomputeProgressResponse, error)
}

// GoalSvcFacade combines all goal-related service interfaces
// This is a facade for clients that need access to all operations
type GoalSvcFacade interface {
	GoalReaderSvc
	GoalWriterSvc
	GoalReconcilerSvc
}
