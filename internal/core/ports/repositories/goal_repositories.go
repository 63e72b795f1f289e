package repositories

import (
	"context"
	"time"

	"github.com/dhanarakshak/goals-backend/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// GoalReader defines read operations for goal data
type GoalReader interface {
	// FindGoalByID retrieves a specific goal by its unique identifier.
	FindGoalByID(ctx context.Context, goalID string) (*domain.Goal, error)

	// ListGoalsByUser retrieves a paginated list of goals for a user using token-based pagination.
	// It returns the goals, a token for the next page, and an error.
	ListGoalsByUser(ctx context.Context, userID string, limit int, nextToken *string) ([]domain.Goal, *string, error)

	// ListActiveGoals retrieves every active goal; used by the reminder sweep.
	ListActiveGoals(ctx context.Context) ([]domain.Goal, error)

	// GetGoalStats aggregates counts, totals and per-type breakdown for a user.
	GetGoalStats(ctx context.Context, userID string) (*domain.GoalStats, error)
}

// GoalWriter defines write operations for goal data
type GoalWriter interface {
	// SaveGoal persists a new goal.
	SaveGoal(ctx context.Context, goal domain.Goal) error

	// UpdateGoal updates a goal's mutable attributes (not status, not progress).
	UpdateGoal(ctx context.Context, goal domain.Goal) error

	// UpdateGoalStatus records a lifecycle transition. Legality is checked by
	// the service; the repository only persists.
	UpdateGoalStatus(ctx context.Context, goalID string, status domain.GoalStatus, updatedByUserID string, updatedAt time.Time) error

	// DeleteGoalCascade removes a goal and all of its milestones, contributions
	// and reminders in one transaction. Ownership of children is exclusive, so
	// the cascade is total.
	DeleteGoalCascade(ctx context.Context, goalID string) error
}

// GoalTransactionSupport defines the operations that make up the per-goal
// atomic unit. All of them require an open transaction.
type GoalTransactionSupport interface {
	// FindGoalByIDForUpdate selects the goal row and locks it for the duration
	// of the transaction, serializing concurrent contributions to the same goal.
	FindGoalByIDForUpdate(ctx context.Context, tx pgx.Tx, goalID string) (*domain.Goal, error)

	// UpdateGoalProgressInTx writes the cached current amount and status within
	// the given transaction. This is the only writer of current_amount.
	UpdateGoalProgressInTx(ctx context.Context, tx pgx.Tx, goalID string, currentAmount decimal.Decimal, status domain.GoalStatus, updatedByUserID string, updatedAt time.Time) error
}

// GoalRepositoryFacade combines all goal-related repository interfaces
// This is a facade for clients that need access to all operations
type GoalRepositoryFacade interface {
	GoalReader
	GoalWriter
	GoalTransactionSupport
}

// GoalRepositoryWithTx extends GoalRepositoryFacade with transaction capabilities
type GoalRepositoryWithTx interface {
	GoalRepositoryFacade
	TransactionManager
}
