package repositories

import (
	"context"
	"time"

	"github.com/dhanarakshak/goals-backend/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// MilestoneReader defines read operations for milestone data
type MilestoneReader interface {
	// FindMilestoneByID retrieves a specific milestone.
	FindMilestoneByID(ctx context.Context, milestoneID string) (*domain.Milestone, error)

	// ListMilestonesByGoal retrieves all milestones for a goal ordered by
	// target amount ascending.
	ListMilestonesByGoal(ctx context.Context, goalID string) ([]domain.Milestone, error)
}

// MilestoneWriter defines write operations for milestone data
type MilestoneWriter interface {
	// SaveMilestone persists a new milestone.
	SaveMilestone(ctx context.Context, milestone domain.Milestone) error

	// OverrideAchievement sets or reverts achievement state. This is the
	// administrative correction path; normal achievement happens inside the
	// contribution transaction via MarkMilestonesAchievedInTx.
	OverrideAchievement(ctx context.Context, milestoneID string, achieved bool, achievedDate *time.Time, updatedByUserID string, updatedAt time.Time) error
}

// MilestoneTransactionSupport defines evaluator operations that participate in
// the per-goal atomic unit.
type MilestoneTransactionSupport interface {
	// FindUnachievedMilestonesInTx retrieves unachieved milestones for a goal,
	// ordered by target amount ascending, within the given transaction.
	FindUnachievedMilestonesInTx(ctx context.Context, tx pgx.Tx, goalID string) ([]domain.Milestone, error)

	// MarkMilestonesAchievedInTx flips the given milestones to achieved with
	// the supplied effective date. Already-achieved rows are left untouched.
	MarkMilestonesAchievedInTx(ctx context.Context, tx pgx.Tx, milestoneIDs []string, achievedDate time.Time, updatedByUserID string, updatedAt time.Time) error
}

// MilestoneRepositoryFacade combines all milestone repository interfaces
type MilestoneRepositoryFacade interface {
	MilestoneReader
	MilestoneWriter
	MilestoneTransactionSupport
}
