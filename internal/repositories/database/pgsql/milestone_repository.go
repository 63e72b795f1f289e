package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dhanarakshak/goals-backend/internal/apperrors"
	"github.com/dhanarakshak/goals-backend/internal/core/domain"
	portsrepo "github.com/dhanarakshak/goals-backend/internal/core/ports/repositories"
	"github.com/dhanarakshak/goals-backend/internal/models"
	"github.com/dhanarakshak/goals-backend/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxMilestoneRepository struct {
	BaseRepository
}

// newPgxMilestoneRepository creates a new repository for milestone data.
func newPgxMilestoneRepository(pool *pgxpool.Pool) portsrepo.MilestoneRepositoryFacade {
	return &PgxMilestoneRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxMilestoneRepository implements portsrepo.MilestoneRepositoryFacade
var _ portsrepo.MilestoneRepositoryFacade = (*PgxMilestoneRepository)(nil)

const milestoneColumns = `milestone_id, goal_id, name, target_amount, target_date, achieved, achieved_date, created_at, created_by, last_updated_at, last_updated_by`

func scanMilestone(row pgx.Row) (models.Milestone, error) {
	var m models.Milestone
	err := row.Scan(
		&m.MilestoneID,
		&m.GoalID,
		&m.Name,
		&m.TargetAmount,
		&m.TargetDate,
		&m.Achieved,
		&m.AchievedDate,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// SaveMilestone inserts a new milestone.
func (r *PgxMilestoneRepository) SaveMilestone(ctx context.Context, milestone domain.Milestone) error {
	modelMilestone := mapping.ToModelMilestone(milestone)

	query := `
		INSERT INTO milestones (` + milestoneColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := r.Pool.Exec(ctx, query,
		modelMilestone.MilestoneID,
		modelMilestone.GoalID,
		modelMilestone.Name,
		modelMilestone.TargetAmount,
		modelMilestone.TargetDate,
		modelMilestone.Achieved,
		modelMilestone.AchievedDate,
		modelMilestone.CreatedAt,
		modelMilestone.CreatedBy,
		modelMilestone.LastUpdatedAt,
		modelMilestone.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: milestone with ID %s already exists", apperrors.ErrDuplicate, modelMilestone.MilestoneID)
		}
		return fmt.Errorf("failed to save milestone %s: %w", modelMilestone.MilestoneID, err)
	}
	return nil
}

// FindMilestoneByID retrieves a milestone by its ID.
func (r *PgxMilestoneRepository) FindMilestoneByID(ctx context.Context, milestoneID string) (*domain.Milestone, error) {
	query := `
		SELECT ` + milestoneColumns + `
		FROM milestones
		WHERE milestone_id = $1;
	`
	modelMilestone, err := scanMilestone(r.Pool.QueryRow(ctx, query, milestoneID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find milestone by ID %s: %w", milestoneID, err)
	}

	domainMilestone := mapping.ToDomainMilestone(modelMilestone)
	return &domainMilestone, nil
}

// ListMilestonesByGoal retrieves all milestones for a goal ordered by target
// amount ascending.
func (r *PgxMilestoneRepository) ListMilestonesByGoal(ctx context.Context, goalID string) ([]domain.Milestone, error) {
	query := `
		SELECT ` + milestoneColumns + `
		FROM milestones
		WHERE goal_id = $1
		ORDER BY target_amount ASC, milestone_id;
	`
	rows, err := r.Pool.Query(ctx, query, goalID)
	if err != nil {
		return nil, fmt.Errorf("failed to query milestones for goal %s: %w", goalID, err)
	}
	defer rows.Close()

	modelMilestones := []models.Milestone{}
	for rows.Next() {
		m, scanErr := scanMilestone(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan milestone row for goal %s: %w", goalID, scanErr)
		}
		modelMilestones = append(modelMilestones, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating milestone rows for goal %s: %w", goalID, err)
	}

	return mapping.ToDomainMilestones(modelMilestones), nil
}

// OverrideAchievement sets or reverts achievement state on a milestone. The
// normal achievement path runs inside the contribution transaction; this is
// the administrative correction path only.
func (r *PgxMilestoneRepository) OverrideAchievement(ctx context.Context, milestoneID string, achieved bool, achievedDate *time.Time, updatedByUserID string, updatedAt time.Time) error {
	query := `
		UPDATE milestones
		SET achieved = $2, achieved_date = $3, last_updated_at = $4, last_updated_by = $5
		WHERE milestone_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, milestoneID, achieved, achievedDate, updatedAt, updatedByUserID)
	if err != nil {
		return fmt.Errorf("failed to override achievement for milestone %s: %w", milestoneID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// FindUnachievedMilestonesInTx retrieves unachieved milestones for a goal,
// ordered by target amount ascending, within the given transaction. The goal
// row is already locked by the caller, so no FOR UPDATE is needed here.
func (r *PgxMilestoneRepository) FindUnachievedMilestonesInTx(ctx context.Context, tx pgx.Tx, goalID string) ([]domain.Milestone, error) {
	query := `
		SELECT ` + milestoneColumns + `
		FROM milestones
		WHERE goal_id = $1 AND achieved = FALSE
		ORDER BY target_amount ASC, milestone_id;
	`
	rows, err := tx.Query(ctx, query, goalID)
	if err != nil {
		return nil, fmt.Errorf("failed to query unachieved milestones for goal %s: %w", goalID, err)
	}
	defer rows.Close()

	modelMilestones := []models.Milestone{}
	for rows.Next() {
		m, scanErr := scanMilestone(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan unachieved milestone row for goal %s: %w", goalID, scanErr)
		}
		modelMilestones = append(modelMilestones, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating unachieved milestone rows for goal %s: %w", goalID, err)
	}

	return mapping.ToDomainMilestones(modelMilestones), nil
}

// MarkMilestonesAchievedInTx flips the given milestones to achieved with the
// supplied effective date. The achieved = FALSE guard keeps already-achieved
// rows and their original achieved_date untouched.
func (r *PgxMilestoneRepository) MarkMilestonesAchievedInTx(ctx context.Context, tx pgx.Tx, milestoneIDs []string, achievedDate time.Time, updatedByUserID string, updatedAt time.Time) error {
	if len(milestoneIDs) == 0 {
		return nil
	}

	query := `
		UPDATE milestones
		SET achieved = TRUE, achieved_date = $2, last_updated_at = $3, last_updated_by = $4
		WHERE milestone_id = ANY($1) AND achieved = FALSE;
	`
	_, err := tx.Exec(ctx, query, milestoneIDs, achievedDate, updatedAt, updatedByUserID)
	if err != nil {
		return fmt.Errorf("failed to mark milestones achieved: %w", err)
	}
	return nil
}
