package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dhanarakshak/goals-backend/internal/apperrors"
	"github.com/dhanarakshak/goals-backend/internal/core/domain"
	portsrepo "github.com/dhanarakshak/goals-backend/internal/core/ports/repositories"
	"github.com/dhanarakshak/goals-backend/internal/models"
	"github.com/dhanarakshak/goals-backend/internal/utils/mapping"
	"github.com/dhanarakshak/goals-backend/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PgxGoalRepository struct {
	BaseRepository
}

// newPgxGoalRepository creates a new repository for goal data.
func newPgxGoalRepository(pool *pgxpool.Pool) portsrepo.GoalRepositoryWithTx {
	return &PgxGoalRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxGoalRepository implements portsrepo.GoalRepositoryWithTx
var _ portsrepo.GoalRepositoryWithTx = (*PgxGoalRepository)(nil)

const goalColumns = `goal_id, user_id, name, goal_type, target_amount, current_amount, start_date, target_date, category, description, status, priority, created_at, created_by, last_updated_at, last_updated_by`

// scanGoal scans a single goal row into a model. Category is nullable.
func scanGoal(row pgx.Row) (models.Goal, error) {
	var m models.Goal
	var category sql.NullString
	err := row.Scan(
		&m.GoalID,
		&m.UserID,
		&m.Name,
		&m.GoalType,
		&m.TargetAmount,
		&m.CurrentAmount,
		&m.StartDate,
		&m.TargetDate,
		&category,
		&m.Description,
		&m.Status,
		&m.Priority,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return models.Goal{}, err
	}
	if category.Valid {
		m.Category = category.String
	}
	return m, nil
}

// SaveGoal inserts a new goal.
func (r *PgxGoalRepository) SaveGoal(ctx context.Context, goal domain.Goal) error {
	modelGoal := mapping.ToModelGoal(goal)

	query := `
		INSERT INTO goals (` + goalColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
	`
	var category sql.NullString
	if modelGoal.Category != "" {
		category = sql.NullString{String: modelGoal.Category, Valid: true}
	}

	_, err := r.Pool.Exec(ctx, query,
		modelGoal.GoalID,
		modelGoal.UserID,
		modelGoal.Name,
		modelGoal.GoalType,
		modelGoal.TargetAmount,
		modelGoal.CurrentAmount,
		modelGoal.StartDate,
		modelGoal.TargetDate,
		category,
		modelGoal.Description,
		modelGoal.Status,
		modelGoal.Priority,
		modelGoal.CreatedAt,
		modelGoal.CreatedBy,
		modelGoal.LastUpdatedAt,
		modelGoal.LastUpdatedBy,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: goal with ID %s already exists", apperrors.ErrDuplicate, modelGoal.GoalID)
		}
		return fmt.Errorf("failed to save goal %s: %w", modelGoal.GoalID, err)
	}
	return nil
}

// FindGoalByID retrieves a goal by its ID.
func (r *PgxGoalRepository) FindGoalByID(ctx context.Context, goalID string) (*domain.Goal, error) {
	query := `
		SELECT ` + goalColumns + `
		FROM goals
		WHERE goal_id = $1;
	`
	modelGoal, err := scanGoal(r.Pool.QueryRow(ctx, query, goalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find goal by ID %s: %w", goalID, err)
	}

	domainGoal := mapping.ToDomainGoal(modelGoal)
	return &domainGoal, nil
}

// ListGoalsByUser retrieves a paginated list of goals for a user using token-based pagination.
// It returns the goals, a token for the next page, and an error.
func (r *PgxGoalRepository) ListGoalsByUser(ctx context.Context, userID string, limit int, nextToken *string) ([]domain.Goal, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// One extra row decides whether a next page exists.
	fetchLimit := limit + 1

	baseQuery := `
		SELECT ` + goalColumns + `
		FROM goals
		WHERE user_id = $1
	`
	// Ordering must be stable; goal_id breaks created_at ties and the cursor
	// compares the same tuple so boundary rows are never skipped.
	orderByClause := `ORDER BY created_at DESC, goal_id DESC`

	var rows pgx.Rows
	var err error
	args := []interface{}{userID}

	if nextToken != nil && *nextToken != "" {
		lastCreatedAt, lastGoalID, decodeErr := pagination.DecodeDateIDToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}

		cursorClause := `AND (created_at, goal_id) < ($2, $3)`
		args = append(args, lastCreatedAt, lastGoalID)

		query := baseQuery + " " + cursorClause + " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
		args = append(args, fetchLimit)
		rows, err = r.Pool.Query(ctx, query, args...)
	} else {
		query := baseQuery + " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
		args = append(args, fetchLimit)
		rows, err = r.Pool.Query(ctx, query, args...)
	}

	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query goals for user "+userID, err)
	}
	defer rows.Close()

	modelGoals := make([]models.Goal, 0, fetchLimit)
	for rows.Next() {
		m, scanErr := scanGoal(rows)
		if scanErr != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan goal row for user "+userID, scanErr)
		}
		modelGoals = append(modelGoals, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating goal rows for user "+userID, err)
	}

	var nextTokenVal *string
	results := modelGoals
	if len(modelGoals) > limit {
		lastGoal := modelGoals[limit-1]
		newToken := pagination.EncodeDateIDToken(lastGoal.CreatedAt, lastGoal.GoalID)
		nextTokenVal = &newToken
		results = modelGoals[:limit]
	}

	return mapping.ToDomainGoals(results), nextTokenVal, nil
}

// ListActiveGoals retrieves every active goal. The reminder sweep iterates
// this set, so ordering only needs to be deterministic.
func (r *PgxGoalRepository) ListActiveGoals(ctx context.Context) ([]domain.Goal, error) {
	query := `
		SELECT ` + goalColumns + `
		FROM goals
		WHERE status = 'ACTIVE'
		ORDER BY goal_id;
	`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query active goals: %w", err)
	}
	defer rows.Close()

	modelGoals := []models.Goal{}
	for rows.Next() {
		m, scanErr := scanGoal(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan active goal row: %w", scanErr)
		}
		modelGoals = append(modelGoals, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating active goal rows: %w", err)
	}

	return mapping.ToDomainGoals(modelGoals), nil
}

// GetGoalStats aggregates counts and totals for a user's goals. Active totals
// and progress come from the cached current_amount; reconciliation keeps that
// honest.
func (r *PgxGoalRepository) GetGoalStats(ctx context.Context, userID string) (*domain.GoalStats, error) {
	summaryQuery := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'ACTIVE'),
			COUNT(*) FILTER (WHERE status = 'COMPLETED'),
			COALESCE(SUM(target_amount) FILTER (WHERE status = 'ACTIVE'), 0),
			COALESCE(SUM(current_amount) FILTER (WHERE status = 'ACTIVE'), 0),
			COALESCE(AVG(
				CASE WHEN target_amount > 0 THEN LEAST(current_amount / target_amount * 100, 100) END
			) FILTER (WHERE status = 'ACTIVE'), 0)
		FROM goals
		WHERE user_id = $1;
	`
	stats := domain.GoalStats{}
	err := r.Pool.QueryRow(ctx, summaryQuery, userID).Scan(
		&stats.TotalGoals,
		&stats.ActiveGoals,
		&stats.CompletedGoals,
		&stats.TotalTarget,
		&stats.TotalSaved,
		&stats.AvgProgressPct,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate goal stats for user %s: %w", userID, err)
	}

	breakdownQuery := `
		SELECT goal_type, COUNT(*), COALESCE(SUM(target_amount), 0)
		FROM goals
		WHERE user_id = $1 AND status = 'ACTIVE'
		GROUP BY goal_type
		ORDER BY goal_type;
	`
	rows, err := r.Pool.Query(ctx, breakdownQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query goal type breakdown for user %s: %w", userID, err)
	}
	defer rows.Close()

	stats.TypeBreakdown = []domain.GoalTypeCount{}
	for rows.Next() {
		var tc domain.GoalTypeCount
		if scanErr := rows.Scan(&tc.GoalType, &tc.Count, &tc.TotalTarget); scanErr != nil {
			return nil, fmt.Errorf("failed to scan goal type breakdown row: %w", scanErr)
		}
		stats.TypeBreakdown = append(stats.TypeBreakdown, tc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating goal type breakdown rows: %w", err)
	}

	return &stats, nil
}

// UpdateGoal updates a goal's mutable attributes. Status and progress have
// their own dedicated update paths.
func (r *PgxGoalRepository) UpdateGoal(ctx context.Context, goal domain.Goal) error {
	modelGoal := mapping.ToModelGoal(goal)

	query := `
		UPDATE goals
		SET name = $2,
		    goal_type = $3,
		    target_amount = $4,
		    target_date = $5,
		    category = $6,
		    description = $7,
		    priority = $8,
		    last_updated_at = $9,
		    last_updated_by = $10
		WHERE goal_id = $1;
	`
	var category sql.NullString
	if modelGoal.Category != "" {
		category = sql.NullString{String: modelGoal.Category, Valid: true}
	}

	cmdTag, err := r.Pool.Exec(ctx, query,
		modelGoal.GoalID,
		modelGoal.Name,
		modelGoal.GoalType,
		modelGoal.TargetAmount,
		modelGoal.TargetDate,
		category,
		modelGoal.Description,
		modelGoal.Priority,
		modelGoal.LastUpdatedAt,
		modelGoal.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to execute update goal %s: %w", modelGoal.GoalID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpdateGoalStatus records a lifecycle transition.
func (r *PgxGoalRepository) UpdateGoalStatus(ctx context.Context, goalID string, status domain.GoalStatus, updatedByUserID string, updatedAt time.Time) error {
	query := `
		UPDATE goals
		SET status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE goal_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, goalID, status, updatedAt, updatedByUserID)
	if err != nil {
		return fmt.Errorf("failed to update status for goal %s: %w", goalID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("goal " + goalID + " not found for status update")
	}
	return nil
}

// DeleteGoalCascade removes a goal together with its milestones, contributions
// and reminders in one transaction. Children are owned exclusively by the
// goal, so nothing else can reference them.
func (r *PgxGoalRepository) DeleteGoalCascade(ctx context.Context, goalID string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	for _, query := range []string{
		`DELETE FROM reminders WHERE goal_id = $1;`,
		`DELETE FROM goal_contributions WHERE goal_id = $1;`,
		`DELETE FROM milestones WHERE goal_id = $1;`,
	} {
		if _, err := tx.Exec(ctx, query, goalID); err != nil {
			return apperrors.NewAppError(500, "failed to delete children of goal "+goalID, err)
		}
	}

	cmdTag, err := tx.Exec(ctx, `DELETE FROM goals WHERE goal_id = $1;`, goalID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete goal "+goalID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return r.Commit(ctx, tx)
}

// FindGoalByIDForUpdate selects the goal row and locks it for the duration of
// the transaction. Concurrent contributions to the same goal serialize here.
func (r *PgxGoalRepository) FindGoalByIDForUpdate(ctx context.Context, tx pgx.Tx, goalID string) (*domain.Goal, error) {
	query := `
		SELECT ` + goalColumns + `
		FROM goals
		WHERE goal_id = $1
		FOR UPDATE;
	`
	modelGoal, err := scanGoal(tx.QueryRow(ctx, query, goalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find goal %s for update: %w", goalID, err)
	}

	domainGoal := mapping.ToDomainGoal(modelGoal)
	return &domainGoal, nil
}

// UpdateGoalProgressInTx writes the cached current amount and status within
// the given transaction. This is the only writer of current_amount.
func (r *PgxGoalRepository) UpdateGoalProgressInTx(ctx context.Context, tx pgx.Tx, goalID string, currentAmount decimal.Decimal, status domain.GoalStatus, updatedByUserID string, updatedAt time.Time) error {
	query := `
		UPDATE goals
		SET current_amount = $2, status = $3, last_updated_at = $4, last_updated_by = $5
		WHERE goal_id = $1;
	`
	cmdTag, err := tx.Exec(ctx, query, goalID, currentAmount, status, updatedAt, updatedByUserID)
	if err != nil {
		return fmt.Errorf("failed to update progress for goal %s: %w", goalID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
