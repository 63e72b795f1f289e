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

type PgxContributionRepository struct {
	BaseRepository
}

// newPgxContributionRepository creates a new repository for the goal
// contribution ledger.
func newPgxContributionRepository(pool *pgxpool.Pool) portsrepo.ContributionRepositoryFacade {
	return &PgxContributionRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxContributionRepository implements portsrepo.ContributionRepositoryFacade
var _ portsrepo.ContributionRepositoryFacade = (*PgxContributionRepository)(nil)

const contributionColumns = `contribution_id, goal_id, amount, contribution_date, txn_ref, notes, created_at, created_by, last_updated_at, last_updated_by`

func scanContribution(row pgx.Row) (models.Contribution, error) {
	var m models.Contribution
	var txnRef sql.NullString
	var notes sql.NullString
	err := row.Scan(
		&m.ContributionID,
		&m.GoalID,
		&m.Amount,
		&m.ContributionDate,
		&txnRef,
		&notes,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return models.Contribution{}, err
	}
	if txnRef.Valid {
		m.TxnRef = txnRef.String
	}
	if notes.Valid {
		m.Notes = notes.String
	}
	return m, nil
}

// SaveContributionInTx appends a ledger entry within the given transaction.
// There is deliberately no update or delete for ledger rows.
func (r *PgxContributionRepository) SaveContributionInTx(ctx context.Context, tx pgx.Tx, contribution domain.Contribution) error {
	modelContribution := mapping.ToModelContribution(contribution)

	query := `
		INSERT INTO goal_contributions (` + contributionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	var txnRef sql.NullString
	if modelContribution.TxnRef != "" {
		txnRef = sql.NullString{String: modelContribution.TxnRef, Valid: true}
	}
	var notes sql.NullString
	if modelContribution.Notes != "" {
		notes = sql.NullString{String: modelContribution.Notes, Valid: true}
	}

	_, err := tx.Exec(ctx, query,
		modelContribution.ContributionID,
		modelContribution.GoalID,
		modelContribution.Amount,
		modelContribution.ContributionDate,
		txnRef,
		notes,
		modelContribution.CreatedAt,
		modelContribution.CreatedBy,
		modelContribution.LastUpdatedAt,
		modelContribution.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: contribution with ID %s already exists", apperrors.ErrDuplicate, modelContribution.ContributionID)
		}
		return fmt.Errorf("failed to save contribution %s: %w", modelContribution.ContributionID, err)
	}
	return nil
}

// SumContributionsInTx recomputes the full ledger sum for a goal within the
// given transaction. The reconciliation path uses this; the hot path never
// does.
func (r *PgxContributionRepository) SumContributionsInTx(ctx context.Context, tx pgx.Tx, goalID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM goal_contributions
		WHERE goal_id = $1;
	`
	var sum decimal.Decimal
	if err := tx.QueryRow(ctx, query, goalID).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum contributions for goal %s: %w", goalID, err)
	}
	return sum, nil
}

// ListContributionsByGoal retrieves a paginated list of ledger entries for a
// goal, newest first, using token-based pagination.
func (r *PgxContributionRepository) ListContributionsByGoal(ctx context.Context, goalID string, limit int, nextToken *string) ([]domain.Contribution, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// One extra row decides whether a next page exists.
	fetchLimit := limit + 1

	baseQuery := `
		SELECT ` + contributionColumns + `
		FROM goal_contributions
		WHERE goal_id = $1
	`
	// Stable ordering: effective date first, insertion time as tie-breaker.
	orderByClause := `ORDER BY contribution_date DESC, created_at DESC`

	var rows pgx.Rows
	var err error
	args := []interface{}{goalID}

	if nextToken != nil && *nextToken != "" {
		lastDate, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}

		cursorClause := `AND (contribution_date, created_at) < ($2, $3)`
		args = append(args, lastDate, lastCreatedAt)

		query := baseQuery + " " + cursorClause + " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
		args = append(args, fetchLimit)
		rows, err = r.Pool.Query(ctx, query, args...)
	} else {
		query := baseQuery + " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
		args = append(args, fetchLimit)
		rows, err = r.Pool.Query(ctx, query, args...)
	}

	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query contributions for goal "+goalID, err)
	}
	defer rows.Close()

	modelContributions := make([]models.Contribution, 0, fetchLimit)
	for rows.Next() {
		m, scanErr := scanContribution(rows)
		if scanErr != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan contribution row for goal "+goalID, scanErr)
		}
		modelContributions = append(modelContributions, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating contribution rows for goal "+goalID, err)
	}

	var nextTokenVal *string
	results := modelContributions
	if len(modelContributions) > limit {
		last := modelContributions[limit-1]
		newToken := pagination.EncodeToken(last.ContributionDate, last.CreatedAt)
		nextTokenVal = &newToken
		results = modelContributions[:limit]
	}

	return mapping.ToDomainContributions(results), nextTokenVal, nil
}

// FindLatestContributionDate returns the most recent effective date in the
// goal's ledger, or nil when the ledger is empty.
func (r *PgxContributionRepository) FindLatestContributionDate(ctx context.Context, goalID string) (*time.Time, error) {
	query := `
		SELECT MAX(contribution_date)
		FROM goal_contributions
		WHERE goal_id = $1;
	`
	var latest sql.NullTime
	if err := r.Pool.QueryRow(ctx, query, goalID).Scan(&latest); err != nil {
		return nil, fmt.Errorf("failed to find latest contribution date for goal %s: %w", goalID, err)
	}
	if !latest.Valid {
		return nil, nil
	}
	return &latest.Time, nil
}
