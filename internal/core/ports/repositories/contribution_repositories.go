package repositories

import (
	"context"
	"time"

	"github.com/dhanarakshak/goals-backend/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// ContributionReader defines read operations for a goal's ledger
type ContributionReader interface {
	// ListContributionsByGoal retrieves a paginated list of ledger entries for
	// a goal, newest first, using token-based pagination.
	ListContributionsByGoal(ctx context.Context, goalID string, limit int, nextToken *string) ([]domain.Contribution, *string, error)

	// FindLatestContributionDate returns the most recent effective date in the
	// goal's ledger, or nil when the ledger is empty.
	FindLatestContributionDate(ctx context.Context, goalID string) (*time.Time, error)
}

// ContributionTransactionSupport defines ledger operations that participate in
// the per-goal atomic unit.
type ContributionTransactionSupport interface {
	// SaveContributionInTx appends a ledger entry within the given transaction.
	// The ledger is append-only; there is deliberately no update or delete.
	SaveContributionInTx(ctx context.Context, tx pgx.Tx, contribution domain.Contribution) error

	// SumContributionsInTx recomputes the full ledger sum for a goal within the
	// given transaction; used by reconciliation, never by the hot path.
	SumContributionsInTx(ctx context.Context, tx pgx.Tx, goalID string) (decimal.Decimal, error)
}

// ContributionRepositoryFacade combines all ledger repository interfaces
type ContributionRepositoryFacade interface {
	ContributionReader
	ContributionTransactionSupport
}
