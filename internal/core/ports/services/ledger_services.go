package services

import (
	"context"

	"github.com/dhanarakshak/goals-backend/internal/dto"
)

// LedgerWriterSvc defines the contribution append operation
type LedgerWriterSvc interface {
	// AddContribution appends a ledger entry, updates the goal's cached
	// progress, evaluates milestones and auto-completes the goal when the
	// target is reached, all as one atomic unit scoped to the goal.
	AddContribution(ctx context.Context, goalID string, req dto.AddContributionRequest, requestingUserID string) (*dto.AddContributionResponse, error)
}

// LedgerReaderSvc defines read operations for a goal's ledger
type LedgerReaderSvc interface {
	// ListContributions retrieves a paginated list of a goal's ledger entries.
	ListContributions(ctx context.Context, goalID string, requestingUserID string, params dto.ListContributionsParams) (*dto.ListContributionsResponse, error)
}

// LedgerSvcFacade combines all ledger service interfaces
type LedgerSvcFacade interface {
	LedgerWriterSvc
	LedgerReaderSvc
}
