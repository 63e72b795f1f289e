package dto

import (
	"time"

	"github.com/dhanarakshak/goals-backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AddContributionRequest defines the payload for appending a ledger entry.
// Amount must be non-zero; a negative amount records a correction/withdrawal.
type AddContributionRequest struct {
	Amount           decimal.Decimal `json:"amount" binding:"required"`
	ContributionDate *time.Time      `json:"contributionDate"` // Defaults to today when omitted
	TxnRef           string          `json:"txnRef"`
	Notes            string          `json:"notes"`
}

// ContributionResponse defines the data returned for a ledger entry.
type ContributionResponse struct {
	ContributionID   string          `json:"contributionID"`
	GoalID           string          `json:"goalID"`
	Amount           decimal.Decimal `json:"amount"`
	ContributionDate time.Time       `json:"contributionDate"`
	TxnRef           string          `json:"txnRef,omitempty"`
	Notes            string          `json:"notes,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
}

// AddContributionResponse reports the post-append goal state alongside the
// new entry, so callers see completion and milestone effects in one response.
type AddContributionResponse struct {
	Contribution       ContributionResponse `json:"contribution"`
	Goal               GoalResponse         `json:"goal"`
	MilestonesAchieved []MilestoneResponse  `json:"milestonesAchieved,omitempty"`
}

// ListContributionsParams holds parameters for listing a goal's ledger.
type ListContributionsParams struct {
	Limit     int     `form:"limit"`
	NextToken *string `form:"nextToken"`
}

// ListContributionsResponse is a token-paginated page of ledger entries.
type ListContributionsResponse struct {
	Contributions []ContributionResponse `json:"contributions"`
	NextToken     *string                `json:"nextToken,omitempty"`
}

// ToContributionResponse converts a domain.Contribution to its DTO.
func ToContributionResponse(c *domain.Contribution) ContributionResponse {
	return ContributionResponse{
		ContributionID:   c.ContributionID,
		GoalID:           c.GoalID,
		Amount:           c.Amount,
		ContributionDate: c.ContributionDate,
		TxnRef:           c.TxnRef,
		Notes:            c.Notes,
		CreatedAt:        c.CreatedAt,
	}
}

// ToContributionResponses converts a slice of domain.Contribution to DTOs.
func ToContributionResponses(cs []domain.Contribution) []ContributionResponse {
	responses := make([]ContributionResponse, len(cs))
	for i := range cs {
		responses[i] = ToContributionResponse(&cs[i])
	}
	return responses
}
