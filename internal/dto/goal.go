package dto

import (
	"time"

	"github.com/dhanarakshak/goals-backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateGoalRequest defines the payload for creating a goal.
type CreateGoalRequest struct {
	Name         string              `json:"name" binding:"required"`
	GoalType     domain.GoalType     `json:"goalType" binding:"required,oneof=SAVINGS DEBT_PAYOFF EXPENSE_REDUCTION INVESTMENT EMERGENCY_FUND CUSTOM"`
	TargetAmount decimal.Decimal     `json:"targetAmount" binding:"required,decimalgt0"`
	StartDate    *time.Time          `json:"startDate"` // Defaults to today when omitted
	TargetDate   time.Time           `json:"targetDate" binding:"required"`
	Category     string              `json:"category"`
	Description  string              `json:"description"`
	Priority     domain.GoalPriority `json:"priority" binding:"omitempty,oneof=LOW MEDIUM HIGH"`
}

// UpdateGoalRequest defines the mutable attributes of a goal. Status changes
// go through UpdateGoalStatusRequest; CurrentAmount is never client-writable.
type UpdateGoalRequest struct {
	Name         *string              `json:"name"`
	TargetAmount *decimal.Decimal     `json:"targetAmount"`
	TargetDate   *time.Time           `json:"targetDate"`
	Category     *string              `json:"category"`
	Description  *string              `json:"description"`
	Priority     *domain.GoalPriority `json:"priority"`
}

// UpdateGoalStatusRequest carries a lifecycle transition.
type UpdateGoalStatusRequest struct {
	Status domain.GoalStatus `json:"status" binding:"required,oneof=ACTIVE COMPLETED PAUSED CANCELLED"`
}

// GoalResponse defines the data returned for a goal.
type GoalResponse struct {
	GoalID        string              `json:"goalID"`
	Name          string              `json:"name"`
	GoalType      domain.GoalType     `json:"goalType"`
	TargetAmount  decimal.Decimal     `json:"targetAmount"`
	CurrentAmount decimal.Decimal     `json:"currentAmount"`
	Progress      decimal.Decimal     `json:"progress"` // Percentage, clamped at >= 0 for display
	StartDate     time.Time           `json:"startDate"`
	TargetDate    time.Time           `json:"targetDate"`
	Category      string              `json:"category,omitempty"`
	Description   string              `json:"description,omitempty"`
	Status        domain.GoalStatus   `json:"status"`
	Priority      domain.GoalPriority `json:"priority"`
	CreatedAt     time.Time           `json:"createdAt"`
}

// GoalDetailsResponse combines a goal with its recent ledger history and
// advisory recommendations.
type GoalDetailsResponse struct {
	Goal            GoalResponse           `json:"goal"`
	Contributions   []ContributionResponse `json:"contributions"`
	Milestones      []MilestoneResponse    `json:"milestones"`
	Recommendations *domain.Recommendation `json:"recommendations,omitempty"`
}

// ListGoalsParams holds parameters for listing goals.
type ListGoalsParams struct {
	Limit     int     `form:"limit"`
	NextToken *string `form:"nextToken"`
}

// ListGoalsResponse is a token-paginated page of goals.
type ListGoalsResponse struct {
	Goals     []GoalResponse `json:"goals"`
	NextToken *string        `json:"nextToken,omitempty"`
}

// RecomputeProgressResponse reports the outcome of a ledger reconciliation.
type RecomputeProgressResponse struct {
	GoalID       string          `json:"goalID"`
	CachedAmount decimal.Decimal `json:"cachedAmount"` // Value before reconciliation
	LedgerSum    decimal.Decimal `json:"ledgerSum"`
	Repaired     bool            `json:"repaired"`
	Status       string          `json:"status"`
}

// ToGoalResponse converts a domain.Goal to GoalResponse DTO.
func ToGoalResponse(g *domain.Goal) GoalResponse {
	// Display progress is clamped at zero; the ledger itself may legitimately
	// drive the cached amount negative on over-correction.
	displayAmount := g.CurrentAmount
	if displayAmount.IsNegative() {
		displayAmount = decimal.Zero
	}
	progress := decimal.Zero
	if g.TargetAmount.IsPositive() {
		progress = displayAmount.Div(g.TargetAmount).Mul(decimal.NewFromInt(100)).Round(2)
	}
	return GoalResponse{
		GoalID:        g.GoalID,
		Name:          g.Name,
		GoalType:      g.GoalType,
		TargetAmount:  g.TargetAmount,
		CurrentAmount: g.CurrentAmount,
		Progress:      progress,
		StartDate:     g.StartDate,
		TargetDate:    g.TargetDate,
		Category:      g.Category,
		Description:   g.Description,
		Status:        g.Status,
		Priority:      g.Priority,
		CreatedAt:     g.CreatedAt,
	}
}

// ToGoalResponses converts a slice of domain.Goal to []GoalResponse.
func ToGoalResponses(goals []domain.Goal) []GoalResponse {
	responses := make([]GoalResponse, len(goals))
	for i := range goals {
		responses[i] = ToGoalResponse(&goals[i])
	}
	return responses
}
