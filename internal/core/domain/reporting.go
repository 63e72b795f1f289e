package domain

import (
	"github.com/shopspring/decimal"
)

// GoalTypeCount aggregates active goals of one type for dashboard breakdowns.
type GoalTypeCount struct {
	GoalType    GoalType        `json:"goalType"`
	Count       int             `json:"count"`
	TotalTarget decimal.Decimal `json:"totalTarget"`
}

// GoalStats summarizes a user's goal portfolio.
type GoalStats struct {
	TotalGoals     int             `json:"totalGoals"`
	ActiveGoals    int             `json:"activeGoals"`
	CompletedGoals int             `json:"completedGoals"`
	TotalTarget    decimal.Decimal `json:"totalTarget"` // Active goals only
	TotalSaved     decimal.Decimal `json:"totalSaved"`  // Active goals only
	AvgProgressPct decimal.Decimal `json:"avgProgressPct"`
	TypeBreakdown  []GoalTypeCount `json:"typeBreakdown"`
}

// Recommendation is the advisory output computed for a goal from its ledger
// history and remaining runway. It never feeds back into goal state.
type Recommendation struct {
	MonthlyContribution decimal.Decimal `json:"monthlyContribution"` // Required to finish on time
	ProjectedCompletion *string         `json:"projectedCompletion"` // YYYY-MM-DD, nil when pace is unknown
	OnTrack             bool            `json:"onTrack"`
	Suggestions         []string        `json:"suggestions"`
}
