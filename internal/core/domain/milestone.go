package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Milestone is a sub-target within a goal's progress. Its target amount is
// intentionally not cross-validated against the goal's own target; the source
// schema allows it to be lower, equal or higher.
type Milestone struct {
	MilestoneID  string          `json:"milestoneID"` // Primary Key (e.g., UUID)
	GoalID       string          `json:"goalID"`      // FK -> goals.goal_id (Not Null)
	Name         string          `json:"name"`
	TargetAmount decimal.Decimal `json:"targetAmount"` // Positive
	TargetDate   time.Time       `json:"targetDate"`
	Achieved     bool            `json:"achieved"`
	AchievedDate *time.Time      `json:"achievedDate,omitempty"` // Set exactly once, on achievement
	AuditFields
}
