package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MilestoneAchievedEvent is emitted once per milestone when the evaluator
// flips it to achieved. The evaluator never performs delivery itself.
type MilestoneAchievedEvent struct {
	GoalID        string          `json:"goalID"`
	MilestoneID   string          `json:"milestoneID"`
	MilestoneName string          `json:"milestoneName"`
	TargetAmount  decimal.Decimal `json:"targetAmount"`
	AchievedDate  time.Time       `json:"achievedDate"` // Contribution's effective date, not wall clock
}

// GoalCompletedEvent is emitted when a goal auto-completes on reaching its
// target, or when completion is recorded explicitly.
type GoalCompletedEvent struct {
	GoalID        string          `json:"goalID"`
	UserID        string          `json:"userID"`
	GoalName      string          `json:"goalName"`
	TargetAmount  decimal.Decimal `json:"targetAmount"`
	CurrentAmount decimal.Decimal `json:"currentAmount"`
	CompletedAt   time.Time       `json:"completedAt"`
}
