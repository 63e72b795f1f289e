package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Milestone represents a row in the milestones table.
type Milestone struct {
	MilestoneID  string          `db:"milestone_id"`
	GoalID       string          `db:"goal_id"`
	Name         string          `db:"name"`
	TargetAmount decimal.Decimal `db:"target_amount"`
	TargetDate   time.Time       `db:"target_date"`
	Achieved     bool            `db:"achieved"`
	AchievedDate *time.Time      `db:"achieved_date"` // Nullable
	AuditFields
}
