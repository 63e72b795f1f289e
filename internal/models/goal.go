package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// GoalType mirrors domain.GoalType for persistence.
type GoalType string

// GoalStatus mirrors domain.GoalStatus for persistence.
type GoalStatus string

// GoalPriority mirrors domain.GoalPriority for persistence.
type GoalPriority string

// Goal represents a row in the goals table. CurrentAmount is the cached ledger
// sum; it is only ever written inside the same transaction as the ledger row
// that moved it, or by the reconciliation sweep.
type Goal struct {
	GoalID        string          `db:"goal_id"`
	UserID        string          `db:"user_id"`
	Name          string          `db:"name"`
	GoalType      GoalType        `db:"goal_type"`
	TargetAmount  decimal.Decimal `db:"target_amount"`
	CurrentAmount decimal.Decimal `db:"current_amount"`
	StartDate     time.Time       `db:"start_date"`
	TargetDate    time.Time       `db:"target_date"`
	Category      string          `db:"category"` // Nullable
	Description   string          `db:"description"`
	Status        GoalStatus      `db:"status"`
	Priority      GoalPriority    `db:"priority"`
	AuditFields
}
