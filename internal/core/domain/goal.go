package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// GoalType classifies what a financial goal is saving towards.
type GoalType string

const (
	GoalTypeSavings          GoalType = "SAVINGS"
	GoalTypeDebtPayoff       GoalType = "DEBT_PAYOFF"
	GoalTypeExpenseReduction GoalType = "EXPENSE_REDUCTION"
	GoalTypeInvestment       GoalType = "INVESTMENT"
	GoalTypeEmergencyFund    GoalType = "EMERGENCY_FUND"
	GoalTypeCustom           GoalType = "CUSTOM"
)

// IsValid reports whether t is one of the known goal types.
func (t GoalType) IsValid() bool {
	switch t {
	case GoalTypeSavings, GoalTypeDebtPayoff, GoalTypeExpenseReduction,
		GoalTypeInvestment, GoalTypeEmergencyFund, GoalTypeCustom:
		return true
	}
	return false
}

// GoalStatus indicates where a goal is in its lifecycle.
type GoalStatus string

const (
	GoalStatusActive    GoalStatus = "ACTIVE"
	GoalStatusCompleted GoalStatus = "COMPLETED"
	GoalStatusPaused    GoalStatus = "PAUSED"
	GoalStatusCancelled GoalStatus = "CANCELLED"
)

// IsTerminal reports whether no further lifecycle transition is allowed from s.
func (s GoalStatus) IsTerminal() bool {
	return s == GoalStatusCompleted || s == GoalStatusCancelled
}

// CanTransitionTo applies the lifecycle transition table:
// ACTIVE -> {COMPLETED, PAUSED, CANCELLED}, PAUSED -> {ACTIVE, CANCELLED}.
// COMPLETED and CANCELLED are terminal.
func (s GoalStatus) CanTransitionTo(next GoalStatus) bool {
	switch s {
	case GoalStatusActive:
		return next == GoalStatusCompleted || next == GoalStatusPaused || next == GoalStatusCancelled
	case GoalStatusPaused:
		return next == GoalStatusActive || next == GoalStatusCancelled
	}
	return false
}

// GoalPriority orders goals for the caller's attention.
type GoalPriority string

const (
	PriorityLow    GoalPriority = "LOW"
	PriorityMedium GoalPriority = "MEDIUM"
	PriorityHigh   GoalPriority = "HIGH"
)

// IsValid reports whether p is one of the known priorities.
func (p GoalPriority) IsValid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// Goal represents a tracked financial target. CurrentAmount is a materialized
// cache of the contribution ledger's running sum; the ledger is the source of
// truth and the cache is only ever written from it (incrementally on append,
// or wholesale during reconciliation).
type Goal struct {
	GoalID        string          `json:"goalID"`  // Primary Key (e.g., UUID)
	UserID        string          `json:"userID"`  // Owning user (Not Null)
	Name          string          `json:"name"`    // User-defined name
	GoalType      GoalType        `json:"goalType"`
	TargetAmount  decimal.Decimal `json:"targetAmount"`  // Positive
	CurrentAmount decimal.Decimal `json:"currentAmount"` // Derived from ledger; may go below zero on over-correction
	StartDate     time.Time       `json:"startDate"`
	TargetDate    time.Time       `json:"targetDate"` // >= StartDate
	Category      string          `json:"category"`   // Nullable free text
	Description   string          `json:"description"`
	Status        GoalStatus      `json:"status"`
	Priority      GoalPriority    `json:"priority"`
	AuditFields
}

// IsReached reports whether the cached progress has met the target.
func (g *Goal) IsReached() bool {
	return g.CurrentAmount.GreaterThanOrEqual(g.TargetAmount)
}
