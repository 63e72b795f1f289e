package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Contribution is one entry in a goal's append-only ledger. A positive amount
// increases progress; a negative amount records a correction or withdrawal.
// Entries are never edited in place; corrections are new offsetting entries.
type Contribution struct {
	ContributionID   string          `json:"contributionID"` // Primary Key (e.g., UUID)
	GoalID           string          `json:"goalID"`         // FK -> goals.goal_id (Not Null)
	Amount           decimal.Decimal `json:"amount"`         // Non-zero
	ContributionDate time.Time       `json:"contributionDate"`
	TxnRef           string          `json:"txnRef"` // Weak reference to an external transaction record; informational only
	Notes            string          `json:"notes"`  // Nullable
	AuditFields
}
