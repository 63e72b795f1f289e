package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Contribution represents a row in the goal_contributions table. Rows are
// append-only; corrections land as new rows with negative amounts.
type Contribution struct {
	ContributionID   string          `db:"contribution_id"`
	GoalID           string          `db:"goal_id"`
	Amount           decimal.Decimal `db:"amount"`
	ContributionDate time.Time       `db:"contribution_date"`
	TxnRef           string          `db:"txn_ref"` // Weak reference, no FK
	Notes            string          `db:"notes"`   // Nullable
	AuditFields
}
