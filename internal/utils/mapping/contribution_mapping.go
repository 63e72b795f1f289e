package mapping

import (
	"github.com/dhanarakshak/goals-backend/internal/core/domain"
	"github.com/dhanarakshak/goals-backend/internal/models"
)

// ToModelContribution converts a domain Contribution to a model Contribution
func ToModelContribution(d domain.Contribution) models.Contribution {
	return models.Contribution{
		ContributionID:   d.ContributionID,
		GoalID:           d.GoalID,
		Amount:           d.Amount,
		ContributionDate: d.ContributionDate,
		TxnRef:           d.TxnRef,
		Notes:            d.Notes,
		AuditFields:      ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainContribution converts a model Contribution to a domain Contribution
func ToDomainContribution(m models.Contribution) domain.Contribution {
	return domain.Contribution{
		ContributionID:   m.ContributionID,
		GoalID:           m.GoalID,
		Amount:           m.Amount,
		ContributionDate: m.ContributionDate,
		TxnRef:           m.TxnRef,
		Notes:            m.Notes,
		AuditFields:      ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainContributions converts a slice of model Contributions to domain Contributions
func ToDomainContributions(ms []models.Contribution) []domain.Contribution {
	contributions := make([]domain.Contribution, 0, len(ms))
	for _, m := range ms {
		contributions = append(contributions, ToDomainContribution(m))
	}
	return contributions
}
