package mapping

import (
	"github.com/dhanarakshak/goals-backend/internal/core/domain"
	"github.com/dhanarakshak/goals-backend/internal/models"
)

// ToModelMilestone converts a domain Milestone to a model Milestone
func ToModelMilestone(d domain.Milestone) models.Milestone {
	return models.Milestone{
		MilestoneID:  d.MilestoneID,
		GoalID:       d.GoalID,
		Name:         d.Name,
		TargetAmount: d.TargetAmount,
		TargetDate:   d.TargetDate,
		Achieved:     d.Achieved,
		AchievedDate: d.AchievedDate,
		AuditFields:  ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainMilestone converts a model Milestone to a domain Milestone
func ToDomainMilestone(m models.Milestone) domain.Milestone {
	return domain.Milestone{
		MilestoneID:  m.MilestoneID,
		GoalID:       m.GoalID,
		Name:         m.Name,
		TargetAmount: m.TargetAmount,
		TargetDate:   m.TargetDate,
		Achieved:     m.Achieved,
		AchievedDate: m.AchievedDate,
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainMilestones converts a slice of model Milestones to domain Milestones
func ToDomainMilestones(ms []models.Milestone) []domain.Milestone {
	milestones := make([]domain.Milestone, 0, len(ms))
	for _, m := range ms {
		milestones = append(milestones, ToDomainMilestone(m))
	}
	return milestones
}
