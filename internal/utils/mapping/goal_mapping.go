package mapping

import (
	"github.com/dhanarakshak/goals-backend/internal/core/domain"
	"github.com/dhanarakshak/goals-backend/internal/models"
)

// ToModelGoal converts a domain Goal to a model Goal
func ToModelGoal(d domain.Goal) models.Goal {
	return models.Goal{
		GoalID:        d.GoalID,
		UserID:        d.UserID,
		Name:          d.Name,
		GoalType:      models.GoalType(d.GoalType),
		TargetAmount:  d.TargetAmount,
		CurrentAmount: d.CurrentAmount,
		StartDate:     d.StartDate,
		TargetDate:    d.TargetDate,
		Category:      d.Category,
		Description:   d.Description,
		Status:        models.GoalStatus(d.Status),
		Priority:      models.GoalPriority(d.Priority),
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainGoal converts a model Goal to a domain Goal
func ToDomainGoal(m models.Goal) domain.Goal {
	return domain.Goal{
		GoalID:        m.GoalID,
		UserID:        m.UserID,
		Name:          m.Name,
		GoalType:      domain.GoalType(m.GoalType),
		TargetAmount:  m.TargetAmount,
		CurrentAmount: m.CurrentAmount,
		StartDate:     m.StartDate,
		TargetDate:    m.TargetDate,
		Category:      m.Category,
		Description:   m.Description,
		Status:        domain.GoalStatus(m.Status),
		Priority:      domain.GoalPriority(m.Priority),
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainGoals converts a slice of model Goals to domain Goals
func ToDomainGoals(ms []models.Goal) []domain.Goal {
	goals := make([]domain.Goal, 0, len(ms))
	for _, m := range ms {
		goals = append(goals, ToDomainGoal(m))
	}
	return goals
}
