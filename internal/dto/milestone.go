package dto

import (
	"time"

	"github.com/dhanarakshak/goals-backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateMilestoneRequest defines the payload for adding a milestone to a goal.
// Its target amount is deliberately not validated against the goal's target.
type CreateMilestoneRequest struct {
	Name         string          `json:"name" binding:"required"`
	TargetAmount decimal.Decimal `json:"targetAmount" binding:"required,decimalgt0"`
	TargetDate   time.Time       `json:"targetDate" binding:"required"`
}

// OverrideMilestoneRequest is the administrative correction path for
// achievement state. Setting achieved requires an achievedDate.
type OverrideMilestoneRequest struct {
	Achieved     bool       `json:"achieved"`
	AchievedDate *time.Time `json:"achievedDate"`
}

// MilestoneResponse defines the data returned for a milestone.
type MilestoneResponse struct {
	MilestoneID  string          `json:"milestoneID"`
	GoalID       string          `json:"goalID"`
	Name         string          `json:"name"`
	TargetAmount decimal.Decimal `json:"targetAmount"`
	TargetDate   time.Time       `json:"targetDate"`
	Achieved     bool            `json:"achieved"`
	AchievedDate *time.Time      `json:"achievedDate,omitempty"`
}

// ToMilestoneResponse converts a domain.Milestone to its DTO.
func ToMilestoneResponse(m *domain.Milestone) MilestoneResponse {
	return MilestoneResponse{
		MilestoneID:  m.MilestoneID,
		GoalID:       m.GoalID,
		Name:         m.Name,
		TargetAmount: m.TargetAmount,
		TargetDate:   m.TargetDate,
		Achieved:     m.Achieved,
		AchievedDate: m.AchievedDate,
	}
}

// ToMilestoneResponses converts a slice of domain.Milestone to DTOs.
func ToMilestoneResponses(ms []domain.Milestone) []MilestoneResponse {
	responses := make([]MilestoneResponse, len(ms))
	for i := range ms {
		responses[i] = ToMilestoneResponse(&ms[i])
	}
	return responses
}
