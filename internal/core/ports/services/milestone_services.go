package services

import (
	"context"

	"github.com/dhanarakshak/goals-backend/internal/core/domain"
	"github.com/dhanarakshak/goals-backend/internal/dto"
)

// MilestoneReaderSvc defines read operations for milestone data
type MilestoneReaderSvc interface {
	// ListMilestones retrieves all milestones for a goal owned by the user.
	ListMilestones(ctx context.Context, goalID string, requestingUserID string) ([]domain.Milestone, error)
}

// MilestoneWriterSvc defines write operations for milestone data
type MilestoneWriterSvc interface {
	// CreateMilestone adds a milestone to a goal.
	CreateMilestone(ctx context.Context, goalID string, req dto.CreateMilestoneRequest, requestingUserID string) (*domain.Milestone, error)

	// AchieveOverride is the administrative correction path for achievement
	// state; the only way achievement can be reverted.
	AchieveOverride(ctx context.Context, goalID string, milestoneID string, req dto.OverrideMilestoneRequest, requestingUserID string) (*domain.Milestone, error)
}

// MilestoneSvcFacade combines all milestone service interfaces
type MilestoneSvcFacade interface {
	MilestoneReaderSvc
	MilestoneWriterSvc
}
