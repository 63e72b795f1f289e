package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dhanarakshak/goals-backend/internal/apperrors"
	"github.com/dhanarakshak/goals-backend/internal/core/domain"
	portsrepo "github.com/dhanarakshak/goals-backend/internal/core/ports/repositories"
	portssvc "github.com/dhanarakshak/goals-backend/internal/core/ports/services"
	"github.com/dhanarakshak/goals-backend/internal/dto"
	"github.com/dhanarakshak/goals-backend/internal/middleware"
)

var (
	ErrAchievedDateRequired = errors.New("achieved date is required when marking a milestone achieved")
)

// milestoneService provides milestone CRUD and the administrative achievement
// override. The regular achievement path lives inside the contribution
// transaction, not here.
type milestoneService struct {
	goalRepo      portsrepo.GoalRepositoryWithTx
	milestoneRepo portsrepo.MilestoneRepositoryFacade
	clock         portssvc.Clock
	events        portssvc.EventSink
}

// NewMilestoneService creates a new MilestoneService.
func NewMilestoneService(goalRepo portsrepo.GoalRepositoryWithTx, milestoneRepo portsrepo.MilestoneRepositoryFacade, clock portssvc.Clock, events portssvc.EventSink) portssvc.MilestoneSvcFacade {
	return &milestoneService{
		goalRepo:      goalRepo,
		milestoneRepo: milestoneRepo,
		clock:         clock,
		events:        events,
	}
}

// Ensure milestoneService implements the portssvc.MilestoneSvcFacade interface
var _ portssvc.MilestoneSvcFacade = (*milestoneService)(nil)

func (s *milestoneService) findOwnedGoal(ctx context.Context, goalID string, requestingUserID string) (*domain.Goal, error) {
	goal, err := s.goalRepo.FindGoalByID(ctx, goalID)
	if err != nil {
		return nil, err
	}
	if goal.UserID != requestingUserID {
		return nil, apperrors.ErrNotFound
	}
	return goal, nil
}

// ListMilestones retrieves all milestones for a goal owned by the user.
func (s *milestoneService) ListMilestones(ctx context.Context, goalID string, requestingUserID string) ([]domain.Milestone, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.findOwnedGoal(ctx, goalID, requestingUserID); err != nil {
		return nil, err
	}

	milestones, err := s.milestoneRepo.ListMilestonesByGoal(ctx, goalID)
	if err != nil {
		logger.Error("Failed to list milestones", slog.String("error", err.Error()), slog.String("goal_id", goalID))
		return nil, fmt.Errorf("failed to list milestones for goal %s: %w", goalID, err)
	}
	return milestones, nil
}

// CreateMilestone adds a milestone to a goal. The milestone's target amount is
// deliberately not validated against the goal's own target. On a goal whose
// progress already meets the new target, the milestone is created achieved as
// of today.
func (s *milestoneService) CreateMilestone(ctx context.Context, goalID string, req dto.CreateMilestoneRequest, requestingUserID string) (*domain.Milestone, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	goal, err := s.findOwnedGoal(ctx, goalID, requestingUserID)
	if err != nil {
		return nil, err
	}
	if goal.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: goal %s is %s", ErrInvalidGoalState, goalID, goal.Status)
	}
	if !req.TargetAmount.IsPositive() {
		return nil, fmt.Errorf("%w: milestone target amount must be positive", apperrors.ErrValidation)
	}

	now := s.clock.Now()
	milestone := domain.Milestone{
		MilestoneID:  uuid.NewString(),
		GoalID:       goalID,
		Name:         req.Name,
		TargetAmount: req.TargetAmount,
		TargetDate:   req.TargetDate,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     requestingUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: requestingUserID,
		},
	}

	if goal.CurrentAmount.GreaterThanOrEqual(req.TargetAmount) {
		today := s.clock.Today()
		milestone.Achieved = true
		milestone.AchievedDate = &today
	}

	if err := s.milestoneRepo.SaveMilestone(ctx, milestone); err != nil {
		logger.Error("Failed to save milestone", slog.String("error", err.Error()), slog.String("goal_id", goalID))
		return nil, fmt.Errorf("failed to save milestone: %w", err)
	}

	if milestone.Achieved && s.events != nil {
		s.events.MilestoneAchieved(ctx, domain.MilestoneAchievedEvent{
			GoalID:        goalID,
			MilestoneID:   milestone.MilestoneID,
			MilestoneName: milestone.Name,
			TargetAmount:  milestone.TargetAmount,
			AchievedDate:  *milestone.AchievedDate,
		})
	}

	logger.Info("Milestone created", slog.String("milestone_id", milestone.MilestoneID), slog.String("goal_id", goalID), slog.Bool("achieved", milestone.Achieved))
	return &milestone, nil
}

// AchieveOverride is the administrative correction path for achievement state
// and the only way achievement can be reverted.
func (s *milestoneService) AchieveOverride(ctx context.Context, goalID string, milestoneID string, req dto.OverrideMilestoneRequest, requestingUserID string) (*domain.Milestone, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	goal, err := s.findOwnedGoal(ctx, goalID, requestingUserID)
	if err != nil {
		return nil, err
	}

	milestone, err := s.milestoneRepo.FindMilestoneByID(ctx, milestoneID)
	if err != nil {
		return nil, err
	}
	if milestone.GoalID != goalID {
		return nil, apperrors.ErrNotFound
	}

	var achievedDate *time.Time
	if req.Achieved {
		if req.AchievedDate == nil {
			return nil, ErrAchievedDateRequired
		}
		// An achieved milestone always carries a date within the goal's life.
		if req.AchievedDate.Before(goal.StartDate) {
			return nil, fmt.Errorf("%w: achieved date %s is before goal start date %s", apperrors.ErrValidation,
				req.AchievedDate.Format("2006-01-02"), goal.StartDate.Format("2006-01-02"))
		}
		achievedDate = req.AchievedDate
	}

	now := s.clock.Now()
	if err := s.milestoneRepo.OverrideAchievement(ctx, milestoneID, req.Achieved, achievedDate, requestingUserID, now); err != nil {
		logger.Error("Failed to override milestone achievement", slog.String("error", err.Error()), slog.String("milestone_id", milestoneID))
		return nil, fmt.Errorf("failed to override achievement for milestone %s: %w", milestoneID, err)
	}

	milestone.Achieved = req.Achieved
	milestone.AchievedDate = achievedDate
	milestone.LastUpdatedAt = now
	milestone.LastUpdatedBy = requestingUserID

	logger.Info("Milestone achievement overridden", slog.String("milestone_id", milestoneID), slog.Bool("achieved", req.Achieved))
	return milestone, nil
}
