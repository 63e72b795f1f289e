package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dhanarakshak/goals-backend/internal/apperrors"
	"github.com/dhanarakshak/goals-backend/internal/core/domain"
	portsrepo "github.com/dhanarakshak/goals-backend/internal/core/ports/repositories"
	portssvc "github.com/dhanarakshak/goals-backend/internal/core/ports/services"
	"github.com/dhanarakshak/goals-backend/internal/dto"
	"github.com/dhanarakshak/goals-backend/internal/middleware"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidStateTransition  = errors.New("goal status transition is not allowed")
	ErrInvalidGoalState        = errors.New("goal is in a terminal state")
	ErrTargetDateBeforeStart   = errors.New("target date must not be before start date")
	ErrTargetAmountNotPositive = errors.New("target amount must be positive")
	ErrStartDateInFuture       = errors.New("start date must not be in the future")
)

// goalService provides goal lifecycle, reconciliation and reporting operations.
type goalService struct {
	goalRepo         portsrepo.GoalRepositoryWithTx
	contributionRepo portsrepo.ContributionRepositoryFacade
	milestoneRepo    portsrepo.MilestoneRepositoryFacade
	clock            portssvc.Clock
	events           portssvc.EventSink
}

// NewGoalService creates a new GoalService.
func NewGoalService(goalRepo portsrepo.GoalRepositoryWithTx, contributionRepo portsrepo.ContributionRepositoryFacade, milestoneRepo portsrepo.MilestoneRepositoryFacade, clock portssvc.Clock, events portssvc.EventSink) portssvc.GoalSvcFacade {
	return &goalService{
		goalRepo:         goalRepo,
		contributionRepo: contributionRepo,
		milestoneRepo:    milestoneRepo,
		clock:            clock,
		events:           events,
	}
}

// Ensure goalService implements the portssvc.GoalSvcFacade interface
var _ portssvc.GoalSvcFacade = (*goalService)(nil)

// findOwnedGoal loads a goal and verifies ownership. Goals of other users are
// reported as not found to obscure existence.
func (s *goalService) findOwnedGoal(ctx context.Context, goalID string, requestingUserID string) (*domain.Goal, error) {
	goal, err := s.goalRepo.FindGoalByID(ctx, goalID)
	if err != nil {
		return nil, err
	}
	if goal.UserID != requestingUserID {
		return nil, apperrors.ErrNotFound
	}
	return goal, nil
}

// CreateGoal validates and persists a new goal with zero progress.
func (s *goalService) CreateGoal(ctx context.Context, req dto.CreateGoalRequest, creatorUserID string) (*domain.Goal, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !req.TargetAmount.IsPositive() {
		return nil, fmt.Errorf("%w: got %s", ErrTargetAmountNotPositive, req.TargetAmount.String())
	}

	startDate := s.clock.Today()
	if req.StartDate != nil {
		startDate = *req.StartDate
	}
	if req.TargetDate.Before(startDate) {
		return nil, fmt.Errorf("%w: target %s, start %s", ErrTargetDateBeforeStart,
			req.TargetDate.Format("2006-01-02"), startDate.Format("2006-01-02"))
	}
	if startDate.After(s.clock.Today()) {
		return nil, fmt.Errorf("%w: got %s", ErrStartDateInFuture, startDate.Format("2006-01-02"))
	}

	priority := req.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}

	now := s.clock.Now()
	goal := domain.Goal{
		GoalID:        uuid.NewString(),
		UserID:        creatorUserID,
		Name:          req.Name,
		GoalType:      req.GoalType,
		TargetAmount:  req.TargetAmount,
		CurrentAmount: decimal.Zero,
		StartDate:     startDate,
		TargetDate:    req.TargetDate,
		Category:      req.Category,
		Description:   req.Description,
		Status:        domain.GoalStatusActive,
		Priority:      priority,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.goalRepo.SaveGoal(ctx, goal); err != nil {
		logger.Error("Failed to save goal", slog.String("error", err.Error()), slog.String("user_id", creatorUserID))
		return nil, fmt.Errorf("failed to save goal: %w", err)
	}

	logger.Info("Goal created successfully", slog.String("goal_id", goal.GoalID), slog.String("goal_type", string(goal.GoalType)))
	return &goal, nil
}

// GetGoalByID retrieves a goal owned by the requesting user.
func (s *goalService) GetGoalByID(ctx context.Context, goalID string, requestingUserID string) (*domain.Goal, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	goal, err := s.findOwnedGoal(ctx, goalID, requestingUserID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find goal by ID", slog.String("error", err.Error()), slog.String("goal_id", goalID))
		}
		return nil, err
	}
	return goal, nil
}

// ListGoals retrieves a paginated list of the user's goals.
func (s *goalService) ListGoals(ctx context.Context, userID string, params dto.ListGoalsParams) (*dto.ListGoalsResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	goals, nextToken, err := s.goalRepo.ListGoalsByUser(ctx, userID, params.Limit, params.NextToken)
	if err != nil {
		logger.Error("Failed to list goals", slog.String("error", err.Error()), slog.String("user_id", userID))
		return nil, fmt.Errorf("failed to list goals for user %s: %w", userID, err)
	}

	return &dto.ListGoalsResponse{
		Goals:     dto.ToGoalResponses(goals),
		NextToken: nextToken,
	}, nil
}

// GetGoalStats aggregates the user's goal portfolio for the dashboard.
func (s *goalService) GetGoalStats(ctx context.Context, userID string) (*domain.GoalStats, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	stats, err := s.goalRepo.GetGoalStats(ctx, userID)
	if err != nil {
		logger.Error("Failed to aggregate goal stats", slog.String("error", err.Error()), slog.String("user_id", userID))
		return nil, fmt.Errorf("failed to aggregate goal stats for user %s: %w", userID, err)
	}
	return stats, nil
}

// GetGoalDetails retrieves a goal with recent contributions, milestones and
// advisory recommendations.
func (s *goalService) GetGoalDetails(ctx context.Context, goalID string, requestingUserID string) (*dto.GoalDetailsResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	goal, err := s.findOwnedGoal(ctx, goalID, requestingUserID)
	if err != nil {
		return nil, err
	}

	contributions, _, err := s.contributionRepo.ListContributionsByGoal(ctx, goalID, 10, nil)
	if err != nil {
		logger.Error("Failed to list contributions for goal details", slog.String("error", err.Error()), slog.String("goal_id", goalID))
		return nil, fmt.Errorf("failed to list contributions for goal %s: %w", goalID, err)
	}

	milestones, err := s.milestoneRepo.ListMilestonesByGoal(ctx, goalID)
	if err != nil {
		logger.Error("Failed to list milestones for goal details", slog.String("error", err.Error()), slog.String("goal_id", goalID))
		return nil, fmt.Errorf("failed to list milestones for goal %s: %w", goalID, err)
	}

	resp := &dto.GoalDetailsResponse{
		Goal:          dto.ToGoalResponse(goal),
		Contributions: dto.ToContributionResponses(contributions),
		Milestones:    dto.ToMilestoneResponses(milestones),
	}

	// Recommendations are advisory and only meaningful for active goals.
	if goal.Status == domain.GoalStatusActive {
		lastContribution, err := s.contributionRepo.FindLatestContributionDate(ctx, goalID)
		if err != nil {
			logger.Error("Failed to find latest contribution date", slog.String("error", err.Error()), slog.String("goal_id", goalID))
			return nil, fmt.Errorf("failed to find latest contribution date for goal %s: %w", goalID, err)
		}
		rec := ComputeRecommendation(goal, lastContribution, s.clock.Today())
		resp.Recommendations = &rec
	}

	return resp, nil
}

// UpdateGoal updates a goal's mutable attributes. Terminal goals are frozen.
func (s *goalService) UpdateGoal(ctx context.Context, goalID string, req dto.UpdateGoalRequest, requestingUserID string) (*domain.Goal, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	goal, err := s.findOwnedGoal(ctx, goalID, requestingUserID)
	if err != nil {
		return nil, err
	}
	if goal.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: goal %s is %s", ErrInvalidGoalState, goalID, goal.Status)
	}

	if req.Name != nil {
		goal.Name = *req.Name
	}
	if req.TargetAmount != nil {
		if !req.TargetAmount.IsPositive() {
			return nil, fmt.Errorf("%w: got %s", ErrTargetAmountNotPositive, req.TargetAmount.String())
		}
		goal.TargetAmount = *req.TargetAmount
	}
	if req.TargetDate != nil {
		if req.TargetDate.Before(goal.StartDate) {
			return nil, fmt.Errorf("%w: target %s, start %s", ErrTargetDateBeforeStart,
				req.TargetDate.Format("2006-01-02"), goal.StartDate.Format("2006-01-02"))
		}
		goal.TargetDate = *req.TargetDate
	}
	if req.Category != nil {
		goal.Category = *req.Category
	}
	if req.Description != nil {
		goal.Description = *req.Description
	}
	if req.Priority != nil {
		if !req.Priority.IsValid() {
			return nil, fmt.Errorf("%w: invalid priority %s", apperrors.ErrValidation, *req.Priority)
		}
		goal.Priority = *req.Priority
	}

	goal.LastUpdatedAt = s.clock.Now()
	goal.LastUpdatedBy = requestingUserID

	if err := s.goalRepo.UpdateGoal(ctx, *goal); err != nil {
		logger.Error("Failed to update goal", slog.String("error", err.Error()), slog.String("goal_id", goalID))
		return nil, fmt.Errorf("failed to update goal %s: %w", goalID, err)
	}

	logger.Info("Goal updated successfully", slog.String("goal_id", goalID))
	return goal, nil
}

// UpdateStatus applies a lifecycle transition per the goal state machine.
func (s *goalService) UpdateStatus(ctx context.Context, goalID string, newStatus domain.GoalStatus, requestingUserID string) (*domain.Goal, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	goal, err := s.findOwnedGoal(ctx, goalID, requestingUserID)
	if err != nil {
		return nil, err
	}

	if goal.Status == newStatus {
		// No-op transitions are rejected like any other illegal one.
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStateTransition, goal.Status, newStatus)
	}
	if !goal.Status.CanTransitionTo(newStatus) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStateTransition, goal.Status, newStatus)
	}

	now := s.clock.Now()
	if err := s.goalRepo.UpdateGoalStatus(ctx, goalID, newStatus, requestingUserID, now); err != nil {
		logger.Error("Failed to update goal status", slog.String("error", err.Error()), slog.String("goal_id", goalID))
		return nil, fmt.Errorf("failed to update status for goal %s: %w", goalID, err)
	}

	goal.Status = newStatus
	goal.LastUpdatedAt = now
	goal.LastUpdatedBy = requestingUserID

	if newStatus == domain.GoalStatusCompleted && s.events != nil {
		s.events.GoalCompleted(ctx, domain.GoalCompletedEvent{
			GoalID:        goal.GoalID,
			UserID:        goal.UserID,
			GoalName:      goal.Name,
			TargetAmount:  goal.TargetAmount,
			CurrentAmount: goal.CurrentAmount,
			CompletedAt:   now,
		})
	}

	logger.Info("Goal status updated", slog.String("goal_id", goalID), slog.String("status", string(newStatus)))
	return goal, nil
}

// DeleteGoal removes a goal together with its milestones, contributions and
// reminders.
func (s *goalService) DeleteGoal(ctx context.Context, goalID string, requestingUserID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.findOwnedGoal(ctx, goalID, requestingUserID); err != nil {
		return err
	}

	if err := s.goalRepo.DeleteGoalCascade(ctx, goalID); err != nil {
		logger.Error("Failed to delete goal", slog.String("error", err.Error()), slog.String("goal_id", goalID))
		return fmt.Errorf("failed to delete goal %s: %w", goalID, err)
	}

	logger.Info("Goal deleted", slog.String("goal_id", goalID))
	return nil
}

// RecomputeProgress recomputes the cached progress from the ledger sum. The
// ledger is authoritative: on drift the cache is repaired, completion is
// re-evaluated for active goals and milestone achievement is re-run. Already
// achieved milestones and completed goals are never reverted here.
func (s *goalService) RecomputeProgress(ctx context.Context, goalID string, requestingUserID string) (*dto.RecomputeProgressResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.findOwnedGoal(ctx, goalID, requestingUserID); err != nil {
		return nil, err
	}

	tx, err := s.goalRepo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin reconciliation for goal %s: %w", goalID, err)
	}
	defer s.goalRepo.Rollback(ctx, tx)

	goal, err := s.goalRepo.FindGoalByIDForUpdate(ctx, tx, goalID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock goal %s for reconciliation: %w", goalID, err)
	}

	ledgerSum, err := s.contributionRepo.SumContributionsInTx(ctx, tx, goalID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum ledger for goal %s: %w", goalID, err)
	}

	resp := &dto.RecomputeProgressResponse{
		GoalID:       goalID,
		CachedAmount: goal.CurrentAmount,
		LedgerSum:    ledgerSum,
		Status:       string(goal.Status),
	}

	if goal.CurrentAmount.Equal(ledgerSum) {
		// Nothing to repair; release the lock without writing.
		if err := s.goalRepo.Commit(ctx, tx); err != nil {
			return nil, err
		}
		return resp, nil
	}

	logger.Warn("Ledger drift detected, repairing cached progress",
		slog.String("goal_id", goalID),
		slog.String("cached", goal.CurrentAmount.String()),
		slog.String("ledger", ledgerSum.String()),
	)

	now := s.clock.Now()
	newStatus := goal.Status
	completed := false
	if goal.Status == domain.GoalStatusActive && ledgerSum.GreaterThanOrEqual(goal.TargetAmount) {
		newStatus = domain.GoalStatusCompleted
		completed = true
	}

	achieved, err := evaluateMilestones(ctx, s.milestoneRepo, tx, goalID, ledgerSum, s.clock.Today(), requestingUserID, now)
	if err != nil {
		return nil, err
	}

	if err := s.goalRepo.UpdateGoalProgressInTx(ctx, tx, goalID, ledgerSum, newStatus, requestingUserID, now); err != nil {
		return nil, fmt.Errorf("failed to repair progress for goal %s: %w", goalID, err)
	}

	if err := s.goalRepo.Commit(ctx, tx); err != nil {
		return nil, err
	}

	resp.Repaired = true
	resp.Status = string(newStatus)

	s.emitAchievements(ctx, goal, achieved)
	if completed && s.events != nil {
		s.events.GoalCompleted(ctx, domain.GoalCompletedEvent{
			GoalID:        goal.GoalID,
			UserID:        goal.UserID,
			GoalName:      goal.Name,
			TargetAmount:  goal.TargetAmount,
			CurrentAmount: ledgerSum,
			CompletedAt:   now,
		})
	}

	logger.Info("Goal progress reconciled", slog.String("goal_id", goalID), slog.String("status", string(newStatus)))
	return resp, nil
}

// emitAchievements fans out milestone events after the transaction committed.
func (s *goalService) emitAchievements(ctx context.Context, goal *domain.Goal, achieved []domain.Milestone) {
	if s.events == nil {
		return
	}
	for _, m := range achieved {
		achievedDate := m.TargetDate
		if m.AchievedDate != nil {
			achievedDate = *m.AchievedDate
		}
		s.events.MilestoneAchieved(ctx, domain.MilestoneAchievedEvent{
			GoalID:        goal.GoalID,
			MilestoneID:   m.MilestoneID,
			MilestoneName: m.Name,
			TargetAmount:  m.TargetAmount,
			AchievedDate:  achievedDate,
		})
	}
}
