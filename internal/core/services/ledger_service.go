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
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

var (
	ErrZeroAmount = errors.New("contribution amount must be non-zero")
)

// ledgerService provides the append-only contribution ledger operations.
type ledgerService struct {
	goalRepo         portsrepo.GoalRepositoryWithTx
	contributionRepo portsrepo.ContributionRepositoryFacade
	milestoneRepo    portsrepo.MilestoneRepositoryFacade
	clock            portssvc.Clock
	events           portssvc.EventSink
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(goalRepo portsrepo.GoalRepositoryWithTx, contributionRepo portsrepo.ContributionRepositoryFacade, milestoneRepo portsrepo.MilestoneRepositoryFacade, clock portssvc.Clock, events portssvc.EventSink) portssvc.LedgerSvcFacade {
	return &ledgerService{
		goalRepo:         goalRepo,
		contributionRepo: contributionRepo,
		milestoneRepo:    milestoneRepo,
		clock:            clock,
		events:           events,
	}
}

// Ensure ledgerService implements the portssvc.LedgerSvcFacade interface
var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// evaluateMilestones flips every unachieved milestone whose target the new
// amount has met, stamping the contribution's effective date. Achievement is
// one-way; milestones already achieved stay achieved even when a correction
// later drops the amount below their target.
func evaluateMilestones(ctx context.Context, milestoneRepo portsrepo.MilestoneRepositoryFacade, tx pgx.Tx, goalID string, newAmount decimal.Decimal, effectiveDate time.Time, userID string, now time.Time) ([]domain.Milestone, error) {
	unachieved, err := milestoneRepo.FindUnachievedMilestonesInTx(ctx, tx, goalID)
	if err != nil {
		return nil, fmt.Errorf("failed to load unachieved milestones for goal %s: %w", goalID, err)
	}

	achieved := make([]domain.Milestone, 0)
	achievedIDs := make([]string, 0)
	for _, m := range unachieved {
		if newAmount.GreaterThanOrEqual(m.TargetAmount) {
			m.Achieved = true
			d := effectiveDate
			m.AchievedDate = &d
			achieved = append(achieved, m)
			achievedIDs = append(achievedIDs, m.MilestoneID)
		}
	}

	if len(achievedIDs) > 0 {
		if err := milestoneRepo.MarkMilestonesAchievedInTx(ctx, tx, achievedIDs, effectiveDate, userID, now); err != nil {
			return nil, fmt.Errorf("failed to mark milestones achieved for goal %s: %w", goalID, err)
		}
	}

	return achieved, nil
}

// AddContribution appends a ledger entry, updates the goal's cached progress
// incrementally, evaluates milestones and auto-completes the goal when the
// target is reached. The whole unit runs in one transaction under a lock on
// the goal row; events fan out only after commit.
func (s *ledgerService) AddContribution(ctx context.Context, goalID string, req dto.AddContributionRequest, requestingUserID string) (*dto.AddContributionResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.Amount.IsZero() {
		return nil, ErrZeroAmount
	}

	contributionDate := s.clock.Today()
	if req.ContributionDate != nil {
		contributionDate = *req.ContributionDate
	}

	tx, err := s.goalRepo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin contribution for goal %s: %w", goalID, err)
	}
	defer s.goalRepo.Rollback(ctx, tx)

	goal, err := s.goalRepo.FindGoalByIDForUpdate(ctx, tx, goalID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to lock goal for contribution", slog.String("error", err.Error()), slog.String("goal_id", goalID))
		}
		return nil, err
	}
	if goal.UserID != requestingUserID {
		return nil, apperrors.ErrNotFound
	}
	// Paused goals still accept ledger entries; only terminal states reject.
	if goal.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: goal %s is %s", ErrInvalidGoalState, goalID, goal.Status)
	}

	now := s.clock.Now()
	contribution := domain.Contribution{
		ContributionID:   uuid.NewString(),
		GoalID:           goalID,
		Amount:           req.Amount,
		ContributionDate: contributionDate,
		TxnRef:           req.TxnRef,
		Notes:            req.Notes,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     requestingUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: requestingUserID,
		},
	}

	if err := s.contributionRepo.SaveContributionInTx(ctx, tx, contribution); err != nil {
		logger.Error("Failed to save contribution", slog.String("error", err.Error()), slog.String("goal_id", goalID))
		return nil, fmt.Errorf("failed to save contribution: %w", err)
	}

	// Incremental cache update; the full ledger sum is only recomputed by the
	// reconciliation path.
	newAmount := goal.CurrentAmount.Add(req.Amount)

	achieved, err := evaluateMilestones(ctx, s.milestoneRepo, tx, goalID, newAmount, contributionDate, requestingUserID, now)
	if err != nil {
		return nil, err
	}

	// Only an active goal auto-completes; a paused goal keeps its status even
	// when the append pushes it past the target.
	newStatus := goal.Status
	completed := false
	if goal.Status == domain.GoalStatusActive && newAmount.GreaterThanOrEqual(goal.TargetAmount) {
		newStatus = domain.GoalStatusCompleted
		completed = true
	}

	if err := s.goalRepo.UpdateGoalProgressInTx(ctx, tx, goalID, newAmount, newStatus, requestingUserID, now); err != nil {
		logger.Error("Failed to update goal progress", slog.String("error", err.Error()), slog.String("goal_id", goalID))
		return nil, fmt.Errorf("failed to update progress for goal %s: %w", goalID, err)
	}

	if err := s.goalRepo.Commit(ctx, tx); err != nil {
		return nil, err
	}

	goal.CurrentAmount = newAmount
	goal.Status = newStatus
	goal.LastUpdatedAt = now
	goal.LastUpdatedBy = requestingUserID

	// Events fire after commit so a failed transaction can never leak them.
	if s.events != nil {
		for _, m := range achieved {
			s.events.MilestoneAchieved(ctx, domain.MilestoneAchievedEvent{
				GoalID:        goalID,
				MilestoneID:   m.MilestoneID,
				MilestoneName: m.Name,
				TargetAmount:  m.TargetAmount,
				AchievedDate:  contributionDate,
			})
		}
		if completed {
			s.events.GoalCompleted(ctx, domain.GoalCompletedEvent{
				GoalID:        goal.GoalID,
				UserID:        goal.UserID,
				GoalName:      goal.Name,
				TargetAmount:  goal.TargetAmount,
				CurrentAmount: newAmount,
				CompletedAt:   now,
			})
		}
	}

	logger.Info("Contribution recorded",
		slog.String("goal_id", goalID),
		slog.String("amount", req.Amount.String()),
		slog.Int("milestones_achieved", len(achieved)),
		slog.Bool("goal_completed", completed),
	)

	return &dto.AddContributionResponse{
		Contribution:       dto.ToContributionResponse(&contribution),
		Goal:               dto.ToGoalResponse(goal),
		MilestonesAchieved: dto.ToMilestoneResponses(achieved),
	}, nil
}

// ListContributions retrieves a paginated list of a goal's ledger entries.
func (s *ledgerService) ListContributions(ctx context.Context, goalID string, requestingUserID string, params dto.ListContributionsParams) (*dto.ListContributionsResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	goal, err := s.goalRepo.FindGoalByID(ctx, goalID)
	if err != nil {
		return nil, err
	}
	if goal.UserID != requestingUserID {
		return nil, apperrors.ErrNotFound
	}

	contributions, nextToken, err := s.contributionRepo.ListContributionsByGoal(ctx, goalID, params.Limit, params.NextToken)
	if err != nil {
		logger.Error("Failed to list contributions", slog.String("error", err.Error()), slog.String("goal_id", goalID))
		return nil, fmt.Errorf("failed to list contributions for goal %s: %w", goalID, err)
	}

	return &dto.ListContributionsResponse{
		Contributions: dto.ToContributionResponses(contributions),
		NextToken:     nextToken,
	}, nil
}
