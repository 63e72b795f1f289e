package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/dhanarakshak/goals-backend/internal/apperrors"
	"github.com/dhanarakshak/goals-backend/internal/core/domain"
	portssvc "github.com/dhanarakshak/goals-backend/internal/core/ports/services"
	"github.com/dhanarakshak/goals-backend/internal/core/services"
	"github.com/dhanarakshak/goals-backend/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Test Suite Setup ---

type LedgerServiceTestSuite struct {
	suite.Suite
	mockGoalRepo         *MockGoalRepository
	mockContributionRepo *MockContributionRepository
	mockMilestoneRepo    *MockMilestoneRepository
	mockEvents           *MockEventSink
	clock                fixedClock
	service              portssvc.LedgerSvcFacade
	userID               string
	goal                 domain.Goal
}

func (suite *LedgerServiceTestSuite) SetupTest() {
	suite.mockGoalRepo = new(MockGoalRepository)
	suite.mockContributionRepo = new(MockContributionRepository)
	suite.mockMilestoneRepo = new(MockMilestoneRepository)
	suite.mockEvents = new(MockEventSink)
	suite.clock = fixedClock{now: time.Date(2024, 2, 10, 12, 0, 0, 0, time.UTC)}
	suite.service = services.NewLedgerService(suite.mockGoalRepo, suite.mockContributionRepo, suite.mockMilestoneRepo, suite.clock, suite.mockEvents)

	suite.userID = uuid.NewString()
	suite.goal = domain.Goal{
		GoalID:        uuid.NewString(),
		UserID:        suite.userID,
		Name:          "Emergency Fund",
		GoalType:      domain.GoalTypeEmergencyFund,
		TargetAmount:  decimal.NewFromInt(10000),
		CurrentAmount: decimal.Zero,
		StartDate:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		TargetDate:    time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		Status:        domain.GoalStatusActive,
		Priority:      domain.PriorityMedium,
	}
}

// expectTransaction wires the Begin/Rollback pair every contribution opens.
func (suite *LedgerServiceTestSuite) expectTransaction(ctx context.Context) {
	suite.mockGoalRepo.On("Begin", ctx).Return(nil, nil).Once()
	suite.mockGoalRepo.On("Rollback", ctx, mock.Anything).Return(nil).Maybe()
}

// --- Test Cases ---

func (suite *LedgerServiceTestSuite) TestAddContribution_AchievesMilestone() {
	ctx := context.Background()
	contributionDate := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	milestone := domain.Milestone{
		MilestoneID:  uuid.NewString(),
		GoalID:       suite.goal.GoalID,
		Name:         "First quarter",
		TargetAmount: decimal.NewFromInt(3000),
		TargetDate:   time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
	}
	req := dto.AddContributionRequest{
		Amount:           decimal.NewFromInt(3000),
		ContributionDate: &contributionDate,
	}

	suite.expectTransaction(ctx)
	suite.mockGoalRepo.On("FindGoalByIDForUpdate", ctx, mock.Anything, suite.goal.GoalID).Return(&suite.goal, nil).Once()
	suite.mockContributionRepo.On("SaveContributionInTx", ctx, mock.Anything, mock.AnythingOfType("domain.Contribution")).Return(nil).Once()
	suite.mockMilestoneRepo.On("FindUnachievedMilestonesInTx", ctx, mock.Anything, suite.goal.GoalID).Return([]domain.Milestone{milestone}, nil).Once()
	suite.mockMilestoneRepo.On("MarkMilestonesAchievedInTx", ctx, mock.Anything, []string{milestone.MilestoneID}, contributionDate, suite.userID, suite.clock.Now()).Return(nil).Once()
	suite.mockGoalRepo.On("UpdateGoalProgressInTx", ctx, mock.Anything, suite.goal.GoalID, mock.AnythingOfType("decimal.Decimal"), domain.GoalStatusActive, suite.userID, suite.clock.Now()).Return(nil).Once()
	suite.mockGoalRepo.On("Commit", ctx, mock.Anything).Return(nil).Once()
	suite.mockEvents.On("MilestoneAchieved", ctx, mock.AnythingOfType("domain.MilestoneAchievedEvent")).Return().Once()

	resp, err := suite.service.AddContribution(ctx, suite.goal.GoalID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(resp)
	suite.True(resp.Goal.CurrentAmount.Equal(decimal.NewFromInt(3000)))
	suite.Equal(domain.GoalStatusActive, resp.Goal.Status)
	suite.Require().Len(resp.MilestonesAchieved, 1)
	suite.Equal(milestone.MilestoneID, resp.MilestonesAchieved[0].MilestoneID)
	suite.Require().NotNil(resp.MilestonesAchieved[0].AchievedDate)
	suite.Equal(contributionDate, *resp.MilestonesAchieved[0].AchievedDate)

	suite.mockGoalRepo.AssertExpectations(suite.T())
	suite.mockMilestoneRepo.AssertExpectations(suite.T())
	suite.mockEvents.AssertExpectations(suite.T())
	suite.mockEvents.AssertNotCalled(suite.T(), "GoalCompleted", ctx, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestAddContribution_AutoCompletesGoal() {
	ctx := context.Background()
	suite.goal.CurrentAmount = decimal.NewFromInt(3000)
	req := dto.AddContributionRequest{Amount: decimal.NewFromInt(7000)}

	suite.expectTransaction(ctx)
	suite.mockGoalRepo.On("FindGoalByIDForUpdate", ctx, mock.Anything, suite.goal.GoalID).Return(&suite.goal, nil).Once()
	suite.mockContributionRepo.On("SaveContributionInTx", ctx, mock.Anything, mock.AnythingOfType("domain.Contribution")).Return(nil).Once()
	suite.mockMilestoneRepo.On("FindUnachievedMilestonesInTx", ctx, mock.Anything, suite.goal.GoalID).Return([]domain.Milestone{}, nil).Once()
	suite.mockGoalRepo.On("UpdateGoalProgressInTx", ctx, mock.Anything, suite.goal.GoalID, mock.AnythingOfType("decimal.Decimal"), domain.GoalStatusCompleted, suite.userID, suite.clock.Now()).Return(nil).Once()
	suite.mockGoalRepo.On("Commit", ctx, mock.Anything).Return(nil).Once()
	suite.mockEvents.On("GoalCompleted", ctx, mock.AnythingOfType("domain.GoalCompletedEvent")).Return().Once()

	resp, err := suite.service.AddContribution(ctx, suite.goal.GoalID, req, suite.userID)

	suite.Require().NoError(err)
	suite.True(resp.Goal.CurrentAmount.Equal(decimal.NewFromInt(10000)))
	suite.Equal(domain.GoalStatusCompleted, resp.Goal.Status)
	suite.Empty(resp.MilestonesAchieved)

	suite.mockGoalRepo.AssertExpectations(suite.T())
	suite.mockEvents.AssertExpectations(suite.T())
	suite.mockMilestoneRepo.AssertNotCalled(suite.T(), "MarkMilestonesAchievedInTx", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestAddContribution_RejectsTerminalGoal() {
	ctx := context.Background()
	suite.goal.Status = domain.GoalStatusCompleted
	suite.goal.CurrentAmount = decimal.NewFromInt(10000)
	req := dto.AddContributionRequest{Amount: decimal.NewFromInt(100)}

	suite.expectTransaction(ctx)
	suite.mockGoalRepo.On("FindGoalByIDForUpdate", ctx, mock.Anything, suite.goal.GoalID).Return(&suite.goal, nil).Once()

	resp, err := suite.service.AddContribution(ctx, suite.goal.GoalID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrInvalidGoalState)
	suite.Nil(resp)

	suite.mockContributionRepo.AssertNotCalled(suite.T(), "SaveContributionInTx", ctx, mock.Anything, mock.Anything)
	suite.mockGoalRepo.AssertNotCalled(suite.T(), "Commit", ctx, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestAddContribution_PausedGoalAcceptsWithoutCompleting() {
	ctx := context.Background()
	suite.goal.Status = domain.GoalStatusPaused
	suite.goal.CurrentAmount = decimal.NewFromInt(3000)
	req := dto.AddContributionRequest{Amount: decimal.NewFromInt(8000)}

	suite.expectTransaction(ctx)
	suite.mockGoalRepo.On("FindGoalByIDForUpdate", ctx, mock.Anything, suite.goal.GoalID).Return(&suite.goal, nil).Once()
	suite.mockContributionRepo.On("SaveContributionInTx", ctx, mock.Anything, mock.AnythingOfType("domain.Contribution")).Return(nil).Once()
	suite.mockMilestoneRepo.On("FindUnachievedMilestonesInTx", ctx, mock.Anything, suite.goal.GoalID).Return([]domain.Milestone{}, nil).Once()
	// Past the target, but a paused goal never auto-completes.
	suite.mockGoalRepo.On("UpdateGoalProgressInTx", ctx, mock.Anything, suite.goal.GoalID, mock.AnythingOfType("decimal.Decimal"), domain.GoalStatusPaused, suite.userID, suite.clock.Now()).Return(nil).Once()
	suite.mockGoalRepo.On("Commit", ctx, mock.Anything).Return(nil).Once()

	resp, err := suite.service.AddContribution(ctx, suite.goal.GoalID, req, suite.userID)

	suite.Require().NoError(err)
	suite.True(resp.Goal.CurrentAmount.Equal(decimal.NewFromInt(11000)))
	suite.Equal(domain.GoalStatusPaused, resp.Goal.Status)

	suite.mockGoalRepo.AssertExpectations(suite.T())
	suite.mockEvents.AssertNotCalled(suite.T(), "GoalCompleted", ctx, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestAddContribution_OverCorrectionGoesBelowZero() {
	ctx := context.Background()
	suite.goal.CurrentAmount = decimal.NewFromInt(500)
	req := dto.AddContributionRequest{Amount: decimal.NewFromInt(-800)}

	suite.expectTransaction(ctx)
	suite.mockGoalRepo.On("FindGoalByIDForUpdate", ctx, mock.Anything, suite.goal.GoalID).Return(&suite.goal, nil).Once()
	suite.mockContributionRepo.On("SaveContributionInTx", ctx, mock.Anything, mock.AnythingOfType("domain.Contribution")).Return(nil).Once()
	suite.mockMilestoneRepo.On("FindUnachievedMilestonesInTx", ctx, mock.Anything, suite.goal.GoalID).Return([]domain.Milestone{}, nil).Once()
	// The ledger never clamps; the cache is allowed to go negative.
	suite.mockGoalRepo.On("UpdateGoalProgressInTx", ctx, mock.Anything, suite.goal.GoalID, mock.MatchedBy(func(amount decimal.Decimal) bool {
		return amount.Equal(decimal.NewFromInt(-300))
	}), domain.GoalStatusActive, suite.userID, suite.clock.Now()).Return(nil).Once()
	suite.mockGoalRepo.On("Commit", ctx, mock.Anything).Return(nil).Once()

	resp, err := suite.service.AddContribution(ctx, suite.goal.GoalID, req, suite.userID)

	suite.Require().NoError(err)
	suite.True(resp.Goal.CurrentAmount.Equal(decimal.NewFromInt(-300)))
	suite.Equal(domain.GoalStatusActive, resp.Goal.Status)

	suite.mockGoalRepo.AssertExpectations(suite.T())
	suite.mockContributionRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestAddContribution_RejectsZeroAmount() {
	ctx := context.Background()
	req := dto.AddContributionRequest{Amount: decimal.Zero}

	resp, err := suite.service.AddContribution(ctx, suite.goal.GoalID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrZeroAmount)
	suite.Nil(resp)
	suite.mockGoalRepo.AssertNotCalled(suite.T(), "Begin", ctx)
}

func (suite *LedgerServiceTestSuite) TestAddContribution_NegativeCorrectionKeepsMilestones() {
	ctx := context.Background()
	suite.goal.CurrentAmount = decimal.NewFromInt(3500)
	req := dto.AddContributionRequest{Amount: decimal.NewFromInt(-500)}

	suite.expectTransaction(ctx)
	suite.mockGoalRepo.On("FindGoalByIDForUpdate", ctx, mock.Anything, suite.goal.GoalID).Return(&suite.goal, nil).Once()
	suite.mockContributionRepo.On("SaveContributionInTx", ctx, mock.Anything, mock.AnythingOfType("domain.Contribution")).Return(nil).Once()
	// The 3000 milestone is already achieved so it is not returned here; a
	// correction below its target must not revert it.
	suite.mockMilestoneRepo.On("FindUnachievedMilestonesInTx", ctx, mock.Anything, suite.goal.GoalID).Return([]domain.Milestone{}, nil).Once()
	suite.mockGoalRepo.On("UpdateGoalProgressInTx", ctx, mock.Anything, suite.goal.GoalID, mock.AnythingOfType("decimal.Decimal"), domain.GoalStatusActive, suite.userID, suite.clock.Now()).Return(nil).Once()
	suite.mockGoalRepo.On("Commit", ctx, mock.Anything).Return(nil).Once()

	resp, err := suite.service.AddContribution(ctx, suite.goal.GoalID, req, suite.userID)

	suite.Require().NoError(err)
	suite.True(resp.Goal.CurrentAmount.Equal(decimal.NewFromInt(3000)))
	suite.Equal(domain.GoalStatusActive, resp.Goal.Status)
	suite.Empty(resp.MilestonesAchieved)

	suite.mockMilestoneRepo.AssertNotCalled(suite.T(), "MarkMilestonesAchievedInTx", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockEvents.AssertNotCalled(suite.T(), "MilestoneAchieved", ctx, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestAddContribution_OtherUsersGoalNotFound() {
	ctx := context.Background()
	req := dto.AddContributionRequest{Amount: decimal.NewFromInt(100)}
	otherUserID := uuid.NewString()

	suite.expectTransaction(ctx)
	suite.mockGoalRepo.On("FindGoalByIDForUpdate", ctx, mock.Anything, suite.goal.GoalID).Return(&suite.goal, nil).Once()

	resp, err := suite.service.AddContribution(ctx, suite.goal.GoalID, req, otherUserID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.Nil(resp)
}

func (suite *LedgerServiceTestSuite) TestAddContribution_DefaultsDateToToday() {
	ctx := context.Background()
	req := dto.AddContributionRequest{Amount: decimal.NewFromInt(100)}

	suite.expectTransaction(ctx)
	suite.mockGoalRepo.On("FindGoalByIDForUpdate", ctx, mock.Anything, suite.goal.GoalID).Return(&suite.goal, nil).Once()
	suite.mockContributionRepo.On("SaveContributionInTx", ctx, mock.Anything, mock.MatchedBy(func(c domain.Contribution) bool {
		return c.ContributionDate.Equal(suite.clock.Today())
	})).Return(nil).Once()
	suite.mockMilestoneRepo.On("FindUnachievedMilestonesInTx", ctx, mock.Anything, suite.goal.GoalID).Return([]domain.Milestone{}, nil).Once()
	suite.mockGoalRepo.On("UpdateGoalProgressInTx", ctx, mock.Anything, suite.goal.GoalID, mock.AnythingOfType("decimal.Decimal"), domain.GoalStatusActive, suite.userID, suite.clock.Now()).Return(nil).Once()
	suite.mockGoalRepo.On("Commit", ctx, mock.Anything).Return(nil).Once()

	_, err := suite.service.AddContribution(ctx, suite.goal.GoalID, req, suite.userID)

	suite.Require().NoError(err)
	suite.mockContributionRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestListContributions_Success() {
	ctx := context.Background()
	entries := []domain.Contribution{
		{ContributionID: uuid.NewString(), GoalID: suite.goal.GoalID, Amount: decimal.NewFromInt(500)},
	}
	token := "next-page"

	suite.mockGoalRepo.On("FindGoalByID", ctx, suite.goal.GoalID).Return(&suite.goal, nil).Once()
	suite.mockContributionRepo.On("ListContributionsByGoal", ctx, suite.goal.GoalID, 20, (*string)(nil)).Return(entries, token, nil).Once()

	resp, err := suite.service.ListContributions(ctx, suite.goal.GoalID, suite.userID, dto.ListContributionsParams{Limit: 20})

	suite.Require().NoError(err)
	suite.Require().Len(resp.Contributions, 1)
	suite.Equal(entries[0].ContributionID, resp.Contributions[0].ContributionID)
	suite.Require().NotNil(resp.NextToken)
	suite.Equal(token, *resp.NextToken)
}

func (suite *LedgerServiceTestSuite) TestListContributions_OtherUsersGoalNotFound() {
	ctx := context.Background()

	suite.mockGoalRepo.On("FindGoalByID", ctx, suite.goal.GoalID).Return(&suite.goal, nil).Once()

	resp, err := suite.service.ListContributions(ctx, suite.goal.GoalID, uuid.NewString(), dto.ListContributionsParams{})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.Nil(resp)
	suite.mockContributionRepo.AssertNotCalled(suite.T(), "ListContributionsByGoal", ctx, mock.Anything, mock.Anything, mock.Anything)
}

func TestLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}
