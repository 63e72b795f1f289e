package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/dhanarakshak/goals-backend/internal/apperrors"
	"github.com/dhanarakshak/goals-backend/internal/core/domain"
	portssvc "github.com/dhanarakshak/goals-backend/internal/core/ports/services"
	"github.com/dhanarakshak/goals-backend/internal/core/services"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Test Suite Setup ---

type ReminderServiceTestSuite struct {
	suite.Suite
	mockGoalRepo     *MockGoalRepository
	mockReminderRepo *MockReminderRepository
	clock            fixedClock
	service          portssvc.ReminderSvcFacade
	userID           string
	goal             domain.Goal
}

func (suite *ReminderServiceTestSuite) SetupTest() {
	suite.mockGoalRepo = new(MockGoalRepository)
	suite.mockReminderRepo = new(MockReminderRepository)
	suite.clock = fixedClock{now: time.Date(2024, 2, 10, 12, 0, 0, 0, time.UTC)}
	suite.service = services.NewReminderService(suite.mockGoalRepo, suite.mockReminderRepo, suite.clock, services.ReminderScheduleConfig{
		DeadlineLeadDays:        7,
		ContributionReminderDay: 1,
		ProgressReminderDay:     15,
	})

	suite.userID = uuid.NewString()
	suite.goal = domain.Goal{
		GoalID:        uuid.NewString(),
		UserID:        suite.userID,
		Name:          "Wedding Fund",
		GoalType:      domain.GoalTypeSavings,
		TargetAmount:  decimal.NewFromInt(8000),
		CurrentAmount: decimal.NewFromInt(6000),
		StartDate:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		TargetDate:    time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC),
		Status:        domain.GoalStatusActive,
	}
}

func (suite *ReminderServiceTestSuite) expectNoLastSent(reminderType domain.ReminderType) {
	suite.mockReminderRepo.On("FindLastSentByGoalAndType", mock.Anything, suite.goal.GoalID, reminderType).Return(nil, apperrors.ErrNotFound).Once()
}

// --- Test Cases ---

func (suite *ReminderServiceTestSuite) TestSweepReminders_CreatesDueReminders() {
	ctx := context.Background()
	suite.mockGoalRepo.On("ListActiveGoals", ctx).Return([]domain.Goal{suite.goal}, nil).Once()

	// Deadline window opened on Feb 8 (target Feb 15, lead 7 days); the
	// contribution nudge for Feb 1 has passed; the progress check on Feb 15
	// has not arrived yet.
	suite.expectNoLastSent(domain.ReminderDeadline)
	suite.mockReminderRepo.On("CreateReminderIfAbsent", ctx, mock.MatchedBy(func(r domain.Reminder) bool {
		return r.ReminderType == domain.ReminderDeadline &&
			r.ReminderDate.Equal(time.Date(2024, 2, 8, 0, 0, 0, 0, time.UTC))
	})).Return(true, nil).Once()

	suite.expectNoLastSent(domain.ReminderContribution)
	suite.mockReminderRepo.On("CreateReminderIfAbsent", ctx, mock.MatchedBy(func(r domain.Reminder) bool {
		return r.ReminderType == domain.ReminderContribution &&
			r.ReminderDate.Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	})).Return(true, nil).Once()

	resp, err := suite.service.SweepReminders(ctx)

	suite.Require().NoError(err)
	suite.Equal(1, resp.DeadlineCreated)
	suite.Equal(1, resp.ContributionCreated)
	suite.Equal(0, resp.ProgressCreated)
	suite.mockReminderRepo.AssertExpectations(suite.T())
}

func (suite *ReminderServiceTestSuite) TestSweepReminders_IdempotentOnRerun() {
	ctx := context.Background()
	suite.mockGoalRepo.On("ListActiveGoals", ctx).Return([]domain.Goal{suite.goal}, nil).Once()

	// Pending rows already exist; the conditional insert reports no-op.
	suite.expectNoLastSent(domain.ReminderDeadline)
	suite.expectNoLastSent(domain.ReminderContribution)
	suite.mockReminderRepo.On("CreateReminderIfAbsent", ctx, mock.AnythingOfType("domain.Reminder")).Return(false, nil).Twice()

	resp, err := suite.service.SweepReminders(ctx)

	suite.Require().NoError(err)
	suite.Equal(0, resp.DeadlineCreated)
	suite.Equal(0, resp.ContributionCreated)
	suite.Equal(0, resp.ProgressCreated)
}

func (suite *ReminderServiceTestSuite) TestSweepReminders_SkipsAlreadySentSlot() {
	ctx := context.Background()
	suite.mockGoalRepo.On("ListActiveGoals", ctx).Return([]domain.Goal{suite.goal}, nil).Once()

	// Both due slots were sent already this cycle; nothing is recreated.
	sentDeadline := domain.Reminder{
		ReminderID:   uuid.NewString(),
		GoalID:       suite.goal.GoalID,
		ReminderType: domain.ReminderDeadline,
		ReminderDate: time.Date(2024, 2, 8, 0, 0, 0, 0, time.UTC),
		IsSent:       true,
	}
	sentContribution := domain.Reminder{
		ReminderID:   uuid.NewString(),
		GoalID:       suite.goal.GoalID,
		ReminderType: domain.ReminderContribution,
		ReminderDate: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		IsSent:       true,
	}
	suite.mockReminderRepo.On("FindLastSentByGoalAndType", mock.Anything, suite.goal.GoalID, domain.ReminderDeadline).Return(&sentDeadline, nil).Once()
	suite.mockReminderRepo.On("FindLastSentByGoalAndType", mock.Anything, suite.goal.GoalID, domain.ReminderContribution).Return(&sentContribution, nil).Once()

	resp, err := suite.service.SweepReminders(ctx)

	suite.Require().NoError(err)
	suite.Equal(0, resp.DeadlineCreated)
	suite.Equal(0, resp.ContributionCreated)
	suite.mockReminderRepo.AssertNotCalled(suite.T(), "CreateReminderIfAbsent", ctx, mock.Anything)
}

func (suite *ReminderServiceTestSuite) TestSweepReminders_NoGoalsNoWork() {
	ctx := context.Background()
	suite.mockGoalRepo.On("ListActiveGoals", ctx).Return([]domain.Goal{}, nil).Once()

	resp, err := suite.service.SweepReminders(ctx)

	suite.Require().NoError(err)
	suite.Equal(0, resp.DeadlineCreated+resp.ContributionCreated+resp.ProgressCreated)
	suite.mockReminderRepo.AssertNotCalled(suite.T(), "CreateReminderIfAbsent", ctx, mock.Anything)
}

func (suite *ReminderServiceTestSuite) TestListDueReminders() {
	ctx := context.Background()
	due := []domain.Reminder{
		{ReminderID: uuid.NewString(), GoalID: suite.goal.GoalID, ReminderType: domain.ReminderDeadline},
	}
	suite.mockReminderRepo.On("ListDueReminders", ctx, suite.userID, suite.clock.Now()).Return(due, nil).Once()

	reminders, err := suite.service.ListDueReminders(ctx, suite.userID)

	suite.Require().NoError(err)
	suite.Len(reminders, 1)
}

func (suite *ReminderServiceTestSuite) TestMarkSent_Success() {
	ctx := context.Background()
	reminder := domain.Reminder{
		ReminderID:   uuid.NewString(),
		GoalID:       suite.goal.GoalID,
		ReminderType: domain.ReminderContribution,
		ReminderDate: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	}

	suite.mockReminderRepo.On("FindReminderByID", ctx, reminder.ReminderID).Return(&reminder, nil).Once()
	suite.mockGoalRepo.On("FindGoalByID", ctx, suite.goal.GoalID).Return(&suite.goal, nil).Once()
	suite.mockReminderRepo.On("MarkReminderSent", ctx, reminder.ReminderID, suite.clock.Now(), suite.userID).Return(nil).Once()

	updated, err := suite.service.MarkSent(ctx, reminder.ReminderID, suite.userID)

	suite.Require().NoError(err)
	suite.True(updated.IsSent)
	suite.Require().NotNil(updated.SentAt)
	suite.Equal(suite.clock.Now(), *updated.SentAt)
}

func (suite *ReminderServiceTestSuite) TestMarkSent_SecondCallFails() {
	ctx := context.Background()
	sentAt := suite.clock.Now().Add(-time.Hour)
	reminder := domain.Reminder{
		ReminderID:   uuid.NewString(),
		GoalID:       suite.goal.GoalID,
		ReminderType: domain.ReminderContribution,
		IsSent:       true,
		SentAt:       &sentAt,
	}

	suite.mockReminderRepo.On("FindReminderByID", ctx, reminder.ReminderID).Return(&reminder, nil).Once()
	suite.mockGoalRepo.On("FindGoalByID", ctx, suite.goal.GoalID).Return(&suite.goal, nil).Once()
	suite.mockReminderRepo.On("MarkReminderSent", ctx, reminder.ReminderID, suite.clock.Now(), suite.userID).Return(apperrors.ErrConflict).Once()

	updated, err := suite.service.MarkSent(ctx, reminder.ReminderID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrAlreadySent)
	suite.Nil(updated)
}

func (suite *ReminderServiceTestSuite) TestMarkSent_OtherUsersReminderNotFound() {
	ctx := context.Background()
	reminder := domain.Reminder{
		ReminderID: uuid.NewString(),
		GoalID:     suite.goal.GoalID,
	}

	suite.mockReminderRepo.On("FindReminderByID", ctx, reminder.ReminderID).Return(&reminder, nil).Once()
	suite.mockGoalRepo.On("FindGoalByID", ctx, suite.goal.GoalID).Return(&suite.goal, nil).Once()

	updated, err := suite.service.MarkSent(ctx, reminder.ReminderID, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.Nil(updated)
	suite.mockReminderRepo.AssertNotCalled(suite.T(), "MarkReminderSent", ctx, mock.Anything, mock.Anything, mock.Anything)
}

func TestReminderServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReminderServiceTestSuite))
}
