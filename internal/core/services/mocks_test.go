package services_test

import (
	"context"
	"time"

	"github.com/dhanarakshak/goals-backend/internal/core/domain"
	portsrepo "github.com/dhanarakshak/goals-backend/internal/core/ports/repositories"
	portssvc "github.com/dhanarakshak/goals-backend/internal/core/ports/services"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Fixed Clock ---

// fixedClock pins time so date-sensitive logic is deterministic in tests.
type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

func (c fixedClock) Today() time.Time {
	return time.Date(c.now.Year(), c.now.Month(), c.now.Day(), 0, 0, 0, 0, time.UTC)
}

var _ portssvc.Clock = fixedClock{}

// --- Mock GoalRepository ---

type MockGoalRepository struct {
	mock.Mock
}

// Ensure MockGoalRepository implements portsrepo.GoalRepositoryWithTx
var _ portsrepo.GoalRepositoryWithTx = (*MockGoalRepository)(nil)

func (m *MockGoalRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockGoalRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockGoalRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockGoalRepository) FindGoalByID(ctx context.Context, goalID string) (*domain.Goal, error) {
	args := m.Called(ctx, goalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Goal), args.Error(1)
}

func (m *MockGoalRepository) ListGoalsByUser(ctx context.Context, userID string, limit int, nextToken *string) ([]domain.Goal, *string, error) {
	args := m.Called(ctx, userID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.Goal), returnedNextToken, args.Error(2)
}

func (m *MockGoalRepository) ListActiveGoals(ctx context.Context) ([]domain.Goal, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Goal), args.Error(1)
}

func (m *MockGoalRepository) GetGoalStats(ctx context.Context, userID string) (*domain.GoalStats, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GoalStats), args.Error(1)
}

func (m *MockGoalRepository) SaveGoal(ctx context.Context, goal domain.Goal) error {
	args := m.Called(ctx, goal)
	return args.Error(0)
}

func (m *MockGoalRepository) UpdateGoal(ctx context.Context, goal domain.Goal) error {
	args := m.Called(ctx, goal)
	return args.Error(0)
}

func (m *MockGoalRepository) UpdateGoalStatus(ctx context.Context, goalID string, status domain.GoalStatus, updatedByUserID string, updatedAt time.Time) error {
	args := m.Called(ctx, goalID, status, updatedByUserID, updatedAt)
	return args.Error(0)
}

func (m *MockGoalRepository) DeleteGoalCascade(ctx context.Context, goalID string) error {
	args := m.Called(ctx, goalID)
	return args.Error(0)
}

func (m *MockGoalRepository) FindGoalByIDForUpdate(ctx context.Context, tx pgx.Tx, goalID string) (*domain.Goal, error) {
	args := m.Called(ctx, tx, goalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Goal), args.Error(1)
}

func (m *MockGoalRepository) UpdateGoalProgressInTx(ctx context.Context, tx pgx.Tx, goalID string, currentAmount decimal.Decimal, status domain.GoalStatus, updatedByUserID string, updatedAt time.Time) error {
	args := m.Called(ctx, tx, goalID, currentAmount, status, updatedByUserID, updatedAt)
	return args.Error(0)
}

// --- Mock ContributionRepository ---

type MockContributionRepository struct {
	mock.Mock
}

var _ portsrepo.ContributionRepositoryFacade = (*MockContributionRepository)(nil)

func (m *MockContributionRepository) ListContributionsByGoal(ctx context.Context, goalID string, limit int, nextToken *string) ([]domain.Contribution, *string, error) {
	args := m.Called(ctx, goalID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.Contribution), returnedNextToken, args.Error(2)
}

func (m *MockContributionRepository) FindLatestContributionDate(ctx context.Context, goalID string) (*time.Time, error) {
	args := m.Called(ctx, goalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*time.Time), args.Error(1)
}

func (m *MockContributionRepository) SaveContributionInTx(ctx context.Context, tx pgx.Tx, contribution domain.Contribution) error {
	args := m.Called(ctx, tx, contribution)
	return args.Error(0)
}

func (m *MockContributionRepository) SumContributionsInTx(ctx context.Context, tx pgx.Tx, goalID string) (decimal.Decimal, error) {
	args := m.Called(ctx, tx, goalID)
	if args.Get(0) == nil {
		return decimal.Zero, args.Error(1)
	}
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// --- Mock MilestoneRepository ---

type MockMilestoneRepository struct {
	mock.Mock
}

var _ portsrepo.MilestoneRepositoryFacade = (*MockMilestoneRepository)(nil)

func (m *MockMilestoneRepository) FindMilestoneByID(ctx context.Context, milestoneID string) (*domain.Milestone, error) {
	args := m.Called(ctx, milestoneID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Milestone), args.Error(1)
}

func (m *MockMilestoneRepository) ListMilestonesByGoal(ctx context.Context, goalID string) ([]domain.Milestone, error) {
	args := m.Called(ctx, goalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Milestone), args.Error(1)
}

func (m *MockMilestoneRepository) SaveMilestone(ctx context.Context, milestone domain.Milestone) error {
	args := m.Called(ctx, milestone)
	return args.Error(0)
}

func (m *MockMilestoneRepository) OverrideAchievement(ctx context.Context, milestoneID string, achieved bool, achievedDate *time.Time, updatedByUserID string, updatedAt time.Time) error {
	args := m.Called(ctx, milestoneID, achieved, achievedDate, updatedByUserID, updatedAt)
	return args.Error(0)
}

func (m *MockMilestoneRepository) FindUnachievedMilestonesInTx(ctx context.Context, tx pgx.Tx, goalID string) ([]domain.Milestone, error) {
	args := m.Called(ctx, tx, goalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Milestone), args.Error(1)
}

func (m *MockMilestoneRepository) MarkMilestonesAchievedInTx(ctx context.Context, tx pgx.Tx, milestoneIDs []string, achievedDate time.Time, updatedByUserID string, updatedAt time.Time) error {
	args := m.Called(ctx, tx, milestoneIDs, achievedDate, updatedByUserID, updatedAt)
	return args.Error(0)
}

// --- Mock ReminderRepository ---

type MockReminderRepository struct {
	mock.Mock
}

var _ portsrepo.ReminderRepositoryFacade = (*MockReminderRepository)(nil)

func (m *MockReminderRepository) FindReminderByID(ctx context.Context, reminderID string) (*domain.Reminder, error) {
	args := m.Called(ctx, reminderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reminder), args.Error(1)
}

func (m *MockReminderRepository) ListDueReminders(ctx context.Context, userID string, asOf time.Time) ([]domain.Reminder, error) {
	args := m.Called(ctx, userID, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Reminder), args.Error(1)
}

func (m *MockReminderRepository) FindUnsentByGoalAndType(ctx context.Context, goalID string, reminderType domain.ReminderType) (*domain.Reminder, error) {
	args := m.Called(ctx, goalID, reminderType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reminder), args.Error(1)
}

func (m *MockReminderRepository) FindLastSentByGoalAndType(ctx context.Context, goalID string, reminderType domain.ReminderType) (*domain.Reminder, error) {
	args := m.Called(ctx, goalID, reminderType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reminder), args.Error(1)
}

func (m *MockReminderRepository) CreateReminderIfAbsent(ctx context.Context, reminder domain.Reminder) (bool, error) {
	args := m.Called(ctx, reminder)
	return args.Bool(0), args.Error(1)
}

func (m *MockReminderRepository) MarkReminderSent(ctx context.Context, reminderID string, sentAt time.Time, updatedByUserID string) error {
	args := m.Called(ctx, reminderID, sentAt, updatedByUserID)
	return args.Error(0)
}

// --- Mock UserRepository ---

type MockUserRepository struct {
	mock.Mock
}

var _ portsrepo.UserRepositoryFacade = (*MockUserRepository)(nil)

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// --- Mock EventSink ---

type MockEventSink struct {
	mock.Mock
}

var _ portssvc.EventSink = (*MockEventSink)(nil)

func (m *MockEventSink) MilestoneAchieved(ctx context.Context, event domain.MilestoneAchievedEvent) {
	m.Called(ctx, event)
}

func (m *MockEventSink) GoalCompleted(ctx context.Context, event domain.GoalCompletedEvent) {
	m.Called(ctx, event)
}
