package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dhanarakshak/goals-backend/internal/apperrors"
	"github.com/dhanarakshak/goals-backend/internal/core/domain"
	portssvc "github.com/dhanarakshak/goals-backend/internal/core/ports/services"
	"github.com/dhanarakshak/goals-backend/internal/core/services"
	"github.com/dhanarakshak/goals-backend/internal/dto"
	"github.com/dhanarakshak/goals-backend/internal/handlers"
	"github.com/dhanarakshak/goals-backend/internal/platform/config"
	"github.com/dhanarakshak/goals-backend/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock GoalService ---
type MockGoalService struct {
	mock.Mock
}

var _ portssvc.GoalSvcFacade = (*MockGoalService)(nil)

func (m *MockGoalService) CreateGoal(ctx context.Context, req dto.CreateGoalRequest, creatorUserID string) (*domain.Goal, error) {
	args := m.Called(ctx, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Goal), args.Error(1)
}

func (m *MockGoalService) GetGoalByID(ctx context.Context, goalID string, requestingUserID string) (*domain.Goal, error) {
	args := m.Called(ctx, goalID, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Goal), args.Error(1)
}

func (m *MockGoalService) ListGoals(ctx context.Context, userID string, params dto.ListGoalsParams) (*dto.ListGoalsResponse, error) {
	args := m.Called(ctx, userID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListGoalsResponse), args.Error(1)
}

func (m *MockGoalService) GetGoalStats(ctx context.Context, userID string) (*domain.GoalStats, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GoalStats), args.Error(1)
}

func (m *MockGoalService) GetGoalDetails(ctx context.Context, goalID string, requestingUserID string) (*dto.GoalDetailsResponse, error) {
	args := m.Called(ctx, goalID, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.GoalDetailsResponse), args.Error(1)
}

func (m *MockGoalService) UpdateGoal(ctx context.Context, goalID string, req dto.UpdateGoalRequest, requestingUserID string) (*domain.Goal, error) {
	args := m.Called(ctx, goalID, req, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Goal), args.Error(1)
}

func (m *MockGoalService) UpdateStatus(ctx context.Context, goalID string, newStatus domain.GoalStatus, requestingUserID string) (*domain.Goal, error) {
	args := m.Called(ctx, goalID, newStatus, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Goal), args.Error(1)
}

func (m *MockGoalService) DeleteGoal(ctx context.Context, goalID string, requestingUserID string) error {
	args := m.Called(ctx, goalID, requestingUserID)
	return args.Error(0)
}

func (m *MockGoalService) RecomputeProgress(ctx context.Context, goalID string, requestingUserID string) (*dto.RecomputeProgressResponse, error) {
	args := m.Called(ctx, goalID, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.RecomputeProgressResponse), args.Error(1)
}

// --- Mock LedgerService ---
type MockLedgerService struct {
	mock.Mock
}

var _ portssvc.LedgerSvcFacade = (*MockLedgerService)(nil)

func (m *MockLedgerService) AddContribution(ctx context.Context, goalID string, req dto.AddContributionRequest, requestingUserID string) (*dto.AddContributionResponse, error) {
	args := m.Called(ctx, goalID, req, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.AddContributionResponse), args.Error(1)
}

func (m *MockLedgerService) ListContributions(ctx context.Context, goalID string, requestingUserID string, params dto.ListContributionsParams) (*dto.ListContributionsResponse, error) {
	args := m.Called(ctx, goalID, requestingUserID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListContributionsResponse), args.Error(1)
}

// --- Mock MilestoneService ---
type MockMilestoneService struct {
	mock.Mock
}

var _ portssvc.MilestoneSvcFacade = (*MockMilestoneService)(nil)

func (m *MockMilestoneService) ListMilestones(ctx context.Context, goalID string, requestingUserID string) ([]domain.Milestone, error) {
	args := m.Called(ctx, goalID, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Milestone), args.Error(1)
}

func (m *MockMilestoneService) CreateMilestone(ctx context.Context, goalID string, req dto.CreateMilestoneRequest, requestingUserID string) (*domain.Milestone, error) {
	args := m.Called(ctx, goalID, req, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Milestone), args.Error(1)
}

func (m *MockMilestoneService) AchieveOverride(ctx context.Context, goalID string, milestoneID string, req dto.OverrideMilestoneRequest, requestingUserID string) (*domain.Milestone, error) {
	args := m.Called(ctx, goalID, milestoneID, req, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Milestone), args.Error(1)
}

// --- Mock ReminderService ---
type MockReminderService struct {
	mock.Mock
}

var _ portssvc.ReminderSvcFacade = (*MockReminderService)(nil)

func (m *MockReminderService) SweepReminders(ctx context.Context) (*dto.SweepRemindersResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.SweepRemindersResponse), args.Error(1)
}

func (m *MockReminderService) ListDueReminders(ctx context.Context, requestingUserID string) ([]domain.Reminder, error) {
	args := m.Called(ctx, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Reminder), args.Error(1)
}

func (m *MockReminderService) MarkSent(ctx context.Context, reminderID string, requestingUserID string) (*domain.Reminder, error) {
	args := m.Called(ctx, reminderID, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reminder), args.Error(1)
}

// --- Mock UserService ---
type MockUserService struct {
	mock.Mock
}

var _ portssvc.UserSvcFacade = (*MockUserService)(nil)

func (m *MockUserService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) RegisterUser(ctx context.Context, req dto.RegisterUserRequest) (*domain.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) AuthenticateUser(ctx context.Context, email, password string) (*domain.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// --- Test Suite ---
type GoalHandlerTestSuite struct {
	suite.Suite
	router           *gin.Engine
	mockGoalSvc      *MockGoalService
	mockLedgerSvc    *MockLedgerService
	mockMilestoneSvc *MockMilestoneService
	mockReminderSvc  *MockReminderService
	mockUserSvc      *MockUserService
	jwtSecret        string
	userID           string
}

func (suite *GoalHandlerTestSuite) generateTestToken(userID string) string {
	token, err := utils.GenerateJWT(userID, suite.jwtSecret, time.Hour, "goals-test")
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return token
}

// registerTestValidators mirrors the custom binding validators wired in main.
func registerTestValidators(t *testing.T) {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		t.Fatal("could not obtain validator engine")
	}
	_ = v.RegisterValidation("decimalgt0", func(fl validator.FieldLevel) bool {
		value, ok := fl.Field().Interface().(decimal.Decimal)
		if !ok {
			return false
		}
		return value.IsPositive()
	})
}

func (suite *GoalHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	registerTestValidators(suite.T())
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"
	suite.userID = uuid.NewString()

	suite.mockGoalSvc = new(MockGoalService)
	suite.mockLedgerSvc = new(MockLedgerService)
	suite.mockMilestoneSvc = new(MockMilestoneService)
	suite.mockReminderSvc = new(MockReminderService)
	suite.mockUserSvc = new(MockUserService)

	cfg := &config.Config{
		JWTSecret:         suite.jwtSecret,
		JWTExpiryDuration: time.Hour,
		JWTIssuer:         "goals-test",
	}
	handlers.RegisterRoutes(suite.router, cfg, &portssvc.ServiceContainer{
		Goal:      suite.mockGoalSvc,
		Ledger:    suite.mockLedgerSvc,
		Milestone: suite.mockMilestoneSvc,
		Reminder:  suite.mockReminderSvc,
		User:      suite.mockUserSvc,
	})
}

func (suite *GoalHandlerTestSuite) doRequest(method, url string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		suite.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req, _ := http.NewRequest(method, url, &buf)
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(suite.userID))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

// --- Test Cases ---

func (suite *GoalHandlerTestSuite) TestAddContribution_Success() {
	goalID := uuid.NewString()
	expected := &dto.AddContributionResponse{
		Contribution: dto.ContributionResponse{
			ContributionID: uuid.NewString(),
			GoalID:         goalID,
			Amount:         decimal.NewFromInt(3000),
		},
		Goal: dto.GoalResponse{
			GoalID:        goalID,
			CurrentAmount: decimal.NewFromInt(3000),
			Status:        domain.GoalStatusActive,
		},
		MilestonesAchieved: []dto.MilestoneResponse{
			{MilestoneID: uuid.NewString(), GoalID: goalID, Achieved: true},
		},
	}

	suite.mockLedgerSvc.On("AddContribution",
		mock.Anything,
		goalID,
		mock.MatchedBy(func(r dto.AddContributionRequest) bool {
			return r.Amount.Equal(decimal.NewFromInt(3000))
		}),
		suite.userID,
	).Return(expected, nil).Once()

	w := suite.doRequest(http.MethodPost, fmt.Sprintf("/api/v1/goals/%s/contributions", goalID),
		map[string]any{"amount": "3000"})

	suite.Equal(http.StatusCreated, w.Code, w.Body.String())

	var resp dto.AddContributionResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(expected.Contribution.ContributionID, resp.Contribution.ContributionID)
	suite.Len(resp.MilestonesAchieved, 1)
	suite.mockLedgerSvc.AssertExpectations(suite.T())
}

func (suite *GoalHandlerTestSuite) TestAddContribution_TerminalGoalConflict() {
	goalID := uuid.NewString()
	suite.mockLedgerSvc.On("AddContribution", mock.Anything, goalID, mock.AnythingOfType("dto.AddContributionRequest"), suite.userID).
		Return(nil, fmt.Errorf("%w: goal %s is COMPLETED", services.ErrInvalidGoalState, goalID)).Once()

	w := suite.doRequest(http.MethodPost, fmt.Sprintf("/api/v1/goals/%s/contributions", goalID),
		map[string]any{"amount": "100"})

	suite.Equal(http.StatusConflict, w.Code, w.Body.String())
}

func (suite *GoalHandlerTestSuite) TestGetGoal_NotFound() {
	goalID := uuid.NewString()
	suite.mockGoalSvc.On("GetGoalByID", mock.Anything, goalID, suite.userID).Return(nil, apperrors.ErrNotFound).Once()

	w := suite.doRequest(http.MethodGet, "/api/v1/goals/"+goalID, nil)

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *GoalHandlerTestSuite) TestCreateGoal_ValidationError() {
	suite.mockGoalSvc.On("CreateGoal", mock.Anything, mock.AnythingOfType("dto.CreateGoalRequest"), suite.userID).
		Return(nil, fmt.Errorf("%w: target 2024-01-01, start 2024-06-01", services.ErrTargetDateBeforeStart)).Once()

	w := suite.doRequest(http.MethodPost, "/api/v1/goals", map[string]any{
		"name":         "Backwards",
		"goalType":     "SAVINGS",
		"targetAmount": "100",
		"startDate":    "2024-06-01T00:00:00Z",
		"targetDate":   "2024-01-01T00:00:00Z",
	})

	suite.Equal(http.StatusBadRequest, w.Code, w.Body.String())
}

func (suite *GoalHandlerTestSuite) TestUpdateGoalStatus_IllegalTransitionConflict() {
	goalID := uuid.NewString()
	suite.mockGoalSvc.On("UpdateStatus", mock.Anything, goalID, domain.GoalStatusCompleted, suite.userID).
		Return(nil, fmt.Errorf("%w: PAUSED -> COMPLETED", services.ErrInvalidStateTransition)).Once()

	w := suite.doRequest(http.MethodPatch, fmt.Sprintf("/api/v1/goals/%s/status", goalID),
		map[string]any{"status": "COMPLETED"})

	suite.Equal(http.StatusConflict, w.Code, w.Body.String())
}

func (suite *GoalHandlerTestSuite) TestMarkReminderSent_AlreadySentConflict() {
	reminderID := uuid.NewString()
	suite.mockReminderSvc.On("MarkSent", mock.Anything, reminderID, suite.userID).
		Return(nil, fmt.Errorf("%w: reminder %s", services.ErrAlreadySent, reminderID)).Once()

	w := suite.doRequest(http.MethodPost, fmt.Sprintf("/api/v1/reminders/%s/sent", reminderID), nil)

	suite.Equal(http.StatusConflict, w.Code, w.Body.String())
}

func (suite *GoalHandlerTestSuite) TestMissingTokenUnauthorized() {
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/goals", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockGoalSvc.AssertNotCalled(suite.T(), "ListGoals", mock.Anything, mock.Anything, mock.Anything)
}

// --- Run Test Suite ---
func TestGoalHandler(t *testing.T) {
	suite.Run(t, new(GoalHandlerTestSuite))
}
