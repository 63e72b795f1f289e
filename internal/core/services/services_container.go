package services

import (
	portsrepo "github.com/dhanarakshak/goals-backend/internal/core/ports/repositories"
	portssvc "github.com/dhanarakshak/goals-backend/internal/core/ports/services"
	"github.com/dhanarakshak/goals-backend/internal/platform/config"
	"github.com/dhanarakshak/goals-backend/internal/utils"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, clock portssvc.Clock, posthogClient *utils.PosthogClientWrapper) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	events := NewEventFanout(repos.ReminderRepo, posthogClient, clock)

	container.Goal = NewGoalService(repos.GoalRepo, repos.ContributionRepo, repos.MilestoneRepo, clock, events)
	container.Ledger = NewLedgerService(repos.GoalRepo, repos.ContributionRepo, repos.MilestoneRepo, clock, events)
	container.Milestone = NewMilestoneService(repos.GoalRepo, repos.MilestoneRepo, clock, events)
	container.Reminder = NewReminderService(repos.GoalRepo, repos.ReminderRepo, clock, ReminderScheduleConfig{
		DeadlineLeadDays:        cfg.ReminderDeadlineLeadDays,
		ContributionReminderDay: cfg.ContributionReminderDay,
		ProgressReminderDay:     cfg.ProgressReminderDay,
	})
	container.User = NewUserService(repos.UserRepo, clock)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.GoalSvcFacade      = (*goalService)(nil)
	_ portssvc.LedgerSvcFacade    = (*ledgerService)(nil)
	_ portssvc.MilestoneSvcFacade = (*milestoneService)(nil)
	_ portssvc.ReminderSvcFacade  = (*reminderService)(nil)
	_ portssvc.UserSvcFacade      = (*userService)(nil)
)
