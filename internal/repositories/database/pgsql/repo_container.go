package pgsql

import (
	portsrepo "github.com/dhanarakshak/goals-backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	goalRepo := newPgxGoalRepository(dbPool)
	contributionRepo := newPgxContributionRepository(dbPool)
	milestoneRepo := newPgxMilestoneRepository(dbPool)
	reminderRepo := newPgxReminderRepository(dbPool)
	userRepo := newPgxUserRepository(dbPool)

	return portsrepo.RepositoryProvider{
		GoalRepo:         goalRepo,
		ContributionRepo: contributionRepo,
		MilestoneRepo:    milestoneRepo,
		ReminderRepo:     reminderRepo,
		UserRepo:         userRepo,
	}
}
