package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dhanarakshak/goals-backend/internal/apperrors"
	"github.com/dhanarakshak/goals-backend/internal/core/domain"
	portsrepo "github.com/dhanarakshak/goals-backend/internal/core/ports/repositories"
	"github.com/dhanarakshak/goals-backend/internal/models"
	"github.com/dhanarakshak/goals-backend/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxReminderRepository struct {
	BaseRepository
}

// newPgxReminderRepository creates a new repository for reminder data.
func newPgxReminderRepository(pool *pgxpool.Pool) portsrepo.ReminderRepositoryFacade {
	return &PgxReminderRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxReminderRepository implements portsrepo.ReminderRepositoryFacade
var _ portsrepo.ReminderRepositoryFacade = (*PgxReminderRepository)(nil)

const reminderColumns = `reminder_id, goal_id, reminder_type, reminder_date, message, is_sent, sent_at, created_at, created_by, last_updated_at, last_updated_by`

func scanReminder(row pgx.Row) (models.Reminder, error) {
	var m models.Reminder
	err := row.Scan(
		&m.ReminderID,
		&m.GoalID,
		&m.ReminderType,
		&m.ReminderDate,
		&m.Message,
		&m.IsSent,
		&m.SentAt,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// CreateReminderIfAbsent inserts a reminder unless an unsent one already
// exists for the same (goal, type, reminder date) triple. The partial unique
// index enforces the rule; ON CONFLICT DO NOTHING makes concurrent sweeps
// idempotent. Returns whether a row was actually created.
func (r *PgxReminderRepository) CreateReminderIfAbsent(ctx context.Context, reminder domain.Reminder) (bool, error) {
	modelReminder := mapping.ToModelReminder(reminder)

	query := `
		INSERT INTO reminders (` + reminderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (goal_id, reminder_type, reminder_date) WHERE NOT is_sent DO NOTHING;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		modelReminder.ReminderID,
		modelReminder.GoalID,
		modelReminder.ReminderType,
		modelReminder.ReminderDate,
		modelReminder.Message,
		modelReminder.IsSent,
		modelReminder.SentAt,
		modelReminder.CreatedAt,
		modelReminder.CreatedBy,
		modelReminder.LastUpdatedAt,
		modelReminder.LastUpdatedBy,
	)
	if err != nil {
		return false, fmt.Errorf("failed to create reminder for goal %s: %w", modelReminder.GoalID, err)
	}
	return cmdTag.RowsAffected() > 0, nil
}

// FindReminderByID retrieves a reminder by its ID.
func (r *PgxReminderRepository) FindReminderByID(ctx context.Context, reminderID string) (*domain.Reminder, error) {
	query := `
		SELECT ` + reminderColumns + `
		FROM reminders
		WHERE reminder_id = $1;
	`
	modelReminder, err := scanReminder(r.Pool.QueryRow(ctx, query, reminderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find reminder by ID %s: %w", reminderID, err)
	}

	domainReminder := mapping.ToDomainReminder(modelReminder)
	return &domainReminder, nil
}

// ListDueReminders retrieves unsent reminders due on or before asOf for goals
// owned by the user. Deadline reminders of goals that have left ACTIVE are
// suppressed in the query rather than deleted, so a goal returning to ACTIVE
// surfaces them again.
func (r *PgxReminderRepository) ListDueReminders(ctx context.Context, userID string, asOf time.Time) ([]domain.Reminder, error) {
	query := `
		SELECT r.reminder_id, r.goal_id, r.reminder_type, r.reminder_date, r.message, r.is_sent, r.sent_at,
		       r.created_at, r.created_by, r.last_updated_at, r.last_updated_by
		FROM reminders r
		JOIN goals g ON r.goal_id = g.goal_id
		WHERE g.user_id = $1
		  AND r.is_sent = FALSE
		  AND r.reminder_date <= $2
		  AND NOT (r.reminder_type = 'DEADLINE' AND g.status != 'ACTIVE')
		ORDER BY r.reminder_date ASC, r.reminder_id;
	`
	rows, err := r.Pool.Query(ctx, query, userID, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to query due reminders for user %s: %w", userID, err)
	}
	defer rows.Close()

	modelReminders := []models.Reminder{}
	for rows.Next() {
		m, scanErr := scanReminder(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan due reminder row for user %s: %w", userID, scanErr)
		}
		modelReminders = append(modelReminders, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating due reminder rows for user %s: %w", userID, err)
	}

	return mapping.ToDomainReminders(modelReminders), nil
}

// FindUnsentByGoalAndType returns the pending reminder of the given type for a
// goal. At most one can exist per (goal, type, date); if several dates are
// pending the earliest is returned.
func (r *PgxReminderRepository) FindUnsentByGoalAndType(ctx context.Context, goalID string, reminderType domain.ReminderType) (*domain.Reminder, error) {
	query := `
		SELECT ` + reminderColumns + `
		FROM reminders
		WHERE goal_id = $1 AND reminder_type = $2 AND is_sent = FALSE
		ORDER BY reminder_date ASC
		LIMIT 1;
	`
	modelReminder, err := scanReminder(r.Pool.QueryRow(ctx, query, goalID, reminderType))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find unsent %s reminder for goal %s: %w", reminderType, goalID, err)
	}

	domainReminder := mapping.ToDomainReminder(modelReminder)
	return &domainReminder, nil
}

// FindLastSentByGoalAndType returns the most recently sent reminder of the
// given type for a goal, or ErrNotFound when none was ever sent.
func (r *PgxReminderRepository) FindLastSentByGoalAndType(ctx context.Context, goalID string, reminderType domain.ReminderType) (*domain.Reminder, error) {
	query := `
		SELECT ` + reminderColumns + `
		FROM reminders
		WHERE goal_id = $1 AND reminder_type = $2 AND is_sent = TRUE
		ORDER BY reminder_date DESC
		LIMIT 1;
	`
	modelReminder, err := scanReminder(r.Pool.QueryRow(ctx, query, goalID, reminderType))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find last sent %s reminder for goal %s: %w", reminderType, goalID, err)
	}

	domainReminder := mapping.ToDomainReminder(modelReminder)
	return &domainReminder, nil
}

// MarkReminderSent flips pending -> sent. The is_sent = FALSE guard makes the
// transition one-way; when zero rows match we look the reminder up to tell a
// missing row apart from an already-sent one.
func (r *PgxReminderRepository) MarkReminderSent(ctx context.Context, reminderID string, sentAt time.Time, updatedByUserID string) error {
	query := `
		UPDATE reminders
		SET is_sent = TRUE, sent_at = $2, last_updated_at = $2, last_updated_by = $3
		WHERE reminder_id = $1 AND is_sent = FALSE;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, reminderID, sentAt, updatedByUserID)
	if err != nil {
		return fmt.Errorf("failed to mark reminder %s sent: %w", reminderID, err)
	}

	if cmdTag.RowsAffected() == 0 {
		_, findErr := r.FindReminderByID(ctx, reminderID)
		if errors.Is(findErr, apperrors.ErrNotFound) {
			return apperrors.ErrNotFound
		} else if findErr != nil {
			return fmt.Errorf("failed to check reminder status after send attempt for %s: %w", reminderID, findErr)
		}
		// The reminder exists but was already sent.
		return apperrors.ErrConflict
	}

	return nil
}
