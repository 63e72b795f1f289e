package mapping

import (
	"github.com/dhanarakshak/goals-backend/internal/core/domain"
	"github.com/dhanarakshak/goals-backend/internal/models"
)

// ToModelReminder converts a domain Reminder to a model Reminder
func ToModelReminder(d domain.Reminder) models.Reminder {
	return models.Reminder{
		ReminderID:   d.ReminderID,
		GoalID:       d.GoalID,
		ReminderType: models.ReminderType(d.ReminderType),
		ReminderDate: d.ReminderDate,
		Message:      d.Message,
		IsSent:       d.IsSent,
		SentAt:       d.SentAt,
		AuditFields:  ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainReminder converts a model Reminder to a domain Reminder
func ToDomainReminder(m models.Reminder) domain.Reminder {
	return domain.Reminder{
		ReminderID:   m.ReminderID,
		GoalID:       m.GoalID,
		ReminderType: domain.ReminderType(m.ReminderType),
		ReminderDate: m.ReminderDate,
		Message:      m.Message,
		IsSent:       m.IsSent,
		SentAt:       m.SentAt,
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainReminders converts a slice of model Reminders to domain Reminders
func ToDomainReminders(ms []models.Reminder) []domain.Reminder {
	reminders := make([]domain.Reminder, 0, len(ms))
	for _, m := range ms {
		reminders = append(reminders, ToDomainReminder(m))
	}
	return reminders
}
