package dto

import (
	"time"

	"github.com/dhanarakshak/goals-backend/internal/core/domain"
)

// ReminderResponse defines the data returned for a reminder.
type ReminderResponse struct {
	ReminderID   string              `json:"reminderID"`
	GoalID       string              `json:"goalID"`
	ReminderType domain.ReminderType `json:"reminderType"`
	ReminderDate time.Time           `json:"reminderDate"`
	Message      string              `json:"message"`
	IsSent       bool                `json:"isSent"`
	SentAt       *time.Time          `json:"sentAt,omitempty"`
}

// SweepRemindersResponse reports what a sweep pass produced.
type SweepRemindersResponse struct {
	DeadlineCreated     int `json:"deadlineCreated"`
	ContributionCreated int `json:"contributionCreated"`
	ProgressCreated     int `json:"progressCreated"`
}

// ToReminderResponse converts a domain.Reminder to its DTO.
func ToReminderResponse(r *domain.Reminder) ReminderResponse {
	return ReminderResponse{
		ReminderID:   r.ReminderID,
		GoalID:       r.GoalID,
		ReminderType: r.ReminderType,
		ReminderDate: r.ReminderDate,
		Message:      r.Message,
		IsSent:       r.IsSent,
		SentAt:       r.SentAt,
	}
}

// ToReminderResponses converts a slice of domain.Reminder to DTOs.
func ToReminderResponses(rs []domain.Reminder) []ReminderResponse {
	responses := make([]ReminderResponse, len(rs))
	for i := range rs {
		responses[i] = ToReminderResponse(&rs[i])
	}
	return responses
}
