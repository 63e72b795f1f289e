package services

import (
	"time"

	"github.com/dhanarakshak/goals-backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// ComputeRecommendation derives advisory figures for an active goal from its
// cached progress and contribution recency. Output is purely informational
// and never feeds back into goal state.
func ComputeRecommendation(goal *domain.Goal, lastContribution *time.Time, today time.Time) domain.Recommendation {
	rec := domain.Recommendation{Suggestions: []string{}}

	remaining := goal.TargetAmount.Sub(goal.CurrentAmount)
	if !remaining.IsPositive() {
		// Target already met; nothing left to pace.
		rec.OnTrack = true
		projected := today.Format("2006-01-02")
		rec.ProjectedCompletion = &projected
		rec.MonthlyContribution = decimal.Zero
		return rec
	}

	daysRemaining := int(goal.TargetDate.Sub(today).Hours() / 24)
	if daysRemaining < 0 {
		daysRemaining = 0
	}

	// Required monthly pace to finish by the target date.
	monthsRemaining := daysRemaining / 30
	if monthsRemaining < 1 {
		monthsRemaining = 1
	}
	rec.MonthlyContribution = remaining.Div(decimal.NewFromInt(int64(monthsRemaining))).Round(2)

	// Projection from the average daily pace since the goal started.
	daysElapsed := int(today.Sub(goal.StartDate).Hours() / 24)
	if daysElapsed > 0 && goal.CurrentAmount.IsPositive() {
		dailyPace := goal.CurrentAmount.Div(decimal.NewFromInt(int64(daysElapsed)))
		daysToFinish := remaining.Div(dailyPace).Ceil().IntPart()
		projectedDate := today.AddDate(0, 0, int(daysToFinish))
		projected := projectedDate.Format("2006-01-02")
		rec.ProjectedCompletion = &projected

		if projectedDate.After(goal.TargetDate) {
			rec.Suggestions = append(rec.Suggestions, "At your current pace you will miss the target date. Consider increasing your contributions.")
		}
	}

	// On-track compares actual progress percent to the elapsed-time percent,
	// with a 10 point grace band.
	totalDays := int(goal.TargetDate.Sub(goal.StartDate).Hours() / 24)
	actualPct := decimal.Zero
	if goal.TargetAmount.IsPositive() && goal.CurrentAmount.IsPositive() {
		actualPct = goal.CurrentAmount.Div(goal.TargetAmount).Mul(oneHundred)
	}
	if totalDays > 0 {
		expectedPct := decimal.NewFromInt(int64(daysElapsed)).Div(decimal.NewFromInt(int64(totalDays))).Mul(oneHundred)
		rec.OnTrack = actualPct.GreaterThanOrEqual(expectedPct.Sub(decimal.NewFromInt(10)))
	} else {
		rec.OnTrack = actualPct.GreaterThanOrEqual(oneHundred)
	}

	if daysRemaining < 30 {
		rec.Suggestions = append(rec.Suggestions, "Less than 30 days remain. You need "+remaining.String()+" more to reach your goal.")
	} else if daysRemaining < 90 {
		rec.Suggestions = append(rec.Suggestions, "Less than 90 days remain. Review your monthly contribution to stay on schedule.")
	}

	if lastContribution == nil {
		rec.Suggestions = append(rec.Suggestions, "No contributions recorded yet. Start with "+rec.MonthlyContribution.String()+" this month.")
	} else if today.Sub(*lastContribution).Hours() > 30*24 {
		rec.Suggestions = append(rec.Suggestions, "No contributions in the last 30 days. Regular contributions keep you on track.")
	}

	return rec
}
