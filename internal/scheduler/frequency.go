package scheduler

import (
	"math"
	"time"

	"github.com/finman-app/backend/internal/domain"
)

// elapsedDays is the distance between two instants in whole days, rounded up.
func elapsedDays(last, now time.Time) int {
	return int(math.Ceil(now.Sub(last).Abs().Hours() / 24))
}

// dueForFrequency decides whether a recurring charge is due at now.
//
// A nil last execution means the charge never ran and is immediately due,
// whatever the frequency. Otherwise the frequency window must have elapsed;
// monthly and longer frequencies are additionally anchored to day 1 of a
// qualifying month, so the charge lands at the start of its period no matter
// when the scheduler is invoked. The elapsed-day floors guard against
// re-charging when the scheduler fires more than once on a qualifying day.
func dueForFrequency(freq domain.Frequency, last *time.Time, now time.Time) bool {
	if last == nil {
		return true
	}

	elapsed := elapsedDays(*last, now)
	dayOfMonth := now.Day()
	month := int(now.Month()) - 1 // zero-based

	switch freq {
	case domain.FrequencyDaily:
		return elapsed >= 1
	case domain.FrequencyWeekly:
		return elapsed >= 7
	case domain.FrequencyBiweekly:
		return elapsed >= 15
	case domain.FrequencyMonthly:
		return dayOfMonth == 1 && elapsed >= 28
	case domain.FrequencyQuarterly:
		return dayOfMonth == 1 && month%3 == 0 && elapsed >= 89
	case domain.FrequencySemiannual:
		return dayOfMonth == 1 && (month == 0 || month == 6) && elapsed >= 180
	case domain.FrequencyAnnual:
		return dayOfMonth == 1 && month == 0 && elapsed >= 365
	default:
		return false
	}
}
