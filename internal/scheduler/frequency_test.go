package scheduler

import (
	"testing"
	"time"

	"github.com/finman-app/backend/internal/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 10, 0, 0, 0, time.UTC)
}

func TestDueForFrequency_BootstrapAlwaysDue(t *testing.T) {
	now := date(2024, time.March, 14)
	frequencies := []domain.Frequency{
		domain.FrequencyDaily,
		domain.FrequencyWeekly,
		domain.FrequencyBiweekly,
		domain.FrequencyMonthly,
		domain.FrequencyQuarterly,
		domain.FrequencySemiannual,
		domain.FrequencyAnnual,
		domain.Frequency("other"),
		domain.Frequency(""),
	}

	for _, freq := range frequencies {
		if !dueForFrequency(freq, nil, now) {
			t.Errorf("frequency %q with no prior execution should be due", freq)
		}
	}
}

func TestDueForFrequency(t *testing.T) {
	tests := []struct {
		name string
		freq domain.Frequency
		last time.Time
		now  time.Time
		want bool
	}{
		{"daily one day later", domain.FrequencyDaily, date(2024, time.March, 13), date(2024, time.March, 14), true},
		{"daily same instant", domain.FrequencyDaily, date(2024, time.March, 14), date(2024, time.March, 14), false},
		{"weekly seven days later", domain.FrequencyWeekly, date(2024, time.March, 7), date(2024, time.March, 14), true},
		{"weekly six days later", domain.FrequencyWeekly, date(2024, time.March, 8), date(2024, time.March, 14), false},
		{"biweekly fifteen days later", domain.FrequencyBiweekly, date(2024, time.March, 1), date(2024, time.March, 16), true},
		{"biweekly fourteen days later", domain.FrequencyBiweekly, date(2024, time.March, 2), date(2024, time.March, 16), false},

		// Monthly anchors to day 1 and needs 28 elapsed days.
		{"monthly jan 1 to feb 1", domain.FrequencyMonthly, date(2024, time.January, 1), date(2024, time.February, 1), true},
		{"monthly mid-month never due", domain.FrequencyMonthly, date(2023, time.June, 1), date(2024, time.January, 15), false},
		{"monthly day 1 but too soon", domain.FrequencyMonthly, date(2024, time.January, 20), date(2024, time.February, 1), false},

		// Quarterly: day 1 of months Jan/Apr/Jul/Oct, 89 elapsed days.
		{"quarterly jan 1 to apr 1", domain.FrequencyQuarterly, date(2024, time.January, 1), date(2024, time.April, 1), true},
		{"quarterly non-quarter month", domain.FrequencyQuarterly, date(2023, time.December, 1), date(2024, time.March, 1), false},
		{"quarterly apr 1 but too soon", domain.FrequencyQuarterly, date(2024, time.March, 25), date(2024, time.April, 1), false},
		{"quarterly oct 1", domain.FrequencyQuarterly, date(2024, time.July, 1), date(2024, time.October, 1), true},

		// Semiannual: day 1 of January or July, 180 elapsed days.
		{"semiannual jan 1 to jul 1", domain.FrequencySemiannual, date(2024, time.January, 1), date(2024, time.July, 1), true},
		{"semiannual wrong month", domain.FrequencySemiannual, date(2023, time.October, 1), date(2024, time.April, 1), false},

		// Annual: January 1st, 365 elapsed days.
		{"annual year later", domain.FrequencyAnnual, date(2024, time.January, 1), date(2025, time.January, 1), true},
		{"annual wrong day", domain.FrequencyAnnual, date(2024, time.January, 1), date(2025, time.January, 2), false},
		{"annual too soon", domain.FrequencyAnnual, date(2024, time.June, 1), date(2025, time.January, 1), false},

		{"unrecognized frequency never due", domain.Frequency("fortnightly"), date(2020, time.January, 1), date(2024, time.March, 14), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			last := tt.last
			if got := dueForFrequency(tt.freq, &last, tt.now); got != tt.want {
				t.Errorf("dueForFrequency(%q, %v, %v) = %v, want %v", tt.freq, tt.last, tt.now, got, tt.want)
			}
		})
	}
}

func TestElapsedDays(t *testing.T) {
	tests := []struct {
		name string
		last time.Time
		now  time.Time
		want int
	}{
		{"same instant", date(2024, time.March, 14), date(2024, time.March, 14), 0},
		{"exactly one day", date(2024, time.March, 13), date(2024, time.March, 14), 1},
		{"partial day rounds up", time.Date(2024, 3, 13, 23, 0, 0, 0, time.UTC), time.Date(2024, 3, 14, 1, 0, 0, 0, time.UTC), 1},
		{"thirty one days", date(2024, time.January, 1), date(2024, time.February, 1), 31},
		{"clock skew uses absolute distance", date(2024, time.March, 15), date(2024, time.March, 14), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := elapsedDays(tt.last, tt.now); got != tt.want {
				t.Errorf("elapsedDays(%v, %v) = %d, want %d", tt.last, tt.now, got, tt.want)
			}
		})
	}
}
