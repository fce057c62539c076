package recurrence

import (
	"sort"
	"time"

	"github.com/julianstephens/streakline/internal/constants"
	apperrors "github.com/julianstephens/streakline/internal/errors"
)

// ParseMode converts user input into a RepeatMode.
func ParseMode(s string) (constants.RepeatMode, error) {
	switch m := constants.RepeatMode(s); m {
	case constants.RepeatCustom, constants.RepeatDaily, constants.RepeatWeekly:
		return m, nil
	default:
		return "", apperrors.Validation("unknown repeat mode %q (want custom, daily or weekly)", s)
	}
}

// ClampWindowWeeks forces n into the supported window range.
func ClampWindowWeeks(n int) int {
	if n < constants.MinWindowWeeks {
		return constants.MinWindowWeeks
	}
	if n > constants.MaxWindowWeeks {
		return constants.MaxWindowWeeks
	}
	return n
}

// Generate returns the ascending, duplicate-free dates (YYYY-MM-DD) a new habit
// is scheduled for. windowWeeks is ignored in custom mode, where explicit is used
// as-is after sorting and de-duplication. The reference time only contributes its
// calendar day, so the result is stable for any time within that day.
func Generate(mode constants.RepeatMode, windowWeeks int, explicit []string, reference time.Time) ([]string, error) {
	switch mode {
	case constants.RepeatCustom:
		return normalize(explicit)
	case constants.RepeatDaily, constants.RepeatWeekly:
	default:
		return nil, apperrors.Validation("unknown repeat mode %q", mode)
	}

	if windowWeeks < constants.MinWindowWeeks || windowWeeks > constants.MaxWindowWeeks {
		return nil, apperrors.Validation("window must be between %d and %d weeks, got %d",
			constants.MinWindowWeeks, constants.MaxWindowWeeks, windowWeeks)
	}

	count, step := windowWeeks*7, 1
	if mode == constants.RepeatWeekly {
		count, step = windowWeeks, 7
	}

	y, m, d := reference.Date()
	dates := make([]string, 0, count)
	for i := 0; i < count; i++ {
		// Calendar arithmetic in UTC so DST transitions never skip or repeat a day.
		dates = append(dates, time.Date(y, m, d+i*step, 0, 0, 0, 0, time.UTC).Format(constants.DateFormat))
	}
	return dates, nil
}

func normalize(explicit []string) ([]string, error) {
	seen := make(map[string]struct{}, len(explicit))
	dates := make([]string, 0, len(explicit))
	for _, s := range explicit {
		if _, err := time.Parse(constants.DateFormat, s); err != nil {
			return nil, apperrors.Validation("invalid date %q (want YYYY-MM-DD)", s)
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		dates = append(dates, s)
	}
	sort.Strings(dates)
	return dates, nil
}
