package dashboard

import (
	"github.com/julianstephens/streakline/internal/constants"
	"github.com/julianstephens/streakline/internal/models"
)

// Summary is the view-ready state of the dashboard for one day.
type Summary struct {
	Date              string
	Category          string
	Visible           []models.Habit
	CompletionPercent int
	BestStreak        int
	TotalHabits       int
	Points            int
}

// Done reports how many visible habits are completed on the summary's date.
func (s Summary) Done() int {
	n := 0
	for _, h := range s.Visible {
		if h.CompletedOn(s.Date) {
			n++
		}
	}
	return n
}

// Summarize filters habits to those that apply to date and match category,
// then computes the completion percentage and best streak over that set.
// An empty category is treated as "All".
func Summarize(habits []models.Habit, date, category string) Summary {
	date = models.DayKey(date)
	if category == "" {
		category = constants.CategoryAll
	}

	s := Summary{
		Date:     date,
		Category: category,
		Visible:  Visible(habits, date, category),
		Points:   constants.PlaceholderPoints,
	}
	s.TotalHabits = len(s.Visible)
	s.CompletionPercent = CompletionPercent(s.Visible, date)
	s.BestStreak = BestStreak(s.Visible)
	return s
}

// Visible returns the habits shown on date under category, in input order.
func Visible(habits []models.Habit, date, category string) []models.Habit {
	visible := make([]models.Habit, 0, len(habits))
	for _, h := range habits {
		if !MatchesCategory(h, category) {
			continue
		}
		if h.AppliesTo(date) {
			visible = append(visible, h)
		}
	}
	return visible
}

// MatchesCategory reports whether h is shown under the category filter.
func MatchesCategory(h models.Habit, category string) bool {
	return category == "" || category == constants.CategoryAll || h.Category == category
}

// CompletionPercent is the share of habits completed on date, rounded half up.
func CompletionPercent(habits []models.Habit, date string) int {
	total := len(habits)
	if total == 0 {
		return 0
	}
	done := 0
	for _, h := range habits {
		if h.CompletedOn(date) {
			done++
		}
	}
	return (200*done + total) / (2 * total)
}

// BestStreak returns the highest streak among habits, or 0.
func BestStreak(habits []models.Habit) int {
	best := 0
	for _, h := range habits {
		if h.Streak > best {
			best = h.Streak
		}
	}
	return best
}

// CategoryFilters returns the category tabs: "All" followed by the server's
// categories with blanks and duplicates removed.
func CategoryFilters(categories []string) []string {
	filters := []string{constants.CategoryAll}
	seen := map[string]bool{constants.CategoryAll: true}
	for _, c := range categories {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		filters = append(filters, c)
	}
	return filters
}

// NextFilter cycles to the filter after current, wrapping around.
func NextFilter(filters []string, current string) string {
	if len(filters) == 0 {
		return constants.CategoryAll
	}
	for i, f := range filters {
		if f == current {
			return filters[(i+1)%len(filters)]
		}
	}
	return filters[0]
}
