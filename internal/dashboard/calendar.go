package dashboard

import (
	"time"

	"github.com/julianstephens/streakline/internal/constants"
	"github.com/julianstephens/streakline/internal/models"
)

// Cell is one slot of a month grid. Padding cells have Day == 0.
type Cell struct {
	Day  int
	Date string
}

// Empty reports whether the cell is padding outside the month.
func (c Cell) Empty() bool {
	return c.Day == 0
}

// MonthGrid lays out a month as rows of 7 cells, Sunday first. Cells before
// the first and after the last day are empty.
func MonthGrid(year int, month time.Month) [][7]Cell {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	days := first.AddDate(0, 1, -1).Day()
	lead := int(first.Weekday())

	rows := (lead + days + 6) / 7
	grid := make([][7]Cell, rows)
	for d := 1; d <= days; d++ {
		pos := lead + d - 1
		grid[pos/7][pos%7] = Cell{
			Day:  d,
			Date: time.Date(year, month, d, 0, 0, 0, 0, time.UTC).Format(constants.DateFormat),
		}
	}
	return grid
}

// NextMonth returns the month after (year, month).
func NextMonth(year int, month time.Month) (int, time.Month) {
	if month == time.December {
		return year + 1, time.January
	}
	return year, month + 1
}

// PrevMonth returns the month before (year, month).
func PrevMonth(year int, month time.Month) (int, time.Month) {
	if month == time.January {
		return year - 1, time.December
	}
	return year, month - 1
}

// ParseMonth parses a YYYY-MM string.
func ParseMonth(s string) (int, time.Month, error) {
	t, err := time.Parse(constants.MonthFormat, s)
	if err != nil {
		return 0, 0, err
	}
	return t.Year(), t.Month(), nil
}

// CompletedDates returns the days on which at least one habit was completed.
func CompletedDates(habits []models.Habit) map[string]bool {
	days := make(map[string]bool)
	for _, h := range habits {
		for _, e := range h.History {
			if e.IfCompleted {
				days[models.DayKey(e.Date)] = true
			}
		}
	}
	return days
}
