package models

// Habit is a user-defined recurring activity as returned by the habit API.
// HabitDates is fixed at creation; History holds at most one entry per day.
type Habit struct {
	ID         string         `json:"_id"`
	UserID     string         `json:"userId,omitempty"`
	Name       string         `json:"habitName"`
	Category   string         `json:"category"`
	HabitDates []string       `json:"habitDates"`
	History    []HistoryEntry `json:"history"`
	Streak     int            `json:"streak"`
}

// HistoryEntry records the completion state of a habit for one day.
type HistoryEntry struct {
	Date        string `json:"date"`
	IfCompleted bool   `json:"ifCompleted"`
}

// DayKey truncates a date or timestamp string to its YYYY-MM-DD prefix.
// The API may return full timestamps such as "2024-01-01T00:00:00.000Z".
func DayKey(s string) string {
	if len(s) > 10 {
		return s[:10]
	}
	return s
}

// Entry returns the history entry recorded for day, if any.
func (h Habit) Entry(day string) (HistoryEntry, bool) {
	day = DayKey(day)
	for _, e := range h.History {
		if DayKey(e.Date) == day {
			return e, true
		}
	}
	return HistoryEntry{}, false
}

// CompletedOn reports whether the habit has a completed entry for day.
func (h Habit) CompletedOn(day string) bool {
	e, ok := h.Entry(day)
	return ok && e.IfCompleted
}

// ScheduledOn reports whether day is one of the habit's scheduled dates.
func (h Habit) ScheduledOn(day string) bool {
	day = DayKey(day)
	for _, d := range h.HabitDates {
		if DayKey(d) == day {
			return true
		}
	}
	return false
}

// AppliesTo reports whether the habit belongs on the given day, either because
// it is scheduled then or because an outcome was already recorded.
func (h Habit) AppliesTo(day string) bool {
	if _, ok := h.Entry(day); ok {
		return true
	}
	return h.ScheduledOn(day)
}

// WithStatus returns a copy of h whose history records status for day.
// An existing entry for the day is updated in place; otherwise one is appended.
func (h Habit) WithStatus(day string, status bool) Habit {
	day = DayKey(day)
	history := make([]HistoryEntry, len(h.History), len(h.History)+1)
	copy(history, h.History)

	found := false
	for i := range history {
		if DayKey(history[i].Date) == day {
			history[i].IfCompleted = status
			found = true
			break
		}
	}
	if !found {
		history = append(history, HistoryEntry{Date: day, IfCompleted: status})
	}

	h.History = history
	return h
}

// Clone returns a deep copy of the habit.
func (h Habit) Clone() Habit {
	h.HabitDates = append([]string(nil), h.HabitDates...)
	h.History = append([]HistoryEntry(nil), h.History...)
	return h
}
