package habits

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/streakline/internal/models"
)

// ToggleHabitMsg asks the parent to flip the completion of a habit on Date.
type ToggleHabitMsg struct {
	ID     string
	Date   string
	Status bool
}

type Item struct {
	Habit    models.Habit
	Date     string
	IsMarked bool
	InFlight bool
	Locked   bool
}

func (i Item) Title() string {
	if i.IsMarked {
		return "✓ " + i.Habit.Name
	}
	return "○ " + i.Habit.Name
}

func (i Item) Description() string {
	desc := fmt.Sprintf("%s · streak %d", i.Habit.Category, i.Habit.Streak)
	switch {
	case i.InFlight:
		desc += " · saving…"
	case i.Locked:
		desc += " · future date"
	}
	return desc
}

func (i Item) FilterValue() string { return i.Habit.Name }

type KeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Toggle key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "toggle done"),
		),
	}
}

// Model lists the habits visible on one date. Only cursor movement is handed
// to the underlying list; every other key belongs to the dashboard.
type Model struct {
	list list.Model
	keys KeyMap
	date string
}

func New(width, height int) Model {
	l := list.New(nil, list.NewDefaultDelegate(), width, height)
	l.Title = "Habits"
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)

	return Model{
		list: l,
		keys: DefaultKeyMap(),
	}
}

// SetHabits replaces the listed habits. inFlight and locked report per habit
// whether a toggle is pending or not allowed on date.
func (m *Model) SetHabits(habits []models.Habit, date string, inFlight func(id string) bool, locked bool) {
	m.date = date
	items := make([]list.Item, len(habits))
	for i, h := range habits {
		items[i] = Item{
			Habit:    h,
			Date:     date,
			IsMarked: h.CompletedOn(date),
			InFlight: inFlight != nil && inFlight(h.ID),
			Locked:   locked,
		}
	}
	m.list.SetItems(items)
}

// Selected returns the habit under the cursor.
func (m Model) Selected() (Item, bool) {
	i, ok := m.list.SelectedItem().(Item)
	return i, ok
}

func (m Model) Len() int {
	return len(m.list.Items())
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Toggle):
		if i, ok := m.Selected(); ok && !i.InFlight && !i.Locked {
			return m, func() tea.Msg {
				return ToggleHabitMsg{ID: i.Habit.ID, Date: i.Date, Status: !i.IsMarked}
			}
		}
		return m, nil
	case key.Matches(keyMsg, m.keys.Up, m.keys.Down):
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 {
		return "\n  No habits scheduled for this day.\n  Press 'a' to add one."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
