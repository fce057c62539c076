package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/streakline/internal/dashboard"
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	weekdayStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	selectedStyle  = lipgloss.NewStyle().Reverse(true)
	todayStyle     = lipgloss.NewStyle().Bold(true).Underline(true)
	completedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
)

// Model is the month view shown beside the habit list. The displayed month
// moves independently of the selected day.
type Model struct {
	Year      int
	Month     time.Month
	Selected  string
	Today     string
	Completed map[string]bool
}

func New(year int, month time.Month) Model {
	return Model{Year: year, Month: month}
}

func (m *Model) Next() {
	m.Year, m.Month = dashboard.NextMonth(m.Year, m.Month)
}

func (m *Model) Prev() {
	m.Year, m.Month = dashboard.PrevMonth(m.Year, m.Month)
}

// Show moves the view to the month containing t.
func (m *Model) Show(t time.Time) {
	m.Year, m.Month = t.Year(), t.Month()
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%s %d", m.Month, m.Year)))
	b.WriteString("\n")
	b.WriteString(weekdayStyle.Render("Su Mo Tu We Th Fr Sa"))
	b.WriteString("\n")

	for _, week := range dashboard.MonthGrid(m.Year, m.Month) {
		cells := make([]string, len(week))
		for i, cell := range week {
			if cell.Empty() {
				cells[i] = "  "
				continue
			}
			text := fmt.Sprintf("%2d", cell.Day)
			switch {
			case cell.Date == m.Selected:
				text = selectedStyle.Render(text)
			case cell.Date == m.Today:
				text = todayStyle.Render(text)
			case m.Completed[cell.Date]:
				text = completedStyle.Render(text)
			}
			cells[i] = text
		}
		b.WriteString(strings.Join(cells, " "))
		b.WriteString("\n")
	}
	return b.String()
}
