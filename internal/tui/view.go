package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/streakline/internal/constants"
	"github.com/julianstephens/streakline/internal/dashboard"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case constants.StateLogin, constants.StateRegister:
		content = m.viewAuth()
	case constants.StateAddHabit:
		content = m.viewForm("New habit")
	case constants.StateHelp:
		content = m.viewHelp()
	default:
		content = m.viewDashboard()
	}

	return docStyle.Render(lipgloss.JoinVertical(
		lipgloss.Left,
		content,
		m.viewFooter(),
		m.help.View(m),
	))
}

func (m Model) viewAuth() string {
	title := titleStyle.Render(constants.AppName)
	if m.loading {
		return lipgloss.JoinVertical(lipgloss.Left, title, "", "Signing in…")
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, "", m.form.View())
}

func (m Model) viewForm(title string) string {
	if m.loading {
		return lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), "", "Saving…")
	}
	return lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), "", m.form.View())
}

func (m Model) viewHelp() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Keys"),
		"",
		"Completion can only be changed for today and earlier days.",
		"A change is shown immediately and confirmed in the background.",
		"Press any key to return.",
	)
}

func (m Model) viewDashboard() string {
	summary := dashboard.Summarize(m.deps.Tracker.Habits(), m.selectedDate, m.category)

	header := titleStyle.Render(constants.AppName)
	if user, ok := m.deps.Session.User(); ok {
		header += statLabelStyle.Render("  signed in as " + user.Name)
	}
	if m.loading {
		header += statLabelStyle.Render("  loading…")
	}

	day := m.selectedDate
	if day == m.deps.Tracker.Today() {
		day += " (today)"
	}

	left := lipgloss.JoinVertical(lipgloss.Left,
		m.viewTabs(),
		statLabelStyle.Render(fmt.Sprintf("%s · %d/%d done", day, summary.Done(), len(summary.Visible))),
		m.habitsModel.View(),
	)
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, "   ", m.calendarModel.View())

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.viewStats(summary),
		body,
	)
}

func (m Model) viewStats(s dashboard.Summary) string {
	stat := func(label string, value int) string {
		return statBoxStyle.Render(statLabelStyle.Render(label) + "\n" + statValueStyle.Render(fmt.Sprint(value)))
	}
	completion := statBoxStyle.Render(
		statLabelStyle.Render(fmt.Sprintf("Completion %d%%", s.CompletionPercent)) + "\n" +
			m.progress.ViewAs(float64(s.CompletionPercent)/100),
	)
	return lipgloss.JoinHorizontal(lipgloss.Top,
		stat("Total Habits", s.TotalHabits),
		stat("Points", s.Points),
		stat("Best Streak", s.BestStreak),
		completion,
	)
}

func (m Model) viewTabs() string {
	var tabs []string
	for _, f := range dashboard.CategoryFilters(m.categories) {
		if f == m.category {
			tabs = append(tabs, activeTabStyle.Render(f))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(f))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewFooter() string {
	switch {
	case m.errMsg != "":
		return dangerStyle.Render(m.errMsg)
	case m.statusMsg != "":
		return infoStyle.Render(m.statusMsg)
	case m.state == constants.StateDashboard && m.selectedDate > m.deps.Tracker.Today():
		return warningStyle.Render("Future days are read-only.")
	}
	return ""
}
