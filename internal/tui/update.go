package tui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/streakline/internal/constants"
	"github.com/julianstephens/streakline/internal/dashboard"
	apperrors "github.com/julianstephens/streakline/internal/errors"
	"github.com/julianstephens/streakline/internal/logger"
	"github.com/julianstephens/streakline/internal/tui/components/habits"
	"github.com/julianstephens/streakline/internal/utils"
	"github.com/julianstephens/streakline/internal/validation"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
	case loginDoneMsg:
		return m.handleSignedIn(msg.err, constants.StateLogin)
	case registerDoneMsg:
		return m.handleSignedIn(msg.err, constants.StateRegister)
	case refreshedMsg:
		return m.handleRefreshed(msg)
	case toggledMsg:
		return m.handleToggled(msg)
	case habitCreatedMsg:
		return m.handleHabitCreated(msg)
	case habits.ToggleHabitMsg:
		return m.beginToggle(msg)
	}

	switch m.state {
	case constants.StateLogin, constants.StateRegister:
		return m.updateAuthForm(msg)
	case constants.StateAddHabit:
		return m.updateHabitForm(msg)
	case constants.StateHelp:
		if _, ok := msg.(tea.KeyMsg); ok {
			m.state = m.previousState
			m.help.ShowAll = false
		}
		return m, nil
	}
	return m.updateDashboard(msg)
}

func (m Model) updateAuthForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch {
		case m.state == constants.StateLogin && key.Matches(k, m.keys.Register):
			m.errMsg = ""
			m.showRegister()
			return m, m.form.Init()
		case m.state == constants.StateRegister && key.Matches(k, m.keys.Back):
			m.errMsg = ""
			m.showLogin()
			return m, m.form.Init()
		}
	}
	if m.loading {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		if m.state == constants.StateLogin {
			fm := m.loginForm
			if err := validation.Login(fm.Email, fm.Password); err != nil {
				m.errMsg = err.Error()
				m.showLogin()
				return m, m.form.Init()
			}
			m.loading = true
			m.errMsg = ""
			return m, tea.Batch(cmd, m.login(fm.Email, fm.Password))
		}

		fm := m.registerForm
		if err := validation.Registration(fm.Name, fm.Email, fm.Password); err != nil {
			m.errMsg = err.Error()
			m.showRegister()
			return m, m.form.Init()
		}
		m.loading = true
		m.errMsg = ""
		return m, tea.Batch(cmd, m.register(fm.Name, fm.Email, fm.Password))
	case huh.StateAborted:
		m.quitting = true
		return m, tea.Quit
	}
	return m, cmd
}

func (m Model) updateHabitForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && key.Matches(k, m.keys.Back) {
		m.state = constants.StateDashboard
		m.errMsg = ""
		return m, nil
	}
	if m.loading {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		draft, err := m.habitForm.Draft(m.deps.Now())
		if err != nil {
			// Keep the entered values so the user can correct them
			m.errMsg = err.Error()
			m.showAddHabit()
			return m, m.form.Init()
		}
		user, err := m.deps.Session.RequireUser()
		if err != nil {
			return m.expire()
		}
		m.loading = true
		m.errMsg = ""
		return m, tea.Batch(cmd, m.createHabit(user.ID, draft))
	case huh.StateAborted:
		m.state = constants.StateDashboard
		return m, nil
	}
	return m, cmd
}

func (m Model) updateDashboard(msg tea.Msg) (tea.Model, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(k, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(k, m.keys.Help):
		m.previousState = m.state
		m.state = constants.StateHelp
		m.help.ShowAll = true
	case key.Matches(k, m.keys.PrevDay):
		m.moveDay(-1)
		cmd := m.refetch()
		return m, cmd
	case key.Matches(k, m.keys.NextDay):
		m.moveDay(1)
		cmd := m.refetch()
		return m, cmd
	case key.Matches(k, m.keys.PrevMonth):
		m.calendarModel.Prev()
	case key.Matches(k, m.keys.NextMonth):
		m.calendarModel.Next()
	case key.Matches(k, m.keys.Today):
		m.selectedDate = m.deps.Tracker.Today()
		m.calendarModel.Show(m.deps.Now())
		m.syncHabits()
		cmd := m.refetch()
		return m, cmd
	case key.Matches(k, m.keys.Category):
		m.category = dashboard.NextFilter(dashboard.CategoryFilters(m.categories), m.category)
		m.syncHabits()
		cmd := m.refetch()
		return m, cmd
	case key.Matches(k, m.keys.Add):
		m.errMsg = ""
		m.statusMsg = ""
		m.showAddHabit()
		return m, m.form.Init()
	case key.Matches(k, m.keys.Refresh):
		m.errMsg = ""
		cmd := m.refetch()
		return m, cmd
	case key.Matches(k, m.keys.Logout):
		if err := m.deps.Session.Logout(); err != nil {
			m.errMsg = fmt.Sprintf("Logout failed: %v", err)
			return m, nil
		}
		m.reset()
		m.showLogin()
		m.statusMsg = "Logged out."
		return m, m.form.Init()
	default:
		var cmd tea.Cmd
		m.habitsModel, cmd = m.habitsModel.Update(k)
		return m, cmd
	}
	return m, nil
}

// beginToggle applies the change locally before the remote calls go out.
func (m Model) beginToggle(msg habits.ToggleHabitMsg) (tea.Model, tea.Cmd) {
	p, err := m.deps.Tracker.Begin(msg.ID, msg.Date, msg.Status)
	if err != nil {
		m.errMsg = err.Error()
		return m, nil
	}
	m.errMsg = ""
	m.syncHabits()
	return m, commit(p)
}

// refetch reloads from the server after the day or filter changes, so a
// toggle the server rejected is corrected without a manual refresh. Only one
// refresh runs at a time.
func (m *Model) refetch() tea.Cmd {
	if m.loading {
		return nil
	}
	m.loading = true
	return m.refresh()
}

func (m *Model) moveDay(n int) {
	day, err := utils.AddDays(m.selectedDate, n)
	if err != nil {
		return
	}
	m.selectedDate = day
	if t, err := utils.ParseDateInLocation(day, m.deps.Now().Location()); err == nil {
		m.calendarModel.Show(t)
	}
	m.syncHabits()
}

func (m Model) handleSignedIn(err error, from constants.SessionState) (tea.Model, tea.Cmd) {
	m.loading = false
	if err != nil {
		m.errMsg = err.Error()
		if from == constants.StateRegister {
			m.showRegister()
		} else {
			m.showLogin()
		}
		return m, m.form.Init()
	}

	m.errMsg = ""
	m.statusMsg = ""
	m.loginForm = nil
	m.registerForm = nil
	m.state = constants.StateDashboard
	m.selectedDate = m.deps.Tracker.Today()
	m.calendarModel.Show(m.deps.Now())
	m.loading = true
	return m, m.refresh()
}

func (m Model) handleRefreshed(msg refreshedMsg) (tea.Model, tea.Cmd) {
	m.loading = false
	if msg.err != nil {
		if errors.Is(msg.err, apperrors.ErrAuth) {
			return m.expire()
		}
		m.errMsg = fmt.Sprintf("Refresh failed: %v", msg.err)
		return m, nil
	}

	m.categories = msg.snapshot.Categories
	if !containsFilter(msg.snapshot.Filters(), m.category) {
		m.category = constants.CategoryAll
	}
	m.statusMsg = ""
	m.syncHabits()
	return m, nil
}

// handleToggled leaves a failed change on screen; the next refresh settles it.
func (m Model) handleToggled(msg toggledMsg) (tea.Model, tea.Cmd) {
	m.syncHabits()
	if msg.err == nil {
		return m, nil
	}
	if errors.Is(msg.err, apperrors.ErrAuth) {
		return m.expire()
	}
	m.errMsg = fmt.Sprintf("Change not saved: %v (press r to reload)", msg.err)
	return m, nil
}

func (m Model) handleHabitCreated(msg habitCreatedMsg) (tea.Model, tea.Cmd) {
	m.loading = false
	if msg.err != nil {
		if errors.Is(msg.err, apperrors.ErrAuth) {
			return m.expire()
		}
		m.errMsg = fmt.Sprintf("Could not add habit: %v", msg.err)
		if m.state == constants.StateAddHabit {
			m.showAddHabit()
			return m, m.form.Init()
		}
		return m, nil
	}

	m.deps.Tracker.Add(msg.habit)
	if msg.habit.Category != "" && !containsFilter(m.categories, msg.habit.Category) {
		m.categories = append(m.categories, msg.habit.Category)
	}
	m.habitForm = nil
	m.errMsg = ""
	m.statusMsg = fmt.Sprintf("Added %q", msg.habit.Name)
	m.state = constants.StateDashboard
	m.syncHabits()
	return m, nil
}

// expire drops the session after the server rejected the token.
func (m Model) expire() (tea.Model, tea.Cmd) {
	if err := m.deps.Session.Logout(); err != nil {
		logger.Warn("Failed to clear expired session", "error", err)
	}
	m.reset()
	m.showLogin()
	m.errMsg = "Session expired. Please sign in again."
	return m, m.form.Init()
}

func (m *Model) reset() {
	m.deps.Tracker.Replace(nil)
	m.categories = nil
	m.category = constants.CategoryAll
	m.habitForm = nil
	m.syncHabits()
}

func containsFilter(filters []string, want string) bool {
	for _, f := range filters {
		if f == want {
			return true
		}
	}
	return false
}
