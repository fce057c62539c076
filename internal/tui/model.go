package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/streakline/internal/api"
	"github.com/julianstephens/streakline/internal/constants"
	"github.com/julianstephens/streakline/internal/dashboard"
	"github.com/julianstephens/streakline/internal/session"
	"github.com/julianstephens/streakline/internal/tracker"
	"github.com/julianstephens/streakline/internal/tui/components/calendar"
	"github.com/julianstephens/streakline/internal/tui/components/habits"
)

// Deps are the services the dashboard drives. Tracker holds the habit list
// shown on screen; the session decides which screen comes first.
type Deps struct {
	Session *session.Manager
	API     *api.Client
	Tracker *tracker.Tracker
	Now     func() time.Time
}

type Model struct {
	deps          Deps
	loader        *dashboard.Loader
	state         constants.SessionState
	previousState constants.SessionState
	keys          KeyMap
	help          help.Model
	habitsModel   habits.Model
	calendarModel calendar.Model
	progress      progress.Model
	form          *huh.Form
	loginForm     *LoginFormModel
	registerForm  *RegisterFormModel
	habitForm     *HabitFormModel
	selectedDate  string
	category      string
	categories    []string
	loading       bool
	statusMsg     string
	errMsg        string
	quitting      bool
	width         int
	height        int
}

func NewModel(deps Deps) Model {
	if deps.Now == nil {
		deps.Now = time.Now
	}

	now := deps.Now()
	m := Model{
		deps:          deps,
		loader:        dashboard.NewLoader(deps.API, deps.Tracker),
		keys:          DefaultKeyMap(),
		help:          help.New(),
		habitsModel:   habits.New(0, 0),
		calendarModel: calendar.New(now.Year(), now.Month()),
		progress:      progress.New(progress.WithDefaultGradient(), progress.WithWidth(30)),
		selectedDate:  deps.Tracker.Today(),
		category:      constants.CategoryAll,
	}

	if _, ok := deps.Session.Current(); ok {
		m.state = constants.StateDashboard
		m.loading = true
	} else {
		m.showLogin()
	}
	m.syncHabits()
	return m
}

func (m Model) ShortHelp() []key.Binding {
	switch m.state {
	case constants.StateLogin:
		return []key.Binding{m.keys.Register, m.keys.Quit}
	case constants.StateRegister, constants.StateAddHabit:
		return []key.Binding{m.keys.Back}
	case constants.StateHelp:
		return []key.Binding{m.keys.Help}
	}
	return m.keys.ShortHelp()
}

func (m Model) FullHelp() [][]key.Binding {
	return m.keys.FullHelp()
}

func (m Model) Init() tea.Cmd {
	if m.state == constants.StateDashboard {
		return m.refresh()
	}
	return m.form.Init()
}

// State reports the screen currently shown.
func (m Model) State() constants.SessionState {
	return m.state
}

// SelectedDate is the day the habit list and toggles apply to.
func (m Model) SelectedDate() string {
	return m.selectedDate
}

// Category is the active category filter.
func (m Model) Category() string {
	return m.category
}

func (m *Model) showLogin() {
	email := ""
	if m.loginForm != nil {
		email = m.loginForm.Email
	}
	m.loginForm = &LoginFormModel{Email: email}
	m.form = NewLoginForm(m.loginForm)
	m.state = constants.StateLogin
	m.loading = false
}

func (m *Model) showRegister() {
	if m.registerForm == nil {
		m.registerForm = &RegisterFormModel{}
	}
	m.registerForm.Password = ""
	m.form = NewRegisterForm(m.registerForm)
	m.state = constants.StateRegister
	m.loading = false
}

func (m *Model) showAddHabit() {
	if m.habitForm == nil {
		m.habitForm = newHabitFormModel()
	}
	m.form = NewHabitForm(m.habitForm, m.categories)
	m.state = constants.StateAddHabit
	m.loading = false
}

// syncHabits pushes the tracker's current state into the list and calendar.
func (m *Model) syncHabits() {
	all := m.deps.Tracker.Habits()
	today := m.deps.Tracker.Today()
	date := m.selectedDate

	visible := dashboard.Visible(all, date, m.category)
	inFlight := func(id string) bool { return m.deps.Tracker.InFlight(id, date) }
	m.habitsModel.SetHabits(visible, date, inFlight, date > today)

	m.calendarModel.Selected = date
	m.calendarModel.Today = today
	m.calendarModel.Completed = dashboard.CompletedDates(all)
}

func (m *Model) resize() {
	listHeight := m.height - 16
	if listHeight < 5 {
		listHeight = 5
	}
	listWidth := m.width - 30
	if listWidth < 20 {
		listWidth = 20
	}
	m.habitsModel.SetSize(listWidth, listHeight)
	m.help.Width = m.width
}
