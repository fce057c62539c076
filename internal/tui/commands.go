package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/streakline/internal/dashboard"
	"github.com/julianstephens/streakline/internal/models"
	"github.com/julianstephens/streakline/internal/tracker"
	"github.com/julianstephens/streakline/internal/validation"
)

type loginDoneMsg struct{ err error }

type registerDoneMsg struct{ err error }

type refreshedMsg struct {
	snapshot dashboard.Snapshot
	err      error
}

type toggledMsg struct {
	habit models.Habit
	err   error
}

type habitCreatedMsg struct {
	habit models.Habit
	err   error
}

func (m Model) login(email, password string) tea.Cmd {
	mgr := m.deps.Session
	return func() tea.Msg {
		return loginDoneMsg{err: mgr.Login(context.Background(), email, password)}
	}
}

func (m Model) register(name, email, password string) tea.Cmd {
	mgr := m.deps.Session
	return func() tea.Msg {
		return registerDoneMsg{err: mgr.Register(context.Background(), name, email, password)}
	}
}

// refresh reloads habits and categories. The tracker is only replaced when
// both calls succeed.
func (m Model) refresh() tea.Cmd {
	loader := m.loader
	user, err := m.deps.Session.RequireUser()
	if err != nil {
		return func() tea.Msg { return refreshedMsg{err: err} }
	}
	return func() tea.Msg {
		snap, err := loader.Refresh(context.Background(), user.ID)
		return refreshedMsg{snapshot: snap, err: err}
	}
}

// commit sends a toggle that has already been applied to the tracker.
func commit(p *tracker.Pending) tea.Cmd {
	return func() tea.Msg {
		h, err := p.Commit(context.Background())
		return toggledMsg{habit: h, err: err}
	}
}

func (m Model) createHabit(userID string, h validation.NewHabit) tea.Cmd {
	client := m.deps.API
	return func() tea.Msg {
		created, err := client.CreateHabit(context.Background(), userID, h.Name, h.Dates, h.Category)
		return habitCreatedMsg{habit: created, err: err}
	}
}
