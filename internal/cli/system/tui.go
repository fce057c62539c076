package system

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/streakline/internal/cli"
	"github.com/julianstephens/streakline/internal/logger"
	"github.com/julianstephens/streakline/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireAPI(); err != nil {
		return err
	}

	model := tui.NewModel(tui.Deps{
		Session: ctx.Session,
		API:     ctx.API,
		Tracker: ctx.NewTracker(),
		Now:     ctx.Now,
	})
	logger.DetachStderr()
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("dashboard exited with error: %w", err)
	}
	return nil
}
