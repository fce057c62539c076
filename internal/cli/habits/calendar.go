package habits

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/streakline/internal/cli"
	"github.com/julianstephens/streakline/internal/dashboard"
	apperrors "github.com/julianstephens/streakline/internal/errors"
)

var (
	todayStyle     = lipgloss.NewStyle().Bold(true).Underline(true)
	completedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
)

type CalendarCmd struct {
	Month string `help:"Month to show (YYYY-MM, default current month)." short:"m"`
}

func (c *CalendarCmd) Run(ctx *cli.Context) error {
	year, month := ctx.Now().Year(), ctx.Now().Month()
	if c.Month != "" {
		y, m, err := dashboard.ParseMonth(c.Month)
		if err != nil {
			return apperrors.Validation("invalid month %q (want YYYY-MM)", c.Month)
		}
		year, month = y, m
	}

	if err := ctx.RequireAPI(); err != nil {
		return err
	}
	if _, err := ctx.Session.RequireUser(); err != nil {
		return err
	}

	habits, err := ctx.API.Habits(context.Background())
	if err != nil {
		return fmt.Errorf("failed to load habits: %w", err)
	}

	ctx.Print(RenderMonth(year, month, ctx.Today(), dashboard.CompletedDates(habits)))
	return nil
}

// RenderMonth draws a plain-text month grid. Completed days are suffixed with
// "*" and today is underlined where the terminal supports it.
func RenderMonth(year int, month time.Month, today string, completed map[string]bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %d\n", month, year)
	b.WriteString(" Su  Mo  Tu  We  Th  Fr  Sa\n")

	for _, week := range dashboard.MonthGrid(year, month) {
		for i, cell := range week {
			if i > 0 {
				b.WriteString(" ")
			}
			if cell.Empty() {
				b.WriteString("   ")
				continue
			}

			mark := " "
			if completed[cell.Date] {
				mark = "*"
			}
			text := fmt.Sprintf("%2d%s", cell.Day, mark)
			switch {
			case cell.Date == today:
				text = todayStyle.Render(text)
			case completed[cell.Date]:
				text = completedStyle.Render(text)
			}
			b.WriteString(text)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n* = at least one habit completed\n")
	return b.String()
}
