package habits

import (
	"context"
	"fmt"
	"strings"

	"github.com/julianstephens/streakline/internal/cli"
	"github.com/julianstephens/streakline/internal/constants"
	"github.com/julianstephens/streakline/internal/dashboard"
	apperrors "github.com/julianstephens/streakline/internal/errors"
	"github.com/julianstephens/streakline/internal/models"
	"github.com/julianstephens/streakline/internal/recurrence"
	"github.com/julianstephens/streakline/internal/utils"
	"github.com/julianstephens/streakline/internal/validation"
)

type HabitCmd struct {
	Add        HabitAddCmd        `cmd:"" help:"Create a habit with a repeat schedule."`
	List       HabitListCmd       `cmd:"" help:"List habits for a day."`
	Mark       HabitMarkCmd       `cmd:"" help:"Mark a habit as done (or not done) for a day."`
	Categories HabitCategoriesCmd `cmd:"" help:"List known categories."`
}

type HabitAddCmd struct {
	Name           string   `help:"Habit name." short:"n"`
	Category       string   `help:"Existing category." short:"c"`
	CustomCategory string   `help:"New category; takes precedence over --category." name:"custom-category"`
	Repeat         string   `help:"Repeat mode: custom, daily or weekly." enum:"custom,daily,weekly" default:"custom"`
	Weeks          int      `help:"Window in weeks for daily and weekly repeats (1-12)." default:"4"`
	Date           []string `help:"Scheduled date for custom repeats (YYYY-MM-DD); may be repeated." sep:","`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireAPI(); err != nil {
		return err
	}
	user, err := ctx.Session.RequireUser()
	if err != nil {
		return err
	}

	dates, err := c.schedule(ctx)
	if err != nil {
		return err
	}

	habit, err := validation.Habit(validation.HabitDraft{
		Name:             c.Name,
		SelectedCategory: c.Category,
		CustomCategory:   c.CustomCategory,
		Dates:            dates,
	})
	if err != nil {
		return err
	}

	created, err := ctx.API.CreateHabit(context.Background(), user.ID, habit.Name, habit.Dates, habit.Category)
	if err != nil {
		return fmt.Errorf("failed to create habit: %w", err)
	}

	ctx.Printf("✓ Created habit %q in %s with %d date(s): %s\n",
		habit.Name, habit.Category.Label(), len(habit.Dates), summarizeDates(habit.Dates))
	if created.ID != "" {
		ctx.Printf("  ID: %s\n", created.ID)
	}
	return nil
}

func (c *HabitAddCmd) schedule(ctx *cli.Context) ([]string, error) {
	mode, err := recurrence.ParseMode(c.Repeat)
	if err != nil {
		return nil, err
	}

	if mode != constants.RepeatCustom {
		return recurrence.Generate(mode, c.Weeks, nil, ctx.Now())
	}

	b := recurrence.NewBuilder(ctx.Now())
	for _, d := range c.Date {
		if err := b.AddDate(strings.TrimSpace(d)); err != nil {
			return nil, err
		}
	}
	return b.Dates(), nil
}

func summarizeDates(dates []string) string {
	switch len(dates) {
	case 0:
		return "none"
	case 1, 2, 3:
		return strings.Join(dates, ", ")
	default:
		return fmt.Sprintf("%s … %s", dates[0], dates[len(dates)-1])
	}
}

type HabitListCmd struct {
	Date     string `help:"Day to show (YYYY-MM-DD, default today)." short:"d"`
	Category string `help:"Only show this category." short:"c" default:"All"`
	IDs      bool   `help:"Show habit IDs." name:"ids"`
}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireAPI(); err != nil {
		return err
	}
	if _, err := ctx.Session.RequireUser(); err != nil {
		return err
	}

	day, err := resolveDay(ctx, c.Date)
	if err != nil {
		return err
	}

	habits, err := ctx.API.Habits(context.Background())
	if err != nil {
		return fmt.Errorf("failed to load habits: %w", err)
	}

	s := dashboard.Summarize(habits, day, c.Category)
	ctx.Printf("Habits for %s (%s):\n\n", s.Date, s.Category)
	if len(s.Visible) == 0 {
		ctx.Println("No habits scheduled.")
	}
	for _, h := range s.Visible {
		ctx.Println(formatHabitLine(h, s.Date, c.IDs))
	}

	ctx.Println()
	ctx.Printf("Done: %d/%d  Completion: %d%%  Best streak: %d  Total habits: %d  Points: %d\n",
		s.Done(), len(s.Visible), s.CompletionPercent, s.BestStreak, s.TotalHabits, s.Points)
	return nil
}

func formatHabitLine(h models.Habit, day string, withID bool) string {
	status := "[ ]"
	if h.CompletedOn(day) {
		status = "[x]"
	}
	line := fmt.Sprintf("%s %s", status, h.Name)
	if h.Category != "" {
		line += fmt.Sprintf(" (%s)", h.Category)
	}
	if h.Streak > 0 {
		line += fmt.Sprintf("  🔥 %d", h.Streak)
	}
	if withID {
		line += "  " + h.ID
	}
	return line
}

type HabitMarkCmd struct {
	Habit string `arg:"" help:"Habit ID or name."`
	Date  string `help:"Day to mark (YYYY-MM-DD, default today)." short:"d"`
	Undo  bool   `help:"Mark as not done instead."`
}

func (c *HabitMarkCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireAPI(); err != nil {
		return err
	}
	if _, err := ctx.Session.RequireUser(); err != nil {
		return err
	}

	day, err := resolveDay(ctx, c.Date)
	if err != nil {
		return err
	}

	habits, err := ctx.API.Habits(context.Background())
	if err != nil {
		return fmt.Errorf("failed to load habits: %w", err)
	}
	habit, err := findHabit(habits, c.Habit)
	if err != nil {
		return err
	}

	tr := ctx.NewTracker()
	tr.Replace(habits)

	updated, err := tr.Toggle(context.Background(), habit.ID, day, !c.Undo)
	if err != nil {
		return err
	}

	verb := "Marked"
	if c.Undo {
		verb = "Unmarked"
	}
	ctx.Printf("✓ %s %q for %s (streak %d)\n", verb, habit.Name, day, updated.Streak)
	return nil
}

// findHabit matches by ID first, then by case-insensitive name.
func findHabit(habits []models.Habit, ref string) (models.Habit, error) {
	for _, h := range habits {
		if h.ID == ref {
			return h, nil
		}
	}
	var matches []models.Habit
	for _, h := range habits {
		if strings.EqualFold(h.Name, ref) {
			matches = append(matches, h)
		}
	}
	switch len(matches) {
	case 0:
		return models.Habit{}, fmt.Errorf("habit %q not found", ref)
	case 1:
		return matches[0], nil
	default:
		return models.Habit{}, fmt.Errorf("%d habits are named %q; use the ID (habit list --ids)", len(matches), ref)
	}
}

type HabitCategoriesCmd struct{}

func (c *HabitCategoriesCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireAPI(); err != nil {
		return err
	}
	user, err := ctx.Session.RequireUser()
	if err != nil {
		return err
	}

	categories, err := ctx.API.Categories(context.Background(), user.ID)
	if err != nil {
		return fmt.Errorf("failed to load categories: %w", err)
	}
	if len(categories) == 0 {
		ctx.Println("No categories yet.")
		return nil
	}
	for _, cat := range categories {
		ctx.Println(cat)
	}
	return nil
}

func resolveDay(ctx *cli.Context, day string) (string, error) {
	if day == "" || day == "today" {
		return ctx.Today(), nil
	}
	if !utils.IsValidDate(day) {
		return "", apperrors.Validation("invalid date %q (want YYYY-MM-DD)", day)
	}
	return day, nil
}
