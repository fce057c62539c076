package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/streakline/internal/constants"
	apperrors "github.com/julianstephens/streakline/internal/errors"
	"github.com/julianstephens/streakline/internal/recurrence"
	"github.com/julianstephens/streakline/internal/validation"
)

type LoginFormModel struct {
	Email    string
	Password string
}

type RegisterFormModel struct {
	Name     string
	Email    string
	Password string
}

type HabitFormModel struct {
	Name           string
	Category       string
	CustomCategory string
	Repeat         constants.RepeatMode
	Weeks          string
	Dates          string
}

func newHabitFormModel() *HabitFormModel {
	return &HabitFormModel{
		Repeat: constants.RepeatCustom,
		Weeks:  strconv.Itoa(constants.DefaultWindowWeeks),
	}
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

// NewLoginForm creates the sign-in form
func NewLoginForm(fm *LoginFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Sign in").
				Description("Press ctrl+r to create an account instead."),
			huh.NewInput().
				Title("Email").
				Value(&fm.Email).
				Validate(required("email")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&fm.Password).
				Validate(required("password")),
		),
	).WithTheme(huh.ThemeDracula())
}

// NewRegisterForm creates the account creation form
func NewRegisterForm(fm *RegisterFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Create account").
				Description("Press esc to go back to sign in."),
			huh.NewInput().
				Title("Name").
				Value(&fm.Name).
				Validate(required("name")),
			huh.NewInput().
				Title("Email").
				Value(&fm.Email).
				Validate(required("email")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&fm.Password).
				Validate(required("password")),
		),
	).WithTheme(huh.ThemeDracula())
}

// NewHabitForm creates the add-habit form. The dates group is only shown for
// custom repeats and the window group only for daily and weekly ones.
func NewHabitForm(fm *HabitFormModel, categories []string) *huh.Form {
	options := []huh.Option[string]{huh.NewOption("(none)", "")}
	for _, c := range categories {
		if c == constants.CategoryAll {
			continue
		}
		options = append(options, huh.NewOption(c, c))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&fm.Name).
				Validate(required("name")),
			huh.NewSelect[string]().
				Title("Category").
				Options(options...).
				Value(&fm.Category),
			huh.NewInput().
				Title("Custom category").
				Description("Overrides the selection above when set").
				Value(&fm.CustomCategory),
			huh.NewSelect[constants.RepeatMode]().
				Title("Repeat").
				Options(
					huh.NewOption("Pick dates", constants.RepeatCustom),
					huh.NewOption("Daily", constants.RepeatDaily),
					huh.NewOption("Weekly", constants.RepeatWeekly),
				).
				Value(&fm.Repeat),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Dates").
				Description("YYYY-MM-DD, separated by commas or spaces").
				Value(&fm.Dates).
				Validate(validateDates),
		).WithHideFunc(func() bool { return fm.Repeat != constants.RepeatCustom }),
		huh.NewGroup(
			huh.NewInput().
				Title("Repeat for (weeks)").
				Description(fmt.Sprintf("%d-%d", constants.MinWindowWeeks, constants.MaxWindowWeeks)).
				Value(&fm.Weeks).
				Validate(func(s string) error {
					if _, err := strconv.Atoi(strings.TrimSpace(s)); err != nil {
						return fmt.Errorf("weeks must be a number")
					}
					return nil
				}),
		).WithHideFunc(func() bool { return fm.Repeat == constants.RepeatCustom }),
	).WithTheme(huh.ThemeDracula())
}

func splitDates(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
}

func validateDates(s string) error {
	for _, d := range splitDates(s) {
		if _, err := time.Parse(constants.DateFormat, d); err != nil {
			return fmt.Errorf("invalid date %q (want YYYY-MM-DD)", d)
		}
	}
	return nil
}

// Draft turns the submitted form into a validated habit. Dates come from a
// recurrence builder anchored at reference.
func (fm *HabitFormModel) Draft(reference time.Time) (validation.NewHabit, error) {
	b := recurrence.NewBuilder(reference)
	if err := b.SetMode(fm.Repeat); err != nil {
		return validation.NewHabit{}, err
	}

	if fm.Repeat == constants.RepeatCustom {
		for _, d := range splitDates(fm.Dates) {
			if err := b.AddDate(d); err != nil {
				return validation.NewHabit{}, err
			}
		}
	} else {
		weeks, err := strconv.Atoi(strings.TrimSpace(fm.Weeks))
		if err != nil {
			return validation.NewHabit{}, apperrors.Validation("weeks must be a number")
		}
		b.SetWindowWeeks(weeks)
	}

	return validation.Habit(validation.HabitDraft{
		Name:             fm.Name,
		SelectedCategory: fm.Category,
		CustomCategory:   fm.CustomCategory,
		Dates:            b.Dates(),
	})
}
