package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/julianstephens/streakline/internal/errors"
	"github.com/julianstephens/streakline/internal/models"
)

// validate is shared by every check in this package.
var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("notblank", notBlank)
}

func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// HabitDraft is the input collected while creating a habit.
type HabitDraft struct {
	Name             string `validate:"notblank"`
	SelectedCategory string
	CustomCategory   string
	Dates            []string `validate:"dive,datetime=2006-01-02"`
}

// NewHabit is a draft that passed validation.
type NewHabit struct {
	Name     string
	Category models.Category
	Dates    []string
}

// Habit validates a draft and resolves its category. A blank name or a missing
// category fails with ErrValidation. A habit may be created with no dates.
func Habit(d HabitDraft) (NewHabit, error) {
	if err := validate.Struct(d); err != nil {
		return NewHabit{}, describe(err)
	}
	category := models.ResolveCategory(d.SelectedCategory, d.CustomCategory)
	if category == nil {
		return NewHabit{}, apperrors.Validation("a category is required")
	}
	dates := d.Dates
	if dates == nil {
		dates = []string{}
	}
	return NewHabit{
		Name:     strings.TrimSpace(d.Name),
		Category: category,
		Dates:    dates,
	}, nil
}

type login struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type registration struct {
	Name     string `validate:"notblank"`
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// Login checks credentials before they are sent to the login endpoint.
func Login(email, password string) error {
	if err := validate.Struct(login{Email: email, Password: password}); err != nil {
		return describe(err)
	}
	return nil
}

// Registration checks sign-up input before it is sent to the register endpoint.
func Registration(name, email, password string) error {
	if err := validate.Struct(registration{Name: name, Email: email, Password: password}); err != nil {
		return describe(err)
	}
	return nil
}

// BaseURL checks that the configured API address is an absolute URL.
func BaseURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return apperrors.Validation("API URL is not configured")
	}
	if err := validate.Var(raw, "url"); err != nil {
		return apperrors.Validation("API URL %q is not a valid URL", raw)
	}
	return nil
}

// describe turns the first validator failure into an ErrValidation with a readable message.
func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required", "notblank":
		return apperrors.Validation("%s is required", field)
	case "email":
		return apperrors.Validation("%q is not a valid email address", fe.Value())
	case "datetime":
		return apperrors.Validation("invalid date %q (want YYYY-MM-DD)", fe.Value())
	default:
		return apperrors.Validation("%s failed %s check", field, fe.Tag())
	}
}
