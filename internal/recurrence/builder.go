package recurrence

import (
	"sort"
	"time"

	"github.com/julianstephens/streakline/internal/constants"
	apperrors "github.com/julianstephens/streakline/internal/errors"
)

// Builder holds the repeat settings of a habit being created. It keeps the
// scheduled dates in sync as the mode, window or custom picks change.
//
// Changing the mode always starts over; dates picked under one mode are never
// carried into another. Changing the window regenerates the whole set.
type Builder struct {
	reference time.Time
	mode      constants.RepeatMode
	weeks     int
	custom    map[string]struct{}
	generated []string
}

// NewBuilder returns a Builder in custom mode with no dates, anchored at the
// calendar day of reference.
func NewBuilder(reference time.Time) *Builder {
	b := &Builder{reference: reference}
	b.Reset()
	return b
}

// Reset returns the builder to custom mode with the default window and no dates.
func (b *Builder) Reset() {
	b.mode = constants.RepeatCustom
	b.weeks = constants.DefaultWindowWeeks
	b.custom = make(map[string]struct{})
	b.generated = nil
}

// Mode returns the current repeat mode.
func (b *Builder) Mode() constants.RepeatMode { return b.mode }

// WindowWeeks returns the current window size.
func (b *Builder) WindowWeeks() int { return b.weeks }

// Today returns the reference day as YYYY-MM-DD.
func (b *Builder) Today() string { return b.reference.Format(constants.DateFormat) }

// SetMode switches the repeat mode and discards every previously held date.
func (b *Builder) SetMode(mode constants.RepeatMode) error {
	if _, err := ParseMode(string(mode)); err != nil {
		return err
	}
	b.mode = mode
	b.custom = make(map[string]struct{})
	b.generated = nil
	return b.regenerate()
}

// SetWindowWeeks clamps n into range, stores it and regenerates the dates for
// daily and weekly modes. It returns the value actually applied.
func (b *Builder) SetWindowWeeks(n int) int {
	b.weeks = ClampWindowWeeks(n)
	// Cannot fail: the mode is known and the window is clamped.
	_ = b.regenerate()
	return b.weeks
}

// AddDate adds a custom date. Picking the same date twice is a no-op.
// Dates before the reference day are rejected.
func (b *Builder) AddDate(day string) error {
	if b.mode != constants.RepeatCustom {
		return apperrors.Validation("dates can only be picked in custom mode (current mode %s)", b.mode)
	}
	if _, err := time.Parse(constants.DateFormat, day); err != nil {
		return apperrors.Validation("invalid date %q (want YYYY-MM-DD)", day)
	}
	if day < b.Today() {
		return apperrors.Validation("date %s is in the past", day)
	}
	b.custom[day] = struct{}{}
	return nil
}

// RemoveDate drops a custom date. Removing a date that was never added is a no-op.
func (b *Builder) RemoveDate(day string) {
	delete(b.custom, day)
}

// Dates returns the scheduled dates in ascending order.
func (b *Builder) Dates() []string {
	if b.mode != constants.RepeatCustom {
		return append([]string(nil), b.generated...)
	}
	dates := make([]string, 0, len(b.custom))
	for d := range b.custom {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

func (b *Builder) regenerate() error {
	if b.mode == constants.RepeatCustom {
		return nil
	}
	dates, err := Generate(b.mode, b.weeks, nil, b.reference)
	if err != nil {
		return err
	}
	b.generated = dates
	return nil
}
