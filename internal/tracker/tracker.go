package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/julianstephens/streakline/internal/constants"
	apperrors "github.com/julianstephens/streakline/internal/errors"
	"github.com/julianstephens/streakline/internal/logger"
	"github.com/julianstephens/streakline/internal/models"
	"github.com/julianstephens/streakline/internal/utils"
)

// ErrToggleInFlight is returned when a habit/date pair already has an
// unconfirmed toggle.
var ErrToggleInFlight = fmt.Errorf("%w: toggle already in progress", apperrors.ErrValidation)

// Remote is the part of the habit API used to confirm a toggle.
type Remote interface {
	UpdateHabitStatus(ctx context.Context, habitID, date string, completed bool) (models.Habit, error)
	MarkHabitDone(ctx context.Context, habitID string, at time.Time) (models.Habit, error)
}

type pairKey struct {
	habitID string
	date    string
}

// Tracker holds the local copy of the user's habits and applies completion
// toggles to it before the server confirms them.
type Tracker struct {
	remote Remote
	now    func() time.Time
	loc    *time.Location

	mu       sync.Mutex
	habits   []models.Habit
	inFlight map[pairKey]bool
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock overrides the time source used for "today" and mark-done timestamps.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		t.now = now
	}
}

// WithLocation sets the timezone that decides the current day.
func WithLocation(loc *time.Location) Option {
	return func(t *Tracker) {
		if loc != nil {
			t.loc = loc
		}
	}
}

func New(remote Remote, opts ...Option) *Tracker {
	t := &Tracker{
		remote:   remote,
		now:      time.Now,
		loc:      time.Local,
		inFlight: make(map[pairKey]bool),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Today returns the current day in the tracker's timezone.
func (t *Tracker) Today() string {
	return t.now().In(t.loc).Format(constants.DateFormat)
}

// Habits returns a copy of the current local habit list.
func (t *Tracker) Habits() []models.Habit {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]models.Habit, len(t.habits))
	for i, h := range t.habits {
		out[i] = h.Clone()
	}
	return out
}

// Replace installs a freshly fetched habit list. Toggles still awaiting
// confirmation are applied on top of it.
func (t *Tracker) Replace(habits []models.Habit) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.habits = make([]models.Habit, len(habits))
	for i, h := range habits {
		t.habits[i] = t.reapply(h.Clone())
	}
}

// Add appends a newly created habit.
func (t *Tracker) Add(h models.Habit) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.habits = append(t.habits, h.Clone())
}

// InFlight reports whether a toggle for the pair is awaiting confirmation.
func (t *Tracker) InFlight(habitID, date string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.inFlight[pairKey{habitID, models.DayKey(date)}]
	return ok
}

// CanToggle reports why a toggle for the pair would be refused, or nil.
func (t *Tracker) CanToggle(habitID, date string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := t.check(habitID, models.DayKey(date))
	return err
}

// Begin applies the toggle locally and marks the pair in flight. The change
// is visible through Habits immediately. The caller must Commit the result.
func (t *Tracker) Begin(habitID, date string, status bool) (*Pending, error) {
	date = models.DayKey(date)

	t.mu.Lock()
	defer t.mu.Unlock()

	i, err := t.check(habitID, date)
	if err != nil {
		return nil, err
	}
	t.habits[i] = t.habits[i].WithStatus(date, status)
	t.inFlight[pairKey{habitID, date}] = status

	logger.Debug("Toggle applied locally", "habit", habitID, "date", date, "completed", status)
	return &Pending{tracker: t, HabitID: habitID, Date: date, Status: status}, nil
}

// Toggle applies the change locally and then confirms it with the server.
func (t *Tracker) Toggle(ctx context.Context, habitID, date string, status bool) (models.Habit, error) {
	p, err := t.Begin(habitID, date, status)
	if err != nil {
		return models.Habit{}, err
	}
	return p.Commit(ctx)
}

func (t *Tracker) check(habitID, date string) (int, error) {
	if !utils.IsValidDate(date) {
		return -1, apperrors.Validation("invalid date %q (want YYYY-MM-DD)", date)
	}
	if date > t.Today() {
		return -1, apperrors.Validation("cannot complete %s: date is in the future", date)
	}
	i := t.index(habitID)
	if i < 0 {
		return -1, apperrors.Validation("unknown habit %q", habitID)
	}
	if _, busy := t.inFlight[pairKey{habitID, date}]; busy {
		return -1, fmt.Errorf("%w: %s on %s", ErrToggleInFlight, t.habits[i].Name, date)
	}
	return i, nil
}

func (t *Tracker) index(habitID string) int {
	for i, h := range t.habits {
		if h.ID == habitID {
			return i
		}
	}
	return -1
}

// reapply must be called with mu held.
func (t *Tracker) reapply(h models.Habit) models.Habit {
	for k, status := range t.inFlight {
		if k.habitID == h.ID {
			h = h.WithStatus(k.date, status)
		}
	}
	return h
}

// install swaps in the server's copy of a habit. mu must be held.
func (t *Tracker) install(h models.Habit) {
	if h.ID == "" {
		return
	}
	if i := t.index(h.ID); i >= 0 {
		t.habits[i] = t.reapply(h.Clone())
	}
}

// Pending is a toggle applied locally and not yet confirmed.
type Pending struct {
	tracker *Tracker
	once    sync.Once

	HabitID string
	Date    string
	Status  bool
}

// Commit sends the status update and then the mark-done call. The mark-done
// call is issued even when the update fails, so the server still recomputes
// the streak. On any failure the local change is kept and the returned error
// wraps ErrDivergence; the next Replace with fresh server data settles the
// state.
func (p *Pending) Commit(ctx context.Context) (models.Habit, error) {
	var (
		h   models.Habit
		err = errors.New("toggle already committed")
	)
	p.once.Do(func() {
		h, err = p.commit(ctx)
	})
	return h, err
}

func (p *Pending) commit(ctx context.Context) (models.Habit, error) {
	t := p.tracker
	defer func() {
		t.mu.Lock()
		delete(t.inFlight, pairKey{p.HabitID, p.Date})
		t.mu.Unlock()
	}()

	log := logger.With("habit", p.HabitID, "date", p.Date)
	var errs []error
	updated, err := t.remote.UpdateHabitStatus(ctx, p.HabitID, p.Date, p.Status)
	if err != nil {
		errs = append(errs, failed("update status", err))
	} else {
		t.mu.Lock()
		t.install(updated)
		t.mu.Unlock()
	}

	marked, err := t.remote.MarkHabitDone(ctx, p.HabitID, t.now())
	if err != nil {
		errs = append(errs, failed("mark done", err))
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	i := t.index(p.HabitID)
	if err == nil && i >= 0 {
		t.habits[i].Streak = marked.Streak
	}

	if len(errs) > 0 {
		joined := errors.Join(errs...)
		log.Error("Toggle not confirmed by server", "error", joined)
		return models.Habit{}, fmt.Errorf("%w: %s on %s: %w", apperrors.ErrDivergence, p.HabitID, p.Date, joined)
	}
	if i < 0 {
		return marked, nil
	}
	log.Debug("Toggle confirmed", "streak", marked.Streak)
	return t.habits[i].Clone(), nil
}

// failed names the remote step and marks untyped failures as network errors.
func failed(op string, err error) error {
	if apperrors.Kind(err) == nil {
		err = fmt.Errorf("%w: %w", apperrors.ErrNetwork, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
