package dashboard

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/julianstephens/streakline/internal/logger"
	"github.com/julianstephens/streakline/internal/models"
)

// Source is the part of the habit API the dashboard reads from.
type Source interface {
	Habits(ctx context.Context) ([]models.Habit, error)
	Categories(ctx context.Context, userID string) ([]string, error)
}

// Sink receives each successful refresh. The tracker implements it.
type Sink interface {
	Replace(habits []models.Habit)
}

// Snapshot is the result of one full refetch.
type Snapshot struct {
	Habits     []models.Habit
	Categories []string
}

// Filters returns the category tabs for the snapshot.
func (s Snapshot) Filters() []string {
	return CategoryFilters(s.Categories)
}

type Loader struct {
	source Source
	sink   Sink
}

// NewLoader creates a loader. sink may be nil.
func NewLoader(source Source, sink Sink) *Loader {
	return &Loader{source: source, sink: sink}
}

// Refresh fetches habits and categories for userID concurrently. Either
// failure fails the refresh and leaves the sink untouched.
func (l *Loader) Refresh(ctx context.Context, userID string) (Snapshot, error) {
	var snap Snapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		habits, err := l.source.Habits(gctx)
		if err != nil {
			return fmt.Errorf("failed to load habits: %w", err)
		}
		snap.Habits = habits
		return nil
	})
	g.Go(func() error {
		categories, err := l.source.Categories(gctx, userID)
		if err != nil {
			return fmt.Errorf("failed to load categories: %w", err)
		}
		snap.Categories = categories
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Dashboard refresh failed", "error", err)
		return Snapshot{}, err
	}

	if l.sink != nil {
		l.sink.Replace(snap.Habits)
	}
	logger.Debug("Dashboard refreshed", "habits", len(snap.Habits), "categories", len(snap.Categories))
	return snap, nil
}
