package habits

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/streakline/internal/cli/clitest"
	apperrors "github.com/julianstephens/streakline/internal/errors"
	"github.com/julianstephens/streakline/internal/models"
)

var testNow = time.Date(2024, 1, 8, 9, 30, 0, 0, time.UTC)

func seed(s *clitest.Server) {
	s.Habits = []models.Habit{
		{ID: "h1", Name: "Read", Category: "Health", HabitDates: []string{"2024-01-01", "2024-01-08"}, Streak: 3,
			History: []models.HistoryEntry{{Date: "2024-01-08T00:00:00.000Z", IfCompleted: true}}},
		{ID: "h2", Name: "Code", Category: "Work", HabitDates: []string{"2024-01-08"}},
		{ID: "h3", Name: "Swim", Category: "Health", HabitDates: []string{"2024-01-09"}},
	}
	s.Categories = []string{"Health", "Work"}
}

func TestHabitAddCustom(t *testing.T) {
	srv := clitest.NewServer(t, testNow)
	ctx, out := clitest.NewContext(t, srv, testNow, true)

	cmd := &HabitAddCmd{
		Name:     "Read",
		Category: "Health",
		Repeat:   "custom",
		Weeks:    4,
		Date:     []string{"2024-01-10", "2024-01-08", "2024-01-10"},
	}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(srv.Created) != 1 {
		t.Fatalf("server received %d creates, want 1", len(srv.Created))
	}
	got := srv.Created[0]
	if got.UserID != "u1" || got.HabitName != "Read" || got.Category != "Health" {
		t.Errorf("create request = %+v", got)
	}
	if want := []string{"2024-01-08", "2024-01-10"}; !reflect.DeepEqual(got.HabitDates, want) {
		t.Errorf("HabitDates = %v, want %v", got.HabitDates, want)
	}
	if !strings.Contains(out.String(), `Created habit "Read"`) {
		t.Errorf("unexpected output: %s", out.String())
	}
}

func TestHabitAddWeekly(t *testing.T) {
	srv := clitest.NewServer(t, testNow)
	ctx, _ := clitest.NewContext(t, srv, testNow, true)

	cmd := &HabitAddCmd{Name: "Call home", CustomCategory: " Family ", Category: "Work", Repeat: "weekly", Weeks: 3}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	got := srv.Created[0]
	if got.Category != "Family" {
		t.Errorf("Category = %q, want the custom category", got.Category)
	}
	if want := []string{"2024-01-08", "2024-01-15", "2024-01-22"}; !reflect.DeepEqual(got.HabitDates, want) {
		t.Errorf("HabitDates = %v, want %v", got.HabitDates, want)
	}
}

func TestHabitAddRejectsBeforeNetwork(t *testing.T) {
	tests := []struct {
		name string
		cmd  HabitAddCmd
		want error
	}{
		{"blank name", HabitAddCmd{Name: "  ", Category: "Health", Repeat: "custom", Date: []string{"2024-01-08"}}, apperrors.ErrValidation},
		{"no category", HabitAddCmd{Name: "Read", Repeat: "custom", Date: []string{"2024-01-08"}}, apperrors.ErrValidation},
		{"past date", HabitAddCmd{Name: "Read", Category: "Health", Repeat: "custom", Date: []string{"2024-01-07"}}, apperrors.ErrValidation},
		{"window too large", HabitAddCmd{Name: "Read", Category: "Health", Repeat: "daily", Weeks: 13}, apperrors.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := clitest.NewServer(t, testNow)
			ctx, _ := clitest.NewContext(t, srv, testNow, true)
			if err := tt.cmd.Run(ctx); !errors.Is(err, tt.want) {
				t.Fatalf("Run() error = %v, want %v", err, tt.want)
			}
			if len(srv.Created) != 0 {
				t.Error("invalid habit reached the server")
			}
		})
	}
}

func TestHabitAddWithoutDates(t *testing.T) {
	srv := clitest.NewServer(t, testNow)
	ctx, _ := clitest.NewContext(t, srv, testNow, true)

	if err := (&HabitAddCmd{Name: "Someday", Category: "Health", Repeat: "custom"}).Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(srv.Created) != 1 {
		t.Fatalf("server received %d creates, want 1", len(srv.Created))
	}
	if got := srv.Created[0].HabitDates; got == nil || len(got) != 0 {
		t.Errorf("HabitDates = %#v, want an empty list", got)
	}
}

func TestHabitAddRequiresLogin(t *testing.T) {
	srv := clitest.NewServer(t, testNow)
	ctx, _ := clitest.NewContext(t, srv, testNow, false)

	cmd := &HabitAddCmd{Name: "Read", Category: "Health", Repeat: "custom", Date: []string{"2024-01-08"}}
	if err := cmd.Run(ctx); !errors.Is(err, apperrors.ErrAuth) {
		t.Fatalf("Run() error = %v, want ErrAuth", err)
	}
}

func TestHabitList(t *testing.T) {
	srv := clitest.NewServer(t, testNow)
	seed(srv)
	ctx, out := clitest.NewContext(t, srv, testNow, true)

	if err := (&HabitListCmd{Category: "All"}).Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	got := out.String()
	for _, want := range []string{
		"Habits for 2024-01-08 (All):",
		"[x] Read (Health)  🔥 3",
		"[ ] Code (Work)",
		"Done: 1/2  Completion: 50%  Best streak: 3  Total habits: 2  Points: 100",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "Swim") {
		t.Errorf("habit scheduled for another day was listed:\n%s", got)
	}
}

func TestHabitListCategoryAndDate(t *testing.T) {
	srv := clitest.NewServer(t, testNow)
	seed(srv)
	ctx, out := clitest.NewContext(t, srv, testNow, true)

	if err := (&HabitListCmd{Date: "2024-01-09", Category: "Health", IDs: true}).Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "[ ] Swim (Health)  h3") {
		t.Errorf("expected Swim with its ID:\n%s", got)
	}
	if !strings.Contains(got, "Done: 0/1  Completion: 0%") {
		t.Errorf("unexpected stats:\n%s", got)
	}
}

func TestHabitListInvalidDate(t *testing.T) {
	srv := clitest.NewServer(t, testNow)
	ctx, _ := clitest.NewContext(t, srv, testNow, true)

	if err := (&HabitListCmd{Date: "2024-02-30"}).Run(ctx); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("Run() error = %v, want ErrValidation", err)
	}
}

func TestHabitMark(t *testing.T) {
	srv := clitest.NewServer(t, testNow)
	seed(srv)
	ctx, out := clitest.NewContext(t, srv, testNow, true)

	if err := (&HabitMarkCmd{Habit: "code"}).Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(srv.Updates) != 1 || len(srv.Marks) != 1 {
		t.Fatalf("server saw %d updates and %d marks, want 1 each", len(srv.Updates), len(srv.Marks))
	}
	if u := srv.Updates[0]; u.HabitID != "h2" || u.Date != "2024-01-08" || !u.IfCompleted {
		t.Errorf("update = %+v", u)
	}
	if !strings.Contains(out.String(), `Marked "Code" for 2024-01-08 (streak 1)`) {
		t.Errorf("unexpected output: %s", out.String())
	}
}

func TestHabitMarkUndo(t *testing.T) {
	srv := clitest.NewServer(t, testNow)
	seed(srv)
	ctx, _ := clitest.NewContext(t, srv, testNow, true)

	if err := (&HabitMarkCmd{Habit: "h1", Undo: true}).Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	for _, h := range srv.Snapshot() {
		if h.ID == "h1" && h.CompletedOn("2024-01-08") {
			t.Error("h1 still completed after undo")
		}
	}
}

func TestHabitMarkFutureDate(t *testing.T) {
	srv := clitest.NewServer(t, testNow)
	seed(srv)
	ctx, _ := clitest.NewContext(t, srv, testNow, true)

	err := (&HabitMarkCmd{Habit: "h3", Date: "2024-01-09"}).Run(ctx)
	if !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("Run() error = %v, want ErrValidation", err)
	}
	if len(srv.Updates) != 0 {
		t.Error("future toggle reached the server")
	}
}

func TestHabitMarkServerFailure(t *testing.T) {
	srv := clitest.NewServer(t, testNow)
	seed(srv)
	srv.FailUpdates = true
	ctx, _ := clitest.NewContext(t, srv, testNow, true)

	err := (&HabitMarkCmd{Habit: "h2"}).Run(ctx)
	if !errors.Is(err, apperrors.ErrDivergence) || !errors.Is(err, apperrors.ErrNetwork) {
		t.Fatalf("Run() error = %v, want ErrDivergence and ErrNetwork", err)
	}
	if len(srv.Marks) != 1 {
		t.Errorf("server saw %d mark-done calls, want 1 even after a failed update", len(srv.Marks))
	}
}

func TestFindHabit(t *testing.T) {
	habits := []models.Habit{
		{ID: "h1", Name: "Read"},
		{ID: "h2", Name: "Run"},
		{ID: "h3", Name: "run"},
	}
	tests := []struct {
		ref     string
		wantID  string
		wantErr bool
	}{
		{"h2", "h2", false},
		{"READ", "h1", false},
		{"run", "", true},
		{"Swim", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, err := findHabit(habits, tt.ref)
			if (err != nil) != tt.wantErr {
				t.Fatalf("findHabit() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got.ID != tt.wantID {
				t.Errorf("findHabit() = %q, want %q", got.ID, tt.wantID)
			}
		})
	}
}

func TestHabitCategories(t *testing.T) {
	srv := clitest.NewServer(t, testNow)
	ctx, out := clitest.NewContext(t, srv, testNow, true)

	if err := (&HabitCategoriesCmd{}).Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(out.String(), "No categories yet.") {
		t.Errorf("unexpected output: %s", out.String())
	}

	srv.Categories = []string{"Health", "Work"}
	out.Reset()
	if err := (&HabitCategoriesCmd{}).Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if out.String() != "Health\nWork\n" {
		t.Errorf("output = %q", out.String())
	}
}

func TestSummarizeDates(t *testing.T) {
	if got := summarizeDates(nil); got != "none" {
		t.Errorf("summarizeDates(nil) = %q", got)
	}
	if got := summarizeDates([]string{"a", "b"}); got != "a, b" {
		t.Errorf("summarizeDates(2) = %q", got)
	}
	if got := summarizeDates([]string{"a", "b", "c", "d"}); got != "a … d" {
		t.Errorf("summarizeDates(4) = %q", got)
	}
}
