package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	apperrors "github.com/julianstephens/streakline/internal/errors"
	"github.com/julianstephens/streakline/internal/models"
)

type staticTokens string

func (s staticTokens) Token() (string, bool) {
	return string(s), s != ""
}

type recorded struct {
	Method  string
	Path    string
	Header  http.Header
	Body    map[string]interface{}
	RawBody string
}

// fakeAPI records every request and answers with a canned status and body.
type fakeAPI struct {
	mu       sync.Mutex
	requests []recorded
	status   int
	body     string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	rec := recorded{Method: r.Method, Path: r.URL.Path, Header: r.Header.Clone(), RawBody: string(raw)}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &rec.Body)
	}

	f.mu.Lock()
	f.requests = append(f.requests, rec)
	status, body := f.status, f.body
	f.mu.Unlock()

	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func (f *fakeAPI) last(t *testing.T) recorded {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		t.Fatal("no request reached the server")
	}
	return f.requests[len(f.requests)-1]
}

func (f *fakeAPI) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func newTestClient(t *testing.T, f *fakeAPI, token string) *Client {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	c := NewClient(srv.URL+"/", WithRateLimit(0, 0), WithTimeout(5*time.Second))
	if token != "" {
		c = c.WithTokenSource(staticTokens(token))
	}
	return c
}

func TestLogin(t *testing.T) {
	f := &fakeAPI{body: `{"token":"abc.def.ghi","user":{"_id":"u1","name":"Ada","email":"ada@example.com"}}`}
	c := newTestClient(t, f, "")

	token, user, err := c.Login(context.Background(), "ada@example.com", "secret")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if token != "abc.def.ghi" {
		t.Errorf("Login() token = %q", token)
	}
	if user.ID != "u1" || user.Email != "ada@example.com" {
		t.Errorf("Login() user = %+v", user)
	}

	req := f.last(t)
	if req.Method != http.MethodPost || req.Path != "/auth/login" {
		t.Errorf("Login() sent %s %s", req.Method, req.Path)
	}
	if req.Body["email"] != "ada@example.com" || req.Body["password"] != "secret" {
		t.Errorf("Login() body = %v", req.Body)
	}
	if req.Header.Get("Authorization") != "" {
		t.Error("Login() should not send an Authorization header")
	}
	if req.Header.Get("X-Request-ID") == "" {
		t.Error("Login() missing X-Request-ID header")
	}
}

func TestLoginRejectedIsAuthError(t *testing.T) {
	f := &fakeAPI{status: http.StatusBadRequest, body: `{"message":"Invalid credentials"}`}
	c := newTestClient(t, f, "")

	_, _, err := c.Login(context.Background(), "ada@example.com", "wrong")
	if !errors.Is(err, apperrors.ErrAuth) {
		t.Fatalf("Login() error = %v, want ErrAuth", err)
	}
	if !strings.Contains(err.Error(), "Invalid credentials") {
		t.Errorf("Login() error = %q, want server message", err)
	}

	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusBadRequest {
		t.Errorf("Login() error = %#v, want *Error with status 400", err)
	}
}

func TestRegister(t *testing.T) {
	f := &fakeAPI{status: http.StatusCreated, body: `{"user":{"_id":"u2","name":"Grace","email":"grace@example.com"}}`}
	c := newTestClient(t, f, "")

	user, err := c.Register(context.Background(), "Grace", "grace@example.com", "pw")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if user.ID != "u2" {
		t.Errorf("Register() user = %+v", user)
	}
	req := f.last(t)
	if req.Path != "/auth/register" || req.Body["name"] != "Grace" {
		t.Errorf("Register() sent %s %v", req.Path, req.Body)
	}
}

func TestProtectedCallWithoutToken(t *testing.T) {
	f := &fakeAPI{body: `{"habits":[]}`}
	c := newTestClient(t, f, "")

	_, err := c.Habits(context.Background())
	if !errors.Is(err, apperrors.ErrAuth) {
		t.Fatalf("Habits() error = %v, want ErrAuth", err)
	}
	if f.count() != 0 {
		t.Errorf("Habits() without a token made %d requests, want 0", f.count())
	}
}

func TestHabits(t *testing.T) {
	f := &fakeAPI{body: `{"habits":[{"_id":"h1","habitName":"Read","category":"Learning","habitDates":["2024-01-01"],"history":[{"date":"2024-01-01T00:00:00.000Z","ifCompleted":true}],"streak":3}]}`}
	c := newTestClient(t, f, "tok")

	habits, err := c.Habits(context.Background())
	if err != nil {
		t.Fatalf("Habits() error = %v", err)
	}
	if len(habits) != 1 {
		t.Fatalf("Habits() returned %d habits", len(habits))
	}
	h := habits[0]
	if h.ID != "h1" || h.Name != "Read" || h.Streak != 3 || !h.CompletedOn("2024-01-01") {
		t.Errorf("Habits() decoded %+v", h)
	}

	req := f.last(t)
	if req.Method != http.MethodGet || req.Path != "/get-habits" {
		t.Errorf("Habits() sent %s %s", req.Method, req.Path)
	}
	if got := req.Header.Get("Authorization"); got != "Bearer tok" {
		t.Errorf("Authorization = %q, want %q", got, "Bearer tok")
	}
}

func TestHabitsNullList(t *testing.T) {
	f := &fakeAPI{body: `{"habits":null}`}
	c := newTestClient(t, f, "tok")

	habits, err := c.Habits(context.Background())
	if err != nil {
		t.Fatalf("Habits() error = %v", err)
	}
	if habits == nil || len(habits) != 0 {
		t.Errorf("Habits() = %#v, want empty non-nil slice", habits)
	}
}

func TestCategories(t *testing.T) {
	f := &fakeAPI{body: `{"categories":["Health","Learning"]}`}
	c := newTestClient(t, f, "tok")

	cats, err := c.Categories(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Categories() error = %v", err)
	}
	if len(cats) != 2 || cats[1] != "Learning" {
		t.Errorf("Categories() = %v", cats)
	}
	if req := f.last(t); req.Path != "/get-categories/u1" {
		t.Errorf("Categories() path = %s", req.Path)
	}
}

func TestCreateHabit(t *testing.T) {
	f := &fakeAPI{status: http.StatusCreated, body: `{"habit":{"_id":"h9","habitName":"Read","category":"Books","habitDates":[]}}`}
	c := newTestClient(t, f, "tok")

	h, err := c.CreateHabit(context.Background(), "u1", "Read", nil, models.AdHocCategory("Books"))
	if err != nil {
		t.Fatalf("CreateHabit() error = %v", err)
	}
	if h.ID != "h9" {
		t.Errorf("CreateHabit() = %+v", h)
	}

	req := f.last(t)
	if req.Path != "/create-habit" {
		t.Errorf("CreateHabit() path = %s", req.Path)
	}
	if req.Body["userId"] != "u1" || req.Body["habitName"] != "Read" || req.Body["category"] != "Books" {
		t.Errorf("CreateHabit() body = %v", req.Body)
	}
	if !strings.Contains(req.RawBody, `"habitDates":[]`) {
		t.Errorf("CreateHabit() should send an empty date list, body = %s", req.RawBody)
	}
}

func TestUpdateHabitStatus(t *testing.T) {
	f := &fakeAPI{body: `{"updatedHabit":{"_id":"h1","history":[{"date":"2024-01-02","ifCompleted":false}]}}`}
	c := newTestClient(t, f, "tok")

	h, err := c.UpdateHabitStatus(context.Background(), "h1", "2024-01-02", false)
	if err != nil {
		t.Fatalf("UpdateHabitStatus() error = %v", err)
	}
	if len(h.History) != 1 {
		t.Errorf("UpdateHabitStatus() = %+v", h)
	}

	req := f.last(t)
	if req.Method != http.MethodPatch || req.Path != "/update-habit/h1" {
		t.Errorf("UpdateHabitStatus() sent %s %s", req.Method, req.Path)
	}
	if req.Body["date"] != "2024-01-02" || req.Body["ifCompleted"] != false {
		t.Errorf("UpdateHabitStatus() body = %v", req.Body)
	}
}

func TestMarkHabitDone(t *testing.T) {
	f := &fakeAPI{body: `{"habit":{"_id":"h1","streak":5}}`}
	c := newTestClient(t, f, "tok")

	at := time.Date(2024, 1, 2, 9, 30, 0, 0, time.FixedZone("EST", -5*3600))
	h, err := c.MarkHabitDone(context.Background(), "h1", at)
	if err != nil {
		t.Fatalf("MarkHabitDone() error = %v", err)
	}
	if h.Streak != 5 {
		t.Errorf("MarkHabitDone() streak = %d, want 5", h.Streak)
	}

	req := f.last(t)
	if req.Method != http.MethodPost || req.Path != "/mark-habit-done/h1" {
		t.Errorf("MarkHabitDone() sent %s %s", req.Method, req.Path)
	}
	if req.Body["date"] != "2024-01-02T14:30:00.000Z" {
		t.Errorf("MarkHabitDone() date = %v", req.Body["date"])
	}
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, `{"message":"jwt expired"}`, apperrors.ErrAuth},
		{"forbidden", http.StatusForbidden, ``, apperrors.ErrAuth},
		{"bad request on protected call", http.StatusBadRequest, `{"message":"bad date"}`, apperrors.ErrNetwork},
		{"server error", http.StatusInternalServerError, `oops`, apperrors.ErrNetwork},
		{"malformed success body", http.StatusOK, `{"habits":`, apperrors.ErrNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeAPI{status: tt.status, body: tt.body}
			c := newTestClient(t, f, "tok")

			_, err := c.Habits(context.Background())
			if !errors.Is(err, tt.want) {
				t.Errorf("Habits() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestServerMessageFallback(t *testing.T) {
	f := &fakeAPI{status: http.StatusInternalServerError, body: `not json`}
	c := newTestClient(t, f, "tok")

	_, err := c.Habits(context.Background())
	if err == nil || !strings.Contains(err.Error(), "Internal Server Error") {
		t.Errorf("Habits() error = %v, want status text fallback", err)
	}
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url, WithRateLimit(0, 0)).WithTokenSource(staticTokens("tok"))
	_, err := c.Habits(context.Background())
	if !errors.Is(err, apperrors.ErrNetwork) {
		t.Errorf("Habits() against a closed server error = %v, want ErrNetwork", err)
	}
}

func TestCanceledContext(t *testing.T) {
	f := &fakeAPI{body: `{"habits":[]}`}
	c := newTestClient(t, f, "tok")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Habits(ctx)
	if !errors.Is(err, apperrors.ErrNetwork) || !errors.Is(err, context.Canceled) {
		t.Errorf("Habits() with canceled context error = %v", err)
	}
}

func TestWithTokenSourceDoesNotMutateOriginal(t *testing.T) {
	base := NewClient("http://example.invalid")
	bound := base.WithTokenSource(staticTokens("tok"))
	if base.tokens != nil {
		t.Error("WithTokenSource mutated the original client")
	}
	if bound.tokens == nil {
		t.Error("WithTokenSource did not bind the token source")
	}
	if bound.BaseURL() != "http://example.invalid" {
		t.Errorf("BaseURL() = %q", bound.BaseURL())
	}
}
