// Package clitest provides an in-memory habit API and a wired command context
// for command tests.
package clitest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/julianstephens/streakline/internal/api"
	"github.com/julianstephens/streakline/internal/cli"
	"github.com/julianstephens/streakline/internal/constants"
	"github.com/julianstephens/streakline/internal/models"
	"github.com/julianstephens/streakline/internal/session"
	"github.com/julianstephens/streakline/internal/storage"
)

const (
	Email    = "ada@example.com"
	Password = "correct horse"
)

// Created is a habit creation request received by the server.
type Created struct {
	UserID     string   `json:"userId"`
	HabitName  string   `json:"habitName"`
	HabitDates []string `json:"habitDates"`
	Category   string   `json:"category"`
}

// Update is a status change received by the server.
type Update struct {
	HabitID     string
	Date        string `json:"date"`
	IfCompleted bool   `json:"ifCompleted"`
}

// Server fakes the habit API. Habits and Categories may be edited between
// calls; requests are recorded for assertions.
type Server struct {
	*httptest.Server

	mu         sync.Mutex
	Token      string
	User       models.User
	Habits     []models.Habit
	Categories []string
	Created    []Created
	Updates    []Update
	Marks      []string
	// FailUpdates makes the update endpoint answer 500
	FailUpdates bool
}

// NewServer starts a fake API whose login issues a token valid for an hour
// after now.
func NewServer(t *testing.T, now time.Time) *Server {
	t.Helper()
	s := &Server{
		Token: Token(t, now.Add(time.Hour)),
		User:  models.User{ID: "u1", Name: "Ada", Email: Email},
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

// Token mints a JWT expiring at exp. Clients never verify the signature.
func Token(t *testing.T, exp time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": exp.Unix(),
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := r.URL.Path
	if strings.HasPrefix(path, "/auth/") {
		s.serveAuth(w, r)
		return
	}
	if r.Header.Get("Authorization") != "Bearer "+s.Token {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid token"})
		return
	}

	switch {
	case r.Method == http.MethodGet && path == "/get-habits":
		writeJSON(w, http.StatusOK, map[string]interface{}{"habits": s.Habits})
	case r.Method == http.MethodGet && strings.HasPrefix(path, "/get-categories/"):
		writeJSON(w, http.StatusOK, map[string]interface{}{"categories": s.Categories})
	case r.Method == http.MethodPost && path == "/create-habit":
		var req Created
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
			return
		}
		s.Created = append(s.Created, req)
		h := models.Habit{
			ID:         "new-" + req.HabitName,
			UserID:     req.UserID,
			Name:       req.HabitName,
			Category:   req.Category,
			HabitDates: req.HabitDates,
		}
		s.Habits = append(s.Habits, h)
		writeJSON(w, http.StatusCreated, map[string]interface{}{"habit": h})
	case r.Method == http.MethodPatch && strings.HasPrefix(path, "/update-habit/"):
		if s.FailUpdates {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "database unavailable"})
			return
		}
		req := Update{HabitID: strings.TrimPrefix(path, "/update-habit/")}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
			return
		}
		s.Updates = append(s.Updates, req)
		i := s.index(req.HabitID)
		if i < 0 {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "habit not found"})
			return
		}
		s.Habits[i] = s.Habits[i].WithStatus(req.Date, req.IfCompleted)
		writeJSON(w, http.StatusOK, map[string]interface{}{"updatedHabit": s.Habits[i]})
	case r.Method == http.MethodPost && strings.HasPrefix(path, "/mark-habit-done/"):
		id := strings.TrimPrefix(path, "/mark-habit-done/")
		s.Marks = append(s.Marks, id)
		i := s.index(id)
		if i < 0 {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "habit not found"})
			return
		}
		s.Habits[i].Streak++
		writeJSON(w, http.StatusOK, map[string]interface{}{"habit": s.Habits[i]})
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "no route"})
	}
}

func (s *Server) serveAuth(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}

	switch r.URL.Path {
	case "/auth/login":
		if req.Email != s.User.Email || req.Password != Password {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"token": s.Token, "user": s.User})
	case "/auth/register":
		if req.Email == s.User.Email {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "User already exists"})
			return
		}
		s.User = models.User{ID: "u2", Name: req.Name, Email: req.Email}
		writeJSON(w, http.StatusCreated, map[string]interface{}{"user": s.User})
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "no route"})
	}
}

func (s *Server) index(id string) int {
	for i, h := range s.Habits {
		if h.ID == id {
			return i
		}
	}
	return -1
}

// Snapshot returns a copy of the server's habits.
func (s *Server) Snapshot() []models.Habit {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Habit, len(s.Habits))
	for i, h := range s.Habits {
		out[i] = h.Clone()
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// NewContext wires a command context to s with a file session store in a
// temp directory and a clock frozen at now. With loggedIn the session is
// established through the server's login endpoint.
func NewContext(t *testing.T, s *Server, now time.Time, loggedIn bool) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	store := storage.NewJSONStore(filepath.Join(dir, constants.SessionFileName))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	clock := func() time.Time { return now }
	client := api.NewClient(s.URL, api.WithTimeout(5*time.Second))
	mgr := session.NewManager(client, store, session.WithClock(clock))
	if loggedIn {
		if err := mgr.Login(context.Background(), Email, Password); err != nil {
			t.Fatalf("Login() error = %v", err)
		}
	}

	out := &bytes.Buffer{}
	ctx := &cli.Context{
		Config: cli.Config{
			APIURL:       s.URL,
			ConfigDir:    dir,
			SessionStore: constants.StoreFile,
			Timezone:     "UTC",
			Timeout:      5 * time.Second,
			RateLimit:    constants.DefaultRateLimit,
		},
		Store:    store,
		API:      client.WithTokenSource(mgr),
		Session:  mgr,
		Location: time.UTC,
		Out:      out,
	}
	ctx.SetClock(clock)
	return ctx, out
}
