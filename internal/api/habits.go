package api

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/julianstephens/streakline/internal/constants"
	"github.com/julianstephens/streakline/internal/models"
)

type createHabitRequest struct {
	UserID     string   `json:"userId"`
	HabitName  string   `json:"habitName"`
	HabitDates []string `json:"habitDates"`
	Category   string   `json:"category"`
}

type habitResponse struct {
	Habit models.Habit `json:"habit"`
}

type habitsResponse struct {
	Habits []models.Habit `json:"habits"`
}

type categoriesResponse struct {
	Categories []string `json:"categories"`
}

type updateHabitRequest struct {
	Date        string `json:"date"`
	IfCompleted bool   `json:"ifCompleted"`
}

type updateHabitResponse struct {
	UpdatedHabit models.Habit `json:"updatedHabit"`
}

type markDoneRequest struct {
	Date string `json:"date"`
}

// CreateHabit stores a new habit for userID. The category is flattened to its
// label here, at the API boundary.
func (c *Client) CreateHabit(ctx context.Context, userID, name string, dates []string, category models.Category) (models.Habit, error) {
	if dates == nil {
		dates = []string{}
	}
	label := ""
	if category != nil {
		label = category.Label()
	}

	var resp habitResponse
	err := c.do(ctx, call{
		op:     "create habit",
		method: http.MethodPost,
		path:   "/create-habit",
		body: createHabitRequest{
			UserID:     userID,
			HabitName:  name,
			HabitDates: dates,
			Category:   label,
		},
		protected: true,
	}, &resp)
	if err != nil {
		return models.Habit{}, err
	}
	return resp.Habit, nil
}

// Categories returns the category labels the server knows for userID.
func (c *Client) Categories(ctx context.Context, userID string) ([]string, error) {
	var resp categoriesResponse
	err := c.do(ctx, call{
		op:        "get categories",
		method:    http.MethodGet,
		path:      "/get-categories/" + url.PathEscape(userID),
		protected: true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Categories == nil {
		return []string{}, nil
	}
	return resp.Categories, nil
}

// Habits returns every habit of the logged-in user.
func (c *Client) Habits(ctx context.Context) ([]models.Habit, error) {
	var resp habitsResponse
	err := c.do(ctx, call{
		op:        "get habits",
		method:    http.MethodGet,
		path:      "/get-habits",
		protected: true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Habits == nil {
		return []models.Habit{}, nil
	}
	return resp.Habits, nil
}

// UpdateHabitStatus records whether habitID was completed on date.
func (c *Client) UpdateHabitStatus(ctx context.Context, habitID, date string, completed bool) (models.Habit, error) {
	var resp updateHabitResponse
	err := c.do(ctx, call{
		op:        "update habit",
		method:    http.MethodPatch,
		path:      "/update-habit/" + url.PathEscape(habitID),
		body:      updateHabitRequest{Date: date, IfCompleted: completed},
		protected: true,
	}, &resp)
	if err != nil {
		return models.Habit{}, err
	}
	return resp.UpdatedHabit, nil
}

// MarkHabitDone asks the server to recompute habitID's streak as of at.
func (c *Client) MarkHabitDone(ctx context.Context, habitID string, at time.Time) (models.Habit, error) {
	var resp habitResponse
	err := c.do(ctx, call{
		op:        "mark habit done",
		method:    http.MethodPost,
		path:      "/mark-habit-done/" + url.PathEscape(habitID),
		body:      markDoneRequest{Date: at.UTC().Format(constants.TimestampFormat)},
		protected: true,
	}, &resp)
	if err != nil {
		return models.Habit{}, err
	}
	return resp.Habit, nil
}
