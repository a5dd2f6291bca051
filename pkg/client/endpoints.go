package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/terra-clan/interview-console/internal/models"
)

// Ping checks that the backend answers on its root endpoint
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Request(ctx, "/", nil)
	return err
}

// User management

// ListUsers retrieves every user of one role
func (c *Client) ListUsers(ctx context.Context, role models.Role) ([]models.User, error) {
	var users []models.User
	query := url.Values{"user_type": {string(role)}}
	if err := c.do(ctx, http.MethodGet, "/users/", query, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// GetUser retrieves a user by ID
func (c *Client) GetUser(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/users/%d", id), nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser creates a user; the backend assigns the ID
func (c *Client) CreateUser(ctx context.Context, req models.CreateUserRequest) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodPost, "/users/", nil, req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Availability management

// GetAvailability retrieves the stored slots of a user
func (c *Client) GetAvailability(ctx context.Context, userID int64) ([]models.AvailabilitySlot, error) {
	var slots []models.AvailabilitySlot
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/availability/%d", userID), nil, nil, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

// ParseAvailability submits free text for server-side interpretation
func (c *Client) ParseAvailability(ctx context.Context, userID int64, text string) ([]models.AvailabilitySlot, error) {
	var slots []models.AvailabilitySlot
	req := models.ParseAvailabilityRequest{UserID: userID, Text: text}
	if err := c.do(ctx, http.MethodPost, "/availability/parse", nil, req, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

// SaveManualAvailability replaces a user's slots with manually entered ones
func (c *Client) SaveManualAvailability(ctx context.Context, userID int64, slots []models.ManualSlot) (*models.ManualAvailabilityResponse, error) {
	var resp models.ManualAvailabilityResponse
	req := models.ManualAvailabilityRequest{UserID: userID, Slots: slots}
	if err := c.do(ctx, http.MethodPost, "/availability/manual", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Interview scheduling

// Schedule asks the backend to find and book the optimal slot for two users
func (c *Client) Schedule(ctx context.Context, req models.ScheduleRequest) (*models.SchedulingResult, error) {
	var result models.SchedulingResult
	if err := c.do(ctx, http.MethodPost, "/schedule", nil, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ScheduleByEmail books an interview at an explicit date and time
func (c *Client) ScheduleByEmail(ctx context.Context, req models.EmailScheduleRequest) (*models.SchedulingResult, error) {
	var result models.SchedulingResult
	if err := c.do(ctx, http.MethodPost, "/schedule_by_email", nil, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// AutoScheduleByEmail lets the backend pick the time entirely
func (c *Client) AutoScheduleByEmail(ctx context.Context, req models.AutoScheduleRequest) (*models.SchedulingResult, error) {
	var result models.SchedulingResult
	if err := c.do(ctx, http.MethodPost, "/auto_schedule_by_email", nil, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListInterviews retrieves every interview a user takes part in
func (c *Client) ListInterviews(ctx context.Context, userID int64) ([]models.Interview, error) {
	var interviews []models.Interview
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/interviews/%d", userID), nil, nil, &interviews); err != nil {
		return nil, err
	}
	return interviews, nil
}

// UpdateInterviewStatus moves an interview to the given status
func (c *Client) UpdateInterviewStatus(ctx context.Context, interviewID int64, status models.InterviewStatus) (*models.StatusUpdateResponse, error) {
	var resp models.StatusUpdateResponse
	query := url.Values{"status": {string(status)}}
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/interviews/%d", interviewID), query, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Demo data

// InitDemo seeds the backend with demo users and availability
func (c *Client) InitDemo(ctx context.Context) (*models.DemoSeedResult, error) {
	var result models.DemoSeedResult
	if err := c.do(ctx, http.MethodPost, "/demo/init", nil, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
