// Package availability submits user availability to the backend and keeps the
// availability view of the selected user.
package availability

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/terra-clan/interview-console/internal/models"
	"github.com/terra-clan/interview-console/internal/notify"
	"github.com/terra-clan/interview-console/pkg/client"
)

// API is the subset of the backend client used for availability
type API interface {
	GetAvailability(ctx context.Context, userID int64) ([]models.AvailabilitySlot, error)
	ParseAvailability(ctx context.Context, userID int64, text string) ([]models.AvailabilitySlot, error)
	SaveManualAvailability(ctx context.Context, userID int64, slots []models.ManualSlot) (*models.ManualAvailabilityResponse, error)
}

// Notifier raises user-facing toasts
type Notifier interface {
	Success(msg string) notify.Toast
	Error(msg string) notify.Toast
}

// ViewState describes what the availability view shows
type ViewState string

const (
	ViewIdle   ViewState = "idle"
	ViewEmpty  ViewState = "empty"
	ViewLoaded ViewState = "loaded"
	ViewError  ViewState = "error"
)

const (
	emptyMessage = "No availability data"
	errorMessage = "Failed to load availability data"
)

// Row is one rendered availability slot
type Row struct {
	Start       string
	End         string
	Description string
}

// View is the availability table of the selected user
type View struct {
	UserID  int64
	State   ViewState
	Message string
	Rows    []Row
}

// Controller handles availability submission and display
type Controller struct {
	api      API
	notifier Notifier
	logger   *slog.Logger
	loc      *time.Location

	mu   sync.RWMutex
	view View
}

// NewController creates an availability controller. Timestamps are rendered in loc.
func NewController(api API, notifier Notifier, logger *slog.Logger, loc *time.Location) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.Local
	}
	return &Controller{
		api:      api,
		notifier: notifier,
		logger:   logger,
		loc:      loc,
		view:     View{State: ViewIdle},
	}
}

// ParseFreeText sends free-form availability text to the backend and returns
// the number of slots it recognised
func (c *Controller) ParseFreeText(ctx context.Context, userID int64, text string) (int, error) {
	text = strings.TrimSpace(text)
	if userID == 0 {
		return 0, c.reject("Please select a user")
	}
	if text == "" {
		return 0, c.reject("Please enter availability text")
	}

	slots, err := c.api.ParseAvailability(ctx, userID, text)
	if err != nil {
		c.logger.Error("failed to parse availability", "user_id", userID, "error", err)
		c.notifier.Error(client.UserMessage(err))
		return 0, fmt.Errorf("failed to parse availability: %w", err)
	}

	c.logger.Info("availability parsed", "user_id", userID, "slots", len(slots))
	c.notifier.Success(fmt.Sprintf("Availability parsed! Found %d time slots.", len(slots)))

	if c.viewedUser() == userID {
		c.setView(userID, slots)
	}
	return len(slots), nil
}

// SaveManualSlots submits a batch of manually entered slots. The whole batch
// is rejected before any request when one slot is incomplete or reversed.
func (c *Controller) SaveManualSlots(ctx context.Context, userID int64, slots []models.ManualSlot) error {
	if userID == 0 {
		return c.reject("Please select a user")
	}
	if len(slots) == 0 {
		return c.reject("Please add at least one time slot")
	}
	for _, slot := range slots {
		if err := slot.Validate(); err != nil {
			c.notifier.Error(err.Error())
			return err
		}
	}

	resp, err := c.api.SaveManualAvailability(ctx, userID, slots)
	if err != nil {
		c.logger.Error("failed to save availability", "user_id", userID, "error", err)
		c.notifier.Error(client.UserMessage(err))
		return fmt.Errorf("failed to save availability: %w", err)
	}

	added := len(slots)
	if resp != nil && resp.AddedSlots != nil {
		added = len(resp.AddedSlots)
	}
	c.logger.Info("availability saved", "user_id", userID, "slots", added)
	c.notifier.Success(fmt.Sprintf("Availability saved! Added %d time slots.", added))

	// the slots are stored; a failed refresh only shows in the view
	if c.viewedUser() == userID {
		if err := c.RefreshSelected(ctx); err != nil {
			c.logger.Warn("failed to refresh availability after save", "user_id", userID, "error", err)
		}
	}
	return nil
}

// FetchAvailability returns the stored slots of a user
func (c *Controller) FetchAvailability(ctx context.Context, userID int64) ([]models.AvailabilitySlot, error) {
	slots, err := c.api.GetAvailability(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch availability: %w", err)
	}
	return slots, nil
}

// SelectViewUser makes userID the viewed user and loads its slots.
// A zero ID clears the view.
func (c *Controller) SelectViewUser(ctx context.Context, userID int64) error {
	c.mu.Lock()
	c.view = View{UserID: userID, State: ViewIdle}
	c.mu.Unlock()

	if userID == 0 {
		return nil
	}
	return c.RefreshSelected(ctx)
}

// RefreshSelected reloads the slots of the viewed user, if any
func (c *Controller) RefreshSelected(ctx context.Context) error {
	userID := c.viewedUser()
	if userID == 0 {
		return nil
	}

	slots, err := c.FetchAvailability(ctx, userID)
	if err != nil {
		c.logger.Error("failed to load availability", "user_id", userID, "error", err)
		c.mu.Lock()
		if c.view.UserID == userID {
			c.view = View{UserID: userID, State: ViewError, Message: errorMessage}
		}
		c.mu.Unlock()
		return err
	}

	c.setView(userID, slots)
	return nil
}

// View returns the current availability view
func (c *Controller) View() View {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v := c.view
	v.Rows = append([]Row(nil), c.view.Rows...)
	return v
}

func (c *Controller) viewedUser() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.view.UserID
}

// setView replaces the rows unless another user was selected meanwhile
func (c *Controller) setView(userID int64, slots []models.AvailabilitySlot) {
	v := View{UserID: userID, State: ViewEmpty, Message: emptyMessage}
	if len(slots) > 0 {
		v = View{UserID: userID, State: ViewLoaded, Rows: c.rows(slots)}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.view.UserID == userID {
		c.view = v
	}
}

func (c *Controller) rows(slots []models.AvailabilitySlot) []Row {
	rows := make([]Row, 0, len(slots))
	for _, s := range slots {
		rows = append(rows, Row{
			Start:       models.FormatSlotTime(s.Start, c.loc),
			End:         models.FormatSlotTime(s.End, c.loc),
			Description: s.DisplayDescription(),
		})
	}
	return rows
}

func (c *Controller) reject(msg string) error {
	c.notifier.Error(msg)
	return models.NewValidationError(msg)
}
