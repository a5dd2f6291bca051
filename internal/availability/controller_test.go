package availability

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/terra-clan/interview-console/internal/backendtest"
	"github.com/terra-clan/interview-console/internal/models"
	"github.com/terra-clan/interview-console/internal/notify"
	"github.com/terra-clan/interview-console/pkg/client"
)

func newTestController(t *testing.T) (*Controller, *backendtest.Backend, *notify.Notifier) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	backend := backendtest.New(t)
	api := client.New(backend.URL(), client.WithLogger(logger))
	notifier := notify.NewNotifier(notify.Config{}, logger)
	return NewController(api, notifier, logger, time.UTC), backend, notifier
}

func lastMessage(n *notify.Notifier) string {
	active := n.Active()
	if len(active) == 0 {
		return ""
	}
	return active[len(active)-1].Message
}

func TestSaveManualSlotsRejectsWholeBatch(t *testing.T) {
	tests := []struct {
		name  string
		slots []models.ManualSlot
		want  string
	}{
		{
			name: "reversed slot",
			slots: []models.ManualSlot{
				{Start: "2025-03-17T09:00", End: "2025-03-17T10:00"},
				{Start: "2025-03-17T12:00", End: "2025-03-17T11:00"},
			},
			want: "End time must be after start time",
		},
		{
			name: "equal endpoints",
			slots: []models.ManualSlot{
				{Start: "2025-03-17T12:00", End: "2025-03-17T12:00"},
			},
			want: "End time must be after start time",
		},
		{
			name: "missing field",
			slots: []models.ManualSlot{
				{Start: "2025-03-17T09:00", End: "2025-03-17T10:00"},
				{Start: "2025-03-17T12:00"},
			},
			want: "Please fill in all date and time fields",
		},
		{
			name: "empty batch",
			want: "Please add at least one time slot",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, backend, notifier := newTestController(t)
			user := backend.AddUser("Ann", "ann@example.com", models.RoleCandidate)

			err := c.SaveManualSlots(context.Background(), user.ID, tt.slots)
			if !models.IsValidation(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if len(backend.Requests()) != 0 {
				t.Errorf("expected zero requests, got %d", len(backend.Requests()))
			}
			if got := lastMessage(notifier); got != tt.want {
				t.Errorf("got toast %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSaveManualSlotsRefreshesViewedUser(t *testing.T) {
	c, backend, notifier := newTestController(t)
	user := backend.AddUser("Ann", "ann@example.com", models.RoleCandidate)

	if err := c.SelectViewUser(context.Background(), user.ID); err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if v := c.View(); v.State != ViewEmpty || v.Message != "No availability data" {
		t.Fatalf("expected explicit empty state, got %+v", v)
	}

	err := c.SaveManualSlots(context.Background(), user.ID, []models.ManualSlot{
		{Start: "2025-03-17T15:00", End: "2025-03-17T16:00"},
		{Start: "2025-03-18T09:00", End: "2025-03-18T10:30"},
	})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if got := lastMessage(notifier); got != "Availability saved! Added 2 time slots." {
		t.Errorf("unexpected toast %q", got)
	}

	v := c.View()
	if v.State != ViewLoaded || len(v.Rows) != 2 {
		t.Fatalf("expected two loaded rows, got %+v", v)
	}
	if v.Rows[0].Start != "Mar 17, 2025, 3:00 PM" || v.Rows[0].End != "Mar 17, 2025, 4:00 PM" {
		t.Errorf("unexpected row rendering %+v", v.Rows[0])
	}
	if v.Rows[0].Description != "Manually added" {
		t.Errorf("unexpected description %q", v.Rows[0].Description)
	}
}

func TestSaveManualSlotsSucceedsWhenRefreshFails(t *testing.T) {
	c, backend, notifier := newTestController(t)
	user := backend.AddUser("Ann", "ann@example.com", models.RoleCandidate)
	if err := c.SelectViewUser(context.Background(), user.ID); err != nil {
		t.Fatalf("select failed: %v", err)
	}
	backend.FailWith(http.MethodGet, "/availability/"+strconv.FormatInt(user.ID, 10), http.StatusInternalServerError, "")

	err := c.SaveManualSlots(context.Background(), user.ID, []models.ManualSlot{
		{Start: "2025-03-17T15:00", End: "2025-03-17T16:00"},
	})
	if err != nil {
		t.Fatalf("stored slots must report success, got %v", err)
	}
	if got := lastMessage(notifier); got != "Availability saved! Added 1 time slots." {
		t.Errorf("unexpected toast %q", got)
	}
	if v := c.View(); v.State != ViewError || v.Message != "Failed to load availability data" {
		t.Errorf("expected view error state, got %+v", v)
	}
}

func TestParseFreeText(t *testing.T) {
	c, backend, notifier := newTestController(t)
	user := backend.AddUser("Ann", "ann@example.com", models.RoleCandidate)
	if err := c.SelectViewUser(context.Background(), user.ID); err != nil {
		t.Fatalf("select failed: %v", err)
	}

	n, err := c.ParseFreeText(context.Background(), user.ID, "Monday mornings and afternoons")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 slots, got %d", n)
	}
	if got := lastMessage(notifier); got != "Availability parsed! Found 2 time slots." {
		t.Errorf("unexpected toast %q", got)
	}

	v := c.View()
	if v.State != ViewLoaded || len(v.Rows) != 2 {
		t.Fatalf("expected parsed slots in view, got %+v", v)
	}
	if v.Rows[0].Description != "N/A" {
		t.Errorf("expected N/A description, got %q", v.Rows[0].Description)
	}
}

func TestParseFreeTextValidation(t *testing.T) {
	c, backend, _ := newTestController(t)

	if _, err := c.ParseFreeText(context.Background(), 0, "mornings"); !models.IsValidation(err) {
		t.Errorf("expected validation error for missing user, got %v", err)
	}
	if _, err := c.ParseFreeText(context.Background(), 3, "   "); !models.IsValidation(err) {
		t.Errorf("expected validation error for empty text, got %v", err)
	}
	if len(backend.Requests()) != 0 {
		t.Errorf("expected zero requests, got %d", len(backend.Requests()))
	}
}

func TestViewErrorState(t *testing.T) {
	c, backend, _ := newTestController(t)
	user := backend.AddUser("Ann", "ann@example.com", models.RoleCandidate)
	backend.FailWith(http.MethodGet, "/availability/1", http.StatusInternalServerError, "")

	if err := c.SelectViewUser(context.Background(), user.ID); err == nil {
		t.Fatal("expected error")
	}
	v := c.View()
	if v.State != ViewError || v.Message != "Failed to load availability data" {
		t.Errorf("unexpected view %+v", v)
	}
}

func TestViewRendersInvalidTimestamps(t *testing.T) {
	c, backend, _ := newTestController(t)
	user := backend.AddUser("Ann", "ann@example.com", models.RoleCandidate)
	backend.SetSlots(user.ID, models.AvailabilitySlot{Start: "sometime", End: "2025-03-17 16:00:00", Description: "free after 3"})

	if err := c.SelectViewUser(context.Background(), user.ID); err != nil {
		t.Fatalf("select failed: %v", err)
	}
	v := c.View()
	if len(v.Rows) != 1 {
		t.Fatalf("expected one row, got %+v", v)
	}
	if v.Rows[0].Start != models.InvalidDateFormat {
		t.Errorf("expected invalid marker, got %q", v.Rows[0].Start)
	}
	if v.Rows[0].End != "Mar 17, 2025, 4:00 PM" {
		t.Errorf("unexpected end %q", v.Rows[0].End)
	}
	if v.Rows[0].Description != "free after 3" {
		t.Errorf("unexpected description %q", v.Rows[0].Description)
	}
}
