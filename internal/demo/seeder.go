// Package demo seeds the backend with sample users and availability.
package demo

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/terra-clan/interview-console/internal/models"
	"github.com/terra-clan/interview-console/internal/notify"
)

const failureMessage = "Failed to initialize demo data. Please try again."

// API is the subset of the backend client used for seeding
type API interface {
	InitDemo(ctx context.Context) (*models.DemoSeedResult, error)
}

// Loader reloads the user directory
type Loader interface {
	LoadAll(ctx context.Context) error
}

// Refresher reloads a view of the selected user
type Refresher interface {
	RefreshSelected(ctx context.Context) error
}

// Notifier raises user-facing toasts
type Notifier interface {
	Success(msg string) notify.Toast
	Error(msg string) notify.Toast
}

// Seeder initializes demo data and refreshes dependent views
type Seeder struct {
	api        API
	directory  Loader
	refreshers []Refresher
	notifier   Notifier
	logger     *slog.Logger

	mu     sync.RWMutex
	status string
}

// NewSeeder creates a seeder. Each refresher is asked to reload its selected
// view after a successful seed.
func NewSeeder(api API, directory Loader, notifier Notifier, logger *slog.Logger, refreshers ...Refresher) *Seeder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{
		api:        api,
		directory:  directory,
		refreshers: refreshers,
		notifier:   notifier,
		logger:     logger,
	}
}

// Seed asks the backend to create demo data, then reloads the directory and
// the selected views. On failure nothing already loaded is touched.
func (s *Seeder) Seed(ctx context.Context) (*models.DemoSeedResult, error) {
	result, err := s.api.InitDemo(ctx)
	if err != nil {
		s.logger.Error("failed to initialize demo data", "error", err)
		s.setStatus(failureMessage)
		s.notifier.Error(failureMessage)
		return nil, fmt.Errorf("failed to initialize demo data: %w", err)
	}

	msg := fmt.Sprintf("Demo data initialized! Created %d users and %d availability slots.",
		result.UserCount(), result.SlotCount())
	s.setStatus(msg)
	s.logger.Info("demo data initialized", "users", result.UserCount(), "slots", result.SlotCount())

	if err := s.directory.LoadAll(ctx); err != nil {
		s.logger.Warn("failed to reload users after seeding", "error", err)
	}
	for _, r := range s.refreshers {
		if err := r.RefreshSelected(ctx); err != nil {
			s.logger.Warn("failed to refresh view after seeding", "error", err)
		}
	}

	s.notifier.Success(msg)
	return result, nil
}

// Status returns the message of the last seed attempt
func (s *Seeder) Status() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *Seeder) setStatus(msg string) {
	s.mu.Lock()
	s.status = msg
	s.mu.Unlock()
}
