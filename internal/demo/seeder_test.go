package demo

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/terra-clan/interview-console/internal/availability"
	"github.com/terra-clan/interview-console/internal/backendtest"
	"github.com/terra-clan/interview-console/internal/directory"
	"github.com/terra-clan/interview-console/internal/interview"
	"github.com/terra-clan/interview-console/internal/models"
	"github.com/terra-clan/interview-console/internal/notify"
	"github.com/terra-clan/interview-console/pkg/client"
)

type fixture struct {
	backend      *backendtest.Backend
	notifier     *notify.Notifier
	directory    *directory.Controller
	availability *availability.Controller
	interviews   *interview.Controller
	seeder       *Seeder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	backend := backendtest.New(t)
	api := client.New(backend.URL(), client.WithLogger(logger))
	notifier := notify.NewNotifier(notify.Config{}, logger)

	f := &fixture{
		backend:      backend,
		notifier:     notifier,
		directory:    directory.NewController(api, directory.NewRoster(), notifier, logger),
		availability: availability.NewController(api, notifier, logger, time.UTC),
		interviews:   interview.NewController(api, notifier, logger, time.UTC),
	}
	f.seeder = NewSeeder(api, f.directory, notifier, logger, f.availability, f.interviews)
	return f
}

func TestSeedReloadsDirectoryAndViews(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.availability.SelectViewUser(ctx, 1); err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if v := f.availability.View(); v.State != availability.ViewEmpty {
		t.Fatalf("expected empty view before seeding, got %+v", v)
	}

	result, err := f.seeder.Seed(ctx)
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if result.UserCount() != 3 || result.SlotCount() != 3 {
		t.Errorf("unexpected counts %d/%d", result.UserCount(), result.SlotCount())
	}

	want := "Demo data initialized! Created 3 users and 3 availability slots."
	if f.seeder.Status() != want {
		t.Errorf("got status %q", f.seeder.Status())
	}
	if len(f.directory.Users(models.RoleCandidate)) != 2 || len(f.directory.Users(models.RoleRecruiter)) != 1 {
		t.Errorf("directory not reloaded")
	}
	if v := f.availability.View(); v.State != availability.ViewLoaded || len(v.Rows) != 1 {
		t.Errorf("expected availability view refreshed, got %+v", v)
	}

	active := f.notifier.Active()
	if len(active) == 0 || active[len(active)-1].Message != want {
		t.Errorf("expected success toast, got %+v", active)
	}
}

func TestSeedFailureLeavesDataUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.backend.AddUser("Carl", "carl@example.com", models.RoleCandidate)
	if err := f.directory.LoadAll(ctx); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	f.backend.FailWith(http.MethodPost, "/demo/init", http.StatusInternalServerError, `{"detail":"seed failed"}`)
	f.backend.Reset()

	if _, err := f.seeder.Seed(ctx); err == nil {
		t.Fatal("expected error")
	}
	if f.seeder.Status() != failureMessage {
		t.Errorf("unexpected status %q", f.seeder.Status())
	}
	if len(f.directory.Users(models.RoleCandidate)) != 1 {
		t.Error("directory must stay untouched")
	}
	if n := f.backend.Count(http.MethodGet, "/users/"); n != 0 {
		t.Errorf("expected no reload after failure, got %d", n)
	}
}
