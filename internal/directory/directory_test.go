package directory

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"testing"

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
	return NewController(api, NewRoster(), notifier, logger), backend, notifier
}

func lastToast(t *testing.T, n *notify.Notifier) notify.Toast {
	t.Helper()
	active := n.Active()
	if len(active) == 0 {
		t.Fatal("expected a toast")
	}
	return active[len(active)-1]
}

func countValue(opts []Option, id int64) int {
	n := 0
	for _, o := range opts {
		if o.Value == id {
			n++
		}
	}
	return n
}

func TestCreateUserAppearsOnce(t *testing.T) {
	c, backend, notifier := newTestController(t)
	backend.AddUser("Existing", "existing@example.com", models.RoleRecruiter)
	if err := c.LoadAll(context.Background()); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	user, err := c.CreateUser(context.Background(), models.CreateUserRequest{
		Name:  "Ann Lee",
		Email: "ann@example.com",
		Role:  models.RoleCandidate,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	candidates := c.Users(models.RoleCandidate)
	recruiters := c.Users(models.RoleRecruiter)
	inCandidates, inRecruiters := 0, 0
	for _, u := range candidates {
		if u.ID == user.ID {
			inCandidates++
		}
	}
	for _, u := range recruiters {
		if u.ID == user.ID {
			inRecruiters++
		}
	}
	if inCandidates != 1 || inRecruiters != 0 {
		t.Errorf("expected user once in candidates only, got %d/%d", inCandidates, inRecruiters)
	}

	sel := c.Selections()
	for _, id := range []string{SelectUser, SelectViewUser, SelectInterviewUser, SelectCandidate} {
		if got := countValue(sel[id], user.ID); got != 1 {
			t.Errorf("%s: expected user once, got %d", id, got)
		}
	}
	if got := countValue(sel[SelectRecruiter], user.ID); got != 0 {
		t.Errorf("recruiter-select must not list a candidate, got %d", got)
	}

	if toast := lastToast(t, notifier); toast.Kind != notify.KindSuccess || toast.Message != "Ann Lee added successfully!" {
		t.Errorf("unexpected toast %+v", toast)
	}
}

func TestSelectionOrderAndLabels(t *testing.T) {
	c, backend, _ := newTestController(t)
	r := backend.AddUser("Rita", "rita@example.com", models.RoleRecruiter)
	cand := backend.AddUser("Carl", "carl@example.com", models.RoleCandidate)

	if err := c.LoadAll(context.Background()); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	want := []Option{
		{Value: cand.ID, Label: "Carl (candidate)"},
		{Value: r.ID, Label: "Rita (recruiter)"},
	}
	if got := c.Selections()[SelectInterviewUser]; !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestLoadAllFailureKeepsRoster(t *testing.T) {
	c, backend, notifier := newTestController(t)
	backend.AddUser("Carl", "carl@example.com", models.RoleCandidate)
	if err := c.LoadAll(context.Background()); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	before := c.Users(models.RoleCandidate)

	backend.AddUser("Cora", "cora@example.com", models.RoleCandidate)
	backend.FailWith(http.MethodGet, "/users/", http.StatusInternalServerError, "oops")

	if err := c.LoadAll(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if after := c.Users(models.RoleCandidate); !reflect.DeepEqual(before, after) {
		t.Errorf("roster changed on failure: %+v -> %+v", before, after)
	}
	if toast := lastToast(t, notifier); toast.Message != "Failed to load users. Please try again." {
		t.Errorf("unexpected toast %q", toast.Message)
	}
}

func TestSyncFailureIsSilent(t *testing.T) {
	c, backend, notifier := newTestController(t)
	backend.FailWith(http.MethodGet, "/users/", http.StatusInternalServerError, "oops")

	for i := 0; i < 3; i++ {
		if err := c.Sync(context.Background()); err == nil {
			t.Fatal("expected error")
		}
	}
	if active := notifier.Active(); len(active) != 0 {
		t.Errorf("expected no toasts, got %+v", active)
	}
}

func TestCreateUserFailure(t *testing.T) {
	c, backend, notifier := newTestController(t)
	backend.FailWith(http.MethodPost, "/users/", http.StatusBadRequest, `{"detail":"Email already registered"}`)

	_, err := c.CreateUser(context.Background(), models.CreateUserRequest{
		Name: "Ann", Email: "ann@example.com", Role: models.RoleCandidate,
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if client.StatusCode(err) != http.StatusBadRequest {
		t.Errorf("expected wrapped 400, got %v", err)
	}
	if len(c.Users(models.RoleCandidate)) != 0 {
		t.Error("roster must stay untouched")
	}
	if toast := lastToast(t, notifier); toast.Message != "Failed to create user. Please try again." {
		t.Errorf("unexpected toast %q", toast.Message)
	}
}

func TestCreateUserValidation(t *testing.T) {
	c, backend, _ := newTestController(t)

	_, err := c.CreateUser(context.Background(), models.CreateUserRequest{Name: "  ", Email: "x@example.com", Role: models.RoleCandidate})
	if !models.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if n := backend.Count(http.MethodPost, "/users/"); n != 0 {
		t.Errorf("expected no backend call, got %d", n)
	}
}

func TestRosterAddIgnoresDuplicates(t *testing.T) {
	r := NewRoster()
	u := models.User{ID: 5, Name: "Ann", Role: models.RoleCandidate}
	if !r.Add(u) {
		t.Fatal("expected first add to succeed")
	}
	if r.Add(u) {
		t.Error("expected duplicate add to be ignored")
	}
	if r.Add(models.User{ID: 6, Role: "admin"}) {
		t.Error("expected unknown role to be rejected")
	}
	if got := r.Users(models.RoleCandidate); len(got) != 1 || got[0].Name != "Ann" {
		t.Errorf("unexpected candidates %+v", got)
	}
}

func TestActiveRole(t *testing.T) {
	c, _, _ := newTestController(t)
	if c.ActiveRole() != models.RoleCandidate {
		t.Errorf("expected candidate default, got %q", c.ActiveRole())
	}
	c.SetActiveRole(models.RoleRecruiter)
	c.SetActiveRole("admin")
	if c.ActiveRole() != models.RoleRecruiter {
		t.Errorf("expected recruiter, got %q", c.ActiveRole())
	}
}
