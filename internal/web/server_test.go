package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/terra-clan/interview-console/internal/availability"
	"github.com/terra-clan/interview-console/internal/backendtest"
	"github.com/terra-clan/interview-console/internal/demo"
	"github.com/terra-clan/interview-console/internal/directory"
	"github.com/terra-clan/interview-console/internal/health"
	"github.com/terra-clan/interview-console/internal/interview"
	"github.com/terra-clan/interview-console/internal/models"
	"github.com/terra-clan/interview-console/internal/notify"
	"github.com/terra-clan/interview-console/pkg/client"
)

type testEnv struct {
	backend  *backendtest.Backend
	notifier *notify.Notifier
	health   *health.Registry
	server   *Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	backend := backendtest.New(t)
	api := client.New(backend.URL(), client.WithLogger(logger))
	notifier := notify.NewNotifier(notify.Config{}, logger)

	dir := directory.NewController(api, directory.NewRoster(), notifier, logger)
	avail := availability.NewController(api, notifier, logger, time.UTC)
	interviews := interview.NewController(api, notifier, logger, time.UTC)
	registry := health.NewRegistry(time.Second)
	registry.Register("backend", health.CheckerFunc(api.Ping))

	srv := NewServer(Deps{
		Directory:    dir,
		Availability: avail,
		Interviews:   interviews,
		Seeder:       demo.NewSeeder(api, dir, notifier, logger, avail, interviews),
		Notifier:     notifier,
		Hub:          notify.NewHub(notifier),
		Health:       registry,
		BackendURL:   backend.URL(),
		Metrics:      true,
		Logger:       logger,
	})
	return &testEnv{backend: backend, notifier: notifier, health: registry, server: srv}
}

func (e *testEnv) post(t *testing.T, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	e.server.Router().ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	e.server.Router().ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) lastToast() string {
	active := e.notifier.Active()
	if len(active) == 0 {
		return ""
	}
	return active[len(active)-1].Message
}

func TestIndexRendersPage(t *testing.T) {
	env := newTestEnv(t)
	env.backend.AddUser("Carl <Candidate>", "carl@example.com", models.RoleCandidate)
	env.backend.AddUser("Rita", "rita@example.com", models.RoleRecruiter)

	rec := env.get(t, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`id="candidate-select"`,
		`id="recruiter-select"`,
		`id="user-select"`,
		`id="view-user-select"`,
		`id="interview-user-select"`,
		"Carl &lt;Candidate&gt; (candidate)",
		"Rita (recruiter)",
		"Find Optimal Time",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if strings.Contains(body, "Carl <Candidate>") {
		t.Error("user names must be escaped")
	}
}

func TestIndexSwitchesRoleTab(t *testing.T) {
	env := newTestEnv(t)
	env.backend.AddUser("Rita", "rita@example.com", models.RoleRecruiter)

	rec := env.get(t, "/?role=recruiter")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if env.server.Directory.ActiveRole() != models.RoleRecruiter {
		t.Errorf("expected recruiter tab, got %q", env.server.Directory.ActiveRole())
	}
	if !strings.Contains(rec.Body.String(), "rita@example.com") {
		t.Error("expected recruiter listed")
	}
}

func TestCreateUserRedirects(t *testing.T) {
	env := newTestEnv(t)

	rec := env.post(t, "/users", url.Values{
		"name":      {"Rita"},
		"email":     {"rita@example.com"},
		"user_type": {"recruiter"},
		"priority":  {"high"},
	})
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/#users" {
		t.Fatalf("expected redirect to users, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
	if env.lastToast() != "Rita added successfully!" {
		t.Errorf("unexpected toast %q", env.lastToast())
	}
	if users := env.server.Directory.Users(models.RoleRecruiter); len(users) != 1 || users[0].Priority != models.PriorityHigh {
		t.Errorf("unexpected recruiters %+v", users)
	}
}

func TestManualAvailabilityForm(t *testing.T) {
	env := newTestEnv(t)
	user := env.backend.AddUser("Carl", "carl@example.com", models.RoleCandidate)
	id := strconv.FormatInt(user.ID, 10)

	rec := env.post(t, "/availability/manual", url.Values{
		"user_id": {id},
		"start":   {"2025-03-17T09:00", "2025-03-17T14:00"},
		"end":     {"2025-03-17T10:00", "2025-03-17T13:00"},
	})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}
	if n := env.backend.Count(http.MethodPost, "/availability/manual"); n != 0 {
		t.Errorf("reversed slot must block the batch, got %d requests", n)
	}
	if env.lastToast() != "End time must be after start time" {
		t.Errorf("unexpected toast %q", env.lastToast())
	}

	env.post(t, "/availability/view", url.Values{"user_id": {id}})
	env.post(t, "/availability/manual", url.Values{
		"user_id": {id},
		"start":   {"2025-03-17T09:00"},
		"end":     {"2025-03-17T10:00"},
	})
	if env.lastToast() != "Availability saved! Added 1 time slots." {
		t.Errorf("unexpected toast %q", env.lastToast())
	}

	body := env.get(t, "/").Body.String()
	if !strings.Contains(body, "Mar 17, 2025, 9:00 AM") {
		t.Error("expected saved slot rendered on page")
	}
}

func TestScheduleWithoutAvailability(t *testing.T) {
	env := newTestEnv(t)
	cand := env.backend.AddUser("Carl", "carl@example.com", models.RoleCandidate)
	rec := env.backend.AddUser("Rita", "rita@example.com", models.RoleRecruiter)

	resp := env.post(t, "/interviews/schedule", url.Values{
		"candidate_id": {strconv.FormatInt(cand.ID, 10)},
		"recruiter_id": {strconv.FormatInt(rec.ID, 10)},
		"duration":     {"60"},
	})
	if resp.Header().Get("Location") != "/#schedule" {
		t.Errorf("unexpected redirect %q", resp.Header().Get("Location"))
	}
	if !strings.Contains(env.lastToast(), "availability") {
		t.Errorf("expected availability message, got %q", env.lastToast())
	}
	if n := env.backend.Count(http.MethodPost, "/schedule"); n != 0 {
		t.Errorf("expected no /schedule call, got %d", n)
	}
}

func TestUpdateStatusForm(t *testing.T) {
	env := newTestEnv(t)
	iv := env.backend.AddInterview(models.Interview{CandidateID: 4, RecruiterID: 5, Status: models.InterviewScheduled})

	env.post(t, "/interviews/view", url.Values{"user_id": {"4"}})
	env.post(t, "/interviews/"+strconv.FormatInt(iv.ID, 10)+"/status", url.Values{"status": {"cancelled"}})

	if env.lastToast() != "Interview status updated to cancelled" {
		t.Errorf("unexpected toast %q", env.lastToast())
	}
	v := env.server.Interviews.View()
	if len(v.Rows) != 1 || v.Rows[0].Status != models.InterviewCancelled {
		t.Errorf("unexpected view %+v", v)
	}
}

func TestDemoInit(t *testing.T) {
	env := newTestEnv(t)

	env.post(t, "/demo/init", nil)
	body := env.get(t, "/").Body.String()
	if !strings.Contains(body, "Demo data initialized! Created 3 users and 3 availability slots.") {
		t.Error("expected demo status on page")
	}
	if !strings.Contains(body, "Emily Johnson (candidate)") {
		t.Error("expected seeded users in selections")
	}
}

func TestDismissNotification(t *testing.T) {
	env := newTestEnv(t)
	toast := env.notifier.Success("hello")

	req := httptest.NewRequest(http.MethodPost, "/notifications/"+toast.ID+"/dismiss", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	env.server.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(env.notifier.Active()) != 0 {
		t.Error("expected toast dismissed")
	}

	rec = httptest.NewRecorder()
	env.server.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown toast, got %d", rec.Code)
	}
}

func TestPanicBoundary(t *testing.T) {
	env := newTestEnv(t)
	r := chi.NewRouter()
	r.Use(env.server.recoverMiddleware)
	r.Post("/boom", func(w http.ResponseWriter, r *http.Request) {
		panic("feature exploded")
	})

	req := httptest.NewRequest(http.MethodPost, "/boom", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected redirect, got %d", rec.Code)
	}
	if env.lastToast() != unexpectedError {
		t.Errorf("unexpected toast %q", env.lastToast())
	}

	// the rest of the console keeps working
	if code := env.get(t, "/health").Code; code != http.StatusOK {
		t.Errorf("expected health 200, got %d", code)
	}
}

func TestReady(t *testing.T) {
	env := newTestEnv(t)

	rec := env.get(t, "/ready")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected ready, got %d", rec.Code)
	}
	var resp struct {
		Success bool `json:"success"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || !resp.Success {
		t.Errorf("unexpected body %s", rec.Body.String())
	}

	env.health.Register("redis", health.CheckerFunc(func(ctx context.Context) error {
		return errors.New("connection refused")
	}))
	if rec := env.get(t, "/ready"); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.get(t, "/health")

	rec := env.get(t, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `interview_console_http_requests_total{method="GET",route="/health",status="200"}`) {
		t.Error("expected health request counted")
	}
}

func TestIndexDoesNotStackLoadFailures(t *testing.T) {
	env := newTestEnv(t)
	env.backend.FailWith(http.MethodGet, "/users/", http.StatusInternalServerError, "oops")

	for i := 0; i < 3; i++ {
		if rec := env.get(t, "/"); rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	}
	if active := env.notifier.Active(); len(active) != 0 {
		t.Errorf("page views must not raise toasts, got %+v", active)
	}

	env.post(t, "/users/reload", nil)
	if env.lastToast() != "Failed to load users. Please try again." {
		t.Errorf("explicit reload must report failure, got %q", env.lastToast())
	}
}
