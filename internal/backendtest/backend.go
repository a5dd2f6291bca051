// Package backendtest provides an in-memory fake of the scheduling backend
// that records every request it receives.
package backendtest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/terra-clan/interview-console/internal/models"
)

// Recorded is one request seen by the fake backend
type Recorded struct {
	Method string
	Path   string
	Query  string
	Body   []byte
}

type failure struct {
	status int
	body   string
}

// Backend is a fake scheduling backend served over httptest
type Backend struct {
	Server *httptest.Server

	mu         sync.Mutex
	nextID     int64
	users      []models.User
	slots      map[int64][]models.AvailabilitySlot
	interviews []models.Interview
	requests   []Recorded
	failures   map[string]failure
}

// New starts a fake backend that is closed when the test ends
func New(t testing.TB) *Backend {
	t.Helper()

	b := &Backend{
		nextID:   1,
		slots:    make(map[int64][]models.AvailabilitySlot),
		failures: make(map[string]failure),
	}
	b.Server = httptest.NewServer(b.router())
	t.Cleanup(b.Server.Close)
	return b
}

// URL returns the base URL of the fake backend
func (b *Backend) URL() string {
	return b.Server.URL
}

// AddUser stores a user and returns it with its assigned ID
func (b *Backend) AddUser(name, email string, role models.Role) models.User {
	b.mu.Lock()
	defer b.mu.Unlock()
	u := models.User{ID: b.nextID, Name: name, Email: email, Role: role, Priority: models.PriorityMedium}
	b.nextID++
	b.users = append(b.users, u)
	return u
}

// SetSlots replaces the stored availability of a user
func (b *Backend) SetSlots(userID int64, slots ...models.AvailabilitySlot) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.slots[userID] = slots
}

// AddInterview stores an interview and returns it with its assigned ID
func (b *Backend) AddInterview(iv models.Interview) models.Interview {
	b.mu.Lock()
	defer b.mu.Unlock()
	iv.ID = b.nextID
	b.nextID++
	b.interviews = append(b.interviews, iv)
	return iv
}

// FailWith makes every request matching method and path answer with status and body
func (b *Backend) FailWith(method, path string, status int, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[method+" "+path] = failure{status: status, body: body}
}

// Requests returns a copy of every recorded request
func (b *Backend) Requests() []Recorded {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Recorded, len(b.requests))
	copy(out, b.requests)
	return out
}

// Count returns how many requests matched method and path
func (b *Backend) Count(method, path string) int {
	n := 0
	for _, r := range b.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

// Reset forgets recorded requests
func (b *Backend) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = nil
}

func (b *Backend) router() http.Handler {
	r := chi.NewRouter()
	r.Use(b.record)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "active"})
	})

	r.Get("/users/", b.handleListUsers)
	r.Post("/users/", b.handleCreateUser)
	r.Get("/users/{id}", b.handleGetUser)

	r.Get("/availability/{id}", b.handleGetAvailability)
	r.Post("/availability/parse", b.handleParseAvailability)
	r.Post("/availability/manual", b.handleManualAvailability)

	r.Post("/schedule", b.handleSchedule)
	r.Post("/schedule_by_email", b.handleScheduleByEmail)
	r.Post("/auto_schedule_by_email", b.handleScheduleByEmail)

	r.Get("/interviews/{id}", b.handleListInterviews)
	r.Put("/interviews/{id}", b.handleUpdateStatus)

	r.Post("/demo/init", b.handleDemoInit)
	return r
}

func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			body, _ = io.ReadAll(r.Body)
			_ = r.Body.Close()
		}

		b.mu.Lock()
		b.requests = append(b.requests, Recorded{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Body:   body,
		})
		f, failing := b.failures[r.Method+" "+r.URL.Path]
		b.mu.Unlock()

		if failing {
			w.WriteHeader(f.status)
			_, _ = w.Write([]byte(f.body))
			return
		}

		r.Body = io.NopCloser(bytes.NewReader(body))
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) handleListUsers(w http.ResponseWriter, r *http.Request) {
	role := models.Role(r.URL.Query().Get("user_type"))
	b.mu.Lock()
	out := []models.User{}
	for _, u := range b.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if err := decodeBody(r, &req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}
	b.mu.Lock()
	u := models.User{ID: b.nextID, Name: req.Name, Email: req.Email, Role: req.Role, Priority: req.Priority}
	b.nextID++
	b.users = append(b.users, u)
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, u)
}

func (b *Backend) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if u, ok := b.findUser(id); ok {
		writeJSON(w, http.StatusOK, u)
		return
	}
	writeDetail(w, http.StatusNotFound, "User not found")
}

func (b *Backend) handleGetAvailability(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	b.mu.Lock()
	out := make([]map[string]any, 0, len(b.slots[id]))
	for _, s := range b.slots[id] {
		out = append(out, map[string]any{
			"id":          s.ID,
			"user_id":     id,
			"start_time":  s.Start,
			"end_time":    s.End,
			"source_text": s.Description,
		})
	}
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) handleParseAvailability(w http.ResponseWriter, r *http.Request) {
	var req models.ParseAvailabilityRequest
	if err := decodeBody(r, &req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}
	day := time.Date(2025, 3, 17, 0, 0, 0, 0, time.UTC)
	parsed := []models.AvailabilitySlot{
		{Start: day.Add(9 * time.Hour).Format("2006-01-02T15:04"), End: day.Add(12 * time.Hour).Format("2006-01-02T15:04"), Description: req.Text},
		{Start: day.Add(14 * time.Hour).Format("2006-01-02T15:04"), End: day.Add(17 * time.Hour).Format("2006-01-02T15:04"), Description: req.Text},
	}
	b.SetSlots(req.UserID, parsed...)

	out := make([]map[string]string, 0, len(parsed))
	for _, s := range parsed {
		out = append(out, map[string]string{"start": s.Start, "end": s.End})
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) handleManualAvailability(w http.ResponseWriter, r *http.Request) {
	var req models.ManualAvailabilityRequest
	if err := decodeBody(r, &req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}
	b.mu.Lock()
	slots := make([]models.AvailabilitySlot, 0, len(req.Slots))
	ids := make([]int64, 0, len(req.Slots))
	for _, s := range req.Slots {
		slots = append(slots, models.AvailabilitySlot{ID: b.nextID, Start: s.Start, End: s.End, Description: "Manually added"})
		ids = append(ids, b.nextID)
		b.nextID++
	}
	b.slots[req.UserID] = slots
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, models.ManualAvailabilityResponse{UserID: req.UserID, AddedSlots: ids})
}

func (b *Backend) handleSchedule(w http.ResponseWriter, r *http.Request) {
	var req models.ScheduleRequest
	if err := decodeBody(r, &req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}
	candidate, ok1 := b.findUser(req.CandidateID)
	recruiter, ok2 := b.findUser(req.RecruiterID)
	if !ok1 || !ok2 {
		writeDetail(w, http.StatusNotFound, "Candidate or recruiter not found")
		return
	}

	b.mu.Lock()
	slots := b.slots[req.CandidateID]
	b.mu.Unlock()
	if len(slots) == 0 {
		writeDetail(w, http.StatusBadRequest, "Missing availability data")
		return
	}

	start, _ := models.ParseTimestampIn(slots[0].Start, time.UTC)
	end := start.Add(time.Duration(req.DurationMinutes) * time.Minute)
	iv := b.AddInterview(models.Interview{
		CandidateID:   candidate.ID,
		RecruiterID:   recruiter.ID,
		CandidateName: candidate.Name,
		RecruiterName: recruiter.Name,
		Start:         start.Format("2006-01-02T15:04:05"),
		End:           end.Format("2006-01-02T15:04:05"),
		Status:        models.InterviewScheduled,
	})

	score := 0.92
	writeJSON(w, http.StatusOK, models.SchedulingResult{
		InterviewID: iv.ID,
		Candidate:   candidate.Name,
		Recruiter:   recruiter.Name,
		CandidateID: candidate.ID,
		RecruiterID: recruiter.ID,
		StartTime:   iv.Start,
		EndTime:     iv.End,
		Score:       &score,
		MeetingLink: fmt.Sprintf("https://meet.example.com/%06d", iv.ID),
	})
}

func (b *Backend) handleScheduleByEmail(w http.ResponseWriter, r *http.Request) {
	var req models.EmailScheduleRequest
	if err := decodeBody(r, &req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}
	start := "2025-03-17T10:00:00"
	if req.Date != "" && req.Time != "" {
		start = req.Date + "T" + req.Time + ":00"
	}
	iv := b.AddInterview(models.Interview{Start: start, Status: models.InterviewScheduled})
	writeJSON(w, http.StatusOK, models.SchedulingResult{InterviewID: iv.ID, StartTime: start})
}

func (b *Backend) handleListInterviews(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	b.mu.Lock()
	out := []models.Interview{}
	for _, iv := range b.interviews {
		if iv.HasParticipant(id) {
			out = append(out, iv)
		}
	}
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	status := models.InterviewStatus(r.URL.Query().Get("status"))
	if !status.IsTarget() {
		writeDetail(w, http.StatusBadRequest, "Invalid status")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.interviews {
		if b.interviews[i].ID == id {
			b.interviews[i].Status = status
			writeJSON(w, http.StatusOK, models.StatusUpdateResponse{ID: id, Status: status})
			return
		}
	}
	writeDetail(w, http.StatusNotFound, "Interview not found")
}

func (b *Backend) handleDemoInit(w http.ResponseWriter, r *http.Request) {
	c1 := b.AddUser("John Smith", "john@example.com", models.RoleCandidate)
	c2 := b.AddUser("Emily Johnson", "emily@example.com", models.RoleCandidate)
	r1 := b.AddUser("Michael Brown", "michael@company.com", models.RoleRecruiter)
	b.SetSlots(c1.ID, models.AvailabilitySlot{Start: "2025-03-17 10:00:00", End: "2025-03-17 12:00:00"})
	b.SetSlots(c2.ID, models.AvailabilitySlot{Start: "2025-03-17 13:00:00", End: "2025-03-17 16:00:00"})
	b.SetSlots(r1.ID, models.AvailabilitySlot{Start: "2025-03-17 09:00:00", End: "2025-03-17 17:00:00"})
	writeJSON(w, http.StatusOK, map[string]any{
		"users":          []models.User{c1, c2, r1},
		"availabilities": []int{1, 2, 3},
	})
}

func (b *Backend) findUser(id int64) (models.User, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, u := range b.users {
		if u.ID == id {
			return u, true
		}
	}
	return models.User{}, false
}

func decodeBody(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
