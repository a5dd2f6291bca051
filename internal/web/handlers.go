package web

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/terra-clan/interview-console/internal/interview"
	"github.com/terra-clan/interview-console/internal/models"
)

// Health handlers

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	results, ok := s.Health.CheckAll(r.Context())
	if !ok {
		s.Logger.Warn("readiness check failed", "checks", results)
		s.respondError(w, http.StatusServiceUnavailable, "not_ready", "service not ready")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
		"checks": results,
	})
}

// Page

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if role := models.Role(r.URL.Query().Get("role")); role != "" {
		s.Directory.SetActiveRole(role)
	}

	// users are refetched whenever the page is shown
	if err := s.Directory.Sync(r.Context()); err != nil {
		s.Logger.Debug("page rendered with stale users", "error", err)
	}

	s.render(w, s.pageData())
}

// Users

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	req := models.CreateUserRequest{
		Name:     r.FormValue("name"),
		Email:    r.FormValue("email"),
		Role:     models.Role(r.FormValue("user_type")),
		Priority: models.Priority(r.FormValue("priority")),
	}
	if _, err := s.Directory.CreateUser(r.Context(), req); err == nil {
		s.Directory.SetActiveRole(req.Role)
	}
	backToPage(w, r, "users")
}

func (s *Server) handleReloadUsers(w http.ResponseWriter, r *http.Request) {
	_ = s.Directory.LoadAll(r.Context())
	backToPage(w, r, "users")
}

// Availability

func (s *Server) handleParseAvailability(w http.ResponseWriter, r *http.Request) {
	_, _ = s.Availability.ParseFreeText(r.Context(), formID(r, "user_id"), r.FormValue("text"))
	backToPage(w, r, "availability")
}

func (s *Server) handleManualAvailability(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.Notifier.Error("Invalid form submission")
		backToPage(w, r, "availability")
		return
	}

	starts, ends := r.PostForm["start"], r.PostForm["end"]
	n := max(len(starts), len(ends))
	slots := make([]models.ManualSlot, 0, n)
	for i := 0; i < n; i++ {
		var slot models.ManualSlot
		if i < len(starts) {
			slot.Start = starts[i]
		}
		if i < len(ends) {
			slot.End = ends[i]
		}
		slots = append(slots, slot)
	}

	_ = s.Availability.SaveManualSlots(r.Context(), formID(r, "user_id"), slots)
	backToPage(w, r, "availability")
}

func (s *Server) handleViewAvailability(w http.ResponseWriter, r *http.Request) {
	_ = s.Availability.SelectViewUser(r.Context(), formID(r, "user_id"))
	backToPage(w, r, "availability")
}

// Interviews

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	_, err := s.Interviews.ScheduleByID(r.Context(),
		formID(r, "candidate_id"),
		formID(r, "recruiter_id"),
		formInt(r, "duration", 60),
	)
	if errors.Is(err, interview.ErrBusy) {
		s.Logger.Info("schedule request refused while another is in flight")
	}
	backToPage(w, r, "schedule")
}

func (s *Server) handleScheduleByEmail(w http.ResponseWriter, r *http.Request) {
	duration := formInt(r, "duration", 60)

	switch r.FormValue("mode") {
	case "auto":
		_, _ = s.Interviews.ScheduleByEmailAuto(r.Context(),
			r.FormValue("candidate_email"),
			r.FormValue("recruiter_email"),
			duration,
		)
	default:
		_, _ = s.Interviews.ScheduleByEmailManual(r.Context(), models.EmailScheduleRequest{
			CandidateEmail:  r.FormValue("candidate_email"),
			RecruiterEmail:  r.FormValue("recruiter_email"),
			Date:            r.FormValue("date"),
			Time:            r.FormValue("time"),
			DurationMinutes: duration,
		})
	}
	backToPage(w, r, "schedule")
}

func (s *Server) handleViewInterviews(w http.ResponseWriter, r *http.Request) {
	_ = s.Interviews.SelectViewUser(r.Context(), formID(r, "user_id"))
	backToPage(w, r, "interviews")
}

func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		id = 0
	}
	_ = s.Interviews.UpdateStatus(r.Context(), id, models.InterviewStatus(r.FormValue("status")))
	backToPage(w, r, "interviews")
}

// Demo

func (s *Server) handleDemoInit(w http.ResponseWriter, r *http.Request) {
	_, _ = s.Seeder.Seed(r.Context())
	backToPage(w, r, "demo")
}

// Notifications

func (s *Server) handleDismiss(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	found := s.Notifier.Dismiss(id)

	if wantsJSON(r) {
		if !found {
			s.respondError(w, http.StatusNotFound, "not_found", "notification not found")
			return
		}
		s.respondJSON(w, http.StatusOK, map[string]string{"id": id})
		return
	}
	backToPage(w, r, "")
}
