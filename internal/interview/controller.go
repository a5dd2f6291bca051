// Package interview schedules interviews through the backend and keeps the
// interview list of the selected user.
package interview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/terra-clan/interview-console/internal/models"
	"github.com/terra-clan/interview-console/internal/notify"
	"github.com/terra-clan/interview-console/pkg/client"
)

// MinDurationMinutes is the shortest interview that may be requested
const MinDurationMinutes = 15

// ErrBusy is returned when a scheduling request is already in flight
var ErrBusy = errors.New("a scheduling request is already in progress")

const genericScheduleError = "An error occurred while scheduling: There might be a problem with the scheduling algorithm or the data format. Please check the backend logs for more details."

const (
	emptyMessage = "No interviews scheduled"
	errorMessage = "Failed to load interview data"
	unknownName  = "Unknown"
)

// API is the subset of the backend client used for interviews
type API interface {
	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetAvailability(ctx context.Context, userID int64) ([]models.AvailabilitySlot, error)
	Schedule(ctx context.Context, req models.ScheduleRequest) (*models.SchedulingResult, error)
	ScheduleByEmail(ctx context.Context, req models.EmailScheduleRequest) (*models.SchedulingResult, error)
	AutoScheduleByEmail(ctx context.Context, req models.AutoScheduleRequest) (*models.SchedulingResult, error)
	ListInterviews(ctx context.Context, userID int64) ([]models.Interview, error)
	UpdateInterviewStatus(ctx context.Context, interviewID int64, status models.InterviewStatus) (*models.StatusUpdateResponse, error)
}

// Notifier raises user-facing toasts
type Notifier interface {
	Success(msg string) notify.Toast
	Error(msg string) notify.Toast
	Info(msg string) notify.Toast
}

// ViewState describes what the interview view shows
type ViewState string

const (
	ViewIdle   ViewState = "idle"
	ViewEmpty  ViewState = "empty"
	ViewLoaded ViewState = "loaded"
	ViewError  ViewState = "error"
)

// Row is one rendered interview
type Row struct {
	ID          int64
	Candidate   string
	Recruiter   string
	Start       string
	End         string
	Status      models.InterviewStatus
	MeetingLink string
}

// View is the interview table of the selected user
type View struct {
	UserID  int64
	State   ViewState
	Message string
	Rows    []Row
}

// ResultView is the rendered form of the last scheduling result
type ResultView struct {
	InterviewID   int64
	Candidate     string
	Recruiter     string
	Start         string
	End           string
	Score         string
	MeetingLink   string
	ViaEmail      bool
	AutoScheduled bool
}

// Controller handles interview scheduling and display
type Controller struct {
	api      API
	notifier Notifier
	logger   *slog.Logger
	loc      *time.Location

	busy atomic.Bool

	mu   sync.RWMutex
	view View
	last *models.SchedulingResult
}

// NewController creates an interview controller. Timestamps are rendered in loc.
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

// Busy reports whether a ScheduleByID call is in flight
func (c *Controller) Busy() bool {
	return c.busy.Load()
}

// ScheduleByID asks the backend for the optimal slot between a candidate and
// a recruiter. Both must have availability on record.
func (c *Controller) ScheduleByID(ctx context.Context, candidateID, recruiterID int64, durationMinutes int) (*models.SchedulingResult, error) {
	if candidateID == 0 || recruiterID == 0 {
		return nil, c.reject("Please select both a candidate and a recruiter")
	}
	if err := c.checkDuration(durationMinutes); err != nil {
		return nil, err
	}

	if !c.busy.CompareAndSwap(false, true) {
		c.notifier.Info("Finding optimal time... Please wait for the current request to finish.")
		return nil, ErrBusy
	}
	defer c.busy.Store(false)

	result, err := c.scheduleByID(ctx, candidateID, recruiterID, durationMinutes)
	if err != nil {
		c.logger.Error("failed to schedule interview",
			"candidate_id", candidateID,
			"recruiter_id", recruiterID,
			"error", err,
		)
		c.clearResult()
		c.notifier.Error(scheduleFailureMessage(err))
		return nil, err
	}

	if result.CandidateID == 0 {
		result.CandidateID = candidateID
	}
	if result.RecruiterID == 0 {
		result.RecruiterID = recruiterID
	}
	result.Candidate = c.resolveName(ctx, result.Candidate, candidateID)
	result.Recruiter = c.resolveName(ctx, result.Recruiter, recruiterID)
	c.succeed(ctx, result, "Interview scheduled successfully!")
	return result, nil
}

func (c *Controller) scheduleByID(ctx context.Context, candidateID, recruiterID int64, durationMinutes int) (*models.SchedulingResult, error) {
	for _, p := range []struct {
		id   int64
		role models.Role
	}{
		{candidateID, models.RoleCandidate},
		{recruiterID, models.RoleRecruiter},
	} {
		slots, err := c.api.GetAvailability(ctx, p.id)
		if err != nil {
			c.logger.Error("failed to fetch availability", "role", p.role, "user_id", p.id, "error", err)
			return nil, err
		}
		if len(slots) == 0 {
			return nil, models.NewValidationError(fmt.Sprintf("%s has no availability data. Please add availability first.", p.role.Title()))
		}
	}

	result, err := c.api.Schedule(ctx, models.ScheduleRequest{
		CandidateID:     candidateID,
		RecruiterID:     recruiterID,
		DurationMinutes: durationMinutes,
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ScheduleByEmailManual books an interview at an explicit date and time
func (c *Controller) ScheduleByEmailManual(ctx context.Context, req models.EmailScheduleRequest) (*models.SchedulingResult, error) {
	req.CandidateEmail = strings.TrimSpace(req.CandidateEmail)
	req.RecruiterEmail = strings.TrimSpace(req.RecruiterEmail)
	if err := req.Validate(); err != nil {
		return nil, c.reject(err.Error())
	}
	if err := c.checkDuration(req.DurationMinutes); err != nil {
		return nil, err
	}

	result, err := c.api.ScheduleByEmail(ctx, req)
	if err != nil {
		c.logger.Error("failed to schedule interview by email", "candidate", req.CandidateEmail, "error", err)
		c.clearResult()
		c.notifier.Error("Failed to schedule interview: " + err.Error())
		return nil, err
	}

	result.ViaEmail = true
	c.succeed(ctx, result, "Interview scheduled successfully!")
	return result, nil
}

// ScheduleByEmailAuto lets the backend choose the time for two users given by email
func (c *Controller) ScheduleByEmailAuto(ctx context.Context, candidateEmail, recruiterEmail string, durationMinutes int) (*models.SchedulingResult, error) {
	req := models.AutoScheduleRequest{
		CandidateEmail:  strings.TrimSpace(candidateEmail),
		RecruiterEmail:  strings.TrimSpace(recruiterEmail),
		DurationMinutes: durationMinutes,
	}
	if err := req.Validate(); err != nil {
		return nil, c.reject(err.Error())
	}
	if err := c.checkDuration(durationMinutes); err != nil {
		return nil, err
	}

	result, err := c.api.AutoScheduleByEmail(ctx, req)
	if err != nil {
		c.logger.Error("failed to auto-schedule interview", "candidate", req.CandidateEmail, "error", err)
		c.clearResult()
		c.notifier.Error("Failed to auto-schedule interview: " + err.Error())
		return nil, err
	}

	result.ViaEmail = true
	result.AutoScheduled = true
	c.succeed(ctx, result, "Interview automatically scheduled!")
	return result, nil
}

// ListForUser fetches every interview a user takes part in
func (c *Controller) ListForUser(ctx context.Context, userID int64) ([]models.Interview, error) {
	interviews, err := c.api.ListInterviews(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list interviews: %w", err)
	}
	return interviews, nil
}

// UpdateStatus moves an interview to status and reloads the viewed list
func (c *Controller) UpdateStatus(ctx context.Context, interviewID int64, status models.InterviewStatus) error {
	if interviewID == 0 {
		return c.reject("Please select an interview")
	}
	if !status.IsTarget() {
		return c.reject(fmt.Sprintf("Invalid interview status: %s", status))
	}

	if _, err := c.api.UpdateInterviewStatus(ctx, interviewID, status); err != nil {
		c.logger.Error("failed to update interview status", "interview_id", interviewID, "status", status, "error", err)
		c.notifier.Error("Failed to update interview status. Please try again.")
		return fmt.Errorf("failed to update interview status: %w", err)
	}

	c.logger.Info("interview status updated", "interview_id", interviewID, "status", status)
	c.notifier.Success(fmt.Sprintf("Interview status updated to %s", status))
	return c.RefreshSelected(ctx)
}

// SelectViewUser makes userID the viewed user and loads its interviews.
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

// RefreshSelected reloads the interviews of the viewed user, if any
func (c *Controller) RefreshSelected(ctx context.Context) error {
	userID := c.viewedUser()
	if userID == 0 {
		return nil
	}

	interviews, err := c.ListForUser(ctx, userID)
	if err != nil {
		c.logger.Error("failed to load interviews", "user_id", userID, "error", err)
		c.mu.Lock()
		if c.view.UserID == userID {
			c.view = View{UserID: userID, State: ViewError, Message: errorMessage}
		}
		c.mu.Unlock()
		return err
	}

	v := View{UserID: userID, State: ViewEmpty, Message: emptyMessage}
	if len(interviews) > 0 {
		v = View{UserID: userID, State: ViewLoaded, Rows: c.rows(interviews)}
	}

	c.mu.Lock()
	if c.view.UserID == userID {
		c.view = v
	}
	c.mu.Unlock()
	return nil
}

// View returns the current interview view
func (c *Controller) View() View {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v := c.view
	v.Rows = append([]Row(nil), c.view.Rows...)
	return v
}

// LastResult returns the most recent scheduling result, or nil
func (c *Controller) LastResult() *ResultView {
	c.mu.RLock()
	last := c.last
	c.mu.RUnlock()
	if last == nil {
		return nil
	}

	return &ResultView{
		InterviewID:   last.InterviewID,
		Candidate:     orUnknown(last.Candidate),
		Recruiter:     orUnknown(last.Recruiter),
		Start:         models.FormatInterviewTime(last.StartTime, c.loc),
		End:           models.FormatInterviewTime(last.EndTime, c.loc),
		Score:         last.DisplayScore(),
		MeetingLink:   last.MeetingLink,
		ViaEmail:      last.ViaEmail,
		AutoScheduled: last.AutoScheduled,
	}
}

// scheduleFailureMessage shows a failure verbatim only when the backend or a
// precondition says it is about availability. Transport messages carry the
// request URL and are never shown.
func scheduleFailureMessage(err error) string {
	if client.IsTransport(err) {
		return genericScheduleError
	}
	msg := err.Error()
	if !strings.Contains(strings.ToLower(msg), "availability") {
		return genericScheduleError
	}
	return msg
}

// resolveName returns name, or the backend's record of userID when the
// scheduling result left it out
func (c *Controller) resolveName(ctx context.Context, name string, userID int64) string {
	if name != "" || userID == 0 {
		return name
	}
	user, err := c.api.GetUser(ctx, userID)
	if err != nil {
		c.logger.Warn("failed to resolve participant name", "user_id", userID, "error", err)
		return ""
	}
	return user.Name
}

func (c *Controller) clearResult() {
	c.mu.Lock()
	c.last = nil
	c.mu.Unlock()
}

func (c *Controller) succeed(ctx context.Context, result *models.SchedulingResult, msg string) {
	c.mu.Lock()
	c.last = result
	viewed := c.view.UserID
	c.mu.Unlock()

	c.logger.Info("interview scheduled", "interview_id", result.InterviewID, "start", result.StartTime)
	c.notifier.Success(msg)

	if viewed == 0 {
		return
	}
	// email results may not name the participants; refresh in that case too
	unknown := result.CandidateID == 0 && result.RecruiterID == 0
	if unknown || result.CandidateID == viewed || result.RecruiterID == viewed {
		if err := c.RefreshSelected(ctx); err != nil {
			c.logger.Warn("failed to refresh interviews after scheduling", "error", err)
		}
	}
}

func (c *Controller) rows(interviews []models.Interview) []Row {
	rows := make([]Row, 0, len(interviews))
	for _, iv := range interviews {
		rows = append(rows, Row{
			ID:          iv.ID,
			Candidate:   orUnknown(iv.CandidateName),
			Recruiter:   orUnknown(iv.RecruiterName),
			Start:       models.FormatInterviewTime(iv.Start, c.loc),
			End:         models.FormatInterviewTime(iv.End, c.loc),
			Status:      iv.DisplayStatus(),
			MeetingLink: iv.MeetingLink,
		})
	}
	return rows
}

func (c *Controller) viewedUser() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.view.UserID
}

func (c *Controller) checkDuration(minutes int) error {
	if minutes < MinDurationMinutes {
		return c.reject(fmt.Sprintf("Interview duration must be at least %d minutes", MinDurationMinutes))
	}
	return nil
}

func (c *Controller) reject(msg string) error {
	c.notifier.Error(msg)
	return models.NewValidationError(msg)
}

func orUnknown(name string) string {
	if strings.TrimSpace(name) == "" {
		return unknownName
	}
	return name
}
