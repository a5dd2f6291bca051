package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// InterviewStatus represents the lifecycle state of an interview
type InterviewStatus string

const (
	InterviewPending     InterviewStatus = "pending"
	InterviewScheduled   InterviewStatus = "scheduled"
	InterviewCompleted   InterviewStatus = "completed"
	InterviewCancelled   InterviewStatus = "cancelled"
	InterviewRescheduled InterviewStatus = "rescheduled"
)

// StatusTargets are the statuses a caller may move an interview to
var StatusTargets = []InterviewStatus{
	InterviewScheduled,
	InterviewCompleted,
	InterviewCancelled,
	InterviewRescheduled,
}

// IsTarget reports whether s may be sent as a status update
func (s InterviewStatus) IsTarget() bool {
	for _, t := range StatusTargets {
		if s == t {
			return true
		}
	}
	return false
}

// Title returns the status with a leading capital
func (s InterviewStatus) Title() string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

// Interview is a scheduled meeting between a candidate and a recruiter.
// Start and End hold the backend's timestamp strings unchanged.
type Interview struct {
	ID            int64           `json:"id"`
	CandidateID   int64           `json:"candidate_id"`
	RecruiterID   int64           `json:"recruiter_id"`
	CandidateName string          `json:"candidate_name,omitempty"`
	RecruiterName string          `json:"recruiter_name,omitempty"`
	Start         string          `json:"start_time"`
	End           string          `json:"end_time"`
	Status        InterviewStatus `json:"status"`
	MeetingLink   string          `json:"meeting_link,omitempty"`
}

// UnmarshalJSON accepts start/end as well as start_time/end_time, and the
// older location field as the meeting link.
func (i *Interview) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID            int64           `json:"id"`
		CandidateID   int64           `json:"candidate_id"`
		RecruiterID   int64           `json:"recruiter_id"`
		CandidateName string          `json:"candidate_name"`
		RecruiterName string          `json:"recruiter_name"`
		Start         string          `json:"start"`
		StartTime     string          `json:"start_time"`
		End           string          `json:"end"`
		EndTime       string          `json:"end_time"`
		Status        InterviewStatus `json:"status"`
		MeetingLink   string          `json:"meeting_link"`
		Location      string          `json:"location"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*i = Interview{
		ID:            raw.ID,
		CandidateID:   raw.CandidateID,
		RecruiterID:   raw.RecruiterID,
		CandidateName: raw.CandidateName,
		RecruiterName: raw.RecruiterName,
		Start:         firstNonEmpty(raw.StartTime, raw.Start),
		End:           firstNonEmpty(raw.EndTime, raw.End),
		Status:        raw.Status,
		MeetingLink:   firstNonEmpty(raw.MeetingLink, raw.Location),
	}
	return nil
}

// DisplayStatus returns the status, defaulting to pending when unset
func (i Interview) DisplayStatus() InterviewStatus {
	if i.Status == "" {
		return InterviewPending
	}
	return InterviewStatus(strings.ToLower(string(i.Status)))
}

// HasParticipant reports whether userID is the candidate or the recruiter
func (i Interview) HasParticipant(userID int64) bool {
	return i.CandidateID == userID || i.RecruiterID == userID
}

// ScheduleRequest is the body of POST /schedule
type ScheduleRequest struct {
	CandidateID     int64 `json:"candidate_id"`
	RecruiterID     int64 `json:"recruiter_id"`
	DurationMinutes int   `json:"duration_minutes"`
}

// EmailScheduleRequest is the body of POST /schedule_by_email
type EmailScheduleRequest struct {
	CandidateEmail  string `json:"candidate_email"`
	RecruiterEmail  string `json:"recruiter_email"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	DurationMinutes int    `json:"duration_minutes"`
}

// AutoScheduleRequest is the body of POST /auto_schedule_by_email
type AutoScheduleRequest struct {
	CandidateEmail  string `json:"candidate_email"`
	RecruiterEmail  string `json:"recruiter_email"`
	DurationMinutes int    `json:"duration_minutes"`
}

// SchedulingResult is what the backend returns after choosing a slot. It is
// displayed once and never stored beyond the last result.
type SchedulingResult struct {
	InterviewID int64    `json:"interview_id"`
	Candidate   string   `json:"candidate,omitempty"`
	Recruiter   string   `json:"recruiter,omitempty"`
	CandidateID int64    `json:"candidate_id,omitempty"`
	RecruiterID int64    `json:"recruiter_id,omitempty"`
	StartTime   string   `json:"start_time,omitempty"`
	EndTime     string   `json:"end_time,omitempty"`
	Score       *float64 `json:"score,omitempty"`
	MeetingLink string   `json:"meeting_link,omitempty"`

	// set by the console, not the backend
	ViaEmail      bool `json:"-"`
	AutoScheduled bool `json:"-"`
}

// DisplayScore formats the match score with two decimals, or "N/A"
func (r SchedulingResult) DisplayScore() string {
	if r.Score == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", *r.Score)
}

// StatusUpdateResponse is returned by PUT /interviews/{id}
type StatusUpdateResponse struct {
	ID     int64           `json:"id"`
	Status InterviewStatus `json:"status"`
}
