package models

import "encoding/json"

// AvailabilitySlot is a half-open interval [Start, End) a user declared as free.
// Start and End hold the backend's timestamp strings unchanged; they are parsed
// only for display (see FormatSlotTime).
type AvailabilitySlot struct {
	ID          int64  `json:"id,omitempty"`
	UserID      int64  `json:"user_id,omitempty"`
	Start       string `json:"start"`
	End         string `json:"end"`
	Description string `json:"description,omitempty"`
}

// UnmarshalJSON accepts both field conventions the backend uses for slots:
// start/end or start_time/end_time, and description or source_text.
func (s *AvailabilitySlot) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID          int64  `json:"id"`
		UserID      int64  `json:"user_id"`
		Start       string `json:"start"`
		StartTime   string `json:"start_time"`
		End         string `json:"end"`
		EndTime     string `json:"end_time"`
		Description string `json:"description"`
		SourceText  string `json:"source_text"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*s = AvailabilitySlot{
		ID:          raw.ID,
		UserID:      raw.UserID,
		Start:       firstNonEmpty(raw.StartTime, raw.Start),
		End:         firstNonEmpty(raw.EndTime, raw.End),
		Description: firstNonEmpty(raw.Description, raw.SourceText),
	}
	return nil
}

// DisplayDescription returns the description or "N/A"
func (s AvailabilitySlot) DisplayDescription() string {
	if s.Description == "" {
		return "N/A"
	}
	return s.Description
}

// ManualSlot is one row of the manual availability form, as raw local-time
// strings in datetime-local shape (YYYY-MM-DDTHH:MM).
type ManualSlot struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Validate checks that both endpoints are set, parse, and Start < End
func (m ManualSlot) Validate() error {
	if m.Start == "" || m.End == "" {
		return NewValidationError("Please fill in all date and time fields")
	}
	start, ok := ParseTimestamp(m.Start)
	if !ok {
		return NewValidationError("Invalid start time: " + m.Start)
	}
	end, ok := ParseTimestamp(m.End)
	if !ok {
		return NewValidationError("Invalid end time: " + m.End)
	}
	if !start.Before(end) {
		return NewValidationError("End time must be after start time")
	}
	return nil
}

// ParseAvailabilityRequest is the body of POST /availability/parse
type ParseAvailabilityRequest struct {
	UserID int64  `json:"user_id"`
	Text   string `json:"text"`
}

// ManualAvailabilityRequest is the body of POST /availability/manual
type ManualAvailabilityRequest struct {
	UserID int64        `json:"user_id"`
	Slots  []ManualSlot `json:"slots"`
}

// ManualAvailabilityResponse is returned by POST /availability/manual
type ManualAvailabilityResponse struct {
	UserID     int64   `json:"user_id"`
	AddedSlots []int64 `json:"added_slots"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
