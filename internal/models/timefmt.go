package models

import (
	"strings"
	"time"
)

// Placeholders shown in place of a timestamp that could not be parsed
const (
	InvalidDateFormat = "Invalid Date Format"
	InvalidDate       = "Invalid Date"
)

// DisplayLayout is the locale-style layout used for every rendered timestamp
const DisplayLayout = "Jan 2, 2006, 3:04 PM"

// structured layouts for the YYYY-MM-DDTHH:MM shape, tried first
var structuredLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// generic layouts tried when the structured parse fails
var genericLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999",
	time.RFC1123Z,
	time.RFC1123,
	"2006-01-02",
}

// ParseTimestamp parses a backend or form timestamp. Zone-less values are
// read as local wall-clock time in time.Local.
func ParseTimestamp(value string) (time.Time, bool) {
	return ParseTimestampIn(value, time.Local)
}

// ParseTimestampIn is ParseTimestamp with an explicit location for zone-less values
func ParseTimestampIn(value string, loc *time.Location) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}

	for _, layout := range structuredLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, true
		}
	}
	for _, layout := range genericLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatSlotTime renders an availability timestamp, or InvalidDateFormat
func FormatSlotTime(value string, loc *time.Location) string {
	t, ok := ParseTimestampIn(value, loc)
	if !ok {
		return InvalidDateFormat
	}
	return formatIn(t, loc)
}

// FormatInterviewTime renders an interview timestamp, or InvalidDate
func FormatInterviewTime(value string, loc *time.Location) string {
	t, ok := ParseTimestampIn(value, loc)
	if !ok {
		return InvalidDate
	}
	return formatIn(t, loc)
}

func formatIn(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(DisplayLayout)
}
