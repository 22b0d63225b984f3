package assistant

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/civil"
)

// Intent is what the user wants done with the extracted slot.
type Intent string

const (
	IntentCheck   Intent = "check"
	IntentBook    Intent = "book"
	IntentUnknown Intent = "unknown"
)

// Tristate is a boolean outcome that can also be undetermined.
// The zero value is Unknown.
type Tristate int8

const (
	Unknown Tristate = iota
	Yes
	No
)

// FromBool converts a definite answer into a Tristate.
func FromBool(b bool) Tristate {
	if b {
		return Yes
	}
	return No
}

// Known reports whether the outcome was determined.
func (t Tristate) Known() bool {
	return t == Yes || t == No
}

// String returns "yes", "no" or "unknown".
func (t Tristate) String() string {
	switch t {
	case Yes:
		return "yes"
	case No:
		return "no"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes Yes/No as booleans and Unknown as null.
func (t Tristate) MarshalJSON() ([]byte, error) {
	switch t {
	case Yes:
		return []byte("true"), nil
	case No:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (t *Tristate) UnmarshalJSON(data []byte) error {
	var b *bool
	if err := json.Unmarshal(data, &b); err != nil {
		return fmt.Errorf("invalid tristate %s: %w", data, err)
	}
	if b == nil {
		*t = Unknown
	} else {
		*t = FromBool(*b)
	}
	return nil
}

// HourRange is a half-open interval of whole hours [Start, End) on the
// 24-hour clock of the reference time zone.
type HourRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// String renders the range the way it is shown to users, e.g. "13-17".
func (h HourRange) String() string {
	return fmt.Sprintf("%d-%d", h.Start, h.End)
}

// Valid reports whether the range is ordered and inside one day.
// Extraction does not enforce this; see ExtractHours.
func (h HourRange) Valid() bool {
	return h.Start >= 0 && h.End <= 24 && h.Start < h.End
}

// State is the record threaded through one pipeline run. It is created
// fresh for every utterance and discarded once the response is produced.
type State struct {
	RequestID string      `json:"request_id"`
	Input     string      `json:"input"`
	Intent    Intent      `json:"intent"`
	Date      *civil.Date `json:"date,omitempty"`
	Hours     *HourRange  `json:"hours,omitempty"`
	Available Tristate    `json:"available"`
	Booked    Tristate    `json:"booked"`
	Response  string      `json:"response"`
}

// Calendar is the collaborator that owns the free/busy record.
//
// CheckFree reports whether no reservation overlaps [startHour, endHour) on
// date. Reserve creates a reservation and reports whether it was created.
// Reserve is not atomic with a prior CheckFree.
type Calendar interface {
	CheckFree(ctx context.Context, date civil.Date, startHour, endHour int) (bool, error)
	Reserve(ctx context.Context, date civil.Date, startHour, endHour int, title string) (bool, error)
}
