package audit

import (
	"fmt"
	"time"
)

// ActionIntrusionDetected is the action recorded for intrusion events.
const ActionIntrusionDetected = "intrusion.detected"

// Event is a single audit record.
type Event struct {
	ID        string         `json:"id"`
	Action    string         `json:"action"`
	Context   string         `json:"context"`
	Rule      string         `json:"rule,omitempty"`
	Kind      string         `json:"kind,omitempty"`
	Pattern   string         `json:"pattern"`
	Codecs    []string       `json:"codecs,omitempty"`
	Reason    string         `json:"reason,omitempty"`
	InputHash string         `json:"input_hash,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
	IP        string         `json:"ip,omitempty"`
	UserAgent string         `json:"user_agent,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Validate checks required fields.
func (e *Event) Validate() error {
	if e.Action == "" {
		return fmt.Errorf("%w: action is required", ErrEventValidation)
	}
	if e.Context == "" {
		return fmt.Errorf("%w: context is required", ErrEventValidation)
	}
	return nil
}

// Intrusion describes a detected intrusion as reported by the validator.
// Input is the offending raw value; it is hashed, never stored.
type Intrusion struct {
	Context string
	Rule    string
	Kind    string
	Pattern string
	Codecs  []string
	Reason  string
	Input   string
}

// EventOption adjusts an Event before it is stored.
type EventOption func(*Event)

// WithMetadata attaches a metadata key/value pair.
func WithMetadata(key string, value any) EventOption {
	return func(e *Event) {
		if e.Metadata == nil {
			e.Metadata = make(map[string]any)
		}
		e.Metadata[key] = value
	}
}
