package domain

import (
	"time"
)

type EventType string

const (
	EventSessionStarted  EventType = "session_started"
	EventCheckStarted    EventType = "check_started"
	EventCheckFinished   EventType = "check_finished"
	EventHUBFallback     EventType = "hub_fallback"
	EventCheckCarried    EventType = "check_carried_over"
	EventSessionFinished EventType = "session_finished"
)

// SessionEvent is one step of the progress narration of a session.
type SessionEvent struct {
	SessionID string        `json:"session_id"`
	Type      EventType     `json:"type"`
	Vendor    *VendorRecord `json:"vendor,omitempty"`
	Kind      CheckKind     `json:"kind,omitempty"`
	Attempt   int           `json:"attempt,omitempty"`
	Outcome   Outcome       `json:"outcome,omitempty"`
	Message   string        `json:"message,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}
