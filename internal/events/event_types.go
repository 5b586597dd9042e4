package events

import (
	"time"

	"github.com/smartcommunity/portal/internal/domain"
)

// EventType enumerates supported event identifiers. Values double as NATS
// subject suffixes.
type EventType string

const (
	EventVisitorIssued    EventType = "visitor.issued"
	EventVisitorCheckedIn EventType = "visitor.checked_in"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	UserID string      `json:"user_id"`
	Role   domain.Role `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	VisitorID string      `json:"visitor_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// VisitorIssuedPayload payload.
type VisitorIssuedPayload struct {
	ResidentID   string `json:"resident_id"`
	VisitorName  string `json:"visitor_name"`
	Purpose      string `json:"purpose"`
	ExpectedDate string `json:"expected_date"`
}

// VisitorCheckedInPayload payload.
type VisitorCheckedInPayload struct {
	ResidentID  string    `json:"resident_id"`
	VisitorName string    `json:"visitor_name"`
	EntryTime   time.Time `json:"entry_time"`
	VerifiedBy  string    `json:"verified_by"`
	// Method is "scan" for token verification or "roster" for check-in by id.
	Method string `json:"method"`
}
