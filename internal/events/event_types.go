package events

import (
	"time"

	"github.com/spec-kit/enrollment-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTurnProcessed    EventType = "turn_processed"
	EventTicketGenerated  EventType = "ticket_generated"
	EventSessionCompleted EventType = "session_completed"
)

// Event represents a domain event emitted after a turn has been persisted.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SessionID string      `json:"session_id"`
	UserID    string      `json:"user_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TurnProcessedPayload carries the session as it was before and after the turn.
type TurnProcessedPayload struct {
	FromStep domain.Step     `json:"from_step"`
	ToStep   domain.Step     `json:"to_step"`
	Before   *domain.Session `json:"-"`
	After    *domain.Session `json:"-"`
}

// TicketGeneratedPayload payload.
type TicketGeneratedPayload struct {
	TicketID         string                  `json:"ticket_id"`
	Subject          string                  `json:"subject"`
	RequesterEmail   string                  `json:"requester_email,omitempty"`
	EmploymentStatus domain.EmploymentStatus `json:"employment_status"`
}

// SessionCompletedPayload payload.
type SessionCompletedPayload struct {
	TicketGenerated bool   `json:"ticket_generated"`
	TicketID        string `json:"ticket_id,omitempty"`
}
