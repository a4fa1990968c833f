package dto

import (
	"time"

	"github.com/spec-kit/enrollment-service/internal/domain"
)

// ChatRequest payload. SessionID and UserID are optional on the first turn. Clients that may
// resend a message should set TurnID: a resent role answer without one is taken as the
// answer to the next question.
type ChatRequest struct {
	Message      string      `json:"message"`
	SessionID    string      `json:"session_id"`
	UserID       string      `json:"user_id"`
	TurnID       string      `json:"turn_id"`
	ExpectedStep domain.Step `json:"expected_step"`
}

// ChatResponse response.
type ChatResponse struct {
	Message       string            `json:"message"`
	SessionID     string            `json:"session_id"`
	IsComplete    bool              `json:"is_complete"`
	NextStep      domain.Step       `json:"next_step"`
	CollectedData map[string]string `json:"collected_data"`
	Stale         bool              `json:"stale,omitempty"`
	Replayed      bool              `json:"replayed,omitempty"`
}

// SessionResponse is the externally visible session snapshot.
type SessionResponse struct {
	SessionID         string                      `json:"session_id"`
	UserID            string                      `json:"user_id"`
	CurrentStep       domain.Step                 `json:"current_step"`
	CollectedData     map[string]string           `json:"collected_data"`
	Flags             domain.Flags                `json:"flags"`
	RoleClarification map[domain.RoleField]string `json:"role_clarification"`
	IsComplete        bool                        `json:"is_complete"`
	TicketGenerated   bool                        `json:"ticket_generated"`
	TicketID          string                      `json:"ticket_id,omitempty"`
	Messages          []domain.Message            `json:"messages"`
	CreatedAt         time.Time                   `json:"created_at"`
	UpdatedAt         time.Time                   `json:"updated_at"`
}

// TicketResponse response.
type TicketResponse struct {
	TicketID       string                `json:"ticket_id"`
	SessionID      string                `json:"session_id"`
	Subject        string                `json:"subject"`
	Description    string                `json:"description"`
	Category       string                `json:"category"`
	Assignee       string                `json:"assignee"`
	Priority       domain.TicketPriority `json:"priority"`
	Status         domain.TicketStatus   `json:"status"`
	RequesterEmail string                `json:"requester_email"`
	MemberDetails  map[string]string     `json:"member_details"`
	CreatedAt      time.Time             `json:"created_at"`
}
