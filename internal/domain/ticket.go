package domain

import "time"

// TicketStatus enumerates lifecycle states for enrollment tickets.
type TicketStatus string

const (
	TicketStatusOpen    TicketStatus = "open"
	TicketStatusPending TicketStatus = "pending"
	TicketStatusSolved  TicketStatus = "solved"
	TicketStatusClosed  TicketStatus = "closed"
)

// TicketPriority enumerates routing urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityNormal TicketPriority = "normal"
	TicketPriorityHigh   TicketPriority = "high"
	TicketPriorityUrgent TicketPriority = "urgent"
)

// Ticket routing defaults.
const (
	TicketCategoryMembership = "MP"
	TicketAssigneeMembership = "membership-team"
)

// Ticket is the structured enrollment record emitted once per completed session.
// It is immutable after creation.
type Ticket struct {
	ID             string            `json:"ticket_id"`
	SessionID      string            `json:"session_id"`
	Subject        string            `json:"subject"`
	Description    string            `json:"description"`
	Category       string            `json:"category"`
	Assignee       string            `json:"assignee"`
	Priority       TicketPriority    `json:"priority"`
	Status         TicketStatus      `json:"status"`
	RequesterEmail string            `json:"requester_email"`
	MemberDetails  map[string]string `json:"member_details"`
	CreatedAt      time.Time         `json:"created_at"`
}

// Clone returns a copy that shares no map storage with t.
func (t *Ticket) Clone() *Ticket {
	out := *t
	if t.MemberDetails != nil {
		out.MemberDetails = make(map[string]string, len(t.MemberDetails))
		for k, v := range t.MemberDetails {
			out.MemberDetails[k] = v
		}
	}
	return &out
}
