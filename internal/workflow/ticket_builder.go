package workflow

import (
	"errors"
	"fmt"
	"time"

	"github.com/spec-kit/enrollment-service/internal/domain"
)

var (
	// ErrTicketAlreadyGenerated guards against building a second ticket for one session.
	ErrTicketAlreadyGenerated = errors.New("ticket already generated for session")
	// ErrRoleIncomplete means role clarification is still missing answers.
	ErrRoleIncomplete = errors.New("role clarification incomplete")
)

var descriptionTemplates = map[domain.EmploymentStatus]string{
	domain.EmploymentFullTime:     "New MP enrollment request from a full-time employee of %s working as %s. Employer verification consent: %s.",
	domain.EmploymentAdvisor:      "New MP enrollment request from an advisor to %s serving as %s.",
	domain.EmploymentContractor:   "New MP enrollment request from a contractor engaged by %s as %s.",
	domain.EmploymentSelfEmployed: "New MP enrollment request from a self-employed member operating %s as %s. Board positions: %s.",
}

// BuildTicket assembles the enrollment ticket from the session's accumulated answers.
// The result depends only on s, id and now.
func BuildTicket(s *domain.Session, id string, now time.Time) (*domain.Ticket, error) {
	if s.TicketGenerated {
		return nil, ErrTicketAlreadyGenerated
	}
	if n := s.MissingRoleFields(); n > 0 {
		return nil, fmt.Errorf("%w: %d fields missing", ErrRoleIncomplete, n)
	}
	status := s.Flags.EmploymentStatus
	company := s.RoleClarification[domain.RoleCompany]
	title := s.RoleClarification[domain.RoleTitle]

	return &domain.Ticket{
		ID:             id,
		SessionID:      s.ID,
		Subject:        fmt.Sprintf("MP Enrollment - %s - %s", status, company),
		Description:    describe(s, status, company, title),
		Category:       domain.TicketCategoryMembership,
		Assignee:       domain.TicketAssigneeMembership,
		Priority:       domain.TicketPriorityNormal,
		Status:         domain.TicketStatusOpen,
		RequesterEmail: s.CollectedData[domain.FieldEmail],
		MemberDetails:  s.MemberDetails(),
		CreatedAt:      now,
	}, nil
}

func describe(s *domain.Session, status domain.EmploymentStatus, company, title string) string {
	tmpl, ok := descriptionTemplates[status]
	if !ok {
		return fmt.Sprintf("New MP enrollment request for %s at %s.", title, company)
	}
	switch status {
	case domain.EmploymentFullTime:
		consent := "not given"
		if s.Flags.ConsentSigned != nil && *s.Flags.ConsentSigned {
			consent = "given"
		}
		return fmt.Sprintf(tmpl, company, title, consent)
	case domain.EmploymentSelfEmployed:
		board := s.Flags.BoardPositions
		if board == "" {
			board = "None"
		}
		return fmt.Sprintf(tmpl, company, title, board)
	default:
		return fmt.Sprintf(tmpl, company, title)
	}
}
