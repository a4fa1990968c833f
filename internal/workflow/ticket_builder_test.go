package workflow

import (
	"errors"
	"testing"

	"github.com/spec-kit/enrollment-service/internal/domain"
)

func completedRoleSession(status domain.EmploymentStatus) *domain.Session {
	s := sessionAt(domain.StepGenerateTicket)
	s.SetField(domain.FieldEmail, "jane@example.com")
	s.SetEmploymentStatus(status)
	for _, field := range domain.RoleFields {
		s.SetNextRoleField("value-" + string(field))
	}
	s.RoleClarification[domain.RoleCompany] = "Acme"
	s.RoleClarification[domain.RoleTitle] = "Board Advisor"
	return s
}

func TestBuildTicket(t *testing.T) {
	s := completedRoleSession(domain.EmploymentAdvisor)

	ticket, err := BuildTicket(s, "7f3c2a10-0000-4000-8000-000000000000", testNow)
	if err != nil {
		t.Fatalf("BuildTicket: %v", err)
	}
	if ticket.Subject != "MP Enrollment - advisor - Acme" {
		t.Fatalf("unexpected subject %q", ticket.Subject)
	}
	if ticket.Description != "New MP enrollment request from an advisor to Acme serving as Board Advisor." {
		t.Fatalf("unexpected description %q", ticket.Description)
	}
	if ticket.RequesterEmail != "jane@example.com" || ticket.SessionID != s.ID {
		t.Fatalf("unexpected requester fields %+v", ticket)
	}
	if ticket.MemberDetails["employment_status"] != "advisor" || ticket.MemberDetails["benefits_eligible"] == "" {
		t.Fatalf("member details missing merged values: %#v", ticket.MemberDetails)
	}
	if ticket.Category != "MP" || ticket.Assignee != "membership-team" || ticket.Status != domain.TicketStatusOpen {
		t.Fatalf("unexpected routing fields %+v", ticket)
	}

	again, err := BuildTicket(s, ticket.ID, testNow)
	if err != nil {
		t.Fatalf("BuildTicket: %v", err)
	}
	if again.Subject != ticket.Subject || again.Description != ticket.Description {
		t.Fatalf("ticket building is not deterministic")
	}
}

func TestBuildTicketDescriptionPerStatus(t *testing.T) {
	full := completedRoleSession(domain.EmploymentFullTime)
	full.SetConsentSigned(true)
	ticket, err := BuildTicket(full, "id", testNow)
	if err != nil {
		t.Fatalf("BuildTicket: %v", err)
	}
	want := "New MP enrollment request from a full-time employee of Acme working as Board Advisor. Employer verification consent: given."
	if ticket.Description != want {
		t.Fatalf("unexpected description %q", ticket.Description)
	}

	self := completedRoleSession(domain.EmploymentSelfEmployed)
	self.SetBoardPositions("Treasurer, Riverside Trust")
	ticket, err = BuildTicket(self, "id", testNow)
	if err != nil {
		t.Fatalf("BuildTicket: %v", err)
	}
	want = "New MP enrollment request from a self-employed member operating Acme as Board Advisor. Board positions: Treasurer, Riverside Trust."
	if ticket.Description != want {
		t.Fatalf("unexpected description %q", ticket.Description)
	}
}

func TestBuildTicketGuards(t *testing.T) {
	s := completedRoleSession(domain.EmploymentContractor)
	s.TicketGenerated = true
	if _, err := BuildTicket(s, "id", testNow); !errors.Is(err, ErrTicketAlreadyGenerated) {
		t.Fatalf("expected ErrTicketAlreadyGenerated, got %v", err)
	}

	partial := sessionAt(domain.StepCollectRoleInfo)
	partial.SetNextRoleField("Acme")
	if _, err := BuildTicket(partial, "id", testNow); !errors.Is(err, ErrRoleIncomplete) {
		t.Fatalf("expected ErrRoleIncomplete, got %v", err)
	}
}
