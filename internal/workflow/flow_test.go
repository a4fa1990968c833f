package workflow

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/spec-kit/enrollment-service/internal/domain"
)

var testNow = time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)

func sessionAt(step domain.Step) *domain.Session {
	s := domain.NewSession("session-1", "user-1", testNow)
	s.CurrentStep = step
	return s
}

func TestAdvanceStartCapturesContact(t *testing.T) {
	flow := NewFlow(nil)
	s := sessionAt(domain.StepStart)

	turn, err := flow.Advance(s, "Jane Doe jane@example.com")
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if turn.To != domain.StepAskProgramInterest {
		t.Fatalf("expected ask_program_interest, got %s", turn.To)
	}
	if s.CollectedData[domain.FieldEmail] != "jane@example.com" || s.CollectedData[domain.FieldName] != "Jane Doe" {
		t.Fatalf("unexpected collected data %#v", s.CollectedData)
	}
	if !strings.Contains(turn.Response, flow.Catalog().Questions[domain.StepAskProgramInterest]) {
		t.Fatalf("expected program interest question, got %q", turn.Response)
	}
}

func TestAdvanceStartIgnoresGreeting(t *testing.T) {
	for _, opening := range []string{
		"I want to enroll",
		"Hello, I want to enroll",
		"hi there",
		"Hi, I'd like to enroll please",
	} {
		s := sessionAt(domain.StepStart)
		if _, err := NewFlow(nil).Advance(s, opening); err != nil {
			t.Fatalf("Advance(%q): %v", opening, err)
		}
		if len(s.CollectedData) != 0 {
			t.Fatalf("%q: expected no contact captured, got %#v", opening, s.CollectedData)
		}
		if s.CurrentStep != domain.StepAskProgramInterest {
			t.Fatalf("%q: expected ask_program_interest, got %s", opening, s.CurrentStep)
		}
	}

	s := sessionAt(domain.StepStart)
	if _, err := NewFlow(nil).Advance(s, "Hello, I'm Jane Doe, jane@example.com"); err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if s.CollectedData[domain.FieldName] != "Jane Doe" || s.CollectedData[domain.FieldEmail] != "jane@example.com" {
		t.Fatalf("expected greeting stripped from name, got %#v", s.CollectedData)
	}
}

func TestAdvanceRejectsGreetingAtProgramInterest(t *testing.T) {
	flow := NewFlow(nil)
	s := sessionAt(domain.StepAskProgramInterest)

	turn, err := flow.Advance(s, "hi")
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if s.CurrentStep != domain.StepAskProgramInterest || turn.Outcome.Kind != OutcomeRejected {
		t.Fatalf("expected re-prompt at ask_program_interest, got %s (%v)", s.CurrentStep, turn.Outcome.Kind)
	}
	if !strings.Contains(turn.Response, flow.Catalog().Questions[domain.StepAskProgramInterest]) {
		t.Fatalf("expected the question to be asked again, got %q", turn.Response)
	}
	if s.Flags.WantsProgramInfo != nil {
		t.Fatalf("flag must stay unset after a rejected answer")
	}
}

func TestAdvanceEmploymentAdvisor(t *testing.T) {
	flow := NewFlow(nil)
	s := sessionAt(domain.StepAskEmploymentStatus)

	turn, err := flow.Advance(s, "B")
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if s.Flags.EmploymentStatus != domain.EmploymentAdvisor {
		t.Fatalf("expected advisor, got %q", s.Flags.EmploymentStatus)
	}
	if s.CurrentStep != domain.StepCollectRoleInfo {
		t.Fatalf("expected collect_role_info, got %s", s.CurrentStep)
	}
	if turn.Response != flow.Catalog().RoleQuestions[domain.RoleCompany] {
		t.Fatalf("expected company question, got %q", turn.Response)
	}
}

func TestAdvanceLinkedinNoExitsEarly(t *testing.T) {
	s := sessionAt(domain.StepLinkedinCheck)
	turn, err := NewFlow(nil).Advance(s, "no")
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if s.CurrentStep != domain.StepComplete || !s.IsComplete || s.TicketGenerated {
		t.Fatalf("unexpected early exit state: step=%s complete=%v ticket=%v", s.CurrentStep, s.IsComplete, s.TicketGenerated)
	}
	if turn.NeedsTicket() {
		t.Fatalf("early exit must not request a ticket")
	}
}

func TestAdvanceRoleInfoFillsInOrder(t *testing.T) {
	flow := NewFlow(nil)
	s := sessionAt(domain.StepCollectRoleInfo)

	for i, field := range domain.RoleFields {
		if next, _ := s.NextRoleField(); next != field {
			t.Fatalf("step %d: expected to ask %s, got %s", i, field, next)
		}
		turn, err := flow.Advance(s, "answer "+string(field))
		if err != nil {
			t.Fatalf("Advance: %v", err)
		}
		for _, later := range domain.RoleFields[i+1:] {
			if _, set := s.RoleClarification[later]; set {
				t.Fatalf("%s set before %s", later, field)
			}
		}
		if i < len(domain.RoleFields)-1 && turn.To != domain.StepCollectRoleInfo {
			t.Fatalf("expected to stay on collect_role_info, got %s", turn.To)
		}
	}
	if s.CurrentStep != domain.StepGenerateTicket {
		t.Fatalf("expected generate_ticket after nine answers, got %s", s.CurrentStep)
	}
}

func TestAdvanceEmptyUtteranceReemitsQuestion(t *testing.T) {
	flow := NewFlow(nil)
	for _, step := range []domain.Step{
		domain.StepAskProgramInterest,
		domain.StepAskEmploymentStatus,
		domain.StepLinkedinCheck,
		domain.StepCollectBoardInfo,
		domain.StepConsentCheck,
		domain.StepCollectRoleInfo,
	} {
		s := sessionAt(step)
		before := s.Clone()
		for i := 0; i < 2; i++ {
			turn, err := flow.Advance(s, "   ")
			if err != nil {
				t.Fatalf("Advance: %v", err)
			}
			if turn.To != step || turn.Response != flow.Catalog().Question(before, step) {
				t.Fatalf("%s: expected standing question, got %s %q", step, turn.To, turn.Response)
			}
		}
		if len(s.RoleClarification) != 0 || s.Flags != before.Flags {
			t.Fatalf("%s: empty turn changed the session", step)
		}
	}
}

func TestAdvanceNeverOverwritesAnswers(t *testing.T) {
	s := sessionAt(domain.StepAskEmploymentStatus)
	s.SetEmploymentStatus(domain.EmploymentContractor)
	if _, err := NewFlow(nil).Advance(s, "A"); err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if s.Flags.EmploymentStatus != domain.EmploymentContractor {
		t.Fatalf("employment status overwritten: %q", s.Flags.EmploymentStatus)
	}
}

func TestAdvanceCompleteIsTerminal(t *testing.T) {
	flow := NewFlow(nil)
	s := sessionAt(domain.StepComplete)
	s.IsComplete = true
	turn, err := flow.Advance(s, "yes")
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if turn.To != domain.StepComplete || turn.Response != flow.Catalog().AlreadyComplete {
		t.Fatalf("unexpected turn %+v", turn)
	}
}

func TestAdvanceUnknownStep(t *testing.T) {
	s := sessionAt(domain.Step("ask_favourite_colour"))
	if _, err := NewFlow(nil).Advance(s, "blue"); !errors.Is(err, ErrUnknownStep) {
		t.Fatalf("expected ErrUnknownStep, got %v", err)
	}
}
