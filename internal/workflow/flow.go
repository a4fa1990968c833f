package workflow

import (
	"errors"
	"fmt"

	"github.com/spec-kit/enrollment-service/internal/domain"
)

// ErrUnknownStep is returned when a session sits on a step the flow does not define.
var ErrUnknownStep = errors.New("unknown step")

// Turn describes what one utterance did to a session.
type Turn struct {
	From     domain.Step
	To       domain.Step
	Outcome  Outcome
	Response string
}

// NeedsTicket reports whether the engine must run ticket generation for this turn.
func (t Turn) NeedsTicket() bool {
	return t.To == domain.StepGenerateTicket || t.From == domain.StepGenerateTicket
}

// Flow runs the enrollment conversation graph. It never blocks and never fails on user input.
type Flow struct {
	catalog *Catalog
}

// NewFlow builds a flow backed by catalog; a nil catalog uses the embedded default.
func NewFlow(catalog *Catalog) *Flow {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Flow{catalog: catalog}
}

// Catalog exposes the prompt catalog in use.
func (f *Flow) Catalog() *Catalog { return f.catalog }

// StandingQuestion is what the session is currently waiting on.
func (f *Flow) StandingQuestion(s *domain.Session) string {
	if s.CurrentStep == domain.StepStart {
		return joinText(f.catalog.Welcome, f.catalog.Questions[domain.StepAskProgramInterest])
	}
	return f.catalog.Question(s, s.CurrentStep)
}

// Advance applies utterance to s in place. Callers that need all-or-nothing semantics
// must pass a clone.
func (f *Flow) Advance(s *domain.Session, utterance string) (Turn, error) {
	from := s.CurrentStep
	n, ok := nodeFor(from)
	if !ok {
		return Turn{}, fmt.Errorf("%w: %q", ErrUnknownStep, from)
	}

	out := n.extract(utterance)
	to := Next(from, s, out)
	if out.Accepted() {
		n.apply(s, out)
	}
	s.CurrentStep = to

	turn := Turn{From: from, To: to, Outcome: out}
	switch {
	case from == domain.StepComplete:
		turn.Response = f.catalog.AlreadyComplete
	case out.Kind == OutcomeEmpty:
		turn.Response = f.catalog.Question(s, from)
	case out.Kind == OutcomeRejected:
		turn.Response = f.catalog.Reprompt(s, from)
	case from == domain.StepLinkedinCheck && to == domain.StepComplete:
		s.IsComplete = true
		turn.Response = f.catalog.EarlyExit
	case turn.NeedsTicket():
		// filled in once the ticket exists
	case from == domain.StepStart:
		turn.Response = joinText(f.catalog.Welcome, f.catalog.Question(s, to))
	default:
		turn.Response = f.catalog.Question(s, to)
	}
	return turn, nil
}
