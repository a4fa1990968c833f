package workflow

import (
	"strings"

	"github.com/spec-kit/enrollment-service/internal/domain"
)

// OutcomeKind classifies one extraction attempt.
type OutcomeKind int

const (
	// OutcomeEmpty means the utterance carried nothing to extract.
	OutcomeEmpty OutcomeKind = iota
	// OutcomeRejected means the utterance did not satisfy the node's rule.
	OutcomeRejected
	// OutcomeAccepted means the node's rule extracted a value.
	OutcomeAccepted
)

// Outcome is the result of running a node's extraction rule on an utterance.
type Outcome struct {
	Kind       OutcomeKind
	Text       string
	Answer     bool
	Employment domain.EmploymentStatus
}

// Accepted reports whether the extraction succeeded.
func (o Outcome) Accepted() bool { return o.Kind == OutcomeAccepted }

type node struct {
	step    domain.Step
	ask     bool
	extract func(utterance string) Outcome
	apply   func(s *domain.Session, out Outcome)
}

var nodes = []node{
	{
		step:    domain.StepStart,
		extract: func(u string) Outcome { return Outcome{Kind: OutcomeAccepted, Text: strings.TrimSpace(u)} },
		apply:   captureContact,
	},
	{
		step:    domain.StepAskProgramInterest,
		ask:     true,
		extract: yesNoOutcome,
		apply:   func(s *domain.Session, out Outcome) { s.SetWantsProgramInfo(out.Answer) },
	},
	{
		step: domain.StepAskEmploymentStatus,
		ask:  true,
		extract: func(u string) Outcome {
			if strings.TrimSpace(u) == "" {
				return Outcome{Kind: OutcomeEmpty}
			}
			status, ok := ExtractEmploymentStatus(u)
			if !ok {
				return Outcome{Kind: OutcomeRejected}
			}
			return Outcome{Kind: OutcomeAccepted, Employment: status, Text: string(status)}
		},
		apply: func(s *domain.Session, out Outcome) { s.SetEmploymentStatus(out.Employment) },
	},
	{
		step:    domain.StepLinkedinCheck,
		ask:     true,
		extract: yesNoOutcome,
		apply:   func(s *domain.Session, out Outcome) { s.SetLinkedinProfileUpdated(out.Answer) },
	},
	{
		step:    domain.StepCollectBoardInfo,
		ask:     true,
		extract: freeTextOutcome,
		apply:   func(s *domain.Session, out Outcome) { s.SetBoardPositions(out.Text) },
	},
	{
		step:    domain.StepConsentCheck,
		ask:     true,
		extract: yesNoOutcome,
		apply:   func(s *domain.Session, out Outcome) { s.SetConsentSigned(out.Answer) },
	},
	{
		step:    domain.StepCollectRoleInfo,
		extract: freeTextOutcome,
		apply:   func(s *domain.Session, out Outcome) { s.SetNextRoleField(out.Text) },
	},
	{
		step:    domain.StepGenerateTicket,
		extract: func(string) Outcome { return Outcome{Kind: OutcomeAccepted} },
		apply:   func(*domain.Session, Outcome) {},
	},
	{
		step:    domain.StepComplete,
		extract: func(string) Outcome { return Outcome{Kind: OutcomeAccepted} },
		apply:   func(*domain.Session, Outcome) {},
	},
}

func nodeFor(step domain.Step) (node, bool) {
	for _, n := range nodes {
		if n.step == step {
			return n, true
		}
	}
	return node{}, false
}

func yesNoOutcome(u string) Outcome {
	if strings.TrimSpace(u) == "" {
		return Outcome{Kind: OutcomeEmpty}
	}
	answer, ok := ExtractYesNo(u)
	if !ok {
		return Outcome{Kind: OutcomeRejected}
	}
	return Outcome{Kind: OutcomeAccepted, Answer: answer}
}

func freeTextOutcome(u string) Outcome {
	text, ok := ExtractFreeText(u)
	if !ok {
		return Outcome{Kind: OutcomeEmpty}
	}
	return Outcome{Kind: OutcomeAccepted, Text: text}
}

// captureContact records the email and name offered in the opening utterance, if any.
func captureContact(s *domain.Session, out Outcome) {
	token, rest := splitContact(out.Text)
	if email, ok := ExtractEmail(token); ok {
		s.SetField(domain.FieldEmail, email)
	}
	if name, ok := ExtractName(rest); ok {
		s.SetField(domain.FieldName, name)
	}
}
