package workflow

import "github.com/spec-kit/enrollment-service/internal/domain"

// Edges lists every permitted transition, self-loops included.
var Edges = map[domain.Step][]domain.Step{
	domain.StepStart:               {domain.StepAskProgramInterest},
	domain.StepAskProgramInterest:  {domain.StepAskEmploymentStatus, domain.StepAskProgramInterest},
	domain.StepAskEmploymentStatus: {domain.StepLinkedinCheck, domain.StepConsentCheck, domain.StepCollectRoleInfo, domain.StepAskEmploymentStatus},
	domain.StepLinkedinCheck:       {domain.StepCollectBoardInfo, domain.StepComplete, domain.StepLinkedinCheck},
	domain.StepCollectBoardInfo:    {domain.StepCollectRoleInfo, domain.StepCollectBoardInfo},
	domain.StepConsentCheck:        {domain.StepCollectRoleInfo, domain.StepConsentCheck},
	domain.StepCollectRoleInfo:     {domain.StepCollectRoleInfo, domain.StepGenerateTicket},
	domain.StepGenerateTicket:      {domain.StepComplete},
	domain.StepComplete:            {domain.StepComplete},
}

// CanTransition reports whether from -> to is an edge of the flow.
func CanTransition(from, to domain.Step) bool {
	for _, next := range Edges[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Next selects the step that follows step given the session as it was before this turn and
// the outcome of the current node's extraction. It has no side effects.
func Next(step domain.Step, s *domain.Session, out Outcome) domain.Step {
	switch step {
	case domain.StepStart:
		return domain.StepAskProgramInterest
	case domain.StepAskProgramInterest:
		if out.Accepted() {
			return domain.StepAskEmploymentStatus
		}
	case domain.StepAskEmploymentStatus:
		if !out.Accepted() {
			break
		}
		switch out.Employment {
		case domain.EmploymentSelfEmployed:
			return domain.StepLinkedinCheck
		case domain.EmploymentFullTime:
			return domain.StepConsentCheck
		case domain.EmploymentAdvisor, domain.EmploymentContractor:
			return domain.StepCollectRoleInfo
		}
	case domain.StepLinkedinCheck:
		if out.Accepted() {
			if out.Answer {
				return domain.StepCollectBoardInfo
			}
			return domain.StepComplete
		}
	case domain.StepCollectBoardInfo, domain.StepConsentCheck:
		if out.Accepted() {
			return domain.StepCollectRoleInfo
		}
	case domain.StepCollectRoleInfo:
		if out.Accepted() && s.MissingRoleFields() <= 1 {
			return domain.StepGenerateTicket
		}
	case domain.StepGenerateTicket, domain.StepComplete:
		return domain.StepComplete
	}
	return step
}
