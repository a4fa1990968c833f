package domain

// Step identifies the node a session is waiting on.
type Step string

const (
	StepStart               Step = "start"
	StepAskProgramInterest  Step = "ask_program_interest"
	StepAskEmploymentStatus Step = "ask_employment_status"
	StepLinkedinCheck       Step = "linkedin_check"
	StepCollectBoardInfo    Step = "collect_board_info"
	StepConsentCheck        Step = "consent_check"
	StepCollectRoleInfo     Step = "collect_role_info"
	StepGenerateTicket      Step = "generate_ticket"
	StepComplete            Step = "complete"
)

// Steps lists every step in flow order.
var Steps = []Step{
	StepStart,
	StepAskProgramInterest,
	StepAskEmploymentStatus,
	StepLinkedinCheck,
	StepCollectBoardInfo,
	StepConsentCheck,
	StepCollectRoleInfo,
	StepGenerateTicket,
	StepComplete,
}

// Valid reports whether s is a known step.
func (s Step) Valid() bool {
	for _, step := range Steps {
		if step == s {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions leave s.
func (s Step) Terminal() bool {
	return s == StepComplete
}

// EmploymentStatus enumerates the answers accepted at ask_employment_status.
type EmploymentStatus string

const (
	EmploymentFullTime     EmploymentStatus = "full-time employee"
	EmploymentAdvisor      EmploymentStatus = "advisor"
	EmploymentContractor   EmploymentStatus = "contractor"
	EmploymentSelfEmployed EmploymentStatus = "self-employed"
)

// RoleField names one of the role clarification sub-fields.
type RoleField string

const (
	RoleCompany           RoleField = "company"
	RoleTitle             RoleField = "role_title"
	RoleStartDate         RoleField = "start_date"
	RoleEndDate           RoleField = "end_date"
	RoleAssociationNature RoleField = "association_nature"
	RoleWorkSchedule      RoleField = "work_schedule"
	RoleHoursPerWeek      RoleField = "hours_per_week"
	RoleEmployeeStatus    RoleField = "employee_status"
	RoleBenefitsEligible  RoleField = "benefits_eligible"
)

// RoleFields is the fixed order in which role clarification is collected.
var RoleFields = []RoleField{
	RoleCompany,
	RoleTitle,
	RoleStartDate,
	RoleEndDate,
	RoleAssociationNature,
	RoleWorkSchedule,
	RoleHoursPerWeek,
	RoleEmployeeStatus,
	RoleBenefitsEligible,
}

// Collected data keys.
const (
	FieldName  = "name"
	FieldEmail = "email"
)
