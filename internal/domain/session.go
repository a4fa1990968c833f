package domain

import "time"

// MessageRole identifies the author of a conversation message.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Message is one entry of the session audit trail.
type Message struct {
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp"`
}

// Flags holds side answers used for branching. Every flag is write-once.
type Flags struct {
	WantsProgramInfo       *bool            `json:"wants_program_info,omitempty"`
	EmploymentStatus       EmploymentStatus `json:"employment_status,omitempty"`
	LinkedinProfileUpdated *bool            `json:"linkedin_profile_updated,omitempty"`
	BoardPositions         string           `json:"board_positions,omitempty"`
	ConsentSigned          *bool            `json:"consent_signed,omitempty"`
}

// TurnRecord remembers the last processed turn so a retried request can be answered
// without running the flow again.
type TurnRecord struct {
	Fingerprint string    `json:"fingerprint"`
	Response    string    `json:"response"`
	ProcessedAt time.Time `json:"processed_at"`
}

// Session is the accumulated state of one enrollment conversation.
type Session struct {
	ID                string               `json:"session_id"`
	UserID            string               `json:"user_id"`
	CurrentStep       Step                 `json:"current_step"`
	CollectedData     map[string]string    `json:"collected_data"`
	Flags             Flags                `json:"flags"`
	RoleClarification map[RoleField]string `json:"role_clarification"`
	IsComplete        bool                 `json:"is_complete"`
	TicketGenerated   bool                 `json:"ticket_generated"`
	TicketID          string               `json:"ticket_id,omitempty"`
	Messages          []Message            `json:"messages"`
	LastTurn          *TurnRecord          `json:"last_turn,omitempty"`
	CreatedAt         time.Time            `json:"created_at"`
	UpdatedAt         time.Time            `json:"updated_at"`
}

// NewSession returns an empty session waiting at the initial step.
func NewSession(id, userID string, now time.Time) *Session {
	return &Session{
		ID:                id,
		UserID:            userID,
		CurrentStep:       StepStart,
		CollectedData:     map[string]string{},
		RoleClarification: map[RoleField]string{},
		Messages:          []Message{},
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// Clone returns a deep copy so a turn can be discarded without touching the original.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.CollectedData = make(map[string]string, len(s.CollectedData))
	for k, v := range s.CollectedData {
		out.CollectedData[k] = v
	}
	out.RoleClarification = make(map[RoleField]string, len(s.RoleClarification))
	for k, v := range s.RoleClarification {
		out.RoleClarification[k] = v
	}
	out.Messages = append([]Message(nil), s.Messages...)
	out.Flags.WantsProgramInfo = cloneBool(s.Flags.WantsProgramInfo)
	out.Flags.LinkedinProfileUpdated = cloneBool(s.Flags.LinkedinProfileUpdated)
	out.Flags.ConsentSigned = cloneBool(s.Flags.ConsentSigned)
	if s.LastTurn != nil {
		rec := *s.LastTurn
		out.LastTurn = &rec
	}
	return &out
}

// SetField records a collected value unless the key is already present.
func (s *Session) SetField(key, value string) bool {
	if s.CollectedData == nil {
		s.CollectedData = map[string]string{}
	}
	if _, exists := s.CollectedData[key]; exists {
		return false
	}
	s.CollectedData[key] = value
	return true
}

// NextRoleField returns the first role sub-field still missing.
func (s *Session) NextRoleField() (RoleField, bool) {
	for _, field := range RoleFields {
		if _, ok := s.RoleClarification[field]; !ok {
			return field, true
		}
	}
	return "", false
}

// MissingRoleFields counts role sub-fields not yet answered.
func (s *Session) MissingRoleFields() int {
	missing := 0
	for _, field := range RoleFields {
		if _, ok := s.RoleClarification[field]; !ok {
			missing++
		}
	}
	return missing
}

// SetNextRoleField fills the next role sub-field in the fixed order.
func (s *Session) SetNextRoleField(value string) (RoleField, bool) {
	field, ok := s.NextRoleField()
	if !ok {
		return "", false
	}
	if s.RoleClarification == nil {
		s.RoleClarification = map[RoleField]string{}
	}
	s.RoleClarification[field] = value
	return field, true
}

// SetWantsProgramInfo records the program interest answer once.
func (s *Session) SetWantsProgramInfo(v bool) bool {
	if s.Flags.WantsProgramInfo != nil {
		return false
	}
	s.Flags.WantsProgramInfo = &v
	return true
}

// SetEmploymentStatus records the employment answer once.
func (s *Session) SetEmploymentStatus(v EmploymentStatus) bool {
	if s.Flags.EmploymentStatus != "" {
		return false
	}
	s.Flags.EmploymentStatus = v
	return true
}

// SetLinkedinProfileUpdated records the LinkedIn answer once.
func (s *Session) SetLinkedinProfileUpdated(v bool) bool {
	if s.Flags.LinkedinProfileUpdated != nil {
		return false
	}
	s.Flags.LinkedinProfileUpdated = &v
	return true
}

// SetBoardPositions records the board positions answer once.
func (s *Session) SetBoardPositions(v string) bool {
	if s.Flags.BoardPositions != "" {
		return false
	}
	s.Flags.BoardPositions = v
	return true
}

// SetConsentSigned records the consent answer once.
func (s *Session) SetConsentSigned(v bool) bool {
	if s.Flags.ConsentSigned != nil {
		return false
	}
	s.Flags.ConsentSigned = &v
	return true
}

// AppendMessage adds an entry to the audit trail.
func (s *Session) AppendMessage(role MessageRole, content string, at time.Time) {
	s.Messages = append(s.Messages, Message{Role: role, Content: content, Timestamp: at})
}

// MemberDetails merges collected data, flags and role clarification into one flat view.
func (s *Session) MemberDetails() map[string]string {
	out := make(map[string]string, len(s.CollectedData)+len(s.RoleClarification)+5)
	for k, v := range s.CollectedData {
		out[k] = v
	}
	if s.Flags.WantsProgramInfo != nil {
		out["wants_program_info"] = yesNo(*s.Flags.WantsProgramInfo)
	}
	if s.Flags.EmploymentStatus != "" {
		out["employment_status"] = string(s.Flags.EmploymentStatus)
	}
	if s.Flags.LinkedinProfileUpdated != nil {
		out["linkedin_profile_updated"] = yesNo(*s.Flags.LinkedinProfileUpdated)
	}
	if s.Flags.BoardPositions != "" {
		out["board_positions"] = s.Flags.BoardPositions
	}
	if s.Flags.ConsentSigned != nil {
		out["consent_signed"] = yesNo(*s.Flags.ConsentSigned)
	}
	for k, v := range s.RoleClarification {
		out[string(k)] = v
	}
	return out
}

func cloneBool(v *bool) *bool {
	if v == nil {
		return nil
	}
	b := *v
	return &b
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
