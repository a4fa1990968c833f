package workflow

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/spec-kit/enrollment-service/internal/domain"
)

//go:embed prompts.yaml
var defaultCatalog []byte

// Catalog holds every text the flow can respond with.
type Catalog struct {
	Welcome         string                      `yaml:"welcome"`
	Questions       map[domain.Step]string      `yaml:"questions"`
	Reprompts       map[domain.Step]string      `yaml:"reprompts"`
	RoleQuestions   map[domain.RoleField]string `yaml:"role_questions"`
	EarlyExit       string                      `yaml:"early_exit"`
	TicketCreated   string                      `yaml:"ticket_created"`
	Completed       string                      `yaml:"completed"`
	AlreadyComplete string                      `yaml:"already_complete"`
}

// DefaultCatalog returns the embedded prompt catalog.
func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(defaultCatalog)
	if err != nil {
		panic("workflow: embedded prompt catalog invalid: " + err.Error())
	}
	return c
}

// LoadCatalog reads a catalog from path, or returns the embedded one when path is empty.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompt catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and validates a YAML catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode prompt catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks that every asking node and role sub-field has a question.
func (c *Catalog) Validate() error {
	var missing []string
	for _, node := range nodes {
		if node.ask && strings.TrimSpace(c.Questions[node.step]) == "" {
			missing = append(missing, "questions."+string(node.step))
		}
	}
	for _, field := range domain.RoleFields {
		if strings.TrimSpace(c.RoleQuestions[field]) == "" {
			missing = append(missing, "role_questions."+string(field))
		}
	}
	for key, text := range map[string]string{
		"early_exit":       c.EarlyExit,
		"ticket_created":   c.TicketCreated,
		"completed":        c.Completed,
		"already_complete": c.AlreadyComplete,
	} {
		if strings.TrimSpace(text) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("prompt catalog missing entries: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Question returns the standing question for a session waiting at step.
func (c *Catalog) Question(s *domain.Session, step domain.Step) string {
	switch step {
	case domain.StepCollectRoleInfo:
		if field, ok := s.NextRoleField(); ok {
			return c.RoleQuestions[field]
		}
		return ""
	case domain.StepComplete:
		return c.AlreadyComplete
	default:
		return c.Questions[step]
	}
}

// Reprompt returns the re-ask text for a rejected answer at step.
func (c *Catalog) Reprompt(s *domain.Session, step domain.Step) string {
	return joinText(c.Reprompts[step], c.Question(s, step))
}

// TicketMessage renders the ticket confirmation followed by the completion note.
func (c *Catalog) TicketMessage(ticketID string) string {
	ref := ticketID
	if len(ref) > 8 {
		ref = ref[:8]
	}
	return joinText(strings.ReplaceAll(c.TicketCreated, "{ticket_ref}", ref), c.Completed)
}

func joinText(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}
