package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/enrollment-service/internal/api/dto"
	"github.com/spec-kit/enrollment-service/internal/domain"
	"github.com/spec-kit/enrollment-service/internal/service"
	apperrors "github.com/spec-kit/enrollment-service/pkg/util/errorutil"
)

// EnrollmentHandler exposes the enrollment conversation.
type EnrollmentHandler struct {
	engine *service.DialogueEngine
}

// NewEnrollmentHandler constructs handler.
func NewEnrollmentHandler(engine *service.DialogueEngine) *EnrollmentHandler {
	return &EnrollmentHandler{engine: engine}
}

// Chat POST /api/chat.
func (h *EnrollmentHandler) Chat(c *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.ExpectedStep != "" && !req.ExpectedStep.Valid() {
		return apperrors.NewValidationError("unknown expected_step", map[string]any{"expected_step": req.ExpectedStep})
	}

	result, err := h.engine.HandleTurn(c.UserContext(), service.TurnRequest{
		SessionID:    strings.TrimSpace(req.SessionID),
		UserID:       strings.TrimSpace(req.UserID),
		Utterance:    req.Message,
		TurnID:       strings.TrimSpace(req.TurnID),
		ExpectedStep: req.ExpectedStep,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.ChatResponse{
		Message:       result.ResponseText,
		SessionID:     result.SessionID,
		IsComplete:    result.IsComplete,
		NextStep:      result.CurrentStep,
		CollectedData: result.CollectedData,
		Stale:         result.Stale,
		Replayed:      result.Replayed,
	})
}

// GetSession GET /api/session/:id.
func (h *EnrollmentHandler) GetSession(c *fiber.Ctx) error {
	session, err := h.engine.GetSessionSnapshot(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": sessionResponse(session)})
}

// GetTicket GET /api/ticket/:session_id.
func (h *EnrollmentHandler) GetTicket(c *fiber.Ctx) error {
	ticket, err := h.engine.GetTicket(c.UserContext(), c.Params("session_id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

func sessionResponse(s *domain.Session) dto.SessionResponse {
	return dto.SessionResponse{
		SessionID:         s.ID,
		UserID:            s.UserID,
		CurrentStep:       s.CurrentStep,
		CollectedData:     s.CollectedData,
		Flags:             s.Flags,
		RoleClarification: s.RoleClarification,
		IsComplete:        s.IsComplete,
		TicketGenerated:   s.TicketGenerated,
		TicketID:          s.TicketID,
		Messages:          s.Messages,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}
}

func ticketResponse(t *domain.Ticket) dto.TicketResponse {
	return dto.TicketResponse{
		TicketID:       t.ID,
		SessionID:      t.SessionID,
		Subject:        t.Subject,
		Description:    t.Description,
		Category:       t.Category,
		Assignee:       t.Assignee,
		Priority:       t.Priority,
		Status:         t.Status,
		RequesterEmail: t.RequesterEmail,
		MemberDetails:  t.MemberDetails,
		CreatedAt:      t.CreatedAt,
	}
}
