package service

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"

	"github.com/spec-kit/enrollment-service/internal/domain"
	"github.com/spec-kit/enrollment-service/internal/events"
	"github.com/spec-kit/enrollment-service/internal/observability"
	"github.com/spec-kit/enrollment-service/internal/repository"
	"github.com/spec-kit/enrollment-service/internal/workflow"
	"github.com/spec-kit/enrollment-service/pkg/util/errorutil"
)

// Embedder turns ticket text into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// TurnRequest is one user utterance addressed to a session. SessionID may be empty to
// start a new conversation.
type TurnRequest struct {
	SessionID    string
	UserID       string
	Utterance    string
	TurnID       string
	ExpectedStep domain.Step
}

// TurnResult is what the caller shows the user after a turn.
type TurnResult struct {
	ResponseText  string            `json:"message"`
	IsComplete    bool              `json:"is_complete"`
	CurrentStep   domain.Step       `json:"next_step"`
	CollectedData map[string]string `json:"collected_data"`
	SessionID     string            `json:"session_id"`
	Stale         bool              `json:"stale,omitempty"`
	Replayed      bool              `json:"replayed,omitempty"`
}

// DialogueEngine runs enrollment turns against persisted sessions.
type DialogueEngine struct {
	store      repository.SessionStore
	locker     repository.SessionLocker
	tickets    repository.TicketSink
	embedder   Embedder
	flow       *workflow.Flow
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	now        func() time.Time
	newID      func() string
	timeout    time.Duration
}

// EngineDependencies bundles collaborators for the dialogue engine. Flow, Locker, Logger,
// Now and NewID fall back to defaults when nil. TurnTimeout bounds everything done while the
// session lock is held and must be shorter than a leased lock's TTL; zero means unbounded.
type EngineDependencies struct {
	Store       repository.SessionStore
	Locker      repository.SessionLocker
	Tickets     repository.TicketSink
	Embedder    Embedder
	Flow        *workflow.Flow
	Dispatcher  events.Dispatcher
	Metrics     *observability.Metrics
	Logger      *zap.Logger
	Now         func() time.Time
	NewID       func() string
	TurnTimeout time.Duration
}

// NewDialogueEngine constructs the engine.
func NewDialogueEngine(deps EngineDependencies) *DialogueEngine {
	e := &DialogueEngine{
		store:      deps.Store,
		locker:     deps.Locker,
		tickets:    deps.Tickets,
		embedder:   deps.Embedder,
		flow:       deps.Flow,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		now:        deps.Now,
		newID:      deps.NewID,
		timeout:    deps.TurnTimeout,
	}
	if e.flow == nil {
		e.flow = workflow.NewFlow(nil)
	}
	if e.locker == nil {
		e.locker = repository.NewLocalLocker()
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	if e.now == nil {
		e.now = func() time.Time { return time.Now().UTC() }
	}
	if e.newID == nil {
		e.newID = uuid.NewString
	}
	return e
}

// HandleTurn processes one utterance. The session is loaded, advanced, optionally turned
// into a ticket and saved while holding the session lock. Any collaborator failure returns
// a DomainError carrying the apology message, and the stored session is left untouched.
func (e *DialogueEngine) HandleTurn(ctx context.Context, req TurnRequest) (*TurnResult, error) {
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = e.newID()
	}
	logger := e.logger.With(zap.String("session_id", sessionID))

	unlock, err := e.locker.Lock(ctx, sessionID)
	if err != nil {
		logger.Error("session lock failed", zap.Error(err))
		return nil, errorutil.NewSessionStoreError(fmt.Errorf("lock session: %w", err))
	}
	defer unlock()

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	stored, err := e.store.Load(ctx, sessionID)
	switch {
	case errors.Is(err, repository.ErrSessionNotFound):
		stored = nil
	case err != nil:
		logger.Error("session load failed", zap.Error(err))
		return nil, errorutil.NewSessionStoreError(err)
	}

	var session *domain.Session
	if stored != nil {
		session = stored.Clone()
	} else {
		userID := strings.TrimSpace(req.UserID)
		if userID == "" {
			userID = e.newID()
		}
		session = domain.NewSession(sessionID, userID, e.now())
	}

	fingerprint := ""
	if req.TurnID != "" {
		fingerprint = turnFingerprint(req.TurnID, req.Utterance)
		if session.LastTurn != nil && session.LastTurn.Fingerprint == fingerprint {
			logger.Info("replaying turn", zap.String("turn_id", req.TurnID))
			result := e.result(session, session.LastTurn.Response)
			result.Replayed = true
			return result, nil
		}
	}

	if req.ExpectedStep != "" && req.ExpectedStep != session.CurrentStep {
		logger.Warn("stale turn",
			zap.String("expected_step", string(req.ExpectedStep)),
			zap.String("step", string(session.CurrentStep)))
		result := e.result(session, e.flow.StandingQuestion(session))
		result.Stale = true
		return result, nil
	}

	turn, err := e.flow.Advance(session, req.Utterance)
	if err != nil {
		logger.Error("flow advance failed", zap.Error(err))
		return nil, errorutil.NewInternalError(err)
	}

	var ticket *domain.Ticket
	response := turn.Response
	if turn.NeedsTicket() {
		ticket, err = e.generateTicket(ctx, session, logger)
		if err != nil {
			return nil, errorutil.NewTicketGenerationError(err)
		}
		response = e.flow.Catalog().TicketMessage(session.TicketID)
	}

	now := e.now()
	session.AppendMessage(domain.RoleUser, req.Utterance, now)
	session.AppendMessage(domain.RoleAssistant, response, now)
	session.UpdatedAt = now
	if fingerprint != "" {
		session.LastTurn = &domain.TurnRecord{Fingerprint: fingerprint, Response: response, ProcessedAt: now}
	} else {
		session.LastTurn = nil
	}

	if err := e.store.Save(ctx, session); err != nil {
		logger.Error("session save failed", zap.Error(err))
		return nil, errorutil.NewSessionStoreError(err)
	}

	logger.Info("turn processed",
		zap.String("from_step", string(turn.From)),
		zap.String("step", string(session.CurrentStep)),
		zap.Bool("complete", session.IsComplete))
	e.metrics.RecordTurn(string(turn.From), string(session.CurrentStep))
	e.publish(ctx, stored, session, turn, ticket, logger)

	return e.result(session, response), nil
}

// generateTicket builds, embeds and stores the ticket for s and marks s complete. The sink
// is idempotent per session, so the stored ticket id wins over the freshly built one.
func (e *DialogueEngine) generateTicket(ctx context.Context, s *domain.Session, logger *zap.Logger) (*domain.Ticket, error) {
	if s.TicketGenerated {
		logger.Error("ticket generation requested twice", zap.String("ticket_id", s.TicketID))
		s.CurrentStep = domain.StepComplete
		s.IsComplete = true
		return nil, nil
	}

	ticket, err := workflow.BuildTicket(s, e.newID(), e.now())
	if err != nil {
		logger.Error("ticket build failed", zap.Error(err))
		return nil, err
	}
	if e.embedder == nil || e.tickets == nil {
		return nil, errors.New("ticket collaborators not configured")
	}

	vector, err := e.embedder.Embed(ctx, ticket.Subject+" "+ticket.Description)
	if err != nil {
		logger.Error("ticket embedding failed", zap.Error(err))
		return nil, err
	}
	stored, err := e.tickets.Store(ctx, ticket, vector)
	if err != nil {
		logger.Error("ticket store failed", zap.Error(err))
		return nil, err
	}

	s.TicketGenerated = true
	s.TicketID = stored.ID
	s.CurrentStep = domain.StepComplete
	s.IsComplete = true
	logger.Info("ticket generated", zap.String("ticket_id", stored.ID))
	e.metrics.RecordTicket()
	return stored, nil
}

func (e *DialogueEngine) publish(ctx context.Context, before, after *domain.Session, turn workflow.Turn, ticket *domain.Ticket, logger *zap.Logger) {
	if e.dispatcher == nil {
		return
	}
	now := e.now()
	emit := func(eventType events.EventType, payload interface{}) {
		err := e.dispatcher.Publish(ctx, events.Event{
			ID:        e.newID(),
			Type:      eventType,
			SessionID: after.ID,
			UserID:    after.UserID,
			Timestamp: now,
			Payload:   payload,
		})
		if err != nil {
			logger.Warn("event handler failed", zap.String("event_type", string(eventType)), zap.Error(err))
		}
	}

	emit(events.EventTurnProcessed, events.TurnProcessedPayload{
		FromStep: turn.From,
		ToStep:   after.CurrentStep,
		Before:   before,
		After:    after.Clone(),
	})
	if ticket != nil {
		emit(events.EventTicketGenerated, events.TicketGeneratedPayload{
			TicketID:         ticket.ID,
			Subject:          ticket.Subject,
			RequesterEmail:   ticket.RequesterEmail,
			EmploymentStatus: after.Flags.EmploymentStatus,
		})
	}
	if after.IsComplete && (before == nil || !before.IsComplete) {
		emit(events.EventSessionCompleted, events.SessionCompletedPayload{
			TicketGenerated: after.TicketGenerated,
			TicketID:        after.TicketID,
		})
	}
}

func (e *DialogueEngine) result(s *domain.Session, response string) *TurnResult {
	return &TurnResult{
		ResponseText:  response,
		IsComplete:    s.IsComplete,
		CurrentStep:   s.CurrentStep,
		CollectedData: s.MemberDetails(),
		SessionID:     s.ID,
	}
}

// GetSessionSnapshot returns the persisted session.
func (e *DialogueEngine) GetSessionSnapshot(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := e.store.Load(ctx, sessionID)
	if errors.Is(err, repository.ErrSessionNotFound) {
		return nil, errorutil.NewNotFound("session", map[string]any{"session_id": sessionID})
	}
	if err != nil {
		return nil, errorutil.NewSessionStoreError(err)
	}
	return session, nil
}

// GetTicket returns the ticket generated for a session.
func (e *DialogueEngine) GetTicket(ctx context.Context, sessionID string) (*domain.Ticket, error) {
	if e.tickets == nil {
		return nil, errorutil.NewNotFound("ticket", map[string]any{"session_id": sessionID})
	}
	ticket, err := e.tickets.GetBySession(ctx, sessionID)
	if errors.Is(err, repository.ErrTicketNotFound) {
		return nil, errorutil.NewNotFound("ticket", map[string]any{"session_id": sessionID})
	}
	if err != nil {
		return nil, errorutil.NewInternalError(err)
	}
	return ticket, nil
}

func turnFingerprint(turnID, utterance string) string {
	sum := blake2b.Sum256([]byte(turnID + "\x00" + utterance))
	return hex.EncodeToString(sum[:])
}
