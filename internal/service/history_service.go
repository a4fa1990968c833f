package service

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	jsonpatch "github.com/evanphx/json-patch/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/enrollment-service/internal/domain"
	"github.com/spec-kit/enrollment-service/internal/events"
	"github.com/spec-kit/enrollment-service/internal/repository"
)

// HistoryService records an audit entry for every persisted turn. Each entry holds the
// RFC 7386 merge patch that turns the previous session snapshot into the new one.
type HistoryService struct {
	dispatcher events.Dispatcher
	history    repository.SessionHistoryRepository
	logger     *zap.Logger
}

// NewHistoryService creates the service.
func NewHistoryService(dispatcher events.Dispatcher, history repository.SessionHistoryRepository, logger *zap.Logger) *HistoryService {
	return &HistoryService{dispatcher: dispatcher, history: history, logger: logger}
}

// RegisterHandlers subscribes to events.
func (h *HistoryService) RegisterHandlers() {
	if h.dispatcher == nil || h.history == nil {
		return
	}
	h.dispatcher.Subscribe(events.EventTurnProcessed, h.handleTurnProcessed)
}

func (h *HistoryService) handleTurnProcessed(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TurnProcessedPayload)
	if !ok || payload.After == nil {
		return fmt.Errorf("turn_processed: unexpected payload %T", event.Payload)
	}
	patch, err := SessionMergePatch(payload.Before, payload.After)
	if err != nil {
		return err
	}
	entry := &domain.SessionHistory{
		SessionID:  event.SessionID,
		FromStep:   payload.FromStep,
		ToStep:     payload.ToStep,
		MergePatch: patch,
	}
	if err := h.history.Create(ctx, entry); err != nil {
		h.logger.Warn("session history not recorded", zap.String("session_id", event.SessionID), zap.Error(err))
		return err
	}
	return nil
}

// SessionMergePatch diffs two session snapshots. A nil before diffs against an empty object.
func SessionMergePatch(before, after *domain.Session) ([]byte, error) {
	original := []byte("{}")
	if before != nil {
		data, err := sonic.Marshal(before)
		if err != nil {
			return nil, fmt.Errorf("encode previous session: %w", err)
		}
		original = data
	}
	modified, err := sonic.Marshal(after)
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}
	patch, err := jsonpatch.CreateMergePatch(original, modified)
	if err != nil {
		return nil, fmt.Errorf("create merge patch: %w", err)
	}
	return patch, nil
}
