// Package embedding turns ticket text into vectors for the ticket sink.
package embedding

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino/components/embedding"
	"go.uber.org/zap"

	"github.com/spec-kit/enrollment-service/internal/config"
)

// ErrEmptyEmbedding is returned when the provider answers without a vector.
var ErrEmptyEmbedding = errors.New("embedding provider returned no vectors")

// Service embeds single texts through any eino embedder.
type Service struct {
	embedder embedding.Embedder
}

// NewService wraps embedder.
func NewService(embedder embedding.Embedder) *Service {
	return &Service{embedder: embedder}
}

// New selects the provider configured in cfg.
func New(cfg config.EmbeddingConfig, logger *zap.Logger) (*Service, error) {
	switch cfg.Provider {
	case "openai":
		logger.Info("using openai embeddings", zap.String("model", cfg.Model))
		return NewService(NewOpenAIEmbedder(cfg.APIKey, cfg.BaseURL, cfg.Model)), nil
	case "local", "":
		logger.Warn("embedding provider not configured; using local hashed embeddings")
		return NewService(NewHashEmbedder(cfg.Dimensions)), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}

// Embed returns the vector for text.
func (s *Service) Embed(ctx context.Context, text string) ([]float64, error) {
	vectors, err := s.embedder.EmbedStrings(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("embed text: %w", err)
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil, ErrEmptyEmbedding
	}
	return vectors[0], nil
}
