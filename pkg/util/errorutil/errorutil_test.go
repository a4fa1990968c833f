package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
)

func TestToDomainError(t *testing.T) {
	cause := errors.New("redis: connection refused")
	wrapped := fmt.Errorf("load session: %w", NewSessionStoreError(cause))

	de := ToDomainError(wrapped)
	if de.Code != CodeSessionStoreUnavailable || de.HTTPStatus != http.StatusServiceUnavailable {
		t.Fatalf("unexpected mapping %+v", de)
	}
	if de.Message != ApologyMessage {
		t.Fatalf("expected apology message, got %q", de.Message)
	}
	if !errors.Is(wrapped, cause) {
		t.Fatalf("expected cause to stay reachable")
	}

	if got := ToDomainError(pgx.ErrNoRows); got.Code != CodeNotFound {
		t.Fatalf("expected NOT_FOUND for no rows, got %s", got.Code)
	}
	if got := ToDomainError(errors.New("boom")); got.Code != CodeInternal || got.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal error, got %+v", got)
	}
	if ToDomainError(nil) != nil {
		t.Fatalf("expected nil for nil error")
	}
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("turn: %w", NewTicketGenerationError(errors.New("embed failed")))
	if !HasCode(err, CodeTicketGenerationFailed) {
		t.Fatalf("expected ticket generation code")
	}
	if HasCode(err, CodeSessionStoreUnavailable) {
		t.Fatalf("unexpected session store code")
	}
}
