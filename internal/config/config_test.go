package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SESSION_STORE", "")
	t.Setenv("EMBEDDING_PROVIDER", "")
	t.Setenv("SESSION_TTL_HOURS", "")
	t.Setenv("SESSION_CODEC", "")
	t.Setenv("SESSION_LOCK_BACKEND", "")
	t.Setenv("EMBEDDING_DIMENSIONS", "")
	t.Setenv("SESSION_LOCK_TTL_SECONDS", "")
	t.Setenv("SESSION_TURN_TIMEOUT_MILLIS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Session.Store != "redis" || cfg.Session.Codec != "json" || cfg.Embedding.Provider != "local" {
		t.Fatalf("unexpected defaults %+v %+v", cfg.Session, cfg.Embedding)
	}
	if cfg.Session.TTL() != 72*time.Hour {
		t.Fatalf("unexpected ttl %v", cfg.Session.TTL())
	}
}

func TestLoadRejectsUnknownCodec(t *testing.T) {
	t.Setenv("SESSION_CODEC", "xml")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown codec")
	}
}

func TestLoadOpenAIRequiresKey(t *testing.T) {
	t.Setenv("EMBEDDING_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error when api key missing")
	}
}

func TestSessionDurations(t *testing.T) {
	s := SessionConfig{TTLHours: 0, LockTTLSeconds: 0, LockPollMillis: 10}
	if s.TTL() != 0 {
		t.Fatalf("expected no expiry")
	}
	if s.LockTTL() != 30*time.Second || s.LockPoll() != 10*time.Millisecond {
		t.Fatalf("unexpected lock durations %v %v", s.LockTTL(), s.LockPoll())
	}
	if s.TurnTimeout() != 0 {
		t.Fatalf("expected unbounded turn, got %v", s.TurnTimeout())
	}
	if got := (SessionConfig{TurnTimeoutMillis: 1500}).TurnTimeout(); got != 1500*time.Millisecond {
		t.Fatalf("unexpected turn timeout %v", got)
	}
}

func TestLoadTurnTimeoutMustFitLockLease(t *testing.T) {
	t.Setenv("SESSION_STORE", "")
	t.Setenv("SESSION_CODEC", "")
	t.Setenv("EMBEDDING_PROVIDER", "")
	t.Setenv("EMBEDDING_DIMENSIONS", "")
	t.Setenv("SESSION_LOCK_BACKEND", "redis")
	t.Setenv("SESSION_LOCK_TTL_SECONDS", "30")

	cases := []struct {
		turnMillis string
		ok         bool
	}{
		{"20000", true},
		{"29999", true},
		{"30000", false},
		{"45000", false},
		{"0", false},
	}
	for _, tc := range cases {
		t.Setenv("SESSION_TURN_TIMEOUT_MILLIS", tc.turnMillis)
		_, err := Load()
		if tc.ok && err != nil {
			t.Fatalf("turn timeout %sms: unexpected error %v", tc.turnMillis, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("turn timeout %sms: expected error with a 30s lease", tc.turnMillis)
		}
	}

	t.Setenv("SESSION_LOCK_BACKEND", "local")
	t.Setenv("SESSION_TURN_TIMEOUT_MILLIS", "0")
	if _, err := Load(); err != nil {
		t.Fatalf("local locks accept an unbounded turn: %v", err)
	}
}
