package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spec-kit/enrollment-service/internal/domain"
)

func TestMemoryTicketSinkIsIdempotentPerSession(t *testing.T) {
	ctx := context.Background()
	sink := NewMemoryTicketSink()

	if _, err := sink.GetBySession(ctx, "s"); !errors.Is(err, ErrTicketNotFound) {
		t.Fatalf("expected ErrTicketNotFound, got %v", err)
	}

	first := &domain.Ticket{ID: "t-1", SessionID: "s", Subject: "MP Enrollment - advisor - Acme", CreatedAt: time.Now().UTC()}
	stored, err := sink.Store(ctx, first, []float64{0.1, 0.2})
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if stored.ID != "t-1" {
		t.Fatalf("unexpected stored ticket %+v", stored)
	}

	second := &domain.Ticket{ID: "t-2", SessionID: "s", Subject: "other"}
	stored, err = sink.Store(ctx, second, []float64{0.9})
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if stored.ID != "t-1" || sink.Count() != 1 {
		t.Fatalf("expected the first ticket to win, got %+v (count %d)", stored, sink.Count())
	}
	if v, _ := sink.Vector("s"); len(v) != 2 {
		t.Fatalf("expected original vector, got %v", v)
	}
}

func TestMemoryTicketSinkDoesNotShareMemberDetails(t *testing.T) {
	ctx := context.Background()
	sink := NewMemoryTicketSink()

	input := &domain.Ticket{ID: "t-1", SessionID: "s", MemberDetails: map[string]string{"company": "Acme"}}
	stored, err := sink.Store(ctx, input, nil)
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	input.MemberDetails["company"] = "changed by caller"
	stored.MemberDetails["company"] = "changed via store result"

	read, err := sink.GetBySession(ctx, "s")
	if err != nil {
		t.Fatalf("GetBySession: %v", err)
	}
	read.MemberDetails["company"] = "changed via read"

	again, err := sink.GetBySession(ctx, "s")
	if err != nil {
		t.Fatalf("GetBySession: %v", err)
	}
	if again.MemberDetails["company"] != "Acme" {
		t.Fatalf("stored ticket was mutated: %v", again.MemberDetails)
	}
}
