package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestRunCompletesConversation(t *testing.T) {
	lines := []string{"Jane jane@example.com", "yes", "D", "yes", "Acme Board"}
	for i := 0; i < 9; i++ {
		lines = append(lines, "Acme")
	}
	var out bytes.Buffer
	err := run([]string{"--codec", "cbor", "--dimensions", "8", "--session", "cli-1"}, strings.NewReader(strings.Join(lines, "\n")+"\n"), &out)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	got := out.String()
	for _, want := range []string{
		`"subject": "MP Enrollment - self-employed - Acme"`,
		`"session_id": "cli-1"`,
		`"board_positions": "Acme Board"`,
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %s in output:\n%s", want, got)
		}
	}
}

func TestRunEarlyExitHasNoTicket(t *testing.T) {
	var out bytes.Buffer
	input := "hello\nno\nself-employed\nno\n"
	if err := run(nil, strings.NewReader(input), &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "No ticket was generated") {
		t.Fatalf("expected early exit without ticket, got:\n%s", out.String())
	}
}

func TestRunRejectsUnknownCodec(t *testing.T) {
	if err := run([]string{"--codec", "xml"}, strings.NewReader(""), &bytes.Buffer{}); err == nil {
		t.Fatalf("expected codec error")
	}
}
