package workflow

import (
	"testing"

	"github.com/spec-kit/enrollment-service/internal/domain"
)

func TestExtractYesNo(t *testing.T) {
	cases := []struct {
		in     string
		answer bool
		ok     bool
	}{
		{"yes", true, true},
		{"Yes!", true, true},
		{"  yeah sure ", true, true},
		{"Y", true, true},
		{"yep", true, true},
		{"no", false, true},
		{"Nope.", false, true},
		{"nah, not now", false, true},
		{"n", false, true},
		{"hi", false, false},
		{"I don't know", false, false},
		{"", false, false},
		{"maybe", false, false},
	}
	for _, tc := range cases {
		answer, ok := ExtractYesNo(tc.in)
		if ok != tc.ok || answer != tc.answer {
			t.Fatalf("ExtractYesNo(%q) = (%v, %v), want (%v, %v)", tc.in, answer, ok, tc.answer, tc.ok)
		}
	}
}

func TestExtractEmploymentStatus(t *testing.T) {
	cases := []struct {
		in   string
		want domain.EmploymentStatus
		ok   bool
	}{
		{"A", domain.EmploymentFullTime, true},
		{"b", domain.EmploymentAdvisor, true},
		{"(C)", domain.EmploymentContractor, true},
		{"D) Self-employed", domain.EmploymentSelfEmployed, true},
		{"I'm a full time employee", domain.EmploymentFullTime, true},
		{"advisor", domain.EmploymentAdvisor, true},
		{"a contractor", domain.EmploymentContractor, true},
		{"I run my own business, self employed", domain.EmploymentSelfEmployed, true},
		{"employee of a contractor", "", false},
		{"E", "", false},
		{"unemployed at the moment", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := ExtractEmploymentStatus(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("ExtractEmploymentStatus(%q) = (%q, %v), want (%q, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestExtractName(t *testing.T) {
	for _, rejected := range []string{
		"", "J", "hi", "Hello!", "hey", "hi there", "Good morning!",
		"I want to enroll",
		"Hello, I want to enroll",
		"Hi, I'd like to enroll please",
		"hey, sign me up",
		"I would like to join",
		"hello, yes",
		"my name is",
	} {
		if name, ok := ExtractName(rejected); ok {
			t.Fatalf("expected %q to be rejected as a name, got %q", rejected, name)
		}
	}

	cases := []struct{ input, want string }{
		{"  Jane Doe ", "Jane Doe"},
		{"Hi, I'm Jane Doe", "Jane Doe"},
		{"hello there, my name is Ana.", "Ana"},
		{"Good evening, this is J. R. Smith", "J. R. Smith"},
		{"O'Brien", "O'Brien"},
	}
	for _, tc := range cases {
		name, ok := ExtractName(tc.input)
		if !ok || name != tc.want {
			t.Fatalf("ExtractName(%q) = %q (%v), want %q", tc.input, name, ok, tc.want)
		}
	}
}

func TestExtractEmail(t *testing.T) {
	if _, ok := ExtractEmail("jane at example dot com"); ok {
		t.Fatalf("expected email without @ to be rejected")
	}
	email, ok := ExtractEmail(" jane@example.com ")
	if !ok || email != "jane@example.com" {
		t.Fatalf("unexpected email %q (%v)", email, ok)
	}
}

func TestExtractFreeText(t *testing.T) {
	if _, ok := ExtractFreeText("   "); ok {
		t.Fatalf("expected blank text to be rejected")
	}
	text, ok := ExtractFreeText(" None ")
	if !ok || text != "None" {
		t.Fatalf("unexpected text %q (%v)", text, ok)
	}
}
