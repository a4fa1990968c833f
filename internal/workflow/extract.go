package workflow

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/spec-kit/enrollment-service/internal/domain"
)

var (
	yesWords = map[string]struct{}{"yes": {}, "y": {}, "yeah": {}, "yep": {}}
	noWords  = map[string]struct{}{"no": {}, "n": {}, "nope": {}, "nah": {}}

	// leading words stripped before a name is considered
	greetingWords = map[string]struct{}{
		"hi": {}, "hello": {}, "hey": {}, "hiya": {}, "howdy": {}, "yo": {}, "greetings": {},
		"there": {}, "good": {}, "morning": {}, "afternoon": {}, "evening": {}, "day": {},
	}
	introPhrases = [][]string{
		{"my", "name", "is"}, {"this", "is"}, {"i", "am"}, {"i'm"}, {"im"}, {"it's"}, {"its"},
	}

	// a name containing any of these tokens is a request, not a name
	metaTokens = map[string]struct{}{
		"enroll": {}, "enrol": {}, "enrolling": {}, "enrollment": {}, "enrolment": {},
		"register": {}, "registration": {}, "join": {}, "joining": {}, "membership": {},
		"signup": {}, "help": {}, "start": {}, "begin": {}, "want": {}, "like": {},
		"please": {}, "need": {}, "interested": {},
	}
	metaPhrases = []string{"sign me up", "sign up"}

	// replies that carry no name on their own
	fillerWords = map[string]struct{}{
		"yes": {}, "no": {}, "ok": {}, "okay": {}, "thanks": {}, "thank": {}, "you": {},
	}

	choiceCode = regexp.MustCompile(`^\(?([a-dA-D])(?:[).:]\s*.*)?$`)

	employmentCodes = map[string]domain.EmploymentStatus{
		"a": domain.EmploymentFullTime,
		"b": domain.EmploymentAdvisor,
		"c": domain.EmploymentContractor,
		"d": domain.EmploymentSelfEmployed,
	}
)

// employmentKeywords is scanned in order; keywords are matched on lower-cased input.
var employmentKeywords = []struct {
	status   domain.EmploymentStatus
	keywords []string
}{
	{domain.EmploymentSelfEmployed, []string{"self-employed", "self employed", "selfemployed", "freelance", "founder", "own business", "owner"}},
	{domain.EmploymentFullTime, []string{"full-time", "full time", "fulltime", "employee", "salaried"}},
	{domain.EmploymentAdvisor, []string{"advisor", "adviser", "advisory"}},
	{domain.EmploymentContractor, []string{"contractor", "contract", "consultant"}},
}

// ExtractFreeText accepts any non-empty stripped string verbatim.
func ExtractFreeText(utterance string) (string, bool) {
	text := strings.TrimSpace(utterance)
	return text, text != ""
}

// ExtractName returns the name offered in utterance. Leading greetings ("hi there",
// "good morning") and introductions ("my name is", "I'm") are stripped; what remains must be
// longer than one character, must not be a filler reply and must not contain a meta-phrase
// such as "I want to enroll" or "sign me up".
func ExtractName(utterance string) (string, bool) {
	words := strings.Fields(utterance)
	norm := make([]string, len(words))
	for i, w := range words {
		norm[i] = strings.ToLower(strings.TrimFunc(w, unicode.IsPunct))
	}

	start := 0
	for start < len(norm) {
		if norm[start] == "" {
			start++
			continue
		}
		if _, greeting := greetingWords[norm[start]]; greeting {
			start++
			continue
		}
		if n := introLength(norm[start:]); n > 0 {
			start += n
			continue
		}
		break
	}
	words, norm = words[start:], norm[start:]

	joined := " " + strings.Join(norm, " ") + " "
	for _, phrase := range metaPhrases {
		if strings.Contains(joined, " "+phrase+" ") {
			return "", false
		}
	}
	filler := true
	for _, w := range norm {
		if _, meta := metaTokens[w]; meta {
			return "", false
		}
		if _, f := fillerWords[w]; !f && w != "" {
			filler = false
		}
	}
	if filler {
		return "", false
	}

	name := strings.TrimFunc(strings.Join(words, " "), func(r rune) bool {
		return unicode.IsPunct(r) && r != '.'
	})
	name = strings.TrimRight(name, ".")
	if len([]rune(name)) <= 1 {
		return "", false
	}
	return name, true
}

func introLength(norm []string) int {
	for _, phrase := range introPhrases {
		if len(norm) < len(phrase) {
			continue
		}
		matched := true
		for i, w := range phrase {
			if norm[i] != w {
				matched = false
				break
			}
		}
		if matched {
			return len(phrase)
		}
	}
	return 0
}

// ExtractEmail accepts the utterance when it contains '@'.
func ExtractEmail(utterance string) (string, bool) {
	text := strings.TrimSpace(utterance)
	if !strings.Contains(text, "@") {
		return "", false
	}
	return text, true
}

// ExtractYesNo tokenizes on whitespace and returns the polarity of the first token that is
// a recognised yes or no word.
func ExtractYesNo(utterance string) (answer bool, ok bool) {
	for _, token := range strings.Fields(strings.ToLower(utterance)) {
		token = strings.TrimFunc(token, unicode.IsPunct)
		if _, yes := yesWords[token]; yes {
			return true, true
		}
		if _, no := noWords[token]; no {
			return false, true
		}
	}
	return false, false
}

// ExtractEmploymentStatus matches a single letter code (A-D) first, then keyword synonyms.
// Keywords pointing at more than one status are ambiguous and rejected.
func ExtractEmploymentStatus(utterance string) (domain.EmploymentStatus, bool) {
	text := strings.TrimSpace(utterance)
	if text == "" {
		return "", false
	}
	if m := choiceCode.FindStringSubmatch(text); m != nil {
		return employmentCodes[strings.ToLower(m[1])], true
	}

	lower := strings.ToLower(text)
	var found domain.EmploymentStatus
	for _, group := range employmentKeywords {
		for _, kw := range group.keywords {
			if !strings.Contains(lower, kw) {
				continue
			}
			if found != "" && found != group.status {
				return "", false
			}
			found = group.status
			break
		}
	}
	return found, found != ""
}

// splitContact pulls an email token out of an opening utterance and returns the rest.
func splitContact(utterance string) (email, rest string) {
	var kept []string
	for _, token := range strings.Fields(utterance) {
		if email == "" && strings.Contains(token, "@") {
			email = strings.TrimRightFunc(token, func(r rune) bool { return r == '.' || r == ',' || r == ';' })
			continue
		}
		kept = append(kept, token)
	}
	return email, strings.TrimSpace(strings.TrimRight(strings.Join(kept, " "), ",;"))
}
