package quiz

import (
	"strconv"
	"strings"
	"unicode"
)

// CheckAnswer reports whether input answers q correctly.
//
// Poll and tfng questions accept the 1-based option number or the option
// text. Open questions accept the answer or any acceptable answer,
// compared case-insensitively with punctuation and repeated whitespace
// ignored.
func CheckAnswer(q Question, input string) bool {
	input = strings.TrimSpace(input)
	if input == "" {
		return false
	}

	switch {
	case q.Poll != nil:
		return checkPoll(q.Poll, input)
	case q.Open != nil:
		return checkOpen(q.Open, input)
	}
	return false
}

func checkPoll(p *PollQuestion, input string) bool {
	if p.CorrectIndex < 0 || p.CorrectIndex >= len(p.Options) {
		return false
	}
	if idx, err := strconv.Atoi(input); err == nil {
		return idx-1 == p.CorrectIndex
	}
	return normalize(input) == normalize(p.Options[p.CorrectIndex])
}

func checkOpen(o *OpenQuestion, input string) bool {
	got := normalize(input)
	if got == "" {
		return false
	}
	if got == normalize(o.Answer) {
		return true
	}
	for _, a := range o.AcceptableAnswers {
		if got == normalize(a) {
			return true
		}
	}
	return false
}

// normalize lowercases s, drops punctuation and collapses whitespace.
func normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
