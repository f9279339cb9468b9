package llmjson

import (
	"encoding/json"
	"strings"
)

// RecoverQuestions salvages the complete objects of a "questions" array
// whose enclosing document does not parse, typically because the reply
// was cut off mid-element. Elements are taken in order until one fails
// to close. A closed element that is not valid JSON aborts recovery and
// nil is returned.
func RecoverQuestions(s string) []json.RawMessage {
	open := questionsArray(s)
	if open < 0 {
		return nil
	}

	var out []json.RawMessage
	i := open + 1
	for {
		i = skipSeparators(s, i)
		if i >= len(s) || s[i] != '{' {
			break
		}
		end := matchClose(s, i)
		if end < 0 {
			break
		}
		elem := Sanitize(s[i : end+1])
		if !json.Valid([]byte(elem)) {
			return nil
		}
		out = append(out, json.RawMessage(elem))
		i = end + 1
	}
	return out
}

// questionsArray returns the index of the '[' opening the value of a
// "questions" key, or -1. Only whitespace and the colon may separate the
// key from the bracket.
func questionsArray(s string) int {
	const key = `"questions"`
	for from := 0; ; {
		k := strings.Index(s[from:], key)
		if k < 0 {
			return -1
		}
		i := skipSpace(s, from+k+len(key))
		if i < len(s) && s[i] == ':' {
			if i = skipSpace(s, i+1); i < len(s) && s[i] == '[' {
				return i
			}
		}
		from += k + len(key)
	}
}

func skipSeparators(s string, i int) int {
	for i < len(s) && (isSpace(s[i]) || s[i] == ',') {
		i++
	}
	return i
}
