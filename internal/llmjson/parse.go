package llmjson

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// SnippetLimit bounds the diagnostic text carried by a ParseError.
const SnippetLimit = 400

var errNoQuestions = errors.New(`no "questions" array`)

// ParseError is returned when neither a strict parse nor recovery
// produced a questions array.
type ParseError struct {
	Snippet string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse model output: %v (near %q)", e.Err, e.Snippet)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Document is the parsed envelope. Questions hold the raw elements of
// the "questions" array; decoding them into typed questions is left to
// the caller. Recovered reports that the array was salvaged from a
// truncated or malformed reply.
type Document struct {
	Questions []json.RawMessage
	Recovered bool
}

// Parse sanitizes raw and decodes its questions array, falling back to
// element-by-element recovery when the whole reply does not parse.
func Parse(raw string) (*Document, error) {
	unfenced := stripFences(strings.TrimSpace(strings.TrimPrefix(raw, bom)))
	clean := Sanitize(raw)

	questions, err := strictQuestions(clean)
	if err == nil && !holdsObjects(questions) {
		// A bracketed aside in leading prose ("here are [3] questions")
		// can be the first balanced value. The reply proper is the
		// object that follows it.
		if i := strings.IndexByte(unfenced, '{'); i >= 0 {
			clean = Sanitize(unfenced[i:])
			questions, err = strictQuestions(clean)
		}
	}
	if err == nil {
		return &Document{Questions: questions}, nil
	}

	if recovered := RecoverQuestions(unfenced); len(recovered) > 0 {
		return &Document{Questions: recovered, Recovered: true}, nil
	}

	return nil, &ParseError{Snippet: truncate(clean, SnippetLimit), Err: err}
}

// strictQuestions accepts {"questions": [...]} or a bare top-level array.
func strictQuestions(s string) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace([]byte(s))
	if len(trimmed) == 0 {
		return nil, errors.New("empty output")
	}

	if trimmed[0] == '[' {
		var arr []json.RawMessage
		if err := json.Unmarshal(trimmed, &arr); err != nil {
			return nil, err
		}
		return nonNil(arr), nil
	}

	var envelope struct {
		Questions *[]json.RawMessage `json:"questions"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, err
	}
	if envelope.Questions == nil {
		return nil, errNoQuestions
	}
	return nonNil(*envelope.Questions), nil
}

// holdsObjects reports whether qs is empty or has at least one object
// element.
func holdsObjects(qs []json.RawMessage) bool {
	if len(qs) == 0 {
		return true
	}
	for _, q := range qs {
		if t := bytes.TrimSpace(q); len(t) > 0 && t[0] == '{' {
			return true
		}
	}
	return false
}

func nonNil(qs []json.RawMessage) []json.RawMessage {
	if qs == nil {
		return []json.RawMessage{}
	}
	return qs
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
