package quiz

import (
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/abhisek/quizbot/internal/llm"
	"github.com/abhisek/quizbot/internal/llmjson"
)

var ErrNoValidQuestions = errors.New("no question matched the expected shape")

// DecodeQuestions turns parsed question elements into typed questions of
// type t. Elements failing schema validation are dropped. When elements
// were present but none survived, the result is an *llmjson.ParseError
// so the caller treats it like any unparseable reply. At most count
// questions are returned; count <= 0 keeps all of them.
func DecodeQuestions(raw []json.RawMessage, t QuestionType, count int, logger *zap.Logger) ([]Question, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	out := make([]Question, 0, len(raw))
	var lastErr error
	for i, elem := range raw {
		q, err := decodeOne(elem, t)
		if err != nil {
			logger.Warn("dropping invalid question",
				zap.Int("index", i),
				zap.String("type", string(t)),
				zap.Error(err))
			lastErr = err
			continue
		}
		out = append(out, q)
	}

	if len(out) == 0 && len(raw) > 0 {
		return nil, &llmjson.ParseError{
			Snippet: snippet(raw[0]),
			Err:     fmt.Errorf("%w: %v", ErrNoValidQuestions, lastErr),
		}
	}
	if count > 0 && len(out) > count {
		out = out[:count]
	}
	return out, nil
}

func decodeOne(elem json.RawMessage, t QuestionType) (Question, error) {
	if err := llm.ValidateJSON(SchemaFor(t), elem); err != nil {
		return Question{}, err
	}

	if t == TypeOpen {
		var o OpenQuestion
		if err := json.Unmarshal(elem, &o); err != nil {
			return Question{}, err
		}
		if o.AcceptableAnswers == nil {
			o.AcceptableAnswers = []string{}
		}
		return Question{Type: t, Open: &o}, nil
	}

	var p PollQuestion
	if err := json.Unmarshal(elem, &p); err != nil {
		return Question{}, err
	}
	return Question{Type: t, Poll: &p}, nil
}

func snippet(raw json.RawMessage) string {
	r := []rune(string(raw))
	if len(r) > llmjson.SnippetLimit {
		r = r[:llmjson.SnippetLimit]
	}
	return string(r)
}
