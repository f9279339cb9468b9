package quiz

import "github.com/abhisek/quizbot/internal/llm"

func optionsSchema(name string, n int) *llm.Schema {
	return &llm.Schema{
		Name: name,
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"question": map[string]any{"type": "string", "minLength": 1},
				"options": map[string]any{
					"type":     "array",
					"items":    map[string]any{"type": "string", "minLength": 1},
					"minItems": n,
					"maxItems": n,
				},
				"correctIndex": map[string]any{"type": "integer", "minimum": 0, "maximum": n - 1},
				"explanation":  map[string]any{"type": "string"},
			},
			"required": []any{"question", "options", "correctIndex"},
		},
	}
}

// PollSchema validates one element of a poll quiz.
var PollSchema = optionsSchema("poll-question", 4)

// TFNGSchema validates one element of a True/False/Not Given quiz.
var TFNGSchema = optionsSchema("tfng-question", 3)

// OpenSchema validates one element of an open-answer quiz.
var OpenSchema = &llm.Schema{
	Name: "open-question",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"question": map[string]any{"type": "string", "minLength": 1},
			"answer":   map[string]any{"type": "string", "minLength": 1},
			"acceptableAnswers": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"explanation": map[string]any{"type": "string"},
		},
		"required": []any{"question", "answer", "acceptableAnswers"},
	},
}

// SchemaFor returns the element schema for t.
func SchemaFor(t QuestionType) *llm.Schema {
	switch t {
	case TypeOpen:
		return OpenSchema
	case TypeTFNG:
		return TFNGSchema
	default:
		return PollSchema
	}
}
