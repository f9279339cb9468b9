// Package quiz holds the quiz data model and the pieces around a model
// call that do not touch the network: prompt construction, text
// windowing, decoding of parsed questions and answer checking.
package quiz

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Difficulty of the generated questions.
type Difficulty string

const (
	DifficultyEasy Difficulty = "easy"
	DifficultyExam Difficulty = "exam"
	DifficultyHard Difficulty = "hard"
)

// Language the questions are written in.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageUzbek   Language = "uz"
	LanguageRussian Language = "ru"
)

// QuestionType selects the question variant.
type QuestionType string

const (
	// TypePoll is a four-option multiple choice question.
	TypePoll QuestionType = "poll"

	// TypeOpen is a typed free-text answer.
	TypeOpen QuestionType = "open"

	// TypeTFNG is a True / False / Not Given question, delivered as a
	// three-option poll.
	TypeTFNG QuestionType = "tfng"
)

// MaxCount caps the number of questions one request may ask for.
const MaxCount = 50

// Request is one generation request. It is built by the caller and not
// modified afterwards.
type Request struct {
	Text           string
	Count          int
	Difficulty     Difficulty
	Language       Language
	AvoidQuestions []string
	QuestionType   QuestionType

	// WindowIndex picks which chunk of an oversized Text is sent to the
	// model. See Window.
	WindowIndex int
}

var ErrEmptyText = errors.New("source text is empty")

// Validate reports the first problem with r.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return ErrEmptyText
	}
	if r.Count < 1 || r.Count > MaxCount {
		return fmt.Errorf("count must be between 1 and %d, got %d", MaxCount, r.Count)
	}
	switch r.Difficulty {
	case DifficultyEasy, DifficultyExam, DifficultyHard:
	default:
		return fmt.Errorf("unknown difficulty %q", r.Difficulty)
	}
	switch r.Language {
	case LanguageEnglish, LanguageUzbek, LanguageRussian:
	default:
		return fmt.Errorf("unknown language %q", r.Language)
	}
	switch r.QuestionType {
	case TypePoll, TypeOpen, TypeTFNG:
	default:
		return fmt.Errorf("unknown question type %q", r.QuestionType)
	}
	return nil
}

// PollQuestion is answered by picking one of its options. Poll questions
// carry four options, tfng questions three.
type PollQuestion struct {
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
	Explanation  string   `json:"explanation,omitempty"`
}

// OpenQuestion is answered by typing text.
type OpenQuestion struct {
	Question          string   `json:"question"`
	Answer            string   `json:"answer"`
	AcceptableAnswers []string `json:"acceptableAnswers,omitempty"`
	Explanation       string   `json:"explanation,omitempty"`
}

// Question holds exactly one variant.
type Question struct {
	Type QuestionType
	Poll *PollQuestion
	Open *OpenQuestion
}

// Text returns the question prompt of whichever variant is set.
func (q Question) Text() string {
	switch {
	case q.Poll != nil:
		return q.Poll.Question
	case q.Open != nil:
		return q.Open.Question
	}
	return ""
}

// Explanation returns the explanation of whichever variant is set.
func (q Question) Explanation() string {
	switch {
	case q.Poll != nil:
		return q.Poll.Explanation
	case q.Open != nil:
		return q.Open.Explanation
	}
	return ""
}

// MarshalJSON writes the variant's fields with a "type" discriminator.
func (q Question) MarshalJSON() ([]byte, error) {
	switch {
	case q.Poll != nil:
		return json.Marshal(struct {
			Type QuestionType `json:"type"`
			*PollQuestion
		}{q.Type, q.Poll})
	case q.Open != nil:
		return json.Marshal(struct {
			Type QuestionType `json:"type"`
			*OpenQuestion
		}{q.Type, q.Open})
	}
	return nil, errors.New("quiz: question has no variant")
}

// Response is the result of a generation call. Questions is never nil on
// success.
type Response struct {
	Questions []Question `json:"questions"`
}

// Texts returns the prompt of every question, for feeding back into a
// later request's avoid list.
func (r *Response) Texts() []string {
	out := make([]string, 0, len(r.Questions))
	for _, q := range r.Questions {
		out = append(out, q.Text())
	}
	return out
}
