package quiz

import (
	"fmt"
	"strings"
)

// MaxAvoidQuestions is how many of the most recent avoid-list entries
// make it into the prompt.
const MaxAvoidQuestions = 30

const systemPrompt = `You are an assistant that writes quiz questions strictly from a source text supplied by the user.

Rules:
- Every question must be answerable from the source text alone. Do not use outside knowledge.
- Write the questions, options, answers and explanations in the requested language.
- Reply with a single JSON object of the form {"questions": [...]} and nothing else. No markdown, no code fences, no commentary.
- If the source text does not contain enough material for quiz questions, reply with {"questions": []}.
- Do not repeat or paraphrase any question from the "already asked" list.`

var languageNames = map[Language]string{
	LanguageEnglish: "English",
	LanguageUzbek:   "Uzbek",
	LanguageRussian: "Russian",
}

var difficultyGuidance = map[Difficulty]string{
	DifficultyEasy: "easy: direct recall of facts stated plainly in the text",
	DifficultyExam: "exam: the level of a typical school or university exam, mixing recall and understanding",
	DifficultyHard: "hard: questions that require combining several parts of the text or careful reading",
}

var formatGuidance = map[QuestionType]string{
	TypePoll: `Each question has exactly 4 options and exactly one is correct. Distractors must be plausible.
Element shape: {"question": string, "options": [string, string, string, string], "correctIndex": 0-3, "explanation": string}`,
	TypeTFNG: `Each question is a statement to judge against the text. Options are exactly ["True", "False", "Not Given"] in that order, translated into the requested language.
Element shape: {"question": string, "options": [string, string, string], "correctIndex": 0-2, "explanation": string}`,
	TypeOpen: `Each question is answered by typing a short answer of a few words. List common alternative spellings or phrasings in acceptableAnswers.
Element shape: {"question": string, "answer": string, "acceptableAnswers": [string], "explanation": string}`,
}

// BuildPrompt returns the system instruction and user message for req.
// text is the already-windowed source text.
func BuildPrompt(req Request, text string) (system, user string) {
	var b strings.Builder

	fmt.Fprintf(&b, "Number of questions: %d\n", req.Count)
	fmt.Fprintf(&b, "Difficulty: %s\n", difficultyGuidance[req.Difficulty])
	fmt.Fprintf(&b, "Language: %s\n", languageName(req.Language))
	fmt.Fprintf(&b, "Question type: %s\n", req.QuestionType)
	b.WriteString(formatGuidance[req.QuestionType])
	b.WriteString("\n")

	b.WriteString("\nAlready asked:\n")
	b.WriteString(buildAvoidList(req.AvoidQuestions, MaxAvoidQuestions))

	b.WriteString("\n\nSource text:\n<<<\n")
	b.WriteString(strings.TrimSpace(text))
	b.WriteString("\n>>>")

	return systemPrompt, b.String()
}

func languageName(l Language) string {
	if name, ok := languageNames[l]; ok {
		return name
	}
	return string(l)
}

// buildAvoidList formats the avoid list, keeping only the most recent
// max entries. Returns "None" if the list is empty.
func buildAvoidList(questions []string, max int) string {
	if len(questions) == 0 {
		return "None"
	}

	if max > 0 && len(questions) > max {
		questions = questions[len(questions)-max:]
	}

	var b strings.Builder
	for i, q := range questions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q)
	}
	return strings.TrimRight(b.String(), "\n")
}
