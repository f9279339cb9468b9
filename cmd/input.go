package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizbot/internal/quiz"
)

// addRequestFlags registers the flags shared by generate and play.
func addRequestFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("count", "n", 5, "Number of questions to generate")
	cmd.Flags().StringP("difficulty", "d", "exam", "Difficulty: easy, exam or hard")
	cmd.Flags().StringP("language", "l", "en", "Question language: en, uz or ru")
	cmd.Flags().StringP("type", "t", "poll", "Question type: poll, open or tfng")
	cmd.Flags().IntP("window", "w", 0, "Which window of an oversized text to use (0-based)")
	cmd.Flags().String("avoid", "", "File with questions to avoid, one per line")
}

// requestFromFlags reads the source text named by args (a file path or
// "-" for stdin) and builds a quiz.Request from the flags.
func requestFromFlags(cmd *cobra.Command, args []string) (quiz.Request, error) {
	count, _ := cmd.Flags().GetInt("count")
	difficulty, _ := cmd.Flags().GetString("difficulty")
	language, _ := cmd.Flags().GetString("language")
	qtype, _ := cmd.Flags().GetString("type")
	window, _ := cmd.Flags().GetInt("window")
	avoidPath, _ := cmd.Flags().GetString("avoid")

	text, err := readSource(cmd.InOrStdin(), args[0])
	if err != nil {
		return quiz.Request{}, err
	}

	req := quiz.Request{
		Text:         text,
		Count:        count,
		Difficulty:   quiz.Difficulty(strings.ToLower(difficulty)),
		Language:     quiz.Language(strings.ToLower(language)),
		QuestionType: quiz.QuestionType(strings.ToLower(qtype)),
		WindowIndex:  window,
	}
	if avoidPath != "" {
		b, err := os.ReadFile(avoidPath)
		if err != nil {
			return quiz.Request{}, fmt.Errorf("read avoid list: %w", err)
		}
		req.AvoidQuestions = nonEmptyLines(string(b))
	}
	if err := req.Validate(); err != nil {
		return quiz.Request{}, err
	}
	return req, nil
}

func readSource(stdin io.Reader, path string) (string, error) {
	var b []byte
	var err error
	if path == "-" {
		b, err = io.ReadAll(stdin)
	} else {
		b, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read source text: %w", err)
	}
	return string(b), nil
}

func nonEmptyLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
