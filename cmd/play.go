package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizbot/internal/quiz"
	"github.com/abhisek/quizbot/internal/quizgen"
)

var playCmd = &cobra.Command{
	Use:   "play <file|->",
	Short: "Generate a quiz and answer it in the terminal",
	Long: `Generate a quiz from a text file and answer it question by question.

Poll and tfng questions take the option number or its text. Open questions
take a typed answer. A blank line skips the question.`,
	Args: cobra.ExactArgs(1),
	RunE: runPlay,
}

func init() {
	addRequestFlags(playCmd)
	playCmd.Flags().String("answers", "", "Read answers from this file instead of the terminal")
}

func runPlay(cmd *cobra.Command, args []string) error {
	req, err := requestFromFlags(cmd, args)
	if err != nil {
		return err
	}

	var answers io.Reader = cmd.InOrStdin()
	if args[0] == "-" {
		answers = strings.NewReader("")
	}
	if path, _ := cmd.Flags().GetString("answers"); path != "" {
		text, err := readSource(cmd.InOrStdin(), path)
		if err != nil {
			return err
		}
		answers = strings.NewReader(text)
	}

	env, err := newAppEnv(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Generating %d %s questions...\n\n", req.Count, req.QuestionType)

	resp, err := env.gen.Generate(cmd.Context(), req)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), quizgen.UserMessage(err))
		return err
	}

	correct, asked := playQuiz(out, bufio.NewScanner(answers), resp)
	fmt.Fprintf(out, "── Summary: %d/%d correct ──\n", correct, asked)
	return nil
}

// playQuiz asks each question, reading one answer line per question. It
// stops early when input runs out and returns the score.
func playQuiz(out io.Writer, scanner *bufio.Scanner, resp *quiz.Response) (correct, asked int) {
	total := len(resp.Questions)
	for i, q := range resp.Questions {
		fmt.Fprintf(out, "── Question %d/%d ──\n", i+1, total)
		fmt.Fprintln(out, q.Text())
		if q.Poll != nil {
			for j, opt := range q.Poll.Options {
				fmt.Fprintf(out, "  %d) %s\n", j+1, opt)
			}
		}

		fmt.Fprint(out, "\nYour answer: ")
		if !scanner.Scan() {
			fmt.Fprintln(out, "\n(input closed)")
			break
		}
		asked++
		answer := strings.TrimSpace(scanner.Text())
		if answer == "" {
			fmt.Fprintln(out, "(skipped)")
			fmt.Fprintln(out)
			continue
		}

		if quiz.CheckAnswer(q, answer) {
			correct++
			fmt.Fprintln(out, "\033[32m✓ Correct!\033[0m")
		} else {
			fmt.Fprintf(out, "\033[31m✗ Wrong.\033[0m Answer: %s\n", correctAnswer(q))
		}

		if e := q.Explanation(); e != "" {
			fmt.Fprintf(out, "Explanation: %s\n", e)
		}
		fmt.Fprintln(out)
	}
	return correct, asked
}

func correctAnswer(q quiz.Question) string {
	switch {
	case q.Poll != nil && q.Poll.CorrectIndex >= 0 && q.Poll.CorrectIndex < len(q.Poll.Options):
		return fmt.Sprintf("%d) %s", q.Poll.CorrectIndex+1, q.Poll.Options[q.Poll.CorrectIndex])
	case q.Open != nil:
		return q.Open.Answer
	}
	return ""
}
