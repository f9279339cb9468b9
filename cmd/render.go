package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/abhisek/quizbot/internal/llm"
	"github.com/abhisek/quizbot/internal/quiz"
	"github.com/abhisek/quizbot/internal/quizgen"
)

// printQuiz writes a human-readable quiz with answers marked.
func printQuiz(w io.Writer, resp *quiz.Response) {
	for i, q := range resp.Questions {
		fmt.Fprintf(w, "── Question %d/%d ──\n", i+1, len(resp.Questions))
		fmt.Fprintln(w, q.Text())
		switch {
		case q.Poll != nil:
			for j, opt := range q.Poll.Options {
				mark := " "
				if j == q.Poll.CorrectIndex {
					mark = "*"
				}
				fmt.Fprintf(w, " %s%d) %s\n", mark, j+1, opt)
			}
		case q.Open != nil:
			fmt.Fprintf(w, "  Answer: %s\n", q.Open.Answer)
			if len(q.Open.AcceptableAnswers) > 0 {
				fmt.Fprintf(w, "  Also accepted: %s\n", strings.Join(q.Open.AcceptableAnswers, "; "))
			}
		}
		if e := q.Explanation(); e != "" {
			fmt.Fprintf(w, "  Explanation: %s\n", e)
		}
		fmt.Fprintln(w)
	}
}

// printStats writes the per-provider generation counters.
func printStats(w io.Writer, s quizgen.Stats) {
	names := make([]string, 0, len(s.Providers))
	for name := range s.Providers {
		names = append(names, string(name))
	}
	sort.Strings(names)

	fmt.Fprintf(w, "%-10s  %8s  %8s  %8s\n", "Provider", "Attempts", "Success", "Fail")
	fmt.Fprintln(w, strings.Repeat("─", 40))
	for _, name := range names {
		c := s.For(llm.ProviderName(name))
		fmt.Fprintf(w, "%-10s  %8d  %8d  %8d\n", name, c.Attempts, c.Success, c.Fail)
	}
	if s.LastProvider != "" {
		fmt.Fprintf(w, "\nLast: %s %s\n", s.LastProvider, s.LastModel)
	}
	if s.LastError != "" {
		fmt.Fprintf(w, "Last error: %s\n", truncate(s.LastError, 200))
	}
	fmt.Fprintf(w, "Gate: %d/%d in flight, %d waiting\n", s.Gate.InFlight, s.Gate.Max, s.Gate.Waiting)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}
