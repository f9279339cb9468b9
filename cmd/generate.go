package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizbot/internal/quizgen"
)

var generateCmd = &cobra.Command{
	Use:   "generate <file|->",
	Short: "Generate a quiz from a text file",
	Long: `Generate quiz questions from a plain-text document.

The text is sent to Gemini first. DeepSeek, Groq and Claude are tried in
that order when Gemini is not configured or keeps failing. Usage of every
successful call is recorded in the local ledger (see "quizbot llm usage").`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	addRequestFlags(generateCmd)
	generateCmd.Flags().Bool("json", false, "Print the quiz as JSON")
	generateCmd.Flags().Bool("stats", false, "Print generation counters to stderr afterwards")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	showStats, _ := cmd.Flags().GetBool("stats")

	req, err := requestFromFlags(cmd, args)
	if err != nil {
		return err
	}

	env, err := newAppEnv(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	resp, genErr := env.gen.Generate(cmd.Context(), req)
	if showStats {
		printStats(os.Stderr, env.gen.Stats())
	}
	if genErr != nil {
		fmt.Fprintln(os.Stderr, quizgen.UserMessage(genErr))
		return genErr
	}

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}
	printQuiz(out, resp)
	return nil
}
