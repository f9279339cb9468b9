package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizbot/internal/llm"
	"github.com/abhisek/quizbot/internal/store"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect LLM providers and recorded usage",
}

var llmUsageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show aggregated token usage and estimated cost per model",
	RunE: func(cmd *cobra.Command, args []string) error {
		since, _ := cmd.Flags().GetDuration("since")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		var from time.Time
		if since > 0 {
			from = time.Now().Add(-since)
		}
		rows, err := s.UsageRepo().Summary(cmd.Context(), from)
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}
		printUsage(cmd.OutOrStdout(), rows)
		return nil
	},
}

var llmRecentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List recent successful generation calls",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		rows, err := s.UsageRepo().Recent(cmd.Context(), limit)
		if err != nil {
			return fmt.Errorf("query recent usage: %w", err)
		}
		printRecent(cmd.OutOrStdout(), rows)
		return nil
	},
}

var llmModelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Show configured providers and their model candidates in fallback order",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		providers, err := llm.NewProviders(context.WithoutCancel(cmd.Context()), cfg.LLM, nil)
		if err != nil {
			return err
		}
		printModels(cmd.OutOrStdout(), providers)
		return nil
	},
}

func init() {
	llmUsageCmd.Flags().Duration("since", 0, "Only count calls newer than this (e.g. 24h)")
	llmRecentCmd.Flags().IntP("limit", "n", 20, "Number of calls to show")

	llmCmd.AddCommand(llmUsageCmd)
	llmCmd.AddCommand(llmRecentCmd)
	llmCmd.AddCommand(llmModelsCmd)
}

func printUsage(w io.Writer, rows []store.UsageSummary) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No LLM usage recorded yet.")
		return
	}

	sep := strings.Repeat("─", 96)
	fmt.Fprintf(w, "%-10s  %-28s  %6s  %10s  %10s  %10s  %7s  %9s\n",
		"Provider", "Model", "Calls", "Input", "Output", "Total", "Avg Ms", "Cost")
	fmt.Fprintln(w, sep)

	var calls, in, out, total int
	var cost float64
	var unpriced []string
	for _, r := range rows {
		costCol := "?"
		if llm.LookupCost(r.Model) != nil {
			c := r.Cost()
			cost += c
			costCol = formatCost(c)
		} else {
			unpriced = append(unpriced, r.Model)
		}
		fmt.Fprintf(w, "%-10s  %-28s  %6d  %10d  %10d  %10d  %7d  %9s\n",
			r.Provider, truncate(r.Model, 28), r.Calls, r.PromptTokens, r.CompletionTokens,
			r.TotalTokens, r.AvgLatency.Milliseconds(), costCol)
		calls += r.Calls
		in += r.PromptTokens
		out += r.CompletionTokens
		total += r.TotalTokens
	}

	fmt.Fprintln(w, sep)
	label := "TOTAL"
	if len(unpriced) > 0 {
		label = "TOTAL (partial)"
	}
	fmt.Fprintf(w, "%-40s  %6d  %10d  %10d  %10d  %7s  %9s\n",
		label, calls, in, out, total, "", formatCost(cost))
	if len(unpriced) > 0 {
		fmt.Fprintf(w, "\nPricing unavailable for: %s\n", strings.Join(unpriced, ", "))
	}
}

func printRecent(w io.Writer, rows []store.UsageRow) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No LLM calls recorded yet.")
		return
	}

	fmt.Fprintf(w, "%-19s  %-10s  %-28s  %6s  %6s  %7s  %s\n",
		"Timestamp", "Provider", "Model", "In", "Out", "Ms", "Call")
	fmt.Fprintln(w, strings.Repeat("─", 110))
	for _, r := range rows {
		fmt.Fprintf(w, "%-19s  %-10s  %-28s  %6d  %6d  %7d  %s\n",
			r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			r.Provider,
			truncate(r.Model, 28),
			r.PromptTokens,
			r.CompletionTokens,
			r.Latency.Milliseconds(),
			r.CallID,
		)
	}
}

func printModels(w io.Writer, p llm.Providers) {
	if p.Empty() {
		fmt.Fprintln(w, "No provider configured. Set GEMINI_API_KEY, DEEPSEEK_API_KEY, GROQ_API_KEY or ANTHROPIC_API_KEY.")
		return
	}

	tiers := []llm.Provider{p.Gemini}
	tiers = append(tiers, p.Fallbacks()...)
	n := 0
	for _, prov := range tiers {
		if prov == nil {
			continue
		}
		n++
		fmt.Fprintf(w, "%d. %s (%d key", n, prov.Name(), prov.Keys())
		if prov.Keys() != 1 {
			fmt.Fprint(w, "s")
		}
		fmt.Fprintln(w, ")")
		for _, m := range prov.Models() {
			fmt.Fprintf(w, "     %s\n", m)
		}
	}
}
