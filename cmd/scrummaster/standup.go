package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"scrummaster/internal/standup"
)

func newStandupCmd(d deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "standup",
		Short: "Query past standups",
	}
	cmd.AddCommand(newStandupSearchCmd(d), newStandupAskCmd(d))
	return cmd
}

func newStandupSearchCmd(d deps) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Find past standups similar to a query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := d.open(cmd.Context())
			if err != nil {
				return err
			}
			defer svc.Close()

			matches, err := svc.standup.Client.Search(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return fmt.Errorf("search standups: %w", err)
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), matches)
			}
			printMatches(cmd.OutOrStdout(), matches)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newStandupAskCmd(d deps) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question answered from past standups",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := d.open(cmd.Context())
			if err != nil {
				return err
			}
			defer svc.Close()

			answer, err := svc.standup.Client.Ask(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return fmt.Errorf("ask standups: %w", err)
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), answer)
			}
			printAnswer(cmd.OutOrStdout(), answer)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func printMatches(w io.Writer, matches []standup.Match) {
	if len(matches) == 0 {
		fmt.Fprintln(w, "No matching standups.")
		return
	}
	for i, m := range matches {
		label := fmt.Sprintf("%d.", i+1)
		if id, ok := m.Metadata["id"]; ok {
			label += fmt.Sprintf(" #%v", id)
		}
		fmt.Fprintf(w, "%s %s\n", label, strings.TrimSpace(m.Document))
	}
}

func printAnswer(w io.Writer, a standup.Answer) {
	fmt.Fprintln(w, strings.TrimSpace(a.Answer))
	if len(a.ContextUsed) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Based on:")
	for _, c := range a.ContextUsed {
		fmt.Fprintf(w, "  - %s\n", strings.TrimSpace(c))
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
