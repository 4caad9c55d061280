package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newGroomCmd(d deps) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "groom",
		Short: "Request a suggestion for every backlog issue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := d.open(cmd.Context())
			if err != nil {
				return err
			}
			defer svc.Close()

			issues, err := svc.jira.Backlog(cmd.Context())
			if err != nil {
				return fmt.Errorf("load backlog: %w", err)
			}
			run := svc.groomer.GroomAll(cmd.Context(), issues)
			if _, err := run.Wait(cmd.Context()); err != nil {
				return fmt.Errorf("groom backlog: %w", err)
			}

			rows := make([]groomRow, 0, len(issues))
			failed := 0
			for _, issue := range issues {
				res, ok := run.Result(issue.Key)
				if !ok {
					continue
				}
				row := groomRow{
					Key:           issue.Key,
					Summary:       issue.Summary,
					Clarification: res.Suggestion.Clarification,
					Effort:        res.Suggestion.Effort,
					Priority:      res.Suggestion.Priority,
				}
				if res.Err != nil {
					row.Error = res.Err.Error()
					failed++
				}
				rows = append(rows, row)
			}
			if asJSON {
				if err := writeJSON(cmd.OutOrStdout(), rows); err != nil {
					return err
				}
			} else {
				printGroomRows(cmd.OutOrStdout(), rows)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d suggestions failed", failed, len(rows))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

type groomRow struct {
	Key           string `json:"key"`
	Summary       string `json:"summary"`
	Clarification string `json:"clarification,omitempty"`
	Effort        string `json:"effort,omitempty"`
	Priority      string `json:"priority,omitempty"`
	Error         string `json:"error,omitempty"`
}

func printGroomRows(w io.Writer, rows []groomRow) {
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(w, "Backlog is empty.")
		return
	}
	for _, row := range rows {
		if row.Error != "" {
			_, _ = fmt.Fprintf(w, "%s  %s\n    failed: %s\n", row.Key, row.Summary, row.Error)
			continue
		}
		_, _ = fmt.Fprintf(w, "%s  %s\n    %s\n", row.Key, row.Summary, row.Clarification)
		if row.Effort != "" || row.Priority != "" {
			_, _ = fmt.Fprintf(w, "    effort %s, priority %s\n", orDash(row.Effort), orDash(row.Priority))
		}
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
