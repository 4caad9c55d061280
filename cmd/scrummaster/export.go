package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"

	"scrummaster/internal/jira"
)

func newExportCmd(d deps) *cobra.Command {
	var output string
	kinds := make([]string, 0, len(jira.ExportKinds))
	for _, k := range jira.ExportKinds {
		kinds = append(kinds, string(k))
	}
	cmd := &cobra.Command{
		Use:       "export <" + strings.Join(kinds, "|") + ">",
		Short:     "Download a CSV export from the server",
		Args:      cobra.ExactArgs(1),
		ValidArgs: kinds,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, ok := jira.ParseExportKind(args[0])
			if !ok {
				return fmt.Errorf("unknown export %q (must be %s)", args[0], strings.Join(kinds, ", "))
			}
			svc, err := d.open(cmd.Context())
			if err != nil {
				return err
			}
			defer svc.Close()

			body, err := svc.jira.ExportCSV(cmd.Context(), kind)
			if err != nil {
				return fmt.Errorf("export %s: %w", kind, err)
			}
			defer body.Close()

			if output == "" || output == "-" {
				_, err = io.Copy(cmd.OutOrStdout(), body)
				return err
			}
			if err := atomic.WriteFile(output, body); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s export to %s\n", kind, output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")
	return cmd
}
