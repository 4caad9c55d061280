package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"scrummaster/internal/domain"
	appErrors "scrummaster/internal/errors"
	"scrummaster/internal/viewsync"
)

type confirmPrompt func(ctx context.Context, issue domain.Issue) (bool, error)

func huhConfirm(ctx context.Context, issue domain.Issue) (bool, error) {
	var confirmed bool
	desc := issue.Summary
	if desc == "" {
		desc = "This issue will be archived on the server."
	}
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(fmt.Sprintf("Archive %s?", issue.Key)).
			Description(desc).
			Affirmative("Archive").
			Negative("Cancel").
			Value(&confirmed),
	))
	if err := form.RunWithContext(ctx); err != nil {
		return false, err
	}
	return confirmed, nil
}

func newArchiveCmd(d deps) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "archive <key>",
		Short: "Archive a sprint issue after confirmation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			key := args[0]

			var confirmer viewsync.Confirmer
			switch {
			case yes:
				confirmer = viewsync.ConfirmFunc(func(context.Context, domain.Issue) (bool, error) { return true, nil })
			case d.interactive():
				confirmer = viewsync.ConfirmFunc(d.confirm)
			default:
				return appErrors.New(appErrors.CodeValidationSkipped,
					fmt.Sprintf("refusing to archive %s without a terminal; pass --yes", key), nil)
			}

			svc, err := d.open(ctx)
			if err != nil {
				return err
			}
			defer svc.Close()

			if err := svc.board.Mount(ctx); err != nil {
				return fmt.Errorf("load board: %w", err)
			}
			defer svc.board.Unmount()

			archived, err := svc.board.Archive(ctx, key, confirmer)
			if err != nil {
				return fmt.Errorf("archive %s: %w", key, err)
			}
			if !archived {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Archived %s.\n", key)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
