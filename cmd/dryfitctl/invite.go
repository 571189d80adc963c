package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/AndersonGC/dryfit/internal/repository"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newInviteCmd(e *env) *cobra.Command {
	invite := &cobra.Command{
		Use:   "invite",
		Short: "Manage invite codes",
	}

	var coachEmail string
	generate := &cobra.Command{
		Use:   "generate",
		Short: "Generate a new invite code for a coach",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.open(cmd.Context(), false); err != nil {
				return err
			}

			coach, err := e.store.Repos().Accounts.GetByEmail(cmd.Context(), strings.TrimSpace(coachEmail))
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("no account with e-mail %s", coachEmail)
			} else if err != nil {
				return err
			}

			code, err := e.services.Invites.Generate(cmd.Context(), coach.ID)
			if err != nil {
				return fmt.Errorf("failed to generate invite code: %w", err)
			}
			color.Green("✓ Invite code for %s", coach.Name)
			fmt.Fprintln(cmd.OutOrStdout(), code.Code)
			return nil
		},
	}
	generate.Flags().StringVar(&coachEmail, "coach", "", "e-mail of the coach (required)")
	_ = generate.MarkFlagRequired("coach")

	invite.AddCommand(generate)
	return invite
}
