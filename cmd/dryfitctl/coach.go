package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newCoachCmd(e *env) *cobra.Command {
	coach := &cobra.Command{
		Use:   "coach",
		Short: "Manage coach accounts",
	}

	var email, name, password string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a coach account",
		Long: `Create a coach account. Coaches cannot sign up through the API; they are
provisioned here and then hand out invite codes to their students.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.open(cmd.Context(), false); err != nil {
				return err
			}
			account, err := e.services.Auth.ProvisionCoach(cmd.Context(), email, password, name)
			if err != nil {
				return fmt.Errorf("failed to create coach: %w", err)
			}

			color.Green("✓ Created coach %s", account.Name)
			fmt.Fprintf(cmd.OutOrStdout(), "  %s %s\n", color.New(color.Faint).Sprint(account.ID.String()), account.Email)
			return nil
		},
	}
	create.Flags().StringVar(&email, "email", "", "login e-mail (required)")
	create.Flags().StringVar(&name, "name", "", "display name (required)")
	create.Flags().StringVar(&password, "password", "", "initial password, at least 6 characters (required)")
	_ = create.MarkFlagRequired("email")
	_ = create.MarkFlagRequired("name")
	_ = create.MarkFlagRequired("password")

	coach.AddCommand(create)
	return coach
}
