package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newSeedCmd(e *env) *cobra.Command {
	seed := &cobra.Command{
		Use:   "seed",
		Short: "Insert reference data",
	}

	seed.AddCommand(&cobra.Command{
		Use:   "categories",
		Short: "Insert the default workout categories (idempotent)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.open(cmd.Context(), false); err != nil {
				return err
			}
			if err := e.services.Categories.EnsureDefaults(cmd.Context()); err != nil {
				return fmt.Errorf("failed to seed categories: %w", err)
			}

			categories, err := e.services.Categories.List(cmd.Context())
			if err != nil {
				return err
			}
			color.Green("✓ %d categories", len(categories))
			for _, c := range categories {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s %s\n", color.New(color.Faint).Sprint(c.ID.String()[:8]), c.Name)
			}
			return nil
		},
	})
	return seed
}
