package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Materialize executions for tasks whose assignee could not be resolved",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.close()

		resolved := a.reconciler.ReconcilePendingExecutions(cmd.Context())
		fmt.Fprintf(cmd.OutOrStdout(), "resolved %d task(s)\n", resolved)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reconcileCmd)
}
