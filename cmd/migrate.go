package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.close()

		applied, err := a.guard.Migrate(cmd.Context())
		if err != nil {
			return err
		}

		a.logger.Info("migrations applied", zap.Ints("versions", applied))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
