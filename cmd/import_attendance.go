package cmd

import (
	"encoding/json"
	"os"
	"sort"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"care-tasks.com/care-tasks/internal/importsheet"
)

var importAccountID string

var importAttendanceCmd = &cobra.Command{
	Use:   "import-attendance <file.csv|file.xlsx>",
	Short: "Import clock events from an attendance sheet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.close()

		if importAccountID == "" {
			return errors.New("--account is required")
		}

		f, err := os.Open(args[0])
		if err != nil {
			return errors.Wrap(err, "open sheet")
		}
		defer f.Close()

		rows, rowErrors, err := importsheet.Parse(args[0], f)
		if err != nil {
			return err
		}

		result, err := a.attendance.ImportClockEvents(cmd.Context(), rows, importAccountID)
		if err != nil {
			return err
		}
		result.Errors = append(result.Errors, rowErrors...)
		sort.SliceStable(result.Errors, func(i, j int) bool {
			return result.Errors[i].Line < result.Errors[j].Line
		})

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	importAttendanceCmd.Flags().StringVar(&importAccountID, "account", "", "id of the account recording the events")
	rootCmd.AddCommand(importAttendanceCmd)
}
