package commands

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
)

var refreshForce *bool

func init() {
	refreshForce = refreshCmd.Flags().Bool("force", false, "Re-extract every boss regardless of staleness.")
	rootCmd.AddCommand(refreshCmd)
}

var refreshCmd = &cobra.Command{
	Use:   "refresh [--force]",
	Short: "Runs one refresh and prints the summary.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.close()

		summary, runErr := a.refresher.Run(cmd.Context(), *refreshForce)
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(summary); err != nil {
			return err
		}
		return runErr
	},
}
