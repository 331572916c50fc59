package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/conduit-cli/conduit/internal/branding"
	"github.com/conduit-cli/conduit/internal/userdata"
	"github.com/spf13/cobra"
)

var doctorJSON bool

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Health check for " + branding.DisplayName() + " installation",
	Long: `Check that the registry parses, the package manager is on PATH, every
registered component still resolves to an executable, and no global package is
installed without being registered. Exits 1 when any check fails.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		o, err := orch()
		if err != nil {
			return err
		}
		report := o.Doctor(context.Background())

		if doctorJSON {
			out, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling JSON: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Mode: %s\n\n", userdata.DetectMode())
			for _, c := range report.Checks {
				mark := "✓"
				if !c.OK {
					mark = "✗"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "  %s %s: %s\n", mark, c.Name, c.Detail)
			}
		}

		if !report.Healthy() {
			return &ExitError{Code: 1}
		}
		return nil
	},
}
