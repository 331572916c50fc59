package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/conduit-cli/conduit/internal/branding"
	"github.com/conduit-cli/conduit/internal/orchestrator"
	"github.com/conduit-cli/conduit/internal/updater"
	"github.com/spf13/cobra"
)

var (
	updateAll   bool
	updateCheck bool
	updateForce bool
	updateJSON  bool
)

func init() {
	updateCmd.Flags().BoolVar(&updateAll, "all", false, "Update every installed component")
	updateCmd.Flags().BoolVar(&updateCheck, "check", false, "Only check for updates, don't install")
	updateCmd.Flags().BoolVar(&updateForce, "force", false, "Include updates flagged as breaking")
	updateCmd.Flags().BoolVar(&updateJSON, "json", false, "Output the report as JSON")

	rootCmd.AddCommand(updateCmd)
}

var updateCmd = &cobra.Command{
	Use:   "update [component]",
	Short: "Update installed components",
	Long: `Check upstream releases of installed components and apply newer versions.

  ` + branding.CLIName() + ` update                 # update everything
  ` + branding.CLIName() + ` update deploy          # update one component
  ` + branding.CLIName() + ` update --check         # report only
  ` + branding.CLIName() + ` update --all --force   # include breaking updates

Release priorities come from a keyword scan of the release title and notes
("security", then "breaking") and may be wrong.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runUpdate,
}

func runUpdate(cmd *cobra.Command, args []string) error {
	o, err := orch()
	if err != nil {
		return err
	}

	req := orchestrator.UpdateRequest{All: updateAll, Check: updateCheck, Force: updateForce}
	if len(args) == 1 {
		req.Name = args[0]
	}
	if req.Name == "" && !req.All {
		req.All = true
	}

	report, err := o.Update(context.Background(), req)

	if updateJSON {
		out, jerr := json.MarshalIndent(report, "", "  ")
		if jerr != nil {
			return fmt.Errorf("marshaling JSON: %w", jerr)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return err
	}

	w := cmd.OutOrStdout()
	if len(report.Available) == 0 && err == nil {
		fmt.Fprintln(w, "All components are up to date.")
		return nil
	}
	if updateCheck {
		fmt.Fprintln(w, "Updates available:")
		printRecords(cmd, report.Available)
		return err
	}
	if len(report.Applied) > 0 {
		fmt.Fprintln(w, "Updated:")
		printRecords(cmd, report.Applied)
	}
	if len(report.Skipped) > 0 {
		fmt.Fprintln(w, "Skipped (breaking, use --force):")
		printRecords(cmd, report.Skipped)
	}
	if len(report.Failed) > 0 {
		fmt.Fprintln(w, "Failed:")
		printRecords(cmd, report.Failed)
	}
	return err
}

func printRecords(cmd *cobra.Command, records []updater.UpdateRecord) {
	for _, r := range records {
		tag := ""
		if r.Priority != updater.PriorityNormal {
			tag = " [" + string(r.Priority) + "]"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "  %s %s -> %s%s\n", r.Name, r.CurrentVersion, r.LatestVersion, tag)
	}
}
