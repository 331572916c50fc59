package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/conduit-cli/conduit/internal/branding"
	"github.com/spf13/cobra"
)

var (
	listAll  bool
	listJSON bool
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"list:components"},
	Short:   "List installed components",
	Long:    `List the components recorded in the registry. Disabled components are shown with --all.`,
	Args:    cobra.NoArgs,
	RunE:    runList,
}

func init() {
	listCmd.Flags().BoolVar(&listAll, "all", false, "Include disabled components")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	o, err := orch()
	if err != nil {
		return err
	}
	components, err := o.List(listAll)
	if err != nil {
		return err
	}

	if listJSON {
		out, err := json.MarshalIndent(components, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	}

	if len(components) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No components installed. Run '%s discover' to see what is available.\n", branding.CLIName())
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tVERSION\tSTATUS\tPACKAGE\tCOMMANDS")
	for _, c := range components {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", c.Name, c.Version, c.Status, c.PackageID, strings.Join(c.Commands, ", "))
	}
	return w.Flush()
}
