package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/conduit-cli/conduit/internal/discovery"
	"github.com/spf13/cobra"
)

var (
	discoverSearch []string
	discoverJSON   bool
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find components on disk",
	Long: `Scan the bundled, development, user and global package directories for
components. Discovery never changes the registry.

--search may be repeated; glob patterns such as "deploy-*" or "**/acme-*" are
matched against name, package and commands, plain terms match as substrings.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		o, err := orch()
		if err != nil {
			return err
		}
		found, err := o.Discover(context.Background(), discoverSearch)
		if err != nil {
			// Discovery is best effort; an empty result is not a failure.
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
		}

		if discoverJSON {
			if found == nil {
				found = []discovery.Component{}
			}
			out, err := json.MarshalIndent(found, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling JSON: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		}

		if len(found) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No components found.")
			return nil
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tVERSION\tSOURCE\tCOMMANDS\tPATH")
		for _, c := range found {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", c.Name, c.Version, c.Source, strings.Join(c.Commands, ", "), c.EntryPoint)
		}
		return w.Flush()
	},
}

func init() {
	discoverCmd.Flags().StringArrayVar(&discoverSearch, "search", nil, "Filter by name, package or command (repeatable, globs allowed)")
	discoverCmd.Flags().BoolVar(&discoverJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(discoverCmd)
}
