package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var uninstallForce bool

var uninstallCmd = &cobra.Command{
	Use:     "uninstall <component>",
	Aliases: []string{"remove"},
	Short:   "Uninstall a component",
	Long: `Remove a component's package and its registry entry.

Uninstalling a component that is not installed succeeds. With --force the
package manager removal runs even for unregistered components, and a failing
removal still drops the registry entry.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		o, err := orch()
		if err != nil {
			return err
		}

		res, err := o.Uninstall(context.Background(), args[0], uninstallForce)
		if err != nil {
			printPackageManagerOutput(cmd, res.Output)
			return err
		}

		switch {
		case res.AlreadyAbsent:
			fmt.Fprintf(cmd.OutOrStdout(), "%s is not installed.\n", res.Component.Name)
		case !res.PackageRemoved:
			printPackageManagerOutput(cmd, res.Output)
			fmt.Fprintf(cmd.OutOrStdout(), "Unregistered %s (package removal failed).\n", res.Component.Name)
		default:
			fmt.Fprintf(cmd.OutOrStdout(), "Uninstalled %s.\n", res.Component.Name)
		}
		return nil
	},
}

func init() {
	uninstallCmd.Flags().BoolVar(&uninstallForce, "force", false, "Remove even if unregistered or the package manager fails")
	rootCmd.AddCommand(uninstallCmd)
}
