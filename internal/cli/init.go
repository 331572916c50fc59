package cli

import (
	"fmt"

	"github.com/conduit-cli/conduit/internal/branding"
	"github.com/conduit-cli/conduit/internal/config"
	"github.com/conduit-cli/conduit/internal/userdata"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize " + branding.DisplayName() + " directories",
	Long: `Create the data directory (~/.conduit) with its components, cache and logs
directories, the config directory and an empty registry. Other commands create
what they need on first use, so running init is optional.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := userdata.GetRoot()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Initializing %s\n", root)

		if err := userdata.EnsureLayout(cmd.OutOrStdout()); err != nil {
			return fmt.Errorf("creating data directories: %w", err)
		}
		if err := config.EnsureDir(); err != nil {
			return err
		}
		store, err := registryStore()
		if err != nil {
			return err
		}
		if err := store.Ensure(); err != nil {
			return fmt.Errorf("creating registry: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Registry: %s\n", store.Path())
		return nil
	},
}
