package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(enableCmd)
	rootCmd.AddCommand(disableCmd)
}

var enableCmd = &cobra.Command{
	Use:   "enable <component>",
	Short: "Allow a disabled component to run again",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		o, err := orch()
		if err != nil {
			return err
		}
		if err := o.Enable(context.Background(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Enabled %s.\n", args[0])
		return nil
	},
}

var disableCmd = &cobra.Command{
	Use:   "disable <component>",
	Short: "Keep a component installed but refuse to run it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		o, err := orch()
		if err != nil {
			return err
		}
		if err := o.Disable(context.Background(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Disabled %s.\n", args[0])
		return nil
	},
}
