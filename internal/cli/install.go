package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/conduit-cli/conduit/internal/branding"
	"github.com/conduit-cli/conduit/internal/installer"
	"github.com/conduit-cli/conduit/internal/orchestrator"
	"github.com/spf13/cobra"
)

var (
	installForce bool
	installDev   bool
)

var installCmd = &cobra.Command{
	Use:   "install <component>",
	Short: "Install a component",
	Long: `Install a component through the package manager and register it.

<component> is either a package id (vendor/name) or a bare name, which expands
to <default_vendor>/` + branding.ComponentPrefix() + `<name>. The package must exist on Packagist and
carry the "` + branding.ComponentMarker() + `" keyword before anything is installed.`,
	Args: cobra.ExactArgs(1),
	RunE: runInstall,
}

func init() {
	installCmd.Flags().BoolVar(&installForce, "force", false, "Reinstall even if already installed")
	installCmd.Flags().BoolVar(&installDev, "dev", false, "Install the development branch")
	rootCmd.AddCommand(installCmd)
}

func runInstall(cmd *cobra.Command, args []string) error {
	o, err := orch()
	if err != nil {
		return err
	}

	res, err := o.Install(context.Background(), orchestrator.InstallRequest{
		Name:  args[0],
		Force: installForce,
		Dev:   installDev,
	})
	if err != nil {
		printPackageManagerOutput(cmd, res.Output)
		return err
	}

	c := res.Component
	if res.AlreadyInstalled {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s is already installed. Use --force to reinstall.\n", c.Name, c.Version)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Installed %s %s (%s)\n", c.Name, c.Version, c.PackageID)
	if len(c.Commands) > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "Commands: %s\n", strings.Join(prefixed(c.Name, c.Commands), ", "))
	}
	return nil
}

// printPackageManagerOutput surfaces the package manager's stderr verbatim.
func printPackageManagerOutput(cmd *cobra.Command, res installer.Result) {
	if out := strings.TrimSpace(res.ErrorOutput); out != "" {
		fmt.Fprintln(cmd.ErrOrStderr(), out)
	}
}

func prefixed(name string, commands []string) []string {
	out := make([]string, len(commands))
	for i, c := range commands {
		out[i] = name + ":" + c
	}
	return out
}
