package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/conduit-cli/conduit/internal/fault"
	"github.com/conduit-cli/conduit/internal/scaffold"
	"github.com/conduit-cli/conduit/internal/userdata"
	"github.com/spf13/cobra"
)

var (
	createVendor   string
	createCommands []string
	createOutput   string
	createUser     bool
)

func init() {
	createCmd.Flags().StringVar(&createVendor, "vendor", "", "Package vendor (default: install.default_vendor)")
	createCmd.Flags().StringArrayVar(&createCommands, "command", nil, "Published command (repeatable, default: hello)")
	createCmd.Flags().StringVarP(&createOutput, "output", "o", "", "Output directory (default: ./<name>)")
	createCmd.Flags().BoolVar(&createUser, "user", false, "Create under the user components root so it is discovered immediately")
	rootCmd.AddCommand(createCmd)
}

var createCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Generate a new component skeleton",
	Long: `Generate a component skeleton: a manifest, an executable entry point under
bin/, a composer.json carrying the component marker keyword, and a README.`,
	Args: cobra.ExactArgs(1),
	RunE: runCreate,
}

func runCreate(cmd *cobra.Command, args []string) error {
	name := args[0]
	vendor := createVendor
	if vendor == "" {
		vendor = current.settings.DefaultVendor
	}

	data, err := scaffold.NewData(name, vendor, createCommands, buildVersion)
	if err != nil {
		return err
	}

	out := createOutput
	switch {
	case out != "" && createUser:
		return fault.Validation("create", errors.New("--output and --user are mutually exclusive"))
	case createUser:
		root, err := userdata.GetComponentsRoot()
		if err != nil {
			return err
		}
		out = filepath.Join(root, name)
	case out == "":
		out = name
	}

	res, err := scaffold.Generate(data, out)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Created %s (%s) in %s\n", data.Name, data.PackageID, res.OutputDir)
	for _, f := range res.Files {
		fmt.Fprintf(w, "  %s\n", f)
	}
	for _, warn := range res.Warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", warn)
	}
	if createUser {
		fmt.Fprintf(w, "\nTry it: %s %s:%s\n", rootCmd.Name(), data.Name, data.Commands[0])
	}
	return nil
}
