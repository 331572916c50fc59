package cli

import (
	"context"
	"strings"

	"github.com/conduit-cli/conduit/internal/branding"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <component>:<subcommand> [args...] [--option[=value]...]",
	Short: "Run a component subcommand",
	Long: `Delegate a subcommand to an installed or discovered component.

Any unknown <component>:<subcommand> token is routed here, so these are
equivalent:

  ` + branding.CLIName() + ` deploy:run prod --force --region=eu
  ` + branding.CLIName() + ` run deploy:run prod --force --region=eu

Options are forwarded as flags after the positional arguments: --name and
--no-name stay bare flags, --name=value and "--name value" become
"--name value". Everything after -- is passed through as positional
arguments. The exit code is the component's.`,
	DisableFlagParsing: true,
	RunE:               runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	host, rest := splitHostFlags(args)
	if host.help {
		return cmd.Help()
	}
	if host.verbose {
		verbose = true
	}
	if err := setup(cmd); err != nil {
		return err
	}
	if len(rest) == 0 {
		return cmd.Help()
	}

	o, err := orch()
	if err != nil {
		return err
	}

	positional, options := parseInvocationArgs(rest[1:])
	code, err := o.Dispatch(context.Background(), rest[0], positional, options)
	if err != nil {
		return err
	}
	if code != 0 {
		return &ExitError{Code: code}
	}
	return nil
}

type hostFlags struct {
	verbose bool
	help    bool
}

// splitHostFlags consumes the host's own flags that precede the
// component:subcommand token.
func splitHostFlags(args []string) (hostFlags, []string) {
	var h hostFlags
	for i, a := range args {
		switch a {
		case "-v", "--verbose":
			h.verbose = true
		case "-h", "--help":
			h.help = true
		default:
			return h, args[i:]
		}
	}
	return h, nil
}

// parseInvocationArgs splits the arguments after the component:subcommand
// token into positional arguments and options. --name=value and
// "--name value" yield the string value, a bare --name yields true, and a
// repeated name collects a slice. --no-name is forwarded as the bare flag
// --no-name. Single-dash arguments stay positional.
func parseInvocationArgs(args []string) ([]string, map[string]any) {
	positional := []string{}
	options := map[string]any{}

	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}
		if !strings.HasPrefix(a, "--") || len(a) == 2 {
			positional = append(positional, a)
			continue
		}

		key, value, hasValue := strings.Cut(a[2:], "=")
		switch {
		case hasValue:
			addOption(options, key, value)
		case i+1 < len(args) && !strings.HasPrefix(args[i+1], "-"):
			i++
			addOption(options, key, args[i])
		default:
			options[key] = true
		}
	}
	return positional, options
}

func addOption(options map[string]any, key, value string) {
	switch prev := options[key].(type) {
	case string:
		options[key] = []string{prev, value}
	case []string:
		options[key] = append(prev, value)
	default:
		options[key] = value
	}
}
