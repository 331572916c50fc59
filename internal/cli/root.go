package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/conduit-cli/conduit/internal/branding"
	"github.com/conduit-cli/conduit/internal/fault"
	"github.com/spf13/cobra"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string

	verbose bool
)

// ExitError carries a specific process exit status back to main.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// ExitCode maps an Execute error to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return 1
}

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` hosts independently versioned components. Components are
installed through the package manager, recorded in a local registry and invoked
as ` + branding.CLIName() + ` <component>:<subcommand> [args] [--options].`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Commands that parse their own flags call setup themselves.
		if cmd.DisableFlagParsing {
			return nil
		}
		if err := setup(cmd); err != nil {
			return err
		}
		switch cmd.Name() {
		case "update", "version", "help", "completion", "init", "create":
		default:
			showBanner(cmd.ErrOrStderr())
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Also write logs to stderr")
}

// Execute runs the root command with build info injected via ldflags.
// Tokens of the form component:subcommand that do not name a built-in
// command are routed to run.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	return execute(os.Args[1:])
}

func execute(args []string) error {
	rootCmd.SetArgs(routeDispatch(args))
	err := rootCmd.Execute()
	teardown()
	if err == nil {
		return nil
	}
	var ee *ExitError
	if !errors.As(err, &ee) {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Error: "+fault.Format(err))
	}
	return err
}

// routeDispatch rewrites args so that the first positional token shaped
// component:subcommand reaches the run command.
func routeDispatch(args []string) []string {
	for i, a := range args {
		if a == "--" {
			return args
		}
		if strings.HasPrefix(a, "-") {
			continue
		}
		if !strings.Contains(a, ":") {
			return args
		}
		if c, _, err := rootCmd.Find([]string{a}); err == nil && c != rootCmd {
			return args
		}
		out := make([]string, 0, len(args)+1)
		out = append(out, runCmd.Name())
		out = append(out, args[:i]...)
		return append(out, args[i:]...)
	}
	return args
}
