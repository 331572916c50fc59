package cli

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/conduit-cli/conduit/internal/fault"
	"github.com/spf13/cobra"
)

func init() {
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsUnsetCmd)
	settingsCmd.AddCommand(settingsListCmd)
	rootCmd.AddCommand(settingsCmd)
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage settings stored in the component registry",
	Long: `Read and write the settings map kept next to the components in the
registry file. Components and the host share these values; host configuration
lives in the config command instead.`,
}

var settingsGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print a setting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := registryStore()
		if err != nil {
			return err
		}
		v, ok, err := store.GetSetting(args[0])
		if err != nil {
			return fault.Registry("settings", err)
		}
		if !ok {
			return fmt.Errorf("setting %q is not set", args[0])
		}
		fmt.Fprintln(cmd.OutOrStdout(), formatSetting(v))
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Store a setting; JSON values such as true, 3 or [1,2] keep their type",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := registryStore()
		if err != nil {
			return err
		}
		value := parseSetting(args[1])
		if err := store.SetSetting(args[0], value); err != nil {
			return fault.Registry("settings", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", args[0], formatSetting(value))
		return nil
	},
}

var settingsUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Remove a setting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := registryStore()
		if err != nil {
			return err
		}
		if err := store.SetSetting(args[0], nil); err != nil {
			return fault.Registry("settings", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Unset %s\n", args[0])
		return nil
	},
}

var settingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print every setting",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := registryStore()
		if err != nil {
			return err
		}
		all, err := store.Settings()
		if err != nil {
			return fault.Registry("settings", err)
		}
		keys := make([]string, 0, len(all))
		for k := range all {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", k, formatSetting(all[k]))
		}
		return nil
	},
}

// parseSetting keeps JSON scalars and collections typed; anything else is a
// plain string.
func parseSetting(raw string) any {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err == nil && v != nil {
		return v
	}
	return raw
}

func formatSetting(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	out, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(out)
}
