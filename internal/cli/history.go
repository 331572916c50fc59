package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var (
	historyLimit int
	historyJSON  bool
)

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of events to show")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent install, uninstall and update events",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, reader := historyStore()
		events, err := reader.List(context.Background(), historyLimit)
		if err != nil {
			return fmt.Errorf("reading history: %w", err)
		}

		if historyJSON {
			out, err := json.MarshalIndent(events, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling JSON: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		}

		if len(events) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No history yet.")
			return nil
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TIME\tOP\tCOMPONENT\tVERSION\tOUTCOME\tDETAIL")
		for _, e := range events {
			detail := e.Message
			if e.Category != "" {
				detail = "[" + e.Category + "] " + detail
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				e.OccurredAt.Local().Format(time.DateTime), e.Op, e.Component, e.Version, e.Outcome, detail)
		}
		return w.Flush()
	},
}
