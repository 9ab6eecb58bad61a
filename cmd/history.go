package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	grovelogging "github.com/mattsolo1/grove-core/logging"
	"github.com/mattsolo1/grove-jupyter/cmd/config"
	"github.com/mattsolo1/grove-jupyter/pkg/models"
)

var historyUlog = grovelogging.NewUnifiedLogger("grove-jupyter.cmd.history")

func NewHistoryCmd() *cobra.Command {
	var (
		historyJSON   bool
		historyLimit  int
		historyFailed bool
	)

	cmd := &cobra.Command{
		Use:         "history",
		Short:       "Show recent opens and saves",
		Annotations: offline(),
		Long: `Show the outcome of recent opens and saves, newest first.
With --server only that server's entries are shown.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			store, err := config.OpenHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.Recent(config.ServerOverride, historyLimit)
			if err != nil {
				return err
			}

			if historyFailed {
				var failed []*models.HistoryEntry
				for _, e := range entries {
					if !e.OK {
						failed = append(failed, e)
					}
				}
				entries = failed
			}

			if len(entries) == 0 {
				pretty := "No history yet"
				if historyJSON {
					pretty = "[]"
				}
				historyUlog.Info("No history found").
					Pretty(pretty).
					PrettyOnly().
					Log(ctx)
				return nil
			}

			if historyJSON {
				return outputJSON(os.Stdout, entries)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TIME\tSERVER\tACTION\tRESULT\tPATH")
			fmt.Fprintln(w, "----------------\t----------\t------\t------\t------------------------")
			for _, e := range entries {
				result := "ok"
				if !e.OK {
					result = "failed"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					e.At.Local().Format("2006-01-02 15:04"), e.Server, e.Action, result, e.Path)
				if !e.OK && e.Message != "" {
					fmt.Fprintf(w, "\t\t\t\t  %s\n", truncateString(e.Message, 80))
				}
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&historyJSON, "json", false, "Output in JSON format")
	cmd.Flags().IntVarP(&historyLimit, "limit", "n", 50, "Number of entries to show")
	cmd.Flags().BoolVar(&historyFailed, "failed", false, "Only show failures")

	return cmd
}
