package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"maestro/internal/config"
	"maestro/internal/history"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect and manage the dictation history",
	}
	cmd.AddCommand(newHistoryListCmd(), newHistoryRemoveCmd(), newHistoryClearCmd())
	return cmd
}

func openHistory() (*history.SQLiteStore, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return history.NewSQLiteStore(cfg.Paths.HistoryDB)
}

func newHistoryListCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent dictations, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "history is empty")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tWHEN\tMODE\tPROVIDER\tTEXT")
			for _, entry := range entries {
				mode := entry.ModeID
				if mode == "" {
					mode = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					entry.ID,
					entry.CreatedAt.Local().Format("2006-01-02 15:04"),
					mode,
					entry.Provider,
					truncate(entry.Text, 60),
				)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum entries to show")
	return cmd
}

func newHistoryRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove one dictation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistory()
			if err != nil {
				return err
			}
			defer store.Close()
			return store.Delete(cmd.Context(), args[0])
		},
	}
}

func newHistoryClearCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove all dictations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				fmt.Fprintln(os.Stderr, "refusing to clear history without --yes")
				return fmt.Errorf("confirmation required")
			}
			store, err := openHistory()
			if err != nil {
				return err
			}
			defer store.Close()
			return store.Clear(cmd.Context())
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm clearing all history")
	return cmd
}

func truncate(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max-1]) + "…"
}
