package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"ripmedia/internal/history"
	"ripmedia/internal/model"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect past downloads",
	}
	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryClearCommand(ctx))
	return historyCmd
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var (
		limit   int
		status  string
		batchID string
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List recently finished downloads",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := history.ListOptions{Limit: limit, BatchID: strings.TrimSpace(batchID)}
			switch st := model.Status(strings.ToLower(strings.TrimSpace(status))); st {
			case "":
			case model.StatusDone, model.StatusError:
				opts.Status = st
			default:
				return usageError("--status must be done or error")
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg.HistoryPath())
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.List(cmd.Context(), opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if jsonOut {
				if entries == nil {
					entries = []history.Entry{}
				}
				return writeJSON(out, entries)
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, "No downloads recorded yet.")
				return nil
			}

			pal := newPalette(ctx.colorEnabled(cfg, out))
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{
					e.FinishedAt.Local().Format("2006-01-02 15:04"),
					statusLabel(pal, e.Status),
					providerLabel(e.Provider),
					orDash(e.Title),
					entryDetail(e),
				})
			}
			fmt.Fprintln(out, renderTable([]column{
				{Title: "Finished"},
				{Title: "Status"},
				{Title: "Source"},
				{Title: "Title", MaxWidth: 40},
				{Title: "Result", MaxWidth: 60},
			}, rows))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", history.DefaultListLimit, "Maximum entries to show")
	cmd.Flags().StringVar(&status, "status", "", "Only show done or error entries")
	cmd.Flags().StringVar(&batchID, "batch", "", "Only show entries from one batch")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print entries as JSON")
	return cmd
}

func newHistoryClearCommand(ctx *commandContext) *cobra.Command {
	var reset bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete recorded download history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := cfg.HistoryPath()
			out := cmd.OutOrStdout()

			// --reset works on databases written by another schema version.
			if reset {
				removed := 0
				for _, p := range []string{path, path + "-wal", path + "-shm"} {
					if err := os.Remove(p); err == nil {
						removed++
					} else if !errors.Is(err, os.ErrNotExist) {
						return fmt.Errorf("remove %s: %w", p, err)
					}
				}
				if removed == 0 {
					fmt.Fprintln(out, "No history database to remove.")
					return nil
				}
				fmt.Fprintf(out, "Removed history database %s\n", path)
				return nil
			}

			store, err := history.Open(path)
			if err != nil {
				return err
			}
			defer store.Close()
			count, err := store.Clear(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Cleared %d history entries\n", count)
			return nil
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "Delete the database file instead of its rows")
	return cmd
}

func statusLabel(pal palette, status model.Status) string {
	switch status {
	case model.StatusDone:
		return pal.ok.Sprint("done")
	case model.StatusError:
		return pal.fail.Sprint("error")
	default:
		return string(status)
	}
}

func entryDetail(e history.Entry) string {
	if e.Status == model.StatusError {
		if e.Stage != "" {
			return e.Stage + ": " + e.Error
		}
		return orDash(e.Error)
	}
	switch len(e.Paths) {
	case 0:
		return e.URL
	case 1:
		return e.Paths[0]
	default:
		return fmt.Sprintf("%s (+%d more)", e.Paths[0], len(e.Paths)-1)
	}
}
