package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"ripmedia/internal/model"
	"ripmedia/internal/services"
)

func newInfoCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "info <url>",
		Short: "Show metadata for a URL without downloading",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return usageError("info takes exactly one URL")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.fileLogger(cfg)
			if err != nil {
				return err
			}
			url := strings.TrimSpace(args[0])
			item, err := ctx.newEngine(cfg, logger).Info(cmd.Context(), url)
			if err != nil {
				msg, stage := services.Details(err)
				if hint := hintFor(stage, msg); hint != "" {
					return &exitError{code: exitUsage, err: fmt.Errorf("%s (%s)", msg, hint)}
				}
				return &exitError{code: exitUsage, err: fmt.Errorf("%s", msg)}
			}
			out := cmd.OutOrStdout()
			if jsonOut {
				return writeJSON(out, item)
			}
			fmt.Fprintln(out, renderKeyValues(infoRows(item)))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print metadata as JSON")
	return cmd
}

func infoRows(item model.Item) [][2]string {
	rows := [][2]string{
		{"Provider", providerLabel(item.Provider)},
		{"Kind", titleCase(string(item.Kind))},
		{"Title", orDash(item.Title)},
		{"Artist", item.Artist},
		{"Album", item.Album},
	}
	if item.DurationSeconds > 0 {
		rows = append(rows, [2]string{"Duration", formatClock(float64(item.DurationSeconds))})
	}
	if n := len(item.Entries); n > 0 {
		rows = append(rows, [2]string{"Entries", strconv.Itoa(n)})
	}
	if item.Attribution != nil {
		rows = append(rows, [2]string{"Attribution", item.Attribution.Comment()})
	}
	rows = append(rows, [2]string{"Artwork", item.ArtworkURL})
	return rows
}
