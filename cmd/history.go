package cmd

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/user/mcp-city-time/history"
)

var errNoDatabase = errors.New("history requires a database path (--db or MCP_DB)")

func newHistoryCmd(args *CLIArgs) *cobra.Command {
	var (
		limit int
		city  string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded city time lookups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, args)
			if err != nil {
				return err
			}
			if cfg.DBPath == "" {
				return errNoDatabase
			}
			if limit <= 0 {
				return fmt.Errorf("limit must be positive, got %d", limit)
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			store, err := history.Open(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("failed to open history: %w", err)
			}
			defer store.Close()

			var records []history.Record
			if city != "" {
				records, err = store.ForCity(ctx, city, limit)
			} else {
				records, err = store.Recent(ctx, limit)
			}
			if err != nil {
				return err
			}

			return printHistory(cmd, records)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of lookups to show")
	cmd.Flags().StringVar(&city, "city", "", "Only show lookups for this city")

	return cmd
}

func printHistory(cmd *cobra.Command, records []history.Record) error {
	out := cmd.OutOrStdout()
	if len(records) == 0 {
		_, err := fmt.Fprintln(out, "No lookups recorded yet.")
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tCITY\tPLATFORM\tTIME\tTIMEZONE\tSTATUS")
	for _, r := range records {
		status := "ok"
		switch {
		case r.Error != "":
			status = "error: " + r.Error
		case r.RawFallback:
			status = "raw"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.CreatedAt.Local().Format(time.DateTime),
			r.City, r.Platform, dash(r.CurrentTime), dash(r.Timezone), status)
	}
	return w.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
