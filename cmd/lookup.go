package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/user/mcp-city-time/history"
	"github.com/user/mcp-city-time/timeservice"
)

func newLookupCmd(args *CLIArgs) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <city>",
		Short: "Look up a city's current time and print the report",
		Example: `  city-time lookup mumbai
  city-time lookup "New York" --platform nslookup --db lookups.db`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, positional []string) error {
			return runLookup(cmd, args, positional[0])
		},
	}
}

func runLookup(cmd *cobra.Command, args *CLIArgs, city string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	lookupCfg, err := cfg.TimeLookupConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	lookuper := timeservice.NewLookuper(lookupCfg, newExecutor())
	start := time.Now()
	raw, lookupErr := lookuper.Lookup(ctx, city)
	elapsed := time.Since(start)

	var report timeservice.TimeReport
	if lookupErr == nil {
		report = timeservice.ParseReport(raw, city, lookuper.Mode())
	}

	// History is opt-in on the command line; an in-memory store would vanish on exit.
	if cfg.DBPath != "" {
		rec := &history.Record{
			City:     strings.TrimSpace(city),
			Platform: lookuper.Mode().String(),
			Duration: elapsed,
		}
		if lookupErr != nil {
			rec.Error = lookupErr.Error()
		} else {
			rec.CurrentTime = report.CurrentTime
			rec.Timezone = report.Timezone
			rec.AdditionalInfo = report.AdditionalInfo
			rec.RawFallback = report.RawFallbackUsed
			rec.Raw = raw
		}
		if err := saveRecord(ctx, cfg.DBPath, rec); err != nil {
			return err
		}
	}

	if lookupErr != nil {
		return fmt.Errorf("error fetching time for %s: %w", city, lookupErr)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), report.Render(city))
	return err
}

func saveRecord(ctx context.Context, path string, rec *history.Record) error {
	store, err := history.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer store.Close()

	if err := store.Save(ctx, rec); err != nil {
		return fmt.Errorf("failed to save history: %w", err)
	}
	return nil
}
