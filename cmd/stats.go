package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/ca-srg/osrequests/internal/metrics"
)

var statsDays int

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the local history of executed searches",
	Long: `
Print how many searches ran, by kind and outcome, from the local history
(OSREQUESTS_STATS_PATH, default ~/.osrequests/stats.db). With --days the
per-day counts of the last N days are printed instead.
`,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().IntVar(&statsDays, "days", 0, "Show per-day counts for the last N days")
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadAppConfig(envFiles...)
	if err != nil {
		return err
	}

	store, err := openStatsStore(cfg.StatsPath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if statsDays > 0 {
		from := time.Now().AddDate(0, 0, -(statsDays - 1))
		days, err := store.Since(ctx, from)
		if err != nil {
			return err
		}
		if days == nil {
			days = []metrics.Daily{}
		}
		return writeOutput(cmd.OutOrStdout(), days)
	}

	totals, err := store.Totals(ctx)
	if err != nil {
		return err
	}
	if totals == nil {
		totals = []metrics.Total{}
	}
	return writeOutput(cmd.OutOrStdout(), totals)
}
