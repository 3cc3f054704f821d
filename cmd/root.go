package cmd

import (
	"github.com/spf13/cobra"
)

var (
	envFiles     []string
	outputFormat string
	logLevel     string
)

var rootCmd = &cobra.Command{
	Use:   "osrequests",
	Short: "osrequests - typed OpenSearch _search requests",
	Long: `osrequests builds OpenSearch _search request bodies from typed query and
aggregation nodes, runs them against a cluster and parses the responses.

Connection settings are read from the environment (OPENSEARCH_*), optionally
loaded from a .env file.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "Env files to load before reading configuration (default: .env if present)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "json", "Output format: json|yaml")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level override: debug|info|warn|error")

	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(aggregateCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(healthCmd)
}
