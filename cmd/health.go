package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the configured cluster is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		rt, err := setupRuntime(ctx)
		if err != nil {
			return err
		}
		defer rt.close(context.WithoutCancel(ctx))

		client, err := rt.client()
		if err != nil {
			return err
		}
		if err := client.HealthCheck(ctx); err != nil {
			return err
		}
		return writeOutput(cmd.OutOrStdout(), map[string]string{
			"endpoint": rt.cfg.OpenSearchEndpoint,
			"status":   "ok",
		})
	},
}
