package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"groundcite/internal/utils"
)

var healthJSON bool

func init() {
	healthCmd.Flags().BoolVar(&healthJSON, "json", false, "output the health status as JSON")
	rootCmd.AddCommand(healthCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the analysis service status",
	Long:  "Query GET /api/health on the configured backend and report whether analyses can run",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()
		status, err := client.HealthCheck(cmd.Context())
		out := cmd.OutOrStdout()

		if healthJSON {
			doc := map[string]interface{}{
				"base_url":     client.BaseURL(),
				"connectivity": client.Connectivity().String(),
			}
			if err != nil {
				doc["error"] = err.Error()
			} else {
				doc["health"] = status
			}
			data, _ := json.MarshalIndent(doc, "", "  ")
			fmt.Fprintln(out, string(data))
			return reported(err)
		}

		if err != nil {
			fmt.Fprintf(out, "❌ %s (%s)\n", err.Error(), client.BaseURL())
			return reported(err)
		}

		fmt.Fprintf(out, "✓ Connected to %s\n", client.BaseURL())
		fmt.Fprintf(out, "  Status:      %s\n", valueOr(status.Status))
		fmt.Fprintf(out, "  Version:     %s\n", valueOr(status.Version))
		fmt.Fprintf(out, "  Environment: %s\n", valueOr(status.Environment))
		fmt.Fprintf(out, "  GroundCite:  %t\n", status.GroundCiteReady)
		if status.Timestamp != "" {
			fmt.Fprintf(out, "  Timestamp:   %s\n", status.Timestamp)
		}
		return nil
	},
}

func valueOr(s string) string {
	if s == "" {
		return utils.NotSet
	}
	return s
}
