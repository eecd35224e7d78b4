package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"groundcite/config/models"
	"groundcite/internal/report"
)

var (
	systemInstruction string
	analyzeJSON       bool
	analyzeRaw        bool
	analyzeSaved      string
)

func init() {
	analyzeCmd.Flags().StringVarP(&systemInstruction, "system", "s", "", "system instruction sent with the query")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "output the summary and result data as JSON")
	analyzeCmd.Flags().BoolVar(&analyzeRaw, "raw", false, "append the raw result data")
	analyzeCmd.Flags().StringVar(&analyzeSaved, "saved", "", "load a saved configuration by id before analyzing")
	rootCmd.AddCommand(analyzeCmd)
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <query>",
	Short: "Run a grounded analysis",
	Long: `Run one analysis against the GroundCite service with the current configuration.

The configuration is built from the defaults, the --config file and the
GROUNDCITE_*_API_KEY environment variables. The backend must answer the
health check first; no request is sent while it is offline.

Examples:
  groundcite analyze "What changed in the EU AI Act in 2025?"
  groundcite analyze -c ai-analysis-config.json --json "Top EV makers by revenue"
  groundcite analyze --saved 42 --raw "Summarize recent fusion milestones"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.Close()

	reporter := report.NewReporter(cmd.OutOrStdout(),
		report.WithJSONOutput(analyzeJSON),
		report.WithRawData(analyzeRaw),
	)
	ctx := cmd.Context()

	if err := requireOnline(ctx, s); err != nil {
		_ = reporter.ReportError(err)
		return reported(err)
	}

	if analyzeSaved != "" {
		s.RefreshConfigurations(ctx)
		if err := s.LoadConfiguration(ctx, models.ConfigID(analyzeSaved)); err != nil {
			_ = reporter.ReportError(err)
			return reported(err)
		}
	}

	result, err := s.Analyze(ctx, strings.Join(args, " "), systemInstruction)
	if err != nil {
		_ = reporter.ReportError(err)
		return reported(err)
	}
	return reporter.Report(result.JSON())
}
