package cmd

import (
	"github.com/spf13/cobra"

	"groundcite/config"
	"groundcite/internal/tui"
)

func init() {
	rootCmd.AddCommand(tuiCmd)
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive interface",
	Long: `Open the terminal interface: query and system instruction on the main view,
configuration tabs (basic, models, schema, saved, keys) and the results viewer.

Export and import in the interface use the --config file, or
` + config.ExportFileName + ` when none is given. API keys are wiped from
memory on exit.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}

		exportPath := configFile
		if exportPath == "" {
			exportPath = config.ExportFileName
		}
		return tui.Run(s, exportPath)
	},
}
