package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"groundcite/config/models"
	"groundcite/internal/providers"
)

var (
	modelsProvider string
	modelsDefaults bool
)

func init() {
	modelsCmd.Flags().StringVarP(&modelsProvider, "provider", "p", "", "only list models of this provider (gemini, openai)")
	modelsCmd.Flags().BoolVarP(&modelsDefaults, "defaults", "d", false, "show the default parameters of each model")
	rootCmd.AddCommand(modelsCmd)
}

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the selectable models",
	Long: `List the models each provider offers. Search and validation always use
Gemini; parsing uses the configured parsing provider.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		names := providers.List()
		if modelsProvider != "" {
			p, err := providers.Get(models.Provider(modelsProvider))
			if err != nil {
				return err
			}
			names = []models.Provider{p.Name()}
		}

		out := cmd.OutOrStdout()
		for i, name := range names {
			p, _ := providers.Get(name)
			if i > 0 {
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "%s:\n", p.DisplayName())

			for _, m := range p.Models() {
				marker := " "
				if m.ID == p.DefaultModel() {
					marker = "*"
				}
				fmt.Fprintf(out, "%s %-22s %s\n", marker, m.ID, m.Label)
				if modelsDefaults {
					fmt.Fprintf(out, "    %s\n", defaultParams(name, m.ID))
				}
			}
		}
		fmt.Fprintln(out, "\n* indicates the default model")
		return nil
	},
}

// defaultParams renders the parameters a model starts with
func defaultParams(provider models.Provider, model string) string {
	var v interface{} = providers.DefaultGeminiParams(model)
	if provider == models.ProviderOpenAI {
		v = providers.DefaultOpenAIParams(model)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err.Error()
	}
	return string(data)
}
