package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"

	"groundcite/config/models"
	"groundcite/internal/utils"
)

var configsJSON bool

func init() {
	configsCmd.PersistentFlags().BoolVar(&configsJSON, "json", false, "output as JSON")
	configsCmd.AddCommand(configsListCmd, configsSaveCmd, configsDeleteCmd, configsShowCmd)
	rootCmd.AddCommand(configsCmd)
}

var configsCmd = &cobra.Command{
	Use:   "configs",
	Short: "Manage configurations saved on the backend",
	Long: `List, save, delete and inspect named configurations stored by the GroundCite
service. Saved records include the API keys of the configuration they were
saved from.`,
}

var configsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved configurations",
	Long:  "List the configurations saved on the backend, newest as returned by the service",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		defer s.Close()

		configs := s.RefreshConfigurations(cmd.Context())
		out := cmd.OutOrStdout()

		if configsJSON {
			rows := make([]map[string]string, 0, len(configs))
			for _, c := range configs {
				rows = append(rows, map[string]string{
					"id":         string(c.ID),
					"name":       c.Name,
					"created_at": c.CreatedAt,
					"updated_at": c.UpdatedAt,
				})
			}
			data, _ := json.MarshalIndent(rows, "", "  ")
			fmt.Fprintln(out, string(data))
			return nil
		}

		if len(configs) == 0 {
			fmt.Fprintln(out, "No saved configurations")
			return nil
		}

		fmt.Fprintln(out, "Saved configurations:")
		for _, c := range configs {
			fmt.Fprintf(out, "  %s: %s (search: %s, parse: %s/%s)\n",
				c.ID, savedLabel(c), valueOr(c.SearchModelName), valueOr(string(c.ParsingProvider)), valueOr(c.ParseModelName))
		}
		return nil
	},
}

var configsSaveCmd = &cobra.Command{
	Use:   "save <name>",
	Short: "Save the current configuration",
	Long: `Save the current configuration on the backend under a name.

The current configuration is the --config file with GROUNDCITE_*_API_KEY
overrides applied. API keys are stored with the record.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		defer s.Close()

		saved, err := s.SaveConfiguration(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if saved != nil && saved.ID != "" {
			fmt.Fprintf(out, "Configuration '%s' saved (id %s)\n", args[0], saved.ID)
		} else {
			fmt.Fprintf(out, "Configuration '%s' saved\n", args[0])
		}
		return nil
	},
}

var configsDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a saved configuration",
	Long:    "Delete the saved configuration with the given id from the backend",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.DeleteConfiguration(cmd.Context(), models.ConfigID(args[0])); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Configuration %s deleted\n", args[0])
		return nil
	},
}

var configsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a saved configuration",
	Long:  "Show one saved configuration as exported JSON with API keys masked",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		s.RefreshConfigurations(ctx)
		if err := s.LoadConfiguration(ctx, models.ConfigID(args[0])); err != nil {
			return err
		}

		data, err := s.State().Export()
		if err != nil {
			return err
		}
		data, err = maskExportKeys(data)
		if err != nil {
			return err
		}
		if configsJSON {
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		}
		fmt.Fprint(cmd.OutOrStdout(), string(pretty.Pretty(data)))
		return nil
	},
}

// maskExportKeys replaces every API key of an export document with its
// masked form
func maskExportKeys(doc []byte) ([]byte, error) {
	return patchStrings(doc, map[string]func(string) string{
		"apiKeys.gemini.primary":   utils.MaskAPIKey,
		"apiKeys.gemini.secondary": utils.MaskAPIKey,
		"apiKeys.openai":           utils.MaskAPIKey,
	})
}
