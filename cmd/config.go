package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"groundcite/config"
	"groundcite/config/models"
	"groundcite/config/storage"
	"groundcite/config/validation"
	"groundcite/internal/providers"
)

var errNoConfigFile = errors.New("no configuration file given, use --config")

func init() {
	configCmd.AddCommand(configShowCmd, configExportCmd, configImportCmd, configSetCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and edit the local configuration file",
	Long: `Inspect and edit a configuration file in the export format shared with the
GroundCite web client (camelCase keys, API keys included).

Commands that change a file need --config. Writes are atomic and keep a
backup of the previous version.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current configuration",
	Long:  "Show the resolved configuration (defaults, --config file, environment keys) with API keys masked",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		state, err := loadState()
		if err != nil {
			return err
		}
		defer state.ClearAPIKeys()

		data, err := state.Export()
		if err != nil {
			return err
		}
		data, err = maskExportKeys(data)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var configExportCmd = &cobra.Command{
	Use:   "export [path]",
	Short: "Export the current configuration",
	Long: `Write the resolved configuration, API keys included, to a file.

The default path is ` + config.ExportFileName + ` in the working directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.ExportFileName
		if len(args) == 1 {
			path = args[0]
		}

		s, err := newSession()
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.ExportTo(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Configuration exported to %s\n", path)
		return nil
	},
}

var configImportCmd = &cobra.Command{
	Use:   "import <path>",
	Short: "Merge an exported configuration into the --config file",
	Long: `Read an exported configuration and merge it into the --config file.

Fields present in the imported file replace the current values; absent or
mistyped fields keep them. A file that is not a JSON object is rejected.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		state, err := loadTargetState()
		if err != nil {
			return err
		}
		defer state.ClearAPIKeys()

		data, err := storage.ReadImport(args[0])
		if err != nil {
			return err
		}
		if err := state.Import(data); err != nil {
			return err
		}
		if data, err = state.Export(); err != nil {
			return err
		}
		if err := storage.WriteExport(configFile, data); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %s into %s\n", args[0], configFile)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <path> <value>",
	Short: "Set one field of the --config file",
	Long: `Set one field of the --config file by its JSON path.

Values that parse as JSON (numbers, booleans, objects) are stored as such;
anything else is stored as a string. The parameter blocks are range
checked before the file is written.

Examples:
  groundcite -c cfg.json config set config.parse true
  groundcite -c cfg.json config set parsingProvider openai
  groundcite -c cfg.json config set searchGeminiParams.temperature 0.3
  groundcite -c cfg.json config set config.siteConfig.excludeList "reddit.com"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if configFile == "" {
			return errNoConfigFile
		}

		doc := []byte("{}")
		if storage.FileExists(configFile) {
			data, err := storage.ReadImport(configFile)
			if err != nil {
				return err
			}
			doc = data
		}

		patched, err := setValue(doc, args[0], args[1])
		if err != nil {
			return err
		}

		state := config.NewState()
		defer state.ClearAPIKeys()
		if err := state.Import(patched); err != nil {
			return err
		}
		if args[0] == "parsingProvider" {
			// switching provider also resets the parse model
			if err := state.SetParsingProvider(models.Provider(args[1])); err != nil {
				return err
			}
		}
		if err := checkParams(state); err != nil {
			return err
		}

		data, err := state.Export()
		if err != nil {
			return err
		}
		if err := storage.WriteExport(configFile, data); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", args[0], gjson.GetBytes(data, args[0]).Raw)
		return nil
	},
}

// setValue stores value at path, as raw JSON when it parses as JSON
func setValue(doc []byte, path, value string) ([]byte, error) {
	var out []byte
	var err error
	if gjson.Valid(value) {
		out, err = sjson.SetRawBytes(doc, path, []byte(value))
	} else {
		out, err = sjson.SetBytes(doc, path, value)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to set %s: %w", path, err)
	}
	return out, nil
}

// patchStrings rewrites the string values at the given paths. Missing and
// non-string values are left alone.
func patchStrings(doc []byte, patches map[string]func(string) string) ([]byte, error) {
	var err error
	for path, fn := range patches {
		v := gjson.GetBytes(doc, path)
		if v.Type != gjson.String {
			continue
		}
		doc, err = sjson.SetBytes(doc, path, fn(v.String()))
		if err != nil {
			return nil, fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return doc, nil
}

// checkParams validates the parameter blocks and model names of the
// operations in use
func checkParams(state *config.State) error {
	v := validation.NewValidator()
	input := validation.NewInputValidator()
	snap := state.Snapshot()

	if err := v.ValidateProvider(snap.ParsingProvider); err != nil {
		return err
	}
	for _, op := range config.Operations {
		if err := v.ValidateGeminiParams(state.GeminiParams(op)); err != nil {
			return fmt.Errorf("%s parameters: %w", op, err)
		}
	}
	if snap.ParsingProvider == models.ProviderOpenAI {
		if err := v.ValidateOpenAIParams(state.OpenAIParams()); err != nil {
			return fmt.Errorf("parse parameters: %w", err)
		}
	}

	gemini := modelIDs(models.ProviderGemini)
	for _, op := range []config.Operation{config.OpSearch, config.OpValidate} {
		if err := input.ValidateModelInList(state.ModelName(op), gemini); err != nil {
			return fmt.Errorf("%s model: %w", op, err)
		}
	}
	if err := input.ValidateModelInList(snap.ParseModelName, modelIDs(snap.ParsingProvider)); err != nil {
		return fmt.Errorf("parse model: %w", err)
	}
	return nil
}

func modelIDs(name models.Provider) []string {
	p, err := providers.Get(name)
	if err != nil {
		return nil
	}
	var ids []string
	for _, m := range p.Models() {
		ids = append(ids, m.ID)
	}
	return ids
}
