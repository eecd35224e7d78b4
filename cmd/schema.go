package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"groundcite/config/storage"
)

var schemaWrite bool

func init() {
	schemaGenerateCmd.Flags().BoolVarP(&schemaWrite, "write", "w", false, "store the schema as config.schema in the --config file")
	schemaCmd.AddCommand(schemaGenerateCmd, schemaKeysCmd)
	rootCmd.AddCommand(schemaCmd)
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Work with the parse output schema",
	Long:  "Inspect the schema field descriptors and build the JSON schema used by the parse operation",
}

var schemaKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List the schema field descriptors",
	Long:  "List the field descriptors (key, type, required, description) of the current configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		state, err := loadState()
		if err != nil {
			return err
		}
		defer state.ClearAPIKeys()

		out := cmd.OutOrStdout()
		keys := state.SchemaKeys()
		if len(keys) == 0 {
			fmt.Fprintln(out, "No schema keys")
			return nil
		}
		for _, k := range keys {
			required := " "
			if k.Required {
				required = "*"
			}
			fmt.Fprintf(out, "%s %s (%s)", required, valueOr(k.Key), k.Type)
			if k.Description != "" {
				fmt.Fprintf(out, ": %s", k.Description)
			}
			fmt.Fprintln(out)
		}
		fmt.Fprintln(out, "\n* indicates a required field")
		return nil
	},
}

var schemaGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the JSON schema from the field descriptors",
	Long: `Build the JSON schema from the schema field descriptors and print it.

Descriptors with a blank key are skipped. With --write the schema replaces
config.schema in the --config file; any hand-written schema there is lost.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		load := loadFileState
		if schemaWrite {
			load = loadTargetState
		}
		state, err := load()
		if err != nil {
			return err
		}
		defer state.ClearAPIKeys()

		schema, err := state.GenerateSchema()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), schema)

		if !schemaWrite {
			return nil
		}

		data, err := state.Export()
		if err != nil {
			return err
		}
		return storage.WriteExport(configFile, data)
	},
}
