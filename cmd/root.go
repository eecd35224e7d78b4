package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"groundcite/config"
	"groundcite/config/models"
	"groundcite/config/storage"
	"groundcite/internal/api"
	"groundcite/internal/logging"
	"groundcite/internal/session"
	"groundcite/internal/settings"
)

// Version information
var (
	version string
	commit  string
	date    string
)

// SetVersionInfo sets the version information
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Environment keys read for API credentials, after the GROUNDCITE_ prefix
const (
	keyGeminiAPIKey          = "gemini_api_key"
	keyGeminiSecondaryAPIKey = "gemini_secondary_api_key"
	keyOpenAIAPIKey          = "openai_api_key"
)

var (
	configFile string
	envFile    string

	v      *viper.Viper
	cfg    settings.Settings
	logger = logging.Nop()
)

var rootCmd = &cobra.Command{
	Use:   "groundcite",
	Short: "Client for the GroundCite analysis service",
	Long: `groundcite configures and runs GroundCite analyses: grounded web search,
optional validation and structured parsing of the answer into a JSON schema.

Settings come from flags, GROUNDCITE_* environment variables, a .env file
and $XDG_CONFIG_HOME/groundcite/config.yaml, in that order of precedence.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("base-url", settings.DefaultBaseURL, "GroundCite backend origin")
	flags.Duration("timeout", settings.DefaultTimeout, "request timeout")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-file", "", "log file (default $XDG_STATE_HOME/groundcite/groundcite.log)")
	flags.Bool("dev", false, "development mode: debug logs on stderr")
	flags.StringVarP(&configFile, "config", "c", "", "configuration file exported by groundcite or the web client")
	flags.StringVar(&envFile, "env-file", ".env", "dotenv file to load")
}

// setup resolves settings and builds the logger before any command runs
func setup(cmd *cobra.Command, args []string) error {
	if err := settings.LoadDotEnv(envFile); err != nil {
		return err
	}

	v = settings.New()
	if err := settings.BindFlags(v, cmd.Flags()); err != nil {
		return err
	}
	s, err := settings.Load(v)
	if err != nil {
		return err
	}
	cfg = s

	logger = logging.New(logging.Options{
		Level:       s.LogLevel,
		File:        s.LogFile,
		Console:     s.Dev,
		Development: s.Dev,
	})
	logger.Debug("settings resolved",
		zap.String("base_url", s.BaseURL),
		zap.Duration("timeout", s.Timeout),
		zap.String("command", cmd.CommandPath()),
	)
	return nil
}

// loadFileState builds the configuration state from the session defaults
// and the --config file, if any.
func loadFileState() (*config.State, error) {
	state := config.NewState()
	if configFile == "" {
		return state, nil
	}

	data, err := storage.ReadImport(configFile)
	if err != nil {
		return nil, err
	}
	if err := state.Import(data); err != nil {
		return nil, fmt.Errorf("%s: %w", configFile, err)
	}
	logger.Debug("configuration file loaded", zap.String("path", configFile))
	return state, nil
}

// loadTargetState is loadFileState for commands that write the --config
// file: a file that does not exist yet starts from the defaults.
func loadTargetState() (*config.State, error) {
	if configFile == "" {
		return nil, errNoConfigFile
	}
	if !storage.FileExists(configFile) {
		return config.NewState(), nil
	}
	return loadFileState()
}

// loadState is loadFileState with API keys from the environment applied on
// top. The result must not be written back to the --config file.
func loadState() (*config.State, error) {
	state, err := loadFileState()
	if err != nil {
		return nil, err
	}

	keys := state.APIKeys()
	if v != nil {
		if k := v.GetString(keyGeminiAPIKey); k != "" {
			keys.Gemini.Primary = k
		}
		if k := v.GetString(keyGeminiSecondaryAPIKey); k != "" {
			keys.Gemini.Secondary = k
		}
		if k := v.GetString(keyOpenAIAPIKey); k != "" {
			keys.OpenAI = k
		}
	}
	state.SetAPIKeys(keys)
	return state, nil
}

func newClient() *api.Client {
	return api.NewClient(cfg.BaseURL,
		api.WithTimeout(cfg.Timeout),
		api.WithLogger(logger),
	)
}

// newSession builds a session over the resolved state and backend client
func newSession() (*session.Session, error) {
	state, err := loadState()
	if err != nil {
		return nil, err
	}
	return session.New(state, newClient(), session.WithLogger(logger)), nil
}

// requireOnline runs the health check that gates analysis requests
func requireOnline(ctx context.Context, s *session.Session) error {
	_, err := s.CheckHealth(ctx)
	return err
}

// reportedError marks an error the command has already printed
type reportedError struct{ error }

func (e reportedError) Unwrap() error { return e.error }

func reported(err error) error {
	if err == nil {
		return nil
	}
	return reportedError{err}
}

// IsReported reports whether err was already printed by the failing command
func IsReported(err error) bool {
	var r reportedError
	return errors.As(err, &r)
}

func savedLabel(c models.SavedConfiguration) string {
	if c.Name == "" {
		return "(unnamed)"
	}
	return c.Name
}

// Execute executes the root command
func Execute() error {
	// 设置版本信息
	rootCmd.Version = version

	// 设置版本输出格式
	rootCmd.SetVersionTemplate(`groundcite {{.Version}}
Commit: ` + commit + `
Date: ` + date + `
`)

	return rootCmd.Execute()
}
