// Package settings resolves the client settings from flags, environment,
// an optional .env file and an optional config file, in that order of
// precedence.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"groundcite/internal/utils"
)

const (
	// EnvPrefix prefixes every environment variable read by viper
	EnvPrefix = "GROUNDCITE"
	// DefaultBaseURL is the hosted analysis service
	DefaultBaseURL = "https://questify-server-gdegcmawbde8hxfn.centralindia-01.azurewebsites.net"
	// DefaultTimeout bounds every request, analyses included
	DefaultTimeout = 300 * time.Second
)

// Setting keys
const (
	KeyBaseURL  = "base_url"
	KeyTimeout  = "timeout"
	KeyLogLevel = "log_level"
	KeyLogFile  = "log_file"
	KeyDev      = "dev"
)

// Settings are the resolved client settings
type Settings struct {
	BaseURL  string
	Timeout  time.Duration
	LogLevel string
	LogFile  string
	Dev      bool
}

// LoadDotEnv loads variables from the given .env files (default ".env").
// Missing files are not an error; variables already set are kept.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// New returns a viper instance with defaults, environment bindings and the
// config file search path set up.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyBaseURL, DefaultBaseURL)
	v.SetDefault(KeyTimeout, DefaultTimeout)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFile, DefaultLogFile())
	v.SetDefault(KeyDev, false)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	_ = v.BindEnv(KeyBaseURL, EnvPrefix+"_API_BASE_URL", EnvPrefix+"_BASE_URL")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if dir := ConfigDir(); dir != "" {
		v.AddConfigPath(dir)
	}
	return v
}

// BindFlags binds the persistent flags named after the setting keys
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	bindings := map[string]string{
		KeyBaseURL:  "base-url",
		KeyTimeout:  "timeout",
		KeyLogLevel: "log-level",
		KeyLogFile:  "log-file",
		KeyDev:      "dev",
	}
	for key, flag := range bindings {
		f := flags.Lookup(flag)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", flag, err)
		}
	}
	return nil
}

// Load reads the optional config file and resolves the settings
func Load(v *viper.Viper) (Settings, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Settings{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	s := Settings{
		BaseURL:  utils.NormalizeBaseURL(v.GetString(KeyBaseURL)),
		Timeout:  v.GetDuration(KeyTimeout),
		LogLevel: v.GetString(KeyLogLevel),
		LogFile:  v.GetString(KeyLogFile),
		Dev:      v.GetBool(KeyDev),
	}
	if s.BaseURL == "" {
		s.BaseURL = DefaultBaseURL
	}
	if !utils.ValidateURL(s.BaseURL) {
		return Settings{}, fmt.Errorf("invalid base URL: %s", s.BaseURL)
	}
	if s.Timeout <= 0 {
		return Settings{}, fmt.Errorf("timeout must be positive, got %s", s.Timeout)
	}
	return s, nil
}

// ConfigDir returns $XDG_CONFIG_HOME/groundcite, falling back to ~/.config
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "groundcite")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "groundcite")
}

// DefaultLogFile returns $XDG_STATE_HOME/groundcite/groundcite.log, falling
// back to ~/.local/state. It is empty when no home directory is known.
func DefaultLogFile() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "groundcite", "groundcite.log")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", "groundcite", "groundcite.log")
}
