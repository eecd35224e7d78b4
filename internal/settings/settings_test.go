package settings

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func isolate(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
	t.Setenv("GROUNDCITE_API_BASE_URL", "")
	t.Setenv("GROUNDCITE_BASE_URL", "")
	t.Setenv("GROUNDCITE_TIMEOUT", "")
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	s, err := Load(New())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.BaseURL != DefaultBaseURL {
		t.Errorf("BaseURL = %q, want default", s.BaseURL)
	}
	if s.Timeout != 300*time.Second {
		t.Errorf("Timeout = %v, want 5m0s", s.Timeout)
	}
	if filepath.Base(s.LogFile) != "groundcite.log" {
		t.Errorf("LogFile = %q", s.LogFile)
	}
}

func TestLoadFromEnv(t *testing.T) {
	isolate(t)
	t.Setenv("GROUNDCITE_API_BASE_URL", "http://localhost:7071/")
	t.Setenv("GROUNDCITE_TIMEOUT", "45s")

	s, err := Load(New())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.BaseURL != "http://localhost:7071" {
		t.Errorf("BaseURL = %q", s.BaseURL)
	}
	if s.Timeout != 45*time.Second {
		t.Errorf("Timeout = %v", s.Timeout)
	}
}

func TestFlagsOverrideEnv(t *testing.T) {
	isolate(t)
	t.Setenv("GROUNDCITE_API_BASE_URL", "http://env.example.com")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("base-url", "", "")
	flags.Duration("timeout", DefaultTimeout, "")
	if err := flags.Parse([]string{"--base-url", "https://flag.example.com"}); err != nil {
		t.Fatal(err)
	}

	v := New()
	if err := BindFlags(v, flags); err != nil {
		t.Fatalf("BindFlags() error = %v", err)
	}
	s, err := Load(v)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.BaseURL != "https://flag.example.com" {
		t.Errorf("BaseURL = %q, want flag value", s.BaseURL)
	}
}

func TestLoadConfigFile(t *testing.T) {
	isolate(t)
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	content := "base_url: https://file.example.com\nlog_level: debug\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	s, err := Load(New())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.BaseURL != "https://file.example.com" || s.LogLevel != "debug" {
		t.Errorf("settings = %+v", s)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	isolate(t)
	t.Setenv("GROUNDCITE_API_BASE_URL", "ftp://files.example.com")
	if _, err := Load(New()); err == nil {
		t.Error("ftp base URL should be rejected")
	}

	isolate(t)
	t.Setenv("GROUNDCITE_TIMEOUT", "-1s")
	if _, err := Load(New()); err == nil {
		t.Error("negative timeout should be rejected")
	}
}

func TestLoadDotEnv(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("GROUNDCITE_DOTENV_PROBE=loaded\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("GROUNDCITE_DOTENV_PROBE") })

	if err := LoadDotEnv(path, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}
	if got := os.Getenv("GROUNDCITE_DOTENV_PROBE"); got != "loaded" {
		t.Errorf("GROUNDCITE_DOTENV_PROBE = %q", got)
	}
}
