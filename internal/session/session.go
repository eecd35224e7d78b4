// Package session hosts one interactive GroundCite session: the
// configuration state, backend connectivity, the single in-flight analysis,
// the advisory line and the saved-configuration list.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"groundcite/config"
	"groundcite/config/models"
	"groundcite/config/storage"
	"groundcite/config/validation"
	"groundcite/internal/advisory"
	"groundcite/internal/api"
	"groundcite/internal/logging"
)

// Prefixes of the advisories reported by the configuration operations
const (
	SavePrefix   = "Failed to save configuration: "
	DeletePrefix = "Failed to delete configuration: "
	LoadPrefix   = "Failed to load configuration: "
)

// ErrBusy is returned by Analyze while another analysis is in flight
var ErrBusy = errors.New("an analysis is already in progress")

// Session ties a configuration state to a backend client
type Session struct {
	state     *config.State
	client    *api.Client
	logger    *logging.Logger
	validator *validation.Validator
	input     *validation.InputValidator

	busy atomic.Bool

	mu       sync.Mutex
	advisory string
	saved    []models.SavedConfiguration
	result   *api.AnalysisResult
}

// Option configures a Session
type Option func(*Session)

// WithLogger sets the session logger
func WithLogger(l *logging.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a session over state and client. A nil state starts from the
// session defaults.
func New(state *config.State, client *api.Client, opts ...Option) *Session {
	if state == nil {
		state = config.NewState()
	}
	s := &Session{
		state:     state,
		client:    client,
		logger:    logging.Nop(),
		validator: validation.NewValidator(),
		input:     validation.NewInputValidator(),
		saved:     []models.SavedConfiguration{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("session")
	return s
}

// State returns the configuration state
func (s *Session) State() *config.State {
	return s.state
}

// Client returns the backend client
func (s *Session) Client() *api.Client {
	return s.client
}

// Connectivity reports the result of the last health check
func (s *Session) Connectivity() api.Connectivity {
	return s.client.Connectivity()
}

// Busy reports whether an analysis is in flight
func (s *Session) Busy() bool {
	return s.busy.Load()
}

// Advisory returns the current advisory line, empty when there is none
func (s *Session) Advisory() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.advisory
}

// ClearAdvisory dismisses the advisory line
func (s *Session) ClearAdvisory() {
	s.setAdvisory("")
}

func (s *Session) setAdvisory(msg string) {
	s.mu.Lock()
	s.advisory = msg
	s.mu.Unlock()
}

// fail records err as the advisory line and returns it
func (s *Session) fail(op string, err error) error {
	s.logger.Warn("operation failed",
		zap.String("operation", op),
		zap.String("category", advisory.CategoryOf(err)),
		zap.Error(err),
	)
	s.setAdvisory(err.Error())
	return err
}

// SavedConfigurations returns the saved configurations from the last refresh
func (s *Session) SavedConfigurations() []models.SavedConfiguration {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.SavedConfiguration, len(s.saved))
	copy(out, s.saved)
	return out
}

// LastResult returns the result of the last successful analysis, or nil
func (s *Session) LastResult() *api.AnalysisResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Startup runs the health check and loads the saved-configuration list. The
// list is loaded even when the backend is offline so that a late recovery
// still shows it. The returned error is the health check failure, if any.
func (s *Session) Startup(ctx context.Context) error {
	_, healthErr := s.CheckHealth(ctx)
	s.RefreshConfigurations(ctx)
	return healthErr
}

// CheckHealth probes the backend. A failure sets the offline advisory; a
// success leaves the advisory line alone.
func (s *Session) CheckHealth(ctx context.Context) (*api.HealthStatus, error) {
	status, err := s.client.HealthCheck(ctx)
	if err != nil {
		return nil, s.fail("health", err)
	}
	s.logger.Info("backend reachable", zap.String("status", status.Status), zap.String("version", status.Version))
	return status, nil
}

// RefreshConfigurations reloads the saved-configuration list. Errors are
// logged and leave an empty list.
func (s *Session) RefreshConfigurations(ctx context.Context) []models.SavedConfiguration {
	configs, err := s.client.ListConfigurations(ctx)
	if err != nil {
		s.logger.Warn("failed to list configurations", zap.Error(err))
		configs = []models.SavedConfiguration{}
	}

	s.mu.Lock()
	s.saved = configs
	s.mu.Unlock()
	return s.SavedConfigurations()
}

// SaveConfiguration stores the current state on the backend under name and
// refreshes the list.
func (s *Session) SaveConfiguration(ctx context.Context, name string) (*models.SavedConfiguration, error) {
	if err := s.input.ValidateConfigName(name); err != nil {
		return nil, s.fail("save", advisory.WithPrefix(SavePrefix, advisory.New(advisory.CategoryApplication, err.Error())))
	}

	saved, err := s.client.SaveConfiguration(ctx, s.state.SaveRequest(name))
	if err != nil {
		return nil, s.fail("save", advisory.WithPrefix(SavePrefix, err))
	}

	s.logger.Info("configuration saved", zap.String("name", name))
	s.RefreshConfigurations(ctx)
	return saved, nil
}

// DeleteConfiguration removes a saved configuration and refreshes the list
func (s *Session) DeleteConfiguration(ctx context.Context, id models.ConfigID) error {
	if err := s.client.DeleteConfiguration(ctx, id); err != nil {
		return s.fail("delete", advisory.WithPrefix(DeletePrefix, err))
	}

	s.logger.Info("configuration deleted", zap.String("id", string(id)))
	s.RefreshConfigurations(ctx)
	return nil
}

// LoadConfiguration applies a saved configuration to the state. The record
// is taken from the last listing when present, otherwise fetched by id.
func (s *Session) LoadConfiguration(ctx context.Context, id models.ConfigID) error {
	record, ok := s.findSaved(id)
	if !ok {
		fetched, err := s.client.GetConfiguration(ctx, id)
		if err != nil {
			return s.fail("load", advisory.WithPrefix(LoadPrefix, err))
		}
		record = *fetched
	}

	if err := s.state.ApplySavedRecord(record); err != nil {
		return s.fail("load", advisory.WithPrefix(LoadPrefix, err))
	}
	s.logger.Info("configuration loaded", zap.String("id", string(id)), zap.String("name", record.Name))
	return nil
}

func (s *Session) findSaved(id models.ConfigID) (models.SavedConfiguration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.saved {
		if c.ID == id {
			return c, true
		}
	}
	return models.SavedConfiguration{}, false
}

// ExportTo writes the state, API keys included, to path
func (s *Session) ExportTo(path string) error {
	data, err := s.state.Export()
	if err != nil {
		return s.fail("export", err)
	}
	if err := storage.WriteExport(path, data); err != nil {
		return s.fail("export", fmt.Errorf("failed to export configuration: %w", err))
	}
	s.logger.Info("configuration exported", zap.String("path", path))
	return nil
}

// ImportFrom reads path and merges it into the state. A file that is not a
// JSON object leaves the state untouched.
func (s *Session) ImportFrom(path string) error {
	data, err := storage.ReadImport(path)
	if err != nil {
		return s.fail("import", err)
	}
	if err := s.state.Import(data); err != nil {
		return s.fail("import", err)
	}
	s.logger.Info("configuration imported", zap.String("path", path))
	return nil
}

// Analyze runs one analysis with a snapshot of the current state. A call
// made while another is in flight returns ErrBusy. An unconnected session
// fails with OFFLINE before the request is checked. Failures become the
// advisory line; a success clears it.
func (s *Session) Analyze(ctx context.Context, query, systemInstruction string) (*api.AnalysisResult, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer s.busy.Store(false)

	if s.client.Connectivity() != api.Connected {
		return nil, s.fail("analyze", advisory.New(advisory.CategoryOffline, ""))
	}

	snapshot := s.state.Snapshot()
	if err := s.validator.ValidateAnalysisRequest(query, snapshot); err != nil {
		return nil, s.fail("analyze", advisory.New(advisory.CategoryApplication, err.Error()))
	}

	result, err := s.client.Analyze(ctx, query, systemInstruction, snapshot)
	if err != nil {
		return nil, s.fail("analyze", err)
	}

	s.mu.Lock()
	s.result = result
	s.advisory = ""
	s.mu.Unlock()
	return result, nil
}

// Close ends the session and wipes the API keys from memory
func (s *Session) Close() {
	s.state.ClearAPIKeys()
	_ = s.logger.Sync()
}
