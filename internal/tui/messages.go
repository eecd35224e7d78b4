package tui

import (
	"groundcite/config/models"
	"groundcite/internal/api"
)

// StartupMsg is sent when the health check and the first listing finish
type StartupMsg struct {
	Configs []models.SavedConfiguration
	Err     error
}

// ConfigsLoadedMsg is sent when the saved-configuration list is reloaded
type ConfigsLoadedMsg struct {
	Configs []models.SavedConfiguration
}

// AnalysisDoneMsg is sent when an analysis request finishes
type AnalysisDoneMsg struct {
	Result *api.AnalysisResult
	Err    error
}

// ConfigSavedMsg is sent when a configuration is saved
type ConfigSavedMsg struct {
	Name string
	Err  error
}

// ConfigDeletedMsg is sent when a saved configuration is deleted
type ConfigDeletedMsg struct {
	Name string
	Err  error
}

// ConfigLoadedMsg is sent when a saved configuration is applied
type ConfigLoadedMsg struct {
	Name string
	Err  error
}

// TransferDoneMsg is sent when an export or import finishes
type TransferDoneMsg struct {
	Export bool
	Path   string
	Err    error
}
