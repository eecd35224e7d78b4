package tui

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"groundcite/config"
	"groundcite/config/models"
	"groundcite/internal/advisory"
	"groundcite/internal/api"
	"groundcite/internal/session"
)

func newTestSession(t *testing.T, keys models.APIKeys) *session.Session {
	t.Helper()
	state := config.NewState()
	state.SetAPIKeys(keys)
	// Never contacted: every test path fails before the network
	return session.New(state, api.NewClient("http://127.0.0.1:1"))
}

func withKeys() models.APIKeys {
	return models.APIKeys{Gemini: models.GeminiKeys{Primary: "AIzaSyTestPrimaryKey1234"}}
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "ctrl+r":
		return tea.KeyMsg{Type: tea.KeyCtrlR}
	case "ctrl+o":
		return tea.KeyMsg{Type: tea.KeyCtrlO}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func press(t *testing.T, m Model, keys ...string) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(keyMsg(k))
		m = next.(Model)
	}
	return m, cmd
}

func TestNewModelDefaultView(t *testing.T) {
	tests := []struct {
		name     string
		keys     models.APIKeys
		wantView ViewState
		wantTab  Tab
	}{
		{name: "no keys opens key panel", keys: models.APIKeys{}, wantView: ViewConfig, wantTab: TabKeys},
		{name: "keys open query view", keys: withKeys(), wantView: ViewMain, wantTab: TabBasic},
		{name: "openai key alone counts", keys: models.APIKeys{OpenAI: "sk-test"}, wantView: ViewMain, wantTab: TabBasic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewModel(newTestSession(t, tt.keys))
			if m.viewState != tt.wantView {
				t.Errorf("viewState = %v, want %v", m.viewState, tt.wantView)
			}
			if m.tab != tt.wantTab {
				t.Errorf("tab = %v, want %v", m.tab, tt.wantTab)
			}
		})
	}
}

func TestConfigTabNavigation(t *testing.T) {
	m := NewModel(newTestSession(t, withKeys()))
	m, _ = press(t, m, "ctrl+o")
	if m.viewState != ViewConfig || m.tab != TabBasic {
		t.Fatalf("view = %v tab = %v", m.viewState, m.tab)
	}

	m, _ = press(t, m, "tab", "tab")
	if m.tab != TabSchema {
		t.Errorf("tab = %v, want schema", m.tab)
	}
	m, _ = press(t, m, "shift+tab", "shift+tab", "shift+tab")
	if m.tab != TabKeys {
		t.Errorf("tab = %v, want keys (wrap around)", m.tab)
	}
	m, _ = press(t, m, "esc")
	if m.viewState != ViewMain {
		t.Errorf("view = %v, want main", m.viewState)
	}
}

func TestBasicTabToggles(t *testing.T) {
	s := newTestSession(t, withKeys())
	m := NewModel(s)
	m, _ = press(t, m, "ctrl+o", "enter", "down", "enter")

	cfg := s.State().Config()
	if !cfg.Validate || !cfg.Parse {
		t.Errorf("config = %+v, want validate and parse on", cfg)
	}

	m, _ = press(t, m, "enter")
	if s.State().Config().Parse {
		t.Error("second toggle did not turn parse off")
	}
}

func TestSiteListsForm(t *testing.T) {
	s := newTestSession(t, withKeys())
	m := NewModel(s)
	m, _ = press(t, m, "ctrl+o", "down", "down", "enter")
	if m.viewState != ViewForm || m.formKind != FormSiteLists {
		t.Fatalf("view = %v kind = %v", m.viewState, m.formKind)
	}

	m.formInputs[SiteFieldInclude].SetValue("a.com, b.com")
	m, _ = press(t, m, "enter")

	if got := s.State().Config().SiteConfig.IncludeList; got != "a.com\nb.com" {
		t.Errorf("IncludeList = %q", got)
	}
	if m.viewState != ViewConfig {
		t.Errorf("view = %v, want config", m.viewState)
	}
}

func TestModelsTabCycling(t *testing.T) {
	s := newTestSession(t, withKeys())
	m := NewModel(s)
	m, _ = press(t, m, "ctrl+o", "tab")

	m, _ = press(t, m, "right")
	if got := s.State().ModelName(config.OpSearch); got == config.DefaultConfigState().SearchModelName {
		t.Errorf("search model unchanged: %q", got)
	}
	m, _ = press(t, m, "left")
	if got := s.State().ModelName(config.OpSearch); got != config.DefaultConfigState().SearchModelName {
		t.Errorf("search model = %q, want back to default", got)
	}

	m, _ = press(t, m, "down", "down", "right")
	if s.State().ParsingProvider() != models.ProviderOpenAI {
		t.Fatalf("provider = %q", s.State().ParsingProvider())
	}
	if got := s.State().ModelName(config.OpParse); got != "o3-mini" {
		t.Errorf("parse model = %q, want o3-mini", got)
	}

	m, _ = press(t, m, "down", "right")
	if got := s.State().ModelName(config.OpParse); got == "o3-mini" {
		t.Error("parse model did not change")
	}
	if !strings.Contains(m.View(), "Parse model") {
		t.Error("models panel not rendered")
	}
}

func TestCycleModel(t *testing.T) {
	if got := cycleModel(models.ProviderGemini, "not-in-list", 1); got != "gemini-2.5-flash" {
		t.Errorf("cycleModel unknown = %q, want first entry", got)
	}
	first := cycleModel(models.ProviderOpenAI, "o3-mini", -1)
	if back := cycleModel(models.ProviderOpenAI, first, 1); back != "o3-mini" {
		t.Errorf("cycle back = %q, want o3-mini", back)
	}
	if got := cycleProvider(models.ProviderGemini, 1); got != models.ProviderOpenAI {
		t.Errorf("cycleProvider = %q", got)
	}
}

func TestSchemaTabEditing(t *testing.T) {
	s := newTestSession(t, withKeys())
	m := NewModel(s)
	m, _ = press(t, m, "ctrl+o", "tab", "tab")
	before := len(s.State().SchemaKeys())

	m, _ = press(t, m, "a")
	if m.viewState != ViewForm || m.formKind != FormSchemaKey {
		t.Fatalf("view = %v kind = %v", m.viewState, m.formKind)
	}
	if len(s.State().SchemaKeys()) != before+1 {
		t.Fatal("add did not append a field")
	}

	m.formInputs[SchemaFieldKey].SetValue("summary")
	m.formInputs[SchemaFieldType].SetValue("bogus")
	m, _ = press(t, m, "enter")
	if m.viewState != ViewForm || m.formError == "" {
		t.Fatal("invalid type accepted")
	}

	m.formInputs[SchemaFieldType].SetValue("String")
	m.formInputs[SchemaFieldRequired].SetValue("y")
	m, _ = press(t, m, "enter")
	if m.viewState != ViewConfig {
		t.Fatalf("view = %v, want config", m.viewState)
	}
	keys := s.State().SchemaKeys()
	last := keys[len(keys)-1]
	if last.Key != "summary" || last.Type != models.FieldString || !last.Required {
		t.Errorf("field = %+v", last)
	}

	m, _ = press(t, m, "g")
	if !strings.Contains(s.State().Config().Schema, `"summary"`) {
		t.Errorf("schema not regenerated: %s", s.State().Config().Schema)
	}

	m, _ = press(t, m, "d")
	if len(s.State().SchemaKeys()) != before {
		t.Errorf("delete left %d fields, want %d", len(s.State().SchemaKeys()), before)
	}
}

func TestKeysForm(t *testing.T) {
	s := newTestSession(t, models.APIKeys{})
	m := NewModel(s)

	m, _ = press(t, m, "enter")
	if m.viewState != ViewForm || m.formKind != FormKeys {
		t.Fatalf("view = %v kind = %v", m.viewState, m.formKind)
	}
	m.formInputs[KeyFieldGeminiPrimary].SetValue("AIzaSySecretValue9876")
	m, _ = press(t, m, "enter")

	if got := s.State().APIKeys().Gemini.Primary; got != "AIzaSySecretValue9876" {
		t.Errorf("primary = %q", got)
	}
	view := m.View()
	if strings.Contains(view, "AIzaSySecretValue9876") {
		t.Error("key panel shows the key in clear text")
	}
	if !strings.Contains(view, "AIza****9876") {
		t.Errorf("key panel missing masked key:\n%s", view)
	}

	m, _ = press(t, m, "c")
	if !s.State().APIKeys().IsEmpty() {
		t.Error("clear did not wipe keys")
	}
}

func TestSaveNameFormRejectsEmpty(t *testing.T) {
	m := NewModel(newTestSession(t, withKeys()))
	m, _ = press(t, m, "ctrl+o", "tab", "tab", "tab", "n")
	if m.viewState != ViewForm || m.formKind != FormSaveName {
		t.Fatalf("view = %v kind = %v", m.viewState, m.formKind)
	}

	m, cmd := press(t, m, "enter")
	if cmd != nil || m.formError == "" {
		t.Error("empty name submitted")
	}

	m.formInputs[0].SetValue("mine")
	m, cmd = press(t, m, "enter")
	if cmd == nil {
		t.Error("save command not returned")
	}
	if m.viewState != ViewConfig {
		t.Errorf("view = %v, want config", m.viewState)
	}
}

func TestAnalyzePreflightFailure(t *testing.T) {
	s := newTestSession(t, withKeys())
	s.Client().SetConnectivity(api.Connected)
	m := NewModel(s)

	m, cmd := press(t, m, "ctrl+r")
	if m.viewState != ViewAnalyzing {
		t.Fatalf("view = %v, want analyzing", m.viewState)
	}
	if cmd == nil {
		t.Fatal("no command returned")
	}

	// Empty query fails locally
	msg := runAnalysis(m.session, "", "")()
	next, _ := m.Update(msg)
	m = next.(Model)
	if m.viewState != ViewMain {
		t.Errorf("view = %v, want main", m.viewState)
	}
	if m.errorMsg != "Query cannot be empty" {
		t.Errorf("errorMsg = %q", m.errorMsg)
	}
}

func TestAnalyzeOfflineBeforePreflight(t *testing.T) {
	tests := []struct {
		name         string
		connectivity api.Connectivity
		keys         models.APIKeys
		query        string
	}{
		{"offline, empty query", api.Disconnected, withKeys(), ""},
		{"offline, no keys", api.Disconnected, models.APIKeys{}, "question"},
		{"unknown, empty query", api.ConnectivityUnknown, withKeys(), " "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession(t, tt.keys)
			s.Client().SetConnectivity(tt.connectivity)
			m := NewModel(s)

			next, _ := m.Update(runAnalysis(s, tt.query, "")())
			m = next.(Model)
			if m.viewState != ViewMain {
				t.Errorf("view = %v, want main", m.viewState)
			}
			if m.errorMsg != advisory.OfflineAdvisory {
				t.Errorf("errorMsg = %q, want %q", m.errorMsg, advisory.OfflineAdvisory)
			}
			if s.Advisory() != advisory.OfflineAdvisory {
				t.Errorf("Advisory = %q", s.Advisory())
			}
		})
	}
}

func TestAnalysisResultView(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":{"completed":true,"final_content":{"content":"The answer"}},"metadata":{}}`))
	}))
	defer server.Close()

	state := config.NewState()
	state.SetAPIKeys(withKeys())
	client := api.NewClient(server.URL)
	client.SetConnectivity(api.Connected)
	s := session.New(state, client)

	m := NewModel(s)
	result, err := s.Analyze(context.Background(), "question", "")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	next, _ := m.Update(AnalysisDoneMsg{Result: result})
	m = next.(Model)
	if m.viewState != ViewResults {
		t.Fatalf("view = %v, want results", m.viewState)
	}
	if view := m.View(); !strings.Contains(view, "The answer") {
		t.Errorf("results view missing content:\n%s", view)
	}

	m, _ = press(t, m, "r")
	if !m.showRaw {
		t.Error("raw toggle not applied")
	}
	m, _ = press(t, m, "esc")
	if m.viewState != ViewMain {
		t.Errorf("view = %v, want main", m.viewState)
	}
}

func TestMessagesSetStatus(t *testing.T) {
	tests := []struct {
		name        string
		msg         tea.Msg
		wantMessage string
		wantError   string
	}{
		{"saved", ConfigSavedMsg{Name: "a"}, "Configuration saved: a", ""},
		{"save failed", ConfigSavedMsg{Err: errors.New("Failed to save configuration: x")}, "", "Failed to save configuration: x"},
		{"deleted", ConfigDeletedMsg{Name: "b"}, "Configuration deleted: b", ""},
		{"loaded", ConfigLoadedMsg{Name: "c"}, "Configuration loaded: c", ""},
		{"exported", TransferDoneMsg{Export: true, Path: "f.json"}, "Configuration exported to f.json", ""},
		{"imported", TransferDoneMsg{Path: "f.json"}, "Configuration imported from f.json", ""},
		{"import failed", TransferDoneMsg{Path: "f.json", Err: advisory.New(advisory.CategoryMalformed, "")}, "", "Invalid configuration file"},
		{"offline", StartupMsg{Err: advisory.New(advisory.CategoryOffline, "")}, "", advisory.OfflineAdvisory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewModel(newTestSession(t, withKeys()))
			next, _ := m.Update(tt.msg)
			m = next.(Model)
			if m.message != tt.wantMessage {
				t.Errorf("message = %q, want %q", m.message, tt.wantMessage)
			}
			if m.errorMsg != tt.wantError {
				t.Errorf("errorMsg = %q, want %q", m.errorMsg, tt.wantError)
			}
		})
	}
}

func TestViewsRender(t *testing.T) {
	m := NewModel(newTestSession(t, withKeys()))
	for _, v := range []ViewState{ViewMain, ViewConfig, ViewAnalyzing, ViewResults, ViewDelete, ViewHelp} {
		m.viewState = v
		for tab := Tab(0); tab < tabCount; tab++ {
			m.tab = tab
			if m.View() == "" {
				t.Errorf("view %v tab %v rendered empty", v, tab)
			}
		}
	}
}

func TestQuit(t *testing.T) {
	m := NewModel(newTestSession(t, withKeys()))
	_, cmd := press(t, m, "ctrl+c")
	if cmd == nil {
		t.Fatal("ctrl+c returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+c did not quit")
	}
}
