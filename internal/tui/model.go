// Package tui provides the interactive terminal client for GroundCite
package tui

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"groundcite/config"
	"groundcite/config/models"
	"groundcite/internal/providers"
	"groundcite/internal/report"
	"groundcite/internal/session"
)

// ViewState represents the current view state
type ViewState int

const (
	ViewMain      ViewState = iota // Query entry
	ViewConfig                     // Configuration panels
	ViewAnalyzing                  // Analysis in flight
	ViewResults                    // Last analysis result
	ViewForm                       // Form dialog
	ViewDelete                     // Delete confirmation dialog
	ViewHelp                       // Help panel
)

// Tab is one configuration panel
type Tab int

const (
	TabBasic Tab = iota
	TabModels
	TabSchema
	TabSaved
	TabKeys
	tabCount
)

// TabNames lists the panel titles in tab order
var TabNames = []string{"Basic", "Models", "Schema", "Saved", "API Keys"}

// Basic panel rows
const (
	BasicRowValidate = iota
	BasicRowParse
	BasicRowSites
	BasicRowExport
	BasicRowImport
	basicRowCount
)

// Models panel rows
const (
	ModelRowSearch = iota
	ModelRowValidate
	ModelRowProvider
	ModelRowParse
	modelRowCount
)

// Model is the core state model for TUI
type Model struct {
	session *session.Session
	keys    KeyMap

	viewState ViewState
	prevView  ViewState
	tab       Tab
	cursor    int // Row cursor in the current panel

	// Query entry
	query       textarea.Model
	instruction textinput.Model
	focusInstr  bool

	// Form related
	formKind   FormKind
	formInputs []textinput.Model
	formFocus  int
	formIndex  int // Schema key being edited
	formError  string

	spinner    spinner.Model
	results    viewport.Model
	showRaw    bool
	exportPath string

	// Messages and errors
	message  string
	errorMsg string

	width  int
	height int
}

// NewModel creates a new TUI model. It opens on the API key panel when no
// key has been entered yet.
func NewModel(s *session.Session) Model {
	query := textarea.New()
	query.Placeholder = "Ask a question to research..."
	query.ShowLineNumbers = false
	query.SetWidth(76)
	query.SetHeight(5)
	query.Focus()

	instruction := newInput("optional system instruction", 2048)
	instruction.Width = 74

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		session:     s,
		keys:        DefaultKeyMap(),
		viewState:   ViewMain,
		query:       query,
		instruction: instruction,
		spinner:     sp,
		results:     viewport.New(78, 18),
		exportPath:  config.ExportFileName,
		width:       80,
		height:      24,
	}

	if s.State().APIKeys().IsEmpty() {
		m.viewState = ViewConfig
		m.tab = TabKeys
	}
	return m
}

// WithExportPath sets the file used by the export and import rows
func (m Model) WithExportPath(path string) Model {
	if path != "" {
		m.exportPath = path
	}
	return m
}

// Init runs the startup health check and listing
func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, startup(m.session))
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		w := m.getEffectiveWidth(80)
		m.query.SetWidth(w - 4)
		m.instruction.Width = w - 6
		m.results.Width = w
		m.results.Height = max(m.height-8, 5)
		return m, nil

	case StartupMsg:
		if msg.Err != nil {
			m.errorMsg = msg.Err.Error()
		}
		return m, nil

	case ConfigsLoadedMsg:
		if m.tab == TabSaved && m.cursor >= len(msg.Configs) {
			m.cursor = max(len(msg.Configs)-1, 0)
		}
		return m, nil

	case AnalysisDoneMsg:
		if msg.Err != nil {
			m.viewState = ViewMain
			m.errorMsg = msg.Err.Error()
			return m, nil
		}
		m.errorMsg = ""
		m.message = ""
		m.showRaw = false
		m.renderResults()
		m.viewState = ViewResults
		return m, nil

	case ConfigSavedMsg:
		if msg.Err != nil {
			m.errorMsg = msg.Err.Error()
		} else {
			m.message = "Configuration saved: " + msg.Name
		}
		return m, nil

	case ConfigDeletedMsg:
		if msg.Err != nil {
			m.errorMsg = msg.Err.Error()
		} else {
			m.message = "Configuration deleted: " + msg.Name
		}
		if n := len(m.session.SavedConfigurations()); m.cursor >= n {
			m.cursor = max(n-1, 0)
		}
		return m, nil

	case ConfigLoadedMsg:
		if msg.Err != nil {
			m.errorMsg = msg.Err.Error()
		} else {
			m.message = "Configuration loaded: " + msg.Name
		}
		return m, nil

	case TransferDoneMsg:
		switch {
		case msg.Err != nil:
			m.errorMsg = msg.Err.Error()
		case msg.Export:
			m.message = "Configuration exported to " + msg.Path
		default:
			m.message = "Configuration imported from " + msg.Path
		}
		return m, nil

	case spinner.TickMsg:
		if m.viewState != ViewAnalyzing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m.updateFocused(msg)
}

// updateFocused forwards other messages, such as cursor blinks, to the
// focused input
func (m Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.viewState {
	case ViewMain:
		if m.focusInstr {
			m.instruction, cmd = m.instruction.Update(msg)
		} else {
			m.query, cmd = m.query.Update(msg)
		}
	case ViewForm:
		if m.formFocus < len(m.formInputs) {
			m.formInputs[m.formFocus], cmd = m.formInputs[m.formFocus].Update(msg)
		}
	}
	return m, cmd
}

// handleKeyMsg handles keyboard input
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	switch m.viewState {
	case ViewMain:
		return m.handleMainViewKeys(msg)
	case ViewConfig:
		return m.handleConfigViewKeys(msg)
	case ViewForm:
		return m.handleFormViewKeys(msg)
	case ViewDelete:
		return m.handleDeleteViewKeys(msg)
	case ViewResults:
		return m.handleResultsViewKeys(msg)
	case ViewHelp:
		m.viewState = m.prevView
		return m, nil
	default:
		// During analysis only quit is allowed
		return m, nil
	}
}

// handleMainViewKeys handles keyboard input in the query view
func (m Model) handleMainViewKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Analyze):
		return m.startAnalysis()

	case key.Matches(msg, m.keys.Configure):
		m.openConfig(m.tab)
		return m, nil

	case key.Matches(msg, m.keys.Results):
		if m.session.LastResult() != nil {
			m.viewState = ViewResults
		}
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.prevView = m.viewState
		m.viewState = ViewHelp
		return m, nil

	case key.Matches(msg, m.keys.NextTab), key.Matches(msg, m.keys.PrevTab):
		m.focusInstr = !m.focusInstr
		if m.focusInstr {
			m.query.Blur()
			return m, m.instruction.Focus()
		}
		m.instruction.Blur()
		return m, m.query.Focus()

	case key.Matches(msg, m.keys.Back):
		m.errorMsg = ""
		m.message = ""
		m.session.ClearAdvisory()
		return m, nil
	}

	return m.updateFocused(msg)
}

func (m *Model) openConfig(tab Tab) {
	m.viewState = ViewConfig
	m.tab = tab
	m.cursor = 0
	m.message = ""
	m.errorMsg = ""
}

// startAnalysis launches one analysis. The session refuses a second one
// while the first is in flight.
func (m Model) startAnalysis() (tea.Model, tea.Cmd) {
	if m.session.Busy() {
		m.errorMsg = session.ErrBusy.Error()
		return m, nil
	}
	m.message = ""
	m.errorMsg = ""
	m.viewState = ViewAnalyzing
	return m, tea.Batch(
		runAnalysis(m.session, m.query.Value(), m.instruction.Value()),
		m.spinner.Tick,
	)
}

// handleConfigViewKeys handles keyboard input in the configuration panels
func (m Model) handleConfigViewKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.viewState = ViewMain
		m.message = ""
		m.errorMsg = ""
		return m, nil

	case key.Matches(msg, m.keys.NextTab):
		m.openConfig((m.tab + 1) % tabCount)
		return m, nil

	case key.Matches(msg, m.keys.PrevTab):
		m.openConfig((m.tab + tabCount - 1) % tabCount)
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.prevView = m.viewState
		m.viewState = ViewHelp
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.cursor < m.rowCount()-1 {
			m.cursor++
		}
		return m, nil
	}

	m.message = ""
	m.errorMsg = ""

	switch m.tab {
	case TabBasic:
		return m.handleBasicKeys(msg)
	case TabModels:
		return m.handleModelsKeys(msg)
	case TabSchema:
		return m.handleSchemaKeys(msg)
	case TabSaved:
		return m.handleSavedKeys(msg)
	case TabKeys:
		return m.handleAPIKeys(msg)
	}
	return m, nil
}

// rowCount returns the number of selectable rows in the current panel
func (m Model) rowCount() int {
	switch m.tab {
	case TabBasic:
		return basicRowCount
	case TabModels:
		return modelRowCount
	case TabSchema:
		return len(m.session.State().SchemaKeys())
	case TabSaved:
		return len(m.session.SavedConfigurations())
	default:
		return 0
	}
}

func (m Model) handleBasicKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !key.Matches(msg, m.keys.Select) {
		return m, nil
	}

	st := m.session.State()
	switch m.cursor {
	case BasicRowValidate:
		st.SetValidate(!st.Config().Validate)
	case BasicRowParse:
		st.SetParse(!st.Config().Parse)
	case BasicRowSites:
		m.openForm(FormSiteLists, SiteListInputs(st.Config().SiteConfig))
	case BasicRowExport:
		return m, exportConfig(m.session, m.exportPath)
	case BasicRowImport:
		return m, importConfig(m.session, m.exportPath)
	}
	return m, nil
}

func (m Model) handleModelsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	delta := 0
	switch {
	case key.Matches(msg, m.keys.Right), key.Matches(msg, m.keys.Select):
		delta = 1
	case key.Matches(msg, m.keys.Left):
		delta = -1
	default:
		return m, nil
	}

	st := m.session.State()
	var err error
	switch m.cursor {
	case ModelRowSearch:
		err = st.SetModelName(config.OpSearch, cycleModel(models.ProviderGemini, st.ModelName(config.OpSearch), delta))
	case ModelRowValidate:
		err = st.SetModelName(config.OpValidate, cycleModel(models.ProviderGemini, st.ModelName(config.OpValidate), delta))
	case ModelRowProvider:
		err = st.SetParsingProvider(cycleProvider(st.ParsingProvider(), delta))
	case ModelRowParse:
		err = st.SetModelName(config.OpParse, cycleModel(st.ParsingProvider(), st.ModelName(config.OpParse), delta))
	}
	if err != nil {
		m.errorMsg = err.Error()
	}
	return m, nil
}

// cycleModel steps through the catalogue of provider from current. A model
// outside the catalogue steps to the first entry.
func cycleModel(provider models.Provider, current string, delta int) string {
	p, err := providers.Get(provider)
	if err != nil {
		return current
	}
	list := p.Models()
	if len(list) == 0 {
		return current
	}
	for i, mdl := range list {
		if mdl.ID == current {
			return list[(i+delta+len(list))%len(list)].ID
		}
	}
	return list[0].ID
}

func cycleProvider(current models.Provider, delta int) models.Provider {
	list := providers.List()
	for i, p := range list {
		if p == current {
			return list[(i+delta+len(list))%len(list)]
		}
	}
	return list[0]
}

func (m Model) handleSchemaKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	st := m.session.State()
	keys := st.SchemaKeys()

	switch {
	case key.Matches(msg, m.keys.Add):
		i := st.AddSchemaKey()
		m.cursor = i
		m.formIndex = i
		m.openForm(FormSchemaKey, SchemaKeyInputs(st.SchemaKeys()[i]))

	case key.Matches(msg, m.keys.Select):
		if m.cursor < len(keys) {
			m.formIndex = m.cursor
			m.openForm(FormSchemaKey, SchemaKeyInputs(keys[m.cursor]))
		}

	case key.Matches(msg, m.keys.Delete):
		if m.cursor < len(keys) {
			if err := st.RemoveSchemaKey(m.cursor); err != nil {
				m.errorMsg = err.Error()
			}
			if m.cursor >= len(keys)-1 && m.cursor > 0 {
				m.cursor--
			}
		}

	case key.Matches(msg, m.keys.Generate):
		if _, err := st.GenerateSchema(); err != nil {
			m.errorMsg = err.Error()
		} else {
			m.message = "Schema generated from fields"
		}
	}
	return m, nil
}

func (m Model) handleSavedKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	saved := m.session.SavedConfigurations()

	switch {
	case key.Matches(msg, m.keys.Select):
		if m.cursor < len(saved) {
			return m, loadConfig(m.session, saved[m.cursor])
		}

	case key.Matches(msg, m.keys.Delete):
		if m.cursor < len(saved) {
			m.viewState = ViewDelete
		}

	case key.Matches(msg, m.keys.Save):
		m.openForm(FormSaveName, SaveNameInputs())

	case key.Matches(msg, m.keys.Refresh):
		return m, refreshConfigs(m.session)
	}
	return m, nil
}

func (m Model) handleAPIKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Select):
		m.openForm(FormKeys, KeyInputs(m.session.State().APIKeys()))
	case key.Matches(msg, m.keys.Clear):
		m.session.State().ClearAPIKeys()
		m.message = "API keys cleared"
	}
	return m, nil
}

func (m *Model) openForm(kind FormKind, inputs []textinput.Model) {
	m.formKind = kind
	m.formInputs = inputs
	m.formFocus = 0
	m.formError = ""
	m.viewState = ViewForm
}

func (m *Model) closeForm() {
	m.formInputs = []textinput.Model{}
	m.formFocus = 0
	m.formError = ""
	m.viewState = ViewConfig
}

// handleFormViewKeys handles keyboard input in form views
func (m Model) handleFormViewKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closeForm()
		return m, nil

	case "tab", "down":
		m.formFocus = NextFormField(m.formInputs, m.formFocus)
		return m, nil

	case "shift+tab", "up":
		m.formFocus = PrevFormField(m.formInputs, m.formFocus)
		return m, nil

	case "enter":
		return m.submitForm()
	}

	var cmd tea.Cmd
	m.formInputs[m.formFocus], cmd = m.formInputs[m.formFocus].Update(msg)
	return m, cmd
}

// submitForm applies the open form. A rejected form stays open with the
// error shown.
func (m Model) submitForm() (tea.Model, tea.Cmd) {
	st := m.session.State()

	switch m.formKind {
	case FormKeys:
		st.SetAPIKeys(KeysFromInputs(m.formInputs))
		m.closeForm()
		m.message = "API keys updated"

	case FormSchemaKey:
		k, err := SchemaKeyFromInputs(m.formInputs)
		if err != nil {
			m.formError = err.Error()
			return m, nil
		}
		if err := st.UpdateSchemaKey(m.formIndex, k); err != nil {
			m.formError = err.Error()
			return m, nil
		}
		m.closeForm()

	case FormSaveName:
		name := strings.TrimSpace(m.formInputs[0].Value())
		if name == "" {
			m.formError = "configuration name cannot be empty"
			return m, nil
		}
		m.closeForm()
		return m, saveConfig(m.session, name)

	case FormSiteLists:
		st.SetSiteConfig(SiteConfigFromInputs(m.formInputs))
		m.closeForm()
	}
	return m, nil
}

// handleDeleteViewKeys handles keyboard input in the delete confirmation
func (m Model) handleDeleteViewKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.viewState = ViewConfig
		saved := m.session.SavedConfigurations()
		if m.cursor < len(saved) {
			return m, deleteConfig(m.session, saved[m.cursor])
		}
		return m, nil
	case "n", "N", "esc":
		m.viewState = ViewConfig
		return m, nil
	}
	return m, nil
}

// handleResultsViewKeys handles keyboard input in the results view
func (m Model) handleResultsViewKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.viewState = ViewMain
		return m, nil
	case key.Matches(msg, m.keys.Raw):
		m.showRaw = !m.showRaw
		m.renderResults()
		return m, nil
	case key.Matches(msg, m.keys.Configure):
		m.openConfig(m.tab)
		return m, nil
	}

	var cmd tea.Cmd
	m.results, cmd = m.results.Update(msg)
	return m, cmd
}

// renderResults writes the last result into the results viewport
func (m *Model) renderResults() {
	result := m.session.LastResult()
	if result == nil {
		m.results.SetContent("No results yet")
		return
	}
	var buf bytes.Buffer
	if err := report.NewReporter(&buf, report.WithRawData(m.showRaw)).Report(result.JSON()); err != nil {
		m.results.SetContent(err.Error())
		return
	}
	m.results.SetContent(buf.String())
	m.results.GotoTop()
}

// getEffectiveWidth returns the effective width for rendering, with a minimum and maximum
func (m Model) getEffectiveWidth(defaultWidth int) int {
	if m.width <= 0 {
		return defaultWidth
	}
	maxWidth := 100
	if m.width < maxWidth {
		return max(m.width-2, 20)
	}
	return maxWidth
}

// View renders the current view
func (m Model) View() string {
	switch m.viewState {
	case ViewConfig:
		return m.RenderConfigView()
	case ViewAnalyzing:
		return m.RenderAnalyzingView()
	case ViewResults:
		return m.RenderResultsView()
	case ViewForm:
		return RenderForm(m.formKind, m.formInputs, m.formFocus, m.formError)
	case ViewDelete:
		return m.RenderDeleteView()
	case ViewHelp:
		return m.RenderHelpView()
	default:
		return m.RenderMainView()
	}
}

func startup(s *session.Session) tea.Cmd {
	return func() tea.Msg {
		err := s.Startup(context.Background())
		return StartupMsg{Configs: s.SavedConfigurations(), Err: err}
	}
}

func refreshConfigs(s *session.Session) tea.Cmd {
	return func() tea.Msg {
		return ConfigsLoadedMsg{Configs: s.RefreshConfigurations(context.Background())}
	}
}

func runAnalysis(s *session.Session, query, instruction string) tea.Cmd {
	return func() tea.Msg {
		result, err := s.Analyze(context.Background(), query, instruction)
		return AnalysisDoneMsg{Result: result, Err: err}
	}
}

func saveConfig(s *session.Session, name string) tea.Cmd {
	return func() tea.Msg {
		_, err := s.SaveConfiguration(context.Background(), name)
		return ConfigSavedMsg{Name: name, Err: err}
	}
}

func deleteConfig(s *session.Session, cfg models.SavedConfiguration) tea.Cmd {
	return func() tea.Msg {
		err := s.DeleteConfiguration(context.Background(), cfg.ID)
		return ConfigDeletedMsg{Name: cfg.Name, Err: err}
	}
}

func loadConfig(s *session.Session, cfg models.SavedConfiguration) tea.Cmd {
	return func() tea.Msg {
		err := s.LoadConfiguration(context.Background(), cfg.ID)
		return ConfigLoadedMsg{Name: cfg.Name, Err: err}
	}
}

func exportConfig(s *session.Session, path string) tea.Cmd {
	return func() tea.Msg {
		return TransferDoneMsg{Export: true, Path: path, Err: s.ExportTo(path)}
	}
}

func importConfig(s *session.Session, path string) tea.Cmd {
	return func() tea.Msg {
		return TransferDoneMsg{Path: path, Err: s.ImportFrom(path)}
	}
}

// configName is how a saved configuration is listed
func configName(c models.SavedConfiguration) string {
	name := c.Name
	if name == "" {
		name = fmt.Sprintf("(unnamed %s)", c.ID)
	}
	return name
}
