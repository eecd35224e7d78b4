package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"

	"groundcite/config"
	"groundcite/config/models"
	"groundcite/internal/api"
	"groundcite/internal/utils"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	messageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238"))

	activeTabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57")).
			Bold(true).
			Padding(0, 1)

	tabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(18)

	schemaBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1)
)

func (m Model) separator() string {
	return separatorStyle.Render(strings.Repeat("─", m.getEffectiveWidth(60)))
}

// RenderMainView renders the query view
func (m Model) RenderMainView() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("GroundCite"))
	b.WriteString("  ")
	b.WriteString(m.renderConnectivity())
	b.WriteString("\n")
	b.WriteString(m.separator())
	b.WriteString("\n\n")

	b.WriteString(labelStyle.Render("Query"))
	b.WriteString("\n")
	b.WriteString(m.query.View())
	b.WriteString("\n\n")
	b.WriteString(labelStyle.Render("System instruction"))
	b.WriteString("\n")
	b.WriteString(m.instruction.View())
	b.WriteString("\n\n")

	st := m.session.State()
	cfg := st.Config()
	b.WriteString(dimStyle.Render(fmt.Sprintf("search %s │ validate %s │ parse %s",
		st.ModelName(config.OpSearch),
		onOff(cfg.Validate, st.ModelName(config.OpValidate)),
		onOff(cfg.Parse, fmt.Sprintf("%s/%s", st.ParsingProvider(), st.ModelName(config.OpParse))),
	)))
	b.WriteString("\n\n")

	b.WriteString(m.separator())
	b.WriteString("\n")
	b.WriteString(m.RenderStatusBar())
	return b.String()
}

func onOff(on bool, detail string) string {
	if !on {
		return "off"
	}
	return detail
}

func (m Model) renderConnectivity() string {
	switch c := m.session.Connectivity(); c {
	case api.Connected:
		return messageStyle.Render("● " + c.String())
	case api.Disconnected:
		return errorStyle.Render("● " + c.String())
	default:
		return warnStyle.Render("● " + c.String())
	}
}

// RenderStatusBar renders the advisory, the last message and the key help
func (m Model) RenderStatusBar() string {
	var b strings.Builder

	if adv := m.session.Advisory(); adv != "" && adv != m.errorMsg {
		b.WriteString(warnStyle.Render("⚠ " + adv))
		b.WriteString("\n")
	}
	if m.errorMsg != "" {
		b.WriteString(errorStyle.Render("✗ " + m.errorMsg))
		b.WriteString("\n")
	} else if m.message != "" {
		b.WriteString(messageStyle.Render("✓ " + m.message))
		b.WriteString("\n")
	}

	h := help.New()
	b.WriteString(h.ShortHelpView(m.keys.ShortHelp()))
	return b.String()
}

// RenderConfigView renders the configuration panels
func (m Model) RenderConfigView() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Configuration"))
	b.WriteString("\n")
	tabs := make([]string, len(TabNames))
	for i, name := range TabNames {
		if Tab(i) == m.tab {
			tabs[i] = activeTabStyle.Render(name)
		} else {
			tabs[i] = tabStyle.Render(name)
		}
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	b.WriteString("\n")
	b.WriteString(m.separator())
	b.WriteString("\n\n")

	switch m.tab {
	case TabBasic:
		b.WriteString(m.renderBasicTab())
	case TabModels:
		b.WriteString(m.renderModelsTab())
	case TabSchema:
		b.WriteString(m.renderSchemaTab())
	case TabSaved:
		b.WriteString(m.renderSavedTab())
	case TabKeys:
		b.WriteString(m.renderKeysTab())
	}

	b.WriteString("\n")
	b.WriteString(m.separator())
	b.WriteString("\n")
	if m.errorMsg != "" {
		b.WriteString(errorStyle.Render("✗ " + m.errorMsg))
		b.WriteString("\n")
	} else if m.message != "" {
		b.WriteString(messageStyle.Render("✓ " + m.message))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render(m.tabHelp()))
	return b.String()
}

func (m Model) tabHelp() string {
	common := "Tab: next panel │ Esc: back"
	switch m.tab {
	case TabBasic:
		return "Enter: toggle/open │ " + common
	case TabModels:
		return "←/→: change │ " + common
	case TabSchema:
		return "a: add │ Enter: edit │ d: delete │ g: generate schema │ " + common
	case TabSaved:
		return "Enter: load │ n: save as │ d: delete │ r: refresh │ " + common
	case TabKeys:
		return "Enter: edit keys │ c: clear │ " + common
	}
	return common
}

func (m Model) row(i int, label, value string) string {
	cursor := "  "
	if i == m.cursor {
		cursor = "> "
	}
	line := cursor + labelStyle.Render(label) + " " + value
	if i == m.cursor {
		return selectedStyle.Render(cursor+label) + " " + value
	}
	return normalStyle.Render(line)
}

func checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}

func (m Model) renderBasicTab() string {
	var b strings.Builder
	cfg := m.session.State().Config()

	sites := func(list string) string {
		n := 0
		for _, line := range strings.Split(list, "\n") {
			if strings.TrimSpace(line) != "" {
				n++
			}
		}
		return fmt.Sprintf("%d", n)
	}

	b.WriteString(m.row(BasicRowValidate, "Validate", checkbox(cfg.Validate)))
	b.WriteString("\n")
	b.WriteString(m.row(BasicRowParse, "Parse", checkbox(cfg.Parse)))
	b.WriteString("\n")
	b.WriteString(m.row(BasicRowSites, "Site lists", fmt.Sprintf("include %s │ exclude %s",
		sites(cfg.SiteConfig.IncludeList), sites(cfg.SiteConfig.ExcludeList))))
	b.WriteString("\n")
	b.WriteString(m.row(BasicRowExport, "Export", m.exportPath))
	b.WriteString("\n")
	b.WriteString(m.row(BasicRowImport, "Import", m.exportPath))
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderModelsTab() string {
	var b strings.Builder
	st := m.session.State()

	b.WriteString(m.row(ModelRowSearch, "Search model", st.ModelName(config.OpSearch)))
	b.WriteString("\n")
	b.WriteString(m.row(ModelRowValidate, "Validate model", st.ModelName(config.OpValidate)))
	b.WriteString("\n")
	b.WriteString(m.row(ModelRowProvider, "Parsing provider", string(st.ParsingProvider())))
	b.WriteString("\n")
	b.WriteString(m.row(ModelRowParse, "Parse model", st.ModelName(config.OpParse)))
	b.WriteString("\n\n")

	for _, op := range config.Operations {
		if op == config.OpParse && st.ParsingProvider() == models.ProviderOpenAI {
			b.WriteString(dimStyle.Render(fmt.Sprintf("  %-9s %s", op, formatOpenAIParams(st.OpenAIParams()))))
		} else {
			b.WriteString(dimStyle.Render(fmt.Sprintf("  %-9s %s", op, formatGeminiParams(st.GeminiParams(op)))))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func formatGeminiParams(p models.GeminiParams) string {
	return fmt.Sprintf("temperature %g │ max_output_tokens %d │ top_p %g │ top_k %d",
		p.Temperature, p.MaxOutputTokens, p.TopP, p.TopK)
}

func formatOpenAIParams(p models.OpenAIParams) string {
	switch {
	case p.Reasoning != nil:
		return fmt.Sprintf("reasoning_effort %s │ max_completion_tokens %d",
			p.Reasoning.ReasoningEffort, p.Reasoning.MaxCompletionTokens)
	case p.Standard != nil:
		s := p.Standard
		return fmt.Sprintf("temperature %g │ max_tokens %d │ top_p %g │ frequency_penalty %g │ presence_penalty %g",
			s.Temperature, s.MaxTokens, s.TopP, s.FrequencyPenalty, s.PresencePenalty)
	default:
		return utils.NotSet
	}
}

func (m Model) renderSchemaTab() string {
	var b strings.Builder
	st := m.session.State()
	keys := st.SchemaKeys()

	if len(keys) == 0 {
		b.WriteString(dimStyle.Render("No fields, press 'a' to add one"))
		b.WriteString("\n")
	}
	for i, k := range keys {
		name := k.Key
		if name == "" {
			name = "(empty)"
		}
		required := ""
		if k.Required {
			required = " *"
		}
		b.WriteString(m.row(i, name+required, fmt.Sprintf("%-8s %s", k.Type, k.Description)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(schemaBoxStyle.Render(st.Config().Schema))
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderSavedTab() string {
	var b strings.Builder
	saved := m.session.SavedConfigurations()

	if len(saved) == 0 {
		b.WriteString(dimStyle.Render("No saved configurations, press 'n' to save the current one"))
		b.WriteString("\n")
	}
	for i, c := range saved {
		detail := fmt.Sprintf("%s │ parse %s/%s", c.SearchModelName, c.ParsingProvider, c.ParseModelName)
		if c.UpdatedAt != "" {
			detail += " │ " + c.UpdatedAt
		}
		b.WriteString(m.row(i, configName(c), dimStyle.Render(detail)))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderKeysTab() string {
	var b strings.Builder
	keys := utils.MaskAPIKeys(m.session.State().APIKeys())

	if m.session.State().APIKeys().IsEmpty() {
		b.WriteString(warnStyle.Render("No API keys configured. Press Enter to add them."))
		b.WriteString("\n\n")
	}
	b.WriteString("  " + labelStyle.Render("Gemini (primary)") + " " + keys.Gemini.Primary + "\n")
	b.WriteString("  " + labelStyle.Render("Gemini (secondary)") + " " + keys.Gemini.Secondary + "\n")
	b.WriteString("  " + labelStyle.Render("OpenAI") + " " + keys.OpenAI + "\n")
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("  Keys stay in memory for this session and are cleared on exit."))
	b.WriteString("\n")
	return b.String()
}

// RenderAnalyzingView renders the in-flight analysis view
func (m Model) RenderAnalyzingView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("GroundCite"))
	b.WriteString("\n")
	b.WriteString(m.separator())
	b.WriteString("\n\n")
	b.WriteString(m.spinner.View())
	b.WriteString(" Analyzing... this can take a few minutes\n\n")
	b.WriteString(helpStyle.Render("Ctrl+C: quit"))
	return b.String()
}

// RenderResultsView renders the last result
func (m Model) RenderResultsView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("AI Analysis Results"))
	b.WriteString("\n")
	b.WriteString(m.separator())
	b.WriteString("\n")
	b.WriteString(m.results.View())
	b.WriteString("\n")
	b.WriteString(m.separator())
	b.WriteString("\n")
	raw := "show raw data"
	if m.showRaw {
		raw = "hide raw data"
	}
	b.WriteString(helpStyle.Render(fmt.Sprintf("↑/↓: scroll │ r: %s │ Ctrl+O: configuration │ Esc: back", raw)))
	return b.String()
}

// RenderDeleteView renders the delete confirmation dialog
func (m Model) RenderDeleteView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Delete Configuration"))
	b.WriteString("\n")
	b.WriteString(m.separator())
	b.WriteString("\n\n")

	saved := m.session.SavedConfigurations()
	if m.cursor < len(saved) {
		b.WriteString(fmt.Sprintf("Delete %q from the backend?\n\n", configName(saved[m.cursor])))
	}
	b.WriteString(helpStyle.Render("y: delete │ n/Esc: cancel"))
	return b.String()
}

// RenderHelpView renders the help panel
func (m Model) RenderHelpView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Help"))
	b.WriteString("\n")
	b.WriteString(m.separator())
	b.WriteString("\n\n")

	h := help.New()
	h.ShowAll = true
	b.WriteString(h.FullHelpView(m.keys.FullHelp()))
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("Press any key to return"))
	return b.String()
}
