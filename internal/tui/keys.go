package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keyboard shortcuts
type KeyMap struct {
	Up        key.Binding // k - move up
	Down      key.Binding // j - move down
	Left      key.Binding // h - previous value
	Right     key.Binding // l - next value
	NextTab   key.Binding // Tab - next panel
	PrevTab   key.Binding // Shift+Tab - previous panel
	Select    key.Binding // Enter - select / toggle
	Analyze   key.Binding // Ctrl+R - run analysis
	Configure key.Binding // Ctrl+O - open configuration
	Results   key.Binding // Ctrl+T - show last result
	Add       key.Binding // a - add schema key
	Delete    key.Binding // d - delete
	Save      key.Binding // n - save configuration
	Refresh   key.Binding // r - reload
	Generate  key.Binding // g - generate schema
	Clear     key.Binding // c - clear keys
	Raw       key.Binding // r - raw data in results
	Help      key.Binding // F1 - help
	Quit      key.Binding // Ctrl+C - quit
	Back      key.Binding // Esc - back
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Left: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("h/←", "previous value"),
		),
		Right: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("l/→", "next value"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("Tab", "next panel"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("Shift+Tab", "previous panel"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("Enter", "select"),
		),
		Analyze: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("Ctrl+R", "analyze"),
		),
		Configure: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("Ctrl+O", "configuration"),
		),
		Results: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("Ctrl+T", "last result"),
		),
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add field"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Save: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "save as"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Generate: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "generate schema"),
		),
		Clear: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear keys"),
		),
		Raw: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "raw data"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("F1", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("Ctrl+C", "quit"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "back"),
		),
	}
}

// ShortHelp returns short help text
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Analyze, k.Configure, k.Results, k.Help, k.Quit}
}

// FullHelp returns full help text
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Analyze, k.Configure, k.Results, k.Help, k.Quit},
		{k.NextTab, k.PrevTab, k.Up, k.Down, k.Left, k.Right},
		{k.Select, k.Add, k.Delete, k.Generate},
		{k.Save, k.Refresh, k.Clear, k.Back},
	}
}
