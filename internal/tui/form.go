package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"

	"groundcite/config/models"
)

// FormKind selects which form is open
type FormKind int

const (
	FormKeys      FormKind = iota // API key entry
	FormSchemaKey                 // one schema field descriptor
	FormSaveName                  // name for a saved configuration
	FormSiteLists                 // include and exclude site lists
)

// Key form fields
const (
	KeyFieldGeminiPrimary = iota
	KeyFieldGeminiSecondary
	KeyFieldOpenAI
	KeyFieldCount
)

// Schema key form fields
const (
	SchemaFieldKey = iota
	SchemaFieldType
	SchemaFieldRequired
	SchemaFieldDescription
	SchemaFieldCount
)

// Site list form fields
const (
	SiteFieldInclude = iota
	SiteFieldExclude
	SiteFieldCount
)

// Form styles
var (
	formLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(20)

	formFocusedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("205")).
				Bold(true).
				Width(20)

	formErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	formHintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true)
)

func newInput(placeholder string, limit int) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = limit
	in.Width = 48
	in.Prompt = ""
	return in
}

func newSecretInput(placeholder string) textinput.Model {
	in := newInput(placeholder, 256)
	in.EchoMode = textinput.EchoPassword
	in.EchoCharacter = '•'
	return in
}

// KeyInputs creates the API key form filled with keys
func KeyInputs(keys models.APIKeys) []textinput.Model {
	inputs := make([]textinput.Model, KeyFieldCount)
	inputs[KeyFieldGeminiPrimary] = newSecretInput("AIza...")
	inputs[KeyFieldGeminiSecondary] = newSecretInput("optional fallback key")
	inputs[KeyFieldOpenAI] = newSecretInput("sk-... (needed when parsing with OpenAI)")

	inputs[KeyFieldGeminiPrimary].SetValue(keys.Gemini.Primary)
	inputs[KeyFieldGeminiSecondary].SetValue(keys.Gemini.Secondary)
	inputs[KeyFieldOpenAI].SetValue(keys.OpenAI)

	inputs[0].Focus()
	return inputs
}

// KeysFromInputs reads the API key form
func KeysFromInputs(inputs []textinput.Model) models.APIKeys {
	return models.APIKeys{
		Gemini: models.GeminiKeys{
			Primary:   strings.TrimSpace(inputs[KeyFieldGeminiPrimary].Value()),
			Secondary: strings.TrimSpace(inputs[KeyFieldGeminiSecondary].Value()),
		},
		OpenAI: strings.TrimSpace(inputs[KeyFieldOpenAI].Value()),
	}
}

// SchemaKeyInputs creates the schema field form filled with k
func SchemaKeyInputs(k models.SchemaKey) []textinput.Model {
	inputs := make([]textinput.Model, SchemaFieldCount)
	inputs[SchemaFieldKey] = newInput("field name", 128)
	inputs[SchemaFieldType] = newInput("string", 16)
	inputs[SchemaFieldRequired] = newInput("y/n", 5)
	inputs[SchemaFieldDescription] = newInput("what the field holds", 512)

	inputs[SchemaFieldKey].SetValue(k.Key)
	inputs[SchemaFieldType].SetValue(string(k.Type))
	required := "n"
	if k.Required {
		required = "y"
	}
	inputs[SchemaFieldRequired].SetValue(required)
	inputs[SchemaFieldDescription].SetValue(k.Description)

	inputs[0].Focus()
	return inputs
}

// SchemaKeyFromInputs reads and checks the schema field form
func SchemaKeyFromInputs(inputs []textinput.Model) (models.SchemaKey, error) {
	k := models.SchemaKey{
		Key:         inputs[SchemaFieldKey].Value(),
		Type:        models.FieldType(strings.ToLower(strings.TrimSpace(inputs[SchemaFieldType].Value()))),
		Description: inputs[SchemaFieldDescription].Value(),
	}
	if k.Type == "" {
		k.Type = models.FieldString
	}

	valid := false
	for _, ft := range models.FieldTypes {
		if ft == k.Type {
			valid = true
			break
		}
	}
	if !valid {
		return k, fmt.Errorf("type must be one of %s", fieldTypeList())
	}

	switch strings.ToLower(strings.TrimSpace(inputs[SchemaFieldRequired].Value())) {
	case "y", "yes", "true", "1":
		k.Required = true
	case "", "n", "no", "false", "0":
		k.Required = false
	default:
		return k, errors.New("required must be y or n")
	}
	return k, nil
}

func fieldTypeList() string {
	names := make([]string, len(models.FieldTypes))
	for i, ft := range models.FieldTypes {
		names[i] = string(ft)
	}
	return strings.Join(names, ", ")
}

// SaveNameInputs creates the save-as form
func SaveNameInputs() []textinput.Model {
	inputs := []textinput.Model{newInput("configuration name", 100)}
	inputs[0].Focus()
	return inputs
}

// SiteListInputs creates the site list form. Lists are comma separated in
// the form and stored newline delimited.
func SiteListInputs(sc models.SiteConfig) []textinput.Model {
	inputs := make([]textinput.Model, SiteFieldCount)
	inputs[SiteFieldInclude] = newInput("example.com, docs.example.org", 2048)
	inputs[SiteFieldExclude] = newInput("spam.example.com", 2048)
	inputs[SiteFieldInclude].SetValue(joinLines(sc.IncludeList))
	inputs[SiteFieldExclude].SetValue(joinLines(sc.ExcludeList))
	inputs[0].Focus()
	return inputs
}

// SiteConfigFromInputs reads the site list form
func SiteConfigFromInputs(inputs []textinput.Model) models.SiteConfig {
	return models.SiteConfig{
		IncludeList: splitList(inputs[SiteFieldInclude].Value()),
		ExcludeList: splitList(inputs[SiteFieldExclude].Value()),
	}
}

func joinLines(s string) string {
	var parts []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, ", ")
}

func splitList(s string) string {
	var parts []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "\n")
}

// FormTitle returns the heading of a form
func FormTitle(kind FormKind) string {
	switch kind {
	case FormKeys:
		return "API Keys"
	case FormSchemaKey:
		return "Schema Field"
	case FormSaveName:
		return "Save Configuration"
	case FormSiteLists:
		return "Site Lists"
	default:
		return ""
	}
}

// FormLabels returns the labels for each field of a form
func FormLabels(kind FormKind) []string {
	switch kind {
	case FormKeys:
		return []string{"Gemini (primary):", "Gemini (secondary):", "OpenAI:"}
	case FormSchemaKey:
		return []string{"Key:", "Type:", "Required:", "Description:"}
	case FormSaveName:
		return []string{"Name:"}
	case FormSiteLists:
		return []string{"Include sites:", "Exclude sites:"}
	default:
		return nil
	}
}

// FormHints returns the hint text for each field of a form
func FormHints(kind FormKind) []string {
	switch kind {
	case FormKeys:
		return []string{
			"required for every analysis",
			"used when the primary key is rate limited",
			"required when the parse step uses OpenAI",
		}
	case FormSchemaKey:
		return []string{
			"property name in the generated schema",
			fieldTypeList(),
			"y adds the key to the required list",
			"shown to the model as the property description",
		}
	case FormSaveName:
		return []string{"stored on the backend with the API keys"}
	case FormSiteLists:
		return []string{"comma separated, searched first", "comma separated, never searched"}
	default:
		return nil
	}
}

// RenderForm renders a form with its inputs
func RenderForm(kind FormKind, inputs []textinput.Model, focusIndex int, errorMsg string) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(FormTitle(kind)))
	b.WriteString("\n")
	b.WriteString(separatorStyle.Render(strings.Repeat("─", 50)))
	b.WriteString("\n\n")

	labels := FormLabels(kind)
	hints := FormHints(kind)

	for i, input := range inputs {
		if i == focusIndex {
			b.WriteString(formFocusedStyle.Render(labels[i]))
		} else {
			b.WriteString(formLabelStyle.Render(labels[i]))
		}
		b.WriteString(" ")
		b.WriteString(input.View())
		b.WriteString("\n")

		if i == focusIndex && i < len(hints) {
			b.WriteString(formLabelStyle.Render(""))
			b.WriteString(" ")
			b.WriteString(formHintStyle.Render(hints[i]))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if errorMsg != "" {
		b.WriteString(formErrorStyle.Render("✗ " + errorMsg))
		b.WriteString("\n\n")
	}

	b.WriteString(separatorStyle.Render(strings.Repeat("─", 50)))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("Tab/↓: next │ Shift+Tab/↑: previous │ Enter: confirm │ Esc: cancel"))

	return b.String()
}

// NextFormField moves focus to the next form field
func NextFormField(inputs []textinput.Model, currentFocus int) int {
	inputs[currentFocus].Blur()
	nextFocus := (currentFocus + 1) % len(inputs)
	inputs[nextFocus].Focus()
	return nextFocus
}

// PrevFormField moves focus to the previous form field
func PrevFormField(inputs []textinput.Model, currentFocus int) int {
	inputs[currentFocus].Blur()
	prevFocus := currentFocus - 1
	if prevFocus < 0 {
		prevFocus = len(inputs) - 1
	}
	inputs[prevFocus].Focus()
	return prevFocus
}
