package providers

import (
	"errors"
	"fmt"
	"sort"

	"groundcite/config/models"
)

// Provider defines the catalogue entry of a parsing provider
type Provider interface {
	// Name returns the provider's wire name ("gemini", "openai")
	Name() models.Provider
	// DisplayName is the label shown in the terminal UI
	DisplayName() string
	// DefaultModel is assigned to parseModelName when this provider is selected
	DefaultModel() string
	// Models lists the selectable models, default first
	Models() []Model
	// ValidateKeys checks that the keys needed to parse with this provider are present
	ValidateKeys(keys models.APIKeys) error
}

// Model is one selectable model of a provider
type Model struct {
	ID    string
	Label string
}

// registry stores all registered providers
var registry = make(map[models.Provider]Provider)

// Register registers a new provider
func Register(name models.Provider, provider Provider) {
	registry[name] = provider
}

// Get returns a provider by name
func Get(name models.Provider) (Provider, error) {
	provider, ok := registry[name]
	if !ok {
		return nil, errors.New("unknown provider: " + string(name))
	}
	return provider, nil
}

// List returns all registered provider names in sorted order
func List() []models.Provider {
	var list []models.Provider
	for name := range registry {
		list = append(list, name)
	}
	sort.Slice(list, func(i, j int) bool { return list[i] < list[j] })
	return list
}

// DefaultModel returns the default parse model of the named provider, or
// the Gemini default for an unknown name.
func DefaultModel(name models.Provider) string {
	if p, err := Get(name); err == nil {
		return p.DefaultModel()
	}
	return GeminiDefaultModel
}

// HasModel reports whether the provider's catalogue lists model
func HasModel(p Provider, model string) bool {
	for _, m := range p.Models() {
		if m.ID == model {
			return true
		}
	}
	return false
}

const (
	GeminiDefaultModel = "gemini-2.5-flash"
	OpenAIDefaultModel = "o3-mini"
)

// 内置提供商：Gemini
type GeminiProvider struct{}

func (p *GeminiProvider) Name() models.Provider {
	return models.ProviderGemini
}

func (p *GeminiProvider) DisplayName() string {
	return "Google Gemini"
}

func (p *GeminiProvider) DefaultModel() string {
	return GeminiDefaultModel
}

func (p *GeminiProvider) Models() []Model {
	return []Model{
		{ID: "gemini-2.5-flash", Label: "Gemini 2.5 Flash (Default)"},
		{ID: "gemini-2.5-pro", Label: "Gemini 2.5 Pro"},
		{ID: "gemini-2.0-flash-exp", Label: "Gemini 2.0 Flash Experimental"},
		{ID: "gemini-1.5-pro", Label: "Gemini 1.5 Pro"},
		{ID: "gemini-1.5-flash", Label: "Gemini 1.5 Flash"},
	}
}

func (p *GeminiProvider) ValidateKeys(keys models.APIKeys) error {
	if keys.Gemini.Primary == "" {
		return fmt.Errorf("gemini: primary API key is required")
	}
	return nil
}

// 内置提供商：OpenAI
type OpenAIProvider struct{}

func (p *OpenAIProvider) Name() models.Provider {
	return models.ProviderOpenAI
}

func (p *OpenAIProvider) DisplayName() string {
	return "OpenAI"
}

func (p *OpenAIProvider) DefaultModel() string {
	return OpenAIDefaultModel
}

func (p *OpenAIProvider) Models() []Model {
	return []Model{
		{ID: "o3-mini", Label: "O3 Mini (Default)"},
		{ID: "o1", Label: "O1"},
		{ID: "o1-mini", Label: "O1 Mini"},
		{ID: "gpt-4o", Label: "GPT-4o"},
		{ID: "gpt-4o-mini", Label: "GPT-4o Mini"},
		{ID: "gpt-4-turbo", Label: "GPT-4 Turbo"},
		{ID: "gpt-4", Label: "GPT-4"},
		{ID: "gpt-3.5-turbo", Label: "GPT-3.5 Turbo"},
	}
}

func (p *OpenAIProvider) ValidateKeys(keys models.APIKeys) error {
	if keys.OpenAI == "" {
		return fmt.Errorf("openai: API key is required when parsing with OpenAI")
	}
	return nil
}

// 初始化：注册内置提供商
func init() {
	Register(models.ProviderGemini, &GeminiProvider{})
	Register(models.ProviderOpenAI, &OpenAIProvider{})
}
