package validation

import (
	"fmt"
	"strings"

	"groundcite/config/models"
	"groundcite/internal/providers"
)

// Validator checks parameter blocks and analysis requests
type Validator struct {
}

// NewValidator creates a new Validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateGeminiParams checks the ranges the configuration editor allows
func (v *Validator) ValidateGeminiParams(p models.GeminiParams) error {
	if p.Temperature < 0 || p.Temperature > 1 {
		return fmt.Errorf("temperature must be between 0 and 1, got %g", p.Temperature)
	}
	if p.MaxOutputTokens <= 0 {
		return fmt.Errorf("max_output_tokens must be positive, got %d", p.MaxOutputTokens)
	}
	if p.TopP < 0 || p.TopP > 1 {
		return fmt.Errorf("top_p must be between 0 and 1, got %g", p.TopP)
	}
	if p.TopK <= 0 {
		return fmt.Errorf("top_k must be positive, got %d", p.TopK)
	}
	return nil
}

// ValidateOpenAIParams checks the populated variant of p
func (v *Validator) ValidateOpenAIParams(p models.OpenAIParams) error {
	if p.Reasoning == nil && p.Standard == nil {
		return fmt.Errorf("openai parameters are empty")
	}

	if r := p.Reasoning; r != nil {
		if !r.ReasoningEffort.Valid() {
			return fmt.Errorf("reasoning_effort must be low, medium or high, got %q", r.ReasoningEffort)
		}
		if r.MaxCompletionTokens <= 0 {
			return fmt.Errorf("max_completion_tokens must be positive, got %d", r.MaxCompletionTokens)
		}
	}

	if s := p.Standard; s != nil {
		if s.Temperature < 0 || s.Temperature > 2 {
			return fmt.Errorf("temperature must be between 0 and 2, got %g", s.Temperature)
		}
		if s.MaxTokens <= 0 {
			return fmt.Errorf("max_tokens must be positive, got %d", s.MaxTokens)
		}
		if s.TopP < 0 || s.TopP > 1 {
			return fmt.Errorf("top_p must be between 0 and 1, got %g", s.TopP)
		}
		if s.FrequencyPenalty < -2 || s.FrequencyPenalty > 2 {
			return fmt.Errorf("frequency_penalty must be between -2 and 2, got %g", s.FrequencyPenalty)
		}
		if s.PresencePenalty < -2 || s.PresencePenalty > 2 {
			return fmt.Errorf("presence_penalty must be between -2 and 2, got %g", s.PresencePenalty)
		}
	}
	return nil
}

// ValidateFieldType checks a schema field type
func (v *Validator) ValidateFieldType(t models.FieldType) error {
	for _, ft := range models.FieldTypes {
		if ft == t {
			return nil
		}
	}
	return fmt.Errorf("unknown field type %q", t)
}

// ValidateProvider checks a parsing provider name
func (v *Validator) ValidateProvider(p models.Provider) error {
	if !p.Valid() {
		return fmt.Errorf("unknown parsing provider %q", p)
	}
	return nil
}

// ValidateAnalysisRequest applies the checks the backend makes before running
// an analysis, so that an incomplete request fails locally.
func (v *Validator) ValidateAnalysisRequest(query string, s models.ConfigState) error {
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("Query cannot be empty")
	}

	gemini, _ := providers.Get(models.ProviderGemini)
	if err := gemini.ValidateKeys(s.APIKeys); err != nil {
		return fmt.Errorf("Gemini API key is required")
	}

	if s.ParsingProvider == models.ProviderOpenAI {
		openai, _ := providers.Get(models.ProviderOpenAI)
		if err := openai.ValidateKeys(s.APIKeys); err != nil {
			return fmt.Errorf("OpenAI API key is required when using OpenAI as parsing provider")
		}
	}

	var missing []string
	if s.SearchModelName == "" {
		missing = append(missing, "search_model_name")
	}
	if s.Config.Validate && s.ValidateModelName == "" {
		missing = append(missing, "validate_model_name")
	}
	if s.Config.Parse && s.ParseModelName == "" {
		missing = append(missing, "parse_model_name")
	}
	if len(missing) > 0 {
		return fmt.Errorf("Missing required model configuration(s): %s", strings.Join(missing, ", "))
	}

	return nil
}
