package providers

import "groundcite/config/models"

// reasoningModels take reasoning_effort and max_completion_tokens instead of
// sampling parameters.
var reasoningModels = map[string]bool{
	"o1":      true,
	"o1-mini": true,
	"o3-mini": true,
}

// ClassifyModel returns the OpenAI parameter variant for a model name.
// Unknown names, including Gemini models, are standard.
func ClassifyModel(name string) models.OpenAIVariant {
	if reasoningModels[name] {
		return models.VariantReasoning
	}
	return models.VariantStandard
}

// DefaultGeminiParams returns the parameter defaults for a Gemini model
func DefaultGeminiParams(model string) models.GeminiParams {
	p := models.GeminiParams{
		Temperature:     0.7,
		MaxOutputTokens: 1024,
		TopP:            0.8,
		TopK:            40,
	}

	switch model {
	case "gemini-2.0-flash-exp":
		p.Temperature, p.MaxOutputTokens = 0.5, 8192
	case "gemini-2.5-pro", "gemini-1.5-pro":
		p.Temperature, p.MaxOutputTokens = 0.8, 2048
	case "gemini-2.5-flash":
		p.Temperature, p.MaxOutputTokens = 0.7, 8192
	case "gemini-1.5-flash":
		p.Temperature, p.MaxOutputTokens = 0.6, 8192
	}
	return p
}

// DefaultOpenAIParams returns the defaults for an OpenAI model, populated in
// the variant that ClassifyModel selects for it.
func DefaultOpenAIParams(model string) models.OpenAIParams {
	if ClassifyModel(model) == models.VariantReasoning {
		tokens := 65536
		if model == "o1" {
			tokens = 100000
		}
		return models.ReasoningOpenAIParams(models.ReasoningParams{
			ReasoningEffort:     models.EffortMedium,
			MaxCompletionTokens: tokens,
		})
	}

	p := models.StandardParams{
		Temperature: 0.7,
		MaxTokens:   1024,
		TopP:        1,
	}
	switch model {
	case "gpt-4o", "gpt-4-turbo", "gpt-3.5-turbo":
		p.MaxTokens = 4096
	case "gpt-4o-mini":
		p.MaxTokens = 16384
	case "gpt-4":
		p.MaxTokens = 8192
	}
	return models.StandardOpenAIParams(p)
}
