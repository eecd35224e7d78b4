package providers

import (
	"testing"

	"groundcite/config/models"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestGeminiProvider(t *testing.T) {
	p := &GeminiProvider{}

	t.Run("Name", func(t *testing.T) {
		if got := p.Name(); got != models.ProviderGemini {
			t.Errorf("Name() = %v, want %v", got, models.ProviderGemini)
		}
	})

	t.Run("DefaultModel", func(t *testing.T) {
		if got := p.DefaultModel(); got != "gemini-2.5-flash" {
			t.Errorf("DefaultModel() = %v, want %v", got, "gemini-2.5-flash")
		}
	})

	t.Run("default model listed first", func(t *testing.T) {
		if got := p.Models()[0].ID; got != p.DefaultModel() {
			t.Errorf("Models()[0] = %v, want %v", got, p.DefaultModel())
		}
	})

	t.Run("ValidateKeys", func(t *testing.T) {
		tests := []struct {
			name    string
			keys    models.APIKeys
			wantErr bool
		}{
			{"primary set", models.APIKeys{Gemini: models.GeminiKeys{Primary: "g-1"}}, false},
			{"only secondary", models.APIKeys{Gemini: models.GeminiKeys{Secondary: "g-2"}}, true},
			{"none", models.APIKeys{}, true},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				err := p.ValidateKeys(tt.keys)
				if (err != nil) != tt.wantErr {
					t.Errorf("ValidateKeys() error = %v, wantErr %v", err, tt.wantErr)
				}
			})
		}
	})
}

func TestOpenAIProvider(t *testing.T) {
	p := &OpenAIProvider{}

	if got := p.Name(); got != models.ProviderOpenAI {
		t.Errorf("Name() = %v, want %v", got, models.ProviderOpenAI)
	}
	if got := p.DefaultModel(); got != "o3-mini" {
		t.Errorf("DefaultModel() = %v, want %v", got, "o3-mini")
	}
	if !HasModel(p, "gpt-4o-mini") {
		t.Error("HasModel(gpt-4o-mini) = false, want true")
	}
	if HasModel(p, "gemini-2.5-flash") {
		t.Error("HasModel(gemini-2.5-flash) = true, want false")
	}
	if err := p.ValidateKeys(models.APIKeys{}); err == nil {
		t.Error("ValidateKeys() with no openai key should fail")
	}
	if err := p.ValidateKeys(models.APIKeys{OpenAI: "sk-1"}); err != nil {
		t.Errorf("ValidateKeys() unexpected error: %v", err)
	}
}

func TestRegistry(t *testing.T) {
	t.Run("Get existing provider", func(t *testing.T) {
		p, err := Get(models.ProviderOpenAI)
		if err != nil {
			t.Fatalf("Get(openai) error = %v", err)
		}
		if p.Name() != models.ProviderOpenAI {
			t.Errorf("Get(openai).Name() = %v", p.Name())
		}
	})

	t.Run("Get unknown provider", func(t *testing.T) {
		if _, err := Get("anthropic"); err == nil {
			t.Error("Get(anthropic) should fail")
		}
	})

	t.Run("List providers", func(t *testing.T) {
		list := List()
		if len(list) != 2 || list[0] != models.ProviderGemini || list[1] != models.ProviderOpenAI {
			t.Errorf("List() = %v, want [gemini openai]", list)
		}
	})

	t.Run("DefaultModel falls back to gemini", func(t *testing.T) {
		if got := DefaultModel("unknown"); got != GeminiDefaultModel {
			t.Errorf("DefaultModel(unknown) = %v", got)
		}
		if got := DefaultModel(models.ProviderOpenAI); got != OpenAIDefaultModel {
			t.Errorf("DefaultModel(openai) = %v", got)
		}
	})
}

func TestClassifyModel(t *testing.T) {
	tests := []struct {
		model string
		want  models.OpenAIVariant
	}{
		{"o1", models.VariantReasoning},
		{"o1-mini", models.VariantReasoning},
		{"o3-mini", models.VariantReasoning},
		{"gpt-4o", models.VariantStandard},
		{"gpt-3.5-turbo", models.VariantStandard},
		{"gemini-2.5-flash", models.VariantStandard},
		{"", models.VariantStandard},
		{"O1", models.VariantStandard},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			if got := ClassifyModel(tt.model); got != tt.want {
				t.Errorf("ClassifyModel(%q) = %v, want %v", tt.model, got, tt.want)
			}
		})
	}
}

func TestDefaultGeminiParams(t *testing.T) {
	tests := []struct {
		model string
		want  models.GeminiParams
	}{
		{"gemini-2.5-flash", models.GeminiParams{Temperature: 0.7, MaxOutputTokens: 8192, TopP: 0.8, TopK: 40}},
		{"gemini-2.5-pro", models.GeminiParams{Temperature: 0.8, MaxOutputTokens: 2048, TopP: 0.8, TopK: 40}},
		{"gemini-2.0-flash-exp", models.GeminiParams{Temperature: 0.5, MaxOutputTokens: 8192, TopP: 0.8, TopK: 40}},
		{"gemini-1.5-flash", models.GeminiParams{Temperature: 0.6, MaxOutputTokens: 8192, TopP: 0.8, TopK: 40}},
		{"custom", models.GeminiParams{Temperature: 0.7, MaxOutputTokens: 1024, TopP: 0.8, TopK: 40}},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			if got := DefaultGeminiParams(tt.model); got != tt.want {
				t.Errorf("DefaultGeminiParams(%q) = %+v, want %+v", tt.model, got, tt.want)
			}
		})
	}
}

func TestDefaultOpenAIParams(t *testing.T) {
	o1 := DefaultOpenAIParams("o1")
	if o1.Reasoning == nil || o1.Standard != nil {
		t.Fatalf("o1 defaults should be reasoning only: %+v", o1)
	}
	if o1.Reasoning.MaxCompletionTokens != 100000 || o1.Reasoning.ReasoningEffort != models.EffortMedium {
		t.Errorf("o1 defaults = %+v", *o1.Reasoning)
	}

	mini := DefaultOpenAIParams("o3-mini")
	if mini.Reasoning == nil || mini.Reasoning.MaxCompletionTokens != 65536 {
		t.Errorf("o3-mini defaults = %+v", mini)
	}

	gpt := DefaultOpenAIParams("gpt-4o-mini")
	if gpt.Standard == nil || gpt.Reasoning != nil {
		t.Fatalf("gpt-4o-mini defaults should be standard only: %+v", gpt)
	}
	want := models.StandardParams{Temperature: 0.7, MaxTokens: 16384, TopP: 1}
	if *gpt.Standard != want {
		t.Errorf("gpt-4o-mini defaults = %+v, want %+v", *gpt.Standard, want)
	}
}

// **Feature: groundcite-config, Property 1: Defaults match the model variant**
//
// *For any* model name, the OpenAI defaults populate exactly the variant that
// ClassifyModel selects for it.
func TestProperty1_DefaultsMatchVariant(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	modelGen := gen.OneGenOf(
		gen.OneConstOf("o1", "o1-mini", "o3-mini", "gpt-4o", "gpt-4", "gpt-3.5-turbo"),
		gen.AlphaString(),
	)

	properties.Property("defaults populate exactly the classified variant", prop.ForAll(
		func(model string) bool {
			p := DefaultOpenAIParams(model)
			v := ClassifyModel(model)
			return p.Has(v) && !p.Has(1-v)
		},
		modelGen,
	))

	properties.TestingRun(t)
}
