package config

import (
	"reflect"
	"testing"

	"groundcite/config/models"
	"groundcite/internal/providers"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestNewStateDefaults(t *testing.T) {
	s := NewState().Snapshot()

	if s.ParsingProvider != models.ProviderGemini {
		t.Errorf("ParsingProvider = %v, want gemini", s.ParsingProvider)
	}
	for _, name := range []string{s.SearchModelName, s.ValidateModelName, s.ParseModelName} {
		if name != "gemini-2.5-flash" {
			t.Errorf("model name = %q, want gemini-2.5-flash", name)
		}
	}
	if s.Config.Validate || s.Config.Parse {
		t.Error("validate and parse should start disabled")
	}
	want := models.GeminiParams{Temperature: 0.7, MaxOutputTokens: 8192, TopP: 0.8, TopK: 40}
	if s.SearchGeminiParams != want || s.ParsingGeminiParams != want {
		t.Errorf("gemini params = %+v, want %+v", s.SearchGeminiParams, want)
	}
	if r := s.ParsingOpenAIParams.Reasoning; r == nil || r.MaxCompletionTokens != 65536 {
		t.Errorf("openai params = %+v", s.ParsingOpenAIParams)
	}
	if len(s.SchemaKeys) != 3 || s.SchemaKeys[0].Key != "category" || !s.SchemaKeys[0].Required {
		t.Errorf("schema keys = %+v", s.SchemaKeys)
	}
	if !s.APIKeys.IsEmpty() {
		t.Error("api keys should start empty")
	}
}

func TestSnapshotIsolation(t *testing.T) {
	st := NewState()
	snap := st.Snapshot()
	snap.SchemaKeys[0].Key = "changed"
	snap.ParsingOpenAIParams.Reasoning.MaxCompletionTokens = 1

	again := st.Snapshot()
	if again.SchemaKeys[0].Key != "category" {
		t.Error("snapshot shares schema keys with the state")
	}
	if again.ParsingOpenAIParams.Reasoning.MaxCompletionTokens != 65536 {
		t.Error("snapshot shares openai params with the state")
	}

	st.Restore(snap)
	if st.SchemaKeys()[0].Key != "changed" {
		t.Error("Restore() did not apply the snapshot")
	}
}

func TestSetParsingProvider(t *testing.T) {
	st := NewState()

	if err := st.SetParsingProvider(models.ProviderOpenAI); err != nil {
		t.Fatalf("SetParsingProvider(openai) error = %v", err)
	}
	if got := st.ModelName(OpParse); got != "o3-mini" {
		t.Errorf("parse model = %q, want o3-mini", got)
	}
	if p := st.OpenAIParams(); p.Reasoning == nil {
		t.Errorf("o3-mini should take reasoning params, got %+v", p)
	}

	if err := st.SetParsingProvider("anthropic"); err == nil {
		t.Error("SetParsingProvider(anthropic) should fail")
	}
	if st.ParsingProvider() != models.ProviderOpenAI {
		t.Error("failed SetParsingProvider changed the provider")
	}

	if err := st.SetParsingProvider(models.ProviderGemini); err != nil {
		t.Fatal(err)
	}
	if got := st.ModelName(OpParse); got != "gemini-2.5-flash" {
		t.Errorf("parse model = %q, want gemini-2.5-flash", got)
	}
}

func TestSetParseModelKeepsVariant(t *testing.T) {
	st := NewState()
	if err := st.SetParsingProvider(models.ProviderOpenAI); err != nil {
		t.Fatal(err)
	}

	tuned := models.ReasoningOpenAIParams(models.ReasoningParams{ReasoningEffort: models.EffortHigh, MaxCompletionTokens: 1000})
	if err := st.SetOpenAIParams(tuned); err != nil {
		t.Fatalf("SetOpenAIParams() error = %v", err)
	}

	// same variant: params survive
	if err := st.SetModelName(OpParse, "o1"); err != nil {
		t.Fatal(err)
	}
	if r := st.OpenAIParams().Reasoning; r == nil || r.ReasoningEffort != models.EffortHigh {
		t.Errorf("reasoning params lost on o3-mini -> o1: %+v", st.OpenAIParams())
	}

	// variant change: defaults of the new model
	if err := st.SetModelName(OpParse, "gpt-4"); err != nil {
		t.Fatal(err)
	}
	p := st.OpenAIParams()
	if p.Standard == nil || p.Reasoning != nil {
		t.Fatalf("gpt-4 should take standard params only: %+v", p)
	}
	if p.Standard.MaxTokens != 8192 {
		t.Errorf("gpt-4 max_tokens = %d, want 8192", p.Standard.MaxTokens)
	}

	// wrong variant is refused
	if err := st.SetOpenAIParams(tuned); err == nil {
		t.Error("SetOpenAIParams(reasoning) for gpt-4 should fail")
	}
}

func TestSetGeminiParamsValidation(t *testing.T) {
	st := NewState()
	before := st.GeminiParams(OpValidate)

	bad := before
	bad.Temperature = 1.5
	if err := st.SetGeminiParams(OpValidate, bad); err == nil {
		t.Error("temperature 1.5 should be refused")
	}
	if st.GeminiParams(OpValidate) != before {
		t.Error("refused update changed the state")
	}

	good := before
	good.TopK = 10
	if err := st.SetGeminiParams(OpValidate, good); err != nil {
		t.Fatalf("SetGeminiParams() error = %v", err)
	}
	if st.GeminiParams(OpValidate).TopK != 10 {
		t.Error("valid update was not applied")
	}
	if st.GeminiParams(OpSearch).TopK != 40 {
		t.Error("update leaked into the search params")
	}
}

func TestSchemaKeyEditing(t *testing.T) {
	st := NewState()

	i := st.AddSchemaKey()
	if i != 3 {
		t.Fatalf("AddSchemaKey() = %d, want 3", i)
	}
	if got := st.SchemaKeys()[i]; got != (models.SchemaKey{Type: models.FieldString}) {
		t.Errorf("new key = %+v", got)
	}

	if err := st.UpdateSchemaKey(i, models.SchemaKey{Key: "source", Type: models.FieldObject}); err != nil {
		t.Fatal(err)
	}
	if err := st.UpdateSchemaKey(i, models.SchemaKey{Key: "x", Type: "date"}); err == nil {
		t.Error("unknown type should be refused")
	}
	if err := st.UpdateSchemaKey(10, models.SchemaKey{Type: models.FieldString}); err == nil {
		t.Error("out of range index should be refused")
	}

	if err := st.RemoveSchemaKey(0); err != nil {
		t.Fatal(err)
	}
	keys := st.SchemaKeys()
	var names []string
	for _, k := range keys {
		names = append(names, k.Key)
	}
	if !reflect.DeepEqual(names, []string{"confidence", "tags", "source"}) {
		t.Errorf("keys after remove = %v", names)
	}
	if err := st.RemoveSchemaKey(-1); err == nil {
		t.Error("negative index should be refused")
	}
}

func TestClearAPIKeys(t *testing.T) {
	st := NewState()
	st.SetAPIKeys(models.APIKeys{Gemini: models.GeminiKeys{Primary: "p"}, OpenAI: "o"})
	st.ClearAPIKeys()
	if !st.APIKeys().IsEmpty() {
		t.Errorf("keys after clear = %+v", st.APIKeys())
	}
}

// **Feature: groundcite-config, Property 4: Provider switch resets the parse model**
//
// *For any* prior parse model, setting the provider to openai SHALL set the
// parse model to o3-mini and setting it to gemini SHALL set gemini-2.5-flash.
func TestProperty4_ProviderSwitchResetsModel(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	modelGen := gen.OneConstOf("o1", "gpt-4o", "gemini-1.5-pro", "o3-mini", "gemini-2.5-flash", "custom-model")
	providerGen := gen.OneConstOf(models.ProviderGemini, models.ProviderOpenAI)

	properties.Property("parse model follows the provider", prop.ForAll(
		func(prior string, from, to models.Provider) bool {
			st := NewState()
			if err := st.SetParsingProvider(from); err != nil {
				return false
			}
			if err := st.SetModelName(OpParse, prior); err != nil {
				return false
			}
			if err := st.SetParsingProvider(to); err != nil {
				return false
			}

			want := "gemini-2.5-flash"
			if to == models.ProviderOpenAI {
				want = "o3-mini"
			}
			return st.ModelName(OpParse) == want
		},
		modelGen, providerGen, providerGen,
	))

	properties.Property("openai params hold exactly the parse model's variant", prop.ForAll(
		func(model string) bool {
			st := NewState()
			if err := st.SetParsingProvider(models.ProviderOpenAI); err != nil {
				return false
			}
			if err := st.SetModelName(OpParse, model); err != nil {
				return false
			}
			p := st.Snapshot().ParsingOpenAIParams
			v := providers.ClassifyModel(model)
			return p.Has(v) && !p.Has(1-v)
		},
		modelGen,
	))

	properties.TestingRun(t)
}
