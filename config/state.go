package config

import (
	"fmt"
	"sync"

	"groundcite/config/models"
	"groundcite/config/validation"
	"groundcite/internal/providers"
)

// DefaultSchema is the output schema a new session starts with
const DefaultSchema = `{
  "type": "object",
  "properties": {
    "analysis": {
      "type": "string",
      "description": "AI analysis result"
    },
    "confidence": {
      "type": "number",
      "description": "Confidence score"
    }
  }
}`

// Operation names one of the three AI operations of an analysis
type Operation string

const (
	OpSearch   Operation = "search"
	OpValidate Operation = "validate"
	OpParse    Operation = "parse"
)

// Operations lists the operations in pipeline order
var Operations = []Operation{OpSearch, OpValidate, OpParse}

// DefaultConfigState returns the values a session starts with
func DefaultConfigState() models.ConfigState {
	gemini := models.GeminiParams{Temperature: 0.7, MaxOutputTokens: 8192, TopP: 0.8, TopK: 40}
	return models.ConfigState{
		Config: models.AnalysisConfig{
			Schema: DefaultSchema,
		},
		ParsingProvider:      models.ProviderGemini,
		SearchModelName:      providers.GeminiDefaultModel,
		ValidateModelName:    providers.GeminiDefaultModel,
		ParseModelName:       providers.GeminiDefaultModel,
		SearchGeminiParams:   gemini,
		ValidateGeminiParams: gemini,
		ParsingGeminiParams:  gemini,
		ParsingOpenAIParams: models.ReasoningOpenAIParams(models.ReasoningParams{
			ReasoningEffort:     models.EffortMedium,
			MaxCompletionTokens: 65536,
		}),
		SchemaKeys: []models.SchemaKey{
			{Key: "category", Type: models.FieldString, Required: true, Description: "Primary category"},
			{Key: "confidence", Type: models.FieldNumber, Description: "Confidence score"},
			{Key: "tags", Type: models.FieldArray, Description: "Related tags"},
		},
	}
}

// State owns the configuration of one session. Every method is safe to call
// from the TUI's command goroutines.
type State struct {
	mu        sync.Mutex
	s         models.ConfigState
	validator *validation.Validator
	input     *validation.InputValidator
}

// NewState creates a State holding the session defaults
func NewState() *State {
	return NewStateFrom(DefaultConfigState())
}

// NewStateFrom creates a State holding a copy of s
func NewStateFrom(s models.ConfigState) *State {
	return &State{
		s:         s.Clone(),
		validator: validation.NewValidator(),
		input:     validation.NewInputValidator(),
	}
}

// Snapshot returns a deep copy of the current state
func (st *State) Snapshot() models.ConfigState {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.s.Clone()
}

// Restore replaces the whole state with a copy of s
func (st *State) Restore(s models.ConfigState) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s = s.Clone()
}

// Config returns the analysis config block
func (st *State) Config() models.AnalysisConfig {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.s.Config
}

// SetValidate toggles the validate operation
func (st *State) SetValidate(on bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.Config.Validate = on
}

// SetParse toggles the parse operation
func (st *State) SetParse(on bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.Config.Parse = on
}

// SetSchema replaces the schema document. The text is not validated.
func (st *State) SetSchema(schema string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.Config.Schema = schema
}

// SetSiteConfig replaces the include and exclude URL lists
func (st *State) SetSiteConfig(sc models.SiteConfig) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.Config.SiteConfig = sc
}

// ParsingProvider returns the provider that handles the parse operation
func (st *State) ParsingProvider() models.Provider {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.s.ParsingProvider
}

// SetParsingProvider switches the parse provider and resets the parse model
// to that provider's default. When the new model needs the other OpenAI
// parameter variant, the OpenAI parameters are reset to its defaults.
func (st *State) SetParsingProvider(p models.Provider) error {
	if err := st.validator.ValidateProvider(p); err != nil {
		return err
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.ParsingProvider = p
	st.s.ParseModelName = providers.DefaultModel(p)
	st.alignOpenAIParams()
	return nil
}

// ModelName returns the model configured for op
func (st *State) ModelName(op Operation) string {
	st.mu.Lock()
	defer st.mu.Unlock()
	switch op {
	case OpValidate:
		return st.s.ValidateModelName
	case OpParse:
		return st.s.ParseModelName
	default:
		return st.s.SearchModelName
	}
}

// SetModelName sets the model used for op. Changing the parse model keeps
// the OpenAI parameter variant consistent with it.
func (st *State) SetModelName(op Operation, model string) error {
	if err := st.input.ValidateModelName(model); err != nil {
		return err
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	switch op {
	case OpSearch:
		st.s.SearchModelName = model
	case OpValidate:
		st.s.ValidateModelName = model
	case OpParse:
		st.s.ParseModelName = model
		st.alignOpenAIParams()
	default:
		return fmt.Errorf("unknown operation %q", op)
	}
	return nil
}

// GeminiParams returns the Gemini parameters of op
func (st *State) GeminiParams(op Operation) models.GeminiParams {
	st.mu.Lock()
	defer st.mu.Unlock()
	switch op {
	case OpValidate:
		return st.s.ValidateGeminiParams
	case OpParse:
		return st.s.ParsingGeminiParams
	default:
		return st.s.SearchGeminiParams
	}
}

// SetGeminiParams replaces the Gemini parameters of op after range checks
func (st *State) SetGeminiParams(op Operation, p models.GeminiParams) error {
	if err := st.validator.ValidateGeminiParams(p); err != nil {
		return fmt.Errorf("invalid %s parameters: %w", op, err)
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	switch op {
	case OpSearch:
		st.s.SearchGeminiParams = p
	case OpValidate:
		st.s.ValidateGeminiParams = p
	case OpParse:
		st.s.ParsingGeminiParams = p
	default:
		return fmt.Errorf("unknown operation %q", op)
	}
	return nil
}

// OpenAIParams returns the variant of the OpenAI parameters that applies to
// the current parse model.
func (st *State) OpenAIParams() models.OpenAIParams {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.s.ParsingOpenAIParams.Only(providers.ClassifyModel(st.s.ParseModelName))
}

// SetOpenAIParams replaces the OpenAI parameters. The populated variant must
// be the one the current parse model takes.
func (st *State) SetOpenAIParams(p models.OpenAIParams) error {
	if err := st.validator.ValidateOpenAIParams(p); err != nil {
		return fmt.Errorf("invalid openai parameters: %w", err)
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	want := providers.ClassifyModel(st.s.ParseModelName)
	if !p.Has(want) {
		return fmt.Errorf("model %s takes %s parameters", st.s.ParseModelName, want)
	}
	st.s.ParsingOpenAIParams = p.Only(want)
	return nil
}

// APIKeys returns the session credentials
func (st *State) APIKeys() models.APIKeys {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.s.APIKeys
}

// SetAPIKeys replaces the session credentials
func (st *State) SetAPIKeys(k models.APIKeys) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.APIKeys = k
}

// ClearAPIKeys wipes the credentials at session end
func (st *State) ClearAPIKeys() {
	st.SetAPIKeys(models.APIKeys{})
}

// SchemaKeys returns a copy of the field descriptors
func (st *State) SchemaKeys() []models.SchemaKey {
	st.mu.Lock()
	defer st.mu.Unlock()
	return append([]models.SchemaKey{}, st.s.SchemaKeys...)
}

// SetSchemaKeys replaces the field descriptors
func (st *State) SetSchemaKeys(keys []models.SchemaKey) error {
	for _, k := range keys {
		if err := st.validator.ValidateFieldType(k.Type); err != nil {
			return err
		}
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.SchemaKeys = append([]models.SchemaKey{}, keys...)
	return nil
}

// AddSchemaKey appends an empty string descriptor and returns its index
func (st *State) AddSchemaKey() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.SchemaKeys = append(st.s.SchemaKeys, models.SchemaKey{Type: models.FieldString})
	return len(st.s.SchemaKeys) - 1
}

// UpdateSchemaKey replaces the descriptor at index i
func (st *State) UpdateSchemaKey(i int, k models.SchemaKey) error {
	if err := st.validator.ValidateFieldType(k.Type); err != nil {
		return err
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if i < 0 || i >= len(st.s.SchemaKeys) {
		return fmt.Errorf("schema key index %d out of range", i)
	}
	st.s.SchemaKeys[i] = k
	return nil
}

// RemoveSchemaKey deletes the descriptor at index i
func (st *State) RemoveSchemaKey(i int) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if i < 0 || i >= len(st.s.SchemaKeys) {
		return fmt.Errorf("schema key index %d out of range", i)
	}
	st.s.SchemaKeys = append(st.s.SchemaKeys[:i:i], st.s.SchemaKeys[i+1:]...)
	return nil
}

// alignOpenAIParams resets the OpenAI parameters to the parse model's
// defaults when the model needs a variant that is not populated. The
// parameters only apply while parsing with OpenAI. Caller holds mu.
func (st *State) alignOpenAIParams() {
	if st.s.ParsingProvider != models.ProviderOpenAI {
		return
	}
	want := providers.ClassifyModel(st.s.ParseModelName)
	if st.s.ParsingOpenAIParams.Has(want) {
		st.s.ParsingOpenAIParams = st.s.ParsingOpenAIParams.Only(want)
		return
	}
	st.s.ParsingOpenAIParams = providers.DefaultOpenAIParams(st.s.ParseModelName)
}
