package models

// Provider names the model family that handles the parse operation
type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderOpenAI Provider = "openai"
)

// Valid reports whether p is a known provider
func (p Provider) Valid() bool {
	return p == ProviderGemini || p == ProviderOpenAI
}

// FieldType is the JSON-Schema type of a schema field descriptor
type FieldType string

const (
	FieldString  FieldType = "string"
	FieldNumber  FieldType = "number"
	FieldBoolean FieldType = "boolean"
	FieldArray   FieldType = "array"
	FieldObject  FieldType = "object"
)

// FieldTypes lists the accepted field types in display order
var FieldTypes = []FieldType{FieldString, FieldNumber, FieldBoolean, FieldArray, FieldObject}

// SiteConfig holds newline-delimited URL lists, kept as raw text
type SiteConfig struct {
	IncludeList string `json:"includeList"`
	ExcludeList string `json:"excludeList"`
}

// AnalysisConfig is the "config" block shared by every wire shape
type AnalysisConfig struct {
	Validate   bool       `json:"validate"`
	Parse      bool       `json:"parse"`
	Schema     string     `json:"schema"`
	SiteConfig SiteConfig `json:"siteConfig"`
}

// GeminiParams are the sampling parameters of a Gemini operation
type GeminiParams struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"max_output_tokens"`
	TopP            float64 `json:"top_p"`
	TopK            int     `json:"top_k"`
}

// GeminiKeys holds the primary and fallback Gemini keys
type GeminiKeys struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
}

// APIKeys are the session credentials. They are never written anywhere
// except an explicit export or save requested by the user.
type APIKeys struct {
	Gemini GeminiKeys `json:"gemini"`
	OpenAI string     `json:"openai"`
}

// IsEmpty reports whether no key has been entered
func (k APIKeys) IsEmpty() bool {
	return k.Gemini.Primary == "" && k.Gemini.Secondary == "" && k.OpenAI == ""
}

// SchemaKey is one editable field descriptor used to build the output schema
type SchemaKey struct {
	Key         string    `json:"key"`
	Type        FieldType `json:"type"`
	Required    bool      `json:"required"`
	Description string    `json:"description"`
}

// ConfigState is the full set of user-adjustable parameters for one session
type ConfigState struct {
	Config               AnalysisConfig
	ParsingProvider      Provider
	SearchModelName      string
	ValidateModelName    string
	ParseModelName       string
	SearchGeminiParams   GeminiParams
	ValidateGeminiParams GeminiParams
	ParsingGeminiParams  GeminiParams
	ParsingOpenAIParams  OpenAIParams
	APIKeys              APIKeys
	SchemaKeys           []SchemaKey
}

// Clone returns a deep copy of the state
func (s ConfigState) Clone() ConfigState {
	c := s
	c.ParsingOpenAIParams = s.ParsingOpenAIParams.Clone()
	if s.SchemaKeys != nil {
		c.SchemaKeys = make([]SchemaKey, len(s.SchemaKeys))
		copy(c.SchemaKeys, s.SchemaKeys)
	}
	return c
}
