package models

import (
	"bytes"
	"encoding/json"
)

// ExportDocument is the camelCase shape written to and read from export files
type ExportDocument struct {
	Config               AnalysisConfig `json:"config"`
	ParsingProvider      Provider       `json:"parsingProvider"`
	SearchModelName      string         `json:"searchModelName"`
	ValidateModelName    string         `json:"validateModelName"`
	ParseModelName       string         `json:"parseModelName"`
	SearchGeminiParams   GeminiParams   `json:"searchGeminiParams"`
	ValidateGeminiParams GeminiParams   `json:"validateGeminiParams"`
	ParsingGeminiParams  GeminiParams   `json:"parsingGeminiParams"`
	ParsingOpenAIParams  OpenAIParams   `json:"parsingOpenaiParams"`
	SchemaKeys           []SchemaKey    `json:"schemaKeys"`
	APIKeys              APIKeys        `json:"apiKeys"`
}

// OperationFields is the snake_case body shared by save and analyze requests
type OperationFields struct {
	Config               AnalysisConfig `json:"config"`
	ParsingProvider      Provider       `json:"parsing_provider"`
	SearchModelName      string         `json:"search_model_name"`
	ValidateModelName    string         `json:"validate_model_name"`
	ParseModelName       string         `json:"parse_model_name"`
	SearchGeminiParams   GeminiParams   `json:"search_gemini_params"`
	ValidateGeminiParams GeminiParams   `json:"validate_gemini_params"`
	ParsingGeminiParams  GeminiParams   `json:"parsing_gemini_params"`
	ParsingOpenAIParams  OpenAIParams   `json:"parsing_openai_params"`
}

// SaveRequest is the body of POST /api/configs
type SaveRequest struct {
	Name string `json:"name"`
	OperationFields
	SchemaKeys []SchemaKey `json:"schema_keys"`
	APIKeys    APIKeys     `json:"api_keys"`
}

// AnalyzeRequest is the body of POST /api/analyze
type AnalyzeRequest struct {
	Query             string `json:"query"`
	SystemInstruction string `json:"system_instruction"`
	OperationFields
	APIKeys APIKeys `json:"api_keys"`
}

// ConfigID is a backend record identifier. The backend may send it as a
// JSON string or a number; both decode to the same text.
type ConfigID string

// UnmarshalJSON accepts a string or a bare number
func (id *ConfigID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ConfigID(s)
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ConfigID(n.String())
	return nil
}

// SavedConfiguration is a named snapshot stored by the backend
type SavedConfiguration struct {
	ID        ConfigID `json:"id"`
	CreatedAt string   `json:"created_at,omitempty"`
	UpdatedAt string   `json:"updated_at,omitempty"`
	SaveRequest

	raw json.RawMessage
}

// UnmarshalJSON decodes the record and keeps its raw bytes so a later load
// can tell absent fields from zero values.
func (c *SavedConfiguration) UnmarshalJSON(data []byte) error {
	type plain SavedConfiguration
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*c = SavedConfiguration(p)
	c.raw = append(json.RawMessage(nil), data...)
	return nil
}

// Raw returns the record as received, or its encoding when it was built locally
func (c SavedConfiguration) Raw() ([]byte, error) {
	if c.raw != nil {
		return c.raw, nil
	}
	return json.Marshal(c)
}

// OperationFieldsOf copies the operation settings of s into the snake_case shape
func OperationFieldsOf(s ConfigState) OperationFields {
	s = s.Clone()
	return OperationFields{
		Config:               s.Config,
		ParsingProvider:      s.ParsingProvider,
		SearchModelName:      s.SearchModelName,
		ValidateModelName:    s.ValidateModelName,
		ParseModelName:       s.ParseModelName,
		SearchGeminiParams:   s.SearchGeminiParams,
		ValidateGeminiParams: s.ValidateGeminiParams,
		ParsingGeminiParams:  s.ParsingGeminiParams,
		ParsingOpenAIParams:  s.ParsingOpenAIParams,
	}
}

// NewAnalyzeRequest packages a query with the whole configuration state
func NewAnalyzeRequest(query, systemInstruction string, s ConfigState) AnalyzeRequest {
	return AnalyzeRequest{
		Query:             query,
		SystemInstruction: systemInstruction,
		OperationFields:   OperationFieldsOf(s),
		APIKeys:           s.APIKeys,
	}
}
