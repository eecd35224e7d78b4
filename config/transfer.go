package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"

	"groundcite/config/models"
	"groundcite/internal/advisory"
	"groundcite/internal/providers"
)

// ExportFileName is the default name of an exported configuration file
const ExportFileName = "ai-analysis-config.json"

// Export serializes the whole state, API keys included, as an indented
// camelCase document.
func (st *State) Export() ([]byte, error) {
	doc := toExportDocument(st.Snapshot())

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to serialize configuration: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Import assigns every field present in an exported document. Absent fields,
// fields of the wrong JSON type and empty provider or model names keep their
// current value. A document that is not a JSON object is rejected with a
// MALFORMED_DOCUMENT error and the state is not touched.
func (st *State) Import(data []byte) error {
	if err := checkDocument(data); err != nil {
		return err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	cur := st.s.Clone()
	doc := toExportDocument(cur)
	if gjson.GetBytes(data, "schemaKeys").IsArray() {
		doc.SchemaKeys = nil
	}
	base, err := openAIBase(data, "parsingOpenaiParams", cur.ParsingOpenAIParams)
	if err != nil {
		return advisory.Wrap(advisory.CategoryMalformed, err)
	}
	doc.ParsingOpenAIParams = base
	if err := decodeBestEffort(data, &doc); err != nil {
		return advisory.Wrap(advisory.CategoryMalformed, err)
	}
	if doc.SchemaKeys == nil {
		doc.SchemaKeys = cur.SchemaKeys
	}

	st.s = merged(cur, fromExportDocument(doc))
	return nil
}

// SaveRequest builds the body that stores the current state on the backend
// under name.
func (st *State) SaveRequest(name string) models.SaveRequest {
	s := st.Snapshot()
	return models.SaveRequest{
		Name:            name,
		OperationFields: models.OperationFieldsOf(s),
		SchemaKeys:      s.SchemaKeys,
		APIKeys:         s.APIKeys,
	}
}

// ApplySavedRecord loads a backend record with the same per-field fallback
// as Import. A record that cannot be read at all leaves the state unchanged.
func (st *State) ApplySavedRecord(record models.SavedConfiguration) error {
	data, err := record.Raw()
	if err != nil {
		return fmt.Errorf("failed to read saved configuration: %w", err)
	}
	if err := checkDocument(data); err != nil {
		return err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	cur := st.s.Clone()
	req := models.SaveRequest{
		OperationFields: models.OperationFieldsOf(cur),
		SchemaKeys:      cur.SchemaKeys,
		APIKeys:         cur.APIKeys,
	}
	if gjson.GetBytes(data, "schema_keys").IsArray() {
		req.SchemaKeys = nil
	}
	base, err := openAIBase(data, "parsing_openai_params", cur.ParsingOpenAIParams)
	if err != nil {
		return advisory.Wrap(advisory.CategoryMalformed, err)
	}
	req.ParsingOpenAIParams = base
	if err := decodeBestEffort(data, &req); err != nil {
		return advisory.Wrap(advisory.CategoryMalformed, err)
	}
	if req.SchemaKeys == nil {
		req.SchemaKeys = cur.SchemaKeys
	}

	next := models.ConfigState{
		Config:               req.Config,
		ParsingProvider:      req.ParsingProvider,
		SearchModelName:      req.SearchModelName,
		ValidateModelName:    req.ValidateModelName,
		ParseModelName:       req.ParseModelName,
		SearchGeminiParams:   req.SearchGeminiParams,
		ValidateGeminiParams: req.ValidateGeminiParams,
		ParsingGeminiParams:  req.ParsingGeminiParams,
		ParsingOpenAIParams:  req.ParsingOpenAIParams,
		APIKeys:              req.APIKeys,
		SchemaKeys:           req.SchemaKeys,
	}
	st.s = merged(cur, next)
	return nil
}

func toExportDocument(s models.ConfigState) models.ExportDocument {
	return models.ExportDocument{
		Config:               s.Config,
		ParsingProvider:      s.ParsingProvider,
		SearchModelName:      s.SearchModelName,
		ValidateModelName:    s.ValidateModelName,
		ParseModelName:       s.ParseModelName,
		SearchGeminiParams:   s.SearchGeminiParams,
		ValidateGeminiParams: s.ValidateGeminiParams,
		ParsingGeminiParams:  s.ParsingGeminiParams,
		ParsingOpenAIParams:  s.ParsingOpenAIParams,
		SchemaKeys:           s.SchemaKeys,
		APIKeys:              s.APIKeys,
	}
}

func fromExportDocument(d models.ExportDocument) models.ConfigState {
	return models.ConfigState{
		Config:               d.Config,
		ParsingProvider:      d.ParsingProvider,
		SearchModelName:      d.SearchModelName,
		ValidateModelName:    d.ValidateModelName,
		ParseModelName:       d.ParseModelName,
		SearchGeminiParams:   d.SearchGeminiParams,
		ValidateGeminiParams: d.ValidateGeminiParams,
		ParsingGeminiParams:  d.ParsingGeminiParams,
		ParsingOpenAIParams:  d.ParsingOpenAIParams,
		SchemaKeys:           d.SchemaKeys,
		APIKeys:              d.APIKeys,
	}
}

// checkDocument rejects anything that is not a JSON object
func checkDocument(data []byte) error {
	if !gjson.ValidBytes(data) || !gjson.ParseBytes(data).IsObject() {
		return advisory.New(advisory.CategoryMalformed, "")
	}
	return nil
}

// decodeBestEffort decodes data over v. Type mismatches skip the affected
// field and are not reported.
func decodeBestEffort(data []byte, v any) error {
	err := json.Unmarshal(data, v)
	var typeErr *json.UnmarshalTypeError
	if err != nil && !errors.As(err, &typeErr) {
		return err
	}
	return nil
}

// merged finishes a decoded state: empty or unknown names fall back to cur
// and, when parsing with OpenAI, the OpenAI parameters are reduced to the
// variant the parse model takes.
func merged(cur, next models.ConfigState) models.ConfigState {
	if !next.ParsingProvider.Valid() {
		next.ParsingProvider = cur.ParsingProvider
	}
	if next.SearchModelName == "" {
		next.SearchModelName = cur.SearchModelName
	}
	if next.ValidateModelName == "" {
		next.ValidateModelName = cur.ValidateModelName
	}
	if next.ParseModelName == "" {
		next.ParseModelName = cur.ParseModelName
	}

	next.ParsingOpenAIParams = oneOpenAIVariant(next, cur.ParsingOpenAIParams)
	return next
}

// openAIBase narrows cur to the OpenAI variants named by the object at key.
// Decoding the document over the result merges fields within a variant but
// never keeps a variant the document left out. Without such an object cur is
// returned unchanged.
func openAIBase(data []byte, key string, cur models.OpenAIParams) (models.OpenAIParams, error) {
	raw := gjson.GetBytes(data, key)
	if !raw.IsObject() {
		return cur, nil
	}

	var named models.OpenAIParams
	if err := json.Unmarshal([]byte(raw.Raw), &named); err != nil {
		return models.OpenAIParams{}, err
	}

	c := cur.Clone()
	var base models.OpenAIParams
	if named.Has(models.VariantReasoning) {
		base.Reasoning = c.Reasoning
	}
	if named.Has(models.VariantStandard) {
		base.Standard = c.Standard
	}
	return base, nil
}

// oneOpenAIVariant leaves exactly one OpenAI variant in next. The variant of
// the parse model wins when present. OpenAI parsing falls back to the parse
// model defaults; otherwise the single variant held is kept.
func oneOpenAIVariant(next models.ConfigState, fallback models.OpenAIParams) models.OpenAIParams {
	p := next.ParsingOpenAIParams
	if !p.Has(models.VariantReasoning) && !p.Has(models.VariantStandard) {
		p = fallback.Clone()
	}

	want := providers.ClassifyModel(next.ParseModelName)
	switch {
	case p.Has(want):
		return p.Only(want)
	case next.ParsingProvider == models.ProviderOpenAI:
		return providers.DefaultOpenAIParams(next.ParseModelName)
	case p.Has(models.VariantReasoning):
		return p.Only(models.VariantReasoning)
	default:
		return providers.DefaultOpenAIParams(providers.OpenAIDefaultModel)
	}
}
