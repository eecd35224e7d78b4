package models

import (
	"encoding/json"
	"errors"
)

// OpenAIVariant selects which OpenAI parameter set applies to a model
type OpenAIVariant int

const (
	// VariantStandard takes temperature-style sampling parameters
	VariantStandard OpenAIVariant = iota
	// VariantReasoning takes reasoning_effort and max_completion_tokens
	VariantReasoning
)

func (v OpenAIVariant) String() string {
	if v == VariantReasoning {
		return "reasoning"
	}
	return "standard"
}

// ReasoningEffort is the effort level accepted by reasoning models
type ReasoningEffort string

const (
	EffortLow    ReasoningEffort = "low"
	EffortMedium ReasoningEffort = "medium"
	EffortHigh   ReasoningEffort = "high"
)

// Valid reports whether e is one of low, medium or high
func (e ReasoningEffort) Valid() bool {
	return e == EffortLow || e == EffortMedium || e == EffortHigh
}

// ReasoningParams apply to the reasoning model family (o1, o1-mini, o3-mini)
type ReasoningParams struct {
	ReasoningEffort     ReasoningEffort `json:"reasoning_effort"`
	MaxCompletionTokens int             `json:"max_completion_tokens"`
}

// StandardParams apply to every other OpenAI model
type StandardParams struct {
	Temperature      float64 `json:"temperature"`
	MaxTokens        int     `json:"max_tokens"`
	TopP             float64 `json:"top_p"`
	FrequencyPenalty float64 `json:"frequency_penalty"`
	PresencePenalty  float64 `json:"presence_penalty"`
}

// OpenAIParams holds the parsing parameters for OpenAI. The owning state keeps
// exactly one variant populated, the one matching the parse model name.
// On the wire both variants share a single flat object.
type OpenAIParams struct {
	Reasoning *ReasoningParams
	Standard  *StandardParams
}

// ReasoningOpenAIParams wraps p as a reasoning variant
func ReasoningOpenAIParams(p ReasoningParams) OpenAIParams {
	return OpenAIParams{Reasoning: &p}
}

// StandardOpenAIParams wraps p as a standard variant
func StandardOpenAIParams(p StandardParams) OpenAIParams {
	return OpenAIParams{Standard: &p}
}

// Has reports whether the given variant is populated
func (p OpenAIParams) Has(v OpenAIVariant) bool {
	if v == VariantReasoning {
		return p.Reasoning != nil
	}
	return p.Standard != nil
}

// Only returns a copy holding just the given variant. The result is empty
// when that variant is not populated.
func (p OpenAIParams) Only(v OpenAIVariant) OpenAIParams {
	c := p.Clone()
	if v == VariantReasoning {
		c.Standard = nil
	} else {
		c.Reasoning = nil
	}
	return c
}

// Clone returns a copy that shares no pointers with p
func (p OpenAIParams) Clone() OpenAIParams {
	var c OpenAIParams
	if p.Reasoning != nil {
		r := *p.Reasoning
		c.Reasoning = &r
	}
	if p.Standard != nil {
		s := *p.Standard
		c.Standard = &s
	}
	return c
}

type openAIParamsWire struct {
	ReasoningEffort     *ReasoningEffort `json:"reasoning_effort,omitempty"`
	MaxCompletionTokens *int             `json:"max_completion_tokens,omitempty"`
	Temperature         *float64         `json:"temperature,omitempty"`
	MaxTokens           *int             `json:"max_tokens,omitempty"`
	TopP                *float64         `json:"top_p,omitempty"`
	FrequencyPenalty    *float64         `json:"frequency_penalty,omitempty"`
	PresencePenalty     *float64         `json:"presence_penalty,omitempty"`
}

// MarshalJSON writes the populated variant fields as one flat object
func (p OpenAIParams) MarshalJSON() ([]byte, error) {
	var w openAIParamsWire
	if r := p.Reasoning; r != nil {
		w.ReasoningEffort = &r.ReasoningEffort
		w.MaxCompletionTokens = &r.MaxCompletionTokens
	}
	if s := p.Standard; s != nil {
		w.Temperature = &s.Temperature
		w.MaxTokens = &s.MaxTokens
		w.TopP = &s.TopP
		w.FrequencyPenalty = &s.FrequencyPenalty
		w.PresencePenalty = &s.PresencePenalty
	}
	return json.Marshal(w)
}

// UnmarshalJSON overlays the fields present in data onto p. Fields that are
// absent or carry the wrong JSON type keep their current value.
func (p *OpenAIParams) UnmarshalJSON(data []byte) error {
	var w openAIParamsWire
	if err := json.Unmarshal(data, &w); err != nil {
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			return err
		}
	}

	if w.ReasoningEffort != nil || w.MaxCompletionTokens != nil {
		r := ReasoningParams{}
		if p.Reasoning != nil {
			r = *p.Reasoning
		}
		if w.ReasoningEffort != nil {
			r.ReasoningEffort = *w.ReasoningEffort
		}
		if w.MaxCompletionTokens != nil {
			r.MaxCompletionTokens = *w.MaxCompletionTokens
		}
		p.Reasoning = &r
	}

	if w.Temperature != nil || w.MaxTokens != nil || w.TopP != nil ||
		w.FrequencyPenalty != nil || w.PresencePenalty != nil {
		s := StandardParams{}
		if p.Standard != nil {
			s = *p.Standard
		}
		if w.Temperature != nil {
			s.Temperature = *w.Temperature
		}
		if w.MaxTokens != nil {
			s.MaxTokens = *w.MaxTokens
		}
		if w.TopP != nil {
			s.TopP = *w.TopP
		}
		if w.FrequencyPenalty != nil {
			s.FrequencyPenalty = *w.FrequencyPenalty
		}
		if w.PresencePenalty != nil {
			s.PresencePenalty = *w.PresencePenalty
		}
		p.Standard = &s
	}

	return nil
}
