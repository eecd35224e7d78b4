package api

import (
	"context"
	"net/http"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"groundcite/config/models"
	"groundcite/internal/advisory"
)

// AnalysisResult is the response "data" object with the response
// "metadata" merged in under the "metadata" key.
type AnalysisResult struct {
	raw []byte
}

// NewAnalysisResult wraps an already merged result document
func NewAnalysisResult(raw []byte) *AnalysisResult {
	return &AnalysisResult{raw: raw}
}

// JSON returns the result document
func (r *AnalysisResult) JSON() []byte {
	return r.raw
}

// Get reads a gjson path from the result
func (r *AnalysisResult) Get(path string) gjson.Result {
	return gjson.GetBytes(r.raw, path)
}

// Analyze sends one analysis request built from query, systemInstruction
// and the configuration snapshot. It fails with OFFLINE, without any
// network traffic, unless the last health check succeeded.
func (c *Client) Analyze(ctx context.Context, query, systemInstruction string, snapshot models.ConfigState) (*AnalysisResult, error) {
	if c.Connectivity() != Connected {
		return nil, advisory.New(advisory.CategoryOffline, "")
	}

	body, err := c.do(ctx, http.MethodPost, "/api/analyze", models.NewAnalyzeRequest(query, systemInstruction, snapshot))
	if err != nil {
		return nil, err
	}
	return ParseAnalyzeResponse(body)
}

// ParseAnalyzeResponse interprets a 2xx analyze response body
func ParseAnalyzeResponse(body []byte) (*AnalysisResult, error) {
	if !gjson.ValidBytes(body) {
		return nil, advisory.New(advisory.CategoryTransport, "Invalid response from analysis service")
	}

	if gjson.GetBytes(body, "success").Type != gjson.True {
		msg := gjson.GetBytes(body, "error")
		if msg.Type == gjson.String && msg.Str != "" {
			return nil, advisory.New(advisory.CategoryApplication, msg.Str)
		}
		return nil, advisory.New(advisory.CategoryApplication, "")
	}

	result := []byte("{}")
	if data := gjson.GetBytes(body, "data"); data.IsObject() {
		result = []byte(data.Raw)
	}

	if metadata := gjson.GetBytes(body, "metadata"); metadata.Exists() {
		merged, err := sjson.SetRawBytes(result, "metadata", []byte(metadata.Raw))
		if err != nil {
			return nil, advisory.Wrap(advisory.CategoryTransport, err)
		}
		result = merged
	}

	return &AnalysisResult{raw: result}, nil
}
