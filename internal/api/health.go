package api

import (
	"context"
	"net/http"

	"github.com/tidwall/gjson"

	"groundcite/internal/advisory"
)

// HealthStatus is the body of GET /api/health. Any 2xx response counts as
// healthy whatever it contains.
type HealthStatus struct {
	Status          string `json:"status"`
	Timestamp       string `json:"timestamp,omitempty"`
	Version         string `json:"version,omitempty"`
	GroundCiteReady bool   `json:"groundcite_ready,omitempty"`
	Environment     string `json:"environment,omitempty"`
}

// HealthCheck probes the backend and records the outcome as the client's
// connectivity. A failure is an OFFLINE error carrying the offline advisory.
func (c *Client) HealthCheck(ctx context.Context) (*HealthStatus, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/health", nil)
	if err != nil {
		c.SetConnectivity(Disconnected)
		return nil, &advisory.Error{
			Category: advisory.CategoryOffline,
			Message:  advisory.OfflineAdvisory,
			Err:      err,
		}
	}

	c.SetConnectivity(Connected)

	return parseHealthStatus(body), nil
}

// parseHealthStatus reads the fields it recognizes. A body that is not JSON
// yields an empty status.
func parseHealthStatus(body []byte) *HealthStatus {
	if !gjson.ValidBytes(body) {
		return &HealthStatus{}
	}
	res := gjson.ParseBytes(body)
	return &HealthStatus{
		Status:          res.Get("status").String(),
		Timestamp:       res.Get("timestamp").String(),
		Version:         res.Get("version").String(),
		GroundCiteReady: res.Get("groundcite_ready").Type == gjson.True,
		Environment:     res.Get("environment").String(),
	}
}
