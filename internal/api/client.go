// Package api talks to the GroundCite analysis service: health probe,
// analysis requests and the saved-configuration endpoints.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"groundcite/internal/advisory"
	"groundcite/internal/logging"
	"groundcite/internal/utils"
)

// DefaultTimeout bounds every request
const DefaultTimeout = 300 * time.Second

// maxResponseSize bounds how much of a response body is read
const maxResponseSize = 32 << 20

// RequestIDHeader carries the per-request correlation id
const RequestIDHeader = "X-Request-ID"

// Connectivity is the result of the last health probe
type Connectivity int32

const (
	ConnectivityUnknown Connectivity = iota
	Connected
	Disconnected
)

func (c Connectivity) String() string {
	switch c {
	case Connected:
		return "connected"
	case Disconnected:
		return "disconnected"
	default:
		return "checking"
	}
}

// Client sends requests to one GroundCite backend
type Client struct {
	baseURL      string
	client       *http.Client
	timeout      time.Duration
	logger       *logging.Logger
	connectivity atomic.Int32
}

// ClientOption is a functional option for configuring a Client
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.client = client
	}
}

// WithTimeout sets the per-request deadline
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the diagnostic logger
func WithLogger(l *logging.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a Client for baseURL. Connectivity starts unknown until
// HealthCheck runs.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: utils.NormalizeBaseURL(baseURL),
		client:  &http.Client{},
		timeout: DefaultTimeout,
		logger:  logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.Named("api")
	return c
}

// BaseURL returns the backend origin
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Connectivity returns the state set by the last health probe
func (c *Client) Connectivity() Connectivity {
	return Connectivity(c.connectivity.Load())
}

// SetConnectivity overrides the connectivity state
func (c *Client) SetConnectivity(s Connectivity) {
	c.connectivity.Store(int32(s))
}

// do sends one request and returns the body of a 2xx response. Failures are
// *advisory.Error values.
func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, utils.JoinEndpoint(c.baseURL, path), reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)

	log := c.logger.With(
		zap.String("request_id", requestID),
		zap.String("method", method),
		zap.String("path", path),
	)
	log.Debug("sending request")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		aerr := transportError(err)
		log.Warn("request failed", zap.String("category", aerr.Category), zap.Error(err))
		return nil, aerr
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		aerr := transportError(err)
		log.Warn("failed to read response", zap.String("category", aerr.Category), zap.Error(err))
		return nil, aerr
	}

	log.Info("response received",
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("bytes", len(data)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		aerr := advisory.FromStatus(resp.StatusCode, errorDetail(data))
		log.Warn("request rejected", zap.String("category", aerr.Category), zap.String("message", aerr.Message))
		return nil, aerr
	}
	return data, nil
}

// transportError categorizes a failure to obtain a response
func transportError(err error) *advisory.Error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		e := advisory.New(advisory.CategoryTimeout, "")
		e.Err = err
		return e
	}
	return advisory.Wrap(advisory.CategoryTransport, err)
}

// errorDetail extracts the backend's explanation from an error body,
// preferring "detail" over "error".
func errorDetail(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}
	for _, key := range []string{"detail", "error"} {
		if v := gjson.GetBytes(body, key); v.Type == gjson.String && v.Str != "" {
			return v.Str
		}
	}
	return ""
}
