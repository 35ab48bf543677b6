package inference

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"
)

const (
	defaultTimeout    = 30 * time.Second
	defaultSampleRate = 16000
)

// Client is an HTTP Engine for a hosted speech-intent model endpoint
// (Azure ML managed endpoints and compatible services).
//
// Wire format: POST {"audio": "<base64>", "sample_rate": 16000} with a
// Bearer key, response {"transcription": ..., "embedding": [...],
// "model_used": ...}. Fields the model does not produce are simply
// absent.
type Client struct {
	endpoint   string
	apiKey     string
	sampleRate int
	httpc      *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithTimeout sets the request timeout (default 30s).
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.httpc.Timeout = d
		}
	}
}

// WithSampleRate sets the sample rate reported to the model
// (default 16000).
func WithSampleRate(hz int) ClientOption {
	return func(c *Client) {
		if hz > 0 {
			c.sampleRate = hz
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpc = hc
		}
	}
}

// NewClient creates a client for the given endpoint URL and API key.
func NewClient(endpoint, apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		endpoint:   endpoint,
		apiKey:     apiKey,
		sampleRate: defaultSampleRate,
		httpc:      &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// inferRequest is the model endpoint's request body.
type inferRequest struct {
	Audio      string `json:"audio"`
	SampleRate int    `json:"sample_rate"`
}

// Infer sends the audio to the model endpoint and decodes the result.
// Failures come back as *Error with the kind already classified.
func (c *Client) Infer(ctx context.Context, audio []byte) (*Result, error) {
	body, err := json.Marshal(inferRequest{
		Audio:      base64.StdEncoding.EncodeToString(audio),
		SampleRate: c.sampleRate,
	})
	if err != nil {
		return nil, &Error{Kind: KindServer, Err: fmt.Errorf("encode request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Kind: KindConnection, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, &Error{Kind: classifyTransport(err), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &Error{
			Kind:   KindServer,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("endpoint returned %d: %s", resp.StatusCode, payload),
		}
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &Error{Kind: KindServer, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return &result, nil
}

// classifyTransport distinguishes timeouts from unreachable endpoints.
func classifyTransport(err error) Kind {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	return KindConnection
}
