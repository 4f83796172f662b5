package deepface

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/saturnino-fabrica-de-software/chamada/internal/provider"
)

// Config holds the configuration for the DeepFace client
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	RetryCount int
	// RetryBackoff is the first retry delay; it doubles per attempt.
	RetryBackoff time.Duration
	// MinFaceConfidence drops detections below this detector score. The
	// service reports the whole frame with score 0 when it finds no face.
	MinFaceConfidence float64
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() Config {
	return Config{
		BaseURL:           "http://localhost:5001",
		Timeout:           30 * time.Second,
		RetryCount:        2,
		RetryBackoff:      time.Second,
		MinFaceConfidence: 0.01,
	}
}

// Client is the HTTP client for the DeepFace embedding service
type Client struct {
	httpClient *http.Client
	config     Config
}

// NewClient creates a new DeepFace client
func NewClient(config Config) *Client {
	if config.RetryBackoff <= 0 {
		config.RetryBackoff = time.Second
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		config: config,
	}
}

// ExtractEmbedding calls POST /extract-embedding for the main face of an image
func (c *Client) ExtractEmbedding(ctx context.Context, imageBase64 string) (*ExtractResponse, error) {
	var resp ExtractResponse
	if err := c.doRequestWithRetry(ctx, http.MethodPost, "/extract-embedding", EmbeddingRequest{ImageBase64: imageBase64}, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

// DetectFaces calls POST /detect-faces for every face of an image
func (c *Client) DetectFaces(ctx context.Context, imageBase64 string) (*DetectResponse, error) {
	var resp DetectResponse
	if err := c.doRequestWithRetry(ctx, http.MethodPost, "/detect-faces", EmbeddingRequest{ImageBase64: imageBase64}, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

// Health calls GET /health once, without retries
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.doRequest(ctx, http.MethodGet, "/health", nil, &resp); err != nil {
		return nil, classify(ctx, err)
	}
	return &resp, nil
}

// maxBackoff is the maximum backoff duration for retries
const maxBackoff = 30 * time.Second

// calculateBackoff returns base, 2*base, 4*base... capped at maxBackoff
func calculateBackoff(base time.Duration, attempt int) time.Duration {
	if attempt <= 1 {
		return base
	}
	d := base
	for i := 1; i < attempt && d < maxBackoff; i++ {
		d *= 2
	}
	if d > maxBackoff {
		d = maxBackoff
	}
	return d
}

// doRequestWithRetry executes HTTP request with retry logic
func (c *Client) doRequestWithRetry(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var lastErr error

	for attempt := 0; attempt <= c.config.RetryCount; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return classify(ctx, ctx.Err())
			case <-time.After(calculateBackoff(c.config.RetryBackoff, attempt)):
			}
		}

		lastErr = c.doRequest(ctx, method, path, body, result)
		if lastErr == nil {
			return nil
		}

		if ctx.Err() != nil || !retryable(lastErr) {
			return classify(ctx, lastErr)
		}
	}

	return classify(ctx, lastErr)
}

// retryable reports whether a failed attempt is worth repeating. Server
// errors and connection failures are retried; timeouts, client errors and
// bad payloads are not.
func retryable(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Temporary()
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return false
	}
	return !errors.Is(err, ErrInvalidResponse)
}

// classify maps a transport or status failure onto the provider error set
func classify(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %v", ErrDeepFaceTimeout, err)
	}
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		return ctx.Err()
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.StatusCode >= 500:
			return fmt.Errorf("%w: %v", ErrDeepFaceUnavailable, err)
		case strings.Contains(strings.ToLower(statusErr.Message), "no face"):
			return fmt.Errorf("%w: %v", ErrNoFaceInResponse, err)
		default:
			return fmt.Errorf("%w: %v", provider.ErrBadImage, err)
		}
	}

	if errors.Is(err, ErrInvalidResponse) {
		return err
	}

	return fmt.Errorf("%w: %v", ErrDeepFaceUnavailable, err)
}

// doRequest executes a single HTTP request
func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	url := strings.TrimRight(c.config.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		msg := string(respBody)
		var errResp errorResponse
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			msg = errResp.Error
		}
		return &StatusError{StatusCode: resp.StatusCode, Message: msg}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
	}

	return nil
}
