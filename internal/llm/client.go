package llm

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

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jonathan/keyword-ranker/internal/ranking"
	"github.com/jonathan/keyword-ranker/internal/schemas"
	"github.com/jonathan/keyword-ranker/internal/types"
	schemafiles "github.com/jonathan/keyword-ranker/schemas"
)

// RankPath is the route served by every keyword ranker
const RankPath = "/llm/rank"

const (
	// maxErrorBody limits how much of a failed response is kept in HTTPError
	maxErrorBody = 512
	// maxResponseBytes bounds the rank response read from a remote ranker
	maxResponseBytes = 1 << 20
)

// ErrResponseTooLarge is returned when a remote ranker answers with more than maxResponseBytes
var ErrResponseTooLarge = errors.New("rank response too large")

// Ranker annotates candidate keywords
type Ranker interface {
	Rank(ctx context.Context, req types.RankRequest) (*types.RankResponse, error)
}

// NewRanker creates a ranker based on configuration
func NewRanker(config *Config) (Ranker, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Provider {
	case ProviderHTTP:
		return NewHTTPRanker(config.BaseURL, config.Timeout), nil
	default:
		return LocalRanker{}, nil
	}
}

// LocalRanker runs the placeholder ranking in-process
type LocalRanker struct{}

// Rank implements Ranker. It only fails if ctx is already done.
func (LocalRanker) Rank(ctx context.Context, req types.RankRequest) (*types.RankResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	resp := ranking.Rank(req)
	return &resp, nil
}

// HTTPError is returned when the remote ranker answers with a non-2xx status
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("ranker HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("ranker HTTP %d: %s", e.StatusCode, e.Body)
}

// HTTPRanker implements Ranker against a remote keyword ranker service
type HTTPRanker struct {
	endpoint   string
	timeout    time.Duration
	httpClient *http.Client
}

// NewHTTPRanker creates a client posting to baseURL + RankPath.
func NewHTTPRanker(baseURL string, timeout time.Duration) *HTTPRanker {
	return &HTTPRanker{
		endpoint: strings.TrimRight(baseURL, "/") + RankPath,
		timeout:  timeout,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// Rank posts req and decodes the ranked response.
// The call is bounded by the client timeout in addition to ctx.
func (c *HTTPRanker) Rank(ctx context.Context, req types.RankRequest) (*types.RankResponse, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode rank request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build rank request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("rank request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read rank response: %w", err)
	}
	if len(body) > maxResponseBytes {
		return nil, fmt.Errorf("%w: exceeds %d bytes", ErrResponseTooLarge, maxResponseBytes)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text := strings.TrimSpace(string(body))
		if len(text) > maxErrorBody {
			text = text[:maxErrorBody]
		}
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: text}
	}

	if err := schemas.ValidateDocument(schemafiles.RankResponse, body); err != nil {
		return nil, fmt.Errorf("unexpected rank response: %w", err)
	}

	var ranked types.RankResponse
	if err := json.Unmarshal(body, &ranked); err != nil {
		return nil, fmt.Errorf("failed to decode rank response: %w", err)
	}
	return &ranked, nil
}

// IsTimeout reports whether err came from a deadline rather than a failed exchange.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
