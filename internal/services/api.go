// HTTP transport shared by the proxy and catalog clients
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/tunesync/internal/shared"
)

// APIService performs JSON requests against a single base URL, adding fixed headers to each one.
type APIService struct {
	name       string
	baseURL    string
	httpClient *http.Client
	headers    http.Header
}

// APIOption configures an [APIService].
type APIOption func(*APIService)

// WithHeader sets a header sent with every request.
func WithHeader(key, value string) APIOption {
	return func(a *APIService) {
		if value != "" {
			a.headers.Set(key, value)
		}
	}
}

// WithServiceName sets the name reported in errors.
func WithServiceName(name string) APIOption {
	return func(a *APIService) { a.name = name }
}

// NewAPIService creates a new API service instance.
func NewAPIService(baseURL string, client *http.Client, opts ...APIOption) *APIService {
	if baseURL == "" {
		baseURL = defaultYTBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	a := &APIService{
		name:       "api",
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
		headers:    http.Header{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// OK reports a 2xx status.
func (r *APIResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Get performs a GET request to the specified path and returns the raw response.
func (a *APIService) Get(ctx context.Context, path string) (*APIResponse, error) {
	return a.do(ctx, http.MethodGet, path, nil)
}

// Post performs a POST request with the given JSON data and returns the raw response.
func (a *APIService) Post(ctx context.Context, path string, data []byte) (*APIResponse, error) {
	return a.do(ctx, http.MethodPost, path, data)
}

// GetJSON decodes the body of a successful GET into out.
func (a *APIService) GetJSON(ctx context.Context, path string, out any) error {
	resp, err := a.Get(ctx, path)
	if err != nil {
		return err
	}
	return a.decode(path, resp, out)
}

// PostJSON encodes in as the request body and decodes a successful response into out, which may be nil.
func (a *APIService) PostJSON(ctx context.Context, path string, in, out any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	resp, err := a.Post(ctx, path, data)
	if err != nil {
		return err
	}
	return a.decode(path, resp, out)
}

// CheckStatus converts a non-2xx response into a [shared.RateLimitError] or [shared.HTTPStatusError].
func (a *APIService) CheckStatus(path string, resp *APIResponse) error {
	if resp.OK() {
		return nil
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return &shared.RateLimitError{Service: a.name, RetryAfter: retryAfter(resp.Headers.Get("Retry-After"))}
	}

	return &shared.HTTPStatusError{
		Service:    a.name,
		URL:        path,
		StatusCode: resp.StatusCode,
		Detail:     errorDetail(resp),
	}
}

func (a *APIService) decode(path string, resp *APIResponse, out any) error {
	if err := a.CheckStatus(path, resp); err != nil {
		return err
	}
	if out == nil || len(resp.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (a *APIService) url(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return a.baseURL + path
}

func (a *APIService) do(ctx context.Context, method, path string, data []byte) (*APIResponse, error) {
	var body io.Reader
	if data != nil {
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.url(path), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, values := range a.headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s request failed: %w", shared.ErrAPIRequest, a.name, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       raw,
	}

	var jsonData any
	if err := json.Unmarshal(raw, &jsonData); err == nil {
		apiResp.IsJSON = true
		apiResp.JSONData = jsonData
	}

	return apiResp, nil
}

// errorDetail pulls a message out of FastAPI ("detail") or Discogs ("message") error bodies.
func errorDetail(resp *APIResponse) string {
	obj, ok := resp.JSONData.(map[string]any)
	if !ok {
		return ""
	}
	for _, key := range []string{"detail", "message", "error"} {
		if s, ok := obj[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func retryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(header)); err == nil {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(header); err == nil {
		return max(time.Until(at), 0)
	}
	return 0
}
