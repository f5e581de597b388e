package jira

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Client is the remote tracker contract the orchestrators depend on.
// Anything covering these four operations is interchangeable.
type Client interface {
	Authenticate(ctx context.Context, baseURL, username, password string) (*Session, error)
	Issue(ctx context.Context, s *Session, key string) (*Issue, error)
	UpdateFields(ctx context.Context, s *Session, key string, fields map[string]any) error
	Search(ctx context.Context, s *Session, jql string) ([]Issue, error)
}

// ClientConfig configures the REST client behavior.
type ClientConfig struct {
	// Timeout for individual requests (default: 30s).
	Timeout time.Duration

	// PageSize is the number of issues per search request (default: 50).
	PageSize int

	// RateLimit requests per second (default: 10).
	RateLimit float64

	// RateBurst maximum burst size (default: 5).
	RateBurst int

	// Transport allows injecting a custom HTTP transport (for tests/stubs).
	Transport http.RoundTripper
}

// DefaultClientConfig returns a client config with sensible defaults.
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		Timeout:   30 * time.Second,
		PageSize:  50,
		RateLimit: 10.0,
		RateBurst: 5,
	}
}

// RESTClient talks to the Jira REST API v2. Every call is a single
// attempt; the orchestrators on top never retry.
type RESTClient struct {
	config      *ClientConfig
	httpClient  *http.Client
	rateLimiter *rate.Limiter
}

var _ Client = (*RESTClient)(nil)

// NewRESTClient creates a Jira REST client with the given configuration.
func NewRESTClient(config *ClientConfig) *RESTClient {
	if config == nil {
		config = DefaultClientConfig()
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.PageSize <= 0 {
		config.PageSize = 50
	}
	if config.RateLimit == 0 {
		config.RateLimit = 10.0
	}
	if config.RateBurst == 0 {
		config.RateBurst = 5
	}

	return &RESTClient{
		config: config,
		httpClient: &http.Client{
			Timeout:   config.Timeout,
			Transport: config.Transport,
		},
		rateLimiter: rate.NewLimiter(rate.Limit(config.RateLimit), config.RateBurst),
	}
}

// doRequest executes one call against the session's server and returns
// the body bytes. Any status >= 400 comes back as *Error.
func (c *RESTClient) doRequest(ctx context.Context, s *Session, method, path string, query url.Values, payload any) ([]byte, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	fullURL := strings.TrimSuffix(s.BaseURL, "/") + "/" + strings.TrimPrefix(path, "/")
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.Username != "" || s.password != "" {
		req.SetBasicAuth(s.Username, s.password)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer res.Body.Close()

	b, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if res.StatusCode >= 400 {
		return nil, newError(res.StatusCode, b)
	}
	return b, nil
}

// Authenticate verifies the credentials against the server and returns
// a live session. Bad credentials come back as *Error with status 401.
func (c *RESTClient) Authenticate(ctx context.Context, baseURL, username, password string) (*Session, error) {
	s := NewSession(baseURL, username, password)
	if _, err := c.doRequest(ctx, s, http.MethodGet, "/rest/api/2/myself", nil, nil); err != nil {
		return nil, err
	}
	return s, nil
}

// Issue fetches a single issue by key. No field values are requested,
// this is an existence check before an update.
func (c *RESTClient) Issue(ctx context.Context, s *Session, key string) (*Issue, error) {
	query := url.Values{}
	query.Set("fields", "")

	b, err := c.doRequest(ctx, s, http.MethodGet, "/rest/api/2/issue/"+url.PathEscape(key), query, nil)
	if err != nil {
		return nil, err
	}
	var issue Issue
	if err := json.Unmarshal(b, &issue); err != nil {
		return nil, fmt.Errorf("parse issue response: %w", err)
	}
	return &issue, nil
}

// UpdateFields writes the given field values on an issue.
func (c *RESTClient) UpdateFields(ctx context.Context, s *Session, key string, fields map[string]any) error {
	payload := map[string]any{"fields": fields}
	_, err := c.doRequest(ctx, s, http.MethodPut, "/rest/api/2/issue/"+url.PathEscape(key), nil, payload)
	return err
}

// Search runs a JQL query and collects all matching issues, paging
// with startAt until the reported total is exhausted. Summaries and
// descriptions are requested along with their rendered variants.
func (c *RESTClient) Search(ctx context.Context, s *Session, jql string) ([]Issue, error) {
	var issues []Issue
	startAt := 0
	for {
		query := url.Values{}
		query.Set("jql", jql)
		query.Set("startAt", strconv.Itoa(startAt))
		query.Set("maxResults", strconv.Itoa(c.config.PageSize))
		query.Set("fields", "summary,description")
		query.Set("expand", "renderedFields")

		b, err := c.doRequest(ctx, s, http.MethodGet, "/rest/api/2/search", query, nil)
		if err != nil {
			return nil, err
		}
		var page SearchResult
		if err := json.Unmarshal(b, &page); err != nil {
			return nil, fmt.Errorf("parse search response: %w", err)
		}

		issues = append(issues, page.Issues...)
		startAt += len(page.Issues)
		if len(page.Issues) == 0 || startAt >= page.Total {
			break
		}
	}
	return issues, nil
}
