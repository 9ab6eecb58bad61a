package contents

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-jupyter/pkg/models"
)

// DefaultTimeout bounds a single request when Config.Timeout is unset.
const DefaultTimeout = 30 * time.Second

// Config holds the connection settings for one contents server.
type Config struct {
	// BaseURL is the contents API root, e.g. https://hub/user/me/api/contents
	BaseURL string
	Token   string
	Timeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client used for requests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// Client talks to the contents API of a Jupyter server.
type Client struct {
	baseURL    *url.URL
	token      string
	httpClient *http.Client
	logger     logrus.FieldLogger
}

// New creates a Client for cfg.
func New(cfg Config, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("contents: base URL is required")
	}

	parsed, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("contents: invalid base URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("contents: base URL must be http or https, got %q", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	quiet := logrus.New()
	quiet.SetOutput(io.Discard)

	c := &Client{
		baseURL:    parsed,
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: timeout},
		logger:     quiet,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Get fetches the resource at p. Any transport failure or non-2xx status
// is returned as a *NetworkError.
func (c *Client) Get(ctx context.Context, p string) (*models.Contents, error) {
	return c.get(ctx, p, nil)
}

// Stat fetches the model of the resource at p without its content.
func (c *Client) Stat(ctx context.Context, p string) (*models.Contents, error) {
	return c.get(ctx, p, url.Values{"content": {"0"}})
}

func (c *Client) get(ctx context.Context, p string, query url.Values) (*models.Contents, error) {
	p = models.CleanPath(p)

	resp, err := c.do(ctx, http.MethodGet, p, query, nil)
	if err != nil {
		return nil, &NetworkError{Op: http.MethodGet, Path: p, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Op: http.MethodGet, Path: p, Err: fmt.Errorf("read body: %w", err)}
	}
	if !success(resp.StatusCode) {
		return nil, &NetworkError{Op: http.MethodGet, Path: p, StatusCode: resp.StatusCode, Body: body}
	}

	var out models.Contents
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &DecodeError{Path: p, What: "contents response", Err: err}
	}
	return &out, nil
}

// Put stores content at p as a text file. A non-2xx status is returned as
// a *SaveError.
func (c *Client) Put(ctx context.Context, p string, content string) error {
	p = models.CleanPath(p)

	data, err := json.Marshal(models.NewSaveRequest(content))
	if err != nil {
		return &SaveError{Path: p, Err: fmt.Errorf("encode body: %w", err)}
	}

	resp, err := c.do(ctx, http.MethodPut, p, nil, bytes.NewReader(data))
	if err != nil {
		return &SaveError{Path: p, Err: err}
	}
	defer resp.Body.Close()

	if !success(resp.StatusCode) {
		body, _ := io.ReadAll(resp.Body)
		return &SaveError{Path: p, StatusCode: resp.StatusCode, Body: body}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *Client) do(ctx context.Context, method, p string, query url.Values, body io.Reader) (*http.Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	fullURL := c.resolve(p)
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "token "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	entry := c.logger.WithFields(logrus.Fields{
		"method":   method,
		"path":     p,
		"duration": time.Since(start).Round(time.Millisecond),
	})
	if err != nil {
		entry.WithError(err).Debug("contents request failed")
		return nil, err
	}
	entry.WithField("status", resp.StatusCode).Debug("contents request")
	return resp, nil
}

// resolve appends the escaped contents path to the base URL.
func (c *Client) resolve(p string) string {
	trimmed := strings.Trim(p, "/")
	if trimmed == "" {
		return c.baseURL.String()
	}
	return c.baseURL.JoinPath(strings.Split(trimmed, "/")...).String()
}

func success(code int) bool {
	return code >= 200 && code <= 299
}
