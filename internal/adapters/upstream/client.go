// Package upstream fetches dashboard records from the remote project API.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/okian/projdash/internal/domain/model"
	"github.com/okian/projdash/pkg/logger"
)

// Default client configuration constants.
const (
	defaultTimeout   = 10 * time.Second
	maxErrorBodySize = 512
)

// ErrBaseURL reports an unusable base URL.
var ErrBaseURL = errors.New("invalid upstream base url")

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets a custom logger for the client.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// Client implements the dashboard collaborators over JSON/HTTP.
type Client struct {
	base    string
	http    *http.Client
	timeout time.Duration
	logger  logger.Logger
}

// New returns a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrBaseURL, baseURL)
	}

	c := &Client{
		base:    strings.TrimRight(u.String(), "/"),
		http:    &http.Client{},
		timeout: defaultTimeout,
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// FetchSampleProject calls GET /sample-projects/{id}.
func (c *Client) FetchSampleProject(ctx context.Context, id string) (model.ProjectSummary, error) {
	var p model.ProjectSummary
	err := c.get(ctx, "/sample-projects/"+url.PathEscape(id), &p)
	return p, err
}

// FetchMyProject calls GET /my-projects/{id}.
func (c *Client) FetchMyProject(ctx context.Context, id string) (model.ProjectSummary, error) {
	var p model.ProjectSummary
	err := c.get(ctx, "/my-projects/"+url.PathEscape(id), &p)
	return p, err
}

// FetchFeeds calls GET /feeds.
func (c *Client) FetchFeeds(ctx context.Context) ([]model.FeedEntry, error) {
	var feeds []model.FeedEntry
	if err := c.get(ctx, "/feeds", &feeds); err != nil {
		return nil, err
	}
	if feeds == nil {
		feeds = []model.FeedEntry{}
	}
	return feeds, nil
}

// FetchRunningExperiments calls GET /experiments/running.
func (c *Client) FetchRunningExperiments(ctx context.Context) ([]model.ExperimentSummary, error) {
	var experiments []model.ExperimentSummary
	if err := c.get(ctx, "/experiments/running", &experiments); err != nil {
		return nil, err
	}
	if experiments == nil {
		experiments = []model.ExperimentSummary{}
	}
	return experiments, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug(ctx, "upstream request failed", logger.String("path", path), logger.Error(err))
		return fmt.Errorf("%w: %v", model.ErrTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s: %w", path, model.ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		c.logger.Debug(ctx, "upstream returned an error status",
			logger.String("path", path), logger.Int("status", resp.StatusCode), logger.String("body", string(body)))
		return fmt.Errorf("%w: %s returned %d", model.ErrTransport, path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", model.ErrTransport, path, err)
	}
	return nil
}
