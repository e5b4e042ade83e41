package nswire

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/statecraft/nswire/assembly"
	"github.com/statecraft/nswire/metric"
	"github.com/statecraft/nswire/ratelimit"
	"github.com/statecraft/nswire/sax"
	"github.com/statecraft/nswire/shape"
)

// DefaultBaseURL is the public read API endpoint.
const DefaultBaseURL = "https://www.nationstates.net/cgi-bin/api.cgi"

// defaultBackoff applies when a 429 carries no usable Retry-After.
const defaultBackoff = 30 * time.Second

// maxDocDepth caps element nesting while streaming; the real API never goes
// anywhere near this deep.
const maxDocDepth = 64

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different API host, e.g. a test server.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.base = u }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

// WithLogger sets the logger; the default discards everything.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithLimiter replaces the default token-window limiter. Pass the same
// limiter to several clients to share one budget.
func WithLimiter(l *ratelimit.Limiter) Option {
	return func(c *Client) { c.lim = l }
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *metric.Metrics) Option {
	return func(c *Client) { c.met = m }
}

// Client performs read API requests and assembles the streamed responses.
// It is safe for concurrent use.
type Client struct {
	base    string
	baseURL *url.URL
	ua      string
	hc      *http.Client
	log     *slog.Logger
	lim     *ratelimit.Limiter
	met     *metric.Metrics
}

// New builds a Client. The remote API rejects anonymous scripts, so a
// descriptive user agent is mandatory.
func New(userAgent string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(userAgent) == "" {
		return nil, errors.New("nswire: a descriptive user agent is required")
	}
	c := &Client{
		base: DefaultBaseURL,
		ua:   userAgent,
		hc:   &http.Client{Timeout: 30 * time.Second},
		log:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		lim:  ratelimit.New(0, 0),
	}
	for _, o := range opts {
		o(c)
	}
	u, err := url.Parse(c.base)
	if err != nil {
		return nil, fmt.Errorf("nswire: bad base url %q: %w", c.base, err)
	}
	c.baseURL = u
	return c, nil
}

// Canonical converts a display name to the API's identifier form.
func Canonical(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

// Nation fetches the standard shard set for one nation.
func (c *Client) Nation(ctx context.Context, name string) (*shape.Nation, error) {
	root := shape.NationAssembler()
	q := url.Values{"nation": {Canonical(name)}, "q": {shape.NationShards}}
	if err := c.do(ctx, "nation", q, root); err != nil {
		return nil, err
	}
	v, err := root.Deliver()
	if err != nil {
		return nil, err
	}
	return shape.BindNation(v)
}

// Region fetches the standard shard set for one region.
func (c *Client) Region(ctx context.Context, name string) (*shape.Region, error) {
	root := shape.RegionAssembler()
	q := url.Values{"region": {Canonical(name)}, "q": {shape.RegionShards}}
	if err := c.do(ctx, "region", q, root); err != nil {
		return nil, err
	}
	v, err := root.Deliver()
	if err != nil {
		return nil, err
	}
	return shape.BindRegion(v)
}

// World fetches the standard world shard set.
func (c *Client) World(ctx context.Context) (*shape.World, error) {
	root := shape.WorldAssembler()
	q := url.Values{"q": {shape.WorldShards}}
	if err := c.do(ctx, "world", q, root); err != nil {
		return nil, err
	}
	v, err := root.Deliver()
	if err != nil {
		return nil, err
	}
	return shape.BindWorld(v)
}

// Happenings streams the world happenings feed, keeping only events the
// filter accepts; everything else is discarded as it finishes assembling.
func (c *Client) Happenings(ctx context.Context, keep func(event map[string]any) bool) ([]shape.Happening, error) {
	root := shape.HappeningsAssembler(keep)
	q := url.Values{"q": {"happenings"}}
	if err := c.do(ctx, "happenings", q, root); err != nil {
		return nil, err
	}
	v, err := root.Deliver()
	if err != nil {
		return nil, err
	}
	return shape.BindHappenings(v)
}

// NationsByNames fetches several nations concurrently. The fan-out is
// bounded and every request still goes through the shared limiter.
func (c *Client) NationsByNames(ctx context.Context, names ...string) ([]*shape.Nation, error) {
	out := make([]*shape.Nation, len(names))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			n, err := c.Nation(ctx, name)
			if err != nil {
				return fmt.Errorf("nswire: nation %q: %w", name, err)
			}
			out[i] = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Do performs a raw request against the API and streams the response into
// root. Callers deliver the product themselves; this is the hook for custom
// shapes the shape package does not cover.
func (c *Client) Do(ctx context.Context, query url.Values, root assembly.Node) error {
	return c.do(ctx, "custom", query, root)
}

func (c *Client) do(ctx context.Context, endpoint string, query url.Values, root assembly.Node) error {
	waitStart := time.Now()
	if err := c.lim.Wait(ctx); err != nil {
		return err
	}
	c.met.ObserveWait(time.Since(waitStart))

	// The base URL may already carry query parameters (API version pins,
	// proxy keys); merge instead of appending a second "?".
	u := *c.baseURL
	q := u.Query()
	for k, vs := range query {
		q[k] = vs
	}
	u.RawQuery = q.Encode()

	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", c.ua)

		c.log.Debug("request", "endpoint", endpoint, "attempt", attempt)
		resp, err := c.hc.Do(req)
		if err != nil {
			c.met.ObserveRequest(endpoint, "transport_error")
			return err
		}

		if resp.StatusCode == http.StatusTooManyRequests && attempt == 0 {
			resp.Body.Close()
			retry := retryAfter(resp)
			c.log.Warn("throttled by remote, backing off", "endpoint", endpoint, "retry_after", retry)
			c.met.ObserveRequest(endpoint, "throttled")
			c.lim.Backoff(retry)
			if err := c.lim.Wait(ctx); err != nil {
				return err
			}
			continue
		}

		err = c.assemble(endpoint, resp, root)
		resp.Body.Close()
		return err
	}
}

// assemble streams the response body into root. Non-200 responses are still
// parsed first: the API reports unknown nations and similar conditions as an
// error tag inside a 4xx body, and that message beats a bare status code.
func (c *Client) assemble(endpoint string, resp *http.Response, root assembly.Node) error {
	streamErr := sax.Stream(resp.Body, root, sax.Options{MaxDepth: maxDocDepth})

	if resp.StatusCode != http.StatusOK {
		if ae, ok := AsAPIError(streamErr); ok {
			c.met.ObserveRequest(endpoint, "api_error")
			return ae
		}
		c.met.ObserveRequest(endpoint, "http_error")
		return &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}
	if streamErr != nil {
		if ae, ok := AsAPIError(streamErr); ok {
			c.met.ObserveRequest(endpoint, "api_error")
			return ae
		}
		c.met.ObserveParseFailure()
		c.met.ObserveRequest(endpoint, "parse_error")
		return streamErr
	}
	c.met.ObserveRequest(endpoint, "ok")
	return nil
}

func retryAfter(resp *http.Response) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultBackoff
}
