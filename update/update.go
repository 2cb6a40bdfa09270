// Package update checks whether a newer release of i18nedit is published.
//
// The check queries a GitHub "releases/latest" endpoint, is bounded by a
// timeout and runs on a background worker. Any failure, including the
// timeout, means "no information" and is never reported as an error to the
// user.
package update

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"golang.org/x/mod/semver"
)

// Release is a published release.
type Release struct {
	Tag string `json:"tag_name"`
	URL string `json:"html_url"`
}

// Info is the outcome of a successful check.
type Info struct {
	Current string
	Latest  Release
	// Newer is true when Latest is a higher version than Current.
	Newer bool
}

// Checker queries the release endpoint.
type Checker struct {
	current string
	url     string
	timeout time.Duration
	client  *http.Client
	log     *slog.Logger

	once sync.Once
	pool *ants.Pool
	err  error
}

// Option configures a Checker.
type Option func(*Checker)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(ch *Checker) { ch.client = c }
}

// WithLogger sets the diagnostics logger.
func WithLogger(l *slog.Logger) Option {
	return func(ch *Checker) {
		if l != nil {
			ch.log = l
		}
	}
}

// NewChecker returns a checker comparing current against the release at
// url. A non-positive timeout means 30 seconds.
func NewChecker(current, url string, timeout time.Duration, opts ...Option) *Checker {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := &Checker{
		current: current,
		url:     url,
		timeout: timeout,
		log:     slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(c)
	}
	if c.client == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.Proxy = http.ProxyFromEnvironment
		c.client = &http.Client{Transport: transport}
	}
	return c
}

// Check performs the request synchronously. It reports false when no
// information could be obtained.
func (c *Checker) Check(ctx context.Context) (Info, bool) {
	rel, err := c.fetch(ctx)
	if err != nil {
		c.log.Debug("release check inconclusive", "url", c.url, "error", err)
		return Info{}, false
	}
	return Info{
		Current: c.current,
		Latest:  rel,
		Newer:   IsNewer(c.current, rel.Tag),
	}, true
}

func (c *Checker) fetch(ctx context.Context) (Release, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return Release{}, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", "i18nedit/"+c.current)

	resp, err := c.client.Do(req)
	if err != nil {
		return Release{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Release{}, fmt.Errorf("unexpected status %s", resp.Status)
	}

	var rel Release
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&rel); err != nil {
		return Release{}, fmt.Errorf("decoding release: %w", err)
	}
	if rel.Tag == "" {
		return Release{}, fmt.Errorf("release has no tag")
	}
	return rel, nil
}

// Start runs Check on a background worker. The returned channel yields at
// most one Info and is then closed; it is closed without a value when the
// check is inconclusive or could not be scheduled.
func (c *Checker) Start(ctx context.Context) <-chan Info {
	out := make(chan Info, 1)
	c.once.Do(func() {
		c.pool, c.err = ants.NewPool(1, ants.WithNonblocking(true))
	})
	if c.err != nil {
		c.log.Debug("release check not scheduled", "error", c.err)
		close(out)
		return out
	}
	err := c.pool.Submit(func() {
		defer close(out)
		if info, ok := c.Check(ctx); ok {
			out <- info
		}
	})
	if err != nil {
		c.log.Debug("release check not scheduled", "error", err)
		close(out)
	}
	return out
}

// Close releases the background worker.
func (c *Checker) Close() {
	if c.pool != nil {
		c.pool.Release()
	}
}

// IsNewer reports whether latest is a higher semantic version than
// current. Versions may omit the leading "v"; anything that is not a valid
// semantic version (such as a development build) is never older.
func IsNewer(current, latest string) bool {
	cur, lat := canonical(current), canonical(latest)
	if !semver.IsValid(cur) || !semver.IsValid(lat) {
		return false
	}
	return semver.Compare(lat, cur) > 0
}

func canonical(v string) string {
	v = strings.TrimSpace(v)
	if v != "" && !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}
