// Package reddit fetches recent posts for a forum. Fetch strategies are tried in order:
// the authenticated api when credentials are configured, the anonymous json listing,
// and optionally the public rss feed. A forum where every strategy fails yields no posts.
package reddit

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/ideafilter/pkg/config"
	"github.com/umputun/ideafilter/pkg/domain"
)

// ErrNotConfigured is returned by a strategy that cannot run with the given configuration
var ErrNotConfigured = errors.New("strategy not configured")

// FetchError describes a failed attempt of a single strategy for a forum
type FetchError struct {
	Strategy string
	Forum    string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s fetch for r/%s failed: %v", e.Strategy, e.Forum, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// strategy is a single way to get the newest posts of a forum
type strategy interface {
	Name() string
	Fetch(ctx context.Context, forum string, limit int) ([]domain.Post, error)
}

// Source fetches recent posts, falling back across strategies
type Source struct {
	strategies []strategy
}

// NewSource creates a source from reddit configuration with defaults already applied
func NewSource(cfg config.RedditConfig) *Source {
	anonClient := &http.Client{Timeout: cfg.Timeout, Transport: anonTransport(cfg.Proxy)}

	strategies := []strategy{
		&apiStrategy{
			clientID:     cfg.ClientID,
			clientSecret: cfg.ClientSecret,
			userAgent:    cfg.UserAgent,
			apiURL:       cfg.APIURL,
			tokenURL:     cfg.TokenURL,
			timeout:      cfg.Timeout,
		},
		&jsonStrategy{
			baseURL:   cfg.BaseURL,
			userAgent: cfg.UserAgent,
			client:    anonClient,
			delay:     randomDelay(cfg.MinDelay, cfg.MaxDelay),
		},
	}
	if cfg.RSSFallback {
		strategies = append(strategies, newRSSStrategy(cfg.BaseURL, cfg.UserAgent, anonClient))
	}

	return &Source{strategies: strategies}
}

// Fetch returns up to limit newest posts of the forum in listing order.
// It never fails: errors are logged and the next strategy is tried, an empty slice is returned when all fail.
func (s *Source) Fetch(ctx context.Context, forum string, limit int) []domain.Post {
	for _, st := range s.strategies {
		posts, err := st.Fetch(ctx, forum, limit)
		if err == nil {
			lgr.Printf("[INFO] fetched %d posts from r/%s using %s source", len(posts), forum, st.Name())
			return posts
		}

		if errors.Is(err, ErrNotConfigured) {
			lgr.Printf("[INFO] %s source not configured for r/%s, skipping", st.Name(), forum)
			continue
		}

		ferr := &FetchError{Strategy: st.Name(), Forum: forum, Err: err}
		lgr.Printf("[WARN] %v", ferr)
		if ctx.Err() != nil {
			break
		}
	}

	lgr.Printf("[WARN] no posts fetched from r/%s", forum)
	return []domain.Post{}
}

// anonTransport returns a transport for anonymous requests, routed through proxy if set
func anonTransport(proxy string) *http.Transport {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.Proxy = nil
	if proxy == "" {
		return tr
	}
	u, err := url.Parse(proxy)
	if err != nil || u.Host == "" {
		lgr.Printf("[WARN] ignoring invalid proxy url %q: %v", proxy, err)
		return tr
	}
	tr.Proxy = http.ProxyURL(u)
	return tr
}

// directTransport returns a transport which ignores proxy settings
func directTransport() *http.Transport {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.Proxy = nil
	return tr
}

// listingURL builds {origin}{path} with a limit query if positive
func listingURL(origin, path string, limit int, extra url.Values) string {
	q := url.Values{}
	for k, v := range extra {
		q[k] = v
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if len(q) == 0 {
		return origin + path
	}
	return origin + path + "?" + q.Encode()
}

// randomDelay returns a function producing a uniformly random duration in [lo, hi]
func randomDelay(lo, hi time.Duration) func() time.Duration {
	return func() time.Duration {
		if hi <= lo {
			return lo
		}
		return lo + rand.N(hi-lo+1) //nolint:gosec // timing jitter, not security sensitive
	}
}

// sleep waits for d or until ctx is done
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
