package reddit

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/ideafilter/pkg/domain"
)

// jsonStrategy fetches the public json listing without authentication
type jsonStrategy struct {
	baseURL   string
	userAgent string
	client    *http.Client
	delay     func() time.Duration
}

// Name returns strategy name
func (j *jsonStrategy) Name() string { return "json" }

// Fetch waits a random delay to decorrelate requests across forums, then requests the listing
func (j *jsonStrategy) Fetch(ctx context.Context, forum string, limit int) ([]domain.Post, error) {
	d := j.delay()
	lgr.Printf("[DEBUG] waiting %v before anonymous fetch of r/%s", d, forum)
	if err := sleep(ctx, d); err != nil {
		return nil, fmt.Errorf("wait before request: %w", err)
	}

	// raw_json keeps & < > unescaped in titles and bodies, same as the api strategy
	reqURL := listingURL(j.baseURL, "/r/"+url.PathEscape(forum)+"/new.json", limit, url.Values{"raw_json": {"1"}})
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", j.userAgent)
	addBrowserHeaders(req)

	resp, err := j.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch URL: %w", err)
	}
	return readListing(resp)
}
