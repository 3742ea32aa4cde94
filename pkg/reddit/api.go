package reddit

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/umputun/ideafilter/pkg/domain"
)

// apiStrategy fetches posts from the authenticated api using an app-only oauth token
type apiStrategy struct {
	clientID     string
	clientSecret string
	userAgent    string
	apiURL       string
	tokenURL     string
	timeout      time.Duration
}

// Name returns strategy name
func (a *apiStrategy) Name() string { return "api" }

// Fetch requests the newest posts of the forum via oauth api
func (a *apiStrategy) Fetch(ctx context.Context, forum string, limit int) ([]domain.Post, error) {
	if a.clientID == "" || a.clientSecret == "" {
		return nil, ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	// token and api requests both go through this client, reddit rejects requests without user agent
	base := &http.Client{Timeout: a.timeout, Transport: &userAgentTransport{userAgent: a.userAgent, base: directTransport()}}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, base)

	cc := clientcredentials.Config{
		ClientID:     a.clientID,
		ClientSecret: a.clientSecret,
		TokenURL:     a.tokenURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	client := cc.Client(ctx)

	reqURL := listingURL(a.apiURL, "/r/"+url.PathEscape(forum)+"/new", limit, url.Values{"raw_json": {"1"}})
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch URL: %w", err)
	}
	return readListing(resp)
}
