package reddit

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"

	"github.com/umputun/ideafilter/pkg/domain"
)

// rssStrategy parses the public atom feed of the forum, the last resort when json listing is blocked
type rssStrategy struct {
	baseURL   string
	userAgent string
	client    *http.Client
	policy    *bluemonday.Policy
}

func newRSSStrategy(baseURL, userAgent string, client *http.Client) *rssStrategy {
	return &rssStrategy{baseURL: baseURL, userAgent: userAgent, client: client, policy: bluemonday.StrictPolicy()}
}

// Name returns strategy name
func (r *rssStrategy) Name() string { return "rss" }

// Fetch retrieves and parses the feed. Feeds carry no score or comment count, those stay zero.
func (r *rssStrategy) Fetch(ctx context.Context, forum string, limit int) ([]domain.Post, error) {
	parser := gofeed.NewParser()
	parser.Client = r.client
	parser.UserAgent = r.userAgent

	feedURL := listingURL(r.baseURL, "/r/"+url.PathEscape(forum)+"/new/.rss", limit, nil)
	feed, err := parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", feedURL, err)
	}

	posts := make([]domain.Post, 0, len(feed.Items))
	for _, item := range feed.Items {
		if limit > 0 && len(posts) >= limit {
			break
		}
		p := domain.Post{
			Title:     item.Title,
			URL:       item.Link,
			SelfText:  r.plainText(item.Content),
			Subreddit: forum,
			Permalink: permalink(item.Link),
		}

		if item.Author != nil {
			p.Author = strings.TrimPrefix(item.Author.Name, "/u/")
		}

		// parse publish time
		switch {
		case item.PublishedParsed != nil:
			p.Created = item.PublishedParsed.UTC()
		case item.UpdatedParsed != nil:
			p.Created = item.UpdatedParsed.UTC()
		default:
			p.Created = time.Now().UTC()
		}

		posts = append(posts, p)
	}
	return posts, nil
}

// plainText strips markup from feed content and drops the trailing "submitted by ... [link] [comments]" footer
func (r *rssStrategy) plainText(content string) string {
	text := html.UnescapeString(r.policy.Sanitize(content))
	if i := strings.LastIndex(text, "submitted by"); i >= 0 {
		text = text[:i]
	}
	return strings.Join(strings.Fields(text), " ")
}

// permalink extracts the forum-relative path from an absolute link
func permalink(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return link
	}
	return u.EscapedPath()
}
