package domain

import (
	"fmt"
	"time"
)

// BaseURL is the origin forum permalinks are resolved against
const BaseURL = "https://www.reddit.com"

// Post represents a single submission fetched from a forum
type Post struct {
	Title       string
	Author      string // may be a placeholder like "[deleted]"
	Score       int
	URL         string // link target, not necessarily the forum permalink
	Created     time.Time
	NumComments int
	SelfText    string // empty for link-only posts
	Subreddit   string
	Permalink   string // forum-relative path, e.g. /r/golang/comments/abc/title/
}

// Result is a post accepted by the classifier with the model's justification
type Result struct {
	Post   Post
	Reason string
}

// FullURL returns the permalink resolved against the forum origin
func (p Post) FullURL() string {
	return BaseURL + p.Permalink
}

// Age returns the post age relative to now, bucketed into s/m/h/d with truncation
func (p Post) Age(now time.Time) string {
	return FormatAge(now.Sub(p.Created))
}

// FormatAge renders a duration as a single truncated unit: 30s, 1m, 2h, 2d
func FormatAge(age time.Duration) string {
	secs := int64(age / time.Second)
	if secs < 0 {
		secs = 0 // clock skew between us and the forum
	}
	switch {
	case secs < 60:
		return fmt.Sprintf("%ds", secs)
	case secs < 3600:
		return fmt.Sprintf("%dm", secs/60)
	case secs < 86400:
		return fmt.Sprintf("%dh", secs/3600)
	default:
		return fmt.Sprintf("%dd", secs/86400)
	}
}
