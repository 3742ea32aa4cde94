package reddit

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/umputun/ideafilter/pkg/domain"
)

// maxBodySize limits how much of a listing response is read
const maxBodySize = 10 << 20

// listing is the JSON shape returned by both /r/{forum}/new.json and the oauth api
type listing struct {
	Kind string `json:"kind"`
	Data struct {
		Children []struct {
			Kind string      `json:"kind"`
			Data listingPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type listingPost struct {
	Title       string  `json:"title"`
	Author      string  `json:"author"`
	Score       int     `json:"score"`
	URL         string  `json:"url"`
	CreatedUTC  float64 `json:"created_utc"`
	NumComments int     `json:"num_comments"`
	Selftext    string  `json:"selftext"` // absent for some link posts
	Subreddit   string  `json:"subreddit"`
	Permalink   string  `json:"permalink"`
}

// decodeListing reads a listing response and maps children to posts, preserving order
func decodeListing(r io.Reader) ([]domain.Post, error) {
	var l listing
	if err := json.NewDecoder(io.LimitReader(r, maxBodySize)).Decode(&l); err != nil {
		return nil, fmt.Errorf("decode listing: %w", err)
	}
	if l.Kind != "Listing" {
		return nil, fmt.Errorf("unexpected listing kind %q", l.Kind)
	}

	posts := make([]domain.Post, 0, len(l.Data.Children))
	for _, child := range l.Data.Children {
		p := child.Data
		posts = append(posts, domain.Post{
			Title:       p.Title,
			Author:      p.Author,
			Score:       p.Score,
			URL:         p.URL,
			Created:     unixTime(p.CreatedUTC),
			NumComments: p.NumComments,
			SelfText:    p.Selftext,
			Subreddit:   p.Subreddit,
			Permalink:   p.Permalink,
		})
	}
	return posts, nil
}

// readListing checks the response status and decodes the body
func readListing(resp *http.Response) ([]domain.Post, error) {
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return decodeListing(resp.Body)
}

// unixTime converts fractional epoch seconds to time
func unixTime(secs float64) time.Time {
	whole, frac := math.Modf(secs)
	return time.Unix(int64(whole), int64(frac*float64(time.Second))).UTC()
}
