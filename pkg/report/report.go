// Package report renders accepted posts into a self-contained HTML digest
package report

import (
	_ "embed"
	"fmt"
	"html"
	"html/template"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/umputun/ideafilter/pkg/domain"
)

//go:embed report.html
var reportTemplate string

const timestampLayout = "2006-01-02 15:04:05"

// Renderer builds digest documents
type Renderer struct {
	tmpl   *template.Template
	policy *bluemonday.Policy
}

// item is a single post block of the digest
type item struct {
	Subreddit string
	Title     string
	URL       string
	Age       string
	Reason    string
}

type page struct {
	GeneratedAt string
	Count       int
	Items       []item
}

// NewRenderer parses the embedded digest template
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("report.html").Parse(reportTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse report template: %w", err)
	}
	return &Renderer{tmpl: tmpl, policy: bluemonday.StrictPolicy()}, nil
}

// Render produces the digest for results, in the given order. Ages are computed relative to now.
func (r *Renderer) Render(results []domain.Result, now time.Time) (string, error) {
	data := page{
		GeneratedAt: now.Format(timestampLayout),
		Count:       len(results),
		Items:       make([]item, 0, len(results)),
	}

	for _, res := range results {
		data.Items = append(data.Items, item{
			Subreddit: res.Post.Subreddit,
			Title:     res.Post.Title,
			URL:       res.Post.FullURL(),
			Age:       res.Post.Age(now),
			Reason:    r.plain(res.Reason),
		})
	}

	var sb strings.Builder
	if err := r.tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("execute report template: %w", err)
	}
	return sb.String(), nil
}

// plain drops any markup the model put into a reason, the template escapes the rest
func (r *Renderer) plain(s string) string {
	return strings.TrimSpace(html.UnescapeString(r.policy.Sanitize(s)))
}
