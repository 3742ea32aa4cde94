// Package digest runs the idea filter pipeline once: fetch posts of every forum, classify them,
// render accepted ones into a digest, then write it to a file and deliver it by email when configured.
package digest

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/ideafilter/pkg/domain"
)

//go:generate moq -out mocks/source.go -pkg mocks -skip-ensure -fmt goimports . Source
//go:generate moq -out mocks/classifier.go -pkg mocks -skip-ensure -fmt goimports . Classifier
//go:generate moq -out mocks/renderer.go -pkg mocks -skip-ensure -fmt goimports . Renderer
//go:generate moq -out mocks/sender.go -pkg mocks -skip-ensure -fmt goimports . Sender

// Source fetches recent posts of a forum, never failing
type Source interface {
	Fetch(ctx context.Context, forum string, limit int) []domain.Post
}

// Classifier keeps posts matching the criterion
type Classifier interface {
	Classify(ctx context.Context, posts []domain.Post, criterion string) []domain.Result
}

// Renderer builds the digest document
type Renderer interface {
	Render(results []domain.Result, now time.Time) (string, error)
}

// Sender delivers the digest document
type Sender interface {
	Send(recipient, subject, document string) error
}

// Params defines what a run scans and where the digest goes
type Params struct {
	Forums        []string
	Criterion     string
	Limit         int
	SubjectPrefix string
	Recipient     string // delivery disabled if empty
	ReportFile    string // digest not written to disk if empty
}

// Summary describes the outcome of a run
type Summary struct {
	Forums     int
	Collected  int
	Accepted   int
	Delivered  bool
	ReportFile string // set if the digest was written
}

// Runner wires pipeline stages together
type Runner struct {
	source     Source
	classifier Classifier
	renderer   Renderer
	sender     Sender
	params     Params
	now        func() time.Time
}

// NewRunner creates a runner
func NewRunner(source Source, classifier Classifier, renderer Renderer, sender Sender, params Params) *Runner {
	return &Runner{
		source:     source,
		classifier: classifier,
		renderer:   renderer,
		sender:     sender,
		params:     params,
		now:        time.Now,
	}
}

// Run executes the pipeline once. Stage failures are logged and never abort the run.
func (r *Runner) Run(ctx context.Context) Summary {
	summary := Summary{Forums: len(r.params.Forums)}

	var posts []domain.Post
	for _, forum := range r.params.Forums {
		if ctx.Err() != nil {
			lgr.Printf("[WARN] fetching interrupted: %v", ctx.Err())
			break
		}
		lgr.Printf("[INFO] fetching posts from r/%s", forum)
		forumPosts := r.source.Fetch(ctx, forum, r.params.Limit)
		lgr.Printf("[INFO] found %d posts in r/%s", len(forumPosts), forum)
		posts = append(posts, forumPosts...)
	}
	summary.Collected = len(posts)
	lgr.Printf("[INFO] total posts collected: %d", summary.Collected)

	if len(posts) == 0 {
		lgr.Printf("[WARN] no posts were collected, check network or reddit api access")
		return summary
	}

	lgr.Printf("[INFO] filtering %d posts", len(posts))
	results := r.classifier.Classify(ctx, posts, r.params.Criterion)
	summary.Accepted = len(results)
	lgr.Printf("[INFO] posts that passed the filter: %d", summary.Accepted)

	if len(results) == 0 {
		lgr.Printf("[INFO] no posts matched the filter criteria")
		return summary
	}

	now := r.now()
	document, err := r.renderer.Render(results, now)
	if err != nil {
		lgr.Printf("[ERROR] failed to render report: %v", err)
		return summary
	}

	if r.params.ReportFile != "" {
		if err := writeReport(r.params.ReportFile, document); err != nil {
			lgr.Printf("[WARN] %v", err)
		} else {
			summary.ReportFile = r.params.ReportFile
			lgr.Printf("[INFO] report written to %s", r.params.ReportFile)
		}
	}

	if r.params.Recipient == "" {
		lgr.Printf("[INFO] no recipient email configured, the report was not sent")
		return summary
	}

	if err := r.sender.Send(r.params.Recipient, r.subject(now), document); err != nil {
		lgr.Printf("[ERROR] failed to send email report: %v", err)
		return summary
	}
	summary.Delivered = true
	lgr.Printf("[INFO] email report sent to %s", r.params.Recipient)
	return summary
}

// subject returns "<prefix> - YYYY-MM-DD"
func (r *Runner) subject(now time.Time) string {
	return fmt.Sprintf("%s - %s", r.params.SubjectPrefix, now.Format("2006-01-02"))
}

func writeReport(path, document string) error {
	if err := os.WriteFile(path, []byte(document), 0o600); err != nil {
		return fmt.Errorf("write report file: %w", err)
	}
	return nil
}
