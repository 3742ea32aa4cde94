package digest

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/ideafilter/pkg/digest/mocks"
	"github.com/umputun/ideafilter/pkg/domain"
)

var fixedNow = time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

func testParams() Params {
	return Params{
		Forums:        []string{"PropTech", "EdTech"},
		Criterion:     "is it an idea?",
		Limit:         10,
		SubjectPrefix: "Reddit Idea Filter Report",
		Recipient:     "to@example.com",
	}
}

func postsFor(forum string, n int) []domain.Post {
	res := make([]domain.Post, 0, n)
	for i := range n {
		res = append(res, domain.Post{Title: forum + " post", Subreddit: forum, Permalink: "/r/" + forum + "/" + string(rune('a'+i))})
	}
	return res
}

type fixture struct {
	source     *mocks.SourceMock
	classifier *mocks.ClassifierMock
	renderer   *mocks.RendererMock
	sender     *mocks.SenderMock
}

func newFixture() *fixture {
	return &fixture{
		source: &mocks.SourceMock{FetchFunc: func(_ context.Context, forum string, _ int) []domain.Post {
			return postsFor(forum, 2)
		}},
		classifier: &mocks.ClassifierMock{ClassifyFunc: func(_ context.Context, posts []domain.Post, _ string) []domain.Result {
			return []domain.Result{{Post: posts[0], Reason: "first"}, {Post: posts[3], Reason: "last"}}
		}},
		renderer: &mocks.RendererMock{RenderFunc: func(results []domain.Result, _ time.Time) (string, error) {
			return "<html>digest</html>", nil
		}},
		sender: &mocks.SenderMock{SendFunc: func(string, string, string) error { return nil }},
	}
}

func (f *fixture) runner(p Params) *Runner {
	r := NewRunner(f.source, f.classifier, f.renderer, f.sender, p)
	r.now = func() time.Time { return fixedNow }
	return r
}

func TestRunner_Run(t *testing.T) {
	f := newFixture()
	summary := f.runner(testParams()).Run(context.Background())

	assert.Equal(t, Summary{Forums: 2, Collected: 4, Accepted: 2, Delivered: true}, summary)

	fetches := f.source.FetchCalls()
	require.Len(t, fetches, 2)
	assert.Equal(t, "PropTech", fetches[0].Forum)
	assert.Equal(t, "EdTech", fetches[1].Forum)
	assert.Equal(t, 10, fetches[0].Limit)

	classifies := f.classifier.ClassifyCalls()
	require.Len(t, classifies, 1)
	assert.Equal(t, append(postsFor("PropTech", 2), postsFor("EdTech", 2)...), classifies[0].Posts)
	assert.Equal(t, "is it an idea?", classifies[0].Criterion)

	renders := f.renderer.RenderCalls()
	require.Len(t, renders, 1)
	assert.Len(t, renders[0].Results, 2)
	assert.Equal(t, fixedNow, renders[0].Now)

	sends := f.sender.SendCalls()
	require.Len(t, sends, 1)
	assert.Equal(t, "to@example.com", sends[0].Recipient)
	assert.Equal(t, "Reddit Idea Filter Report - 2025-03-14", sends[0].Subject)
	assert.Equal(t, "<html>digest</html>", sends[0].Document)
}

func TestRunner_Run_NoPosts(t *testing.T) {
	f := newFixture()
	f.source.FetchFunc = func(context.Context, string, int) []domain.Post { return []domain.Post{} }

	summary := f.runner(testParams()).Run(context.Background())
	assert.Equal(t, Summary{Forums: 2}, summary)
	assert.Len(t, f.source.FetchCalls(), 2, "failing forum does not stop the others")
	assert.Empty(t, f.classifier.ClassifyCalls())
	assert.Empty(t, f.renderer.RenderCalls())
	assert.Empty(t, f.sender.SendCalls())
}

func TestRunner_Run_OneForumEmpty(t *testing.T) {
	f := newFixture()
	f.source.FetchFunc = func(_ context.Context, forum string, _ int) []domain.Post {
		if forum == "PropTech" {
			return []domain.Post{}
		}
		return postsFor(forum, 4)
	}

	summary := f.runner(testParams()).Run(context.Background())
	assert.Equal(t, 4, summary.Collected)
	require.Len(t, f.classifier.ClassifyCalls(), 1)
	assert.Equal(t, postsFor("EdTech", 4), f.classifier.ClassifyCalls()[0].Posts)
}

func TestRunner_Run_NothingAccepted(t *testing.T) {
	f := newFixture()
	f.classifier.ClassifyFunc = func(context.Context, []domain.Post, string) []domain.Result { return []domain.Result{} }

	summary := f.runner(testParams()).Run(context.Background())
	assert.Equal(t, Summary{Forums: 2, Collected: 4}, summary)
	assert.Empty(t, f.renderer.RenderCalls())
	assert.Empty(t, f.sender.SendCalls())
}

func TestRunner_Run_NoRecipient(t *testing.T) {
	f := newFixture()
	p := testParams()
	p.Recipient = ""

	var buf bytes.Buffer
	lgr.Setup(lgr.Out(&buf), lgr.Err(&buf))
	t.Cleanup(func() { lgr.Setup() })

	summary := f.runner(p).Run(context.Background())
	assert.Equal(t, 2, summary.Accepted)
	assert.False(t, summary.Delivered)
	assert.Len(t, f.renderer.RenderCalls(), 1)
	assert.Empty(t, f.sender.SendCalls())

	// missing recipient is reported once by config verification, the runner only notes the skipped send
	assert.Contains(t, buf.String(), "no recipient email configured, the report was not sent")
	assert.NotContains(t, buf.String(), "WARN")
}

func TestRunner_Run_SendFailure(t *testing.T) {
	f := newFixture()
	f.sender.SendFunc = func(string, string, string) error { return errors.New("smtp down") }

	summary := f.runner(testParams()).Run(context.Background())
	assert.Equal(t, 2, summary.Accepted)
	assert.False(t, summary.Delivered)
	assert.Len(t, f.sender.SendCalls(), 1)
}

func TestRunner_Run_RenderFailure(t *testing.T) {
	f := newFixture()
	f.renderer.RenderFunc = func([]domain.Result, time.Time) (string, error) { return "", errors.New("bad template") }

	summary := f.runner(testParams()).Run(context.Background())
	assert.Equal(t, 2, summary.Accepted)
	assert.False(t, summary.Delivered)
	assert.Empty(t, f.sender.SendCalls())
}

func TestRunner_Run_ReportFile(t *testing.T) {
	f := newFixture()
	p := testParams()
	p.Recipient = ""
	p.ReportFile = filepath.Join(t.TempDir(), "report.html")

	summary := f.runner(p).Run(context.Background())
	assert.Equal(t, p.ReportFile, summary.ReportFile)

	data, err := os.ReadFile(p.ReportFile)
	require.NoError(t, err)
	assert.Equal(t, "<html>digest</html>", string(data))
}

func TestRunner_Run_ReportFileFailure(t *testing.T) {
	f := newFixture()
	p := testParams()
	p.ReportFile = filepath.Join(t.TempDir(), "missing-dir", "report.html")

	summary := f.runner(p).Run(context.Background())
	assert.Empty(t, summary.ReportFile)
	assert.True(t, summary.Delivered, "report file failure does not block delivery")
}

func TestRunner_Run_Canceled(t *testing.T) {
	f := newFixture()
	ctx, cancel := context.WithCancel(context.Background())
	f.source.FetchFunc = func(_ context.Context, forum string, _ int) []domain.Post {
		cancel()
		return postsFor(forum, 1)
	}
	f.classifier.ClassifyFunc = func(_ context.Context, posts []domain.Post, _ string) []domain.Result {
		return []domain.Result{}
	}

	summary := f.runner(testParams()).Run(ctx)
	assert.Len(t, f.source.FetchCalls(), 1, "second forum skipped after cancel")
	assert.Equal(t, 1, summary.Collected)
}
