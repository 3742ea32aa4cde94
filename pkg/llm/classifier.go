package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-pkgz/lgr"
	"github.com/sashabaranov/go-openai"

	"github.com/umputun/ideafilter/pkg/config"
	"github.com/umputun/ideafilter/pkg/domain"
)

// Classifier uses LLM to decide whether posts match a criterion
type Classifier struct {
	client *openai.Client
	config config.LLMConfig
}

// Decision is a parsed model answer
type Decision struct {
	Match  bool
	Reason string
}

// NewClassifier creates a new LLM classifier
func NewClassifier(cfg config.LLMConfig) *Classifier {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.Endpoint != "" {
		clientConfig.BaseURL = cfg.Endpoint
	}
	if cfg.Timeout > 0 {
		clientConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Classifier{
		client: openai.NewClientWithConfig(clientConfig),
		config: cfg,
	}
}

// Classify asks the model about every post, one call per post, and returns the accepted ones in input order.
// A failed call or an unexpected answer rejects that post only.
func (c *Classifier) Classify(ctx context.Context, posts []domain.Post, criterion string) []domain.Result {
	results := []domain.Result{}
	if len(posts) == 0 {
		return results
	}

	lgr.Printf("[DEBUG] using model %s at %s with key %s", c.config.Model, c.config.Endpoint, maskKey(c.config.APIKey))

	for i, post := range posts {
		if ctx.Err() != nil {
			lgr.Printf("[WARN] classification interrupted after %d of %d posts: %v", i, len(posts), ctx.Err())
			break
		}

		answer, err := c.Complete(ctx, BuildPrompt(post, criterion))
		if err != nil {
			lgr.Printf("[WARN] failed to classify post %q: %v", post.Title, err)
			continue
		}

		decision := ParseDecision(answer)
		if !decision.Match {
			lgr.Printf("[INFO] rejected post: %s", post.Title)
			continue
		}

		lgr.Printf("[INFO] accepted post: %s", post.Title)
		results = append(results, domain.Result{Post: post, Reason: decision.Reason})
	}

	return results
}

// Complete sends a single user prompt and returns the raw model answer
func (c *Classifier) Complete(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.config.Model,
		Temperature: float32(c.config.Temperature),
		MaxTokens:   c.config.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("llm request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("no response from llm")
	}

	return resp.Choices[0].Message.Content, nil
}

// BuildPrompt creates the prompt for a single post
func BuildPrompt(post domain.Post, criterion string) string {
	content := post.SelfText
	if strings.TrimSpace(content) == "" {
		content = "[No content]"
	}

	var sb strings.Builder
	sb.WriteString(criterion)
	sb.WriteString("\n\n")

	sb.WriteString("Post details:\n")
	sb.WriteString(fmt.Sprintf("Title: %s\n", post.Title))
	sb.WriteString(fmt.Sprintf("Subreddit: r/%s\n", post.Subreddit))
	sb.WriteString(fmt.Sprintf("Content: %s\n\n", content))

	sb.WriteString("First, answer with just YES or NO.\n")
	sb.WriteString("Then, if YES, provide a one-sentence explanation of why this post matches the criteria.\n")
	sb.WriteString("Format your answer exactly like this example:\n")
	sb.WriteString("YES\n")
	sb.WriteString("This post describes a specific pain point that could be addressed with a SaaS solution.\n\n")
	sb.WriteString("Or if it doesn't match:\n")
	sb.WriteString("NO")
	return sb.String()
}

// ParseDecision parses the two-line answer format. The first line, case-insensitive, is the decision;
// only YES followed by a second line is a match, the rest of the answer is the reason.
func ParseDecision(answer string) Decision {
	lines := strings.SplitN(strings.TrimSpace(answer), "\n", 2)
	if strings.ToUpper(strings.TrimSpace(lines[0])) != "YES" || len(lines) < 2 {
		return Decision{}
	}
	return Decision{Match: true, Reason: strings.TrimSpace(lines[1])}
}

// maskKey keeps a short prefix and suffix of the key for diagnostics
func maskKey(key string) string {
	if len(key) <= 9 {
		return "***"
	}
	return key[:5] + "..." + key[len(key)-4:]
}
