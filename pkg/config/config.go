package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:generate go run ../../cmd/schema/main.go schema.json

// default values applied by WithDefaults
const (
	DefaultLimit         = 10
	DefaultSubjectPrefix = "Reddit Idea Filter Report"
	DefaultLLMEndpoint   = "https://openrouter.ai/api/v1"
	DefaultLLMModel      = "google/gemini-2.0-flash-001"
	DefaultLLMTimeout    = 30 * time.Second
	DefaultUserAgent     = "go:idea-filter:v1.0"
	DefaultRedditBaseURL = "https://www.reddit.com"
	DefaultRedditAPIURL  = "https://oauth.reddit.com"
	DefaultTokenURL      = "https://www.reddit.com/api/v1/access_token"
	DefaultFetchTimeout  = 10 * time.Second
	DefaultMinDelay      = 1 * time.Second
	DefaultMaxDelay      = 3 * time.Second
	DefaultSMTPHost      = "smtp.gmail.com"
	DefaultSMTPPort      = 587
	DefaultSMTPTimeout   = 30 * time.Second

	DefaultCriterion = "Does the post include a user posing a question, asking for recommendation or about the existence " +
		"of some software that could lay the groundwork for a startup. For example, a user might ask others if they've " +
		"used AI for generating leads, or if they've had any luck using AI for product photography. The user should NOT " +
		"be promoting their own existing company. Exclude posts that simply ask a question about an existing technology."
)

// DefaultForums is the forum list used when none is configured
var DefaultForums = []string{"RealEstateTechnology", "PropTech", "HealthTech", "EdTech"}

// Config holds the application configuration. It is built once at startup and passed by value.
type Config struct {
	Digest DigestConfig `yaml:"digest" json:"digest" jsonschema:"description=Forums to scan and the filter criterion"`
	LLM    LLMConfig    `yaml:"llm" json:"llm" jsonschema:"description=LLM configuration for post classification"`
	Reddit RedditConfig `yaml:"reddit" json:"reddit" jsonschema:"description=Forum source configuration"`
	SMTP   SMTPConfig   `yaml:"smtp" json:"smtp" jsonschema:"description=Digest delivery configuration"`
}

// DigestConfig holds what to scan and how to judge it
type DigestConfig struct {
	Forums        []string `yaml:"forums" json:"forums" jsonschema:"description=Subreddit names to scan"`
	Criterion     string   `yaml:"criterion" json:"criterion" jsonschema:"description=Natural-language filter criterion"`
	Limit         int      `yaml:"limit" json:"limit" jsonschema:"default=10,minimum=0,maximum=100,description=Number of newest posts per forum"`
	SubjectPrefix string   `yaml:"subject_prefix" json:"subject_prefix" jsonschema:"default=Reddit Idea Filter Report,description=Email subject prefix"`
	ReportFile    string   `yaml:"report_file" json:"report_file" jsonschema:"description=Optional path to write the rendered digest"`
}

// LLMConfig holds LLM configuration for post classification
type LLMConfig struct {
	Endpoint    string        `yaml:"endpoint" json:"endpoint" jsonschema:"default=https://openrouter.ai/api/v1,description=OpenAI-compatible API endpoint"`
	APIKey      string        `yaml:"api_key" json:"api_key" jsonschema:"description=API key (can use environment variable)"`
	Model       string        `yaml:"model" json:"model" jsonschema:"default=google/gemini-2.0-flash-001,description=Model name"`
	Temperature float64       `yaml:"temperature" json:"temperature" jsonschema:"minimum=0,maximum=2,description=Temperature for response generation (provider default if unset)"`
	MaxTokens   int           `yaml:"max_tokens" json:"max_tokens" jsonschema:"description=Maximum tokens in response (provider default if unset)"`
	Timeout     time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=Request timeout"`
}

// RedditConfig holds forum source settings
type RedditConfig struct {
	ClientID     string        `yaml:"client_id" json:"client_id" jsonschema:"description=Reddit app client id"`
	ClientSecret string        `yaml:"client_secret" json:"client_secret" jsonschema:"description=Reddit app client secret"`
	UserAgent    string        `yaml:"user_agent" json:"user_agent" jsonschema:"default=go:idea-filter:v1.0,description=User agent for all reddit requests"`
	Proxy        string        `yaml:"proxy" json:"proxy" jsonschema:"description=Proxy URL for anonymous fetches"`
	BaseURL      string        `yaml:"base_url" json:"base_url" jsonschema:"default=https://www.reddit.com,description=Public listing origin"`
	APIURL       string        `yaml:"api_url" json:"api_url" jsonschema:"default=https://oauth.reddit.com,description=Authenticated API origin"`
	TokenURL     string        `yaml:"token_url" json:"token_url" jsonschema:"default=https://www.reddit.com/api/v1/access_token,description=OAuth token endpoint"`
	Timeout      time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=10s,description=Per-request timeout"`
	MinDelay     time.Duration `yaml:"min_delay" json:"min_delay" jsonschema:"default=1s,description=Minimum random delay before anonymous fetch"`
	MaxDelay     time.Duration `yaml:"max_delay" json:"max_delay" jsonschema:"default=3s,description=Maximum random delay before anonymous fetch"`
	RSSFallback  bool          `yaml:"rss_fallback" json:"rss_fallback" jsonschema:"default=false,description=Try the public rss feed when json listing fails"`
}

// SMTPConfig holds mail submission settings
type SMTPConfig struct {
	Host      string        `yaml:"host" json:"host" jsonschema:"default=smtp.gmail.com,description=SMTP server"`
	Port      int           `yaml:"port" json:"port" jsonschema:"default=587,description=SMTP port (STARTTLS)"`
	Username  string        `yaml:"username" json:"username" jsonschema:"description=SMTP username"`
	Password  string        `yaml:"password" json:"password" jsonschema:"description=SMTP password"`
	From      string        `yaml:"from" json:"from" jsonschema:"description=Sender address (defaults to username)"`
	Recipient string        `yaml:"recipient" json:"recipient" jsonschema:"description=Digest recipient, delivery disabled if empty"`
	Timeout   time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=SMTP connection timeout"`
}

// Load reads configuration from an optional YAML file. Empty path means no file.
func Load(path string) (*Config, error) {
	if path == "" {
		return &Config{}, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// expand environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// validate checks file-provided values for correctness
func validate(cfg *Config) error {
	for i, f := range cfg.Digest.Forums {
		if strings.TrimSpace(f) == "" {
			return fmt.Errorf("digest.forums[%d] is empty", i)
		}
	}
	if cfg.Digest.Limit < 0 || cfg.Digest.Limit > 100 {
		return fmt.Errorf("digest.limit must be between 0 and 100")
	}
	if cfg.LLM.Temperature < 0 || cfg.LLM.Temperature > 2 {
		return fmt.Errorf("llm.temperature must be between 0 and 2")
	}
	if cfg.LLM.MaxTokens < 0 {
		return fmt.Errorf("llm.max_tokens must be non-negative")
	}
	if cfg.Reddit.MinDelay < 0 || cfg.Reddit.MaxDelay < 0 {
		return fmt.Errorf("reddit delays must be non-negative")
	}
	if cfg.Reddit.MaxDelay > 0 && cfg.Reddit.MinDelay > cfg.Reddit.MaxDelay {
		return fmt.Errorf("reddit.min_delay must not exceed reddit.max_delay")
	}
	if cfg.SMTP.Port < 0 || cfg.SMTP.Port > 65535 {
		return fmt.Errorf("smtp.port must be between 0 and 65535")
	}
	return nil
}

// WithDefaults returns a copy of the config with unset values replaced by defaults
func (c Config) WithDefaults() Config {
	res := c

	if len(res.Digest.Forums) == 0 {
		res.Digest.Forums = append([]string(nil), DefaultForums...)
	}
	if res.Digest.Criterion == "" {
		res.Digest.Criterion = DefaultCriterion
	}
	if res.Digest.Limit == 0 {
		res.Digest.Limit = DefaultLimit
	}
	if res.Digest.SubjectPrefix == "" {
		res.Digest.SubjectPrefix = DefaultSubjectPrefix
	}

	if res.LLM.Endpoint == "" {
		res.LLM.Endpoint = DefaultLLMEndpoint
	}
	if res.LLM.Model == "" {
		res.LLM.Model = DefaultLLMModel
	}
	if res.LLM.Timeout == 0 {
		res.LLM.Timeout = DefaultLLMTimeout
	}

	if res.Reddit.UserAgent == "" {
		res.Reddit.UserAgent = DefaultUserAgent
	}
	if res.Reddit.BaseURL == "" {
		res.Reddit.BaseURL = DefaultRedditBaseURL
	}
	if res.Reddit.APIURL == "" {
		res.Reddit.APIURL = DefaultRedditAPIURL
	}
	if res.Reddit.TokenURL == "" {
		res.Reddit.TokenURL = DefaultTokenURL
	}
	if res.Reddit.Timeout == 0 {
		res.Reddit.Timeout = DefaultFetchTimeout
	}
	if res.Reddit.MinDelay == 0 && res.Reddit.MaxDelay == 0 {
		res.Reddit.MinDelay, res.Reddit.MaxDelay = DefaultMinDelay, DefaultMaxDelay
	}

	if res.SMTP.Host == "" {
		res.SMTP.Host = DefaultSMTPHost
	}
	if res.SMTP.Port == 0 {
		res.SMTP.Port = DefaultSMTPPort
	}
	if res.SMTP.From == "" {
		res.SMTP.From = res.SMTP.Username
	}
	if res.SMTP.Timeout == 0 {
		res.SMTP.Timeout = DefaultSMTPTimeout
	}

	return res
}

// Secrets returns all non-empty credentials, used to mask them in logs
func (c Config) Secrets() []string {
	var res []string
	for _, s := range []string{c.LLM.APIKey, c.Reddit.ClientSecret, c.SMTP.Password} {
		if s != "" {
			res = append(res, s)
		}
	}
	return res
}
