package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		configContent := `
digest:
  forums: [golang, rust]
  criterion: "is it about generics?"
  limit: 25
llm:
  endpoint: http://localhost:1234/v1
  model: test-model
  temperature: 0.2
  timeout: 45s
reddit:
  timeout: 5s
  min_delay: 10ms
  max_delay: 20ms
  rss_fallback: true
smtp:
  host: mail.example.com
  port: 2525
`
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "test-config.yml")
		err := os.WriteFile(configPath, []byte(configContent), 0o644)
		require.NoError(t, err)

		cfg, err := Load(configPath)
		require.NoError(t, err)
		require.NotNil(t, cfg)

		assert.Equal(t, []string{"golang", "rust"}, cfg.Digest.Forums)
		assert.Equal(t, "is it about generics?", cfg.Digest.Criterion)
		assert.Equal(t, 25, cfg.Digest.Limit)
		assert.Equal(t, "http://localhost:1234/v1", cfg.LLM.Endpoint)
		assert.Equal(t, "test-model", cfg.LLM.Model)
		assert.InEpsilon(t, 0.2, cfg.LLM.Temperature, 0.001)
		assert.Equal(t, 45*time.Second, cfg.LLM.Timeout)
		assert.Equal(t, 5*time.Second, cfg.Reddit.Timeout)
		assert.Equal(t, 10*time.Millisecond, cfg.Reddit.MinDelay)
		assert.Equal(t, 20*time.Millisecond, cfg.Reddit.MaxDelay)
		assert.True(t, cfg.Reddit.RSSFallback)
		assert.Equal(t, "mail.example.com", cfg.SMTP.Host)
		assert.Equal(t, 2525, cfg.SMTP.Port)
	})

	t.Run("env expansion", func(t *testing.T) {
		t.Setenv("TEST_IDEA_FILTER_MODEL", "expanded-model")
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "test-config.yml")
		err := os.WriteFile(configPath, []byte("llm:\n  model: ${TEST_IDEA_FILTER_MODEL}\n"), 0o644)
		require.NoError(t, err)

		cfg, err := Load(configPath)
		require.NoError(t, err)
		assert.Equal(t, "expanded-model", cfg.LLM.Model)
	})

	t.Run("empty path", func(t *testing.T) {
		cfg, err := Load("")
		require.NoError(t, err)
		require.NotNil(t, cfg)
		assert.Equal(t, Config{}, *cfg)
	})

	t.Run("file not found", func(t *testing.T) {
		cfg, err := Load("/non/existent/file.yml")
		require.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "read config file")
	})

	t.Run("invalid yaml", func(t *testing.T) {
		configContent := `
invalid yaml content
  with bad indentation
    and no structure
`
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "invalid.yml")
		err := os.WriteFile(configPath, []byte(configContent), 0o644)
		require.NoError(t, err)

		cfg, err := Load(configPath)
		require.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "parse config")
	})

	t.Run("invalid values", func(t *testing.T) {
		tests := []struct {
			name    string
			content string
			errMsg  string
		}{
			{"limit too high", "digest:\n  limit: 500\n", "digest.limit"},
			{"empty forum", "digest:\n  forums: [golang, \"\"]\n", "digest.forums[1]"},
			{"temperature", "llm:\n  temperature: 3\n", "llm.temperature"},
			{"delays", "reddit:\n  min_delay: 5s\n  max_delay: 1s\n", "reddit.min_delay"},
			{"port", "smtp:\n  port: 70000\n", "smtp.port"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				configPath := filepath.Join(t.TempDir(), "bad.yml")
				require.NoError(t, os.WriteFile(configPath, []byte(tt.content), 0o644))
				cfg, err := Load(configPath)
				require.Error(t, err)
				assert.Nil(t, cfg)
				assert.Contains(t, err.Error(), "validate config")
				assert.Contains(t, err.Error(), tt.errMsg)
			})
		}
	})
}

func TestConfig_WithDefaults(t *testing.T) {
	t.Run("empty config", func(t *testing.T) {
		cfg := Config{}.WithDefaults()

		assert.Equal(t, DefaultForums, cfg.Digest.Forums)
		assert.Equal(t, DefaultCriterion, cfg.Digest.Criterion)
		assert.Equal(t, 10, cfg.Digest.Limit)
		assert.Equal(t, "Reddit Idea Filter Report", cfg.Digest.SubjectPrefix)
		assert.Equal(t, "https://openrouter.ai/api/v1", cfg.LLM.Endpoint)
		assert.Equal(t, "google/gemini-2.0-flash-001", cfg.LLM.Model)
		assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
		assert.Equal(t, "go:idea-filter:v1.0", cfg.Reddit.UserAgent)
		assert.Equal(t, "https://www.reddit.com", cfg.Reddit.BaseURL)
		assert.Equal(t, "https://oauth.reddit.com", cfg.Reddit.APIURL)
		assert.Equal(t, 10*time.Second, cfg.Reddit.Timeout)
		assert.Equal(t, time.Second, cfg.Reddit.MinDelay)
		assert.Equal(t, 3*time.Second, cfg.Reddit.MaxDelay)
		assert.Equal(t, "smtp.gmail.com", cfg.SMTP.Host)
		assert.Equal(t, 587, cfg.SMTP.Port)
		assert.Empty(t, cfg.SMTP.From)
	})

	t.Run("sender defaults to username", func(t *testing.T) {
		cfg := Config{SMTP: SMTPConfig{Username: "me@example.com"}}.WithDefaults()
		assert.Equal(t, "me@example.com", cfg.SMTP.From)

		cfg = Config{SMTP: SMTPConfig{Username: "me@example.com", From: "bot@example.com"}}.WithDefaults()
		assert.Equal(t, "bot@example.com", cfg.SMTP.From)
	})

	t.Run("keeps set values and does not mutate receiver", func(t *testing.T) {
		orig := Config{
			Digest: DigestConfig{Forums: []string{"golang"}, Limit: 3},
			SMTP:   SMTPConfig{Host: "mail.example.com", Port: 465},
		}
		cfg := orig.WithDefaults()
		assert.Equal(t, []string{"golang"}, cfg.Digest.Forums)
		assert.Equal(t, 3, cfg.Digest.Limit)
		assert.Equal(t, "mail.example.com", cfg.SMTP.Host)
		assert.Equal(t, 465, cfg.SMTP.Port)

		assert.Empty(t, orig.LLM.Model)
		assert.Empty(t, orig.Reddit.UserAgent)
	})

	t.Run("default forums are copied", func(t *testing.T) {
		cfg := Config{}.WithDefaults()
		cfg.Digest.Forums[0] = "changed"
		assert.Equal(t, "RealEstateTechnology", DefaultForums[0])
	})
}

func TestConfig_Secrets(t *testing.T) {
	cfg := Config{
		LLM:    LLMConfig{APIKey: "sk-or-123"},
		Reddit: RedditConfig{ClientID: "id", ClientSecret: "reddit-secret"},
	}
	assert.Equal(t, []string{"sk-or-123", "reddit-secret"}, cfg.Secrets())
	assert.Empty(t, Config{}.Secrets())
}
