package config

import (
	"github.com/invopop/jsonschema"
)

// Setting describes a single environment-provided setting
type Setting struct {
	Name        string
	Description string
}

// Report lists settings missing from the configuration
type Report struct {
	MissingRequired []Setting
	MissingOptional []Setting
}

// Ready reports whether the pipeline has everything it needs to run
func (r Report) Ready() bool {
	return len(r.MissingRequired) == 0
}

// Verify checks which required and optional settings are absent.
// It should be called before WithDefaults, otherwise defaulted values hide what the operator did not set.
func (c Config) Verify() Report {
	var r Report

	if c.LLM.APIKey == "" {
		r.MissingRequired = append(r.MissingRequired, Setting{Name: "OPENROUTER_KEY", Description: "Required for LLM API access via OpenRouter"})
	}

	optional := []struct {
		value string
		Setting
	}{
		{c.Reddit.ClientID, Setting{"REDDIT_CLIENT_ID", "Required for Reddit API authentication"}},
		{c.Reddit.ClientSecret, Setting{"REDDIT_CLIENT_SECRET", "Required for Reddit API authentication"}},
		{c.Reddit.UserAgent, Setting{"REDDIT_USER_AGENT", "Used for Reddit requests (default: " + DefaultUserAgent + ")"}},
		{c.SMTP.Username, Setting{"SMTP_USERNAME", "Required for email authentication"}},
		{c.SMTP.Password, Setting{"SMTP_PASSWORD", "Required for email authentication"}},
		{c.SMTP.Recipient, Setting{"RECIPIENT_EMAIL", "Required for email sending functionality"}},
	}
	for _, o := range optional {
		if o.value == "" {
			r.MissingOptional = append(r.MissingOptional, o.Setting)
		}
	}

	return r
}

// GenerateSchema generates a JSON schema for the Config struct
func GenerateSchema() *jsonschema.Schema {
	return jsonschema.Reflect(&Config{})
}
