package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatAge(t *testing.T) {
	tests := []struct {
		name string
		age  time.Duration
		want string
	}{
		{name: "seconds", age: 30 * time.Second, want: "30s"},
		{name: "zero", age: 0, want: "0s"},
		{name: "just under a minute", age: 59*time.Second + 900*time.Millisecond, want: "59s"},
		{name: "minute and a half", age: 90 * time.Second, want: "1m"},
		{name: "two hours", age: 7200 * time.Second, want: "2h"},
		{name: "just under a day", age: 86399 * time.Second, want: "23h"},
		{name: "two days", age: 172800 * time.Second, want: "2d"},
		{name: "negative clamps to zero", age: -5 * time.Second, want: "0s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatAge(tt.age))
		})
	}
}

func TestPost_Age(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	p := Post{Created: now.Add(-90 * time.Minute)}
	assert.Equal(t, "1h", p.Age(now))
}

func TestPost_FullURL(t *testing.T) {
	p := Post{Permalink: "/r/PropTech/comments/1abc/looking_for_crm/"}
	assert.Equal(t, "https://www.reddit.com/r/PropTech/comments/1abc/looking_for_crm/", p.FullURL())
}
