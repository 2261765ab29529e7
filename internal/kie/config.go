package kie

import (
	"strings"
	"time"
)

const (
	// DefaultTimeout bounds a single HTTP attempt against the gateway.
	DefaultTimeout = 120 * time.Second
	// DefaultChatModel is used by ChatCompletion when the caller passes none.
	DefaultChatModel = "gemini-2.5-flash"
)

// Config carries the connection settings for one gateway call. Callers build
// a fresh value per request (typically overriding APIKey with an account's
// key), so concurrent calls with different credentials never interfere.
type Config struct {
	// APIKey is sent as `Authorization: Bearer ...`.
	APIKey string
	// BaseURL is the gateway origin without a trailing slash,
	// e.g. "https://api.kie.ai".
	BaseURL string
	// Timeout bounds each HTTP attempt. Zero means DefaultTimeout.
	Timeout time.Duration
	// ChatModel is the default model for ChatCompletion.
	ChatModel string
}

// WithAPIKey returns a copy of the config using the given credential.
func (c Config) WithAPIKey(key string) Config {
	c.APIKey = strings.TrimSpace(key)
	return c
}

func (c Config) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return DefaultTimeout
}

func (c Config) chatModel() string {
	if m := strings.TrimSpace(c.ChatModel); m != "" {
		return m
	}
	return DefaultChatModel
}

func (c Config) origin() string {
	return strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
}

func (c Config) hasCredentials() bool {
	return strings.TrimSpace(c.APIKey) != ""
}
