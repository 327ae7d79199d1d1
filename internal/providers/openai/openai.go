// Package openai implements transcription and chat-completion transformation
// against the OpenAI HTTP API.
package openai

import (
	"errors"
	"net/http"
	"strings"
	"time"
)

// Config controls OpenAI API settings shared by both clients.
type Config struct {
	APIKey     string
	APIBaseURL string

	// TranscriptionModel is the speech-to-text model (default whisper-1).
	TranscriptionModel string

	// ChatModel is the transformation model (default gpt-4o-mini).
	ChatModel string

	// Language optionally pins the transcription language (ISO-639-1).
	Language string

	// Personalization lines are sent as extra system messages on every
	// transformation request.
	Personalization []string

	HTTPClient *http.Client
}

var errMissingAPIKey = errors.New("OPENAI_API_KEY is not configured")

func (c Config) validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return errMissingAPIKey
	}
	return nil
}

func (c Config) baseURL() string {
	base := strings.TrimSpace(c.APIBaseURL)
	if base == "" {
		base = "https://api.openai.com/v1"
	}
	return strings.TrimRight(base, "/")
}

func (c Config) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 60 * time.Second}
}
