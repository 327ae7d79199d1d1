package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Transformer implements ports.Transformer over POST /chat/completions.
type Transformer struct {
	cfg Config
}

func NewTransformer(cfg Config) *Transformer {
	if cfg.ChatModel == "" {
		cfg.ChatModel = "gpt-4o-mini"
	}
	return &Transformer{cfg: cfg}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

func (t *Transformer) Transform(ctx context.Context, text string, systemPrompt string) (string, error) {
	if err := t.cfg.validate(); err != nil {
		return "", err
	}

	messages := make([]chatMessage, 0, len(t.cfg.Personalization)+2)
	messages = append(messages, chatMessage{Role: "system", Content: systemPrompt})
	for _, line := range t.cfg.Personalization {
		if strings.TrimSpace(line) == "" {
			continue
		}
		messages = append(messages, chatMessage{Role: "system", Content: line})
	}
	messages = append(messages, chatMessage{Role: "user", Content: text})

	payload, err := json.Marshal(chatRequest{
		Model:       t.cfg.ChatModel,
		Messages:    messages,
		Temperature: 0.7,
		MaxTokens:   1000,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.cfg.baseURL()+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+t.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.cfg.httpClient().Do(req)
	if err != nil {
		return "", fmt.Errorf("transformation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", apiError("transformation", resp)
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode transformation response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("transformation returned no choices")
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}
