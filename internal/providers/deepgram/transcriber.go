// Package deepgram implements transcription over the Deepgram websocket API.
// Captured audio is sent as one batch: the whole clip is streamed up in
// chunks, the stream is closed, and the final transcripts are aggregated
// into a single result.
package deepgram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"maestro/internal/domain"
)

// Config controls Deepgram websocket settings.
type Config struct {
	APIKey      string
	APIBaseURL  string
	Model       string
	Language    string
	SmartFormat bool
}

const sendChunkSize = 32 * 1024

// Transcriber implements ports.Transcriber for Deepgram.
type Transcriber struct {
	cfg Config
}

func NewTranscriber(cfg Config) *Transcriber {
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = "https://api.deepgram.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "nova-2"
	}
	return &Transcriber{cfg: cfg}
}

func (t *Transcriber) Name() string { return "deepgram" }

func (t *Transcriber) Transcribe(ctx context.Context, clip domain.AudioClip) (domain.Transcription, error) {
	if strings.TrimSpace(t.cfg.APIKey) == "" {
		return domain.Transcription{}, errors.New("DEEPGRAM_API_KEY is not configured")
	}

	wsURL, err := buildListenURL(t.cfg)
	if err != nil {
		return domain.Transcription{}, err
	}

	headers := http.Header{}
	headers.Set("Authorization", "Token "+t.cfg.APIKey)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, headers)
	if err != nil {
		return domain.Transcription{}, fmt.Errorf("failed to connect to Deepgram websocket: %w", err)
	}
	defer conn.Close()

	finished := make(chan struct{})
	defer close(finished)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-finished:
		}
	}()

	writeErr := make(chan error, 1)
	go func() {
		writeErr <- sendClip(conn, clip.Data)
	}()

	finals, readErr := collectFinals(conn)
	if err := <-writeErr; err != nil {
		return domain.Transcription{}, err
	}
	if readErr != nil {
		return domain.Transcription{}, readErr
	}

	return domain.Transcription{
		Text:     strings.Join(finals, " "),
		Language: t.cfg.Language,
		Model:    t.cfg.Model,
	}, nil
}

// sendClip streams the clip in bounded chunks and then closes the stream so
// the server flushes its final results.
func sendClip(conn *websocket.Conn, data []byte) error {
	for len(data) > 0 {
		chunk := data
		if len(chunk) > sendChunkSize {
			chunk = chunk[:sendChunkSize]
		}
		if err := conn.WriteMessage(websocket.BinaryMessage, chunk); err != nil {
			return fmt.Errorf("failed to send audio: %w", err)
		}
		data = data[len(chunk):]
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"CloseStream"}`)); err != nil {
		return fmt.Errorf("failed to close stream: %w", err)
	}
	return nil
}

// collectFinals reads provider events until the server closes the connection,
// keeping only final transcripts.
func collectFinals(conn *websocket.Conn) ([]string, error) {
	var finals []string
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				return finals, nil
			}
			return nil, fmt.Errorf("failed to read provider event: %w", err)
		}

		var response listenResponse
		if err := json.Unmarshal(payload, &response); err != nil {
			continue
		}

		if strings.EqualFold(response.Type, "Error") {
			message := strings.TrimSpace(response.Message)
			if message == "" {
				message = "deepgram returned an unknown error"
			}
			return nil, errors.New(message)
		}
		if strings.EqualFold(response.Type, "Metadata") {
			return finals, nil
		}

		if !response.IsFinal && !response.SpeechFinal {
			continue
		}
		if transcript := extractTranscript(response); transcript != "" {
			finals = append(finals, transcript)
		}
	}
}

type listenResponse struct {
	Type        string `json:"type"`
	Message     string `json:"message"`
	IsFinal     bool   `json:"is_final"`
	SpeechFinal bool   `json:"speech_final"`

	Channel struct {
		Alternatives []struct {
			Transcript string `json:"transcript"`
		} `json:"alternatives"`
	} `json:"channel"`
}

func extractTranscript(response listenResponse) string {
	if len(response.Channel.Alternatives) == 0 {
		return ""
	}
	return strings.TrimSpace(response.Channel.Alternatives[0].Transcript)
}

func buildListenURL(cfg Config) (string, error) {
	base := strings.TrimSpace(cfg.APIBaseURL)
	if strings.HasPrefix(base, "https://") {
		base = "wss://" + strings.TrimPrefix(base, "https://")
	} else if strings.HasPrefix(base, "http://") {
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	base = strings.TrimRight(base, "/")

	listenURL, err := url.Parse(base + "/listen")
	if err != nil {
		return "", fmt.Errorf("invalid Deepgram API base URL: %w", err)
	}

	query := listenURL.Query()
	query.Set("model", cfg.Model)
	query.Set("interim_results", "false")
	query.Set("smart_format", fmt.Sprintf("%t", cfg.SmartFormat))
	if cfg.Language != "" {
		query.Set("language", cfg.Language)
	}
	listenURL.RawQuery = query.Encode()
	return listenURL.String(), nil
}
