package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"maestro/internal/domain"
)

// Transcriber implements ports.Transcriber over POST /audio/transcriptions.
type Transcriber struct {
	cfg Config
}

func NewTranscriber(cfg Config) *Transcriber {
	if cfg.TranscriptionModel == "" {
		cfg.TranscriptionModel = "whisper-1"
	}
	return &Transcriber{cfg: cfg}
}

func (t *Transcriber) Name() string { return "openai" }

func (t *Transcriber) Transcribe(ctx context.Context, clip domain.AudioClip) (domain.Transcription, error) {
	if err := t.cfg.validate(); err != nil {
		return domain.Transcription{}, err
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "audio"+extensionFor(clip.MIMEType))
	if err != nil {
		return domain.Transcription{}, fmt.Errorf("failed to build upload: %w", err)
	}
	if _, err := part.Write(clip.Data); err != nil {
		return domain.Transcription{}, fmt.Errorf("failed to build upload: %w", err)
	}
	_ = writer.WriteField("model", t.cfg.TranscriptionModel)
	_ = writer.WriteField("response_format", "verbose_json")
	if t.cfg.Language != "" {
		_ = writer.WriteField("language", t.cfg.Language)
	}
	if err := writer.Close(); err != nil {
		return domain.Transcription{}, fmt.Errorf("failed to build upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.cfg.baseURL()+"/audio/transcriptions", body)
	if err != nil {
		return domain.Transcription{}, err
	}
	req.Header.Set("Authorization", "Bearer "+t.cfg.APIKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := t.cfg.httpClient().Do(req)
	if err != nil {
		return domain.Transcription{}, fmt.Errorf("transcription request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Transcription{}, apiError("transcription", resp)
	}

	var parsed struct {
		Text     string `json:"text"`
		Language string `json:"language"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return domain.Transcription{}, fmt.Errorf("failed to decode transcription response: %w", err)
	}

	return domain.Transcription{
		Text:     strings.TrimSpace(parsed.Text),
		Language: parsed.Language,
		Model:    t.cfg.TranscriptionModel,
	}, nil
}

// extensionFor picks the upload filename extension the API uses to sniff the
// container format.
func extensionFor(mimeType string) string {
	switch mimeType {
	case "audio/wav", "audio/x-wav":
		return ".wav"
	case "audio/mpeg", "audio/mp3":
		return ".mp3"
	case "audio/ogg":
		return ".ogg"
	case "audio/mp4", "audio/m4a":
		return ".m4a"
	default:
		return ".webm"
	}
}

func apiError(operation string, resp *http.Response) error {
	payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var parsed struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(payload, &parsed); err == nil && parsed.Error.Message != "" {
		return fmt.Errorf("%s failed: %s (status %d)", operation, parsed.Error.Message, resp.StatusCode)
	}
	return fmt.Errorf("%s failed with status %d", operation, resp.StatusCode)
}
