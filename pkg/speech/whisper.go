package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/cloudgroundcontrol/live-translator/pkg/audio"
)

// WhisperConfig configures the model-server client.
type WhisperConfig struct {
	Endpoint      string
	APIKey        string
	SampleRate    int
	Timeout       time.Duration
	MaxConcurrent int
}

type whisperClient struct {
	config WhisperConfig
	client *http.Client

	// Bounds the number of in-flight model calls
	semaphore chan struct{}
}

var ErrEmptyEndpoint = errors.New("whisper endpoint not set")

// NewWhisperClient creates a Model backed by a remote Whisper-compatible
// model server speaking multipart WAV uploads.
func NewWhisperClient(config WhisperConfig) (Model, error) {
	if config.Endpoint == "" {
		return nil, ErrEmptyEndpoint
	}
	if config.SampleRate <= 0 {
		config.SampleRate = audio.SampleRate
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = 4
	}
	return &whisperClient{
		config:    config,
		client:    &http.Client{Timeout: config.Timeout},
		semaphore: make(chan struct{}, config.MaxConcurrent),
	}, nil
}

type whisperResponse struct {
	Text     string `json:"text"`
	Language string `json:"language,omitempty"`
}

func (w *whisperClient) Transcribe(ctx context.Context, samples []float32, opts TranscribeOptions) (Transcription, error) {
	// Acquire a slot so a burst of participants cannot flood the model server
	select {
	case w.semaphore <- struct{}{}:
		defer func() { <-w.semaphore }()
	case <-ctx.Done():
		return Transcription{}, ctx.Err()
	}

	body, contentType, err := w.buildRequest(samples, opts)
	if err != nil {
		return Transcription{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.config.Endpoint, body)
	if err != nil {
		return Transcription{}, err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	if w.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+w.config.APIKey)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return Transcription{}, fmt.Errorf("model request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Transcription{}, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Transcription{}, fmt.Errorf("model server returned %d: %s", resp.StatusCode, respBody)
	}

	var parsed whisperResponse
	if err = json.Unmarshal(respBody, &parsed); err != nil {
		return Transcription{}, fmt.Errorf("cannot parse model response: %w", err)
	}

	return Transcription{Text: parsed.Text, Language: parsed.Language}, nil
}

func (w *whisperClient) Languages() map[string]string {
	return LanguageNames()
}

func (w *whisperClient) buildRequest(samples []float32, opts TranscribeOptions) (io.Reader, string, error) {
	wav, err := audio.EncodeWAV(samples, w.config.SampleRate)
	if err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	fw, err := writer.CreateFormFile("file", "segment.wav")
	if err != nil {
		return nil, "", err
	}
	if _, err = fw.Write(wav); err != nil {
		return nil, "", err
	}

	task := "transcribe"
	if opts.Translate {
		task = "translate"
	}
	fields := map[string]string{
		"task":            task,
		"response_format": "json",
	}
	if opts.Language != "" {
		fields["language"] = opts.Language
	}
	if opts.Prompt != "" {
		fields["prompt"] = opts.Prompt
	}
	for key, value := range fields {
		if err = writer.WriteField(key, value); err != nil {
			return nil, "", err
		}
	}

	if err = writer.Close(); err != nil {
		return nil, "", err
	}
	return &buf, writer.FormDataContentType(), nil
}
