package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// TTSConfig configures the speech-synthesis client.
type TTSConfig struct {
	Endpoint string
	APIKey   string
	Voice    string
	Timeout  time.Duration
}

type ttsClient struct {
	config TTSConfig
	client *http.Client
}

// NewTTSClient creates a Synthesizer backed by an HTTP text-to-speech
// service. It returns raw audio bytes which are relayed to the sender
// without inspection.
func NewTTSClient(config TTSConfig) (Synthesizer, error) {
	if config.Endpoint == "" {
		return nil, ErrEmptyEndpoint
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	return &ttsClient{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
	}, nil
}

type ttsRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Voice    string `json:"voice,omitempty"`
}

func (t *ttsClient) Synthesize(ctx context.Context, text string, lang string) ([]byte, error) {
	body, err := json.Marshal(ttsRequest{Text: text, Language: lang, Voice: t.config.Voice})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if t.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+t.config.APIKey)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("synthesis request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("synthesis server returned %d: %s", resp.StatusCode, detail)
	}
	return io.ReadAll(resp.Body)
}
