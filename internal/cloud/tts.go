// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cloud

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jaycherian/gcp-go-shorts-pipeline/internal/core/model"
)

// SpeechClient talks to the narration synthesis service.
type SpeechClient struct {
	baseURL string
	voice   string
	client  *http.Client
}

// NewSpeechClient creates a client for the configured speech service.
func NewSpeechClient(cfg *SpeechService) *SpeechClient {
	timeout := time.Duration(cfg.TimeoutInSeconds) * time.Second
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &SpeechClient{
		baseURL: cfg.BaseURL,
		voice:   cfg.Voice,
		client:  &http.Client{Timeout: timeout},
	}
}

// CheckHealth probes the service's health endpoint.
func (c *SpeechClient) CheckHealth(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("speech service unreachable at %s: %w", c.baseURL, err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("speech service returned status %d", resp.StatusCode)
	}
	return nil
}

// Synthesize sends the narration text and returns the track the service
// wrote into the shared workspace.
func (c *SpeechClient) Synthesize(ctx context.Context, text string, speed float64) (*model.VoiceTrack, error) {
	if speed <= 0 {
		speed = 1.0
	}
	payload := map[string]any{
		"text":  text,
		"voice": c.voice,
		"speed": speed,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/generate-voice", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("voice synthesis request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("voice synthesis returned status %d", resp.StatusCode)
	}

	var out struct {
		AudioFile string  `json:"audio_file"`
		Duration  float64 `json:"duration"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode voice response: %w", err)
	}
	if out.AudioFile == "" {
		return nil, fmt.Errorf("voice synthesis returned no audio file")
	}
	return &model.VoiceTrack{AudioPath: out.AudioFile, Duration: out.Duration}, nil
}
