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
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jaycherian/gcp-go-shorts-pipeline/internal/core/jobs"
	"github.com/jaycherian/gcp-go-shorts-pipeline/internal/core/model"
)

// ComfyClient speaks the ComfyUI HTTP protocol and adapts it to the
// jobs.Backend interface. A generation job is one queued workflow graph;
// its id is the backend's prompt id, and completion is signaled by the
// prompt showing up in GET /history.
type ComfyClient struct {
	baseURL string
	cfg     *GenerationBackend
	client  *http.Client
}

// NewComfyClient creates a client for the configured backend.
func NewComfyClient(cfg *GenerationBackend) *ComfyClient {
	return &ComfyClient{
		baseURL: cfg.BaseURL,
		cfg:     cfg,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// CheckHealth probes the backend's system stats endpoint. Any response
// other than 200 means the backend cannot accept work.
func (c *ComfyClient) CheckHealth(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/system_stats", nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("backend unreachable at %s: %v: %w", c.baseURL, err, model.ErrBackendUnavailable)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("backend returned status %d: %w", resp.StatusCode, model.ErrBackendUnavailable)
	}
	return nil
}

// SubmitJob builds the workflow graph for the spec, queues it, and returns
// the backend-assigned prompt id.
func (c *ComfyClient) SubmitJob(ctx context.Context, spec *model.JobSpec) (string, error) {
	graph := c.buildWorkflowGraph(spec)
	body, err := json.Marshal(map[string]any{"prompt": graph})
	if err != nil {
		return "", fmt.Errorf("failed to encode workflow graph: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/prompt", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to queue workflow: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("backend rejected workflow with status %d", resp.StatusCode)
	}

	var queued struct {
		PromptID string `json:"prompt_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&queued); err != nil {
		return "", fmt.Errorf("failed to decode queue response: %w", err)
	}
	if queued.PromptID == "" {
		return "", fmt.Errorf("backend returned empty prompt id")
	}
	return queued.PromptID, nil
}

// JobHistory looks the prompt id up in the backend's completed-job history.
// Presence of the id is the completion signal; outputs are flattened into a
// single artifact list with node ids visited in sorted order so the result
// is deterministic regardless of JSON map iteration.
func (c *ComfyClient) JobHistory(ctx context.Context, id string) (*jobs.HistoryEntry, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/history/"+id, nil)
	if err != nil {
		return nil, false, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("history query failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("history query returned status %d", resp.StatusCode)
	}

	var history map[string]struct {
		Outputs map[string]struct {
			Images []struct {
				Filename string `json:"filename"`
			} `json:"images"`
			Gifs []struct {
				Filename string `json:"filename"`
			} `json:"gifs"`
		} `json:"outputs"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&history); err != nil {
		return nil, false, fmt.Errorf("failed to decode history response: %w", err)
	}

	entry, ok := history[id]
	if !ok {
		return nil, false, nil
	}

	nodeIDs := make([]string, 0, len(entry.Outputs))
	for nodeID := range entry.Outputs {
		nodeIDs = append(nodeIDs, nodeID)
	}
	sort.Strings(nodeIDs)

	artifacts := make([]string, 0)
	for _, nodeID := range nodeIDs {
		out := entry.Outputs[nodeID]
		for _, img := range out.Images {
			if img.Filename != "" {
				artifacts = append(artifacts, img.Filename)
			}
		}
		for _, gif := range out.Gifs {
			if gif.Filename != "" {
				artifacts = append(artifacts, gif.Filename)
			}
		}
	}
	return &jobs.HistoryEntry{Artifacts: artifacts}, true, nil
}

// buildWorkflowGraph assembles the node graph the backend executes: prompt
// and negative-prompt text encoders feeding a sampler over an empty latent
// batch of FrameCount frames, decoded and saved under a unique prefix.
// Node ids are string keys linked by [id, slot] references.
func (c *ComfyClient) buildWorkflowGraph(spec *model.JobSpec) map[string]any {
	steps := c.cfg.Steps
	if steps <= 0 {
		steps = 20
	}
	cfgScale := c.cfg.CFGScale
	if cfgScale <= 0 {
		cfgScale = 8.0
	}
	negative := c.cfg.NegativePrompt
	if negative == "" {
		negative = "blurry, low quality, distorted"
	}

	return map[string]any{
		"1": map[string]any{
			"class_type": "CLIPTextEncode",
			"inputs": map[string]any{
				"text": spec.Prompt,
				"clip": []any{"4", 0},
			},
		},
		"2": map[string]any{
			"class_type": "CLIPTextEncode",
			"inputs": map[string]any{
				"text": negative,
				"clip": []any{"4", 0},
			},
		},
		"3": map[string]any{
			"class_type": "KSampler",
			"inputs": map[string]any{
				"seed":         time.Now().Unix(),
				"steps":        steps,
				"cfg":          cfgScale,
				"sampler_name": "euler",
				"scheduler":    "normal",
				"denoise":      1.0,
				"model":        []any{"4", 0},
				"positive":     []any{"1", 0},
				"negative":     []any{"2", 0},
				"latent_image": []any{"5", 0},
			},
		},
		"4": map[string]any{
			"class_type": "CheckpointLoaderSimple",
			"inputs": map[string]any{
				"ckpt_name": c.cfg.Checkpoint,
			},
		},
		"5": map[string]any{
			"class_type": "EmptyLatentImage",
			"inputs": map[string]any{
				"width":      spec.Width,
				"height":     spec.Height,
				"batch_size": spec.FrameCount,
			},
		},
		"6": map[string]any{
			"class_type": "VAEDecode",
			"inputs": map[string]any{
				"samples": []any{"3", 0},
				"vae":     []any{"4", 2},
			},
		},
		"7": map[string]any{
			"class_type": "SaveImage",
			"inputs": map[string]any{
				"filename_prefix": "shorts_" + uuid.New().String(),
				"images":          []any{"6", 0},
			},
		},
	}
}
