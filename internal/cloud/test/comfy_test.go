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

// Package cloud_test exercises the generation backend protocol against a
// stub HTTP server.
package cloud_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/zeebo/assert"

	"github.com/jaycherian/gcp-go-shorts-pipeline/internal/cloud"
	"github.com/jaycherian/gcp-go-shorts-pipeline/internal/core/model"
)

func newComfyClient(serverURL string) *cloud.ComfyClient {
	return cloud.NewComfyClient(&cloud.GenerationBackend{
		BaseURL:    serverURL,
		Checkpoint: "sd_xl_base_1.0.safetensors",
	})
}

func TestCheckHealth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/system_stats", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newComfyClient(server.URL)
	assert.NoError(t, client.CheckHealth(context.Background()))
}

func TestCheckHealthReportsBackendUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newComfyClient(server.URL)
	err := client.CheckHealth(context.Background())
	assert.True(t, errors.Is(err, model.ErrBackendUnavailable))
}

func TestSubmitJobQueuesWorkflowGraph(t *testing.T) {
	var graph map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/prompt", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var body map[string]map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		graph = body["prompt"]

		_ = json.NewEncoder(w).Encode(map[string]string{"prompt_id": "prompt-123"})
	}))
	defer server.Close()

	client := newComfyClient(server.URL)
	id, err := client.SubmitJob(context.Background(), &model.JobSpec{
		Prompt:     "a lighthouse in a storm",
		FrameCount: 120,
		Width:      1080,
		Height:     1920,
		FPS:        24,
	})
	assert.NoError(t, err)
	assert.Equal(t, "prompt-123", id)

	// The graph carries the prompt, the latent batch shape, and the
	// configured checkpoint.
	positive := graph["1"].(map[string]any)["inputs"].(map[string]any)
	assert.Equal(t, "a lighthouse in a storm", positive["text"])

	latent := graph["5"].(map[string]any)["inputs"].(map[string]any)
	assert.Equal(t, float64(1080), latent["width"])
	assert.Equal(t, float64(1920), latent["height"])
	assert.Equal(t, float64(120), latent["batch_size"])

	loader := graph["4"].(map[string]any)["inputs"].(map[string]any)
	assert.Equal(t, "sd_xl_base_1.0.safetensors", loader["ckpt_name"])
}

func TestSubmitJobRejectsEmptyPromptID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"prompt_id": ""})
	}))
	defer server.Close()

	client := newComfyClient(server.URL)
	_, err := client.SubmitJob(context.Background(), &model.JobSpec{Prompt: "p"})
	assert.Error(t, err)
}

func TestJobHistoryFlattensOutputsInNodeOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/history/prompt-123", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"prompt-123": {
				"outputs": {
					"10": {"gifs": [{"filename": "shorts_b_00001.mp4"}]},
					"7":  {"images": [{"filename": "shorts_a_00001.png"}]}
				}
			}
		}`))
	}))
	defer server.Close()

	client := newComfyClient(server.URL)
	entry, present, err := client.JobHistory(context.Background(), "prompt-123")
	assert.NoError(t, err)
	assert.True(t, present)
	assert.DeepEqual(t, []string{"shorts_b_00001.mp4", "shorts_a_00001.png"}, entry.Artifacts)
}

func TestJobHistoryAbsentIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newComfyClient(server.URL)
	entry, present, err := client.JobHistory(context.Background(), "prompt-999")
	assert.NoError(t, err)
	assert.False(t, present)
	assert.Nil(t, entry)
}
