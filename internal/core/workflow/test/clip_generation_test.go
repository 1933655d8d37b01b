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

// Package workflow_test drives the orchestration workflows against fake
// backends, clocks, and runners so no external process or service is
// touched.
package workflow_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jaycherian/gcp-go-shorts-pipeline/internal/core/jobs"
	"github.com/jaycherian/gcp-go-shorts-pipeline/internal/core/model"
	"github.com/jaycherian/gcp-go-shorts-pipeline/internal/core/workflow"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(_ context.Context, d time.Duration) error {
	c.now = c.now.Add(d)
	return nil
}

// fakeGenBackend hands out sequential job ids and completes every job on
// the first status check, except the ones marked stuck.
type fakeGenBackend struct {
	healthErr   error
	submissions int
	stuck       map[string]bool
	artifacts   map[string][]string
}

func newFakeGenBackend() *fakeGenBackend {
	return &fakeGenBackend{
		stuck:     map[string]bool{},
		artifacts: map[string][]string{},
	}
}

func (b *fakeGenBackend) CheckHealth(_ context.Context) error { return b.healthErr }

func (b *fakeGenBackend) SubmitJob(_ context.Context, _ *model.JobSpec) (string, error) {
	id := fmt.Sprintf("job-%d", b.submissions)
	b.submissions++
	return id, nil
}

func (b *fakeGenBackend) JobHistory(_ context.Context, id string) (*jobs.HistoryEntry, bool, error) {
	if b.stuck[id] {
		return nil, false, nil
	}
	return &jobs.HistoryEntry{Artifacts: b.artifacts[id]}, true, nil
}

func TestGenerateDropsTimedOutClipAndContinues(t *testing.T) {
	backend := newFakeGenBackend()
	backend.artifacts["job-0"] = []string{"shorts_a_00001.mp4"}
	backend.stuck["job-1"] = true
	backend.artifacts["job-2"] = []string{"shorts_c_00001.mp4"}

	clock := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	poller := jobs.NewPoller(backend, time.Second, 3*time.Second, clock)
	m := workflow.NewClipGenerationWorkflow(backend, poller, "/data/comfy")

	sequence, err := m.Generate(context.Background(), &model.VideoRequest{
		VisualPrompt:      "a lighthouse in a storm",
		NumClips:          3,
		ClipDuration:      5,
		AspectRatioWidth:  9,
		AspectRatioHeight: 16,
	})
	assert.NoError(t, err)

	// Survivors keep request order; the stuck clip is recorded, not fatal.
	assert.Equal(t, []string{"/data/comfy/shorts_a_00001.mp4", "/data/comfy/shorts_c_00001.mp4"}, sequence.Clips)
	assert.Equal(t, 1, len(sequence.Dropped))
	assert.Equal(t, 1, sequence.Dropped[0].ClipIndex)
	assert.True(t, strings.Contains(sequence.Dropped[0].Reason, string(model.JobStateTimedOut)))

	// The nominal duration reflects the request, not the survivors.
	assert.Equal(t, 15.0, sequence.NominalDuration)
	assert.Equal(t, 3, backend.submissions)
}

func TestGenerateFailsFastWhenBackendUnreachable(t *testing.T) {
	backend := newFakeGenBackend()
	backend.healthErr = fmt.Errorf("connection refused: %w", model.ErrBackendUnavailable)

	poller := jobs.NewPoller(backend, time.Second, 3*time.Second, &fakeClock{})
	m := workflow.NewClipGenerationWorkflow(backend, poller, "")

	sequence, err := m.Generate(context.Background(), &model.VideoRequest{VisualPrompt: "anything"})
	assert.Nil(t, sequence)
	assert.True(t, errors.Is(err, model.ErrBackendUnavailable))
	assert.Equal(t, 0, backend.submissions)
}

func TestGenerateRejectsMissingPrompt(t *testing.T) {
	backend := newFakeGenBackend()
	poller := jobs.NewPoller(backend, time.Second, 3*time.Second, &fakeClock{})
	m := workflow.NewClipGenerationWorkflow(backend, poller, "")

	_, err := m.Generate(context.Background(), &model.VideoRequest{})
	assert.True(t, errors.Is(err, model.ErrInvalidRequest))

	_, err = m.Generate(context.Background(), nil)
	assert.True(t, errors.Is(err, model.ErrInvalidRequest))
}

func TestGenerateKeepsAbsoluteArtifactPaths(t *testing.T) {
	backend := newFakeGenBackend()
	backend.artifacts["job-0"] = []string{"/mnt/output/shorts_x_00001.mp4"}

	poller := jobs.NewPoller(backend, time.Second, 3*time.Second, &fakeClock{})
	m := workflow.NewClipGenerationWorkflow(backend, poller, "/data/comfy")

	sequence, err := m.Generate(context.Background(), &model.VideoRequest{
		VisualPrompt: "a quiet street",
		NumClips:     1,
		ClipDuration: 5,
	})
	assert.NoError(t, err)
	assert.Equal(t, []string{"/mnt/output/shorts_x_00001.mp4"}, sequence.Clips)
}
