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

// Package jobs_test exercises the poller's lifecycle handling against a
// fake backend and a fake clock, so deadline behavior is verified without
// real waiting.
package jobs_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jaycherian/gcp-go-shorts-pipeline/internal/core/jobs"
	"github.com/jaycherian/gcp-go-shorts-pipeline/internal/core/model"
)

// fakeClock advances only when the poller sleeps.
type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(_ context.Context, d time.Duration) error {
	c.now = c.now.Add(d)
	c.sleeps = append(c.sleeps, d)
	return nil
}

// fakeBackend completes a job once the fake clock passes completeAfter.
// The first failQueries history lookups fail with a transient error.
type fakeBackend struct {
	clock         *fakeClock
	start         time.Time
	completeAfter time.Duration // Zero means the job never completes.
	failQueries   int
	queries       int
	submissions   int
	submitErr     error
	artifacts     []string
}

func newFakeBackend(clock *fakeClock) *fakeBackend {
	return &fakeBackend{clock: clock, start: clock.now, artifacts: []string{"clip_00001.mp4"}}
}

func (b *fakeBackend) CheckHealth(_ context.Context) error { return nil }

func (b *fakeBackend) SubmitJob(_ context.Context, _ *model.JobSpec) (string, error) {
	if b.submitErr != nil {
		return "", b.submitErr
	}
	b.submissions++
	return "job-1", nil
}

func (b *fakeBackend) JobHistory(_ context.Context, _ string) (*jobs.HistoryEntry, bool, error) {
	b.queries++
	if b.queries <= b.failQueries {
		return nil, false, errors.New("connection refused")
	}
	if b.completeAfter > 0 && !b.clock.now.Before(b.start.Add(b.completeAfter)) {
		return &jobs.HistoryEntry{Artifacts: b.artifacts}, true, nil
	}
	return nil, false, nil
}

func TestSubmitFailureIsBackendUnavailable(t *testing.T) {
	clock := newFakeClock()
	backend := newFakeBackend(clock)
	backend.submitErr = errors.New("connection refused")

	poller := jobs.NewPoller(backend, 2*time.Second, 300*time.Second, clock)
	job, err := poller.Submit(context.Background(), &model.JobSpec{Prompt: "p"})

	assert.Nil(t, job)
	assert.True(t, errors.Is(err, model.ErrBackendUnavailable))
}

func TestPollCompletes(t *testing.T) {
	clock := newFakeClock()
	backend := newFakeBackend(clock)
	backend.completeAfter = 6 * time.Second

	poller := jobs.NewPoller(backend, 2*time.Second, 300*time.Second, clock)
	job, err := poller.Submit(context.Background(), &model.JobSpec{Prompt: "p"})
	assert.NoError(t, err)
	assert.Equal(t, model.JobStateSubmitted, job.State)

	state, err := poller.PollUntilTerminal(context.Background(), job)
	assert.NoError(t, err)
	assert.Equal(t, model.JobStateCompleted, state)

	artifacts, err := poller.Fetch(context.Background(), job)
	assert.NoError(t, err)
	assert.Equal(t, []string{"clip_00001.mp4"}, artifacts)
}

func TestPollTimesOutExactlyAtDeadline(t *testing.T) {
	clock := newFakeClock()
	start := clock.now
	backend := newFakeBackend(clock)
	backend.completeAfter = 0 // never

	poller := jobs.NewPoller(backend, 2*time.Second, 300*time.Second, clock)
	job, err := poller.Submit(context.Background(), &model.JobSpec{Prompt: "p"})
	assert.NoError(t, err)

	state, err := poller.PollUntilTerminal(context.Background(), job)
	assert.NoError(t, err)
	assert.Equal(t, model.JobStateTimedOut, state)

	// The final status check happens at the deadline instant, not after it.
	assert.Equal(t, 300*time.Second, clock.now.Sub(start))
}

func TestTransientQueryErrorsAreSwallowed(t *testing.T) {
	clock := newFakeClock()
	backend := newFakeBackend(clock)
	backend.completeAfter = 4 * time.Second
	backend.failQueries = 2

	poller := jobs.NewPoller(backend, 2*time.Second, 300*time.Second, clock)
	job, err := poller.Submit(context.Background(), &model.JobSpec{Prompt: "p"})
	assert.NoError(t, err)

	state, err := poller.PollUntilTerminal(context.Background(), job)
	assert.NoError(t, err)
	assert.Equal(t, model.JobStateCompleted, state)
}

func TestFetchWithNoArtifactsReturnsEmptyList(t *testing.T) {
	clock := newFakeClock()
	backend := newFakeBackend(clock)
	backend.completeAfter = 2 * time.Second
	backend.artifacts = nil

	poller := jobs.NewPoller(backend, 2*time.Second, 300*time.Second, clock)
	job, err := poller.Submit(context.Background(), &model.JobSpec{Prompt: "p"})
	assert.NoError(t, err)

	_, err = poller.PollUntilTerminal(context.Background(), job)
	assert.NoError(t, err)

	artifacts, err := poller.Fetch(context.Background(), job)
	assert.NoError(t, err)
	assert.Equal(t, 0, len(artifacts))
}

func TestDefaultsApplied(t *testing.T) {
	poller := jobs.NewPoller(newFakeBackend(newFakeClock()), 0, 0, nil)
	assert.Equal(t, jobs.DefaultPollInterval, poller.Interval())
	assert.Equal(t, jobs.DefaultDeadline, poller.Deadline())
}
