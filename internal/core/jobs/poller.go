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

// Package jobs drives the submit/poll/fetch lifecycle of asynchronous
// generation jobs against a queue-style backend. The backend assigns an
// opaque job id at submission; completion is signaled by the job showing
// up in the backend's completed-job history. The poller queries that
// history at a fixed interval until the job appears or the deadline
// elapses. Individual status-query failures are treated as transient and
// retried; only the deadline is terminal.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jaycherian/gcp-go-shorts-pipeline/internal/core/model"
)

const (
	// DefaultPollInterval is the pause between status queries.
	DefaultPollInterval = 2 * time.Second
	// DefaultDeadline bounds how long a single job is polled before it is
	// abandoned as timed out.
	DefaultDeadline = 300 * time.Second
)

// HistoryEntry is a completed-job record as reported by the backend, with
// artifact references already flattened into a deterministic order.
type HistoryEntry struct {
	Artifacts []string
}

// Backend is the job-queue protocol the poller consumes. Implementations
// wrap a concrete service (see cloud.ComfyClient); tests supply fakes.
type Backend interface {
	// CheckHealth reports whether the backend is reachable at all.
	CheckHealth(ctx context.Context) error

	// SubmitJob sends the work description and returns the backend
	// assigned job id.
	SubmitJob(ctx context.Context, spec *model.JobSpec) (string, error)

	// JobHistory looks the job up in the completed-job history. Absence is
	// not an error: it means still running or unknown.
	JobHistory(ctx context.Context, id string) (entry *HistoryEntry, present bool, err error)
}

// Poller drives one job at a time through submit, poll-until-terminal, and
// fetch. It holds no backend-side locks; any number of jobs may be in
// flight against the same backend concurrently.
type Poller struct {
	backend  Backend
	interval time.Duration
	deadline time.Duration
	clock    Clock
}

// NewPoller creates a poller for the given backend. Non-positive interval
// or deadline values fall back to the defaults; a nil clock falls back to
// the system clock.
func NewPoller(backend Backend, interval time.Duration, deadline time.Duration, clock Clock) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if deadline <= 0 {
		deadline = DefaultDeadline
	}
	if clock == nil {
		clock = NewClock()
	}
	return &Poller{backend: backend, interval: interval, deadline: deadline, clock: clock}
}

// Submit sends the spec to the backend and returns the job in the
// Submitted state. A failed submission call is reported as
// model.ErrBackendUnavailable; it is distinct from the job itself later
// failing.
func (p *Poller) Submit(ctx context.Context, spec *model.JobSpec) (*model.GenerationJob, error) {
	id, err := p.backend.SubmitJob(ctx, spec)
	if err != nil {
		return nil, fmt.Errorf("submit failed: %v: %w", err, model.ErrBackendUnavailable)
	}
	return model.NewGenerationJob(id, spec), nil
}

// PollUntilTerminal queries the backend history at the configured interval
// until the job appears or the deadline elapses, advancing the job through
// Polling into Completed or TimedOut. Transient query errors are swallowed
// and retried. The deadline is honored exactly: the final status check
// happens at the deadline instant, not before it.
func (p *Poller) PollUntilTerminal(ctx context.Context, job *model.GenerationJob) (model.JobState, error) {
	if err := job.Advance(model.JobStatePolling); err != nil {
		return job.State, err
	}

	start := p.clock.Now()
	deadline := start.Add(p.deadline)

	for {
		_, present, err := p.backend.JobHistory(ctx, job.Id)
		if err == nil && present {
			if err := job.Advance(model.JobStateCompleted); err != nil {
				return job.State, err
			}
			return job.State, nil
		}
		if err != nil {
			// Transient: the backend may be mid-restart or briefly
			// unreachable. Keep polling until the deadline decides.
			slog.Debug("job status query failed, retrying", "job_id", job.Id, "error", err)
		}

		now := p.clock.Now()
		if !now.Before(deadline) {
			if err := job.Advance(model.JobStateTimedOut); err != nil {
				return job.State, err
			}
			return job.State, nil
		}

		wait := p.interval
		if remaining := deadline.Sub(now); remaining < wait {
			wait = remaining
		}
		if err := p.clock.Sleep(ctx, wait); err != nil {
			// Caller cancellation: abandon the job like a timeout.
			if advErr := job.Advance(model.JobStateTimedOut); advErr != nil {
				return job.State, advErr
			}
			return job.State, err
		}
	}
}

// Fetch extracts the artifact references from the job's history entry. A
// completed job with no artifacts yields an empty list, not an error; the
// caller decides whether that is acceptable.
func (p *Poller) Fetch(ctx context.Context, job *model.GenerationJob) ([]string, error) {
	entry, present, err := p.backend.JobHistory(ctx, job.Id)
	if err != nil {
		return nil, fmt.Errorf("fetch of job %s failed: %w", job.Id, err)
	}
	if !present {
		return nil, fmt.Errorf("job %s missing from backend history: %w", job.Id, model.ErrJobFailed)
	}
	if len(entry.Artifacts) == 0 {
		return []string{}, nil
	}
	job.Artifacts = append(job.Artifacts[:0], entry.Artifacts...)
	return job.Artifacts, nil
}

// Interval returns the configured poll interval.
func (p *Poller) Interval() time.Duration { return p.interval }

// Deadline returns the configured poll deadline.
func (p *Poller) Deadline() time.Duration { return p.deadline }
