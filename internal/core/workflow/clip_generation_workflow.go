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

package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/jaycherian/gcp-go-shorts-pipeline/internal/core/commands"
	"github.com/jaycherian/gcp-go-shorts-pipeline/internal/core/cor"
	"github.com/jaycherian/gcp-go-shorts-pipeline/internal/core/jobs"
	"github.com/jaycherian/gcp-go-shorts-pipeline/internal/core/model"
)

// Generation defaults applied when the request leaves them unset.
const (
	DefaultNumClips     = 5
	DefaultClipDuration = 5
	DefaultFPS          = 24
)

// ClipGenerationWorkflow drives the sequential generation of a clip
// sequence against the backend. Clips are submitted and polled one at a
// time, in request order; a clip that fails or times out is dropped with a
// recorded reason, and generation continues with the next one. Only an
// unreachable backend aborts the whole request, before any submission.
type ClipGenerationWorkflow struct {
	cor.BaseCommand
	backend     jobs.Backend
	poller      *jobs.Poller
	artifactDir string
}

// NewClipGenerationWorkflow creates the generation orchestrator. The
// poller defines the per-job poll interval and deadline; artifactDir is
// where the backend materializes its outputs, joined onto the artifact
// names it reports.
func NewClipGenerationWorkflow(backend jobs.Backend, poller *jobs.Poller, artifactDir string) *ClipGenerationWorkflow {
	out := &ClipGenerationWorkflow{
		BaseCommand: *cor.NewBaseCommand("clip-generation-workflow"),
		backend:     backend,
		poller:      poller,
		artifactDir: artifactDir,
	}
	out.InputParamName = commands.ParamStory
	out.OutputParamName = commands.ParamClipSequence
	return out
}

// dimensionsFor maps the aspect ratio onto output dimensions: the 9:16
// vertical format renders at 1080x1920, anything else falls back to
// landscape 1920x1080.
func dimensionsFor(request *model.VideoRequest) (width int, height int) {
	if request.AspectRatioWidth == 9 && request.AspectRatioHeight == 16 {
		return 1080, 1920
	}
	return 1920, 1080
}

// Generate produces the clip sequence for the request. The returned
// sequence preserves request order among the clips that survived; dropped
// clips are recorded with their index and reason. NominalDuration reflects
// the requested shape even when clips were dropped.
func (m *ClipGenerationWorkflow) Generate(ctx context.Context, request *model.VideoRequest) (*model.ClipSequence, error) {
	if request == nil || request.VisualPrompt == "" {
		return nil, fmt.Errorf("visual prompt is required: %w", model.ErrInvalidRequest)
	}
	if request.NumClips <= 0 {
		request.NumClips = DefaultNumClips
	}
	if request.ClipDuration <= 0 {
		request.ClipDuration = DefaultClipDuration
	}
	if request.FPS <= 0 {
		request.FPS = DefaultFPS
	}

	// Fail fast: no job is submitted against a backend that is down.
	if err := m.backend.CheckHealth(ctx); err != nil {
		return nil, fmt.Errorf("health check failed: %w", err)
	}

	width, height := dimensionsFor(request)
	spec := &model.JobSpec{
		Prompt:     request.VisualPrompt,
		FrameCount: request.ClipDuration * request.FPS,
		Width:      width,
		Height:     height,
		FPS:        request.FPS,
	}

	sequence := model.NewClipSequence(request.VisualPrompt, request.NumClips, request.ClipDuration)

	for i := 0; i < request.NumClips; i++ {
		job, err := m.poller.Submit(ctx, spec)
		if err != nil {
			slog.Warn("clip submission failed", "clip", i, "error", err)
			sequence.Dropped = append(sequence.Dropped, model.ClipFailure{ClipIndex: i, Reason: err.Error()})
			continue
		}

		state, err := m.poller.PollUntilTerminal(ctx, job)
		if err != nil {
			// Context cancellation: stop generating entirely.
			if ctx.Err() != nil {
				return sequence, ctx.Err()
			}
			sequence.Dropped = append(sequence.Dropped, model.ClipFailure{ClipIndex: i, Reason: err.Error()})
			continue
		}
		if state != model.JobStateCompleted {
			slog.Warn("clip did not complete", "clip", i, "job_id", job.Id, "state", state)
			sequence.Dropped = append(sequence.Dropped, model.ClipFailure{
				ClipIndex: i,
				Reason:    fmt.Sprintf("job %s ended in state %s", job.Id, state),
			})
			continue
		}

		artifacts, err := m.poller.Fetch(ctx, job)
		if err != nil || len(artifacts) == 0 {
			reason := "job completed with no artifacts"
			if err != nil {
				reason = err.Error()
			}
			slog.Warn("clip fetch produced nothing", "clip", i, "job_id", job.Id, "reason", reason)
			sequence.Dropped = append(sequence.Dropped, model.ClipFailure{ClipIndex: i, Reason: reason})
			continue
		}

		for _, artifact := range artifacts {
			path := artifact
			if m.artifactDir != "" && !filepath.IsAbs(artifact) {
				path = filepath.Join(m.artifactDir, artifact)
			}
			sequence.Clips = append(sequence.Clips, path)
		}
	}

	slog.Info("clip generation finished",
		"requested", request.NumClips,
		"produced", len(sequence.Clips),
		"dropped", len(sequence.Dropped))
	return sequence, nil
}

// Execute adapts the workflow to the command chain: it reads the story and
// the originating request from the context, shapes the video request, and
// publishes the resulting clip sequence.
func (m *ClipGenerationWorkflow) Execute(chainCtx cor.Context) {
	story := chainCtx.Get(m.GetInputParam()).(*model.Story)

	request := &model.VideoRequest{
		VisualPrompt:      story.VisualPrompt,
		AspectRatioWidth:  9,
		AspectRatioHeight: 16,
	}
	if short, ok := chainCtx.Get(commands.ParamShortRequest).(*model.ShortRequest); ok {
		request.NumClips = short.NumClips
		request.ClipDuration = short.ClipDuration
	}

	sequence, err := m.Generate(chainCtx.GetContext(), request)
	if err != nil {
		m.GetErrorCounter().Add(chainCtx.GetContext(), 1)
		chainCtx.AddError(m.GetName(), err)
		return
	}

	m.GetSuccessCounter().Add(chainCtx.GetContext(), 1)
	chainCtx.Add(m.GetOutputParam(), sequence)
	chainCtx.Add(cor.CtxOut, sequence)
}
