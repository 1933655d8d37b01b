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

package commands

import (
	"bytes"
	"log/slog"
	"strconv"
	"time"

	"github.com/jaycherian/gcp-go-shorts-pipeline/internal/core/cor"
	"github.com/jaycherian/gcp-go-shorts-pipeline/internal/core/media"
	"github.com/jaycherian/gcp-go-shorts-pipeline/internal/core/model"
)

// SubtitleBurner overlays timed captions onto the muxed video. Subtitles
// are best-effort: when they were not requested, the text is empty, or the
// burn itself fails, the muxed video passes through unchanged and the run
// still succeeds. The chain output is always the path of the video to
// finalize; ParamSubtitled records whether captions made it in.
type SubtitleBurner struct {
	cor.BaseCommand
	workspace *media.Workspace
	runner    media.Runner
}

// NewSubtitleBurner creates the burn-in command.
func NewSubtitleBurner(name string, workspace *media.Workspace, runner media.Runner) *SubtitleBurner {
	out := &SubtitleBurner{
		BaseCommand: *cor.NewBaseCommand(name),
		workspace:   workspace,
		runner:      runner,
	}
	out.InputParamName = ParamMuxedOutput
	out.OutputParamName = ParamFinalOutput
	return out
}

func (t *SubtitleBurner) Execute(context cor.Context) {
	videoPath := context.Get(t.GetInputParam()).(string)
	request := context.Get(ParamAssemblyRequest).(*model.AssemblyRequest)

	if !request.AddSubtitles || len(request.SubtitleText) == 0 {
		t.passThrough(context, videoPath)
		return
	}

	duration, err := t.probeDuration(context, videoPath)
	if err != nil {
		slog.Warn("duration probe failed, skipping subtitles", "command", t.GetName(), "error", err)
		t.passThrough(context, videoPath)
		return
	}

	cues := media.BuildCues(request.SubtitleText, duration)
	if len(cues) == 0 {
		t.passThrough(context, videoPath)
		return
	}

	var srt bytes.Buffer
	if err := media.WriteSRT(&srt, cues); err != nil {
		slog.Warn("subtitle rendering failed, falling back to muxed output", "command", t.GetName(), "error", err)
		t.passThrough(context, videoPath)
		return
	}
	srtPath, err := t.workspace.WriteTempFile(".srt", srt.Bytes())
	if err != nil {
		slog.Warn("subtitle file write failed, falling back to muxed output", "command", t.GetName(), "error", err)
		t.passThrough(context, videoPath)
		return
	}
	context.AddTempFile(srtPath)

	outPath := t.workspace.TempFile(".mp4")
	context.AddTempFile(outPath)

	if err := t.runner.Run(context.GetContext(), media.NewBurnInOperation(videoPath, srtPath, outPath)); err != nil {
		// Non-fatal by contract: a short without captions still ships.
		slog.Warn("subtitle burn-in failed, falling back to muxed output",
			"command", t.GetName(), "error", err, "kind", model.ErrSubtitleBurnFailed)
		t.passThrough(context, videoPath)
		return
	}

	t.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(ParamSubtitled, true)
	context.Add(t.GetOutputParam(), outPath)
}

func (t *SubtitleBurner) passThrough(context cor.Context, videoPath string) {
	t.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(ParamSubtitled, false)
	context.Add(t.GetOutputParam(), videoPath)
}

func (t *SubtitleBurner) probeDuration(context cor.Context, videoPath string) (time.Duration, error) {
	raw, err := t.runner.Output(context.GetContext(), media.NewProbeOperation(videoPath))
	if err != nil {
		return 0, err
	}
	seconds, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	return time.Duration(seconds * float64(time.Second)), nil
}
