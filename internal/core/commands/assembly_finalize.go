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
	"fmt"
	"os"
	"strconv"

	"github.com/jaycherian/gcp-go-shorts-pipeline/internal/core/cor"
	"github.com/jaycherian/gcp-go-shorts-pipeline/internal/core/media"
	"github.com/jaycherian/gcp-go-shorts-pipeline/internal/core/model"
)

// AssemblyFinalizer promotes the finished video out of the temp dir into
// the workspace output dir and describes it: measured container duration
// and byte size. Its output is the AssemblyResult for the whole chain.
type AssemblyFinalizer struct {
	cor.BaseCommand
	workspace *media.Workspace
	runner    media.Runner
}

// NewAssemblyFinalizer creates the finalization command.
func NewAssemblyFinalizer(name string, workspace *media.Workspace, runner media.Runner) *AssemblyFinalizer {
	out := &AssemblyFinalizer{
		BaseCommand: *cor.NewBaseCommand(name),
		workspace:   workspace,
		runner:      runner,
	}
	out.InputParamName = ParamFinalOutput
	out.OutputParamName = ParamAssemblyResult
	return out
}

func (t *AssemblyFinalizer) Execute(context cor.Context) {
	videoPath := context.Get(t.GetInputParam()).(string)

	finalPath := t.workspace.OutputFile(".mp4")
	if err := t.workspace.Promote(videoPath, finalPath); err != nil {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), fmt.Errorf("failed to promote final video: %v: %w", err, model.ErrAssemblyFailed))
		return
	}

	info, err := os.Stat(finalPath)
	if err != nil {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), fmt.Errorf("failed to stat final video: %v: %w", err, model.ErrAssemblyFailed))
		return
	}

	duration := 0.0
	if raw, err := t.runner.Output(context.GetContext(), media.NewProbeOperation(finalPath)); err == nil {
		if seconds, perr := strconv.ParseFloat(raw, 64); perr == nil {
			duration = seconds
		}
	}

	subtitled, _ := context.Get(ParamSubtitled).(bool)
	result := &model.AssemblyResult{
		FinalPath: finalPath,
		Duration:  duration,
		ByteSize:  info.Size(),
		Subtitled: subtitled,
	}

	t.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(t.GetOutputParam(), result)
	context.Add(cor.CtxOut, result)
}
