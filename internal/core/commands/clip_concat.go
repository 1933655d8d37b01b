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

	"github.com/jaycherian/gcp-go-shorts-pipeline/internal/core/cor"
	"github.com/jaycherian/gcp-go-shorts-pipeline/internal/core/media"
	"github.com/jaycherian/gcp-go-shorts-pipeline/internal/core/model"
)

// ClipConcat joins the request's clips into one silent video using the
// concat demuxer with stream copy. Clips are first checked for container
// compatibility since nothing is re-encoded.
type ClipConcat struct {
	cor.BaseCommand
	workspace *media.Workspace
	runner    media.Runner
}

// NewClipConcat creates the concatenation command.
func NewClipConcat(name string, workspace *media.Workspace, runner media.Runner) *ClipConcat {
	out := &ClipConcat{
		BaseCommand: *cor.NewBaseCommand(name),
		workspace:   workspace,
		runner:      runner,
	}
	out.InputParamName = ParamAssemblyRequest
	out.OutputParamName = ParamConcatOutput
	return out
}

func (t *ClipConcat) Execute(context cor.Context) {
	request := context.Get(t.GetInputParam()).(*model.AssemblyRequest)

	if err := t.workspace.EnsureCompatible(request.ClipPaths); err != nil {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), err)
		return
	}

	listPath, err := t.workspace.WriteTempFile(".txt", []byte(media.ConcatListFile(request.ClipPaths)))
	if err != nil {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), fmt.Errorf("failed to write concat list: %v: %w", err, model.ErrAssemblyFailed))
		return
	}
	context.AddTempFile(listPath)

	outPath := t.workspace.TempFile(".mp4")
	context.AddTempFile(outPath)

	if err := t.runner.Run(context.GetContext(), media.NewConcatOperation(listPath, outPath)); err != nil {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), fmt.Errorf("%v: %w", err, model.ErrAssemblyFailed))
		return
	}

	t.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(t.GetOutputParam(), outPath)
}
