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

// AudioMux lays the narration track under the concatenated video. The video
// stream is copied; audio is encoded to AAC; the output stops at the
// shorter of the two inputs.
type AudioMux struct {
	cor.BaseCommand
	workspace *media.Workspace
	runner    media.Runner
}

// NewAudioMux creates the muxing command.
func NewAudioMux(name string, workspace *media.Workspace, runner media.Runner) *AudioMux {
	out := &AudioMux{
		BaseCommand: *cor.NewBaseCommand(name),
		workspace:   workspace,
		runner:      runner,
	}
	out.InputParamName = ParamConcatOutput
	out.OutputParamName = ParamMuxedOutput
	return out
}

func (t *AudioMux) Execute(context cor.Context) {
	videoPath := context.Get(t.GetInputParam()).(string)
	request := context.Get(ParamAssemblyRequest).(*model.AssemblyRequest)

	outPath := t.workspace.TempFile(".mp4")
	context.AddTempFile(outPath)

	if err := t.runner.Run(context.GetContext(), media.NewMuxOperation(videoPath, request.AudioPath, outPath)); err != nil {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), fmt.Errorf("%v: %w", err, model.ErrAssemblyFailed))
		return
	}

	t.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(t.GetOutputParam(), outPath)
}
