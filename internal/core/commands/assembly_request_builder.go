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
	"github.com/jaycherian/gcp-go-shorts-pipeline/internal/core/model"
)

// AssemblyRequestBuilder gathers the upstream stage outputs (generated
// clips, narration track, story) into the immutable request the assembly
// chain consumes. The subtitle text is the full narration text, so the
// captions match the audio word for word.
type AssemblyRequestBuilder struct {
	cor.BaseCommand
}

// NewAssemblyRequestBuilder creates the aggregation command.
func NewAssemblyRequestBuilder(name string) *AssemblyRequestBuilder {
	out := &AssemblyRequestBuilder{BaseCommand: *cor.NewBaseCommand(name)}
	out.InputParamName = ParamClipSequence
	return out
}

func (t *AssemblyRequestBuilder) Execute(context cor.Context) {
	clips := context.Get(t.GetInputParam()).(*model.ClipSequence)
	track := context.Get(ParamVoiceTrack).(*model.VoiceTrack)
	story := context.Get(ParamStory).(*model.Story)
	request, _ := context.Get(ParamShortRequest).(*model.ShortRequest)

	if len(clips.Clips) == 0 {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), fmt.Errorf("no clips survived generation: %w", model.ErrJobFailed))
		return
	}

	addSubtitles := true
	if request != nil {
		addSubtitles = request.AddSubtitles
	}

	assembly := &model.AssemblyRequest{
		ClipPaths:    clips.Clips,
		AudioPath:    track.AudioPath,
		SubtitleText: story.StoryText,
		AddSubtitles: addSubtitles,
	}

	t.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(t.GetOutputParam(), assembly)
}
