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

	"github.com/jaycherian/gcp-go-shorts-pipeline/internal/cloud"
	"github.com/jaycherian/gcp-go-shorts-pipeline/internal/core/cor"
	"github.com/jaycherian/gcp-go-shorts-pipeline/internal/core/model"
)

// VoiceSynthesizer narrates the story text through the speech service and
// records the resulting audio track for the assembly stage.
type VoiceSynthesizer struct {
	cor.BaseCommand
	speech *cloud.SpeechClient
}

// NewVoiceSynthesizer creates the narration command.
func NewVoiceSynthesizer(name string, speech *cloud.SpeechClient) *VoiceSynthesizer {
	out := &VoiceSynthesizer{
		BaseCommand: *cor.NewBaseCommand(name),
		speech:      speech,
	}
	out.InputParamName = ParamStory
	out.OutputParamName = ParamVoiceTrack
	return out
}

func (t *VoiceSynthesizer) Execute(context cor.Context) {
	story := context.Get(t.GetInputParam()).(*model.Story)

	track, err := t.speech.Synthesize(context.GetContext(), story.StoryText, 1.0)
	if err != nil {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), fmt.Errorf("voice synthesis failed: %w", err))
		return
	}

	t.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(t.GetOutputParam(), track)
	context.Add(cor.CtxOut, track)
}
