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

package commands_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jaycherian/gcp-go-shorts-pipeline/internal/core/commands"
	"github.com/jaycherian/gcp-go-shorts-pipeline/internal/core/cor"
	"github.com/jaycherian/gcp-go-shorts-pipeline/internal/core/model"
	"github.com/jaycherian/gcp-go-shorts-pipeline/internal/testutil"
)

func newChainContext(input any) cor.Context {
	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(context.Background())
	chainCtx.Add(cor.CtxIn, input)
	return chainCtx
}

func TestPipelineTriggerReaderParsesPayload(t *testing.T) {
	command := commands.NewPipelineTriggerReader("trigger-reader", 5, 5)
	chainCtx := newChainContext(testutil.GetTestTriggerMessageText())

	command.Execute(chainCtx)
	assert.False(t, chainCtx.HasErrors())

	request := chainCtx.Get(commands.ParamShortRequest).(*model.ShortRequest)
	assert.Equal(t, "dark absurd small town", request.StyleHint)
	assert.Equal(t, "snowy small town", request.Universe)
	assert.Equal(t, 3, request.NumClips)
	assert.Equal(t, 5, request.ClipDuration)
	assert.True(t, request.AddSubtitles)
}

func TestPipelineTriggerReaderAppliesDefaults(t *testing.T) {
	command := commands.NewPipelineTriggerReader("trigger-reader", 5, 5)
	chainCtx := newChainContext(`{}`)

	command.Execute(chainCtx)
	assert.False(t, chainCtx.HasErrors())

	request := chainCtx.Get(commands.ParamShortRequest).(*model.ShortRequest)
	assert.Equal(t, 5, request.NumClips)
	assert.Equal(t, 5, request.ClipDuration)
	assert.Equal(t, "dark absurd small town", request.StyleHint)
	assert.Equal(t, "snowy small town", request.Universe)
}

func TestPipelineTriggerReaderRejectsMalformedPayload(t *testing.T) {
	command := commands.NewPipelineTriggerReader("trigger-reader", 5, 5)
	chainCtx := newChainContext(`not json at all`)

	command.Execute(chainCtx)
	assert.True(t, chainCtx.HasErrors())
}

func TestStoryJsonToStructStripsMarkdownFences(t *testing.T) {
	command := commands.NewStoryJsonToStruct("story-to-struct", commands.ParamStory)
	chainCtx := newChainContext("```json\n" + `{
		"title": "The Last Light",
		"story_text": "The keeper climbed the stairs one final time. The light refused him.",
		"hook": "",
		"visual_prompt": ""
	}` + "\n```")

	command.Execute(chainCtx)
	assert.False(t, chainCtx.HasErrors())

	story := chainCtx.Get(commands.ParamStory).(*model.Story)
	assert.Equal(t, "The Last Light", story.Title)
	// Empty fields fall back to derived values.
	assert.Equal(t, "The keeper climbed the stairs one final time.", story.Hook)
	assert.Equal(t, "The Last Light, dark atmospheric lighting, cinematic, mysterious", story.VisualPrompt)
}

func TestStoryJsonToStructRejectsMissingStoryText(t *testing.T) {
	command := commands.NewStoryJsonToStruct("story-to-struct", commands.ParamStory)
	chainCtx := newChainContext(`{"title": "Empty"}`)

	command.Execute(chainCtx)
	assert.True(t, chainCtx.HasErrors())
}

func TestAssemblyRequestBuilderRequiresSurvivingClips(t *testing.T) {
	command := commands.NewAssemblyRequestBuilder("assembly-request-builder")

	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(context.Background())
	chainCtx.Add(commands.ParamStory, &model.Story{StoryText: "some narration"})
	chainCtx.Add(commands.ParamVoiceTrack, &model.VoiceTrack{AudioPath: "/tmp/narration.wav"})
	chainCtx.Add(commands.ParamClipSequence, &model.ClipSequence{
		Clips:   []string{},
		Dropped: []model.ClipFailure{{ClipIndex: 0, Reason: "timed out"}},
	})

	command.Execute(chainCtx)
	assert.True(t, chainCtx.HasErrors())
}
