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
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jaycherian/gcp-go-shorts-pipeline/internal/core/cor"
	"github.com/jaycherian/gcp-go-shorts-pipeline/internal/core/model"
)

// StoryJsonToStruct parses the model's raw JSON response into a Story and
// fills in fallbacks for fields the model left empty.
type StoryJsonToStruct struct {
	cor.BaseCommand
}

// NewStoryJsonToStruct creates the parsing command.
func NewStoryJsonToStruct(name string, outputParamName string) *StoryJsonToStruct {
	out := &StoryJsonToStruct{BaseCommand: *cor.NewBaseCommand(name)}
	out.OutputParamName = outputParamName
	return out
}

func (t *StoryJsonToStruct) Execute(context cor.Context) {
	raw := context.Get(t.GetInputParam()).(string)

	// Models occasionally wrap JSON in markdown fences despite the response
	// MIME type; strip them before unmarshaling.
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	story := &model.Story{}
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), story); err != nil {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), fmt.Errorf("failed to parse story response: %w", err))
		return
	}
	if story.StoryText == "" {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), fmt.Errorf("story response missing story_text"))
		return
	}
	if story.Hook == "" {
		story.Hook = firstSentence(story.StoryText)
	}
	if story.VisualPrompt == "" {
		story.VisualPrompt = story.Title + ", dark atmospheric lighting, cinematic, mysterious"
	}

	t.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(ParamStory, story)
	context.Add(t.GetOutputParam(), story)
}

func firstSentence(text string) string {
	if idx := strings.IndexAny(text, ".!?"); idx >= 0 {
		return strings.TrimSpace(text[:idx+1])
	}
	return strings.TrimSpace(text)
}
