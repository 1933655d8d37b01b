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
	"text/template"

	"github.com/jaycherian/gcp-go-shorts-pipeline/internal/cloud"
	"github.com/jaycherian/gcp-go-shorts-pipeline/internal/core/commands"
	"github.com/jaycherian/gcp-go-shorts-pipeline/internal/core/cor"
	"github.com/jaycherian/gcp-go-shorts-pipeline/internal/core/model"
)

// StoryWorkflow generates the narrative bundle for one short: prompt the
// model, then parse its JSON into a Story.
type StoryWorkflow struct {
	cor.BaseCommand
	chain cor.Chain
}

// NewStoryWorkflow builds the story chain from the configured model and
// prompt template.
func NewStoryWorkflow(
	config *cloud.Config,
	model *cloud.QuotaAwareGenerativeAIModel,
	promptTemplate *template.Template) *StoryWorkflow {

	out := &StoryWorkflow{BaseCommand: *cor.NewBaseCommand("story-workflow")}

	chain := cor.NewBaseChain(out.GetName())
	chain.AddCommand(commands.NewStoryCreator("story-creator", config, model, promptTemplate))
	chain.AddCommand(commands.NewStoryJsonToStruct("story-json-to-struct", commands.ParamStory))
	out.chain = chain
	return out
}

// IsExecutable requires the short request to be present in the context.
func (m *StoryWorkflow) IsExecutable(context cor.Context) bool {
	return context.GetContext() != nil && context.Get(commands.ParamShortRequest) != nil
}

// Execute runs the story chain.
func (m *StoryWorkflow) Execute(context cor.Context) {
	m.chain.Execute(context)
}

// CreateStory is the synchronous entry point for generating a story outside
// the full pipeline.
func (m *StoryWorkflow) CreateStory(ctx context.Context, request *model.ShortRequest) (*model.Story, error) {
	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(ctx)
	chainCtx.Add(commands.ParamShortRequest, request)
	defer chainCtx.Close()

	m.Execute(chainCtx)

	if chainCtx.HasErrors() {
		for _, err := range chainCtx.GetErrors() {
			return nil, fmt.Errorf("story workflow failed: %w", err)
		}
	}
	story, ok := chainCtx.Get(commands.ParamStory).(*model.Story)
	if !ok {
		return nil, fmt.Errorf("story workflow produced no story")
	}
	return story, nil
}
