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
	"encoding/json"
	"fmt"
	"text/template"

	"github.com/jaycherian/gcp-go-shorts-pipeline/internal/cloud"
	"github.com/jaycherian/gcp-go-shorts-pipeline/internal/core/commands"
	"github.com/jaycherian/gcp-go-shorts-pipeline/internal/core/cor"
	"github.com/jaycherian/gcp-go-shorts-pipeline/internal/core/model"
)

// ShortsPipelineWorkflow is the end-to-end orchestration: trigger payload
// in, published short out. It nests the story, generation, and assembly
// workflows into one chain so a Pub/Sub message or API call drives the
// whole production.
type ShortsPipelineWorkflow struct {
	cor.BaseCommand
	chain cor.Chain
}

// NewShortsPipelineWorkflow wires the full pipeline chain.
func NewShortsPipelineWorkflow(
	config *cloud.Config,
	serviceClients *cloud.ServiceClients,
	storyModel *cloud.QuotaAwareGenerativeAIModel,
	promptTemplate *template.Template,
	generation *ClipGenerationWorkflow,
	assembly *VideoAssemblyWorkflow) *ShortsPipelineWorkflow {

	out := &ShortsPipelineWorkflow{BaseCommand: *cor.NewBaseCommand("shorts-pipeline-workflow")}

	chain := cor.NewBaseChain(out.GetName())
	chain.AddCommand(commands.NewPipelineTriggerReader("pipeline-trigger-reader", DefaultNumClips, DefaultClipDuration))
	chain.AddCommand(commands.NewStoryCreator("story-creator", config, storyModel, promptTemplate))
	chain.AddCommand(commands.NewStoryJsonToStruct("story-json-to-struct", commands.ParamStory))
	chain.AddCommand(commands.NewVoiceSynthesizer("voice-synthesis", serviceClients.SpeechClient))
	chain.AddCommand(generation)
	chain.AddCommand(commands.NewAssemblyRequestBuilder("assembly-request-builder"))
	chain.AddCommand(assembly)
	chain.AddCommand(commands.NewShortPublisher("short-publisher", serviceClients.StorageClient, config.Storage.PublishBucket))
	out.chain = chain
	return out
}

// Execute runs the pipeline chain. The chain input is the raw trigger
// payload as a JSON string.
func (m *ShortsPipelineWorkflow) Execute(context cor.Context) {
	m.chain.Execute(context)
}

// Produce runs the pipeline synchronously for an API-originated request
// and collects the stage outputs into a ShortResult.
func (m *ShortsPipelineWorkflow) Produce(ctx context.Context, request *model.ShortRequest) (*model.ShortResult, error) {
	payload, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(ctx)
	chainCtx.Add(cor.CtxIn, string(payload))
	defer chainCtx.Close()

	m.Execute(chainCtx)

	if chainCtx.HasErrors() {
		for _, err := range chainCtx.GetErrors() {
			return nil, fmt.Errorf("pipeline failed: %w", err)
		}
	}

	result := &model.ShortResult{}
	if story, ok := chainCtx.Get(commands.ParamStory).(*model.Story); ok {
		result.Story = story
	}
	if clips, ok := chainCtx.Get(commands.ParamClipSequence).(*model.ClipSequence); ok {
		result.Clips = clips
	}
	if assembled, ok := chainCtx.Get(commands.ParamAssemblyResult).(*model.AssemblyResult); ok {
		result.Assembly = assembled
	}
	if url, ok := chainCtx.Get(commands.ParamPublishURL).(string); ok {
		result.PublishURL = url
	}
	return result, nil
}
