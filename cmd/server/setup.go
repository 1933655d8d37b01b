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

package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"text/template"
	"time"

	"github.com/jaycherian/gcp-go-shorts-pipeline/internal/cloud"
	"github.com/jaycherian/gcp-go-shorts-pipeline/internal/core/jobs"
	"github.com/jaycherian/gcp-go-shorts-pipeline/internal/core/media"
	"github.com/jaycherian/gcp-go-shorts-pipeline/internal/core/services"
	"github.com/jaycherian/gcp-go-shorts-pipeline/internal/core/workflow"
)

// StoryModelName is the logical name of the agent model used for story
// generation, keyed into the agent_models config map.
const StoryModelName = "creative-flash"

type StateManager struct {
	config        *cloud.Config
	cloud         *cloud.ServiceClients
	shortsService *services.ShortsService
}

var state = &StateManager{}

func SetupOS() (err error) {
	err = os.Setenv(cloud.EnvConfigFilePrefix, "configs")
	if err != nil {
		return err
	}
	err = os.Setenv(cloud.EnvConfigRuntime, "local")
	return err
}

func GetConfig() *cloud.Config {
	if state.config == nil {
		err := SetupOS()
		if err != nil {
			log.Fatalf("failed to setup os: %v\n", err)
		}
		config := cloud.NewConfig()
		cloud.LoadConfig(&config)
		state.config = config
	}
	return state.config
}

func InitState(ctx context.Context) {
	config := GetConfig()

	cloudClients, err := cloud.NewCloudServiceClients(ctx, config)
	if err != nil {
		panic(err)
	}
	state.cloud = cloudClients

	workspace, err := media.NewWorkspace(
		config.Workspace.TempDir,
		config.Workspace.OutputDir,
		time.Duration(config.Workspace.MaxAgeInMinutes)*time.Minute)
	if err != nil {
		panic(err)
	}

	promptTemplate, err := template.New("story").Parse(config.PromptTemplates.StoryPrompt)
	if err != nil {
		log.Fatalf("failed to parse story prompt template: %v\n", err)
	}

	runner := media.NewExecRunner()
	poller := jobs.NewPoller(
		cloudClients.ComfyClient,
		time.Duration(config.Generation.PollIntervalInSeconds)*time.Second,
		time.Duration(config.Generation.TimeoutInSeconds)*time.Second,
		nil)

	storyModel := cloudClients.AgentModels[StoryModelName]

	generation := workflow.NewClipGenerationWorkflow(cloudClients.ComfyClient, poller, config.Generation.ArtifactDir)
	assembly := workflow.NewVideoAssemblyWorkflow(workspace, runner)
	story := workflow.NewStoryWorkflow(config, storyModel, promptTemplate)
	pipeline := workflow.NewShortsPipelineWorkflow(config, cloudClients, storyModel, promptTemplate, generation, assembly)

	state.shortsService = &services.ShortsService{
		StorageClient: cloudClients.StorageClient,
		IAMClient:     cloudClients.IAMClient,
		SignerEmail:   config.Application.SignerServiceAccountEmail,
		Workspace:     workspace,
		Story:         story,
		Generation:    generation,
		Assembly:      assembly,
		Pipeline:      pipeline,
	}

	StartSweeper(ctx, workspace)
	SetupListeners(config, cloudClients, pipeline, ctx)
}

// StartSweeper reclaims expired workspace files on a fixed cadence until
// the context is canceled.
func StartSweeper(ctx context.Context, workspace *media.Workspace) {
	go func() {
		ticker := time.NewTicker(workspace.MaxAge)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed, err := workspace.Sweep()
				if err != nil {
					slog.Warn("workspace sweep failed", "error", err)
					continue
				}
				if removed > 0 {
					slog.Info("workspace sweep complete", "removed", removed)
				}
			}
		}
	}()
}
