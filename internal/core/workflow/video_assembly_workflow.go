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

// Package workflow combines the pipeline commands into the high-level
// orchestrations: story creation, clip generation, video assembly, and the
// end-to-end shorts pipeline.
package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/jaycherian/gcp-go-shorts-pipeline/internal/core/commands"
	"github.com/jaycherian/gcp-go-shorts-pipeline/internal/core/cor"
	"github.com/jaycherian/gcp-go-shorts-pipeline/internal/core/media"
	"github.com/jaycherian/gcp-go-shorts-pipeline/internal/core/model"
)

// VideoAssemblyWorkflow turns an ordered set of clips plus a narration
// track into one finished vertical video: validate, concatenate, mux the
// audio, burn subtitles (best effort), and finalize. The whole run either
// produces exactly one output file or nothing; intermediates are temp files
// cleaned up when the run's context closes.
type VideoAssemblyWorkflow struct {
	cor.BaseCommand
	workspace *media.Workspace
	runner    media.Runner
	chain     cor.Chain
}

// NewVideoAssemblyWorkflow builds the assembly chain over the given
// workspace and runner.
func NewVideoAssemblyWorkflow(workspace *media.Workspace, runner media.Runner) *VideoAssemblyWorkflow {
	out := &VideoAssemblyWorkflow{
		BaseCommand: *cor.NewBaseCommand("video-assembly-workflow"),
		workspace:   workspace,
		runner:      runner,
	}
	out.initializeChain()
	return out
}

func (m *VideoAssemblyWorkflow) initializeChain() {
	out := cor.NewBaseChain(m.GetName())
	out.AddCommand(commands.NewAssemblyValidator("assembly-validate"))
	out.AddCommand(commands.NewClipConcat("clip-concat", m.workspace, m.runner))
	out.AddCommand(commands.NewAudioMux("audio-mux", m.workspace, m.runner))
	out.AddCommand(commands.NewSubtitleBurner("subtitle-burn", m.workspace, m.runner))
	out.AddCommand(commands.NewAssemblyFinalizer("assembly-finalize", m.workspace, m.runner))
	m.chain = out
}

// Execute runs the assembly chain. The chain input is the AssemblyRequest.
func (m *VideoAssemblyWorkflow) Execute(context cor.Context) {
	m.chain.Execute(context)
}

// Assemble is the synchronous entry point used by the API handlers. It
// wraps the chain execution in a fresh workflow context and translates
// chain errors into the sentinel taxonomy.
func (m *VideoAssemblyWorkflow) Assemble(ctx context.Context, request *model.AssemblyRequest) (*model.AssemblyResult, error) {
	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(ctx)
	chainCtx.Add(cor.CtxIn, request)
	defer chainCtx.Close()

	m.Execute(chainCtx)

	if chainCtx.HasErrors() {
		for _, err := range chainCtx.GetErrors() {
			if errors.Is(err, model.ErrInvalidRequest) {
				return nil, err
			}
		}
		for _, err := range chainCtx.GetErrors() {
			return nil, fmt.Errorf("assembly workflow failed: %w", err)
		}
	}

	result, ok := chainCtx.Get(commands.ParamAssemblyResult).(*model.AssemblyResult)
	if !ok {
		return nil, fmt.Errorf("assembly produced no result: %w", model.ErrAssemblyFailed)
	}
	return result, nil
}
