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
	"os"

	"github.com/jaycherian/gcp-go-shorts-pipeline/internal/core/cor"
	"github.com/jaycherian/gcp-go-shorts-pipeline/internal/core/model"
)

// AssemblyValidator is the first command of the assembly chain. It rejects
// the request before any external tool runs: at least one clip, an audio
// track that exists on disk, and every referenced clip present.
type AssemblyValidator struct {
	cor.BaseCommand
}

// NewAssemblyValidator creates the validation command.
func NewAssemblyValidator(name string) *AssemblyValidator {
	return &AssemblyValidator{BaseCommand: *cor.NewBaseCommand(name)}
}

func (t *AssemblyValidator) Execute(context cor.Context) {
	request := context.Get(t.GetInputParam()).(*model.AssemblyRequest)

	if len(request.ClipPaths) == 0 {
		t.fail(context, fmt.Errorf("no video clips provided: %w", model.ErrInvalidRequest))
		return
	}
	if request.AudioPath == "" {
		t.fail(context, fmt.Errorf("no audio track provided: %w", model.ErrInvalidRequest))
		return
	}
	if _, err := os.Stat(request.AudioPath); err != nil {
		t.fail(context, fmt.Errorf("audio track %s not readable: %w", request.AudioPath, model.ErrInvalidRequest))
		return
	}
	for i, clip := range request.ClipPaths {
		if _, err := os.Stat(clip); err != nil {
			t.fail(context, fmt.Errorf("clip %d (%s) not readable: %w", i, clip, model.ErrInvalidRequest))
			return
		}
	}

	t.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(ParamAssemblyRequest, request)
	context.Add(t.GetOutputParam(), request)
}

func (t *AssemblyValidator) fail(context cor.Context, err error) {
	t.GetErrorCounter().Add(context.GetContext(), 1)
	context.AddError(t.GetName(), err)
}
