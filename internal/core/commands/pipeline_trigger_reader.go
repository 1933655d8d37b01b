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

	"github.com/jaycherian/gcp-go-shorts-pipeline/internal/core/cor"
	"github.com/jaycherian/gcp-go-shorts-pipeline/internal/core/model"
)

// PipelineTriggerReader decodes a raw trigger payload (a Pub/Sub message or
// API body) into a ShortRequest and applies the configured defaults for
// anything the trigger left unset.
type PipelineTriggerReader struct {
	cor.BaseCommand
	defaultNumClips     int
	defaultClipDuration int
}

// NewPipelineTriggerReader creates the trigger decoding command.
func NewPipelineTriggerReader(name string, defaultNumClips int, defaultClipDuration int) *PipelineTriggerReader {
	return &PipelineTriggerReader{
		BaseCommand:         *cor.NewBaseCommand(name),
		defaultNumClips:     defaultNumClips,
		defaultClipDuration: defaultClipDuration,
	}
}

func (t *PipelineTriggerReader) Execute(context cor.Context) {
	raw := context.Get(t.GetInputParam()).(string)

	request := &model.ShortRequest{}
	if err := json.Unmarshal([]byte(raw), request); err != nil {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), fmt.Errorf("failed to decode trigger payload: %v: %w", err, model.ErrInvalidRequest))
		return
	}

	if request.NumClips <= 0 {
		request.NumClips = t.defaultNumClips
	}
	if request.ClipDuration <= 0 {
		request.ClipDuration = t.defaultClipDuration
	}
	if request.StyleHint == "" {
		request.StyleHint = "dark absurd small town"
	}
	if request.Universe == "" {
		request.Universe = "snowy small town"
	}

	t.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(ParamShortRequest, request)
	context.Add(t.GetOutputParam(), request)
}
