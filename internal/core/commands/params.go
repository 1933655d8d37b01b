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

// Package commands provides the concrete workflow steps of the shorts
// pipeline: assembly of clips into a finished video, story generation,
// narration synthesis, and publishing. Each command is one link in a
// chain; they communicate through well-known context parameter keys.
package commands

// Context parameter keys shared across the pipeline commands. Commands
// that produce secondary values (beyond the chain's piped output) store
// them under these keys so later commands can pick them up by name.
const (
	ParamShortRequest    = "__SHORT_REQUEST__"
	ParamStory           = "__STORY__"
	ParamVoiceTrack      = "__VOICE_TRACK__"
	ParamClipSequence    = "__CLIP_SEQUENCE__"
	ParamAssemblyRequest = "__ASSEMBLY_REQUEST__"
	ParamConcatOutput    = "__CONCAT_OUTPUT__"
	ParamMuxedOutput     = "__MUXED_OUTPUT__"
	ParamFinalOutput     = "__FINAL_OUTPUT__"
	ParamSubtitled       = "__SUBTITLED__"
	ParamAssemblyResult  = "__ASSEMBLY_RESULT__"
	ParamPublishURL      = "__PUBLISH_URL__"
)
