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

// Package model defines the transient data structures that flow through
// the generation and assembly workflows: job specs and lifecycle state,
// clip sequences, subtitle cues, and the assembly request/result pair.
// Nothing in this package is persisted; every file reference is a handle
// into the shared filesystem workspace.
package model

import (
	"fmt"
	"time"
)

// JobState is the lifecycle state of a single generation job. Transitions
// are monotonic: Submitted -> Polling -> {Completed, Failed, TimedOut}.
type JobState string

const (
	JobStateSubmitted JobState = "SUBMITTED"
	JobStatePolling   JobState = "POLLING"
	JobStateCompleted JobState = "COMPLETED"
	JobStateFailed    JobState = "FAILED"
	JobStateTimedOut  JobState = "TIMED_OUT"
)

// jobStateRank orders states along the lifecycle so transitions can be
// checked for monotonicity. Terminal states share a rank.
var jobStateRank = map[JobState]int{
	JobStateSubmitted: 0,
	JobStatePolling:   1,
	JobStateCompleted: 2,
	JobStateFailed:    2,
	JobStateTimedOut:  2,
}

// IsTerminal reports whether the state ends the job lifecycle.
func (s JobState) IsTerminal() bool {
	return s == JobStateCompleted || s == JobStateFailed || s == JobStateTimedOut
}

// JobSpec is the immutable description of one unit of generative work,
// fixed at job creation.
type JobSpec struct {
	Prompt     string `json:"prompt"`
	FrameCount int    `json:"frame_count"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	FPS        int    `json:"fps"`
}

// GenerationJob tracks one generation job from submission to a terminal
// state. Artifacts is populated only once the job completes.
type GenerationJob struct {
	Id        string   `json:"id"`
	Spec      *JobSpec `json:"spec"`
	State     JobState `json:"state"`
	Artifacts []string `json:"artifacts"`
}

// NewGenerationJob creates a job in the Submitted state with the backend
// assigned identifier.
func NewGenerationJob(id string, spec *JobSpec) *GenerationJob {
	return &GenerationJob{
		Id:        id,
		Spec:      spec,
		State:     JobStateSubmitted,
		Artifacts: make([]string, 0),
	}
}

// Advance moves the job to the next lifecycle state. Moving backwards or
// out of a terminal state is rejected.
func (j *GenerationJob) Advance(next JobState) error {
	if j.State.IsTerminal() {
		return fmt.Errorf("job %s is already terminal in state %s", j.Id, j.State)
	}
	if jobStateRank[next] < jobStateRank[j.State] {
		return fmt.Errorf("job %s cannot transition from %s back to %s", j.Id, j.State, next)
	}
	j.State = next
	return nil
}

// ClipFailure records why a requested clip was dropped from the result.
type ClipFailure struct {
	ClipIndex int    `json:"clip_index"` // Zero-based index in request order.
	Reason    string `json:"reason"`
}

// ClipSequence is the ordered result of one orchestrator invocation. Clips
// holds artifact paths in request order; a failed or timed-out clip is
// simply absent from Clips and recorded in Dropped, so the sequence may be
// shorter than requested. NominalDuration is the requested clip count
// times the clip duration and is deliberately not recomputed when clips
// are dropped.
type ClipSequence struct {
	Clips           []string      `json:"clips"`
	Dropped         []ClipFailure `json:"dropped,omitempty"`
	NominalDuration float64       `json:"total_duration"`
	PromptUsed      string        `json:"prompt_used"`
}

// NewClipSequence creates an empty sequence for the given request shape.
func NewClipSequence(prompt string, numClips int, clipDuration int) *ClipSequence {
	return &ClipSequence{
		Clips:           make([]string, 0, numClips),
		Dropped:         make([]ClipFailure, 0),
		NominalDuration: float64(numClips * clipDuration),
		PromptUsed:      prompt,
	}
}

// SubtitleCue is one timed caption. Cues produced by the subtitle timer
// are contiguous and non-overlapping: each cue's EndTime equals the next
// cue's StartTime, and together they cover exactly [0, total duration).
type SubtitleCue struct {
	SequenceNumber int           `json:"sequence_number"` // 1-based SRT index.
	StartTime      time.Duration `json:"start_time"`
	EndTime        time.Duration `json:"end_time"`
	Text           string        `json:"text"`
}

// VideoRequest is the generation orchestrator input.
type VideoRequest struct {
	VisualPrompt      string `json:"visual_prompt"`
	NumClips          int    `json:"num_clips"`
	ClipDuration      int    `json:"clip_duration"` // Seconds per clip.
	AspectRatioWidth  int    `json:"aspect_ratio_width"`
	AspectRatioHeight int    `json:"aspect_ratio_height"`
	FPS               int    `json:"fps"`
}

// AssemblyRequest is the immutable input to one assembly run: ordered clip
// paths, one audio path, and the optional subtitle text. It is consumed
// exactly once.
type AssemblyRequest struct {
	ClipPaths    []string `json:"video_clips"`
	AudioPath    string   `json:"audio_path"`
	SubtitleText string   `json:"subtitle_text,omitempty"`
	AddSubtitles bool     `json:"add_subtitles"`
}

// AssemblyResult describes the single artifact produced by an assembly
// run. Subtitled is false when subtitles were not requested, the text was
// empty, or burn-in failed and the pipeline fell back to the muxed output.
type AssemblyResult struct {
	FinalPath string  `json:"final_video"`
	Duration  float64 `json:"duration"` // Seconds.
	ByteSize  int64   `json:"file_size"`
	Subtitled bool    `json:"subtitled"`
}

// Story is the narrative bundle produced by the story model: the text that
// is narrated, the hook used as a caption, and the visual prompt handed to
// the clip generator.
type Story struct {
	Title        string `json:"title"`
	StoryText    string `json:"story_text"`
	Hook         string `json:"hook"`
	VisualPrompt string `json:"visual_prompt"`
}

// VoiceTrack is the synthesized narration returned by the speech service.
type VoiceTrack struct {
	AudioPath string  `json:"audio_file"`
	Duration  float64 `json:"duration"` // Seconds.
}

// ShortRequest is the full-pipeline trigger payload: everything needed to
// produce one finished short. It arrives over HTTP or as a Pub/Sub message
// pushed by an external scheduler.
type ShortRequest struct {
	StyleHint    string `json:"style,omitempty"`
	Universe     string `json:"universe,omitempty"`
	NumClips     int    `json:"num_clips,omitempty"`
	ClipDuration int    `json:"clip_duration,omitempty"`
	AddSubtitles bool   `json:"add_subtitles"`
}

// ShortResult is the full-pipeline output: the story that was told, the
// assembled artifact, and where it was published.
type ShortResult struct {
	Story      *Story          `json:"story"`
	Clips      *ClipSequence   `json:"clips"`
	Assembly   *AssemblyResult `json:"assembly"`
	PublishURL string          `json:"publish_url,omitempty"`
}
