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

// Package cloud holds the application configuration structures, loaded from
// TOML files, and the clients for every external service the pipeline talks
// to: Google Cloud Storage, Pub/Sub, the Vertex AI generative models, the
// generation backend, and the speech synthesis service.
package cloud

import "google.golang.org/genai"

// DefaultSafetySettings relaxes the content safety thresholds for the story
// models. Prompts originate from our own templates, not end users.
var DefaultSafetySettings = []*genai.SafetySetting{
	{
		Category:  genai.HarmCategoryDangerousContent,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategoryHarassment,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategoryHateSpeech,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategorySexuallyExplicit,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
}

// PromptTemplates holds the text templates sent to the story models.
type PromptTemplates struct {
	StoryPrompt string `toml:"story"` // Template for generating the story bundle; takes style and universe.
}

// VertexAiLLMModel configures one Vertex AI large language model.
type VertexAiLLMModel struct {
	Model              string  `toml:"model"`
	SystemInstructions string  `toml:"system_instructions"`
	Temperature        float32 `toml:"temperature"`
	TopP               float32 `toml:"top_p"`
	TopK               float32 `toml:"top_k"`
	MaxTokens          int32   `toml:"max_tokens"`
	OutputFormat       string  `toml:"output_format"` // Response MIME type, e.g. "application/json".
	RateLimit          int     `toml:"rate_limit"`    // Requests per second.
}

// TopicSubscription configures one Pub/Sub subscription.
type TopicSubscription struct {
	Name             string `toml:"name"`
	DeadLetterTopic  string `toml:"dead_letter_topic"`
	TimeoutInSeconds int    `toml:"timeout_in_seconds"`
}

// GenerationBackend configures the video generation service: where it
// lives, how its jobs are polled, and the sampling parameters baked into
// every submitted workflow graph.
type GenerationBackend struct {
	BaseURL               string `toml:"base_url"`
	ArtifactDir           string `toml:"artifact_dir"` // Local dir where the backend writes its outputs.
	PollIntervalInSeconds int    `toml:"poll_interval_in_seconds"`
	TimeoutInSeconds      int    `toml:"timeout_in_seconds"`
	FPS                   int    `toml:"fps"`
	Checkpoint            string `toml:"checkpoint"` // Model checkpoint file name on the backend.
	Steps                 int    `toml:"steps"`
	CFGScale              float64 `toml:"cfg_scale"`
	NegativePrompt        string `toml:"negative_prompt"`
}

// SpeechService configures the narration synthesis endpoint.
type SpeechService struct {
	BaseURL          string `toml:"base_url"`
	Voice            string `toml:"voice"`
	TimeoutInSeconds int    `toml:"timeout_in_seconds"`
}

// Workspace configures the shared scratch filesystem.
type Workspace struct {
	TempDir         string `toml:"temp_dir"`
	OutputDir       string `toml:"output_dir"`
	MaxAgeInMinutes int    `toml:"max_age_in_minutes"`
}

// Storage configures where finished shorts are published.
type Storage struct {
	PublishBucket         string `toml:"publish_bucket"`
	SignedURLTTLInMinutes int    `toml:"signed_url_ttl_in_minutes"`
}

// Config is the root configuration container, loaded from TOML files.
type Config struct {
	Application struct {
		Name                      string `toml:"name"`
		GoogleProjectId           string `toml:"google_project_id"`
		GoogleLocation            string `toml:"location"`
		ThreadPoolSize            int    `toml:"thread_pool_size"`
		SignerServiceAccountEmail string `toml:"signer_service_account_email"`
	} `toml:"application"`
	Workspace          Workspace                    `toml:"workspace"`
	Generation         GenerationBackend            `toml:"generation"`
	Speech             SpeechService                `toml:"speech"`
	Storage            Storage                      `toml:"storage"`
	PromptTemplates    PromptTemplates              `toml:"prompt_templates"`
	TopicSubscriptions map[string]TopicSubscription `toml:"topic_subscriptions"`
	AgentModels        map[string]VertexAiLLMModel  `toml:"agent_models"`
}

// NewConfig creates a Config with its map fields initialized so the TOML
// decoder can populate them without nil checks.
func NewConfig() *Config {
	return &Config{
		TopicSubscriptions: make(map[string]TopicSubscription),
		AgentModels:        make(map[string]VertexAiLLMModel),
	}
}
