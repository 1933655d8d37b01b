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

// Package testutil provides helpers and mock data for the test suite:
// test-runtime config loading and sample trigger payloads.
package testutil

import (
	"log"
	"os"
	"testing"

	"github.com/jaycherian/gcp-go-shorts-pipeline/internal/cloud"
)

type stateManager struct {
	config *cloud.Config
}

// state caches the test configuration so it loads once per test run.
var state = &stateManager{}

// HandleErr fails the test when err is non-nil.
func HandleErr(err error, t *testing.T) {
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

// GetTestTriggerMessageText returns the JSON payload of a pipeline trigger
// message, as published by an external scheduler.
func GetTestTriggerMessageText() string {
	return `{
  "style": "dark absurd small town",
  "universe": "snowy small town",
  "num_clips": 3,
  "clip_duration": 5,
  "add_subtitles": true
}`
}

// SetupOS points the configuration loader at the test runtime files.
func SetupOS() (err error) {
	err = os.Setenv(cloud.EnvConfigFilePrefix, "configs")
	if err != nil {
		return err
	}
	err = os.Setenv(cloud.EnvConfigRuntime, "test")
	return err
}

// GetConfig is the singleton accessor for the test configuration.
func GetConfig() *cloud.Config {
	if state.config == nil {
		err := SetupOS()
		if err != nil {
			log.Fatalf("failed to setup environment for test: %v\n", err)
		}
		config := cloud.NewConfig()
		cloud.LoadConfig(&config)
		state.config = config
	}
	return state.config
}
