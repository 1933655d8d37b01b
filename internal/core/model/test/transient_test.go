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

package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jaycherian/gcp-go-shorts-pipeline/internal/core/model"
)

func TestJobLifecycleIsMonotonic(t *testing.T) {
	job := model.NewGenerationJob("job-1", &model.JobSpec{Prompt: "p"})
	assert.Equal(t, model.JobStateSubmitted, job.State)

	assert.NoError(t, job.Advance(model.JobStatePolling))
	assert.Equal(t, model.JobStatePolling, job.State)

	// Moving backwards is rejected.
	assert.Error(t, job.Advance(model.JobStateSubmitted))
	assert.Equal(t, model.JobStatePolling, job.State)

	assert.NoError(t, job.Advance(model.JobStateCompleted))

	// Terminal states are final.
	assert.Error(t, job.Advance(model.JobStatePolling))
	assert.Error(t, job.Advance(model.JobStateFailed))
	assert.Equal(t, model.JobStateCompleted, job.State)
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, model.JobStateSubmitted.IsTerminal())
	assert.False(t, model.JobStatePolling.IsTerminal())
	assert.True(t, model.JobStateCompleted.IsTerminal())
	assert.True(t, model.JobStateFailed.IsTerminal())
	assert.True(t, model.JobStateTimedOut.IsTerminal())
}

func TestNewClipSequenceShape(t *testing.T) {
	sequence := model.NewClipSequence("a quiet harbor at dusk", 5, 5)
	assert.Equal(t, 0, len(sequence.Clips))
	assert.Equal(t, 0, len(sequence.Dropped))
	assert.Equal(t, 25.0, sequence.NominalDuration)
	assert.Equal(t, "a quiet harbor at dusk", sequence.PromptUsed)
}
