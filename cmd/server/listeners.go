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
	"log/slog"

	"github.com/jaycherian/gcp-go-shorts-pipeline/internal/cloud"
	"github.com/jaycherian/gcp-go-shorts-pipeline/internal/core/workflow"
)

// ShortsTriggerTopic is the logical name of the subscription that carries
// production triggers, keyed into the topic_subscriptions config map.
const ShortsTriggerTopic = "ShortsTrigger"

// SetupListeners binds the pipeline workflow to the trigger subscription so
// an external scheduler can drive production by publishing messages.
func SetupListeners(config *cloud.Config, cloudClients *cloud.ServiceClients, pipeline *workflow.ShortsPipelineWorkflow, ctx context.Context) {
	listener, ok := cloudClients.PubSubListeners[ShortsTriggerTopic]
	if !ok {
		slog.Warn("no trigger subscription configured, pipeline is API-only", "expected", ShortsTriggerTopic)
		return
	}
	listener.SetCommand(pipeline)
	listener.Listen(ctx)
}
