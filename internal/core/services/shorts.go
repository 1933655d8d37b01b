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

// Package services exposes the pipeline's operations as a plain facade for
// the API handlers: story creation, clip generation, assembly, the full
// pipeline, workspace maintenance, and signed streaming URLs.
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	credentials "cloud.google.com/go/iam/credentials/apiv1"
	credentialspb "cloud.google.com/go/iam/credentials/apiv1/credentialspb"
	"cloud.google.com/go/storage"

	"github.com/jaycherian/gcp-go-shorts-pipeline/internal/core/media"
	"github.com/jaycherian/gcp-go-shorts-pipeline/internal/core/model"
	"github.com/jaycherian/gcp-go-shorts-pipeline/internal/core/workflow"
)

// ShortsService bundles the workflows behind one entry point. Handlers
// depend on this facade, not on the chains underneath.
type ShortsService struct {
	StorageClient *storage.Client
	IAMClient     *credentials.IamCredentialsClient
	SignerEmail   string
	Workspace     *media.Workspace
	Story         *workflow.StoryWorkflow
	Generation    *workflow.ClipGenerationWorkflow
	Assembly      *workflow.VideoAssemblyWorkflow
	Pipeline      *workflow.ShortsPipelineWorkflow
}

// CreateStory generates a narrative bundle without producing video.
func (s *ShortsService) CreateStory(ctx context.Context, request *model.ShortRequest) (*model.Story, error) {
	return s.Story.CreateStory(ctx, request)
}

// GenerateClips runs the generation orchestrator for one video request.
func (s *ShortsService) GenerateClips(ctx context.Context, request *model.VideoRequest) (*model.ClipSequence, error) {
	return s.Generation.Generate(ctx, request)
}

// Assemble runs the assembly workflow for one request.
func (s *ShortsService) Assemble(ctx context.Context, request *model.AssemblyRequest) (*model.AssemblyResult, error) {
	return s.Assembly.Assemble(ctx, request)
}

// Produce runs the full pipeline: story, narration, clips, assembly,
// publish.
func (s *ShortsService) Produce(ctx context.Context, request *model.ShortRequest) (*model.ShortResult, error) {
	return s.Pipeline.Produce(ctx, request)
}

// Sweep reclaims expired workspace files and returns how many were
// removed.
func (s *ShortsService) Sweep() (int, error) {
	return s.Workspace.Sweep()
}

// GenerateSignedURL creates a time-limited URL for streaming a published
// short directly from GCS. Signing goes through the IAM Credentials API
// using the configured signer service account, so no private key ships
// with the binary.
func (s *ShortsService) GenerateSignedURL(ctx context.Context, gcsURI string, expires time.Duration) (string, error) {
	path := strings.TrimPrefix(gcsURI, "gs://")
	if path == gcsURI {
		return "", fmt.Errorf("invalid GCS URI format: %s", gcsURI)
	}
	parts := strings.SplitN(path, "/", 2)
	if len(parts) < 2 {
		return "", fmt.Errorf("invalid GCS URI: unable to determine bucket and object from %s", gcsURI)
	}
	bucketName := parts[0]
	objectName := parts[1]

	opts := &storage.SignedURLOptions{
		Scheme:         storage.SigningSchemeV4,
		Method:         "GET",
		Expires:        time.Now().Add(expires),
		GoogleAccessID: s.SignerEmail,
		SignBytes: func(b []byte) ([]byte, error) {
			req := &credentialspb.SignBlobRequest{
				Name:    fmt.Sprintf("projects/-/serviceAccounts/%s", s.SignerEmail),
				Payload: b,
			}
			resp, err := s.IAMClient.SignBlob(ctx, req)
			if err != nil {
				return nil, fmt.Errorf("IAMClient.SignBlob: %w", err)
			}
			return resp.SignedBlob, nil
		},
	}

	u, err := s.StorageClient.Bucket(bucketName).SignedURL(objectName, opts)
	if err != nil {
		return "", fmt.Errorf("Bucket(%q).Object(%q).SignedURL: %w", bucketName, objectName, err)
	}
	return u, nil
}
