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
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"cloud.google.com/go/storage"

	"github.com/jaycherian/gcp-go-shorts-pipeline/internal/core/cor"
	"github.com/jaycherian/gcp-go-shorts-pipeline/internal/core/model"
)

// ShortPublisher streams the assembled video into the publish bucket. The
// object name is the file's base name, so workspace uniqueness carries over
// to GCS. The local file stays in the workspace output dir until the sweep
// reclaims it; publishing does not consume it.
type ShortPublisher struct {
	cor.BaseCommand
	client *storage.Client
	bucket string
}

// NewShortPublisher creates the publish command.
func NewShortPublisher(name string, client *storage.Client, bucket string) *ShortPublisher {
	out := &ShortPublisher{
		BaseCommand: *cor.NewBaseCommand(name),
		client:      client,
		bucket:      bucket,
	}
	out.InputParamName = ParamAssemblyResult
	out.OutputParamName = ParamPublishURL
	return out
}

func (c *ShortPublisher) Execute(context cor.Context) {
	result := context.Get(c.GetInputParam()).(*model.AssemblyResult)
	name := filepath.Base(result.FinalPath)

	dat, err := os.Open(result.FinalPath)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("failed to open file %s: %w", result.FinalPath, err))
		return
	}
	defer func() { _ = dat.Close() }()

	obj := c.client.Bucket(c.bucket).Object(name)
	writer := obj.NewWriter(context.GetContext())
	writer.ContentType = "video/mp4"

	if _, err := io.Copy(writer, dat); err != nil {
		_ = writer.Close()
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("failed to upload %s: %w", name, err))
		return
	}
	// Close finalizes the upload; an error here means the object was not
	// fully created.
	if err := writer.Close(); err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("failed to finalize upload of %s: %w", name, err))
		return
	}

	url := fmt.Sprintf("gs://%s/%s", c.bucket, obj.ObjectName())
	slog.Info("published short", "url", url, "bytes", result.ByteSize)

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), url)
	context.Add(cor.CtxOut, url)
}
