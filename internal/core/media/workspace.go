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

package media

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"

	"github.com/jaycherian/gcp-go-shorts-pipeline/internal/core/model"
)

// Workspace manages the shared scratch filesystem the pipeline stages hand
// files through. Temp files are uniquely named so concurrent assemblies
// never collide; Sweep reclaims anything older than MaxAge.
type Workspace struct {
	TempDir   string
	OutputDir string
	MaxAge    time.Duration
}

// NewWorkspace creates the directories if needed and returns the handle.
func NewWorkspace(tempDir string, outputDir string, maxAge time.Duration) (*Workspace, error) {
	for _, dir := range []string{tempDir, outputDir} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create workspace dir %s: %w", dir, err)
		}
	}
	return &Workspace{TempDir: tempDir, OutputDir: outputDir, MaxAge: maxAge}, nil
}

// TempFile returns a unique path in the temp dir with the given suffix. The
// file is not created; the path is handed to whatever writes it.
func (w *Workspace) TempFile(suffix string) string {
	return filepath.Join(w.TempDir, uuid.New().String()+suffix)
}

// OutputFile returns a unique path in the output dir with the given suffix.
func (w *Workspace) OutputFile(suffix string) string {
	return filepath.Join(w.OutputDir, uuid.New().String()+suffix)
}

// WriteTempFile writes data to a fresh temp path and returns it.
func (w *Workspace) WriteTempFile(suffix string, data []byte) (string, error) {
	path := w.TempFile(suffix)
	if err := os.WriteFile(path, data, 0o640); err != nil {
		return "", fmt.Errorf("failed to write temp file %s: %w", path, err)
	}
	return path, nil
}

// Promote moves a temp artifact to its final path. Rename is tried first;
// when the temp and output dirs sit on different filesystems it falls back
// to copy-and-delete.
func (w *Workspace) Promote(tempPath string, finalPath string) error {
	if err := os.Rename(tempPath, finalPath); err == nil {
		return nil
	}
	src, err := os.Open(tempPath)
	if err != nil {
		return fmt.Errorf("failed to open %s for promotion: %w", tempPath, err)
	}
	defer func() { _ = src.Close() }()

	dst, err := os.Create(finalPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", finalPath, err)
	}
	if _, err = io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return fmt.Errorf("failed to copy %s to %s: %w", tempPath, finalPath, err)
	}
	if err = dst.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", finalPath, err)
	}
	return os.Remove(tempPath)
}

// Sweep removes workspace files older than MaxAge and returns how many were
// deleted. Subdirectories are left alone.
func (w *Workspace) Sweep() (int, error) {
	cutoff := time.Now().Add(-w.MaxAge)
	removed := 0
	for _, dir := range []string{w.TempDir, w.OutputDir} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return removed, fmt.Errorf("failed to read workspace dir %s: %w", dir, err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				continue
			}
			if info.ModTime().Before(cutoff) {
				if err := os.Remove(filepath.Join(dir, entry.Name())); err == nil {
					removed++
				}
			}
		}
	}
	return removed, nil
}

// EnsureCompatible verifies that every clip exists and that all clips share
// one container type, since concatenation copies streams without
// re-encoding. Mixed or unrecognizable containers are rejected up front
// with model.ErrAssemblyFailed rather than left for ffmpeg to garble.
func (w *Workspace) EnsureCompatible(clipPaths []string) error {
	var first types.Type
	for i, path := range clipPaths {
		kind, err := sniffType(path)
		if err != nil {
			return fmt.Errorf("clip %d (%s) unreadable: %v: %w", i, path, err, model.ErrAssemblyFailed)
		}
		if kind == filetype.Unknown {
			return fmt.Errorf("clip %d (%s) has unrecognized container: %w", i, path, model.ErrAssemblyFailed)
		}
		if i == 0 {
			first = kind
			continue
		}
		if kind.MIME.Value != first.MIME.Value {
			return fmt.Errorf("clip %d (%s) container %s differs from %s: %w",
				i, path, kind.MIME.Value, first.MIME.Value, model.ErrAssemblyFailed)
		}
	}
	return nil
}

func sniffType(path string) (types.Type, error) {
	f, err := os.Open(path)
	if err != nil {
		return filetype.Unknown, err
	}
	defer func() { _ = f.Close() }()

	// 261 bytes covers every magic number filetype knows about.
	head := make([]byte, 261)
	n, err := f.Read(head)
	if err != nil && err != io.EOF {
		return filetype.Unknown, err
	}
	return filetype.Match(head[:n])
}
