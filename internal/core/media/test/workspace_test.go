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

package media_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jaycherian/gcp-go-shorts-pipeline/internal/core/media"
	"github.com/jaycherian/gcp-go-shorts-pipeline/internal/core/model"
)

// mp4Header is the minimal ftyp box prefix that identifies an ISO media
// container.
var mp4Header = []byte{0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p', 'i', 's', 'o', 'm', 0x00, 0x00, 0x02, 0x00}

// aviHeader identifies a RIFF AVI container.
var aviHeader = []byte{'R', 'I', 'F', 'F', 0x24, 0x00, 0x00, 0x00, 'A', 'V', 'I', ' '}

func newTestWorkspace(t *testing.T, maxAge time.Duration) *media.Workspace {
	w, err := media.NewWorkspace(t.TempDir(), t.TempDir(), maxAge)
	assert.NoError(t, err)
	return w
}

func writeClip(t *testing.T, w *media.Workspace, header []byte) string {
	path, err := w.WriteTempFile(".mp4", header)
	assert.NoError(t, err)
	return path
}

func TestTempFilePathsAreUnique(t *testing.T) {
	w := newTestWorkspace(t, time.Hour)

	a := w.TempFile(".mp4")
	b := w.TempFile(".mp4")
	assert.NotEqual(t, a, b)
	assert.Equal(t, ".mp4", filepath.Ext(a))
	assert.Equal(t, w.TempDir, filepath.Dir(a))
	assert.Equal(t, w.OutputDir, filepath.Dir(w.OutputFile(".srt")))
}

func TestPromoteMovesFile(t *testing.T) {
	w := newTestWorkspace(t, time.Hour)

	temp, err := w.WriteTempFile(".mp4", []byte("payload"))
	assert.NoError(t, err)

	final := w.OutputFile(".mp4")
	assert.NoError(t, w.Promote(temp, final))

	data, err := os.ReadFile(final)
	assert.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	_, err = os.Stat(temp)
	assert.True(t, os.IsNotExist(err))
}

func TestSweepRemovesOnlyExpiredFiles(t *testing.T) {
	w := newTestWorkspace(t, 10*time.Minute)

	stale, err := w.WriteTempFile(".mp4", []byte("old"))
	assert.NoError(t, err)
	fresh, err := w.WriteTempFile(".mp4", []byte("new"))
	assert.NoError(t, err)

	old := time.Now().Add(-time.Hour)
	assert.NoError(t, os.Chtimes(stale, old, old))

	removed, err := w.Sweep()
	assert.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = os.Stat(stale)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(fresh)
	assert.NoError(t, err)
}

func TestEnsureCompatibleAcceptsMatchingContainers(t *testing.T) {
	w := newTestWorkspace(t, time.Hour)

	a := writeClip(t, w, mp4Header)
	b := writeClip(t, w, mp4Header)
	assert.NoError(t, w.EnsureCompatible([]string{a, b}))
}

func TestEnsureCompatibleRejectsMixedContainers(t *testing.T) {
	w := newTestWorkspace(t, time.Hour)

	a := writeClip(t, w, mp4Header)
	b := writeClip(t, w, aviHeader)

	err := w.EnsureCompatible([]string{a, b})
	assert.True(t, errors.Is(err, model.ErrAssemblyFailed))
}

func TestEnsureCompatibleRejectsUnknownContainers(t *testing.T) {
	w := newTestWorkspace(t, time.Hour)

	junk := writeClip(t, w, make([]byte, 64))
	err := w.EnsureCompatible([]string{junk})
	assert.True(t, errors.Is(err, model.ErrAssemblyFailed))
}
