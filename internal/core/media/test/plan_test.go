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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jaycherian/gcp-go-shorts-pipeline/internal/core/media"
)

func TestConcatOperation(t *testing.T) {
	op := media.NewConcatOperation("/tmp/list.txt", "/tmp/out.mp4")
	assert.Equal(t, "concat", op.Name)
	assert.Equal(t, "ffmpeg", op.Binary)
	assert.Equal(t, []string{
		"-y", "-f", "concat", "-safe", "0", "-i", "/tmp/list.txt", "-c", "copy", "/tmp/out.mp4",
	}, op.Args)
}

func TestMuxOperation(t *testing.T) {
	op := media.NewMuxOperation("/tmp/v.mp4", "/tmp/a.wav", "/tmp/out.mp4")
	assert.Equal(t, "mux", op.Name)
	assert.Equal(t, []string{
		"-y", "-i", "/tmp/v.mp4", "-i", "/tmp/a.wav",
		"-c:v", "copy", "-c:a", "aac",
		"-map", "0:v:0", "-map", "1:a:0",
		"-shortest", "/tmp/out.mp4",
	}, op.Args)
}

func TestBurnInOperation(t *testing.T) {
	op := media.NewBurnInOperation("/tmp/v.mp4", "/tmp/subs.srt", "/tmp/out.mp4")
	assert.Equal(t, "burn", op.Name)
	assert.Equal(t, "ffmpeg", op.Binary)
	assert.Equal(t, "-vf", op.Args[3])
	assert.Equal(t,
		"subtitles=/tmp/subs.srt:force_style='Fontsize=24,PrimaryColour=&Hffffff,OutlineColour=&H000000,Outline=2,Alignment=2'",
		op.Args[4])
	// Audio passes through untouched.
	assert.Equal(t, []string{"-c:a", "copy", "/tmp/out.mp4"}, op.Args[5:])
}

func TestProbeOperation(t *testing.T) {
	op := media.NewProbeOperation("/tmp/final.mp4")
	assert.Equal(t, "probe", op.Name)
	assert.Equal(t, "ffprobe", op.Binary)
	assert.Equal(t, []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		"/tmp/final.mp4",
	}, op.Args)
}

func TestConcatListFile(t *testing.T) {
	list := media.ConcatListFile([]string{"/tmp/a.mp4", "/tmp/b.mp4"})
	assert.Equal(t, "file '/tmp/a.mp4'\nfile '/tmp/b.mp4'\n", list)
}

func TestConcatListFileEscapesQuotes(t *testing.T) {
	list := media.ConcatListFile([]string{"/tmp/it's.mp4"})
	assert.Equal(t, `file '/tmp/it'\''s.mp4'`+"\n", list)
}
