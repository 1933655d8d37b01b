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
	"strings"
)

// Subtitle burn-in style, fixed for the vertical-short format: white text,
// black outline, bottom-centered.
const burnInStyle = "Fontsize=24,PrimaryColour=&Hffffff,OutlineColour=&H000000,Outline=2,Alignment=2"

// Operation is one fully-resolved external media command: a binary name and
// its argument vector. Building an Operation performs no I/O; handing it to
// a Runner does.
type Operation struct {
	Name   string
	Binary string
	Args   []string
}

// String renders the operation roughly as it would appear on a shell
// command line, for logs.
func (o Operation) String() string {
	return o.Binary + " " + strings.Join(o.Args, " ")
}

// NewConcatOperation builds the clip concatenation command. listPath is a
// concat-demuxer list file naming the clips in order; streams are copied,
// not re-encoded, so every listed clip must share codec parameters.
func NewConcatOperation(listPath string, outPath string) Operation {
	return Operation{
		Name:   "concat",
		Binary: "ffmpeg",
		Args: []string{
			"-y",
			"-f", "concat",
			"-safe", "0",
			"-i", listPath,
			"-c", "copy",
			outPath,
		},
	}
}

// NewMuxOperation builds the audio mux command: video stream copied from
// the first input, audio encoded to AAC from the second, output truncated
// to the shorter of the two.
func NewMuxOperation(videoPath string, audioPath string, outPath string) Operation {
	return Operation{
		Name:   "mux",
		Binary: "ffmpeg",
		Args: []string{
			"-y",
			"-i", videoPath,
			"-i", audioPath,
			"-c:v", "copy",
			"-c:a", "aac",
			"-map", "0:v:0",
			"-map", "1:a:0",
			"-shortest",
			outPath,
		},
	}
}

// NewBurnInOperation builds the subtitle overlay command. Burning re-encodes
// the video stream by necessity; audio is copied through untouched.
func NewBurnInOperation(videoPath string, srtPath string, outPath string) Operation {
	return Operation{
		Name:   "burn",
		Binary: "ffmpeg",
		Args: []string{
			"-y",
			"-i", videoPath,
			"-vf", fmt.Sprintf("subtitles=%s:force_style='%s'", srtPath, burnInStyle),
			"-c:a", "copy",
			outPath,
		},
	}
}

// NewProbeOperation builds the duration probe. Its stdout is the container
// duration in seconds as a bare decimal string.
func NewProbeOperation(mediaPath string) Operation {
	return Operation{
		Name:   "probe",
		Binary: "ffprobe",
		Args: []string{
			"-v", "error",
			"-show_entries", "format=duration",
			"-of", "default=noprint_wrappers=1:nokey=1",
			mediaPath,
		},
	}
}

// ConcatListFile renders the concat-demuxer list document for the given
// clip paths, one "file '<path>'" line per clip, in order. Single quotes in
// paths are escaped the way the demuxer expects.
func ConcatListFile(clipPaths []string) string {
	var b strings.Builder
	for _, p := range clipPaths {
		escaped := strings.ReplaceAll(p, "'", `'\''`)
		fmt.Fprintf(&b, "file '%s'\n", escaped)
	}
	return b.String()
}
