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

// Package media holds the deterministic, side-effect-free planning half of
// video assembly (subtitle timing, ffmpeg command plans) plus the thin
// executors that carry plans out against the filesystem.
package media

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jaycherian/gcp-go-shorts-pipeline/internal/core/model"
)

// DefaultWordsPerCue is the maximum word count of a single subtitle cue.
const DefaultWordsPerCue = 10

// BuildCues splits the text into cues of at most DefaultWordsPerCue words
// and distributes the total duration across them in proportion to nothing
// but cue count: every cue gets an equal slice. The cues are contiguous and
// non-overlapping and together cover exactly [0, total). Whitespace of any
// kind separates words; runs of whitespace collapse. Empty or
// whitespace-only text yields no cues.
func BuildCues(text string, total time.Duration) []model.SubtitleCue {
	words := strings.Fields(text)
	if len(words) == 0 || total <= 0 {
		return []model.SubtitleCue{}
	}

	numCues := (len(words) + DefaultWordsPerCue - 1) / DefaultWordsPerCue
	cues := make([]model.SubtitleCue, 0, numCues)

	for i := 0; i < numCues; i++ {
		lo := i * DefaultWordsPerCue
		hi := lo + DefaultWordsPerCue
		if hi > len(words) {
			hi = len(words)
		}

		// Integer math on the boundary index keeps adjacent cues exactly
		// contiguous: cue i ends where cue i+1 starts, with no rounding gap.
		start := time.Duration(int64(total) * int64(i) / int64(numCues))
		end := time.Duration(int64(total) * int64(i+1) / int64(numCues))

		cues = append(cues, model.SubtitleCue{
			SequenceNumber: i + 1,
			StartTime:      start,
			EndTime:        end,
			Text:           strings.Join(words[lo:hi], " "),
		})
	}
	return cues
}

// FormatTimestamp renders a duration in the SRT timestamp form
// HH:MM:SS,mmm. Durations of 100 hours or more are not expected and will
// simply widen the hour field.
func FormatTimestamp(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	ms := d.Milliseconds()
	h := ms / 3_600_000
	ms -= h * 3_600_000
	m := ms / 60_000
	ms -= m * 60_000
	s := ms / 1_000
	ms -= s * 1_000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

// WriteSRT writes the cues as a SubRip document: sequence number line,
// timestamp line, text line, blank separator. Cue order is taken as given.
func WriteSRT(w io.Writer, cues []model.SubtitleCue) error {
	for _, cue := range cues {
		_, err := fmt.Fprintf(w, "%d\n%s --> %s\n%s\n\n",
			cue.SequenceNumber,
			FormatTimestamp(cue.StartTime),
			FormatTimestamp(cue.EndTime),
			cue.Text)
		if err != nil {
			return fmt.Errorf("failed to write subtitle cue %d: %w", cue.SequenceNumber, err)
		}
	}
	return nil
}
