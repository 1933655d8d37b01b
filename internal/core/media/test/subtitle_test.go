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
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jaycherian/gcp-go-shorts-pipeline/internal/core/media"
)

func TestBuildCuesSplitsEvenly(t *testing.T) {
	// 12 words over 12 seconds: two cues of ten and two words, each
	// covering half the track.
	text := "one two three four five six seven eight nine ten eleven twelve"
	cues := media.BuildCues(text, 12*time.Second)

	assert.Equal(t, 2, len(cues))
	assert.Equal(t, 1, cues[0].SequenceNumber)
	assert.Equal(t, time.Duration(0), cues[0].StartTime)
	assert.Equal(t, 6*time.Second, cues[0].EndTime)
	assert.Equal(t, "one two three four five six seven eight nine ten", cues[0].Text)
	assert.Equal(t, 2, cues[1].SequenceNumber)
	assert.Equal(t, 6*time.Second, cues[1].StartTime)
	assert.Equal(t, 12*time.Second, cues[1].EndTime)
	assert.Equal(t, "eleven twelve", cues[1].Text)
}

func TestBuildCuesContiguous(t *testing.T) {
	// An awkward duration that does not divide evenly still yields cues
	// with no gaps or overlaps, ending exactly at the total.
	words := make([]string, 25)
	for i := range words {
		words[i] = "word"
	}
	total := 17*time.Second + 333*time.Millisecond
	cues := media.BuildCues(strings.Join(words, " "), total)

	assert.Equal(t, 3, len(cues))
	assert.Equal(t, time.Duration(0), cues[0].StartTime)
	for i := 0; i < len(cues)-1; i++ {
		assert.Equal(t, cues[i].EndTime, cues[i+1].StartTime)
	}
	assert.Equal(t, total, cues[len(cues)-1].EndTime)
}

func TestBuildCuesCollapsesWhitespace(t *testing.T) {
	cues := media.BuildCues("  hello \t world\n", 4*time.Second)
	assert.Equal(t, 1, len(cues))
	assert.Equal(t, "hello world", cues[0].Text)
}

func TestBuildCuesEmptyInput(t *testing.T) {
	assert.Equal(t, 0, len(media.BuildCues("", 10*time.Second)))
	assert.Equal(t, 0, len(media.BuildCues("   \n\t ", 10*time.Second)))
	assert.Equal(t, 0, len(media.BuildCues("some words", 0)))
}

func TestFormatTimestamp(t *testing.T) {
	assert.Equal(t, "00:00:00,000", media.FormatTimestamp(0))
	assert.Equal(t, "00:00:06,000", media.FormatTimestamp(6*time.Second))
	assert.Equal(t, "00:01:02,345", media.FormatTimestamp(time.Minute+2*time.Second+345*time.Millisecond))
	assert.Equal(t, "01:01:01,001", media.FormatTimestamp(time.Hour+time.Minute+time.Second+time.Millisecond))
	assert.Equal(t, "00:00:00,000", media.FormatTimestamp(-5*time.Second))
}

func TestWriteSRT(t *testing.T) {
	cues := media.BuildCues("one two three four five six seven eight nine ten eleven twelve", 12*time.Second)

	var b strings.Builder
	err := media.WriteSRT(&b, cues)
	assert.NoError(t, err)

	want := "1\n00:00:00,000 --> 00:00:06,000\none two three four five six seven eight nine ten\n\n" +
		"2\n00:00:06,000 --> 00:00:12,000\neleven twelve\n\n"
	assert.Equal(t, want, b.String())
}
