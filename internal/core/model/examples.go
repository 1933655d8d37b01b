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

package model

// GetExampleStory returns a well-formed Story used for few-shot prompting:
// embedding a complete example in the prompt keeps the model's JSON output
// on structure.
func GetExampleStory() *Story {
	return &Story{
		Title:     "The Lighthouse That Blinks Twice",
		StoryText: "Every night at nine, the old lighthouse blinks twice. Nobody programmed it to. The keeper died in 1987, and the light should have gone dark with him. Last Tuesday, a fisherman blinked his boat lights twice in reply. The lighthouse has not stopped signaling since.",
		Hook:      "Every night at nine, the old lighthouse blinks twice. Nobody knows why.",
		VisualPrompt: "abandoned lighthouse on a rocky coast at night, beam cutting through fog, " +
			"dark atmospheric lighting, cinematic, mysterious",
	}
}
