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

import "errors"

// Sentinel errors for the pipeline. Fatal kinds (ErrBackendUnavailable,
// ErrAssemblyFailed, ErrInvalidRequest) abort the enclosing operation and
// surface to the caller. Non-fatal kinds (ErrJobTimedOut, ErrJobFailed,
// ErrSubtitleBurnFailed) are absorbed and reported as a dropped clip or a
// subtitle-free fallback. Wrap them with fmt.Errorf("...: %w", ...) so
// callers can test with errors.Is.
var (
	// ErrBackendUnavailable means the generation backend could not be
	// reached at all; no jobs were attempted.
	ErrBackendUnavailable = errors.New("generation backend unavailable")

	// ErrJobTimedOut means a single job's poll loop exhausted its deadline.
	ErrJobTimedOut = errors.New("generation job timed out")

	// ErrJobFailed means the backend reported completion with no usable
	// artifacts.
	ErrJobFailed = errors.New("generation job produced no artifacts")

	// ErrAssemblyFailed means concatenation or audio muxing failed; the
	// whole assembly request is aborted.
	ErrAssemblyFailed = errors.New("video assembly failed")

	// ErrSubtitleBurnFailed means the subtitle overlay step failed; the
	// pipeline falls back to the subtitle-free output.
	ErrSubtitleBurnFailed = errors.New("subtitle burn-in failed")

	// ErrInvalidRequest means a required input was missing; the request is
	// rejected before any external call.
	ErrInvalidRequest = errors.New("invalid request")
)
