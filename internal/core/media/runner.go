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
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// Runner executes media Operations. The assembly workflow depends on this
// interface rather than on os/exec so tests can assert which operations ran
// without touching real binaries.
type Runner interface {
	// Run executes the operation, discarding stdout.
	Run(ctx context.Context, op Operation) error

	// Output executes the operation and returns its trimmed stdout.
	Output(ctx context.Context, op Operation) (string, error)
}

// ExecRunner runs operations as real subprocesses.
type ExecRunner struct{}

// NewExecRunner returns a Runner backed by os/exec.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

func (r *ExecRunner) Run(ctx context.Context, op Operation) error {
	_, err := r.run(ctx, op)
	return err
}

func (r *ExecRunner) Output(ctx context.Context, op Operation) (string, error) {
	out, err := r.run(ctx, op)
	return strings.TrimSpace(out), err
}

func (r *ExecRunner) run(ctx context.Context, op Operation) (string, error) {
	slog.Debug("running media operation", "operation", op.Name, "command", op.String())

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, op.Binary, op.Args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		// ffmpeg writes its diagnostics to stderr; fold the tail into the
		// error so failures are actionable from logs alone.
		detail := stderr.String()
		if len(detail) > 2048 {
			detail = detail[len(detail)-2048:]
		}
		return "", fmt.Errorf("%s operation failed: %w: %s", op.Name, err, strings.TrimSpace(detail))
	}
	return stdout.String(), nil
}
