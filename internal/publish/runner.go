package publish

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// maxOutputSize caps how much of the transfer tool's output is retained for
// error messages (1MB).
const maxOutputSize = 1 * 1024 * 1024

// Runner executes the transfer tool. It is an injected capability so the
// orchestrator is testable without the real tool installed.
// Run returns the process exit code (-1 when the process could not be
// started), the combined stdout/stderr, and an error for start failures.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (int, string, error)
}

// ExecRunner runs the tool as a real subprocess. There is no enforced
// timeout: a hung tool blocks the orchestration, which is an accepted
// limitation of the sequential design. Cancelling ctx kills the process.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) (int, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	buf := &bytes.Buffer{}
	cmd.Stdout = &limitedWriter{w: buf, limit: maxOutputSize}
	cmd.Stderr = &limitedWriter{w: buf, limit: maxOutputSize}

	if err := cmd.Start(); err != nil {
		if _, ok := err.(*exec.Error); ok {
			return -1, "", fmt.Errorf("%s not found in PATH: %w", name, err)
		}
		return -1, "", fmt.Errorf("failed to start %s: %w", name, err)
	}

	err := cmd.Wait()
	output := buf.String()

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return exitErr.ExitCode(), output, nil
		}
		return -1, output, fmt.Errorf("%s did not complete: %w", name, err)
	}
	return 0, output, nil
}

// limitedWriter discards bytes past its limit, keeping error-path memory
// bounded while letting the process run to completion.
type limitedWriter struct {
	w     *bytes.Buffer
	limit int
}

func (lw *limitedWriter) Write(p []byte) (int, error) {
	remaining := lw.limit - lw.w.Len()
	if remaining <= 0 {
		return len(p), nil
	}
	if len(p) > remaining {
		lw.w.Write(p[:remaining])
		return len(p), nil
	}
	return lw.w.Write(p)
}
