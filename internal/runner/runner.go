// Package runner invokes the configured import-sorting tool against a
// snapshot of the document and captures its diff output. It owns every
// process-execution detail the diff-to-edit core must not depend on:
// temporary files, timeouts, exit-code policy, and stderr handling.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/sortpatch/sortpatch/internal/config"
	"github.com/sortpatch/sortpatch/internal/logging"
)

const maxStderrBytes = 16 * 1024

// ToolError is a structured failure from the external tool: a missing
// binary, a timeout, or an exit code the provider's template does not
// treat as success.
type ToolError struct {
	Command  string
	ExitCode int
	Stderr   string
	Message  string
}

// Error implements the error interface.
func (e *ToolError) Error() string {
	if e == nil {
		return ""
	}
	var builder strings.Builder
	builder.WriteString(e.Message)
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		builder.WriteString(": ")
		builder.WriteString(stderr)
	}
	return builder.String()
}

// Runner executes provider command templates.
type Runner struct {
	log     logging.Logger
	timeout time.Duration
}

// New builds a Runner. A nil logger discards output.
func New(log logging.Logger, timeout time.Duration) *Runner {
	if log == nil {
		log = logging.Discard{}
	}
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &Runner{log: log, timeout: timeout}
}

// Run writes the document content to a temporary sibling of docPath, runs
// the template's command against it, and returns captured stdout. The
// temporary file lives in the document's directory so the tool picks up
// per-project configuration (isort reads .isort.cfg/pyproject.toml relative
// to the file), and it is removed on every exit path.
func (r *Runner) Run(ctx context.Context, docPath, content string, tmpl config.CommandTemplate) (string, error) {
	if strings.TrimSpace(tmpl.Command) == "" {
		return "", &ToolError{Message: "runner: empty command template"}
	}

	tmpPath, cleanup, err := writeTempDocument(docPath, content)
	if err != nil {
		return "", err
	}
	defer cleanup()

	args := make([]string, len(tmpl.Args))
	for i, arg := range tmpl.Args {
		args[i] = strings.ReplaceAll(arg, config.FilePlaceholder, tmpPath)
	}

	runCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, tmpl.Command, args...)
	cmd.Dir = filepath.Dir(tmpPath)

	var stdoutBuf bytes.Buffer
	var stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	r.log.Debug(ctx, "running formatter",
		logging.F("command", tmpl.Command),
		logging.F("args", strings.Join(args, " ")))

	runErr := cmd.Run()
	stderr := truncateStderr(stderrBuf.String())

	if runCtx.Err() == context.DeadlineExceeded {
		return "", &ToolError{
			Command: tmpl.Command,
			Stderr:  stderr,
			Message: fmt.Sprintf("runner: %s timed out after %s", tmpl.Command, r.timeout),
		}
	}

	exitCode := 0
	var exitErr *exec.ExitError
	switch {
	case runErr == nil:
	case errors.As(runErr, &exitErr):
		exitCode = exitErr.ExitCode()
	default:
		return "", &ToolError{
			Command: tmpl.Command,
			Stderr:  stderr,
			Message: fmt.Sprintf("runner: %s: %v", tmpl.Command, runErr),
		}
	}

	if !tmpl.ExitOK(exitCode) {
		return "", &ToolError{
			Command:  tmpl.Command,
			ExitCode: exitCode,
			Stderr:   stderr,
			Message:  fmt.Sprintf("runner: %s exited with status %d", tmpl.Command, exitCode),
		}
	}

	// Some tools write progress or deprecation notices to stderr even on
	// success; that is noise, not failure.
	if stderr != "" {
		r.log.Warn(ctx, "formatter wrote to stderr",
			logging.F("command", tmpl.Command),
			logging.F("stderr", stderr))
	}

	return stdoutBuf.String(), nil
}

// writeTempDocument puts content into a hidden temp file next to docPath.
// The caller must invoke cleanup exactly once.
func writeTempDocument(docPath, content string) (string, func(), error) {
	dir := filepath.Dir(docPath)
	ext := filepath.Ext(docPath)
	tmp, err := os.CreateTemp(dir, ".sortpatch-*"+ext)
	if err != nil {
		return "", nil, fmt.Errorf("runner: create temp file in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpPath) }

	if _, err := tmp.WriteString(content); err != nil {
		_ = tmp.Close()
		cleanup()
		return "", nil, fmt.Errorf("runner: write temp file %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("runner: close temp file %s: %w", tmpPath, err)
	}
	return tmpPath, cleanup, nil
}

func truncateStderr(stderr string) string {
	if len(stderr) <= maxStderrBytes {
		return stderr
	}
	return stderr[:maxStderrBytes] + "\n[truncated]"
}
