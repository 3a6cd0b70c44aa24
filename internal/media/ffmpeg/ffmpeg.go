// Package ffmpeg runs ffmpeg invocations built elsewhere and turns failures
// into services.ErrExternalTool errors carrying the tail of stderr.
package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"promptreel/internal/services"
)

// DefaultBinary is used when no binary is configured.
const DefaultBinary = "ffmpeg"

// Runner executes a binary with args. stderr is returned even on failure.
type Runner interface {
	Run(ctx context.Context, binary string, args []string) (stderr []byte, err error)
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, binary string, args []string) ([]byte, error)

// Run calls f.
func (f RunnerFunc) Run(ctx context.Context, binary string, args []string) ([]byte, error) {
	return f(ctx, binary, args)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run executes binary and captures stderr.
func (ExecRunner) Run(ctx context.Context, binary string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stderr.Bytes(), err
}

// Run executes binary through runner, wrapping failures for stage and op.
func Run(ctx context.Context, runner Runner, binary string, args []string, stage, op string) error {
	if runner == nil {
		runner = ExecRunner{}
	}
	if strings.TrimSpace(binary) == "" {
		binary = DefaultBinary
	}
	stderr, err := runner.Run(ctx, binary, args)
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s %s: %w", stage, op, ctxErr)
	}
	detail := Tail(string(stderr), 10)
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		detail = fmt.Sprintf("exit code %d: %s", exitErr.ExitCode(), detail)
	}
	return services.Wrap(services.ErrExternalTool, stage, op, detail, err)
}

// Tail keeps the last n non-empty lines of output.
func Tail(output string, n int) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			kept = append(kept, strings.TrimSpace(line))
		}
	}
	if len(kept) > n {
		kept = kept[len(kept)-n:]
	}
	return strings.Join(kept, "\n")
}

// EscapeFilterValue escapes a value (typically a path) for use as an option
// inside a filtergraph, e.g. subtitles=<value> or drawtext=textfile=<value>.
func EscapeFilterValue(value string) string {
	replacer := strings.NewReplacer(
		`\`, `\\\\`,
		`'`, `'\\\''`,
		`:`, `\\:`,
		`,`, `\,`,
		`[`, `\[`,
		`]`, `\]`,
		`;`, `\;`,
	)
	return replacer.Replace(value)
}
