package whisperx

import (
	"context"
	"os/exec"
	"strings"

	"promptreel/internal/services"
)

// CommandRunner executes name with args and returns its combined output.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// ExecRunner runs commands with os/exec.
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	return cmd.CombinedOutput()
}

// NormalizeArgs builds the ffmpeg arguments that convert source into a mono
// 16 kHz signed 16-bit WAV at dest.
func NormalizeArgs(source, dest string) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-vn",
		"-sn",
		"-dn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		"-f", "wav",
		dest,
	}
}

// NormalizeAudio converts source to the WhisperX input format.
func NormalizeAudio(ctx context.Context, run CommandRunner, ffmpegBinary, source, dest string) error {
	if run == nil {
		run = ExecRunner
	}
	if ffmpegBinary == "" {
		ffmpegBinary = FFmpegCommand
	}
	if output, err := run(ctx, ffmpegBinary, NormalizeArgs(source, dest)...); err != nil {
		return services.Wrap(services.ErrExternalTool, "normalize", "ffmpeg",
			tail(string(output)), err)
	}
	return nil
}

// tail keeps the last lines of tool output for error messages.
func tail(output string) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	const keep = 8
	if len(lines) > keep {
		lines = lines[len(lines)-keep:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
