package whisperx

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"promptreel/internal/language"
	"promptreel/internal/services"
)

// Service provides WhisperX transcription capabilities.
type Service struct {
	cfg Config
	run CommandRunner
}

// NewService creates a WhisperX service with the given configuration.
func NewService(cfg Config) *Service {
	return &Service{cfg: cfg, run: execWithTorchEnv}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner CommandRunner) {
	if runner != nil {
		s.run = runner
	}
}

// Model returns the configured model name for logging.
func (s *Service) Model() string {
	if s.cfg.Model != "" {
		return s.cfg.Model
	}
	return DefaultModel
}

// CUDAEnabled returns whether CUDA is enabled.
func (s *Service) CUDAEnabled() bool {
	return s.cfg.CUDAEnabled
}

func execWithTorchEnv(ctx context.Context, name string, args ...string) ([]byte, error) {
	// Torch 2.6 changed torch.load default to weights_only=true, breaking WhisperX/pyannote.
	if os.Getenv("TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD") == "" {
		_ = os.Setenv("TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD", "1")
	}
	return ExecRunner(ctx, name, args...)
}

// Transcribe runs WhisperX on a WAV file and returns the SRT path it wrote
// into outputDir.
func (s *Service) Transcribe(ctx context.Context, source, outputDir string) (string, error) {
	if source == "" {
		return "", services.Wrap(services.ErrValidation, "transcribe", "whisperx", "source path required", nil)
	}
	if outputDir == "" {
		outputDir = filepath.Dir(source)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("transcribe: ensure output dir: %w", err)
	}

	if output, err := s.run(ctx, UVXCommand, s.BuildArgs(source, outputDir)...); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "transcribe", "whisperx", tail(string(output)), err)
	}

	baseName := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	srtPath := filepath.Join(outputDir, baseName+".srt")
	if _, err := os.Stat(srtPath); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "transcribe", "whisperx",
			"subtitle file missing after run", err)
	}
	return srtPath, nil
}

// BuildArgs constructs the uvx command arguments for WhisperX.
func (s *Service) BuildArgs(source, outputDir string) []string {
	args := make([]string, 0, 24)
	if s.cfg.CUDAEnabled {
		args = append(args,
			"--index-url", CUDAIndexURL,
			"--extra-index-url", PypiIndexURL,
		)
	} else {
		args = append(args, "--index-url", PypiIndexURL)
	}

	args = append(args,
		"whisperx",
		source,
		"--model", s.Model(),
		"--batch_size", BatchSize,
		"--output_dir", outputDir,
		"--output_format", OutputFormat,
		"--segment_resolution", SegmentResolution,
		"--vad_method", VADMethodSilero,
	)
	if lang := language.ToISO2(s.cfg.Language); lang != "" {
		args = append(args, "--language", lang)
	}
	if s.cfg.CUDAEnabled {
		args = append(args, "--device", CUDADevice)
	} else {
		args = append(args, "--device", CPUDevice, "--compute_type", CPUComputeType)
	}
	return args
}
