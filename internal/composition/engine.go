package composition

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"promptreel/internal/media/ffmpeg"
	"promptreel/internal/media/ffprobe"
	"promptreel/internal/services"
)

// Prober inspects media files.
type Prober interface {
	Inspect(ctx context.Context, path string) (ffprobe.Result, error)
}

// Result describes a composed file.
type Result struct {
	Path            string
	DurationSeconds float64
}

// Engine runs the two composition phases.
type Engine struct {
	binary string
	runner ffmpeg.Runner
	prober Prober
}

// NewEngine builds an engine. A nil runner executes ffmpeg directly.
func NewEngine(binary string, runner ffmpeg.Runner, prober Prober) *Engine {
	if runner == nil {
		runner = ffmpeg.ExecRunner{}
	}
	return &Engine{binary: binary, runner: runner, prober: prober}
}

// Probe describes path as a Phase A clip.
func (e *Engine) Probe(ctx context.Context, path string) (Clip, error) {
	if e.prober == nil {
		return Clip{}, services.Wrap(services.ErrConfiguration, "composition", "probe", "prober not configured", nil)
	}
	result, err := e.prober.Inspect(ctx, path)
	if err != nil {
		return Clip{}, err
	}
	if result.VideoStreamCount() == 0 {
		return Clip{}, services.Wrap(services.ErrValidation, "composition", "probe",
			fmt.Sprintf("%s has no video stream", filepath.Base(path)), nil)
	}
	return Clip{Path: path, DurationSeconds: result.DurationSeconds(), HasAudio: result.HasAudio()}, nil
}

// Concat runs Phase A and writes the joined clips to output.
func (e *Engine) Concat(ctx context.Context, clips []Clip, output string) (Result, error) {
	args, err := ConcatArgs(clips, output)
	if err != nil {
		return Result{}, err
	}
	if err := ffmpeg.Run(ctx, e.runner, e.binary, args, "composition", "concat"); err != nil {
		return Result{}, err
	}
	return e.result(ctx, output)
}

// Mix runs Phase B and writes the final video to output.
func (e *Engine) Mix(ctx context.Context, in MixInput, output string) (Result, error) {
	args, err := MixArgs(in, output)
	if err != nil {
		return Result{}, err
	}
	if err := ffmpeg.Run(ctx, e.runner, e.binary, args, "composition", "mix"); err != nil {
		return Result{}, err
	}
	return e.result(ctx, output)
}

func (e *Engine) result(ctx context.Context, output string) (Result, error) {
	info, err := os.Stat(output)
	if err != nil || info.Size() == 0 {
		return Result{}, services.Wrap(services.ErrEmptyResult, "composition", "output",
			fmt.Sprintf("%s missing or empty", filepath.Base(output)), err)
	}
	res := Result{Path: output}
	if e.prober != nil {
		probed, err := e.prober.Inspect(ctx, output)
		if err != nil {
			return Result{}, err
		}
		res.DurationSeconds = probed.DurationSeconds()
	}
	return res, nil
}
