// Package thumbnail renders a 1280x720 title card with ffmpeg: light text
// centred on a dark background.
package thumbnail

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"promptreel/internal/media/ffmpeg"
	"promptreel/internal/services"
	"promptreel/internal/textutil"
)

const (
	Width         = 1280
	Height        = 720
	MaxTextLength = 50
	background    = "0x333333"
	fontSize      = 60
)

// Renderer draws title cards.
type Renderer struct {
	binary string
	runner ffmpeg.Runner
}

// NewRenderer builds a renderer for the ffmpeg binary. A nil runner executes
// the process.
func NewRenderer(binary string, runner ffmpeg.Runner) *Renderer {
	return &Renderer{binary: binary, runner: runner}
}

// DisplayText truncates text to MaxTextLength runes with an ellipsis.
func DisplayText(text string) string {
	return textutil.TruncateWithEllipsis(strings.Join(strings.Fields(text), " "), MaxTextLength)
}

// BuildArgs returns the ffmpeg arguments that draw textFile's contents onto a
// solid background and write a single PNG frame to output.
func BuildArgs(textFile, output string) []string {
	draw := fmt.Sprintf(
		"drawtext=textfile=%s:fontcolor=white:fontsize=%d:x=(w-text_w)/2:y=(h-text_h)/2:shadowcolor=black:shadowx=3:shadowy=3",
		ffmpeg.EscapeFilterValue(textFile), fontSize)
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-f", "lavfi",
		"-i", fmt.Sprintf("color=c=%s:s=%dx%d:d=1", background, Width, Height),
		"-vf", draw,
		"-frames:v", "1",
		output,
	}
}

// Render draws text into dir and returns the PNG path. Empty text or an
// empty output file is an empty result.
func (r *Renderer) Render(ctx context.Context, text, dir string) (string, error) {
	display := DisplayText(text)
	if display == "" {
		return "", services.Wrap(services.ErrEmptyResult, "thumbnail", "render", "no text to draw", nil)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("thumbnail: ensure dir: %w", err)
	}
	textFile := filepath.Join(dir, "thumbnail.txt")
	if err := os.WriteFile(textFile, []byte(display), 0o644); err != nil {
		return "", fmt.Errorf("thumbnail: write text: %w", err)
	}
	output := filepath.Join(dir, "thumbnail.png")
	if err := ffmpeg.Run(ctx, r.runner, r.binary, BuildArgs(textFile, output), "thumbnail", "render"); err != nil {
		return "", err
	}
	info, err := os.Stat(output)
	if err != nil || info.Size() == 0 {
		return "", services.Wrap(services.ErrEmptyResult, "thumbnail", "render", "ffmpeg produced no image", err)
	}
	return output, nil
}
