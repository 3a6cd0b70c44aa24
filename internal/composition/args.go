package composition

import (
	"fmt"
	"strconv"
	"strings"

	"promptreel/internal/media/ffmpeg"
	"promptreel/internal/services"
)

const (
	Width           = 1280
	Height          = 720
	FrameRate       = 30
	SampleRate      = 44100
	DefaultFontName = "Arial"
	ThumbnailWidth  = 320
	ThumbnailWindow = 5
	NarrationVolume = 1.0
	MusicVolume     = 0.2
	SubtitleSize    = 28
)

// Clip is one Phase A input.
type Clip struct {
	Path            string
	DurationSeconds float64
	HasAudio        bool
}

// MixInput names the Phase B inputs. Music, Subtitles and Thumbnail are
// optional.
type MixInput struct {
	Video     string
	Narration string
	Music     string
	Subtitles string
	Thumbnail string
	FontName  string
}

func baseArgs() []string {
	return []string{"-y", "-hide_banner", "-loglevel", "error"}
}

func encodeArgs() []string {
	return []string{
		"-c:v", "libx264",
		"-preset", "ultrafast",
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
	}
}

// ConcatArgs builds the Phase A invocation.
func ConcatArgs(clips []Clip, output string) ([]string, error) {
	if len(clips) == 0 {
		return nil, services.Wrap(services.ErrValidation, "composition", "concat", "at least one clip is required", nil)
	}
	args := baseArgs()
	for _, clip := range clips {
		args = append(args, "-i", clip.Path)
	}

	// Silent sources follow the clip inputs, one per clip lacking audio.
	audioSource := make([]string, len(clips))
	next := len(clips)
	for i, clip := range clips {
		if clip.HasAudio {
			audioSource[i] = fmt.Sprintf("%d:a", i)
			continue
		}
		if clip.DurationSeconds <= 0 {
			return nil, services.Wrap(services.ErrValidation, "composition", "concat",
				fmt.Sprintf("clip %d has no audio and unknown duration", i), nil)
		}
		args = append(args,
			"-f", "lavfi",
			"-t", formatSeconds(clip.DurationSeconds),
			"-i", fmt.Sprintf("anullsrc=channel_layout=stereo:sample_rate=%d", SampleRate),
		)
		audioSource[i] = fmt.Sprintf("%d:a", next)
		next++
	}

	var graph []string
	var pairs strings.Builder
	for i := range clips {
		graph = append(graph,
			fmt.Sprintf("[%d:v]scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2,setsar=1,fps=%d[v%d]",
				i, Width, Height, Width, Height, FrameRate, i),
			fmt.Sprintf("[%s]aresample=%d,aformat=sample_rates=%d:channel_layouts=stereo[a%d]",
				audioSource[i], SampleRate, SampleRate, i),
		)
		fmt.Fprintf(&pairs, "[v%d][a%d]", i, i)
	}
	graph = append(graph, fmt.Sprintf("%sconcat=n=%d:v=1:a=1[v][a]", pairs.String(), len(clips)))

	args = append(args, "-filter_complex", strings.Join(graph, ";"), "-map", "[v]", "-map", "[a]")
	args = append(args, encodeArgs()...)
	args = append(args, output)
	return args, nil
}

// SubtitleStyle returns the ASS force_style used when burning subtitles.
func SubtitleStyle(fontName string) string {
	if strings.TrimSpace(fontName) == "" {
		fontName = DefaultFontName
	}
	return fmt.Sprintf("FontName=%s,FontSize=%d,PrimaryColour=&H00FFFFFF,OutlineColour=&H00000000,BorderStyle=1,Outline=2",
		fontName, SubtitleSize)
}

// MixArgs builds the Phase B invocation.
func MixArgs(in MixInput, output string) ([]string, error) {
	if strings.TrimSpace(in.Video) == "" || strings.TrimSpace(in.Narration) == "" {
		return nil, services.Wrap(services.ErrValidation, "composition", "mix", "video and narration are required", nil)
	}
	args := append(baseArgs(), "-i", in.Video, "-i", in.Narration)
	next := 2
	musicIndex, thumbIndex := -1, -1
	if in.Music != "" {
		args = append(args, "-i", in.Music)
		musicIndex = next
		next++
	}
	if in.Thumbnail != "" {
		args = append(args, "-i", in.Thumbnail)
		thumbIndex = next
	}

	var graph []string
	videoLabel := "0:v"
	if in.Subtitles != "" {
		graph = append(graph, fmt.Sprintf("[%s]subtitles=%s:force_style='%s'[vsub]",
			videoLabel, ffmpeg.EscapeFilterValue(in.Subtitles), SubtitleStyle(in.FontName)))
		videoLabel = "vsub"
	}
	if thumbIndex >= 0 {
		graph = append(graph,
			fmt.Sprintf("[%d:v]scale=%d:-1[thumb]", thumbIndex, ThumbnailWidth),
			fmt.Sprintf("[%s][thumb]overlay=W-w-10:10:enable='lte(t,%d)'[vout]", videoLabel, ThumbnailWindow),
		)
		videoLabel = "vout"
	}
	audioLabel := "1:a"
	if musicIndex >= 0 {
		graph = append(graph,
			fmt.Sprintf("[1:a]volume=%s[narration]", formatVolume(NarrationVolume)),
			fmt.Sprintf("[%d:a]volume=%s[music]", musicIndex, formatVolume(MusicVolume)),
			"[narration][music]amix=inputs=2:duration=first:dropout_transition=2[aout]",
		)
		audioLabel = "aout"
	}

	if len(graph) > 0 {
		args = append(args, "-filter_complex", strings.Join(graph, ";"))
	}
	args = append(args, "-map", mapLabel(videoLabel), "-map", mapLabel(audioLabel))
	args = append(args, encodeArgs()...)
	args = append(args,
		"-s", fmt.Sprintf("%dx%d", Width, Height),
		"-r", strconv.Itoa(FrameRate),
		"-shortest",
		"-movflags", "+faststart",
		"-f", "mp4",
		output,
	)
	return args, nil
}

// mapLabel wraps filter outputs in brackets; stream specifiers stay bare.
func mapLabel(label string) string {
	if strings.Contains(label, ":") {
		return label
	}
	return "[" + label + "]"
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

func formatVolume(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
