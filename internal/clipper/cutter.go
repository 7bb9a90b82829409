// Package clipper builds transcoder invocations for cutting clips and
// extracting audio segments, and owns the temp files each invocation needs.
package clipper

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clipforge/clipforge/internal/domain/captions"
	"github.com/clipforge/clipforge/internal/domain/subtitles"
	"github.com/clipforge/clipforge/internal/fonts"
	"github.com/clipforge/clipforge/internal/ports"
	"github.com/clipforge/clipforge/internal/types"
)

type Cutter struct {
	tc      ports.Transcoder
	prober  ports.Prober
	reg     *fonts.Registry
	scratch string
	log     *zap.Logger
}

func NewCutter(tc ports.Transcoder, prober ports.Prober, reg *fonts.Registry, scratchDir string, log *zap.Logger) *Cutter {
	if scratchDir == "" {
		scratchDir = os.TempDir()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Cutter{tc: tc, prober: prober, reg: reg, scratch: scratchDir, log: log}
}

// Cut extracts [start,end] of src into outDir. Without an aspect transform
// or overlapping captions it requests a direct stream copy; otherwise it
// re-encodes with a single combined filter graph so aspect conversion and
// caption burn-in never cost a double encode. Every temp file created for
// the invocation is removed before returning, on success and on failure.
func (c *Cutter) Cut(ctx context.Context, src string, start, end time.Duration, outDir string, opts ports.CutOptions) (types.Artifact, error) {
	if end <= start {
		return types.Artifact{}, fmt.Errorf("cut: end %s <= start %s", end, start)
	}
	clipDur := end - start

	var local []captions.Line
	if opts.BurnCaptions {
		local = captions.Rebase(opts.Lines, start, clipDur)
	}
	wantsAspect := opts.Aspect != "" && opts.Aspect != ports.AspectOriginal
	needEncode := wantsAspect || len(local) > 0

	outName := outputName(start, end, opts.Platform, ".mp4")
	outPath := filepath.Join(outDir, outName)

	// Input-side seek: placing -ss before -i makes ffmpeg seek by keyframe
	// index instead of decoding from zero, which is materially faster on
	// long source files.
	args := []string{
		"-y",
		"-ss", fmtSeconds(start),
		"-i", src,
		"-t", fmtSeconds(clipDur),
	}

	var temps []string
	defer func() { removeAll(c.log, temps) }()

	if !needEncode {
		args = append(args, "-c", "copy", outPath)
	} else {
		filterArgs, created, err := c.buildFilterArgs(ctx, src, local, clipDur, opts)
		temps = append(temps, created...)
		if err != nil {
			return types.Artifact{}, err
		}
		args = append(args, filterArgs...)
		args = append(args,
			"-c:v", "libx264",
			"-preset", "veryfast",
			"-crf", "18",
			"-c:a", "aac",
			"-b:a", "192k",
			outPath,
		)
	}

	stderr, err := c.tc.Run(ctx, args)
	if err != nil {
		return types.Artifact{}, &TranscodeError{Op: "cut clip", Stderr: stderr, Err: err}
	}
	info, err := os.Stat(outPath)
	if err != nil {
		return types.Artifact{}, &TranscodeError{Op: "cut clip", Stderr: stderr, Err: errors.New("output file missing")}
	}

	return types.Artifact{Path: outPath, Name: outName, Size: info.Size(), Duration: clipDur}, nil
}

// buildFilterArgs assembles the single filter graph for a re-encode and
// writes whatever temp files it needs. It always returns the created paths,
// even on error, so the caller can clean up.
func (c *Cutter) buildFilterArgs(ctx context.Context, src string, local []captions.Line, clipDur time.Duration, opts ports.CutOptions) (args []string, created []string, err error) {
	aspectFilters, dims, err := c.aspectStage(ctx, src, opts.Aspect)
	if err != nil {
		return nil, nil, err
	}

	if len(local) == 0 {
		return []string{"-vf", strings.Join(aspectFilters, ",")}, nil, nil
	}

	switch opts.Strategy {
	case ports.StrategySubtitles:
		style, err := subtitles.BuildForceStyle(opts.Style, c.reg, dims)
		if err != nil {
			return nil, nil, err
		}
		vtt := subtitles.RenderVTT(local, clipDur)
		vttPath := filepath.Join(c.scratch, fmt.Sprintf("captions-%s.vtt", uuid.NewString()[:8]))
		if err := os.WriteFile(vttPath, []byte(vtt), 0o644); err != nil {
			return nil, nil, fmt.Errorf("write subtitle file: %w", err)
		}
		created = append(created, vttPath)
		chain := append(aspectFilters, subtitles.BurnFilter(vttPath, c.reg.Dir(), style))
		return []string{"-vf", strings.Join(chain, ",")}, created, nil

	default: // drawtext
		spec, err := subtitles.BuildDrawtext(local, opts.Style, c.reg, dims, clipDur, c.scratch)
		if err != nil {
			return nil, nil, err
		}
		for _, tf := range spec.TextFiles {
			if werr := os.WriteFile(tf.Path, []byte(tf.Content), 0o644); werr != nil {
				return nil, created, fmt.Errorf("write caption text file: %w", werr)
			}
			created = append(created, tf.Path)
		}
		chain := append(aspectFilters, spec.Filters...)
		// Long drawtext chains overflow comfortable argv sizes, so the graph
		// goes through a filter script file instead of -vf.
		scriptPath := filepath.Join(c.scratch, fmt.Sprintf("filters-%s.txt", uuid.NewString()[:8]))
		if err := os.WriteFile(scriptPath, []byte(strings.Join(chain, ",")), 0o644); err != nil {
			return nil, created, fmt.Errorf("write filter script: %w", err)
		}
		created = append(created, scriptPath)
		return []string{"-filter_script:v", scriptPath}, created, nil
	}
}

// aspectStage returns the crop/scale filters for the requested aspect ratio
// plus the post-transform frame dimensions the caption stage should style
// against. Probing the source is required: centering must anchor to the real
// resolution, not an assumed default.
func (c *Cutter) aspectStage(ctx context.Context, src string, aspect ports.AspectRatio) ([]string, types.Dimensions, error) {
	dims, err := c.prober.ProbeDimensions(ctx, src)
	if err != nil {
		return nil, types.Dimensions{}, fmt.Errorf("probe dimensions: %w", err)
	}

	switch aspect {
	case ports.AspectVertical:
		// Center-crop to 9:16, then normalize to 1080x1920 so every vertical
		// platform gets the same canvas.
		out := types.Dimensions{Width: 1080, Height: 1920}
		return []string{"crop=ih*9/16:ih", "scale=1080:1920"}, out, nil
	case ports.AspectCinema:
		h := int(float64(dims.Width) / 2.35)
		h -= h % 2
		out := types.Dimensions{Width: dims.Width, Height: h}
		return []string{fmt.Sprintf("crop=iw:%d", h)}, out, nil
	default:
		return nil, dims, nil
	}
}

// outputName builds a collision-free file name: wall-clock stamp, clip time
// range, platform tag, random suffix.
func outputName(start, end time.Duration, platform, ext string) string {
	if platform == "" {
		platform = "default"
	}
	return fmt.Sprintf("clip_%s_%s-%s_%s_%s%s",
		time.Now().UTC().Format("20060102T150405"),
		fmtSeconds(start), fmtSeconds(end),
		platform,
		uuid.NewString()[:8],
		ext,
	)
}

func fmtSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 3, 64)
}

func removeAll(log *zap.Logger, paths []string) {
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			log.Warn("remove temp file", zap.String("path", p), zap.Error(err))
		}
	}
}
