// Package ports declares the narrow contracts the pipeline depends on.
// Adapters live under ports/adapters; tests substitute fakes.
package ports

import (
	"context"
	"fmt"
	"time"

	"github.com/clipforge/clipforge/internal/domain/captions"
	"github.com/clipforge/clipforge/internal/domain/subtitles"
	"github.com/clipforge/clipforge/internal/types"
)

// Transcoder runs one external media-transcoder process with the given
// argument list and reports its stderr on failure. One invocation per
// cut/extract operation.
type Transcoder interface {
	Run(ctx context.Context, args []string) (stderr string, err error)
}

// Prober queries stream metadata of a local media file.
type Prober interface {
	ProbeDimensions(ctx context.Context, path string) (types.Dimensions, error)
	ProbeDuration(ctx context.Context, path string) (time.Duration, error)
}

// Transcriber produces a word-timestamped transcript of an audio file.
type Transcriber interface {
	Transcribe(ctx context.Context, wavPath string) (types.Transcript, error)
}

// ArtifactStore receives finished render artifacts. The pipeline does not
// know or care about the storage backend.
type ArtifactStore interface {
	Upload(ctx context.Context, localPath, key string) (types.StoredObject, error)
}

// UploadError wraps a failure from the artifact store; the orchestrator
// treats it like any other stage failure for batch-isolation purposes.
type UploadError struct {
	Key string
	Err error
}

func (e *UploadError) Error() string { return fmt.Sprintf("upload %s: %v", e.Key, e.Err) }
func (e *UploadError) Unwrap() error { return e.Err }

type AspectRatio string

const (
	AspectOriginal AspectRatio = "original"
	AspectVertical AspectRatio = "9:16"
	AspectCinema   AspectRatio = "2.35:1"
)

// BurnStrategy selects how captions are composited into the frame.
type BurnStrategy string

const (
	// StrategyDrawtext renders each caption line with a drawtext clause
	// referencing a per-line text file.
	StrategyDrawtext BurnStrategy = "drawtext"
	// StrategySubtitles burns a WebVTT track through the subtitles filter
	// with a force-style override.
	StrategySubtitles BurnStrategy = "subtitles"
)

// CutOptions controls a single clip render. Lines are on the source video's
// absolute timeline; the cutter rebases them per clip.
type CutOptions struct {
	Aspect       AspectRatio
	Platform     string
	BurnCaptions bool
	Strategy     BurnStrategy
	Lines        []captions.Line
	Style        subtitles.Style
}

// ClipCutter extracts a time-bounded sub-segment of a source video,
// optionally re-encoding for aspect conversion and caption burn-in.
type ClipCutter interface {
	Cut(ctx context.Context, src string, start, end time.Duration, outDir string, opts CutOptions) (types.Artifact, error)
}

// AudioExtractor extracts a mono 16 kHz PCM sub-segment for transcription.
type AudioExtractor interface {
	Extract(ctx context.Context, src string, start, end time.Duration, outDir string) (types.Artifact, error)
}
