package clipper

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/clipforge/clipforge/internal/ports"
	"github.com/clipforge/clipforge/internal/types"
)

type AudioExtractor struct {
	tc  ports.Transcoder
	log *zap.Logger
}

func NewAudioExtractor(tc ports.Transcoder, log *zap.Logger) *AudioExtractor {
	if log == nil {
		log = zap.NewNop()
	}
	return &AudioExtractor{tc: tc, log: log}
}

// Extract writes the [start,end] audio of src as mono 16 kHz 16-bit PCM wav,
// the fixed input format the transcriber expects, regardless of the source
// codec. Uses the same input-side seek as clip cutting.
func (e *AudioExtractor) Extract(ctx context.Context, src string, start, end time.Duration, outDir string) (types.Artifact, error) {
	if end <= start {
		return types.Artifact{}, fmt.Errorf("extract audio: end %s <= start %s", end, start)
	}
	clipDur := end - start

	outName := outputName(start, end, "audio", ".wav")
	outPath := filepath.Join(outDir, outName)

	args := []string{
		"-y",
		"-ss", fmtSeconds(start),
		"-i", src,
		"-t", fmtSeconds(clipDur),
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-acodec", "pcm_s16le",
		"-f", "wav",
		outPath,
	}

	stderr, err := e.tc.Run(ctx, args)
	if err != nil {
		return types.Artifact{}, &ExtractionError{Stderr: stderr, Err: err}
	}
	info, err := os.Stat(outPath)
	if err != nil {
		return types.Artifact{}, &ExtractionError{Stderr: stderr, Err: errors.New("output file missing")}
	}

	return types.Artifact{Path: outPath, Name: outName, Size: info.Size(), Duration: clipDur}, nil
}
