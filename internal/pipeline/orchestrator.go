package pipeline

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/clipforge/clipforge/internal/domain/captions"
	"github.com/clipforge/clipforge/internal/domain/subtitles"
	"github.com/clipforge/clipforge/internal/ports"
	"github.com/clipforge/clipforge/internal/types"
)

// Stage names the steps of the per-clip state machine. A clip moves
// PENDING -> CUTTING -> AUDIO_EXTRACTING -> TITLE_RESOLVING -> UPLOADING ->
// DONE, or to FAILED from any stage on first error. Failures never cross
// clip boundaries.
type Stage string

const (
	StagePending         Stage = "PENDING"
	StageCutting         Stage = "CUTTING"
	StageAudioExtracting Stage = "AUDIO_EXTRACTING"
	StageTitleResolving  Stage = "TITLE_RESOLVING"
	StageUploading       Stage = "UPLOADING"
	StageDone            Stage = "DONE"
	StageFailed          Stage = "FAILED"
)

// TitleSource tags where a clip's title came from, so a silent fallback is
// distinguishable from metadata and from a successful re-transcription.
type TitleSource string

const (
	TitleFromMetadata  TitleSource = "metadata"
	TitleResynthesized TitleSource = "resynthesized"
	TitleFallback      TitleSource = "fallback"
)

// ClipResult is one entry of the orchestrator's output, in input order.
// Callers inspect OK and Error instead of unwrapping exceptions.
type ClipResult struct {
	ID          string             `json:"id"`
	OK          bool               `json:"ok"`
	Stage       Stage              `json:"stage"`
	Title       string             `json:"title,omitempty"`
	TitleSource TitleSource        `json:"title_source,omitempty"`
	FileName    string             `json:"file,omitempty"`
	Size        int64              `json:"size,omitempty"`
	DurationSec float64            `json:"duration_sec,omitempty"`
	Stored      types.StoredObject `json:"stored,omitempty"`
	Error       string             `json:"error,omitempty"`
}

// RenderPlan is the shared, clip-independent part of a batch: the source
// video, the global caption timeline, and the platform styling.
type RenderPlan struct {
	Source       string
	OutDir       string
	Platform     string
	Aspect       ports.AspectRatio
	BurnCaptions bool
	Strategy     ports.BurnStrategy
	Style        subtitles.Style
	Lines        []captions.Line
	// KeyPrefix namespaces uploaded objects, e.g. "<project>/clips".
	KeyPrefix string
}

type Orchestrator struct {
	cutter ports.ClipCutter
	audio  ports.AudioExtractor
	// asr is optional; when nil, untitled clips go straight to the
	// synthesized fallback title.
	asr ports.Transcriber
	// store is optional; when nil, rendered clips stay in OutDir.
	store ports.ArtifactStore
	log   *zap.Logger
}

func NewOrchestrator(cutter ports.ClipCutter, audio ports.AudioExtractor, asr ports.Transcriber, store ports.ArtifactStore, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{cutter: cutter, audio: audio, asr: asr, store: store, log: log}
}

// Process renders every descriptor sequentially and returns one result per
// input, in input order. Each transcoder process is CPU and IO heavy, so
// clips are deliberately not parallelized. A failing clip is recorded and
// its siblings continue.
func (o *Orchestrator) Process(ctx context.Context, plan RenderPlan, clips []types.ClipDescriptor) []ClipResult {
	results := make([]ClipResult, 0, len(clips))
	for _, clip := range clips {
		res := o.processOne(ctx, plan, clip)
		if res.OK {
			o.log.Info("clip done",
				zap.String("id", clip.ID),
				zap.String("file", res.FileName),
				zap.String("title_source", string(res.TitleSource)))
		} else {
			o.log.Warn("clip failed",
				zap.String("id", clip.ID),
				zap.String("stage", string(res.Stage)),
				zap.String("error", res.Error))
		}
		results = append(results, res)
	}
	return results
}

func (o *Orchestrator) processOne(ctx context.Context, plan RenderPlan, clip types.ClipDescriptor) ClipResult {
	res := ClipResult{ID: clip.ID, Stage: StagePending}

	fail := func(stage Stage, err error) ClipResult {
		res.Stage = StageFailed
		res.Error = fmt.Sprintf("%s: %v", strings.ToLower(string(stage)), err)
		return res
	}

	res.Stage = StageCutting
	artifact, err := o.cutter.Cut(ctx, plan.Source, clip.Start, clip.End, plan.OutDir, ports.CutOptions{
		Aspect:       plan.Aspect,
		Platform:     plan.Platform,
		BurnCaptions: plan.BurnCaptions,
		Strategy:     plan.Strategy,
		Lines:        plan.Lines,
		Style:        plan.Style,
	})
	if err != nil {
		return fail(StageCutting, err)
	}
	// Local artifacts are deleted whether or not upload succeeds, to bound
	// disk usage across a long batch. Without a store the clip file is the
	// deliverable and stays.
	defer func() {
		if o.store != nil {
			removeQuiet(o.log, artifact.Path)
		}
	}()

	res.Stage = StageAudioExtracting
	wav, err := o.audio.Extract(ctx, plan.Source, clip.Start, clip.End, plan.OutDir)
	if err != nil {
		return fail(StageAudioExtracting, err)
	}
	defer removeQuiet(o.log, wav.Path)

	res.Stage = StageTitleResolving
	res.Title, res.TitleSource = o.resolveTitle(ctx, plan.Source, clip, wav.Path)

	if o.store != nil {
		res.Stage = StageUploading
		key := artifact.Name
		if plan.KeyPrefix != "" {
			key = path.Join(plan.KeyPrefix, artifact.Name)
		}
		stored, err := o.store.Upload(ctx, artifact.Path, key)
		if err != nil {
			return fail(StageUploading, err)
		}
		res.Stored = stored
	}

	res.Stage = StageDone
	res.OK = true
	res.FileName = artifact.Name
	res.Size = artifact.Size
	res.DurationSec = artifact.Duration.Seconds()
	return res
}

// resolveTitle prefers the descriptor's pre-computed title, then an optional
// re-transcription of the clip audio, then a synthesized fallback. The
// re-transcription path never propagates its failure: a broken or too-short
// result just means the fallback title.
func (o *Orchestrator) resolveTitle(ctx context.Context, source string, clip types.ClipDescriptor, wavPath string) (string, TitleSource) {
	if t := strings.TrimSpace(clip.Title); t != "" {
		return t, TitleFromMetadata
	}
	if o.asr != nil {
		tr, err := o.asr.Transcribe(ctx, wavPath)
		if err == nil {
			if t := titleFromText(tr.Text); len(t) >= 3 {
				return t, TitleResynthesized
			}
		} else {
			o.log.Debug("retitle transcription failed", zap.String("id", clip.ID), zap.Error(err))
		}
	}
	return synthesizeTitle(source, clip.Start), TitleFallback
}

// titleFromText trims a transcript down to a short title, cut at a word
// boundary.
func titleFromText(text string) string {
	const maxLen = 60
	t := strings.Join(strings.Fields(text), " ")
	if len(t) <= maxLen {
		return t
	}
	cut := strings.LastIndex(t[:maxLen], " ")
	if cut <= 0 {
		cut = maxLen
	}
	return t[:cut]
}

func synthesizeTitle(source string, offset time.Duration) string {
	name := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	total := int(offset.Seconds())
	return fmt.Sprintf("%s (%02d:%02d)", name, total/60, total%60)
}

func removeQuiet(log *zap.Logger, path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Warn("remove artifact", zap.String("path", path), zap.Error(err))
	}
}
