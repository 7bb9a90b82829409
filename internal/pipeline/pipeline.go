// Package pipeline wires adapters together and drives a full clip-rendering
// run: resolve the source, segment captions once globally, render every
// descriptor, write a result manifest.
package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"

	"github.com/clipforge/clipforge/internal/clipper"
	"github.com/clipforge/clipforge/internal/config"
	"github.com/clipforge/clipforge/internal/domain/captions"
	"github.com/clipforge/clipforge/internal/fonts"
	"github.com/clipforge/clipforge/internal/ports"
	"github.com/clipforge/clipforge/internal/ports/adapters/ffmpeg"
	"github.com/clipforge/clipforge/internal/ports/adapters/miniostore"
	"github.com/clipforge/clipforge/internal/ports/adapters/whispercpp"
	"github.com/clipforge/clipforge/internal/types"
)

type Config struct {
	// Source is resolved once at ingestion; URL and byte sources are
	// materialized into the scratch directory.
	Source     types.MediaSource
	OutDir     string
	ScratchDir string

	Platform     string
	BurnCaptions bool
	Strategy     ports.BurnStrategy
	PresetsFile  string

	Transcript types.Transcript
	Clips      []types.ClipDescriptor

	FFmpegPath    string
	FFprobePath   string
	FFmpegTimeout time.Duration
	FontsDir      string

	// Retitle enables per-clip re-transcription for untitled descriptors.
	Retitle      bool
	WhisperBin   string
	WhisperModel string

	// Store is optional; empty endpoint disables uploading.
	Store miniostore.Config

	Logger *zap.Logger
}

func (c Config) Validate() error {
	switch c.Source.Kind() {
	case types.MediaFilePath:
		if c.Source.FilePath() == "" {
			return errors.New("source path is empty")
		}
		if _, err := os.Stat(c.Source.FilePath()); err != nil {
			return fmt.Errorf("stat source: %w", err)
		}
	case types.MediaURL:
		if c.Source.URL() == "" {
			return errors.New("source url is empty")
		}
	case types.MediaBytes:
		if len(c.Source.Bytes()) == 0 {
			return errors.New("source buffer is empty")
		}
	}
	if len(c.Clips) == 0 {
		return errors.New("no clip descriptors")
	}
	for _, cl := range c.Clips {
		if cl.End <= cl.Start {
			return fmt.Errorf("clip %s: end %s <= start %s", cl.ID, cl.End, cl.Start)
		}
	}
	if c.Retitle && c.WhisperModel == "" {
		return errors.New("whisper model path is required when retitling is enabled")
	}
	return nil
}

type Result struct {
	RunDir  string
	Results []ClipResult
}

func Run(ctx context.Context, cfg Config) (Result, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	presets, err := config.Load(cfg.PresetsFile)
	if err != nil {
		return Result{}, err
	}
	preset := presets.For(cfg.Platform)

	scratch := cfg.ScratchDir
	if scratch == "" {
		scratch = filepath.Join(".cache", "scratch")
	}
	if err := os.MkdirAll(scratch, 0o755); err != nil {
		return Result{}, err
	}

	src, cleanupSrc, err := resolveSource(ctx, cfg.Source, scratch)
	if err != nil {
		return Result{}, err
	}
	defer cleanupSrc()

	outDir := cfg.OutDir
	if outDir == "" {
		outDir = "out"
	}
	runDir := buildRunOutDir(outDir, src, time.Now().UTC())
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return Result{}, err
	}
	log.Info("run dir ready", zap.String("dir", runDir))

	// adapters
	tc := ffmpeg.New(cfg.FFmpegPath, cfg.FFprobePath, cfg.FFmpegTimeout, log)
	reg := fonts.New(cfg.FontsDir)

	var asr ports.Transcriber
	if cfg.Retitle {
		asr = whispercpp.New(cfg.WhisperBin, cfg.WhisperModel)
	}

	var store ports.ArtifactStore
	if cfg.Store.Endpoint != "" {
		ms, err := miniostore.New(cfg.Store)
		if err != nil {
			return Result{}, err
		}
		if err := ms.EnsureBucket(ctx); err != nil {
			return Result{}, err
		}
		store = ms
	}

	// Captions are segmented once against the global timeline; each clip
	// gets an overlap-filtered, rebased view inside the cutter.
	var lines []captions.Line
	if cfg.BurnCaptions {
		lines = captions.Segment(cfg.Transcript.Words, preset.SegmentOptions())
		log.Info("captions segmented", zap.Int("lines", len(lines)))
	}

	cutter := clipper.NewCutter(tc, tc, reg, scratch, log)
	audio := clipper.NewAudioExtractor(tc, log)
	orch := NewOrchestrator(cutter, audio, asr, store, log)

	plan := RenderPlan{
		Source:       src,
		OutDir:       runDir,
		Platform:     cfg.Platform,
		Aspect:       preset.AspectRatio(),
		BurnCaptions: cfg.BurnCaptions,
		Strategy:     cfg.Strategy,
		Style:        preset.Style(),
		Lines:        lines,
		KeyPrefix:    "clips",
	}

	results := orch.Process(ctx, plan, cfg.Clips)

	if err := writeManifest(runDir, src, results); err != nil {
		return Result{}, err
	}
	return Result{RunDir: runDir, Results: results}, nil
}

type manifest struct {
	Input   string       `json:"input"`
	Results []ClipResult `json:"results"`
}

func writeManifest(runDir, src string, results []ClipResult) error {
	b, err := json.MarshalIndent(manifest{Input: src, Results: results}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	return os.WriteFile(filepath.Join(runDir, "manifest.json"), b, 0o644)
}

// resolveSource materializes a MediaSource as a local file path. The cleanup
// func removes anything resolveSource itself wrote; it is a no-op for plain
// file paths.
func resolveSource(ctx context.Context, src types.MediaSource, scratch string) (string, func(), error) {
	noop := func() {}
	switch src.Kind() {
	case types.MediaFilePath:
		return src.FilePath(), noop, nil

	case types.MediaBytes:
		p := filepath.Join(scratch, fmt.Sprintf("source-%s.mp4", hash(fmt.Sprintf("%d", time.Now().UnixNano()))))
		if err := os.WriteFile(p, src.Bytes(), 0o644); err != nil {
			return "", noop, fmt.Errorf("write source buffer: %w", err)
		}
		return p, func() { _ = os.Remove(p) }, nil

	case types.MediaURL:
		p := filepath.Join(scratch, fmt.Sprintf("source-%s.mp4", hash(src.URL())))
		if err := download(ctx, src.URL(), p); err != nil {
			return "", noop, err
		}
		return p, func() { _ = os.Remove(p) }, nil
	}
	return "", noop, fmt.Errorf("unknown media source kind %d", src.Kind())
}

func download(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("download source: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download source: unexpected status %s", resp.Status)
	}
	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := io.Copy(f, resp.Body); err != nil {
		return fmt.Errorf("download source: %w", err)
	}
	return nil
}

func buildRunOutDir(outRoot, input string, now time.Time) string {
	name := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	name = normalizePathSegment(name)
	if name == "" {
		name = "input"
	}
	ts := now.UTC().Format("20060102-150405Z")
	runSeed := fmt.Sprintf("%s|%d", input, now.UTC().UnixNano())
	suffix := hash(runSeed)[:6]
	return filepath.Join(outRoot, fmt.Sprintf("%s-%s-%s", name, ts, suffix))
}

func normalizePathSegment(s string) string {
	var b strings.Builder
	prevDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

func hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:12]
}

// ensure adapters implement ports
var _ ports.Transcoder = (*ffmpeg.Adapter)(nil)
var _ ports.Prober = (*ffmpeg.Adapter)(nil)
var _ ports.Transcriber = (*whispercpp.Adapter)(nil)
var _ ports.ArtifactStore = (*miniostore.Store)(nil)
var _ ports.ClipCutter = (*clipper.Cutter)(nil)
var _ ports.AudioExtractor = (*clipper.AudioExtractor)(nil)
