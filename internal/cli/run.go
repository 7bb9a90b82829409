package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/clipforge/clipforge/internal/pipeline"
	"github.com/clipforge/clipforge/internal/ports"
	"github.com/clipforge/clipforge/internal/ports/adapters/miniostore"
	"github.com/clipforge/clipforge/internal/types"
)

func run(cmd *cobra.Command, input string) error {
	clipsFile, _ := cmd.Flags().GetString("clips")
	transcriptFile, _ := cmd.Flags().GetString("transcript")
	outDir, _ := cmd.Flags().GetString("out")
	platform, _ := cmd.Flags().GetString("platform")
	burnCaptions, _ := cmd.Flags().GetBool("captions")
	captionMode, _ := cmd.Flags().GetString("caption-mode")
	presetsFile, _ := cmd.Flags().GetString("presets")
	retitle, _ := cmd.Flags().GetBool("retitle")
	ffmpegPath, _ := cmd.Flags().GetString("ffmpeg")
	ffprobePath, _ := cmd.Flags().GetString("ffprobe")
	timeoutSec, _ := cmd.Flags().GetInt("ffmpeg-timeout")
	fontsDir, _ := cmd.Flags().GetString("fonts")

	log, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	source, err := resolveInput(input)
	if err != nil {
		return err
	}

	clips, err := loadClips(clipsFile)
	if err != nil {
		return err
	}

	var transcript types.Transcript
	if transcriptFile != "" {
		transcript, err = loadTranscript(transcriptFile)
		if err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Hour)
	defer cancel()

	cfg := pipeline.Config{
		Source:       source,
		OutDir:       outDir,
		Platform:     platform,
		BurnCaptions: burnCaptions && len(transcript.Words) > 0,
		Strategy:     ports.BurnStrategy(captionMode),
		PresetsFile:  presetsFile,
		Transcript:   transcript,
		Clips:        clips,

		FFmpegPath:    ffmpegPath,
		FFprobePath:   ffprobePath,
		FFmpegTimeout: time.Duration(timeoutSec) * time.Second,
		FontsDir:      fontsDir,

		Retitle:      retitle,
		WhisperBin:   getenvDefault("WHISPER_BIN", ".cache/bin/whisper.cpp"),
		WhisperModel: os.Getenv("WHISPER_MODEL"),

		Store: miniostore.Config{
			Endpoint:      os.Getenv("MINIO_ENDPOINT"),
			AccessKey:     os.Getenv("MINIO_ACCESS_KEY"),
			SecretKey:     os.Getenv("MINIO_SECRET_KEY"),
			Bucket:        getenvDefault("MINIO_BUCKET", "clips"),
			UseSSL:        os.Getenv("MINIO_USE_SSL") == "true",
			PublicBaseURL: os.Getenv("MINIO_PUBLIC_URL"),
		},

		Logger: log,
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	res, err := pipeline.Run(ctx, cfg)
	if err != nil {
		return err
	}

	failed := 0
	for _, r := range res.Results {
		if !r.OK {
			failed++
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d/%d clips rendered, manifest: %s\n",
		len(res.Results)-failed, len(res.Results), filepath.Join(res.RunDir, "manifest.json"))
	if failed > 0 {
		return fmt.Errorf("%d clip(s) failed, see manifest", failed)
	}
	return nil
}

// resolveInput classifies the positional argument as a URL or a local file.
func resolveInput(input string) (types.MediaSource, error) {
	if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") {
		return types.URLSource(input), nil
	}
	abs, err := filepath.Abs(input)
	if err != nil {
		return types.MediaSource{}, err
	}
	return types.FileSource(abs), nil
}

type clipFileEntry struct {
	ID            string  `json:"id"`
	StartSec      float64 `json:"start_sec"`
	EndSec        float64 `json:"end_sec"`
	ViralityScore float64 `json:"virality_score"`
	Title         string  `json:"title"`
}

func loadClips(path string) ([]types.ClipDescriptor, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read clips file: %w", err)
	}
	var entries []clipFileEntry
	if err := json.Unmarshal(b, &entries); err != nil {
		return nil, fmt.Errorf("parse clips file: %w", err)
	}
	out := make([]types.ClipDescriptor, 0, len(entries))
	for i, e := range entries {
		id := e.ID
		if id == "" {
			id = fmt.Sprintf("%03d", i+1)
		}
		out = append(out, types.ClipDescriptor{
			ID:            id,
			Start:         time.Duration(e.StartSec * float64(time.Second)),
			End:           time.Duration(e.EndSec * float64(time.Second)),
			ViralityScore: e.ViralityScore,
			Title:         e.Title,
		})
	}
	return out, nil
}

func loadTranscript(path string) (types.Transcript, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return types.Transcript{}, fmt.Errorf("read transcript: %w", err)
	}
	var tr types.Transcript
	if err := json.Unmarshal(b, &tr); err != nil {
		return types.Transcript{}, fmt.Errorf("parse transcript: %w", err)
	}
	return tr, nil
}
