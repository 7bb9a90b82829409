package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	root := &cobra.Command{
		Use:          "clipforge <input>",
		Short:        "Render social clips from a source video",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0])
		},
	}

	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)
	root.SilenceErrors = true

	// Visible flags
	root.Flags().String("clips", "", "Clip descriptors JSON file (required)")
	root.Flags().String("transcript", "", "Word-level transcript JSON file")
	root.Flags().String("out", "out", "Output directory")
	root.Flags().String("platform", "tiktok", "Target platform preset")
	root.Flags().Bool("captions", true, "Burn captions into clips")
	root.Flags().String("caption-mode", "drawtext", "Caption burn strategy: drawtext or subtitles")
	root.Flags().String("presets", "", "YAML file overriding platform presets")
	root.Flags().Bool("retitle", false, "Re-transcribe clip audio to title untitled clips")
	_ = root.MarkFlagRequired("clips")

	// Hidden tuning flags (internal)
	root.Flags().String("ffmpeg", "ffmpeg", "ffmpeg binary path")
	root.Flags().String("ffprobe", "ffprobe", "ffprobe binary path")
	root.Flags().Int("ffmpeg-timeout", 0, "Per-invocation ffmpeg timeout seconds")
	root.Flags().String("fonts", "", "Fonts directory")
	_ = root.Flags().MarkHidden("ffmpeg")
	_ = root.Flags().MarkHidden("ffprobe")
	_ = root.Flags().MarkHidden("ffmpeg-timeout")
	_ = root.Flags().MarkHidden("fonts")

	root.AddCommand(serveCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func getenvDefault(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
