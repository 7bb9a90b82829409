// Package whispercpp adapts a local whisper.cpp binary as the transcriber.
package whispercpp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/clipforge/clipforge/internal/types"
)

type Adapter struct {
	bin   string
	model string
}

func New(binPath, modelPath string) *Adapter {
	return &Adapter{bin: binPath, model: modelPath}
}

// whisper.cpp JSON output shape; flattened into types.Transcript below.
type whisperOut struct {
	Segments []struct {
		Start float64      `json:"start"`
		End   float64      `json:"end"`
		Text  string       `json:"text"`
		Words []types.Word `json:"words,omitempty"`
	} `json:"segments"`
}

func (a *Adapter) Transcribe(ctx context.Context, wavPath string) (types.Transcript, error) {
	workDir, err := os.MkdirTemp("", "whisper-")
	if err != nil {
		return types.Transcript{}, err
	}
	defer os.RemoveAll(workDir)

	outPrefix := filepath.Join(workDir, "whisper")
	args := []string{
		"-m", a.model,
		"-f", wavPath,
		"-oj",
		"-of", outPrefix,
		"-owts",
	}
	cmd := exec.CommandContext(ctx, a.bin, args...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return types.Transcript{}, fmt.Errorf("whisper.cpp failed: %w\n%s", err, string(b))
	}

	jb, err := os.ReadFile(outPrefix + ".json")
	if err != nil {
		return types.Transcript{}, err
	}

	var out whisperOut
	if err := json.Unmarshal(jb, &out); err != nil {
		return types.Transcript{}, err
	}

	var tr types.Transcript
	var parts []string
	for _, s := range out.Segments {
		if t := strings.TrimSpace(s.Text); t != "" {
			parts = append(parts, t)
		}
		for _, w := range s.Words {
			w.Word = strings.TrimSpace(w.Word)
			if w.Word == "" {
				continue
			}
			tr.Words = append(tr.Words, w)
		}
	}
	tr.Text = strings.Join(parts, " ")
	return tr, nil
}
