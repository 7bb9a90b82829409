package clipper

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/clipforge/clipforge/internal/domain/captions"
	"github.com/clipforge/clipforge/internal/fonts"
	"github.com/clipforge/clipforge/internal/ports"
	"github.com/clipforge/clipforge/internal/types"
)

type fakeTranscoder struct {
	calls    [][]string
	fail     bool
	stderr   string
	noOutput bool
	// tempSeen records, per call, whether every file referenced by
	// -filter_script:v existed at invocation time.
	tempSeen []bool
}

func (f *fakeTranscoder) Run(_ context.Context, args []string) (string, error) {
	f.calls = append(f.calls, append([]string(nil), args...))
	seen := true
	for i, a := range args {
		if a == "-filter_script:v" && i+1 < len(args) {
			if _, err := os.Stat(args[i+1]); err != nil {
				seen = false
			}
		}
	}
	f.tempSeen = append(f.tempSeen, seen)
	if f.fail {
		return f.stderr, errors.New("exit status 1")
	}
	if !f.noOutput {
		out := args[len(args)-1]
		if err := os.WriteFile(out, []byte("media"), 0o644); err != nil {
			return "", err
		}
	}
	return "", nil
}

type fakeProber struct {
	dims   types.Dimensions
	probes int
}

func (f *fakeProber) ProbeDimensions(context.Context, string) (types.Dimensions, error) {
	f.probes++
	return f.dims, nil
}

func (f *fakeProber) ProbeDuration(context.Context, string) (time.Duration, error) {
	return 0, nil
}

func newTestCutter(t *testing.T, tc *fakeTranscoder) (*Cutter, string) {
	t.Helper()
	scratch := t.TempDir()
	pr := &fakeProber{dims: types.Dimensions{Width: 1920, Height: 1080}}
	return NewCutter(tc, pr, fonts.New(""), scratch, nil), scratch
}

func testLines() []captions.Line {
	return []captions.Line{
		{Start: 11 * time.Second, End: 13 * time.Second, Text: "hello"},
		{Start: 13 * time.Second, End: 15 * time.Second, Text: "world"},
	}
}

func mustArgs(t *testing.T, tc *fakeTranscoder) []string {
	t.Helper()
	if len(tc.calls) != 1 {
		t.Fatalf("expected 1 transcoder call, got %d", len(tc.calls))
	}
	return tc.calls[0]
}

func TestCut_StreamCopyFastPath(t *testing.T) {
	t.Parallel()

	tc := &fakeTranscoder{}
	c, _ := newTestCutter(t, tc)
	out := t.TempDir()

	art, err := c.Cut(context.Background(), "in.mp4", 10*time.Second, 20*time.Second, out, ports.CutOptions{
		Aspect: ports.AspectOriginal,
	})
	if err != nil {
		t.Fatal(err)
	}

	args := strings.Join(mustArgs(t, tc), " ")
	if !strings.Contains(args, "-c copy") {
		t.Fatalf("expected stream copy, got: %s", args)
	}
	if strings.Contains(args, "-vf") || strings.Contains(args, "-filter_script:v") {
		t.Fatalf("fast path must not build a filter graph: %s", args)
	}
	if art.Duration != 10*time.Second {
		t.Fatalf("unexpected artifact duration: %s", art.Duration)
	}
	if filepath.Dir(art.Path) != out {
		t.Fatalf("artifact outside out dir: %s", art.Path)
	}
}

func TestCut_InputSideSeek(t *testing.T) {
	t.Parallel()

	tc := &fakeTranscoder{}
	c, _ := newTestCutter(t, tc)

	if _, err := c.Cut(context.Background(), "in.mp4", 90*time.Second, 100*time.Second, t.TempDir(), ports.CutOptions{}); err != nil {
		t.Fatal(err)
	}
	args := mustArgs(t, tc)
	ss, in := -1, -1
	for i, a := range args {
		switch a {
		case "-ss":
			ss = i
		case "-i":
			in = i
		}
	}
	if ss < 0 || in < 0 || ss > in {
		t.Fatalf("expected -ss before -i, got: %v", args)
	}
	if args[ss+1] != "90.000" {
		t.Fatalf("unexpected seek value: %s", args[ss+1])
	}
}

func TestCut_CaptionsForceReencode(t *testing.T) {
	t.Parallel()

	tc := &fakeTranscoder{}
	c, scratch := newTestCutter(t, tc)

	_, err := c.Cut(context.Background(), "in.mp4", 10*time.Second, 20*time.Second, t.TempDir(), ports.CutOptions{
		Aspect:       ports.AspectOriginal,
		BurnCaptions: true,
		Strategy:     ports.StrategyDrawtext,
		Lines:        testLines(),
	})
	if err != nil {
		t.Fatal(err)
	}

	args := strings.Join(mustArgs(t, tc), " ")
	if !strings.Contains(args, "-filter_script:v") {
		t.Fatalf("expected filter script for drawtext burn: %s", args)
	}
	if !strings.Contains(args, "libx264") {
		t.Fatalf("expected re-encode: %s", args)
	}
	if !tc.tempSeen[0] {
		t.Fatal("filter script file missing while transcoder ran")
	}
	assertEmptyDir(t, scratch)
}

func TestCut_NoOverlappingCaptionsStreamCopies(t *testing.T) {
	t.Parallel()

	tc := &fakeTranscoder{}
	c, scratch := newTestCutter(t, tc)

	// All lines live before the clip window, so rebasing drops them all and
	// the fast path applies.
	_, err := c.Cut(context.Background(), "in.mp4", 100*time.Second, 110*time.Second, t.TempDir(), ports.CutOptions{
		BurnCaptions: true,
		Strategy:     ports.StrategyDrawtext,
		Lines:        testLines(),
	})
	if err != nil {
		t.Fatal(err)
	}
	if args := strings.Join(mustArgs(t, tc), " "); !strings.Contains(args, "-c copy") {
		t.Fatalf("expected stream copy when no captions overlap: %s", args)
	}
	assertEmptyDir(t, scratch)
}

func TestCut_AspectAndCaptionsSingleFilterGraph(t *testing.T) {
	t.Parallel()

	tc := &fakeTranscoder{}
	c, scratch := newTestCutter(t, tc)

	_, err := c.Cut(context.Background(), "in.mp4", 10*time.Second, 20*time.Second, t.TempDir(), ports.CutOptions{
		Aspect:       ports.AspectVertical,
		BurnCaptions: true,
		Strategy:     ports.StrategySubtitles,
		Lines:        testLines(),
	})
	if err != nil {
		t.Fatal(err)
	}

	args := mustArgs(t, tc)
	var vf string
	count := 0
	for i, a := range args {
		if a == "-vf" {
			count++
			vf = args[i+1]
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly one -vf, got %d: %v", count, args)
	}
	// Crop/scale and subtitle burn combine into one graph; no double encode.
	for _, want := range []string{"crop=ih*9/16:ih", "scale=1080:1920", "subtitles="} {
		if !strings.Contains(vf, want) {
			t.Fatalf("filter graph missing %q: %s", want, vf)
		}
	}
	// Style anchors to the post-crop canvas, not the probed source.
	if !strings.Contains(vf, "PlayResX=1080") || !strings.Contains(vf, "PlayResY=1920") {
		t.Fatalf("expected 1080x1920 anchors in: %s", vf)
	}
	assertEmptyDir(t, scratch)
}

func TestCut_TranscodeErrorCleansUp(t *testing.T) {
	t.Parallel()

	tc := &fakeTranscoder{fail: true, stderr: "boom"}
	c, scratch := newTestCutter(t, tc)

	_, err := c.Cut(context.Background(), "in.mp4", 10*time.Second, 20*time.Second, t.TempDir(), ports.CutOptions{
		BurnCaptions: true,
		Strategy:     ports.StrategyDrawtext,
		Lines:        testLines(),
	})
	var terr *TranscodeError
	if !errors.As(err, &terr) {
		t.Fatalf("expected TranscodeError, got %v", err)
	}
	if terr.Stderr != "boom" {
		t.Fatalf("stderr not captured: %q", terr.Stderr)
	}
	assertEmptyDir(t, scratch)
}

func TestCut_MissingOutputIsTranscodeError(t *testing.T) {
	t.Parallel()

	tc := &fakeTranscoder{noOutput: true}
	c, _ := newTestCutter(t, tc)

	_, err := c.Cut(context.Background(), "in.mp4", 0, 5*time.Second, t.TempDir(), ports.CutOptions{})
	var terr *TranscodeError
	if !errors.As(err, &terr) {
		t.Fatalf("expected TranscodeError for missing output, got %v", err)
	}
}

func TestCut_UniqueOutputNames(t *testing.T) {
	t.Parallel()

	tc := &fakeTranscoder{}
	c, _ := newTestCutter(t, tc)
	out := t.TempDir()

	a, err := c.Cut(context.Background(), "in.mp4", 0, 5*time.Second, out, ports.CutOptions{Platform: "tiktok"})
	if err != nil {
		t.Fatal(err)
	}
	b, err := c.Cut(context.Background(), "in.mp4", 0, 5*time.Second, out, ports.CutOptions{Platform: "tiktok"})
	if err != nil {
		t.Fatal(err)
	}
	if a.Name == b.Name {
		t.Fatalf("identical invocations must not collide: %s", a.Name)
	}
	if !strings.Contains(a.Name, "tiktok") {
		t.Fatalf("platform suffix missing from %s", a.Name)
	}
}

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("temp files left behind: %v", names)
	}
}
