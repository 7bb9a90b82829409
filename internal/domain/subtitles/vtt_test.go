package subtitles

import (
	"strings"
	"testing"
	"time"

	"github.com/clipforge/clipforge/internal/domain/captions"
)

func TestRenderVTT(t *testing.T) {
	t.Parallel()

	lines := []captions.Line{
		{Start: 0, End: 1500 * time.Millisecond, Text: "first line"},
		{Start: 2 * time.Second, End: 4 * time.Second, Text: "second line"},
	}
	got := RenderVTT(lines, 10*time.Second)

	if !strings.HasPrefix(got, "WEBVTT\n\n") {
		t.Fatalf("missing WEBVTT header:\n%s", got)
	}
	for _, want := range []string{
		"1\n00:00:00.000 --> 00:00:01.500\nfirst line\n",
		"2\n00:00:02.000 --> 00:00:04.000\nsecond line\n",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("payload missing %q:\n%s", want, got)
		}
	}
}

func TestRenderVTT_DropsOutOfWindowLines(t *testing.T) {
	t.Parallel()

	lines := []captions.Line{
		{Start: 2 * time.Second, End: 2 * time.Second, Text: "collapsed"},
		{Start: 11 * time.Second, End: 12 * time.Second, Text: "past end"},
		{Start: 1 * time.Second, End: 2 * time.Second, Text: "keep"},
	}
	got := RenderVTT(lines, 10*time.Second)
	if strings.Contains(got, "collapsed") || strings.Contains(got, "past end") {
		t.Fatalf("expected out-of-window lines dropped:\n%s", got)
	}
	// Sequence numbering skips dropped lines.
	if !strings.Contains(got, "1\n00:00:01.000") {
		t.Fatalf("expected surviving line numbered 1:\n%s", got)
	}
}

func TestEmptyVTT_IsValidDocument(t *testing.T) {
	t.Parallel()

	got := EmptyVTT()
	if !strings.HasPrefix(got, "WEBVTT\n") {
		t.Fatalf("placeholder is not a VTT document: %q", got)
	}
}

func TestVTTTime(t *testing.T) {
	t.Parallel()

	tests := map[time.Duration]string{
		0:                                  "00:00:00.000",
		1500 * time.Millisecond:            "00:00:01.500",
		61*time.Second + 7*time.Millisecond: "00:01:01.007",
		time.Hour + time.Second:            "01:00:01.000",
		-time.Second:                       "00:00:00.000",
	}
	for in, want := range tests {
		if got := vttTime(in); got != want {
			t.Fatalf("vttTime(%s) = %q, want %q", in, got, want)
		}
	}
}

func TestBurnFilter_EscapesPaths(t *testing.T) {
	t.Parallel()

	got := BurnFilter(`C:\tmp\subs.vtt`, "/fonts dir", "FontSize=48")
	if !strings.Contains(got, `subtitles=C\:\\tmp\\subs.vtt`) {
		t.Fatalf("path not escaped: %s", got)
	}
	if !strings.Contains(got, ":fontsdir=/fonts dir") {
		t.Fatalf("fontsdir missing: %s", got)
	}
	if !strings.Contains(got, ":force_style='FontSize=48'") {
		t.Fatalf("force_style missing: %s", got)
	}
}
