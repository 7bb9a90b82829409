package captions

import (
	"testing"
	"time"

	"github.com/clipforge/clipforge/internal/types"
)

func TestSegment_GroupingInvariant(t *testing.T) {
	t.Parallel()

	words := make([]types.Word, 0, 11)
	for i := 0; i < 11; i++ {
		words = append(words, types.Word{
			Start: float64(i),
			End:   float64(i) + 0.8,
			Word:  string(rune('a' + i)),
		})
	}

	lines := Segment(words, Options{MaxWordsPerLine: 4, MinDisplayTime: time.Second})

	total := 0
	for i, ln := range lines {
		if len(ln.Words) > 4 {
			t.Fatalf("line %d has %d words, max is 4", i, len(ln.Words))
		}
		if ln.End-ln.Start < time.Second {
			t.Fatalf("line %d shorter than min display time: %s", i, ln.End-ln.Start)
		}
		for _, w := range ln.Words {
			if w != words[total] {
				t.Fatalf("line %d word %v out of order, want %v", i, w, words[total])
			}
			total++
		}
	}
	if total != len(words) {
		t.Fatalf("lines cover %d words, want %d", total, len(words))
	}
}

func TestSegment_MinDisplayExtension(t *testing.T) {
	t.Parallel()

	words := []types.Word{
		{Start: 1.0, End: 1.1, Word: "quick"},
		{Start: 1.1, End: 1.2, Word: "words"},
	}
	lines := Segment(words, Options{MaxWordsPerLine: 2, MinDisplayTime: 500 * time.Millisecond})
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	if lines[0].Start != time.Second {
		t.Fatalf("unexpected start: %s", lines[0].Start)
	}
	// Natural span is 200ms; end must be extended to start+500ms even if it
	// overlaps a following line.
	if lines[0].End != time.Second+500*time.Millisecond {
		t.Fatalf("expected extended end 1.5s, got %s", lines[0].End)
	}
}

func TestSegment_Empty(t *testing.T) {
	t.Parallel()

	if lines := Segment(nil, Options{}); len(lines) != 0 {
		t.Fatalf("expected no lines for empty input, got %d", len(lines))
	}
}

func TestSegment_SingleLineExample(t *testing.T) {
	t.Parallel()

	words := []types.Word{
		{Start: 0, End: 0.3, Word: "Hi"},
		{Start: 0.3, End: 0.6, Word: "there"},
		{Start: 0.6, End: 1.0, Word: "world"},
	}
	lines := Segment(words, Options{MaxWordsPerLine: 3})
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	ln := lines[0]
	if ln.Text != "Hi there world" {
		t.Fatalf("unexpected text: %q", ln.Text)
	}
	if ln.Start != 0 || ln.End != time.Second {
		// Already >= default min display; no extension expected.
		t.Fatalf("unexpected window: [%s, %s]", ln.Start, ln.End)
	}
}

func TestRebase(t *testing.T) {
	t.Parallel()

	lines := []Line{
		{Start: 10 * time.Second, End: 12 * time.Second, Text: "inside"},
		{Start: 1 * time.Second, End: 2 * time.Second, Text: "before"},
		{Start: 7 * time.Second, End: 9 * time.Second, Text: "straddles start"},
		{Start: 19 * time.Second, End: 25 * time.Second, Text: "straddles end"},
		{Start: 30 * time.Second, End: 31 * time.Second, Text: "after"},
	}

	out := Rebase(lines, 8*time.Second, 12*time.Second)
	if len(out) != 3 {
		t.Fatalf("expected 3 surviving lines, got %d", len(out))
	}
	if out[0].Start != 2*time.Second || out[0].End != 4*time.Second {
		t.Fatalf("inside line rebased to [%s, %s], want [2s, 4s]", out[0].Start, out[0].End)
	}
	if out[1].Start != 0 || out[1].End != time.Second {
		t.Fatalf("straddling line clamped to [%s, %s], want [0s, 1s]", out[1].Start, out[1].End)
	}
	if out[2].Start != 11*time.Second || out[2].End != 12*time.Second {
		t.Fatalf("tail line clamped to [%s, %s], want [11s, 12s]", out[2].Start, out[2].End)
	}

	// Originals are untouched.
	if lines[0].Start != 10*time.Second {
		t.Fatalf("rebase mutated input line: %s", lines[0].Start)
	}
}

func TestRebase_DropsCollapsedWindows(t *testing.T) {
	t.Parallel()

	lines := []Line{
		{Start: 9*time.Second + 999*time.Millisecond, End: 10 * time.Second, Text: "edge"},
	}
	if out := Rebase(lines, 10*time.Second, 5*time.Second); len(out) != 0 {
		t.Fatalf("expected line ending at clip start to be dropped, got %d", len(out))
	}
}
