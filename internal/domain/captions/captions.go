// Package captions turns word-level transcript timestamps into timed caption
// lines and rebases them onto clip-local timelines.
package captions

import (
	"strings"
	"time"

	"github.com/clipforge/clipforge/internal/types"
)

// Line is one rendered caption: a group of consecutive words with a display
// window. Lines are value types; rebasing produces new lines, never mutates.
type Line struct {
	Words []types.Word
	Start time.Duration
	End   time.Duration
	Text  string
}

type Options struct {
	// MaxWordsPerLine caps how many words are grouped into one line.
	MaxWordsPerLine int
	// MinDisplayTime extends a line's end so it stays readable. The extension
	// can overlap the next line's start; that tradeoff is accepted rather
	// than corrected, so pacing stays tied to the spoken words.
	MinDisplayTime time.Duration
}

const (
	DefaultMaxWordsPerLine = 3
	DefaultMinDisplayTime  = 500 * time.Millisecond
)

func (o Options) withDefaults() Options {
	if o.MaxWordsPerLine <= 0 {
		o.MaxWordsPerLine = DefaultMaxWordsPerLine
	}
	if o.MinDisplayTime <= 0 {
		o.MinDisplayTime = DefaultMinDisplayTime
	}
	return o
}

// Segment greedily groups words into caption lines. Empty input yields an
// empty result. Fully deterministic.
func Segment(words []types.Word, opts Options) []Line {
	opts = opts.withDefaults()

	var out []Line
	var cur []types.Word
	for _, w := range words {
		cur = append(cur, w)
		if len(cur) == opts.MaxWordsPerLine {
			out = append(out, closeLine(cur, opts.MinDisplayTime))
			cur = nil
		}
	}
	if len(cur) > 0 {
		out = append(out, closeLine(cur, opts.MinDisplayTime))
	}
	return out
}

func closeLine(words []types.Word, minDisplay time.Duration) Line {
	start := dur(words[0].Start)
	end := dur(words[len(words)-1].End)
	if end-start < minDisplay {
		end = start + minDisplay
	}
	parts := make([]string, 0, len(words))
	for _, w := range words {
		parts = append(parts, strings.TrimSpace(w.Word))
	}
	return Line{
		Words: append([]types.Word(nil), words...),
		Start: start,
		End:   end,
		Text:  strings.Join(parts, " "),
	}
}

// Rebase shifts lines from the source video's absolute timeline onto a clip's
// local 0-based timeline. Lines that do not overlap the clip window are
// dropped; overlapping lines are clamped to [0, clipDur].
func Rebase(lines []Line, clipStart, clipDur time.Duration) []Line {
	var out []Line
	for _, ln := range lines {
		ls := ln.Start - clipStart
		le := ln.End - clipStart
		if ls < 0 {
			ls = 0
		}
		if le > clipDur {
			le = clipDur
		}
		if le <= ls || ls >= clipDur {
			continue
		}
		nl := ln
		nl.Start = ls
		nl.End = le
		out = append(out, nl)
	}
	return out
}

func dur(sec float64) time.Duration { return time.Duration(sec * float64(time.Second)) }
