package subtitles

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/clipforge/clipforge/internal/domain/captions"
	"github.com/clipforge/clipforge/internal/fonts"
	"github.com/clipforge/clipforge/internal/types"
)

// TextFile is one per-line caption text file the caller must create before
// invoking the transcoder and delete afterwards, success or failure.
type TextFile struct {
	Path    string
	Content string
}

// DrawtextSpec is the drawtext rendering plan for one clip: an ordered list
// of filter clauses plus the text files they reference. No shared state; the
// whole plan is threaded through the call chain explicitly.
type DrawtextSpec struct {
	Filters   []string
	TextFiles []TextFile
}

// BuildDrawtext emits one drawtext clause per clip-local caption line, each
// gated by enable='between(t,start,end)'. The literal line text goes into a
// uniquely named file under scratchDir; referencing text by file sidesteps
// drawtext's inline escaping rules entirely. Lines with a collapsed window
// or starting at/past clipDur are dropped.
func BuildDrawtext(lines []captions.Line, st Style, reg *fonts.Registry, dims types.Dimensions, clipDur time.Duration, scratchDir string) (DrawtextSpec, error) {
	if !dims.Valid() {
		return DrawtextSpec{}, &ValidationError{Field: "dimensions", Reason: "video dimensions are required"}
	}
	st = st.normalized()
	fontFile := reg.FilePath(st.Font)
	size := st.PointSize(dims)

	var spec DrawtextSpec
	for i, ln := range lines {
		if ln.End <= ln.Start || ln.Start >= clipDur {
			continue
		}
		path := filepath.Join(scratchDir, fmt.Sprintf("caption-%03d-%s.txt", i, uuid.NewString()[:8]))
		spec.TextFiles = append(spec.TextFiles, TextFile{Path: path, Content: ln.Text})
		spec.Filters = append(spec.Filters, drawtextClause(path, fontFile, size, st.Position, dims, ln.Start, ln.End))
	}
	return spec, nil
}

func drawtextClause(textFile, fontFile string, size int, position string, dims types.Dimensions, start, end time.Duration) string {
	return fmt.Sprintf(
		"drawtext=textfile='%s':fontfile='%s':fontsize=%d:fontcolor=white:x=(w-text_w)/2:y=%s:enable='between(t,%.3f,%.3f)'",
		escapeFilterPath(textFile),
		escapeFilterPath(fontFile),
		size,
		yExpr(position, dims),
		start.Seconds(),
		end.Seconds(),
	)
}

// yExpr anchors the text vertically. Margins reuse the force-style tiers,
// scaled to the actual frame height so placement matches the subtitle-burn
// path at any resolution.
func yExpr(position string, dims types.Dimensions) string {
	margin := positionMargin[position] * dims.Height / 1920
	switch position {
	case PositionTop:
		return fmt.Sprintf("%d", margin)
	case PositionCenter:
		return "(h-text_h)/2"
	default:
		return fmt.Sprintf("h-text_h-%d", margin)
	}
}
