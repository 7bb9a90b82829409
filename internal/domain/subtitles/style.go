// Package subtitles builds renderer-facing caption specs: force-style
// strings, WebVTT payloads, and drawtext filter chains.
package subtitles

import (
	"fmt"
	"strings"

	"github.com/clipforge/clipforge/internal/fonts"
	"github.com/clipforge/clipforge/internal/types"
)

// Style is a caption look selected by the caller. All fields are string keys
// validated against closed sets; unknown keys fall back to defaults instead
// of failing, so a stale saved preference never blocks a render.
type Style struct {
	Font     string
	Size     string
	Weight   string
	Position string
}

const (
	DefaultSize     = "medium"
	DefaultWeight   = "normal"
	DefaultPosition = "bottom"

	PositionTop    = "top"
	PositionCenter = "center"
	PositionBottom = "bottom"
)

// Point sizes are tuned against a 1920-high frame and scaled to the actual
// resolution at render time.
var sizePoints = map[string]int{
	"verysmall": 36,
	"small":     48,
	"medium":    64,
	"large":     84,
}

var weightBold = map[string]bool{
	"light":     false,
	"normal":    false,
	"medium":    false,
	"semibold":  true,
	"bold":      true,
	"extrabold": true,
}

// Three fixed vertical-margin tiers, one per anchor position. Margins are
// not derived from text metrics.
var positionMargin = map[string]int{
	PositionTop:    140,
	PositionCenter: 0,
	PositionBottom: 140,
}

// libass numpad alignment codes.
var positionAlignment = map[string]int{
	PositionTop:    8,
	PositionCenter: 5,
	PositionBottom: 2,
}

// ValidationError reports a caption configuration that cannot be rendered.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid caption config: %s: %s", e.Field, e.Reason)
}

func (s Style) normalized() Style {
	if _, ok := sizePoints[s.Size]; !ok {
		s.Size = DefaultSize
	}
	if _, ok := weightBold[s.Weight]; !ok {
		s.Weight = DefaultWeight
	}
	if _, ok := positionMargin[s.Position]; !ok {
		s.Position = DefaultPosition
	}
	return s
}

// PointSize returns the font size scaled to the target frame height.
func (s Style) PointSize(dims types.Dimensions) int {
	pt := sizePoints[s.normalized().Size]
	return pt * dims.Height / 1920
}

// BuildForceStyle maps a caption style plus the target video resolution into
// a subtitle-renderer force_style string. PlayRes anchors the renderer's
// coordinate space to the real frame so horizontal centering holds on any
// resolution. The look is deliberately flat: white text, no outline or
// shadow, transparent background.
func BuildForceStyle(st Style, reg *fonts.Registry, dims types.Dimensions) (string, error) {
	if !dims.Valid() {
		return "", &ValidationError{Field: "dimensions", Reason: "video dimensions are required"}
	}
	st = st.normalized()
	font := reg.Resolve(st.Font)

	bold := 0
	if weightBold[st.Weight] {
		bold = 1
	}

	parts := []string{
		fmt.Sprintf("PlayResX=%d", dims.Width),
		fmt.Sprintf("PlayResY=%d", dims.Height),
		"FontName=" + font.DisplayName,
		fmt.Sprintf("FontSize=%d", st.PointSize(dims)),
		fmt.Sprintf("Bold=%d", bold),
		"PrimaryColour=&H00FFFFFF",
		"BackColour=&HFF000000",
		"BorderStyle=1",
		"Outline=0",
		"Shadow=0",
		fmt.Sprintf("Alignment=%d", positionAlignment[st.Position]),
		fmt.Sprintf("MarginV=%d", positionMargin[st.Position]),
	}
	return strings.Join(parts, ","), nil
}
