package subtitles

import (
	"fmt"
	"strings"
	"time"

	"github.com/clipforge/clipforge/internal/domain/captions"
)

// RenderVTT serializes clip-local caption lines as a WebVTT document. Lines
// whose window collapsed during rebasing (end <= start) or that start at or
// past the clip duration are silently dropped; that is the per-clip overlap
// policy, not an error.
func RenderVTT(lines []captions.Line, clipDur time.Duration) string {
	var b strings.Builder
	b.WriteString("WEBVTT\n\n")
	n := 0
	for _, ln := range lines {
		if ln.End <= ln.Start || ln.Start >= clipDur {
			continue
		}
		n++
		fmt.Fprintf(&b, "%d\n", n)
		b.WriteString(vttTime(ln.Start))
		b.WriteString(" --> ")
		b.WriteString(vttTime(ln.End))
		b.WriteString("\n")
		b.WriteString(strings.TrimSpace(ln.Text))
		b.WriteString("\n\n")
	}
	return b.String()
}

// EmptyVTT is the graceful-degradation document served when a clip has no
// transcript: a valid payload players accept, rather than an error.
func EmptyVTT() string {
	return "WEBVTT\n\nNOTE no captions available\n"
}

// BurnFilter builds the subtitle-burn filter clause for a written VTT file.
// fontsDir lets the renderer discover the bundled caption fonts.
func BurnFilter(vttPath, fontsDir, forceStyle string) string {
	f := "subtitles=" + escapeFilterPath(vttPath)
	if fontsDir != "" {
		f += ":fontsdir=" + escapeFilterPath(fontsDir)
	}
	if forceStyle != "" {
		f += ":force_style='" + forceStyle + "'"
	}
	return f
}

func vttTime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := int(d / time.Hour)
	d -= time.Duration(h) * time.Hour
	m := int(d / time.Minute)
	d -= time.Duration(m) * time.Minute
	s := int(d / time.Second)
	d -= time.Duration(s) * time.Second
	ms := int(d / time.Millisecond)
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms)
}

func escapeFilterPath(p string) string {
	p = strings.ReplaceAll(p, "\\", "\\\\")
	p = strings.ReplaceAll(p, ":", "\\:")
	p = strings.ReplaceAll(p, "'", "\\'")
	return p
}
