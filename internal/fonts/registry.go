// Package fonts is a static registry of the caption fonts bundled with the
// application. Lookup only; the renderer reads the font files itself.
package fonts

import (
	"os"
	"path/filepath"
	"sort"
)

type Font struct {
	Key         string
	DisplayName string
	Description string
	File        string
}

const DefaultKey = "roboto"

var table = map[string]Font{
	"roboto":     {Key: "roboto", DisplayName: "Roboto", Description: "Clean geometric sans, the safe default", File: "Roboto-Bold.ttf"},
	"inter":      {Key: "inter", DisplayName: "Inter", Description: "Neutral UI sans with tall x-height", File: "Inter-Bold.ttf"},
	"montserrat": {Key: "montserrat", DisplayName: "Montserrat", Description: "Wide display sans", File: "Montserrat-Bold.ttf"},
	"oswald":     {Key: "oswald", DisplayName: "Oswald", Description: "Condensed headline sans", File: "Oswald-Bold.ttf"},
	"poppins":    {Key: "poppins", DisplayName: "Poppins", Description: "Rounded geometric sans", File: "Poppins-Bold.ttf"},
	"anton":      {Key: "anton", DisplayName: "Anton", Description: "Heavy impact-style display face", File: "Anton-Regular.ttf"},
}

type Registry struct {
	dir string
}

// New returns a registry rooted at dir. Empty dir defaults to the bundled
// assets/fonts directory relative to the working directory.
func New(dir string) *Registry {
	if dir == "" {
		dir = filepath.Join("assets", "fonts")
	}
	return &Registry{dir: dir}
}

// Resolve returns the font for key, or the default font for unknown keys.
// Unknown keys are a styling preference problem, not an error.
func (r *Registry) Resolve(key string) Font {
	if f, ok := table[key]; ok {
		return f
	}
	return table[DefaultKey]
}

// FilePath returns the on-disk path of the resolved font file.
func (r *Registry) FilePath(key string) string {
	return filepath.Join(r.dir, r.Resolve(key).File)
}

// Dir is the fonts directory handed to subtitle-burn filters so the renderer
// can discover the bundled families.
func (r *Registry) Dir() string { return r.dir }

// Installed reports whether the resolved font file actually exists on disk.
func (r *Registry) Installed(key string) bool {
	_, err := os.Stat(r.FilePath(key))
	return err == nil
}

func Keys() []string {
	out := make([]string, 0, len(table))
	for k := range table {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
