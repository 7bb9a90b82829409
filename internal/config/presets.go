// Package config holds the per-platform caption and rendering presets,
// with optional overrides from a YAML file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/clipforge/clipforge/internal/domain/captions"
	"github.com/clipforge/clipforge/internal/domain/subtitles"
	"github.com/clipforge/clipforge/internal/ports"
)

type CaptionPreset struct {
	Font            string `yaml:"font"`
	Size            string `yaml:"size"`
	Weight          string `yaml:"weight"`
	Position        string `yaml:"position"`
	MaxWordsPerLine int    `yaml:"max_words_per_line"`
	MinDisplayMs    int    `yaml:"min_display_ms"`
}

type PlatformPreset struct {
	Caption CaptionPreset `yaml:"caption"`
	Aspect  string        `yaml:"aspect"`
}

const DefaultPlatform = "default"

// Closed preset table; unknown platforms resolve to "default" rather than
// failing. Vertical platforms share the 9:16 canvas.
var builtin = map[string]PlatformPreset{
	DefaultPlatform: {
		Caption: CaptionPreset{Font: "roboto", Size: "medium", Weight: "normal", Position: "bottom"},
		Aspect:  string(ports.AspectOriginal),
	},
	"tiktok": {
		Caption: CaptionPreset{Font: "montserrat", Size: "large", Weight: "extrabold", Position: "center"},
		Aspect:  string(ports.AspectVertical),
	},
	"instagram": {
		Caption: CaptionPreset{Font: "poppins", Size: "medium", Weight: "semibold", Position: "bottom"},
		Aspect:  string(ports.AspectVertical),
	},
	"youtube": {
		Caption: CaptionPreset{Font: "roboto", Size: "medium", Weight: "bold", Position: "bottom"},
		Aspect:  string(ports.AspectOriginal),
	},
	"linkedin": {
		Caption: CaptionPreset{Font: "inter", Size: "small", Weight: "normal", Position: "bottom"},
		Aspect:  string(ports.AspectOriginal),
	},
	"threads": {
		Caption: CaptionPreset{Font: "inter", Size: "medium", Weight: "semibold", Position: "bottom"},
		Aspect:  string(ports.AspectVertical),
	},
	"bluesky": {
		Caption: CaptionPreset{Font: "inter", Size: "small", Weight: "normal", Position: "bottom"},
		Aspect:  string(ports.AspectOriginal),
	},
}

type Presets struct {
	table map[string]PlatformPreset
}

func Builtin() *Presets {
	t := make(map[string]PlatformPreset, len(builtin))
	for k, v := range builtin {
		t[k] = v
	}
	return &Presets{table: t}
}

// Load overlays YAML platform presets on top of the builtin table. Missing
// file fields keep their builtin values only at whole-platform granularity;
// a platform present in the file replaces the builtin entry.
func Load(path string) (*Presets, error) {
	p := Builtin()
	if path == "" {
		return p, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read presets: %w", err)
	}
	var file map[string]PlatformPreset
	if err := yaml.Unmarshal(b, &file); err != nil {
		return nil, fmt.Errorf("parse presets: %w", err)
	}
	for k, v := range file {
		p.table[k] = v
	}
	return p, nil
}

// For resolves the preset for a platform, falling back to the default entry.
func (p *Presets) For(platform string) PlatformPreset {
	if v, ok := p.table[platform]; ok {
		return v
	}
	return p.table[DefaultPlatform]
}

func (pp PlatformPreset) Style() subtitles.Style {
	return subtitles.Style{
		Font:     pp.Caption.Font,
		Size:     pp.Caption.Size,
		Weight:   pp.Caption.Weight,
		Position: pp.Caption.Position,
	}
}

func (pp PlatformPreset) SegmentOptions() captions.Options {
	return captions.Options{
		MaxWordsPerLine: pp.Caption.MaxWordsPerLine,
		MinDisplayTime:  time.Duration(pp.Caption.MinDisplayMs) * time.Millisecond,
	}
}

func (pp PlatformPreset) AspectRatio() ports.AspectRatio {
	switch ports.AspectRatio(pp.Aspect) {
	case ports.AspectVertical, ports.AspectCinema, ports.AspectOriginal:
		return ports.AspectRatio(pp.Aspect)
	default:
		return ports.AspectOriginal
	}
}
