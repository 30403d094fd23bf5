package minisynth

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"sort"
)

//go:embed presets/*.yml
var presetFS embed.FS

var presets []*Patch

func init() {
	names, err := fs.Glob(presetFS, "presets/*.yml")
	if err != nil {
		panic(fmt.Errorf("cannot list presets: %w", err))
	}
	sort.Strings(names)
	for _, name := range names {
		data, err := presetFS.ReadFile(name)
		if err != nil {
			panic(fmt.Errorf("cannot read preset %v: %w", name, err))
		}
		p := NewPatch()
		if err := p.Load(bytes.NewReader(data)); err != nil {
			panic(fmt.Errorf("preset %v: %w", name, err))
		}
		presets = append(presets, p)
	}
}

// Preset returns a copy of the i-th built-in patch, or false if there is
// none. Presets seed patch slots that have no file yet.
func Preset(i int) (*Patch, bool) {
	if i < 0 || i >= len(presets) {
		return nil, false
	}
	return presets[i].Copy(), true
}

func NumPresets() int { return len(presets) }
