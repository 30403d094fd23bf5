package minisynth

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

// Config holds the startup settings. Fields map to lower-case keys in
// config.yml.
type Config struct {
	SampleRate       int
	VoicesPerCore    int
	Cores            int
	Patches          int
	ActivePatch      int
	LastNotePriority bool
	MIDIChannel      int    // 0 listens on all channels
	MIDIInput        string // prefix of the MIDI input port name, "" for the first
	Backend          string
	BufferFrames     int
	PatchDir         string
	MIDICCMap        string // relative to PatchDir
	VelocityCurve    string // relative to PatchDir
}

//go:embed config.yml
var defaultConfigYaml []byte

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	var c Config
	if err := yaml.UnmarshalStrict(defaultConfigYaml, &c); err != nil {
		panic(fmt.Errorf("failed to unmarshal default config: %w", err))
	}
	return c
}

// LoadConfig layers the file at path over the defaults. A missing file is not
// an error.
func LoadConfig(path string) (Config, error) {
	c := DefaultConfig()
	if path == "" {
		return c, nil
	}
	bytes, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return c, fmt.Errorf("cannot read config: %w", err)
	}
	if err := yaml.UnmarshalStrict(bytes, &c); err != nil {
		return DefaultConfig(), fmt.Errorf("cannot parse config %v: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return DefaultConfig(), fmt.Errorf("invalid config %v: %w", path, err)
	}
	return c, nil
}

func (c *Config) Validate() error {
	switch {
	case c.SampleRate < 8000 || c.SampleRate > 192000:
		return fmt.Errorf("sample rate %d out of range", c.SampleRate)
	case c.VoicesPerCore < 1:
		return errors.New("need at least one voice per core")
	case c.Cores < 1:
		return errors.New("need at least one core")
	case c.Patches < 1:
		return errors.New("need at least one patch slot")
	case c.ActivePatch < 0 || c.ActivePatch >= c.Patches:
		return fmt.Errorf("active patch %d out of range 0..%d", c.ActivePatch, c.Patches-1)
	case c.MIDIChannel < 0 || c.MIDIChannel > 16:
		return fmt.Errorf("MIDI channel %d out of range 0..16", c.MIDIChannel)
	case c.BufferFrames < 1:
		return errors.New("buffer must hold at least one frame")
	}
	return nil
}

// PatchPath is the file backing patch slot i.
func (c *Config) PatchPath(i int) string {
	return filepath.Join(c.PatchDir, fmt.Sprintf("patch%d.yml", i))
}

func (c *Config) MIDICCMapPath() string { return c.storagePath(c.MIDICCMap) }

func (c *Config) VelocityCurvePath() string { return c.storagePath(c.VelocityCurve) }

func (c *Config) storagePath(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.PatchDir, name)
}

// ChannelParameter describes the channel setting for display and stepping.
func (c *Config) ChannelParameter() Parameter {
	p := MakeParameter("MIDIChannel", MIDIChannelParameter, 0, 16, 1, 0, "Channel")
	p.Set(c.MIDIChannel)
	return p
}
