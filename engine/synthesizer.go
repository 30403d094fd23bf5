// Package engine ties patches, MIDI mappings and the voice pool together
// behind one lock and produces stereo audio chunks.
package engine

import (
	"errors"
	"fmt"
	"log"
	"math"
	"os"
	"sync"
	"sync/atomic"

	"github.com/rsta2/minisynth"
	"github.com/rsta2/minisynth/synth"
	"github.com/viterin/vek/vek32"
)

// Synthesizer is the complete instrument. All methods are safe for
// concurrent use: note events, patch edits and GetChunk are serialized by a
// single lock.
type Synthesizer struct {
	mu       sync.Mutex
	config   minisynth.Config
	voices   *synth.VoiceManager
	patches  []*minisynth.Patch
	active   int
	velocity minisynth.VelocityCurve
	ccMap    minisynth.MIDICCMap
	level    float32
	failed   bool

	revision atomic.Uint64
	seen     atomic.Uint64
}

var _ minisynth.Synth = (*Synthesizer)(nil)

// New builds a synthesizer from cfg, loading the patch slots, the MIDI CC
// map and the velocity curve from the storage paths in cfg. Slots without a
// patch file start from the built-in presets. The returned synthesizer is
// always usable; a non-nil error lists the files that could not be read.
func New(cfg minisynth.Config) (*Synthesizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("engine.New: %w", err)
	}
	s := &Synthesizer{
		config:   cfg,
		voices:   synth.NewVoiceManager(float32(cfg.SampleRate), cfg.VoicesPerCore, cfg.Cores, cfg.LastNotePriority),
		patches:  make([]*minisynth.Patch, cfg.Patches),
		active:   cfg.ActivePatch,
		velocity: minisynth.LinearVelocityCurve(),
	}
	var errs []error
	for i := range s.patches {
		p, err := minisynth.LoadPatchFile(cfg.PatchPath(i))
		if errors.Is(err, minisynth.ErrNoStorage) {
			if preset, ok := minisynth.Preset(i); ok {
				p = preset
			}
			err = nil
		}
		if err != nil {
			errs = append(errs, err)
		}
		s.patches[i] = p
	}
	if path := cfg.MIDICCMapPath(); path != "" {
		m, err := minisynth.LoadMIDICCMapFile(path)
		if err != nil && !errors.Is(err, minisynth.ErrNoStorage) {
			errs = append(errs, err)
		}
		s.ccMap = m
	}
	if path := cfg.VelocityCurvePath(); path != "" {
		c, err := minisynth.LoadVelocityCurveFile(path)
		if err != nil && !errors.Is(err, minisynth.ErrNoStorage) {
			errs = append(errs, err)
		}
		s.velocity = c
	}
	s.applyPatch()
	return s, errors.Join(errs...)
}

func (s *Synthesizer) Config() minisynth.Config { return s.config }

// SetPatch replaces the active patch with a copy of p and applies it.
func (s *Synthesizer) SetPatch(p *minisynth.Patch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.patches[s.active] = p.Copy()
	s.applyPatch()
}

// Patch returns a copy of the active patch.
func (s *Synthesizer) Patch() *minisynth.Patch {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.patches[s.active].Copy()
}

func (s *Synthesizer) NumPatches() int { return len(s.patches) }

// PatchName returns the name stored in slot i.
func (s *Synthesizer) PatchName(i int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.patches) {
		return ""
	}
	return s.patches[i].Property(minisynth.PatchName)
}

func (s *Synthesizer) ActivePatch() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// SelectPatch makes slot i the active patch.
func (s *Synthesizer) SelectPatch(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.patches) {
		return fmt.Errorf("patch %d out of range 0..%d", i, len(s.patches)-1)
	}
	s.active = i
	s.applyPatch()
	return nil
}

// SavePatches writes every slot to its patch file.
func (s *Synthesizer) SavePatches() error {
	s.mu.Lock()
	patches := make([]*minisynth.Patch, len(s.patches))
	for i, p := range s.patches {
		patches[i] = p.Copy()
	}
	s.mu.Unlock()
	if s.config.PatchDir != "" {
		if err := os.MkdirAll(s.config.PatchDir, 0755); err != nil {
			return fmt.Errorf("cannot create patch directory: %w", err)
		}
	}
	var errs []error
	for i, p := range patches {
		errs = append(errs, minisynth.SavePatchFile(s.config.PatchPath(i), p))
	}
	return errors.Join(errs...)
}

// NoteOn plays key with velocity passed through the velocity curve.
// Velocity 0 releases the key.
func (s *Synthesizer) NoteOn(key, velocity uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if velocity == 0 {
		s.voices.NoteOff(key)
		return
	}
	s.voices.NoteOn(key, s.velocity.Map(velocity))
}

func (s *Synthesizer) NoteOff(key uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.voices.NoteOff(key)
}

func (s *Synthesizer) AllNotesOff() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.voices.AllNotesOff()
}

// ControlChange sets the parameter mapped to cc on the active patch.
// Unmapped controllers are ignored.
func (s *Synthesizer) ControlChange(cc, value uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()
	param, ok := s.ccMap.Map(cc)
	if !ok {
		return
	}
	if !s.patches[s.active].SetMIDIParameter(param, value) {
		return
	}
	s.applyPatch()
}

// ProgramChange selects a patch slot. Programs beyond the last slot are
// ignored.
func (s *Synthesizer) ProgramChange(program uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if int(program) >= len(s.patches) {
		return
	}
	s.active = int(program)
	s.applyPatch()
}

// ConfigUpdated reports whether the active patch was changed or replaced
// since the previous call, e.g. by a controller or a program change.
func (s *Synthesizer) ConfigUpdated() bool {
	r := s.revision.Load()
	return s.seen.Swap(r) != r
}

// ActiveVoices counts the voices currently sounding.
func (s *Synthesizer) ActiveVoices() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.voices.ActiveVoices()
}

// GetChunk fills buf with interleaved stereo samples in [-1,1] and returns
// the number of values written, which is len(buf) rounded down to whole
// frames. A panic while rendering is logged once and the chunk is silent.
func (s *Synthesizer) GetChunk(buf []float32) (n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n = len(buf) &^ 1
	if n == 0 {
		return 0
	}
	defer func() {
		if err := recover(); err != nil {
			clear(buf[:n])
			if !s.failed {
				log.Printf("minisynth: rendering failed: %v", err)
				s.failed = true
			}
		}
	}()
	for i := 0; i < n; i += 2 {
		s.voices.NextSample()
		buf[i] = s.voices.OutputLevelLeft()
		buf[i+1] = s.voices.OutputLevelRight()
	}
	out := buf[:n]
	vek32.MulNumber_Inplace(out, s.level)
	vek32.MinimumNumber_Inplace(out, 1)
	vek32.MaximumNumber_Inplace(out, -1)
	return n
}

// Close stops the voice pool's worker cores.
func (s *Synthesizer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.voices.Close()
}

// applyPatch pushes the active patch to the voices and bumps the revision.
// The caller holds the lock.
func (s *Synthesizer) applyPatch() {
	p := s.patches[s.active]
	s.voices.SetPatch(p)
	s.level = VolumeLevel(p.Parameter(minisynth.SynthVolume))
	s.revision.Add(1)
}

// VolumeLevel maps the SynthVolume percentage to the output gain
// 0.5*(percent/100)^3.3.
func VolumeLevel(percent int) float32 {
	return float32(0.5 * math.Pow(float64(percent)/100, 3.3))
}
