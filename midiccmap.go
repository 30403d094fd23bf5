package minisynth

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
)

const (
	MinMIDICC = 1
	MaxMIDICC = 127
)

// MIDICCMap assigns MIDI control change numbers to synth parameters. Most
// numbers are unassigned.
type MIDICCMap struct {
	params   [MaxMIDICC + 1]SynthParameter
	assigned [MaxMIDICC + 1]bool
}

// Map returns the parameter a controller drives, or false if none.
func (m *MIDICCMap) Map(cc uint8) (SynthParameter, bool) {
	if cc < MinMIDICC || cc > MaxMIDICC {
		return 0, false
	}
	return m.params[cc], m.assigned[cc]
}

// Assign binds cc to param. Numbers outside 1..127 are ignored.
func (m *MIDICCMap) Assign(cc uint8, param SynthParameter) {
	if cc < MinMIDICC || cc > MaxMIDICC || !param.Valid() {
		return
	}
	m.params[cc] = param
	m.assigned[cc] = true
}

// LoadMIDICCMap reads entries of the form "VCFCutoffFrequency: 74", one per
// parameter. Unknown names and invalid numbers are skipped; when two
// parameters name the same controller the later one wins.
func LoadMIDICCMap(r io.Reader) (MIDICCMap, error) {
	var m MIDICCMap
	store, err := readStore(r)
	if err != nil {
		return m, fmt.Errorf("cannot read MIDI CC map: %w", err)
	}
	for i := 0; i < NumSynthParameters; i++ {
		param := SynthParameter(i)
		s, ok := store[param.String()]
		if !ok {
			continue
		}
		if cc, err := strconv.Atoi(s); err == nil && cc >= MinMIDICC && cc <= MaxMIDICC {
			m.Assign(uint8(cc), param)
		}
	}
	return m, nil
}

// LoadMIDICCMapFile is LoadMIDICCMap on a file; a missing file yields an
// empty map and ErrNoStorage.
func LoadMIDICCMapFile(path string) (MIDICCMap, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return MIDICCMap{}, fmt.Errorf("%w: %v", ErrNoStorage, path)
	}
	if err != nil {
		return MIDICCMap{}, fmt.Errorf("cannot open MIDI CC map: %w", err)
	}
	defer f.Close()
	return LoadMIDICCMap(f)
}
