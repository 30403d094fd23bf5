//go:build !cgo

package cmd

import (
	"errors"
	"io"

	"github.com/rsta2/minisynth/midi"
)

var errNoMIDI = errors.New("MIDI input needs a cgo build")

// with no cgo there is no rtmidi, so MIDI input is unavailable
func OpenMIDIInput(namePrefix string, d *midi.Dispatcher) (io.Closer, error) {
	return nil, errNoMIDI
}

func MIDIPorts() ([]string, error) {
	return nil, errNoMIDI
}
