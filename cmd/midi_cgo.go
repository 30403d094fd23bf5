//go:build cgo

package cmd

import (
	"io"

	"github.com/rsta2/minisynth/midi"
	"github.com/rsta2/minisynth/midi/gomidi"
)

// OpenMIDIInput connects the first input port matching namePrefix to d.
func OpenMIDIInput(namePrefix string, d *midi.Dispatcher) (io.Closer, error) {
	in, err := gomidi.Open(namePrefix, d)
	if err != nil {
		return nil, err
	}
	return in, nil
}

func MIDIPorts() ([]string, error) {
	return gomidi.Ports()
}
