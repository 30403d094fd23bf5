//go:build cgo

// Package gomidi reads MIDI input ports through rtmidi and feeds the messages
// to a Dispatcher.
package gomidi

import (
	"errors"
	"fmt"
	"strings"

	synthmidi "github.com/rsta2/minisynth/midi"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

// Input is an open MIDI input port.
type Input struct {
	driver *rtmididrv.Driver
	in     drivers.In
	stop   func()
}

// Ports lists the names of the available input ports.
func Ports() ([]string, error) {
	driver, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("cannot open rtmidi driver: %w", err)
	}
	defer driver.Close()
	ins, err := driver.Ins()
	if err != nil {
		return nil, fmt.Errorf("cannot list MIDI inputs: %w", err)
	}
	names := make([]string, len(ins))
	for i, in := range ins {
		names[i] = in.String()
	}
	return names, nil
}

// Open starts listening on the first input port whose name starts with
// namePrefix ("" takes the first port) and dispatches every message to d.
func Open(namePrefix string, d *synthmidi.Dispatcher) (*Input, error) {
	driver, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("cannot open rtmidi driver: %w", err)
	}
	ins, err := driver.Ins()
	if err != nil {
		driver.Close()
		return nil, fmt.Errorf("cannot list MIDI inputs: %w", err)
	}
	var in drivers.In
	for _, candidate := range ins {
		if strings.HasPrefix(candidate.String(), namePrefix) {
			in = candidate
			break
		}
	}
	if in == nil {
		driver.Close()
		if namePrefix == "" {
			return nil, errors.New("could not find any MIDI input")
		}
		return nil, fmt.Errorf("could not find a MIDI input starting with %q", namePrefix)
	}
	if err := in.Open(); err != nil {
		driver.Close()
		return nil, fmt.Errorf("opening MIDI input failed: %w", err)
	}
	stop, err := midi.ListenTo(in, func(msg midi.Message, timestampms int32) {
		d.Dispatch(msg)
	})
	if err != nil {
		in.Close()
		driver.Close()
		return nil, fmt.Errorf("cannot listen to MIDI input: %w", err)
	}
	return &Input{driver: driver, in: in, stop: stop}, nil
}

func (i *Input) String() string { return i.in.String() }

func (i *Input) Close() error {
	i.stop()
	if i.in.IsOpen() {
		i.in.Close()
	}
	return i.driver.Close()
}
