package midi_test

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/rsta2/minisynth/midi"
	gomidi "gitlab.com/gomidi/midi/v2"
)

type recorder struct {
	calls []string
}

func (r *recorder) NoteOn(key, velocity uint8) {
	r.calls = append(r.calls, fmt.Sprintf("NoteOn(%d,%d)", key, velocity))
}

func (r *recorder) NoteOff(key uint8) {
	r.calls = append(r.calls, fmt.Sprintf("NoteOff(%d)", key))
}

func (r *recorder) ControlChange(cc, value uint8) {
	r.calls = append(r.calls, fmt.Sprintf("ControlChange(%d,%d)", cc, value))
}

func (r *recorder) ProgramChange(program uint8) {
	r.calls = append(r.calls, fmt.Sprintf("ProgramChange(%d)", program))
}

func TestDispatch(t *testing.T) {
	table := []struct {
		name string
		msg  []byte
		want []string
	}{
		{"note on", []byte{0x90, 60, 100}, []string{"NoteOn(60,100)"}},
		{"note on with zero velocity", []byte{0x90, 60, 0}, []string{"NoteOff(60)"}},
		{"truncated note on", []byte{0x90, 60}, nil},
		{"note off", gomidi.NoteOffVelocity(3, 64, 40), []string{"NoteOff(64)"}},
		{"control change", gomidi.ControlChange(15, 74, 127), []string{"ControlChange(74,127)"}},
		{"truncated control change", []byte{0xB0, 74}, nil},
		{"program change", gomidi.ProgramChange(0, 5), []string{"ProgramChange(5)"}},
		{"pitch bend", gomidi.Pitchbend(0, 100), nil},
		{"poly aftertouch", gomidi.PolyAfterTouch(0, 60, 10), nil},
		{"truncated program change", []byte{0xC0}, nil},
		{"system message", []byte{0xF8, 0, 0}, nil},
		{"running status", []byte{60, 100, 0}, nil},
		{"bad data byte", []byte{0x90, 0x80, 100}, nil},
		{"trailing bytes", []byte{0x80, 61, 0, 0x90}, []string{"NoteOff(61)"}},
		{"empty", nil, nil},
	}
	for _, c := range table {
		r := &recorder{}
		midi.NewDispatcher(r, midi.OmniChannel).Dispatch(c.msg)
		if !reflect.DeepEqual(r.calls, c.want) {
			t.Errorf("%v: got %v, expected %v", c.name, r.calls, c.want)
		}
	}
}

func TestDispatchChannelFilter(t *testing.T) {
	r := &recorder{}
	d := midi.NewDispatcher(r, 10)
	d.Dispatch(gomidi.NoteOn(0, 60, 100))
	d.Dispatch(gomidi.NoteOn(9, 62, 100))
	if !reflect.DeepEqual(r.calls, []string{"NoteOn(62,100)"}) {
		t.Fatalf("channel 10 received %v", r.calls)
	}
	d.SetChannel(17)
	if d.Channel() != midi.OmniChannel {
		t.Fatalf("invalid channel selected %d", d.Channel())
	}
	d.Dispatch(gomidi.NoteOn(0, 64, 100))
	if len(r.calls) != 2 {
		t.Fatalf("omni mode dropped a message: %v", r.calls)
	}
}
