// Package midi decodes raw MIDI channel messages into synthesizer calls.
// Field decoding is done by gomidi; the dispatcher adds the channel filter
// and drops malformed messages before they reach it.
package midi

import (
	"sync/atomic"

	"github.com/rsta2/minisynth/assert"
	gomidi "gitlab.com/gomidi/midi/v2"
)

// Target receives the decoded messages. engine.Synthesizer implements it.
type Target interface {
	NoteOn(key, velocity uint8)
	NoteOff(key uint8)
	ControlChange(cc, value uint8)
	ProgramChange(program uint8)
}

const (
	programChange = 0xC
	systemMessage = 0xF

	// OmniChannel accepts messages on every channel.
	OmniChannel = 0
)

// Dispatcher forwards the messages addressed to its channel to a target.
// Dispatch and SetChannel may be called from different goroutines.
type Dispatcher struct {
	target  Target
	channel atomic.Int32
}

// NewDispatcher listens on channel 1..16, or on all of them if channel is
// OmniChannel.
func NewDispatcher(target Target, channel int) *Dispatcher {
	assert.True(target != nil, "nil MIDI target")
	d := &Dispatcher{target: target}
	d.SetChannel(channel)
	return d
}

// SetChannel changes the channel listened on. Values outside 0..16 select
// omni mode.
func (d *Dispatcher) SetChannel(channel int) {
	if channel < OmniChannel || channel > 16 {
		channel = OmniChannel
	}
	d.channel.Store(int32(channel))
}

func (d *Dispatcher) Channel() int { return int(d.channel.Load()) }

// Dispatch decodes one message. Messages that are too short, that carry
// invalid data bytes, that are system messages or that are for another
// channel are dropped. Bytes beyond the message length are ignored.
func (d *Dispatcher) Dispatch(msg []byte) {
	if len(msg) < 2 || msg[0]&0x80 == 0 {
		return
	}
	kind := msg[0] >> 4
	if kind == systemMessage {
		return
	}
	if ch := d.channel.Load(); ch != OmniChannel && int32(msg[0]&0x0F)+1 != ch {
		return
	}
	n := 3
	if kind == programChange {
		n = 2
	}
	if !valid(msg, n) {
		return
	}
	m := gomidi.Message(msg[:n])
	var channel, key, velocity, cc, value, program uint8
	switch {
	case m.GetNoteStart(&channel, &key, &velocity):
		d.target.NoteOn(key, velocity)
	case m.GetNoteEnd(&channel, &key):
		d.target.NoteOff(key)
	case m.GetControlChange(&channel, &cc, &value):
		d.target.ControlChange(cc, value)
	case m.GetProgramChange(&channel, &program):
		d.target.ProgramChange(program)
	}
}

// valid reports whether msg holds n bytes with n-1 data bytes below 0x80.
func valid(msg []byte, n int) bool {
	if len(msg) < n {
		return false
	}
	for _, b := range msg[1:n] {
		if b&0x80 != 0 {
			return false
		}
	}
	return true
}
