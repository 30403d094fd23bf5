package dsp

import (
	"math"

	"github.com/rsta2/minisynth/assert"
)

type (
	EnvelopeState int

	// EnvelopeGenerator is a linear ADSR envelope. Times are given in
	// milliseconds, levels in [0,1].
	EnvelopeGenerator struct {
		sampleRate    float32
		attack        uint32
		decay         uint32
		sustain       float32
		release       uint32
		state         EnvelopeState
		sampleCount   uint32
		velocityLevel float32
		releaseLevel  float32
		out           float32
	}
)

const (
	EnvelopeIdle EnvelopeState = iota
	EnvelopeAttack
	EnvelopeDecay
	EnvelopeSustain
	EnvelopeRelease
)

func (s EnvelopeState) String() string {
	switch s {
	case EnvelopeIdle:
		return "idle"
	case EnvelopeAttack:
		return "attack"
	case EnvelopeDecay:
		return "decay"
	case EnvelopeSustain:
		return "sustain"
	case EnvelopeRelease:
		return "release"
	}
	return "unknown"
}

func MakeEnvelopeGenerator(sampleRate float32) EnvelopeGenerator {
	return EnvelopeGenerator{
		sampleRate: sampleRate,
		attack:     200,
		decay:      5000,
		sustain:    0.5,
		release:    500,
	}
}

func (e *EnvelopeGenerator) SetAttack(ms uint32) { e.attack = ms }

func (e *EnvelopeGenerator) SetDecay(ms uint32) {
	assert.True(ms > 0, "decay time must be positive")
	e.decay = ms
}

func (e *EnvelopeGenerator) SetSustain(level float32) {
	assert.True(level >= 0 && level <= 1, "sustain level %v out of [0,1]", level)
	e.sustain = level
}

func (e *EnvelopeGenerator) SetRelease(ms uint32) { e.release = ms }

// NoteOn starts the attack phase towards velocityLevel. The envelope must be
// idle or releasing.
func (e *EnvelopeGenerator) NoteOn(velocityLevel float32) {
	assert.True(e.state == EnvelopeIdle || e.state == EnvelopeRelease, "NoteOn in %v state", e.state)
	assert.True(velocityLevel > 0 && velocityLevel <= 1, "velocity level %v out of (0,1]", velocityLevel)
	e.state = EnvelopeAttack
	e.velocityLevel = velocityLevel
	e.sampleCount = 0
	e.out = 0
}

// NoteOff starts the release phase from the current level. It does nothing
// while idle.
func (e *EnvelopeGenerator) NoteOff() {
	if e.state == EnvelopeIdle {
		return
	}
	e.state = EnvelopeRelease
	e.sampleCount = 0
	e.releaseLevel = e.out
}

func (e *EnvelopeGenerator) State() EnvelopeState { return e.state }

func (e *EnvelopeGenerator) OutputLevel() float32 { return e.out }

func (e *EnvelopeGenerator) NextSample() float32 {
	if e.sampleCount < math.MaxUint32 {
		e.sampleCount++
	}
	switch e.state {
	case EnvelopeAttack:
		if e.ramp(0, e.velocityLevel, e.attack) {
			e.sampleCount = 0
			e.state = EnvelopeDecay
		}
	case EnvelopeDecay:
		if e.ramp(e.velocityLevel, e.sustain*e.velocityLevel, e.decay) {
			e.sampleCount = 0
			e.state = EnvelopeSustain
		}
		if e.out == 0 {
			e.state = EnvelopeIdle
		}
	case EnvelopeRelease:
		if e.ramp(e.releaseLevel, 0, e.release) {
			e.state = EnvelopeIdle
		}
	}
	return e.out
}

// ramp interpolates the output between from and to over ms milliseconds and
// reports whether the phase is complete. A zero duration jumps to the target.
func (e *EnvelopeGenerator) ramp(from, to float32, ms uint32) bool {
	if ms == 0 {
		e.out = to
		return true
	}
	elapsed := float32(e.sampleCount) * 1000 / e.sampleRate
	e.out = from + (to-from)*(elapsed/float32(ms))
	if e.out < 0 {
		e.out = 0
		return true
	}
	if e.out > 1 {
		e.out = 1
		return true
	}
	return elapsed >= float32(ms)
}
