// Package dsp contains the per-sample signal modules of the synthesizer:
// oscillators, envelope generators, the resonant low-pass filter, the
// amplifier, the mixer and the reverb.
//
// Modules do not hold references to each other. Each NextSample call takes
// the current levels of its inputs and modulators as arguments, and the
// owner (a voice or the reverb) wires the outputs in signal-flow order.
package dsp

import (
	"math"

	"github.com/rsta2/minisynth/assert"
)

type (
	// Waveform selects the shape produced by an Oscillator.
	Waveform int

	// Oscillator is a phase accumulator that produces one sample per call to
	// NextSample. The same type serves as a low-frequency modulation source
	// (LFO) and as the audible VCO.
	Oscillator struct {
		sampleRate       float32
		waveform         Waveform
		frequency        float32
		detune           float32
		modulationVolume float32
		phase            float32
		randSeed         uint32
		out              float32
	}
)

const (
	Sine Waveform = iota
	Square
	Sawtooth
	Triangle
	Pulse12
	Pulse25
	Noise

	NumWaveforms = int(Noise) + 1
)

var waveformNames = [NumWaveforms]string{
	"Sine",
	"Square",
	"Sawtooth",
	"Triangle",
	"Pulse 12%",
	"Pulse 25%",
	"Noise",
}

func (w Waveform) String() string {
	if w < 0 || int(w) >= NumWaveforms {
		return "Unknown"
	}
	return waveformNames[w]
}

// WaveformByName is the inverse of Waveform.String.
func WaveformByName(name string) (Waveform, bool) {
	for i, n := range waveformNames {
		if n == name {
			return Waveform(i), true
		}
	}
	return 0, false
}

// MakeOscillator returns a 440 Hz sine oscillator running at sampleRate.
func MakeOscillator(sampleRate float32) Oscillator {
	return Oscillator{
		sampleRate: sampleRate,
		waveform:   Sine,
		frequency:  440,
		detune:     1,
		randSeed:   1,
	}
}

func (o *Oscillator) SetWaveform(w Waveform) {
	assert.True(w >= 0 && int(w) < NumWaveforms, "invalid waveform %d", int(w))
	o.waveform = w
}

func (o *Oscillator) Waveform() Waveform { return o.waveform }

func (o *Oscillator) SetFrequency(hz float32) {
	assert.True(hz >= 0, "negative frequency %v", hz)
	o.frequency = hz
}

func (o *Oscillator) Frequency() float32 { return o.frequency }

// SetDetune sets a ratio multiplied into the frequency, 1 meaning in tune.
func (o *Oscillator) SetDetune(ratio float32) {
	assert.True(ratio > 0, "detune ratio must be positive, got %v", ratio)
	o.detune = ratio
}

// SetModulationVolume sets the depth of the frequency modulation applied by
// NextSample, in [0,1]. At full depth a modulator swinging over [-1,1] bends
// the pitch one octave down and up.
func (o *Oscillator) SetModulationVolume(volume float32) {
	assert.True(volume >= 0 && volume <= 1, "modulation volume %v out of [0,1]", volume)
	o.modulationVolume = volume
}

// Reset restarts the waveform from phase zero.
func (o *Oscillator) Reset() {
	o.phase = 0
	o.out = 0
}

// NextSample computes the output at the current phase, then advances the
// phase. fm is the current level of the modulating oscillator, or 0.
func (o *Oscillator) NextSample(fm float32) float32 {
	switch o.waveform {
	case Sine:
		o.out = float32(math.Sin(2 * math.Pi * float64(o.phase)))
	case Square:
		o.out = pulse(o.phase, 0.5)
	case Sawtooth:
		o.out = 2*o.phase - 1
	case Triangle:
		if o.phase < 0.5 {
			o.out = 4*o.phase - 1
		} else {
			o.out = 3 - 4*o.phase
		}
	case Pulse12:
		o.out = pulse(o.phase, 0.125)
	case Pulse25:
		o.out = pulse(o.phase, 0.25)
	case Noise:
		o.out = o.rand()
		return o.out
	}
	f := o.frequency * o.detune
	if fm != 0 && o.modulationVolume != 0 {
		f *= float32(math.Exp2(float64(fm * o.modulationVolume)))
	}
	o.phase += f / o.sampleRate
	if o.phase >= 1 {
		o.phase -= float32(math.Floor(float64(o.phase)))
	}
	return o.out
}

func (o *Oscillator) OutputLevel() float32 { return o.out }

// rand is a multiplicative LCG; the seed is odd so it never collapses to 0.
func (o *Oscillator) rand() float32 {
	o.randSeed *= 16007
	return float32(int32(o.randSeed)) / -2147483648.0
}

func pulse(phase, width float32) float32 {
	if phase < width {
		return 1
	}
	return -1
}
