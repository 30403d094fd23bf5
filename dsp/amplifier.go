package dsp

import "github.com/rsta2/minisynth/assert"

type (
	// Amplifier scales its input by the envelope, with tremolo from an LFO.
	Amplifier struct {
		modulationVolume float32
		out              float32
	}

	// Mixer averages two inputs.
	Mixer struct {
		out float32
	}
)

func (a *Amplifier) SetModulationVolume(volume float32) {
	assert.True(volume >= 0 && volume <= 1, "modulation volume %v out of [0,1]", volume)
	a.modulationVolume = volume
}

func (a *Amplifier) NextSample(in, lfo, env float32) float32 {
	a.out = in * (1 + lfo*a.modulationVolume) * env
	return a.out
}

func (a *Amplifier) OutputLevel() float32 { return a.out }

func (m *Mixer) NextSample(a, b float32) float32 {
	m.out = (a + b) / 2
	return m.out
}

func (m *Mixer) OutputLevel() float32 { return m.out }
