package dsp

import (
	"math"

	"github.com/rsta2/minisynth/assert"
)

const (
	maxFilterFrequency = 20000
	minCutoffPercent   = 10
	maxCutoffPercent   = 100
)

// Filter is a resonant low-pass biquad (RBJ cookbook). The cutoff is given in
// percent and mapped exponentially: every 10 percent doubles the frequency,
// 100 percent is 20 kHz. Coefficients are recomputed on every sample because
// the cutoff is modulated by an LFO and an envelope.
type Filter struct {
	sampleRate       float32
	cutoff           float32
	resonance        float32
	q                float32
	modulationVolume float32

	a0, a1, a2, b1, b02 float32
	x1, x2, y1, y2      float32
	out                 float32
}

func MakeFilter(sampleRate float32) Filter {
	f := Filter{sampleRate: sampleRate, cutoff: 80}
	f.SetResonance(50)
	return f
}

func (f *Filter) SetCutoffFrequency(percent int) {
	assert.True(percent >= 0 && percent <= 100, "cutoff %d%% out of range", percent)
	f.cutoff = float32(percent)
}

// SetResonance maps 0..100 percent to Q = sqrt(2)^((r-20)/20), so 20 percent
// is Q 1 and 0 percent the Butterworth 1/sqrt(2).
func (f *Filter) SetResonance(percent int) {
	assert.True(percent >= 0 && percent <= 100, "resonance %d%% out of range", percent)
	f.resonance = float32(percent)
	f.q = float32(math.Pow(math.Sqrt2, float64(f.resonance-20)/20))
}

func (f *Filter) SetModulationVolume(volume float32) {
	assert.True(volume >= 0 && volume <= 1, "modulation volume %v out of [0,1]", volume)
	f.modulationVolume = volume
}

// CutoffPercent blends the knob value with the LFO (mapped from [-1,1] to
// 0..100 percent), scales by the envelope and clamps to the usable range.
func (f *Filter) CutoffPercent(lfo, env float32) float32 {
	c := f.cutoff*(1-f.modulationVolume) + (lfo+1)*50*f.modulationVolume
	c *= env
	if c < minCutoffPercent {
		return minCutoffPercent
	}
	if c > maxCutoffPercent {
		return maxCutoffPercent
	}
	return c
}

func (f *Filter) NextSample(in, lfo, env float32) float32 {
	f.coefficients(f.CutoffPercent(lfo, env))
	f.out = (f.b02*in + f.b1*f.x1 + f.b02*f.x2 - f.a1*f.y1 - f.a2*f.y2) / f.a0
	f.x2, f.x1 = f.x1, in
	f.y2, f.y1 = f.y1, f.out
	return f.out
}

func (f *Filter) OutputLevel() float32 { return f.out }

func (f *Filter) coefficients(percent float32) {
	f0 := math.Exp2(float64(percent-100)/10) * maxFilterFrequency
	w0 := 2 * math.Pi * f0 / float64(f.sampleRate)
	sin, cos := math.Sincos(w0)
	alpha := sin / (2 * float64(f.q))
	f.a0 = float32(1 + alpha)
	f.a1 = float32(-2 * cos)
	f.a2 = float32(1 - alpha)
	f.b1 = float32(1 - cos)
	f.b02 = f.b1 / 2
}
