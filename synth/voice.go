// Package synth assembles the dsp modules into voices and runs a fixed pool
// of them, optionally spread over several cores, into a stereo reverb.
package synth

import (
	"math"

	"github.com/rsta2/minisynth"
	"github.com/rsta2/minisynth/assert"
	"github.com/rsta2/minisynth/dsp"
)

type (
	VoiceState int

	// Voice is one note of polyphony. It owns every module of its signal
	// chain by value:
	//
	//	LFO_VCO -> VCO (+ detuned VCO -> Mixer) -> VCF -> VCA
	//
	// with an LFO and an envelope feeding each of the VCF and the VCA.
	Voice struct {
		lfoVCO dsp.Oscillator
		vco    dsp.Oscillator
		vco2   dsp.Oscillator
		mixer  dsp.Mixer
		unison bool

		lfoVCF dsp.Oscillator
		egVCF  dsp.EnvelopeGenerator
		vcf    dsp.Filter

		lfoVCA dsp.Oscillator
		egVCA  dsp.EnvelopeGenerator
		vca    dsp.Amplifier

		key uint8
	}
)

const (
	VoiceIdle VoiceState = iota
	VoiceActive
	VoiceRelease
)

func (s VoiceState) String() string {
	switch s {
	case VoiceIdle:
		return "idle"
	case VoiceActive:
		return "active"
	case VoiceRelease:
		return "release"
	}
	return "unknown"
}

func MakeVoice(sampleRate float32) Voice {
	v := Voice{
		lfoVCO: dsp.MakeOscillator(sampleRate),
		vco:    dsp.MakeOscillator(sampleRate),
		vco2:   dsp.MakeOscillator(sampleRate),
		lfoVCF: dsp.MakeOscillator(sampleRate),
		egVCF:  dsp.MakeEnvelopeGenerator(sampleRate),
		vcf:    dsp.MakeFilter(sampleRate),
		lfoVCA: dsp.MakeOscillator(sampleRate),
		egVCA:  dsp.MakeEnvelopeGenerator(sampleRate),
	}
	v.SetPatch(minisynth.NewPatch())
	return v
}

// SetPatch copies the patch values into the modules. Percentages become
// [0,1] levels and tenths of Hz become Hz.
func (v *Voice) SetPatch(p *minisynth.Patch) {
	assert.True(p != nil, "nil patch")

	// VCO
	v.lfoVCO.SetWaveform(dsp.Waveform(p.Parameter(minisynth.LFOVCOWaveform)))
	v.lfoVCO.SetFrequency(float32(p.Parameter(minisynth.LFOVCOFrequency)))
	for _, o := range []*dsp.Oscillator{&v.vco, &v.vco2} {
		o.SetWaveform(dsp.Waveform(p.Parameter(minisynth.VCOWaveform)))
		o.SetModulationVolume(percent(p, minisynth.VCOModulationVolume))
	}
	cents := p.Parameter(minisynth.VCODetune) - 100
	v.unison = cents != 0
	v.vco2.SetDetune(float32(math.Exp2(float64(cents) / 1200)))

	// VCF
	v.lfoVCF.SetWaveform(dsp.Waveform(p.Parameter(minisynth.LFOVCFWaveform)))
	v.lfoVCF.SetFrequency(float32(p.Parameter(minisynth.LFOVCFFrequency)) / 10)
	v.vcf.SetCutoffFrequency(p.Parameter(minisynth.VCFCutoffFrequency))
	v.vcf.SetResonance(p.Parameter(minisynth.VCFResonance))
	v.vcf.SetModulationVolume(percent(p, minisynth.VCFModulationVolume))
	v.egVCF.SetAttack(uint32(p.Parameter(minisynth.EGVCFAttack)))
	v.egVCF.SetDecay(uint32(p.Parameter(minisynth.EGVCFDecay)))
	v.egVCF.SetSustain(percent(p, minisynth.EGVCFSustain))
	v.egVCF.SetRelease(uint32(p.Parameter(minisynth.EGVCFRelease)))

	// VCA
	v.lfoVCA.SetWaveform(dsp.Waveform(p.Parameter(minisynth.LFOVCAWaveform)))
	v.lfoVCA.SetFrequency(float32(p.Parameter(minisynth.LFOVCAFrequency)) / 10)
	v.vca.SetModulationVolume(percent(p, minisynth.VCAModulationVolume))
	v.egVCA.SetAttack(uint32(p.Parameter(minisynth.EGVCAAttack)))
	v.egVCA.SetDecay(uint32(p.Parameter(minisynth.EGVCADecay)))
	v.egVCA.SetSustain(percent(p, minisynth.EGVCASustain))
	v.egVCA.SetRelease(uint32(p.Parameter(minisynth.EGVCARelease)))
}

// NoteOn tunes the oscillators to key and starts both envelopes at a level
// proportional to velocity (1..127). Keys outside the playable range are
// ignored. A voice that is still sounding is retriggered.
func (v *Voice) NoteOn(key, velocity uint8) {
	freq, ok := minisynth.KeyFrequency(key)
	if !ok {
		return
	}
	assert.True(velocity >= minisynth.MinVelocity && velocity <= minisynth.MaxVelocity, "velocity %d out of range", velocity)
	if velocity < minisynth.MinVelocity {
		return
	}
	if velocity > minisynth.MaxVelocity {
		velocity = minisynth.MaxVelocity
	}
	level := float32(velocity) / minisynth.MaxVelocity
	v.key = key
	v.vco.SetFrequency(freq)
	v.vco2.SetFrequency(freq)
	for _, eg := range []*dsp.EnvelopeGenerator{&v.egVCF, &v.egVCA} {
		if s := eg.State(); s != dsp.EnvelopeIdle && s != dsp.EnvelopeRelease {
			eg.NoteOff()
		}
		eg.NoteOn(level)
	}
}

// NoteOff releases both envelopes. The voice stops reporting its key, so a
// new note on the same key takes another voice while this one fades out.
func (v *Voice) NoteOff() {
	v.egVCF.NoteOff()
	v.egVCA.NoteOff()
}

func (v *Voice) State() VoiceState {
	switch v.egVCA.State() {
	case dsp.EnvelopeIdle:
		return VoiceIdle
	case dsp.EnvelopeRelease:
		return VoiceRelease
	}
	return VoiceActive
}

// KeyNumber returns the key the voice plays, or false once it is released.
func (v *Voice) KeyNumber() (uint8, bool) {
	if v.State() != VoiceActive {
		return 0, false
	}
	return v.key, true
}

// NextSample advances every module once, in signal-flow order.
func (v *Voice) NextSample() {
	fm := v.lfoVCO.NextSample(0)
	osc := v.vco.NextSample(fm)
	if v.unison {
		osc = v.mixer.NextSample(osc, v.vco2.NextSample(fm))
	}

	lfo := v.lfoVCF.NextSample(0)
	env := v.egVCF.NextSample()
	filtered := v.vcf.NextSample(osc, lfo, env)

	lfo = v.lfoVCA.NextSample(0)
	env = v.egVCA.NextSample()
	v.vca.NextSample(filtered, lfo, env)
}

func (v *Voice) OutputLevel() float32 { return v.vca.OutputLevel() }

func percent(p *minisynth.Patch, s minisynth.SynthParameter) float32 {
	return float32(p.Parameter(s)) / 100
}
