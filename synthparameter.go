package minisynth

import "github.com/rsta2/minisynth/dsp"

// SynthParameter enumerates the parameters of a patch.
type SynthParameter int

const (
	// VCO
	LFOVCOWaveform SynthParameter = iota
	LFOVCOFrequency
	VCOWaveform
	VCOModulationVolume
	VCODetune

	// VCF
	LFOVCFWaveform
	LFOVCFFrequency
	VCFCutoffFrequency
	VCFResonance
	EGVCFAttack
	EGVCFDecay
	EGVCFSustain
	EGVCFRelease
	VCFModulationVolume

	// VCA
	LFOVCAWaveform
	LFOVCAFrequency
	EGVCAAttack
	EGVCADecay
	EGVCASustain
	EGVCARelease
	VCAModulationVolume

	// Reverb
	ReverbDecay
	ReverbVolume

	// Synth
	SynthVolume
)

const NumSynthParameters = int(SynthVolume) + 1

var synthParameters = [NumSynthParameters]Parameter{
	MakeParameter("LFOVCOWaveform", WaveformParameter, int(dsp.Sine), int(dsp.Pulse25), 1, int(dsp.Sine), "Wave"),
	MakeParameter("LFOVCOFrequency", FrequencyParameter, 1, 35, 1, 20, "Rate"),
	MakeParameter("VCOWaveform", WaveformParameter, int(dsp.Sine), int(dsp.Noise), 1, int(dsp.Square), "Wave"),
	MakeParameter("VCOModulationVolume", PercentParameter, 0, 100, 10, 0, "Volume"),
	MakeParameter("VCODetune", PercentParameter, 0, 200, 2, 100, "Detune"),

	MakeParameter("LFOVCFWaveform", WaveformParameter, int(dsp.Sine), int(dsp.Pulse25), 1, int(dsp.Sine), "Wave"),
	MakeParameter("LFOVCFFrequency", FrequencyTenthParameter, 5, 50, 5, 20, "Rate"),
	MakeParameter("VCFCutoffFrequency", PercentParameter, 10, 100, 2, 80, "Cutoff"),
	MakeParameter("VCFResonance", PercentParameter, 0, 100, 2, 50, "Resonance"),
	MakeParameter("EGVCFAttack", TimeParameter, 0, 2000, 50, 0, "Attack"),
	MakeParameter("EGVCFDecay", TimeParameter, 100, 10000, 100, 4000, "Decay"),
	MakeParameter("EGVCFSustain", PercentParameter, 0, 100, 10, 100, "Sustain"),
	MakeParameter("EGVCFRelease", TimeParameter, 0, 5000, 100, 1000, "Release"),
	MakeParameter("VCFModulationVolume", PercentParameter, 0, 100, 5, 0, "Volume"),

	MakeParameter("LFOVCAWaveform", WaveformParameter, int(dsp.Sine), int(dsp.Pulse25), 1, int(dsp.Sine), "Wave"),
	MakeParameter("LFOVCAFrequency", FrequencyTenthParameter, 5, 50, 5, 20, "Rate"),
	MakeParameter("EGVCAAttack", TimeParameter, 0, 2000, 50, 100, "Attack"),
	MakeParameter("EGVCADecay", TimeParameter, 100, 10000, 100, 4000, "Decay"),
	MakeParameter("EGVCASustain", PercentParameter, 0, 100, 10, 100, "Sustain"),
	MakeParameter("EGVCARelease", TimeParameter, 0, 5000, 100, 100, "Release"),
	MakeParameter("VCAModulationVolume", PercentParameter, 0, 100, 10, 0, "Volume"),

	MakeParameter("ReverbDecay", PercentParameter, 0, 50, 5, 20, "Decay"),
	MakeParameter("ReverbVolume", PercentParameter, 0, 30, 5, 0, "Volume"),

	MakeParameter("SynthVolume", PercentParameter, 0, 100, 10, 50, "Volume"),
}

var synthParameterIndex = map[string]SynthParameter{}

func init() {
	for i, p := range synthParameters {
		synthParameterIndex[p.Name] = SynthParameter(i)
	}
}

func (s SynthParameter) String() string {
	if !s.Valid() {
		return "Unknown"
	}
	return synthParameters[s].Name
}

func (s SynthParameter) Valid() bool {
	return s >= 0 && int(s) < NumSynthParameters
}

// Definition returns the parameter template: range, step, default and help.
func (s SynthParameter) Definition() Parameter {
	return synthParameters[s]
}

// SynthParameterByName looks a parameter up by its storage name.
func SynthParameterByName(name string) (SynthParameter, bool) {
	s, ok := synthParameterIndex[name]
	return s, ok
}
