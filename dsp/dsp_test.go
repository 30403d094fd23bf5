package dsp_test

import (
	"math"
	"testing"

	"github.com/rsta2/minisynth/dsp"
)

const sampleRate = 48000

func TestOscillatorWaveforms(t *testing.T) {
	table := map[dsp.Waveform][]float32{
		dsp.Square:   {1, 1, -1, -1, 1},
		dsp.Sawtooth: {-1, -0.5, 0, 0.5, -1},
		dsp.Triangle: {-1, 0, 1, 0, -1},
		dsp.Pulse25:  {1, -1, -1, -1, 1},
	}
	for w, want := range table {
		osc := dsp.MakeOscillator(4)
		osc.SetWaveform(w)
		osc.SetFrequency(1)
		for i, v := range want {
			if got := osc.NextSample(0); got != v {
				t.Fatalf("%v: sample %d was %v, expected %v", w, i, got, v)
			}
		}
	}
}

func TestOscillatorDetune(t *testing.T) {
	osc := dsp.MakeOscillator(8)
	osc.SetWaveform(dsp.Sawtooth)
	osc.SetFrequency(1)
	osc.SetDetune(2)
	for i, v := range []float32{-1, -0.5, 0, 0.5, -1} {
		if got := osc.NextSample(0); got != v {
			t.Fatalf("sample %d was %v, expected %v", i, got, v)
		}
	}
}

func TestOscillatorFrequencyModulation(t *testing.T) {
	osc := dsp.MakeOscillator(8)
	osc.SetWaveform(dsp.Sawtooth)
	osc.SetFrequency(1)
	osc.SetModulationVolume(1)
	osc.NextSample(1) // modulator at +1 doubles the pitch
	if got := osc.NextSample(0); got != -0.5 {
		t.Fatalf("phase after modulated step gave %v, expected -0.5", got)
	}
}

func TestOscillatorNoiseRange(t *testing.T) {
	osc := dsp.MakeOscillator(sampleRate)
	osc.SetWaveform(dsp.Noise)
	distinct := map[float32]bool{}
	for i := 0; i < 10000; i++ {
		v := osc.NextSample(0)
		if v < -1 || v > 1 {
			t.Fatalf("noise sample %v out of [-1,1]", v)
		}
		distinct[v] = true
	}
	if len(distinct) < 1000 {
		t.Fatalf("noise produced only %d distinct values", len(distinct))
	}
}

func TestWaveformNames(t *testing.T) {
	for i := 0; i < dsp.NumWaveforms; i++ {
		w := dsp.Waveform(i)
		back, ok := dsp.WaveformByName(w.String())
		if !ok || back != w {
			t.Fatalf("waveform %d did not survive name lookup (%q)", i, w.String())
		}
	}
	if _, ok := dsp.WaveformByName("Organ"); ok {
		t.Fatal("unknown waveform name was accepted")
	}
}

func TestEnvelopeAttackReachesVelocity(t *testing.T) {
	env := dsp.MakeEnvelopeGenerator(sampleRate)
	env.SetAttack(100)
	env.NoteOn(1)
	ticks := 100 * sampleRate / 1000
	for i := 1; i < ticks; i++ {
		env.NextSample()
		if env.State() != dsp.EnvelopeAttack {
			t.Fatalf("left attack after %d of %d ticks", i, ticks)
		}
	}
	env.NextSample()
	if env.State() != dsp.EnvelopeDecay {
		t.Fatalf("expected decay after %d ticks, got %v", ticks, env.State())
	}
	if env.OutputLevel() < 0.999 {
		t.Fatalf("attack ended at level %v", env.OutputLevel())
	}
}

func TestEnvelopeZeroAttackIsInstant(t *testing.T) {
	env := dsp.MakeEnvelopeGenerator(sampleRate)
	env.SetAttack(0)
	env.NoteOn(1)
	if got := env.NextSample(); got != 1 {
		t.Fatalf("zero attack gave %v on first tick, expected 1", got)
	}
}

func TestEnvelopeNoteOffWhileIdle(t *testing.T) {
	env := dsp.MakeEnvelopeGenerator(sampleRate)
	env.NoteOff()
	if env.State() != dsp.EnvelopeIdle || env.OutputLevel() != 0 {
		t.Fatalf("NoteOff changed an idle envelope: %v %v", env.State(), env.OutputLevel())
	}
	env.NextSample()
	if env.State() != dsp.EnvelopeIdle {
		t.Fatalf("idle envelope moved to %v", env.State())
	}
}

func TestEnvelopeSustainAndRelease(t *testing.T) {
	env := dsp.MakeEnvelopeGenerator(sampleRate)
	env.SetAttack(0)
	env.SetDecay(10)
	env.SetSustain(0.5)
	env.SetRelease(10)
	env.NoteOn(0.8)
	for i := 0; i < sampleRate/10; i++ {
		env.NextSample()
	}
	if env.State() != dsp.EnvelopeSustain {
		t.Fatalf("expected sustain, got %v", env.State())
	}
	if d := math.Abs(float64(env.OutputLevel() - 0.4)); d > 1e-3 {
		t.Fatalf("sustain level %v, expected 0.4", env.OutputLevel())
	}
	env.NoteOff()
	if env.State() != dsp.EnvelopeRelease {
		t.Fatalf("expected release, got %v", env.State())
	}
	prev := env.OutputLevel()
	for i := 0; i < sampleRate/10 && env.State() == dsp.EnvelopeRelease; i++ {
		v := env.NextSample()
		if v > prev {
			t.Fatalf("release level rose from %v to %v", prev, v)
		}
		prev = v
	}
	if env.State() != dsp.EnvelopeIdle || env.OutputLevel() != 0 {
		t.Fatalf("release ended in %v at %v", env.State(), env.OutputLevel())
	}
}

func TestEnvelopeDecayToSilenceGoesIdle(t *testing.T) {
	env := dsp.MakeEnvelopeGenerator(sampleRate)
	env.SetAttack(0)
	env.SetDecay(100)
	env.SetSustain(0)
	env.NoteOn(1)
	for i := 0; i < sampleRate; i++ {
		env.NextSample()
		if env.State() == dsp.EnvelopeSustain {
			t.Fatal("zero sustain reached sustain state")
		}
		if env.State() == dsp.EnvelopeIdle {
			return
		}
	}
	t.Fatalf("envelope never went idle, state %v", env.State())
}

func TestEnvelopeLevelStaysInRange(t *testing.T) {
	env := dsp.MakeEnvelopeGenerator(sampleRate)
	env.SetAttack(3)
	env.SetDecay(7)
	env.SetSustain(0.3)
	env.SetRelease(5)
	for n := 0; n < 5; n++ {
		env.NoteOn(1)
		for i := 0; i < 500; i++ {
			if v := env.NextSample(); v < 0 || v > 1 {
				t.Fatalf("level %v out of [0,1]", v)
			}
		}
		env.NoteOff()
		for i := 0; i < 100; i++ {
			if v := env.NextSample(); v < 0 || v > 1 {
				t.Fatalf("level %v out of [0,1]", v)
			}
		}
	}
}

func TestFilterOpenIsNearUnity(t *testing.T) {
	f := dsp.MakeFilter(sampleRate)
	f.SetCutoffFrequency(100)
	f.SetResonance(0)
	osc := dsp.MakeOscillator(sampleRate)
	osc.SetFrequency(440)
	var peak float32
	for i := 0; i < sampleRate/10; i++ {
		v := f.NextSample(osc.NextSample(0), 0, 1)
		if i < 1000 {
			continue
		}
		if a := float32(math.Abs(float64(v))); a > peak {
			peak = a
		}
	}
	if peak > 1.01 || peak < 0.95 {
		t.Fatalf("open filter passed a unit sine with peak %v", peak)
	}
}

func TestFilterClosedByEnvelope(t *testing.T) {
	f := dsp.MakeFilter(sampleRate)
	if c := f.CutoffPercent(0, 0); c != 10 {
		t.Fatalf("closed envelope gave cutoff %v%%, expected 10", c)
	}
	f.SetCutoffFrequency(100)
	f.SetModulationVolume(1)
	if c := f.CutoffPercent(1, 1); c != 100 {
		t.Fatalf("full LFO gave cutoff %v%%, expected 100", c)
	}
	if c := f.CutoffPercent(0, 1); c != 50 {
		t.Fatalf("centered LFO gave cutoff %v%%, expected 50", c)
	}
}

func TestFilterAttenuatesAboveCutoff(t *testing.T) {
	f := dsp.MakeFilter(sampleRate)
	f.SetCutoffFrequency(40) // about 312 Hz
	f.SetResonance(0)
	osc := dsp.MakeOscillator(sampleRate)
	osc.SetFrequency(5000)
	var peak float32
	for i := 0; i < sampleRate/10; i++ {
		v := f.NextSample(osc.NextSample(0), 0, 1)
		if i > 1000 && float32(math.Abs(float64(v))) > peak {
			peak = float32(math.Abs(float64(v)))
		}
	}
	if peak > 0.05 {
		t.Fatalf("5 kHz leaked through a 312 Hz low-pass with peak %v", peak)
	}
}

func TestAmplifierAndMixer(t *testing.T) {
	var a dsp.Amplifier
	a.SetModulationVolume(0.5)
	if got := a.NextSample(0.5, 1, 0.5); got != 0.375 {
		t.Fatalf("amplifier gave %v, expected 0.375", got)
	}
	var m dsp.Mixer
	if got := m.NextSample(1, 0); got != 0.5 || m.OutputLevel() != 0.5 {
		t.Fatalf("mixer gave %v, expected 0.5", got)
	}
}

func TestReverbDryBypass(t *testing.T) {
	r := dsp.MakeReverb(sampleRate)
	r.SetDecay(0.5)
	r.SetWetDryRatio(0)
	osc := dsp.MakeOscillator(sampleRate)
	osc.SetWaveform(dsp.Noise)
	for i := 0; i < 20000; i++ {
		in := osc.NextSample(0)
		r.NextSample(in)
		if r.OutputLevelLeft() != in || r.OutputLevelRight() != in {
			t.Fatalf("sample %d: dry-only reverb gave %v/%v for input %v", i, r.OutputLevelLeft(), r.OutputLevelRight(), in)
		}
	}
}

func TestReverbDecayDiffusion(t *testing.T) {
	table := []struct {
		decay, diffusion float32
	}{
		{0, 0},
		{0.2, 0.5},
		{0.45, 0.5},
		{0.9, 1},
	}
	r := dsp.MakeReverb(sampleRate)
	for _, c := range table {
		r.SetDecay(c.decay)
		if got := r.DecayDiffusion2(); got != c.diffusion {
			t.Errorf("decay %v gave diffusion %v, expected %v", c.decay, got, c.diffusion)
		}
	}
}

func TestReverbImpulseResponse(t *testing.T) {
	r := dsp.MakeReverb(sampleRate)
	r.SetDecay(0.5)
	r.SetWetDryRatio(1)
	heard := false
	for i := 0; i < sampleRate; i++ {
		in := float32(0)
		if i == 0 {
			in = 1
		}
		r.NextSample(in)
		l, rr := r.OutputLevelLeft(), r.OutputLevelRight()
		if i < 100 && (l != 0 || rr != 0) {
			t.Fatalf("tail started after %d samples, before the shortest tap", i)
		}
		if math.IsNaN(float64(l)) || math.Abs(float64(l)) > 2 || math.Abs(float64(rr)) > 2 {
			t.Fatalf("sample %d: unstable output %v/%v", i, l, rr)
		}
		if l != 0 && rr != 0 {
			heard = true
		}
	}
	if !heard {
		t.Fatal("impulse produced no reverb tail")
	}
}
