package dsp

import "math"

// Reverb is a plate reverb after Dattorro ("Effect Design, Part 1", 1997):
// a bandwidth filter and four input diffusers feed two cross-coupled tanks,
// and each stereo output is a mix of seven taps taken along both tanks.
// Delay lengths are in samples at 48 kHz.
//
// Decay must stay below 1; the parameter range guarantees that.
type Reverb struct {
	decay           float32
	decayDiffusion2 float32
	wetDryRatio     float32
	bandwidth       attenuator
	inputDiffusers  [4]diffuser
	tankA, tankB    tank
	tapsLeft        [numTaps]delay
	tapsRight       [numTaps]delay
	outLeft         float32
	outRight        float32
}

type (
	tank struct {
		lfo           Oscillator
		modDiffuser   diffuser
		delay1        delay
		damper        attenuator
		decayDiffuser diffuser
		delay2        delay
	}

	// delay is a circular buffer sized for the longest modulated delay.
	delay struct {
		length    int
		excursion int
		memory    []float32
		inPtr     int
		out       float32
	}

	// diffuser is a Schroeder all-pass around a delay line.
	diffuser struct {
		diffusion float32
		delay     delay
		out       float32
	}

	// attenuator is a one-pole low-pass: out = in*(1-d) + previous in*d.
	attenuator struct {
		damping float32
		memory  float32
		out     float32
	}
)

const (
	reverbExcursion       = 16
	reverbDecayDiffusion1 = 0.7
	reverbInputDiffusion1 = 0.75
	reverbInputDiffusion2 = 0.625
	reverbBandwidth       = 0.9995
	reverbDamping         = 0.0005
	reverbTapGain         = 0.6

	numTaps = 7
)

// tap signs, shared by both outputs: + + - + - - -
var tapSigns = [numTaps]float32{1, 1, -1, 1, -1, -1, -1}

func MakeReverb(sampleRate float32) Reverb {
	r := Reverb{
		decay:           0.5,
		decayDiffusion2: 0.5,
		wetDryRatio:     0.25,
		bandwidth:       attenuator{damping: 1 - reverbBandwidth},
		inputDiffusers: [4]diffuser{
			makeDiffuser(reverbInputDiffusion1, 142, 0),
			makeDiffuser(reverbInputDiffusion1, 107, 0),
			makeDiffuser(reverbInputDiffusion2, 379, 0),
			makeDiffuser(reverbInputDiffusion2, 277, 0),
		},
		tankA: makeTank(sampleRate, 0.5, 672, 4453, 1800, 3720),
		tankB: makeTank(sampleRate, 0.3, 908, 4217, 2656, 3163),
	}
	for i, n := range [numTaps]int{266, 2974, 1913, 1996, 1990, 187, 1066} {
		r.tapsLeft[i] = makeDelay(n, 0)
	}
	for i, n := range [numTaps]int{353, 3627, 1228, 2673, 2111, 335, 121} {
		r.tapsRight[i] = makeDelay(n, 0)
	}
	return r
}

func makeTank(sampleRate, lfoHz float32, modDiffuser, delay1, decayDiffuser, delay2 int) tank {
	t := tank{
		lfo:           MakeOscillator(sampleRate),
		modDiffuser:   makeDiffuser(reverbDecayDiffusion1, modDiffuser, reverbExcursion),
		delay1:        makeDelay(delay1, 0),
		damper:        attenuator{damping: reverbDamping},
		decayDiffuser: makeDiffuser(0.5, decayDiffuser, 0),
		delay2:        makeDelay(delay2, 0),
	}
	t.lfo.SetFrequency(lfoHz)
	return t
}

// SetDecay sets the tank feedback gain and derives the second decay
// diffusion from it, quantized in steps of 0.25.
func (r *Reverb) SetDecay(decay float32) {
	r.decay = decay
	r.decayDiffusion2 = float32(math.Ceil(math.Floor(float64(decay+0.15)*4)/2) / 2)
	r.tankA.decayDiffuser.diffusion = r.decayDiffusion2
	r.tankB.decayDiffuser.diffusion = r.decayDiffusion2
}

func (r *Reverb) Decay() float32 { return r.decay }

func (r *Reverb) DecayDiffusion2() float32 { return r.decayDiffusion2 }

func (r *Reverb) SetWetDryRatio(ratio float32) { r.wetDryRatio = ratio }

func (r *Reverb) NextSample(in float32) {
	x := r.bandwidth.next(in)
	for i := range r.inputDiffusers {
		x = r.inputDiffusers[i].next(x, 0)
	}
	r.tankA.next(x+r.tankB.delay2.out*r.decay, r.decay)
	r.tankB.next(x+r.tankA.delay2.out*r.decay, r.decay)

	a, b := &r.tankA, &r.tankB
	left := [numTaps]float32{
		b.modDiffuser.out, b.delay1.out, b.decayDiffuser.out, b.delay2.out,
		a.modDiffuser.out, a.decayDiffuser.out, a.delay2.out,
	}
	right := [numTaps]float32{
		a.modDiffuser.out, a.delay1.out, a.decayDiffuser.out, a.delay2.out,
		b.modDiffuser.out, b.decayDiffuser.out, b.delay2.out,
	}
	var accuLeft, accuRight float32
	for i := 0; i < numTaps; i++ {
		accuLeft += tapSigns[i] * reverbTapGain * r.tapsLeft[i].next(left[i], 0)
		accuRight += tapSigns[i] * reverbTapGain * r.tapsRight[i].next(right[i], 0)
	}
	r.outLeft = in*(1-r.wetDryRatio) + accuLeft*r.wetDryRatio
	r.outRight = in*(1-r.wetDryRatio) + accuRight*r.wetDryRatio
}

func (r *Reverb) OutputLevelLeft() float32 { return r.outLeft }

func (r *Reverb) OutputLevelRight() float32 { return r.outRight }

func (t *tank) next(in, decay float32) {
	lfo := t.lfo.NextSample(0)
	t.modDiffuser.next(in, lfo)
	t.delay1.next(t.modDiffuser.out, 0)
	t.damper.next(t.delay1.out)
	t.decayDiffuser.next(t.damper.out*decay, 0)
	t.delay2.next(t.decayDiffuser.out, 0)
}

func makeDelay(length, excursion int) delay {
	size := length + excursion + 1
	return delay{
		length:    length,
		excursion: excursion,
		memory:    make([]float32, size),
		inPtr:     size - 1,
	}
}

// next reads the sample written length (+ lfo*excursion) ticks ago, then
// stores in.
func (d *delay) next(in, lfo float32) float32 {
	n := d.length
	if d.excursion != 0 {
		n = int(float32(d.length) + lfo*float32(d.excursion))
	}
	size := len(d.memory)
	outPtr := d.inPtr - n
	if outPtr < 0 {
		outPtr += size
	}
	d.out = d.memory[outPtr]
	d.memory[d.inPtr] = in
	d.inPtr++
	if d.inPtr == size {
		d.inPtr = 0
	}
	return d.out
}

func makeDiffuser(diffusion float32, length, excursion int) diffuser {
	return diffuser{diffusion: diffusion, delay: makeDelay(length, excursion)}
}

func (d *diffuser) next(in, lfo float32) float32 {
	t := in - d.delay.out*d.diffusion
	d.delay.next(t, lfo)
	d.out = t*d.diffusion + d.delay.out
	return d.out
}

func (a *attenuator) next(in float32) float32 {
	a.out = in*(1-a.damping) + a.memory*a.damping
	a.memory = in
	return a.out
}
