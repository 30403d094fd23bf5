package synth

import (
	"github.com/rsta2/minisynth"
	"github.com/rsta2/minisynth/assert"
	"github.com/rsta2/minisynth/dsp"
)

// VoiceManager owns a fixed pool of voices and the reverb they all feed. It
// allocates voices to notes and renders one stereo sample per NextSample.
//
// VoiceManager is not safe for concurrent use; the caller serializes note
// events, patch changes and sample generation.
type VoiceManager struct {
	voices           []Voice
	reverb           dsp.Reverb
	lastNotePriority bool
	lastNoteOn       int // -1 until the first note
	workers
}

// NewVoiceManager creates voicesPerCore*cores voices. The voices are split
// over at most cores goroutines, fewer if GOMAXPROCS is lower; call Close to
// stop them.
func NewVoiceManager(sampleRate float32, voicesPerCore, cores int, lastNotePriority bool) *VoiceManager {
	assert.True(voicesPerCore > 0 && cores > 0, "need at least one voice and one core")
	voicesPerCore = max(voicesPerCore, 1)
	cores = max(cores, 1)
	m := &VoiceManager{
		voices:           make([]Voice, voicesPerCore*cores),
		reverb:           dsp.MakeReverb(sampleRate),
		lastNotePriority: lastNotePriority,
		lastNoteOn:       -1,
	}
	for i := range m.voices {
		m.voices[i] = MakeVoice(sampleRate)
	}
	m.SetPatch(minisynth.NewPatch())
	m.startWorkers(cores)
	return m
}

// SetPatch applies p to every voice and to the reverb.
func (m *VoiceManager) SetPatch(p *minisynth.Patch) {
	assert.True(p != nil, "nil patch")
	for i := range m.voices {
		m.voices[i].SetPatch(p)
	}
	m.reverb.SetDecay(percent(p, minisynth.ReverbDecay))
	m.reverb.SetWetDryRatio(percent(p, minisynth.ReverbVolume))
}

// NoteOn plays key on the voice still holding it, else on an idle voice.
// With a full pool the most recently triggered voice is taken over if last
// note priority is on; otherwise a releasing voice is reused, and if there
// is none the note is dropped.
func (m *VoiceManager) NoteOn(key, velocity uint8) {
	if _, ok := minisynth.KeyFrequency(key); !ok || velocity == 0 {
		return
	}
	i := m.find(func(v *Voice) bool {
		k, ok := v.KeyNumber()
		return ok && k == key
	})
	if i < 0 {
		i = m.find(func(v *Voice) bool { return v.State() == VoiceIdle })
	}
	if i < 0 {
		if m.lastNotePriority && m.lastNoteOn >= 0 {
			i = m.lastNoteOn
		} else {
			i = m.find(func(v *Voice) bool { return v.State() == VoiceRelease })
		}
	}
	if i < 0 {
		return
	}
	m.voices[i].NoteOn(key, velocity)
	m.lastNoteOn = i
}

// NoteOff releases the voice sounding key, if any.
func (m *VoiceManager) NoteOff(key uint8) {
	i := m.find(func(v *Voice) bool {
		k, ok := v.KeyNumber()
		return ok && k == key
	})
	if i >= 0 {
		m.voices[i].NoteOff()
	}
}

// AllNotesOff releases every sounding voice.
func (m *VoiceManager) AllNotesOff() {
	for i := range m.voices {
		m.voices[i].NoteOff()
	}
}

// NextSample advances every sounding voice by one sample and feeds their sum
// to the reverb.
func (m *VoiceManager) NextSample() {
	m.reverb.NextSample(m.render())
}

func (m *VoiceManager) OutputLevelLeft() float32 { return m.reverb.OutputLevelLeft() }

func (m *VoiceManager) OutputLevelRight() float32 { return m.reverb.OutputLevelRight() }

func (m *VoiceManager) NumVoices() int { return len(m.voices) }

// Voice returns the i-th voice of the pool for inspection.
func (m *VoiceManager) Voice(i int) *Voice { return &m.voices[i] }

// ActiveVoices counts the voices that are not idle.
func (m *VoiceManager) ActiveVoices() (n int) {
	for i := range m.voices {
		if m.voices[i].State() != VoiceIdle {
			n++
		}
	}
	return
}

func (m *VoiceManager) find(match func(*Voice) bool) int {
	for i := range m.voices {
		if match(&m.voices[i]) {
			return i
		}
	}
	return -1
}

func (m *VoiceManager) processVoices(first, last int) float32 {
	var level float32
	for i := first; i < last; i++ {
		v := &m.voices[i]
		if v.State() != VoiceIdle {
			v.NextSample()
			level += v.OutputLevel()
		}
	}
	return level
}
