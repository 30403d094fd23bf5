package synth_test

import (
	"math"
	"testing"

	"github.com/rsta2/minisynth"
	"github.com/rsta2/minisynth/synth"
)

const sampleRate = 48000

func keys(m *synth.VoiceManager) []int {
	ret := make([]int, m.NumVoices())
	for i := range ret {
		ret[i] = -1
		if k, ok := m.Voice(i).KeyNumber(); ok {
			ret[i] = int(k)
		}
	}
	return ret
}

func TestVoiceLifecycle(t *testing.T) {
	v := synth.MakeVoice(sampleRate)
	if v.State() != synth.VoiceIdle {
		t.Fatalf("new voice is %v", v.State())
	}
	v.NoteOn(60, 100)
	if v.State() != synth.VoiceActive {
		t.Fatalf("voice is %v after NoteOn", v.State())
	}
	if k, ok := v.KeyNumber(); !ok || k != 60 {
		t.Fatalf("voice reports key %d %v", k, ok)
	}
	var peak float32
	for i := 0; i < sampleRate/2; i++ {
		v.NextSample()
		peak = max(peak, float32(math.Abs(float64(v.OutputLevel()))))
	}
	if peak < 0.1 {
		t.Fatalf("voice peak level %v, expected an audible note", peak)
	}
	v.NoteOff()
	if v.State() != synth.VoiceRelease {
		t.Fatalf("voice is %v after NoteOff", v.State())
	}
	if _, ok := v.KeyNumber(); ok {
		t.Fatal("releasing voice still reports its key")
	}
	// default amplifier release is 100 ms
	for i := 0; i < sampleRate/10+10; i++ {
		v.NextSample()
	}
	if v.State() != synth.VoiceIdle {
		t.Fatalf("voice is %v after the release time", v.State())
	}
	if _, ok := v.KeyNumber(); ok {
		t.Fatal("idle voice still reports a key")
	}
	v.NoteOn(62, 90)
	if v.State() != synth.VoiceActive {
		t.Fatal("voice could not be reused")
	}
}

func TestVoiceIgnoresUnplayableKeys(t *testing.T) {
	v := synth.MakeVoice(sampleRate)
	v.NoteOn(5, 100)
	v.NoteOn(120, 100)
	if v.State() != synth.VoiceIdle {
		t.Fatalf("voice is %v after unplayable keys", v.State())
	}
}

func TestVoiceRetrigger(t *testing.T) {
	v := synth.MakeVoice(sampleRate)
	v.NoteOn(60, 100)
	for i := 0; i < 1000; i++ {
		v.NextSample()
	}
	v.NoteOn(64, 50)
	if k, _ := v.KeyNumber(); k != 64 || v.State() != synth.VoiceActive {
		t.Fatalf("retriggered voice reports key %d in %v", k, v.State())
	}
}

func TestVoiceManagerLastNotePriority(t *testing.T) {
	m := synth.NewVoiceManager(sampleRate, 2, 2, true)
	defer m.Close()
	if m.NumVoices() != 4 {
		t.Fatalf("pool has %d voices", m.NumVoices())
	}
	for _, k := range []uint8{60, 62, 64, 65} {
		m.NoteOn(k, 100)
	}
	if got := keys(m); got[0] != 60 || got[1] != 62 || got[2] != 64 || got[3] != 65 {
		t.Fatalf("voices sound %v", got)
	}
	m.NoteOn(67, 100)
	if got := keys(m); got[0] != 60 || got[1] != 62 || got[2] != 64 || got[3] != 67 {
		t.Fatalf("after stealing voices sound %v", got)
	}
	m.NoteOn(69, 100)
	if got := keys(m); got[3] != 69 {
		t.Fatalf("second steal did not take the last voice again: %v", got)
	}
}

func TestVoiceManagerStealsReleasingVoice(t *testing.T) {
	m := synth.NewVoiceManager(sampleRate, 4, 1, false)
	defer m.Close()
	for _, k := range []uint8{60, 62, 64, 65} {
		m.NoteOn(k, 100)
	}
	m.NoteOn(67, 100)
	if got := keys(m); got[0] != 60 || got[1] != 62 || got[2] != 64 || got[3] != 65 {
		t.Fatalf("note was not dropped with a full pool: %v", got)
	}
	m.NoteOff(62)
	if m.Voice(1).State() != synth.VoiceRelease {
		t.Fatalf("voice 1 is %v after NoteOff", m.Voice(1).State())
	}
	m.NoteOn(67, 100)
	if got := keys(m); got[1] != 67 {
		t.Fatalf("releasing voice was not reused: %v", got)
	}
}

func TestVoiceManagerRetriggerSameKey(t *testing.T) {
	m := synth.NewVoiceManager(sampleRate, 8, 1, false)
	defer m.Close()
	m.NoteOn(48, 30)
	m.NoteOn(60, 30)
	m.NoteOn(60, 120)
	if got := keys(m); got[1] != 60 || got[2] != -1 {
		t.Fatalf("retrigger used another voice: %v", got)
	}
	if m.ActiveVoices() != 2 {
		t.Fatalf("%d voices active", m.ActiveVoices())
	}
	m.NoteOff(72)
	m.NoteOff(60)
	if m.Voice(1).State() != synth.VoiceRelease || m.Voice(0).State() != synth.VoiceActive {
		t.Fatal("NoteOff released the wrong voice")
	}
	m.AllNotesOff()
	if m.Voice(0).State() != synth.VoiceRelease {
		t.Fatal("AllNotesOff left a voice sounding")
	}
}

func TestVoiceManagerReleasedKeyTakesNewVoice(t *testing.T) {
	m := synth.NewVoiceManager(sampleRate, 4, 1, false)
	defer m.Close()
	m.NoteOn(60, 100)
	for i := 0; i < sampleRate/10; i++ {
		m.NextSample()
	}
	m.NoteOff(60)
	m.NextSample()
	m.NoteOn(60, 100)
	if m.Voice(0).State() != synth.VoiceRelease {
		t.Fatalf("released voice is %v, expected it to keep fading", m.Voice(0).State())
	}
	if k, ok := m.Voice(1).KeyNumber(); !ok || k != 60 {
		t.Fatalf("new note did not take voice 1: %v", keys(m))
	}
	m.NoteOff(60)
	if m.Voice(1).State() != synth.VoiceRelease {
		t.Fatal("NoteOff did not release the new voice")
	}
}

func TestVoiceManagerCoresMatchSingleCore(t *testing.T) {
	single := synth.NewVoiceManager(sampleRate, 4, 1, false)
	defer single.Close()
	multi := synth.NewVoiceManager(sampleRate, 1, 4, false)
	defer multi.Close()
	p := minisynth.NewPatch()
	p.SetParameter(minisynth.ReverbVolume, 20)
	p.SetParameter(minisynth.VCODetune, 110)
	for _, m := range []*synth.VoiceManager{single, multi} {
		m.SetPatch(p)
		for _, k := range []uint8{48, 55, 60, 64} {
			m.NoteOn(k, 100)
		}
	}
	for i := 0; i < sampleRate/4; i++ {
		single.NextSample()
		multi.NextSample()
		for _, pair := range [][2]float32{
			{single.OutputLevelLeft(), multi.OutputLevelLeft()},
			{single.OutputLevelRight(), multi.OutputLevelRight()},
		} {
			if math.Abs(float64(pair[0]-pair[1])) > 1e-4 {
				t.Fatalf("sample %d: single core %v, %d cores %v", i, pair[0], multi.Cores(), pair[1])
			}
		}
	}
}

func TestVoiceManagerClose(t *testing.T) {
	m := synth.NewVoiceManager(sampleRate, 2, 4, false)
	m.NoteOn(60, 100)
	m.Close()
	m.Close()
	if m.Cores() != 1 {
		t.Fatalf("%d cores after Close", m.Cores())
	}
	for i := 0; i < 100; i++ {
		m.NextSample()
	}
	if m.Voice(0).State() != synth.VoiceActive {
		t.Fatal("voice stopped after Close")
	}
}

func TestVoiceManagerIgnoresZeroVelocity(t *testing.T) {
	m := synth.NewVoiceManager(sampleRate, 2, 1, false)
	defer m.Close()
	m.NoteOn(60, 0)
	if m.ActiveVoices() != 0 {
		t.Fatal("velocity 0 started a voice")
	}
}
