//go:build plugin

package main

import (
	"bytes"
	"log"
	"sync"

	"github.com/rsta2/minisynth"
	"github.com/rsta2/minisynth/engine"
	"github.com/rsta2/minisynth/midi"
	"pipelined.dev/audio/vst2"
)

var (
	pluginID   = [4]byte{'M', 'n', 'S', 'y'}
	pluginName = "minisynth"
)

// instrument creates the engine on the first process call, once the host's
// sample rate is known. The host may ask for the patch chunk from another
// thread, so synth and pending are guarded by mu.
type instrument struct {
	once       sync.Once
	mu         sync.Mutex
	host       vst2.Host
	config     minisynth.Config
	synth      *engine.Synthesizer
	dispatcher *midi.Dispatcher
	events     []vst2.MIDIEvent
	buf        []float32
	pending    *minisynth.Patch
}

func (i *instrument) init() {
	sampleRate := 0
	if info := i.host.GetTimeInfo(0); info != nil && info.SampleRate > 0 {
		sampleRate = int(info.SampleRate)
	}
	i.start(sampleRate)
}

// start creates the engine, at sampleRate if it is positive, and applies a
// patch chunk the host set before.
func (i *instrument) start(sampleRate int) {
	if sampleRate > 0 {
		i.config.SampleRate = sampleRate
	}
	synth, err := engine.New(i.config)
	if err != nil {
		log.Printf("minisynth-vsti: %v", err)
	}
	if synth == nil {
		i.config = minisynth.DefaultConfig()
		synth, _ = engine.New(i.config)
	}
	i.dispatcher = midi.NewDispatcher(synth, i.config.MIDIChannel)
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.pending != nil {
		synth.SetPatch(i.pending)
		i.pending = nil
	}
	i.synth = synth
}

// process renders out.Frames frames, splitting the block at the MIDI event
// offsets.
func (i *instrument) process(out vst2.FloatBuffer) {
	i.once.Do(i.init)
	frames := out.Frames
	if cap(i.buf) < 2*frames {
		i.buf = make([]float32, 2*frames)
	}
	buf := i.buf[:2*frames]
	pos := 0
	for _, ev := range i.events {
		at := min(max(int(ev.DeltaFrames), pos), frames)
		minisynth.Fill(i.synth, buf[2*pos:2*at])
		pos = at
		i.dispatcher.Dispatch(ev.Data[:])
	}
	minisynth.Fill(i.synth, buf[2*pos:])
	i.events = i.events[:0] // reset buffer, but keep the allocated memory
	left := out.Channel(0)
	right := out.Channel(1)
	for j := 0; j < frames; j++ {
		left[j], right[j] = buf[2*j], buf[2*j+1]
	}
}

func (i *instrument) chunk() []byte {
	i.mu.Lock()
	defer i.mu.Unlock()
	var p *minisynth.Patch
	if i.synth != nil {
		p = i.synth.Patch()
	} else if i.pending != nil {
		p = i.pending
	} else {
		return nil
	}
	var b bytes.Buffer
	if err := p.Save(&b); err != nil {
		log.Printf("minisynth-vsti: %v", err)
		return nil
	}
	return b.Bytes()
}

func (i *instrument) setChunk(data []byte) {
	p := minisynth.NewPatch()
	if err := p.Load(bytes.NewReader(data)); err != nil {
		log.Printf("minisynth-vsti: %v", err)
		return
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.synth == nil {
		i.pending = p
		return
	}
	i.synth.SetPatch(p)
}

func init() {
	var (
		version = int32(100)
	)
	vst2.PluginAllocator = func(h vst2.Host) (vst2.Plugin, vst2.Dispatcher) {
		cfg, err := minisynth.LoadConfig("")
		if err != nil {
			log.Printf("minisynth-vsti: %v", err)
		}
		inst := &instrument{host: h, config: cfg}
		return vst2.Plugin{
				UniqueID:         pluginID,
				Version:          version,
				InputChannels:    0,
				OutputChannels:   2,
				Name:             pluginName,
				Vendor:           "rsta2/minisynth",
				Category:         vst2.PluginCategorySynth,
				Flags:            vst2.PluginIsSynth,
				ProcessFloatFunc: func(in, out vst2.FloatBuffer) { inst.process(out) },
			}, vst2.Dispatcher{
				CanDoFunc: func(pcds vst2.PluginCanDoString) vst2.CanDoResponse {
					switch pcds {
					case vst2.PluginCanReceiveEvents, vst2.PluginCanReceiveMIDIEvent:
						return vst2.YesCanDo
					}
					return vst2.NoCanDo
				},
				ProcessEventsFunc: func(ev *vst2.EventsPtr) {
					for i := 0; i < ev.NumEvents(); i++ {
						switch v := ev.Event(i).(type) {
						case *vst2.MIDIEvent:
							inst.events = append(inst.events, *v)
						}
					}
				},
				CloseFunc: func() {
					inst.mu.Lock()
					defer inst.mu.Unlock()
					if inst.synth != nil {
						inst.synth.Close()
					}
				},
				GetChunkFunc: func(isPreset bool) []byte { return inst.chunk() },
				SetChunkFunc: func(data []byte, isPreset bool) { inst.setChunk(data) },
			}
	}
}

func main() {}
