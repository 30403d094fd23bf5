package cmd

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rsta2/minisynth"
	"github.com/rsta2/minisynth/oto"
)

// OutputFactory opens an audio device for stereo output.
type OutputFactory func(sampleRate, bufferFrames int) (minisynth.AudioOutput, error)

// Outputs lists the audio backends compiled in, keyed by the name used in
// the config file.
var Outputs = map[string]OutputFactory{
	"oto": func(sampleRate, bufferFrames int) (minisynth.AudioOutput, error) {
		return oto.NewOutput(sampleRate, bufferFrames)
	},
	"null": func(sampleRate, bufferFrames int) (minisynth.AudioOutput, error) {
		return NewNullOutput(sampleRate, bufferFrames), nil
	},
}

// OpenOutput opens the backend called name.
func OpenOutput(name string, sampleRate, bufferFrames int) (minisynth.AudioOutput, error) {
	factory, ok := Outputs[name]
	if !ok {
		return nil, fmt.Errorf("unknown audio backend %q, choose one of: %v", name, strings.Join(OutputNames(), ", "))
	}
	return factory(sampleRate, bufferFrames)
}

func OutputNames() []string {
	names := make([]string, 0, len(Outputs))
	for name := range Outputs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NullOutput pulls chunks at the pace of a real device and discards them.
type NullOutput struct {
	period time.Duration
	frames int
	cancel context.CancelFunc
	done   chan struct{}
}

func NewNullOutput(sampleRate, bufferFrames int) *NullOutput {
	return &NullOutput{
		period: time.Duration(bufferFrames) * time.Second / time.Duration(sampleRate),
		frames: bufferFrames,
	}
}

func (n *NullOutput) Start(src minisynth.ChunkSource) error {
	if n.cancel != nil {
		return fmt.Errorf("null output already started")
	}
	ctx, cancel := context.WithCancel(context.Background())
	n.cancel = cancel
	n.done = make(chan struct{})
	go func() {
		defer close(n.done)
		buffer := make([]float32, 2*n.frames)
		ticker := time.NewTicker(n.period)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				src.GetChunk(buffer)
			}
		}
	}()
	return nil
}

func (n *NullOutput) Close() error {
	if n.cancel != nil {
		n.cancel()
		<-n.done
		n.cancel = nil
	}
	return nil
}
