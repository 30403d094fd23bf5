//go:build portaudio

// Package portaudio plays a ChunkSource through the default PortAudio output
// device.
package portaudio

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
	"github.com/rsta2/minisynth"
)

// Output is an AudioOutput on a stereo float32 stream.
type Output struct {
	sampleRate   int
	bufferFrames int
	src          minisynth.ChunkSource
	stream       *portaudio.Stream
}

func NewOutput(sampleRate, bufferFrames int) (*Output, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("cannot initialize portaudio: %w", err)
	}
	return &Output{sampleRate: sampleRate, bufferFrames: bufferFrames}, nil
}

// Start opens the default stream and pulls chunks from src in its callback.
func (o *Output) Start(src minisynth.ChunkSource) error {
	if o.stream != nil {
		return fmt.Errorf("portaudio output already started")
	}
	o.src = src
	stream, err := portaudio.OpenDefaultStream(0, 2, float64(o.sampleRate), o.bufferFrames, o.process)
	if err != nil {
		return fmt.Errorf("cannot open portaudio stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("cannot start portaudio stream: %w", err)
	}
	o.stream = stream
	return nil
}

func (o *Output) process(out []float32) {
	n := o.src.GetChunk(out)
	clear(out[n:])
}

func (o *Output) Close() error {
	if o.stream != nil {
		o.stream.Stop()
		o.stream.Close()
		o.stream = nil
	}
	if err := portaudio.Terminate(); err != nil {
		return fmt.Errorf("cannot terminate portaudio: %w", err)
	}
	return nil
}
