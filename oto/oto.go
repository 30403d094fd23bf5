// Package oto plays a ChunkSource on the default audio device through
// oto/v3.
package oto

import (
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/rsta2/minisynth"
)

// Output is an AudioOutput. oto allows a single context per process, so
// create at most one Output.
type Output struct {
	context      *oto.Context
	player       *oto.Player
	bufferFrames int
}

type reader struct {
	mu     sync.Mutex
	src    minisynth.ChunkSource
	buffer []float32
}

// NewOutput opens the device for 16-bit stereo at sampleRate with room for
// about bufferFrames frames.
func NewOutput(sampleRate, bufferFrames int) (*Output, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   time.Duration(bufferFrames) * time.Second / time.Duration(sampleRate),
	}
	context, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("cannot create oto context: %w", err)
	}
	<-ready
	return &Output{context: context, bufferFrames: bufferFrames}, nil
}

// Start begins pulling chunks from src on oto's playback goroutine.
func (o *Output) Start(src minisynth.ChunkSource) error {
	if o.player != nil {
		return fmt.Errorf("oto output already started")
	}
	o.player = o.context.NewPlayer(&reader{src: src, buffer: make([]float32, 0, 2*o.bufferFrames)})
	o.player.Play()
	if err := o.player.Err(); err != nil {
		return fmt.Errorf("cannot start oto player: %w", err)
	}
	return nil
}

// Close stops playback. The device stays open until the process exits.
func (o *Output) Close() error {
	if o.player == nil {
		return nil
	}
	o.player.Pause()
	err := o.player.Err()
	o.player = nil
	if err != nil {
		return fmt.Errorf("oto player failed: %w", err)
	}
	return nil
}

// Read renders len(p)/4 stereo frames and converts them to 16-bit PCM in
// place.
func (r *reader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	samples := len(p) / 2 &^ 1
	if cap(r.buffer) < samples {
		r.buffer = make([]float32, 0, samples)
	}
	buf := r.buffer[:samples]
	n := r.src.GetChunk(buf)
	clear(buf[n:])
	minisynth.FloatBufferTo16BitLE(buf, p[:0])
	return samples * 2, nil
}
