package minisynth

import (
	"context"
	"fmt"
)

type (
	// ChunkSource produces interleaved stereo samples in [-1,1]. GetChunk
	// fills buf (an even number of values) and returns how many it wrote.
	ChunkSource interface {
		GetChunk(buf []float32) int
	}

	// AudioOutput is a device that pulls chunks from a source on its own
	// clock once started.
	AudioOutput interface {
		Start(src ChunkSource) error
		Close() error
	}

	// AudioSink accepts pushed chunks, e.g. a file being rendered.
	AudioSink interface {
		WriteAudio(buffer []float32) error
		Close() error
	}
)

// Play pumps chunks of frames stereo frames from src into sink until ctx is
// cancelled or the sink fails.
func Play(ctx context.Context, src ChunkSource, sink AudioSink, frames int) error {
	buffer := make([]float32, frames*2)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		n := src.GetChunk(buffer)
		if err := sink.WriteAudio(buffer[:n]); err != nil {
			return fmt.Errorf("cannot write audio: %w", err)
		}
	}
}

// Render pulls exactly frames stereo frames from src.
func Render(src ChunkSource, frames int) []float32 {
	buffer := make([]float32, frames*2)
	Fill(src, buffer)
	return buffer
}

// Fill pulls chunks from src until buffer is full or src stops producing.
func Fill(src ChunkSource, buffer []float32) {
	for pos := 0; pos < len(buffer); {
		n := src.GetChunk(buffer[pos:])
		if n == 0 {
			return
		}
		pos += n
	}
}
