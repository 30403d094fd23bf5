package minisynth

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/youpy/go-wav"
)

// FloatBufferTo16BitLE converts samples to 16-bit little-endian PCM, appending
// to out so the caller can reuse its capacity.
func FloatBufferTo16BitLE(buffer []float32, out []byte) []byte {
	for _, v := range buffer {
		out = binary.LittleEndian.AppendUint16(out, uint16(toInt16(v)))
	}
	return out
}

func toInt16(v float32) int16 {
	return int16(clamp(int(v*math.MaxInt16), -math.MaxInt16, math.MaxInt16))
}

// Raw returns the buffer as float32 or, if pcm16, as 16-bit samples, little
// endian either way.
func Raw(buffer []float32, pcm16 bool) ([]byte, error) {
	if pcm16 {
		return FloatBufferTo16BitLE(buffer, make([]byte, 0, len(buffer)*2)), nil
	}
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, buffer); err != nil {
		return nil, fmt.Errorf("could not binary write data to binary buffer: %v", err)
	}
	return buf.Bytes(), nil
}

// Wav encodes interleaved stereo samples as a 16-bit PCM .wav file.
func Wav(buffer []float32, sampleRate int) ([]byte, error) {
	frames := len(buffer) / 2
	samples := make([]wav.Sample, frames)
	for i := range samples {
		samples[i].Values[0] = int(toInt16(buffer[2*i]))
		samples[i].Values[1] = int(toInt16(buffer[2*i+1]))
	}
	buf := new(bytes.Buffer)
	w := wav.NewWriter(buf, uint32(frames), 2, uint32(sampleRate), 16)
	if err := w.WriteSamples(samples); err != nil {
		return nil, fmt.Errorf("Wav failed: %v", err)
	}
	return buf.Bytes(), nil
}

// WavSink collects everything written to it and stores it as a .wav file
// when closed.
type WavSink struct {
	w          io.WriteCloser
	sampleRate int
	buffer     []float32
}

func NewWavSink(w io.WriteCloser, sampleRate int) *WavSink {
	return &WavSink{w: w, sampleRate: sampleRate}
}

func (s *WavSink) WriteAudio(buffer []float32) error {
	s.buffer = append(s.buffer, buffer...)
	return nil
}

func (s *WavSink) Close() error {
	data, err := Wav(s.buffer, s.sampleRate)
	if err != nil {
		s.w.Close()
		return err
	}
	if _, err := s.w.Write(data); err != nil {
		s.w.Close()
		return fmt.Errorf("could not write .wav: %w", err)
	}
	return s.w.Close()
}
