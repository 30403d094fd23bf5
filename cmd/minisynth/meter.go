package main

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/rsta2/minisynth"
	"github.com/viterin/vek/vek32"
)

// peakMeter passes chunks through and remembers the highest absolute sample
// level seen since the last Peak call.
type peakMeter struct {
	src     minisynth.ChunkSource
	scratch []float32
	peak    atomic.Uint32
}

func newPeakMeter(src minisynth.ChunkSource) *peakMeter {
	return &peakMeter{src: src}
}

// GetChunk is called from the audio goroutine only.
func (m *peakMeter) GetChunk(buf []float32) int {
	n := m.src.GetChunk(buf)
	if n == 0 {
		return 0
	}
	if cap(m.scratch) < n {
		m.scratch = make([]float32, n)
	}
	s := m.scratch[:n]
	copy(s, buf[:n])
	vek32.Abs_Inplace(s)
	level := vek32.Max(s)
	for {
		old := m.peak.Load()
		if math.Float32frombits(old) >= level || m.peak.CompareAndSwap(old, math.Float32bits(level)) {
			break
		}
	}
	return n
}

// Peak returns the peak level and starts a new measurement.
func (m *peakMeter) Peak() float32 {
	return math.Float32frombits(m.peak.Swap(0))
}

// decibels formats a level in dBFS.
func decibels(level float32) string {
	if level <= 0 {
		return "-inf dB"
	}
	return fmt.Sprintf("%.1f dB", 20*math.Log10(float64(level)))
}
