package synth

import (
	"runtime"
	"sync/atomic"

	"github.com/rsta2/minisynth/assert"
)

type (
	// workers splits the voice pool into equal contiguous ranges, one per
	// core. Core 0 is the caller of render; every other core is a goroutine
	// locked to its own OS thread, spinning on its status word between
	// samples.
	workers struct {
		process func(first, last int) float32
		cores   []core
		closed  bool
	}

	core struct {
		status atomic.Uint32
		first  int
		last   int
		level  float32
		_      [36]byte // keep each core on its own cache line
	}
)

const (
	coreInit uint32 = iota
	coreIdle
	coreBusy
	coreExit
	coreExited
)

// MaxCores bounds the number of cores a VoiceManager uses.
const MaxCores = 16

func (m *VoiceManager) startWorkers(cores int) {
	cores = min(cores, runtime.GOMAXPROCS(0), MaxCores, len(m.voices))
	m.process = m.processVoices
	m.cores = make([]core, cores)
	for c := range m.cores {
		m.cores[c].first = c * len(m.voices) / cores
		m.cores[c].last = (c + 1) * len(m.voices) / cores
	}
	for c := 1; c < cores; c++ {
		go m.runCore(&m.cores[c])
	}
	for c := 1; c < cores; c++ {
		for m.cores[c].status.Load() != coreIdle {
			// wait until the core is ready to be kicked
		}
	}
}

// Cores returns the number of cores rendering voices.
func (w *workers) Cores() int { return len(w.cores) }

func (w *workers) runCore(c *core) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	for {
		c.status.Store(coreIdle)
		status := c.status.Load()
		for status == coreIdle {
			status = c.status.Load()
		}
		if status == coreExit {
			c.status.Store(coreExited)
			return
		}
		assert.True(status == coreBusy, "core in unexpected status %d", status)
		c.level = w.process(c.first, c.last)
	}
}

// render kicks the secondary cores, processes the first range itself, waits
// for the others and returns the sum of all voices. If the first range
// panics, the secondary cores are still waited for before the panic goes on.
func (w *workers) render() float32 {
	for c := 1; c < len(w.cores); c++ {
		assert.True(w.cores[c].status.Load() == coreIdle, "core %d not idle", c)
		w.cores[c].status.Store(coreBusy)
	}
	joined := false
	defer func() {
		if !joined {
			w.join()
		}
	}()
	level := w.process(w.cores[0].first, w.cores[0].last)
	w.join()
	joined = true
	for c := 1; c < len(w.cores); c++ {
		level += w.cores[c].level
	}
	return level
}

// join spins until every secondary core is idle again.
func (w *workers) join() {
	for c := 1; c < len(w.cores); c++ {
		for w.cores[c].status.Load() != coreIdle {
			// just wait
		}
	}
}

// Close stops the secondary cores. Rendering continues on the calling
// goroutine alone.
func (w *workers) Close() {
	if w.closed {
		return
	}
	w.closed = true
	for c := 1; c < len(w.cores); c++ {
		w.cores[c].status.Store(coreExit)
		for w.cores[c].status.Load() != coreExited {
			// just wait
		}
	}
	last := w.cores[len(w.cores)-1].last
	w.cores = w.cores[:1]
	w.cores[0].last = last
}
