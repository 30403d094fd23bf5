package synth

import (
	"testing"
	"time"
)

func TestRenderJoinsCoresAfterPanic(t *testing.T) {
	m := NewVoiceManager(48000, 1, 2, false)
	defer m.Close()
	if m.Cores() < 2 {
		t.Skip("needs GOMAXPROCS >= 2")
	}
	m.process = func(first, last int) float32 {
		if first == 0 {
			panic("voice failed")
		}
		time.Sleep(20 * time.Millisecond)
		return 1
	}
	func() {
		defer func() {
			if recover() == nil {
				t.Fatal("panic did not reach the caller")
			}
		}()
		m.render()
	}()
	for c := 1; c < m.Cores(); c++ {
		if s := m.cores[c].status.Load(); s != coreIdle {
			t.Fatalf("core %d left in status %d", c, s)
		}
	}
	m.process = func(first, last int) float32 { return 1 }
	if got := m.render(); got != float32(m.Cores()) {
		t.Fatalf("render after the panic returned %v", got)
	}
}
