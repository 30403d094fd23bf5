package minisynth

import "math"

// The playable range, C0 (16.35 Hz) to F8 (5587.65 Hz).
const (
	MinKey = 12
	MaxKey = 113
)

var keyFrequency [128]float32

func init() {
	for k := MinKey; k <= MaxKey; k++ {
		keyFrequency[k] = float32(440 * math.Exp2(float64(k-69)/12))
	}
}

// KeyFrequency returns the equal-tempered frequency of a MIDI key, A4 (69)
// being 440 Hz. Keys outside the playable range report false.
func KeyFrequency(key uint8) (float32, bool) {
	if key < MinKey || key > MaxKey {
		return 0, false
	}
	return keyFrequency[key], true
}
