//go:build portaudio

package cmd

import (
	"github.com/rsta2/minisynth"
	"github.com/rsta2/minisynth/portaudio"
)

func init() {
	Outputs["portaudio"] = func(sampleRate, bufferFrames int) (minisynth.AudioOutput, error) {
		return portaudio.NewOutput(sampleRate, bufferFrames)
	}
}
