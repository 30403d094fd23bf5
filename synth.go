package minisynth

// Synth is the engine surface shared by every front end: the console, the
// renderer and the plugin drive the synthesizer through it.
type Synth interface {
	ChunkSource
	NoteOn(key, velocity uint8)
	NoteOff(key uint8)
	ControlChange(cc, value uint8)
	ProgramChange(program uint8)
	ConfigUpdated() bool
	Close()
}
