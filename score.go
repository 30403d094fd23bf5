package minisynth

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

type (
	// Score is a short performance for offline rendering: notes and
	// controller moves timed in seconds.
	Score struct {
		Program  *int      `yaml:"program,omitempty"` // patch slot selected before the first note
		Tail     float64   `yaml:"tail"`              // seconds rendered after the last event
		Notes    []Note    `yaml:"notes"`
		Controls []Control `yaml:"controls,omitempty"`
	}

	Note struct {
		Start    float64 `yaml:"start"`
		Length   float64 `yaml:"length"`
		Key      uint8   `yaml:"key"`
		Velocity uint8   `yaml:"velocity"`
	}

	Control struct {
		Time  float64 `yaml:"time"`
		CC    uint8   `yaml:"cc"`
		Value uint8   `yaml:"value"`
	}

	scoreEvent struct {
		frame int
		order int // program, controls, note offs, note ons
		apply func(Synth)
	}
)

// LoadScore decodes a YAML score. Unknown fields are an error.
func LoadScore(r io.Reader) (Score, error) {
	var s Score
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return Score{}, fmt.Errorf("cannot decode score: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Score{}, err
	}
	return s, nil
}

func LoadScoreFile(path string) (Score, error) {
	f, err := os.Open(path)
	if err != nil {
		return Score{}, fmt.Errorf("cannot open score: %w", err)
	}
	defer f.Close()
	return LoadScore(f)
}

func (s *Score) Validate() error {
	if s.Tail < 0 {
		return errors.New("negative tail")
	}
	if s.Program != nil && (*s.Program < 0 || *s.Program > 127) {
		return fmt.Errorf("program %d out of range 0..127", *s.Program)
	}
	for i, n := range s.Notes {
		switch {
		case n.Start < 0 || n.Length <= 0:
			return fmt.Errorf("note %d: start %v, length %v", i, n.Start, n.Length)
		case n.Velocity < MinVelocity || n.Velocity > MaxVelocity:
			return fmt.Errorf("note %d: velocity %d out of range", i, n.Velocity)
		case n.Key > 127:
			return fmt.Errorf("note %d: key %d out of range", i, n.Key)
		}
	}
	for i, c := range s.Controls {
		if c.Time < 0 || c.CC > MaxMIDICC || c.Value > 127 {
			return fmt.Errorf("control %d: invalid", i)
		}
	}
	return nil
}

// Duration is the time of the last event plus the tail, in seconds.
func (s *Score) Duration() float64 {
	var end float64
	for _, n := range s.Notes {
		end = math.Max(end, n.Start+n.Length)
	}
	for _, c := range s.Controls {
		end = math.Max(end, c.Time)
	}
	return end + s.Tail
}

// PlayScore renders the score on synth and returns the interleaved stereo
// samples. Events are applied at the first frame at or after their time.
func PlayScore(synth Synth, score Score, sampleRate int) []float32 {
	toFrame := func(t float64) int { return int(math.Ceil(t * float64(sampleRate))) }
	var events []scoreEvent
	if score.Program != nil {
		program := uint8(*score.Program)
		events = append(events, scoreEvent{0, 0, func(s Synth) { s.ProgramChange(program) }})
	}
	for _, c := range score.Controls {
		c := c
		events = append(events, scoreEvent{toFrame(c.Time), 1, func(s Synth) { s.ControlChange(c.CC, c.Value) }})
	}
	for _, n := range score.Notes {
		n := n
		events = append(events,
			scoreEvent{toFrame(n.Start + n.Length), 2, func(s Synth) { s.NoteOff(n.Key) }},
			scoreEvent{toFrame(n.Start), 3, func(s Synth) { s.NoteOn(n.Key, n.Velocity) }})
	}
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].frame != events[j].frame {
			return events[i].frame < events[j].frame
		}
		return events[i].order < events[j].order
	})
	total := toFrame(score.Duration())
	buffer := make([]float32, 2*total)
	pos := 0
	for _, e := range events {
		end := min(e.frame, total)
		Fill(synth, buffer[2*pos:2*end])
		pos = end
		e.apply(synth)
	}
	Fill(synth, buffer[2*pos:])
	return buffer
}
