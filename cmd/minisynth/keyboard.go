package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/term"
)

const (
	defaultVelocity = 100
	// Terminals report key presses only. A note sounds for holdTime after
	// the last press of its key; auto repeat keeps a held key sounding.
	holdTime = 600 * time.Millisecond
)

// keyRows maps the two rows of a PC keyboard onto piano keys.
var keyRows = []struct {
	keys  string
	first uint8
}{
	{"q2w3er5t6y7u", 60},  // C4
	{"zsxdcvgbhnjm,", 48}, // C3
}

// pcKey returns the piano key for a typed character.
func pcKey(b byte) (uint8, bool) {
	if b >= 'A' && b <= 'Z' {
		b += 'a' - 'A'
	}
	for _, row := range keyRows {
		for i := 0; i < len(row.keys); i++ {
			if row.keys[i] == b {
				return row.first + uint8(i), true
			}
		}
	}
	return 0, false
}

// heldNotes releases each note holdTime after its key was last pressed.
type heldNotes struct {
	mu     sync.Mutex
	timers map[uint8]*time.Timer
	off    func(key uint8)
}

// press reports whether key was not already sounding.
func (h *heldNotes) press(key uint8) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if t, ok := h.timers[key]; ok && t.Stop() {
		t.Reset(holdTime)
		return false
	}
	var t *time.Timer
	t = time.AfterFunc(holdTime, func() {
		h.mu.Lock()
		own := h.timers[key] == t
		if own {
			delete(h.timers, key)
		}
		h.mu.Unlock()
		if own {
			h.off(key)
		}
	})
	h.timers[key] = t
	return true
}

func (h *heldNotes) releaseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for key, t := range h.timers {
		if t.Stop() {
			h.off(key)
		}
		delete(h.timers, key)
	}
}

// keyboard plays notes from the keys typed on in until Esc or Ctrl-C. Space
// releases all notes, '[' and ']' select the previous and next patch.
func (c *console) keyboard(in *os.File, out io.Writer) error {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return errors.New("keyboard mode needs a terminal")
	}
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("cannot set raw mode: %w", err)
	}
	defer term.Restore(fd, oldState)
	c.out = out
	held := &heldNotes{timers: map[uint8]*time.Timer{}, off: c.synth.NoteOff}
	defer held.releaseAll()
	stop := make(chan struct{})
	defer close(stop)
	go c.meterLine(stop)
	c.printf("keyboard mode: %s and %s play notes, space releases, [ ] change patch, Esc quits\r\n", keyRows[0].keys, keyRows[1].keys)
	buf := make([]byte, 1)
	for {
		if _, err := in.Read(buf); err != nil {
			return err
		}
		switch b := buf[0]; b {
		case 0x1b, 0x03: // Esc, Ctrl-C
			c.printf("\r\n")
			return nil
		case ' ':
			held.releaseAll()
			c.synth.AllNotesOff()
		case '[', ']':
			i := c.synth.ActivePatch() - 1
			if b == ']' {
				i += 2
			}
			_ = c.synth.SelectPatch(i) // ignored past either end
		default:
			if key, ok := pcKey(b); ok && held.press(key) {
				c.synth.NoteOn(key, defaultVelocity)
			}
		}
	}
}

// meterLine keeps a status line with the patch and the output level updated.
func (c *console) meterLine(stop <-chan struct{}) {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			c.synth.ConfigUpdated()
			c.printf("\r%-24s voices %2d  peak %-9s", c.patchLine(), c.synth.ActiveVoices(), decibels(c.meter.Peak()))
		}
	}
}
