package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chzyer/readline"
	"github.com/rsta2/minisynth"
	"github.com/rsta2/minisynth/engine"
	"github.com/rsta2/minisynth/midi"
)

var errQuit = errors.New("quit")

type console struct {
	synth      *engine.Synthesizer
	dispatcher *midi.Dispatcher
	meter      *peakMeter
	out        io.Writer
	mu         sync.Mutex // serializes writes to out
}

type command struct {
	name  string
	args  string
	help  string
	run   func(*console, []string) error
	min   int
	max   int // -1 for no limit
}

var commands []command

func init() {
	commands = []command{
		{"help", "", "list the commands", helpCommand, 0, 0},
		{"status", "", "show the patch, the voices and the output level", statusCommand, 0, 0},
		{"patch", "[slot]", "show the patch slots or select one", patchCommand, 0, 1},
		{"get", "param", "show a parameter or property", getCommand, 1, 1},
		{"set", "param value", "change a parameter or property", setCommand, 2, -1},
		{"up", "param", "step a parameter up", upCommand, 1, 1},
		{"down", "param", "step a parameter down", downCommand, 1, 1},
		{"sheet", "", "list every parameter of the patch", sheetCommand, 0, 0},
		{"save", "", "write all patch slots to disk", saveCommand, 0, 0},
		{"cc", "controller value", "send a MIDI control change", ccCommand, 2, 2},
		{"note", "key [velocity] [seconds]", "play a note", noteCommand, 1, 3},
		{"off", "", "release all notes", offCommand, 0, 0},
		{"channel", "[1..16|omni]", "show or set the MIDI channel", channelCommand, 0, 1},
		{"quit", "", "leave the synthesizer", quitCommand, 0, 0},
	}
}

func (c *console) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}

func (c *console) eval(line string) error {
	fields := strings.Fields(line)
	name, args := fields[0], fields[1:]
	for _, cmd := range commands {
		if name != cmd.name {
			continue
		}
		if len(args) < cmd.min || (cmd.max >= 0 && len(args) > cmd.max) {
			return fmt.Errorf("%s: wrong number of arguments, usage: %s %s", cmd.name, cmd.name, cmd.args)
		}
		return cmd.run(c, args)
	}
	return fmt.Errorf("unknown command: %s (try help)", name)
}

func (c *console) repl() error {
	rl, err := readline.New("> ")
	if err != nil {
		return err
	}
	defer rl.Close()
	c.out = rl.Stdout()
	stop := make(chan struct{})
	defer close(stop)
	go c.watch(stop, func() {
		c.printf("%s\n", c.patchLine())
	})
	for {
		line, err := rl.Readline()
		if err == io.EOF {
			return err
		}
		if err == readline.ErrInterrupt {
			c.synth.AllNotesOff()
			continue
		}
		if err != nil {
			c.printf("%v\n", err)
			continue
		}
		if len(strings.TrimSpace(line)) == 0 {
			continue
		}
		err = c.eval(line)
		if err == errQuit {
			return nil
		}
		if err != nil {
			c.printf("%v\n", err)
		}
	}
}

// watch calls changed whenever the active patch is replaced or edited from
// outside the console, e.g. by a program or control change.
func (c *console) watch(stop <-chan struct{}, changed func()) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if c.synth.ConfigUpdated() {
				changed()
			}
		}
	}
}

// edit applies f to a copy of the active patch and stores it. The console's
// own edits do not trigger the watcher.
func (c *console) edit(f func(*minisynth.Patch) error) error {
	p := c.synth.Patch()
	if err := f(p); err != nil {
		return err
	}
	c.synth.SetPatch(p)
	c.synth.ConfigUpdated()
	return nil
}

func (c *console) patchLine() string {
	i := c.synth.ActivePatch()
	return fmt.Sprintf("patch %d: %s", i, c.synth.PatchName(i))
}

func helpCommand(c *console, _ []string) error {
	for _, cmd := range commands {
		c.printf("  %-8s %-26s %s\n", cmd.name, cmd.args, cmd.help)
	}
	return nil
}

func statusCommand(c *console, _ []string) error {
	cfg := c.synth.Config()
	ch := cfg.ChannelParameter()
	ch.Set(c.dispatcher.Channel())
	c.printf("%s\nvoices: %d\nMIDI channel: %s\npeak: %s\n", c.patchLine(), c.synth.ActiveVoices(), ch.String(), decibels(c.meter.Peak()))
	return nil
}

func patchCommand(c *console, args []string) error {
	if len(args) == 1 {
		i, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("patch: %w", err)
		}
		if err := c.synth.SelectPatch(i); err != nil {
			return err
		}
		c.synth.ConfigUpdated()
		c.printf("%s\n", c.patchLine())
		return nil
	}
	active := c.synth.ActivePatch()
	for i := 0; i < c.synth.NumPatches(); i++ {
		mark := " "
		if i == active {
			mark = "*"
		}
		c.printf("%s%2d %s\n", mark, i, c.synth.PatchName(i))
	}
	return nil
}

// lookup finds a parameter or, failing that, a property by case-insensitive
// name.
func lookup(name string) (minisynth.SynthParameter, minisynth.PatchProperty, error) {
	for i := 0; i < minisynth.NumSynthParameters; i++ {
		if s := minisynth.SynthParameter(i); strings.EqualFold(s.String(), name) {
			return s, -1, nil
		}
	}
	for i := 0; i < minisynth.NumPatchProperties; i++ {
		if prop := minisynth.PatchProperty(i); strings.EqualFold(prop.String(), name) {
			return -1, prop, nil
		}
	}
	return -1, -1, fmt.Errorf("unknown parameter: %s", name)
}

func getCommand(c *console, args []string) error {
	s, prop, err := lookup(args[0])
	if err != nil {
		return err
	}
	p := c.synth.Patch()
	if s.Valid() {
		c.printf("%s = %s (%s)\n", s, p.ParameterString(s), p.ParameterHelp(s))
	} else {
		c.printf("%s = %q\n", prop, p.Property(prop))
	}
	return nil
}

func setCommand(c *console, args []string) error {
	s, prop, err := lookup(args[0])
	if err != nil {
		return err
	}
	value := strings.Join(args[1:], " ")
	return c.edit(func(p *minisynth.Patch) error {
		switch {
		case !s.Valid():
			p.SetProperty(prop, value)
		case !p.SetParameterEditString(s, value):
			def := s.Definition()
			return fmt.Errorf("set: %q is not a value of %s (%d..%d)", value, s, def.Min, def.Max)
		}
		return nil
	})
}

func stepCommand(up bool) func(*console, []string) error {
	return func(c *console, args []string) error {
		s, _, err := lookup(args[0])
		if err != nil {
			return err
		}
		if !s.Valid() {
			return fmt.Errorf("%s cannot be stepped", args[0])
		}
		return c.edit(func(p *minisynth.Patch) error {
			var ok bool
			if up {
				ok = p.ParameterUp(s)
			} else {
				ok = p.ParameterDown(s)
			}
			if ok {
				c.printf("%s = %s\n", s, p.ParameterString(s))
			}
			return nil
		})
	}
}

var (
	upCommand   = stepCommand(true)
	downCommand = stepCommand(false)
)

func sheetCommand(c *console, _ []string) error {
	var sb strings.Builder
	if err := minisynth.PatchSheet(&sb, c.synth.Patch()); err != nil {
		return err
	}
	c.printf("%s", sb.String())
	return nil
}

func saveCommand(c *console, _ []string) error {
	if err := c.synth.SavePatches(); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	c.printf("saved %d patches\n", c.synth.NumPatches())
	return nil
}

func parseByte(s string) (uint8, error) {
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 || v > 127 {
		return 0, fmt.Errorf("%q is not within 0..127", s)
	}
	return uint8(v), nil
}

func ccCommand(c *console, args []string) error {
	cc, err := parseByte(args[0])
	if err != nil {
		return err
	}
	value, err := parseByte(args[1])
	if err != nil {
		return err
	}
	c.synth.ControlChange(cc, value)
	return nil
}

func noteCommand(c *console, args []string) error {
	key, err := parseByte(args[0])
	if err != nil {
		return err
	}
	velocity := uint8(defaultVelocity)
	if len(args) > 1 {
		if velocity, err = parseByte(args[1]); err != nil {
			return err
		}
	}
	length := time.Second
	if len(args) > 2 {
		seconds, err := strconv.ParseFloat(args[2], 64)
		if err != nil || seconds <= 0 {
			return fmt.Errorf("note: invalid length %q", args[2])
		}
		length = time.Duration(seconds * float64(time.Second))
	}
	c.synth.NoteOn(key, velocity)
	time.AfterFunc(length, func() { c.synth.NoteOff(key) })
	return nil
}

func offCommand(c *console, _ []string) error {
	c.synth.AllNotesOff()
	return nil
}

func channelCommand(c *console, args []string) error {
	cfg := c.synth.Config()
	ch := cfg.ChannelParameter()
	if len(args) == 1 {
		if strings.EqualFold(args[0], "omni") {
			args[0] = "0"
		}
		if !ch.SetEditString(args[0]) {
			return fmt.Errorf("channel: %q is not within 1..16 or omni", args[0])
		}
		c.dispatcher.SetChannel(ch.Get())
	}
	ch.Set(c.dispatcher.Channel())
	c.printf("MIDI channel: %s\n", ch.String())
	return nil
}

func quitCommand(c *console, _ []string) error {
	return errQuit
}
