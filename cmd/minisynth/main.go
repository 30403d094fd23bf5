package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/rsta2/minisynth"
	"github.com/rsta2/minisynth/cmd"
	"github.com/rsta2/minisynth/engine"
	"github.com/rsta2/minisynth/midi"
	"github.com/rsta2/minisynth/version"
)

func main() {
	configFile := flag.String("config", "minisynth.yml", "Configuration file. Missing settings and a missing file fall back to the built-in defaults.")
	backend := flag.String("backend", "", "Audio backend, one of: "+strings.Join(cmd.OutputNames(), ", ")+". Overrides the configuration file.")
	patchDir := flag.String("patchdir", "", "Directory holding the patch files. Overrides the configuration file.")
	channel := flag.Int("channel", 0, "MIDI channel 1..16, 0 for omni mode. Overrides the configuration file.")
	midiInput := flag.String("midi", "", "Prefix of the MIDI input port name. Overrides the configuration file.")
	cores := flag.Int("cores", 0, "Number of cores rendering voices. Overrides the configuration file.")
	listMIDI := flag.Bool("list-midi", false, "List the MIDI input ports and exit.")
	keys := flag.Bool("keys", false, "Start in keyboard mode: play notes with the PC keyboard instead of entering commands.")
	help := flag.Bool("h", false, "Show help.")
	versionFlag := flag.Bool("v", false, "Print version.")
	flag.Usage = printUsage
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.VersionOrHash)
		os.Exit(0)
	}
	if *help || flag.NArg() > 0 {
		flag.Usage()
		os.Exit(0)
	}
	if *listMIDI {
		ports, err := cmd.MIDIPorts()
		if err != nil {
			log.Fatal(err)
		}
		for _, p := range ports {
			fmt.Println(p)
		}
		os.Exit(0)
	}
	cfg, err := minisynth.LoadConfig(*configFile)
	if err != nil {
		log.Printf("using the default configuration: %v", err)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "backend":
			cfg.Backend = *backend
		case "patchdir":
			cfg.PatchDir = *patchDir
		case "channel":
			cfg.MIDIChannel = *channel
		case "midi":
			cfg.MIDIInput = *midiInput
		case "cores":
			cfg.Cores = *cores
		}
	})
	synth, err := engine.New(cfg)
	if synth == nil {
		log.Fatal(err)
	}
	defer synth.Close()
	if err != nil {
		log.Printf("some settings could not be loaded: %v", err)
	}
	meter := newPeakMeter(synth)
	output, err := cmd.OpenOutput(cfg.Backend, cfg.SampleRate, cfg.BufferFrames)
	if err != nil {
		log.Fatalf("cannot open audio output: %v", err)
	}
	defer output.Close()
	if err := output.Start(meter); err != nil {
		log.Fatalf("cannot start audio output: %v", err)
	}
	dispatcher := midi.NewDispatcher(synth, cfg.MIDIChannel)
	var midiIn io.Closer
	if in, err := cmd.OpenMIDIInput(cfg.MIDIInput, dispatcher); err != nil {
		log.Printf("no MIDI input: %v", err)
	} else {
		midiIn = in
		log.Printf("MIDI input: %v", in)
	}
	c := &console{synth: synth, dispatcher: dispatcher, meter: meter}
	if *keys {
		err = c.keyboard(os.Stdin, os.Stdout)
	} else {
		err = c.repl()
	}
	if err != nil && err != io.EOF {
		log.Print(err)
	}
	if midiIn != nil {
		midiIn.Close()
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Minisynth %v\nA polyphonic subtractive synthesizer.\nUsage: %s [flags]\n", version.VersionOrHash, os.Args[0])
	flag.PrintDefaults()
}
