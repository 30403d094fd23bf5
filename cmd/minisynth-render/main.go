package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rsta2/minisynth"
	"github.com/rsta2/minisynth/engine"
	"github.com/rsta2/minisynth/version"
)

func main() {
	help := flag.Bool("h", false, "Show help.")
	configFile := flag.String("config", "", "Config file layered over the built-in defaults.")
	patchFile := flag.String("patch", "", "Render with this patch file instead of the configured patch slots.")
	directory := flag.String("o", "", "Directory where to output all files. The directory and its parents are created if needed. By default, files are written to the working directory.")
	rawOut := flag.Bool("r", false, "Output the rendered score as .raw file.")
	wavOut := flag.Bool("w", false, "Output the rendered score as .wav file (default when no other output is given).")
	pcm := flag.Bool("c", false, "Convert .raw output to 16-bit signed PCM instead of float32.")
	versionFlag := flag.Bool("v", false, "Print version.")
	flag.Usage = printUsage
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.VersionOrHash)
		os.Exit(0)
	}
	if flag.NArg() == 0 || *help {
		flag.Usage()
		os.Exit(0)
	}
	if !*rawOut && !*wavOut {
		*wavOut = true
	}
	cfg, err := minisynth.LoadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not load config: %v\n", err)
		os.Exit(1)
	}
	var patch *minisynth.Patch
	if *patchFile != "" {
		if patch, err = minisynth.LoadPatchFile(*patchFile); err != nil {
			fmt.Fprintf(os.Stderr, "could not load patch: %v\n", err)
			os.Exit(1)
		}
	}
	output := func(scoreFile, extension string, contents []byte) error {
		dir := *directory
		if dir == "" {
			var err error
			if dir, err = os.Getwd(); err != nil {
				return fmt.Errorf("could not get working directory, specify the output directory explicitly: %v", err)
			}
		}
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return fmt.Errorf("could not create output directory %v: %v", dir, err)
		}
		_, name := filepath.Split(scoreFile)
		name = strings.TrimSuffix(name, filepath.Ext(name)) + extension
		f := filepath.Join(dir, name)
		if err := os.WriteFile(f, contents, 0644); err != nil {
			return fmt.Errorf("could not write file %v: %v", f, err)
		}
		return nil
	}
	process := func(filename string) error {
		score, err := minisynth.LoadScoreFile(filename)
		if err != nil {
			return err
		}
		synth, err := engine.New(cfg)
		if synth == nil {
			return fmt.Errorf("could not create synthesizer: %v", err)
		}
		defer synth.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}
		if patch != nil {
			synth.SetPatch(patch)
		}
		buffer := minisynth.PlayScore(synth, score, cfg.SampleRate)
		if *rawOut {
			raw, err := minisynth.Raw(buffer, *pcm)
			if err != nil {
				return fmt.Errorf("could not generate .raw file: %v", err)
			}
			if err := output(filename, ".raw", raw); err != nil {
				return fmt.Errorf("error outputting .raw file: %v", err)
			}
		}
		if *wavOut {
			wav, err := minisynth.Wav(buffer, cfg.SampleRate)
			if err != nil {
				return fmt.Errorf("could not generate .wav file: %v", err)
			}
			if err := output(filename, ".wav", wav); err != nil {
				return fmt.Errorf("error outputting .wav file: %v", err)
			}
		}
		return nil
	}
	retval := 0
	for _, param := range flag.Args() {
		files := []string{param}
		if info, err := os.Stat(param); err == nil && info.IsDir() {
			if files, err = filepath.Glob(filepath.Join(param, "*.yml")); err != nil {
				fmt.Fprintf(os.Stderr, "could not glob the path %v for yml files: %v\n", param, err)
				retval = 1
				continue
			}
		}
		for _, file := range files {
			if err := process(file); err != nil {
				fmt.Fprintf(os.Stderr, "could not process file %v: %v\n", file, err)
				retval = 1
			}
		}
	}
	os.Exit(retval)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "minisynth-render renders .yml note scores to audio files.\nUsage: %s [flags] [path ...]\n", os.Args[0])
	flag.PrintDefaults()
}
