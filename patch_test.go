package minisynth_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rsta2/minisynth"
)

func TestPatchSaveLoad(t *testing.T) {
	p := minisynth.NewPatch()
	p.SetParameter(minisynth.VCOWaveform, 2)
	p.SetParameter(minisynth.EGVCAAttack, 650)
	p.SetParameter(minisynth.LFOVCFFrequency, 35)
	p.SetProperty(minisynth.PatchName, "warm pad")
	p.SetProperty(minisynth.PatchComment, "for testing")
	var buf bytes.Buffer
	if err := p.Save(&buf); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "Version: 2\n") {
		t.Fatalf("saved patch does not start with the version:\n%v", buf.String())
	}
	q := minisynth.NewPatch()
	if err := q.Load(&buf); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	for i := 0; i < minisynth.NumSynthParameters; i++ {
		s := minisynth.SynthParameter(i)
		if p.Parameter(s) != q.Parameter(s) {
			t.Errorf("%v: saved %d, loaded %d", s, p.Parameter(s), q.Parameter(s))
		}
	}
	if q.Property(minisynth.PatchName) != "WARM PAD" {
		t.Errorf("name loaded as %q", q.Property(minisynth.PatchName))
	}
	if q.Property(minisynth.PatchComment) != "for testing" {
		t.Errorf("comment loaded as %q", q.Property(minisynth.PatchComment))
	}
}

func TestPatchMigratesVersion1(t *testing.T) {
	const old = `
VCFCutoffFrequency: 90
VCFModulationVolume: 20
LFOVCFFrequency: 40
SynthVolume: 80
VCAModulationVolume: 30
LFOVCAFrequency: 45
EGVCAAttack: 300
`
	p := minisynth.NewPatch()
	if err := p.Load(strings.NewReader(old)); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	want := map[minisynth.SynthParameter]int{
		minisynth.VCFCutoffFrequency:  70,
		minisynth.VCFModulationVolume: 0,
		minisynth.LFOVCFFrequency:     20,
		minisynth.SynthVolume:         50,
		minisynth.VCAModulationVolume: 0,
		minisynth.LFOVCAFrequency:     20,
		minisynth.EGVCAAttack:         300,
	}
	for s, v := range want {
		if p.Parameter(s) != v {
			t.Errorf("%v migrated to %d, expected %d", s, p.Parameter(s), v)
		}
	}

	p = minisynth.NewPatch()
	if err := p.Load(strings.NewReader("Version: 2\n" + old)); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if p.Parameter(minisynth.VCFCutoffFrequency) != 90 || p.Parameter(minisynth.LFOVCAFrequency) != 45 {
		t.Fatal("a version 2 patch was migrated")
	}
}

func TestPatchLoadCorruptFallsBackToDefaults(t *testing.T) {
	for _, data := range []string{"", "- a list\n", "VCOWaveform: square\n", "Version: two\n", "{{{"} {
		p := minisynth.NewPatch()
		p.SetParameter(minisynth.SynthVolume, 90)
		err := p.Load(strings.NewReader(data))
		if !errors.Is(err, minisynth.ErrPatchFormat) {
			t.Errorf("%q: expected ErrPatchFormat, got %v", data, err)
		}
		if p.Parameter(minisynth.SynthVolume) != 50 || p.Parameter(minisynth.VCOWaveform) != 1 {
			t.Errorf("%q: patch not reset to defaults", data)
		}
	}
}

func TestPatchFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "patch0.yml")
	p, err := minisynth.LoadPatchFile(path)
	if !errors.Is(err, minisynth.ErrNoStorage) {
		t.Fatalf("missing file gave %v", err)
	}
	if p == nil || p.Parameter(minisynth.SynthVolume) != 50 {
		t.Fatal("missing file did not yield a default patch")
	}
	p.SetParameter(minisynth.ReverbVolume, 25)
	if err := minisynth.SavePatchFile(path, p); err != nil {
		t.Fatalf("SavePatchFile failed: %v", err)
	}
	q, err := minisynth.LoadPatchFile(path)
	if err != nil {
		t.Fatalf("LoadPatchFile failed: %v", err)
	}
	if q.Parameter(minisynth.ReverbVolume) != 25 {
		t.Fatalf("reverb volume loaded as %d", q.Parameter(minisynth.ReverbVolume))
	}
	if err := os.WriteFile(path, []byte("nonsense: ["), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := minisynth.LoadPatchFile(path); !errors.Is(err, minisynth.ErrPatchFormat) {
		t.Fatalf("corrupt file gave %v", err)
	}
}

func TestPatchProperties(t *testing.T) {
	p := minisynth.NewPatch()
	p.SetProperty(minisynth.PatchName, "a very long patch name")
	if got := p.Property(minisynth.PatchName); got != "A VERY LON" {
		t.Fatalf("name stored as %q", got)
	}
	p.SetProperty(minisynth.PatchAuthor, "Someone")
	if got := p.Property(minisynth.PatchAuthor); got != "Someone" {
		t.Fatalf("author stored as %q", got)
	}
	if p.PropertyHelp(minisynth.PatchComment) != "Any comment" || minisynth.PatchComment.MaxLength() != 40 {
		t.Fatal("comment property definition changed")
	}
}

func TestPatchCopyIsIndependent(t *testing.T) {
	p := minisynth.NewPatch()
	q := p.Copy()
	q.SetParameter(minisynth.VCODetune, 120)
	if p.Parameter(minisynth.VCODetune) != 100 {
		t.Fatal("editing a copy changed the original")
	}
}

func TestPresetsLoad(t *testing.T) {
	if minisynth.NumPresets() == 0 {
		t.Fatal("no presets embedded")
	}
	p, ok := minisynth.Preset(1)
	if !ok {
		t.Fatal("preset 1 missing")
	}
	if p.Property(minisynth.PatchName) != "STRINGS" || p.Parameter(minisynth.VCODetune) != 106 {
		t.Fatalf("preset 1 loaded wrong: %q", p.Property(minisynth.PatchName))
	}
	if _, ok := minisynth.Preset(minisynth.NumPresets()); ok {
		t.Fatal("preset beyond the end reported present")
	}
}

func TestPatchSheet(t *testing.T) {
	p, _ := minisynth.Preset(2)
	var buf bytes.Buffer
	if err := minisynth.PatchSheet(&buf, p); err != nil {
		t.Fatalf("PatchSheet failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"BASS by minisynth", "[VCO]", "[REVERB]", "VCFResonance", "70 %", "resonance"} {
		if !strings.Contains(out, want) {
			t.Errorf("patch sheet lacks %q:\n%v", want, out)
		}
	}
}

func TestVelocityCurve(t *testing.T) {
	c := minisynth.LinearVelocityCurve()
	if c.Map(64) != 64 || c.Map(0) != 0 || c.Map(200) != 127 {
		t.Fatal("linear curve is not linear")
	}
	c, err := minisynth.LoadVelocityCurve(strings.NewReader("Velocity10: 40\nVelocity11: 0\nVelocity12: 300\n"))
	if err != nil {
		t.Fatalf("LoadVelocityCurve failed: %v", err)
	}
	if c.Map(10) != 40 || c.Map(11) != 11 || c.Map(12) != 12 {
		t.Fatalf("curve loaded as %d %d %d", c.Map(10), c.Map(11), c.Map(12))
	}
}

func TestMIDICCMap(t *testing.T) {
	m, err := minisynth.LoadMIDICCMap(strings.NewReader("VCFCutoffFrequency: 74\nVCFResonance: 71\nBogus: 5\nSynthVolume: 0\n"))
	if err != nil {
		t.Fatalf("LoadMIDICCMap failed: %v", err)
	}
	if s, ok := m.Map(74); !ok || s != minisynth.VCFCutoffFrequency {
		t.Fatalf("CC 74 maps to %v %v", s, ok)
	}
	if s, ok := m.Map(71); !ok || s != minisynth.VCFResonance {
		t.Fatalf("CC 71 maps to %v %v", s, ok)
	}
	for _, cc := range []uint8{0, 5, 7, 128} {
		if _, ok := m.Map(cc); ok {
			t.Errorf("CC %d should be unmapped", cc)
		}
	}
}

func TestConfig(t *testing.T) {
	c := minisynth.DefaultConfig()
	if err := c.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if c.SampleRate != 48000 || c.Patches != 10 || c.VoicesPerCore != 8 {
		t.Fatalf("unexpected defaults %+v", c)
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	if err := os.WriteFile(path, []byte("cores: 2\nlastnotepriority: true\npatchdir: "+dir+"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	c, err := minisynth.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if c.Cores != 2 || !c.LastNotePriority || c.SampleRate != 48000 {
		t.Fatalf("config not layered over defaults: %+v", c)
	}
	if got := c.PatchPath(3); got != filepath.Join(dir, "patch3.yml") {
		t.Fatalf("patch path %v", got)
	}
	if err := os.WriteFile(path, []byte("activepatch: 12\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := minisynth.LoadConfig(path); err == nil {
		t.Fatal("out-of-range active patch was accepted")
	}
	if err := os.WriteFile(path, []byte("voices: 3\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := minisynth.LoadConfig(path); err == nil {
		t.Fatal("unknown key was accepted")
	}
}
