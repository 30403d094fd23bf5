package minisynth

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

type (
	// Patch is one complete sound: a value for every SynthParameter plus a
	// few free-text properties.
	Patch struct {
		params [NumSynthParameters]Parameter
		props  [NumPatchProperties]string
	}

	PatchProperty int

	propertyDefinition struct {
		name      string
		maxLength int
		uppercase bool
		help      string
	}
)

const (
	PatchName PatchProperty = iota
	PatchAuthor
	PatchComment

	NumPatchProperties = int(PatchComment) + 1
)

// PatchVersion is written by Save. Version 1 patches predate the filter and
// amplifier LFO rate parameters and are migrated on Load.
const PatchVersion = 2

var (
	ErrNoStorage   = errors.New("patch storage not found")
	ErrPatchFormat = errors.New("malformed patch")
)

var patchProperties = [NumPatchProperties]propertyDefinition{
	{"Name", 10, true, "Patch name"},
	{"Author", 20, false, "Patch author"},
	{"Comment", 40, false, "Any comment"},
}

// NewPatch returns a patch with every parameter at its default.
func NewPatch() *Patch {
	p := &Patch{}
	p.Reset()
	return p
}

func (p *Patch) Reset() {
	p.params = synthParameters
	p.props = [NumPatchProperties]string{}
}

// Copy returns an independent copy of the patch.
func (p *Patch) Copy() *Patch {
	c := *p
	return &c
}

func (p *Patch) Parameter(s SynthParameter) int { return p.params[s].Get() }

func (p *Patch) SetParameter(s SynthParameter, v int) { p.params[s].Set(v) }

// ParameterUp reports whether the value changed.
func (p *Patch) ParameterUp(s SynthParameter) bool { return p.params[s].Up() }

// ParameterDown reports whether the value changed.
func (p *Patch) ParameterDown(s SynthParameter) bool { return p.params[s].Down() }

func (p *Patch) ParameterString(s SynthParameter) string { return p.params[s].String() }

func (p *Patch) ParameterHelp(s SynthParameter) string { return p.params[s].Help }

func (p *Patch) IsParameterEditable(s SynthParameter) bool { return p.params[s].Editable() }

func (p *Patch) ParameterEditString(s SynthParameter) string { return p.params[s].EditString() }

func (p *Patch) SetParameterEditString(s SynthParameter, text string) bool {
	return p.params[s].SetEditString(text)
}

// SetMIDIParameter applies a controller value 0..127 to a percent parameter.
func (p *Patch) SetMIDIParameter(s SynthParameter, value uint8) bool {
	return p.params[s].SetMIDIValue(value)
}

func (p *Patch) Property(prop PatchProperty) string { return p.props[prop] }

// SetProperty stores text cut to the property's maximum length, in upper
// case where the property requires it.
func (p *Patch) SetProperty(prop PatchProperty, text string) {
	def := patchProperties[prop]
	if def.uppercase {
		text = cases.Upper(language.Und).String(text)
	}
	p.props[prop] = truncate(text, def.maxLength)
}

func (p *Patch) PropertyHelp(prop PatchProperty) string { return patchProperties[prop].help }

func (prop PatchProperty) String() string {
	if prop < 0 || int(prop) >= NumPatchProperties {
		return "Unknown"
	}
	return patchProperties[prop].name
}

// MaxLength is the number of characters the property holds.
func (prop PatchProperty) MaxLength() int { return patchProperties[prop].maxLength }

// Load replaces the patch with the values read from r, a flat YAML mapping of
// parameter names to integers and property names to strings. Missing entries
// keep their defaults. On error the patch is left at the defaults.
func (p *Patch) Load(r io.Reader) error {
	p.Reset()
	store, err := readStore(r)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPatchFormat, err)
	}
	version := 1
	if s, ok := store["Version"]; ok {
		if version, err = strconv.Atoi(s); err != nil {
			return fmt.Errorf("%w: version %q", ErrPatchFormat, s)
		}
	}
	for i := range p.params {
		s, ok := store[p.params[i].Name]
		if !ok {
			continue
		}
		v, err := strconv.Atoi(s)
		if err != nil {
			p.Reset()
			return fmt.Errorf("%w: %v: %q is not a number", ErrPatchFormat, p.params[i].Name, s)
		}
		p.params[i].Set(v)
	}
	for i := range p.props {
		if s, ok := store[patchProperties[i].name]; ok {
			p.SetProperty(PatchProperty(i), s)
		}
	}
	if version == 1 {
		p.migrateVersion1()
	}
	return nil
}

// migrateVersion1 folds the old fixed modulation into the values it used to
// offset and resets the LFO parameters introduced in version 2.
func (p *Patch) migrateVersion1() {
	p.params[VCFCutoffFrequency].Set(p.params[VCFCutoffFrequency].Get() - p.params[VCFModulationVolume].Get())
	p.params[LFOVCFFrequency].Reset()
	p.params[VCFModulationVolume].Reset()

	p.params[SynthVolume].Set(p.params[SynthVolume].Get() - p.params[VCAModulationVolume].Get())
	p.params[LFOVCAFrequency].Reset()
	p.params[VCAModulationVolume].Reset()
}

// Save writes the version tag, the properties and every parameter.
func (p *Patch) Save(w io.Writer) error {
	doc := &yaml.Node{Kind: yaml.MappingNode}
	add := func(key, value, tag string) {
		doc.Content = append(doc.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: key},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value})
	}
	add("Version", strconv.Itoa(PatchVersion), "!!int")
	for i, def := range patchProperties {
		add(def.name, p.props[i], "!!str")
	}
	for i := range p.params {
		add(p.params[i].Name, strconv.Itoa(p.params[i].Get()), "!!int")
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("cannot encode patch: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("cannot encode patch: %w", err)
	}
	return nil
}

// LoadPatchFile reads a patch from path. The returned patch is always usable:
// if the file is missing or corrupt it holds the defaults and the error says
// why.
func LoadPatchFile(path string) (*Patch, error) {
	p := NewPatch()
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return p, fmt.Errorf("%w: %v", ErrNoStorage, path)
	}
	if err != nil {
		return p, fmt.Errorf("cannot open patch: %w", err)
	}
	defer f.Close()
	if err := p.Load(f); err != nil {
		return p, fmt.Errorf("cannot load %v: %w", path, err)
	}
	return p, nil
}

func SavePatchFile(path string, p *Patch) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create patch file: %w", err)
	}
	if err := p.Save(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// readStore decodes a flat YAML mapping of scalars into strings.
func readStore(r io.Reader) (map[string]string, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty document")
		}
		return nil, err
	}
	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) == 1 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil, errors.New("expected a mapping")
	}
	store := make(map[string]string, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		if value.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("%v is not a scalar", key.Value)
		}
		store[key.Value] = value.Value
	}
	return store, nil
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
