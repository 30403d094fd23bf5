package minisynth

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rsta2/minisynth/dsp"
)

type (
	// ParameterType tells how a parameter value is displayed and edited.
	ParameterType int

	// Parameter is a named integer setting with a range and a step. The value
	// is always within [Min, Max]; Up and Down move along the grid of values
	// Default + k*Step.
	Parameter struct {
		Name    string
		Type    ParameterType
		Min     int
		Max     int
		Step    int
		Default int
		Help    string
		value   int
	}
)

const (
	WaveformParameter ParameterType = iota
	FrequencyParameter
	FrequencyTenthParameter // value in 1/10 Hz
	TimeParameter           // value in ms
	PercentParameter
	MIDIChannelParameter // 0 is omni, 1..16 a channel
)

func (t ParameterType) String() string {
	switch t {
	case WaveformParameter:
		return "waveform"
	case FrequencyParameter:
		return "frequency"
	case FrequencyTenthParameter:
		return "frequency (tenths)"
	case TimeParameter:
		return "time"
	case PercentParameter:
		return "percent"
	case MIDIChannelParameter:
		return "MIDI channel"
	}
	return "unknown"
}

// MakeParameter returns a parameter holding its default value.
func MakeParameter(name string, typ ParameterType, min, max, step, def int, help string) Parameter {
	return Parameter{Name: name, Type: typ, Min: min, Max: max, Step: step, Default: def, Help: help, value: def}
}

func (p *Parameter) Get() int { return p.value }

// Set stores v clamped to [Min, Max].
func (p *Parameter) Set(v int) {
	p.value = clamp(v, p.Min, p.Max)
}

func (p *Parameter) Reset() { p.value = p.Default }

// Up moves to the next grid value above the current one. It returns false and
// leaves the value alone if that would exceed Max.
func (p *Parameter) Up() bool {
	v := p.Default + (floorDiv(p.value-p.Default, p.Step)+1)*p.Step
	if v > p.Max {
		return false
	}
	p.value = v
	return true
}

// Down moves to the next grid value below the current one. It returns false
// and leaves the value alone if that would go below Min.
func (p *Parameter) Down() bool {
	v := p.Default + (ceilDiv(p.value-p.Default, p.Step)-1)*p.Step
	if v < p.Min {
		return false
	}
	p.value = v
	return true
}

func (p *Parameter) String() string {
	switch p.Type {
	case WaveformParameter:
		return dsp.Waveform(p.value).String()
	case FrequencyParameter:
		return fmt.Sprintf("%d Hz", p.value)
	case FrequencyTenthParameter:
		return fmt.Sprintf("%d.%d Hz", p.value/10, p.value%10)
	case TimeParameter:
		return fmt.Sprintf("%d ms", p.value)
	case PercentParameter:
		return fmt.Sprintf("%d %%", p.value)
	case MIDIChannelParameter:
		if p.value == 0 {
			return "Omni Mode"
		}
		return strconv.Itoa(p.value)
	}
	return strconv.Itoa(p.value)
}

// Editable reports whether the parameter can be entered as text. Waveforms
// are only stepped through.
func (p *Parameter) Editable() bool {
	return p.Type != WaveformParameter
}

// EditString is the value as it is typed: a plain number, with one decimal
// for tenths of Hz.
func (p *Parameter) EditString() string {
	if p.Type == FrequencyTenthParameter {
		return fmt.Sprintf("%d.%d", p.value/10, p.value%10)
	}
	return strconv.Itoa(p.value)
}

// SetEditString parses s as typed by the user. Malformed input and values
// outside the range or off the step grid are rejected and the value is left
// as it was.
func (p *Parameter) SetEditString(s string) bool {
	s = strings.TrimSpace(s)
	var v int
	var ok bool
	switch p.Type {
	case FrequencyTenthParameter:
		v, ok = parseTenths(s)
	case WaveformParameter:
		var w dsp.Waveform
		if w, ok = dsp.WaveformByName(s); ok {
			v = int(w)
		} else {
			v, ok = parseDigits(s)
		}
	default:
		v, ok = parseDigits(s)
	}
	if !ok || v < p.Min || v > p.Max || (v-p.Default)%p.Step != 0 {
		return false
	}
	p.value = v
	return true
}

// SetMIDIValue maps a controller value 0..127 onto 0..100 percent, rounds to
// the step and clamps to the range. Only percent parameters take controllers.
func (p *Parameter) SetMIDIValue(value uint8) bool {
	if p.Type != PercentParameter || value > 127 {
		return false
	}
	v := (int(value)*100 + 63) / 127
	v = (v + p.Step/2) / p.Step * p.Step
	p.Set(v)
	return true
}

func parseDigits(s string) (int, bool) {
	if s == "" || len(s) > 6 {
		return 0, false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	v, err := strconv.Atoi(s)
	return v, err == nil
}

func parseTenths(s string) (int, bool) {
	whole, frac, found := strings.Cut(s, ".")
	w, ok := parseDigits(whole)
	if !ok {
		return 0, false
	}
	if !found {
		return w * 10, true
	}
	if len(frac) != 1 || frac[0] < '0' || frac[0] > '9' {
		return 0, false
	}
	return w*10 + int(frac[0]-'0'), true
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func ceilDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) == (b < 0) {
		q++
	}
	return q
}

func clamp(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
