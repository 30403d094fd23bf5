package minisynth

import (
	"fmt"
	"io"
	"text/template"

	"github.com/Masterminds/sprig"
)

type (
	sheetRow struct {
		Name  string
		Value string
		Help  string
	}

	sheetSection struct {
		Title string
		Rows  []sheetRow
	}
)

// patch parameters grouped as on the front panel; each entry is the first
// parameter after the section
var sheetSections = []struct {
	title string
	end   SynthParameter
}{
	{"vco", LFOVCFWaveform},
	{"vcf", LFOVCAWaveform},
	{"vca", ReverbDecay},
	{"reverb", SynthVolume},
	{"synth", SynthVolume + 1},
}

const sheetTemplate = `{{ .Name | default "UNNAMED" }} by {{ .Author | default "unknown" }}
{{- with .Comment }}
{{ . | wrap 60 }}
{{- end }}
{{ range .Sections }}
[{{ .Title | upper }}]
{{- range .Rows }}
  {{ .Name | printf "%-20s" }} {{ .Value | printf "%-12s" }} {{ .Help | lower }}
{{- end }}
{{ end -}}
`

var sheet = template.Must(template.New("sheet").Funcs(sprig.TxtFuncMap()).Parse(sheetTemplate))

// PatchSheet writes a readable listing of every parameter of p.
func PatchSheet(w io.Writer, p *Patch) error {
	data := struct {
		Name, Author, Comment string
		Sections              []sheetSection
	}{
		Name:    p.Property(PatchName),
		Author:  p.Property(PatchAuthor),
		Comment: p.Property(PatchComment),
	}
	start := SynthParameter(0)
	for _, s := range sheetSections {
		section := sheetSection{Title: s.title}
		for i := start; i < s.end; i++ {
			section.Rows = append(section.Rows, sheetRow{
				Name:  i.String(),
				Value: p.ParameterString(i),
				Help:  p.ParameterHelp(i),
			})
		}
		data.Sections = append(data.Sections, section)
		start = s.end
	}
	if err := sheet.Execute(w, data); err != nil {
		return fmt.Errorf("cannot render patch sheet: %w", err)
	}
	return nil
}
