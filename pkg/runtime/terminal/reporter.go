package terminal

import (
	"fmt"
	"io"
	"os"
	"text/template"

	"github.com/soochnamitra/dash-core/pkg/models/domain"
	"github.com/soochnamitra/dash-core/pkg/services/locate"
)

// Reporter outputs location resolution outcomes to the console
type Reporter struct {
	writer io.Writer
}

// NewReporter creates a new console reporter
func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{writer: writer}
}

func (c *Reporter) Handle(detection *domain.GeoDetectionResult, outcome *locate.Outcome) error {
	tmpl := `
{{- if .Detection}}
Detected: {{.Detection.CandidateDistrict}}, {{.Detection.CandidateState}} ({{printf "%.4f" .Detection.RawLatitude}}, {{printf "%.4f" .Detection.RawLongitude}})
{{- end}}
{{- if .Outcome}}
{{- if .Outcome.StateMatched}}
Matched state: {{.Outcome.State}}
{{- if .Outcome.DistrictMatched}}
Matched district: {{.Outcome.District}}
{{- end}}
{{- end}}
{{- if .Outcome.Message}}
{{.Outcome.Message}}
{{- end}}
{{- end}}
`
	t, err := template.New("outcome").Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	data := struct {
		Detection *domain.GeoDetectionResult
		Outcome   *locate.Outcome
	}{detection, outcome}

	return t.Execute(c.writer, data)
}
