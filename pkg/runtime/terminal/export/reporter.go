package export

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/soochnamitra/dash-core/pkg/models/api"
)

type TableConfig struct {
	LabelWidth  int
	ValueWidth  int
	MonthWidth  int
	YearWidth   int
	NumberWidth int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		LabelWidth:  24,
		ValueWidth:  20,
		MonthWidth:  10,
		YearWidth:   10,
		NumberWidth: 14,
	}
}

type Reporter struct {
	writer io.Writer
	config TableConfig
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{
		writer: writer,
		config: DefaultTableConfig(),
	}
}

func (c *Reporter) Handle(view *api.Dashboard) error {
	if view == nil {
		return fmt.Errorf("nothing to report")
	}

	funcMap := template.FuncMap{
		"kpiRow": func(label, value string) string {
			return fmt.Sprintf("| %-*s | %-*s |",
				c.config.LabelWidth, label,
				c.config.ValueWidth, value)
		},
		"kpiSeparator": func() string {
			return fmt.Sprintf("+%s+%s+",
				strings.Repeat("-", c.config.LabelWidth+2),
				strings.Repeat("-", c.config.ValueWidth+2))
		},
		"seriesRow": func(month, year string, expenditure float64, households, persondays int64) string {
			return fmt.Sprintf("| %-*s | %-*s | %*.2f | %*d | %*d |",
				c.config.MonthWidth, month,
				c.config.YearWidth, year,
				c.config.NumberWidth, expenditure,
				c.config.NumberWidth, households,
				c.config.NumberWidth, persondays)
		},
		"seriesHeader": func() string {
			return fmt.Sprintf("| %-*s | %-*s | %*s | %*s | %*s |",
				c.config.MonthWidth, "Month",
				c.config.YearWidth, "Fin. Year",
				c.config.NumberWidth, "Expenditure",
				c.config.NumberWidth, "Households",
				c.config.NumberWidth, "Persondays")
		},
		"seriesSeparator": func() string {
			return fmt.Sprintf("+%s+%s+%s+%s+%s+",
				strings.Repeat("-", c.config.MonthWidth+2),
				strings.Repeat("-", c.config.YearWidth+2),
				strings.Repeat("-", c.config.NumberWidth+2),
				strings.Repeat("-", c.config.NumberWidth+2),
				strings.Repeat("-", c.config.NumberWidth+2))
		},
	}

	tmpl := `
{{.District}}, {{.State}}

{{.Summary}}

{{kpiSeparator}}
{{range .KPIs}}{{kpiRow .Label.En .Value}}
{{end}}{{kpiSeparator}}

{{seriesSeparator}}
{{seriesHeader}}
{{seriesSeparator}}
{{range .Series}}{{seriesRow .Month .FinYear .Expenditure .Households .Persondays}}
{{end}}{{seriesSeparator}}

Last updated: {{.LastUpdated.Format "2006-01-02 15:04"}}{{if .FromCache}} (cached){{end}}
`

	t, err := template.New("dashboard").Funcs(funcMap).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, view)
}
