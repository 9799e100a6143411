// Package csvexport renders daily records as "; "-separated text.
package csvexport

import (
	"strings"

	"github.com/burnerhq/burner/internal/daily"
)

const (
	Header    = "Date; Mass; Energy"
	Separator = "; "

	DefaultMissing    = "missing data"
	DefaultDateLayout = "Monday, January 2, 2006"
)

// Formatter renders stored values (kilograms, kilocalories) for display.
type Formatter interface {
	FormatMass(kg float64) string
	FormatEnergy(kcal float64) string
}

// Exporter renders records to CSV text.
type Exporter struct {
	Formatter  Formatter
	DateLayout string // Go time layout for the Date column
	Missing    string // written in place of an absent value
}

// New returns an Exporter with the default date layout and placeholder.
func New(f Formatter) *Exporter {
	return &Exporter{
		Formatter:  f,
		DateLayout: DefaultDateLayout,
		Missing:    DefaultMissing,
	}
}

// Export renders the header and one row per record, in the order given.
// Rows are joined by "\n" with no trailing newline.
func (e *Exporter) Export(records []daily.Daily) []byte {
	lines := make([]string, 0, len(records)+1)
	lines = append(lines, Header)
	for _, d := range records {
		lines = append(lines, e.Row(d))
	}
	return []byte(strings.Join(lines, "\n"))
}

// Row renders a single record without a line terminator.
func (e *Exporter) Row(d daily.Daily) string {
	layout := e.DateLayout
	if layout == "" {
		layout = DefaultDateLayout
	}

	mass, energy := e.missing(), e.missing()
	if d.Mass != nil {
		mass = e.Formatter.FormatMass(*d.Mass)
	}
	if d.Energy != nil {
		energy = e.Formatter.FormatEnergy(*d.Energy)
	}

	return strings.Join([]string{d.Date.Format(layout), mass, energy}, Separator)
}

func (e *Exporter) missing() string {
	if e.Missing == "" {
		return DefaultMissing
	}
	return e.Missing
}
