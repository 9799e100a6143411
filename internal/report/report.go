// Package report summarizes a month of daily records as Markdown.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/burnerhq/burner/internal/csvexport"
	"github.com/burnerhq/burner/internal/daily"
)

const (
	titleLayout = "January 2006"
	rowLayout   = "Mon, Jan 2"
	noValue     = "-"
)

// Summary aggregates the records of one month.
type Summary struct {
	Month         time.Time     `json:"-"`
	Entries       []daily.Daily `json:"entries"`
	Count         int           `json:"count"`
	AverageMass   *float64      `json:"average_mass,omitempty"`
	TotalEnergy   float64       `json:"total_energy"`
	AverageEnergy *float64      `json:"average_energy,omitempty"`
}

// Summarize computes averages over the days that have a value.
// entries must belong to month and be sorted by date.
func Summarize(month time.Time, entries []daily.Daily) *Summary {
	s := &Summary{Month: month, Entries: entries, Count: len(entries)}

	var massSum float64
	var massDays, energyDays int
	for _, d := range entries {
		if d.Mass != nil {
			massSum += *d.Mass
			massDays++
		}
		if d.Energy != nil {
			s.TotalEnergy += *d.Energy
			energyDays++
		}
	}
	if massDays > 0 {
		avg := massSum / float64(massDays)
		s.AverageMass = &avg
	}
	if energyDays > 0 {
		avg := s.TotalEnergy / float64(energyDays)
		s.AverageEnergy = &avg
	}
	return s
}

// Markdown renders the summary with values formatted by f.
func (s *Summary) Markdown(f csvexport.Formatter) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", s.Month.Format(titleLayout))
	fmt.Fprintf(&b, "- Entries: %d\n", s.Count)
	fmt.Fprintf(&b, "- Average mass: %s\n", orNone(s.AverageMass, f.FormatMass))
	fmt.Fprintf(&b, "- Total energy: %s\n", f.FormatEnergy(s.TotalEnergy))
	fmt.Fprintf(&b, "- Average energy: %s\n", orNone(s.AverageEnergy, f.FormatEnergy))

	if len(s.Entries) == 0 {
		b.WriteString("\nNo entries.\n")
		return b.String()
	}

	b.WriteString("\n| Date | Mass | Energy | Mood |\n")
	b.WriteString("| --- | --- | --- | --- |\n")
	for _, d := range s.Entries {
		mood := noValue
		if d.Mood != nil {
			mood = d.Mood.String()
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
			d.Date.Format(rowLayout),
			orNone(d.Mass, f.FormatMass),
			orNone(d.Energy, f.FormatEnergy),
			mood,
		)
	}
	return b.String()
}

func orNone(v *float64, format func(float64) string) string {
	if v == nil {
		return noValue
	}
	return format(*v)
}
