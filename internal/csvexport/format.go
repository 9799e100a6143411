package csvexport

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/burnerhq/burner/internal/config"
)

const (
	kilogramsPerPound   = 0.45359237
	kilojoulesPerKcal   = 4.184
	defaultMaxFractions = 1
)

// UnitFormatter converts stored kilograms and kilocalories to the configured
// display units and prints them with locale-aware digits and grouping.
type UnitFormatter struct {
	MassUnit     string
	EnergyUnit   string
	MaxFractions int

	printer *message.Printer
}

// NewUnitFormatter returns a formatter for the given locale and units.
// Unknown units fall back to kg and kcal.
func NewUnitFormatter(tag language.Tag, massUnit, energyUnit string) *UnitFormatter {
	if massUnit != config.UnitPound {
		massUnit = config.UnitKilogram
	}
	if energyUnit != config.UnitKilojoule {
		energyUnit = config.UnitKilocalorie
	}
	return &UnitFormatter{
		MassUnit:     massUnit,
		EnergyUnit:   energyUnit,
		MaxFractions: defaultMaxFractions,
		printer:      message.NewPrinter(tag),
	}
}

// FromConfig builds a UnitFormatter from the configured locale and units.
func FromConfig(cfg *config.Config) *UnitFormatter {
	return NewUnitFormatter(cfg.LanguageTag(), cfg.MassUnit, cfg.EnergyUnit)
}

// ExporterFromConfig builds an Exporter using the configured formatter,
// date layout and placeholder.
func ExporterFromConfig(cfg *config.Config) *Exporter {
	e := New(FromConfig(cfg))
	if cfg.CSVDateLayout != "" {
		e.DateLayout = cfg.CSVDateLayout
	}
	if cfg.MissingPlaceholder != "" {
		e.Missing = cfg.MissingPlaceholder
	}
	return e
}

// FormatMass renders kg in the display unit, e.g. "70.5 kg" or "155.4 lb".
func (f *UnitFormatter) FormatMass(kg float64) string {
	return f.format(ConvertMass(kg, f.MassUnit), f.MassUnit)
}

// FormatEnergy renders kcal in the display unit, e.g. "2,000 kcal".
func (f *UnitFormatter) FormatEnergy(kcal float64) string {
	return f.format(ConvertEnergy(kcal, f.EnergyUnit), f.EnergyUnit)
}

func (f *UnitFormatter) format(v float64, unit string) string {
	n := number.Decimal(v, number.MaxFractionDigits(f.MaxFractions))
	return fmt.Sprintf("%s %s", f.printer.Sprint(n), unit)
}

// ConvertMass converts kilograms to unit ("kg" or "lb").
func ConvertMass(kg float64, unit string) float64 {
	if unit == config.UnitPound {
		return kg / kilogramsPerPound
	}
	return kg
}

// ConvertEnergy converts kilocalories to unit ("kcal" or "kJ").
func ConvertEnergy(kcal float64, unit string) float64 {
	if unit == config.UnitKilojoule {
		return kcal * kilojoulesPerKcal
	}
	return kcal
}

// MassToKilograms converts a value in unit back to kilograms.
func MassToKilograms(v float64, unit string) float64 {
	if unit == config.UnitPound {
		return v * kilogramsPerPound
	}
	return v
}

// EnergyToKilocalories converts a value in unit back to kilocalories.
func EnergyToKilocalories(v float64, unit string) float64 {
	if unit == config.UnitKilojoule {
		return v / kilojoulesPerKcal
	}
	return v
}
