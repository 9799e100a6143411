package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/text/language"
)

// Supported display units. Values are always stored in kg and kcal.
const (
	UnitKilogram    = "kg"
	UnitPound       = "lb"
	UnitKilocalorie = "kcal"
	UnitKilojoule   = "kJ"

	DefaultPlaceholder   = "missing data"
	DefaultCSVDateLayout = "Monday, January 2, 2006"

	DefaultCalendarMonthsBack = 12
	MaxCalendarMonthsBack     = 1200
)

// Config holds application configuration.
type Config struct {
	// Timezone is the IANA zone used to normalize dates to midnight.
	// Empty or "Local" uses the system zone.
	Timezone string `json:"timezone,omitempty"`

	// Locale is a BCP 47 tag used for number formatting in exports and reports.
	Locale string `json:"locale,omitempty"`

	// MassUnit is the display unit for mass: "kg" or "lb".
	MassUnit string `json:"mass_unit,omitempty"`

	// EnergyUnit is the display unit for energy: "kcal" or "kJ".
	EnergyUnit string `json:"energy_unit,omitempty"`

	// MissingPlaceholder is written in CSV cells that have no value.
	MissingPlaceholder string `json:"missing_placeholder,omitempty"`

	// CSVDateLayout is the Go time layout for the CSV date column.
	CSVDateLayout string `json:"csv_date_layout,omitempty"`

	// AllowedPaths is an allowlist of directories for export and import files.
	// Paths outside ~/.burner/exports require either being in this list or AllowUnsafePaths=true.
	AllowedPaths []string `json:"allowed_paths,omitempty"`

	// AllowUnsafePaths disables directory restrictions for export and import.
	AllowUnsafePaths bool `json:"allow_unsafe_paths,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// 0 means use sql.DB default (unlimited).
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	DisabledTools []string `json:"disabled_tools,omitempty"`

	// BackupSchedule is a cron spec for CSV snapshots written while serving.
	// Empty disables scheduled backups.
	BackupSchedule string `json:"backup_schedule,omitempty"`

	// CalendarMonthsBack is how many months before the current one the
	// web calendar keeps indexed. Nil means DefaultCalendarMonthsBack;
	// 0 indexes only the current and next month.
	CalendarMonthsBack *int `json:"calendar_months_back,omitempty"`

	// BaseDir is the directory the config was loaded from. Not persisted.
	BaseDir string `json:"-"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Timezone:           "Local",
		Locale:             "en",
		MassUnit:           UnitKilogram,
		EnergyUnit:         UnitKilocalorie,
		MissingPlaceholder: DefaultPlaceholder,
		CSVDateLayout:      DefaultCSVDateLayout,
		CalendarMonthsBack: intPtr(DefaultCalendarMonthsBack),
	}
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.burner.
func Load(baseDir string) (*Config, error) {
	cfg, err := loadFileRaw(filepath.Join(baseDir, "config.json"))
	if err != nil {
		return nil, err
	}
	merged := Merge(DefaultConfig(), cfg)
	merged.BaseDir = baseDir
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return merged, nil
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", configPath, err)
	}

	return cfg, nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{
		Timezone:           firstNonEmpty(overlay.Timezone, base.Timezone),
		Locale:             firstNonEmpty(overlay.Locale, base.Locale),
		MassUnit:           firstNonEmpty(overlay.MassUnit, base.MassUnit),
		EnergyUnit:         firstNonEmpty(overlay.EnergyUnit, base.EnergyUnit),
		MissingPlaceholder: firstNonEmpty(overlay.MissingPlaceholder, base.MissingPlaceholder),
		CSVDateLayout:      firstNonEmpty(overlay.CSVDateLayout, base.CSVDateLayout),
		BackupSchedule:     firstNonEmpty(overlay.BackupSchedule, base.BackupSchedule),
		BaseDir:            firstNonEmpty(overlay.BaseDir, base.BaseDir),
	}

	result.DBMaxOpenConns = overlay.DBMaxOpenConns
	if result.DBMaxOpenConns == 0 {
		result.DBMaxOpenConns = base.DBMaxOpenConns
	}

	result.DBMaxIdleConns = overlay.DBMaxIdleConns
	if result.DBMaxIdleConns == 0 {
		result.DBMaxIdleConns = base.DBMaxIdleConns
	}

	// Pointer so an explicit 0 is kept.
	result.CalendarMonthsBack = base.CalendarMonthsBack
	if overlay.CalendarMonthsBack != nil {
		result.CalendarMonthsBack = intPtr(*overlay.CalendarMonthsBack)
	}

	// Booleans: overlay wins if true, else base
	result.AllowUnsafePaths = base.AllowUnsafePaths || overlay.AllowUnsafePaths

	result.AllowedPaths = mergeStringSlice(base.AllowedPaths, overlay.AllowedPaths)
	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

// Validate checks that enumerated and parseable fields hold usable values.
func (c *Config) Validate() error {
	if c.MassUnit != UnitKilogram && c.MassUnit != UnitPound {
		return fmt.Errorf("mass_unit must be %q or %q, got %q", UnitKilogram, UnitPound, c.MassUnit)
	}
	if c.EnergyUnit != UnitKilocalorie && c.EnergyUnit != UnitKilojoule {
		return fmt.Errorf("energy_unit must be %q or %q, got %q", UnitKilocalorie, UnitKilojoule, c.EnergyUnit)
	}
	if _, err := language.Parse(c.Locale); err != nil {
		return fmt.Errorf("invalid locale %q: %w", c.Locale, err)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.BackupSchedule != "" {
		if _, err := cron.ParseStandard(c.BackupSchedule); err != nil {
			return fmt.Errorf("invalid backup_schedule %q: %w", c.BackupSchedule, err)
		}
	}
	if n := c.MonthsBack(); n < 0 || n > MaxCalendarMonthsBack {
		return fmt.Errorf("calendar_months_back must be between 0 and %d, got %d", MaxCalendarMonthsBack, n)
	}
	return nil
}

// MonthsBack returns CalendarMonthsBack, or DefaultCalendarMonthsBack when unset.
func (c *Config) MonthsBack() int {
	if c.CalendarMonthsBack == nil {
		return DefaultCalendarMonthsBack
	}
	return *c.CalendarMonthsBack
}

func intPtr(n int) *int { return &n }

// Location resolves Timezone to a *time.Location.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// ExportsDir returns BaseDir/exports, or ~/.burner/exports when BaseDir is unset.
func (c *Config) ExportsDir() (string, error) {
	base := c.BaseDir
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		base = filepath.Join(home, ".burner")
	}
	return filepath.Join(base, "exports"), nil
}

// LanguageTag resolves Locale, falling back to English.
func (c *Config) LanguageTag() language.Tag {
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return language.English
	}
	return tag
}

func firstNonEmpty(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return a
	}
	return b
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string{}, a...), b...) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
