package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_DefaultWhenMissing(t *testing.T) {
	tmpDir := t.TempDir()

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MassUnit != UnitKilogram {
		t.Fatalf("MassUnit = %q, want %q", cfg.MassUnit, UnitKilogram)
	}
	if cfg.MissingPlaceholder != "missing data" {
		t.Fatalf("MissingPlaceholder = %q, want %q", cfg.MissingPlaceholder, "missing data")
	}
	if cfg.MonthsBack() != DefaultCalendarMonthsBack {
		t.Fatalf("MonthsBack() = %d, want %d", cfg.MonthsBack(), DefaultCalendarMonthsBack)
	}
}

func TestLoad_OverridesFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	data := `{"mass_unit": "lb", "energy_unit": "kJ", "timezone": "UTC", "locale": "de"}`
	if err := os.WriteFile(configPath, []byte(data), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MassUnit != UnitPound {
		t.Errorf("MassUnit = %q, want %q", cfg.MassUnit, UnitPound)
	}
	if cfg.EnergyUnit != UnitKilojoule {
		t.Errorf("EnergyUnit = %q, want %q", cfg.EnergyUnit, UnitKilojoule)
	}
	if cfg.LanguageTag().String() != "de" {
		t.Errorf("LanguageTag = %q, want %q", cfg.LanguageTag().String(), "de")
	}
	// Unset fields keep defaults
	if cfg.CSVDateLayout != DefaultCSVDateLayout {
		t.Errorf("CSVDateLayout = %q, want default", cfg.CSVDateLayout)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	if err := os.WriteFile(configPath, []byte(`{not json}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if _, err := Load(tmpDir); err == nil {
		t.Fatalf("Load() expected error, got nil")
	}
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"mass unit", `{"mass_unit": "stone"}`},
		{"energy unit", `{"energy_unit": "cal"}`},
		{"timezone", `{"timezone": "Mars/Olympus_Mons"}`},
		{"locale", `{"locale": "not a locale!"}`},
		{"backup schedule", `{"backup_schedule": "every tuesday"}`},
		{"months back", `{"calendar_months_back": -1}`},
		{"months back too large", `{"calendar_months_back": 1201}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			if err := os.WriteFile(filepath.Join(tmpDir, "config.json"), []byte(tt.data), 0600); err != nil {
				t.Fatalf("WriteFile() error = %v", err)
			}
			if _, err := Load(tmpDir); err == nil {
				t.Fatalf("Load() expected error for %s", tt.data)
			}
		})
	}
}

func TestLoad_BackupSchedule(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, "config.json"), []byte(`{"backup_schedule": "0 3 * * *"}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BackupSchedule != "0 3 * * *" {
		t.Errorf("BackupSchedule = %q", cfg.BackupSchedule)
	}
}

func TestLoad_DisabledTools(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	if err := os.WriteFile(configPath, []byte(`{"disabled_tools": ["daily_delete_all", "daily_import_health"]}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(cfg.DisabledTools) != 2 {
		t.Fatalf("DisabledTools length = %d, want 2", len(cfg.DisabledTools))
	}
	if cfg.DisabledTools[0] != "daily_delete_all" {
		t.Errorf("DisabledTools[0] = %q, want %q", cfg.DisabledTools[0], "daily_delete_all")
	}
}

func TestLoad_CalendarMonthsBackZeroIsKept(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, "config.json"), []byte(`{"calendar_months_back": 0}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MonthsBack() != 0 {
		t.Fatalf("MonthsBack() = %d, want 0", cfg.MonthsBack())
	}

	merged := Merge(cfg, &Config{})
	if merged.MonthsBack() != 0 {
		t.Errorf("Merge with unset overlay: MonthsBack() = %d, want 0", merged.MonthsBack())
	}
}

func TestMerge(t *testing.T) {
	base := &Config{
		MassUnit:       UnitKilogram,
		DBMaxOpenConns: 4,
		AllowedPaths:   []string{"/a", " /b "},
		DisabledTools:  []string{"daily_export"},
	}
	overlay := &Config{
		MassUnit:         UnitPound,
		AllowUnsafePaths: true,
		AllowedPaths:     []string{"/b", "/c"},
	}

	got := Merge(base, overlay)

	if got.MassUnit != UnitPound {
		t.Errorf("MassUnit = %q, want overlay value", got.MassUnit)
	}
	if got.DBMaxOpenConns != 4 {
		t.Errorf("DBMaxOpenConns = %d, want base value 4", got.DBMaxOpenConns)
	}
	if !got.AllowUnsafePaths {
		t.Error("AllowUnsafePaths should be true")
	}
	want := []string{"/a", "/b", "/c"}
	if len(got.AllowedPaths) != len(want) {
		t.Fatalf("AllowedPaths = %v, want %v", got.AllowedPaths, want)
	}
	for i := range want {
		if got.AllowedPaths[i] != want[i] {
			t.Errorf("AllowedPaths[%d] = %q, want %q", i, got.AllowedPaths[i], want[i])
		}
	}
	if len(got.DisabledTools) != 1 {
		t.Errorf("DisabledTools = %v, want base value", got.DisabledTools)
	}
}

func TestMergeStringSlice_Empty(t *testing.T) {
	if got := mergeStringSlice(nil, []string{" ", ""}); got != nil {
		t.Errorf("mergeStringSlice = %v, want nil", got)
	}
}

func TestLocation(t *testing.T) {
	cfg := DefaultConfig()
	loc, err := cfg.Location()
	if err != nil {
		t.Fatalf("Location() error = %v", err)
	}
	if loc != time.Local {
		t.Errorf("Location() = %v, want time.Local", loc)
	}

	cfg.Timezone = "UTC"
	loc, err = cfg.Location()
	if err != nil {
		t.Fatalf("Location() error = %v", err)
	}
	if loc.String() != "UTC" {
		t.Errorf("Location() = %v, want UTC", loc)
	}
}

func TestExportsDir(t *testing.T) {
	tmpDir := t.TempDir()

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BaseDir != tmpDir {
		t.Fatalf("BaseDir = %q, want %q", cfg.BaseDir, tmpDir)
	}

	dir, err := cfg.ExportsDir()
	if err != nil {
		t.Fatalf("ExportsDir() error = %v", err)
	}
	if want := filepath.Join(tmpDir, "exports"); dir != want {
		t.Fatalf("ExportsDir() = %q, want %q", dir, want)
	}
}
