package ops

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/burnerhq/burner/internal/config"
	"github.com/burnerhq/burner/internal/csvexport"
	"github.com/burnerhq/burner/internal/daily"
	"github.com/burnerhq/burner/internal/errors"
	"github.com/burnerhq/burner/internal/records"
)

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	Path  string // optional, default: <exports dir>/burner-<timestamp>.csv
	Start string // optional; with End, limits the export to a date range
	End   string
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	Path       string `json:"path"`
	Count      int    `json:"count"`
	ExportedAt int64  `json:"exported_at"`
}

// Export writes records as CSV to a file. The file is replaced atomically,
// so an existing export survives a failed run.
func Export(ctx context.Context, store *records.Store, cfg *config.Config, input ExportInput) (*ExportOutput, error) {
	t := now()

	items, err := exportRecords(ctx, store, input)
	if err != nil {
		return nil, err
	}

	exportPath := input.Path
	if exportPath == "" {
		exportPath, err = defaultExportPath(cfg, t)
		if err != nil {
			return nil, err
		}
	}

	if err := ValidatePath(exportPath, PathCheckWrite, cfg); err != nil {
		return nil, err
	}

	select {
	case <-ctx.Done():
		return nil, errors.NewCancelled("export")
	default:
	}

	data := csvexport.ExporterFromConfig(cfg).Export(items)
	if err := WriteFileAtomic(exportPath, data); err != nil {
		return nil, err
	}

	return &ExportOutput{
		Path:       exportPath,
		Count:      len(items),
		ExportedAt: t.Unix(),
	}, nil
}

// RenderCSV returns the CSV document for the records Export would write,
// along with the number of rows.
func RenderCSV(ctx context.Context, store *records.Store, cfg *config.Config, input ExportInput) ([]byte, int, error) {
	items, err := exportRecords(ctx, store, input)
	if err != nil {
		return nil, 0, err
	}
	return csvexport.ExporterFromConfig(cfg).Export(items), len(items), nil
}

// exportRecords returns every record, or the range when Start is set.
func exportRecords(ctx context.Context, store *records.Store, input ExportInput) ([]daily.Daily, error) {
	if input.Start == "" && input.End == "" {
		return store.FetchAll(ctx)
	}
	start, err := parseRequiredDate("start", input.Start, store.Location())
	if err != nil {
		return nil, err
	}
	end, err := ParseDate(input.End, store.Location())
	if err != nil {
		return nil, err
	}
	return store.FetchRange(ctx, start, end)
}

// WriteFileAtomic writes data to a temp file next to path, fsyncs it and
// renames it into place. The destination must not be a symlink.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to create export directory: %w", err))
	}

	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := path + "." + hex.EncodeToString(randBytes) + ".tmp"
	file, err := openFileNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return errors.NewInternal(fmt.Errorf("failed to create export file: %w", err))
	}

	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	if _, err := file.Write(data); err != nil {
		return errors.NewInternal(err)
	}
	if err := file.Sync(); err != nil {
		return errors.NewInternal(err)
	}

	// Close before rename (required on Windows).
	if err := file.Close(); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to close export file: %w", err))
	}
	file = nil

	// os.Rename would follow a symlinked destination.
	if info, err := os.Lstat(path); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return errors.NewInvalidRequest("export path is a symlink")
	}

	// On Windows, os.Rename fails if the destination exists; the existing
	// file is kept rather than risking a non-atomic replace.
	if err := os.Rename(tempPath, path); err != nil {
		if runtime.GOOS == "windows" {
			if _, statErr := os.Stat(path); statErr == nil {
				return errors.NewInvalidRequest("export destination already exists; choose a new path or delete the existing file")
			}
		}
		return errors.NewInternal(fmt.Errorf("failed to finalize export: %w", err))
	}

	success = true
	return nil
}

// defaultExportPath returns <exports dir>/burner-<timestamp>.csv.
func defaultExportPath(cfg *config.Config, t time.Time) (string, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	dir, err := cfg.ExportsDir()
	if err != nil {
		return "", errors.NewInternal(err)
	}
	return filepath.Join(dir, "burner-"+t.Format("2006-01-02T150405")+".csv"), nil
}
