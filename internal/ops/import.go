package ops

import (
	"context"
	"time"

	"github.com/burnerhq/burner/internal/config"
	"github.com/burnerhq/burner/internal/health"
	"github.com/burnerhq/burner/internal/records"
)

// ImportHealthInput contains parameters for the ImportHealth operation.
type ImportHealthInput struct {
	Path  string // required, .json raw sample export
	Since string // optional YYYY-MM-DD; earlier samples are ignored
}

// ImportHealth reads a raw health-data export and upserts one record per day.
func ImportHealth(ctx context.Context, store *records.Store, cfg *config.Config, input ImportHealthInput) (*records.ImportResult, error) {
	if err := ValidatePath(input.Path, PathCheckRead, cfg); err != nil {
		return nil, err
	}

	var since time.Time
	if input.Since != "" {
		var err error
		since, err = ParseDate(input.Since, store.Location())
		if err != nil {
			return nil, err
		}
	}

	return ImportFrom(ctx, store, &health.FileSource{
		Path:     input.Path,
		Location: store.Location(),
		Since:    since,
		Open:     openFileNoFollowRead,
	})
}

// ImportFrom upserts the samples supplied by src.
func ImportFrom(ctx context.Context, store *records.Store, src health.Source) (*records.ImportResult, error) {
	samples, err := src.Samples(ctx)
	if err != nil {
		return nil, err
	}
	return store.Import(ctx, samples)
}
