// Package health converts raw health-platform samples into one
// (date, mass, energy) tuple per day for the record store.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/burnerhq/burner/internal/daily"
	"github.com/burnerhq/burner/internal/errors"
	"github.com/burnerhq/burner/internal/records"
)

// Source supplies per-day samples. Dates in the result are unique.
type Source interface {
	Samples(ctx context.Context) ([]records.Sample, error)
}

// MassSample is one body-mass measurement.
type MassSample struct {
	Start time.Time `json:"start"`
	Kg    float64   `json:"kg"`
}

// EnergySample is one dietary-energy measurement.
type EnergySample struct {
	Start time.Time `json:"start"`
	Kcal  float64   `json:"kcal"`
}

// Export is the document layout of a raw sample export.
type Export struct {
	Mass   []MassSample   `json:"mass"`
	Energy []EnergySample `json:"energy"`
}

// Parse decodes a raw sample export.
func Parse(r io.Reader) (*Export, error) {
	var exp Export
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&exp); err != nil {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("invalid health export: %v", err))
	}
	return &exp, nil
}

// Aggregate buckets samples by calendar day in loc. A day's mass is its
// latest measurement; its energy is the sum of its measurements. Samples
// before since are dropped (zero since keeps everything). The result is
// sorted by date.
func Aggregate(exp *Export, loc *time.Location, since time.Time) []records.Sample {
	type bucket struct {
		date       time.Time
		mass       *float64
		massAt     time.Time
		energy     float64
		haveEnergy bool
	}

	buckets := make(map[string]*bucket)
	get := func(t time.Time) *bucket {
		day := daily.Normalize(t, loc)
		key := day.Format(daily.DayLayout)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{date: day}
			buckets[key] = b
		}
		return b
	}
	keep := func(t time.Time) bool {
		return since.IsZero() || !t.Before(since)
	}

	for _, s := range exp.Mass {
		if !keep(s.Start) {
			continue
		}
		b := get(s.Start)
		if b.mass == nil || !s.Start.Before(b.massAt) {
			kg := s.Kg
			b.mass, b.massAt = &kg, s.Start
		}
	}
	for _, s := range exp.Energy {
		if !keep(s.Start) {
			continue
		}
		b := get(s.Start)
		b.energy += s.Kcal
		b.haveEnergy = true
	}

	out := make([]records.Sample, 0, len(buckets))
	for _, b := range buckets {
		sample := records.Sample{Date: b.date, Mass: b.mass}
		if b.haveEnergy {
			kcal := b.energy
			sample.Energy = &kcal
		}
		out = append(out, sample)
	}
	slices.SortFunc(out, func(a, b records.Sample) int {
		return a.Date.Compare(b.Date)
	})
	return out
}

// FileSource reads samples from a raw export file on disk. Files ending in
// .gz, .zst or .br are decompressed first.
type FileSource struct {
	Path     string
	Location *time.Location
	Since    time.Time

	// Open opens Path; nil means os.Open.
	Open func(path string) (io.ReadCloser, error)
}

// Samples parses the file and aggregates it per day.
func (s *FileSource) Samples(ctx context.Context) ([]records.Sample, error) {
	open := s.Open
	if open == nil {
		open = func(path string) (io.ReadCloser, error) { return os.Open(path) }
	}

	f, err := open(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewFileNotFound(s.Path)
		}
		return nil, err
	}
	r, err := decompress(s.Path, f)
	if err != nil {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("invalid compressed health export: %v", err))
	}
	defer r.Close()

	exp, err := Parse(r)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.NewCancelled("import_health")
	}
	return Aggregate(exp, s.Location, s.Since), nil
}
