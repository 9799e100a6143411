package records

import (
	"context"
	"fmt"
	"time"

	"github.com/burnerhq/burner/internal/daily"
	"github.com/burnerhq/burner/internal/db"
	"github.com/burnerhq/burner/internal/errors"
)

// Sample is one day of values supplied by a health-data source.
type Sample struct {
	Date   time.Time
	Mass   *float64 // kilograms
	Energy *float64 // kilocalories
}

// ImportResult summarizes an Import.
type ImportResult struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
	Skipped  int `json:"skipped"`
}

// Import upserts one record per sample in a single transaction and publishes
// one ChangeSet for the whole batch. Samples without any value are skipped.
// Sample dates must be unique after normalization.
func (s *Store) Import(ctx context.Context, samples []Sample) (*ImportResult, error) {
	seen := make(map[string]bool, len(samples))
	for _, sample := range samples {
		key := s.Normalize(sample.Date).Format(daily.DayLayout)
		if seen[key] {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("duplicate sample date %s", key))
		}
		seen[key] = true
		if err := validateValues(sample.Mass, sample.Energy, nil); err != nil {
			return nil, err
		}
	}

	result := &ImportResult{}
	if len(samples) == 0 {
		return result, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.NewStore("import", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var changes ChangeSet
	for _, sample := range samples {
		select {
		case <-ctx.Done():
			return nil, errors.NewCancelled("import")
		default:
		}

		if sample.Mass == nil && sample.Energy == nil {
			result.Skipped++
			continue
		}

		d, err := s.newDaily(s.Normalize(sample.Date))
		if err != nil {
			return nil, err
		}
		d.Mass, d.Energy = sample.Mass, sample.Energy

		stored, inserted, err := db.Upsert(ctx, tx, d)
		if err != nil {
			return nil, err
		}
		if inserted {
			result.Inserted++
			changes.Inserted = append(changes.Inserted, *stored)
		} else {
			result.Updated++
			changes.Updated = append(changes.Updated, *stored)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.NewStore("import", err)
	}

	s.broker.publish(changes)
	return result, nil
}
