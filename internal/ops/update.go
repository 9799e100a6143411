package ops

import (
	"context"

	"github.com/burnerhq/burner/internal/daily"
	"github.com/burnerhq/burner/internal/records"
)

// UpdateInput contains parameters for the Update operation.
// Nil fields keep their stored values.
type UpdateInput struct {
	Date   string   // default: today
	Mass   *float64 // kilograms
	Energy *float64 // kilocalories
	Mood   *string  // mood name
}

// Update creates the day's record or merges the given values into it.
func Update(ctx context.Context, store *records.Store, input UpdateInput) (*daily.Daily, error) {
	date, err := ParseDate(input.Date, store.Location())
	if err != nil {
		return nil, err
	}
	mood, err := ParseMood(input.Mood)
	if err != nil {
		return nil, err
	}

	return store.UpdateOrCreate(ctx, records.UpdateInput{
		Date:   date,
		Mass:   input.Mass,
		Energy: input.Energy,
		Mood:   mood,
	})
}
