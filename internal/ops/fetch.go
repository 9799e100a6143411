package ops

import (
	"context"

	"github.com/burnerhq/burner/internal/daily"
	"github.com/burnerhq/burner/internal/records"
)

// GetInput contains parameters for the Get operation.
type GetInput struct {
	Date   string // YYYY-MM-DD, "today" or "yesterday"; default today
	Create bool   // persist an empty record if none exists
}

// Get returns the record for a day. Without Create a missing day is NOT_FOUND.
func Get(ctx context.Context, store *records.Store, input GetInput) (*daily.Daily, error) {
	date, err := ParseDate(input.Date, store.Location())
	if err != nil {
		return nil, err
	}
	if input.Create {
		return store.FetchOrCreate(ctx, date)
	}
	return store.Fetch(ctx, date)
}
