package ops

import (
	"context"

	"github.com/burnerhq/burner/internal/daily"
	"github.com/burnerhq/burner/internal/records"
)

// LatestOutput contains the result of the Latest operation.
type LatestOutput struct {
	Item *daily.Daily `json:"item"` // nil if the store is empty
}

// Latest retrieves the most recent record by date.
func Latest(ctx context.Context, store *records.Store) (*LatestOutput, error) {
	d, err := store.FetchLatest(ctx)
	if err != nil {
		return nil, err
	}
	return &LatestOutput{Item: d}, nil
}
