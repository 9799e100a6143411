package ops

import (
	"context"

	"github.com/burnerhq/burner/internal/daily"
	"github.com/burnerhq/burner/internal/records"
)

// RangeInput contains parameters for the Range operation.
type RangeInput struct {
	Start string // required
	End   string // default: today
}

// RangeOutput contains the result of the Range operation.
type RangeOutput struct {
	Items []daily.Daily `json:"items"`
	Count int           `json:"count"`
}

// Range lists records between two dates, inclusive, ascending by date.
func Range(ctx context.Context, store *records.Store, input RangeInput) (*RangeOutput, error) {
	start, err := parseRequiredDate("start", input.Start, store.Location())
	if err != nil {
		return nil, err
	}
	end, err := ParseDate(input.End, store.Location())
	if err != nil {
		return nil, err
	}

	items, err := store.FetchRange(ctx, start, end)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []daily.Daily{}
	}

	return &RangeOutput{
		Items: items,
		Count: len(items),
	}, nil
}
