package ops

import (
	"context"

	"github.com/burnerhq/burner/internal/daily"
	"github.com/burnerhq/burner/internal/records"
)

// DeleteInput contains parameters for the Delete operation.
type DeleteInput struct {
	Date string // required
}

// DeleteOutput contains the result of the Delete operation.
type DeleteOutput struct {
	Deleted bool   `json:"deleted"`
	Date    string `json:"date"`
	ID      string `json:"id"`
}

// Delete removes a single day's record.
func Delete(ctx context.Context, store *records.Store, input DeleteInput) (*DeleteOutput, error) {
	date, err := parseRequiredDate("date", input.Date, store.Location())
	if err != nil {
		return nil, err
	}

	d, err := store.Delete(ctx, date)
	if err != nil {
		return nil, err
	}

	return &DeleteOutput{
		Deleted: true,
		Date:    date.Format(daily.DayLayout),
		ID:      d.ID,
	}, nil
}
