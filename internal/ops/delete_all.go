package ops

import (
	"context"
	"fmt"

	"github.com/burnerhq/burner/internal/records"
)

// DeleteAllInput contains parameters for the DeleteAll operation.
type DeleteAllInput struct {
	Confirm bool // nothing is deleted unless true
}

// DeleteAllOutput contains the result of the DeleteAll operation.
type DeleteAllOutput struct {
	Deleted int    `json:"deleted"`
	Message string `json:"message"`
}

// DeleteAll permanently removes every record when confirmed.
func DeleteAll(ctx context.Context, store *records.Store, input DeleteAllInput) (*DeleteAllOutput, error) {
	count, err := store.DeleteAll(ctx, input.Confirm)
	if err != nil {
		return nil, err
	}

	return &DeleteAllOutput{
		Deleted: count,
		Message: formatDeleteAllMessage(count, input.Confirm),
	}, nil
}

// formatDeleteAllMessage creates a human-readable message for the result.
func formatDeleteAllMessage(count int, confirm bool) string {
	if !confirm {
		return "Nothing deleted: confirm is required"
	}
	if count == 0 {
		return "No entries to delete"
	}

	word := "entry"
	if count > 1 {
		word = "entries"
	}
	return fmt.Sprintf("Permanently deleted %d %s", count, word)
}
