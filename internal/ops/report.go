package ops

import (
	"context"

	"github.com/burnerhq/burner/internal/config"
	"github.com/burnerhq/burner/internal/csvexport"
	"github.com/burnerhq/burner/internal/daily"
	"github.com/burnerhq/burner/internal/records"
	"github.com/burnerhq/burner/internal/report"
)

// ReportInput contains parameters for the Report operation.
type ReportInput struct {
	Month string // YYYY-MM, default: current month
}

// ReportOutput contains the result of the Report operation.
type ReportOutput struct {
	Month    string          `json:"month"`
	Summary  *report.Summary `json:"summary"`
	Markdown string          `json:"markdown"`
}

// Report summarizes one month of records.
func Report(ctx context.Context, store *records.Store, cfg *config.Config, input ReportInput) (*ReportOutput, error) {
	month, err := ParseMonth(input.Month, store.Location())
	if err != nil {
		return nil, err
	}

	first, last := daily.MonthBounds(month, store.Location())
	items, err := store.FetchRange(ctx, first, last)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []daily.Daily{}
	}

	summary := report.Summarize(first, items)
	return &ReportOutput{
		Month:    first.Format("2006-01"),
		Summary:  summary,
		Markdown: summary.Markdown(csvexport.FromConfig(cfg)),
	}, nil
}
