package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/burnerhq/burner/internal/config"
	"github.com/burnerhq/burner/internal/errors"
	"github.com/burnerhq/burner/internal/ops"
	"github.com/burnerhq/burner/internal/records"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	store *records.Store
	cfg   *config.Config
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(store *records.Store, cfg *config.Config) *Handlers {
	return &Handlers{store: store, cfg: cfg}
}

// GetRequest represents the arguments for daily_get.
type GetRequest struct {
	Date   string `json:"date,omitempty"`
	Create bool   `json:"create,omitempty"`
}

// RangeRequest represents the arguments for daily_range.
type RangeRequest struct {
	Start string `json:"start"`
	End   string `json:"end,omitempty"`
}

// UpdateRequest represents the arguments for daily_update.
type UpdateRequest struct {
	Date   string   `json:"date,omitempty"`
	Mass   *float64 `json:"mass,omitempty"`
	Energy *float64 `json:"energy,omitempty"`
	Mood   *string  `json:"mood,omitempty"`
}

// DeleteRequest represents the arguments for daily_delete.
type DeleteRequest struct {
	Date string `json:"date"`
}

// DeleteAllRequest represents the arguments for daily_delete_all.
type DeleteAllRequest struct {
	Confirm bool `json:"confirm"`
}

// ExportRequest represents the arguments for daily_export.
type ExportRequest struct {
	Path  string `json:"path,omitempty"`
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// ImportHealthRequest represents the arguments for daily_import_health.
type ImportHealthRequest struct {
	Path  string `json:"path"`
	Since string `json:"since,omitempty"`
}

// ReportRequest represents the arguments for daily_report.
type ReportRequest struct {
	Month string `json:"month,omitempty"`
}

// HandleGet handles the daily_get tool call.
func (h *Handlers) HandleGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[GetRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Get(ctx, h.store, ops.GetInput{
		Date:   input.Date,
		Create: input.Create,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleRange handles the daily_range tool call.
func (h *Handlers) HandleRange(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RangeRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Range(ctx, h.store, ops.RangeInput{
		Start: input.Start,
		End:   input.End,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleLatest handles the daily_latest tool call.
func (h *Handlers) HandleLatest(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.Latest(ctx, h.store)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleUpdate handles the daily_update tool call.
func (h *Handlers) HandleUpdate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[UpdateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Update(ctx, h.store, ops.UpdateInput{
		Date:   input.Date,
		Mass:   input.Mass,
		Energy: input.Energy,
		Mood:   input.Mood,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleDelete handles the daily_delete tool call.
func (h *Handlers) HandleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DeleteRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Delete(ctx, h.store, ops.DeleteInput{Date: input.Date})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleDeleteAll handles the daily_delete_all tool call.
func (h *Handlers) HandleDeleteAll(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DeleteAllRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.DeleteAll(ctx, h.store, ops.DeleteAllInput{Confirm: input.Confirm})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleExport handles the daily_export tool call.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Export(ctx, h.store, h.cfg, ops.ExportInput{
		Path:  input.Path,
		Start: input.Start,
		End:   input.End,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleImportHealth handles the daily_import_health tool call.
func (h *Handlers) HandleImportHealth(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ImportHealthRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.ImportHealth(ctx, h.store, h.cfg, ops.ImportHealthInput{
		Path:  input.Path,
		Since: input.Since,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleReport handles the daily_report tool call.
func (h *Handlers) HandleReport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ReportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Report(ctx, h.store, h.cfg, ops.ReportInput{Month: input.Month})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// errorResult creates an MCP error result with IsError set. INTERNAL
// errors carry a generic message and no details.
func errorResult(err error) *mcp.CallToolResult {
	bErr := errors.As(err)

	errorObj := map[string]any{
		"code":    bErr.Code,
		"message": bErr.Message,
		"status":  bErr.Status,
	}
	if bErr.Code == errors.ErrInternal {
		errorObj["message"] = "an internal error occurred"
	} else if bErr.Details != nil {
		errorObj["details"] = bErr.Details
	}

	content, _ := json.Marshal(map[string]any{"error": errorObj})
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
