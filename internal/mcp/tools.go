package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/burnerhq/burner/internal/daily"
)

const dateDescription = `Calendar day as YYYY-MM-DD, or "today" / "yesterday".`

var getToolDef = mcp.NewTool("daily_get",
	mcp.WithDescription("Fetch the entry for one day. With create=true an empty entry is created if the day has none."),
	mcp.WithString("date", mcp.Description(dateDescription+" Defaults to today.")),
	mcp.WithBoolean("create", mcp.Description("Create an empty entry when none exists.")),
)

var rangeToolDef = mcp.NewTool("daily_range",
	mcp.WithDescription("List entries between two days, inclusive, oldest first."),
	mcp.WithString("start", mcp.Required(), mcp.Description(dateDescription)),
	mcp.WithString("end", mcp.Description(dateDescription+" Defaults to today.")),
)

var latestToolDef = mcp.NewTool("daily_latest",
	mcp.WithDescription("Return the most recent entry, or null when there are none."),
)

var updateToolDef = mcp.NewTool("daily_update",
	mcp.WithDescription("Create the day's entry or merge values into it. Omitted fields keep their stored values."),
	mcp.WithString("date", mcp.Description(dateDescription+" Defaults to today.")),
	mcp.WithNumber("mass", mcp.Description("Body mass in kilograms."), mcp.Min(0)),
	mcp.WithNumber("energy", mcp.Description("Dietary energy in kilocalories."), mcp.Min(0)),
	mcp.WithString("mood", mcp.Description("How the day felt."), mcp.Enum(daily.MoodNames()...)),
)

var deleteToolDef = mcp.NewTool("daily_delete",
	mcp.WithDescription("Delete the entry for one day."),
	mcp.WithString("date", mcp.Required(), mcp.Description(dateDescription)),
)

var deleteAllToolDef = mcp.NewTool("daily_delete_all",
	mcp.WithDescription("Permanently delete every entry. Does nothing unless confirm is true."),
	mcp.WithBoolean("confirm", mcp.Required(), mcp.Description("Must be true to delete.")),
)

var exportToolDef = mcp.NewTool("daily_export",
	mcp.WithDescription("Export entries to a CSV file (Date; Mass; Energy). Defaults to ~/.burner/exports/burner-<timestamp>.csv."),
	mcp.WithString("path", mcp.Description("Destination .csv path inside the exports dir or an allowed path.")),
	mcp.WithString("start", mcp.Description("Optional range start. "+dateDescription)),
	mcp.WithString("end", mcp.Description("Optional range end. "+dateDescription)),
)

var importHealthToolDef = mcp.NewTool("daily_import_health",
	mcp.WithDescription("Import a raw health-data export (.json with mass and energy samples, optionally .gz, .zst or .br compressed), one entry per day."),
	mcp.WithString("path", mcp.Required(), mcp.Description("Source .json, .json.gz, .json.zst or .json.br path inside the exports dir or an allowed path.")),
	mcp.WithString("since", mcp.Description("Ignore samples before this day. "+dateDescription)),
)

var reportToolDef = mcp.NewTool("daily_report",
	mcp.WithDescription("Summarize a month: entry count, average mass, total and average energy, as JSON and Markdown."),
	mcp.WithString("month", mcp.Description("Month as YYYY-MM. Defaults to the current month.")),
)
