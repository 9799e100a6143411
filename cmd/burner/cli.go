package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/burnerhq/burner/internal/backup"
	"github.com/burnerhq/burner/internal/config"
	"github.com/burnerhq/burner/internal/daily"
	"github.com/burnerhq/burner/internal/errors"
	"github.com/burnerhq/burner/internal/mcp"
	"github.com/burnerhq/burner/internal/ops"
	"github.com/burnerhq/burner/internal/records"
	"github.com/burnerhq/burner/internal/web"
)

// shutdownGrace bounds how long serve waits for a running backup on exit.
const shutdownGrace = 10 * time.Second

// newCLIApp creates the CLI application with all commands.
func newCLIApp(store *records.Store, cfg *config.Config) *cli.App {
	app := &cli.App{
		Name:    "burner",
		Usage:   "Daily body mass and energy tracker",
		Version: Version,
		Commands: []*cli.Command{
			getCmd(store),
			rangeCmd(store),
			latestCmd(store),
			updateCmd(store),
			deleteCmd(store),
			deleteAllCmd(store),
			exportCmd(store, cfg),
			importHealthCmd(store, cfg),
			reportCmd(store, cfg),
			serveCmd(store, cfg),
			toolsCmd(cfg),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// getCmd creates the get command.
func getCmd(store *records.Store) *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Show the entry for a day",
		ArgsUsage: "[date]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "create", Aliases: []string{"c"}, Usage: "Create an empty entry if none exists"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Get(c.Context, store, ops.GetInput{
				Date:   c.Args().First(),
				Create: c.Bool("create"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// rangeCmd creates the range command.
func rangeCmd(store *records.Store) *cli.Command {
	return &cli.Command{
		Name:  "range",
		Usage: "List entries between two dates, inclusive",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "start", Aliases: []string{"s"}, Required: true, Usage: "First day (YYYY-MM-DD)"},
			&cli.StringFlag{Name: "end", Aliases: []string{"e"}, Usage: "Last day (YYYY-MM-DD, default: today)"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Range(c.Context, store, ops.RangeInput{
				Start: c.String("start"),
				End:   c.String("end"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// latestCmd creates the latest command.
func latestCmd(store *records.Store) *cli.Command {
	return &cli.Command{
		Name:  "latest",
		Usage: "Show the most recent entry",
		Action: func(c *cli.Context) error {
			output, err := ops.Latest(c.Context, store)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// updateCmd creates the update command.
func updateCmd(store *records.Store) *cli.Command {
	return &cli.Command{
		Name:      "update",
		Usage:     "Record values for a day (creates the entry if needed)",
		ArgsUsage: "[date]",
		Flags: []cli.Flag{
			&cli.Float64Flag{Name: "mass", Aliases: []string{"m"}, Usage: "Body mass in kg"},
			&cli.Float64Flag{Name: "energy", Aliases: []string{"e"}, Usage: "Energy intake in kcal"},
			&cli.StringFlag{Name: "mood", Usage: "Mood: " + strings.Join(daily.MoodNames(), "|")},
		},
		Action: func(c *cli.Context) error {
			input := ops.UpdateInput{Date: c.Args().First()}
			if c.IsSet("mass") {
				mass := c.Float64("mass")
				input.Mass = &mass
			}
			if c.IsSet("energy") {
				energy := c.Float64("energy")
				input.Energy = &energy
			}
			if c.IsSet("mood") {
				mood := c.String("mood")
				input.Mood = &mood
			}
			if input.Mass == nil && input.Energy == nil && input.Mood == nil {
				return outputError(errors.NewInvalidRequest("at least one of --mass, --energy or --mood is required"))
			}

			output, err := ops.Update(c.Context, store, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// deleteCmd creates the delete command.
func deleteCmd(store *records.Store) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete the entry for a day",
		ArgsUsage: "<date>",
		Action: func(c *cli.Context) error {
			output, err := ops.Delete(c.Context, store, ops.DeleteInput{Date: c.Args().First()})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// deleteAllCmd creates the delete-all command.
func deleteAllCmd(store *records.Store) *cli.Command {
	return &cli.Command{
		Name:  "delete-all",
		Usage: "Permanently delete every entry",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "confirm", Usage: "Required to actually delete"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.DeleteAll(c.Context, store, ops.DeleteAllInput{Confirm: c.Bool("confirm")})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// exportCmd creates the export command.
func exportCmd(store *records.Store, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Write entries to a CSV file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Output path (default: ~/.burner/exports/burner-<timestamp>.csv)"},
			&cli.StringFlag{Name: "start", Usage: "First day to include"},
			&cli.StringFlag{Name: "end", Usage: "Last day to include (default: today)"},
			&cli.BoolFlag{Name: "stdout", Usage: "Print the CSV instead of writing a file"},
		},
		Action: func(c *cli.Context) error {
			input := ops.ExportInput{
				Path:  c.String("path"),
				Start: c.String("start"),
				End:   c.String("end"),
			}

			if c.Bool("stdout") {
				data, _, err := ops.RenderCSV(c.Context, store, cfg, input)
				if err != nil {
					return outputError(err)
				}
				_, err = fmt.Fprintln(c.App.Writer, string(data))
				return err
			}

			output, err := ops.Export(c.Context, store, cfg, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// importHealthCmd creates the import-health command.
func importHealthCmd(store *records.Store, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "import-health",
		Usage: "Import mass and energy samples from a health-data JSON export",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Required: true, Usage: "Path to the .json export (.gz, .zst and .br compression accepted)"},
			&cli.StringFlag{Name: "since", Usage: "Ignore samples before this day"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.ImportHealth(c.Context, store, cfg, ops.ImportHealthInput{
				Path:  c.String("path"),
				Since: c.String("since"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// reportCmd creates the report command.
func reportCmd(store *records.Store, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "report",
		Usage:     "Summarize a month",
		ArgsUsage: "[YYYY-MM]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "Print the summary as JSON instead of markdown"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Report(c.Context, store, cfg, ops.ReportInput{Month: c.Args().First()})
			if err != nil {
				return outputError(err)
			}
			if c.Bool("json") {
				return outputJSON(c, output)
			}
			_, err = io.WriteString(c.App.Writer, output.Markdown)
			return err
		},
	}
}

// serveCmd creates the serve command: web UI plus scheduled backups.
func serveCmd(store *records.Store, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the web UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Address to bind"},
			&cli.IntFlag{Name: "port", Value: 8475, Usage: "Port to listen on"},
			&cli.BoolFlag{Name: "verbose", Usage: "Log debug messages"},
		},
		Action: func(c *cli.Context) error {
			logLevel := slog.LevelInfo
			if c.Bool("verbose") {
				logLevel = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

			ctx, cancel := context.WithCancel(c.Context)
			defer cancel()

			sched, err := backup.New(store, cfg, logger)
			if err != nil {
				return outputError(errors.NewInvalidRequest(err.Error()))
			}
			if sched != nil {
				sched.Start()
				defer func() {
					stopCtx, stop := context.WithTimeout(context.Background(), shutdownGrace)
					defer stop()
					sched.Stop(stopCtx)
				}()
			}

			srv, err := web.NewServer(ctx, store, cfg, logger, Version, c.String("bind"), c.Int("port"))
			if err != nil {
				return outputError(err)
			}
			return web.Run(ctx, srv, logger)
		},
	}
}

// toolsCmd lists MCP tool names and whether each is enabled.
func toolsCmd(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "tools",
		Usage: "List MCP tools",
		Action: func(c *cli.Context) error {
			disabled := make(map[string]bool)
			if cfg != nil {
				for _, name := range cfg.DisabledTools {
					disabled[name] = true
				}
			}
			type tool struct {
				Name    string `json:"name"`
				Enabled bool   `json:"enabled"`
			}
			names := mcp.AllToolNames()
			tools := make([]tool, 0, len(names))
			for _, name := range names {
				tools = append(tools, tool{Name: name, Enabled: !disabled[name]})
			}
			return outputJSON(c, map[string]any{"tools": tools})
		},
	}
}

// Helper functions

// outputJSON marshals result to the app's writer as JSON.
func outputJSON(c *cli.Context, v any) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	bErr := errors.As(err)
	if bErr.Code == errors.ErrInternal {
		return cli.Exit(err.Error(), 1)
	}
	return cli.Exit(fmt.Sprintf("[%s] %s", bErr.Code, bErr.Message), 1)
}
