package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mealcal/mealcal/internal/config"
	"github.com/mealcal/mealcal/internal/errors"
	"github.com/mealcal/mealcal/internal/logging"
	"github.com/mealcal/mealcal/internal/mcp"
	"github.com/mealcal/mealcal/internal/ops"
	"github.com/mealcal/mealcal/internal/scheduler"
	"github.com/mealcal/mealcal/internal/web"
)

const (
	defaultBind = "127.0.0.1"
	defaultPort = 8000

	schedulerStopTimeout = 5 * time.Second
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(db *sql.DB, cfg *config.Config) *cli.App {
	app := &cli.App{
		Name:    "mealcal",
		Usage:   "Weekly meal planning calendar",
		Version: Version,
		Commands: []*cli.Command{
			serveCmd(db, cfg),
			mcpCmd(db, cfg),
			listCmd(db),
			getCmd(db),
			createCmd(db),
			updateCmd(db),
			deleteCmd(db),
			copyCmd(db),
			moveCmd(db),
			swapCmd(db),
			searchCmd(db),
			summaryCmd(db),
			exportCmd(db, cfg),
			importCmd(db, cfg),
			purgeCmd(db),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// serveCmd runs the HTTP server and the purge scheduler until interrupted.
func serveCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the web UI and REST API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Aliases: []string{"b"}, Value: defaultBind, Usage: "Address to bind"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: defaultPort, Usage: "Port to listen on"},
		},
		Action: func(c *cli.Context) error {
			logger, err := logging.New(cfg.LogLevel)
			if err != nil {
				return outputError(errors.NewValidation(err.Error()))
			}
			defer logger.Sync() //nolint:errcheck

			h, err := web.NewHandlers(db, cfg, logger, Version)
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			sched, err := scheduler.New(db, cfg, logger)
			if err != nil {
				return outputError(errors.NewValidation(err.Error()))
			}

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := web.NewServer(h, c.String("bind"), c.Int("port"))
			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return web.Run(gctx, srv, logger)
			})
			g.Go(func() error {
				sched.Start()
				<-gctx.Done()
				stopCtx, cancel := context.WithTimeout(context.Background(), schedulerStopTimeout)
				defer cancel()
				return sched.Stop(stopCtx)
			})

			if err := g.Wait(); err != nil {
				logger.Error("server stopped", zap.Error(err))
				return cli.Exit(err.Error(), 1)
			}
			return nil
		},
	}
}

// mcpCmd runs the MCP server over stdio.
func mcpCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Run the MCP server on stdin/stdout",
		Action: func(c *cli.Context) error {
			if unknown := mcp.ValidateDisabledTools(cfg.DisabledTools); len(unknown) > 0 {
				fmt.Fprintf(c.App.ErrWriter, "warning: unknown disabled_tools: %s\n", strings.Join(unknown, ", "))
			}
			if err := mcp.Run(db, cfg, Version); err != nil {
				return cli.Exit(err.Error(), 1)
			}
			return nil
		},
	}
}

// listCmd creates the list command.
func listCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List meals in a date range",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "start", Aliases: []string{"s"}, Required: true, Usage: "First date (YYYY-MM-DD)"},
			&cli.StringFlag{Name: "end", Aliases: []string{"e"}, Required: true, Usage: "Last date, inclusive (YYYY-MM-DD)"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.List(c.Context, db, ops.ListInput{
				StartDate: c.String("start"),
				EndDate:   c.String("end"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(c, output)
		},
	}
}

// getCmd creates the get command.
func getCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Get a meal by ID",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			output, err := ops.Get(c.Context, db, ops.GetInput{ID: c.Args().First()})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(c, output)
		},
	}
}

// createCmd creates the create command.
func createCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "create",
		Usage: "Plan a meal in an empty slot",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "date", Aliases: []string{"d"}, Required: true, Usage: "Date (YYYY-MM-DD)"},
			&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Required: true, Usage: "Meal type: breakfast|lunch|dinner"},
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Required: true, Usage: "Meal name"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Create(c.Context, db, ops.CreateInput{
				Date:     c.String("date"),
				MealType: c.String("type"),
				Name:     c.String("name"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(c, output)
		},
	}
}

// updateCmd creates the update command.
func updateCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "update",
		Usage:     "Rename a meal or replace its ingredients",
		ArgsUsage: "[--name <name>] [--ingredients <a,b>] <id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "New name"},
			&cli.StringFlag{Name: "ingredients", Aliases: []string{"i"}, Usage: "Comma-separated ingredients (empty clears)"},
		},
		Action: func(c *cli.Context) error {
			input := ops.UpdateInput{ID: c.Args().First()}

			if c.IsSet("name") {
				name := c.String("name")
				input.Name = &name
			}
			if c.IsSet("ingredients") {
				ingredients := parseList(c.String("ingredients"))
				input.Ingredients = &ingredients
			}

			output, err := ops.Update(c.Context, db, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(c, output)
		},
	}
}

// deleteCmd creates the delete command.
func deleteCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete a meal, freeing its slot",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			output, err := ops.Delete(c.Context, db, ops.DeleteInput{ID: c.Args().First()})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(c, output)
		},
	}
}

// slotFlags are the target slot flags shared by copy and move.
func slotFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "date", Aliases: []string{"d"}, Required: true, Usage: "Target date (YYYY-MM-DD)"},
		&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Required: true, Usage: "Target meal type: breakfast|lunch|dinner"},
	}
}

// copyCmd creates the copy command.
func copyCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "copy",
		Usage:     "Copy a meal into an empty slot",
		ArgsUsage: "--date <date> --type <type> <id>",
		Flags:     slotFlags(),
		Action: func(c *cli.Context) error {
			output, err := ops.Copy(c.Context, db, ops.CopyInput{
				ID:             c.Args().First(),
				TargetDate:     c.String("date"),
				TargetMealType: c.String("type"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(c, output)
		},
	}
}

// moveCmd creates the move command.
func moveCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "move",
		Usage:     "Move a meal into an empty slot",
		ArgsUsage: "--date <date> --type <type> <id>",
		Flags:     slotFlags(),
		Action: func(c *cli.Context) error {
			output, err := ops.Move(c.Context, db, ops.MoveInput{
				ID:             c.Args().First(),
				TargetDate:     c.String("date"),
				TargetMealType: c.String("type"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(c, output)
		},
	}
}

// swapCmd creates the swap command.
func swapCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "swap",
		Usage:     "Exchange the slots of two meals",
		ArgsUsage: "<id1> <id2>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return outputError(errors.NewValidation("swap requires exactly two meal ids"))
			}

			output, err := ops.Swap(c.Context, db, ops.SwapInput{
				MealID1: c.Args().Get(0),
				MealID2: c.Args().Get(1),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(c, output.Meals)
		},
	}
}

// searchCmd creates the search command.
func searchCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Find meals that use an ingredient",
		ArgsUsage: "<ingredient>",
		Action: func(c *cli.Context) error {
			output, err := ops.Search(c.Context, db, ops.SearchInput{
				Ingredient: strings.Join(c.Args().Slice(), " "),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(c, output)
		},
	}
}

// summaryCmd creates the summary command.
func summaryCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "summary",
		Usage: "Print the meal plan and shopping list for a date range",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "start", Aliases: []string{"s"}, Required: true, Usage: "First date (YYYY-MM-DD)"},
			&cli.StringFlag{Name: "end", Aliases: []string{"e"}, Required: true, Usage: "Last date, inclusive (YYYY-MM-DD)"},
			&cli.BoolFlag{Name: "markdown", Aliases: []string{"m"}, Usage: "Print only the markdown document"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Summary(c.Context, db, ops.SummaryInput{
				StartDate: c.String("start"),
				EndDate:   c.String("end"),
			})
			if err != nil {
				return outputError(err)
			}

			if c.Bool("markdown") {
				_, err := io.WriteString(c.App.Writer, output.Markdown)
				return err
			}
			return outputJSON(c, output)
		},
	}
}

// exportCmd creates the export command.
func exportCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export meals to a JSONL file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Export file path (default: ~/.mealcal/exports/meals-<range>-<timestamp>.jsonl)"},
			&cli.StringFlag{Name: "start", Aliases: []string{"s"}, Usage: "First date (YYYY-MM-DD)"},
			&cli.StringFlag{Name: "end", Aliases: []string{"e"}, Usage: "Last date, inclusive (YYYY-MM-DD)"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Export(c.Context, db, cfg, ops.ExportInput{
				Path:      c.String("path"),
				StartDate: c.String("start"),
				EndDate:   c.String("end"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(c, output)
		},
	}
}

// importCmd creates the import command.
func importCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Import meals from a JSONL file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Required: true, Usage: "Import file path"},
			&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Value: "error", Usage: "Conflict mode: error|skip"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Import(c.Context, db, cfg, ops.ImportInput{
				Path: c.String("path"),
				Mode: ops.ImportMode(c.String("mode")),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(c, output)
		},
	}
}

// purgeCmd creates the purge command.
func purgeCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "purge",
		Usage: "Permanently remove deleted meals",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "older-than", Usage: "Only purge if deleted more than N days ago (e.g., 30d)"},
		},
		Action: func(c *cli.Context) error {
			input := ops.PurgeInput{}

			if olderThan := c.String("older-than"); olderThan != "" {
				days, err := parseDuration(olderThan)
				if err != nil {
					return outputError(errors.NewValidation(err.Error()))
				}
				input.OlderThanDays = &days
			}

			output, err := ops.Purge(c.Context, db, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(c, output)
		},
	}
}

// Helper functions

// outputJSON writes result to the app's writer as indented JSON.
func outputJSON(c *cli.Context, v any) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	mErr := errors.As(err)
	return cli.Exit(fmt.Sprintf("[%s] %s", mErr.Code, mErr.Message), 1)
}

// parseList splits a comma-separated string into trimmed, non-empty items.
// The result is never nil so an empty flag clears the list.
func parseList(s string) []string {
	items := make([]string, 0)
	for _, p := range strings.Split(s, ",") {
		if item := strings.TrimSpace(p); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// parseDuration parses "7d" format to days.
func parseDuration(s string) (int, error) {
	if numStr, ok := strings.CutSuffix(s, "d"); ok {
		days, err := strconv.Atoi(numStr)
		if err != nil {
			return 0, fmt.Errorf("invalid duration: %s", s)
		}
		if days < 0 {
			return 0, fmt.Errorf("duration must be non-negative")
		}
		return days, nil
	}
	return 0, fmt.Errorf("duration must end with 'd' (days), e.g., 7d")
}
