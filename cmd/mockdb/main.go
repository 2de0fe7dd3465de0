// Copyright 2025 The OpenCohort Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/opencohort/mockdb"
	"github.com/opencohort/mockdb/config"
	"github.com/opencohort/mockdb/seed"
	"github.com/opencohort/mockdb/storage/badger"
)

func main() {
	app := &cli.App{
		Name:  "mockdb",
		Usage: "Embedded mock data layer for the OpenCohort platform",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML config file (environment overrides apply)",
			},
			&cli.StringFlag{
				Name:    "data-dir",
				Aliases: []string{"d"},
				Usage:   "Directory for the snapshot store (overrides config)",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "seed",
				Usage:  "Initialize the store, seeding it if no usable data exists",
				Action: seedCommand,
			},
			{
				Name:   "reset",
				Usage:  "Wipe the store and reseed it from scratch",
				Action: resetCommand,
			},
			{
				Name:   "stats",
				Usage:  "Print per-collection record counts",
				Action: statsCommand,
			},
			{
				Name:   "export",
				Usage:  "Write the current snapshot JSON to stdout",
				Action: exportCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// openDatabase builds the database from config plus flag overrides.
// Callers own the returned Close.
func openDatabase(c *cli.Context) (*mockdb.Database, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	dataDir := cfg.DataDir
	if dir := c.String("data-dir"); dir != "" {
		dataDir = dir
	}

	adapter, err := badger.Open(dataDir, cfg.InMemory)
	if err != nil {
		return nil, fmt.Errorf("open store at %s: %w", dataDir, err)
	}
	return mockdb.New(adapter, mockdb.WithSeeder(seed.Database)), nil
}

func seedCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Initialize(context.Background()); err != nil {
		return err
	}
	printStats(db)
	return nil
}

func resetCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.Initialize(ctx); err != nil {
		return err
	}
	if err := db.Reset(ctx); err != nil {
		return err
	}
	printStats(db)
	return nil
}

func statsCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Initialize(context.Background()); err != nil {
		return err
	}
	printStats(db)
	return nil
}

func exportCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Initialize(context.Background()); err != nil {
		return err
	}
	blob, err := db.Export()
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(blob)
	return err
}

func printStats(db *mockdb.Database) {
	stats := db.Stats()
	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(os.Stderr, "%-22s %d\n", name, stats[name])
	}
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
