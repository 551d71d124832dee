// Copyright 2025 Poiesic Systems
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
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "memosync_db"
	}
	return filepath.Join(home, ".memosync", "db")
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "memosync",
		Usage: "Capture memories locally and sync them to a server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "warn",
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to BadgerDB database directory",
				Value:   defaultDBPath(),
				EnvVars: []string{"MEMOSYNC_DB"},
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML preferences file",
				EnvVars: []string{"MEMOSYNC_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Path to a .env file with MEMOSYNC_* variables",
				Value: ".env",
			},
			&cli.StringFlag{
				Name:  "network",
				Usage: "Current connectivity (wifi, metered, offline)",
				Value: "wifi",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Create a memory",
				ArgsUsage: "<content>",
				Action:    addCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "title",
						Aliases: []string{"t"},
						Usage:   "Title (generated from the content when omitted)",
					},
				},
			},
			{
				Name:   "list",
				Usage:  "List memories, newest first",
				Action: listCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum number of memories to show (0 for all)",
						Value:   20,
					},
				},
			},
			{
				Name:      "show",
				Usage:     "Show one memory",
				ArgsUsage: "<id>",
				Action:    showCommand,
			},
			{
				Name:      "search",
				Usage:     "Search titles and contents",
				ArgsUsage: "<query>",
				Action:    searchCommand,
			},
			{
				Name:      "rm",
				Usage:     "Delete a memory",
				ArgsUsage: "<id>",
				Action:    rmCommand,
			},
			{
				Name:   "pending",
				Usage:  "List memories waiting for upload, oldest first",
				Action: pendingCommand,
			},
			{
				Name:   "sync",
				Usage:  "Upload pending memories",
				Action: syncCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "force",
						Aliases: []string{"f"},
						Usage:   "Attempt memories still waiting out their back-off",
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N memories",
						Value: 10,
					},
				},
			},
			{
				Name:      "retry",
				Usage:     "Upload one memory now, ignoring back-off and the retry cap",
				ArgsUsage: "<id>",
				Action:    retryCommand,
			},
			{
				Name:   "stats",
				Usage:  "Show memory and sync statistics",
				Action: statsCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print statistics as JSON",
					},
				},
			},
			{
				Name:   "daemon",
				Usage:  "Sync in the background until interrupted",
				Action: daemonCommand,
			},
		},
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
