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
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/poiesic/memosync"
	"github.com/poiesic/memosync/core"
	"github.com/poiesic/memosync/prefs"
	"github.com/poiesic/memosync/syncer"
	"github.com/urfave/cli/v2"
)

const previewLength = 60

func openDatabase(c *cli.Context) (*memosync.Database, error) {
	p, err := prefs.Load(c.String("config"), c.String("env-file"))
	if err != nil {
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}
	db, err := memosync.NewDatabase(c.String("db"), memosync.WithPreferences(p))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func networkStatus(c *cli.Context) (prefs.NetworkStatus, error) {
	return prefs.ParseNetworkStatus(c.String("network"))
}

func parseID(c *cli.Context) (core.ID, error) {
	if c.NArg() != 1 {
		return 0, fmt.Errorf("expected exactly one memory id")
	}
	n, err := strconv.ParseUint(c.Args().First(), 10, 64)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("invalid memory id %q", c.Args().First())
	}
	return core.ID(n), nil
}

func printList(w io.Writer, records []*core.MemoryRecord) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No memories.")
		return
	}
	for _, rec := range records {
		label := rec.Title
		if label == "" {
			label = rec.Preview(previewLength)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", rec.Id, rec.CreatedAt.Local().Format("2006-01-02 15:04"), rec.State(), label)
	}
}

func addCommand(c *cli.Context) error {
	content := strings.Join(c.Args().Slice(), " ")

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	uc, err := db.NewCreateMemoryUseCase()
	if err != nil {
		return err
	}
	rec, err := uc.Execute(c.Context, core.CreateRequest{Title: c.String("title"), Content: content})
	if err != nil {
		return fmt.Errorf("failed to create memory: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "Created memory %d: %s\n", rec.Id, rec.Title)
	return nil
}

func listCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	uc, err := db.NewGetMemoriesUseCase()
	if err != nil {
		return err
	}

	var records []*core.MemoryRecord
	if limit := c.Int("limit"); limit > 0 {
		records, err = uc.Recent(c.Context, limit)
	} else {
		records, err = uc.All(c.Context)
	}
	if err != nil {
		return err
	}
	printList(c.App.Writer, records)
	return nil
}

func showCommand(c *cli.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	uc, err := db.NewGetMemoriesUseCase()
	if err != nil {
		return err
	}
	rec, err := uc.Get(c.Context, id)
	if err != nil {
		return err
	}

	w := c.App.Writer
	fmt.Fprintf(w, "ID:        %d\n", rec.Id)
	fmt.Fprintf(w, "Title:     %s\n", rec.Title)
	fmt.Fprintf(w, "Created:   %s\n", rec.CreatedAt.Local().Format(time.RFC3339))
	fmt.Fprintf(w, "State:     %s\n", rec.State())
	if !rec.LastAttemptAt.IsZero() {
		fmt.Fprintf(w, "Attempted: %s\n", rec.LastAttemptAt.Local().Format(time.RFC3339))
	}
	if rec.RemoteID != "" {
		fmt.Fprintf(w, "Remote ID: %s\n", rec.RemoteID)
	}
	fmt.Fprintf(w, "Words:     %d\n", rec.WordCount())
	fmt.Fprintf(w, "\n%s\n", rec.Content)
	return nil
}

func searchCommand(c *cli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	uc, err := db.NewGetMemoriesUseCase()
	if err != nil {
		return err
	}
	records, err := uc.Search(c.Context, query)
	if err != nil {
		return err
	}
	printList(c.App.Writer, records)
	return nil
}

func rmCommand(c *cli.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	uc, err := db.NewDeleteMemoryUseCase()
	if err != nil {
		return err
	}
	if err := uc.Execute(c.Context, id); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Deleted memory %d\n", id)
	return nil
}

func pendingCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	uc, err := db.NewGetMemoriesUseCase()
	if err != nil {
		return err
	}
	records, err := uc.Pending(c.Context)
	if err != nil {
		return err
	}
	printList(c.App.Writer, records)
	return nil
}

func syncCommand(c *cli.Context) error {
	network, err := networkStatus(c)
	if err != nil {
		return err
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	uc, err := db.NewSyncMemoriesUseCase()
	if err != nil {
		return err
	}
	report, err := uc.Execute(c.Context, network, syncer.RunOptions{
		Force:          c.Bool("force"),
		Progress:       c.App.ErrWriter,
		ReportInterval: c.Int("report-interval"),
	})
	if report != nil {
		printReport(c.App.Writer, report)
	}
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	return nil
}

func printReport(w io.Writer, r *syncer.Report) {
	fmt.Fprintf(w, "Uploaded %d of %d pending memories (%d failed, %d waiting to retry, %d at retry limit)\n",
		r.Uploaded, r.Pending, r.Failed, r.Deferred, len(r.Exhausted))
	for _, f := range r.Failures {
		kind := "transient"
		if f.Permanent {
			kind = "rejected"
		}
		fmt.Fprintf(w, "  memory %d: %s: %v\n", f.ID, kind, f.Err)
	}
}

func retryCommand(c *cli.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	network, err := networkStatus(c)
	if err != nil {
		return err
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	uc, err := db.NewSyncMemoriesUseCase()
	if err != nil {
		return err
	}
	rec, err := uc.Retry(c.Context, network, id)
	if err != nil {
		return fmt.Errorf("retry failed: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "Uploaded memory %d (remote id %s)\n", rec.Id, rec.RemoteID)
	return nil
}

func statsCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	stats, err := db.Repository().Stats(c.Context)
	if err != nil {
		return err
	}

	w := c.App.Writer
	if c.Bool("json") {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}
	fmt.Fprintf(w, "Total:     %d\n", stats.Total)
	fmt.Fprintf(w, "Uploaded:  %d\n", stats.Uploaded)
	fmt.Fprintf(w, "Pending:   %d\n", stats.Pending)
	fmt.Fprintf(w, "Exhausted: %d\n", stats.Exhausted)
	return nil
}

func daemonCommand(c *cli.Context) error {
	network, err := networkStatus(c)
	if err != nil {
		return err
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	sched, err := db.NewScheduler(func() prefs.NetworkStatus { return network },
		syncer.WithReportHook(func(r *syncer.Report, err error) {
			if r != nil && r.Attempted > 0 {
				slog.Info("sync pass", "uploaded", r.Uploaded, "failed", r.Failed, "pending", r.Pending)
			}
		}),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("sync daemon started", "interval", db.Preferences().SyncInterval, "network", network)
	if err := sched.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	slog.Info("sync daemon stopped")
	return nil
}
