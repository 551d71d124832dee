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
	"bufio"
	"context"
	"flag"
	"iter"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/memosync"
	"github.com/poiesic/memosync/core"
)

var sampleNotes = []string{
	"Buy milk, eggs and a loaf of rye on the way home.",
	"Call the dentist to move Friday's appointment.",
	"Renew the passport before the trip in September.",
	"Idea: a tiny app that reminds me to water the fern.",
	"Parked on level 3, row F, next to the elevator.",
	"Return the library books by Thursday.",
	"The wifi password at the cabin is on the fridge.",
	"Ask Sam about the recipe for the lemon cake.",
	"Book club picks next month's title on the 12th.",
	"Oil change due at 45,000 km.",
	"Gift idea for mom: the blue scarf from the market.",
	"Remember to back up the photos from the hiking trip.",
	"The plumber said the water heater has about two years left.",
	"Try the ramen place on Elm Street that opened last week.",
	"Cancel the streaming subscription before the 30th.",
	"Garden: plant the garlic after the first frost.",
	"Meeting notes: ship the beta once the sync bug is fixed.",
	"Jot down the name of that song from the café.",
	"Bike tire needs a new inner tube.",
	"Check whether the insurance covers the new glasses.",
}

var (
	dbPath       = flag.String("db", "./memosync_db", "database directory")
	seedFileName = flag.String("src", "", "file with one memory per line")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

// linesFromFile returns an iterator over lines in a file.
func linesFromFile(filename string) (iter.Seq[string], error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	return func(yield func(string) bool) {
		defer f.Close()
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			if !yield(scanner.Text()) {
				return
			}
		}
	}, nil
}

func main() {
	db, err := memosync.NewDatabase(*dbPath)
	if err != nil {
		panic(err)
	}
	defer db.Close()

	create, err := db.NewCreateMemoryUseCase()
	if err != nil {
		panic(err)
	}

	source := func(yield func(string) bool) {
		for _, note := range sampleNotes {
			if !yield(note) {
				return
			}
		}
	}
	if *seedFileName != "" {
		if source, err = linesFromFile(*seedFileName); err != nil {
			panic(err)
		}
	}

	ctx := context.Background()
	created := 0
	for line := range source {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if _, err := create.Execute(ctx, core.CreateRequest{Content: line}); err != nil {
			slog.Warn("skipping line", "err", err)
			continue
		}
		created++
	}
	slog.Info("seeding finished", "created", created)
}
