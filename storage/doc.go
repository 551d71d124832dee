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

// Package storage provides the storage abstraction layer for memosync.
//
// MemoryStore decouples the synchronization and repository layers from the
// embedded database. The BadgerDB implementation lives in storage/badger:
//
//	store, err := badger.NewMemoryStore(backend)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
// Use in tests with in-memory storage:
//
//	store, backend, err := badger.NewInMemoryStore()
//
// # Change notification
//
// Subscribe returns a channel closed on the next mutation. Observers wait on
// the channel, re-read what they need and subscribe again. Notifications
// coalesce: several mutations between two reads produce one wake-up.
//
// # Thread Safety
//
// All store implementations must be thread-safe and support
// concurrent access from multiple goroutines.
//
// # Context Support
//
// All store methods accept context.Context. Pass context.Background() for
// operations without specific timeout requirements.
package storage
