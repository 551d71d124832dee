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

// Package repository is the single entry point for memory records.
//
// Repository validates and stamps new records, delegates reads and deletes to
// a storage.MemoryStore, and hands synchronization to a syncer.Syncer. Store
// failures are returned wrapped but otherwise unchanged.
//
// ObserveMemories exposes the record list as a lazy iterator that yields a
// fresh result after every store mutation:
//
//	for records, err := range repo.ObserveMemories(ctx, repository.Query{Limit: 20}) {
//	    if err != nil {
//	        return err
//	    }
//	    render(records)
//	}
package repository
