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

// Package syncer moves memory records from Pending to Uploaded.
//
// The package is split into a pure part and an effectful part:
//
//   - Transition computes the next record state from an attempt Outcome.
//     It never touches storage or the network.
//   - RetryPolicy decides which pending records are eligible for an attempt
//     (retry cap and exponential back-off).
//   - Syncer reads the pending records from a storage.MemoryStore, uploads
//     them oldest first through an uploader.Uploader on an ants worker pool,
//     and persists exactly one transition per attempt with the store's atomic
//     single-record operations.
//   - Scheduler decides when Syncer runs: on a ticker, on Trigger, and on
//     store changes, all subject to a Gate.
//
// No lock is held while an upload is in flight. A cancelled attempt leaves
// the record unchanged.
package syncer
