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

// Package prefs holds the user preferences that control synchronization.
//
// Preferences are resolved in layers, each overriding the previous one:
//
//  1. Default values
//  2. A YAML file (see Load)
//  3. A .env file, which only fills variables not already set
//  4. MEMOSYNC_* environment variables
//
// The result is validated before it is returned. The sync gate consumed by
// the scheduler and the sync use case is SyncAllowed / AutoSyncAllowed.
package prefs
