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

// Package uploader defines the remote upload collaborator used by the
// synchronization layer.
//
// An Uploader sends one memory record to the remote memory server and
// reports whether the server acknowledged it. Implementations:
//
//   - uploader/rest: JSON over HTTP against the memory server API
//   - uploader/mock: configurable test double
//
// Failures are classified with IsPermanent. Permanent failures (the server
// rejected the request) and transient failures (timeouts, 5xx) both count as
// a failed attempt; the classification only feeds logging and reports.
package uploader
