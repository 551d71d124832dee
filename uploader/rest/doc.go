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

// Package rest implements uploader.Uploader against the memory server's
// JSON API.
//
// Each record is sent as POST {server}/memories:
//
//	{"title": "...", "content": "...", "content_hash": "...",
//	 "created_at": "2025-03-01T09:00:00Z", "client_id": "42"}
//
// with the record's SyncKey in the Idempotency-Key header, so a retry after an
// ambiguous failure (timeout after the server committed) does not create a
// duplicate. A 2xx response is an acknowledgment; the server's data.id is
// returned as the receipt's RemoteID.
package rest
