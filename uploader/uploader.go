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

package uploader

import (
	"context"

	"github.com/poiesic/memosync/core"
)

// Receipt is the server acknowledgment of an uploaded record.
type Receipt struct {
	RemoteID string // Identifier assigned by the server, may be empty
}

// Uploader sends memory records to the remote memory server.
// Implementations must be safe for concurrent use.
type Uploader interface {
	// Upload sends a single record. A nil error means the server
	// acknowledged the record. Upload must honor ctx cancellation.
	Upload(ctx context.Context, record *core.MemoryRecord) (Receipt, error)
}
