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

package ai

import "context"

// Titler suggests a title for a memory's content.
// Implementations must be thread-safe for concurrent use.
type Titler interface {
	// GenerateTitle returns a short descriptive title for content.
	// The result is never longer than the configured maximum.
	// Returns an error if the service fails or returns nothing usable.
	GenerateTitle(ctx context.Context, content string) (string, error)
}
