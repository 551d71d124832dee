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
	"errors"
	"fmt"
)

// ErrServerURLRequired is returned when no server endpoint is configured.
var ErrServerURLRequired = errors.New("server URL required")

// StatusError is returned when the server answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Code       string // Server error code, e.g. "DATABASE_ERROR"
	Message    string
}

func (e *StatusError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("upload failed with status %d: %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("upload failed with status %d", e.StatusCode)
}

// Permanent reports whether retrying the same request cannot succeed.
// 4xx responses are permanent, except 408 and 429.
func (e *StatusError) Permanent() bool {
	switch e.StatusCode {
	case 408, 429:
		return false
	}
	return e.StatusCode >= 400 && e.StatusCode < 500
}

// IsPermanent reports whether err is an upload failure the server will
// keep rejecting.
func IsPermanent(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Permanent()
}
