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

package syncer

import "errors"

var (
	// ErrStoreRequired is returned when a store is not provided.
	ErrStoreRequired = errors.New("memory store required")

	// ErrUploaderRequired is returned when an uploader is not provided.
	ErrUploaderRequired = errors.New("uploader required")

	// ErrSyncInProgress is returned by Run while another run is active.
	ErrSyncInProgress = errors.New("sync already in progress")

	// ErrAttemptInProgress is returned by UploadOne when the record is
	// already being uploaded.
	ErrAttemptInProgress = errors.New("upload attempt already in progress")

	// ErrAlreadyUploaded is returned by UploadOne for an uploaded record.
	ErrAlreadyUploaded = errors.New("memory already uploaded")

	// ErrUploadFailed wraps the uploader error of a failed manual attempt.
	ErrUploadFailed = errors.New("upload failed")

	// ErrInvalidPolicy is returned when a RetryPolicy is malformed.
	ErrInvalidPolicy = errors.New("invalid retry policy")
)
