// Copyright 2025 The OpenCohort Authors
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


package storage

import "errors"

var (
	// ErrVersionMismatch indicates a snapshot written by a different
	// schema version. Callers treat it as absent data and reseed.
	ErrVersionMismatch = errors.New("snapshot version mismatch")

	// ErrMalformedSnapshot indicates a snapshot that failed to parse.
	// Same treatment as a version mismatch: absent data.
	ErrMalformedSnapshot = errors.New("malformed snapshot")

	// ErrStorageClosed indicates that the storage backend is closed.
	ErrStorageClosed = errors.New("storage is closed")

	// ErrSerializationFailed indicates a serialization failure while
	// building a snapshot.
	ErrSerializationFailed = errors.New("serialization failed")
)
