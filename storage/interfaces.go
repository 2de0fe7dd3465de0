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

import (
	"context"
	"encoding/json"
)

// SchemaVersion is the snapshot format version the running schema
// expects. A persisted snapshot with any other version is discarded
// wholesale and the database reseeds.
const SchemaVersion = 3

// CollectionSource is one collection's contribution to a snapshot.
// collection.Collection implements it.
type CollectionSource interface {
	// Name returns the collection's schema name.
	Name() string

	// MarshalRecords encodes every stored record as JSON, in
	// insertion order.
	MarshalRecords() ([]json.RawMessage, error)
}

// Adapter is the persistence boundary. Implementations write the whole
// schema as one blob on every Persist call; there is no incremental
// diffing.
type Adapter interface {
	// Initialize prepares the adapter. It must be called before any
	// other method and is a no-op where no preparation is needed.
	Initialize(ctx context.Context) error

	// HasData reports whether a previously persisted snapshot exists
	// and is non-empty.
	HasData(ctx context.Context) (bool, error)

	// Load returns the raw per-collection record arrays from the last
	// persisted snapshot, or nil if none exists. A version mismatch or
	// an unreadable blob also yields nil: both are "no usable prior
	// data", logged as a warning, never fatal.
	Load(ctx context.Context) (map[string][]json.RawMessage, error)

	// Persist serializes every collection into the versioned snapshot
	// wrapper and writes it as one blob.
	Persist(ctx context.Context, sources []CollectionSource) error

	// Clear deletes the persisted blob entirely.
	Clear(ctx context.Context) error
}
