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
	"encoding/json"
	"fmt"
	"time"
)

// Snapshot is the versioned wrapper around the serialized schema. It is
// the only wire format in scope: one JSON blob holding every
// collection's records.
type Snapshot struct {
	Version     int                          `json:"version"`
	Data        map[string][]json.RawMessage `json:"data"`
	LastUpdated time.Time                    `json:"lastUpdated"`
}

// BuildSnapshot serializes the given collections into a snapshot
// stamped with the current schema version.
func BuildSnapshot(sources []CollectionSource) (*Snapshot, error) {
	data := make(map[string][]json.RawMessage, len(sources))
	for _, src := range sources {
		raw, err := src.MarshalRecords()
		if err != nil {
			return nil, fmt.Errorf("%w: collection %s: %w", ErrSerializationFailed, src.Name(), err)
		}
		data[src.Name()] = raw
	}
	return &Snapshot{
		Version:     SchemaVersion,
		Data:        data,
		LastUpdated: time.Now().UTC(),
	}, nil
}

// EncodeSnapshot serializes a snapshot to its JSON blob form.
func EncodeSnapshot(snap *Snapshot) ([]byte, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return data, nil
}

// DecodeSnapshot parses a snapshot blob and gates it on the schema
// version. It returns ErrMalformedSnapshot for unparseable input and
// ErrVersionMismatch when the version differs; callers treat both as
// absent data.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedSnapshot, err)
	}
	if snap.Version != SchemaVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrVersionMismatch, snap.Version, SchemaVersion)
	}
	return &snap, nil
}
