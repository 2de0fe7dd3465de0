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


// Package memory provides the volatile storage adapter. It holds the
// encoded snapshot blob in process memory, which makes it suitable for
// tests and server-side contexts where durable storage is unavailable.
package memory

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/opencohort/mockdb/storage"
)

// Adapter is the volatile storage.Adapter implementation. It stores the
// same encoded blob a durable adapter would write, so round-trip
// behavior matches exactly.
type Adapter struct {
	blob   []byte
	logger *slog.Logger
}

var _ storage.Adapter = (*Adapter)(nil)

// New creates an empty volatile adapter.
func New() *Adapter {
	return &Adapter{logger: slog.Default()}
}

// Initialize implements storage.Adapter. Nothing to prepare.
func (a *Adapter) Initialize(ctx context.Context) error {
	return nil
}

// HasData reports whether a snapshot has been persisted.
func (a *Adapter) HasData(ctx context.Context) (bool, error) {
	return len(a.blob) > 0, nil
}

// Load decodes the held snapshot. Absent, malformed or version-skewed
// blobs all yield (nil, nil).
func (a *Adapter) Load(ctx context.Context) (map[string][]json.RawMessage, error) {
	if a.blob == nil {
		return nil, nil
	}
	snap, err := storage.DecodeSnapshot(a.blob)
	if err != nil {
		a.logger.Warn("discarding unusable snapshot", "err", err)
		return nil, nil
	}
	return snap.Data, nil
}

// Persist encodes the collections into a snapshot blob and keeps it in
// memory.
func (a *Adapter) Persist(ctx context.Context, sources []storage.CollectionSource) error {
	snap, err := storage.BuildSnapshot(sources)
	if err != nil {
		return err
	}
	blob, err := storage.EncodeSnapshot(snap)
	if err != nil {
		return err
	}
	a.blob = blob
	return nil
}

// Clear drops the held snapshot.
func (a *Adapter) Clear(ctx context.Context) error {
	a.blob = nil
	return nil
}

// SetBlob replaces the held blob directly. Tests use it to simulate
// corrupted or version-skewed snapshots.
func (a *Adapter) SetBlob(blob []byte) {
	a.blob = blob
}
