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


// Package storage defines the persistence boundary for mockdb.
//
// The database never talks to a storage medium directly; it hands its
// collections to an Adapter, which writes the whole schema as one
// versioned JSON snapshot and reads it back on startup. Two adapters
// exist: a durable one backed by BadgerDB (storage/badger) and a
// volatile in-process one (storage/memory) for tests and server-side
// contexts where durable storage is unavailable.
//
// # Snapshot format
//
// A snapshot is a single JSON object:
//
//	{
//	  "version": 3,
//	  "data": { "<collection>": [ <record>, ... ], ... },
//	  "lastUpdated": "2025-06-01T12:00:00Z"
//	}
//
// A snapshot is only usable when its version equals SchemaVersion.
// Any mismatch, like any parse failure, is treated as absent data and
// the database reseeds. There is no field-level migration.
//
// Date-typed fields round-trip through ISO-8601 strings via the typed
// record structs; no pattern-based string revival happens on load.
//
// # Context support
//
// All adapter methods accept context.Context. The underlying media are
// effectively synchronous; once issued, a persist runs to completion or
// fails outright.
package storage
