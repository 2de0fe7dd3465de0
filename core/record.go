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


package core

import (
	"encoding/hex"
	"time"

	"github.com/go-crypt/x/blake2b"
	"github.com/google/uuid"
)

// Record is implemented by every entity stored in a collection.
// An id is a non-empty string, unique within its collection.
type Record interface {
	RecordID() string
	SetRecordID(id string)
}

// Timestamped is implemented by records that carry creation and update
// times. Collections stamp these on create and update; values already
// supplied by the caller are left alone on create.
type Timestamped interface {
	StampCreated(t time.Time)
	StampUpdated(t time.Time)
}

// NewID generates a random, collision-improbable record id.
func NewID() string {
	return uuid.NewString()
}

// DeterministicID derives a stable id from content using BLAKE2b hashing.
// Seed data uses this so reseeding always produces the same ids.
func DeterministicID(content string) string {
	h, _ := blake2b.New(16, nil)
	h.Write([]byte(content))
	return hex.EncodeToString(h.Sum(nil))
}

// Meta is the embeddable base for records with timestamps.
type Meta struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (m *Meta) RecordID() string      { return m.ID }
func (m *Meta) SetRecordID(id string) { m.ID = id }

// StampCreated fills in creation and update times if the caller did not.
func (m *Meta) StampCreated(t time.Time) {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = t
	}
	if m.UpdatedAt.IsZero() {
		m.UpdatedAt = t
	}
}

// StampUpdated unconditionally refreshes the update time.
func (m *Meta) StampUpdated(t time.Time) {
	m.UpdatedAt = t
}

// Key is the embeddable base for records without timestamps, such as
// junction rows.
type Key struct {
	ID string `json:"id"`
}

func (k *Key) RecordID() string      { return k.ID }
func (k *Key) SetRecordID(id string) { k.ID = id }
