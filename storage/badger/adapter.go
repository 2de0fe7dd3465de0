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


// Package badger provides the durable storage adapter, backed by a
// BadgerDB key-value store. The whole snapshot lives under a single
// key and is rewritten on every persist.
package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/panjf2000/ants/v2"

	"github.com/opencohort/mockdb/storage"
)

// snapshotKey is the single key the serialized schema lives under.
const snapshotKey = "mockdb:snapshot"

// Adapter is the durable storage.Adapter implementation.
type Adapter struct {
	db       *badger.DB
	encoders *ants.Pool
	logger   *slog.Logger
}

var _ storage.Adapter = (*Adapter)(nil)

// badgerLoggerAdapter adapts slog.Logger to badger.Logger interface.
type badgerLoggerAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any) {
	bl.logger.Error(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) {
	bl.logger.Warn(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Infof(msg string, items ...any) {
	bl.logger.Info(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

// Open opens a BadgerDB-backed adapter at the specified directory,
// creating it if needed. With inMemory set, nothing touches disk; that
// mode exists for tests.
func Open(filePath string, inMemory bool) (*Adapter, error) {
	var opts badger.Options

	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		info, err := os.Stat(filePath)
		if err != nil {
			if os.IsNotExist(err) {
				if err := os.MkdirAll(filePath, 0755); err != nil {
					return nil, err
				}
				info, err = os.Stat(filePath)
				if err != nil {
					return nil, err
				}
			} else {
				return nil, err
			}
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", filePath)
		}
		opts = badger.DefaultOptions(filePath)
	}

	opts.Logger = &badgerLoggerAdapter{logger: slog.Default()}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	encoders, err := ants.NewPool(poolSize)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Adapter{
		db:       db,
		encoders: encoders,
		logger:   slog.Default(),
	}, nil
}

// Close releases the encode pool and closes the underlying database.
func (a *Adapter) Close() error {
	a.encoders.Release()
	return a.db.Close()
}

// Initialize implements storage.Adapter. The database is already open
// at this point, so this only verifies it is still usable.
func (a *Adapter) Initialize(ctx context.Context) error {
	if a.db.IsClosed() {
		return storage.ErrStorageClosed
	}
	return nil
}

// HasData reports whether a non-empty snapshot blob is stored.
func (a *Adapter) HasData(ctx context.Context) (bool, error) {
	if a.db.IsClosed() {
		return false, storage.ErrStorageClosed
	}

	var has bool
	err := a.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(snapshotKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		has = item.ValueSize() > 0
		return nil
	})
	return has, err
}

// Load reads and decodes the stored snapshot. A missing blob, a parse
// failure or a schema version mismatch all yield (nil, nil): no usable
// prior data, logged but never fatal.
func (a *Adapter) Load(ctx context.Context) (map[string][]json.RawMessage, error) {
	if a.db.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	var blob []byte
	err := a.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(snapshotKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		blob, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	if blob == nil {
		return nil, nil
	}

	snap, err := storage.DecodeSnapshot(blob)
	if err != nil {
		a.logger.Warn("discarding unusable snapshot", "err", err)
		return nil, nil
	}
	return snap.Data, nil
}

// Persist serializes every collection and writes the versioned snapshot
// as one blob. Record encoding fans out over the adapter's worker pool;
// the write itself is a single transaction.
func (a *Adapter) Persist(ctx context.Context, sources []storage.CollectionSource) error {
	if a.db.IsClosed() {
		return storage.ErrStorageClosed
	}

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		firstErr error
	)
	data := make(map[string][]json.RawMessage, len(sources))

	for _, src := range sources {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			raw, err := src.MarshalRecords()
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			data[src.Name()] = raw
		}
		if err := a.encoders.Submit(task); err != nil {
			wg.Done()
			return err
		}
	}
	wg.Wait()

	if firstErr != nil {
		return fmt.Errorf("%w: %w", storage.ErrSerializationFailed, firstErr)
	}

	blob, err := storage.EncodeSnapshot(&storage.Snapshot{
		Version:     storage.SchemaVersion,
		Data:        data,
		LastUpdated: time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	return a.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(snapshotKey), blob)
	})
}

// Clear deletes the persisted blob entirely.
func (a *Adapter) Clear(ctx context.Context) error {
	if a.db.IsClosed() {
		return storage.ErrStorageClosed
	}
	return a.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(snapshotKey))
	})
}
