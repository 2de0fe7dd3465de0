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


package mockdb

import (
	"log/slog"
	"sync"
)

// Action identifies what happened to a collection or the whole schema.
type Action string

const (
	ActionCreated  Action = "created"
	ActionUpdated  Action = "updated"
	ActionDeleted  Action = "deleted"
	ActionSeeded   Action = "seeded"
	ActionHydrated Action = "hydrated"
	ActionReset    Action = "reset"
	ActionCleared  Action = "cleared"
)

// Event describes one mutation. Schema-wide events (seeded, hydrated,
// reset, cleared) leave Collection and RecordID empty.
type Event struct {
	Collection string
	Action     Action
	RecordID   string
}

// Listener receives events synchronously on the execution context that
// triggered the mutation. A slow listener stalls everything behind it.
type Listener func(Event)

type subscription struct {
	id int
	fn Listener
}

// eventBus delivers events to subscribers in subscription order. A
// panicking listener is recovered and logged so the remaining listeners
// still run.
type eventBus struct {
	mu     sync.Mutex
	nextID int
	subs   []subscription
	logger *slog.Logger
}

func newEventBus(logger *slog.Logger) *eventBus {
	return &eventBus{logger: logger}
}

func (b *eventBus) subscribe(fn Listener) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, fn: fn})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, sub := range b.subs {
			if sub.id == id {
				b.subs = append(b.subs[:i], b.subs[i+1:]...)
				return
			}
		}
	}
}

func (b *eventBus) emit(evt Event) {
	b.mu.Lock()
	subs := make([]subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.Unlock()

	for _, sub := range subs {
		b.deliver(sub, evt)
	}
}

func (b *eventBus) deliver(sub subscription, evt Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event listener panicked",
				"collection", evt.Collection, "action", evt.Action, "panic", r)
		}
	}()
	sub.fn(evt)
}
