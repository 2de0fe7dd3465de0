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


package repo

import (
	"github.com/opencohort/mockdb"
	"github.com/opencohort/mockdb/collection"
	"github.com/opencohort/mockdb/core"
)

// NotificationRepository owns per-user notifications.
type NotificationRepository struct {
	Repository[*core.Notification]
}

// NewNotificationRepository creates a notification repository.
func NewNotificationRepository(db *mockdb.Database) *NotificationRepository {
	return &NotificationRepository{Repository: newRepository(db, db.Notifications())}
}

// Notify writes a notification for a user.
func (r *NotificationRepository) Notify(userID, kind, message string) (*core.Notification, error) {
	if userID == "" {
		return nil, core.ErrEmptyUserID
	}
	return r.Create(&core.Notification{UserID: userID, Kind: kind, Message: message})
}

// For returns a user's notifications in insertion order.
func (r *NotificationRepository) For(userID string) []*core.Notification {
	return r.Find(whereField[*core.Notification]("userId", userID))
}

// UnreadCount returns how many of a user's notifications are unread.
func (r *NotificationRepository) UnreadCount(userID string) int {
	return len(r.Find(&collection.Query[*core.Notification]{
		Where: collection.Match(func(n *core.Notification) bool {
			return n.UserID == userID && !n.Read
		}),
	}))
}

// MarkRead flags one notification as read.
func (r *NotificationRepository) MarkRead(id string) bool {
	_, ok := r.Update(id, func(n *core.Notification) { n.Read = true })
	return ok
}

// MarkAllRead flags every unread notification for a user and reports
// how many it touched.
func (r *NotificationRepository) MarkAllRead(userID string) int {
	touched := 0
	for _, n := range r.For(userID) {
		if n.Read {
			continue
		}
		if _, ok := r.Update(n.ID, func(n *core.Notification) { n.Read = true }); ok {
			touched++
		}
	}
	return touched
}
