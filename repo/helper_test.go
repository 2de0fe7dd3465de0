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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/opencohort/mockdb"
	"github.com/opencohort/mockdb/core"
	"github.com/opencohort/mockdb/storage/memory"
)

// setupDB builds an unseeded database over a volatile adapter.
func setupDB(t *testing.T) *mockdb.Database {
	t.Helper()
	return mockdb.New(memory.New())
}

func mustCreate[T core.Record](t *testing.T, create func(T) (T, error), rec T) T {
	t.Helper()
	created, err := create(rec)
	require.NoError(t, err)
	return created
}

func addUser(t *testing.T, db *mockdb.Database, id, name string) *core.User {
	t.Helper()
	return mustCreate(t, db.Users().Create, &core.User{Meta: core.Meta{ID: id}, Name: name})
}
