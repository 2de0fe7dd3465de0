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

// Batch prefetch helpers. List enrichment pre-indexes related
// collections by foreign key before iterating the primary set, turning
// an O(n*m) nested join into O(n+m). Every repository goes through
// these instead of re-deriving the pattern.

// IndexBy builds a one-record-per-key lookup map. When two records
// share a key the first one wins, matching insertion order.
func IndexBy[T any, K comparable](recs []T, key func(T) K) map[K]T {
	idx := make(map[K]T, len(recs))
	for _, rec := range recs {
		k := key(rec)
		if _, exists := idx[k]; !exists {
			idx[k] = rec
		}
	}
	return idx
}

// GroupBy buckets records by key, preserving insertion order within
// each bucket.
func GroupBy[T any, K comparable](recs []T, key func(T) K) map[K][]T {
	groups := make(map[K][]T)
	for _, rec := range recs {
		k := key(rec)
		groups[k] = append(groups[k], rec)
	}
	return groups
}
