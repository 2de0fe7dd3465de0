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


package collection

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"
)

// Query narrows, orders and truncates a FindMany result. The zero value
// (or nil) matches everything in insertion order.
type Query[T any] struct {
	Where   *Where[T]
	OrderBy *Order
	Limit   int
}

// Order requests a stable sort by one field. Field names follow the
// record's json tags ("matchCount"), falling back to Go field names.
type Order struct {
	Field string
	Desc  bool
}

// Where is a predicate over candidate records. It has exactly two
// variants: field equality against a map, or an arbitrary match
// function. Construct it with FieldEquals or Match.
type Where[T any] struct {
	fields map[string]any
	match  func(T) bool
}

// FieldEquals matches records whose listed fields are strictly equal to
// the given values. No type coercion happens: an int query value does
// not match an int64 field.
func FieldEquals[T any](fields map[string]any) *Where[T] {
	return &Where[T]{fields: fields}
}

// Match wraps an arbitrary predicate function.
func Match[T any](fn func(rec T) bool) *Where[T] {
	return &Where[T]{match: fn}
}

// Matches reports whether the record satisfies the predicate. A nil
// Where matches everything.
func (w *Where[T]) Matches(rec T) bool {
	if w == nil {
		return true
	}
	if w.match != nil {
		return w.match(rec)
	}
	for name, want := range w.fields {
		got, ok := fieldByName(rec, name)
		if !ok || !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}

// fieldByName resolves a field value on a struct (or pointer to one) by
// json tag name, falling back to the Go field name. Embedded structs
// are searched depth-first, so promoted fields like "id" resolve too.
func fieldByName(rec any, name string) (any, bool) {
	v := reflect.ValueOf(rec)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, false
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, false
	}
	return structField(v, name)
}

func structField(v reflect.Value, name string) (any, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		if field.Anonymous {
			fv := v.Field(i)
			for fv.Kind() == reflect.Pointer && !fv.IsNil() {
				fv = fv.Elem()
			}
			if fv.Kind() == reflect.Struct {
				if got, ok := structField(fv, name); ok {
					return got, true
				}
			}
			continue
		}
		tag, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if tag == name || (tag == "" && field.Name == name) || field.Name == name {
			return v.Field(i).Interface(), true
		}
	}
	return nil, false
}

// sortRecords stably sorts records in place by the named field. Records
// missing the field sort before records that have it.
func sortRecords[T any](recs []T, order *Order) {
	sort.SliceStable(recs, func(i, j int) bool {
		a, aok := fieldByName(recs[i], order.Field)
		b, bok := fieldByName(recs[j], order.Field)
		if !aok || !bok {
			if aok == bok {
				return false
			}
			less := !aok
			if order.Desc {
				less = !less
			}
			return less
		}
		cmp := compareValues(a, b)
		if order.Desc {
			return cmp > 0
		}
		return cmp < 0
	})
}

// compareValues orders two field values by their run-time type: numeric,
// string, bool or time.Time. Anything else falls back to its string
// form so ordering stays total.
func compareValues(a, b any) int {
	if at, aok := a.(time.Time); aok {
		if bt, bok := b.(time.Time); bok {
			return at.Compare(bt)
		}
	}

	av := reflect.ValueOf(a)
	bv := reflect.ValueOf(b)
	if av.Kind() == bv.Kind() || (isNumeric(av.Kind()) && isNumeric(bv.Kind())) {
		switch {
		case isInt(av.Kind()) && isInt(bv.Kind()):
			return compareOrdered(av.Int(), bv.Int())
		case isNumeric(av.Kind()):
			return compareOrdered(toFloat(av), toFloat(bv))
		case av.Kind() == reflect.String:
			return strings.Compare(av.String(), bv.String())
		case av.Kind() == reflect.Bool:
			return compareBool(av.Bool(), bv.Bool())
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func compareOrdered[V int64 | float64](a, b V) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

func isInt(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	default:
		return false
	}
}

func isNumeric(k reflect.Kind) bool {
	if isInt(k) {
		return true
	}
	switch k {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

func toFloat(v reflect.Value) float64 {
	switch {
	case isInt(v.Kind()):
		return float64(v.Int())
	case v.Kind() >= reflect.Uint && v.Kind() <= reflect.Uint64:
		return float64(v.Uint())
	default:
		return v.Float()
	}
}
