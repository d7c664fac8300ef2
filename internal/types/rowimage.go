// Copyright 2023 The Cockroach Authors
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
//
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"encoding/json"
	"reflect"
	"time"

	"github.com/pkg/errors"
)

// RowImage is a decoded before/after row. It replaces the duck-typed row
// dicts of the reference implementation (Design Note) with a typed
// accessor surface, while remaining schemaless enough to carry any source
// table's columns.
type RowImage map[string]any

// Keys returns the set of populated column names.
func (r RowImage) Keys() map[string]struct{} {
	out := make(map[string]struct{}, len(r))
	for k := range r {
		out[k] = struct{}{}
	}
	return out
}

// Equal reports whether two row images carry the same column values.
// Two nil images are equal; a nil and a non-nil image are not.
func (r RowImage) Equal(other RowImage) bool {
	if r == nil || other == nil {
		return r == nil && other == nil
	}
	if len(r) != len(other) {
		return false
	}
	for k, v := range r {
		ov, ok := other[k]
		if !ok || !reflect.DeepEqual(v, ov) {
			return false
		}
	}
	return true
}

// Get returns the raw value for a column.
func (r RowImage) Get(col string) (any, bool) {
	v, ok := r[col]
	return v, ok
}

// String returns the column as a string. Missing columns return "".
func (r RowImage) String(col string) string {
	v, ok := r[col]
	if !ok || v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

// Int64 returns the column as an int64, coercing from json.Number or
// float64 as needed since JSON decoding may produce either.
func (r RowImage) Int64(col string) (int64, error) {
	v, ok := r[col]
	if !ok || v == nil {
		return 0, errors.Errorf("column %q is absent", col)
	}
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case float64:
		return int64(n), nil
	case json.Number:
		return n.Int64()
	default:
		return 0, errors.Errorf("column %q is not numeric (%T)", col, v)
	}
}

// Bool returns the column as a bool. Missing or nil columns return false.
func (r RowImage) Bool(col string) bool {
	v, ok := r[col]
	if !ok || v == nil {
		return false
	}
	b, _ := v.(bool)
	return b
}

// IsNull reports whether the column is present and explicitly null, or
// simply absent.
func (r RowImage) IsNull(col string) bool {
	v, ok := r[col]
	return !ok || v == nil
}

// Time parses the column as an RFC3339 (or Postgres-style) timestamp.
func (r RowImage) Time(col string) (time.Time, error) {
	s := r.String(col)
	if s == "" {
		return time.Time{}, errors.Errorf("column %q is absent", col)
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05.999999", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.Errorf("column %q is not a recognized timestamp: %q", col, s)
}

// RawJSON returns the column's raw JSON bytes, re-encoding it if the
// decoded value isn't already a json.RawMessage or string. A missing or
// null column returns nil, nil.
func (r RowImage) RawJSON(col string) ([]byte, error) {
	v, ok := r[col]
	if !ok || v == nil {
		return nil, nil
	}
	switch raw := v.(type) {
	case json.RawMessage:
		return raw, nil
	case string:
		return []byte(raw), nil
	default:
		return json.Marshal(raw)
	}
}

// JSON unmarshals a JSON-valued column into dst.
func (r RowImage) JSON(col string, dst any) error {
	v, ok := r[col]
	if !ok || v == nil {
		return errors.Errorf("column %q is absent", col)
	}
	switch raw := v.(type) {
	case json.RawMessage:
		return json.Unmarshal(raw, dst)
	case string:
		return json.Unmarshal([]byte(raw), dst)
	default:
		b, err := json.Marshal(raw)
		if err != nil {
			return err
		}
		return json.Unmarshal(b, dst)
	}
}
