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

// Package ident provides light, comparable value types for naming
// source and target schema objects, so that tables and schemas can be
// used as map keys without ad-hoc string concatenation scattered across
// the action registry and target loader.
package ident

import (
	"fmt"
	"strings"
)

// Schema identifies a source or target schema/database by name.
type Schema struct{ name string }

// NewSchema returns the Schema identified by name.
func NewSchema(name string) Schema { return Schema{name: strings.ToLower(name)} }

// ParseSchema parses a possibly dotted schema path into a Schema.
func ParseSchema(raw string) (Schema, error) {
	if raw == "" {
		return Schema{}, fmt.Errorf("ident: empty schema")
	}
	return NewSchema(raw), nil
}

// String implements fmt.Stringer.
func (s Schema) String() string { return s.name }

// Empty reports whether the Schema is the zero value.
func (s Schema) Empty() bool { return s.name == "" }

// Table identifies a table within a Schema.
type Table struct {
	schema Schema
	table  string
}

// NewTable returns the Table identified by (schema, table).
func NewTable(schema Schema, table string) Table {
	return Table{schema: schema, table: strings.ToLower(table)}
}

// ParseTable parses a "schema.table" or bare "table" path.
func ParseTable(raw string) (Table, error) {
	parts := strings.SplitN(raw, ".", 2)
	if len(parts) == 1 {
		return Table{table: strings.ToLower(parts[0])}, nil
	}
	sch, err := ParseSchema(parts[0])
	if err != nil {
		return Table{}, err
	}
	return NewTable(sch, parts[1]), nil
}

// Schema returns the table's schema.
func (t Table) Schema() Schema { return t.schema }

// Table returns the bare table name.
func (t Table) Table() string { return t.table }

// String implements fmt.Stringer, rendering "schema.table" or bare
// "table" if the schema is empty.
func (t Table) String() string {
	if t.schema.Empty() {
		return t.table
	}
	return t.schema.String() + "." + t.table
}
