// Copyright (c) 2026 Trailhead. All rights reserved.
// Author: dev@trailhead.app

/*
Package query transforms raw URL query parameters into a bounded, safe
data-fetch specification.

# Pipeline

The transformation runs in a fixed order, each stage composing onto the
prior one:

	filter → sort → field-selection → paginate

The resulting [Spec] is consumed exactly once by the storage layer, which
renders it into a single parameterized SELECT via [BuildSelect].

# Safety

Every filter, sort, and selection key is validated against the resource's
declared [Schema]. Unknown keys are rejected at parse time rather than
forwarded to the storage engine, closing the operator-injection surface of
unbounded passthrough designs. Values are coerced to the column's declared
kind, so a malformed number fails the request instead of the query.
*/
package query

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Pagination defaults. Absent or invalid values coerce to these; there is
// deliberately no upper bound on limit (callers accepting untrusted traffic
// should front this with rate limiting).
const (
	DefaultPage  = 1
	DefaultLimit = 100
)

// Parse-time failures. All of them indicate bad client input.
var (
	ErrUnknownField    = errors.New("query: unknown field")
	ErrUnknownOperator = errors.New("query: unknown operator")
	ErrNotFilterable   = errors.New("query: field is not filterable")
	ErrNotSortable     = errors.New("query: field is not sortable")
	ErrBadValue        = errors.New("query: malformed value")
)

// # Column Declaration

// Kind is the storage type of a column, used to coerce raw string values.
type Kind int

const (
	Text Kind = iota
	Int
	Float
	Bool
	Time
)

// Column declares one selectable column of a resource.
type Column struct {
	Name       string
	Kind       Kind
	Filterable bool
	Sortable   bool
}

// Schema is the declared shape of a queryable resource. It is the allow-list
// every parsed key is checked against.
type Schema struct {
	// Table is the fully qualified table name.
	Table string

	// IDColumn is always included in field selections. Defaults to "id".
	IDColumn string

	// Columns is the ordered set of selectable columns.
	Columns []Column

	// DefaultSort applies when the request carries no sort key.
	DefaultSort []SortKey
}

// column looks up a declared column by name.
func (s Schema) column(name string) (Column, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// idColumn returns the configured ID column, defaulting to "id".
func (s Schema) idColumn() string {
	if s.IDColumn == "" {
		return "id"
	}
	return s.IDColumn
}

// ColumnNames returns the names of all declared columns in order.
func (s Schema) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// # Specification

// Op is a comparison operator permitted in filter constraints.
type Op string

const (
	OpEq  Op = "eq"
	OpGte Op = "gte"
	OpGt  Op = "gt"
	OpLte Op = "lte"
	OpLt  Op = "lt"
)

// Filter is a single column constraint. Value is already coerced to the
// column's declared kind.
type Filter struct {
	Field string
	Op    Op
	Value any
}

// SortKey is one ordering component.
type SortKey struct {
	Field string
	Desc  bool
}

// Spec is the resolved filter/sort/selection/pagination parameters for one
// read request. It is request-scoped: built once, consumed immediately,
// discarded.
type Spec struct {
	Filters []Filter
	Sort    []SortKey
	Fields  []string
	Page    int
	Limit   int
}

// Offset returns the number of rows to skip: (page-1) * limit.
func (s Spec) Offset() int {
	return (s.Page - 1) * s.Limit
}

// reserved keys never treated as filter constraints.
var reservedKeys = map[string]bool{
	"page":   true,
	"sort":   true,
	"limit":  true,
	"fields": true,
}

// # Parsing

// Parse builds a [Spec] from raw URL query parameters, validated against the
// schema. The stages run in pipeline order: filter, sort, field-selection,
// paginate.
func Parse(values url.Values, schema Schema) (Spec, error) {
	spec := Spec{}

	// ── 1. Filter ─────────────────────────────────────────────────────────
	// Reserved keys are stripped; everything else must name a declared,
	// filterable column, optionally carrying a comparison operator in the
	// key ("price[gte]=100").
	for rawKey, rawValues := range values {
		if reservedKeys[rawKey] || len(rawValues) == 0 {
			continue
		}

		field, op, err := splitFilterKey(rawKey)
		if err != nil {
			return Spec{}, err
		}

		column, ok := schema.column(field)
		if !ok {
			return Spec{}, fmt.Errorf("%w: %q", ErrUnknownField, field)
		}
		if !column.Filterable {
			return Spec{}, fmt.Errorf("%w: %q", ErrNotFilterable, field)
		}

		value, err := coerce(column.Kind, rawValues[0])
		if err != nil {
			return Spec{}, fmt.Errorf("%w: %q=%q", ErrBadValue, field, rawValues[0])
		}

		spec.Filters = append(spec.Filters, Filter{Field: field, Op: op, Value: value})
	}

	// ── 2. Sort ───────────────────────────────────────────────────────────
	// Comma-separated keys, "-" prefix for descending. Defaults to the
	// schema's declared ordering.
	if rawSort := values.Get("sort"); rawSort != "" {
		for _, rawKey := range strings.Split(rawSort, ",") {
			rawKey = strings.TrimSpace(rawKey)
			if rawKey == "" {
				continue
			}

			key := SortKey{Field: rawKey}
			if strings.HasPrefix(rawKey, "-") {
				key = SortKey{Field: rawKey[1:], Desc: true}
			}

			column, ok := schema.column(key.Field)
			if !ok {
				return Spec{}, fmt.Errorf("%w: %q", ErrUnknownField, key.Field)
			}
			if !column.Sortable {
				return Spec{}, fmt.Errorf("%w: %q", ErrNotSortable, key.Field)
			}

			spec.Sort = append(spec.Sort, key)
		}
	}
	if len(spec.Sort) == 0 {
		spec.Sort = schema.DefaultSort
	}

	// ── 3. Field Selection ────────────────────────────────────────────────
	// Comma-separated column list; the ID column is always included.
	// Absent selection means all declared columns.
	if rawFields := values.Get("fields"); rawFields != "" {
		selected := []string{schema.idColumn()}
		for _, rawField := range strings.Split(rawFields, ",") {
			rawField = strings.TrimSpace(rawField)
			if rawField == "" || rawField == schema.idColumn() {
				continue
			}
			if _, ok := schema.column(rawField); !ok {
				return Spec{}, fmt.Errorf("%w: %q", ErrUnknownField, rawField)
			}
			selected = append(selected, rawField)
		}
		spec.Fields = selected
	} else {
		spec.Fields = schema.ColumnNames()
	}

	// ── 4. Paginate ───────────────────────────────────────────────────────
	// Page and limit always coerce to positive integers with defaults.
	spec.Page = positiveInt(values.Get("page"), DefaultPage)
	spec.Limit = positiveInt(values.Get("limit"), DefaultLimit)

	return spec, nil
}

// splitFilterKey splits "price[gte]" into field and operator. A bare key is
// an equality constraint.
func splitFilterKey(rawKey string) (string, Op, error) {
	open := strings.IndexByte(rawKey, '[')
	if open < 0 {
		return rawKey, OpEq, nil
	}

	if !strings.HasSuffix(rawKey, "]") || open == 0 {
		return "", "", fmt.Errorf("%w: %q", ErrUnknownOperator, rawKey)
	}

	field := rawKey[:open]
	op := Op(rawKey[open+1 : len(rawKey)-1])

	switch op {
	case OpEq, OpGte, OpGt, OpLte, OpLt:
		return field, op, nil
	}
	return "", "", fmt.Errorf("%w: %q", ErrUnknownOperator, string(op))
}

// coerce converts a raw query string value into the column's declared kind.
func coerce(kind Kind, raw string) (any, error) {
	switch kind {
	case Int:
		return strconv.Atoi(raw)
	case Float:
		return strconv.ParseFloat(raw, 64)
	case Bool:
		return strconv.ParseBool(raw)
	case Time:
		return time.Parse(time.RFC3339, raw)
	default:
		return raw, nil
	}
}

// positiveInt parses a positive integer, falling back to the default on
// absence, garbage, or non-positive values.
func positiveInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
