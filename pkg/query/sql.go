// Copyright (c) 2026 Trailhead. All rights reserved.
// Author: dev@trailhead.app

package query

import (
	"fmt"
	"strings"
)

// sqlOps maps a declared operator to its SQL comparison form.
var sqlOps = map[Op]string{
	OpEq:  "=",
	OpGte: ">=",
	OpGt:  ">",
	OpLte: "<=",
	OpLt:  "<",
}

/*
BuildSelect renders a [Spec] into a single parameterized SELECT against the
schema's table. Base filters are constraints the caller imposes (scoping a
nested listing to its parent, excluding soft-deleted rows) and are rendered
ahead of the request's own filters.

Identifiers come exclusively from the validated schema and values travel as
positional parameters, so neither side of the statement ever embeds client
input.

Parameters:
  - schema: the declared resource shape the spec was parsed against.
  - spec: the resolved filter, sort, selection, and pagination parameters.
  - base: caller-imposed constraints, rendered before the spec's filters.

Returns:
  - string: the parameterized SQL statement.
  - []any: the positional arguments, one per placeholder.
*/
func BuildSelect(schema Schema, spec Spec, base ...Filter) (string, []any) {
	var b strings.Builder
	var args []any

	fields := spec.Fields
	if len(fields) == 0 {
		fields = schema.ColumnNames()
	}

	b.WriteString("SELECT ")
	b.WriteString(strings.Join(fields, ", "))
	b.WriteString(" FROM ")
	b.WriteString(schema.Table)

	filters := make([]Filter, 0, len(base)+len(spec.Filters))
	filters = append(filters, base...)
	filters = append(filters, spec.Filters...)

	for i, f := range filters {
		if i == 0 {
			b.WriteString(" WHERE ")
		} else {
			b.WriteString(" AND ")
		}
		args = append(args, f.Value)
		fmt.Fprintf(&b, "%s %s $%d", f.Field, sqlOps[f.Op], len(args))
	}

	for i, key := range spec.Sort {
		if i == 0 {
			b.WriteString(" ORDER BY ")
		} else {
			b.WriteString(", ")
		}
		b.WriteString(key.Field)
		if key.Desc {
			b.WriteString(" DESC")
		} else {
			b.WriteString(" ASC")
		}
	}

	args = append(args, spec.Limit)
	fmt.Fprintf(&b, " LIMIT $%d", len(args))
	args = append(args, spec.Offset())
	fmt.Fprintf(&b, " OFFSET $%d", len(args))

	return b.String(), args
}

// BuildCount renders the matching-row count statement for the same filters
// as [BuildSelect], ignoring sort, selection, and pagination.
func BuildCount(schema Schema, spec Spec, base ...Filter) (string, []any) {
	var b strings.Builder
	var args []any

	b.WriteString("SELECT COUNT(*) FROM ")
	b.WriteString(schema.Table)

	filters := make([]Filter, 0, len(base)+len(spec.Filters))
	filters = append(filters, base...)
	filters = append(filters, spec.Filters...)

	for i, f := range filters {
		if i == 0 {
			b.WriteString(" WHERE ")
		} else {
			b.WriteString(" AND ")
		}
		args = append(args, f.Value)
		fmt.Fprintf(&b, "%s %s $%d", f.Field, sqlOps[f.Op], len(args))
	}

	return b.String(), args
}
