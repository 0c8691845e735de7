// Copyright (c) 2026 Trailhead. All rights reserved.
// Author: dev@trailhead.app

package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trailhead-app/trailhead/pkg/query"
)

/*
Search executes a parsed query specification against its schema's table and
returns the rows as generic field maps.

Listings return maps instead of typed entities because the caller may have
narrowed the selection ("fields=name,price"), and a typed struct would
serialize the unselected columns as zero values. Keys follow the schema's
column names.

Parameters:
  - context: context.Context
  - pool: Connection pool to execute against.
  - schema: The declared resource shape the spec was parsed with.
  - spec: Resolved filter, sort, selection, and pagination parameters.
  - base: Caller-imposed constraints (parent scoping, soft-delete exclusion).

Returns:
  - []map[string]any: One map per row, keyed by selected column name.
  - error: Database execution errors.
*/
func Search(context context.Context, pool *pgxpool.Pool, schema query.Schema, spec query.Spec, base ...query.Filter) ([]map[string]any, error) {
	sql, args := query.BuildSelect(schema, spec, base...)

	rows, err := pool.Query(context, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()

	records := []map[string]any{}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}

		record := make(map[string]any, len(fields))
		for i, field := range fields {
			record[field.Name] = values[i]
		}
		records = append(records, record)
	}

	return records, rows.Err()
}
