package postgres

import (
	"context"
	"fmt"
	"math"
	"strings"

	"gonarrate/domain/dataset"

	"github.com/lib/pq"
)

// Publish replaces table with the contents of d inside one transaction, so a
// table: reference never observes a half-written dataset. Numeric columns
// become double precision with NaN stored as NULL.
func (r *DatasetRepository) Publish(ctx context.Context, table string, d *dataset.Dataset) (int, error) {
	schema, name, err := splitTable(table)
	if err != nil {
		return 0, err
	}
	columns := d.Columns()
	if len(columns) == 0 {
		return 0, fmt.Errorf("dataset %s has no columns", d.Name())
	}

	values, err := columnValues(d, columns)
	if err != nil {
		return 0, err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	qualified := qualify(schema, name)
	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+qualified); err != nil {
		return 0, fmt.Errorf("failed to drop %s: %w", table, err)
	}
	if _, err := tx.ExecContext(ctx, createTableSQL(qualified, columns)); err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", table, err)
	}

	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.Name
	}
	var copyStmt string
	if schema != "" {
		copyStmt = pq.CopyInSchema(schema, name, names...)
	} else {
		copyStmt = pq.CopyIn(name, names...)
	}
	stmt, err := tx.PrepareContext(ctx, copyStmt)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare copy into %s: %w", table, err)
	}
	for row := 0; row < d.RowCount(); row++ {
		args := make([]interface{}, len(columns))
		for i := range columns {
			args[i] = values[i][row]
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			stmt.Close()
			return 0, fmt.Errorf("failed to copy row %d into %s: %w", row, table, err)
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		return 0, fmt.Errorf("failed to flush copy into %s: %w", table, err)
	}
	if err := stmt.Close(); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit %s: %w", table, err)
	}
	return d.RowCount(), nil
}

// columnValues lays out d column by column with missing numbers as nil
func columnValues(d *dataset.Dataset, columns []dataset.Column) ([][]interface{}, error) {
	out := make([][]interface{}, len(columns))
	for i, c := range columns {
		col := make([]interface{}, d.RowCount())
		switch c.Kind {
		case dataset.KindNumeric:
			fs, err := d.Float64s(c.Name)
			if err != nil {
				return nil, err
			}
			for r, v := range fs {
				if !math.IsNaN(v) {
					col[r] = v
				}
			}
		default:
			ss, err := d.Strings(c.Name)
			if err != nil {
				return nil, err
			}
			for r, v := range ss {
				col[r] = v
			}
		}
		out[i] = col
	}
	return out, nil
}

func createTableSQL(qualified string, columns []dataset.Column) string {
	defs := make([]string, len(columns))
	for i, c := range columns {
		typ := "text"
		if c.Kind == dataset.KindNumeric {
			typ = "double precision"
		}
		defs[i] = pq.QuoteIdentifier(c.Name) + " " + typ
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", qualified, strings.Join(defs, ", "))
}

// splitTable accepts "name" or "schema.name"
func splitTable(table string) (schema, name string, err error) {
	table = strings.TrimPrefix(table, TablePrefix)
	parts := strings.Split(table, ".")
	switch {
	case len(parts) == 1 && parts[0] != "":
		return "", parts[0], nil
	case len(parts) == 2 && parts[0] != "" && parts[1] != "":
		return parts[0], parts[1], nil
	}
	return "", "", fmt.Errorf("malformed table name %q", table)
}

func qualify(schema, name string) string {
	if schema == "" {
		return pq.QuoteIdentifier(name)
	}
	return pq.QuoteIdentifier(schema) + "." + pq.QuoteIdentifier(name)
}
