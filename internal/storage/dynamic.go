package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// writeDynamic grows table's column set to cover every attribute key, then
// inserts one row for productID. It runs inside the record's transaction;
// any failure propagates so the caller rolls the whole record back.
func (s *PostgresStore) writeDynamic(ctx context.Context, tx pgx.Tx, table string, productID int64, attrs map[string]string) error {
	if len(attrs) == 0 {
		return nil
	}

	existing, err := tableColumns(ctx, tx, table)
	if err != nil {
		return fmt.Errorf("introspect %s: %w", table, err)
	}

	missing := missingColumns(existing, attrs)
	for _, col := range missing {
		// IF NOT EXISTS tolerates a concurrent writer adding the same column
		// between introspection and this statement.
		ddl := fmt.Sprintf(`ALTER TABLE %s ADD COLUMN IF NOT EXISTS %s TEXT`, quoteIdent(table), quoteIdent(col))
		if _, err := tx.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("add column %q to %s: %w", col, table, err)
		}
		s.logger.Info("added dynamic column",
			zap.String("table", table), zap.String("column", col))
	}
	if len(missing) > 0 {
		s.metrics.IncColumnsAdded(table, len(missing))
	}

	sql, args := buildDynamicInsert(table, productID, attrs)
	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	return nil
}

func tableColumns(ctx context.Context, tx pgx.Tx, table string) (map[string]struct{}, error) {
	rows, err := tx.Query(ctx,
		`SELECT column_name FROM information_schema.columns WHERE table_name = $1`, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns := make(map[string]struct{})
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		columns[name] = struct{}{}
	}
	return columns, rows.Err()
}

// missingColumns returns the attribute keys not present in existing, sorted
// so DDL runs in a deterministic order.
func missingColumns(existing map[string]struct{}, attrs map[string]string) []string {
	var missing []string
	for key := range attrs {
		if _, ok := existing[key]; !ok {
			missing = append(missing, key)
		}
	}
	sort.Strings(missing)
	return missing
}

// buildDynamicInsert renders a parameterized insert covering product_id plus
// every attribute value, keys sorted for a stable statement shape.
func buildDynamicInsert(table string, productID int64, attrs map[string]string) (string, []any) {
	keys := make([]string, 0, len(attrs))
	for key := range attrs {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	cols := make([]string, 0, len(keys)+1)
	placeholders := make([]string, 0, len(keys)+1)
	args := make([]any, 0, len(keys)+1)

	cols = append(cols, "product_id")
	placeholders = append(placeholders, "$1")
	args = append(args, productID)

	for i, key := range keys {
		cols = append(cols, quoteIdent(key))
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+2))
		args = append(args, attrs[key])
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(table), strings.Join(cols, ", "), strings.Join(placeholders, ", "))
	return sql, args
}

// quoteIdent makes a free-form attribute key safe to use as a SQL identifier.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
