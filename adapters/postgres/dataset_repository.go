package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gonarrate/domain/dataset"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// TablePrefix marks a dataset reference that names a database table
const TablePrefix = "table:"

// DatasetRepository reads whole tables as datasets
type DatasetRepository struct {
	db *sqlx.DB
}

// NewDatasetRepository creates a new dataset repository
func NewDatasetRepository(db *sqlx.DB) *DatasetRepository {
	return &DatasetRepository{db: db}
}

// Connect opens and pings a PostgreSQL connection
func Connect(ctx context.Context, url string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// Supports reports whether ref names a table
func Supports(ref string) bool {
	return strings.HasPrefix(ref, TablePrefix)
}

// Read loads every row of the referenced table, in primary storage order
// unless the reference carries an explicit "?order=column".
func (r *DatasetRepository) Read(ctx context.Context, name, ref string) (*dataset.Dataset, error) {
	query, err := selectQuery(ref)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", ref, err)
	}
	defer rows.Close()

	headers, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", ref, err)
	}

	var cells [][]string
	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", ref, err)
		}
		record := make([]string, len(values))
		for i, v := range values {
			record[i] = cellString(v)
		}
		cells = append(cells, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", ref, err)
	}

	return dataset.FromStringRows(name, ref, headers, cells)
}

// Fingerprint reports the table's row count; a change means the table changed
func (r *DatasetRepository) Fingerprint(ctx context.Context, ref string) (string, error) {
	table, _, err := parseRef(ref)
	if err != nil {
		return "", err
	}
	var n int64
	if err := r.db.GetContext(ctx, &n, "SELECT count(*) FROM "+table); err != nil {
		return "", fmt.Errorf("failed to count %s: %w", ref, err)
	}
	return "rows=" + strconv.FormatInt(n, 10), nil
}

func selectQuery(ref string) (string, error) {
	table, order, err := parseRef(ref)
	if err != nil {
		return "", err
	}
	query := "SELECT * FROM " + table
	if order != "" {
		query += " ORDER BY " + order
	}
	return query, nil
}

// parseRef turns "table:schema.name?order=col" into quoted identifiers
func parseRef(ref string) (table, order string, err error) {
	if !Supports(ref) {
		return "", "", fmt.Errorf("not a table reference: %s", ref)
	}
	body := strings.TrimPrefix(ref, TablePrefix)
	if i := strings.Index(body, "?"); i >= 0 {
		opt := body[i+1:]
		body = body[:i]
		col, ok := strings.CutPrefix(opt, "order=")
		if !ok || col == "" {
			return "", "", fmt.Errorf("unsupported table option %q in %s", opt, ref)
		}
		order = pq.QuoteIdentifier(col)
	}
	if body == "" {
		return "", "", fmt.Errorf("empty table name in %s", ref)
	}
	parts := strings.Split(body, ".")
	for i, p := range parts {
		if p == "" {
			return "", "", fmt.Errorf("malformed table name in %s", ref)
		}
		parts[i] = pq.QuoteIdentifier(p)
	}
	return strings.Join(parts, "."), order, nil
}

func cellString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(t)
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'g', -1, 32)
	case bool:
		if t {
			return "1"
		}
		return "0"
	case time.Time:
		return t.Format(time.RFC3339)
	default:
		return fmt.Sprint(t)
	}
}
