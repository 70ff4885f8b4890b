// Copyright (c) 2025 Neomantra Corp

package export

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2"
)

// DuckDB wraps an in-memory DuckDB connection with a single view, "rows",
// backed by a Parquet file written by WriteParquet. It lets a caller run
// ad-hoc SQL over a decoded object graph without standing up a server.
type DuckDB struct {
	db *sql.DB
}

// OpenDuckDB opens an in-memory DuckDB database and creates a view named
// "rows" over parquetPath. Extension autoloading and remote filesystem
// access are disabled and locked, since parquetPath is the only file this
// connection is meant to ever touch.
func OpenDuckDB(parquetPath string) (*DuckDB, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("export: opening duckdb: %w", err)
	}
	for _, stmt := range []string{
		"SET autoinstall_known_extensions = false",
		"SET autoload_known_extensions = false",
		"SET allow_community_extensions = false",
		"SET disabled_filesystems = 'HTTPFileSystem'",
		"SET lock_configuration = true",
	} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("export: configuring duckdb (%s): %w", stmt, err)
		}
	}
	view := fmt.Sprintf(`CREATE VIEW rows AS SELECT * FROM read_parquet(%s)`, sqlLiteral(parquetPath))
	if _, err := db.Exec(view); err != nil {
		db.Close()
		return nil, fmt.Errorf("export: creating view over %s: %w", parquetPath, err)
	}
	return &DuckDB{db: db}, nil
}

// Close releases the underlying connection.
func (d *DuckDB) Close() error {
	return d.db.Close()
}

// QueryCSV runs userSQL against the "rows" view and renders the result as
// CSV, capped at 10000 rows so a runaway query can't exhaust memory.
func (d *DuckDB) QueryCSV(userSQL string) (string, error) {
	wrapped := fmt.Sprintf("SELECT * FROM (%s) LIMIT 10000", userSQL)
	result, err := d.db.Query(wrapped)
	if err != nil {
		return "", err
	}
	defer result.Close()

	columns, err := result.Columns()
	if err != nil {
		return "", err
	}

	var buf strings.Builder
	w := csv.NewWriter(&buf)
	w.Write(columns)
	for result.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := result.Scan(ptrs...); err != nil {
			return "", err
		}
		record := make([]string, len(columns))
		for i, val := range values {
			switch v := val.(type) {
			case nil:
				record[i] = ""
			case []byte:
				record[i] = string(v)
			default:
				record[i] = fmt.Sprintf("%v", v)
			}
		}
		w.Write(record)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// sqlLiteral escapes s for embedding as a SQL string literal.
func sqlLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
