package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strings"
)

//go:embed schema_mysql.sql schema_postgres.sql
var schemas embed.FS

// Schema returns the DDL for a driver.
func Schema(driver string) (string, error) {
	name := ""
	switch driver {
	case "mysql":
		name = "schema_mysql.sql"
	case "pgx":
		name = "schema_postgres.sql"
	default:
		return "", fmt.Errorf("no schema for driver %q", driver)
	}
	b, err := schemas.ReadFile(name)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Statements splits a schema into individual statements.  Comment lines
// are dropped; statements are separated by ';' at the end of a line.
func Statements(schema string) []string {
	var (
		out []string
		cur strings.Builder
	)
	for _, line := range strings.Split(schema, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		cur.WriteString(line)
		cur.WriteByte('\n')
		if strings.HasSuffix(trimmed, ";") {
			stmt := strings.TrimSuffix(strings.TrimSpace(cur.String()), ";")
			out = append(out, stmt)
			cur.Reset()
		}
	}
	if rest := strings.TrimSpace(cur.String()); rest != "" {
		out = append(out, rest)
	}
	return out
}

// Migrate creates every table that does not exist yet.  All statements
// are idempotent so it is safe to run on each start.
func Migrate(ctx context.Context, db *sql.DB, driver string) error {
	schema, err := Schema(driver)
	if err != nil {
		return err
	}
	for i, stmt := range Statements(schema) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate statement %d: %w", i+1, err)
		}
	}
	return nil
}
