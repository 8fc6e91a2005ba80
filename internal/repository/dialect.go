package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
)

// Dialect captures the few places where MySQL and PostgreSQL differ.
// Queries are written with '?' placeholders and MySQL-compatible syntax
// and rebound for PostgreSQL.
type Dialect struct {
	Name string
}

var (
	MySQL    = Dialect{Name: "mysql"}
	Postgres = Dialect{Name: "pgx"}
)

// DialectFor maps a database/sql driver name to its dialect.
func DialectFor(driver string) (Dialect, error) {
	switch strings.ToLower(driver) {
	case "mysql":
		return MySQL, nil
	case "pgx", "postgres", "postgresql":
		return Postgres, nil
	}
	return Dialect{}, fmt.Errorf("unsupported database driver %q", driver)
}

func (d Dialect) postgres() bool { return d.Name == Postgres.Name }

// Rebind rewrites '?' placeholders to $1..$n for PostgreSQL.
func (d Dialect) Rebind(q string) string {
	if !d.postgres() {
		return q
	}
	var b strings.Builder
	b.Grow(len(q) + 8)
	n := 0
	for i := 0; i < len(q); i++ {
		if q[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(q[i])
	}
	return b.String()
}

// EndDate returns an expression for the last occupied day of a request
// given its start date and duration columns.
func (d Dialect) EndDate(start, days string) string {
	if d.postgres() {
		return fmt.Sprintf("(%s + (%s - 1))", start, days)
	}
	return fmt.Sprintf("DATE_ADD(%s, INTERVAL (%s - 1) DAY)", start, days)
}

// insert runs an INSERT and returns the generated id.
func (d Dialect) insert(ctx context.Context, q querier, query string, args ...any) (uint64, error) {
	if d.postgres() {
		var id uint64
		if err := q.QueryRowContext(ctx, d.Rebind(query+" RETURNING id"), args...).Scan(&id); err != nil {
			return 0, err
		}
		return id, nil
	}
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// isDuplicate reports a unique key violation.
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1062
	}
	var pe *pgconn.PgError
	if errors.As(err, &pe) {
		return pe.Code == "23505"
	}
	return false
}
