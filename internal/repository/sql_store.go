package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// querier is satisfied by both *sql.DB and *sql.Tx so every repository
// can run inside or outside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// sqlBase binds a querier to a dialect.
type sqlBase struct {
	q querier
	d Dialect
}

func (b sqlBase) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return b.q.ExecContext(ctx, b.d.Rebind(query), args...)
}

func (b sqlBase) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return b.q.QueryContext(ctx, b.d.Rebind(query), args...)
}

func (b sqlBase) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return b.q.QueryRowContext(ctx, b.d.Rebind(query), args...)
}

// execOne runs a statement that must touch exactly one row.
func (b sqlBase) execOne(ctx context.Context, query string, args ...any) error {
	res, err := b.exec(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// notFound converts sql.ErrNoRows to ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// placeholders returns "?,?,?" for n values.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// SQLStore implements Store on top of database/sql for MySQL and
// PostgreSQL.
type SQLStore struct {
	db *sql.DB
	d  Dialect
	sqlRepos
}

// sqlRepos builds repositories over one querier.
type sqlRepos struct{ b sqlBase }

func (r sqlRepos) Venues() VenueRepository               { return &VenueRepo{r.b} }
func (r sqlRepos) Users() UserRepository                 { return &UserRepo{r.b} }
func (r sqlRepos) Requests() RequestRepository           { return &RequestRepo{r.b} }
func (r sqlRepos) Notifications() NotificationRepository { return &NotificationRepo{r.b} }
func (r sqlRepos) Reports() ReportRepository             { return &ReportRepo{r.b} }
func (r sqlRepos) Contacts() ContactRepository           { return &ContactRepo{r.b} }
func (r sqlRepos) Tokens() TokenRepository               { return &TokenRepo{r.b} }

// NewSQLStore wraps an open database.  driver selects the dialect.
func NewSQLStore(db *sql.DB, driver string) (*SQLStore, error) {
	d, err := DialectFor(driver)
	if err != nil {
		return nil, err
	}
	return &SQLStore{db: db, d: d, sqlRepos: sqlRepos{sqlBase{q: db, d: d}}}, nil
}

// DB exposes the underlying handle for migrations and health checks.
func (s *SQLStore) DB() *sql.DB { return s.db }

// InTx runs fn in a READ COMMITTED transaction.  Each statement then
// sees rows committed by transactions that released the row locks it
// waited on, which is what the venue and user locks rely on.
func (s *SQLStore) InTx(ctx context.Context, fn func(tx Repos) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(sqlRepos{sqlBase{q: tx, d: s.d}}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}

func (s *SQLStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *SQLStore) Close() error { return s.db.Close() }
