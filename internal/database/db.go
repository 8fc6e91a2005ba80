package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Params identifies the database to connect to.
type Params struct {
	Driver string // mysql or pgx
	User   string
	Pass   string
	Host   string
	Port   string
	Name   string
}

// DSN builds the driver specific connection string.
func (p Params) DSN() (string, error) {
	switch p.Driver {
	case "mysql":
		auth := p.User
		if p.Pass != "" {
			auth = fmt.Sprintf("%s:%s", p.User, p.Pass)
		}
		// parseTime=true -> DATE/DATETIME -> time.Time | loc=UTC keeps times consistent
		// clientFoundRows=true -> RowsAffected counts matched rows, not changed ones
		return fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC&clientFoundRows=true",
			auth, p.Host, p.Port, p.Name), nil
	case "pgx":
		u := url.URL{
			Scheme:   "postgres",
			Host:     p.Host + ":" + p.Port,
			Path:     "/" + p.Name,
			RawQuery: "sslmode=disable&timezone=UTC",
		}
		if p.Pass != "" {
			u.User = url.UserPassword(p.User, p.Pass)
		} else {
			u.User = url.User(p.User)
		}
		return u.String(), nil
	}
	return "", fmt.Errorf("unsupported database driver %q", p.Driver)
}

// Open connects to MySQL or PostgreSQL and verifies the connection.
func Open(p Params) (*sql.DB, error) {
	dsn, err := p.DSN()
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(p.Driver, dsn)
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
