package repository

import (
	"context"

	"github.com/iliyamo/venue-booking/internal/clock"
	"github.com/iliyamo/venue-booking/internal/database"
)

// Open returns the store for p.Driver.  The SQL drivers connect and, when
// migrate is set, apply the schema first.  "memory" ignores the rest of p.
func Open(ctx context.Context, p database.Params, clk clock.Clock, migrate bool) (Store, error) {
	if p.Driver == "memory" {
		return NewMemoryStore(clk), nil
	}
	db, err := database.Open(p)
	if err != nil {
		return nil, err
	}
	if migrate {
		if err := database.Migrate(ctx, db, p.Driver); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	st, err := NewSQLStore(db, p.Driver)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return st, nil
}
