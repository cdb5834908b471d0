// FilePath: internal/repository/sqlstore/sqlstore.baserepo.go
package sqlstore

import (
	"context"
	"database/sql"

	"github.com/animalhaven/feederhub/internal/database"
	"github.com/animalhaven/feederhub/internal/errors"
)

// BaseRepo carries the shared connection handle. Queries are written with `?`
// placeholders and rebound for the active driver, so the same repositories run
// against SQLite and PostgreSQL.
type BaseRepo struct {
	db database.DB
}

func (r *BaseRepo) BeginTx(ctx context.Context) (database.Transaction, error) {
	tx, err := r.db.GetDB().BeginTxx(ctx, nil)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to begin transaction", err)
	}
	return tx, nil
}

func (r *BaseRepo) rebind(query string) string {
	return r.db.GetDB().Rebind(query)
}

func (r *BaseRepo) driver() string {
	return r.db.GetDB().DriverName()
}

// insertReturningID runs a named insert and returns the generated key. lib/pq
// has no LastInsertId, so PostgreSQL goes through RETURNING.
func (r *BaseRepo) insertReturningID(ctx context.Context, query, idColumn string, arg interface{}) (int64, error) {
	db := r.db.GetDB()
	if r.driver() == "postgres" {
		rows, err := db.NamedQueryContext(ctx, query+" RETURNING "+idColumn, arg)
		if err != nil {
			return 0, err
		}
		defer rows.Close()
		var id int64
		if rows.Next() {
			if err := rows.Scan(&id); err != nil {
				return 0, err
			}
		}
		return id, rows.Err()
	}

	result, err := db.NamedExecContext(ctx, query, arg)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (r *BaseRepo) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	result, err := r.db.GetDB().ExecContext(ctx, r.rebind(query), args...)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to execute query", err)
	}
	return result, nil
}

func (r *BaseRepo) Ping(ctx context.Context) error {
	if err := r.db.GetDB().PingContext(ctx); err != nil {
		return errors.NewDatabaseError("failed to ping database", err)
	}
	return nil
}

func (r *BaseRepo) Close() error {
	if err := r.db.GetDB().Close(); err != nil {
		return errors.NewDatabaseError("failed to close database", err)
	}
	return nil
}
