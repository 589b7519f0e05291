package repository

import (
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// target returns exec when the caller supplied a transaction, otherwise db.
func target(db *sqlx.DB, exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return db
}

func expectOneRow(res sql.Result, op string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
