package database

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jmoiron/sqlx"
)

//go:embed schema.sql
var schema string

// Schema returns the DDL for the engine tables.
func Schema() string {
	return schema
}

// Migrate applies the embedded schema. Statements are idempotent.
func Migrate(ctx context.Context, db sqlx.ExecerContext) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
