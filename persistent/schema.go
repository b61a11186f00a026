package persistent

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// CreateSchema creates the profile tables and the partial unique
// indexes backing the one-basic-profile-per-user and the
// (user, app, profile) extended-profile invariants. Soft-deleted rows
// do not participate, so a key can be reused after deletion.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	models := []interface{}{
		(*Record)(nil),
		(*ActivityLog)(nil),
	}
	for _, model := range models {
		_, err := db.NewCreateTable().
			IfNotExists().
			Model(model).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}

	indexes := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS profile_record_basic_user_key
			ON profile_record (user_id)
			WHERE type = 'basic' AND deleted_at IS NULL`,
		`CREATE UNIQUE INDEX IF NOT EXISTS profile_record_extended_key
			ON profile_record (user_id, app_id, profile_id)
			WHERE type = 'extended' AND deleted_at IS NULL`,
		`CREATE INDEX IF NOT EXISTS profile_record_social_id
			ON profile_record (social_id)
			WHERE deleted_at IS NULL`,
	}
	for _, ddl := range indexes {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}
