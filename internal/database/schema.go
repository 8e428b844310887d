package database

import (
	"context"
	"fmt"

	"reachmesh-bknd/internal/models"

	"github.com/uptrace/bun"
)

// tables in dependency order
var tables = []any{
	(*models.User)(nil),
	(*models.RefreshToken)(nil),
	(*models.Profile)(nil),
	(*models.BusinessType)(nil),
	(*models.ProfessionType)(nil),
	(*models.Business)(nil),
	(*models.Professional)(nil),
	(*models.ProductCategory)(nil),
	(*models.Product)(nil),
	(*models.Post)(nil),
	(*models.PostLike)(nil),
	(*models.PostSave)(nil),
	(*models.SavedItem)(nil),
	(*models.Message)(nil),
	(*models.Notification)(nil),
	(*models.Plan)(nil),
}

// EnsureSchema creates missing tables. It never alters existing ones.
func EnsureSchema(ctx context.Context, db *bun.DB) error {
	if _, err := db.ExecContext(ctx, `CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`); err != nil {
		return fmt.Errorf("enable uuid-ossp: %w", err)
	}
	for _, m := range tables {
		if _, err := db.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table for %T: %w", m, err)
		}
	}

	indexes := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS users_email_key ON users (lower(email))`,
		`CREATE INDEX IF NOT EXISTS businesses_user_idx ON businesses (user_id)`,
		`CREATE INDEX IF NOT EXISTS professionals_user_idx ON professionals (user_id)`,
		`CREATE INDEX IF NOT EXISTS posts_created_idx ON posts (created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS messages_recipient_idx ON messages (recipient_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS notifications_user_idx ON notifications (user_id, created_at DESC)`,
	}
	for _, stmt := range indexes {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}
