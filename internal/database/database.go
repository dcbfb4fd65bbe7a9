package database

import (
	"context"
	"fmt"
	"strings"

	"sponsorhub-backend/internal/domain"
	"sponsorhub-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open opens a GORM DB from DSN (Postgres pooler URL).
// PreferSimpleProtocol disables prepared statement caching to avoid 42P05
// ("prepared statement already exists") when using connection poolers (e.g. PgBouncer, Supabase, Render).
func Open(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
}

// AutoMigrate runs migrations for all persisted models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&domain.Sponsor{},
		&domain.Deliverable{},
		&domain.Proof{},
	)
}

const maxTxAttempts = 3

// Transact runs fn in a transaction, retrying a bounded number of times when
// the store reports a conflicting concurrent write. Exhausted retries surface
// as domain.ErrTransactionConflict; every other error passes through as-is so
// callers can keep their typed failures.
func Transact(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	var err error
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		err = db.WithContext(ctx).Transaction(fn)
		if err == nil || !isConflict(err) {
			return err
		}
	}
	return fmt.Errorf("%w: %v", domain.ErrTransactionConflict, err)
}

func isConflict(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "could not serialize") ||
		strings.Contains(msg, "deadlock detected") ||
		strings.Contains(msg, "database is locked")
}
