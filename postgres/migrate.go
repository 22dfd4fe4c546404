package postgres

import (
	"fmt"
	"time"

	"github.com/beconnected/beconnected"
	"gorm.io/gorm"
)

// Migration is used to hold the database key and function for creating the migration.
type Migration struct {
	Executor func(*gorm.DB) error
	Key      string
}

func (m Migration) execute(db *gorm.DB) error {
	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	if err := m.Executor(tx); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Exec(`INSERT INTO migrations (key, ran_at) VALUES (?, ?)`, m.Key, time.Now().Unix()).Error; err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}

// Migrations lists every schema change the web app needs, oldest first.
var Migrations = []Migration{
	{
		Key: "2026-10-01-create-users",
		Executor: func(tx *gorm.DB) error {
			return tx.Exec(`
				CREATE TABLE users (
					id BIGSERIAL PRIMARY KEY,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					deleted_at TIMESTAMPTZ,
					access_state TEXT NOT NULL DEFAULT 'granted',
					email TEXT NOT NULL,
					first_name TEXT NOT NULL DEFAULT '',
					last_name TEXT NOT NULL DEFAULT '',
					password_hash BYTEA,
					username TEXT NOT NULL
				)
			`).Error
		},
	},
	{
		Key: "2026-10-01-users-unique-idx",
		Executor: func(tx *gorm.DB) error {
			if err := tx.Exec(`CREATE UNIQUE INDEX users_email_idx ON users (LOWER(email))`).Error; err != nil {
				return err
			}

			return tx.Exec(`CREATE UNIQUE INDEX users_username_idx ON users (LOWER(username))`).Error
		},
	},
}

// MigrateUp runs, each in its own transaction, the migrations not yet recorded
// in the migrations table of schema.
func MigrateUp(db *gorm.DB, schema string, migrations []Migration) error {
	if err := db.Exec(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schema)).Error; err != nil {
		return fmt.Errorf("%w: creating %s schema: %s", beconnected.ErrUnexpected, schema, err)
	}

	err := db.Exec(`
		CREATE TABLE IF NOT EXISTS migrations (
			id SERIAL PRIMARY KEY,
			ran_at bigint,
			key text,
			CONSTRAINT migrations_key UNIQUE (key)
		)
	`).Error
	if err != nil {
		return fmt.Errorf("%w: creating migrations table: %s", beconnected.ErrUnexpected, err)
	}

	var ran []string
	if err := db.Table("migrations").Pluck("key", &ran).Error; err != nil {
		return fmt.Errorf("%w: fetching ran migrations: %s", beconnected.ErrUnexpected, err)
	}

	for _, m := range pending(migrations, ran) {
		if err := m.execute(db); err != nil {
			return fmt.Errorf("%w: migration %s: %s", beconnected.ErrUnexpected, m.Key, err)
		}
	}

	return nil
}

// pending filters all down to those whose key is not in ran, preserving order.
func pending(all []Migration, ran []string) []Migration {
	seen := make(map[string]bool, len(ran))
	for _, k := range ran {
		seen[k] = true
	}

	toRun := make([]Migration, 0, len(all))
	for _, m := range all {
		if !seen[m.Key] {
			toRun = append(toRun, m)
		}
	}

	return toRun
}
