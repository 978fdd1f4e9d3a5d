package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// Migration is one forward-only schema step
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// Migrations is applied in order at startup. The role column is a required
// schema field; profiles created before it existed default to "user".
var Migrations = []Migration{
	{
		Version: 1,
		Name:    "create_properties",
		SQL: `CREATE TABLE IF NOT EXISTS properties (
			id UUID PRIMARY KEY,
			title VARCHAR(200) NOT NULL,
			description TEXT,
			location VARCHAR(255) NOT NULL,
			category VARCHAR(50) NOT NULL,
			price VARCHAR(100),
			currency VARCHAR(3) NOT NULL DEFAULT 'USD',
			bedrooms INT NOT NULL DEFAULT 0,
			bathrooms INT NOT NULL DEFAULT 0,
			garage INT NOT NULL DEFAULT 0,
			parking INT NOT NULL DEFAULT 0,
			area NUMERIC(12,2) NOT NULL DEFAULT 0,
			images TEXT[],
			external_links TEXT[],
			featured BOOLEAN NOT NULL DEFAULT FALSE,
			exclusive BOOLEAN NOT NULL DEFAULT FALSE,
			investment_opportunity BOOLEAN NOT NULL DEFAULT FALSE,
			listing_type VARCHAR(20) NOT NULL DEFAULT 'sale',
			rental_period VARCHAR(20),
			security_deposit VARCHAR(100),
			roi_percentage NUMERIC(6,2),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			deleted_at TIMESTAMPTZ
		);
		CREATE INDEX IF NOT EXISTS idx_properties_featured ON properties (featured);
		CREATE INDEX IF NOT EXISTS idx_properties_deleted_at ON properties (deleted_at);`,
	},
	{
		Version: 2,
		Name:    "create_profiles",
		SQL: `CREATE TABLE IF NOT EXISTS profiles (
			id UUID PRIMARY KEY,
			email VARCHAR(255) NOT NULL UNIQUE,
			full_name VARCHAR(100) NOT NULL,
			password_hash VARCHAR(255),
			auth_provider VARCHAR(20) NOT NULL DEFAULT 'password',
			membership_tier VARCHAR(20) NOT NULL DEFAULT 'essential',
			account_status VARCHAR(20) NOT NULL DEFAULT 'pending',
			payment_status VARCHAR(20) NOT NULL DEFAULT 'pending',
			payment_verified_at TIMESTAMP,
			notifications_enabled BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			deleted_at TIMESTAMPTZ
		);
		CREATE INDEX IF NOT EXISTS idx_profiles_account_status ON profiles (account_status);
		CREATE INDEX IF NOT EXISTS idx_profiles_deleted_at ON profiles (deleted_at);`,
	},
	{
		Version: 3,
		Name:    "profiles_role_column",
		SQL: `ALTER TABLE profiles ADD COLUMN IF NOT EXISTS role VARCHAR(20) NOT NULL DEFAULT 'user';
		ALTER TABLE profiles DROP CONSTRAINT IF EXISTS profiles_role_check;
		ALTER TABLE profiles ADD CONSTRAINT profiles_role_check CHECK (role IN ('admin', 'user'));`,
	},
}

const createVersionTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
	version INT PRIMARY KEY,
	name VARCHAR(100) NOT NULL,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// Migrate applies every migration newer than the recorded version, each in
// its own transaction. It returns the versions applied.
func Migrate(ctx context.Context, db *sql.DB, migrations []Migration) ([]int, error) {
	if _, err := db.ExecContext(ctx, createVersionTable); err != nil {
		return nil, fmt.Errorf("create schema_migrations: %w", err)
	}

	var current int
	if err := db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current); err != nil {
		return nil, fmt.Errorf("read schema version: %w", err)
	}

	var applied []int
	for _, m := range migrations {
		if m.Version <= current {
			continue
		}
		if err := apply(ctx, db, m); err != nil {
			return applied, err
		}
		applied = append(applied, m.Version)
	}
	return applied, nil
}

func apply(ctx context.Context, db *sql.DB, m Migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("migration %d: begin: %w", m.Version, err)
	}
	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("migration %d (%s): %w", m.Version, m.Name, err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`, m.Version, m.Name); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("migration %d: record: %w", m.Version, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("migration %d: commit: %w", m.Version, err)
	}
	return nil
}
