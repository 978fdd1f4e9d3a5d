package repositories

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "open sqlite")
	return db
}

func mustExec(t *testing.T, db *gorm.DB, q string, args ...interface{}) {
	t.Helper()
	require.NoError(t, db.Exec(q, args...).Error, "exec failed: query=%s", q)
}

func createPropertyTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE properties (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT,
		location TEXT NOT NULL,
		category TEXT NOT NULL,
		price TEXT,
		currency TEXT NOT NULL DEFAULT 'USD',
		bedrooms INTEGER NOT NULL DEFAULT 0,
		bathrooms INTEGER NOT NULL DEFAULT 0,
		garage INTEGER NOT NULL DEFAULT 0,
		parking INTEGER NOT NULL DEFAULT 0,
		area REAL NOT NULL DEFAULT 0,
		images TEXT,
		external_links TEXT,
		featured BOOLEAN NOT NULL DEFAULT 0,
		exclusive BOOLEAN NOT NULL DEFAULT 0,
		investment_opportunity BOOLEAN NOT NULL DEFAULT 0,
		listing_type TEXT NOT NULL DEFAULT 'sale',
		rental_period TEXT,
		security_deposit TEXT,
		roi_percentage REAL,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	);`)
}

func createProfileTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE profiles (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		full_name TEXT NOT NULL,
		password_hash TEXT,
		auth_provider TEXT NOT NULL DEFAULT 'password',
		membership_tier TEXT NOT NULL DEFAULT 'essential',
		account_status TEXT NOT NULL DEFAULT 'pending',
		payment_status TEXT NOT NULL DEFAULT 'pending',
		payment_verified_at DATETIME,
		notifications_enabled BOOLEAN NOT NULL DEFAULT 1,
		role TEXT NOT NULL DEFAULT 'user',
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	);`)
}
