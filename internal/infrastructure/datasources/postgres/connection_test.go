package postgres

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"luxe-estates.backend/internal/config"
)

func TestDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.DatabaseConfig
		want string
	}{
		{
			name: "plain values",
			cfg:  config.DatabaseConfig{Host: "db", Port: 5432, User: "luxe", Password: "secret", DBName: "estates", SSLMode: "require"},
			want: "host=db port=5432 user=luxe password=secret dbname=estates sslmode=require connect_timeout=10 application_name=luxe-estates-migrate",
		},
		{
			name: "password needs quoting",
			cfg:  config.DatabaseConfig{Host: "db", Port: 5432, User: "luxe", Password: `it's a \secret`, DBName: "estates", SSLMode: "disable"},
			want: `host=db port=5432 user=luxe password='it\'s a \\secret' dbname=estates sslmode=disable connect_timeout=10 application_name=luxe-estates-migrate`,
		},
		{
			name: "empty password and sslmode",
			cfg:  config.DatabaseConfig{Host: "localhost", Port: 5433, User: "postgres", DBName: "estates"},
			want: "host=localhost port=5433 user=postgres dbname=estates sslmode=disable connect_timeout=10 application_name=luxe-estates-migrate",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DSN(tt.cfg))
		})
	}
}

func TestNewConnection(t *testing.T) {
	origOpen := sqlOpen
	origPing := dbPing
	t.Cleanup(func() {
		sqlOpen = origOpen
		dbPing = origPing
	})

	cfg := config.DatabaseConfig{Host: "db", Port: 5432, User: "luxe", Password: "p w", DBName: "estates"}

	var gotDriver, gotDSN string
	sqlOpen = func(driver, dsn string) (*sql.DB, error) {
		gotDriver, gotDSN = driver, dsn
		return nil, errors.New("open failed")
	}
	_, err := NewConnection(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open database")
	assert.Equal(t, "postgres", gotDriver)
	assert.Equal(t, DSN(cfg), gotDSN)

	realDB, openErr := origOpen("postgres", DSN(cfg))
	require.NoError(t, openErr)
	t.Cleanup(func() { _ = realDB.Close() })
	sqlOpen = func(_, _ string) (*sql.DB, error) { return realDB, nil }

	dbPing = func(*sql.DB) error { return errors.New("connection refused") }
	_, err = NewConnection(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to ping database")

	realDB, openErr = origOpen("postgres", DSN(cfg))
	require.NoError(t, openErr)
	t.Cleanup(func() { _ = realDB.Close() })
	dbPing = func(*sql.DB) error { return nil }

	db, err := NewConnection(cfg)
	require.NoError(t, err)
	require.NotNil(t, db)
	assert.Equal(t, 1, db.Stats().MaxOpenConnections)
}
