// Package integrationtest provides db helpers used in integration tests.
package integrationtest

import (
	"context"
	"database/sql"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-petr/pet-ledger/cmd/httpserver"
	"github.com/go-petr/pet-ledger/db"
	"github.com/go-petr/pet-ledger/internal/middleware"
	"github.com/go-petr/pet-ledger/pkg/configpkg"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
	"github.com/rs/zerolog"
)

// LoadConfig reads configs/app.env relative to a package two levels below the root.
func LoadConfig(t *testing.T) configpkg.Config {
	t.Helper()

	config, err := configpkg.Load("../../configs")
	if err != nil {
		t.Fatalf(`configpkg.Load("../../configs") returned error: %v`, err)
	}

	return config
}

// SetupServer returns test server that cleans up database after each integration test.
func SetupServer(t *testing.T) *httpserver.Server {
	t.Helper()

	config := LoadConfig(t)
	config.MigrateOnStart = true

	zerolog.SetGlobalLevel(zerolog.FatalLevel)

	logger := middleware.CreateLogger(config)

	gin.SetMode(gin.ReleaseMode)

	server, err := httpserver.New(context.Background(), config, logger)
	if err != nil {
		t.Fatalf(`httpserver.New(ctx, config, logger) returned error: %v`, err)
	}

	t.Cleanup(func() {
		Flush(t, server.DB)

		if err := server.Close(); err != nil {
			t.Fatalf("server cleanup failed. err: %v", err)
		}
	})

	return server
}

// Flush flushes all db tables except the migration version without droping.
func Flush(t *testing.T, conn *sql.DB) {
	t.Helper()

	var tables string

	const query = `
	SELECT string_agg(table_name, ', ')
	FROM information_schema.tables
	WHERE table_schema = 'public' AND table_name <> 'schema_migrations';`

	row := conn.QueryRow(query)

	err := row.Scan(&tables)
	if err != nil {
		t.Fatalf("db cleanup failed. err: %v", err)
	}

	if _, err := conn.Exec(`TRUNCATE TABLE ` + tables + " CASCADE"); err != nil {
		t.Fatalf("db cleanup failed. err: %v", err)
	}
}

// SetupDB connects to the configured database, migrates it and flushes it
// once the test is done.
func SetupDB(t *testing.T) *sql.DB {
	t.Helper()

	config := LoadConfig(t)

	conn, err := dbpkg.Setup(config.DBDriver, config.DBSource)
	if err != nil {
		t.Fatalf("db initialization failed. err: %v", err)
	}

	if err := db.Migrate(conn); err != nil {
		t.Fatalf("db migration failed. err: %v", err)
	}

	t.Cleanup(func() {
		Flush(t, conn)

		if err := conn.Close(); err != nil {
			t.Fatalf("db cleanup failed. err: %v", err)
		}
	})

	return conn
}
