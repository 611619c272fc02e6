package configpkg

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()

	dir := t.TempDir()

	err := os.WriteFile(filepath.Join(dir, "app.env"), []byte(content), 0o600)
	require.NoError(t, err)

	return dir
}

func TestLoad(t *testing.T) {
	dir := writeEnvFile(t, `DB_DRIVER=memory
DB_SOURCE=
SERVER_ADDRESS=0.0.0.0:8080
TOKEN_SYMMETRIC_KEY=12345678901234567890123456789012
ACCESS_TOKEN_DURATION=15m
MIGRATE_ON_START=true
ADMIN_API_KEY=admin
GO_ENV=test
`)

	t.Setenv("SERVER_ADDRESS", "127.0.0.1:9999")

	c, err := Load(dir)
	require.NoError(t, err)

	require.Equal(t, DriverMemory, c.DBDriver)
	require.Equal(t, "127.0.0.1:9999", c.ServerAddress)
	require.Equal(t, 15*time.Minute, c.AccessTokenDuration)
	require.Equal(t, 24*time.Hour, c.RefreshTokenDuration)
	require.Equal(t, TokenPaseto, c.TokenKind)
	require.True(t, c.MigrateOnStart)
	require.Equal(t, "admin", c.AdminAPIKey)
	require.Equal(t, "test", c.Environement)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(t.TempDir())
	require.Error(t, err)
}
