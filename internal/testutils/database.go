package testutils

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"shelfmark/db"
	"shelfmark/internal/config"
)

func SetupTestDatabase(t *testing.T) (*sql.DB, func()) {
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "test.db")

	testDB, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_timeout=10000&_foreign_keys=on")
	require.NoError(t, err)

	err = db.InitializeSchema(testDB)
	require.NoError(t, err)

	cleanup := func() {
		testDB.Close()
		os.RemoveAll(tempDir)
	}

	return testDB, cleanup
}

func SetupTestRepositoryFactory(t *testing.T) (*db.RepositoryFactory, func()) {
	testDB, cleanup := SetupTestDatabase(t)
	factory := db.NewRepositoryFactory(testDB, nil)
	return factory, cleanup
}

func GetTestConfig() *config.Config {
	return &config.Config{
		HTTPAddr:        ":0",
		SessionSecret:   "test_session_secret_key",
		StorageDriver:   config.SQLite,
		SQLitePath:      ":memory:",
		LogLevel:        zapcore.DebugLevel,
		IsProduction:    false,
		ShutdownTimeout: 5 * time.Second,
	}
}
