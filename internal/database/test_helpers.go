package database

import (
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	_ "github.com/lib/pq"
)

// setupTestDB creates a throwaway PostgreSQL database for one test and
// returns its connection string. Tests skip when no server is reachable.
func setupTestDB(t *testing.T, testName string) (connStr string, cleanup func()) {
	t.Helper()

	host := getEnvOrDefault("TEST_DB_HOST", "localhost")
	port := getEnvOrDefault("TEST_DB_PORT", "5432")
	user := getEnvOrDefault("TEST_DB_USER", "postgres")
	password := getEnvOrDefault("TEST_DB_PASSWORD", "postgres")

	dbName := fmt.Sprintf("test_%s_%d", testName, time.Now().UnixNano())

	adminConnStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=postgres sslmode=disable",
		host, port, user, password)

	adminDB, err := sql.Open("postgres", adminConnStr)
	if err != nil {
		t.Skipf("Could not connect to PostgreSQL for testing: %v (set TEST_DB_* env vars if needed)", err)
		return "", func() {}
	}
	defer adminDB.Close()

	if err := adminDB.Ping(); err != nil {
		t.Skipf("Could not ping PostgreSQL for testing: %v", err)
		return "", func() {}
	}

	if _, err := adminDB.Exec(fmt.Sprintf("CREATE DATABASE %s", dbName)); err != nil {
		t.Skipf("Could not create test database: %v", err)
		return "", func() {}
	}

	testConnStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbName)

	cleanup = func() {
		adminDB, err := sql.Open("postgres", adminConnStr)
		if err != nil {
			return
		}
		defer adminDB.Close()

		adminDB.Exec(fmt.Sprintf("SELECT pg_terminate_backend(pg_stat_activity.pid) FROM pg_stat_activity WHERE pg_stat_activity.datname = '%s'", dbName))
		adminDB.Exec(fmt.Sprintf("DROP DATABASE IF EXISTS %s", dbName))
	}

	return testConnStr, cleanup
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
