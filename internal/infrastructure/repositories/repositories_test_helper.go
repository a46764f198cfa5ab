package repositories

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err, "open sqlite")
	return db
}

func mustExec(t *testing.T, db *gorm.DB, q string, args ...interface{}) {
	t.Helper()
	require.NoError(t, db.Exec(q, args...).Error, "exec failed: query=%s", q)
}

func createTenantTables(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE tenants (
		id TEXT PRIMARY KEY,
		company_name TEXT NOT NULL,
		company_code TEXT NOT NULL UNIQUE,
		is_active BOOLEAN NOT NULL DEFAULT true,
		created_at DATETIME,
		updated_at DATETIME
	);`)
	mustExec(t, db, `CREATE TABLE api_keys (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL UNIQUE,
		key_prefix TEXT NOT NULL,
		key_hash TEXT NOT NULL UNIQUE,
		description TEXT,
		is_active BOOLEAN NOT NULL DEFAULT true,
		created_at DATETIME,
		updated_at DATETIME
	);`)
	mustExec(t, db, `CREATE TABLE terminals (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		secret_encrypted TEXT NOT NULL,
		secret_hash TEXT NOT NULL UNIQUE,
		secret_identifier TEXT,
		is_active BOOLEAN NOT NULL DEFAULT true,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createTransactionLogTables(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE transaction_request_logs (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		type TEXT NOT NULL,
		payload TEXT,
		order_id TEXT,
		raw_content TEXT,
		created_at DATETIME
	);`)
	mustExec(t, db, `CREATE TABLE transaction_response_logs (
		id TEXT PRIMARY KEY,
		request_id TEXT NOT NULL REFERENCES transaction_request_logs(id),
		status TEXT NOT NULL,
		message TEXT,
		transaction_id TEXT,
		raw_response TEXT,
		created_at DATETIME
	);`)
}
