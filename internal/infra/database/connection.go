// internal/infra/database/connection.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	dbout "modaorganica/internal/adapters/out/db"
	dbcommon "modaorganica/internal/adapters/out/db/common"
)

type DB struct {
	Client  *sql.DB
	Dialect dbcommon.Dialect
}

// Open connects to PostgreSQL (lib/pq) or SQLite (modernc) and applies the schema.
// For sqlite, dsn is a file path or ":memory:".
func Open(ctx context.Context, dialect dbcommon.Dialect, dsn string, logger *zap.Logger) (*DB, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	log := logger.Named("db")

	driver := "sqlite"
	if dialect == dbcommon.DialectPostgres {
		driver = "postgres"
	} else {
		dsn = sqliteDSN(dsn)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open DB: %w", err)
	}

	// Connection pool tuning
	if dialect == dbcommon.DialectPostgres {
		db.SetConnMaxLifetime(30 * time.Minute)
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
	} else {
		// sqlite: 書き込みは単一コネクションで直列化
		db.SetMaxOpenConns(1)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}

	if err := dbout.Migrate(ctx, db, dialect); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate DB: %w", err)
	}

	log.Info("connected", zap.String("dialect", string(dialect)))
	return &DB{Client: db, Dialect: dialect}, nil
}

func sqliteDSN(path string) string {
	if path == "" || path == ":memory:" {
		return "file::memory:?_pragma=foreign_keys(1)"
	}
	return "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

// Graceful shutdown
func (d *DB) Close() error {
	if d == nil || d.Client == nil {
		return nil
	}
	return d.Client.Close()
}
