package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
)

type Config struct {
	DSN            string
	MaxConns       int
	Timeout        time.Duration
	TimeZone       string
	ClientEncoding string
}

// Connect opens a *sql.DB and verifies connectivity with a ping. TimeZone and
// ClientEncoding are sent as startup parameters, so every pooled connection
// gets them.
func Connect(ctx context.Context, cfg Config) (*sql.DB, error) {
	dsn, err := runtimeDSN(cfg)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	maxConns := cfg.MaxConns
	if maxConns <= 0 {
		maxConns = 5
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns)
	db.SetConnMaxLifetime(30 * time.Minute)

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return db, nil
}

// runtimeDSN returns cfg.DSN in key/value form with the optional runtime
// parameters appended. Later keys win, so these override the DSN's own.
// lib/pq accepts only UTF8 as client_encoding.
func runtimeDSN(cfg Config) (string, error) {
	dsn := cfg.DSN
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		kv, err := pq.ParseURL(dsn)
		if err != nil {
			return "", err
		}
		dsn = kv
	}
	if cfg.TimeZone != "" {
		dsn += " timezone=" + quoteValue(cfg.TimeZone)
	}
	if cfg.ClientEncoding != "" {
		dsn += " client_encoding=" + quoteValue(cfg.ClientEncoding)
	}
	return strings.TrimSpace(dsn), nil
}

var valueEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// quoteValue quotes a key/value connection string value.
func quoteValue(s string) string {
	return "'" + valueEscaper.Replace(s) + "'"
}
