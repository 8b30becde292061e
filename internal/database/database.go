package database

import (
	"context"
	_ "embed"
	"log"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/juju/errors"
)

// Schema is the DDL of the tables the API reads and writes. The production
// database is owned by the scraper deployment; this copy is applied by the
// integration tests and by DB_APPLY_SCHEMA=true on a fresh database.
//
//go:embed schema.sql
var Schema string

// Config describes how to reach PostgreSQL.
type Config struct {
	URL      string
	Host     string
	Port     string
	Name     string
	User     string
	Password string

	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	ConnectTimeout  time.Duration
}

// DSN returns URL when set, otherwise builds a URL-encoded postgres DSN
// from the individual fields.
func (c Config) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   c.Host + ":" + c.Port,
		Path:   "/" + c.Name,
	}
	q := u.Query()
	q.Set("sslmode", "disable")
	u.RawQuery = q.Encode()
	return u.String()
}

// OpenPool creates the shared connection pool and verifies it with a ping.
func OpenPool(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, errors.Annotate(err, "parsing database DSN")
	}
	return openWithConfig(ctx, poolCfg, cfg)
}

func openWithConfig(ctx context.Context, poolCfg *pgxpool.Config, cfg Config) (*pgxpool.Pool, error) {
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	} else {
		poolCfg.MaxConns = 25
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	} else {
		poolCfg.MaxConnLifetime = 5 * time.Minute
	}
	if cfg.ConnectTimeout > 0 {
		poolCfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, errors.Annotate(err, "creating database pool")
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Annotatef(err, "connecting to database at %s", poolCfg.ConnConfig.Host)
	}

	log.Printf("[database] Connection pool established (host: %s, max conns: %d)", poolCfg.ConnConfig.Host, poolCfg.MaxConns)
	return pool, nil
}

// OpenPoolInSchema is OpenPool with every connection's search_path pinned
// to schema. Tests use it to isolate their tables.
func OpenPoolInSchema(ctx context.Context, cfg Config, schema string) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, errors.Annotate(err, "parsing database DSN")
	}
	poolCfg.ConnConfig.RuntimeParams["search_path"] = schema
	return openWithConfig(ctx, poolCfg, cfg)
}

// ApplySchema creates the tables if they do not exist yet.
func ApplySchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return errors.Annotate(err, "applying schema")
	}
	return nil
}
