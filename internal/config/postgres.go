package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sethvargo/go-envconfig"

	"github.com/devstats/gha2db/internal/env"
)

// Postgres holds the connection parameters of the gha2db database.
type Postgres struct {
	Host string `env:"PG_HOST, default=localhost"`
	Port string `env:"PG_PORT, default=5432"`
	DB   string `env:"PG_DB, default=gha"`
	User string `env:"PG_USER, default=gha_admin"`
	Pass Secret `env:"PG_PASS, default=password"`
	SSL  string `env:"PG_SSL, default=disable"`
}

func resolvePostgres(r env.Reader) (Postgres, error) {
	var pg Postgres
	err := envconfig.ProcessWith(context.Background(), &envconfig.Config{
		Target:   &pg,
		Lookuper: r,
	})
	if err != nil {
		return Postgres{}, fmt.Errorf("resolve postgres settings: %w", err)
	}
	return pg, nil
}

// DSN renders the parameters as a libpq keyword/value string.
func (p Postgres) DSN() string {
	pairs := []struct{ key, value string }{
		{"host", p.Host},
		{"port", p.Port},
		{"dbname", p.DB},
		{"user", p.User},
		{"password", string(p.Pass)},
		{"sslmode", p.SSL},
	}
	parts := make([]string, 0, len(pairs))
	for _, kv := range pairs {
		parts = append(parts, kv.key+"="+quoteDSN(kv.value))
	}
	return strings.Join(parts, " ")
}

func quoteDSN(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

// ConnConfig parses the connection settings without connecting.
func (c *Ctx) ConnConfig() (*pgx.ConnConfig, error) {
	cfg, err := pgx.ParseConfig(c.Postgres.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	return cfg, nil
}

// PoolConfig parses the connection settings into a pool configuration sized
// for the execution mode: one connection in single threaded mode, one per
// CPU otherwise.
func (c *Ctx) PoolConfig() (*pgxpool.Config, error) {
	cfg, err := pgxpool.ParseConfig(c.Postgres.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse postgres pool config: %w", err)
	}
	conns := c.CPUs()
	if c.ST {
		conns = 1
	}
	cfg.MaxConns = int32(conns)
	if cfg.MinConns > cfg.MaxConns {
		cfg.MinConns = cfg.MaxConns
	}
	return cfg, nil
}
