// internal/common/database/postgres.go
package database

import (
	"context"
	"database/sql"
	"fmt"

	"bluemedix-workflow/internal/common/config"

	_ "github.com/lib/pq"
)

// Postgres is the pool behind the run and step tables.
type Postgres struct {
	DB     *sql.DB
	target string
}

func NewPostgres(cfg config.PostgresConfig) (*Postgres, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(connLifetime)

	return &Postgres{DB: db, target: fmt.Sprintf("%s:%d/%s", cfg.Host, cfg.Port, cfg.Database)}, nil
}

func (p *Postgres) Kind() string { return "postgres" }

func (p *Postgres) Ping(ctx context.Context) error {
	if err := p.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("postgres at %s unreachable: %w", p.target, err)
	}
	return nil
}

func (p *Postgres) Close() error {
	return p.DB.Close()
}
