package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"IMA_BACK-END/internal/config"
)

// PoolConfig turns application configuration into a pgxpool configuration
func PoolConfig(cfg *config.Config) (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	poolCfg.ConnConfig.RuntimeParams["application_name"] = cfg.App.Name
	poolCfg.MinConns = cfg.Database.MinConns
	poolCfg.MaxConns = cfg.Database.MaxConns
	poolCfg.MaxConnLifetime = cfg.Database.MaxLifetime
	if cfg.Database.ConnTimeout > 0 {
		poolCfg.ConnConfig.ConnectTimeout = cfg.Database.ConnTimeout
	}

	return poolCfg, nil
}

// NewPool creates the shared connection pool. Connections are established
// lazily, so an unreachable database does not fail here.
func NewPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolCfg, err := PoolConfig(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	return pool, nil
}
