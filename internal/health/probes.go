package health

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
)

// Names of the built-in probes. They double as detail keys in responses.
const (
	ServerProbeName   = "server"
	DatabaseProbeName = "database"
	RedisProbeName    = "redis"
)

// ServerProbe reports process liveness. It never touches a dependency.
type ServerProbe struct{}

// NewServerProbe creates a liveness probe.
func NewServerProbe() *ServerProbe {
	return &ServerProbe{}
}

func (ServerProbe) Name() string { return ServerProbeName }

func (ServerProbe) Check(context.Context) (bool, error) { return true, nil }

// RowQuerier is the part of *pgxpool.Pool the database probe needs.
// QueryRow borrows a pooled connection and returns it once the row is scanned.
type RowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DatabaseProbe runs a trivial read query against the relational store.
type DatabaseProbe struct {
	db RowQuerier
}

// NewDatabaseProbe creates a probe for db.
func NewDatabaseProbe(db RowQuerier) *DatabaseProbe {
	return &DatabaseProbe{db: db}
}

func (p *DatabaseProbe) Name() string { return DatabaseProbeName }

// Check runs SELECT 1. A different scalar reports the database unhealthy.
func (p *DatabaseProbe) Check(ctx context.Context) (bool, error) {
	var one int
	if err := p.db.QueryRow(ctx, "SELECT 1").Scan(&one); err != nil {
		return false, fmt.Errorf("database query: %w", err)
	}
	return one == 1, nil
}

// Pinger is the part of a go-redis client the cache probe needs.
type Pinger interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

// RedisProbe sends PING to the cache.
type RedisProbe struct {
	client Pinger
}

// NewRedisProbe creates a probe for client.
func NewRedisProbe(client Pinger) *RedisProbe {
	return &RedisProbe{client: client}
}

func (p *RedisProbe) Name() string { return RedisProbeName }

// Check reports true on PONG and false on any other reply.
func (p *RedisProbe) Check(ctx context.Context) (bool, error) {
	pong, err := p.client.Ping(ctx).Result()
	if err != nil {
		return false, fmt.Errorf("redis ping: %w", err)
	}
	return pong == "PONG", nil
}
