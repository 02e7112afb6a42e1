package postgres

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/bodega-stock/pkg/config"
)

const (
	defaultMaxConns = 25
	applicationName = "bodega-stock"
)

// NewPool crea el pool de conexiones PostgreSQL a partir de DATABASE_URL o de DB_HOST, DB_PORT, etc.
// Cada conexión registra el codec NUMERIC <-> decimal.Decimal y lleva un lock_timeout igual al
// timeout de transacción, así una fila bloqueada falla en el servidor y no solo por contexto.
func NewPool(ctx context.Context, cfg config.DBConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parse DSN: %w", err)
	}

	// Docker suele no tener IPv6: preferir IPv4 cuando el host lo tiene.
	poolConfig.ConnConfig.DialFunc = dialPreferIPv4

	for k, v := range runtimeParams(cfg) {
		poolConfig.ConnConfig.RuntimeParams[k] = v
	}

	poolConfig.MaxConns = cfg.MaxConns
	if poolConfig.MaxConns <= 0 {
		poolConfig.MaxConns = defaultMaxConns
	}
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	poolConfig.AfterConnect = func(_ context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("crear pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping DB: %w", err)
	}
	return pool, nil
}

// runtimeParams parámetros de sesión de cada conexión.
func runtimeParams(cfg config.DBConfig) map[string]string {
	params := map[string]string{"application_name": applicationName}
	if cfg.TxTimeout > 0 {
		params["lock_timeout"] = strconv.FormatInt(cfg.TxTimeout.Milliseconds(), 10)
	}
	return params
}

func dialPreferIPv4(ctx context.Context, network, addr string) (net.Conn, error) {
	var d net.Dialer
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, err
	}
	if ipv4, ok := lookupIPv4(ctx, host); ok {
		return d.DialContext(ctx, "tcp4", net.JoinHostPort(ipv4, port))
	}
	return d.DialContext(ctx, network, addr)
}

// lookupIPv4 devuelve la primera IPv4 del host (o el host mismo si ya es una IPv4).
func lookupIPv4(ctx context.Context, host string) (string, bool) {
	if ip := net.ParseIP(host); ip != nil {
		return host, ip.To4() != nil
	}
	ips, err := net.DefaultResolver.LookupIP(ctx, "ip4", host)
	if err != nil || len(ips) == 0 {
		return "", false
	}
	return ips[0].String(), true
}
