// Package postgres implements the relational store contract
// (devices, ports, sensors, alert_rules, alerts, alert_transports,
// alert_notifications, topology) over jackc/pgx/v5, the pack's common
// relational choice (grounded on carverauto-serviceradar,
// PilotFiber-icmp-mon, and wisbric-nightowl's pgxpool.Pool usage).
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ymonitor/ymonitor/internal/logging"
)

// Store bundles a connection pool with the per-entity repositories. Each
// repository is a thin struct embedding *pgxpool.Pool so callers can
// depend on only the narrow interface their package needs
// (internal/poller.PortRepository, internal/alertengine.AlertStore, …)
// without importing this package's concrete types.
type Store struct {
	Pool *pgxpool.Pool

	Devices       *DeviceStore
	Ports         *PortStore
	Sensors       *SensorStore
	Topology      *TopologyStore
	Rules         *RuleStore
	Alerts        *AlertStore
	Transports    *TransportStore
	Notifications *NotificationStore
}

// Open establishes the pool and wires every repository against it.
func Open(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	logging.L("store.postgres").Info("connected", "dsn_host", dsnHost(dsn))

	return &Store{
		Pool:          pool,
		Devices:       &DeviceStore{pool: pool},
		Ports:         &PortStore{pool: pool},
		Sensors:       &SensorStore{pool: pool},
		Topology:      &TopologyStore{pool: pool},
		Rules:         &RuleStore{pool: pool},
		Alerts:        &AlertStore{pool: pool},
		Transports:    &TransportStore{pool: pool},
		Notifications: &NotificationStore{pool: pool},
	}, nil
}

// Close releases the pool.
func (s *Store) Close() {
	s.Pool.Close()
}

// dsnHost extracts a loggable fragment of a DSN without leaking
// credentials; a full URL parse is unnecessary for a log line.
func dsnHost(dsn string) string {
	at := -1
	for i := len(dsn) - 1; i >= 0; i-- {
		if dsn[i] == '@' {
			at = i
			break
		}
	}
	if at == -1 {
		return "(unparsed)"
	}
	return dsn[at+1:]
}
