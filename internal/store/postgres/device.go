package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ymonitor/ymonitor/internal/model"
)

// DeviceStore is the `devices` table repository. It satisfies the
// DeviceSource seams internal/poller (ListEnabledWithPorts/
// ListEnabledWithSensors), internal/alertengine (ListEnabled), and
// internal/discovery (Get) each declare independently.
type DeviceStore struct {
	pool *pgxpool.Pool
}

const deviceColumns = `id, hostname, address, snmp_version, snmp_port, snmp_timeout_ms, snmp_retries,
	snmp_transport, snmp_community, snmp_username, snmp_auth_level, snmp_auth_protocol,
	snmp_auth_secret, snmp_priv_protocol, snmp_priv_secret, snmp_context,
	os, vendor, model, serial, uptime_s, status, disabled, last_polled, last_discovered`

func scanDevice(row pgx.Row) (model.Device, error) {
	var d model.Device
	err := row.Scan(
		&d.ID, &d.Hostname, &d.Address, &d.SNMP.Version, &d.SNMP.Port, &d.SNMP.TimeoutMS, &d.SNMP.Retries,
		&d.SNMP.Transport, &d.SNMP.Community, &d.SNMP.Username, &d.SNMP.AuthLevel, &d.SNMP.AuthProtocol,
		&d.SNMP.AuthSecret, &d.SNMP.PrivProtocol, &d.SNMP.PrivSecret, &d.SNMP.Context,
		&d.OS, &d.Vendor, &d.Model, &d.Serial, &d.UptimeS, &d.Status, &d.Disabled, &d.LastPolled, &d.LastDiscovered,
	)
	return d, err
}

// Get returns a single device by id (discovery.DeviceLoader).
func (s *DeviceStore) Get(ctx context.Context, deviceID string) (*model.Device, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+deviceColumns+` FROM devices WHERE id = $1`, deviceID)
	d, err := scanDevice(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ListEnabled returns every non-disabled device (alertengine.DeviceSource).
func (s *DeviceStore) ListEnabled(ctx context.Context) ([]model.Device, error) {
	return s.queryDevices(ctx, `SELECT `+deviceColumns+` FROM devices WHERE NOT disabled`)
}

// ListEnabledWithPorts returns non-disabled devices that have at least
// one port row, avoiding wasted poll attempts on devices the Ports
// discovery module has not yet populated (poller.DeviceSource).
func (s *DeviceStore) ListEnabledWithPorts(ctx context.Context) ([]model.Device, error) {
	return s.queryDevices(ctx, `SELECT `+deviceColumns+` FROM devices d
		WHERE NOT d.disabled AND EXISTS (SELECT 1 FROM ports p WHERE p.device_id = d.id)`)
}

// ListEnabledWithSensors mirrors ListEnabledWithPorts for the Sensor
// Poller (poller.DeviceSource).
func (s *DeviceStore) ListEnabledWithSensors(ctx context.Context) ([]model.Device, error) {
	return s.queryDevices(ctx, `SELECT `+deviceColumns+` FROM devices d
		WHERE NOT d.disabled AND EXISTS (SELECT 1 FROM sensors se WHERE se.device_id = d.id)`)
}

func (s *DeviceStore) queryDevices(ctx context.Context, sql string, args ...any) ([]model.Device, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Device
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// SetStatus records the connectivity-probe outcome for one poll cycle
// (poller.DeviceStatusRepository); responseTime is accepted but not persisted.
func (s *DeviceStore) SetStatus(ctx context.Context, deviceID string, status model.DeviceStatus, responseTime time.Duration) error {
	_, err := s.pool.Exec(ctx, `UPDATE devices SET status = $2, last_polled = now() WHERE id = $1`, deviceID, status)
	return err
}

// Upsert inserts or updates a device's identity/inventory fields,
// leaving operational fields (status, last_polled) untouched — those
// are owned by the poller, not discovery.
func (s *DeviceStore) Upsert(ctx context.Context, d model.Device) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO devices (id, hostname, address, snmp_version, snmp_port, snmp_timeout_ms, snmp_retries,
			snmp_transport, snmp_community, snmp_username, snmp_auth_level, snmp_auth_protocol,
			snmp_auth_secret, snmp_priv_protocol, snmp_priv_secret, snmp_context,
			os, vendor, model, serial, uptime_s, status, disabled, last_discovered)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,now())
		ON CONFLICT (id) DO UPDATE SET
			hostname = EXCLUDED.hostname, address = EXCLUDED.address,
			os = EXCLUDED.os, vendor = EXCLUDED.vendor, model = EXCLUDED.model, serial = EXCLUDED.serial,
			uptime_s = EXCLUDED.uptime_s, last_discovered = now()`,
		d.ID, d.Hostname, d.Address, d.SNMP.Version, d.SNMP.Port, d.SNMP.TimeoutMS, d.SNMP.Retries,
		d.SNMP.Transport, d.SNMP.Community, d.SNMP.Username, d.SNMP.AuthLevel, d.SNMP.AuthProtocol,
		d.SNMP.AuthSecret, d.SNMP.PrivProtocol, d.SNMP.PrivSecret, d.SNMP.Context,
		d.OS, d.Vendor, d.Model, d.Serial, d.UptimeS, d.Status, d.Disabled,
	)
	return err
}
