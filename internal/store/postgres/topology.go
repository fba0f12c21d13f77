package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ymonitor/ymonitor/internal/model"
)

// TopologyStore is the `topology` table repository
// (discovery.TopologyStore).
type TopologyStore struct {
	pool *pgxpool.Pool
}

const topologyColumns = `device_id, local_port, protocol, remote_chassis_id, remote_port_id,
	remote_hostname, remote_platform, last_updated, active`

// ListByDevice returns every known link for deviceID, active or not.
func (s *TopologyStore) ListByDevice(ctx context.Context, deviceID string) ([]model.TopologyLink, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+topologyColumns+` FROM topology WHERE device_id = $1`, deviceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.TopologyLink
	for rows.Next() {
		var l model.TopologyLink
		if err := rows.Scan(&l.DeviceID, &l.LocalPort, &l.Protocol, &l.RemoteChassisID, &l.RemotePortID,
			&l.RemoteHostname, &l.RemotePlatform, &l.LastUpdated, &l.Active); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// Upsert records a freshly observed adjacency, deduplicated by
// (device_id, protocol, local_port, remote_hostname).
func (s *TopologyStore) Upsert(ctx context.Context, link model.TopologyLink) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO topology (device_id, local_port, protocol, remote_chassis_id, remote_port_id,
			remote_hostname, remote_platform, last_updated, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,now(),true)
		ON CONFLICT (device_id, protocol, local_port, remote_hostname) DO UPDATE SET
			remote_chassis_id = EXCLUDED.remote_chassis_id, remote_port_id = EXCLUDED.remote_port_id,
			remote_platform = EXCLUDED.remote_platform, last_updated = now(), active = true`,
		link.DeviceID, link.LocalPort, link.Protocol, link.RemoteChassisID, link.RemotePortID,
		link.RemoteHostname, link.RemotePlatform,
	)
	return err
}

// Prune marks links for deviceID not re-observed since olderThan, and
// absent from exceptKeys, as inactive rather than deleting them —
// preserving topology history for later inspection.
func (s *TopologyStore) Prune(ctx context.Context, deviceID string, olderThan time.Time, exceptKeys map[string]bool) error {
	keep := make([]string, 0, len(exceptKeys))
	for k := range exceptKeys {
		keep = append(keep, k)
	}
	_, err := s.pool.Exec(ctx, `
		UPDATE topology SET active = false
		WHERE device_id = $1 AND last_updated < $2
			AND NOT (device_id || '/' || protocol || '/' || local_port || '/' || remote_hostname = ANY($3))`,
		deviceID, olderThan, keep,
	)
	return err
}
