package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ymonitor/ymonitor/internal/model"
)

// PortStore is the `ports` table repository. (device_id, if_index) is
// unique, enforced by a unique constraint backing the upsert's
// ON CONFLICT target.
type PortStore struct {
	pool *pgxpool.Pool
}

const portColumns = `id, device_id, if_index, name, alias, type, mtu, speed_bps, admin_status, oper_status,
	in_octets, out_octets, in_ucast, out_ucast, in_discards, out_discards, in_errors, out_errors,
	hc_in_octets, hc_out_octets, disabled, last_polled`

// ListByDevice returns every port for deviceID (discovery.PortStore,
// poller.PortRepository).
func (s *PortStore) ListByDevice(ctx context.Context, deviceID string) ([]model.Port, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+portColumns+` FROM ports WHERE device_id = $1`, deviceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Port
	for rows.Next() {
		var p model.Port
		if err := rows.Scan(
			&p.ID, &p.DeviceID, &p.IfIndex, &p.Name, &p.Alias, &p.Type, &p.MTU, &p.SpeedBps,
			&p.AdminStatus, &p.OperStatus, &p.InOctets, &p.OutOctets, &p.InUcast, &p.OutUcast,
			&p.InDiscards, &p.OutDiscards, &p.InErrors, &p.OutErrors, &p.HCInOctets, &p.HCOutOctets,
			&p.Disabled, &p.LastPolled,
		); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Upsert inserts or updates a port's inventory fields discovered by the
// Ports module (discovery.PortStore). It leaves counters untouched;
// those are owned by UpdateCounters.
func (s *PortStore) Upsert(ctx context.Context, p model.Port) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO ports (id, device_id, if_index, name, alias, type, mtu, speed_bps, admin_status, oper_status, disabled)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		ON CONFLICT (device_id, if_index) DO UPDATE SET
			name = EXCLUDED.name, alias = EXCLUDED.alias, type = EXCLUDED.type,
			mtu = EXCLUDED.mtu, speed_bps = EXCLUDED.speed_bps,
			admin_status = EXCLUDED.admin_status, disabled = EXCLUDED.disabled`,
		p.ID, p.DeviceID, p.IfIndex, p.Name, p.Alias, p.Type, p.MTU, p.SpeedBps, p.AdminStatus, p.OperStatus, p.Disabled,
	)
	return err
}

// MarkDisabled flags every port for deviceID not present in
// exceptIfIndexes as disabled, per discovery.PortStore's "unseen ports
// this run" contract.
func (s *PortStore) MarkDisabled(ctx context.Context, deviceID string, exceptIfIndexes map[int]bool) error {
	keep := make([]int, 0, len(exceptIfIndexes))
	for idx := range exceptIfIndexes {
		keep = append(keep, idx)
	}
	_, err := s.pool.Exec(ctx,
		`UPDATE ports SET disabled = true WHERE device_id = $1 AND NOT (if_index = ANY($2))`,
		deviceID, keep,
	)
	return err
}

// UpdateCounters persists one poll's counter/status snapshot
// (poller.PortRepository).
func (s *PortStore) UpdateCounters(ctx context.Context, p model.Port) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE ports SET oper_status = $3,
			in_octets = $4, out_octets = $5, in_ucast = $6, out_ucast = $7,
			in_discards = $8, out_discards = $9, in_errors = $10, out_errors = $11,
			hc_in_octets = $12, hc_out_octets = $13, last_polled = $14
		WHERE device_id = $1 AND if_index = $2`,
		p.DeviceID, p.IfIndex, p.OperStatus,
		p.InOctets, p.OutOctets, p.InUcast, p.OutUcast,
		p.InDiscards, p.OutDiscards, p.InErrors, p.OutErrors,
		p.HCInOctets, p.HCOutOctets, p.LastPolled,
	)
	return err
}
